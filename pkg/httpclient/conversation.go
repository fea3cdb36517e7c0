package httpclient

import (
	"context"
	"fmt"

	// Packages
	client "github.com/mutablelogic/go-client"
	opt "github.com/mutablelogic/go-eduplan/pkg/opt"
	schema "github.com/mutablelogic/go-eduplan/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// ListConversations returns the user's conversations.
// Use WithLimit and WithOffset to paginate results.
func (c *Client) ListConversations(ctx context.Context, opts ...opt.Opt) (*schema.ListConversationResponse, error) {
	// Apply options
	o, err := opt.Apply(opts...)
	if err != nil {
		return nil, err
	}

	// Create request
	req := client.NewRequest()
	reqOpts := []client.RequestOpt{client.OptPath("conversations")}
	if q := o.Query(opt.LimitKey, opt.OffsetKey); len(q) > 0 {
		reqOpts = append(reqOpts, client.OptQuery(q))
	}

	// Perform request
	var response schema.ListConversationResponse
	if err := c.DoWithContext(ctx, req, &response, reqOpts...); err != nil {
		return nil, err
	}

	// Return the response
	return &response, nil
}

// GetConversation retrieves a conversation's metadata by thread ID.
func (c *Client) GetConversation(ctx context.Context, id string) (*schema.Conversation, error) {
	if id == "" {
		return nil, fmt.Errorf("conversation ID cannot be empty")
	}

	// Create request
	req := client.NewRequest()
	reqOpts := []client.RequestOpt{client.OptPath("conversations", id)}

	// Perform request
	var response schema.Conversation
	if err := c.DoWithContext(ctx, req, &response, reqOpts...); err != nil {
		return nil, err
	}

	// Return the response
	return &response, nil
}

// GetConversationHistory retrieves the stored messages of a conversation
// in chronological order.
func (c *Client) GetConversationHistory(ctx context.Context, id string) (*schema.ListMessageResponse, error) {
	if id == "" {
		return nil, fmt.Errorf("conversation ID cannot be empty")
	}

	// Create request
	req := client.NewRequest()
	reqOpts := []client.RequestOpt{client.OptPath("conversations", id, "history")}

	// Perform request
	var response schema.ListMessageResponse
	if err := c.DoWithContext(ctx, req, &response, reqOpts...); err != nil {
		return nil, err
	}

	// Return the response
	return &response, nil
}

// DeleteConversation removes a conversation by thread ID.
func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("conversation ID cannot be empty")
	}

	// Create request
	reqOpts := []client.RequestOpt{client.OptPath("conversations", id)}

	// Perform request
	if err := c.DoWithContext(ctx, client.MethodDelete, nil, reqOpts...); err != nil {
		return err
	}

	// Return success
	return nil
}
