package main

import (
	"encoding/json"

	// Packages
	httpclient "github.com/mutablelogic/go-eduplan/pkg/httpclient"
	opt "github.com/mutablelogic/go-eduplan/pkg/opt"
	schema "github.com/mutablelogic/go-eduplan/pkg/schema"
	table "github.com/mutablelogic/go-eduplan/pkg/ui/table"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

type ListConversationsCmd struct {
	Limit  uint `help:"Maximum number of conversations to return"`
	Offset uint `help:"Offset into the conversation listing"`
}

type ShowConversationCmd struct {
	Thread string `arg:"" help:"Conversation identifier"`
}

type DeleteConversationCmd struct {
	Thread string `arg:"" help:"Conversation identifier"`
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (cmd *ListConversationsCmd) Run(globals *Globals) error {
	opts := []opt.Opt{}
	if cmd.Limit > 0 {
		opts = append(opts, httpclient.WithLimit(cmd.Limit))
	}
	if cmd.Offset > 0 {
		opts = append(opts, httpclient.WithOffset(cmd.Offset))
	}
	list, err := globals.client.ListConversations(globals.ctx, opts...)
	if err != nil {
		return err
	}
	if list.Count == 0 {
		globals.display.Println("no conversations")
		return nil
	}
	globals.display.Println(table.Render(table.Conversations(list.Body)))
	return nil
}

func (cmd *ShowConversationCmd) Run(globals *Globals) error {
	conv, err := globals.client.GetConversation(globals.ctx, cmd.Thread)
	if err != nil {
		return err
	}
	history, err := globals.client.GetConversationHistory(globals.ctx, cmd.Thread)
	if err != nil {
		return err
	}
	for _, message := range history.Body {
		switch message.Role {
		case schema.RoleUser:
			globals.display.Printf("> %s\n\n", message.Content)
		case schema.RoleAssistant:
			if err := globals.display.Markdown(renderResult(conv.Endpoint, message.Content)); err != nil {
				return err
			}
		}
	}
	return nil
}

// renderResult decodes a stored assistant message into the result type
// of the conversation's endpoint and renders it as markdown. Content
// that does not decode is shown as stored.
func renderResult(endpoint, content string) string {
	switch endpoint {
	case schema.EndpointOutline:
		var result schema.CourseOutline
		if err := json.Unmarshal([]byte(content), &result); err == nil {
			return result.Markdown()
		}
	case schema.EndpointLesson:
		var result schema.LessonPlan
		if err := json.Unmarshal([]byte(content), &result); err == nil {
			return result.Markdown()
		}
	case schema.EndpointSlides:
		var result schema.SlideDeck
		if err := json.Unmarshal([]byte(content), &result); err == nil {
			return result.Markdown()
		}
	case schema.EndpointAssessment:
		var result schema.Assessment
		if err := json.Unmarshal([]byte(content), &result); err == nil {
			return result.Markdown()
		}
	}
	return content
}

func (cmd *DeleteConversationCmd) Run(globals *Globals) error {
	if err := globals.client.DeleteConversation(globals.ctx, cmd.Thread); err != nil {
		return err
	}

	// Drop any endpoint addressed at the deleted thread
	for _, endpoint := range []string{
		schema.EndpointOutline, schema.EndpointLesson, schema.EndpointSlides, schema.EndpointAssessment,
	} {
		if globals.config.ThreadFor(endpoint) == cmd.Thread {
			globals.config.SetThreadFor(endpoint, "")
		}
	}
	globals.display.Printf("deleted %s\n", cmd.Thread)
	return nil
}
