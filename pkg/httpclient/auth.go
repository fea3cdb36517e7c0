package httpclient

import (
	"context"
	"net/http"

	// Packages
	client "github.com/mutablelogic/go-client"
	otel "github.com/mutablelogic/go-client/pkg/otel"
	eduplan "github.com/mutablelogic/go-eduplan"
	schema "github.com/mutablelogic/go-eduplan/pkg/schema"
	attribute "go.opentelemetry.io/otel/attribute"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Login authenticates with email and password. On success the minted
// bearer credential is stored in the session and the refresh secret is
// retained by the transport's cookie jar.
func (c *Client) Login(ctx context.Context, req schema.LoginRequest) (user *schema.User, err error) {
	ctx, endSpan := otel.StartSpan(c.tracer, ctx, "Login",
		attribute.String("email", req.Email),
	)
	defer func() { endSpan(err) }()

	payload, err := client.NewJSONRequest(req)
	if err != nil {
		return nil, err
	}

	var response schema.TokenResponse
	if err := c.DoWithContext(ctx, payload, &response, client.OptPath("auth", "login")); err != nil {
		return nil, err
	}
	if response.AccessToken == "" {
		return nil, eduplan.ErrUnauthorized.With("login returned no access token")
	}

	c.session.Set(response.AccessToken)
	return response.User, nil
}

// Register creates a new account and signs it in.
func (c *Client) Register(ctx context.Context, req schema.RegisterRequest) (user *schema.User, err error) {
	ctx, endSpan := otel.StartSpan(c.tracer, ctx, "Register",
		attribute.String("email", req.Email),
	)
	defer func() { endSpan(err) }()

	payload, err := client.NewJSONRequest(req)
	if err != nil {
		return nil, err
	}

	var response schema.TokenResponse
	if err := c.DoWithContext(ctx, payload, &response, client.OptPath("auth", "register")); err != nil {
		return nil, err
	}
	if response.AccessToken == "" {
		return nil, eduplan.ErrUnauthorized.With("registration returned no access token")
	}

	c.session.Set(response.AccessToken)
	return response.User, nil
}

// Logout invalidates the refresh secret server-side and clears the
// in-memory credential.
func (c *Client) Logout(ctx context.Context) (err error) {
	ctx, endSpan := otel.StartSpan(c.tracer, ctx, "Logout")
	defer func() { endSpan(err) }()

	payload, err := client.NewJSONRequest(struct{}{})
	if err != nil {
		return err
	}
	err = c.DoWithContext(ctx, payload, nil, client.OptPath("auth", "logout"))

	// The local credential is cleared even if the server call failed
	c.session.Clear()
	return err
}

// Refresh forces a silent refresh of the bearer credential using the
// refresh secret held by the transport.
func (c *Client) Refresh(ctx context.Context) (err error) {
	ctx, endSpan := otel.StartSpan(c.tracer, ctx, "Refresh")
	defer func() { endSpan(err) }()

	_, err = c.transport.refreshToken(ctx, "", true)
	return err
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (*schema.User, error) {
	req := client.NewRequest()

	var response schema.User
	if err := c.DoWithContext(ctx, req, &response, client.OptPath("auth", "me")); err != nil {
		return nil, err
	}
	return &response, nil
}

// GetSettings returns the user's generation preferences.
func (c *Client) GetSettings(ctx context.Context) (*schema.Settings, error) {
	req := client.NewRequest()

	var response schema.Settings
	if err := c.DoWithContext(ctx, req, &response, client.OptPath("auth", "settings")); err != nil {
		return nil, err
	}
	return &response, nil
}

// UpdateSettings updates the user's generation preferences.
func (c *Client) UpdateSettings(ctx context.Context, settings schema.Settings) (*schema.Settings, error) {
	req, err := client.NewJSONRequestEx(http.MethodPatch, settings, "")
	if err != nil {
		return nil, err
	}

	var response schema.Settings
	if err := c.DoWithContext(ctx, req, &response, client.OptPath("auth", "settings")); err != nil {
		return nil, err
	}
	return &response, nil
}
