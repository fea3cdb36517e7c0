package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"

	// Packages
	eduplan "github.com/mutablelogic/go-eduplan"
	credential "github.com/mutablelogic/go-eduplan/pkg/credential"
	schema "github.com/mutablelogic/go-eduplan/pkg/schema"
	httpresponse "github.com/mutablelogic/go-server/pkg/httpresponse"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// authTransport is the authenticated request gateway. It attaches the
// current bearer credential to outgoing requests and recovers from a
// single authorization failure by minting a new credential through the
// refresh endpoint, then replaying the original request once. It never
// issues more than one refresh and one replay per request, and never
// retries on any status other than 401.
type authTransport struct {
	base    http.RoundTripper
	session *credential.Store
	refresh *url.URL
	jar     http.CookieJar
	mu      sync.Mutex // serializes refresh attempts
}

var _ http.RoundTripper = (*authTransport)(nil)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

func newAuthTransport(base http.RoundTripper, session *credential.Store, refresh *url.URL, jar http.CookieJar) *authTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &authTransport{
		base:    base,
		session: session,
		refresh: refresh,
		jar:     jar,
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token := t.session.Get()
	out := req.Clone(req.Context())
	if token != "" {
		out.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := t.base.RoundTrip(out)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	// A 401 from the refresh endpoint itself is final
	if req.URL.Host == t.refresh.Host && req.URL.Path == t.refresh.Path {
		return resp, nil
	}

	// The original request can only be replayed if its body rewinds
	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}

	newToken, rerr := t.refreshToken(req.Context(), token, false)
	if rerr != nil {
		// Surface the original 401; the session is no longer valid
		t.session.Clear()
		return resp, nil
	}

	// Replay once with the new credential; its outcome is final
	resp.Body.Close()
	retry := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		retry.Body = body
	}
	retry.Header.Set("Authorization", "Bearer "+newToken)
	return t.base.RoundTrip(retry)
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// refreshToken mints a new bearer credential using the refresh secret
// held in the cookie jar. When force is false and another request has
// already refreshed the credential since stale was read, the newer
// credential is returned without a second round-trip.
func (t *authTransport) refreshToken(ctx context.Context, stale string, force bool) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !force {
		if current := t.session.Get(); current != "" && current != stale {
			return current, nil
		}
	}

	// The refresh request bypasses the gateway, so jar cookies are
	// attached and collected by hand.
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.refresh.String(), nil)
	if err != nil {
		return "", err
	}
	for _, cookie := range t.jar.Cookies(t.refresh) {
		req.AddCookie(cookie)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	t.jar.SetCookies(t.refresh, resp.Cookies())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", httpresponse.Err(resp.StatusCode)
	}

	var token schema.TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", err
	}
	if token.AccessToken == "" {
		return "", eduplan.ErrUnauthorized.With("refresh returned no access token")
	}

	t.session.Set(token.AccessToken)
	return token.AccessToken, nil
}
