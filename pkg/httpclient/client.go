/*
httpclient implements the authenticated HTTP client for the generation
service. Every request travels through a gateway transport that attaches
the current bearer credential and, on an authorization failure, performs
exactly one silent refresh and one replay before surfacing the failure.
*/
package httpclient

import (
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	// Packages
	client "github.com/mutablelogic/go-client"
	eduplan "github.com/mutablelogic/go-eduplan"
	credential "github.com/mutablelogic/go-eduplan/pkg/credential"
	trace "go.opentelemetry.io/otel/trace"
	noop "go.opentelemetry.io/otel/trace/noop"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Client wraps the base HTTP client with typed methods for the
// generation service API.
type Client struct {
	*client.Client
	session   *credential.Store
	transport *authTransport
	http      *http.Client
	base      *url.URL
	log       *slog.Logger
	tracer    trace.Tracer
}

// Opt is a functional option for the client.
type Opt func(*clientOpts) error

type clientOpts struct {
	log    *slog.Logger
	tracer trace.Tracer
	client []client.ClientOpt
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New creates a client for the service at the given base URL, e.g.
// "https://api.eduplan.example/api". The credential store holds the
// bearer token shared by all requests.
func New(endpoint string, session *credential.Store, opts ...Opt) (*Client, error) {
	if session == nil {
		return nil, eduplan.ErrBadParameter.With("credential store is required")
	}
	base, err := url.Parse(endpoint)
	if err != nil {
		return nil, err
	} else if base.Scheme != "http" && base.Scheme != "https" {
		return nil, eduplan.ErrBadParameter.Withf("invalid endpoint %q", endpoint)
	}

	// Apply options
	o := clientOpts{
		log:    slog.Default(),
		tracer: noop.NewTracerProvider().Tracer("go-eduplan"),
	}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}

	// The jar carries the durable refresh secret between requests
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	// Create the base client
	gc, err := client.New(append(o.client, client.OptEndpoint(endpoint))...)
	if err != nil {
		return nil, err
	}

	// Route every request through the authenticating gateway
	transport := newAuthTransport(gc.Client.Transport, session, base.JoinPath("auth", "refresh"), jar)
	gc.Client.Transport = transport
	gc.Client.Jar = jar

	return &Client{
		Client:    gc,
		session:   session,
		transport: transport,
		http:      gc.Client,
		base:      base,
		log:       o.log,
		tracer:    o.tracer,
	}, nil
}

///////////////////////////////////////////////////////////////////////////////
// OPTIONS

// WithLogger sets the logger for the client.
func WithLogger(log *slog.Logger) Opt {
	return func(o *clientOpts) error {
		if log == nil {
			return eduplan.ErrBadParameter.With("logger is required")
		}
		o.log = log
		return nil
	}
}

// WithTracer sets the tracer used for request spans.
func WithTracer(tracer trace.Tracer) Opt {
	return func(o *clientOpts) error {
		if tracer == nil {
			return eduplan.ErrBadParameter.With("tracer is required")
		}
		o.tracer = tracer
		return nil
	}
}

// WithClientOptions appends options for the underlying base client,
// e.g. client.OptTrace for request dumps.
func WithClientOptions(opts ...client.ClientOpt) Opt {
	return func(o *clientOpts) error {
		o.client = append(o.client, opts...)
		return nil
	}
}
