package generator

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	// Packages
	otel "github.com/mutablelogic/go-client/pkg/otel"
	eduplan "github.com/mutablelogic/go-eduplan"
	httpclient "github.com/mutablelogic/go-eduplan/pkg/httpclient"
	schema "github.com/mutablelogic/go-eduplan/pkg/schema"
	sse "github.com/mutablelogic/go-eduplan/pkg/sse"
	attribute "go.opentelemetry.io/otel/attribute"
	trace "go.opentelemetry.io/otel/trace"
	noop "go.opentelemetry.io/otel/trace/noop"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Streamer is the subset of the HTTP client the generator drives.
type Streamer interface {
	GenerateStream(ctx context.Context, endpoint string, req schema.GenerateRequest, files []httpclient.File, fn func(sse.Event) error) error
}

// Generator drives a single generation endpoint and tracks the lifecycle
// of the current request. At most one request is live at a time: a new
// Send supersedes any request still in flight, and the superseded call
// settles with no result and no error.
type Generator[T any] struct {
	client   Streamer
	endpoint string

	mu       sync.Mutex
	gen      uint64
	cancel   context.CancelFunc
	state    State
	threadID string
	progress string
	err      error
	result   *T

	onThread   func(string)
	onProgress func(string)
	log        *slog.Logger
	tracer     trace.Tracer
}

// ServerError is an error event reported by the generation backend
// within an otherwise healthy stream.
type ServerError struct {
	Message string
}

type Opt func(*opts) error

type opts struct {
	onThread   func(string)
	onProgress func(string)
	log        *slog.Logger
	tracer     trace.Tracer
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

var (
	errDone       = errors.New("stream settled")
	errSuperseded = errors.New("request superseded")
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New creates a generator for one endpoint. The type parameter is the
// shape of the completed result carried by the terminal event.
func New[T any](client Streamer, endpoint string, opt ...Opt) (*Generator[T], error) {
	var o opts
	if client == nil || endpoint == "" {
		return nil, eduplan.ErrBadParameter.With("generator")
	}
	for _, fn := range opt {
		if err := fn(&o); err != nil {
			return nil, err
		}
	}
	if o.log == nil {
		o.log = slog.Default()
	}
	if o.tracer == nil {
		o.tracer = noop.NewTracerProvider().Tracer("go-eduplan")
	}
	return &Generator[T]{
		client:     client,
		endpoint:   endpoint,
		state:      Idle,
		onThread:   o.onThread,
		onProgress: o.onProgress,
		log:        o.log,
		tracer:     o.tracer,
	}, nil
}

///////////////////////////////////////////////////////////////////////////////
// OPTIONS

// WithOnThread sets a hook invoked once per request, when the server
// first announces the conversation thread the request was filed under.
func WithOnThread(fn func(string)) Opt {
	return func(o *opts) error {
		o.onThread = fn
		return nil
	}
}

// WithOnProgress sets a hook invoked for each progress message of the
// live request, in arrival order.
func WithOnProgress(fn func(string)) Opt {
	return func(o *opts) error {
		o.onProgress = fn
		return nil
	}
}

func WithLogger(log *slog.Logger) Opt {
	return func(o *opts) error {
		o.log = log
		return nil
	}
}

func WithTracer(tracer trace.Tracer) Opt {
	return func(o *opts) error {
		o.tracer = tracer
		return nil
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Send submits a prompt and blocks until the stream settles. It returns
// the completed result, or an error when the transport or the backend
// failed, or (nil, nil) when the request was cancelled or superseded by
// a later Send. When the request carries no thread the generator's
// current thread is attached, so follow-up prompts continue the same
// conversation.
func (g *Generator[T]) Send(ctx context.Context, req schema.GenerateRequest, files ...httpclient.File) (*T, error) {
	var err error
	ctx, endSpan := otel.StartSpan(g.tracer, ctx, "Send",
		attribute.String("endpoint", g.endpoint),
	)
	defer func() { endSpan(err) }()

	// Supersede any in-flight request and become the live one
	g.mu.Lock()
	if g.cancel != nil {
		g.cancel()
	}
	g.gen++
	gen := g.gen
	ctx, cancel := context.WithCancel(ctx)
	g.cancel = cancel
	g.state = Connecting
	g.progress = ""
	g.err = nil
	g.result = nil
	if req.ThreadID == "" {
		req.ThreadID = g.threadID
	}
	g.mu.Unlock()
	defer cancel()

	streamErr := g.client.GenerateStream(ctx, g.endpoint, req, files, func(evt sse.Event) error {
		g.mu.Lock()
		if g.gen != gen {
			g.mu.Unlock()
			return errSuperseded
		}
		var settled error
		var announced, progressed string
		switch evt.Kind {
		case sse.KindThread:
			g.state = Streaming
			if g.threadID != evt.ThreadID {
				g.threadID = evt.ThreadID
				announced = evt.ThreadID
			}
		case sse.KindProgress:
			g.state = Streaming
			g.progress = evt.Message
			progressed = evt.Message
		case sse.KindComplete:
			var result T
			if err := evt.Json(&result); err != nil {
				g.state = Idle
				g.err = err
			} else {
				g.result = &result
				g.state = Complete
			}
			settled = errDone
		case sse.KindError:
			g.state = Idle
			g.err = &ServerError{Message: evt.Message}
			settled = errDone
		}
		g.mu.Unlock()

		// The adoption hook runs outside the lock, while the stream is
		// still live, so the caller can persist the thread immediately
		if announced != "" && g.onThread != nil {
			g.onThread(announced)
		}
		if progressed != "" && g.onProgress != nil {
			g.onProgress(progressed)
		}
		return settled
	})

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gen != gen {
		// A later Send took over, this settlement is moot
		return nil, nil
	}
	g.cancel = nil

	switch {
	case errors.Is(streamErr, errDone):
		// Terminal event decided the outcome
		err = g.err
		return g.result, err
	case ctx.Err() != nil:
		// Cancelled before settling
		g.state = Idle
		return nil, nil
	case streamErr != nil:
		g.state = Idle
		g.err = streamErr
		err = streamErr
		return nil, err
	default:
		// Source exhausted without a terminal event. The work may well
		// have landed server-side, so settle as complete with no result
		// rather than report a phantom failure.
		g.log.Debug("stream ended without terminal event", "endpoint", g.endpoint)
		g.state = Complete
		return nil, nil
	}
}

// Abort cancels the in-flight request, if any. The conversation thread
// is retained so the next Send continues it.
func (g *Generator[T]) Abort() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	g.gen++
	g.state = Idle
	g.progress = ""
}

// Reset aborts any in-flight request and detaches from the current
// conversation thread. It is safe to call repeatedly.
func (g *Generator[T]) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	g.gen++
	g.state = Idle
	g.threadID = ""
	g.progress = ""
	g.err = nil
	g.result = nil
}

// SetThread attaches the generator to an existing conversation thread,
// typically when resuming a conversation loaded from the server.
func (g *Generator[T]) SetThread(thread string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.threadID = thread
}

func (g *Generator[T]) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Generator[T]) ThreadID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.threadID
}

// Progress returns the most recent progress message of the live request,
// or the empty string when none has arrived yet.
func (g *Generator[T]) Progress() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.progress
}

func (g *Generator[T]) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}

// Result returns the completed result of the most recent request, or
// nil when the generator has not settled as complete.
func (g *Generator[T]) Result() *T {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.result
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return "generation failed"
	}
	return e.Message
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (g *Generator[T]) String() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return schema.Stringify(struct {
		Endpoint string `json:"endpoint"`
		State    string `json:"state"`
		ThreadID string `json:"thread_id,omitempty"`
		Progress string `json:"progress,omitempty"`
	}{
		Endpoint: g.endpoint,
		State:    g.state.String(),
		ThreadID: g.threadID,
		Progress: g.progress,
	})
}
