/*
Package conversation keeps three views of a generation thread mutually
consistent: the location the application is addressed at, the thread the
server filed the work under, and the locally rendered turn history. It
owns the rules for adopting a freshly minted thread, resuming a thread
that was navigated to directly, and folding completed results into the
history exactly once.
*/
package conversation

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	// Packages
	hashstructure "github.com/mitchellh/hashstructure/v2"
	otel "github.com/mutablelogic/go-client/pkg/otel"
	eduplan "github.com/mutablelogic/go-eduplan"
	schema "github.com/mutablelogic/go-eduplan/pkg/schema"
	attribute "go.opentelemetry.io/otel/attribute"
	trace "go.opentelemetry.io/otel/trace"
	noop "go.opentelemetry.io/otel/trace/noop"
	errgroup "golang.org/x/sync/errgroup"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Navigator is the addressable location a conversation is reconciled
// against. In a terminal client this is typically a state file or the
// argument the user launched with; the manager only requires that the
// location can name a thread, be rewritten to one, and fall back to the
// endpoint's base location.
type Navigator interface {
	// ThreadID returns the thread named by the current location, or
	// the empty string when the location carries none.
	ThreadID() string

	// SetThreadID rewrites the current location to name the thread,
	// without discarding other location state.
	SetThreadID(thread string)

	// NavigateBase returns to the endpoint's base location, dropping
	// any thread the location named.
	NavigateBase()
}

// History is the server collaborator the manager loads saved
// conversations from.
type History interface {
	GetConversation(ctx context.Context, id string) (*schema.Conversation, error)
	GetConversationHistory(ctx context.Context, id string) (*schema.ListMessageResponse, error)
}

// Turn pairs a prompt with its result. The result slot is empty while
// the request is in flight; at most one turn is open at a time.
type Turn struct {
	Prompt string
	Result any
	Done   bool
}

// Manager owns the turn history and thread identity for one endpoint.
type Manager struct {
	client History
	nav    Navigator

	mu          sync.Mutex
	thread      string
	meta        *schema.ConversationMeta
	turns       []Turn
	fingerprint uint64
	active      bool

	onInvalidate func()
	decode       func(string) (any, error)
	log          *slog.Logger
	tracer       trace.Tracer
}

type Opt func(*opts) error

type opts struct {
	onInvalidate func()
	decode       func(string) (any, error)
	log          *slog.Logger
	tracer       trace.Tracer
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

func NewManager(client History, nav Navigator, opt ...Opt) (*Manager, error) {
	var o opts
	if client == nil || nav == nil {
		return nil, eduplan.ErrBadParameter.With("conversation manager")
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
	if o.decode == nil {
		o.decode = decodeAny
	}
	return &Manager{
		client:       client,
		nav:          nav,
		onInvalidate: o.onInvalidate,
		decode:       o.decode,
		log:          o.log,
		tracer:       o.tracer,
	}, nil
}

///////////////////////////////////////////////////////////////////////////////
// OPTIONS

// WithInvalidate sets a hook invoked when a new conversation comes into
// existence server-side, so cached conversation listings can be
// refreshed.
func WithInvalidate(fn func()) Opt {
	return func(o *opts) error {
		o.onInvalidate = fn
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

// WithDecoder sets the parser for stored assistant messages, so resumed
// turns carry the same result type the endpoint settles with. Without
// it, stored results are parsed into generic JSON values.
func WithDecoder(fn func(content string) (any, error)) Opt {
	return func(o *opts) error {
		o.decode = fn
		return nil
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Begin records a prompt as an open turn before its request is issued,
// so the rendered history always reflects what was sent. Any turn left
// open by a superseded request is discarded first.
func (m *Manager) Begin(prompt string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n := len(m.turns); n > 0 && !m.turns[n-1].Done {
		m.turns = m.turns[:n-1]
	}
	m.turns = append(m.turns, Turn{Prompt: prompt})
	m.active = true
}

// Adopt binds the manager to a thread the server just announced. The
// first adoption of a conversation rewrites the location to name the
// thread and invalidates any cached conversation listing. Adopting the
// thread the manager already holds is a no-op.
func (m *Manager) Adopt(thread string) {
	m.mu.Lock()
	if thread == "" || thread == m.thread {
		m.mu.Unlock()
		return
	}
	m.thread = thread
	hook := m.onInvalidate
	m.mu.Unlock()

	if m.nav.ThreadID() == "" {
		m.nav.SetThreadID(thread)
	}
	if hook != nil {
		hook()
	}
}

// Complete settles the open turn with a completed result. A result
// whose content fingerprint matches the previous settlement is ignored,
// so a request that settles twice never appends two identical entries.
// When no turn is open the result is appended as a turn of its own.
func (m *Manager) Complete(result any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = false
	if result == nil {
		return
	}

	fingerprint, err := hashstructure.Hash(result, hashstructure.FormatV2, nil)
	if err != nil {
		// Treat an unhashable result as distinct
		m.log.Debug("result fingerprint failed", "error", err)
		fingerprint = 0
	}
	if fingerprint != 0 && fingerprint == m.fingerprint {
		m.log.Debug("duplicate settlement ignored", "thread", m.thread)
		return
	}
	m.fingerprint = fingerprint

	if n := len(m.turns); n > 0 && !m.turns[n-1].Done {
		m.turns[n-1].Result = result
		m.turns[n-1].Done = true
	} else {
		m.turns = append(m.turns, Turn{Result: result, Done: true})
	}
}

// Discard drops the open turn after a cancelled or failed request, so
// the history holds settled turns plus at most the one in flight.
func (m *Manager) Discard() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = false
	if n := len(m.turns); n > 0 && !m.turns[n-1].Done {
		m.turns = m.turns[:n-1]
	}
}

// Resume reconciles the manager with the thread named by the current
// location, fetching the conversation's metadata and message history
// when the location names a thread the manager has not loaded. The
// fetch is skipped while a request is in flight, since the record may
// not exist server-side yet for a conversation created moments ago.
// When the fetch fails the location is returned to the base route and
// the history is left empty, with no residue of the failed load.
func (m *Manager) Resume(ctx context.Context) (err error) {
	thread := m.nav.ThreadID()
	ctx, endSpan := otel.StartSpan(m.tracer, ctx, "Resume",
		attribute.String("thread", thread),
	)
	defer func() { endSpan(err) }()

	m.mu.Lock()
	if thread == "" || thread == m.thread || m.active {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	// Fetch metadata and history together
	var conv *schema.Conversation
	var history *schema.ListMessageResponse
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() (err error) {
		conv, err = m.client.GetConversation(ctx, thread)
		return
	})
	group.Go(func() (err error) {
		history, err = m.client.GetConversationHistory(ctx, thread)
		return
	})
	if err := group.Wait(); err != nil {
		m.mu.Lock()
		m.thread = ""
		m.meta = nil
		m.turns = nil
		m.fingerprint = 0
		m.mu.Unlock()
		m.nav.NavigateBase()
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.thread = thread
	m.meta = &conv.ConversationMeta
	m.turns = m.replay(history.Body)

	// The most recent replayed settlement participates in dedupe, so a
	// request that settles again after a resume appends nothing
	m.fingerprint = 0
	if n := len(m.turns); n > 0 && m.turns[n-1].Done && m.turns[n-1].Result != nil {
		if fingerprint, err := hashstructure.Hash(m.turns[n-1].Result, hashstructure.FormatV2, nil); err == nil {
			m.fingerprint = fingerprint
		}
	}
	return nil
}

// Reset clears the thread binding and history. Safe to call repeatedly.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.thread = ""
	m.meta = nil
	m.turns = nil
	m.fingerprint = 0
	m.active = false
}

// ThreadID returns the thread the manager is bound to, or the empty
// string for a conversation that has not started.
func (m *Manager) ThreadID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.thread
}

// Meta returns the stored metadata of a resumed conversation, or nil.
func (m *Manager) Meta() *schema.ConversationMeta {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.meta
}

// Turns returns a copy of the turn history.
func (m *Manager) Turns() []Turn {
	m.mu.Lock()
	defer m.mu.Unlock()
	turns := make([]Turn, len(m.turns))
	copy(turns, m.turns)
	return turns
}

// Active reports whether a request is currently in flight.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// replay pairs stored messages into turns: each user message opens a
// turn and each assistant message settles the open one, or stands alone
// when the history starts mid-conversation. Assistant content is parsed
// through the configured decoder so replayed turns hold results in the
// same shape as freshly settled ones.
func (m *Manager) replay(messages []schema.Message) []Turn {
	var turns []Turn
	for _, message := range messages {
		switch message.Role {
		case schema.RoleUser:
			turns = append(turns, Turn{Prompt: message.Content})
		case schema.RoleAssistant:
			result, err := m.decode(message.Content)
			if err != nil {
				// Show the stored form rather than drop the turn
				m.log.Debug("stored result failed to parse", "thread", m.thread, "error", err)
				result = message.Content
			}
			if n := len(turns); n > 0 && !turns[n-1].Done {
				turns[n-1].Result = result
				turns[n-1].Done = true
			} else {
				turns = append(turns, Turn{Result: result, Done: true})
			}
		}
	}
	return turns
}

// decodeAny parses stored assistant content as generic JSON.
func decodeAny(content string) (any, error) {
	var result any
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, err
	}
	return result, nil
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (t Turn) String() string {
	return schema.Stringify(t)
}
