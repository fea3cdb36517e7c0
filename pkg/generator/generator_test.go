package generator_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	// Packages
	credential "github.com/mutablelogic/go-eduplan/pkg/credential"
	generator "github.com/mutablelogic/go-eduplan/pkg/generator"
	httpclient "github.com/mutablelogic/go-eduplan/pkg/httpclient"
	schema "github.com/mutablelogic/go-eduplan/pkg/schema"
	assert "github.com/stretchr/testify/assert"
)

///////////////////////////////////////////////////////////////////////////////
// HELPERS

// genServer serves the outline endpoint with behavior keyed on the
// prompt: "slow" holds the stream open after the thread event until
// released, "fail" emits an error event, "silent" emits progress but
// never settles, anything else completes normally.
type genServer struct {
	*httptest.Server

	mu      sync.Mutex
	threads []string
	release chan struct{}
	held    chan struct{}
}

func newGenServer(t *testing.T) *genServer {
	t.Helper()
	srv := &genServer{
		release: make(chan struct{}),
		held:    make(chan struct{}, 1),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /outline", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		thread := r.FormValue("thread_id")
		if thread == "" {
			thread = "T1"
		}
		srv.mu.Lock()
		srv.threads = append(srv.threads, r.FormValue("thread_id"))
		srv.mu.Unlock()

		w.Header().Set("Content-Type", "text/event-stream")
		flush := func() {
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
		write := func(event, data string) {
			_, _ = w.Write([]byte("event: " + event + "\ndata: " + data + "\n\n"))
			flush()
		}
		write("thread_id", `{"thread_id":"`+thread+`"}`)
		switch r.FormValue("message") {
		case "slow":
			srv.held <- struct{}{}
			select {
			case <-srv.release:
			case <-r.Context().Done():
			}
		case "fail":
			write("error", `{"message":"model overloaded"}`)
		case "silent":
			write("progress", `{"message":"thinking"}`)
		default:
			write("progress", `{"message":"outlining"}`)
			write("complete", `{"title":"`+r.FormValue("message")+`","sections":[]}`)
		}
	})
	srv.Server = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newOutlineGenerator(t *testing.T, srv *genServer, opt ...generator.Opt) *generator.Generator[schema.CourseOutline] {
	t.Helper()
	c, err := httpclient.New(srv.URL, credential.NewStore())
	if err != nil {
		t.Fatal(err)
	}
	g, err := generator.New[schema.CourseOutline](c, schema.EndpointOutline, opt...)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

// waitThread polls until the generator has adopted the given thread,
// since the stream is consumed concurrently with the test body.
func waitThread(t *testing.T, g *generator.Generator[schema.CourseOutline], thread string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for g.ThreadID() != thread {
		if time.Now().After(deadline) {
			t.Fatal("thread never adopted")
		}
		time.Sleep(time.Millisecond)
	}
}

///////////////////////////////////////////////////////////////////////////////
// TESTS

func Test_generator_001(t *testing.T) {
	// A stream that settles with a completion yields the decoded result
	assert := assert.New(t)
	srv := newGenServer(t)

	var announced []string
	g := newOutlineGenerator(t, srv, generator.WithOnThread(func(thread string) {
		announced = append(announced, thread)
	}))
	assert.Equal(generator.Idle, g.State())

	result, err := g.Send(context.TODO(), schema.GenerateRequest{Message: "Intro to Go"})
	assert.NoError(err)
	if assert.NotNil(result) {
		assert.Equal("Intro to Go", result.Title)
	}
	assert.Equal(generator.Complete, g.State())
	assert.Equal("T1", g.ThreadID())
	assert.Equal("outlining", g.Progress())
	assert.NoError(g.Err())
	assert.Equal([]string{"T1"}, announced)
	assert.Same(result, g.Result())
}

func Test_generator_002(t *testing.T) {
	// A follow-up prompt carries the thread of the previous one
	assert := assert.New(t)
	srv := newGenServer(t)
	g := newOutlineGenerator(t, srv)

	_, err := g.Send(context.TODO(), schema.GenerateRequest{Message: "first"})
	assert.NoError(err)
	_, err = g.Send(context.TODO(), schema.GenerateRequest{Message: "second"})
	assert.NoError(err)

	srv.mu.Lock()
	defer srv.mu.Unlock()
	assert.Equal([]string{"", "T1"}, srv.threads)
}

func Test_generator_003(t *testing.T) {
	// An error event settles the request with a server error
	assert := assert.New(t)
	srv := newGenServer(t)
	g := newOutlineGenerator(t, srv)

	result, err := g.Send(context.TODO(), schema.GenerateRequest{Message: "fail"})
	assert.Nil(result)
	var serverErr *generator.ServerError
	if assert.ErrorAs(err, &serverErr) {
		assert.Equal("model overloaded", serverErr.Message)
	}
	assert.Equal(generator.Idle, g.State())
	assert.Error(g.Err())
}

func Test_generator_004(t *testing.T) {
	// A stream that ends without a terminal event settles as complete
	// with no result, rather than reporting a failure
	assert := assert.New(t)
	srv := newGenServer(t)
	g := newOutlineGenerator(t, srv)

	result, err := g.Send(context.TODO(), schema.GenerateRequest{Message: "silent"})
	assert.NoError(err)
	assert.Nil(result)
	assert.Equal(generator.Complete, g.State())
	assert.Nil(g.Result())
	assert.NoError(g.Err())
}

func Test_generator_005(t *testing.T) {
	// A second Send supersedes the first: the first settles with neither
	// result nor error, the second settles normally
	assert := assert.New(t)
	srv := newGenServer(t)
	g := newOutlineGenerator(t, srv)

	var wg sync.WaitGroup
	var firstResult *schema.CourseOutline
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		firstResult, firstErr = g.Send(context.TODO(), schema.GenerateRequest{Message: "slow"})
	}()

	// Wait until the first request is streaming, then supersede it
	select {
	case <-srv.held:
	case <-time.After(5 * time.Second):
		t.Fatal("first request never reached the server")
	}
	result, err := g.Send(context.TODO(), schema.GenerateRequest{Message: "winner"})
	assert.NoError(err)
	if assert.NotNil(result) {
		assert.Equal("winner", result.Title)
	}

	wg.Wait()
	assert.Nil(firstResult)
	assert.NoError(firstErr)
	assert.Equal(generator.Complete, g.State())
	assert.Equal("winner", g.Result().Title)
}

func Test_generator_006(t *testing.T) {
	// Abort cancels an in-flight request but keeps the thread
	assert := assert.New(t)
	srv := newGenServer(t)
	g := newOutlineGenerator(t, srv)

	var wg sync.WaitGroup
	var result *schema.CourseOutline
	var err error
	wg.Add(1)
	go func() {
		defer wg.Done()
		result, err = g.Send(context.TODO(), schema.GenerateRequest{Message: "slow"})
	}()
	select {
	case <-srv.held:
	case <-time.After(5 * time.Second):
		t.Fatal("request never reached the server")
	}
	waitThread(t, g, "T1")
	g.Abort()
	wg.Wait()

	assert.Nil(result)
	assert.NoError(err)
	assert.Equal(generator.Idle, g.State())
	assert.Equal("T1", g.ThreadID())
}

func Test_generator_007(t *testing.T) {
	// Reset detaches the thread and is safe to call repeatedly
	assert := assert.New(t)
	srv := newGenServer(t)
	g := newOutlineGenerator(t, srv)

	_, err := g.Send(context.TODO(), schema.GenerateRequest{Message: "hello"})
	assert.NoError(err)
	assert.Equal("T1", g.ThreadID())

	g.Reset()
	g.Reset()
	assert.Equal(generator.Idle, g.State())
	assert.Equal("", g.ThreadID())
	assert.Nil(g.Result())
	assert.NoError(g.Err())
}

func Test_generator_008(t *testing.T) {
	// Constructor validation
	assert := assert.New(t)
	srv := newGenServer(t)
	c, err := httpclient.New(srv.URL, credential.NewStore())
	assert.NoError(err)

	_, err = generator.New[schema.CourseOutline](nil, schema.EndpointOutline)
	assert.Error(err)
	_, err = generator.New[schema.CourseOutline](c, "")
	assert.Error(err)
}
