package httpclient_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	// Packages
	credential "github.com/mutablelogic/go-eduplan/pkg/credential"
	httpclient "github.com/mutablelogic/go-eduplan/pkg/httpclient"
	schema "github.com/mutablelogic/go-eduplan/pkg/schema"
	sse "github.com/mutablelogic/go-eduplan/pkg/sse"
	httpresponse "github.com/mutablelogic/go-server/pkg/httpresponse"
	assert "github.com/stretchr/testify/assert"
)

///////////////////////////////////////////////////////////////////////////////
// HELPERS

// newStreamServer mimics a generation endpoint: it parses the multipart
// form and replies with an event stream echoing what it received.
func newStreamServer(t *testing.T) *httptest.Server {
	t.Helper()
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
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("event: thread_id\ndata: {\"thread_id\":\"" + thread + "\"}\n\n"))
		_, _ = w.Write([]byte("event: progress\ndata: {\"message\":\"outlining " + r.FormValue("subject") + "\"}\n\n"))
		_, _ = w.Write([]byte("event: complete\ndata: {\"title\":\"" + r.FormValue("message") + "\",\"sections\":[]}\n\n"))
	})
	mux.HandleFunc("POST /lesson", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "generation backend unavailable", http.StatusBadGateway)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func collectEvents(t *testing.T, c *httpclient.Client, endpoint string, req schema.GenerateRequest) ([]sse.Event, error) {
	t.Helper()
	var events []sse.Event
	err := c.GenerateStream(context.TODO(), endpoint, req, nil, func(evt sse.Event) error {
		events = append(events, evt)
		return nil
	})
	return events, err
}

///////////////////////////////////////////////////////////////////////////////
// TESTS

func Test_generate_001(t *testing.T) {
	assert := assert.New(t)
	srv := newStreamServer(t)
	c, err := httpclient.New(srv.URL, credential.NewStore())
	assert.NoError(err)

	events, err := collectEvents(t, c, schema.EndpointOutline, schema.GenerateRequest{
		Message: "Intro to Go",
		Fields:  map[string]string{"subject": "programming"},
	})
	assert.NoError(err)
	assert.Len(events, 3)
	assert.Equal(sse.KindThread, events[0].Kind)
	assert.Equal("T1", events[0].ThreadID)
	assert.Equal(sse.KindProgress, events[1].Kind)
	assert.Equal("outlining programming", events[1].Message)
	assert.Equal(sse.KindComplete, events[2].Kind)

	var outline schema.CourseOutline
	assert.NoError(events[2].Json(&outline))
	assert.Equal("Intro to Go", outline.Title)
}

func Test_generate_002(t *testing.T) {
	// An established thread identifier is carried in the form
	assert := assert.New(t)
	srv := newStreamServer(t)
	c, err := httpclient.New(srv.URL, credential.NewStore())
	assert.NoError(err)

	events, err := collectEvents(t, c, schema.EndpointOutline, schema.GenerateRequest{
		Message:  "Follow-up",
		ThreadID: "T42",
	})
	assert.NoError(err)
	assert.NotEmpty(events)
	assert.Equal("T42", events[0].ThreadID)
}

func Test_generate_003(t *testing.T) {
	// A non-OK response surfaces as an HTTP error, not a stream
	assert := assert.New(t)
	srv := newStreamServer(t)
	c, err := httpclient.New(srv.URL, credential.NewStore())
	assert.NoError(err)

	events, err := collectEvents(t, c, schema.EndpointLesson, schema.GenerateRequest{Message: "x"})
	assert.Error(err)
	assert.Empty(events)
	var httpErr httpresponse.Err
	if assert.True(errors.As(err, &httpErr)) {
		assert.Equal(http.StatusBadGateway, int(httpErr))
	}
}

func Test_generate_004(t *testing.T) {
	// A callback error aborts decoding and is returned to the caller
	assert := assert.New(t)
	srv := newStreamServer(t)
	c, err := httpclient.New(srv.URL, credential.NewStore())
	assert.NoError(err)

	stop := errors.New("stop")
	err = c.GenerateStream(context.TODO(), schema.EndpointOutline, schema.GenerateRequest{Message: "x"}, nil, func(evt sse.Event) error {
		return stop
	})
	assert.ErrorIs(err, stop)
}

func Test_generate_005(t *testing.T) {
	// The buffered multipart body replays after a credential refresh
	assert := assert.New(t)
	srv := newAuthServer(t)
	var attempts int
	srv.Config.Handler.(*http.ServeMux).HandleFunc("POST /slides", func(w http.ResponseWriter, r *http.Request) {
		srv.mu.Lock()
		valid := srv.valid
		attempts++
		srv.mu.Unlock()
		if r.Header.Get("Authorization") != "Bearer "+valid {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("event: complete\ndata: {\"title\":\"" + r.FormValue("message") + "\"}\n\n"))
	})

	c, store := newTestClient(t, srv)
	_, err := c.Login(context.TODO(), schema.LoginRequest{Email: "a@b.c", Password: "pw"})
	assert.NoError(err)
	store.Set("token-stale")

	events, err := collectEvents(t, c, schema.EndpointSlides, schema.GenerateRequest{Message: "Photosynthesis"})
	assert.NoError(err)
	assert.Len(events, 1)
	assert.Equal(sse.KindComplete, events[0].Kind)
	assert.Equal(2, attempts)
	assert.Equal(1, srv.refreshes)
}

func Test_generate_006(t *testing.T) {
	assert := assert.New(t)
	srv := newStreamServer(t)
	c, err := httpclient.New(srv.URL, credential.NewStore())
	assert.NoError(err)

	// File uploads travel in the files form field
	mux := srv.Config.Handler.(*http.ServeMux)
	mux.HandleFunc("POST /assessment", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if r.MultipartForm == nil || len(r.MultipartForm.File["files"]) != 1 {
			http.Error(w, "expected one file", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("event: complete\ndata: {\"title\":\"ok\"}\n\n"))
	})

	files := []httpclient.File{{Name: "notes.txt", Body: strings.NewReader("chapter notes")}}
	var events []sse.Event
	err = c.GenerateStream(context.TODO(), schema.EndpointAssessment, schema.GenerateRequest{Message: "quiz"}, files, func(evt sse.Event) error {
		events = append(events, evt)
		return nil
	})
	assert.NoError(err)
	assert.Len(events, 1)
}
