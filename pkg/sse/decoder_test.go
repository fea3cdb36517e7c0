package sse_test

import (
	"io"
	"strings"
	"testing"

	// Packages
	sse "github.com/mutablelogic/go-eduplan/pkg/sse"
	assert "github.com/stretchr/testify/assert"
)

///////////////////////////////////////////////////////////////////////////////
// HELPERS

// chunkReader yields at most size bytes per Read call, to exercise
// arbitrary chunk boundaries.
type chunkReader struct {
	data []byte
	size int
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	n := r.size
	if n > len(r.data) {
		n = len(r.data)
	}
	if n > len(p) {
		n = len(p)
	}
	copy(p, r.data[:n])
	r.data = r.data[n:]
	return n, nil
}

// decodeAll drains a decoder into a slice of events.
func decodeAll(t *testing.T, r io.Reader) []sse.Event {
	t.Helper()
	decoder := sse.NewDecoder(r)
	var events []sse.Event
	for {
		evt, err := decoder.Next()
		if err == io.EOF {
			return events
		}
		if err != nil {
			t.Fatalf("unexpected decode error: %v", err)
		}
		events = append(events, *evt)
	}
}

const wellFormed = "event: thread_id\n" +
	"data: {\"thread_id\":\"T1\"}\n" +
	"\n" +
	"event: progress\n" +
	"data: {\"message\":\"working\"}\n" +
	"\n" +
	"event: complete\n" +
	"data: {\"x\":1}\n" +
	"\n"

///////////////////////////////////////////////////////////////////////////////
// TESTS

func Test_decoder_001(t *testing.T) {
	assert := assert.New(t)
	stream := "event: thread_id\ndata: {\"thread_id\":\"T1\"}\n\nevent: complete\ndata: {\"x\":1}\n"
	events := decodeAll(t, strings.NewReader(stream))
	assert.Len(events, 2)
	assert.Equal(sse.KindThread, events[0].Kind)
	assert.Equal("T1", events[0].ThreadID)
	assert.Equal(sse.KindComplete, events[1].Kind)
	assert.JSONEq(`{"x":1}`, string(events[1].Data))
}

func Test_decoder_002(t *testing.T) {
	// Chunking must not affect the decoded event sequence
	assert := assert.New(t)
	want := decodeAll(t, strings.NewReader(wellFormed))
	assert.Len(want, 3)
	for size := 1; size <= len(wellFormed); size++ {
		got := decodeAll(t, &chunkReader{data: []byte(wellFormed), size: size})
		assert.Equal(want, got, "chunk size %d", size)
	}
}

func Test_decoder_003(t *testing.T) {
	// Malformed data payloads are skipped, later events still decode
	assert := assert.New(t)
	stream := "event: progress\n" +
		"data: {not json}\n" +
		"\n" +
		"event: complete\n" +
		"data: {\"done\":true}\n"
	events := decodeAll(t, strings.NewReader(stream))
	assert.Len(events, 1)
	assert.Equal(sse.KindComplete, events[0].Kind)
}

func Test_decoder_004(t *testing.T) {
	// An event name applies to exactly one data line
	assert := assert.New(t)
	stream := "event: progress\n" +
		"data: {\"message\":\"first\"}\n" +
		"data: {\"message\":\"second\"}\n"
	events := decodeAll(t, strings.NewReader(stream))
	assert.Len(events, 1)
	assert.Equal("first", events[0].Message)
}

func Test_decoder_005(t *testing.T) {
	// A blank line resets the event name, orphan data is ignored
	assert := assert.New(t)
	stream := "event: progress\n" +
		"\n" +
		"data: {\"message\":\"orphan\"}\n"
	events := decodeAll(t, strings.NewReader(stream))
	assert.Empty(events)
}

func Test_decoder_006(t *testing.T) {
	// CRLF line endings decode the same as LF
	assert := assert.New(t)
	crlf := strings.ReplaceAll(wellFormed, "\n", "\r\n")
	assert.Equal(decodeAll(t, strings.NewReader(wellFormed)), decodeAll(t, strings.NewReader(crlf)))
}

func Test_decoder_007(t *testing.T) {
	// A trailing line without a newline is processed at EOF
	assert := assert.New(t)
	stream := "event: complete\ndata: {\"x\":2}"
	events := decodeAll(t, strings.NewReader(stream))
	assert.Len(events, 1)
	assert.Equal(sse.KindComplete, events[0].Kind)
}

func Test_decoder_008(t *testing.T) {
	// A thread_id payload without a thread identifier emits nothing
	assert := assert.New(t)
	stream := "event: thread_id\ndata: {}\n"
	assert.Empty(decodeAll(t, strings.NewReader(stream)))
}

func Test_decoder_009(t *testing.T) {
	// Keyed progress with params is folded into a {key, params} message
	assert := assert.New(t)
	stream := "event: progress\ndata: {\"message_key\":\"progress.slides\",\"params\":{\"n\":3}}\n"
	events := decodeAll(t, strings.NewReader(stream))
	assert.Len(events, 1)
	assert.Equal(sse.KindProgress, events[0].Kind)
	assert.JSONEq(`{"key":"progress.slides","params":{"n":3}}`, events[0].Message)
}

func Test_decoder_010(t *testing.T) {
	// Error events carry a message and decode in order
	assert := assert.New(t)
	stream := "event: progress\ndata: {\"message\":\"working\"}\n\nevent: error\ndata: {\"message\":\"boom\"}\n"
	events := decodeAll(t, strings.NewReader(stream))
	assert.Len(events, 2)
	assert.Equal(sse.KindError, events[1].Kind)
	assert.Equal("boom", events[1].Message)
}

func Test_decoder_011(t *testing.T) {
	// Data lines under an unknown event name are ignored
	assert := assert.New(t)
	stream := "event: usage\ndata: {\"tokens\":5}\n\nevent: complete\ndata: {}\n"
	events := decodeAll(t, strings.NewReader(stream))
	assert.Len(events, 1)
	assert.Equal(sse.KindComplete, events[0].Kind)
}
