package sse

import (
	"encoding/json"
	"io"
	"log/slog"
	"strings"

	// Packages
	schema "github.com/mutablelogic/go-eduplan/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Decoder incrementally decodes typed events out of a byte stream. It is
// a single-use forward iterator: call Next until it returns io.EOF. The
// decoded event sequence is independent of how the underlying reader
// chunks its bytes; a partial trailing line is buffered until the bytes
// completing it arrive.
type Decoder struct {
	r     io.Reader
	chunk []byte
	rest  string   // retained partial line
	lines []string // complete lines awaiting processing
	event string   // current event name, reset by blank lines
	eof   bool
	log   *slog.Logger
}

// Opt is a functional option for the decoder.
type Opt func(*Decoder)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	eventPrefix = "event:"
	dataPrefix  = "data:"
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewDecoder creates a decoder reading from r.
func NewDecoder(r io.Reader, opts ...Opt) *Decoder {
	d := &Decoder{
		r:     r,
		chunk: make([]byte, 4096),
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// WithLogger sets the logger used to report skipped malformed payloads.
func WithLogger(log *slog.Logger) Opt {
	return func(d *Decoder) {
		if log != nil {
			d.log = log
		}
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Next returns the next event in the stream, or io.EOF once the source
// is exhausted. Malformed data payloads are skipped, not surfaced as
// errors; any other error is a transport failure from the underlying
// reader.
func (d *Decoder) Next() (*Event, error) {
	for {
		// Drain buffered complete lines first
		for len(d.lines) > 0 {
			line := d.lines[0]
			d.lines = d.lines[1:]
			if evt := d.process(line); evt != nil {
				return evt, nil
			}
		}

		if d.eof {
			// The source has completed, so a trailing unterminated
			// line is complete and processed as-is.
			if d.rest != "" {
				line := d.rest
				d.rest = ""
				if evt := d.process(line); evt != nil {
					return evt, nil
				}
				continue
			}
			return nil, io.EOF
		}

		// Read the next chunk and split out complete lines, retaining
		// the final fragment for the next read.
		n, err := d.r.Read(d.chunk)
		if n > 0 {
			parts := strings.Split(d.rest+string(d.chunk[:n]), "\n")
			d.rest = parts[len(parts)-1]
			d.lines = append(d.lines, parts[:len(parts)-1]...)
		}
		if err == io.EOF {
			d.eof = true
		} else if err != nil {
			return nil, err
		}
	}
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// process handles one complete line, returning a typed event if the line
// completes one.
func (d *Decoder) process(line string) *Event {
	line = strings.TrimSuffix(line, "\r")
	switch {
	case line == "":
		// A blank line is a record separator
		d.event = ""
	case strings.HasPrefix(line, eventPrefix):
		d.event = strings.TrimSpace(line[len(eventPrefix):])
	case strings.HasPrefix(line, dataPrefix):
		// An event name applies to exactly one data line
		name := d.event
		d.event = ""
		return d.dispatch(name, strings.TrimSpace(line[len(dataPrefix):]))
	}
	return nil
}

// dispatch parses a data payload according to the current event name.
// Malformed payloads are logged and skipped so decoding continues.
func (d *Decoder) dispatch(name, data string) *Event {
	switch name {
	case schema.EventThread:
		var payload schema.ThreadPayload
		if err := json.Unmarshal([]byte(data), &payload); err != nil {
			d.log.Debug("sse: skipping malformed thread_id payload", "err", err)
		} else if payload.ThreadID != "" {
			return &Event{Kind: KindThread, ThreadID: payload.ThreadID}
		}
	case schema.EventProgress:
		var payload schema.ProgressPayload
		if err := json.Unmarshal([]byte(data), &payload); err != nil {
			d.log.Debug("sse: skipping malformed progress payload", "err", err)
		} else {
			return &Event{Kind: KindProgress, Message: schema.EncodeProgress(payload)}
		}
	case schema.EventComplete:
		if !json.Valid([]byte(data)) {
			d.log.Debug("sse: skipping malformed complete payload")
		} else {
			return &Event{Kind: KindComplete, Data: json.RawMessage(data)}
		}
	case schema.EventError:
		var payload schema.ProgressPayload
		if err := json.Unmarshal([]byte(data), &payload); err != nil {
			d.log.Debug("sse: skipping malformed error payload", "err", err)
		} else {
			return &Event{Kind: KindError, Message: schema.EncodeProgress(payload)}
		}
	default:
		// Data line with no recognized event name
		d.log.Debug("sse: ignoring data for unknown event", "event", name)
	}
	return nil
}
