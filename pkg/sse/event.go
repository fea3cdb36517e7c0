/*
sse decodes the line-framed event stream produced by the generation
service. A response body is a sequence of blocks separated by blank lines,
each block optionally preceded by an "event: <name>" line and containing
"data: <json>" lines. The decoder yields one typed Event per recognized
data line, in stream order.
*/
package sse

import (
	"encoding/json"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Kind discriminates the typed events a stream can carry.
type Kind int

// Event is one decoded stream event. Exactly one of the payload fields is
// meaningful for a given Kind: ThreadID for KindThread, Message for
// KindProgress and KindError, Data for KindComplete.
type Event struct {
	Kind     Kind
	ThreadID string
	Message  string
	Data     json.RawMessage
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	KindThread Kind = iota + 1
	KindProgress
	KindComplete
	KindError
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Json unmarshals the complete-event payload into v.
func (e Event) Json(v any) error {
	return json.Unmarshal(e.Data, v)
}

func (k Kind) String() string {
	switch k {
	case KindThread:
		return "thread_id"
	case KindProgress:
		return "progress"
	case KindComplete:
		return "complete"
	case KindError:
		return "error"
	}
	return "unknown"
}
