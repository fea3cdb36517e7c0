package schema

import "encoding/json"

///////////////////////////////////////////////////////////////////////////////
// SSE EVENT NAMES

const (
	EventThread   = "thread_id" // Server-assigned conversation identifier
	EventProgress = "progress"  // Human-readable progress update
	EventComplete = "complete"  // Final generation result
	EventError    = "error"     // Error during generation
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// ThreadPayload is the data payload of a thread_id event.
type ThreadPayload struct {
	ThreadID string `json:"thread_id"`
}

// ProgressPayload is the data payload of a progress or error event. The
// backend sends either a plain Message, or a MessageKey with optional
// Params for client-side localization.
type ProgressPayload struct {
	Message    string         `json:"message,omitempty"`
	MessageKey string         `json:"message_key,omitempty"`
	Params     map[string]any `json:"params,omitempty"`
}

// localized is the wire form a keyed progress message is folded into.
// The conflation of plain text and localization payloads in a single
// message string is a protocol given; EncodeProgress and DecodeProgress
// are the only two places that know about it.
type localized struct {
	Key    string         `json:"key"`
	Params map[string]any `json:"params,omitempty"`
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// EncodeProgress folds a progress payload into a single message string.
// A plain message passes through unchanged; a message key with parameters
// becomes a JSON-encoded {key, params} structure; a bare message key is
// returned as-is.
func EncodeProgress(p ProgressPayload) string {
	if p.Message != "" {
		return p.Message
	}
	if p.MessageKey != "" && len(p.Params) > 0 {
		if data, err := json.Marshal(localized{Key: p.MessageKey, Params: p.Params}); err == nil {
			return string(data)
		}
	}
	return p.MessageKey
}

// DecodeProgress splits a progress message back into its parts. If the
// message is a JSON-encoded {key, params} structure, the key and params
// are returned; otherwise the message is plain text.
func DecodeProgress(message string) (text string, key string, params map[string]any) {
	var l localized
	if err := json.Unmarshal([]byte(message), &l); err == nil && l.Key != "" {
		return "", l.Key, l.Params
	}
	return message, "", nil
}
