package schema

import "time"

////////////////////////////////////////////////////////////////////////////////
// TYPES

// ConversationMeta is the client-supplied metadata for a conversation:
// which generation endpoint it belongs to and the form fields that were
// set when the conversation started.
type ConversationMeta struct {
	Title    string            `json:"title,omitempty" yaml:"title,omitempty"`
	Endpoint string            `json:"endpoint" yaml:"endpoint"`
	Fields   map[string]string `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Conversation is a server-side record of a generation thread.
type Conversation struct {
	ID string `json:"id"`
	ConversationMeta
	Created  time.Time `json:"created_at,omitzero"`
	Modified time.Time `json:"updated_at,omitzero"`
}

// Message is one stored entry of a conversation history. Assistant
// messages carry the JSON-encoded generation result as their content.
type Message struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	Created time.Time `json:"created_at,omitzero"`
}

// ListConversationResponse is the response to GET /conversations.
type ListConversationResponse struct {
	Count uint64         `json:"count"`
	Body  []Conversation `json:"body"`
}

// ListMessageResponse is the response to GET /conversations/{id}/history.
type ListMessageResponse struct {
	Count uint64    `json:"count"`
	Body  []Message `json:"body"`
}

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

////////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (c Conversation) String() string {
	return Stringify(c)
}

func (m Message) String() string {
	return Stringify(m)
}
