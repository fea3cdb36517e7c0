package table

import (
	// Packages
	schema "github.com/mutablelogic/go-eduplan/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Conversations renders a conversation listing as a table.
type Conversations []schema.Conversation

var _ TableData = Conversations(nil)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (c Conversations) Header() []string {
	return []string{"ID", "Title", "Endpoint", "Updated"}
}

func (c Conversations) Len() int {
	return len(c)
}

func (c Conversations) Row(i int) []any {
	conv := c[i]
	return []any{
		Bold{conv.ID},
		Truncate(conv.Title, 48),
		conv.Endpoint,
		conv.Modified,
	}
}
