package table_test

import (
	"strings"
	"testing"
	"time"

	// Packages
	schema "github.com/mutablelogic/go-eduplan/pkg/schema"
	table "github.com/mutablelogic/go-eduplan/pkg/ui/table"
	assert "github.com/stretchr/testify/assert"
)

///////////////////////////////////////////////////////////////////////////////
// TESTS

func Test_table_001(t *testing.T) {
	assert := assert.New(t)
	data := table.Conversations{
		{
			ID: "C1",
			ConversationMeta: schema.ConversationMeta{
				Title:    "Photosynthesis for grade 8",
				Endpoint: schema.EndpointOutline,
			},
			Modified: time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC),
		},
		{
			ID: "C2",
			ConversationMeta: schema.ConversationMeta{
				Endpoint: schema.EndpointLesson,
			},
		},
	}

	out := table.Render(data)
	assert.Contains(out, "C1")
	assert.Contains(out, "Photosynthesis for grade 8")
	assert.Contains(out, "2026-08-01 09:30")
	// Missing title and zero time render as placeholders
	assert.Contains(out, "-")
}

func Test_table_002(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("short", table.Truncate("short", 10))
	assert.Equal("one two t…", table.Truncate("one two three", 10))
	assert.Equal("a b", table.Truncate("a\nb", 10))
	assert.False(strings.Contains(table.Truncate("a\nb", 10), "\n"))
}

func Test_table_003(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("-", table.FormatCell(nil))
	assert.Equal("-", table.FormatCell(""))
	assert.Equal("-", table.FormatCell(time.Time{}))
	assert.Equal("42", table.FormatCell(42))
}
