// Package table renders tabular data to the terminal with lipgloss.
// Data sources implement TableData instead of assembling lipgloss
// tables themselves.
package table

import (
	"fmt"
	"os"
	"strings"
	"time"

	// Packages
	lipgloss "github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	term "golang.org/x/term"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// TableData is the interface that data sources implement to be rendered
// as a terminal table.
type TableData interface {
	// Header returns the column header labels.
	Header() []string

	// Len returns the number of rows.
	Len() int

	// Row returns the cell values for row i. Values are converted to
	// strings via FormatCell. Return nil to skip a row.
	// Wrap a value in Bold{} to render it in bold.
	Row(i int) []any
}

// Bold wraps a cell value so that FormatCell renders it highlighted.
type Bold struct{ Value any }

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

// Placeholder for cells with nothing to show
const empty = "-"

// Timestamps are rendered to minute precision
const timeFormat = "2006-01-02 15:04"

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "4", Dark: "12"})
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "3", Dark: "11"})
	borderStyle = lipgloss.NewStyle().Faint(true)
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Render renders the table data as a string suitable for terminal
// output, constrained to the terminal width when the natural layout
// would overflow it.
func Render(data TableData) string {
	t := lgtable.New().
		Headers(data.Header()...).
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Wrap(true).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == lgtable.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle()
		})

	for i := range data.Len() {
		values := data.Row(i)
		if values == nil {
			continue
		}
		cells := make([]string, 0, len(values))
		for _, value := range values {
			cells = append(cells, FormatCell(value))
		}
		t.Row(cells...)
	}

	result := t.Render()
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		if lipgloss.Width(result) > width {
			result = t.Width(width).Render()
		}
	}
	return result
}

///////////////////////////////////////////////////////////////////////////////
// HELPERS

// Truncate shortens s to max runes, collapsing newlines and appending
// an ellipsis when anything was cut.
func Truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

// FormatCell converts a value to a display string for a table cell.
// Nil and zero values render as a placeholder, timestamps are formatted
// to minute precision, and Bold values are highlighted.
func FormatCell(v any) string {
	switch value := v.(type) {
	case nil:
		return empty
	case Bold:
		return accentStyle.Render(FormatCell(value.Value))
	case time.Time:
		if value.IsZero() {
			return empty
		}
		return value.Format(timeFormat)
	case string:
		return orPlaceholder(value)
	case int:
		if value == 0 {
			return empty
		}
		return fmt.Sprint(value)
	case uint:
		if value == 0 {
			return empty
		}
		return fmt.Sprint(value)
	default:
		return orPlaceholder(fmt.Sprint(value))
	}
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func orPlaceholder(s string) string {
	if s == "" {
		return empty
	}
	return s
}
