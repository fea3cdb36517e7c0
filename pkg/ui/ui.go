/*
Package ui renders generated content, progress and errors to a
terminal. Markdown output is rendered through glamour when writing to a
terminal and falls back to word-wrapped plain text when the output is
redirected.
*/
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	// Packages
	glamour "github.com/charmbracelet/glamour"
	lipgloss "github.com/charmbracelet/lipgloss"
	wordwrap "github.com/muesli/reflow/wordwrap"
	termenv "github.com/muesli/termenv"
	term "golang.org/x/term"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Display writes rendered output to a terminal or plain writer.
type Display struct {
	out      io.Writer
	renderer *glamour.TermRenderer
	width    int
	tty      bool
}

///////////////////////////////////////////////////////////////////////////////
// STYLES

var (
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	progressStyle = lipgloss.NewStyle().Faint(true)
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const defaultWidth = 100

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New creates a display for the file. When the file is a terminal
// the background is probed once up front so glamour picks a legible
// style, and output is wrapped to the terminal width.
func New(out *os.File) *Display {
	d := &Display{
		out:   out,
		width: defaultWidth,
	}
	if !term.IsTerminal(int(out.Fd())) {
		return d
	}
	d.tty = true
	if w, _, err := term.GetSize(int(out.Fd())); err == nil && w > 0 {
		d.width = w
	}

	stylePath := "dark"
	if !termenv.HasDarkBackground() {
		stylePath = "light"
	}
	if renderer, err := glamour.NewTermRenderer(
		glamour.WithStylePath(stylePath),
		glamour.WithWordWrap(d.width),
	); err == nil {
		d.renderer = renderer
	}
	return d
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Markdown renders markdown to the display.
func (d *Display) Markdown(text string) error {
	if d.renderer != nil {
		if rendered, err := d.renderer.Render(text); err == nil {
			_, err = fmt.Fprintln(d.out, strings.TrimRight(rendered, "\n"))
			return err
		}
	}
	_, err := fmt.Fprintln(d.out, wordwrap.String(text, d.width))
	return err
}

// Printf writes formatted plain text.
func (d *Display) Printf(format string, args ...any) {
	fmt.Fprintf(d.out, format, args...)
}

// Println writes a plain line.
func (d *Display) Println(args ...any) {
	fmt.Fprintln(d.out, args...)
}

// Progress overwrites the current line with a transient status message.
// On a non-terminal writer each message is its own line.
func (d *Display) Progress(message string) {
	if message == "" {
		return
	}
	if d.tty {
		fmt.Fprint(d.out, "\r\033[K"+progressStyle.Render(message))
	} else {
		fmt.Fprintln(d.out, message)
	}
}

// ProgressDone clears the transient status line.
func (d *Display) ProgressDone() {
	if d.tty {
		fmt.Fprint(d.out, "\r\033[K")
	}
}

// Error writes an error message in the error style.
func (d *Display) Error(err error) {
	if err == nil {
		return
	}
	if d.tty {
		fmt.Fprintln(d.out, errorStyle.Render(err.Error()))
	} else {
		fmt.Fprintln(d.out, err.Error())
	}
}

// Width returns the wrap width of the display.
func (d *Display) Width() int {
	return d.width
}
