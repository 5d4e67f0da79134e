// Package ui renders agent output to the terminal. Wrapping here is
// purely presentational: callers persist and forward unwrapped text.
package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

// DefaultWidth is the display width used when none is configured.
const DefaultWidth = 100

// Presenter writes styled output streams.
type Presenter struct {
	out   io.Writer
	err   io.Writer
	width int

	statusStyle lipgloss.Style
	errorStyle  lipgloss.Style
	noticeStyle lipgloss.Style
}

// NewPresenter creates a Presenter writing answers to out and
// diagnostics to errOut.
func NewPresenter(out, errOut io.Writer, width int) *Presenter {
	if width <= 0 {
		width = DefaultWidth
	}
	return &Presenter{
		out:         out,
		err:         errOut,
		width:       width,
		statusStyle: lipgloss.NewStyle().Faint(true),
		errorStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		noticeStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	}
}

// Answer prints the final text reflowed to the display width without
// breaking words mid-token.
func (p *Presenter) Answer(text string) {
	fmt.Fprintln(p.out, Wrap(text, p.width))
}

// Status prints a faint progress line to the diagnostic stream.
func (p *Presenter) Status(msg string) {
	fmt.Fprintln(p.err, p.statusStyle.Render(msg))
}

// Notice prints a highlighted non-error outcome, like iteration
// exhaustion.
func (p *Presenter) Notice(msg string) {
	fmt.Fprintln(p.out, p.noticeStyle.Render(msg))
}

// Error prints a failure line to the diagnostic stream.
func (p *Presenter) Error(msg string) {
	fmt.Fprintln(p.err, p.errorStyle.Render("error: "+msg))
}

// Wrap reflows text to at most width columns, keeping words intact.
func Wrap(text string, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	return wordwrap.String(text, width)
}
