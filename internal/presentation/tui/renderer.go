package tui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

const defaultWidth = 80

// Renderer turns markdown into terminal output.
type Renderer func(markdown string) (string, error)

// NewRenderer returns a glamour renderer sized to out when out is a
// terminal, and a pass-through renderer otherwise so piped output stays
// plain markdown.
func NewRenderer(out *os.File) Renderer {
	fd := int(out.Fd())
	if !term.IsTerminal(fd) {
		return Plain
	}

	width := defaultWidth
	if w, _, err := term.GetSize(fd); err == nil && w > 0 && w < width {
		width = w
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return Plain
	}
	return r.Render
}

// Plain returns markdown unchanged.
func Plain(markdown string) (string, error) {
	return markdown, nil
}
