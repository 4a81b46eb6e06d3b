package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the nexi banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"  _ __   _____  _(_)", "#34d399"},
		{" | '_ \\ / _ \\ \\/ / |", "#2dd4bf"},
		{" | | | |  __/>  <| |", "#22d3ee"},
		{" |_| |_|\\___/_/\\_\\_|", "#38bdf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  sourcing intake "+version).Faint())
	fmt.Fprintln(w)
}
