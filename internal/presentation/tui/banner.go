package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the pathflow banner to w.
func PrintBanner(w io.Writer, p termenv.Profile) {
	lines := []struct {
		text  string
		color string
	}{
		{"              _   _      __ _               ", "#818cf8"},
		{"  _ __   __ _| |_| |__  / _| | _____      __", "#a78bfa"},
		{" | '_ \\ / _` | __| '_ \\| |_| |/ _ \\ \\ /\\ / /", "#c084fc"},
		{" | |_) | (_| | |_| | | |  _| | (_) \\ V  V / ", "#e879f9"},
		{" | .__/ \\__,_|\\__|_| |_|_| |_|\\___/ \\_/\\_/  ", "#f472b6"},
		{" |_|                                        ", "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
