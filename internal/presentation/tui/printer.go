package tui

import (
	"fmt"
	"io"
	"os"

	"github.com/aretw0/pathflow/internal/script"
	"github.com/aretw0/pathflow/pkg/domain"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Printer renders replay outcomes, colored when the output is a terminal.
type Printer struct {
	w       io.Writer
	profile termenv.Profile
}

// NewPrinter picks colors for w: plain ASCII unless w is a terminal.
func NewPrinter(w io.Writer) *Printer {
	profile := termenv.Ascii
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		profile = termenv.ColorProfile()
	}
	return &Printer{w: w, profile: profile}
}

// NewPrinterWithProfile forces a color profile.
func NewPrinterWithProfile(w io.Writer, p termenv.Profile) *Printer {
	return &Printer{w: w, profile: p}
}

// Banner prints the banner in the printer's profile.
func (p *Printer) Banner() {
	PrintBanner(p.w, p.profile)
}

// Outcome prints one replayed step.
func (p *Printer) Outcome(o script.Outcome) {
	index := p.profile.String(fmt.Sprintf("%3d", o.Index)).Faint()
	action := p.profile.String(o.Action).Bold()

	if o.Err != nil {
		status := p.profile.String("error").Foreground(p.profile.Color("#fb7185"))
		fmt.Fprintf(p.w, "%s %s %s %v\n", index, action, status, o.Err)
		return
	}
	status := p.profile.String(p.label(o.Progress)).Foreground(p.profile.Color(p.color(o.Progress)))
	fmt.Fprintf(p.w, "%s %s %s\n", index, action, status)
}

func (p *Printer) label(progress string) string {
	if progress == "" {
		return "ok"
	}
	return progress
}

func (p *Printer) color(progress string) string {
	switch progress {
	case domain.ProgressHaveDialog.String(), domain.ProgressInstallMouseMode.String():
		return "#fbbf24" // waiting
	case domain.ProgressUserCancel.String():
		return "#a78bfa"
	default:
		return "#34d399"
	}
}

// Summary prints the closing line of a replay.
func (p *Printer) Summary(steps int, err error) {
	if err != nil {
		fmt.Fprintln(p.w, p.profile.String(fmt.Sprintf("replay failed after %d steps: %v", steps, err)).Foreground(p.profile.Color("#fb7185")))
		return
	}
	fmt.Fprintln(p.w, p.profile.String(fmt.Sprintf("replayed %d steps", steps)).Foreground(p.profile.Color("#34d399")))
}
