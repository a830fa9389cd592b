package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/quantmind-br/pkgpurge/internal/core"
)

// Color scheme for pkgpurge
var (
	Success = color.New(color.FgGreen)
	Error   = color.New(color.FgRed, color.Bold)
	Warning = color.New(color.FgYellow)
	Info    = color.New(color.FgCyan)

	Highlight = color.New(color.FgHiCyan, color.Bold)
	Muted     = color.New(color.Faint)
	Bold      = color.New(color.Bold)
)

// InitColors configures color output from the logging.color setting and
// the environment. mode is one of auto, always, never.
func InitColors(mode string) {
	switch mode {
	case "always":
		color.NoColor = false
	case "never":
		DisableColors()
	}

	// Respect NO_COLOR and TERM=dumb regardless of mode
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		DisableColors()
	}
}

// Printer writes user-facing messages to a single stream
type Printer struct {
	Out io.Writer
}

// NewPrinter creates a printer writing to out
func NewPrinter(out io.Writer) *Printer {
	if out == nil {
		out = os.Stdout
	}
	return &Printer{Out: out}
}

// Success prints a success message
func (p *Printer) Success(format string, args ...interface{}) {
	Success.Fprintf(p.Out, "%s %s\n", color.GreenString("✓"), fmt.Sprintf(format, args...))
}

// Error prints an error message
func (p *Printer) Error(format string, args ...interface{}) {
	Error.Fprintf(p.Out, "%s %s\n", color.RedString("✗"), fmt.Sprintf(format, args...))
}

// Warning prints a warning message
func (p *Printer) Warning(format string, args ...interface{}) {
	Warning.Fprintf(p.Out, "%s\n", fmt.Sprintf(format, args...))
}

// Info prints an info message
func (p *Printer) Info(format string, args ...interface{}) {
	Info.Fprintf(p.Out, "%s %s\n", color.CyanString("→"), fmt.Sprintf(format, args...))
}

// Plain prints an uncolored line
func (p *Printer) Plain(format string, args ...interface{}) {
	fmt.Fprintf(p.Out, format+"\n", args...)
}

// Raw writes backend output verbatim, adding a trailing newline when missing
func (p *Printer) Raw(text string) {
	if text == "" {
		return
	}
	fmt.Fprint(p.Out, text)
	if text[len(text)-1] != '\n' {
		fmt.Fprintln(p.Out)
	}
}

// Step prints a step indicator
func (p *Printer) Step(step, total int, format string, args ...interface{}) {
	Highlight.Fprintf(p.Out, "[%d/%d] ", step, total)
	fmt.Fprintf(p.Out, format+"\n", args...)
}

// Header prints a section header
func (p *Printer) Header(text string) {
	fmt.Fprintln(p.Out)
	Bold.Fprintln(p.Out, text)
	Muted.Fprintln(p.Out, "────────────────────────────────────────")
}

// SourceHeader prints the colored "<Source> Packages" section header
func (p *Printer) SourceHeader(src core.Source) {
	fmt.Fprintln(p.Out)
	sourceColor(src).Add(color.Bold).Fprintf(p.Out, "=== %s Packages ===\n", src.DisplayName())
}

// ColorizeSource returns a colored source name
func ColorizeSource(src core.Source) string {
	return sourceColor(src).Sprint(string(src))
}

func sourceColor(src core.Source) *color.Color {
	switch src {
	case core.SourceFlatpak:
		return color.New(color.FgBlue)
	case core.SourceSnap:
		return color.New(color.FgMagenta)
	case core.SourceApt:
		return color.New(color.FgYellow)
	default:
		return color.New(color.Reset)
	}
}

// DisableColors disables all color output
func DisableColors() {
	color.NoColor = true
}

// AreColorsEnabled returns whether colors are currently enabled
func AreColorsEnabled() bool {
	return !color.NoColor
}
