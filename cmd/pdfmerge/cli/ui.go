// Package cli renders command output for the pdfmerge command line.
package cli

import (
	"fmt"
	"io"
	"strings"

	"pdfmerge/internal/config"

	"github.com/charmbracelet/lipgloss"
)

// Printer writes themed lines to one writer. Colors are dropped when the
// writer is not a terminal.
type Printer struct {
	w io.Writer

	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	info    lipgloss.Style
	muted   lipgloss.Style
	header  lipgloss.Style
	box     lipgloss.Style
}

// NewPrinter builds a printer using the colors of cfg's theme.
func NewPrinter(w io.Writer, cfg *config.Config) *Printer {
	r := lipgloss.NewRenderer(w)
	color := func(c string) lipgloss.Color { return lipgloss.Color(c) }

	return &Printer{
		w:       w,
		success: r.NewStyle().Foreground(color(cfg.Theme.Success)),
		warning: r.NewStyle().Foreground(color(cfg.Theme.Warning)),
		failure: r.NewStyle().Foreground(color(cfg.Theme.Error)).Bold(true),
		info:    r.NewStyle().Foreground(color(cfg.Theme.Info)),
		muted:   r.NewStyle().Foreground(color(cfg.Theme.Muted)),
		header:  r.NewStyle().Foreground(color(cfg.Theme.Info)).Bold(true),
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(color(cfg.Theme.Info)).
			Padding(0, 1),
	}
}

func (p *Printer) line(style lipgloss.Style, prefix, msg string) {
	fmt.Fprintln(p.w, style.Render(prefix+msg))
}

// Success prints a success message
func (p *Printer) Success(format string, args ...interface{}) {
	p.line(p.success, "✓ ", fmt.Sprintf(format, args...))
}

// Error prints an error message
func (p *Printer) Error(format string, args ...interface{}) {
	p.line(p.failure, "✗ ", fmt.Sprintf(format, args...))
}

// Warning prints a warning message
func (p *Printer) Warning(format string, args ...interface{}) {
	p.line(p.warning, "! ", fmt.Sprintf(format, args...))
}

// Info prints an informational message
func (p *Printer) Info(format string, args ...interface{}) {
	p.line(p.info, "", fmt.Sprintf(format, args...))
}

// Muted prints a de-emphasised message
func (p *Printer) Muted(format string, args ...interface{}) {
	p.line(p.muted, "", fmt.Sprintf(format, args...))
}

// Plain prints msg without styling.
func (p *Printer) Plain(format string, args ...interface{}) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Header prints a section header underlined to its width.
func (p *Printer) Header(msg string) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, p.header.Render(msg))
	fmt.Fprintln(p.w, p.muted.Render(strings.Repeat("─", lipgloss.Width(msg))))
}

// Box prints content inside a rounded border.
func (p *Printer) Box(content string) {
	fmt.Fprintln(p.w, p.box.Render(content))
}

// Progress returns a function suitable as a merge observer.
func (p *Printer) Progress() func(string) {
	return func(msg string) {
		trimmed := strings.TrimSpace(msg)
		switch {
		case strings.HasPrefix(trimmed, "Error"):
			p.line(p.failure, "  ", msg)
		case strings.HasPrefix(trimmed, "Warning"), strings.HasPrefix(trimmed, "Skipping"):
			p.line(p.warning, "  ", msg)
		case strings.HasPrefix(trimmed, "Successfully"):
			p.line(p.success, "  ", msg)
		case strings.HasPrefix(trimmed, "No matching"):
			p.line(p.muted, "  ", msg)
		default:
			p.line(p.info, "  ", msg)
		}
	}
}
