package ui

import (
	"fmt"

	"github.com/reqtrace/reqtrace/internal/model"
)

// ANSI256 color codes.
const (
	colorCovered   = 71  // green
	colorPartial   = 178 // amber
	colorUncovered = 167 // red
	colorAccent    = 74  // blue
	colorMuted     = 245 // medium gray
)

var noColor bool

// Init decides color output once, from the environment and TTY state.
func Init() {
	noColor = !ShouldUseColor()
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}

func render(code int, s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", code, s)
}

// RenderCoverage colors s by coverage status: green when covered, amber
// when partial, red when uncovered.
func RenderCoverage(status model.CoverageStatus, s string) string {
	switch status {
	case model.CoverageCovered:
		return render(colorCovered, s)
	case model.CoveragePartial:
		return render(colorPartial, s)
	default:
		return render(colorUncovered, s)
	}
}

// RenderDefect returns s in the defect (red) color.
func RenderDefect(s string) string {
	return render(colorUncovered, s)
}

// RenderOK returns s in the success (green) color.
func RenderOK(s string) string {
	return render(colorCovered, s)
}

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string {
	return render(colorAccent, s)
}

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string {
	return render(colorMuted, s)
}
