package cli

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Palette colors for human-readable output.
const (
	colorText    = "#E6EDF3"
	colorMuted   = "#8B9AAE"
	colorSuccess = "#3FB950"
	colorWarning = "#D29922"
	colorError   = "#F85149"
)

type styleSet struct {
	Title   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

var styles = styleSet{
	Title:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorText)).Bold(true),
	Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorMuted)),
	Success: lipgloss.NewStyle().Foreground(lipgloss.Color(colorSuccess)),
	Warning: lipgloss.NewStyle().Foreground(lipgloss.Color(colorWarning)),
	Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorError)).Bold(true),
}

func hasTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
