package tui

import (
	"github.com/charmbracelet/lipgloss"

	"multiping/internal/pinger"
)

// Adaptive colors that work on light and dark terminals.
var (
	colorPurple = lipgloss.AdaptiveColor{Light: "#7B2FBE", Dark: "#B97EFF"}
	colorGreen  = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	colorRed    = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#FF4672"}
	colorAmber  = lipgloss.AdaptiveColor{Light: "#FF8C00", Dark: "#FFA500"}
	colorSubtle = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	colorFg     = lipgloss.AdaptiveColor{Light: "#1A1A2E", Dark: "#FFFDF5"}
	colorDimFg  = lipgloss.AdaptiveColor{Light: "#A49FA5", Dark: "#777777"}
	colorBorder = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
)

// Header styles.
var (
	logoStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPurple).
			PaddingRight(2)

	hostStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorFg)

	runningPillStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(colorGreen).
				Padding(0, 1)

	stoppedPillStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(colorRed).
				Padding(0, 1)
)

// Footer / help bar styles.
var (
	helpBarStyle = lipgloss.NewStyle().
			Foreground(colorDimFg).
			Padding(0, 1)

	helpKeyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPurple)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(colorDimFg)

	helpSepStyle = lipgloss.NewStyle().
			Foreground(colorSubtle)

	statLabelStyle = lipgloss.NewStyle().
			Foreground(colorDimFg)

	statValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorFg)

	rowLabelStyle = lipgloss.NewStyle().
			Foreground(colorDimFg)
)

// Spinner style.
var spinnerStyle = lipgloss.NewStyle().Foreground(colorPurple)

var outcomeStyles = map[pinger.Outcome]lipgloss.Style{
	pinger.OutcomeFast:        lipgloss.NewStyle().Foreground(colorGreen),
	pinger.OutcomeSlow:        lipgloss.NewStyle().Foreground(colorAmber),
	pinger.OutcomeUnreachable: lipgloss.NewStyle().Foreground(colorRed).Bold(true),
	pinger.OutcomeUnexpected:  lipgloss.NewStyle().Foreground(colorRed),
	pinger.OutcomeKilled:      lipgloss.NewStyle().Foreground(colorPurple).Bold(true),
}

func outcomeStyle(o pinger.Outcome) lipgloss.Style {
	if s, ok := outcomeStyles[o]; ok {
		return s
	}
	return lipgloss.NewStyle()
}

// Loss color coding.
func lossStyle(loss float64) lipgloss.Style {
	switch {
	case loss == 0:
		return statValueStyle.Foreground(colorGreen)
	case loss < 0.05:
		return statValueStyle.Foreground(colorAmber)
	default:
		return statValueStyle.Foreground(colorRed)
	}
}
