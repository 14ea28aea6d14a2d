package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"multiping/internal/pinger"
)

func renderHeader(host string, running bool, spin string, elapsed time.Duration, width int) string {
	logo := logoStyle.Render("MULTIPING")
	target := hostStyle.Render(host)

	var pill string
	if running {
		pill = runningPillStyle.Render(fmt.Sprintf("%s %s", spin, formatDuration(elapsed)))
	} else {
		pill = stoppedPillStyle.Render(" STOPPED ")
	}

	left := logo + target
	gap := width - lipgloss.Width(left) - lipgloss.Width(pill)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + pill
}

func renderStats(snap pinger.StatusSnapshot) string {
	loss := snap.Loss()
	parts := []string{
		statLabelStyle.Render("sent ") + statValueStyle.Render(fmt.Sprintf("%d", snap.Sent)),
		statLabelStyle.Render("received ") + statValueStyle.Render(fmt.Sprintf("%d", snap.Received)),
		statLabelStyle.Render("loss ") + lossStyle(loss).Render(fmt.Sprintf("%.1f%%", loss*100)),
	}
	return helpBarStyle.Render(strings.Join(parts, "   "))
}

func renderSeparator(width int) string {
	return lipgloss.NewStyle().
		Foreground(colorBorder).
		Render(strings.Repeat("─", max(width, 0)))
}

func renderHelpBar(showLegend bool) string {
	var parts []string
	for _, b := range keys.ShortHelp() {
		if !b.Enabled() {
			continue
		}
		parts = append(parts, helpKeyStyle.Render(b.Help().Key)+" "+helpDescStyle.Render(b.Help().Desc))
	}
	bar := strings.Join(parts, helpSepStyle.Render(" | "))
	if !showLegend {
		return helpBarStyle.Render(bar)
	}
	return lipgloss.JoinVertical(lipgloss.Left, helpBarStyle.Render(renderLegend()), helpBarStyle.Render(bar))
}

func renderLegend() string {
	var parts []string
	for _, o := range pinger.Outcomes {
		parts = append(parts, outcomeStyle(o).Render(o.String())+" "+helpDescStyle.Render(o.Describe()))
	}
	return strings.Join(parts, helpSepStyle.Render("  "))
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
