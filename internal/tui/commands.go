package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// refreshEvery is how often the status store is polled.
const refreshEvery = 100 * time.Millisecond

// tick returns a tea.Cmd that fires after refreshEvery.
func tick() tea.Cmd {
	return tea.Tick(refreshEvery, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// waitForStop blocks until the pinger's loop has fully stopped.
func waitForStop(done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-done
		return pingerStoppedMsg{}
	}
}
