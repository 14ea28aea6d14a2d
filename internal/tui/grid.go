package tui

import (
	"strings"
	"time"

	"multiping/internal/pinger"
)

const rowLabelWidth = len("15:04:05 ")

// renderGrid lays the outcomes out rowWidth attempts per line, each line
// prefixed with the wall-clock time of its first attempt. Only the newest
// maxRows lines are returned.
func renderGrid(snap pinger.StatusSnapshot, interval time.Duration, rowWidth, maxRows int) []string {
	if rowWidth < 1 {
		rowWidth = 1
	}
	if maxRows < 1 {
		maxRows = 1
	}

	rows := (len(snap.Codes) + rowWidth - 1) / rowWidth
	if rows == 0 {
		rows = 1
	}
	first := 0
	if rows > maxRows {
		first = rows - maxRows
	}

	lines := make([]string, 0, rows-first)
	for r := first; r < rows; r++ {
		lo := r * rowWidth
		hi := min(lo+rowWidth, len(snap.Codes))
		var codes []pinger.Outcome
		if lo < hi {
			codes = snap.Codes[lo:hi]
		}

		at := snap.Started.Add(time.Duration(lo) * interval)
		label := rowLabelStyle.Render(at.Format("15:04:05"))
		lines = append(lines, label+" "+renderRow(codes, rowWidth))
	}
	return lines
}

// renderRow styles runs of equal outcomes together and pads to width.
func renderRow(codes []pinger.Outcome, width int) string {
	var b strings.Builder
	for i := 0; i < len(codes); {
		j := i
		for j < len(codes) && codes[j] == codes[i] {
			j++
		}
		run := strings.Repeat(codes[i].String(), j-i)
		b.WriteString(outcomeStyle(codes[i]).Render(run))
		i = j
	}
	if pad := width - len(codes); pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	}
	return b.String()
}

// fitRowWidth shrinks the configured row width to what the terminal can show.
func fitRowWidth(configured, termWidth int) int {
	avail := termWidth - rowLabelWidth - 2
	if avail < configured {
		return max(avail, 10)
	}
	return configured
}
