package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"multiping/internal/pinger"
)

// Source is the pinger the display reads from. *pinger.Pinger satisfies it.
type Source interface {
	Host() string
	Interval() time.Duration
	Status() *pinger.Status
	Done() <-chan struct{}
}

// Deps holds everything injected into the display.
type Deps struct {
	Source   Source
	RowWidth int
	// Now defaults to time.Now.
	Now func() time.Time
}

// Model is the root BubbleTea model.
type Model struct {
	source   Source
	rowWidth int
	now      func() time.Time

	// Dimensions.
	width  int
	height int

	showLegend bool
	running    bool

	// Last snapshot read from the store, and the grid rendered from it.
	snap      pinger.StatusSnapshot
	grid      []string
	gridKey   gridKey
	haveFrame bool

	spinner spinner.Model
}

// gridKey identifies the inputs of a rendered grid; when it is unchanged the
// cached lines are reused.
type gridKey struct {
	version uint64
	sent    int
	width   int
	rows    int
}

// NewModel creates a new root Model.
func NewModel(deps Deps) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	if deps.RowWidth <= 0 {
		deps.RowWidth = 60
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	return &Model{
		source:   deps.Source,
		rowWidth: deps.RowWidth,
		now:      deps.Now,
		running:  true,
		spinner:  s,
	}
}

func (m *Model) Init() tea.Cmd {
	m.refresh()
	return tea.Batch(
		tick(),
		waitForStop(m.source.Done()),
		m.spinner.Tick,
	)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Help):
			m.showLegend = !m.showLegend
			m.refresh()
		}
		return m, nil

	case tickMsg:
		m.refresh()
		if m.running {
			return m, tick()
		}
		return m, nil

	case pingerStoppedMsg:
		m.running = false
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// refresh re-reads the store and rebuilds the grid only when the store or
// the layout changed. A launch bumps Sent without a new version.
func (m *Model) refresh() {
	status := m.source.Status()
	k := gridKey{
		version: status.Version(),
		sent:    status.Sent(),
		width:   fitRowWidth(m.rowWidth, m.termWidth()),
		rows:    m.gridHeight(),
	}
	if m.haveFrame && k == m.gridKey {
		return
	}

	m.snap = status.Snapshot()
	m.grid = renderGrid(m.snap, m.source.Interval(), k.width, k.rows)
	m.gridKey = k
	m.haveFrame = true
}

func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	elapsed := m.now().Sub(m.snap.Started)
	parts := []string{
		renderHeader(m.source.Host(), m.running, m.spinner.View(), elapsed, m.width),
		renderSeparator(m.width),
		forceHeight(strings.Join(m.grid, "\n"), m.width, m.gridHeight()),
		renderSeparator(m.width),
		renderStats(m.snap),
		renderHelpBar(m.showLegend),
	}
	output := lipgloss.JoinVertical(lipgloss.Left, parts...)

	// Force exactly m.height lines to prevent BubbleTea rendering drift.
	return forceHeight(output, m.width, m.height)
}

func (m *Model) termWidth() int {
	if m.width == 0 {
		return 80
	}
	return m.width
}

// gridHeight is the number of lines left for the grid.
func (m *Model) gridHeight() int {
	overhead := 5
	if m.showLegend {
		overhead++
	}
	h := m.height - overhead
	if h < 1 {
		h = 1
	}
	return h
}

// forceHeight ensures the string has exactly `height` lines, so BubbleTea
// leaves no ghost lines behind when the grid shrinks.
func forceHeight(s string, width, height int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	blank := strings.Repeat(" ", max(width, 0))
	for len(lines) < height {
		lines = append(lines, blank)
	}
	return strings.Join(lines, "\n")
}

// NewProgram creates a full-screen bubbletea program. Cancelling ctx ends
// the program with tea.ErrProgramKilled.
func NewProgram(ctx context.Context, deps Deps, opts ...tea.ProgramOption) *tea.Program {
	m := NewModel(deps)
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	return tea.NewProgram(m, opts...)
}
