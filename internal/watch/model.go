package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"restartctl/internal/restart"
)

const (
	tickInterval    = 500 * time.Millisecond
	opTimeout       = 60 * time.Second
	maxActivityRows = 8
)

type tickMsg time.Time

type opDoneMsg struct {
	label string
	err   error
}

// Model is the live watch view over one coordinator. The coordinator's own
// poller keeps server state fresh; the model only snapshots and renders it.
type Model struct {
	coord       *restart.Coordinator
	supportName string
	supportID   string

	snap    restart.Snapshot
	loader  spinner.Model
	busy    bool
	status  string
	width   int
	height  int
	errored bool
}

func NewModel(coord *restart.Coordinator, supportName, supportID string) *Model {
	loader := spinner.New()
	loader.Spinner = spinner.Line
	loader.Style = lipgloss.NewStyle()
	return &Model{
		coord:       coord,
		supportName: supportName,
		supportID:   supportID,
		loader:      loader,
		snap:        coord.Snapshot(),
	}
}

func (m *Model) Init() tea.Cmd {
	return tickCmd()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		m.snap = m.coord.Snapshot()
		if m.busy {
			m.loader, _ = m.loader.Update(spinner.TickMsg{Time: time.Time(msg), ID: m.loader.ID()})
		}
		return m, tickCmd()
	case opDoneMsg:
		m.busy = false
		m.snap = m.coord.Snapshot()
		if msg.err != nil {
			m.errored = true
			m.status = fmt.Sprintf("%s failed: %v", msg.label, msg.err)
		} else {
			m.errored = false
			m.status = msg.label + " done"
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		return m, m.runOp("refresh", func(ctx context.Context) error {
			return m.coord.Refresh(ctx)
		})
	case "s":
		next := len(m.snap.Sets)
		return m, m.runOp(fmt.Sprintf("start set %d", next+1), func(ctx context.Context) error {
			return m.coord.StartSet(ctx, next, "", "")
		})
	case "c":
		step := m.snap.CurrentStep
		return m, m.runOp(fmt.Sprintf("complete step %d", step), func(ctx context.Context) error {
			return m.coord.CompleteStep(ctx, step)
		})
	case "a":
		return m, m.runOp("acknowledge", func(ctx context.Context) error {
			return m.coord.AcknowledgeStep11(ctx, m.supportName, m.supportID)
		})
	case "n":
		return m, m.runOp("new session", func(ctx context.Context) error {
			return m.coord.StartNewSession(ctx)
		})
	}
	return m, nil
}

func (m *Model) runOp(label string, fn func(context.Context) error) tea.Cmd {
	if m.busy {
		return nil
	}
	m.busy = true
	m.status = label + "..."
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		return opDoneMsg{label: label, err: fn(ctx)}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Run drives the watch TUI until the operator quits.
func Run(coord *restart.Coordinator, supportName, supportID string) error {
	program := tea.NewProgram(NewModel(coord, supportName, supportID), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
