package console

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"breathkeeper/internal/core/session"
	"breathkeeper/internal/ui/view"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Controller is the part of the Scheduler the terminal drives.
type Controller interface {
	Start() error
	TapRetention() error
	Restart()
	Snapshot() session.Snapshot
}

type eventMsg session.Event

type eventsClosedMsg struct{}

// Model is the bubbletea model for terminal mode.
type Model struct {
	controller Controller
	events     <-chan session.Event
	keys       KeyMap
	help       help.Model
	snapshot   session.Snapshot
	notice     string
	lastErr    string
	width      int
	quitting   bool
}

// NewModel creates a terminal model fed by events.
func NewModel(controller Controller, events <-chan session.Event) Model {
	return Model{
		controller: controller,
		events:     events,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		snapshot:   controller.Snapshot(),
	}
}

// Run drives the terminal UI until the user quits or ctx is cancelled.
func Run(ctx context.Context, controller Controller, events <-chan session.Event, options ...tea.ProgramOption) error {
	options = append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, options...)
	program := tea.NewProgram(NewModel(controller, events), options...)
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case eventMsg:
		m.snapshot = msg.Snapshot
		switch msg.Type {
		case session.EventCueSkipped:
			m.notice = fmt.Sprintf("%s cue not loaded", msg.Cue)
		case session.EventPhaseChange:
			m.notice = ""
		}
		return m, waitForEvent(m.events)

	case eventsClosedMsg:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.lastErr = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Restart):
		m.controller.Restart()
	case key.Matches(msg, m.keys.Start):
		m.setError(m.controller.Start())
	case key.Matches(msg, m.keys.Tap):
		switch m.snapshot.Phase {
		case session.PhaseSetup:
			if !m.snapshot.Starting {
				m.setError(m.controller.Start())
			}
		case session.PhaseRetention:
			m.setError(m.controller.TapRetention())
		}
	default:
		return m, nil
	}
	m.snapshot = m.controller.Snapshot()
	return m, nil
}

func (m *Model) setError(err error) {
	if err != nil {
		m.lastErr = err.Error()
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return Render(view.Describe(m.snapshot), m.notice, m.lastErr) + "\n" + m.help.View(m.keys) + "\n"
}

// Render draws a screen as a bordered block.
func Render(screen view.Screen, notice, errText string) string {
	var lines []string
	lines = append(lines, TitleStyle.Render(screen.Title))
	lines = append(lines, HeadlineStyle.Render(screen.Headline))
	if screen.Detail != "" {
		lines = append(lines, DetailStyle.Render(screen.Detail))
	}
	for _, result := range screen.Results {
		lines = append(lines, ResultStyle.Render(result))
	}
	if notice != "" {
		lines = append(lines, NoticeStyle.Render(notice))
	}
	if errText != "" {
		lines = append(lines, ErrorStyle.Render(errText))
	}

	body := lipgloss.JoinVertical(lipgloss.Center, lines...)
	return FrameStyle.BorderForeground(phaseColor(screen.Phase)).Render(strings.TrimRight(body, "\n"))
}

// waitForEvent blocks until the scheduler publishes an event.
func waitForEvent(events <-chan session.Event) tea.Cmd {
	return func() tea.Msg {
		if events == nil {
			return nil
		}
		event, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(event)
	}
}
