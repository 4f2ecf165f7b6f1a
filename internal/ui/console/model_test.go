package console

import (
	"testing"

	"breathkeeper/internal/audio"
	"breathkeeper/internal/core/session"
	"breathkeeper/internal/ui/view"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeController struct {
	snapshot session.Snapshot
	starts   int
	taps     int
	restarts int
	startErr error
}

func (c *fakeController) Start() error {
	c.starts++
	if c.startErr != nil {
		return c.startErr
	}
	c.snapshot.Starting = true
	return nil
}

func (c *fakeController) TapRetention() error {
	c.taps++
	c.snapshot.Phase = session.PhaseRecovery
	return nil
}

func (c *fakeController) Restart() {
	c.restarts++
	c.snapshot.Phase = session.PhaseSetup
	c.snapshot.Starting = false
}

func (c *fakeController) Snapshot() session.Snapshot {
	return c.snapshot
}

func newController(phase session.Phase) *fakeController {
	return &fakeController{snapshot: session.Snapshot{
		State:           session.State{Phase: phase, CurrentRound: 1, RecoveryRemainingSeconds: 15},
		BreathsPerRound: 30,
		TotalRounds:     3,
	}}
}

func press(t *testing.T, m Model, keyMsg tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(keyMsg)
	model, ok := updated.(Model)
	require.True(t, ok)
	return model, cmd
}

var (
	enterKey   = tea.KeyMsg{Type: tea.KeyEnter}
	restartKey = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")}
	quitKey    = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}
	otherKey   = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}
)

func TestModel_EnterStartsFromSetup(t *testing.T) {
	controller := newController(session.PhaseSetup)
	m := NewModel(controller, nil)

	m, _ = press(t, m, enterKey)
	assert.Equal(t, 1, controller.starts)
	assert.True(t, m.snapshot.Starting)

	// A second Enter during the pre-delay is not another start.
	_, _ = press(t, m, enterKey)
	assert.Equal(t, 1, controller.starts)
}

func TestModel_EnterTapsDuringRetention(t *testing.T) {
	controller := newController(session.PhaseRetention)
	m := NewModel(controller, nil)

	m, _ = press(t, m, enterKey)
	assert.Equal(t, 1, controller.taps)
	assert.Equal(t, session.PhaseRecovery, m.snapshot.Phase)
}

func TestModel_EnterIgnoredWhileBreathing(t *testing.T) {
	controller := newController(session.PhaseBreathing)
	m := NewModel(controller, nil)

	_, _ = press(t, m, enterKey)
	assert.Zero(t, controller.starts)
	assert.Zero(t, controller.taps)
}

func TestModel_Restart(t *testing.T) {
	controller := newController(session.PhaseRecovery)
	m := NewModel(controller, nil)

	m, _ = press(t, m, restartKey)
	assert.Equal(t, 1, controller.restarts)
	assert.Equal(t, session.PhaseSetup, m.snapshot.Phase)
}

func TestModel_StartErrorIsShown(t *testing.T) {
	controller := newController(session.PhaseSetup)
	controller.startErr = session.ErrInvalidAction
	m := NewModel(controller, nil)

	m, _ = press(t, m, enterKey)
	assert.Equal(t, session.ErrInvalidAction.Error(), m.lastErr)
	assert.Contains(t, m.View(), session.ErrInvalidAction.Error())

	m, _ = press(t, m, otherKey)
	assert.Equal(t, 1, controller.starts)
}

func TestModel_Quit(t *testing.T) {
	m := NewModel(newController(session.PhaseSetup), nil)

	m, cmd := press(t, m, quitKey)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestModel_EventsUpdateSnapshot(t *testing.T) {
	events := make(chan session.Event, 2)
	controller := newController(session.PhaseSetup)
	m := NewModel(controller, events)

	next := controller.snapshot
	next.Phase = session.PhaseBreathing
	next.CurrentBreathIndex = 4
	events <- session.Event{Type: session.EventProgress, Snapshot: next}

	msg := m.Init()()
	updated, cmd := m.Update(msg)
	m = updated.(Model)
	assert.Equal(t, 4, m.snapshot.CurrentBreathIndex)
	assert.NotNil(t, cmd, "model keeps listening for events")

	events <- session.Event{Type: session.EventCueSkipped, Snapshot: next, Cue: audio.CueBell}
	updated, _ = m.Update(cmd())
	m = updated.(Model)
	assert.Equal(t, "bell cue not loaded", m.notice)

	close(events)
	updated, cmd = m.Update(waitForEvent(events)())
	m = updated.(Model)
	assert.True(t, m.quitting)
	require.NotNil(t, cmd)
}

func TestRender(t *testing.T) {
	snapshot := newController(session.PhaseComplete).snapshot
	snapshot.RetentionDurations = []int{65, 90}

	out := Render(view.Describe(snapshot), "chime cue not loaded", "")
	assert.Contains(t, out, "Session complete")
	assert.Contains(t, out, "Round 1: 01:05")
	assert.Contains(t, out, "Round 2: 01:30")
	assert.Contains(t, out, "chime cue not loaded")
}
