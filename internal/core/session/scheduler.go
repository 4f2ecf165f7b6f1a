package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"breathkeeper/internal/audio"
	"breathkeeper/internal/core/model"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// CueSink plays audio cues on behalf of the Scheduler.
type CueSink interface {
	Play(kind audio.CueKind) error
	PlayAt(kind audio.CueKind, at time.Time) error
	StopLoops()
}

type cueDurationSource interface {
	CueDuration(kind audio.CueKind) (time.Duration, bool)
}

// Options contains runtime options for the Scheduler.
type Options struct {
	Timing model.Timing
	Logger *slog.Logger
}

// Scheduler is the session state machine. It owns the session State and
// every timer that drives it.
//
// All mutation happens under mu: public actions take it directly and timer
// callbacks take it through dispatch. Every phase entry bumps scope, and
// callbacks armed under an older scope are dropped, so a callback racing
// with Restart can never commit a transition.
type Scheduler struct {
	mu        sync.Mutex
	clock     clockwork.Clock
	cues      CueSink
	timing    model.Timing
	baseLog   *slog.Logger
	logger    *slog.Logger
	config    model.SessionConfig
	state     State
	sessionID string
	pending   *PendingWork
	scope     uint64
	starting  bool
	fault     error
	events    []chan Event
	closed    bool

	retentionStart time.Time
	recoveryTicker workID
	recoveryDone   bool
}

// New creates a Scheduler in the Setup phase.
func New(config model.SessionConfig, cues CueSink, clock clockwork.Clock, options Options) (*Scheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.Timing == (model.Timing{}) {
		options.Timing = model.DefaultTiming()
	}
	timing := options.Timing.Normalize()

	scheduler := &Scheduler{
		clock:   clock,
		cues:    cues,
		timing:  timing,
		baseLog: options.Logger,
		logger:  options.Logger,
		config:  config,
		state:   newState(timing.RecoverySeconds),
	}
	scheduler.pending = newPendingWork(clock, scheduler.dispatch)
	return scheduler, nil
}

// Subscribe registers a new observer channel. Slow observers miss events
// rather than block the session.
func (scheduler *Scheduler) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	scheduler.mu.Lock()
	if scheduler.closed {
		close(ch)
	} else {
		scheduler.events = append(scheduler.events, ch)
	}
	scheduler.mu.Unlock()
	return ch
}

// Snapshot returns a copy of the current session state.
func (scheduler *Scheduler) Snapshot() Snapshot {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	return scheduler.snapshotLocked()
}

// Config returns the active session configuration.
func (scheduler *Scheduler) Config() model.SessionConfig {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	return scheduler.config
}

// LiveWork returns the number of armed timers.
func (scheduler *Scheduler) LiveWork() int {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	return scheduler.pending.Len()
}

// Err returns the first internal scheduling fault, if any.
func (scheduler *Scheduler) Err() error {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	return scheduler.fault
}

// Configure replaces the session configuration. Only valid in Setup
// before Start.
func (scheduler *Scheduler) Configure(config model.SessionConfig) error {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	if scheduler.state.Phase != PhaseSetup || scheduler.starting {
		return scheduler.rejectLocked("configure")
	}
	if err := config.Validate(); err != nil {
		return err
	}
	scheduler.config = config
	return nil
}

// Start begins a session after the pre-breathing delay. Calling Start
// again while the delay is pending re-arms it, so only one Breathing
// sequence is ever scheduled.
func (scheduler *Scheduler) Start() error {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	if scheduler.state.Phase != PhaseSetup {
		return scheduler.rejectLocked("start")
	}

	scheduler.resetLocked()
	scheduler.sessionID = uuid.NewString()
	scheduler.logger = scheduler.baseLog.With("session_id", scheduler.sessionID)
	scheduler.starting = true
	scheduler.afterLocked(scheduler.timing.PreBreathDelay, scheduler.enterBreathingLocked)

	scheduler.logger.Info("session starting",
		"breaths_per_round", scheduler.config.BreathsPerRound,
		"total_rounds", scheduler.config.TotalRounds)
	scheduler.emitLocked(EventProgress, "")
	return nil
}

// TapRetention ends the current Retention phase and records its duration.
func (scheduler *Scheduler) TapRetention() error {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	if scheduler.state.Phase != PhaseRetention {
		return scheduler.rejectLocked("tap retention")
	}

	elapsed := scheduler.retentionSecondsLocked()
	scheduler.state.RetentionElapsedSeconds = elapsed
	scheduler.state.RetentionDurations = append(scheduler.state.RetentionDurations, elapsed)
	scheduler.logger.Info("retention released",
		"round", scheduler.state.CurrentRound,
		"seconds", elapsed)

	scheduler.enterRecoveryLocked()
	return nil
}

// Restart aborts whatever is running and returns to Setup. Valid in every
// phase.
func (scheduler *Scheduler) Restart() {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	previous := scheduler.state.Phase
	scheduler.resetLocked()
	scheduler.logger.Info("session reset", "from", string(previous))
	scheduler.emitLocked(EventPhaseChange, "")
}

// Close cancels all work and closes observer channels.
func (scheduler *Scheduler) Close() {
	scheduler.mu.Lock()
	if scheduler.closed {
		scheduler.mu.Unlock()
		return
	}
	scheduler.pending.CancelAll()
	scheduler.scope++
	scheduler.cues.StopLoops()
	scheduler.closed = true
	events := scheduler.events
	scheduler.events = nil
	scheduler.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

func (scheduler *Scheduler) dispatch(id workID) {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	fn, ok := scheduler.pending.fire(id)
	if !ok {
		return
	}
	fn()
}

func (scheduler *Scheduler) enterBreathingLocked() {
	scheduler.enterPhaseLocked(PhaseBreathing)
	scheduler.state.CurrentBreathIndex = 0

	breaths := scheduler.config.BreathsPerRound
	breath := scheduler.breathDurationLocked()
	warningIndex := -1
	if warn := scheduler.timing.WarningBreathsFromEnd; warn > 0 && breaths > warn {
		warningIndex = breaths - warn - 1
	}

	scheduler.logger.Info("breathing",
		"round", scheduler.state.CurrentRound,
		"breaths", breaths,
		"breath_duration", breath)
	// Observers see the phase change ahead of the per-breath cue events.
	scheduler.emitLocked(EventPhaseChange, "")

	scheduler.cues.StopLoops()
	scheduler.scheduleBreathLoopsLocked(breaths, breath)
	for i := 0; i < breaths; i++ {
		offset := time.Duration(i) * breath
		count := i + 1
		warn := i == warningIndex
		scheduler.afterLocked(offset, func() {
			scheduler.breathTickLocked(count, warn)
		})
	}
	scheduler.afterLocked(time.Duration(breaths)*breath, scheduler.endBreathingLocked)
}

// scheduleBreathLoopsLocked queues every breath loop of the round against
// one anchor and reports the batch as a single cue event.
func (scheduler *Scheduler) scheduleBreathLoopsLocked(breaths int, breath time.Duration) {
	anchor := scheduler.clock.Now().Add(scheduler.timing.LoopLead)
	var firstErr error
	failed := 0
	for i := 0; i < breaths; i++ {
		if err := scheduler.cues.PlayAt(audio.CueBreathLoop, anchor.Add(time.Duration(i)*breath)); err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if firstErr == nil {
		scheduler.emitCueLocked(EventCue, audio.CueBreathLoop, fmt.Sprintf("%d scheduled", breaths))
		return
	}
	scheduler.logCueErrorLocked(audio.CueBreathLoop, firstErr, "failed", failed, "scheduled", breaths)
	scheduler.emitCueLocked(EventCueSkipped, audio.CueBreathLoop,
		fmt.Sprintf("%d of %d skipped: %v", failed, breaths, firstErr))
}

func (scheduler *Scheduler) breathTickLocked(count int, warn bool) {
	if count > scheduler.state.CurrentBreathIndex {
		scheduler.state.CurrentBreathIndex = count
	}
	if warn {
		scheduler.playLocked(audio.CueChime)
	}
	scheduler.emitLocked(EventProgress, "")
}

func (scheduler *Scheduler) endBreathingLocked() {
	scheduler.state.CurrentBreathIndex = scheduler.config.BreathsPerRound
	scheduler.playLocked(audio.CueBell)
	scheduler.enterRetentionLocked()
}

func (scheduler *Scheduler) enterRetentionLocked() {
	scheduler.enterPhaseLocked(PhaseRetention)
	scheduler.state.RetentionElapsedSeconds = 0
	scheduler.retentionStart = scheduler.clock.Now()

	scheduler.everyLocked(scheduler.timing.RetentionTick, func() {
		scheduler.state.RetentionElapsedSeconds = scheduler.retentionSecondsLocked()
		scheduler.emitLocked(EventProgress, "")
	})
	scheduler.everyLocked(scheduler.timing.RetentionBellInterval, func() {
		scheduler.playLocked(audio.CueBell)
	})

	scheduler.logger.Info("retention", "round", scheduler.state.CurrentRound)
	scheduler.emitLocked(EventPhaseChange, "")
}

func (scheduler *Scheduler) enterRecoveryLocked() {
	scheduler.enterPhaseLocked(PhaseRecovery)
	scheduler.playLocked(audio.CueChime)
	scheduler.state.RecoveryRemainingSeconds = scheduler.timing.RecoverySeconds
	scheduler.recoveryDone = false
	scheduler.recoveryTicker = scheduler.everyLocked(scheduler.timing.RecoveryTick, scheduler.recoveryTickLocked)

	scheduler.logger.Info("recovery", "round", scheduler.state.CurrentRound)
	scheduler.emitLocked(EventPhaseChange, "")
}

func (scheduler *Scheduler) recoveryTickLocked() {
	if scheduler.state.RecoveryRemainingSeconds > 0 {
		scheduler.state.RecoveryRemainingSeconds--
		scheduler.emitLocked(EventProgress, "")
	}
	if scheduler.state.RecoveryRemainingSeconds > 0 {
		return
	}
	scheduler.state.RecoveryRemainingSeconds = 0
	scheduler.pending.Cancel(scheduler.recoveryTicker)
	scheduler.recoveryFinishedLocked()
}

// recoveryFinishedLocked runs once per Recovery phase no matter how often
// the countdown is observed at zero.
func (scheduler *Scheduler) recoveryFinishedLocked() {
	if scheduler.recoveryDone {
		return
	}
	scheduler.recoveryDone = true
	scheduler.playLocked(audio.CueBell)
	scheduler.afterLocked(scheduler.timing.PostRecoveryPause, scheduler.advanceRoundLocked)
}

func (scheduler *Scheduler) advanceRoundLocked() {
	if scheduler.state.CurrentRound >= scheduler.config.TotalRounds {
		scheduler.enterPhaseLocked(PhaseComplete)
		scheduler.cues.StopLoops()
		scheduler.logger.Info("session complete", "retention_seconds", scheduler.state.RetentionDurations)
		scheduler.emitLocked(EventPhaseChange, "")
		return
	}

	scheduler.newScopeLocked()
	scheduler.state.CurrentRound++
	scheduler.starting = true
	scheduler.afterLocked(scheduler.timing.PreBreathDelay, scheduler.enterBreathingLocked)

	scheduler.logger.Debug("advancing round", "round", scheduler.state.CurrentRound)
	scheduler.emitLocked(EventProgress, "")
}

func (scheduler *Scheduler) enterPhaseLocked(phase Phase) {
	scheduler.newScopeLocked()
	scheduler.starting = false
	scheduler.state.Phase = phase
}

func (scheduler *Scheduler) resetLocked() {
	scheduler.newScopeLocked()
	scheduler.cues.StopLoops()
	scheduler.starting = false
	scheduler.recoveryDone = false
	scheduler.state = newState(scheduler.timing.RecoverySeconds)
}

// newScopeLocked invalidates every callback armed so far.
func (scheduler *Scheduler) newScopeLocked() {
	if cancelled := scheduler.pending.CancelAll(); cancelled > 0 {
		scheduler.logger.Debug("cancelled pending work", "count", cancelled)
	}
	scheduler.scope++
}

func (scheduler *Scheduler) afterLocked(delay time.Duration, fn func()) workID {
	id, err := scheduler.pending.After(scheduler.scope, delay, scheduler.guard(fn))
	if err != nil {
		scheduler.faultLocked(err)
	}
	return id
}

func (scheduler *Scheduler) everyLocked(period time.Duration, fn func()) workID {
	id, err := scheduler.pending.Every(scheduler.scope, period, scheduler.guard(fn))
	if err != nil {
		scheduler.faultLocked(err)
	}
	return id
}

// guard binds fn to the scope it was armed in.
func (scheduler *Scheduler) guard(fn func()) func() {
	scope := scheduler.scope
	return func() {
		if scope != scheduler.scope {
			scheduler.logger.Debug("dropped stale callback", "scope", scope, "current", scheduler.scope)
			return
		}
		fn()
	}
}

func (scheduler *Scheduler) faultLocked(err error) {
	scheduler.logger.Error("scheduler fault", "error", err)
	if scheduler.fault == nil {
		scheduler.fault = err
	}
}

func (scheduler *Scheduler) playLocked(kind audio.CueKind) {
	scheduler.cueResultLocked(kind, scheduler.cues.Play(kind))
}

func (scheduler *Scheduler) cueResultLocked(kind audio.CueKind, err error) {
	if err == nil {
		scheduler.emitCueLocked(EventCue, kind, "")
		return
	}
	if errors.Is(err, audio.ErrCueDebounced) {
		scheduler.logger.Debug("cue debounced", "cue", string(kind))
		return
	}
	scheduler.logCueErrorLocked(kind, err)
	scheduler.emitCueLocked(EventCueSkipped, kind, err.Error())
}

func (scheduler *Scheduler) logCueErrorLocked(kind audio.CueKind, err error, attrs ...any) {
	attrs = append([]any{"cue", string(kind), "error", err}, attrs...)
	if errors.Is(err, audio.ErrCueNotReady) {
		scheduler.logger.Warn("cue skipped", attrs...)
	} else {
		scheduler.logger.Error("cue failed", attrs...)
	}
}

func (scheduler *Scheduler) breathDurationLocked() time.Duration {
	if source, ok := scheduler.cues.(cueDurationSource); ok {
		if duration, ok := source.CueDuration(audio.CueBreathLoop); ok && duration > 0 {
			return duration
		}
	}
	return scheduler.timing.BreathDuration
}

func (scheduler *Scheduler) retentionSecondsLocked() int {
	elapsed := scheduler.clock.Since(scheduler.retentionStart)
	if elapsed < 0 {
		return 0
	}
	return int(elapsed / time.Second)
}

func (scheduler *Scheduler) rejectLocked(action string) error {
	scheduler.logger.Debug("action rejected", "action", action, "phase", string(scheduler.state.Phase))
	return fmt.Errorf("%s during %s: %w", action, scheduler.state.Phase, ErrInvalidAction)
}

func (scheduler *Scheduler) snapshotLocked() Snapshot {
	return scheduler.state.snapshot(scheduler.sessionID, scheduler.config, scheduler.starting)
}

func (scheduler *Scheduler) nextDeadlineLocked() (time.Time, bool) {
	return scheduler.pending.nextDeadline()
}

func (scheduler *Scheduler) emitLocked(eventType EventType, message string) {
	scheduler.sendLocked(Event{
		Type:     eventType,
		Snapshot: scheduler.snapshotLocked(),
		Message:  message,
		At:       scheduler.clock.Now(),
	})
}

func (scheduler *Scheduler) emitCueLocked(eventType EventType, kind audio.CueKind, message string) {
	scheduler.sendLocked(Event{
		Type:     eventType,
		Snapshot: scheduler.snapshotLocked(),
		Cue:      kind,
		Message:  message,
		At:       scheduler.clock.Now(),
	})
}

func (scheduler *Scheduler) sendLocked(event Event) {
	for _, ch := range scheduler.events {
		select {
		case ch <- event:
		default:
		}
	}
}
