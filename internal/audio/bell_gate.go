package audio

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Sink is the playback surface the session scheduler talks to.
type Sink interface {
	Play(kind CueKind) error
	PlayAt(kind CueKind, at time.Time) error
	StopLoops()
}

// BellGate drops bell cues that arrive within the configured window of the
// previously played bell. Dropped bells are neither queued nor delayed and
// report ErrCueDebounced. Other kinds pass through untouched.
type BellGate struct {
	mu       sync.Mutex
	next     Sink
	clock    clockwork.Clock
	window   time.Duration
	lastBell time.Time
	dropped  int
}

// NewBellGate wraps next with a bell de-bounce window.
func NewBellGate(next Sink, clock clockwork.Clock, window time.Duration) *BellGate {
	return &BellGate{
		next:   next,
		clock:  clock,
		window: window,
	}
}

// Play forwards the cue unless it is a bell inside the de-bounce window.
func (gate *BellGate) Play(kind CueKind) error {
	if kind != CueBell {
		return gate.next.Play(kind)
	}

	gate.mu.Lock()
	now := gate.clock.Now()
	if !gate.lastBell.IsZero() && now.Sub(gate.lastBell) < gate.window {
		gate.dropped++
		gate.mu.Unlock()
		return ErrCueDebounced
	}
	gate.mu.Unlock()

	if err := gate.next.Play(kind); err != nil {
		return err
	}

	gate.mu.Lock()
	gate.lastBell = now
	gate.mu.Unlock()
	return nil
}

// PlayAt forwards scheduled cues. Bells are always immediate in a session,
// so scheduled bells go through the same window check as Play.
func (gate *BellGate) PlayAt(kind CueKind, at time.Time) error {
	if kind == CueBell {
		return gate.Play(kind)
	}
	return gate.next.PlayAt(kind, at)
}

// StopLoops forwards to the wrapped sink.
func (gate *BellGate) StopLoops() {
	gate.next.StopLoops()
}

// Dropped returns how many bells the gate has swallowed.
func (gate *BellGate) Dropped() int {
	gate.mu.Lock()
	defer gate.mu.Unlock()
	return gate.dropped
}

// CueDuration exposes the wrapped sink's cue durations when it knows them.
func (gate *BellGate) CueDuration(kind CueKind) (time.Duration, bool) {
	source, ok := gate.next.(interface {
		CueDuration(CueKind) (time.Duration, bool)
	})
	if !ok {
		return 0, false
	}
	return source.CueDuration(kind)
}
