package session

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"breathkeeper/internal/audio"
	"breathkeeper/internal/core/model"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

type cueCall struct {
	Kind      audio.CueKind
	At        time.Time
	Scheduled bool
}

type fakeSink struct {
	mu       sync.Mutex
	clock    clockwork.Clock
	calls    []cueCall
	stops    int
	notReady map[audio.CueKind]bool
}

func newFakeSink(clock clockwork.Clock) *fakeSink {
	return &fakeSink{clock: clock, notReady: make(map[audio.CueKind]bool)}
}

func (s *fakeSink) Play(kind audio.CueKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.notReady[kind] {
		return audio.ErrCueNotReady
	}
	s.calls = append(s.calls, cueCall{Kind: kind, At: s.clock.Now()})
	return nil
}

func (s *fakeSink) PlayAt(kind audio.CueKind, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.notReady[kind] {
		return audio.ErrCueNotReady
	}
	s.calls = append(s.calls, cueCall{Kind: kind, At: at, Scheduled: true})
	return nil
}

func (s *fakeSink) StopLoops() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stops++
}

func (s *fakeSink) getCalls(kind audio.CueKind) []cueCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []cueCall
	for _, call := range s.calls {
		if call.Kind == kind {
			result = append(result, call)
		}
	}
	return result
}

func (s *fakeSink) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *fakeSink) stopCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stops
}

func (s *fakeSink) count(kind audio.CueKind) int {
	return len(s.getCalls(kind))
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testTiming() model.Timing {
	timing := model.DefaultTiming()
	timing.BreathDuration = 2 * time.Second
	return timing
}

type harness struct {
	t         *testing.T
	clock     *clockwork.FakeClock
	sink      *fakeSink
	scheduler *Scheduler
}

func newHarness(t *testing.T, config model.SessionConfig) *harness {
	t.Helper()
	return newHarnessWithTiming(t, config, testTiming())
}

func newHarnessWithTiming(t *testing.T, config model.SessionConfig, timing model.Timing) *harness {
	t.Helper()
	clock := clockwork.NewFakeClock()
	sink := newFakeSink(clock)
	return newHarnessWithSink(t, config, timing, clock, sink)
}

func newHarnessWithSink(t *testing.T, config model.SessionConfig, timing model.Timing, clock *clockwork.FakeClock, sink CueSink) *harness {
	t.Helper()
	scheduler, err := New(config, sink, clock, Options{Timing: timing, Logger: quietLogger()})
	require.NoError(t, err)
	t.Cleanup(scheduler.Close)

	fake, _ := sink.(*fakeSink)
	return &harness{t: t, clock: clock, sink: fake, scheduler: scheduler}
}

// settle waits until every callback whose deadline has passed has run.
func (h *harness) settle() {
	h.t.Helper()
	require.Eventually(h.t, func() bool {
		h.scheduler.mu.Lock()
		defer h.scheduler.mu.Unlock()
		return h.scheduler.pending.dueCount(h.clock.Now()) == 0
	}, 2*time.Second, time.Millisecond)
}

// advance moves the fake clock forward by d, stopping at every pending
// deadline so callbacks run in timeline order.
func (h *harness) advance(d time.Duration) {
	h.t.Helper()
	target := h.clock.Now().Add(d)
	for {
		h.settle()
		h.scheduler.mu.Lock()
		next, ok := h.scheduler.nextDeadlineLocked()
		h.scheduler.mu.Unlock()
		if !ok || next.After(target) {
			break
		}
		h.clock.Advance(next.Sub(h.clock.Now()))
	}
	if remaining := target.Sub(h.clock.Now()); remaining > 0 {
		h.clock.Advance(remaining)
	}
	h.settle()
}

func (h *harness) snapshot() Snapshot {
	return h.scheduler.Snapshot()
}

// drain returns every event buffered on ch without blocking.
func drain(ch <-chan Event) []Event {
	var events []Event
	for {
		select {
		case event, ok := <-ch:
			if !ok {
				return events
			}
			events = append(events, event)
		default:
			return events
		}
	}
}
