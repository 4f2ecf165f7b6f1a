package audio

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHandle struct {
	kind     CueKind
	duration time.Duration
}

func (h stubHandle) Kind() CueKind           { return h.kind }
func (h stubHandle) Duration() time.Duration { return h.duration }

type stubLoader struct {
	failures map[CueKind]error
}

func (l *stubLoader) Load(_ context.Context, kind CueKind) (Handle, error) {
	if err, ok := l.failures[kind]; ok {
		return nil, err
	}
	return stubHandle{kind: kind, duration: 2 * time.Second}, nil
}

type playedCue struct {
	Kind CueKind
	At   time.Time
}

type recordingPlayer struct {
	mu     sync.Mutex
	played []playedCue
	stops  int
}

func (p *recordingPlayer) Play(handle Handle, at time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.played = append(p.played, playedCue{Kind: handle.Kind(), At: at})
	return nil
}

func (p *recordingPlayer) StopLoops() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stops++
}

func (p *recordingPlayer) getPlayed() []playedCue {
	p.mu.Lock()
	defer p.mu.Unlock()
	result := make([]playedCue, len(p.played))
	copy(result, p.played)
	return result
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLibrary_PlayBeforeLoadIsNotReady(t *testing.T) {
	clock := clockwork.NewFakeClock()
	player := &recordingPlayer{}
	library := NewLibrary(&stubLoader{}, player, clock, quietLogger())

	err := library.Play(CueBell)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCueNotReady)
	assert.Empty(t, player.getPlayed())
}

func TestLibrary_LoadAllMakesCuesPlayable(t *testing.T) {
	clock := clockwork.NewFakeClock()
	player := &recordingPlayer{}
	library := NewLibrary(&stubLoader{}, player, clock, quietLogger())

	require.NoError(t, library.LoadAll(context.Background()))

	for _, kind := range Kinds() {
		assert.True(t, library.Ready(kind), "kind %s should be ready", kind)
	}

	at := clock.Now().Add(3 * time.Second)
	require.NoError(t, library.PlayAt(CueBreathLoop, at))
	require.NoError(t, library.Play(CueChime))

	played := player.getPlayed()
	require.Len(t, played, 2)
	assert.Equal(t, playedCue{Kind: CueBreathLoop, At: at}, played[0])
	assert.Equal(t, playedCue{Kind: CueChime, At: clock.Now()}, played[1])

	duration, ok := library.CueDuration(CueBreathLoop)
	assert.True(t, ok)
	assert.Equal(t, 2*time.Second, duration)
}

func TestLibrary_PartialLoadFailure(t *testing.T) {
	clock := clockwork.NewFakeClock()
	loader := &stubLoader{failures: map[CueKind]error{
		CueChime: errors.New("decode failed"),
	}}
	library := NewLibrary(loader, &recordingPlayer{}, clock, quietLogger())

	err := library.LoadAll(context.Background())
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, CueChime, loadErr.Kind)

	assert.True(t, library.Ready(CueBell))
	assert.True(t, library.Ready(CueBreathLoop))
	assert.False(t, library.Ready(CueChime))
	assert.ErrorIs(t, library.Play(CueChime), ErrCueNotReady)
}

func TestLibrary_StopLoopsForwards(t *testing.T) {
	player := &recordingPlayer{}
	library := NewLibrary(&stubLoader{}, player, clockwork.NewFakeClock(), quietLogger())

	library.StopLoops()
	library.StopLoops()

	player.mu.Lock()
	defer player.mu.Unlock()
	assert.Equal(t, 2, player.stops)
}

func TestLibrary_SilentPlayerAcceptsLoadedCues(t *testing.T) {
	clock := clockwork.NewFakeClock()
	library := NewLibrary(&stubLoader{}, SilentPlayer{}, clock, quietLogger())

	require.NoError(t, library.Load(context.Background(), CueBell))
	assert.NoError(t, library.Play(CueBell))
	duration, ok := library.CueDuration(CueBell)
	assert.True(t, ok)
	assert.Equal(t, 2*time.Second, duration)
	library.StopLoops()
}
