package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sourcegraph/conc/pool"
)

// Library holds loaded cue handles and forwards playback to a Player.
// Loading happens in the background; cues requested before their handle
// arrives fail with ErrCueNotReady.
type Library struct {
	mu      sync.RWMutex
	loader  Loader
	player  Player
	clock   clockwork.Clock
	logger  *slog.Logger
	handles map[CueKind]Handle
}

// NewLibrary creates an empty library.
func NewLibrary(loader Loader, player Player, clock clockwork.Clock, logger *slog.Logger) *Library {
	if logger == nil {
		logger = slog.Default()
	}
	return &Library{
		loader:  loader,
		player:  player,
		clock:   clock,
		logger:  logger,
		handles: make(map[CueKind]Handle),
	}
}

// LoadAll loads every cue kind concurrently. Kinds that load successfully
// become playable even when others fail; the returned error joins one
// *LoadError per failed kind.
func (library *Library) LoadAll(ctx context.Context) error {
	loaders := pool.New().WithContext(ctx)
	for _, kind := range Kinds() {
		loaders.Go(func(ctx context.Context) error {
			return library.Load(ctx, kind)
		})
	}
	return loaders.Wait()
}

// Load loads a single cue kind.
func (library *Library) Load(ctx context.Context, kind CueKind) error {
	handle, err := library.loader.Load(ctx, kind)
	if err != nil {
		var loadErr *LoadError
		if !errors.As(err, &loadErr) {
			err = &LoadError{Kind: kind, Err: err}
		}
		library.logger.Warn("cue load failed", "cue", string(kind), "error", err)
		return err
	}

	library.mu.Lock()
	library.handles[kind] = handle
	library.mu.Unlock()

	library.logger.Debug("cue loaded", "cue", string(kind), "duration", handle.Duration())
	return nil
}

// Ready reports whether the kind has a loaded handle.
func (library *Library) Ready(kind CueKind) bool {
	library.mu.RLock()
	defer library.mu.RUnlock()
	_, ok := library.handles[kind]
	return ok
}

// CueDuration returns the playback length of a loaded cue.
func (library *Library) CueDuration(kind CueKind) (time.Duration, bool) {
	library.mu.RLock()
	defer library.mu.RUnlock()
	handle, ok := library.handles[kind]
	if !ok {
		return 0, false
	}
	return handle.Duration(), true
}

// Play starts a cue immediately.
func (library *Library) Play(kind CueKind) error {
	return library.PlayAt(kind, library.clock.Now())
}

// PlayAt starts a cue at the given instant.
func (library *Library) PlayAt(kind CueKind, at time.Time) error {
	library.mu.RLock()
	handle, ok := library.handles[kind]
	library.mu.RUnlock()
	if !ok {
		return fmt.Errorf("play %s: %w", kind, ErrCueNotReady)
	}
	if err := library.player.Play(handle, at); err != nil {
		return fmt.Errorf("play %s: %w", kind, err)
	}
	return nil
}

// StopLoops silences every breath loop that is scheduled or sounding.
func (library *Library) StopLoops() {
	library.player.StopLoops()
}
