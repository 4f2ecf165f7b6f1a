package bootstrap

import (
	"context"
	"log/slog"

	"breathkeeper/internal/audio"
	"breathkeeper/internal/core/session"
	"breathkeeper/internal/storage"

	"github.com/jonboulle/clockwork"
)

// Runtime wires the audio library, the bell gate and the scheduler for one
// process.
type Runtime struct {
	logger      *slog.Logger
	library     *audio.Library
	scheduler   *session.Scheduler
	closePlayer func()
	cancelLoad  context.CancelFunc
	loadDone    chan struct{}
}

// NewRuntime builds the session stack for settings. Cue loading starts
// with LoadCues.
func NewRuntime(settings storage.Settings, clock clockwork.Clock, player audio.Player, closePlayer func(), logger *slog.Logger) (*Runtime, error) {
	timing := settings.Timing()
	library := audio.NewLibrary(audio.NewFileLoader(settings.AudioDir), player, clock, logger)
	gate := audio.NewBellGate(library, clock, timing.BellDebounce)

	scheduler, err := session.New(settings.SessionConfig(), gate, clock, session.Options{
		Timing: timing,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	if closePlayer == nil {
		closePlayer = func() {}
	}

	return &Runtime{
		logger:      logger,
		library:     library,
		scheduler:   scheduler,
		closePlayer: closePlayer,
		loadDone:    make(chan struct{}),
	}, nil
}

// LoadCues decodes every cue in the background. Cues requested before
// they finish loading are skipped by the scheduler.
func (rt *Runtime) LoadCues(ctx context.Context) {
	ctx, rt.cancelLoad = context.WithCancel(ctx)
	go func() {
		defer close(rt.loadDone)
		if err := rt.library.LoadAll(ctx); err != nil {
			rt.logger.Warn("some cues are unavailable", "error", err)
			return
		}
		rt.logger.Info("cues loaded")
	}()
}

// Close stops loading, cancels the session and releases the device.
func (rt *Runtime) Close() {
	if rt.cancelLoad != nil {
		rt.cancelLoad()
		<-rt.loadDone
	}
	rt.scheduler.Close()
	rt.closePlayer()
}

// Scheduler returns the session state machine.
func (rt *Runtime) Scheduler() *session.Scheduler {
	return rt.scheduler
}

// Library returns the cue library.
func (rt *Runtime) Library() *audio.Library {
	return rt.library
}

// LoadDone is closed once background cue loading has finished.
func (rt *Runtime) LoadDone() <-chan struct{} {
	return rt.loadDone
}
