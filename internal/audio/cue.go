package audio

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// CueKind identifies one of the audio signals played during a session.
type CueKind string

const (
	CueBreathLoop CueKind = "breath-loop"
	CueChime      CueKind = "chime"
	CueBell       CueKind = "bell"
)

// Kinds lists every cue kind in load order.
func Kinds() []CueKind {
	return []CueKind{CueBreathLoop, CueBell, CueChime}
}

// Looped reports whether the kind is scheduled as back-to-back loops.
func (kind CueKind) Looped() bool {
	return kind == CueBreathLoop
}

var (
	// ErrCueNotReady indicates that a cue was requested before its asset finished loading.
	ErrCueNotReady = errors.New("cue not ready")
	// ErrCueDebounced indicates that a bell was dropped because another bell
	// played within the de-bounce window.
	ErrCueDebounced = errors.New("cue debounced")
	// ErrUnknownCue indicates a cue kind without an asset mapping.
	ErrUnknownCue = errors.New("unknown cue kind")
)

// LoadError describes a failed asset load for a single cue kind.
type LoadError struct {
	Kind CueKind
	Path string
	Err  error
}

func (err *LoadError) Error() string {
	if err.Path == "" {
		return fmt.Sprintf("load cue %s: %v", err.Kind, err.Err)
	}
	return fmt.Sprintf("load cue %s from %s: %v", err.Kind, err.Path, err.Err)
}

func (err *LoadError) Unwrap() error {
	return err.Err
}

// Handle is a decoded cue ready for playback.
type Handle interface {
	Kind() CueKind
	Duration() time.Duration
}

// Loader decodes the asset behind a cue kind.
type Loader interface {
	Load(ctx context.Context, kind CueKind) (Handle, error)
}

// Player produces sound for decoded cues.
type Player interface {
	// Play starts the handle at the given instant. Instants in the past
	// start immediately.
	Play(handle Handle, at time.Time) error
	// StopLoops silences every scheduled or sounding looped cue.
	StopLoops()
}
