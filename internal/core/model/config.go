package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig indicates a session configuration outside the accepted range.
var ErrInvalidConfig = errors.New("invalid session config")

// SessionConfig is fixed for the lifetime of a session.
type SessionConfig struct {
	BreathsPerRound int
	TotalRounds     int
}

// DefaultSessionConfig mirrors the presets offered on the setup screen.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		BreathsPerRound: 30,
		TotalRounds:     3,
	}
}

// Validate reports whether both counts are at least one.
func (config SessionConfig) Validate() error {
	if config.BreathsPerRound < 1 {
		return fmt.Errorf("%w: breaths per round must be >= 1, got %d", ErrInvalidConfig, config.BreathsPerRound)
	}
	if config.TotalRounds < 1 {
		return fmt.Errorf("%w: total rounds must be >= 1, got %d", ErrInvalidConfig, config.TotalRounds)
	}
	return nil
}

// Timing contains the scheduling constants of a session.
type Timing struct {
	// PreBreathDelay precedes every Breathing phase.
	PreBreathDelay time.Duration
	// BreathDuration is the length of one breath loop. A loaded breath
	// asset overrides it when the cue sink can report its duration.
	BreathDuration time.Duration
	// LoopLead offsets the audio anchor from the display timeline.
	LoopLead time.Duration

	RetentionTick         time.Duration
	RetentionBellInterval time.Duration

	RecoverySeconds   int
	RecoveryTick      time.Duration
	PostRecoveryPause time.Duration

	BellDebounce time.Duration

	// WarningBreathsFromEnd selects the breath that triggers the
	// end-of-round chime. Rounds not longer than this get no warning.
	WarningBreathsFromEnd int
}

// DefaultTiming returns the production timing values.
func DefaultTiming() Timing {
	return Timing{
		PreBreathDelay:        3 * time.Second,
		BreathDuration:        1800 * time.Millisecond,
		LoopLead:              100 * time.Millisecond,
		RetentionTick:         time.Second,
		RetentionBellInterval: time.Minute,
		RecoverySeconds:       15,
		RecoveryTick:          time.Second,
		PostRecoveryPause:     5 * time.Second,
		BellDebounce:          500 * time.Millisecond,
		WarningBreathsFromEnd: 5,
	}
}

// Normalize fills zero values with defaults.
func (timing Timing) Normalize() Timing {
	defaults := DefaultTiming()
	if timing.PreBreathDelay <= 0 {
		timing.PreBreathDelay = defaults.PreBreathDelay
	}
	if timing.BreathDuration <= 0 {
		timing.BreathDuration = defaults.BreathDuration
	}
	if timing.LoopLead < 0 {
		timing.LoopLead = 0
	}
	if timing.RetentionTick <= 0 {
		timing.RetentionTick = defaults.RetentionTick
	}
	if timing.RetentionBellInterval <= 0 {
		timing.RetentionBellInterval = defaults.RetentionBellInterval
	}
	if timing.RecoverySeconds <= 0 {
		timing.RecoverySeconds = defaults.RecoverySeconds
	}
	if timing.RecoveryTick <= 0 {
		timing.RecoveryTick = defaults.RecoveryTick
	}
	if timing.PostRecoveryPause <= 0 {
		timing.PostRecoveryPause = defaults.PostRecoveryPause
	}
	if timing.BellDebounce < 0 {
		timing.BellDebounce = 0
	}
	if timing.WarningBreathsFromEnd < 0 {
		timing.WarningBreathsFromEnd = 0
	}
	return timing
}
