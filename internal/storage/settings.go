package storage

import (
	"time"

	"breathkeeper/internal/core/model"
)

// Settings defines editable user preferences.
type Settings struct {
	BreathsPerRound int
	TotalRounds     int

	// AudioDir holds the cue files. Empty means the working directory.
	AudioDir string
	// BreathDuration overrides the fallback breath length used when the
	// breath asset is not loaded. Zero keeps the built-in value.
	BreathDuration time.Duration

	LogLevel  string
	LogFormat string
}

// DefaultSettings returns default settings for breathkeeper.
func DefaultSettings() Settings {
	config := model.DefaultSessionConfig()
	return Settings{
		BreathsPerRound: config.BreathsPerRound,
		TotalRounds:     config.TotalRounds,
		AudioDir:        "assets",
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// SessionConfig converts settings to a SessionConfig.
func (settings Settings) SessionConfig() model.SessionConfig {
	return model.SessionConfig{
		BreathsPerRound: settings.BreathsPerRound,
		TotalRounds:     settings.TotalRounds,
	}
}

// Timing converts settings to scheduler timing.
func (settings Settings) Timing() model.Timing {
	timing := model.DefaultTiming()
	if settings.BreathDuration > 0 {
		timing.BreathDuration = settings.BreathDuration
	}
	return timing
}
