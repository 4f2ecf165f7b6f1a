package storage

import (
	"testing"
	"time"

	"breathkeeper/internal/core/model"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSettings_IsValidSession(t *testing.T) {
	settings := DefaultSettings()

	assert.Equal(t, model.DefaultSessionConfig(), settings.SessionConfig())
	assert.NoError(t, settings.SessionConfig().Validate())
}

func TestSettings_Timing(t *testing.T) {
	settings := DefaultSettings()
	assert.Equal(t, model.DefaultTiming(), settings.Timing())

	settings.BreathDuration = 2500 * time.Millisecond
	assert.Equal(t, 2500*time.Millisecond, settings.Timing().BreathDuration)
}
