package cli

import (
	"log/slog"

	"breathkeeper/internal/audio"
	"breathkeeper/internal/audio/output"

	"github.com/jonboulle/clockwork"
)

// openPlayer opens the default output device, falling back to silence.
func openPlayer(clock clockwork.Clock, logger *slog.Logger) (audio.Player, func()) {
	player, err := output.NewSpeakerPlayer(clock, audio.DefaultSampleRate)
	if err != nil {
		logger.Warn("audio output unavailable, running silent", "error", err)
		return audio.SilentPlayer{}, nil
	}
	return player, player.Close
}
