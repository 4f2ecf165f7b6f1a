package output

import (
	"fmt"
	"sync"
	"time"

	"breathkeeper/internal/audio"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/jonboulle/clockwork"
)

// SpeakerPlayer plays buffered cues through the default output device.
// Scheduled cues are expressed as leading silence measured in samples, so
// cues scheduled against one anchor stay sample-aligned.
type SpeakerPlayer struct {
	mu         sync.Mutex
	clock      clockwork.Clock
	sampleRate beep.SampleRate
	loops      []*beep.Ctrl
}

// NewSpeakerPlayer initialises the output device.
func NewSpeakerPlayer(clock clockwork.Clock, sampleRate beep.SampleRate) (*SpeakerPlayer, error) {
	if sampleRate == 0 {
		sampleRate = audio.DefaultSampleRate
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}
	return &SpeakerPlayer{clock: clock, sampleRate: sampleRate}, nil
}

// Play schedules handle to start at the given instant.
func (player *SpeakerPlayer) Play(handle audio.Handle, at time.Time) error {
	buffered, ok := handle.(*audio.BufferHandle)
	if !ok {
		return fmt.Errorf("unsupported handle type %T", handle)
	}

	delay := player.clock.Until(at)
	if delay < 0 {
		delay = 0
	}
	stream := beep.Seq(
		beep.Silence(player.sampleRate.N(delay)),
		buffered.Streamer(),
	)

	if !buffered.Kind().Looped() {
		speaker.Play(stream)
		return nil
	}

	ctrl := &beep.Ctrl{Streamer: stream}
	player.mu.Lock()
	player.loops = append(player.loops, ctrl)
	player.mu.Unlock()
	speaker.Play(ctrl)
	return nil
}

// StopLoops silences all looped cues, including ones still waiting in
// their leading silence.
func (player *SpeakerPlayer) StopLoops() {
	player.mu.Lock()
	loops := player.loops
	player.loops = nil
	player.mu.Unlock()

	if len(loops) == 0 {
		return
	}
	speaker.Lock()
	for _, ctrl := range loops {
		ctrl.Streamer = nil
	}
	speaker.Unlock()
}

// Close releases the output device.
func (player *SpeakerPlayer) Close() {
	player.StopLoops()
	speaker.Clear()
	speaker.Close()
}
