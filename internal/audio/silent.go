package audio

import "time"

// SilentPlayer accepts every cue and produces no sound. It stands in for
// SpeakerPlayer when no output device can be opened, so loaded cue
// durations still drive the session timeline.
type SilentPlayer struct{}

func (SilentPlayer) Play(Handle, time.Time) error { return nil }

func (SilentPlayer) StopLoops() {}
