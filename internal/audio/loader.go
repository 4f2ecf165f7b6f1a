package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/wav"
)

// DefaultSampleRate is the rate every cue is resampled to before playback.
const DefaultSampleRate = beep.SampleRate(44100)

// DefaultFiles maps cue kinds to asset file names inside the audio directory.
func DefaultFiles() map[CueKind]string {
	return map[CueKind]string{
		CueBreathLoop: "breath.mp3",
		CueBell:       "bell.mp3",
		CueChime:      "chime.mp3",
	}
}

// BufferHandle is a cue decoded fully into memory.
type BufferHandle struct {
	kind   CueKind
	buffer *beep.Buffer
}

func (handle *BufferHandle) Kind() CueKind {
	return handle.kind
}

func (handle *BufferHandle) Duration() time.Duration {
	return handle.buffer.Format().SampleRate.D(handle.buffer.Len())
}

// Streamer returns a fresh streamer over the whole buffer.
func (handle *BufferHandle) Streamer() beep.StreamSeeker {
	return handle.buffer.Streamer(0, handle.buffer.Len())
}

// FileLoader decodes mp3 or wav assets from a directory into memory.
type FileLoader struct {
	Dir        string
	Files      map[CueKind]string
	SampleRate beep.SampleRate
}

// NewFileLoader returns a loader for the default file names in dir.
func NewFileLoader(dir string) *FileLoader {
	return &FileLoader{
		Dir:        dir,
		Files:      DefaultFiles(),
		SampleRate: DefaultSampleRate,
	}
}

// Load decodes the asset for kind and buffers it fully.
func (loader *FileLoader) Load(ctx context.Context, kind CueKind) (Handle, error) {
	name, ok := loader.Files[kind]
	if !ok {
		return nil, &LoadError{Kind: kind, Err: ErrUnknownCue}
	}
	path := filepath.Join(loader.Dir, name)
	if err := ctx.Err(); err != nil {
		return nil, &LoadError{Kind: kind, Path: path, Err: err}
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Kind: kind, Path: path, Err: err}
	}

	streamer, format, err := decode(path, file)
	if err != nil {
		_ = file.Close()
		return nil, &LoadError{Kind: kind, Path: path, Err: err}
	}
	defer streamer.Close()

	target := loader.SampleRate
	if target == 0 {
		target = DefaultSampleRate
	}

	var source beep.Streamer = streamer
	if format.SampleRate != target {
		source = beep.Resample(4, format.SampleRate, target, streamer)
	}

	buffer := beep.NewBuffer(beep.Format{
		SampleRate:  target,
		NumChannels: format.NumChannels,
		Precision:   format.Precision,
	})
	buffer.Append(source)
	if err := streamer.Err(); err != nil {
		return nil, &LoadError{Kind: kind, Path: path, Err: err}
	}
	if buffer.Len() == 0 {
		return nil, &LoadError{Kind: kind, Path: path, Err: errors.New("empty audio stream")}
	}

	return &BufferHandle{kind: kind, buffer: buffer}, nil
}

func decode(path string, file *os.File) (beep.StreamSeekCloser, beep.Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return mp3.Decode(file)
	case ".wav":
		return wav.Decode(file)
	default:
		return nil, beep.Format{}, fmt.Errorf("unsupported audio format %q", filepath.Ext(path))
	}
}
