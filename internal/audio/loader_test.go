package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeSilence encodes samples frames of silence as a wav file.
func writeSilence(t *testing.T, path string, rate beep.SampleRate, samples int) {
	t.Helper()
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()

	format := beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}
	require.NoError(t, wav.Encode(file, beep.Silence(samples), format))
}

func TestFileLoader_DecodesWav(t *testing.T) {
	dir := t.TempDir()
	writeSilence(t, filepath.Join(dir, "bell.wav"), DefaultSampleRate, int(DefaultSampleRate))

	loader := NewFileLoader(dir)
	loader.Files[CueBell] = "bell.wav"

	handle, err := loader.Load(context.Background(), CueBell)
	require.NoError(t, err)
	assert.Equal(t, CueBell, handle.Kind())
	assert.Equal(t, time.Second, handle.Duration())
}

func TestFileLoader_ResamplesToTargetRate(t *testing.T) {
	dir := t.TempDir()
	writeSilence(t, filepath.Join(dir, "breath.wav"), 22050, 22050*2)

	loader := NewFileLoader(dir)
	loader.Files[CueBreathLoop] = "breath.wav"

	handle, err := loader.Load(context.Background(), CueBreathLoop)
	require.NoError(t, err)
	assert.InDelta(t, 2*time.Second, handle.Duration(), float64(10*time.Millisecond))
}

func TestFileLoader_UnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chime.ogg"), []byte("not audio"), 0o644))

	loader := NewFileLoader(dir)
	loader.Files[CueChime] = "chime.ogg"

	_, err := loader.Load(context.Background(), CueChime)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported audio format")
}

func TestFileLoader_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFileLoader(t.TempDir()).Load(ctx, CueBell)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileLoader_MissingFile(t *testing.T) {
	loader := NewFileLoader(t.TempDir())

	_, err := loader.Load(context.Background(), CueBell)
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, CueBell, loadErr.Kind)
	assert.Contains(t, loadErr.Path, "bell.mp3")
}

func TestFileLoader_UnknownKind(t *testing.T) {
	loader := &FileLoader{Dir: t.TempDir(), Files: map[CueKind]string{}}

	_, err := loader.Load(context.Background(), CueChime)
	assert.ErrorIs(t, err, ErrUnknownCue)
}

func TestLoadError_Message(t *testing.T) {
	err := &LoadError{Kind: CueBell, Path: "/tmp/bell.mp3", Err: errors.New("boom")}
	assert.Equal(t, "load cue bell from /tmp/bell.mp3: boom", err.Error())

	err = &LoadError{Kind: CueChime, Err: errors.New("boom")}
	assert.Equal(t, "load cue chime: boom", err.Error())
}
