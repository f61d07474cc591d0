package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestWAV(t *testing.T, path string, data []int, sampleRate, bitDepth, channels int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, bitDepth, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{SampleRate: sampleRate, NumChannels: channels},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
}

func TestInspectReportsDurationSampleRateAndChannels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	data := make([]int, 4410) // 0.1s mono at 44100Hz
	writeTestWAV(t, path, data, 44100, 16, 1)

	artifact, err := Inspect(path)
	require.NoError(t, err)
	assert.Equal(t, int64(44100), artifact.SampleRate)
	assert.Equal(t, 1, artifact.Channels)
	assert.InDelta(t, 0.1, artifact.Seconds, 0.01)
}

func TestInspectReportsPeakLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peak.wav")
	fullScale := (1 << 15) - 1
	data := []int{0, fullScale, 0, -fullScale}
	writeTestWAV(t, path, data, 44100, 16, 1)

	artifact, err := Inspect(path)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, artifact.PeakLevel, 0.01)
}

func TestInspectMissingFileReturnsError(t *testing.T) {
	_, err := Inspect(filepath.Join(t.TempDir(), "nope.wav"))
	assert.Error(t, err)
}

func TestInspectRejectsNonWAVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-wav.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	_, err := Inspect(path)
	assert.Error(t, err)
}
