// Package render reads back on-disk artifacts the synthesis process writes
// through /b_write (master bounce, per-instrument render, stem export —
// spec.md §6): duration, sample rate, and peak level, reported for the
// lifecycle feedback layer. The core never writes these files itself, only
// supplies the path to the /b_write command; this package only reads what
// comes back. Grounded on the donor's internal/getbpm (WAV decoding and
// PCM-length arithmetic) and internal/audio/audio.go (how the donor
// consumes getbpm's output for playback metadata).
package render

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/wav"
)

// Artifact describes one rendered WAV file's measured properties.
type Artifact struct {
	Path       string
	Seconds    float64
	SampleRate int64
	Channels   int
	PeakLevel  float64 // 0..1, max absolute sample across all channels
}

// Inspect opens path, decodes its WAV header and PCM data, and reports
// duration/peak. Mirrors the donor's Length()'s PCM-vs-non-PCM branching
// but additionally scans samples for peak level, which the donor's bpm-
// guessing use case never needed.
func Inspect(path string) (Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return Artifact{}, fmt.Errorf("render: opening %q: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return Artifact{}, fmt.Errorf("render: %q is not a valid WAV file", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Artifact{}, fmt.Errorf("render: decoding %q: %w", path, err)
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return Artifact{}, fmt.Errorf("render: %q decoded to an empty buffer", path)
	}

	channels := buf.Format.NumChannels
	sampleRate := int64(buf.Format.SampleRate)
	frames := len(buf.Data) / channels

	maxAbs := 0
	for _, sample := range buf.Data {
		if sample < 0 {
			sample = -sample
		}
		if sample > maxAbs {
			maxAbs = sample
		}
	}

	fullScale := (1 << uint(buf.SourceBitDepth-1)) - 1
	if fullScale <= 0 {
		fullScale = 1
	}

	seconds := 0.0
	if sampleRate > 0 {
		seconds = float64(frames) / float64(sampleRate)
	}

	return Artifact{
		Path:       path,
		Seconds:    seconds,
		SampleRate: sampleRate,
		Channels:   channels,
		PeakLevel:  math.Min(1.0, float64(maxAbs)/float64(fullScale)),
	}, nil
}
