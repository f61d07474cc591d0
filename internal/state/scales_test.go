package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidScaleNameAcceptsKnownScales(t *testing.T) {
	assert.True(t, ValidScaleName("major"))
	assert.True(t, ValidScaleName("chromatic"))
	assert.False(t, ValidScaleName("not-a-scale"))
}

func TestQuantizeToScaleSnapsOffScaleNoteToNearestInScale(t *testing.T) {
	// C# (1) is not in C major; nearest scale tones are C (0) and D (2),
	// both distance 1 — QuantizeToScale's strict < comparison keeps the first found,
	// which iteration order makes C (closest note in Notes slice order).
	got := QuantizeToScale(1, "major", 0)
	assert.Contains(t, []int{0, 2}, got)
}

func TestQuantizeToScaleUnknownScaleReturnsNoteUnchanged(t *testing.T) {
	assert.Equal(t, 37, QuantizeToScale(37, "not-a-scale", 0))
}

func TestQuantizeToScalePreservesOctave(t *testing.T) {
	got := QuantizeToScale(24, "major", 0) // C2, already in scale
	assert.Equal(t, 24, got)
}

func TestQuantizeToScaleHandlesNegativeNotes(t *testing.T) {
	got := QuantizeToScale(-1, "chromatic", 0)
	assert.GreaterOrEqual(t, got, -12)
}
