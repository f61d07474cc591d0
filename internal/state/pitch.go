package state

import "math"

// PitchToFreq converts a MIDI pitch (0-127) to Hz given a tuning reference
// for A4 (MIDI note 69). Exact at pitch 69; doubles per octave.
func PitchToFreq(tuningA4 float64, pitch int) float64 {
	return tuningA4 * math.Pow(2, (float64(pitch)-69)/12)
}
