package state

// ArpDirection tags how the arpeggiator orders its expanded step sequence.
type ArpDirection int

const (
	ArpUp ArpDirection = iota
	ArpDown
	ArpUpDown
	ArpRandom
)

// ArpRate tags the arpeggiator's step subdivision, expressed in steps per
// beat so the tick loop can compute steps_per_second = BPM/60 * StepsPerBeat.
type ArpRate int

const (
	ArpRateQuarter ArpRate = iota
	ArpRateEighth
	ArpRateSixteenth
	ArpRateThirtySecond
)

// StepsPerBeat returns the rate's subdivision count.
func (r ArpRate) StepsPerBeat() float64 {
	switch r {
	case ArpRateQuarter:
		return 1
	case ArpRateEighth:
		return 2
	case ArpRateSixteenth:
		return 4
	case ArpRateThirtySecond:
		return 8
	default:
		return 1
	}
}

// ArpeggiatorConfig is an instrument's arpeggiator settings (spec.md §3.1).
type ArpeggiatorConfig struct {
	Enabled   bool
	Direction ArpDirection
	Rate      ArpRate
	Octaves   int // [1,4]
	Gate      float64 // [0.1, 1]
}

// ArpeggiatorRuntime is the per-instrument runtime state the tick loop
// maintains across ticks; it is NOT part of the snapshot handed across the
// bus (the audio thread owns it exclusively); internal/engine keeps one per
// instrument, and the snapshot carryover helpers do not touch it.
type ArpeggiatorRuntime struct {
	Held          []int // sorted ascending, the held pitch set
	StepIndex     int
	Ascending     bool // up-down ping-pong bookkeeping
	Accumulator   float64
	CurrentPitch  int
	HasCurrent    bool
}

// AddHeld inserts pitch into Held keeping it sorted and de-duplicated.
func (r *ArpeggiatorRuntime) AddHeld(pitch int) {
	for _, p := range r.Held {
		if p == pitch {
			return
		}
	}
	r.Held = append(r.Held, pitch)
	// insertion sort, the held set is always small
	for i := len(r.Held) - 1; i > 0 && r.Held[i-1] > r.Held[i]; i-- {
		r.Held[i-1], r.Held[i] = r.Held[i], r.Held[i-1]
	}
}

// RemoveHeld removes pitch from Held, if present.
func (r *ArpeggiatorRuntime) RemoveHeld(pitch int) {
	for i, p := range r.Held {
		if p == pitch {
			r.Held = append(r.Held[:i], r.Held[i+1:]...)
			return
		}
	}
}

// ExpandedSteps builds the full step sequence: Held pitches expanded across
// Octaves octaves (sorted), then reordered per Direction.
func ExpandedSteps(held []int, octaves int, dir ArpDirection, ascending bool) []int {
	if len(held) == 0 || octaves < 1 {
		return nil
	}
	expanded := make([]int, 0, len(held)*octaves)
	for o := 0; o < octaves; o++ {
		for _, p := range held {
			expanded = append(expanded, p+12*o)
		}
	}
	switch dir {
	case ArpDown:
		reversed := make([]int, len(expanded))
		for i, v := range expanded {
			reversed[len(expanded)-1-i] = v
		}
		return reversed
	case ArpUpDown:
		if !ascending {
			reversed := make([]int, len(expanded))
			for i, v := range expanded {
				reversed[len(expanded)-1-i] = v
			}
			return reversed
		}
		return expanded
	default: // ArpUp, ArpRandom (caller picks a random index directly)
		return expanded
	}
}
