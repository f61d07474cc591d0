package state

// Pad is one drum-sequencer sound slot.
type Pad struct {
	HasBuffer  bool
	BufferID   int
	Path       string
	Name       string
	Level      float64
	PitchOffs  int
	Reverse    bool
	SliceStart float32
	SliceEnd   float32
}

// StepCell is one (pad, step) cell in a pattern's step matrix.
type StepCell struct {
	Active      bool
	Velocity    float64
	Probability float64
	PitchOffset int
}

// Pattern is one drum-sequencer pattern: a fixed-length step matrix indexed
// pad-major, step-minor.
type Pattern struct {
	Length int
	Steps  [][]StepCell // Steps[pad][step]
}

// CellAt returns the cell for (pad, step), or a zero-value inactive cell if
// out of range.
func (p *Pattern) CellAt(pad, step int) StepCell {
	if p == nil || pad < 0 || pad >= len(p.Steps) || step < 0 || step >= len(p.Steps[pad]) {
		return StepCell{}
	}
	return p.Steps[pad][step]
}

// ChopperState is the drum sequencer's optional sample-chopping sub-state,
// carried through unchanged (no core behavior depends on its internals —
// it is addressed only by the persistence boundary, spec.md §6).
type ChopperState struct {
	Enabled bool
	Slices  []SamplerSlice
}

// DrumSequencer is an instrument's optional step sequencer, present iff the
// instrument's source kind is SourceDrumKit.
type DrumSequencer struct {
	Pads    []Pad
	Patterns []Pattern

	CurrentPattern int
	Chain          []int
	ChainEnabled   bool
	ChainPosition  int

	StepAccumulator float64
	CurrentStep     int
	LastPlayedStep  int
	Playing         bool
	Swing           float64

	Chopper *ChopperState
}

// Clone returns a value copy safe to hand across the bus.
func (d DrumSequencer) Clone() DrumSequencer {
	out := d
	out.Pads = append([]Pad(nil), d.Pads...)
	out.Patterns = make([]Pattern, len(d.Patterns))
	for i, pat := range d.Patterns {
		steps := make([][]StepCell, len(pat.Steps))
		for j, row := range pat.Steps {
			steps[j] = append([]StepCell(nil), row...)
		}
		out.Patterns[i] = Pattern{Length: pat.Length, Steps: steps}
	}
	out.Chain = append([]int(nil), d.Chain...)
	if d.Chopper != nil {
		c := *d.Chopper
		c.Slices = append([]SamplerSlice(nil), d.Chopper.Slices...)
		out.Chopper = &c
	}
	return out
}

// CurrentPatternOrNil returns the pattern at CurrentPattern, or nil if the
// index is out of range.
func (d *DrumSequencer) CurrentPatternOrNil() *Pattern {
	if d == nil || d.CurrentPattern < 0 || d.CurrentPattern >= len(d.Patterns) {
		return nil
	}
	return &d.Patterns[d.CurrentPattern]
}
