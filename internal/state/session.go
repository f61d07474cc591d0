package state

// Bus is one entry in the session's fixed-count bus list.
type Bus struct {
	ID    int
	Name  string
	Level float64
	Mute  bool
}

// Session is the global musical state shared across all instruments.
type Session struct {
	Buses       []Bus
	MasterLevel float64
	MasterMute  bool
	BPM         float64
	TimeSigNum  int
	TimeSigDen  int
	Key         int
	Scale       string
	TuningA4    float64

	MIDIRecording     MIDIRecordingSettings
	HumanizeTiming    float64 // 0..1
	HumanizeVelocity  float64 // 0..1

	CustomSynthDefs map[string]string // name -> compiled path, resolves Self::source_synth_def equivalents
}

// MIDIRecordingSettings mirrors the donor's MIDI-settings block, carried at
// the session level since recording applies across instruments.
type MIDIRecordingSettings struct {
	Enabled bool
	Device  string
	Channel int
}

// DefaultSession returns a Session with the donor's conventional defaults
// (A440 tuning, 120 BPM, 4/4, numBuses mixer buses starting at bus 1).
func DefaultSession(numBuses int) Session {
	buses := make([]Bus, numBuses)
	for i := range buses {
		buses[i] = Bus{ID: i + 1, Name: "", Level: 1.0}
	}
	return Session{
		Buses:           buses,
		MasterLevel:     1.0,
		BPM:             120,
		TimeSigNum:      4,
		TimeSigDen:      4,
		TuningA4:        440,
		CustomSynthDefs: map[string]string{},
	}
}

// Clone returns a value copy safe to hand across the bus.
func (s Session) Clone() Session {
	out := s
	out.Buses = append([]Bus(nil), s.Buses...)
	out.CustomSynthDefs = make(map[string]string, len(s.CustomSynthDefs))
	for k, v := range s.CustomSynthDefs {
		out.CustomSynthDefs[k] = v
	}
	return out
}

// PitchToFreq implements spec.md §8's round-trip property:
// pitch_to_freq(pitch) = tuning · 2^((pitch-69)/12); pitch_to_freq(69) = tuning exactly.
func (s Session) PitchToFreq(pitch int) float64 {
	return PitchToFreq(s.TuningA4, pitch)
}
