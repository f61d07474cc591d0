package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyInstrumentSnapshotCarriesDrumRuntimeWhenNewIsPlaying(t *testing.T) {
	old := InstrumentSnapshot{Instruments: []Instrument{
		{ID: 1, Drum: &DrumSequencer{CurrentStep: 5, StepAccumulator: 0.75, LastPlayedStep: 4, Playing: true}},
	}}
	next := InstrumentSnapshot{Instruments: []Instrument{
		{ID: 1, Drum: &DrumSequencer{CurrentStep: 0, StepAccumulator: 0, LastPlayedStep: 0, Playing: true}},
	}}

	out := ApplyInstrumentSnapshot(old, next)
	assert.Equal(t, 5, out.Instruments[0].Drum.CurrentStep)
	assert.Equal(t, 0.75, out.Instruments[0].Drum.StepAccumulator)
	assert.Equal(t, 4, out.Instruments[0].Drum.LastPlayedStep)
}

func TestApplyInstrumentSnapshotDoesNotCarryWhenNewIsStopped(t *testing.T) {
	old := InstrumentSnapshot{Instruments: []Instrument{
		{ID: 1, Drum: &DrumSequencer{CurrentStep: 5, Playing: true}},
	}}
	next := InstrumentSnapshot{Instruments: []Instrument{
		{ID: 1, Drum: &DrumSequencer{CurrentStep: 0, Playing: false}},
	}}

	out := ApplyInstrumentSnapshot(old, next)
	assert.Equal(t, 0, out.Instruments[0].Drum.CurrentStep)
}

func TestApplyPianoRollSnapshotPreservesTransport(t *testing.T) {
	old := PianoRoll{Playhead: 960, Playing: true}
	incoming := PianoRoll{Playhead: 0, Playing: false, Swing: 0.2}

	out := ApplyPianoRollSnapshot(old, incoming)
	assert.Equal(t, int64(960), out.Playhead)
	assert.True(t, out.Playing)
	assert.Equal(t, 0.2, out.Swing)
}

func TestLaneInsertAndRemovePoint(t *testing.T) {
	lane := Lane{}
	lane.InsertPoint(0, 120, CurveLinear)
	lane.InsertPoint(1920, 240, CurveLinear)
	assert.Len(t, lane.Points, 2)

	lane.InsertPoint(0, 100, CurveLinear)
	assert.Len(t, lane.Points, 2)
	assert.Equal(t, 100.0, lane.Points[0].Value)

	lane.RemovePoint(1920)
	assert.Len(t, lane.Points, 1)
}

func TestPitchToFreq(t *testing.T) {
	assert.Equal(t, 440.0, PitchToFreq(440, 69))
	assert.InDelta(t, 880.0, PitchToFreq(440, 81), 0.0001)
	assert.InDelta(t, 220.0, PitchToFreq(440, 57), 0.0001)
}
