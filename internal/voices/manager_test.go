package voices

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schollz/voicecore/internal/state"
	"github.com/schollz/voicecore/internal/wire"
)

// fakeAllocator hands back a fixed audio bus for every instrument so tests
// don't need a running internal/routing.Builder.
type fakeAllocator struct{}

func (fakeAllocator) AudioBus(instrumentID int, kind string) (int32, bool) {
	return state.FirstAudioBus + int32(instrumentID), true
}

func (fakeAllocator) ControlBus(instrumentID int, kind string) (int32, bool) {
	return 500 + int32(instrumentID), true
}

func newTestManager() *Manager {
	m := NewManager(wire.NewClient("127.0.0.1", 57110), fakeAllocator{})
	return m
}

func oscInstrument(id int) state.Instrument {
	return state.Instrument{
		ID:     id,
		Name:   "osc",
		Source: state.SourceOscillator,
		AmpEnvelope: state.Envelope{
			Attack: 0.01, Decay: 0.1, Sustain: 0.8, Release: 0.2,
		},
	}
}

func TestSpawnVoiceTracksChain(t *testing.T) {
	m := newTestManager()
	inst := oscInstrument(1)
	session := state.DefaultSession(4)

	require.NoError(t, m.SpawnVoice(inst, 60, 1.0, 0, session))
	chains := m.ActiveChains()
	require.Len(t, chains, 1)
	assert.Equal(t, 1, chains[0].InstrumentID)
	assert.Equal(t, 60, chains[0].Pitch)
	assert.GreaterOrEqual(t, chains[0].GroupID, state.FirstGroupID)
}

func TestSeventeenthSpawnStealsOldest(t *testing.T) {
	m := newTestManager()
	inst := oscInstrument(2)
	session := state.DefaultSession(4)

	base := time.Now()
	tick := 0
	m.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Millisecond)
	}

	for pitch := 0; pitch < state.MaxVoicesPerInstrument; pitch++ {
		require.NoError(t, m.SpawnVoice(inst, 40+pitch, 1.0, 0, session))
	}
	require.Len(t, m.ActiveChains(), state.MaxVoicesPerInstrument)

	require.NoError(t, m.SpawnVoice(inst, 99, 1.0, 0, session))
	chains := m.ActiveChains()
	require.Len(t, chains, state.MaxVoicesPerInstrument)

	for _, c := range chains {
		assert.NotEqual(t, 40, c.Pitch, "oldest voice (pitch 40) should have been stolen")
	}
	found := false
	for _, c := range chains {
		if c.Pitch == 99 {
			found = true
		}
	}
	assert.True(t, found, "newly spawned voice should be present")
}

func TestReleaseVoiceRemovesChain(t *testing.T) {
	m := newTestManager()
	inst := oscInstrument(3)
	session := state.DefaultSession(4)

	require.NoError(t, m.SpawnVoice(inst, 64, 1.0, 0, session))
	require.Len(t, m.ActiveChains(), 1)

	require.NoError(t, m.ReleaseVoice(inst, 64, 0))
	assert.Empty(t, m.ActiveChains())
}

func TestSetSourceParamTargetsLiveVoicesNodeIDs(t *testing.T) {
	m := newTestManager()
	inst := oscInstrument(6)
	session := state.DefaultSession(4)

	require.NoError(t, m.SpawnVoice(inst, 60, 1.0, 0, session))
	require.NoError(t, m.SpawnVoice(inst, 64, 1.0, 0, session))
	require.Len(t, m.ActiveChains(), 2)

	require.NoError(t, m.SetSourceParam(inst.ID, "cutoff", 800))
}

func TestSetSourceParamIgnoresOtherInstruments(t *testing.T) {
	m := newTestManager()
	inst := oscInstrument(7)
	session := state.DefaultSession(4)

	require.NoError(t, m.SpawnVoice(inst, 60, 1.0, 0, session))
	require.NoError(t, m.SetSourceParam(99, "cutoff", 800))
}

func TestReleaseAllClearsChains(t *testing.T) {
	m := newTestManager()
	inst := oscInstrument(4)
	session := state.DefaultSession(4)

	for pitch := 0; pitch < 5; pitch++ {
		require.NoError(t, m.SpawnVoice(inst, 40+pitch, 1.0, 0, session))
	}
	require.Len(t, m.ActiveChains(), 5)
	m.ReleaseAll()
	assert.Empty(t, m.ActiveChains())
}

func TestSpawnVoiceSkipsAudioAndBusInput(t *testing.T) {
	m := newTestManager()
	session := state.DefaultSession(4)

	audioIn := oscInstrument(5)
	audioIn.Source = state.SourceAudioInput
	require.NoError(t, m.SpawnVoice(audioIn, 60, 1.0, 0, session))
	assert.Empty(t, m.ActiveChains())

	busIn := oscInstrument(6)
	busIn.Source = state.SourceBusInput
	require.NoError(t, m.SpawnVoice(busIn, 60, 1.0, 0, session))
	assert.Empty(t, m.ActiveChains())
}

func TestSpawnSamplerVoiceRequiresBuffer(t *testing.T) {
	m := newTestManager()
	session := state.DefaultSession(4)
	inst := oscInstrument(7)
	inst.Source = state.SourceSampler

	err := m.SpawnVoice(inst, 60, 1.0, 0, session)
	assert.Error(t, err)

	inst.SamplerConfig = &state.SamplerConfig{BufferID: 3, HasBuffer: true}
	require.NoError(t, m.SpawnVoice(inst, 60, 1.0, 0, session))
	assert.Len(t, m.ActiveChains(), 1)
}

func TestPitchToFreqRoundTrip(t *testing.T) {
	session := state.DefaultSession(2)
	assert.InDelta(t, 440.0, session.PitchToFreq(69), 1e-9)
	assert.InDelta(t, 880.0, session.PitchToFreq(81), 1e-6)
}

func TestPlayDrumHitAcceptsNegativeRateForReverse(t *testing.T) {
	m := newTestManager()
	require.NoError(t, m.PlayDrumHit(3, 0.9, 1, 0, 0.5, -1))
}

func TestDistinctInstrumentsDoNotShareStealBudget(t *testing.T) {
	m := newTestManager()
	session := state.DefaultSession(4)
	a := oscInstrument(10)
	b := oscInstrument(11)

	for pitch := 0; pitch < state.MaxVoicesPerInstrument; pitch++ {
		require.NoError(t, m.SpawnVoice(a, pitch, 1.0, 0, session))
	}
	require.NoError(t, m.SpawnVoice(b, 1, 1.0, 0, session))

	assert.Len(t, m.ActiveChains(), state.MaxVoicesPerInstrument+1)
}
