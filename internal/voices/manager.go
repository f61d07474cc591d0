// Package voices implements the Voice Manager: spawn/steal/release of
// per-note voice chains on the remote synthesis server, and their eventual
// reclamation after the envelope release tail. Grounded on
// original_source/imbolc-core/src/audio/engine/voices.rs (exact bundle
// construction order and VoiceChain shape) and
// _examples/other_examples/...audio-voice_allocator.go.go's oldest-steal
// idiom, translated to the slice-of-chains shape the original uses
// (spec.md §4.3).
package voices

import (
	"fmt"
	"time"

	"github.com/hypebeast/go-osc/osc"

	"github.com/schollz/voicecore/internal/state"
	"github.com/schollz/voicecore/internal/wire"
)

// BusAllocator resolves the audio/control buses a routing rebuild assigned
// to an instrument. Implemented by internal/routing.Builder; voices depends
// only on this narrow interface so the two packages don't need to import
// each other.
type BusAllocator interface {
	AudioBus(instrumentID int, kind string) (int32, bool)
	ControlBus(instrumentID int, kind string) (int32, bool)
}

// Manager owns the live voice-chain list and the node/group/bus counters
// used when spawning new chains.
type Manager struct {
	client    *wire.Client
	allocator BusAllocator
	chains    []state.VoiceChain

	nextNodeID     int32
	nextGroupID    int32
	nextControlBus int32

	now func() time.Time
}

// NewManager creates a Manager sending over client, resolving per-instrument
// bus assignments via allocator.
func NewManager(client *wire.Client, allocator BusAllocator) *Manager {
	return &Manager{
		client:         client,
		allocator:      allocator,
		nextNodeID:     state.FirstNodeID,
		nextGroupID:    state.FirstGroupID,
		nextControlBus: state.FirstControlBus,
		now:            time.Now,
	}
}

// ActiveChains returns a copy of the live voice-chain list.
func (m *Manager) ActiveChains() []state.VoiceChain {
	out := make([]state.VoiceChain, len(m.chains))
	copy(out, m.chains)
	return out
}

func (m *Manager) allocNodeID() int32 {
	id := m.nextNodeID
	m.nextNodeID++
	return id
}

func (m *Manager) allocGroupID() int32 {
	id := m.nextGroupID
	m.nextGroupID++
	return id
}

func (m *Manager) allocControlBus() int32 {
	id := m.nextControlBus
	m.nextControlBus++
	return id
}

func (m *Manager) countForInstrument(instrumentID int) int {
	n := 0
	for _, c := range m.chains {
		if c.InstrumentID == instrumentID {
			n++
		}
	}
	return n
}

// stealOldest removes and returns the chain with the smallest SpawnTime for
// instrumentID, or false if none exist. Oldest-by-spawn-time, no priority or
// gate-state consideration — an explicit policy choice (spec.md §9).
func (m *Manager) stealOldest(instrumentID int) (state.VoiceChain, bool) {
	oldest := -1
	for i, c := range m.chains {
		if c.InstrumentID != instrumentID {
			continue
		}
		if oldest == -1 || c.SpawnTime.Before(m.chains[oldest].SpawnTime) {
			oldest = i
		}
	}
	if oldest == -1 {
		return state.VoiceChain{}, false
	}
	victim := m.chains[oldest]
	m.chains = append(m.chains[:oldest], m.chains[oldest+1:]...)
	return victim, true
}

func (m *Manager) removeByInstrumentPitch(instrumentID, pitch int) (state.VoiceChain, bool) {
	for i, c := range m.chains {
		if c.InstrumentID == instrumentID && c.Pitch == pitch {
			victim := c
			m.chains = append(m.chains[:i], m.chains[i+1:]...)
			return victim, true
		}
	}
	return state.VoiceChain{}, false
}

// sourceSynthDef resolves the defname for an instrument's source-synth
// node, consulting session.CustomSynthDefs for user-defined synths.
func sourceSynthDef(inst state.Instrument, custom map[string]string) string {
	if inst.Source == state.SourceUserSynth {
		if def, ok := custom[inst.Name]; ok {
			return def
		}
		return "vc_user_synth"
	}
	if inst.Source == state.SourceDrumKit {
		return "vc_drum_voice"
	}
	return "vc_osc"
}

// SpawnVoice allocates and sends the node tree for one note-on. Short-
// circuits for audio-input/bus-input (persistent synths, no voice) and
// plugin sources (handled by internal/plugin, addressed via /u_cmd); routes
// sampler sources to SpawnSamplerVoice (spec.md §4.3).
func (m *Manager) SpawnVoice(inst state.Instrument, pitch int, velocity float64, offsetSecs float64, session state.Session) error {
	if inst.Source.IsAudioInput() || inst.Source.IsBusInput() {
		return nil
	}
	if inst.Source.IsPlugin() {
		return nil // plugin note-on is sent by internal/plugin via /u_cmd
	}
	if inst.Source.IsSample() {
		return m.SpawnSamplerVoice(inst, pitch, velocity, offsetSecs, session)
	}

	if m.countForInstrument(inst.ID) >= state.MaxVoicesPerInstrument {
		if old, ok := m.stealOldest(inst.ID); ok {
			_ = m.client.FreeNode(old.GroupID)
		}
	}

	sourceOutBus, ok := m.allocator.AudioBus(inst.ID, "source_out")
	if !ok {
		sourceOutBus = state.FirstAudioBus
	}

	groupID := m.allocGroupID()
	freqBus := m.allocControlBus()
	gateBus := m.allocControlBus()
	velBus := m.allocControlBus()

	freq := session.PitchToFreq(pitch)

	messages := make([]*osc.Message, 0, 3)
	messages = append(messages, groupMessage(groupID, 1, state.GroupSources))

	midiNodeID := m.allocNodeID()
	messages = append(messages, synthMessage("vc_midi", midiNodeID, 1, groupID, []wire.Param{
		{Name: "note", Value: float32(pitch)},
		{Name: "freq", Value: float32(freq)},
		{Name: "vel", Value: float32(velocity)},
		{Name: "gate", Value: 1.0},
		{Name: "freq_out", Value: float32(freqBus)},
		{Name: "gate_out", Value: float32(gateBus)},
		{Name: "vel_out", Value: float32(velBus)},
	}))

	sourceNodeID := m.allocNodeID()
	params := make([]wire.Param, 0, len(inst.SourceParams)+12)
	for _, p := range inst.SourceParams {
		params = append(params, wire.Param{Name: p.Name, Value: float32(p.Clamp())})
	}
	params = append(params,
		wire.Param{Name: "freq_in", Value: float32(freqBus)},
		wire.Param{Name: "gate_in", Value: float32(gateBus)},
		wire.Param{Name: "attack", Value: float32(inst.AmpEnvelope.Attack)},
		wire.Param{Name: "decay", Value: float32(inst.AmpEnvelope.Decay)},
		wire.Param{Name: "sustain", Value: float32(inst.AmpEnvelope.Sustain)},
		wire.Param{Name: "release", Value: float32(inst.AmpEnvelope.Release)},
		wire.Param{Name: "out", Value: float32(sourceOutBus)},
	)
	if port := inst.LFO.Target.ModInPort(); inst.LFO.Enabled && port != "" {
		if lfoBus, ok := m.allocator.ControlBus(inst.ID, "lfo_out"); ok {
			params = append(params, wire.Param{Name: port, Value: float32(lfoBus)})
		}
	}
	messages = append(messages, synthMessage(sourceSynthDef(inst, session.CustomSynthDefs), sourceNodeID, 1, groupID, params))

	if err := m.client.SendBundle(messages, wire.TimeFromOffset(offsetSecs)); err != nil {
		return err
	}

	m.chains = append(m.chains, state.VoiceChain{
		InstrumentID: inst.ID,
		Pitch:        pitch,
		GroupID:      groupID,
		MIDINodeID:   midiNodeID,
		SourceNode:   sourceNodeID,
		SpawnTime:    m.now(),
	})
	return nil
}

// SpawnSamplerVoice is SpawnVoice's sampler-specific path: the source node
// is the sampler engine addressed by bufnum/slice/rate/loop instead of
// oscillator-style source params (spec.md §4.3 "Voice spawn (sampler)").
func (m *Manager) SpawnSamplerVoice(inst state.Instrument, pitch int, velocity float64, offsetSecs float64, session state.Session) error {
	if inst.SamplerConfig == nil || !inst.SamplerConfig.HasBuffer {
		return fmt.Errorf("voices: instrument %d has no sampler buffer loaded", inst.ID)
	}

	if m.countForInstrument(inst.ID) >= state.MaxVoicesPerInstrument {
		if old, ok := m.stealOldest(inst.ID); ok {
			_ = m.client.FreeNode(old.GroupID)
		}
	}

	sourceOutBus, ok := m.allocator.AudioBus(inst.ID, "source_out")
	if !ok {
		sourceOutBus = state.FirstAudioBus
	}

	groupID := m.allocGroupID()
	freqBus := m.allocControlBus()
	gateBus := m.allocControlBus()
	velBus := m.allocControlBus()

	freq := session.PitchToFreq(pitch)
	slice := inst.SamplerConfig.SliceForNote(pitch)

	messages := []*osc.Message{groupMessage(groupID, 1, state.GroupSources)}

	midiNodeID := m.allocNodeID()
	messages = append(messages, synthMessage("vc_midi", midiNodeID, 1, groupID, []wire.Param{
		{Name: "note", Value: float32(pitch)},
		{Name: "freq", Value: float32(freq)},
		{Name: "vel", Value: float32(velocity)},
		{Name: "gate", Value: 1.0},
		{Name: "freq_out", Value: float32(freqBus)},
		{Name: "gate_out", Value: float32(gateBus)},
		{Name: "vel_out", Value: float32(velBus)},
	}))

	sourceNodeID := m.allocNodeID()
	rate, amp := 1.0, 0.8
	for _, p := range inst.SourceParams {
		switch p.Name {
		case "rate":
			rate = p.Clamp()
		case "amp":
			amp = p.Clamp()
		}
	}
	params := []wire.Param{
		{Name: "bufnum", Value: float32(inst.SamplerConfig.BufferID)},
		{Name: "sliceStart", Value: slice.Start},
		{Name: "sliceEnd", Value: slice.End},
		{Name: "rate", Value: float32(rate)},
		{Name: "amp", Value: float32(amp)},
		{Name: "loop", Value: boolToFloat(inst.SamplerConfig.LoopMode)},
	}
	if inst.SamplerConfig.PitchTracking {
		params = append(params, wire.Param{Name: "freq_in", Value: float32(freqBus)})
	}
	params = append(params,
		wire.Param{Name: "gate_in", Value: float32(gateBus)},
		wire.Param{Name: "vel_in", Value: float32(velBus)},
		wire.Param{Name: "attack", Value: float32(inst.AmpEnvelope.Attack)},
		wire.Param{Name: "decay", Value: float32(inst.AmpEnvelope.Decay)},
		wire.Param{Name: "sustain", Value: float32(inst.AmpEnvelope.Sustain)},
		wire.Param{Name: "release", Value: float32(inst.AmpEnvelope.Release)},
		wire.Param{Name: "out", Value: float32(sourceOutBus)},
	)
	if port := inst.LFO.Target.ModInPort(); inst.LFO.Enabled && port != "" {
		if lfoBus, ok := m.allocator.ControlBus(inst.ID, "lfo_out"); ok {
			params = append(params, wire.Param{Name: port, Value: float32(lfoBus)})
		}
	}
	messages = append(messages, synthMessage("vc_sampler", sourceNodeID, 1, groupID, params))

	if err := m.client.SendBundle(messages, wire.TimeFromOffset(offsetSecs)); err != nil {
		return err
	}

	m.chains = append(m.chains, state.VoiceChain{
		InstrumentID: inst.ID,
		Pitch:        pitch,
		GroupID:      groupID,
		MIDINodeID:   midiNodeID,
		SourceNode:   sourceNodeID,
		SpawnTime:    m.now(),
	})
	return nil
}

// ReleaseVoice gates the MIDI control node to 0 at offsetSecs, then frees
// the whole group after the envelope release tail completes (release time
// + 1s margin), removing the chain from the active list immediately
// (spec.md §4.3 "Release").
func (m *Manager) ReleaseVoice(inst state.Instrument, pitch int, offsetSecs float64) error {
	chain, ok := m.removeByInstrumentPitch(inst.ID, pitch)
	if !ok {
		return nil
	}
	if err := m.client.SetParamsBundled(chain.MIDINodeID, []wire.Param{{Name: "gate", Value: 0}}, wire.TimeFromOffset(offsetSecs)); err != nil {
		return err
	}
	cleanupAt := wire.TimeFromOffset(offsetSecs + inst.AmpEnvelope.Release + 1.0)
	freeMsg := osc.NewMessage("/n_free")
	freeMsg.Append(chain.GroupID)
	return m.client.SendBundle([]*osc.Message{freeMsg}, cleanupAt)
}

// ReleaseAll frees every live voice chain's group immediately.
func (m *Manager) ReleaseAll() {
	for _, c := range m.chains {
		_ = m.client.FreeNode(c.GroupID)
	}
	m.chains = nil
}

// PlayDrumHit fires an immediate, untracked one-shot sampler node routed to
// an instrument's source audio bus. rate is the pitch-offset-mapped
// playback rate, negative when the pad plays in reverse; sliceStart/sliceEnd
// are passed through unscaled so the slice range survives independently of
// rate (spec.md §4.3 "Drum one-shot").
func (m *Manager) PlayDrumHit(bufnum int32, amp float32, instrumentID int, sliceStart, sliceEnd, rate float32) error {
	outBus, ok := m.allocator.AudioBus(instrumentID, "source_out")
	if !ok {
		outBus = 0
	}
	nodeID := m.allocNodeID()
	return m.client.NewSynthHead("vc_sampler_oneshot", nodeID, state.GroupSources, []wire.Param{
		{Name: "bufnum", Value: float32(bufnum)},
		{Name: "amp", Value: amp},
		{Name: "sliceStart", Value: sliceStart},
		{Name: "sliceEnd", Value: sliceEnd},
		{Name: "rate", Value: rate},
		{Name: "out", Value: float32(outBus)},
	})
}

// SetSourceParam live-sets a parameter on every active voice's source node
// for instrumentID, addressing whichever node ids the most recent spawn (or
// rebuild) assigned — no rebuild is triggered (spec.md §4.1 "live control",
// §8 scenario 6).
func (m *Manager) SetSourceParam(instrumentID int, name string, value float64) error {
	for _, c := range m.chains {
		if c.InstrumentID != instrumentID {
			continue
		}
		if err := m.client.SetParam(c.SourceNode, name, float32(value)); err != nil {
			return err
		}
	}
	return nil
}

func groupMessage(groupID, addAction, target int32) *osc.Message {
	msg := osc.NewMessage("/g_new")
	msg.Append(groupID)
	msg.Append(addAction)
	msg.Append(target)
	return msg
}

func synthMessage(def string, nodeID, addAction, target int32, params []wire.Param) *osc.Message {
	msg := osc.NewMessage("/s_new")
	msg.Append(def)
	msg.Append(nodeID)
	msg.Append(addAction)
	msg.Append(target)
	for _, p := range params {
		msg.Append(p.Name)
		msg.Append(p.Value)
	}
	return msg
}

func boolToFloat(b bool) float32 {
	if b {
		return 1
	}
	return 0
}
