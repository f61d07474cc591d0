package routing

import (
	"fmt"

	"github.com/schollz/voicecore/internal/state"
	"github.com/schollz/voicecore/internal/wire"
)

// instrumentNodes records the remote node ids this instrument's processing
// chain occupies, so live parameter commands (mixer_params, automation) can
// address them without a rebuild.
type instrumentNodes struct {
	filterNode   int32
	hasFilter    bool
	eqNodes      []int32
	effectNodes  []int32
	busMixerNode int32
	hasBusMixer  bool
}

// Builder compiles instrument/session snapshots into the remote node/bus
// graph: three execution groups created once, on the first Rebuild, per-instrument
// audio/control buses allocated from monotonic counters, and a rebuild that
// tears down the previous graph before allocating the new one (spec.md
// §4.4). It also implements voices.BusAllocator so the Voice Manager can
// resolve an instrument's source-output bus without importing this package.
type Builder struct {
	client *wire.Client

	audioBuses   map[int]int32            // instrumentID -> source_out bus
	controlBuses map[string]int32         // "instrumentID:kind" -> control bus
	nodes        map[int]*instrumentNodes // instrumentID -> node map

	nextAudioBus   int32
	nextControlBus int32
	nextNodeID     int32

	groupsCreated bool
}

// NewBuilder returns a Builder that will send to client. Groups are created
// lazily on the first Rebuild so a Builder can be constructed before the
// synthesis process is connected.
func NewBuilder(client *wire.Client) *Builder {
	return &Builder{
		client:         client,
		audioBuses:     map[int]int32{},
		controlBuses:   map[string]int32{},
		nodes:          map[int]*instrumentNodes{},
		nextAudioBus:   state.FirstAudioBus,
		nextControlBus: state.FirstControlBus,
		nextNodeID:     state.FirstNodeID,
	}
}

// AudioBus implements voices.BusAllocator.
func (b *Builder) AudioBus(instrumentID int, kind string) (int32, bool) {
	if kind != "source_out" {
		return 0, false
	}
	id, ok := b.audioBuses[instrumentID]
	return id, ok
}

// ControlBus implements voices.BusAllocator.
func (b *Builder) ControlBus(instrumentID int, kind string) (int32, bool) {
	id, ok := b.controlBuses[fmt.Sprintf("%d:%s", instrumentID, kind)]
	return id, ok
}

func (b *Builder) ensureGroups() error {
	if b.groupsCreated {
		return nil
	}
	if err := b.client.NewGroup(state.GroupSources, 1, 0); err != nil {
		return err
	}
	if err := b.client.NewGroup(state.GroupProcessing, 1, 0); err != nil {
		return err
	}
	if err := b.client.NewGroup(state.GroupOutput, 1, 0); err != nil {
		return err
	}
	b.groupsCreated = true
	return nil
}

// teardown frees every node this builder has allocated and forgets all bus
// assignments, per spec.md §4.4 step (a).
func (b *Builder) teardown() {
	for _, n := range b.nodes {
		if n.hasFilter {
			_ = b.client.FreeNode(n.filterNode)
		}
		for _, id := range n.eqNodes {
			_ = b.client.FreeNode(id)
		}
		for _, id := range n.effectNodes {
			_ = b.client.FreeNode(id)
		}
		if n.hasBusMixer {
			_ = b.client.FreeNode(n.busMixerNode)
		}
	}
	b.nodes = map[int]*instrumentNodes{}
	b.audioBuses = map[int]int32{}
	b.controlBuses = map[string]int32{}
}

func (b *Builder) allocNodeID() int32 {
	id := b.nextNodeID
	b.nextNodeID++
	return id
}

func (b *Builder) allocAudioBus() int32 {
	id := b.nextAudioBus
	b.nextAudioBus++
	return id
}

func (b *Builder) allocControlBus() int32 {
	id := b.nextControlBus
	b.nextControlBus++
	return id
}

// Rebuild tears down the previous graph and allocates a fresh one in
// dependency order: sources -> processing -> output -> master (spec.md
// §4.4). Called whenever the routing dirty flag is set.
func (b *Builder) Rebuild(instruments []state.Instrument, session state.Session) error {
	if err := b.ensureGroups(); err != nil {
		return err
	}
	b.teardown()

	for _, inst := range instruments {
		if !inst.Active {
			continue
		}
		b.audioBuses[inst.ID] = b.allocAudioBus()
		if inst.LFO.Enabled && inst.LFO.Target.ModInPort() != "" {
			b.controlBuses[fmt.Sprintf("%d:lfo_out", inst.ID)] = b.allocControlBus()
		}

		nodes := &instrumentNodes{}

		if inst.Filter != nil && inst.Filter.Kind != state.FilterNone {
			nodeID := b.allocNodeID()
			params := filterParams(*inst.Filter, b.audioBuses[inst.ID])
			if err := b.client.NewSynthInGroup(filterSynthDef(inst.Filter.Kind), nodeID, state.GroupProcessing, params); err != nil {
				return err
			}
			nodes.filterNode = nodeID
			nodes.hasFilter = true
		}

		for _, band := range inst.EQ {
			if !band.Enabled {
				continue
			}
			nodeID := b.allocNodeID()
			if err := b.client.NewSynthInGroup(eqSynthDef(band.Kind), nodeID, state.GroupProcessing, eqParams(band)); err != nil {
				return err
			}
			nodes.eqNodes = append(nodes.eqNodes, nodeID)
		}

		for _, fx := range inst.Effects {
			if !fx.Enabled {
				continue
			}
			nodeID := b.allocNodeID()
			if err := b.client.NewSynthInGroup(effectSynthDef(fx.Kind), nodeID, state.GroupProcessing, effectParams(fx)); err != nil {
				return err
			}
			nodes.effectNodes = append(nodes.effectNodes, nodeID)
		}

		if inst.OutputTarget.Kind == state.OutputBus || len(inst.Sends) > 0 {
			nodeID := b.allocNodeID()
			params := mixerParams(inst)
			if err := b.client.NewSynthInGroup("vc_bus_mixer", nodeID, state.GroupOutput, params); err != nil {
				return err
			}
			nodes.busMixerNode = nodeID
			nodes.hasBusMixer = true
		}

		b.nodes[inst.ID] = nodes
	}

	masterNodeID := b.allocNodeID()
	if err := b.client.NewSynthInGroup("vc_master_mixer", masterNodeID, state.GroupOutput, []wire.Param{
		{Name: "level", Value: float32(session.MasterLevel)},
		{Name: "mute", Value: boolParam(session.MasterMute)},
	}); err != nil {
		return err
	}
	b.nodes[-1] = &instrumentNodes{busMixerNode: masterNodeID, hasBusMixer: true}

	return nil
}

// SetMixerParam live-updates level/pan/mute for an instrument's bus mixer
// node without a rebuild (the mixer_params dirty flag, spec.md §4.4).
func (b *Builder) SetMixerParam(instrumentID int, name string, value float64) error {
	n, ok := b.nodes[instrumentID]
	if !ok || !n.hasBusMixer {
		return nil
	}
	return b.client.SetParam(n.busMixerNode, name, float32(value))
}

// ApplyAutomation routes one evaluated automation value to its target:
// a node's parameter, a bus level, a send level, or an EQ/filter field
// (spec.md §4.5 "Application"). BPM targets are handled by the tick loop
// directly since they affect local tick arithmetic, not a remote node.
func (b *Builder) ApplyAutomation(target state.AutomationTarget, value float64) error {
	switch target.Kind {
	case state.TargetFilterCutoff, state.TargetFilterResonance:
		n, ok := b.nodes[target.InstrumentID]
		if !ok || !n.hasFilter {
			return nil
		}
		name := "cutoff"
		if target.Kind == state.TargetFilterResonance {
			name = "resonance"
		}
		return b.client.SetParam(n.filterNode, name, float32(value))
	case state.TargetEffectParam:
		n, ok := b.nodes[target.InstrumentID]
		if !ok || target.EffectIndex < 0 || target.EffectIndex >= len(n.effectNodes) {
			return nil
		}
		return b.client.SetParam(n.effectNodes[target.EffectIndex], target.ParamName, float32(value))
	case state.TargetEQBandParam:
		n, ok := b.nodes[target.InstrumentID]
		if !ok || target.EQBandIndex < 0 || target.EQBandIndex >= len(n.eqNodes) {
			return nil
		}
		return b.client.SetParam(n.eqNodes[target.EQBandIndex], target.ParamName, float32(value))
	case state.TargetSendLevel:
		n, ok := b.nodes[target.InstrumentID]
		if !ok || !n.hasBusMixer {
			return nil
		}
		return b.client.SetParam(n.busMixerNode, fmt.Sprintf("send_%d", target.SendBusID), float32(value))
	case state.TargetBusLevel:
		n, ok := b.nodes[target.InstrumentID]
		if !ok || !n.hasBusMixer {
			return nil
		}
		return b.client.SetParam(n.busMixerNode, "level", float32(value))
	case state.TargetMasterLevel:
		n, ok := b.nodes[-1]
		if !ok {
			return nil
		}
		return b.client.SetParam(n.busMixerNode, "level", float32(value))
	case state.TargetBPM:
		return nil // handled by the tick loop, not a remote node
	default:
		return nil
	}
}

func boolParam(v bool) float32 {
	if v {
		return 1
	}
	return 0
}

func filterSynthDef(kind state.FilterKind) string {
	switch kind {
	case state.FilterLowPass:
		return "vc_filter_lpf"
	case state.FilterHighPass:
		return "vc_filter_hpf"
	case state.FilterBandPass:
		return "vc_filter_bpf"
	case state.FilterNotch:
		return "vc_filter_notch"
	default:
		return "vc_filter_lpf"
	}
}

func filterParams(f state.Filter, inBus int32) []wire.Param {
	params := []wire.Param{
		{Name: "in", Value: float32(inBus)},
		{Name: "cutoff", Value: float32(f.Cutoff)},
		{Name: "resonance", Value: float32(f.Resonance)},
	}
	for _, p := range f.Extra {
		params = append(params, wire.Param{Name: p.Name, Value: float32(p.Clamp())})
	}
	return params
}

func eqSynthDef(kind state.EQBandKind) string {
	switch kind {
	case state.EQBandLowShelf:
		return "vc_eq_lowshelf"
	case state.EQBandHighShelf:
		return "vc_eq_highshelf"
	case state.EQBandLowPass:
		return "vc_eq_lpf"
	case state.EQBandHighPass:
		return "vc_eq_hpf"
	default:
		return "vc_eq_bell"
	}
}

func eqParams(band state.EQBand) []wire.Param {
	return []wire.Param{
		{Name: "freq", Value: float32(band.FreqHz)},
		{Name: "gain", Value: float32(band.GainDB)},
		{Name: "q", Value: float32(band.Q)},
	}
}

func effectSynthDef(kind state.EffectKind) string {
	switch kind {
	case state.EffectChorus:
		return "vc_fx_chorus"
	case state.EffectDelay:
		return "vc_fx_delay"
	case state.EffectReverb:
		return "vc_fx_reverb"
	case state.EffectDistortion:
		return "vc_fx_distortion"
	case state.EffectCompressor:
		return "vc_fx_compressor"
	default:
		return "vc_fx_reverb"
	}
}

func effectParams(fx state.EffectSlot) []wire.Param {
	params := make([]wire.Param, 0, len(fx.Params))
	for _, p := range fx.Params {
		params = append(params, wire.Param{Name: p.Name, Value: float32(p.Clamp())})
	}
	return params
}

func mixerParams(inst state.Instrument) []wire.Param {
	params := []wire.Param{
		{Name: "level", Value: float32(inst.Level)},
		{Name: "pan", Value: float32(inst.Pan)},
		{Name: "mute", Value: boolParam(inst.Mute)},
	}
	for _, s := range inst.Sends {
		if !s.Enabled {
			continue
		}
		params = append(params, wire.Param{Name: fmt.Sprintf("send_%d", s.BusID), Value: float32(s.Level)})
	}
	return params
}
