// Package plugin implements the VSTi / external-plugin transport: note-on,
// note-off, parameter get/set, and state save/load addressed to the
// synthesis process's plugin-host unit over /u_cmd (spec.md §4.3 "plugin
// sources", §6, §9). An optional real MIDI mirror duplicates note-on and
// note-off traffic to a hardware or soft-synth device, grounded on the donor's
// internal/midiconnector (device open/close, note-on/off framing).
package plugin

import (
	"fmt"
	"sync"

	"github.com/schollz/voicecore/internal/bus"
)

// UnitCmdSender is the subset of internal/wire.Client this package needs:
// /u_cmd framing to one plugin-host unit per instrument node.
type UnitCmdSender interface {
	SendUnitCmd(nodeID, ugenIndex int32, cmd string, args ...interface{}) error
}

// MIDIMirror is the subset of a MIDI output device this package mirrors
// plugin note traffic to. Implemented by Device (below), grounded on the
// donor's midiconnector.Device.
type MIDIMirror interface {
	NoteOn(channel, note, velocity uint8) error
	NoteOff(channel, note uint8) error
	Close() error
}

const pluginUnitIndex = 0

// Host implements engine.PluginHost: it owns the per-instrument plugin node
// registry, the synthesis-process /u_cmd transport, and any registered MIDI
// mirrors. Not itself an engine.ServerSupervisor — node lifetime (creation/
// teardown of the plugin-host synth) is the routing builder's job; Host only
// addresses nodes once told about them via RegisterNode.
type Host struct {
	client UnitCmdSender

	mu      sync.Mutex
	nodes   map[int]int32 // instrumentID -> plugin-host node id
	mirrors map[int]MIDIMirror
	params  map[int][]bus.PluginParam // discovered params, nil until DiscoverParams
}

// NewHost returns a Host sending /u_cmd messages through client.
func NewHost(client UnitCmdSender) *Host {
	return &Host{
		client:  client,
		nodes:   make(map[int]int32),
		mirrors: make(map[int]MIDIMirror),
		params:  make(map[int][]bus.PluginParam),
	}
}

// RegisterNode associates an instrument with the plugin-host node id the
// routing builder created for it. Until it is called, the note, parameter
// and state methods send nothing for that instrument.
func (h *Host) RegisterNode(instrumentID int, nodeID int32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nodes[instrumentID] = nodeID
}

// UnregisterNode drops the node mapping, called when the routing builder
// tears the instrument's plugin node down.
func (h *Host) UnregisterNode(instrumentID int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.nodes, instrumentID)
}

// SetMirror registers a MIDI mirror device for the given instrument. Passing
// nil removes any existing mirror.
func (h *Host) SetMirror(instrumentID int, mirror MIDIMirror) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if mirror == nil {
		delete(h.mirrors, instrumentID)
		return
	}
	h.mirrors[instrumentID] = mirror
}

// DiscoverParams records the parameter list a plugin reported for an
// instrument, overriding the engine-level synthetic-128 fallback the next
// time QueryPluginParams is called.
func (h *Host) DiscoverParams(instrumentID int, params []bus.PluginParam) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.params[instrumentID] = params
}

// QueryPluginParams returns the discovered parameter list for instrumentID,
// or nil if none has been discovered yet — the engine falls back to the
// synthetic-128 placeholder in that case (spec.md §9).
func (h *Host) QueryPluginParams(instrumentID int) []bus.PluginParam {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.params[instrumentID]
}

// SetPluginParam sends /u_cmd node 0 "/set" index value to the registered
// node and updates the cached discovered value, if any.
func (h *Host) SetPluginParam(instrumentID int, index int, value float64) {
	h.mu.Lock()
	nodeID, ok := h.nodes[instrumentID]
	if ok && index >= 0 && index < len(h.params[instrumentID]) {
		h.params[instrumentID][index].Value = float32(value)
	}
	h.mu.Unlock()

	if !ok {
		return
	}
	_ = h.client.SendUnitCmd(nodeID, pluginUnitIndex, "/set", index, value)
}

// SavePluginState sends /u_cmd node 0 "/save" path to the registered node.
// The PluginStateSavedFeedback this drives is emitted eagerly by the
// caller, not gated on this call succeeding (spec.md §9).
func (h *Host) SavePluginState(instrumentID int, path string) {
	h.mu.Lock()
	nodeID, ok := h.nodes[instrumentID]
	h.mu.Unlock()
	if !ok {
		return
	}
	_ = h.client.SendUnitCmd(nodeID, pluginUnitIndex, "/save", path)
}

// LoadPluginState sends /u_cmd node 0 "/load" path to the registered node.
func (h *Host) LoadPluginState(instrumentID int, path string) error {
	h.mu.Lock()
	nodeID, ok := h.nodes[instrumentID]
	mirror := h.mirrors[instrumentID]
	h.mu.Unlock()
	if !ok {
		return fmt.Errorf("plugin: no node registered for instrument %d", instrumentID)
	}
	if err := h.client.SendUnitCmd(nodeID, pluginUnitIndex, "/load", path); err != nil {
		return err
	}
	_ = mirror // state load doesn't touch the mirror; kept for symmetry with NoteOn/Off.
	return nil
}

// NoteOn sends a plugin note-on over /u_cmd and mirrors it to a registered
// MIDI device, if any. Called by the engine thread's spawnNote in place of
// the voice manager's SpawnVoice for plugin-sourced instruments.
func (h *Host) NoteOn(instrumentID, pitch int, velocity float64) error {
	h.mu.Lock()
	nodeID, ok := h.nodes[instrumentID]
	mirror := h.mirrors[instrumentID]
	h.mu.Unlock()
	if !ok {
		return fmt.Errorf("plugin: no node registered for instrument %d", instrumentID)
	}

	velByte := uint8(velocity * 127)
	if err := h.client.SendUnitCmd(nodeID, pluginUnitIndex, "/midi_msg", 0x90, int32(pitch), int32(velByte)); err != nil {
		return err
	}
	if mirror != nil {
		return mirror.NoteOn(0, uint8(pitch), velByte)
	}
	return nil
}

// NoteOff sends a plugin note-off over /u_cmd and mirrors it.
func (h *Host) NoteOff(instrumentID, pitch int) error {
	h.mu.Lock()
	nodeID, ok := h.nodes[instrumentID]
	mirror := h.mirrors[instrumentID]
	h.mu.Unlock()
	if !ok {
		return fmt.Errorf("plugin: no node registered for instrument %d", instrumentID)
	}

	if err := h.client.SendUnitCmd(nodeID, pluginUnitIndex, "/midi_msg", 0x80, int32(pitch), int32(0)); err != nil {
		return err
	}
	if mirror != nil {
		return mirror.NoteOff(0, uint8(pitch))
	}
	return nil
}
