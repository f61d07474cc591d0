// Package bus implements the Command/Feedback Bus: two typed unidirectional
// queues connecting the UI thread to the audio thread. Commands carry a
// one-shot reply channel when request/response semantics are needed;
// feedback is fire-and-forget in the other direction. Grounded on
// spec.md §4.1 and original_source/imbolc-core/src/audio/audio_thread.rs's
// AudioCmd enum and handle_cmd dispatch.
package bus

import "github.com/schollz/voicecore/internal/state"

// Command is the closed tagged-variant set the UI thread sends to the audio
// thread. Each concrete type below is one variant; the marker method keeps
// the set closed to this package's callers.
type Command interface {
	isCommand()
}

// CompileResult is the outcome of a synth-definition compile request.
type CompileResult struct {
	Success bool
	Message string
}

// PluginParam is one discovered plugin parameter (name, current value).
// QueryPluginParams returns a synthetic fixed-size list — see
// QueryPluginParamsCmd's doc comment and spec.md §9.
type PluginParam struct {
	Name  string
	Value float32
}

// --- Server lifecycle ---

type ConnectCmd struct {
	Address string
	Reply   chan error
}

func (ConnectCmd) isCommand() {}

type DisconnectCmd struct{}

func (DisconnectCmd) isCommand() {}

type StartServerCmd struct {
	InputDevice  string
	OutputDevice string
	Reply        chan error
}

func (StartServerCmd) isCommand() {}

type StopServerCmd struct{}

func (StopServerCmd) isCommand() {}

type RestartServerCmd struct {
	InputDevice  string
	OutputDevice string
	Reply        chan error
}

func (RestartServerCmd) isCommand() {}

// --- Synth-definition compile/load ---

type CompileSynthDefsCmd struct {
	Paths []string
	Reply chan CompileResult
}

func (CompileSynthDefsCmd) isCommand() {}

type LoadSynthDefsCmd struct {
	Paths []string
	Reply chan error
}

func (LoadSynthDefsCmd) isCommand() {}

// --- State handoff (snapshots) ---

type UpdateStateCmd struct {
	Snapshot state.InstrumentSnapshot
}

func (UpdateStateCmd) isCommand() {}

type UpdateSessionCmd struct {
	Session state.Session
}

func (UpdateSessionCmd) isCommand() {}

type UpdatePianoRollCmd struct {
	PianoRoll state.PianoRoll
}

func (UpdatePianoRollCmd) isCommand() {}

type UpdateAutomationCmd struct {
	Automation state.Automation
}

func (UpdateAutomationCmd) isCommand() {}

// --- Transport ---

type SetPlayingCmd struct {
	Playing bool
}

func (SetPlayingCmd) isCommand() {}

type ResetPlayheadCmd struct{}

func (ResetPlayheadCmd) isCommand() {}

type SetBPMCmd struct {
	BPM float64
}

func (SetBPMCmd) isCommand() {}

// --- Routing ---

type RebuildRoutingCmd struct{}

func (RebuildRoutingCmd) isCommand() {}

type UpdateMixerParamsCmd struct{}

func (UpdateMixerParamsCmd) isCommand() {}

type SetBusParamCmd struct {
	BusID int
	Param string
	Value float64
}

func (SetBusParamCmd) isCommand() {}

// --- Live control ---

type SetSourceParamCmd struct {
	InstrumentID int
	Param        string
	Value        float64
}

func (SetSourceParamCmd) isCommand() {}

type SpawnVoiceCmd struct {
	InstrumentID int
	Pitch        int
	Velocity     float64
	OffsetSecs   float64
}

func (SpawnVoiceCmd) isCommand() {}

type ReleaseVoiceCmd struct {
	InstrumentID int
	Pitch        int
	OffsetSecs   float64
}

func (ReleaseVoiceCmd) isCommand() {}

type RegisterActiveNoteCmd struct {
	InstrumentID  int
	Pitch         int
	DurationTicks int64
}

func (RegisterActiveNoteCmd) isCommand() {}

type ClearActiveNotesCmd struct {
	InstrumentID int
}

func (ClearActiveNotesCmd) isCommand() {}

type ReleaseAllVoicesCmd struct{}

func (ReleaseAllVoicesCmd) isCommand() {}

// --- Drum hits ---

type DrumHitCmd struct {
	BufferID     int
	Amp          float32
	InstrumentID int
	SliceStart   float32
	SliceEnd     float32
	Rate         float32
}

func (DrumHitCmd) isCommand() {}

// --- Sample loading ---

type LoadSampleCmd struct {
	BufferID int
	Path     string
	Reply    chan error
}

func (LoadSampleCmd) isCommand() {}

// --- Recording ---

type StartRecordingCmd struct {
	Path  string
	Reply chan error
}

func (StartRecordingCmd) isCommand() {}

type StopRecordingCmd struct {
	Reply chan error
}

func (StopRecordingCmd) isCommand() {}

// --- Automation apply ---

type ApplyAutomationCmd struct {
	Target state.AutomationTarget
	Value  float64
}

func (ApplyAutomationCmd) isCommand() {}

// --- Plugin params ---

// QueryPluginParamsCmd asks for a plugin instrument's exposed parameters.
// The synthesis process does not reply on this channel, so the handler
// returns a synthetic fixed-size placeholder list (128 entries) instead of
// blocking or silently dropping the query — a deliberate contract kept
// from the original implementation (spec.md §9).
type QueryPluginParamsCmd struct {
	InstrumentID int
	Reply        chan []PluginParam
}

func (QueryPluginParamsCmd) isCommand() {}

type SetPluginParamCmd struct {
	InstrumentID int
	Index        int
	Value        float64
}

func (SetPluginParamCmd) isCommand() {}

// SavePluginStateCmd's handler emits PluginStateSavedFeedback immediately
// on receipt, without confirming the remote plugin actually wrote its
// state file — a deliberate latency/acknowledgment trade-off kept from the
// original implementation (spec.md §9).
type SavePluginStateCmd struct {
	InstrumentID int
	Path         string
}

func (SavePluginStateCmd) isCommand() {}

type LoadPluginStateCmd struct {
	InstrumentID int
	Path         string
	Reply        chan error
}

func (LoadPluginStateCmd) isCommand() {}

// --- Shutdown ---

type ShutdownCmd struct{}

func (ShutdownCmd) isCommand() {}
