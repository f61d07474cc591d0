// Package persistence defines the boundary contract between the audio core
// and the relational project store described in spec.md §6: table-name
// constants for the public schema, and a SnapshotDocument JSON shape used to
// hand a full project snapshot across that boundary. The core never
// autonomously persists — there is no debounce timer or background saver
// here, unlike the donor's AutoSave/DoSave pair in internal/storage/storage.go
// — callers decide when a document is written or read.
package persistence

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/schollz/voicecore/internal/state"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Table names for the relational schema named in spec.md §6. The core does
// not open a database connection against these; they exist so a concrete
// persistence collaborator and this package agree on naming.
const (
	TableInstruments            = "instruments"
	TableInstrumentSourceParams = "instrument_source_params"
	TableInstrumentEffects      = "instrument_effects"
	TableInstrumentEffectParams = "instrument_effect_params"
	TableInstrumentSends        = "instrument_sends"
	TableInstrumentModulations  = "instrument_modulations"
	TableMixerBuses             = "mixer_buses"
	TableMixerMaster            = "mixer_master"
	TablePianoRollTracks        = "piano_roll_tracks"
	TablePianoRollNotes         = "piano_roll_notes"
	TableMusicalSettings        = "musical_settings"
	TableAutomationLanes        = "automation_lanes"
	TableAutomationPoints       = "automation_points"
	TableSamplerConfigs         = "sampler_configs"
	TableSamplerSlices          = "sampler_slices"
	TableDrumPads               = "drum_pads"
	TableDrumPatterns           = "drum_patterns"
	TableDrumSteps              = "drum_steps"
	TableChopperStates          = "chopper_states"
	TableChopperSlices          = "chopper_slices"
	TableMIDIRecordingSettings  = "midi_recording_settings"
	TableMIDICCMappings         = "midi_cc_mappings"
	TableMIDIPitchBendConfigs   = "midi_pitch_bend_configs"
	TableCustomSynthDefs        = "custom_synthdefs"
	TableCustomSynthDefParams   = "custom_synthdef_params"
	TableVSTPlugins             = "vst_plugins"
	TableVSTPluginParams        = "vst_plugin_params"
)

// Tables lists every table name in schema order, for collaborators that
// enumerate the boundary contract rather than naming a constant directly.
var Tables = []string{
	TableInstruments, TableInstrumentSourceParams, TableInstrumentEffects,
	TableInstrumentEffectParams, TableInstrumentSends, TableInstrumentModulations,
	TableMixerBuses, TableMixerMaster, TablePianoRollTracks, TablePianoRollNotes,
	TableMusicalSettings, TableAutomationLanes, TableAutomationPoints,
	TableSamplerConfigs, TableSamplerSlices, TableDrumPads, TableDrumPatterns,
	TableDrumSteps, TableChopperStates, TableChopperSlices,
	TableMIDIRecordingSettings, TableMIDICCMappings, TableMIDIPitchBendConfigs,
	TableCustomSynthDefs, TableCustomSynthDefParams, TableVSTPlugins, TableVSTPluginParams,
}

// SnapshotDocument is the full project snapshot handed across the
// persistence boundary: everything a collaborator needs to reconstruct the
// bus commands that would rebuild the in-memory state (spec.md §4.6, §6).
type SnapshotDocument struct {
	FormatVersion int                `json:"format_version"`
	Session       state.Session      `json:"session"`
	Instruments   []state.Instrument `json:"instruments"`
	PianoRoll     state.PianoRoll    `json:"piano_roll"`
	Automation    state.Automation   `json:"automation"`
}

// CurrentFormatVersion is written into every new document. A collaborator
// reading a lower version is responsible for its own migration.
const CurrentFormatVersion = 1

// NewSnapshotDocument captures the given state as a document ready to
// serialize.
func NewSnapshotDocument(session state.Session, instruments []state.Instrument, pianoRoll state.PianoRoll, automation state.Automation) SnapshotDocument {
	return SnapshotDocument{
		FormatVersion: CurrentFormatVersion,
		Session:       session,
		Instruments:   instruments,
		PianoRoll:     pianoRoll,
		Automation:    automation,
	}
}

// Marshal serializes a document, grounded on the donor's
// jsoniter.ConfigCompatibleWithStandardLibrary choice in internal/storage.
func Marshal(doc SnapshotDocument) ([]byte, error) {
	return json.Marshal(doc)
}

// Unmarshal parses a document previously produced by Marshal.
func Unmarshal(data []byte) (SnapshotDocument, error) {
	var doc SnapshotDocument
	err := json.Unmarshal(data, &doc)
	return doc, err
}
