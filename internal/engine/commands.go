package engine

import (
	"strconv"

	"github.com/schollz/voicecore/internal/bus"
	"github.com/schollz/voicecore/internal/state"
)

// handleCommand applies one command from the bus. Returns true iff it was
// a ShutdownCmd (the only command that breaks the tick loop, spec.md §4.2).
func (t *Thread) handleCommand(cmd bus.Command) bool {
	switch c := cmd.(type) {

	case bus.ShutdownCmd:
		return true

	case bus.ConnectCmd:
		var err error
		if t.Server != nil {
			err = t.Server.Connect(c.Address)
		}
		bus.Reply(c.Reply, err)

	case bus.DisconnectCmd:
		if t.Server != nil {
			t.Server.Disconnect()
		}

	case bus.StartServerCmd:
		var err error
		if t.Server != nil {
			err = t.Server.Start(c.InputDevice, c.OutputDevice)
		}
		bus.Reply(c.Reply, err)

	case bus.StopServerCmd:
		if t.Server != nil {
			t.Server.Stop()
		}

	case bus.RestartServerCmd:
		var err error
		if t.Server != nil {
			err = t.Server.Restart(c.InputDevice, c.OutputDevice)
		}
		bus.Reply(c.Reply, err)

	case bus.CompileSynthDefsCmd:
		var result bus.CompileResult
		var err error
		if t.Server != nil {
			result, err = t.Server.CompileSynthDefs(c.Paths)
		}
		if err != nil {
			result = bus.CompileResult{Success: false, Message: err.Error()}
		}
		bus.Reply(c.Reply, result)

	case bus.LoadSynthDefsCmd:
		var err error
		if t.Server != nil {
			err = t.Server.LoadSynthDefs(c.Paths)
		}
		bus.Reply(c.Reply, err)

	case bus.UpdateStateCmd:
		t.snapshot = state.ApplyInstrumentSnapshot(t.snapshot, c.Snapshot)

	case bus.UpdateSessionCmd:
		t.session = c.Session

	case bus.UpdatePianoRollCmd:
		t.pianoRoll = state.ApplyPianoRollSnapshot(t.pianoRoll, c.PianoRoll)

	case bus.UpdateAutomationCmd:
		t.automation = c.Automation

	case bus.SetPlayingCmd:
		t.pianoRoll.Playing = c.Playing

	case bus.ResetPlayheadCmd:
		t.pianoRoll.Playhead = 0

	case bus.SetBPMCmd:
		t.SetBPM(c.BPM)

	case bus.RebuildRoutingCmd:
		if t.RoutingControl != nil {
			logSendError("RebuildRoutingCmd", t.RoutingControl.Rebuild(t.snapshot.Instruments, t.session))
		}

	case bus.UpdateMixerParamsCmd:
		if t.RoutingControl != nil {
			for _, inst := range t.snapshot.Instruments {
				logSendError("UpdateMixerParamsCmd level", t.RoutingControl.SetMixerParam(inst.ID, "level", inst.Level))
				logSendError("UpdateMixerParamsCmd pan", t.RoutingControl.SetMixerParam(inst.ID, "pan", inst.Pan))
			}
		}

	case bus.SetBusParamCmd:
		if t.RoutingControl != nil {
			logSendError("SetBusParamCmd", t.RoutingControl.SetMixerParam(c.BusID, c.Param, c.Value))
		}

	case bus.SetSourceParamCmd:
		logSendError("SetSourceParamCmd", t.Voices.SetSourceParam(c.InstrumentID, c.Param, c.Value))

	case bus.SpawnVoiceCmd:
		if inst := t.instrumentByID(c.InstrumentID); inst != nil {
			logSendError("SpawnVoiceCmd", t.spawnNote(*inst, c.Pitch, 1.0, c.OffsetSecs))
		}

	case bus.ReleaseVoiceCmd:
		if inst := t.instrumentByID(c.InstrumentID); inst != nil {
			logSendError("ReleaseVoiceCmd", t.releaseNote(*inst, c.Pitch, c.OffsetSecs))
		}

	case bus.RegisterActiveNoteCmd:
		t.activeNotes = append(t.activeNotes, activeNote{
			InstrumentID:   c.InstrumentID,
			Pitch:          c.Pitch,
			RemainingTicks: c.DurationTicks,
		})

	case bus.ClearActiveNotesCmd:
		filtered := t.activeNotes[:0]
		for _, n := range t.activeNotes {
			if n.InstrumentID != c.InstrumentID {
				filtered = append(filtered, n)
			}
		}
		t.activeNotes = filtered

	case bus.ReleaseAllVoicesCmd:
		t.Voices.ReleaseAll()

	case bus.DrumHitCmd:
		rate := c.Rate
		if rate == 0 {
			rate = 1
		}
		logSendError("DrumHitCmd", t.Voices.PlayDrumHit(int32(c.BufferID), c.Amp, c.InstrumentID, c.SliceStart, c.SliceEnd, rate))

	case bus.LoadSampleCmd:
		var err error
		if t.Samples != nil {
			err = t.Samples.LoadSample(int32(c.BufferID), c.Path)
		}
		bus.Reply(c.Reply, err)

	case bus.StartRecordingCmd:
		var err error
		if t.Recorder != nil {
			err = t.Recorder.StartRecording(c.Path)
		}
		bus.Reply(c.Reply, err)

	case bus.StopRecordingCmd:
		var err error
		if t.Recorder != nil {
			_, err = t.Recorder.StopRecording()
		}
		bus.Reply(c.Reply, err)

	case bus.ApplyAutomationCmd:
		if t.Routing != nil {
			logSendError("ApplyAutomationCmd", t.Routing.ApplyAutomation(c.Target, c.Value))
		}

	case bus.QueryPluginParamsCmd:
		var params []bus.PluginParam
		if t.Plugins != nil {
			params = t.Plugins.QueryPluginParams(c.InstrumentID)
		}
		if params == nil {
			params = syntheticPluginParams()
		}
		bus.Reply(c.Reply, params)

	case bus.SetPluginParamCmd:
		if t.Plugins != nil {
			t.Plugins.SetPluginParam(c.InstrumentID, c.Index, c.Value)
		}

	case bus.SavePluginStateCmd:
		if t.Plugins != nil {
			t.Plugins.SavePluginState(c.InstrumentID, c.Path)
		}
		// Eager feedback: emitted immediately on command receipt, not gated
		// on confirmation from the remote process (spec.md §9).
		t.Bus.SendFeedback(bus.PluginStateSavedFeedback{InstrumentID: c.InstrumentID, Path: c.Path})

	case bus.LoadPluginStateCmd:
		var err error
		if t.Plugins != nil {
			err = t.Plugins.LoadPluginState(c.InstrumentID, c.Path)
		}
		bus.Reply(c.Reply, err)
	}

	return false
}

const syntheticPluginParamCount = 128

// syntheticPluginParams returns the placeholder list used when no plugin
// host is wired (or a real plugin never reports its parameters): 128
// zero-valued, generated-name entries, per spec.md §9.
func syntheticPluginParams() []bus.PluginParam {
	params := make([]bus.PluginParam, syntheticPluginParamCount)
	for i := range params {
		params[i] = bus.PluginParam{Name: "param_" + strconv.Itoa(i), Value: 0}
	}
	return params
}

// SetBPM updates the session BPM and emits a BPM-update feedback, shared by
// SetBPMCmd and BPM-target automation lanes. The feedback is only emitted
// when bpm actually changes the session value, so a BPM lane re-evaluating
// the same value every tick while playing doesn't flood the feedback queue
// (spec.md §4.2, §4.5, §8 scenario 4: "exactly once, not on subsequent
// ticks at the same value").
func (t *Thread) SetBPM(bpm float64) {
	if t.session.BPM == bpm {
		return
	}
	t.session.BPM = bpm
	t.Bus.SendFeedback(bus.BPMUpdateFeedback{BPM: bpm})
}
