package state

// InstrumentSnapshot is the full instrument list handed across the bus on
// an UpdateState command.
type InstrumentSnapshot struct {
	Instruments []Instrument
}

// ApplyInstrumentSnapshot replaces the audio thread's instrument list with
// next, first carrying forward drum-sequencer runtime state from old for any
// instrument whose *new* drum sequencer is playing — grounded on
// audio_thread.rs `apply_state_update`, which conditions carryover on
// `new_seq.playing`, not the old snapshot's transport state.
func ApplyInstrumentSnapshot(old, next InstrumentSnapshot) InstrumentSnapshot {
	oldByID := make(map[int]*Instrument, len(old.Instruments))
	for i := range old.Instruments {
		oldByID[old.Instruments[i].ID] = &old.Instruments[i]
	}
	for i := range next.Instruments {
		newInst := &next.Instruments[i]
		if newInst.Drum == nil || !newInst.Drum.Playing {
			continue
		}
		oldInst, ok := oldByID[newInst.ID]
		if !ok || oldInst.Drum == nil {
			continue
		}
		newInst.Drum.CurrentStep = oldInst.Drum.CurrentStep
		newInst.Drum.StepAccumulator = oldInst.Drum.StepAccumulator
		newInst.Drum.LastPlayedStep = oldInst.Drum.LastPlayedStep
	}
	return next
}

// ApplyPianoRollSnapshot replaces the audio thread's piano-roll state with
// next, always overwriting its Playhead and Playing fields with old's
// current values — grounded on audio_thread.rs `apply_piano_roll_update`,
// so that an edit arriving mid-playback never jumps the transport.
func ApplyPianoRollSnapshot(old, next PianoRoll) PianoRoll {
	next.Playhead = old.Playhead
	next.Playing = old.Playing
	return next
}
