package engine

import (
	"math"

	"github.com/schollz/voicecore/internal/automation"
	"github.com/schollz/voicecore/internal/bus"
	"github.com/schollz/voicecore/internal/state"
)

// advance runs one tick's worth of musical-time progress: piano-roll
// playback, drum-sequencer playback, and the arpeggiator, in that order
// (spec.md §4.2 "Advance algorithm").
func (t *Thread) advance(deltaSecs float64) {
	if t.pianoRoll.Playing {
		t.advancePianoRoll(deltaSecs)
	}
	t.advanceDrumSequencers(deltaSecs)
	t.advanceArpeggiators(deltaSecs)
}

func (t *Thread) advancePianoRoll(deltaSecs float64) {
	bpm := t.session.BPM
	ticksPerBeat := t.pianoRoll.TicksPerBeat
	if ticksPerBeat <= 0 {
		ticksPerBeat = 480
	}
	secsPerTick := state.SecsPerTick(bpm, ticksPerBeat)
	tickDelta := int64(math.Floor(deltaSecs * bpm / 60 * float64(ticksPerBeat)))
	if tickDelta <= 0 {
		return
	}

	oldPlayhead := t.pianoRoll.Playhead
	newPlayhead := oldPlayhead + tickDelta
	wrapped := false
	if t.pianoRoll.Looping && t.pianoRoll.LoopEnd > t.pianoRoll.LoopStart {
		loopLen := t.pianoRoll.LoopEnd - t.pianoRoll.LoopStart
		if newPlayhead >= t.pianoRoll.LoopEnd {
			newPlayhead = t.pianoRoll.LoopStart + (newPlayhead-t.pianoRoll.LoopEnd)%loopLen
			wrapped = true
		}
	}

	scanStart := oldPlayhead
	if wrapped {
		scanStart = t.pianoRoll.LoopStart
	}
	scanEnd := newPlayhead

	for i := range t.pianoRoll.Tracks {
		track := &t.pianoRoll.Tracks[i]
		inst := t.instrumentByID(track.InstrumentID)
		if inst == nil {
			continue
		}
		for _, note := range track.Notes {
			if note.Tick < scanStart || note.Tick >= scanEnd {
				continue
			}
			if note.Probability < 1 {
				if t.Rng.Next() > note.Probability {
					continue
				}
			}
			if inst.Arp.Enabled {
				runtime := t.arpRuntime(inst.ID)
				runtime.AddHeld(note.Pitch)
				t.activeNotes = append(t.activeNotes, activeNote{
					InstrumentID: inst.ID, Pitch: note.Pitch, RemainingTicks: note.Duration,
				})
				continue
			}

			offsetSecs := float64(note.Tick-oldPlayhead) * secsPerTick
			if isNearOffbeat(note.Tick, ticksPerBeat) {
				offsetSecs += t.pianoRoll.Swing * (float64(ticksPerBeat) / 2) * secsPerTick * 0.5
			}
			offsetSecs += t.Rng.Jitter(t.session.HumanizeTiming * 0.02)
			if offsetSecs < 0 {
				offsetSecs = 0
			}

			velocity := float64(note.Velocity) / 127
			velocity += t.Rng.Jitter(t.session.HumanizeVelocity * 30.0 / 127.0)
			velocity = clamp(velocity, 0.01, 1)

			logSendError("piano-roll spawn", t.spawnNote(*inst, note.Pitch, velocity, offsetSecs))
			t.activeNotes = append(t.activeNotes, activeNote{
				InstrumentID: inst.ID, Pitch: note.Pitch, RemainingTicks: note.Duration,
			})
		}
	}

	if t.Routing != nil {
		_ = automation.Evaluate(t.automation, newPlayhead, t.Routing, t)
	}

	t.expireActiveNotes(tickDelta, secsPerTick)

	t.pianoRoll.Playhead = newPlayhead
	t.Bus.SendFeedback(bus.PlayheadFeedback{Tick: newPlayhead})
}

func (t *Thread) expireActiveNotes(tickDelta int64, secsPerTick float64) {
	remaining := t.activeNotes[:0]
	for _, n := range t.activeNotes {
		n.RemainingTicks -= tickDelta
		if n.RemainingTicks > 0 {
			remaining = append(remaining, n)
			continue
		}
		inst := t.instrumentByID(n.InstrumentID)
		if inst == nil {
			continue
		}
		if inst.Arp.Enabled {
			t.arpRuntime(n.InstrumentID).RemoveHeld(n.Pitch)
			continue
		}
		offsetSecs := float64(n.RemainingTicks) * secsPerTick
		if offsetSecs < 0 {
			offsetSecs = 0
		}
		logSendError("active-note release", t.releaseNote(*inst, n.Pitch, offsetSecs))
	}
	t.activeNotes = remaining
}

// isNearOffbeat reports whether tick falls close to the 8th-note offbeat
// within its beat, the swing trigger point (spec.md §4.2).
func isNearOffbeat(tick, ticksPerBeat int64) bool {
	if ticksPerBeat <= 0 {
		return false
	}
	half := ticksPerBeat / 2
	pos := tick % ticksPerBeat
	diff := pos - half
	if diff < 0 {
		diff = -diff
	}
	return diff <= ticksPerBeat/16
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (t *Thread) advanceDrumSequencers(deltaSecs float64) {
	for i := range t.snapshot.Instruments {
		inst := &t.snapshot.Instruments[i]
		if inst.Drum == nil || !inst.Drum.Playing {
			continue
		}
		t.advanceOneDrumSequencer(inst, deltaSecs)
	}
}

func (t *Thread) advanceOneDrumSequencer(inst *state.Instrument, deltaSecs float64) {
	d := inst.Drum
	stepsPerSecond := t.session.BPM / 60 * 4
	d.StepAccumulator += deltaSecs * stepsPerSecond

	for {
		pattern := d.CurrentPatternOrNil()
		if pattern == nil || pattern.Length <= 0 {
			return
		}
		nextStep := d.CurrentStep + 1
		threshold := drumThreshold(d.Swing, nextStep)
		if d.StepAccumulator < threshold {
			break
		}
		d.StepAccumulator -= threshold
		d.CurrentStep++
		if d.CurrentStep >= pattern.Length {
			d.CurrentStep = 0
			if d.ChainEnabled && len(d.Chain) > 0 {
				d.ChainPosition = (d.ChainPosition + 1) % len(d.Chain)
				d.CurrentPattern = d.Chain[d.ChainPosition]
			}
		}
	}

	if d.CurrentStep == d.LastPlayedStep || inst.Mute {
		return
	}
	pattern := d.CurrentPatternOrNil()
	if pattern != nil {
		for pad := range d.Pads {
			cell := pattern.CellAt(pad, d.CurrentStep)
			if !cell.Active {
				continue
			}
			if cell.Probability < 1 && t.Rng.Next() > cell.Probability {
				continue
			}
			p := d.Pads[pad]
			if !p.HasBuffer {
				continue
			}
			velocity := cell.Velocity + t.Rng.Jitter(t.session.HumanizeVelocity*30.0/127.0)
			velocity = clamp(velocity, 0.01, 1)
			semitones := p.PitchOffs + cell.PitchOffset
			rate := float32(math.Pow(2, float64(semitones)/12))
			if p.Reverse {
				rate = -rate
			}
			logSendError("drum hit", t.Voices.PlayDrumHit(int32(p.BufferID), float32(p.Level*velocity), inst.ID, p.SliceStart, p.SliceEnd, rate))
		}
		t.Bus.SendFeedback(bus.DrumStepFeedback{InstrumentID: inst.ID, Step: d.CurrentStep})
	}
	d.LastPlayedStep = d.CurrentStep
}

// drumThreshold computes the swing-aware step-accumulator threshold: an odd
// next step is delayed (threshold > 1) and the following even step is
// shortened to compensate (threshold < 1), per spec.md §4.2.
func drumThreshold(swing float64, nextStep int) float64 {
	if swing <= 0 {
		return 1
	}
	if nextStep%2 != 0 {
		return 1 + swing*0.5
	}
	return 1 - swing*0.5
}

const arpVelocity = 0.8

func (t *Thread) advanceArpeggiators(deltaSecs float64) {
	for instID, runtime := range t.arpRuntimes {
		inst := t.instrumentByID(instID)
		if inst == nil || !inst.Arp.Enabled {
			if runtime.HasCurrent {
				if inst != nil {
					logSendError("arp prune release", t.releaseNote(*inst, runtime.CurrentPitch, 0))
				}
			}
			delete(t.arpRuntimes, instID)
			continue
		}

		if len(runtime.Held) == 0 {
			if runtime.HasCurrent {
				logSendError("arp idle release", t.releaseNote(*inst, runtime.CurrentPitch, 0))
				runtime.HasCurrent = false
			}
			continue
		}

		stepsPerSecond := t.session.BPM / 60 * inst.Arp.Rate.StepsPerBeat()
		runtime.Accumulator += deltaSecs * stepsPerSecond

		for runtime.Accumulator >= 1 {
			runtime.Accumulator -= 1
			steps := state.ExpandedSteps(runtime.Held, inst.Arp.Octaves, inst.Arp.Direction, runtime.Ascending)
			if len(steps) == 0 {
				continue
			}

			var pitch int
			if inst.Arp.Direction == state.ArpRandom {
				pitch = steps[t.Rng.IntRange(len(steps))]
			} else {
				idx := runtime.StepIndex % len(steps)
				pitch = steps[idx]
				runtime.StepIndex++
				if runtime.StepIndex >= len(steps) {
					runtime.StepIndex = 0
					if inst.Arp.Direction == state.ArpUpDown {
						runtime.Ascending = !runtime.Ascending
					}
				}
			}

			if runtime.HasCurrent {
				logSendError("arp step release", t.releaseNote(*inst, runtime.CurrentPitch, 0))
			}
			logSendError("arp step spawn", t.spawnNote(*inst, pitch, arpVelocity, 0))
			runtime.CurrentPitch = pitch
			runtime.HasCurrent = true
		}
	}
}
