// Package engine implements the Tick Loop: the single cooperative audio
// thread that drains commands, advances musical time, polls engine health,
// and sleeps, all without pre-emption (spec.md §4.2, §5). Grounded on
// original_source/imbolc-core/src/audio/audio_thread.rs's run/tick/
// poll_engine structure, translated into Go's for-select idiom, and the
// donor's internal/input/playback.go (row/tick advance bookkeeping) and
// internal/ticks/ticks.go (tick-duration arithmetic).
package engine

import (
	"log"
	"time"

	"github.com/schollz/voicecore/internal/automation"
	"github.com/schollz/voicecore/internal/bus"
	"github.com/schollz/voicecore/internal/rng"
	"github.com/schollz/voicecore/internal/state"
	"github.com/schollz/voicecore/internal/voices"
)

const tickInterval = time.Millisecond

// ServerSupervisor is the subset of lifecycle operations the tick loop
// forwards connect/start/stop/compile commands to. Implemented by
// internal/supervisor.Supervisor.
type ServerSupervisor interface {
	Connect(address string) error
	Disconnect()
	Start(inputDevice, outputDevice string) error
	Stop()
	Restart(inputDevice, outputDevice string) error
	CompileSynthDefs(paths []string) (bus.CompileResult, error)
	LoadSynthDefs(paths []string) error
	Poll() bus.ServerStatusFeedback
}

// SampleLoader loads a sound file into a server-side buffer. internal/wire.Client
// does not implement it directly (its method is LoadBuffer); a thin wrapper does.
type SampleLoader interface {
	LoadSample(bufferID int32, path string) error
}

// Recorder starts/stops writing the master output to disk.
type Recorder interface {
	StartRecording(path string) error
	StopRecording() (string, error)
}

// PluginHost handles the plugin-instrument command surface: parameter
// discovery/set and state save/load, addressed over /u_cmd (spec.md §4.3,
// §9). Implemented by internal/plugin.Host.
type PluginHost interface {
	QueryPluginParams(instrumentID int) []bus.PluginParam
	SetPluginParam(instrumentID int, index int, value float64)
	SavePluginState(instrumentID int, path string)
	LoadPluginState(instrumentID int, path string) error
	NoteOn(instrumentID, pitch int, velocity float64) error
	NoteOff(instrumentID, pitch int) error
}

type activeNote struct {
	InstrumentID   int
	Pitch          int
	RemainingTicks int64
}

// RoutingControl is the graph-rebuild surface the routing flag and the
// mixer_params/bus param flags drive (spec.md §4.4's rebuild-trigger
// table). Implemented by internal/routing.Builder; narrowed here so the
// engine doesn't depend on internal/routing directly.
type RoutingControl interface {
	Rebuild(instruments []state.Instrument, session state.Session) error
	SetMixerParam(instrumentID int, name string, value float64) error
}

// Thread is the audio thread: the single goroutine that owns every mutable
// piece of engine runtime state (spec.md §4.2 "no pre-emption inside the
// tick; all work is done on the audio thread").
type Thread struct {
	Bus            *bus.Bus
	Voices         *voices.Manager
	Routing        automation.Dispatcher
	RoutingControl RoutingControl
	Rng            *rng.LCG
	Server         ServerSupervisor
	Samples        SampleLoader
	Recorder       Recorder
	Plugins        PluginHost

	session    state.Session
	snapshot   state.InstrumentSnapshot
	pianoRoll  state.PianoRoll
	automation state.Automation

	arpRuntimes map[int]*state.ArpeggiatorRuntime
	activeNotes []activeNote

	now func() time.Time
}

// NewThread constructs a Thread ready to Run. rngSeed seeds the shared LCG
// used for probability gates, humanization jitter, and random-arp step
// selection (spec.md §4.2 "Randomness").
func NewThread(b *bus.Bus, v *voices.Manager, routing automation.Dispatcher, rngSeed uint64) *Thread {
	return &Thread{
		Bus:         b,
		Voices:      v,
		Routing:     routing,
		Rng:         rng.New(rngSeed),
		session:     state.DefaultSession(16),
		arpRuntimes: map[int]*state.ArpeggiatorRuntime{},
		now:         time.Now,
	}
}

// Run blocks, draining commands and advancing musical time, until a
// ShutdownCmd arrives or the command channel closes (spec.md §4.2
// "Cancellation / timeout": the only cancellation is Shutdown).
func (t *Thread) Run() {
	last := t.now()
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		shutdown := t.drainCommands()
		if shutdown {
			return
		}

		now := t.now()
		if elapsed := now.Sub(last); elapsed >= tickInterval {
			t.advance(elapsed.Seconds())
			last = now
		}

		t.pollHealth()

		<-ticker.C
	}
}

// drainCommands pulls every command currently queued, non-blocking, and
// applies it. Returns true iff a ShutdownCmd was processed.
func (t *Thread) drainCommands() bool {
	for {
		select {
		case cmd, ok := <-t.Bus.Commands():
			if !ok {
				return true
			}
			if t.handleCommand(cmd) {
				return true
			}
		default:
			return false
		}
	}
}

func (t *Thread) pollHealth() {
	if t.Server == nil {
		return
	}
	t.Bus.SendFeedback(t.Server.Poll())
}

func (t *Thread) instrumentByID(id int) *state.Instrument {
	for i := range t.snapshot.Instruments {
		if t.snapshot.Instruments[i].ID == id {
			return &t.snapshot.Instruments[i]
		}
	}
	return nil
}

func (t *Thread) arpRuntime(instrumentID int) *state.ArpeggiatorRuntime {
	r, ok := t.arpRuntimes[instrumentID]
	if !ok {
		r = &state.ArpeggiatorRuntime{}
		t.arpRuntimes[instrumentID] = r
	}
	return r
}

// spawnNote routes a note-on to the plugin transport or the voice manager
// depending on the instrument's source, shared by the bus command handler
// and the piano-roll/arp tick-advance paths (spec.md §4.3 "plugin
// sources" short-circuit the voice manager entirely).
func (t *Thread) spawnNote(inst state.Instrument, pitch int, velocity, offsetSecs float64) error {
	if inst.Source.IsPlugin() {
		if t.Plugins == nil {
			return nil
		}
		return t.Plugins.NoteOn(inst.ID, pitch, velocity)
	}
	return t.Voices.SpawnVoice(inst, pitch, velocity, offsetSecs, t.session)
}

// releaseNote is spawnNote's note-off counterpart.
func (t *Thread) releaseNote(inst state.Instrument, pitch int, offsetSecs float64) error {
	if inst.Source.IsPlugin() {
		if t.Plugins == nil {
			return nil
		}
		return t.Plugins.NoteOff(inst.ID, pitch)
	}
	return t.Voices.ReleaseVoice(inst, pitch, offsetSecs)
}

// logSendError matches the donor's style of logging datagram-layer send
// failures rather than propagating them up through the tick loop (spec.md
// §4.3 "Failure": send failures are reported to callers as result-strings,
// not loop aborts).
func logSendError(context string, err error) {
	if err != nil {
		log.Printf("engine: %s: %v", context, err)
	}
}
