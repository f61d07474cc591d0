package state

// Execution groups are three ordered server-side groups that the routing
// builder creates once, on its first Rebuild (spec.md §4.4): all source synths add to GroupSources,
// filters/effects to GroupProcessing, bus/master mixers to GroupOutput.
// The server executes in group order, giving deterministic signal flow.
// Shared between internal/voices and internal/routing so neither package
// needs to import the other just to agree on these ids.
const (
	GroupSources    int32 = 1
	GroupProcessing int32 = 2
	GroupOutput     int32 = 3
)

// MaxVoicesPerInstrument bounds per-instrument polyphony; the 17th spawn on
// an instrument already at this limit steals the oldest voice (spec.md §8).
const MaxVoicesPerInstrument = 16

// Monotonic counter starting points, chosen so they never collide with the
// three reserved execution-group ids above.
const (
	FirstNodeID     int32 = 1000
	FirstGroupID    int32 = 1000
	FirstAudioBus   int32 = 16 // avoid the hardware output buses (spec.md §4.4)
	FirstControlBus int32 = 0
)
