package state

import "time"

// VoiceChain is one live, note-scoped tree of remote nodes rooted at a
// group. Field shape grounded directly on original_source's
// imbolc-core/src/audio/engine/voices.rs `VoiceChain`.
type VoiceChain struct {
	InstrumentID int
	Pitch        int
	GroupID      int32
	MIDINodeID   int32
	SourceNode   int32
	SpawnTime    time.Time
}
