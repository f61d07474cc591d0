// Package routing implements the Routing Builder: compiling instrument and
// session snapshots into the remote node/bus graph, and the dirty-flag
// coalescing that decides whether a frame needs a full rebuild or just a
// live parameter set (spec.md §4.4). Grounded on the donor's
// internal/model/model.go OSC-message-building style (one flat message per
// instrument), generalized here into a group/bus/node graph.
package routing

// Flag is one bit of the AudioDirty mask the UI coalesces per frame.
type Flag uint8

const (
	FlagInstruments Flag = 1 << iota
	FlagSession
	FlagPianoRoll
	FlagAutomation
	FlagRouting
	FlagMixerParams
)

// Dirty is the coalesced per-frame mask: multiple edits in one frame OR
// together into a single flush, so no two rebuilds are ever outstanding for
// the same edit (spec.md §4.4).
type Dirty struct {
	mask Flag
}

// Set ORs flag into the mask.
func (d *Dirty) Set(flag Flag) {
	d.mask |= flag
}

// Has reports whether flag is set.
func (d Dirty) Has(flag Flag) bool {
	return d.mask&flag != 0
}

// Clear resets the mask to empty, returning the mask that was flushed.
func (d *Dirty) Clear() Flag {
	m := d.mask
	d.mask = 0
	return m
}

// Empty reports whether no flags are set.
func (d Dirty) Empty() bool {
	return d.mask == 0
}
