//go:build !windows

package plugin

import (
	"fmt"
	"strings"
	"sync"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

var mirrorMu sync.Mutex
var mirrorsOpen = make(map[string]drivers.Out)

// Device is a real MIDI output device, implementing MIDIMirror. Grounded on
// the donor's internal/midiconnector.Device — open/close bookkeeping and
// note-on/off framing kept verbatim; the substring-match device lookup is
// reused since both the donor and this package resolve a configured name
// against whatever the OS currently reports.
type Device struct {
	name string
}

// OpenDevice finds and opens the first MIDI output port whose name contains
// the given substring (case-insensitive), matching the donor's lookup.
func OpenDevice(name string) (*Device, error) {
	d := &Device{name: findDeviceName(name)}
	if d.name == "" {
		return nil, fmt.Errorf("plugin: no MIDI output device matching %q", name)
	}
	if err := d.open(); err != nil {
		return nil, err
	}
	return d, nil
}

func findDeviceName(substr string) string {
	for _, out := range midi.GetOutPorts() {
		if strings.Contains(strings.ToLower(out.String()), strings.ToLower(substr)) {
			return out.String()
		}
	}
	return ""
}

func (d *Device) open() error {
	mirrorMu.Lock()
	defer mirrorMu.Unlock()
	if _, ok := mirrorsOpen[d.name]; ok {
		return nil
	}
	out, err := midi.FindOutPort(d.name)
	if err != nil {
		return fmt.Errorf("plugin: finding MIDI port %q: %w", d.name, err)
	}
	if err := out.Open(); err != nil {
		return fmt.Errorf("plugin: opening MIDI port %q: %w", d.name, err)
	}
	mirrorsOpen[d.name] = out
	return nil
}

// NoteOn sends a MIDI note-on message.
func (d *Device) NoteOn(channel, note, velocity uint8) error {
	mirrorMu.Lock()
	defer mirrorMu.Unlock()
	out, ok := mirrorsOpen[d.name]
	if !ok {
		return fmt.Errorf("plugin: MIDI port %q not open", d.name)
	}
	return out.Send([]byte{0x90 | channel, note, velocity})
}

// NoteOff sends a MIDI note-off message.
func (d *Device) NoteOff(channel, note uint8) error {
	mirrorMu.Lock()
	defer mirrorMu.Unlock()
	out, ok := mirrorsOpen[d.name]
	if !ok {
		return fmt.Errorf("plugin: MIDI port %q not open", d.name)
	}
	return out.Send([]byte{0x80 | channel, note, 0})
}

// Close closes the underlying MIDI port.
func (d *Device) Close() error {
	mirrorMu.Lock()
	defer mirrorMu.Unlock()
	out, ok := mirrorsOpen[d.name]
	if !ok {
		return nil
	}
	delete(mirrorsOpen, d.name)
	return out.Close()
}
