package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schollz/voicecore/internal/bus"
)

type recordedCmd struct {
	nodeID int32
	cmd    string
	args   []interface{}
}

type fakeSender struct {
	sent []recordedCmd
}

func (f *fakeSender) SendUnitCmd(nodeID, ugenIndex int32, cmd string, args ...interface{}) error {
	f.sent = append(f.sent, recordedCmd{nodeID: nodeID, cmd: cmd, args: args})
	return nil
}

type fakeMirror struct {
	onNote  uint8
	onVel   uint8
	offNote uint8
	onCalls int
	offCalls int
}

func (m *fakeMirror) NoteOn(channel, note, velocity uint8) error {
	m.onNote, m.onVel = note, velocity
	m.onCalls++
	return nil
}

func (m *fakeMirror) NoteOff(channel, note uint8) error {
	m.offNote = note
	m.offCalls++
	return nil
}

func (m *fakeMirror) Close() error { return nil }

func TestNoteOnWithoutRegisteredNodeErrors(t *testing.T) {
	h := NewHost(&fakeSender{})
	err := h.NoteOn(1, 60, 1.0)
	assert.Error(t, err)
}

func TestNoteOnSendsUnitCmdAndMirrors(t *testing.T) {
	sender := &fakeSender{}
	h := NewHost(sender)
	h.RegisterNode(1, 2000)
	mirror := &fakeMirror{}
	h.SetMirror(1, mirror)

	require.NoError(t, h.NoteOn(1, 60, 1.0))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, int32(2000), sender.sent[0].nodeID)
	assert.Equal(t, "/midi_msg", sender.sent[0].cmd)
	assert.Equal(t, 1, mirror.onCalls)
	assert.Equal(t, uint8(60), mirror.onNote)
	assert.Equal(t, uint8(127), mirror.onVel)
}

func TestNoteOffSendsUnitCmdAndMirrors(t *testing.T) {
	sender := &fakeSender{}
	h := NewHost(sender)
	h.RegisterNode(1, 2000)
	mirror := &fakeMirror{}
	h.SetMirror(1, mirror)

	require.NoError(t, h.NoteOff(1, 60))
	assert.Equal(t, 1, mirror.offCalls)
	assert.Equal(t, uint8(60), mirror.offNote)
}

func TestUnregisterNodeStopsFurtherSends(t *testing.T) {
	sender := &fakeSender{}
	h := NewHost(sender)
	h.RegisterNode(1, 2000)
	h.UnregisterNode(1)

	err := h.NoteOn(1, 60, 1.0)
	assert.Error(t, err)
}

func TestQueryPluginParamsReturnsNilUntilDiscovered(t *testing.T) {
	h := NewHost(&fakeSender{})
	assert.Nil(t, h.QueryPluginParams(1))

	h.DiscoverParams(1, []bus.PluginParam{{Name: "cutoff", Value: 0.5}})
	params := h.QueryPluginParams(1)
	require.Len(t, params, 1)
	assert.Equal(t, "cutoff", params[0].Name)
}

func TestSetPluginParamUpdatesCacheAndSendsCmd(t *testing.T) {
	sender := &fakeSender{}
	h := NewHost(sender)
	h.RegisterNode(1, 2000)
	h.DiscoverParams(1, []bus.PluginParam{{Name: "cutoff", Value: 0.5}})

	h.SetPluginParam(1, 0, 0.9)

	assert.Equal(t, float32(0.9), h.QueryPluginParams(1)[0].Value)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "/set", sender.sent[0].cmd)
}

func TestSavePluginStateNoopWithoutRegisteredNode(t *testing.T) {
	sender := &fakeSender{}
	h := NewHost(sender)
	h.SavePluginState(1, "/tmp/x.state")
	assert.Empty(t, sender.sent)
}

func TestLoadPluginStateErrorsWithoutRegisteredNode(t *testing.T) {
	h := NewHost(&fakeSender{})
	err := h.LoadPluginState(1, "/tmp/x.state")
	assert.Error(t, err)
}

func TestLoadPluginStateSendsUnitCmd(t *testing.T) {
	sender := &fakeSender{}
	h := NewHost(sender)
	h.RegisterNode(1, 2000)
	require.NoError(t, h.LoadPluginState(1, "/tmp/x.state"))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "/load", sender.sent[0].cmd)
}
