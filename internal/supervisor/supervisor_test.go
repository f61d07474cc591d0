package supervisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schollz/voicecore/internal/bus"
)

func TestPollReportsStoppedInitially(t *testing.T) {
	s := New(Config{ProcessName: "nonexistent-process-xyz"})
	fb := s.Poll()
	assert.Equal(t, bus.StatusStopped, fb.Status)
	assert.False(t, fb.Running)
}

func TestConnectTransitionsToConnected(t *testing.T) {
	s := New(Config{ProcessName: "nonexistent-process-xyz"})
	require.NoError(t, s.Connect("127.0.0.1:57110"))
	fb := s.Poll()
	assert.Equal(t, bus.StatusConnected, fb.Status)
	assert.True(t, fb.Running)
	assert.NotNil(t, s.Client())
}

func TestConnectRejectsInvalidAddress(t *testing.T) {
	s := New(Config{ProcessName: "nonexistent-process-xyz"})
	err := s.Connect("not-an-address")
	assert.Error(t, err)
}

func TestDisconnectFallsBackToStoppedWhenProcessNotRunning(t *testing.T) {
	s := New(Config{ProcessName: "nonexistent-process-xyz"})
	require.NoError(t, s.Connect("127.0.0.1:57110"))
	s.Disconnect()
	fb := s.Poll()
	assert.Equal(t, bus.StatusStopped, fb.Status)
	assert.Nil(t, s.Client())
}

func TestIsRunningTrueOnlyWhenConnected(t *testing.T) {
	assert.True(t, bus.StatusConnected.IsRunning())
	assert.False(t, bus.StatusRunning.IsRunning())
	assert.False(t, bus.StatusStopped.IsRunning())
}

func TestCompileSynthDefsReportsSuccess(t *testing.T) {
	s := New(Config{})
	result, err := s.CompileSynthDefs([]string{"a.scd", "b.scd"})
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestLoadSynthDefsFailsWithoutConnection(t *testing.T) {
	s := New(Config{})
	err := s.LoadSynthDefs([]string{"a.scd"})
	assert.Error(t, err)
}
