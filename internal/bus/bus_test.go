package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendAndDrainFIFO(t *testing.T) {
	b := New()
	require.NoError(t, b.SendCommand(SetBPMCmd{BPM: 100}))
	require.NoError(t, b.SendCommand(SetBPMCmd{BPM: 200}))

	first := <-b.Commands()
	second := <-b.Commands()
	assert.Equal(t, SetBPMCmd{BPM: 100}, first)
	assert.Equal(t, SetBPMCmd{BPM: 200}, second)
}

func TestSendCommandAfterCloseReturnsErrClosed(t *testing.T) {
	b := New()
	b.Close()
	err := b.SendCommand(ShutdownCmd{})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSendFeedbackAfterCloseIsIgnored(t *testing.T) {
	b := New()
	b.Close()
	assert.NotPanics(t, func() {
		b.SendFeedback(BPMUpdateFeedback{BPM: 120})
	})
}

func TestQueueFullReturnsErrFull(t *testing.T) {
	b := NewWithDepth(1)
	require.NoError(t, b.SendCommand(ShutdownCmd{}))
	err := b.SendCommand(ShutdownCmd{})
	assert.ErrorIs(t, err, ErrFull)
}

func TestReplyIgnoresAbandonedChannel(t *testing.T) {
	ch := make(chan error) // unbuffered, nobody reading
	assert.NotPanics(t, func() {
		Reply(ch, nil)
	})
}

func TestReplyDeliversToBufferedChannel(t *testing.T) {
	ch := make(chan error, 1)
	Reply(ch, nil)
	err := <-ch
	assert.NoError(t, err)
}

func TestServerStatusIsRunning(t *testing.T) {
	assert.True(t, StatusConnected.IsRunning())
	assert.False(t, StatusRunning.IsRunning())
	assert.False(t, StatusStopped.IsRunning())
}
