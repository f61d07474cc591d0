package bus

import (
	"errors"
	"sync"
)

// ErrClosed is returned by SendCommand once the bus has been torn down —
// the audio thread has exited and no further commands will be drained.
var ErrClosed = errors.New("bus: closed")

// ErrFull is returned by SendCommand when the command queue is saturated.
// The UI thread must never block on the audio thread (spec.md §5), so a
// full queue is reported rather than awaited.
var ErrFull = errors.New("bus: command queue full")

const defaultQueueDepth = 4096

// Bus is the pair of FIFO queues connecting the UI thread to the audio
// thread. Commands flow UI→audio; Feedback flows audio→UI. Both directions
// are single-producer/single-consumer in normal operation (spec.md §5),
// though SendFeedback tolerates multiple audio-side goroutines via its
// internal mutex-guarded closed flag.
type Bus struct {
	commands chan Command
	feedback chan Feedback

	mu     sync.Mutex
	closed bool
}

// New creates a Bus with the default queue depth.
func New() *Bus {
	return NewWithDepth(defaultQueueDepth)
}

// NewWithDepth creates a Bus whose channels are each buffered to depth.
func NewWithDepth(depth int) *Bus {
	return &Bus{
		commands: make(chan Command, depth),
		feedback: make(chan Feedback, depth),
	}
}

// SendCommand enqueues a command for the audio thread. Non-blocking: it
// returns ErrFull rather than waiting if the queue is saturated, and
// ErrClosed once the bus has been closed.
func (b *Bus) SendCommand(cmd Command) error {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return ErrClosed
	}
	select {
	case b.commands <- cmd:
		return nil
	default:
		return ErrFull
	}
}

// Commands returns the receive end of the command queue, for the audio
// thread's drain loop.
func (b *Bus) Commands() <-chan Command {
	return b.commands
}

// SendFeedback enqueues feedback for the UI thread. The audio thread's send
// on a closed bus is ignored rather than panicking — dropped listeners are
// not fatal (spec.md §4.1).
func (b *Bus) SendFeedback(fb Feedback) {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return
	}
	select {
	case b.feedback <- fb:
	default:
		// Feedback queue saturated: the UI isn't draining fast enough.
		// Dropping here (rather than blocking the audio thread) matches
		// spec.md §5's "audio thread suspends only at its fixed sleep and
		// at datagram sends" — it must never block on a feedback send.
	}
}

// Feedback returns the receive end of the feedback queue, for the UI
// thread's render-time drain.
func (b *Bus) Feedback() <-chan Feedback {
	return b.feedback
}

// Close tears down the bus. Subsequent SendCommand calls return ErrClosed;
// subsequent SendFeedback calls are silently ignored. Close is idempotent.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.commands)
}

// Reply is a one-shot reply channel helper: it sends exactly once and never
// blocks the audio thread if the caller has abandoned the channel.
func Reply[T any](ch chan T, value T) {
	if ch == nil {
		return
	}
	select {
	case ch <- value:
	default:
	}
}
