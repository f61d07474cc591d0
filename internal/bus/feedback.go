package bus

// Feedback is the closed tagged-variant set the audio thread emits back to
// the UI thread. Batched by the sender, drained by the UI at render time
// (spec.md §4.1).
type Feedback interface {
	isFeedback()
}

type PlayheadFeedback struct {
	Tick int64
}

func (PlayheadFeedback) isFeedback() {}

type BPMUpdateFeedback struct {
	BPM float64
}

func (BPMUpdateFeedback) isFeedback() {}

type DrumStepFeedback struct {
	InstrumentID int
	Step         int
}

func (DrumStepFeedback) isFeedback() {}

// ServerStatus mirrors spec.md §4.8's status enum.
type ServerStatus int

const (
	StatusStopped ServerStatus = iota
	StatusStarting
	StatusRunning
	StatusConnected
	StatusError
)

// IsRunning reports status from the handle's perspective: true iff
// Connected, per spec.md §4.8.
func (s ServerStatus) IsRunning() bool { return s == StatusConnected }

type ServerStatusFeedback struct {
	Status  ServerStatus
	Message string
	Running bool
}

func (ServerStatusFeedback) isFeedback() {}

type RecordingStateFeedback struct {
	Recording   bool
	ElapsedSecs float64
}

func (RecordingStateFeedback) isFeedback() {}

type RecordingStoppedFeedback struct {
	Path string
}

func (RecordingStoppedFeedback) isFeedback() {}

type CompileResultFeedback struct {
	Result CompileResult
}

func (CompileResultFeedback) isFeedback() {}

type PendingBufferFreedFeedback struct {
	BufferID int
}

func (PendingBufferFreedFeedback) isFeedback() {}

type PluginParamsDiscoveredFeedback struct {
	InstrumentID int
	Params       []PluginParam
}

func (PluginParamsDiscoveredFeedback) isFeedback() {}

type PluginStateSavedFeedback struct {
	InstrumentID int
	Path         string
}

func (PluginStateSavedFeedback) isFeedback() {}
