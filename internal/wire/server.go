package wire

import (
	"github.com/hypebeast/go-osc/osc"
)

// Server is the inbound half of the Wire Protocol Client: a dedicated
// receive thread that decodes datagrams and demultiplexes them by address
// into a Monitor's thread-safe slots (spec.md §4.7). Grounded on the
// donor's osc.NewStandardDispatcher/osc.Server usage in main.go and
// original_source/.../osc_client.rs's handle_osc_packet address dispatch.
type Server struct {
	monitor    *Monitor
	dispatcher *osc.StandardDispatcher
	server     *osc.Server
	addr       string
}

// NewServer builds a Server listening on addr (":port") that updates
// monitor as datagrams arrive. Call ListenAndServe in its own goroutine.
func NewServer(addr string, monitor *Monitor) *Server {
	d := osc.NewStandardDispatcher()
	s := &Server{monitor: monitor, dispatcher: d, addr: addr}
	s.registerHandlers()
	s.server = &osc.Server{Addr: addr, Dispatcher: d}
	return s
}

// ListenAndServe blocks, serving inbound datagrams until the socket errors
// or is closed. Intended to run on the dedicated "Protocol receive" thread
// (spec.md §5).
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

func argFloat32(msg *osc.Message, i int) float32 {
	if i < 0 || i >= len(msg.Arguments) {
		return 0
	}
	switch v := msg.Arguments[i].(type) {
	case float32:
		return v
	case int32:
		return float32(v)
	default:
		return 0
	}
}

func (s *Server) registerHandlers() {
	// /meter nodeID replyID peakL _ peakR _ (see spec.md §4.7/§6)
	s.dispatcher.AddMsgHandler("/meter", func(msg *osc.Message) {
		if len(msg.Arguments) < 6 {
			return
		}
		s.monitor.setMeter(argFloat32(msg, 2), argFloat32(msg, 4))
	})

	// /audio_in_level nodeID replyID peakL rmsL peakR rmsR — the donor
	// keeps only the instrument id and the first peak value, matching
	// osc_client.rs's handle_osc_packet.
	s.dispatcher.AddMsgHandler("/audio_in_level", func(msg *osc.Message) {
		if len(msg.Arguments) < 3 {
			return
		}
		instrumentID := int(argFloat32(msg, 1))
		s.monitor.pushWaveform(instrumentID, argFloat32(msg, 2))
	})

	// /spectrum nodeID replyID val0..val6
	s.dispatcher.AddMsgHandler("/spectrum", func(msg *osc.Message) {
		if len(msg.Arguments) < 2+spectrumBands {
			return
		}
		var bands [spectrumBands]float32
		for i := 0; i < spectrumBands; i++ {
			bands[i] = argFloat32(msg, 2+i)
		}
		s.monitor.setSpectrum(bands)
	})

	// /lufs nodeID replyID peakL rmsL peakR rmsR
	s.dispatcher.AddMsgHandler("/lufs", func(msg *osc.Message) {
		if len(msg.Arguments) < 6 {
			return
		}
		s.monitor.setLUFS(argFloat32(msg, 2), argFloat32(msg, 3), argFloat32(msg, 4), argFloat32(msg, 5))
	})

	// /scope nodeID replyID peakValue
	s.dispatcher.AddMsgHandler("/scope", func(msg *osc.Message) {
		if len(msg.Arguments) < 3 {
			return
		}
		s.monitor.pushScope(argFloat32(msg, 2))
	})
}

// Addr reports the server's bound address, for logging.
func (s *Server) Addr() string {
	return s.addr
}
