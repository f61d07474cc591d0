package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMonitorMeterPeak(t *testing.T) {
	m := NewMonitor()
	m.setMeter(0.5, 0.75)
	l, r := m.MeterPeak()
	assert.Equal(t, float32(0.5), l)
	assert.Equal(t, float32(0.75), r)
}

func TestMonitorWaveformRingBounded(t *testing.T) {
	m := NewMonitor()
	for i := 0; i < waveformBufferSize+20; i++ {
		m.pushWaveform(1, float32(i))
	}
	buf := m.AudioInWaveform(1)
	assert.Len(t, buf, waveformBufferSize)
	assert.Equal(t, float32(waveformBufferSize+19), buf[len(buf)-1])
}

func TestMonitorScopeRingBounded(t *testing.T) {
	m := NewMonitor()
	for i := 0; i < scopeBufferSize+50; i++ {
		m.pushScope(float32(i))
	}
	assert.Len(t, m.ScopeBuffer(), scopeBufferSize)
}

func TestMonitorUnknownInstrumentReturnsNil(t *testing.T) {
	m := NewMonitor()
	assert.Nil(t, m.AudioInWaveform(99))
}

func TestMonitorLUFSAndSpectrum(t *testing.T) {
	m := NewMonitor()
	m.setLUFS(1, 2, 3, 4) // peakL=1, rmsL=2, peakR=3, rmsR=4
	pl, pr, rl, rr := m.LUFS()
	assert.Equal(t, []float32{1, 3, 2, 4}, []float32{pl, pr, rl, rr})

	var bands [spectrumBands]float32
	for i := range bands {
		bands[i] = float32(i)
	}
	m.setSpectrum(bands)
	assert.Equal(t, bands, m.SpectrumBands())
}
