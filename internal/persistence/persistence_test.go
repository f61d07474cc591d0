package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schollz/voicecore/internal/state"
)

func TestTablesListsEveryConstant(t *testing.T) {
	assert.Len(t, Tables, 27)
	assert.Contains(t, Tables, TableInstruments)
	assert.Contains(t, Tables, TableVSTPluginParams)
}

func TestMarshalUnmarshalRoundTrips(t *testing.T) {
	doc := NewSnapshotDocument(
		state.DefaultSession(16),
		[]state.Instrument{{ID: 1, Source: state.SourceOscillator}},
		state.PianoRoll{TicksPerBeat: 480},
		state.Automation{Lanes: []state.Lane{{ID: 1, Enabled: true}}},
	)

	data, err := Marshal(doc)
	require.NoError(t, err)

	got, err := Unmarshal(data)
	require.NoError(t, err)

	assert.Equal(t, CurrentFormatVersion, got.FormatVersion)
	assert.Equal(t, doc.Instruments, got.Instruments)
	assert.Equal(t, doc.PianoRoll, got.PianoRoll)
	assert.Equal(t, doc.Automation, got.Automation)
}

func TestNewSnapshotDocumentStampsCurrentFormatVersion(t *testing.T) {
	doc := NewSnapshotDocument(state.Session{}, nil, state.PianoRoll{}, state.Automation{})
	assert.Equal(t, CurrentFormatVersion, doc.FormatVersion)
}
