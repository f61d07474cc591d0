package persistence

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schollz/voicecore/internal/state"
)

func TestFileStoreSaveThenLoadRoundTrips(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	doc := NewSnapshotDocument(state.DefaultSession(16), nil, state.PianoRoll{}, state.Automation{})
	require.NoError(t, store.Save("demo", doc))

	got, err := store.Load("demo")
	require.NoError(t, err)
	assert.Equal(t, doc.Session.BPM, got.Session.BPM)
}

func TestFileStoreLoadMissingProjectReturnsError(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("nope")
	assert.Error(t, err)
}

func TestFileStoreListReturnsSavedProjectNames(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save("alpha", NewSnapshotDocument(state.Session{}, nil, state.PianoRoll{}, state.Automation{})))
	require.NoError(t, store.Save("beta", NewSnapshotDocument(state.Session{}, nil, state.PianoRoll{}, state.Automation{})))

	names, err := store.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alpha", "beta"}, names)
}

func TestFileStoreDeleteRemovesDocument(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save("gone", NewSnapshotDocument(state.Session{}, nil, state.PianoRoll{}, state.Automation{})))
	require.NoError(t, store.Delete("gone"))

	_, err = store.Load("gone")
	assert.Error(t, err)

	_, err = filepath.Abs(dir)
	require.NoError(t, err)
}

func TestFileStoreDeleteMissingProjectIsNotAnError(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	assert.NoError(t, store.Delete("never-existed"))
}
