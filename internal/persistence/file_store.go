package persistence

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore is a reference persistence collaborator backed by one JSON file
// per project, used only by tests and the CLI's `serve --project` load
// (spec.md §6 names a relational database as the real collaborator;
// this package does not implement one). Grounded on the donor's DoSave/
// LoadState file handling, minus the gzip framing and minus the autosave
// debounce timer — both are Non-goals here.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore returns a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("persistence: creating store dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(project string) string {
	return filepath.Join(s.dir, project+".json")
}

// Save writes doc for the named project, overwriting any prior document.
func (s *FileStore) Save(project string, doc SnapshotDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := Marshal(doc)
	if err != nil {
		return fmt.Errorf("persistence: marshaling %q: %w", project, err)
	}
	if err := os.WriteFile(s.path(project), data, 0o644); err != nil {
		return fmt.Errorf("persistence: writing %q: %w", project, err)
	}
	return nil
}

// Load reads the document previously saved for the named project.
func (s *FileStore) Load(project string) (SnapshotDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(project))
	if err != nil {
		return SnapshotDocument{}, fmt.Errorf("persistence: reading %q: %w", project, err)
	}
	doc, err := Unmarshal(data)
	if err != nil {
		return SnapshotDocument{}, fmt.Errorf("persistence: unmarshaling %q: %w", project, err)
	}
	return doc, nil
}

// List returns the project names with a saved document, sorted by file
// name (os.ReadDir's order).
func (s *FileStore) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("persistence: listing %q: %w", s.dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := filepath.Ext(name)
		if ext == ".json" {
			names = append(names, name[:len(name)-len(ext)])
		}
	}
	return names, nil
}

// Delete removes the saved document for the named project, if any.
func (s *FileStore) Delete(project string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(project)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("persistence: deleting %q: %w", project, err)
	}
	return nil
}
