// Package state implements registry.StateStore backends. The JSON store is
// the default: one document rewritten wholesale on every save. The bolt
// store keeps the same document inside a bbolt bucket for projects that
// prefer a single binary db file.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/corey/symdex/internal/domain/registry"
)

// JSONStore persists the registry document as a single JSON file.
type JSONStore struct {
	path string
}

// NewJSONStore creates a store writing to the given file path.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Save overwrites the state file wholesale. The parent directory is created
// on first save.
func (s *JSONStore) Save(st *registry.State) error {
	if st == nil {
		return fmt.Errorf("nil state")
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

// Load reads the state file. Returns nil, nil when the file does not exist.
func (s *JSONStore) Load() (*registry.State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read state: %w", err)
	}
	var st registry.State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	return &st, nil
}
