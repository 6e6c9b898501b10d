package records

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// JSONStore handles run persistence using a local JSON file
type JSONStore struct {
	filePath string
	mutex    sync.RWMutex
	runs     []Run
}

// NewJSONStore opens filePath, creating it when missing.
func NewJSONStore(filePath string) (*JSONStore, error) {
	store := &JSONStore{filePath: filePath}

	b, err := os.ReadFile(filePath)
	switch {
	case err == nil:
		if len(b) > 0 {
			if err := json.Unmarshal(b, &store.runs); err != nil {
				return nil, fmt.Errorf("failed to load JSON store: %w", err)
			}
		}
	case errors.Is(err, os.ErrNotExist):
		if err := store.flush(); err != nil {
			return nil, fmt.Errorf("failed to create JSON store file: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to read JSON store: %w", err)
	}
	return store, nil
}

// flush rewrites the file through a temp file and rename. Callers hold the
// write lock or own the store exclusively.
func (js *JSONStore) flush() error {
	runs := js.runs
	if runs == nil {
		runs = []Run{}
	}
	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(js.filePath), ".runs-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), js.filePath)
}

// SaveRun appends a run and rewrites the file.
func (js *JSONStore) SaveRun(run Run) error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	js.runs = append(js.runs, run)
	if err := js.flush(); err != nil {
		js.runs = js.runs[:len(js.runs)-1]
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

func (js *JSONStore) GetRun(id string) (Run, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	for _, r := range js.runs {
		if r.ID == id {
			return r, nil
		}
	}
	return Run{}, fmt.Errorf("run %s: %w", id, ErrNotFound)
}

// TopRuns returns up to limit runs, best first.
func (js *JSONStore) TopRuns(limit int) ([]Run, error) {
	js.mutex.RLock()
	out := make([]Run, len(js.runs))
	copy(out, js.runs)
	js.mutex.RUnlock()

	sortRuns(out)
	if limit <= 0 {
		limit = DefaultTopRuns
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close closes the store (no-op for JSON store)
func (js *JSONStore) Close() error {
	return nil
}
