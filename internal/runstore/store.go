// Package runstore persists one JSON record per workflow run under
// ~/.driftgate/runs/<run-id>/run.json. Records are opaque to the store:
// Save and Load marshal whatever the engine hands them, and List reads only
// the summary fields it needs.
package runstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Store manages run history on disk.
type Store struct {
	baseDir string
}

// NewStore creates a Store rooted at baseDir.
func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// DefaultStore returns a Store at ~/.driftgate/runs, creating the directory
// if needed.
func DefaultStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("get home dir: %w", err)
	}
	dir := filepath.Join(home, ".driftgate", "runs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &Store{baseDir: dir}, nil
}

// BaseDir returns the store's root directory.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// recordPath returns the path to the run.json for a run ID.
func (s *Store) recordPath(runID string) string {
	return filepath.Join(s.baseDir, runID, "run.json")
}

// Save writes a run record.
func (s *Store) Save(runID string, v any) error {
	if runID == "" {
		return fmt.Errorf("empty run id")
	}
	if err := WriteJSON(s.recordPath(runID), v); err != nil {
		return fmt.Errorf("write run %s: %w", runID, err)
	}
	return nil
}

// Load reads a run record into v.
func (s *Store) Load(runID string, v any) error {
	if err := ReadJSON(s.recordPath(runID), v); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("run %s not found", runID)
		}
		return err
	}
	return nil
}

// Raw returns the raw JSON bytes of a run record.
func (s *Store) Raw(runID string) ([]byte, error) {
	data, err := os.ReadFile(s.recordPath(runID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("run %s not found", runID)
		}
		return nil, fmt.Errorf("read run %s: %w", runID, err)
	}
	return data, nil
}

// Summary is the subset of a run record the history listing shows.
type Summary struct {
	RunID        string `json:"run_id"`
	Status       string `json:"status"`
	StartedAt    string `json:"started_at"`
	FinishedAt   string `json:"finished_at"`
	ErrorMessage string `json:"error_message"`
}

// List returns summaries for all stored runs, newest first.
func (s *Store) List() ([]Summary, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read dir %s: %w", s.baseDir, err)
	}

	var runs []Summary
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		var sum Summary
		if err := ReadJSON(s.recordPath(entry.Name()), &sum); err != nil {
			continue // skip broken entries
		}
		runs = append(runs, sum)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt > runs[j].StartedAt
	})
	return runs, nil
}
