// Package store persists analysis history and user settings as JSON files
// under the application data directory. There is no server-side account;
// everything here is local to the machine.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tailorflow/internal/errors"
	"tailorflow/internal/types"

	"github.com/google/uuid"
)

// MaxHistoryEntries caps the history list; older entries fall off on insert
const MaxHistoryEntries = 10

// HistoryStore keeps the analysis history in memory, loaded once at startup,
// and writes it back on every mutation. Entries are ordered most-recent-first.
type HistoryStore struct {
	path    string
	logger  *errors.Logger
	entries []types.HistoryEntry
}

// NewHistoryStore loads the history file at path. A missing or corrupt file
// yields an empty history; corruption is logged, never surfaced.
func NewHistoryStore(path string, logger *errors.Logger) *HistoryStore {
	s := &HistoryStore{path: path, logger: logger}
	s.load()
	return s
}

func (s *HistoryStore) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) && s.logger != nil {
			s.logger.Warn("Failed to read history file, starting empty",
				"path", s.path, "error", err)
		}
		return
	}

	var entries []types.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		if s.logger != nil {
			s.logger.Warn("History file is corrupt, starting empty",
				"code", errors.ErrCodeStoreCorrupt, "path", s.path, "error", err)
		}
		return
	}

	if len(entries) > MaxHistoryEntries {
		entries = entries[:MaxHistoryEntries]
	}
	s.entries = entries
}

// NewEntry builds a history entry snapshotting the resume, job description
// and analysis result together. The three always travel as one record.
func NewEntry(resume types.Resume, jd types.JobDescription, result types.AnalysisResult) types.HistoryEntry {
	title := jd.Title
	if title == "" {
		title = "Untitled role"
	}
	return types.HistoryEntry{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		JobTitle:  title,
		Score:     result.Score,
		Resume:    resume,
		JD:        jd,
		Result:    result,
	}
}

// Add prepends an entry, truncates to MaxHistoryEntries, and persists
func (s *HistoryStore) Add(entry types.HistoryEntry) error {
	s.entries = append([]types.HistoryEntry{entry}, s.entries...)
	if len(s.entries) > MaxHistoryEntries {
		s.entries = s.entries[:MaxHistoryEntries]
	}
	return s.persist()
}

// Entries returns the history, most recent first
func (s *HistoryStore) Entries() []types.HistoryEntry {
	return s.entries
}

// Get looks up a single entry by its identifier
func (s *HistoryStore) Get(id string) (*types.HistoryEntry, bool) {
	for i := range s.entries {
		if s.entries[i].ID == id {
			return &s.entries[i], true
		}
	}
	return nil, false
}

// Clear removes all entries. Individual deletion is intentionally not
// offered; history only shrinks in bulk.
func (s *HistoryStore) Clear() error {
	s.entries = nil
	return s.persist()
}

func (s *HistoryStore) persist() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return errors.NewInternalError(errors.ErrCodeStoreWriteFailed,
			"Failed to encode history", err)
	}

	if err := writeFileAtomic(s.path, data); err != nil {
		return errors.NewStoreError(errors.ErrCodeStoreWriteFailed,
			fmt.Sprintf("Failed to write history file: %s", s.path), err)
	}
	return nil
}

// writeFileAtomic writes via a temp file and rename so a crash mid-write
// never leaves a truncated store behind.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, path)
}
