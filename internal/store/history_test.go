package store

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"tailorflow/internal/types"
)

func historyPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "history.json")
}

func entryWithScore(score int) types.HistoryEntry {
	return NewEntry(
		types.Resume{Skills: []string{"go"}},
		types.JobDescription{Title: fmt.Sprintf("Role %d", score)},
		types.AnalysisResult{Score: score},
	)
}

func TestHistoryCapsAtTenMostRecentFirst(t *testing.T) {
	path := historyPath(t)
	store := NewHistoryStore(path, nil)

	for i := 1; i <= 15; i++ {
		if err := store.Add(entryWithScore(i)); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}

	entries := store.Entries()
	if len(entries) != MaxHistoryEntries {
		t.Fatalf("expected %d entries, got %d", MaxHistoryEntries, len(entries))
	}
	// Insertions 6..15 survive, newest first.
	for i, entry := range entries {
		want := 15 - i
		if entry.Score != want {
			t.Errorf("entry %d: expected score %d, got %d", i, want, entry.Score)
		}
	}

	// The cap must hold across a reload too.
	reloaded := NewHistoryStore(path, nil)
	if got := len(reloaded.Entries()); got != MaxHistoryEntries {
		t.Errorf("expected %d entries after reload, got %d", MaxHistoryEntries, got)
	}
	if reloaded.Entries()[0].Score != 15 {
		t.Errorf("expected most recent entry first after reload, got score %d",
			reloaded.Entries()[0].Score)
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	path := historyPath(t)
	store := NewHistoryStore(path, nil)

	entry := NewEntry(
		types.Resume{Summary: "Backend engineer", Skills: []string{"go", "postgres"}},
		types.JobDescription{Title: "Platform Engineer", Required: []string{"go"}},
		types.AnalysisResult{Score: 81, Matched: []string{"go"}, Missing: []string{"kafka"}},
	)
	if err := store.Add(entry); err != nil {
		t.Fatalf("add: %v", err)
	}

	reloaded := NewHistoryStore(path, nil)
	got, ok := reloaded.Get(entry.ID)
	if !ok {
		t.Fatalf("entry %s not found after reload", entry.ID)
	}
	if got.JobTitle != "Platform Engineer" {
		t.Errorf("expected job title preserved, got %q", got.JobTitle)
	}
	if got.Score != 81 || got.Result.Score != 81 {
		t.Errorf("expected score 81, got %d / %d", got.Score, got.Result.Score)
	}
	if len(got.Resume.Skills) != 2 {
		t.Errorf("expected resume snapshot preserved, got %v", got.Resume.Skills)
	}
}

func TestHistoryUntitledFallback(t *testing.T) {
	entry := NewEntry(types.Resume{}, types.JobDescription{}, types.AnalysisResult{})
	if entry.JobTitle != "Untitled role" {
		t.Errorf("expected 'Untitled role' fallback, got %q", entry.JobTitle)
	}
	if entry.ID == "" {
		t.Error("expected a generated ID")
	}
	if entry.CreatedAt.IsZero() {
		t.Error("expected a creation timestamp")
	}
}

func TestHistoryCorruptFileStartsEmpty(t *testing.T) {
	path := historyPath(t)
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	store := NewHistoryStore(path, nil)
	if got := len(store.Entries()); got != 0 {
		t.Errorf("expected empty history from corrupt file, got %d entries", got)
	}

	// The store must still be writable afterwards.
	if err := store.Add(entryWithScore(50)); err != nil {
		t.Fatalf("add after corruption: %v", err)
	}
	if len(NewHistoryStore(path, nil).Entries()) != 1 {
		t.Error("expected store to recover after corruption")
	}
}

func TestHistoryClear(t *testing.T) {
	path := historyPath(t)
	store := NewHistoryStore(path, nil)
	for i := 0; i < 3; i++ {
		if err := store.Add(entryWithScore(i)); err != nil {
			t.Fatal(err)
		}
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(store.Entries()) != 0 {
		t.Error("expected no entries after clear")
	}
	if got := len(NewHistoryStore(path, nil).Entries()); got != 0 {
		t.Errorf("expected clear to persist, got %d entries", got)
	}
}

func TestHistoryGetMissing(t *testing.T) {
	store := NewHistoryStore(historyPath(t), nil)
	if _, ok := store.Get("nope"); ok {
		t.Error("expected lookup miss for unknown ID")
	}
}
