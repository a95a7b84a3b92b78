package store

import (
	"testing"
	"time"

	"tailorflow/internal/types"
)

func TestSettingsWatcherFiresOnSave(t *testing.T) {
	store := NewSettingsStore(settingsPath(t), nil)

	changed := make(chan types.Settings, 1)
	watcher := NewSettingsWatcher(store, 10*time.Millisecond, func(s types.Settings) {
		select {
		case changed <- s:
		default:
		}
	}, nil)

	if err := watcher.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer func() { _ = watcher.Stop() }()

	want := DefaultSettings()
	want.DefaultMaxWords = 12
	if err := store.Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}

	select {
	case got := <-changed:
		if got.DefaultMaxWords != 12 {
			t.Errorf("expected reloaded max words 12, got %d", got.DefaultMaxWords)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not fire after settings save")
	}
}

func TestSettingsWatcherDoubleStart(t *testing.T) {
	store := NewSettingsStore(settingsPath(t), nil)
	watcher := NewSettingsWatcher(store, 10*time.Millisecond, nil, nil)

	if err := watcher.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer func() { _ = watcher.Stop() }()

	if err := watcher.Start(); err == nil {
		t.Error("expected error on second start")
	}
}

func TestSettingsWatcherStopIdempotent(t *testing.T) {
	store := NewSettingsStore(settingsPath(t), nil)
	watcher := NewSettingsWatcher(store, 10*time.Millisecond, nil, nil)

	if err := watcher.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := watcher.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := watcher.Stop(); err != nil {
		t.Errorf("second stop: %v", err)
	}
}
