package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func settingsPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "settings.json")
}

func TestSettingsMissingFileYieldsDefaults(t *testing.T) {
	store := NewSettingsStore(settingsPath(t), nil)
	got := store.Load()
	if got != DefaultSettings() {
		t.Errorf("expected defaults, got %+v", got)
	}
}

func TestSettingsPartialFileMergesOverDefaults(t *testing.T) {
	path := settingsPath(t)
	if err := os.WriteFile(path, []byte(`{"default_max_words": 40}`), 0600); err != nil {
		t.Fatal(err)
	}

	got := NewSettingsStore(path, nil).Load()
	if got.DefaultMaxWords != 40 {
		t.Errorf("expected stored max words 40, got %d", got.DefaultMaxWords)
	}
	if got.ExportStyle != "modern" {
		t.Errorf("expected default export style, got %q", got.ExportStyle)
	}
	if !got.AutoSaveHistory {
		t.Error("expected default auto-save to survive a partial file")
	}
	if got.RequestTimeout != 30*time.Second {
		t.Errorf("expected default timeout, got %s", got.RequestTimeout)
	}
}

func TestSettingsCorruptFileYieldsDefaults(t *testing.T) {
	path := settingsPath(t)
	if err := os.WriteFile(path, []byte("not json at all"), 0600); err != nil {
		t.Fatal(err)
	}
	if got := NewSettingsStore(path, nil).Load(); got != DefaultSettings() {
		t.Errorf("expected defaults from corrupt file, got %+v", got)
	}
}

func TestSettingsInvalidValuesYieldDefaults(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"max words out of range", `{"default_max_words": 500}`},
		{"unknown export style", `{"export_style": "neon"}`},
		{"non-positive timeout", `{"request_timeout": -1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := settingsPath(t)
			if err := os.WriteFile(path, []byte(tt.body), 0600); err != nil {
				t.Fatal(err)
			}
			if got := NewSettingsStore(path, nil).Load(); got != DefaultSettings() {
				t.Errorf("expected defaults, got %+v", got)
			}
		})
	}
}

func TestSettingsSaveLoadRoundTrip(t *testing.T) {
	path := settingsPath(t)
	store := NewSettingsStore(path, nil)

	want := DefaultSettings()
	want.DefaultMaxWords = 18
	want.ExportStyle = "compact"
	want.AutoSaveHistory = false
	want.RequestTimeout = 45 * time.Second

	if err := store.Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := NewSettingsStore(path, nil).Load(); got != want {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestSettingsSaveRejectsInvalid(t *testing.T) {
	store := NewSettingsStore(settingsPath(t), nil)

	invalid := DefaultSettings()
	invalid.ExportStyle = "sparkly"
	if err := store.Save(invalid); err == nil {
		t.Error("expected validation error for unknown export style")
	}

	invalid = DefaultSettings()
	invalid.DefaultMaxWords = 0
	if err := store.Save(invalid); err == nil {
		t.Error("expected validation error for zero max words")
	}
}
