package store

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"tailorflow/internal/errors"
	"tailorflow/internal/types"

	"github.com/go-playground/validator/v10"
)

// DefaultSettings returns the hard defaults user settings merge over
func DefaultSettings() types.Settings {
	return types.Settings{
		DefaultMaxWords:      25,
		ExportStyle:          "modern",
		AutoSaveHistory:      true,
		ShowAdvancedAnalysis: false,
		RequestTimeout:       30 * time.Second,
	}
}

// settingsFile mirrors types.Settings with optional fields so that files
// written by older versions, which lack newly introduced settings, still
// merge cleanly over the defaults.
type settingsFile struct {
	DefaultMaxWords      *int           `json:"default_max_words,omitempty"`
	ExportStyle          *string        `json:"export_style,omitempty"`
	AutoSaveHistory      *bool          `json:"auto_save_history,omitempty"`
	ShowAdvancedAnalysis *bool          `json:"show_advanced_analysis,omitempty"`
	RequestTimeout       *time.Duration `json:"request_timeout,omitempty"`
}

// SettingsStore reads and writes the user settings file. Settings are
// overwritten wholesale on every save.
type SettingsStore struct {
	path     string
	logger   *errors.Logger
	validate *validator.Validate
}

// NewSettingsStore creates a settings store backed by the file at path
func NewSettingsStore(path string, logger *errors.Logger) *SettingsStore {
	return &SettingsStore{
		path:     path,
		logger:   logger,
		validate: validator.New(),
	}
}

// Load returns the stored settings merged over DefaultSettings. A missing,
// corrupt or invalid file yields the defaults; corruption is logged, never
// surfaced.
func (s *SettingsStore) Load() types.Settings {
	settings := DefaultSettings()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) && s.logger != nil {
			s.logger.Warn("Failed to read settings file, using defaults",
				"path", s.path, "error", err)
		}
		return settings
	}

	var stored settingsFile
	if err := json.Unmarshal(data, &stored); err != nil {
		if s.logger != nil {
			s.logger.Warn("Settings file is corrupt, using defaults",
				"code", errors.ErrCodeStoreCorrupt, "path", s.path, "error", err)
		}
		return settings
	}

	// Explicit per-field merge: only fields present in the file override
	// their defaults.
	if stored.DefaultMaxWords != nil {
		settings.DefaultMaxWords = *stored.DefaultMaxWords
	}
	if stored.ExportStyle != nil {
		settings.ExportStyle = *stored.ExportStyle
	}
	if stored.AutoSaveHistory != nil {
		settings.AutoSaveHistory = *stored.AutoSaveHistory
	}
	if stored.ShowAdvancedAnalysis != nil {
		settings.ShowAdvancedAnalysis = *stored.ShowAdvancedAnalysis
	}
	if stored.RequestTimeout != nil {
		settings.RequestTimeout = *stored.RequestTimeout
	}

	if err := s.validate.Struct(settings); err != nil {
		if s.logger != nil {
			s.logger.Warn("Stored settings failed validation, using defaults",
				"path", s.path, "error", err)
		}
		return DefaultSettings()
	}

	return settings
}

// Save validates the settings and writes them synchronously
func (s *SettingsStore) Save(settings types.Settings) error {
	if err := s.validate.Struct(settings); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidInput,
			"Settings failed validation", err)
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return errors.NewInternalError(errors.ErrCodeStoreWriteFailed,
			"Failed to encode settings", err)
	}

	if err := writeFileAtomic(s.path, data); err != nil {
		return errors.NewStoreError(errors.ErrCodeStoreWriteFailed,
			fmt.Sprintf("Failed to write settings file: %s", s.path), err)
	}
	return nil
}

// Path returns the location of the settings file
func (s *SettingsStore) Path() string {
	return s.path
}
