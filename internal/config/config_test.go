package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8000",
			Timeout: 30 * time.Second,
			Retries: 2,
		},
		App: AppConfig{
			LogLevel:         "info",
			DefaultFormat:    "text",
			SupportedFormats: []string{"json", "text", "markdown"},
		},
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("missing base URL", func(t *testing.T) {
		cfg := validConfig()
		cfg.API.BaseURL = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "base URL")
	})

	t.Run("non-positive timeout", func(t *testing.T) {
		cfg := validConfig()
		cfg.API.Timeout = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("negative retries", func(t *testing.T) {
		cfg := validConfig()
		cfg.API.Retries = -1
		assert.Error(t, cfg.Validate())
	})

	t.Run("default format not in supported list", func(t *testing.T) {
		cfg := validConfig()
		cfg.App.DefaultFormat = "yaml"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid default format")
	})
}

func TestApplyFallbacks(t *testing.T) {
	t.Run("legacy token env var", func(t *testing.T) {
		t.Setenv("TAILORFLOW_API_TOKEN", "legacy-token")
		cfg := validConfig()
		cfg.applyFallbacks()
		assert.Equal(t, "legacy-token", cfg.API.AuthToken)
	})

	t.Run("configured token wins over legacy env", func(t *testing.T) {
		t.Setenv("TAILORFLOW_API_TOKEN", "legacy-token")
		cfg := validConfig()
		cfg.API.AuthToken = "configured"
		cfg.applyFallbacks()
		assert.Equal(t, "configured", cfg.API.AuthToken)
	})

	t.Run("data dir defaults under home", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		cfg := validConfig()
		cfg.applyFallbacks()
		assert.Equal(t, filepath.Join(home, ".tailorflow"), cfg.App.DataDir)
	})

	t.Run("explicit data dir preserved", func(t *testing.T) {
		cfg := validConfig()
		cfg.App.DataDir = "/var/lib/tailorflow"
		cfg.applyFallbacks()
		assert.Equal(t, "/var/lib/tailorflow", cfg.App.DataDir)
	})

	t.Run("debug log level turns on console output", func(t *testing.T) {
		cfg := validConfig()
		cfg.App.LogLevel = "debug"
		cfg.applyFallbacks()
		assert.True(t, cfg.Observability.ConsoleOutput)
	})
}

func TestStorePaths(t *testing.T) {
	cfg := validConfig()
	cfg.App.DataDir = "/data"
	assert.Equal(t, filepath.Join("/data", "history.json"), cfg.HistoryPath())
	assert.Equal(t, filepath.Join("/data", "settings.json"), cfg.SettingsPath())
}

func TestLoadConfigDefaults(t *testing.T) {
	// Run from a temp dir so a developer's local config.yaml is not picked up.
	oldwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(oldwd) })
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, 2, cfg.API.Retries)
	assert.Equal(t, 45*time.Second, cfg.API.UploadTimeout)
	assert.Equal(t, 45*time.Second, cfg.API.AnalyzeTimeout)
	assert.Equal(t, 60*time.Second, cfg.API.RewriteTimeout)
	assert.Equal(t, 1, cfg.API.RewriteRetries)
	assert.Equal(t, 100*time.Millisecond, cfg.API.BatchPacing)
	assert.False(t, cfg.API.CircuitBreaker.Enabled)
	assert.Equal(t, "text", cfg.App.DefaultFormat)
	assert.False(t, cfg.Observability.Enabled)
	assert.NotEmpty(t, cfg.App.DataDir)
}
