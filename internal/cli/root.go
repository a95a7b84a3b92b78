package cli

import (
	"context"

	"tailorflow/internal/api"
	"tailorflow/internal/config"
	"tailorflow/internal/errors"
	"tailorflow/internal/observability"
	"tailorflow/internal/store"

	"github.com/spf13/cobra"
)

// Define custom private types for context keys.
type configKeyType struct{}
type loggerKeyType struct{}
type obsKeyType struct{}

// Use variables of these types as the keys.
var configKey = configKeyType{}
var loggerKey = loggerKeyType{}
var obsKey = obsKeyType{}

var rootCmd = &cobra.Command{
	Use:   "tailorflow",
	Short: "A CLI tool for tailoring resumes to job descriptions",
	Long: `Tailorflow is a command-line client for the resume tailoring backend.
It parses resumes and job descriptions, scores how well a resume matches a
job description, rewrites bullets to close keyword gaps, and exports the
result as a DOCX file. Recent analyses are kept in a local history.`,
}

func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger, obs *observability.Manager) error {
	// Attach the config, logger and observability manager to the context,
	// making them available to all subcommands
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	ctx = context.WithValue(ctx, obsKey, obs)
	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}

// getConfigFromContext is a helper function to get config from context
func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context") // Should not happen if properly initialized
}

// getLoggerFromContext is a helper function to get logger from context
func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context") // Should not happen if properly initialized
}

// getObsFromContext is a helper function to get the observability manager
// from context. May return nil when observability is disabled.
func getObsFromContext(ctx context.Context) *observability.Manager {
	obs, _ := ctx.Value(obsKey).(*observability.Manager)
	return obs
}

// newClient builds the backend API client from the context values.
// The locally stored request timeout takes precedence over the configured one.
func newClient(cmd *cobra.Command) *api.Client {
	ctx := cmd.Context()
	apiCfg := getConfigFromContext(ctx).API
	if settings := newSettingsStore(cmd).Load(); settings.RequestTimeout > 0 {
		apiCfg.Timeout = settings.RequestTimeout
	}
	return api.New(apiCfg, getObsFromContext(ctx), getLoggerFromContext(ctx))
}

// newHistoryStore opens the local analysis history.
func newHistoryStore(cmd *cobra.Command) *store.HistoryStore {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	return store.NewHistoryStore(cfg.HistoryPath(), getLoggerFromContext(ctx))
}

// newSettingsStore opens the local user settings.
func newSettingsStore(cmd *cobra.Command) *store.SettingsStore {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	return store.NewSettingsStore(cfg.SettingsPath(), getLoggerFromContext(ctx))
}

func init() {
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(rewriteCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(versionCmd)
}
