package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"tailorflow/internal/store"
	"tailorflow/internal/types"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage local settings",
	Long: `Show and change local settings. Settings are stored as JSON in the
data directory; unknown or invalid values fall back to defaults.`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change one setting",
	Long: `Change one setting and persist it. Keys:
  default_max_words      word limit for rewrites (1-200)
  export_style           DOCX style: modern, compact or classic
  auto_save_history      save analyses automatically (true/false)
  show_advanced_analysis include recency and hygiene scores (true/false)
  request_timeout        client request timeout (e.g. 30s)`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the settings file and print changes as they land",
	RunE:  runSettingsWatch,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsWatchCmd)
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	settings := newSettingsStore(cmd).Load()
	return printSettings(settings)
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	settingsStore := newSettingsStore(cmd)
	settings := settingsStore.Load()

	if err := applySetting(&settings, args[0], args[1]); err != nil {
		return err
	}
	if err := settingsStore.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Printf("Set %s = %s\n", args[0], args[1])
	return nil
}

func runSettingsWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := getLoggerFromContext(ctx)
	settingsStore := newSettingsStore(cmd)

	fmt.Printf("Watching %s (Ctrl-C to stop)\n", settingsStore.Path())
	if err := printSettings(settingsStore.Load()); err != nil {
		return err
	}

	watcher := store.NewSettingsWatcher(settingsStore, 500*time.Millisecond, func(settings types.Settings) {
		fmt.Println("Settings changed:")
		_ = printSettings(settings)
	}, logger)
	if err := watcher.Start(); err != nil {
		return fmt.Errorf("failed to watch settings: %w", err)
	}
	defer func() { _ = watcher.Stop() }()

	<-ctx.Done()
	return nil
}

func applySetting(settings *types.Settings, key, value string) error {
	switch key {
	case "default_max_words":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("default_max_words must be a number: %w", err)
		}
		settings.DefaultMaxWords = n
	case "export_style":
		settings.ExportStyle = value
	case "auto_save_history":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("auto_save_history must be true or false: %w", err)
		}
		settings.AutoSaveHistory = b
	case "show_advanced_analysis":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("show_advanced_analysis must be true or false: %w", err)
		}
		settings.ShowAdvancedAnalysis = b
	case "request_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("request_timeout must be a duration like 30s: %w", err)
		}
		settings.RequestTimeout = d
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

func printSettings(settings types.Settings) error {
	fmt.Print(renderSettings(settings))
	return nil
}

// renderSettings prints one key per line, with durations in their string
// form rather than raw nanoseconds.
func renderSettings(settings types.Settings) string {
	var b strings.Builder
	fmt.Fprintf(&b, "default_max_words:      %d\n", settings.DefaultMaxWords)
	fmt.Fprintf(&b, "export_style:           %s\n", settings.ExportStyle)
	fmt.Fprintf(&b, "auto_save_history:      %t\n", settings.AutoSaveHistory)
	fmt.Fprintf(&b, "show_advanced_analysis: %t\n", settings.ShowAdvancedAnalysis)
	fmt.Fprintf(&b, "request_timeout:        %s\n", settings.RequestTimeout)
	return b.String()
}
