package cli

import (
	"fmt"

	"tailorflow/internal/common"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage saved analyses",
	Long:  "List, inspect and clear analyses saved by the analyze command.",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved analyses, most recent first",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show the full result of a saved analysis",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all saved analyses",
	RunE:  runHistoryClear,
}

var historyShowConfig common.CommandConfig

func init() {
	historyShowCmd.Flags().StringVarP(&historyShowConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	historyShowCmd.Flags().StringVar(&historyShowConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyClearCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	entries := newHistoryStore(cmd).Entries()
	if len(entries) == 0 {
		fmt.Println("No saved analyses.")
		return nil
	}
	for _, entry := range entries {
		fmt.Printf("%s  %s  score=%d  %s\n",
			entry.ID,
			entry.CreatedAt.Local().Format("2006-01-02 15:04"),
			entry.Score,
			entry.JobTitle)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	if historyShowConfig.OutputFormat == "" {
		historyShowConfig.OutputFormat = cfg.App.DefaultFormat
	}
	if err := common.ValidateOutputFormat(historyShowConfig.OutputFormat, cfg.App.SupportedFormats); err != nil {
		return err
	}

	entry, ok := newHistoryStore(cmd).Get(args[0])
	if !ok {
		return fmt.Errorf("history entry %s not found", args[0])
	}

	outputHandler := common.NewOutputHandler(logger)
	return outputHandler.HandleOutput(entry.Result, historyShowConfig)
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	history := newHistoryStore(cmd)
	count := len(history.Entries())
	if err := history.Clear(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	fmt.Printf("Cleared %d saved analyses.\n", count)
	return nil
}
