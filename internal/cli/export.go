package cli

import (
	"fmt"

	"tailorflow/internal/api"
	"tailorflow/internal/common"
	"tailorflow/internal/types"
	"tailorflow/internal/utils"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [resume-file]",
	Short: "Export a resume as a DOCX file",
	Long: `Export a resume as a DOCX document rendered by the backend.
The resume comes from a file, or from a saved analysis via --from-history.
Nothing is written to disk if the export fails.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

var (
	exportOutput  string
	exportHistory string
)

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", api.DefaultExportFilename, "Output file path")
	exportCmd.Flags().StringVar(&exportHistory, "from-history", "", "History entry ID to export the resume from")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := getLoggerFromContext(ctx)
	client := newClient(cmd)

	fileProcessor := common.NewFileProcessor(logger)
	if err := fileProcessor.ValidateOutputFile(exportOutput); err != nil {
		return err
	}

	resume, err := resolveExportResume(cmd, client, args)
	if err != nil {
		return err
	}

	logger.Info("Starting DOCX export", "output", exportOutput)

	data, err := client.ExportDOCX(ctx, *resume)
	if err != nil {
		return fmt.Errorf("failed to export resume: %w", err)
	}

	if err := fileProcessor.WriteFile(exportOutput, data); err != nil {
		return err
	}

	logger.Info("Export completed successfully", "file", exportOutput, "bytes", len(data))
	fmt.Printf("Wrote %s (%s)\n", exportOutput, utils.FormatFileSize(int64(len(data))))
	return nil
}

func resolveExportResume(cmd *cobra.Command, client *api.Client, args []string) (*types.Resume, error) {
	ctx := cmd.Context()
	logger := getLoggerFromContext(ctx)

	if exportHistory != "" {
		if len(args) > 0 {
			return nil, fmt.Errorf("pass either a resume file or --from-history, not both")
		}
		entry, ok := newHistoryStore(cmd).Get(exportHistory)
		if !ok {
			return nil, fmt.Errorf("history entry %s not found", exportHistory)
		}
		return &entry.Resume, nil
	}

	if len(args) == 0 {
		return nil, fmt.Errorf("a resume file or --from-history is required")
	}

	fileProcessor := common.NewFileProcessor(logger)
	content, err := fileProcessor.ReadFile(args[0])
	if err != nil {
		return nil, err
	}
	if err := common.ValidateResumeText(content); err != nil {
		return nil, err
	}
	resume, err := client.ParseResume(ctx, content, args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to parse resume: %w", err)
	}
	return resume, nil
}
