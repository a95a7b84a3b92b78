package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"tailorflow/internal/common"
	"tailorflow/internal/types"
	"tailorflow/internal/utils"

	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [resume|jd] [file]",
	Short: "Parse a resume or job description into structured form",
	Long: `Parse a resume or job description file into its structured representation.
Plain text and markdown files are sent as text; PDF and DOCX files are
uploaded for server-side extraction.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if !types.ParseTarget(args[0]).Valid() {
			return fmt.Errorf("first argument must be 'resume' or 'jd', got %q", args[0])
		}
		if parseConfig.OutputFormat == "" {
			parseConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(parseConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runParse,
}

var parseConfig common.CommandConfig

func init() {
	parseCmd.Flags().StringVarP(&parseConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	parseCmd.Flags().StringVar(&parseConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	_ = parseCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runParse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)
	client := newClient(cmd)

	target := types.ParseTarget(args[0])
	filename := args[1]

	logger.Info("Starting parse",
		"target", string(target),
		"file", filename,
		"output_format", parseConfig.OutputFormat)

	var result any
	var err error
	if utils.IsTextFile(filename) {
		fileProcessor := common.NewFileProcessor(logger)
		var content string
		content, err = fileProcessor.ReadFile(filename)
		if err != nil {
			return err
		}
		if err = common.ValidateContentSize(content, cfg.App.MaxFileSize); err != nil {
			return err
		}
		switch target {
		case types.ParseTargetResume:
			result, err = client.ParseResume(ctx, content, filepath.Base(filename))
		case types.ParseTargetJD:
			result, err = client.ParseJD(ctx, content, filepath.Base(filename))
		}
	} else {
		if err = utils.ValidateInputFile(filename); err != nil {
			return err
		}
		if !utils.IsUploadableFile(filename) {
			return fmt.Errorf("unsupported file type: %s", utils.GetFileExtension(filename))
		}
		f, openErr := os.Open(filename)
		if openErr != nil {
			return fmt.Errorf("failed to open %s: %w", filename, openErr)
		}
		defer func() { _ = f.Close() }()
		switch target {
		case types.ParseTargetResume:
			result, err = client.ParseResumeUpload(ctx, filepath.Base(filename), f)
		case types.ParseTargetJD:
			result, err = client.ParseJDUpload(ctx, filepath.Base(filename), f)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", target, err)
	}

	outputHandler := common.NewOutputHandler(logger)
	if err := outputHandler.HandleOutput(result, parseConfig); err != nil {
		return err
	}
	logger.Info("Parse completed successfully", "target", string(target))
	return nil
}
