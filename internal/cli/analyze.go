package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"tailorflow/internal/common"
	"tailorflow/internal/store"
	"tailorflow/internal/types"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [resume-file] [job-description-file]",
	Short: "Score how well a resume matches a job description",
	Long: `Analyze a resume against a job description. The command parses both
documents, scores the match, and reports matched and missing skills along
with per-section coverage. Successful analyses are saved to the local
history unless auto-save is disabled.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if analyzeConfig.OutputFormat == "" {
			analyzeConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(analyzeConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runAnalyze,
}

var (
	analyzeConfig common.CommandConfig
	analyzeTitle  string
	analyzeNoSave bool
)

// analyzeInput carries both documents through the analysis pipeline
type analyzeInput struct {
	ResumeText string
	JobText    string
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	analyzeCmd.Flags().StringVar(&analyzeConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	analyzeCmd.Flags().StringVar(&analyzeTitle, "jd-title", "", "Override the job title recorded in history")
	analyzeCmd.Flags().BoolVar(&analyzeNoSave, "no-save", false, "Do not save this analysis to history")

	_ = analyzeCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())
	client := newClient(cmd)

	createInput := func(contents []string) (analyzeInput, error) {
		if len(contents) != 2 {
			return analyzeInput{}, fmt.Errorf("expected 2 file paths, got %d", len(contents))
		}
		input := analyzeInput{ResumeText: contents[0], JobText: contents[1]}
		if err := common.ValidateResumeText(input.ResumeText); err != nil {
			return analyzeInput{}, err
		}
		if err := common.ValidateJobText(input.JobText); err != nil {
			return analyzeInput{}, err
		}
		return input, nil
	}

	logDetails := func(input analyzeInput, cfg common.CommandConfig) {
		logger.Info("Starting analysis",
			"resume_chars", len(input.ResumeText),
			"job_chars", len(input.JobText),
			"output_format", cfg.OutputFormat)
	}

	var lastScore int
	analyzeOperation := func(ctx context.Context, input analyzeInput) (*types.AnalysisResult, error) {
		resume, err := client.ParseResume(ctx, input.ResumeText, filepath.Base(args[0]))
		if err != nil {
			return nil, fmt.Errorf("failed to parse resume: %w", err)
		}
		jd, err := client.ParseJD(ctx, input.JobText, filepath.Base(args[1]))
		if err != nil {
			return nil, fmt.Errorf("failed to parse job description: %w", err)
		}

		result, err := client.Analyze(ctx, *resume, *jd)
		if err != nil {
			return nil, fmt.Errorf("failed to analyze resume: %w", err)
		}
		lastScore = result.Score

		saveAnalysis(cmd, *resume, *jd, *result)
		return result, nil
	}

	err := common.RunAPICommand(
		cmd.Context(),
		logger,
		analyzeConfig,
		args,
		createInput,
		analyzeOperation,
		logDetails,
	)

	if err != nil {
		return err
	}
	logger.Info("Analysis completed successfully", "score", lastScore)
	return nil
}

// saveAnalysis records a completed analysis in the local history when
// auto-save is on and --no-save was not given.
func saveAnalysis(cmd *cobra.Command, resume types.Resume, jd types.JobDescription, result types.AnalysisResult) {
	logger := getLoggerFromContext(cmd.Context())

	settings := newSettingsStore(cmd).Load()
	if !settings.AutoSaveHistory || analyzeNoSave {
		return
	}

	if analyzeTitle != "" {
		jd.Title = analyzeTitle
	}
	entry := store.NewEntry(resume, jd, result)
	if err := newHistoryStore(cmd).Add(entry); err != nil {
		// A failed history write should not fail the analysis itself.
		logger.LogError(err, "Failed to save analysis to history")
		return
	}
	logger.Info("Analysis saved to history", "id", entry.ID, "score", entry.Score)
}
