package cli

import (
	"fmt"
	"strings"

	"tailorflow/internal/common"
	"tailorflow/internal/types"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite [bullet-file]",
	Short: "Rewrite resume bullets to close keyword gaps",
	Long: `Rewrite a resume bullet so it better targets a job description.
The file should contain the bullet text; with --batch each non-empty line
is rewritten as a separate bullet. Keywords to work in come from --keyword
flags or from a saved analysis via --from-history.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if rewriteConfig.OutputFormat == "" {
			rewriteConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(rewriteConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runRewrite,
}

var (
	rewriteConfig   common.CommandConfig
	rewriteSection  string
	rewriteMaxWords int
	rewriteKeywords []string
	rewriteHistory  string
	rewriteBatch    bool
)

func init() {
	rewriteCmd.Flags().StringVarP(&rewriteConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	rewriteCmd.Flags().StringVar(&rewriteConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	rewriteCmd.Flags().StringVar(&rewriteSection, "section", "experience", "Resume section the bullet belongs to")
	rewriteCmd.Flags().IntVar(&rewriteMaxWords, "max-words", 0, "Word limit per bullet (default: from settings)")
	rewriteCmd.Flags().StringSliceVar(&rewriteKeywords, "keyword", nil, "Job description keyword to work in (repeatable)")
	rewriteCmd.Flags().StringVar(&rewriteHistory, "from-history", "", "History entry ID whose missing skills become keywords")
	rewriteCmd.Flags().BoolVar(&rewriteBatch, "batch", false, "Treat each non-empty line of the file as a separate bullet")

	_ = rewriteCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runRewrite(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)
	client := newClient(cmd)

	fileProcessor := common.NewFileProcessor(logger)
	content, err := fileProcessor.ReadFile(args[0])
	if err != nil {
		return err
	}

	constraints, err := buildConstraints(cmd)
	if err != nil {
		return err
	}

	outputHandler := common.NewOutputHandler(logger)

	if !rewriteBatch {
		text := strings.TrimSpace(content)
		if text == "" {
			return fmt.Errorf("bullet file %s is empty", args[0])
		}
		logger.Info("Starting rewrite",
			"section", rewriteSection,
			"bullet_chars", len(text),
			"keywords", len(constraints.JDKeywords))
		result, err := client.Rewrite(ctx, rewriteSection, text, constraints)
		if err != nil {
			return fmt.Errorf("failed to rewrite bullet: %w", err)
		}
		if err := outputHandler.HandleOutput(result, rewriteConfig); err != nil {
			return err
		}
		logger.Info("Rewrite completed successfully")
		return nil
	}

	bullets := splitBullets(content)
	if len(bullets) == 0 {
		return fmt.Errorf("bullet file %s contains no bullets", args[0])
	}

	logger.Info("Starting batch rewrite",
		"section", rewriteSection,
		"bullets", len(bullets),
		"keywords", len(constraints.JDKeywords))

	// Pace batch requests so a long bullet list does not hammer the backend.
	limiter := rate.NewLimiter(rate.Every(cfg.API.BatchPacing), 1)
	results := make([]types.BulletRewrite, 0, len(bullets))
	failed := 0
	for i, bullet := range bullets {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("batch rewrite canceled: %w", err)
		}
		result, err := client.Rewrite(ctx, rewriteSection, bullet, constraints)
		if err != nil {
			// One bad bullet should not sink the rest of the batch. The
			// failure is recorded on the entry so rendered output and JSON
			// consumers can tell it apart from an unchanged rewrite.
			failed++
			logger.LogError(err, "Bullet rewrite failed", "bullet", i+1)
			results = append(results, types.BulletRewrite{
				Original:  bullet,
				Rewritten: bullet,
				Failed:    true,
				Error:     err.Error(),
			})
			continue
		}
		results = append(results, types.BulletRewrite{
			Original:  bullet,
			Rewritten: result.Rewritten,
			Diff:      result.Diff,
		})
	}

	if err := outputHandler.HandleOutput(results, rewriteConfig); err != nil {
		return err
	}
	if failed == len(bullets) {
		return fmt.Errorf("all %d bullet rewrites failed", failed)
	}
	logger.Info("Batch rewrite completed", "bullets", len(bullets), "failed", failed)
	return nil
}

// buildConstraints resolves rewrite constraints from flags, settings and
// optionally a saved analysis.
func buildConstraints(cmd *cobra.Command) (types.RewriteConstraints, error) {
	constraints := types.RewriteConstraints{
		JDKeywords: rewriteKeywords,
		MaxWords:   rewriteMaxWords,
	}
	if constraints.MaxWords <= 0 {
		constraints.MaxWords = newSettingsStore(cmd).Load().DefaultMaxWords
	}
	if rewriteHistory != "" {
		entry, ok := newHistoryStore(cmd).Get(rewriteHistory)
		if !ok {
			return constraints, fmt.Errorf("history entry %s not found", rewriteHistory)
		}
		constraints.JDKeywords = append(constraints.JDKeywords, entry.Result.Missing...)
	}
	return constraints, nil
}

func splitBullets(content string) []string {
	var bullets []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "- "))
		if line != "" {
			bullets = append(bullets, line)
		}
	}
	return bullets
}
