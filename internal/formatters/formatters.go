package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"tailorflow/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "Resume", &ResumeTextFormatter{})
	registry.RegisterFormatter("markdown", "Resume", &ResumeMarkdownFormatter{})
	registry.RegisterFormatter("text", "JobDescription", &JDTextFormatter{})
	registry.RegisterFormatter("markdown", "JobDescription", &JDMarkdownFormatter{})
	registry.RegisterFormatter("text", "AnalysisResult", &AnalysisTextFormatter{})
	registry.RegisterFormatter("markdown", "AnalysisResult", &AnalysisMarkdownFormatter{})
	registry.RegisterFormatter("text", "RewriteResult", &RewriteTextFormatter{})
	registry.RegisterFormatter("markdown", "RewriteResult", &RewriteMarkdownFormatter{})
	registry.RegisterFormatter("text", "RewriteBatch", &RewriteBatchTextFormatter{})
	registry.RegisterFormatter("markdown", "RewriteBatch", &RewriteBatchMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.Resume, *types.Resume:
		return "Resume"
	case types.JobDescription, *types.JobDescription:
		return "JobDescription"
	case types.AnalysisResult, *types.AnalysisResult:
		return "AnalysisResult"
	case types.RewriteResult, *types.RewriteResult:
		return "RewriteResult"
	case []types.BulletRewrite:
		return "RewriteBatch"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (f *JSONFormatter) Format(data any) (string, error) {
	output, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(output) + "\n", nil
}

func (f *JSONFormatter) SupportedType() string {
	return "any"
}

func asResume(data any) (*types.Resume, error) {
	switch v := data.(type) {
	case types.Resume:
		return &v, nil
	case *types.Resume:
		return v, nil
	default:
		return nil, fmt.Errorf("expected Resume, got %T", data)
	}
}

func asJobDescription(data any) (*types.JobDescription, error) {
	switch v := data.(type) {
	case types.JobDescription:
		return &v, nil
	case *types.JobDescription:
		return v, nil
	default:
		return nil, fmt.Errorf("expected JobDescription, got %T", data)
	}
}

func asAnalysisResult(data any) (*types.AnalysisResult, error) {
	switch v := data.(type) {
	case types.AnalysisResult:
		return &v, nil
	case *types.AnalysisResult:
		return v, nil
	default:
		return nil, fmt.Errorf("expected AnalysisResult, got %T", data)
	}
}

func asRewriteResult(data any) (*types.RewriteResult, error) {
	switch v := data.(type) {
	case types.RewriteResult:
		return &v, nil
	case *types.RewriteResult:
		return v, nil
	default:
		return nil, fmt.Errorf("expected RewriteResult, got %T", data)
	}
}

// ResumeTextFormatter renders a parsed resume for terminal output
type ResumeTextFormatter struct{}

func (f *ResumeTextFormatter) Format(data any) (string, error) {
	resume, err := asResume(data)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if resume.Contact != nil && resume.Contact.Name != "" {
		fmt.Fprintf(&b, "Name: %s\n", resume.Contact.Name)
	}
	if resume.Summary != "" {
		fmt.Fprintf(&b, "Summary: %s\n", resume.Summary)
	}
	if len(resume.Skills) > 0 {
		fmt.Fprintf(&b, "Skills: %s\n", strings.Join(resume.Skills, ", "))
	}

	if len(resume.Experience) > 0 {
		b.WriteString("Experience:\n")
		for _, exp := range resume.Experience {
			fmt.Fprintf(&b, "  %s, %s (%s - %s)\n", exp.Role, exp.Company, exp.Start, endOrPresent(exp.End))
			for _, bullet := range exp.Bullets {
				fmt.Fprintf(&b, "    - %s\n", bullet)
			}
		}
	}

	if len(resume.Projects) > 0 {
		b.WriteString("Projects:\n")
		for _, proj := range resume.Projects {
			fmt.Fprintf(&b, "  %s\n", proj.Name)
			for _, bullet := range proj.Bullets {
				fmt.Fprintf(&b, "    - %s\n", bullet)
			}
		}
	}

	if len(resume.Education) > 0 {
		b.WriteString("Education:\n")
		for _, edu := range resume.Education {
			fmt.Fprintf(&b, "  %s, %s (%s)\n", edu.Degree, edu.School, edu.Grad)
		}
	}

	return b.String(), nil
}

func (f *ResumeTextFormatter) SupportedType() string {
	return "Resume"
}

func endOrPresent(end string) string {
	if end == "" {
		return "present"
	}
	return end
}

// ResumeMarkdownFormatter renders a parsed resume as Markdown
type ResumeMarkdownFormatter struct{}

func (f *ResumeMarkdownFormatter) Format(data any) (string, error) {
	resume, err := asResume(data)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("# Resume\n")
	if resume.Contact != nil && resume.Contact.Name != "" {
		fmt.Fprintf(&b, "\n**%s**\n", resume.Contact.Name)
	}
	if resume.Summary != "" {
		fmt.Fprintf(&b, "\n%s\n", resume.Summary)
	}
	if len(resume.Skills) > 0 {
		fmt.Fprintf(&b, "\n## Skills\n\n%s\n", strings.Join(resume.Skills, ", "))
	}

	if len(resume.Experience) > 0 {
		b.WriteString("\n## Experience\n")
		for _, exp := range resume.Experience {
			fmt.Fprintf(&b, "\n### %s — %s (%s - %s)\n\n", exp.Role, exp.Company, exp.Start, endOrPresent(exp.End))
			for _, bullet := range exp.Bullets {
				fmt.Fprintf(&b, "- %s\n", bullet)
			}
		}
	}

	if len(resume.Education) > 0 {
		b.WriteString("\n## Education\n\n")
		for _, edu := range resume.Education {
			fmt.Fprintf(&b, "- %s, %s (%s)\n", edu.Degree, edu.School, edu.Grad)
		}
	}

	return b.String(), nil
}

func (f *ResumeMarkdownFormatter) SupportedType() string {
	return "Resume"
}

// JDTextFormatter renders a parsed job description for terminal output
type JDTextFormatter struct{}

func (f *JDTextFormatter) Format(data any) (string, error) {
	jd, err := asJobDescription(data)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if jd.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", jd.Title)
	}
	if jd.Company != "" {
		fmt.Fprintf(&b, "Company: %s\n", jd.Company)
	}
	if len(jd.Required) > 0 {
		fmt.Fprintf(&b, "Required: %s\n", strings.Join(jd.Required, ", "))
	}
	if len(jd.Preferred) > 0 {
		fmt.Fprintf(&b, "Preferred: %s\n", strings.Join(jd.Preferred, ", "))
	}
	if len(jd.Skills) > 0 {
		fmt.Fprintf(&b, "Skills: %s\n", strings.Join(jd.Skills, ", "))
	}
	if len(jd.Responsibilities) > 0 {
		b.WriteString("Responsibilities:\n")
		for _, r := range jd.Responsibilities {
			fmt.Fprintf(&b, "  - %s\n", r)
		}
	}

	return b.String(), nil
}

func (f *JDTextFormatter) SupportedType() string {
	return "JobDescription"
}

// JDMarkdownFormatter renders a parsed job description as Markdown
type JDMarkdownFormatter struct{}

func (f *JDMarkdownFormatter) Format(data any) (string, error) {
	jd, err := asJobDescription(data)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	title := jd.Title
	if title == "" {
		title = "Job Description"
	}
	fmt.Fprintf(&b, "# %s\n", title)
	if jd.Company != "" {
		fmt.Fprintf(&b, "\n**%s**\n", jd.Company)
	}
	if len(jd.Required) > 0 {
		b.WriteString("\n## Required\n\n")
		for _, skill := range jd.Required {
			fmt.Fprintf(&b, "- %s\n", skill)
		}
	}
	if len(jd.Preferred) > 0 {
		b.WriteString("\n## Preferred\n\n")
		for _, skill := range jd.Preferred {
			fmt.Fprintf(&b, "- %s\n", skill)
		}
	}
	if len(jd.Responsibilities) > 0 {
		b.WriteString("\n## Responsibilities\n\n")
		for _, r := range jd.Responsibilities {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}

	return b.String(), nil
}

func (f *JDMarkdownFormatter) SupportedType() string {
	return "JobDescription"
}

// AnalysisTextFormatter renders an analysis result for terminal output
type AnalysisTextFormatter struct{}

func (f *AnalysisTextFormatter) Format(data any) (string, error) {
	result, err := asAnalysisResult(data)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Match Score: %d/100\n\n", result.Score)

	b.WriteString("Coverage:\n")
	fmt.Fprintf(&b, "  Required skills:  %d%%\n", result.Sections.SkillsCoveragePct)
	fmt.Fprintf(&b, "  Preferred skills: %d%%\n", result.Sections.PreferredCoveragePct)
	fmt.Fprintf(&b, "  Domain terms:     %d%%\n", result.Sections.DomainCoveragePct)
	if result.Sections.RecencyScorePct != nil {
		fmt.Fprintf(&b, "  Recency:          %d%%\n", *result.Sections.RecencyScorePct)
	}
	if result.Sections.HygieneScorePct != nil {
		fmt.Fprintf(&b, "  ATS hygiene:      %d%%\n", *result.Sections.HygieneScorePct)
	}

	if len(result.Matched) > 0 {
		fmt.Fprintf(&b, "\nMatched (%d): %s\n", len(result.Matched), strings.Join(result.Matched, ", "))
	}
	if len(result.Missing) > 0 {
		fmt.Fprintf(&b, "\nMissing (%d): %s\n", len(result.Missing), strings.Join(result.Missing, ", "))
	}

	if len(result.HygieneFlags) > 0 {
		b.WriteString("\nHygiene flags:\n")
		for _, flag := range result.HygieneFlags {
			fmt.Fprintf(&b, "  - %s\n", flag)
		}
	}

	return b.String(), nil
}

func (f *AnalysisTextFormatter) SupportedType() string {
	return "AnalysisResult"
}

// AnalysisMarkdownFormatter renders an analysis result as Markdown
type AnalysisMarkdownFormatter struct{}

func (f *AnalysisMarkdownFormatter) Format(data any) (string, error) {
	result, err := asAnalysisResult(data)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("# Analysis Result\n\n")
	fmt.Fprintf(&b, "**Match Score:** %d/100\n\n", result.Score)

	b.WriteString("## Coverage\n\n")
	b.WriteString("| Section | Coverage |\n")
	b.WriteString("|---------|----------|\n")
	fmt.Fprintf(&b, "| Required skills | %d%% |\n", result.Sections.SkillsCoveragePct)
	fmt.Fprintf(&b, "| Preferred skills | %d%% |\n", result.Sections.PreferredCoveragePct)
	fmt.Fprintf(&b, "| Domain terms | %d%% |\n", result.Sections.DomainCoveragePct)
	if result.Sections.RecencyScorePct != nil {
		fmt.Fprintf(&b, "| Recency | %d%% |\n", *result.Sections.RecencyScorePct)
	}
	if result.Sections.HygieneScorePct != nil {
		fmt.Fprintf(&b, "| ATS hygiene | %d%% |\n", *result.Sections.HygieneScorePct)
	}

	if len(result.Matched) > 0 {
		b.WriteString("\n## Matched Skills\n\n")
		for _, skill := range result.Matched {
			fmt.Fprintf(&b, "- %s\n", skill)
		}
	}

	if len(result.Missing) > 0 {
		b.WriteString("\n## Missing Skills\n\n")
		for _, skill := range result.Missing {
			fmt.Fprintf(&b, "- %s\n", skill)
		}
	}

	if len(result.HygieneFlags) > 0 {
		b.WriteString("\n## Hygiene Flags\n\n")
		for _, flag := range result.HygieneFlags {
			fmt.Fprintf(&b, "- %s\n", flag)
		}
	}

	return b.String(), nil
}

func (f *AnalysisMarkdownFormatter) SupportedType() string {
	return "AnalysisResult"
}

// RewriteTextFormatter renders a rewrite result for terminal output
type RewriteTextFormatter struct{}

func (f *RewriteTextFormatter) Format(data any) (string, error) {
	result, err := asRewriteResult(data)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Rewritten:\n")
	fmt.Fprintf(&b, "  %s\n", result.Rewritten)

	if len(result.Diff) > 0 {
		b.WriteString("\nChanges:\n")
		for _, op := range result.Diff {
			switch op.Op {
			case "insert":
				fmt.Fprintf(&b, "  + %q\n", op.To)
			case "delete":
				fmt.Fprintf(&b, "  - %q\n", op.From)
			case "replace":
				fmt.Fprintf(&b, "  ~ %q -> %q\n", op.From, op.To)
			}
		}
	}

	return b.String(), nil
}

func (f *RewriteTextFormatter) SupportedType() string {
	return "RewriteResult"
}

// RewriteMarkdownFormatter renders a rewrite result as Markdown
type RewriteMarkdownFormatter struct{}

func (f *RewriteMarkdownFormatter) Format(data any) (string, error) {
	result, err := asRewriteResult(data)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("# Rewrite Result\n\n")
	fmt.Fprintf(&b, "> %s\n", result.Rewritten)

	if len(result.Diff) > 0 {
		b.WriteString("\n## Changes\n\n")
		b.WriteString("| Op | From | To |\n")
		b.WriteString("|----|------|----|\n")
		for _, op := range result.Diff {
			if op.Op == "equal" {
				continue
			}
			fmt.Fprintf(&b, "| %s | %s | %s |\n", op.Op, op.From, op.To)
		}
	}

	return b.String(), nil
}

func (f *RewriteMarkdownFormatter) SupportedType() string {
	return "RewriteResult"
}

// RewriteBatchTextFormatter renders a batch of rewrite outcomes for
// terminal output. Failed bullets are marked and keep their original text.
type RewriteBatchTextFormatter struct{}

func (f *RewriteBatchTextFormatter) Format(data any) (string, error) {
	items, ok := data.([]types.BulletRewrite)
	if !ok {
		return "", fmt.Errorf("expected []BulletRewrite, got %T", data)
	}

	inner := &RewriteTextFormatter{}
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		if item.Failed {
			fmt.Fprintf(&b, "Bullet %d: FAILED (%s)\n", i+1, item.Error)
			fmt.Fprintf(&b, "  %s\n", item.Original)
			continue
		}
		fmt.Fprintf(&b, "Bullet %d:\n", i+1)
		section, err := inner.Format(types.RewriteResult{Rewritten: item.Rewritten, Diff: item.Diff})
		if err != nil {
			return "", err
		}
		b.WriteString(section)
	}
	return b.String(), nil
}

func (f *RewriteBatchTextFormatter) SupportedType() string {
	return "RewriteBatch"
}

// RewriteBatchMarkdownFormatter renders a batch of rewrite outcomes as Markdown
type RewriteBatchMarkdownFormatter struct{}

func (f *RewriteBatchMarkdownFormatter) Format(data any) (string, error) {
	items, ok := data.([]types.BulletRewrite)
	if !ok {
		return "", fmt.Errorf("expected []BulletRewrite, got %T", data)
	}

	var b strings.Builder
	b.WriteString("# Rewrite Results\n")
	for i, item := range items {
		fmt.Fprintf(&b, "\n## Bullet %d\n\n", i+1)
		if item.Failed {
			fmt.Fprintf(&b, "**Failed:** %s\n\n> %s\n", item.Error, item.Original)
			continue
		}
		fmt.Fprintf(&b, "> %s\n", item.Rewritten)
	}
	return b.String(), nil
}

func (f *RewriteBatchMarkdownFormatter) SupportedType() string {
	return "RewriteBatch"
}

// GlobalRegistry is the default formatter registry
var GlobalRegistry = NewFormatterRegistry()
