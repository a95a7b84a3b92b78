package common

import (
	"fmt"
	"slices"
	"strings"

	"tailorflow/internal/errors"
)

// Minimum word counts enforced before any network call is made. Anything
// shorter produces useless analysis and wastes a backend round trip.
const (
	MinResumeWords = 20
	MinJobWords    = 10
)

// ValidateOutputFormat validates format against configured supported formats
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 {
		return nil // No restrictions configured
	}

	if slices.Contains(supportedFormats, format) {
		return nil
	}

	return fmt.Errorf("unsupported output format '%s'. Supported formats: %v",
		format, supportedFormats)
}

// GetSupportedFormats returns the list of supported formats
func GetSupportedFormats(supportedFormats []string) []string {
	return supportedFormats
}

// WordCount counts whitespace-separated words
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// ValidateResumeText rejects resume text too short to analyze
func ValidateResumeText(text string) error {
	if words := WordCount(text); words < MinResumeWords {
		return errors.NewValidationError(errors.ErrCodeInputTooShort,
			fmt.Sprintf("Resume text is too short: %d words (minimum %d)", words, MinResumeWords), nil)
	}
	return nil
}

// ValidateJobText rejects job description text too short to analyze
func ValidateJobText(text string) error {
	if words := WordCount(text); words < MinJobWords {
		return errors.NewValidationError(errors.ErrCodeInputTooShort,
			fmt.Sprintf("Job description text is too short: %d words (minimum %d)", words, MinJobWords), nil)
	}
	return nil
}

// ValidateContentSize enforces the configured input size ceiling
func ValidateContentSize(content string, maxSize int64) error {
	if maxSize > 0 && int64(len(content)) > maxSize {
		return errors.NewValidationError(errors.ErrCodeInvalidInput,
			fmt.Sprintf("Input is too large: %d bytes (maximum %d)", len(content), maxSize), nil)
	}
	return nil
}
