package common

import (
	"strings"
	"testing"

	"tailorflow/internal/errors"
)

func TestValidateOutputFormat(t *testing.T) {
	tests := []struct {
		name             string
		format           string
		supportedFormats []string
		expectError      bool
		expectedError    string
	}{
		{
			name:             "valid format - json",
			format:           "json",
			supportedFormats: []string{"json", "text", "markdown"},
			expectError:      false,
		},
		{
			name:             "valid format - text",
			format:           "text",
			supportedFormats: []string{"json", "text", "markdown"},
			expectError:      false,
		},
		{
			name:             "valid format - markdown",
			format:           "markdown",
			supportedFormats: []string{"json", "text", "markdown"},
			expectError:      false,
		},
		{
			name:             "invalid format - xml",
			format:           "xml",
			supportedFormats: []string{"json", "text", "markdown"},
			expectError:      true,
			expectedError:    "unsupported output format 'xml'. Supported formats: [json text markdown]",
		},
		{
			name:             "case sensitive - JSON uppercase",
			format:           "JSON",
			supportedFormats: []string{"json", "text", "markdown"},
			expectError:      true,
			expectedError:    "unsupported output format 'JSON'. Supported formats: [json text markdown]",
		},
		{
			name:             "no restrictions configured",
			format:           "anything",
			supportedFormats: nil,
			expectError:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format, tt.supportedFormats)
			if tt.expectError {
				if err == nil {
					t.Errorf("expected error but got none")
					return
				}
				if err.Error() != tt.expectedError {
					t.Errorf("expected error %q, got %q", tt.expectedError, err.Error())
				}
			} else if err != nil {
				t.Errorf("expected no error but got: %v", err)
			}
		})
	}
}

func TestWordCount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"whitespace only", "   \n\t ", 0},
		{"single word", "go", 1},
		{"multiple words", "senior backend engineer", 3},
		{"mixed whitespace", "go\nkubernetes\t postgres", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WordCount(tt.text); got != tt.want {
				t.Errorf("WordCount(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestValidateResumeText(t *testing.T) {
	tests := []struct {
		name        string
		words       int
		expectError bool
	}{
		{"empty", 0, true},
		{"just under minimum", MinResumeWords - 1, true},
		{"exactly minimum", MinResumeWords, false},
		{"well over minimum", 100, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := strings.Repeat("word ", tt.words)
			err := ValidateResumeText(text)
			if tt.expectError {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				appErr, ok := err.(*errors.AppError)
				if !ok {
					t.Fatalf("expected *errors.AppError, got %T", err)
				}
				if appErr.Code != errors.ErrCodeInputTooShort {
					t.Errorf("expected code %s, got %s", errors.ErrCodeInputTooShort, appErr.Code)
				}
			} else if err != nil {
				t.Errorf("expected no error but got: %v", err)
			}
		})
	}
}

func TestValidateJobText(t *testing.T) {
	short := strings.Repeat("word ", MinJobWords-1)
	if err := ValidateJobText(short); err == nil {
		t.Error("expected error for short job text")
	}

	long := strings.Repeat("word ", MinJobWords)
	if err := ValidateJobText(long); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestValidateContentSize(t *testing.T) {
	if err := ValidateContentSize("small", 1024); err != nil {
		t.Errorf("expected no error for small content, got %v", err)
	}
	if err := ValidateContentSize(strings.Repeat("x", 100), 50); err == nil {
		t.Error("expected error for oversized content")
	}
	if err := ValidateContentSize(strings.Repeat("x", 100), 0); err != nil {
		t.Errorf("expected no ceiling when max size is zero, got %v", err)
	}
}
