package common

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tailorflow/internal/errors"
	"tailorflow/internal/types"
)

func testOutputHandler(t *testing.T) *OutputHandler {
	t.Helper()
	logger, err := errors.New("error")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return NewOutputHandler(logger)
}

// Parse results go through the default text format, so parsed documents
// must have a text rendering registered.
func TestHandleOutputRendersParsedDocumentsAsText(t *testing.T) {
	handler := testOutputHandler(t)
	dir := t.TempDir()

	resumeFile := filepath.Join(dir, "resume.txt")
	err := handler.HandleOutput(&types.Resume{Skills: []string{"Go"}}, CommandConfig{
		OutputFile:   resumeFile,
		OutputFormat: "text",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	content, err := os.ReadFile(resumeFile)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if !strings.Contains(string(content), "Skills: Go") {
		t.Errorf("unexpected resume output:\n%s", content)
	}

	jdFile := filepath.Join(dir, "jd.md")
	err = handler.HandleOutput(&types.JobDescription{Title: "Go Engineer"}, CommandConfig{
		OutputFile:   jdFile,
		OutputFormat: "markdown",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	content, err = os.ReadFile(jdFile)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if !strings.Contains(string(content), "# Go Engineer") {
		t.Errorf("unexpected job description output:\n%s", content)
	}
}

func TestHandleOutputRejectsUnformattableType(t *testing.T) {
	handler := testOutputHandler(t)

	err := handler.HandleOutput(struct{ X int }{1}, CommandConfig{OutputFormat: "text"})
	if err == nil {
		t.Fatal("expected error for type without a text formatter")
	}
	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("expected *AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeInvalidFormat {
		t.Errorf("expected code %s, got %s", errors.ErrCodeInvalidFormat, appErr.Code)
	}
}
