package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tailorflow/internal/common"
	"tailorflow/internal/config"
	"tailorflow/internal/errors"

	"github.com/spf13/cobra"
)

func testCommandContext(t *testing.T, baseURL string) *cobra.Command {
	t.Helper()

	logger, err := errors.New("error")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	cfg := &config.Config{
		API: config.APIConfig{
			BaseURL: baseURL,
			Timeout: 5 * time.Second,
		},
		App: config.AppConfig{
			DefaultFormat:    "json",
			SupportedFormats: []string{"json", "text", "markdown"},
			MaxFileSize:      1024 * 1024,
			DataDir:          t.TempDir(),
		},
	}

	ctx := context.WithValue(context.Background(), configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)

	cmd := &cobra.Command{}
	cmd.SetContext(ctx)
	return cmd
}

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// The backend only needs the document's name for diagnostics; the local
// directory layout must not leak into requests, so both parse calls send
// the base name just like the parse command does.
func TestAnalyzeSendsBaseFilenames(t *testing.T) {
	filenames := map[string]string{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/parse":
			var req struct {
				Type     string `json:"type"`
				Filename string `json:"filename"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("failed to decode parse request: %v", err)
			}
			filenames[req.Type] = req.Filename
			_, _ = w.Write([]byte(`{"parsed": {"skills": ["go"]}}`))
		case "/api/analyze":
			_, _ = w.Write([]byte(`{"score": 70, "matched": ["go"], "missing": [], "sections": {}}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	docs := t.TempDir()
	resumePath := writeDoc(t, docs, "resume.txt",
		strings.Repeat("shipped the billing pipeline and owned the on-call rotation ", 5))
	jobPath := writeDoc(t, docs, "jd.txt",
		strings.Repeat("senior engineer building go services ", 5))

	cmd := testCommandContext(t, server.URL)

	prevConfig, prevNoSave := analyzeConfig, analyzeNoSave
	analyzeConfig = common.CommandConfig{
		OutputFile:   filepath.Join(t.TempDir(), "analysis.json"),
		OutputFormat: "json",
	}
	analyzeNoSave = true
	t.Cleanup(func() {
		analyzeConfig, analyzeNoSave = prevConfig, prevNoSave
	})

	if err := runAnalyze(cmd, []string{resumePath, jobPath}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := filenames["resume"]; got != "resume.txt" {
		t.Errorf("resume parse sent filename %q, want %q", got, "resume.txt")
	}
	if got := filenames["jd"]; got != "jd.txt" {
		t.Errorf("jd parse sent filename %q, want %q", got, "jd.txt")
	}
}
