package cli

import (
	"strings"
	"testing"
	"time"

	"tailorflow/internal/store"
	"tailorflow/internal/types"
)

func TestRenderSettingsShowsDurationsAsStrings(t *testing.T) {
	out := renderSettings(store.DefaultSettings())

	if !strings.Contains(out, "request_timeout:        30s") {
		t.Errorf("expected request_timeout in duration form:\n%s", out)
	}
	if strings.Contains(out, "30000000000") {
		t.Errorf("request_timeout rendered as raw nanoseconds:\n%s", out)
	}
	for _, want := range []string{
		"default_max_words:      25",
		"export_style:           modern",
		"auto_save_history:      true",
		"show_advanced_analysis: false",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestApplySetting(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr bool
		check   func(types.Settings) bool
	}{
		{"max words", "default_max_words", "40", false,
			func(s types.Settings) bool { return s.DefaultMaxWords == 40 }},
		{"max words not a number", "default_max_words", "forty", true, nil},
		{"timeout", "request_timeout", "45s", false,
			func(s types.Settings) bool { return s.RequestTimeout == 45*time.Second }},
		{"timeout not a duration", "request_timeout", "45", true, nil},
		{"auto save", "auto_save_history", "false", false,
			func(s types.Settings) bool { return !s.AutoSaveHistory }},
		{"unknown key", "color_scheme", "dark", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := store.DefaultSettings()
			err := applySetting(&settings, tt.key, tt.value)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.check(settings) {
				t.Errorf("setting not applied: %+v", settings)
			}
		})
	}
}
