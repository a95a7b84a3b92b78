package api

import (
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestDecodeError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantCode    string
	}{
		{
			name:        "structured envelope",
			status:      422,
			body:        `{"error":"validation_error","message":"resume too short","error_code":"INPUT_TOO_SHORT","status_code":422}`,
			wantMessage: "resume too short",
			wantCode:    "INPUT_TOO_SHORT",
		},
		{
			name:        "fastapi detail",
			status:      400,
			body:        `{"detail":"Unsupported type"}`,
			wantMessage: "Unsupported type",
		},
		{
			name:        "message in error field",
			status:      400,
			body:        `{"error":"something broke"}`,
			wantMessage: "something broke",
		},
		{
			name:        "empty body falls back to status text",
			status:      503,
			body:        "",
			wantMessage: "Service Unavailable",
		},
		{
			name:        "non-json body falls back to status text",
			status:      502,
			body:        "<html>bad gateway</html>",
			wantMessage: "Bad Gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{
				StatusCode: tt.status,
				Body:       io.NopCloser(strings.NewReader(tt.body)),
			}
			apiErr := decodeError(resp)
			if apiErr.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", apiErr.StatusCode, tt.status)
			}
			if apiErr.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", apiErr.Message, tt.wantMessage)
			}
			if apiErr.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", apiErr.Code, tt.wantCode)
			}
		})
	}
}
