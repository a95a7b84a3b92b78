package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// APIError is the single error type raised for any non-success backend
// response. It carries the decoded human-readable message, the machine
// code when the backend provided one, and the HTTP status.
type APIError struct {
	StatusCode int            `json:"status_code"`
	Code       string         `json:"error_code,omitempty"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// errorEnvelope covers the two error body shapes the backend emits: the
// structured {error, message, error_code, details} envelope and FastAPI's
// bare {detail} fallback.
type errorEnvelope struct {
	Error     json.RawMessage `json:"error"`
	Message   string          `json:"message"`
	ErrorCode string          `json:"error_code"`
	Details   map[string]any  `json:"details"`
	Detail    string          `json:"detail"`
}

// decodeError turns a non-2xx response into an *APIError. The body is
// consumed but not closed.
func decodeError(resp *http.Response) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || len(body) == 0 {
		return apiErr
	}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return apiErr
	}

	switch {
	case env.Message != "":
		apiErr.Message = env.Message
	case env.Detail != "":
		apiErr.Message = env.Detail
	default:
		// Some error paths put the message in "error" as a string
		var msg string
		if len(env.Error) > 0 && json.Unmarshal(env.Error, &msg) == nil && msg != "" {
			apiErr.Message = msg
		}
	}

	apiErr.Code = env.ErrorCode
	apiErr.Details = env.Details

	return apiErr
}
