package api

import (
	"context"
	"encoding/json"
	"net/http"

	"tailorflow/internal/errors"
)

type healthResponse struct {
	OK bool `json:"ok"`
}

// Health checks that the backend is reachable and reports itself healthy
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/api/health", nil, "", RequestOptions{})
	if err != nil {
		return err
	}
	defer closeBody(resp, c.logger)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	var out healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return errors.NewAPIError(errors.ErrCodeInvalidFormat,
			"Failed to decode health response", err)
	}
	if !out.OK {
		return errors.NewAPIError(errors.ErrCodeAPIFailed,
			"Backend reports unhealthy state", nil)
	}
	return nil
}
