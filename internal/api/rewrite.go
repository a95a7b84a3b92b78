package api

import (
	"context"

	"tailorflow/internal/types"
)

type rewriteRequest struct {
	Section     string                   `json:"section"`
	Text        string                   `json:"text"`
	Constraints types.RewriteConstraints `json:"constraints"`
}

// Rewrite asks the backend to strengthen a bullet or section of text within
// the given constraints. The backend's rewrite operation carries no session
// state, so no analysis identifier is sent. Rewrites are not idempotent-safe
// to retry aggressively; the retry budget is reduced accordingly.
func (c *Client) Rewrite(ctx context.Context, section, text string, constraints types.RewriteConstraints) (*types.RewriteResult, error) {
	retries := c.cfg.RewriteRetries

	var result types.RewriteResult
	err := c.postJSON(ctx, "/api/rewrite", rewriteRequest{
		Section:     section,
		Text:        text,
		Constraints: constraints,
	}, &result, RequestOptions{
		Timeout:      c.cfg.RewriteTimeout,
		Retries:      &retries,
		RequiresAuth: true,
	})
	if err != nil {
		return nil, err
	}

	c.obs.RecordOperation(ctx, "rewrite")
	return &result, nil
}
