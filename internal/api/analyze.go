package api

import (
	"context"

	"tailorflow/internal/types"
)

type analyzeRequest struct {
	Resume types.Resume         `json:"resume"`
	JD     types.JobDescription `json:"jd"`
}

// Analyze scores a resume against a job description. Scoring is the most
// expensive backend operation, so it runs with the extended timeout budget.
func (c *Client) Analyze(ctx context.Context, resume types.Resume, jd types.JobDescription) (*types.AnalysisResult, error) {
	var result types.AnalysisResult
	err := c.postJSON(ctx, "/api/analyze", analyzeRequest{
		Resume: resume,
		JD:     jd,
	}, &result, RequestOptions{
		Timeout:      c.cfg.AnalyzeTimeout,
		RequiresAuth: true,
	})
	if err != nil {
		return nil, err
	}

	c.obs.RecordOperation(ctx, "analyze")
	return &result, nil
}
