package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"tailorflow/internal/errors"
	"tailorflow/internal/types"
)

// DefaultExportFilename is the name the backend suggests for exported
// documents.
const DefaultExportFilename = "resume-tailored.docx"

// ExportDOCX renders a resume to a DOCX document and returns the raw bytes.
// Callers decide where the document lands; nothing is written on failure.
func (c *Client) ExportDOCX(ctx context.Context, resume types.Resume) ([]byte, error) {
	body, err := json.Marshal(resume)
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeInvalidInput,
			"Failed to encode resume", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/export/docx", body,
		"application/json", RequestOptions{RequiresAuth: true})
	if err != nil {
		return nil, err
	}
	defer closeBody(resp, c.logger)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewAPIError(errors.ErrCodeAPIFailed,
			"Failed to read exported document", err)
	}

	c.obs.RecordOperation(ctx, "export")
	return data, nil
}
