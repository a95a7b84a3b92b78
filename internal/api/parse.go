package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"tailorflow/internal/errors"
	"tailorflow/internal/types"
)

type parseRequest struct {
	Type     string `json:"type"`
	Content  string `json:"content"`
	Filename string `json:"filename,omitempty"`
}

type parseResponse struct {
	Parsed json.RawMessage `json:"parsed"`
}

// ParseResume sends raw resume text to the backend parser
func (c *Client) ParseResume(ctx context.Context, content, filename string) (*types.Resume, error) {
	raw, err := c.parse(ctx, types.ParseTargetResume, content, filename)
	if err != nil {
		return nil, err
	}

	var resume types.Resume
	if err := json.Unmarshal(raw, &resume); err != nil {
		return nil, errors.NewAPIError(errors.ErrCodeInvalidFormat,
			"Failed to decode parsed resume", err)
	}
	return &resume, nil
}

// ParseJD sends raw job description text to the backend parser
func (c *Client) ParseJD(ctx context.Context, content, filename string) (*types.JobDescription, error) {
	raw, err := c.parse(ctx, types.ParseTargetJD, content, filename)
	if err != nil {
		return nil, err
	}

	var jd types.JobDescription
	if err := json.Unmarshal(raw, &jd); err != nil {
		return nil, errors.NewAPIError(errors.ErrCodeInvalidFormat,
			"Failed to decode parsed job description", err)
	}
	return &jd, nil
}

// parse runs the text parse endpoint. The parsed shape is not validated
// client-side; the backend owns it.
func (c *Client) parse(ctx context.Context, target types.ParseTarget, content, filename string) (json.RawMessage, error) {
	if !target.Valid() {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidInput,
			fmt.Sprintf("Invalid parse target: %s", target), nil)
	}

	var out parseResponse
	err := c.postJSON(ctx, "/api/parse", parseRequest{
		Type:     string(target),
		Content:  content,
		Filename: filename,
	}, &out, RequestOptions{RequiresAuth: true})
	if err != nil {
		return nil, err
	}
	return out.Parsed, nil
}

// ParseResumeUpload uploads a binary resume file for parsing
func (c *Client) ParseResumeUpload(ctx context.Context, filename string, file io.Reader) (*types.Resume, error) {
	raw, err := c.parseUpload(ctx, types.ParseTargetResume, filename, file)
	if err != nil {
		return nil, err
	}

	var resume types.Resume
	if err := json.Unmarshal(raw, &resume); err != nil {
		return nil, errors.NewAPIError(errors.ErrCodeInvalidFormat,
			"Failed to decode parsed resume", err)
	}
	return &resume, nil
}

// ParseJDUpload uploads a binary job description file for parsing
func (c *Client) ParseJDUpload(ctx context.Context, filename string, file io.Reader) (*types.JobDescription, error) {
	raw, err := c.parseUpload(ctx, types.ParseTargetJD, filename, file)
	if err != nil {
		return nil, err
	}

	var jd types.JobDescription
	if err := json.Unmarshal(raw, &jd); err != nil {
		return nil, errors.NewAPIError(errors.ErrCodeInvalidFormat,
			"Failed to decode parsed job description", err)
	}
	return &jd, nil
}

// parseUpload runs the multipart upload endpoint with the longer timeout
// budget file parsing needs on the backend.
func (c *Client) parseUpload(ctx context.Context, target types.ParseTarget, filename string, file io.Reader) (json.RawMessage, error) {
	if !target.Valid() {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidInput,
			fmt.Sprintf("Invalid parse target: %s", target), nil)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("type", string(target)); err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeInvalidInput,
			"Failed to encode upload form", err)
	}

	part, err := writer.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeInvalidInput,
			"Failed to encode upload form", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read upload content: %s", filename), err)
	}
	if err := writer.Close(); err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeInvalidInput,
			"Failed to finalize upload form", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/parse-upload", buf.Bytes(),
		writer.FormDataContentType(), RequestOptions{
			Timeout:      c.cfg.UploadTimeout,
			RequiresAuth: true,
		})
	if err != nil {
		return nil, err
	}
	defer closeBody(resp, c.logger)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeError(resp)
	}

	var out parseResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.NewAPIError(errors.ErrCodeInvalidFormat,
			"Failed to decode parse-upload response", err)
	}
	return out.Parsed, nil
}
