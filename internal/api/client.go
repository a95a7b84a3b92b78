package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tailorflow/internal/config"
	"tailorflow/internal/errors"
	"tailorflow/internal/observability"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
)

const (
	requestIDHeader = "X-Request-ID"

	// Backoff schedule for 5xx and transport failures:
	// min(backoffBase * 2^attempt, backoffCap).
	backoffBase = time.Second
	backoffCap  = 5 * time.Second

	// Upper bound honored for Retry-After on 429 responses
	retryAfterCap = 5 * time.Second
)

// Client performs HTTP requests against the backend with bounded wall-clock
// latency per attempt and a bounded retry budget. Each call is independent;
// there is no request coalescing across calls.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cfg        config.APIConfig
	logger     *errors.Logger
	obs        *observability.Manager
	breaker    *gobreaker.CircuitBreaker[*http.Response]

	// sleep is replaceable in tests so backoff schedules can be asserted
	// without waiting them out.
	sleep func(ctx context.Context, d time.Duration) error
}

// RequestOptions configures a single call. Zero values fall back to the
// client's configured defaults.
type RequestOptions struct {
	Timeout      time.Duration
	Retries      *int
	RequiresAuth bool
}

// New creates a backend API client. obs may be nil.
func New(cfg config.APIConfig, obs *observability.Manager, logger *errors.Logger) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Transport: obs.Transport(nil),
		},
		cfg:    cfg,
		logger: logger,
		obs:    obs,
		sleep:  sleepContext,
	}

	if cfg.CircuitBreaker.Enabled {
		c.breaker = newBreaker(cfg.CircuitBreaker, logger)
	}

	return c
}

// newBreaker creates a circuit breaker around backend calls. Server errors
// and transport failures count against the failure ratio.
func newBreaker(cfg config.CircuitBreakerConfig, logger *errors.Logger) *gobreaker.CircuitBreaker[*http.Response] {
	settings := gobreaker.Settings{
		Name:        "tailorflow-api",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests &&
				failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if logger != nil {
				logger.Info("Circuit breaker state changed",
					"name", name,
					"from", from.String(),
					"to", to.String())
			}
		},
	}

	return gobreaker.NewCircuitBreaker[*http.Response](settings)
}

func (c *Client) timeout(opts RequestOptions) time.Duration {
	if opts.Timeout > 0 {
		return opts.Timeout
	}
	return c.cfg.Timeout
}

func (c *Client) retries(opts RequestOptions) int {
	if opts.Retries != nil {
		return *opts.Retries
	}
	return c.cfg.Retries
}

// do performs one logical request with up to retries+1 attempts. It either
// returns an HTTP response (the caller owns the body, including non-2xx
// responses on the final attempt) or the last failure.
func (c *Client) do(ctx context.Context, method, path string, body []byte, contentType string, opts RequestOptions) (*http.Response, error) {
	requestID := uuid.NewString()
	retries := c.retries(opts)
	timeout := c.timeout(opts)
	start := time.Now()

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		resp, err := c.attempt(ctx, method, path, body, contentType, requestID, timeout, opts)

		if err != nil {
			// Breaker rejections are not transient within this call;
			// surface them immediately.
			if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
				c.obs.RecordFailure(ctx, path)
				return nil, errors.NewNetworkError(errors.ErrCodeAPIFailed,
					"Backend temporarily unavailable (circuit open)", err).
					WithContext("request_id", requestID)
			}

			lastErr = err
			if attempt == retries {
				break
			}

			c.logRetry(path, requestID, attempt, "network error", err)
			if serr := c.sleep(ctx, expBackoff(attempt)); serr != nil {
				return nil, serr
			}
			continue
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests && attempt < retries:
			delay := retryAfterDelay(resp.Header.Get("Retry-After"))
			drain(resp)
			c.logRetry(path, requestID, attempt, "rate limited", nil)
			if serr := c.sleep(ctx, delay); serr != nil {
				return nil, serr
			}

		case resp.StatusCode >= http.StatusInternalServerError && attempt < retries:
			drain(resp)
			c.logRetry(path, requestID, attempt, fmt.Sprintf("server error %d", resp.StatusCode), nil)
			if serr := c.sleep(ctx, expBackoff(attempt)); serr != nil {
				return nil, serr
			}

		default:
			// Success, non-retryable 4xx, or the budget is spent:
			// hand the response to the caller as-is.
			c.obs.RecordRequest(ctx, path, resp.StatusCode, time.Since(start), attempt+1)
			return resp, nil
		}
	}

	c.obs.RecordFailure(ctx, path)
	return nil, errors.NewNetworkError(errors.ErrCodeAPIFailed,
		fmt.Sprintf("Request to %s failed after %d attempts", path, retries+1), lastErr).
		WithContext("request_id", requestID)
}

// attempt performs a single HTTP attempt with its own wall-clock deadline
func (c *Client) attempt(ctx context.Context, method, path string, body []byte, contentType, requestID string, timeout time.Duration, opts RequestOptions) (*http.Response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(attemptCtx, method, c.baseURL+path, reader)
	if err != nil {
		cancel()
		return nil, err
	}

	req.Header.Set(requestIDHeader, requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if opts.RequiresAuth && c.cfg.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.AuthToken)
	}

	execute := func() (*http.Response, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			// Counted as a breaker failure; the response still flows
			// back to the retry loop.
			return resp, fmt.Errorf("server error: %s", resp.Status)
		}
		return resp, nil
	}

	var resp *http.Response
	if c.breaker != nil {
		resp, err = c.breaker.Execute(execute)
	} else {
		resp, err = execute()
	}

	if resp != nil {
		// The body outlives the attempt; tie the deadline cancel to it.
		resp.Body = &cancelReadCloser{ReadCloser: resp.Body, cancel: cancel}
		return resp, nil
	}

	cancel()
	if err != nil && attemptCtx.Err() == context.DeadlineExceeded {
		return nil, errors.NewNetworkError(errors.ErrCodeNetworkTimeout,
			fmt.Sprintf("Request to %s timed out after %s", path, timeout), err)
	}
	return nil, err
}

func (c *Client) logRetry(path, requestID string, attempt int, reason string, err error) {
	if c.logger == nil {
		return
	}
	args := []any{
		"path", path,
		"request_id", requestID,
		"attempt", attempt + 1,
		"reason", reason,
	}
	if err != nil {
		args = append(args, "error", err.Error())
	}
	c.logger.Warn("Retrying backend request", args...)
}

// postJSON marshals payload, performs the request, and decodes a JSON
// response into out. Non-2xx responses decode into *APIError.
func (c *Client) postJSON(ctx context.Context, path string, payload any, out any, opts RequestOptions) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.NewInternalError(errors.ErrCodeInvalidInput,
			"Failed to encode request body", err)
	}

	resp, err := c.do(ctx, http.MethodPost, path, body, "application/json", opts)
	if err != nil {
		return err
	}
	defer closeBody(resp, c.logger)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.NewAPIError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Failed to decode response from %s", path), err)
	}
	return nil
}

// expBackoff computes the delay before retrying attempt (0-based)
func expBackoff(attempt int) time.Duration {
	d := backoffBase << uint(attempt)
	if d > backoffCap || d <= 0 {
		return backoffCap
	}
	return d
}

// retryAfterDelay interprets a Retry-After header in seconds, bounded by
// retryAfterCap. A missing or malformed header waits a single second.
func retryAfterDelay(header string) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || seconds < 0 {
		return time.Second
	}
	d := time.Duration(seconds) * time.Second
	if d > retryAfterCap {
		return retryAfterCap
	}
	return d
}

// sleepContext waits for d or until ctx is done
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// drain discards and closes a response body so the connection can be reused
// before the next attempt
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	_ = resp.Body.Close()
}

func closeBody(resp *http.Response, logger *errors.Logger) {
	if err := resp.Body.Close(); err != nil && logger != nil {
		logger.Warn("Failed to close response body", "error", err)
	}
}

// cancelReadCloser releases the attempt's context deadline once the caller
// is done with the body
type cancelReadCloser struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelReadCloser) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

// BaseURL reports the backend the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}
