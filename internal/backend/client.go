// Package backend talks to the child-care tracking API: authentication,
// children, and the feeding/sleep/diaper/health logs.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Vovarama1992/carelog-ai-bridge/internal/logger"
	"github.com/Vovarama1992/carelog-ai-bridge/internal/metrics"
)

// ErrNotFound matches any *APIError with status 404.
var ErrNotFound = errors.New("backend: not found")

// APIError is a response with an unexpected status. Body is the raw response text.
type APIError struct {
	Operation string
	Status    int
	Body      string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend %s: status %d body=%s", e.Operation, e.Status, e.Body)
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

type Client struct {
	baseURL string
	client  *http.Client
	log     *zap.Logger
	metrics metrics.Recorder
}

func NewClient(baseURL string, timeout time.Duration, log *zap.Logger, m metrics.Recorder) *Client {
	if m == nil {
		m = metrics.Nop{}
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		log:     log.Named("backend"),
		metrics: m,
	}
}

// send performs one call. A status other than want becomes an *APIError;
// on success the raw body is returned and, if out is non-nil, decoded into it.
func (c *Client) send(
	ctx context.Context,
	op, method, path, token string,
	body any,
	want int,
	out any,
) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.RecordBackendRequest(op, 0)
		c.log.Error("request failed", zap.String("operation", op), zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	c.metrics.RecordBackendRequest(op, resp.StatusCode)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("backend %s: read body: %w", op, err)
	}

	if resp.StatusCode != want {
		c.log.Warn("unexpected status",
			zap.String("operation", op),
			zap.Int("status", resp.StatusCode),
			zap.String("body", logger.Short(string(respBody))),
		)
		return nil, &APIError{Operation: op, Status: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return nil, fmt.Errorf("backend %s: decode response: %w", op, err)
		}
	}

	return json.RawMessage(respBody), nil
}
