package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// defaultTimeout bounds a single webhook request.
const defaultTimeout = 30 * time.Second

// HTTPClient posts webhook payloads.
type HTTPClient struct {
	client *http.Client
}

// NewHTTPClient creates a client with the default timeout.
func NewHTTPClient() *HTTPClient {
	return &HTTPClient{
		client: &http.Client{Timeout: defaultTimeout},
	}
}

// SendResult holds the outcome of one webhook request.
type SendResult struct {
	StatusCode int
	Duration   time.Duration
	Error      error
}

// Send posts the payload and treats any non-2xx status as a failure.
func (c *HTTPClient) Send(ctx context.Context, url, contentType string, payload []byte) SendResult {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return SendResult{Duration: time.Since(start), Error: err}
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		return SendResult{Duration: time.Since(start), Error: err}
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	result := SendResult{StatusCode: resp.StatusCode, Duration: time.Since(start)}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		result.Error = fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return result
}
