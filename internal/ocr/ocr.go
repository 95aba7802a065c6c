// Package ocr talks to the external OCR fallback service.
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client recognizes text in a document image or scanned PDF.
type Client interface {
	Recognize(ctx context.Context, data []byte, mimeType string) (string, error)
}

// ErrNotConfigured is returned when no OCR service is available.
var ErrNotConfigured = errors.New("ocr service not configured")

// Placeholder always fails with ErrNotConfigured.
type Placeholder struct{}

func (Placeholder) Recognize(ctx context.Context, data []byte, mimeType string) (string, error) {
	return "", ErrNotConfigured
}

const maxResponseBytes = 4 << 20

// HTTPClient posts the raw document to an OCR endpoint and expects
// {"text": "..."} back.
type HTTPClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPClient builds an HTTPClient for endpoint.
func NewHTTPClient(endpoint, apiKey string, timeout time.Duration) (*HTTPClient, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("OCR_SERVICE_URL is required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		endpoint:   endpoint,
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type recognizeResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// Recognize returns the service's best-effort text for data.
func (c *HTTPClient) Recognize(ctx context.Context, data []byte, mimeType string) (string, error) {
	if len(data) == 0 {
		return "", errors.New("ocr: empty document")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", mimeType)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ocr request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("ocr read: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("ocr http status %d", resp.StatusCode)
	}

	var parsed recognizeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("ocr response parse: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("ocr error: %s", parsed.Error)
	}
	return parsed.Text, nil
}
