// file: internal/ocr/client.go
// version: 1.0.0
// guid: 5e6f7a8b-9c0d-1e2f-3a4b-5c6d7e8f9a0b

package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/answerbox/answerbox/internal/metrics"
)

var (
	// ErrNotConfigured is returned when no OCR endpoint has been set.
	ErrNotConfigured = errors.New("ocr: endpoint not configured")
	// ErrUnavailable is returned when the OCR backend cannot be reached or
	// answers with a server error.
	ErrUnavailable = errors.New("ocr: backend unavailable")
	// ErrBadImage is returned when the backend rejects the image payload.
	ErrBadImage = errors.New("ocr: backend rejected image")
)

// Client talks to an external OCR service that accepts a raw image body on
// POST /ocr and answers with {"text": "..."}.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates an OCR client for the given endpoint. An empty endpoint
// yields a client whose calls fail with ErrNotConfigured.
func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// IsConfigured reports whether an endpoint has been set.
func (c *Client) IsConfigured() bool {
	return c.baseURL != ""
}

type ocrResponse struct {
	Text string `json:"text"`
}

// ExtractText sends the image to the OCR backend and returns the recognized
// text. Empty text is a valid result, not an error.
func (c *Client) ExtractText(ctx context.Context, image []byte) (string, error) {
	if c.baseURL == "" {
		return "", ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ocr", bytes.NewReader(image))
	if err != nil {
		return "", fmt.Errorf("building OCR request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.IncOCRFailure()
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		metrics.IncOCRFailure()
		return "", fmt.Errorf("%w: status %d", ErrBadImage, resp.StatusCode)
	default:
		metrics.IncOCRFailure()
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var body ocrResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		metrics.IncOCRFailure()
		return "", fmt.Errorf("decoding OCR response: %w", err)
	}
	return body.Text, nil
}
