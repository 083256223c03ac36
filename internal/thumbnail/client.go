// Package thumbnail talks to the external thumbnailing endpoint and holds the
// process-wide thumbnail URL cache.
package thumbnail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	maxImageBytes  = 10 << 20
	defaultTimeout = 60 * time.Second
)

// Client posts a video URL and receives the rendered frame as image bytes.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

func NewClient(endpoint string) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

type generateRequest struct {
	VideoURL string `json:"videoUrl"`
}

// Generate returns the image and its content type. Non image responses are errors.
func (c *Client) Generate(ctx context.Context, videoURL string) ([]byte, string, error) {
	if c.endpoint == "" {
		return nil, "", fmt.Errorf("thumbnail endpoint is not configured")
	}

	payload, err := json.Marshal(generateRequest{VideoURL: videoURL})
	if err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create thumbnail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "image/*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("thumbnail request failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, "", fmt.Errorf("thumbnail service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", fmt.Errorf("thumbnail service returned %s, want an image", contentType)
	}

	image, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read thumbnail: %w", err)
	}
	if len(image) == 0 {
		return nil, "", fmt.Errorf("thumbnail service returned an empty body")
	}
	if len(image) > maxImageBytes {
		return nil, "", fmt.Errorf("thumbnail exceeds %d bytes", maxImageBytes)
	}
	return image, contentType, nil
}
