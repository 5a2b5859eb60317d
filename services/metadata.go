package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Format is one downloadable encoding of a remote video.
type Format struct {
	Itag         int    `json:"itag"`
	MimeType     string `json:"mime_type"`
	QualityLabel string `json:"quality_label"`
	HasAudio     bool   `json:"has_audio"`
	HasVideo     bool   `json:"has_video"`
	URL          string `json:"url"`
}

// VideoMetadata is what the metadata service reports for a source URL.
type VideoMetadata struct {
	Title           string   `json:"title"`
	DurationSeconds int      `json:"duration_seconds"`
	Formats         []Format `json:"formats"`
}

// MetadataClient fetches remote video metadata. The remote service is an
// opaque collaborator; only its response shape is part of the contract.
type MetadataClient interface {
	Fetch(ctx context.Context, videoURL string) (*VideoMetadata, error)
}

// HTTPMetadataClient talks to the metadata service over HTTP.
type HTTPMetadataClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewHTTPMetadataClient(baseURL string) *HTTPMetadataClient {
	return &HTTPMetadataClient{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPMetadataClient) Fetch(ctx context.Context, videoURL string) (*VideoMetadata, error) {
	endpoint := fmt.Sprintf("%s/metadata?url=%s", c.BaseURL, url.QueryEscape(videoURL))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("metadata request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metadata service returned status %d", resp.StatusCode)
	}

	var meta VideoMetadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, fmt.Errorf("decoding metadata response: %w", err)
	}
	return &meta, nil
}
