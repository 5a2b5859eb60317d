package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Downloader retrieves the chosen encoding into transient local storage.
type Downloader interface {
	Fetch(ctx context.Context, url, dest string) error
}

// HTTPDownloader streams the encoding URL to disk.
type HTTPDownloader struct {
	Client *http.Client
}

func NewHTTPDownloader() *HTTPDownloader {
	// Gameplay videos are large; the timeout covers the whole transfer.
	return &HTTPDownloader{Client: &http.Client{Timeout: 30 * time.Minute}}
}

func (d *HTTPDownloader) Fetch(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := d.Client.Do(req)
	if err != nil {
		return fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download returned status %d", resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("writing download to %s: %w", dest, err)
	}
	return nil
}
