package adapters

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const userAgent = "trsst-client"

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
}

func (e StatusError) Error() string {
	return fmt.Sprintf("http error %d", e.Code)
}

type Downloader struct {
	client *http.Client
}

func NewDownloader(timeout time.Duration) *Downloader {
	return &Downloader{client: &http.Client{Timeout: timeout}}
}

func (d *Downloader) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return d.do(req)
}

func (d *Downloader) Upload(ctx context.Context, url string, contentType string, body io.Reader) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	return d.do(req)
}

func (d *Downloader) do(req *http.Request) (io.ReadCloser, error) {
	req.Header.Set("User-Agent", userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, StatusError{Code: resp.StatusCode}
	}

	return resp.Body, nil
}
