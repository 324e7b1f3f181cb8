// Package downloader fetches remote media assets over plain HTTP.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/linkgrab/linkgrab/internal/config"
	"github.com/linkgrab/linkgrab/internal/domain"
)

// Downloader fetches asset content from URLs.
type Downloader interface {
	// Download fetches the asset, returns content reader and size.
	// Caller is responsible for closing the reader.
	Download(ctx context.Context, url string) (io.ReadCloser, int64, error)

	// SaveTo downloads the asset and writes it to path, creating parent
	// directories as needed.
	SaveTo(ctx context.Context, url, path string) error
}

// HTTPDownloader implements Downloader using HTTP requests.
type HTTPDownloader struct {
	client    *http.Client
	userAgent string
	cfg       config.DownloadConfig
}

// NewHTTPDownloader creates a new HTTP-based asset downloader.
func NewHTTPDownloader(cfg config.DownloadConfig) *HTTPDownloader {
	return &HTTPDownloader{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		userAgent: cfg.UserAgent,
		cfg:       cfg,
	}
}

// Download fetches the asset with retry and exponential backoff.
func (d *HTTPDownloader) Download(ctx context.Context, url string) (io.ReadCloser, int64, error) {
	retryCfg := RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  d.cfg.RetryDelay,
		MaxDelay:      d.cfg.MaxRetryDelay,
		BackoffFactor: 2.0,
	}

	type result struct {
		body io.ReadCloser
		size int64
	}

	res, err := RetryWithCheck(ctx, retryCfg,
		func() (result, error) {
			body, size, err := d.downloadOnce(ctx, url)
			return result{body, size}, err
		},
		isRetryable,
	)
	if err != nil {
		return nil, 0, err
	}
	return res.body, res.size, nil
}

func (d *HTTPDownloader) downloadOnce(ctx context.Context, url string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("send request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, 0, fmt.Errorf("%w: status %d", domain.ErrDownloadFailed, resp.StatusCode)
	}

	return resp.Body, resp.ContentLength, nil
}

// SaveTo downloads the asset and writes it to path atomically
// (temp file + rename), creating parent directories as needed.
func (d *HTTPDownloader) SaveTo(ctx context.Context, url, path string) error {
	body, _, err := d.Download(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	_, err = io.Copy(f, body)
	f.Close()
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write asset: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("move asset to final location: %w", err)
	}
	return nil
}

func isRetryable(err error) bool {
	// Non-2xx responses mean the asset is broken or gone; retrying the
	// same URL will not help. Transport errors are worth retrying.
	return !errors.Is(err, domain.ErrDownloadFailed)
}
