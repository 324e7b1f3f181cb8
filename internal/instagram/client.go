// Package instagram fetches Instagram posts through the platform's
// unofficial post endpoint and downloads their media to local storage.
package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/linkgrab/linkgrab/internal/config"
	"github.com/linkgrab/linkgrab/internal/domain"
	"github.com/linkgrab/linkgrab/internal/downloader"
)

// Client is the Instagram platform fetcher.
type Client struct {
	httpClient *http.Client
	assets     downloader.Downloader
	cfg        config.InstagramConfig
	baseDir    string
	baseURL    string
	userAgent  string
	logger     *slog.Logger
}

// NewClient creates a new Instagram fetcher. baseDir is the root media
// directory for Instagram downloads (images/, videos/, carousels/ below it).
func NewClient(
	cfg config.InstagramConfig,
	dlCfg config.DownloadConfig,
	baseDir string,
	assets downloader.Downloader,
	logger *slog.Logger,
) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: dlCfg.Timeout},
		assets:     assets,
		cfg:        cfg,
		baseDir:    baseDir,
		baseURL:    "https://www.instagram.com",
		userAgent:  dlCfg.UserAgent,
		logger:     logger,
	}
}

// DownloadPost fetches a post's metadata, extracts the media asset URLs and
// downloads every asset to local storage. The outcome is a tagged
// FetchResult; no partial carousels are ever reported as success.
func (c *Client) DownloadPost(ctx context.Context, postURL string) domain.FetchResult {
	postID, err := extractPostID(postURL)
	if err != nil {
		return domain.Failed(fmt.Errorf("extract post id: %w", err))
	}
	logger := c.logger.With("post_id", postID)

	var jar http.CookieJar
	if c.cfg.AuthMode == config.AuthCookie {
		jar, err = c.ensureSession(ctx)
		if err != nil {
			logger.Error("instagram session unavailable", "error", err)
			return domain.LoginFailed()
		}
	}

	payload, result := c.fetchPostPayload(ctx, postURL, jar)
	if payload == nil {
		return result
	}

	media := ExtractMedia(payload)
	switch {
	case len(media.Carousel) > 0:
		return c.downloadCarousel(ctx, logger, postID, media.Carousel)
	case media.VideoURL != "":
		// Video takes precedence when both URLs are present.
		return c.downloadSingle(ctx, logger, postID, media.VideoURL, domain.MediaVideo)
	case media.ImageURL != "":
		return c.downloadSingle(ctx, logger, postID, media.ImageURL, domain.MediaImage)
	default:
		return domain.Failed(fmt.Errorf("post %s: no media in payload", postID))
	}
}

// fetchPostPayload issues the metadata GET against the post endpoint.
// A nil payload means the returned FetchResult is terminal.
func (c *Client) fetchPostPayload(ctx context.Context, postURL string, jar http.CookieJar) (*postPayload, domain.FetchResult) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, postURL, nil)
	if err != nil {
		return nil, domain.Failed(fmt.Errorf("create request: %w", err))
	}
	q := req.URL.Query()
	q.Set("__a", "1")
	req.URL.RawQuery = q.Encode()
	req.Header.Set("User-Agent", c.userAgent)

	client := c.httpClient
	if jar != nil {
		authed := *c.httpClient
		authed.Jar = jar
		client = &authed
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, domain.DownloadFailed(fmt.Errorf("fetch post metadata: %w", err))
	}
	defer resp.Body.Close()

	c.logger.Debug("post metadata response", "status", resp.StatusCode)

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.NotFound()
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.DownloadFailed(fmt.Errorf("post metadata: status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.DownloadFailed(fmt.Errorf("read post metadata: %w", err))
	}

	var payload postPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, domain.Failed(fmt.Errorf("decode post metadata: %w", err))
	}
	return &payload, domain.FetchResult{}
}

// downloadCarousel saves every item to a per-post subdirectory, numbered by
// position. Any failed item aborts the whole post.
func (c *Client) downloadCarousel(ctx context.Context, logger *slog.Logger, postID string, items []domain.CarouselItem) domain.FetchResult {
	dir := filepath.Join(c.baseDir, "carousels", postID)

	for i, item := range items {
		var assetURL, name string
		if item.Kind() == domain.MediaVideo {
			assetURL = item.VideoURL
			name = fmt.Sprintf("%d.mp4", i)
		} else {
			assetURL = item.ImageURL
			name = fmt.Sprintf("%d.jpg", i)
		}

		if err := c.assets.SaveTo(ctx, assetURL, filepath.Join(dir, name)); err != nil {
			logger.Error("carousel item download failed", "index", i, "error", err)
			return domain.DownloadFailed(err)
		}
		logger.Info("saved carousel item", "index", i, "kind", item.Kind())
	}

	return domain.Success(domain.MediaDescriptor{Kind: domain.MediaCarousel, Path: dir})
}

func (c *Client) downloadSingle(ctx context.Context, logger *slog.Logger, postID, assetURL string, kind domain.MediaKind) domain.FetchResult {
	var path string
	switch kind {
	case domain.MediaVideo:
		path = filepath.Join(c.baseDir, "videos", postID+".mp4")
	default:
		path = filepath.Join(c.baseDir, "images", postID+".jpg")
	}

	if err := c.assets.SaveTo(ctx, assetURL, path); err != nil {
		logger.Error("asset download failed", "kind", kind, "error", err)
		return domain.DownloadFailed(err)
	}
	logger.Info("saved post media", "kind", kind, "path", path)

	return domain.Success(domain.MediaDescriptor{Kind: kind, Path: path})
}

// extractPostID pulls the post shortcode out of a post URL
// (instagram.com/<section>/<shortcode>/...).
func extractPostID(postURL string) (string, error) {
	u, err := url.Parse(postURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[1] == "" {
		return "", fmt.Errorf("no post id in %q", postURL)
	}
	return parts[1], nil
}

// loginBackoff is the delay between capped login retries.
const loginBackoff = 2 * time.Second
