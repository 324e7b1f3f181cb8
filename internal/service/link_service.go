package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/linkgrab/linkgrab/internal/classify"
	"github.com/linkgrab/linkgrab/internal/domain"
	"github.com/linkgrab/linkgrab/internal/repository"
	"github.com/linkgrab/linkgrab/internal/youtube"
)

// User-facing reply texts. Everything diagnostic goes to the log stream;
// chat replies stay short and non-technical.
const (
	TextInvalidURL  = "Invalid url!"
	TextUnsupported = "This url is not in supported social media!"
	TextDownloading = "Downloading..."
	TextFirstAsk    = "Downloading...\nYou're first who asked for this :)"
	TextSending     = "Sending..."
	TextDone        = "Downloaded! Sending..."
	TextNotFound    = "Could not find post. Maybe it was deleted, you typed the wrong url or this is a private profile."
	TextRetryLater  = "Could not download. Please try again later."
	TextFailure     = "Something went wrong. Please try again later."
)

// PostFetcher resolves a post URL into downloaded local media.
type PostFetcher interface {
	DownloadPost(ctx context.Context, postURL string) domain.FetchResult
}

// VideoTool extracts video metadata and performs format-selected downloads.
type VideoTool interface {
	FetchMainData(ctx context.Context, videoURL string) (*youtube.VideoMetadata, error)
	DownloadVideo(ctx context.Context, id, formatID string, height int, videoURL string) (string, error)
	DownloadAudio(ctx context.Context, id, formatID, videoURL string) (string, error)
	SaveThumbnail(ctx context.Context, id, thumbURL string) (string, error)
}

// Delivery sends replies and media to a chat. SendMedia returns the opaque
// handle issued by the transport on first upload; SendCached reuses such a
// handle without re-uploading.
type Delivery interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendMedia(ctx context.Context, chatID int64, media domain.MediaDescriptor) (string, error)
	SendCached(ctx context.Context, chatID int64, kind domain.MediaKind, handle string) error
	SendVideoOptions(ctx context.Context, chatID int64, meta *youtube.VideoMetadata, thumbPath string) error
	SendVideoFile(ctx context.Context, chatID int64, path string, width, height, duration int) error
	SendAudioFile(ctx context.Context, chatID int64, path string) error
}

// Selection is a decoded quality-option callback.
type Selection struct {
	Type     string // "video" or "audio"
	VideoID  string
	FormatID string
	Width    int
	Height   int
	Duration int
}

// LinkService runs the link pipeline: classify, consult the dedup cache,
// fetch on a miss, deliver, record.
type LinkService struct {
	links     repository.LinkRepository
	files     repository.FileRepository
	instagram PostFetcher
	youtube   VideoTool
	delivery  Delivery
	logger    *slog.Logger
}

// NewLinkService creates the orchestrator.
func NewLinkService(
	links repository.LinkRepository,
	files repository.FileRepository,
	instagram PostFetcher,
	yt VideoTool,
	delivery Delivery,
	logger *slog.Logger,
) *LinkService {
	return &LinkService{
		links:     links,
		files:     files,
		instagram: instagram,
		youtube:   yt,
		delivery:  delivery,
		logger:    logger,
	}
}

// HandleLink processes one incoming link message end to end. Outcomes the
// user was already told about (bad input, remote failures) return nil;
// infrastructure failures (store, delivery) return an error for the caller
// to log.
func (s *LinkService) HandleLink(ctx context.Context, chatID int64, user *domain.User, rawURL string) error {
	logger := s.logger.With("request_id", uuid.New().String()[:8], "chat_id", chatID, "user_id", user.ID)

	if !classify.IsURL(rawURL) {
		logger.Info("rejected input", "reason", "not a url", "text", rawURL)
		return s.delivery.SendText(ctx, chatID, TextInvalidURL)
	}
	platform, err := classify.Classify(rawURL)
	if err != nil {
		logger.Info("rejected input", "reason", "unsupported platform", "url", rawURL)
		return s.delivery.SendText(ctx, chatID, TextUnsupported)
	}
	cleaned := classify.CleanURL(rawURL)
	logger = logger.With("url", cleaned, "platform", platform)

	link, err := s.links.GetByURL(ctx, cleaned)
	switch {
	case err == nil:
		return s.deliverCached(ctx, logger, chatID, link)
	case !errors.Is(err, domain.ErrLinkNotFound):
		return fmt.Errorf("cache lookup: %w", err)
	}

	switch platform {
	case domain.PlatformInstagram:
		return s.fetchAndDeliver(ctx, logger, chatID, user, cleaned, rawURL)
	case domain.PlatformYouTube:
		return s.presentVideoOptions(ctx, logger, chatID, rawURL)
	default:
		return fmt.Errorf("no fetcher for platform %q", platform)
	}
}

// deliverCached serves a cache hit from the stored handle, falling back to
// the local path when no handle was recorded. No remote fetch happens here.
func (s *LinkService) deliverCached(ctx context.Context, logger *slog.Logger, chatID int64, link *domain.Link) error {
	file, err := s.files.Get(ctx, link.FileID)
	if err != nil {
		return fmt.Errorf("cached file %d: %w", link.FileID, err)
	}
	logger.Info("cache hit", "file_id", file.ID, "kind", file.Kind)

	_ = s.delivery.SendText(ctx, chatID, TextSending)

	if file.FileID != "" {
		if err := s.delivery.SendCached(ctx, chatID, file.Kind, file.FileID); err != nil {
			_ = s.delivery.SendText(ctx, chatID, TextFailure)
			return fmt.Errorf("%w: cached send: %v", domain.ErrDeliveryFailed, err)
		}
		return nil
	}
	if _, err := s.delivery.SendMedia(ctx, chatID, domain.MediaDescriptor{Kind: file.Kind, Path: file.Path}); err != nil {
		_ = s.delivery.SendText(ctx, chatID, TextFailure)
		return fmt.Errorf("%w: send from path: %v", domain.ErrDeliveryFailed, err)
	}
	return nil
}

// fetchAndDeliver handles a cache miss for a post platform: remote fetch,
// deliver, then record File and Link. Rows are written only after a
// successful delivery, so a Link never exists without its File.
func (s *LinkService) fetchAndDeliver(ctx context.Context, logger *slog.Logger, chatID int64, user *domain.User, cleaned, rawURL string) error {
	_ = s.delivery.SendText(ctx, chatID, TextFirstAsk)

	result := s.instagram.DownloadPost(ctx, rawURL)
	switch result.Kind {
	case domain.FetchSuccess:
		// fall through below
	case domain.FetchNotFound:
		logger.Info("post not found")
		return s.delivery.SendText(ctx, chatID, TextNotFound)
	case domain.FetchLoginFailed, domain.FetchDownloadFailed:
		logger.Warn("fetch failed", "error", result.Err)
		return s.delivery.SendText(ctx, chatID, TextRetryLater)
	default:
		logger.Error("fetch error", "error", result.Err)
		return s.delivery.SendText(ctx, chatID, TextFailure)
	}

	media := *result.Media
	logger.Info("fetched", "kind", media.Kind, "path", media.Path)
	_ = s.delivery.SendText(ctx, chatID, TextDone)

	handle, err := s.delivery.SendMedia(ctx, chatID, media)
	if err != nil {
		logger.Warn("delivery failed", "error", err)
		_ = s.delivery.SendText(ctx, chatID, TextFailure)
		return fmt.Errorf("%w: %v", domain.ErrDeliveryFailed, err)
	}

	file, err := s.files.Create(ctx, &domain.File{
		Kind:   media.Kind,
		Path:   media.Path,
		FileID: handle,
	})
	if err != nil {
		return fmt.Errorf("record file: %w", err)
	}
	_, err = s.links.Create(ctx, &domain.Link{
		URL:      cleaned,
		Platform: domain.PlatformInstagram,
		FileID:   file.ID,
		UserID:   user.ID,
	})
	if errors.Is(err, domain.ErrDuplicateLink) {
		// A concurrent request recorded the same URL first; the user
		// already has their media, so this is not a failure.
		logger.Info("link recorded by concurrent request")
		return nil
	}
	if err != nil {
		return fmt.Errorf("record link: %w", err)
	}
	logger.Info("link recorded", "file_id", file.ID)
	return nil
}

// presentVideoOptions replies with the quality-options keyboard for a video
// link. The actual download happens when the user picks an option.
func (s *LinkService) presentVideoOptions(ctx context.Context, logger *slog.Logger, chatID int64, rawURL string) error {
	_ = s.delivery.SendText(ctx, chatID, TextDownloading)

	meta, err := s.youtube.FetchMainData(ctx, rawURL)
	if err != nil {
		if errors.Is(err, domain.ErrNoFormats) {
			logger.Warn("no downloadable formats")
			return s.delivery.SendText(ctx, chatID, TextRetryLater)
		}
		logger.Error("metadata extraction failed", "error", err)
		return s.delivery.SendText(ctx, chatID, TextFailure)
	}

	thumbPath := ""
	if meta.Thumbnail != "" {
		thumbPath, err = s.youtube.SaveThumbnail(ctx, meta.ID, meta.Thumbnail)
		if err != nil {
			logger.Warn("thumbnail fetch failed", "error", err)
			thumbPath = ""
		}
	}

	if err := s.delivery.SendVideoOptions(ctx, chatID, meta, thumbPath); err != nil {
		return fmt.Errorf("%w: options keyboard: %v", domain.ErrDeliveryFailed, err)
	}
	logger.Info("options presented", "video_id", meta.ID,
		"video_formats", len(meta.VideoFormats), "audio_formats", len(meta.AudioFormats))
	return nil
}

// HandleSelection downloads and sends the format a user picked from the
// options keyboard. Downloads are idempotent by target path, so repeat
// selections of the same format reuse the file on disk.
func (s *LinkService) HandleSelection(ctx context.Context, chatID int64, sel Selection) error {
	logger := s.logger.With("request_id", uuid.New().String()[:8],
		"chat_id", chatID, "video_id", sel.VideoID, "format_id", sel.FormatID)

	_ = s.delivery.SendText(ctx, chatID, TextDownloading)
	watchURL := "https://www.youtube.com/watch?v=" + sel.VideoID

	switch sel.Type {
	case "video":
		path, err := s.youtube.DownloadVideo(ctx, sel.VideoID, sel.FormatID, sel.Height, watchURL)
		if err != nil {
			logger.Error("video download failed", "error", err)
			return s.delivery.SendText(ctx, chatID, TextFailure)
		}
		_ = s.delivery.SendText(ctx, chatID, TextDone)
		if err := s.delivery.SendVideoFile(ctx, chatID, path, sel.Width, sel.Height, sel.Duration); err != nil {
			_ = s.delivery.SendText(ctx, chatID, TextFailure)
			return fmt.Errorf("%w: video send: %v", domain.ErrDeliveryFailed, err)
		}
	case "audio":
		path, err := s.youtube.DownloadAudio(ctx, sel.VideoID, sel.FormatID, watchURL)
		if err != nil {
			logger.Error("audio download failed", "error", err)
			return s.delivery.SendText(ctx, chatID, TextFailure)
		}
		_ = s.delivery.SendText(ctx, chatID, TextDone)
		if err := s.delivery.SendAudioFile(ctx, chatID, path); err != nil {
			_ = s.delivery.SendText(ctx, chatID, TextFailure)
			return fmt.Errorf("%w: audio send: %v", domain.ErrDeliveryFailed, err)
		}
	default:
		return fmt.Errorf("unknown selection type %q", sel.Type)
	}

	logger.Info("selection delivered", "type", sel.Type)
	return nil
}
