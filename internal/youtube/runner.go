// Package youtube fetches video metadata and downloads through an external
// yt-dlp binary, treated as a black-box subprocess collaborator.
package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/linkgrab/linkgrab/internal/config"
	"github.com/linkgrab/linkgrab/internal/domain"
	"github.com/linkgrab/linkgrab/internal/downloader"
)

// VideoMetadata is the reshaped result of a metadata extraction: identity,
// presentation fields and the two filtered format lists offered to the user.
type VideoMetadata struct {
	ID           string
	Title        string
	Duration     int
	Thumbnail    string
	Channel      string
	ChannelURL   string
	VideoFormats []VideoFormat
	AudioFormats []AudioFormat
}

// rawInfo is the subset of the tool's JSON dump we care about.
type rawInfo struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Duration   int         `json:"duration"`
	Thumbnail  string      `json:"thumbnail"`
	Channel    string      `json:"channel"`
	ChannelURL string      `json:"channel_url"`
	Formats    []rawFormat `json:"formats"`
}

type rawFormat struct {
	FormatID string  `json:"format_id"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	FPS      float64 `json:"fps"`
	Filesize int64   `json:"filesize"`
	VCodec   string  `json:"vcodec"`
	ACodec   string  `json:"acodec"`
	Ext      string  `json:"ext"`
	URL      string  `json:"url"`
}

// Runner invokes the external download tool.
type Runner struct {
	binPath string
	cfg     config.YouTubeConfig
	baseDir string
	assets  downloader.Downloader
	logger  *slog.Logger
}

// NewRunner creates a new yt-dlp runner. baseDir is the root media
// directory for YouTube downloads (videos/, audios/, thumbs/ below it).
func NewRunner(cfg config.YouTubeConfig, baseDir string, assets downloader.Downloader, logger *slog.Logger) *Runner {
	return &Runner{
		binPath: cfg.BinPath,
		cfg:     cfg,
		baseDir: baseDir,
		assets:  assets,
		logger:  logger,
	}
}

// FetchMainData extracts title, duration, channel info, thumbnail and the
// filtered video/audio format lists for a video URL.
func (r *Runner) FetchMainData(ctx context.Context, videoURL string) (*VideoMetadata, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.binPath, "-J", "--no-warnings", videoURL)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%w: metadata extraction: %v", domain.ErrExternalTool, err)
	}

	var info rawInfo
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, fmt.Errorf("%w: decode metadata: %v", domain.ErrExternalTool, err)
	}

	meta := &VideoMetadata{
		ID:           info.ID,
		Title:        info.Title,
		Duration:     info.Duration,
		Thumbnail:    info.Thumbnail,
		Channel:      info.Channel,
		ChannelURL:   info.ChannelURL,
		VideoFormats: filterVideoFormats(info.Formats),
		AudioFormats: filterAudioFormats(info.Formats),
	}
	if len(meta.VideoFormats) == 0 && len(meta.AudioFormats) == 0 {
		return nil, domain.ErrNoFormats
	}
	return meta, nil
}

// VideoPath returns the local target path for a video download.
func (r *Runner) VideoPath(id, formatID string, height int) string {
	return filepath.Join(r.baseDir, "videos", fmt.Sprintf("%s_%s_%d.mp4", id, formatID, height))
}

// AudioPath returns the local target path for an audio download.
func (r *Runner) AudioPath(id, formatID string) string {
	return filepath.Join(r.baseDir, "audios", fmt.Sprintf("%s_%s.mp3", id, formatID))
}

// DownloadVideo fetches the chosen video format merged with the best audio.
// Idempotent: when the target path already exists it is returned without
// invoking the tool.
func (r *Runner) DownloadVideo(ctx context.Context, id, formatID string, height int, videoURL string) (string, error) {
	target := r.VideoPath(id, formatID, height)
	if _, err := os.Stat(target); err == nil {
		r.logger.Info("video already on disk", "path", target)
		return target, nil
	}

	args := []string{
		"-c",
		"--embed-subs",
		"-f", formatID + "+bestaudio",
		"-o", target,
		"--hls-prefer-ffmpeg",
		videoURL,
	}
	return r.run(ctx, target, args)
}

// DownloadAudio extracts the chosen audio format as MP3. Idempotent like
// DownloadVideo.
func (r *Runner) DownloadAudio(ctx context.Context, id, formatID, videoURL string) (string, error) {
	target := r.AudioPath(id, formatID)
	if _, err := os.Stat(target); err == nil {
		r.logger.Info("audio already on disk", "path", target)
		return target, nil
	}

	args := []string{
		"-c",
		"--prefer-ffmpeg",
		"--extract-audio",
		"--audio-format", "mp3",
		"--audio-quality", formatID,
		"-o", target,
		videoURL,
	}
	return r.run(ctx, target, args)
}

// run invokes the tool, captures its combined output and parses the
// destination filename out of it.
func (r *Runner) run(ctx context.Context, target string, args []string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.binPath, args...)
	var combined bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = &combined

	if err := cmd.Run(); err != nil {
		r.logger.Error("download tool failed", "error", err, "output", combined.String())
		return "", fmt.Errorf("%w: %v", domain.ErrExternalTool, err)
	}

	filename, err := ParseDestination(combined.String())
	if err != nil {
		r.logger.Error("unparseable tool output", "output", combined.String())
		return "", err
	}

	r.logger.Info("download tool finished", "path", filename)
	return filename, nil
}

// SaveThumbnail downloads the video thumbnail to the local thumbnail cache.
func (r *Runner) SaveThumbnail(ctx context.Context, id, thumbURL string) (string, error) {
	path := r.ThumbnailPath(id)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if err := r.assets.SaveTo(ctx, thumbURL, path); err != nil {
		return "", err
	}
	return path, nil
}

// ThumbnailPath returns the local thumbnail cache path for a video id.
func (r *Runner) ThumbnailPath(id string) string {
	return filepath.Join(r.baseDir, "thumbs", id+".jpg")
}
