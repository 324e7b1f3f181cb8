// Package telegram is the chat transport: the update loop, the media sender
// and the quality-options keyboard.
package telegram

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/linkgrab/linkgrab/internal/domain"
	"github.com/linkgrab/linkgrab/internal/youtube"
)

// Sender delivers media to chats. First sends upload from local paths and
// yield an opaque file handle; later sends reuse the handle so the file is
// never uploaded twice.
type Sender struct {
	bot     *tgbotapi.BotAPI
	caption string
}

// NewSender creates a sender. The attribution caption carries the bot's own
// username.
func NewSender(bot *tgbotapi.BotAPI) *Sender {
	return &Sender{
		bot:     bot,
		caption: "Downloaded via @" + bot.Self.UserName,
	}
}

// SendText sends a plain text reply.
func (s *Sender) SendText(_ context.Context, chatID int64, text string) error {
	_, err := s.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// SendMedia uploads downloaded media from disk and returns its delivery
// handle. For carousels the handle encodes every item as
// "<file_id>|<kind>" joined with commas, in album order.
func (s *Sender) SendMedia(_ context.Context, chatID int64, media domain.MediaDescriptor) (string, error) {
	switch media.Kind {
	case domain.MediaImage:
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(media.Path))
		photo.Caption = s.caption
		sent, err := s.bot.Send(photo)
		if err != nil {
			return "", fmt.Errorf("send photo: %w", err)
		}
		if len(sent.Photo) == 0 {
			return "", fmt.Errorf("send photo: no file handle in response")
		}
		return sent.Photo[0].FileID, nil

	case domain.MediaVideo:
		video := tgbotapi.NewVideo(chatID, tgbotapi.FilePath(media.Path))
		video.Caption = s.caption
		sent, err := s.bot.Send(video)
		if err != nil {
			return "", fmt.Errorf("send video: %w", err)
		}
		if sent.Video == nil {
			return "", fmt.Errorf("send video: no file handle in response")
		}
		return sent.Video.FileID, nil

	case domain.MediaCarousel:
		return s.sendAlbumFromDir(chatID, media.Path)

	default:
		return "", fmt.Errorf("unknown media kind %q", media.Kind)
	}
}

// sendAlbumFromDir uploads every item of a carousel directory as one album.
// Item files are numbered 0..9 by the fetcher, so ordering follows the
// numeric prefix.
func (s *Sender) sendAlbumFromDir(chatID int64, dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read carousel dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Slice(names, func(i, j int) bool {
		return itemIndex(names[i]) < itemIndex(names[j])
	})

	var group []interface{}
	for i, name := range names {
		path := filepath.Join(dir, name)
		switch strings.ToLower(filepath.Ext(name)) {
		case ".jpg", ".jpeg", ".png", ".webp":
			item := tgbotapi.NewInputMediaPhoto(tgbotapi.FilePath(path))
			if i == 0 {
				item.Caption = s.caption
			}
			group = append(group, item)
		case ".mp4", ".mov":
			item := tgbotapi.NewInputMediaVideo(tgbotapi.FilePath(path))
			if i == 0 {
				item.Caption = s.caption
			}
			group = append(group, item)
		}
	}
	if len(group) == 0 {
		return "", fmt.Errorf("carousel dir %s has no media files", dir)
	}

	sent, err := s.bot.SendMediaGroup(tgbotapi.NewMediaGroup(chatID, group))
	if err != nil {
		return "", fmt.Errorf("send album: %w", err)
	}
	return encodeAlbumHandle(sent), nil
}

func itemIndex(name string) int {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	n, err := strconv.Atoi(base)
	if err != nil {
		return 1 << 30
	}
	return n
}

// SendCached re-sends media from a previously issued handle without
// uploading anything.
func (s *Sender) SendCached(_ context.Context, chatID int64, kind domain.MediaKind, handle string) error {
	switch kind {
	case domain.MediaImage:
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(handle))
		photo.Caption = s.caption
		_, err := s.bot.Send(photo)
		return err

	case domain.MediaVideo:
		video := tgbotapi.NewVideo(chatID, tgbotapi.FileID(handle))
		video.Caption = s.caption
		_, err := s.bot.Send(video)
		return err

	case domain.MediaCarousel:
		items, err := decodeAlbumHandle(handle)
		if err != nil {
			return err
		}
		var group []interface{}
		for i, it := range items {
			switch it.Kind {
			case domain.MediaImage:
				photo := tgbotapi.NewInputMediaPhoto(tgbotapi.FileID(it.FileID))
				if i == 0 {
					photo.Caption = s.caption
				}
				group = append(group, photo)
			case domain.MediaVideo:
				video := tgbotapi.NewInputMediaVideo(tgbotapi.FileID(it.FileID))
				if i == 0 {
					video.Caption = s.caption
				}
				group = append(group, video)
			}
		}
		_, err = s.bot.SendMediaGroup(tgbotapi.NewMediaGroup(chatID, group))
		return err

	default:
		return fmt.Errorf("unknown media kind %q", kind)
	}
}

// SendVideoOptions presents the quality-options keyboard, with the video
// thumbnail when one was cached.
func (s *Sender) SendVideoOptions(_ context.Context, chatID int64, meta *youtube.VideoMetadata, thumbPath string) error {
	text := renderOptionsText(meta)
	keyboard := DownloadOptionsKeyboard(meta)

	if thumbPath != "" {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(thumbPath))
		photo.Caption = text
		photo.ReplyMarkup = keyboard
		_, err := s.bot.Send(photo)
		return err
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	_, err := s.bot.Send(msg)
	return err
}

func renderOptionsText(meta *youtube.VideoMetadata) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n%s\n\n", meta.Title, meta.Channel)
	sb.WriteString(youtube.RenderSizeSummary(meta.VideoFormats))
	return sb.String()
}

// SendVideoFile uploads a downloaded video file.
func (s *Sender) SendVideoFile(_ context.Context, chatID int64, path string, width, height, duration int) error {
	video := tgbotapi.NewVideo(chatID, tgbotapi.FilePath(path))
	video.Caption = s.caption
	video.Duration = duration
	video.SupportsStreaming = true
	_, err := s.bot.Send(video)
	return err
}

// SendAudioFile uploads an extracted audio file.
func (s *Sender) SendAudioFile(_ context.Context, chatID int64, path string) error {
	audio := tgbotapi.NewAudio(chatID, tgbotapi.FilePath(path))
	audio.Caption = s.caption
	_, err := s.bot.Send(audio)
	return err
}

// albumItem is one decoded entry of a carousel delivery handle.
type albumItem struct {
	FileID string
	Kind   domain.MediaKind
}

// encodeAlbumHandle serializes the per-item handles of a sent album as
// "<file_id>|<kind>" entries joined with commas.
func encodeAlbumHandle(msgs []tgbotapi.Message) string {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		switch {
		case len(m.Photo) > 0:
			parts = append(parts, m.Photo[0].FileID+"|"+string(domain.MediaImage))
		case m.Video != nil:
			parts = append(parts, m.Video.FileID+"|"+string(domain.MediaVideo))
		}
	}
	return strings.Join(parts, ",")
}

// decodeAlbumHandle parses a stored carousel handle back into its items.
func decodeAlbumHandle(handle string) ([]albumItem, error) {
	entries := strings.Split(handle, ",")
	items := make([]albumItem, 0, len(entries))
	for _, entry := range entries {
		id, kind, ok := strings.Cut(entry, "|")
		if !ok || id == "" {
			return nil, fmt.Errorf("malformed album handle entry %q", entry)
		}
		switch domain.MediaKind(kind) {
		case domain.MediaImage, domain.MediaVideo:
			items = append(items, albumItem{FileID: id, Kind: domain.MediaKind(kind)})
		default:
			return nil, fmt.Errorf("malformed album handle kind %q", kind)
		}
	}
	return items, nil
}
