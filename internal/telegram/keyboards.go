package telegram

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/linkgrab/linkgrab/internal/service"
	"github.com/linkgrab/linkgrab/internal/youtube"
)

// Callback data layout: yt|<type>|<video_id>|<format_id>|<width>|<height>|<duration>
const (
	callbackPrefix = "yt"
	callbackSep    = "|"
	callbackFields = 7
)

// DownloadOptionsKeyboard builds the quality-options keyboard: video
// buttons grouped in rows of three, then a single MP3 row using the best
// audio format.
func DownloadOptionsKeyboard(meta *youtube.VideoMetadata) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton

	for _, f := range meta.VideoFormats {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("📹 %dp", f.Height),
			encodeSelection("video", meta.ID, f.FormatID, f.Width, f.Height, meta.Duration),
		))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	if n := len(meta.AudioFormats); n > 0 {
		best := meta.AudioFormats[n-1]
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(
				"🎵 MP3",
				encodeSelection("audio", meta.ID, best.FormatID, 0, 0, meta.Duration),
			),
		})
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func encodeSelection(typ, videoID, formatID string, width, height, duration int) string {
	return strings.Join([]string{
		callbackPrefix, typ, videoID, formatID,
		strconv.Itoa(width), strconv.Itoa(height), strconv.Itoa(duration),
	}, callbackSep)
}

// DecodeSelection parses quality-option callback data back into a selection.
func DecodeSelection(data string) (service.Selection, error) {
	fields := strings.Split(data, callbackSep)
	if len(fields) != callbackFields || fields[0] != callbackPrefix {
		return service.Selection{}, fmt.Errorf("malformed callback data %q", data)
	}
	width, err := strconv.Atoi(fields[4])
	if err != nil {
		return service.Selection{}, fmt.Errorf("malformed callback width %q", fields[4])
	}
	height, err := strconv.Atoi(fields[5])
	if err != nil {
		return service.Selection{}, fmt.Errorf("malformed callback height %q", fields[5])
	}
	duration, err := strconv.Atoi(fields[6])
	if err != nil {
		return service.Selection{}, fmt.Errorf("malformed callback duration %q", fields[6])
	}
	return service.Selection{
		Type:     fields[1],
		VideoID:  fields[2],
		FormatID: fields[3],
		Width:    width,
		Height:   height,
		Duration: duration,
	}, nil
}
