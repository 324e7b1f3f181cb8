package telegram

import (
	"testing"

	"github.com/linkgrab/linkgrab/internal/youtube"
)

func TestDownloadOptionsKeyboard_RowsOfThreePlusAudio(t *testing.T) {
	meta := &youtube.VideoMetadata{
		ID:       "dQw4w9WgXcQ",
		Duration: 212,
		VideoFormats: []youtube.VideoFormat{
			{FormatID: "137", Width: 1920, Height: 1080},
			{FormatID: "136", Width: 1280, Height: 720},
			{FormatID: "135", Width: 854, Height: 480},
			{FormatID: "134", Width: 640, Height: 360},
		},
		AudioFormats: []youtube.AudioFormat{
			{FormatID: "139"},
			{FormatID: "140"},
		},
	}

	kb := DownloadOptionsKeyboard(meta)
	if len(kb.InlineKeyboard) != 3 {
		t.Fatalf("rows = %d, want 3 (two video rows + audio row)", len(kb.InlineKeyboard))
	}
	if len(kb.InlineKeyboard[0]) != 3 {
		t.Errorf("first row = %d buttons, want 3", len(kb.InlineKeyboard[0]))
	}
	if len(kb.InlineKeyboard[1]) != 1 {
		t.Errorf("second row = %d buttons, want 1", len(kb.InlineKeyboard[1]))
	}

	first := kb.InlineKeyboard[0][0]
	if first.Text != "📹 1080p" {
		t.Errorf("button text = %q", first.Text)
	}
	if got := *first.CallbackData; got != "yt|video|dQw4w9WgXcQ|137|1920|1080|212" {
		t.Errorf("callback data = %q", got)
	}

	audioRow := kb.InlineKeyboard[2]
	if len(audioRow) != 1 || audioRow[0].Text != "🎵 MP3" {
		t.Fatalf("audio row = %+v", audioRow)
	}
	if got := *audioRow[0].CallbackData; got != "yt|audio|dQw4w9WgXcQ|140|0|0|212" {
		t.Errorf("audio callback data = %q, want last audio format", got)
	}
}

func TestDecodeSelection_RoundTrip(t *testing.T) {
	data := encodeSelection("video", "abc", "137", 1920, 1080, 212)
	sel, err := DecodeSelection(data)
	if err != nil {
		t.Fatalf("DecodeSelection failed: %v", err)
	}
	if sel.Type != "video" || sel.VideoID != "abc" || sel.FormatID != "137" {
		t.Errorf("selection = %+v", sel)
	}
	if sel.Width != 1920 || sel.Height != 1080 || sel.Duration != 212 {
		t.Errorf("dimensions = %+v", sel)
	}
}

func TestDecodeSelection_Malformed(t *testing.T) {
	for _, data := range []string{
		"",
		"yt|video|abc",
		"xx|video|abc|137|1920|1080|212",
		"yt|video|abc|137|w|1080|212",
	} {
		if _, err := DecodeSelection(data); err == nil {
			t.Errorf("DecodeSelection(%q) should fail", data)
		}
	}
}
