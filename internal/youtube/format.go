package youtube

import (
	"fmt"
	"strings"
)

// UploadLimit is the chat platform's file upload limit (2 GiB). Formats at
// or above it get a warning glyph in the size summary.
const UploadLimit int64 = 2 * 1024 * 1024 * 1024

// VideoFormat is a playable video-only format (H.264 in an MP4 container).
type VideoFormat struct {
	FormatID string
	Width    int
	Height   int
	FPS      float64
	Filesize int64
	VCodec   string
	ACodec   string
	Ext      string
	URL      string
}

// AudioFormat is an audio-only format.
type AudioFormat struct {
	FormatID string
	Filesize int64
	ACodec   string
	Ext      string
	URL      string
}

// filterVideoFormats keeps only formats with an explicit height, no audio
// track, MP4 container and an avc1 video codec.
func filterVideoFormats(raw []rawFormat) []VideoFormat {
	var out []VideoFormat
	for _, f := range raw {
		if f.Height <= 0 {
			continue
		}
		if f.ACodec != "none" {
			continue
		}
		if f.Ext != "mp4" || !strings.HasPrefix(f.VCodec, "avc1.") {
			continue
		}
		out = append(out, VideoFormat{
			FormatID: f.FormatID,
			Width:    f.Width,
			Height:   f.Height,
			FPS:      f.FPS,
			Filesize: f.Filesize,
			VCodec:   f.VCodec,
			ACodec:   f.ACodec,
			Ext:      f.Ext,
			URL:      f.URL,
		})
	}
	return out
}

// filterAudioFormats keeps only formats with an audio track and no video track.
func filterAudioFormats(raw []rawFormat) []AudioFormat {
	var out []AudioFormat
	for _, f := range raw {
		if f.VCodec != "none" || f.ACodec == "none" || f.ACodec == "" {
			continue
		}
		out = append(out, AudioFormat{
			FormatID: f.FormatID,
			Filesize: f.Filesize,
			ACodec:   f.ACodec,
			Ext:      f.Ext,
			URL:      f.URL,
		})
	}
	return out
}

// HumanBytes renders a byte count with binary prefixes (KB = 1024 B),
// one decimal place. Negative counts are treated as zero.
func HumanBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	const unit = 1024.0
	units := []string{"B", "KB", "MB", "GB", "TB", "PB", "EB"}

	f := float64(n)
	i := 0
	for f >= unit && i < len(units)-1 {
		f /= unit
		i++
	}
	return fmt.Sprintf("%.1f%s", f, units[i])
}

// RenderSizeSummary renders one line per video format: a warning glyph when
// the file size is at or over the upload limit, an ok glyph otherwise,
// followed by the resolution and human-readable size.
func RenderSizeSummary(formats []VideoFormat) string {
	var sb strings.Builder
	for _, f := range formats {
		glyph := "✅"
		if f.Filesize >= UploadLimit {
			glyph = "⚠️"
		}
		fmt.Fprintf(&sb, "%s %dp — %s\n", glyph, f.Height, HumanBytes(f.Filesize))
	}
	return sb.String()
}
