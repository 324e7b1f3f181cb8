package domain

import "time"

// Platform identifies a supported social-media platform.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformYouTube   Platform = "youtube"
)

// User is a chat user, created lazily on first interaction.
type User struct {
	ID         int64
	TelegramID int64
	FirstName  string
	LastName   string
	Username   string
	LangCode   string
	CreatedAt  time.Time
}

// File is a downloaded media asset. FileID is the opaque delivery handle
// issued by the chat transport after the first send; it is unique once
// assigned and the record is immutable thereafter.
type File struct {
	ID           int64
	Kind         MediaKind
	Path         string
	FileID       string
	DownloadedAt time.Time
}

// Link maps a normalized URL to a downloaded File. At most one Link exists
// per normalized URL; this is the dedup cache's correctness guarantee.
type Link struct {
	ID        int64
	URL       string
	Platform  Platform
	FileID    int64
	UserID    int64
	CreatedAt time.Time
}
