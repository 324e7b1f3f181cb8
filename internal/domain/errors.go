package domain

import "errors"

// Domain errors.
var (
	// ErrInvalidURL is returned when the submitted text is not a well-formed URL.
	ErrInvalidURL = errors.New("invalid url")

	// ErrUnsupportedPlatform is returned when a URL belongs to no supported platform.
	ErrUnsupportedPlatform = errors.New("unsupported platform")

	// ErrLinkNotFound is returned when a link cannot be found in the cache.
	ErrLinkNotFound = errors.New("link not found")

	// ErrDuplicateLink is returned when a link with the same normalized URL
	// already exists. Callers should treat this as "someone else already
	// recorded this link" and retry a lookup instead of failing.
	ErrDuplicateLink = errors.New("link already recorded")

	// ErrUserNotFound is returned when a user cannot be found.
	ErrUserNotFound = errors.New("user not found")

	// ErrFileNotFound is returned when a file record cannot be found.
	ErrFileNotFound = errors.New("file not found")

	// ErrPostNotFound is returned when the remote post is missing, private or deleted.
	ErrPostNotFound = errors.New("post not found")

	// ErrLoginFailed is returned when the platform rejects authentication.
	ErrLoginFailed = errors.New("login failed")

	// ErrDownloadFailed is returned when fetching the remote asset fails.
	ErrDownloadFailed = errors.New("download failed")

	// ErrExternalTool is returned when the external download tool exits
	// non-zero or its output cannot be parsed.
	ErrExternalTool = errors.New("external tool failed")

	// ErrDeliveryFailed is returned when sending media back to the chat fails.
	ErrDeliveryFailed = errors.New("delivery failed")

	// ErrNoFormats is returned when no acceptable formats survive filtering.
	ErrNoFormats = errors.New("no downloadable formats")
)
