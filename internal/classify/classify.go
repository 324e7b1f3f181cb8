// Package classify normalizes incoming URLs and maps them to supported platforms.
package classify

import (
	"net/url"
	"strings"

	"github.com/linkgrab/linkgrab/internal/domain"
)

// platformHosts is the static table of host markers consulted in order;
// the first marker contained in the normalized URL wins.
var platformHosts = []struct {
	Marker   string
	Platform domain.Platform
}{
	{"instagram.com", domain.PlatformInstagram},
	{"youtube.com", domain.PlatformYouTube},
	{"youtu.be", domain.PlatformYouTube},
}

// CleanURL strips scheme, leading "www.", trailing slash and query string.
// It is the canonical form used for both cache writes and cache lookups,
// and is idempotent: CleanURL(CleanURL(u)) == CleanURL(u).
func CleanURL(raw string) string {
	u := strings.TrimPrefix(raw, "http://")
	u = strings.TrimPrefix(u, "https://")
	u = strings.TrimPrefix(u, "www.")
	if i := strings.IndexByte(u, '?'); i != -1 {
		u = u[:i]
	}
	u = strings.TrimSuffix(u, "/")
	return u
}

// IsURL reports whether raw is a well-formed absolute http(s) URL.
func IsURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != "" && strings.Contains(u.Host, ".")
}

// Classify validates raw and determines which platform it belongs to.
// Returns ErrInvalidURL for malformed input and ErrUnsupportedPlatform
// when no host marker matches.
func Classify(raw string) (domain.Platform, error) {
	if !IsURL(raw) {
		return "", domain.ErrInvalidURL
	}

	cleaned := CleanURL(raw)
	for _, entry := range platformHosts {
		if strings.Contains(cleaned, entry.Marker) {
			return entry.Platform, nil
		}
	}
	return "", domain.ErrUnsupportedPlatform
}
