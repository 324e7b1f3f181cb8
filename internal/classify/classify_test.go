package classify

import (
	"errors"
	"testing"

	"github.com/linkgrab/linkgrab/internal/domain"
)

func TestCleanURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"https scheme", "https://instagram.com/p/ABC123", "instagram.com/p/ABC123"},
		{"http scheme", "http://instagram.com/p/ABC123", "instagram.com/p/ABC123"},
		{"www prefix", "https://www.instagram.com/p/ABC123", "instagram.com/p/ABC123"},
		{"trailing slash", "https://instagram.com/p/ABC123/", "instagram.com/p/ABC123"},
		{"query string", "https://www.instagram.com/p/ABC123/?utm=1", "instagram.com/p/ABC123"},
		{"everything at once", "https://www.youtube.com/watch?v=xyz", "youtube.com/watch"},
		{"already clean", "instagram.com/p/ABC123", "instagram.com/p/ABC123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanURL(tt.in)
			if got != tt.want {
				t.Errorf("CleanURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanURL_Idempotent(t *testing.T) {
	urls := []string{
		"https://www.instagram.com/p/ABC123/?utm=1",
		"http://youtu.be/xyz/",
		"instagram.com/p/ABC123",
	}
	for _, u := range urls {
		once := CleanURL(u)
		twice := CleanURL(once)
		if once != twice {
			t.Errorf("CleanURL not idempotent for %q: %q != %q", u, once, twice)
		}
	}
}

func TestCleanURL_VariantsConverge(t *testing.T) {
	variants := []string{
		"https://www.instagram.com/p/ABC123/?utm=1",
		"http://www.instagram.com/p/ABC123/",
		"https://instagram.com/p/ABC123?igshid=foo",
		"instagram.com/p/ABC123",
	}
	want := "instagram.com/p/ABC123"
	for _, v := range variants {
		if got := CleanURL(v); got != want {
			t.Errorf("CleanURL(%q) = %q, want %q", v, got, want)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		want     domain.Platform
		wantErr  error
	}{
		{"instagram post", "https://www.instagram.com/p/ABC123/?utm=1", domain.PlatformInstagram, nil},
		{"youtube watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", domain.PlatformYouTube, nil},
		{"youtube short link", "https://youtu.be/dQw4w9WgXcQ", domain.PlatformYouTube, nil},
		{"unsupported platform", "https://tiktok.com/@user/video/1", "", domain.ErrUnsupportedPlatform},
		{"not a url", "hello world", "", domain.ErrInvalidURL},
		{"missing scheme", "instagram.com/p/ABC123", "", domain.ErrInvalidURL},
		{"ftp scheme", "ftp://instagram.com/p/ABC123", "", domain.ErrInvalidURL},
		{"empty", "", "", domain.ErrInvalidURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Classify(%q) error = %v, want %v", tt.in, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Classify(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
