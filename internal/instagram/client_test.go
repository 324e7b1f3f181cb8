package instagram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/linkgrab/linkgrab/internal/config"
	"github.com/linkgrab/linkgrab/internal/domain"
	"github.com/linkgrab/linkgrab/internal/downloader"
)

func testClient(t *testing.T, baseDir string) *Client {
	t.Helper()
	dlCfg := config.DownloadConfig{
		Timeout:       5 * time.Second,
		RetryDelay:    time.Millisecond,
		MaxRetryDelay: 10 * time.Millisecond,
		UserAgent:     "test-agent",
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewClient(config.InstagramConfig{AuthMode: config.AuthAnonymous}, dlCfg, baseDir, downloader.NewHTTPDownloader(dlCfg), logger)
}

func TestExtractPostID(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"https://www.instagram.com/p/ABC123/", "ABC123", false},
		{"https://instagram.com/reel/XYZ-9/?utm=1", "XYZ-9", false},
		{"https://instagram.com/p/ABC123", "ABC123", false},
		{"https://instagram.com/", "", true},
		{"https://instagram.com/p/", "", true},
	}
	for _, tt := range tests {
		got, err := extractPostID(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("extractPostID(%q) should fail", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("extractPostID(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("extractPostID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDownloadPost_SingleImage(t *testing.T) {
	imageBytes := []byte("jpeg data")
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/p/ABC123/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("__a") != "1" {
			t.Error("metadata request must carry __a=1")
		}
		fmt.Fprintf(w, `{"items": [{"image_versions2": {"candidates": [{"url": "%s/asset.jpg"}]}}]}`, server.URL)
	})
	mux.HandleFunc("/asset.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Write(imageBytes)
	})

	baseDir := t.TempDir()
	c := testClient(t, baseDir)

	result := c.DownloadPost(context.Background(), server.URL+"/p/ABC123/")
	if result.Kind != domain.FetchSuccess {
		t.Fatalf("Kind = %v, want success (err: %v)", result.Kind, result.Err)
	}
	if result.Media.Kind != domain.MediaImage {
		t.Errorf("media kind = %s, want image", result.Media.Kind)
	}

	wantPath := filepath.Join(baseDir, "images", "ABC123.jpg")
	if result.Media.Path != wantPath {
		t.Errorf("path = %q, want %q", result.Media.Path, wantPath)
	}
	data, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("read downloaded image: %v", err)
	}
	if string(data) != string(imageBytes) {
		t.Errorf("image content mismatch")
	}
}

func TestDownloadPost_VideoTakesPrecedence(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/p/VID42/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"items": [{
			"image_versions2": {"candidates": [{"url": "%s/cover.jpg"}]},
			"video_versions": [{"url": "%s/clip.mp4"}]
		}]}`, server.URL, server.URL)
	})
	mux.HandleFunc("/clip.mp4", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("mp4 data"))
	})
	mux.HandleFunc("/cover.jpg", func(w http.ResponseWriter, r *http.Request) {
		t.Error("cover image must not be downloaded when a video is present")
	})

	baseDir := t.TempDir()
	c := testClient(t, baseDir)

	result := c.DownloadPost(context.Background(), server.URL+"/p/VID42/")
	if result.Kind != domain.FetchSuccess {
		t.Fatalf("Kind = %v, want success (err: %v)", result.Kind, result.Err)
	}
	if result.Media.Kind != domain.MediaVideo {
		t.Errorf("media kind = %s, want video", result.Media.Kind)
	}
	if result.Media.Path != filepath.Join(baseDir, "videos", "VID42.mp4") {
		t.Errorf("path = %q", result.Media.Path)
	}
}

func TestDownloadPost_Carousel(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/p/CAR77/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"items": [{"carousel_media": [
			{"image_versions2": {"candidates": [{"url": "%s/0.jpg"}]}},
			{"image_versions2": {"candidates": [{"url": "%s/1-cover.jpg"}]},
			 "video_versions": [{"url": "%s/1.mp4"}]}
		]}]}`, server.URL, server.URL, server.URL)
	})
	mux.HandleFunc("/0.jpg", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("img0")) })
	mux.HandleFunc("/1.mp4", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("vid1")) })

	baseDir := t.TempDir()
	c := testClient(t, baseDir)

	result := c.DownloadPost(context.Background(), server.URL+"/p/CAR77/")
	if result.Kind != domain.FetchSuccess {
		t.Fatalf("Kind = %v, want success (err: %v)", result.Kind, result.Err)
	}
	if result.Media.Kind != domain.MediaCarousel {
		t.Errorf("media kind = %s, want carousel", result.Media.Kind)
	}

	dir := filepath.Join(baseDir, "carousels", "CAR77")
	if result.Media.Path != dir {
		t.Errorf("path = %q, want %q", result.Media.Path, dir)
	}
	// Items numbered by position, extension by kind.
	for _, name := range []string{"0.jpg", "1.mp4"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing carousel item %s: %v", name, err)
		}
	}
}

func TestDownloadPost_CarouselItemFailureAbortsPost(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/p/CAR78/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"items": [{"carousel_media": [
			{"image_versions2": {"candidates": [{"url": "%s/ok.jpg"}]}},
			{"image_versions2": {"candidates": [{"url": "%s/broken.jpg"}]}}
		]}]}`, server.URL, server.URL)
	})
	mux.HandleFunc("/ok.jpg", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("img")) })
	mux.HandleFunc("/broken.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	c := testClient(t, t.TempDir())
	result := c.DownloadPost(context.Background(), server.URL+"/p/CAR78/")
	if result.Kind != domain.FetchDownloadFailed {
		t.Fatalf("Kind = %v, want download failed", result.Kind)
	}
}

func TestDownloadPost_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := testClient(t, t.TempDir())
	result := c.DownloadPost(context.Background(), server.URL+"/p/GONE1/")
	if result.Kind != domain.FetchNotFound {
		t.Fatalf("Kind = %v, want not found", result.Kind)
	}
}

func TestDownloadPost_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := testClient(t, t.TempDir())
	result := c.DownloadPost(context.Background(), server.URL+"/p/ERR99/")
	if result.Kind != domain.FetchDownloadFailed {
		t.Fatalf("Kind = %v, want download failed", result.Kind)
	}
}

func TestDownloadPost_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	c := testClient(t, t.TempDir())
	result := c.DownloadPost(context.Background(), server.URL+"/p/HTML5/")
	if result.Kind != domain.FetchError {
		t.Fatalf("Kind = %v, want error", result.Kind)
	}
}
