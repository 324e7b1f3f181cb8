package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/linkgrab/linkgrab/internal/domain"
	"github.com/linkgrab/linkgrab/internal/service"
)

type stubUsers struct{ count int }

func (s *stubUsers) GetByTelegramID(context.Context, int64) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}
func (s *stubUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) { return u, nil }
func (s *stubUsers) Update(context.Context, *domain.User) error                     { return nil }
func (s *stubUsers) Count(context.Context) (int, error)                             { return s.count, nil }

type stubFiles struct {
	files map[int64]*domain.File
}

func (s *stubFiles) Get(_ context.Context, id int64) (*domain.File, error) {
	if f, ok := s.files[id]; ok {
		return f, nil
	}
	return nil, domain.ErrFileNotFound
}
func (s *stubFiles) GetByFileID(context.Context, string) (*domain.File, error) {
	return nil, domain.ErrFileNotFound
}
func (s *stubFiles) Create(_ context.Context, f *domain.File) (*domain.File, error) { return f, nil }
func (s *stubFiles) Count(context.Context) (int, error)                             { return len(s.files), nil }

type stubLinks struct {
	byURL map[string]*domain.Link
}

func (s *stubLinks) GetByURL(_ context.Context, url string) (*domain.Link, error) {
	if l, ok := s.byURL[url]; ok {
		return l, nil
	}
	return nil, domain.ErrLinkNotFound
}
func (s *stubLinks) Create(_ context.Context, l *domain.Link) (*domain.Link, error) { return l, nil }
func (s *stubLinks) ListRecent(_ context.Context, limit int) ([]*domain.Link, error) {
	out := make([]*domain.Link, 0, len(s.byURL))
	for _, l := range s.byURL {
		if len(out) == limit {
			break
		}
		out = append(out, l)
	}
	return out, nil
}
func (s *stubLinks) Count(context.Context) (int, error) { return len(s.byURL), nil }

func newTestHandler() *LinkHandler {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	files := &stubFiles{files: map[int64]*domain.File{
		3: {ID: 3, Kind: domain.MediaImage, Path: "/media/instagram/images/ABC123.jpg",
			FileID: "handle-1", DownloadedAt: now},
	}}
	links := &stubLinks{byURL: map[string]*domain.Link{
		"instagram.com/p/ABC123": {
			ID: 1, URL: "instagram.com/p/ABC123", Platform: domain.PlatformInstagram,
			FileID: 3, UserID: 7, CreatedAt: now,
		},
	}}
	return NewLinkHandler(service.NewStatsService(&stubUsers{count: 2}, files, links))
}

func TestLinkHandler_Stats(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	w := httptest.NewRecorder()

	h.Stats(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var stats service.Stats
	if err := json.NewDecoder(w.Body).Decode(&stats); err != nil {
		t.Fatal(err)
	}
	if stats.Users != 2 || stats.Files != 1 || stats.Links != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestLinkHandler_Lookup_NormalizesURL(t *testing.T) {
	h := newTestHandler()
	// Raw spelling differs from the stored normalized URL.
	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/links/lookup?url=https%3A%2F%2Fwww.instagram.com%2Fp%2FABC123%2F%3Futm%3D1", nil)
	w := httptest.NewRecorder()

	h.Lookup(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
	var resp LookupResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Link.URL != "instagram.com/p/ABC123" {
		t.Errorf("link url = %q", resp.Link.URL)
	}
	if resp.File.Handle != "handle-1" {
		t.Errorf("file handle = %q", resp.File.Handle)
	}
}

func TestLinkHandler_Lookup_NotRecorded(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/links/lookup?url=https://instagram.com/p/NOPE", nil)
	w := httptest.NewRecorder()

	h.Lookup(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestLinkHandler_Lookup_MissingParam(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/links/lookup", nil)
	w := httptest.NewRecorder()

	h.Lookup(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestLinkHandler_List(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/links?limit=10", nil)
	w := httptest.NewRecorder()

	h.List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp struct {
		Links []LinkResponse `json:"links"`
		Count int            `json:"count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 1 || len(resp.Links) != 1 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestLinkHandler_List_BadLimit(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/links?limit=zero", nil)
	w := httptest.NewRecorder()

	h.List(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}
