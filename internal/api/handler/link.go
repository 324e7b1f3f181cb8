package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/linkgrab/linkgrab/internal/domain"
	"github.com/linkgrab/linkgrab/internal/service"
)

const defaultListLimit = 50

// LinkHandler exposes the dedup cache to operators.
type LinkHandler struct {
	stats *service.StatsService
}

// NewLinkHandler creates a new link handler.
func NewLinkHandler(stats *service.StatsService) *LinkHandler {
	return &LinkHandler{stats: stats}
}

// LinkResponse is the JSON shape of one recorded link.
type LinkResponse struct {
	ID        int64  `json:"id"`
	URL       string `json:"url"`
	Platform  string `json:"platform"`
	FileID    int64  `json:"file_id"`
	UserID    int64  `json:"user_id"`
	CreatedAt string `json:"created_at"`
}

// FileResponse is the JSON shape of a downloaded file record.
type FileResponse struct {
	ID           int64  `json:"id"`
	Kind         string `json:"kind"`
	Path         string `json:"path"`
	Handle       string `json:"handle,omitempty"`
	DownloadedAt string `json:"downloaded_at"`
}

// LookupResponse pairs a link with its file.
type LookupResponse struct {
	Link LinkResponse `json:"link"`
	File FileResponse `json:"file"`
}

// Stats handles GET /api/v1/stats.
func (h *LinkHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "stats unavailable")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// List handles GET /api/v1/links?limit=N.
func (h *LinkHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	links, err := h.stats.RecentLinks(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list failed")
		return
	}

	out := make([]LinkResponse, 0, len(links))
	for _, link := range links {
		out = append(out, toLinkResponse(link))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"links": out, "count": len(out)})
}

// Lookup handles GET /api/v1/links/lookup?url=... and applies the same URL
// normalization the pipeline uses, so any spelling of a recorded link hits.
func (h *LinkHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		writeError(w, http.StatusBadRequest, "missing url parameter")
		return
	}

	link, file, err := h.stats.LookupLink(r.Context(), rawURL)
	if errors.Is(err, domain.ErrLinkNotFound) {
		writeError(w, http.StatusNotFound, "link not recorded")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, LookupResponse{
		Link: toLinkResponse(link),
		File: FileResponse{
			ID:           file.ID,
			Kind:         string(file.Kind),
			Path:         file.Path,
			Handle:       file.FileID,
			DownloadedAt: file.DownloadedAt.UTC().Format(time.RFC3339),
		},
	})
}

func toLinkResponse(link *domain.Link) LinkResponse {
	return LinkResponse{
		ID:        link.ID,
		URL:       link.URL,
		Platform:  string(link.Platform),
		FileID:    link.FileID,
		UserID:    link.UserID,
		CreatedAt: link.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
