package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

// MediaHandler serves downloaded media files from the media root.
type MediaHandler struct {
	root string
}

// NewMediaHandler creates a new media handler over the media root directory.
func NewMediaHandler(root string) *MediaHandler {
	return &MediaHandler{root: root}
}

// Serve handles GET /api/v1/media/*. The wildcard path is resolved inside
// the media root; anything escaping it is rejected.
func (h *MediaHandler) Serve(w http.ResponseWriter, r *http.Request) {
	rel := chi.URLParam(r, "*")
	if rel == "" {
		writeError(w, http.StatusBadRequest, "missing media path")
		return
	}

	path := filepath.Join(h.root, filepath.FromSlash(rel))
	absRoot, err := filepath.Abs(h.root)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "media root unavailable")
		return
	}
	absPath, err := filepath.Abs(path)
	if err != nil || !strings.HasPrefix(absPath, absRoot+string(filepath.Separator)) {
		writeError(w, http.StatusBadRequest, "invalid media path")
		return
	}

	info, err := os.Stat(absPath)
	if err != nil || info.IsDir() {
		writeError(w, http.StatusNotFound, "media not found")
		return
	}

	http.ServeFile(w, r, absPath)
}
