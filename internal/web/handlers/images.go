package handlers

import (
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/photo-curator/internal/library"
)

// ImagesHandler serves image files from the library
type ImagesHandler struct {
	lib *library.Library
}

// NewImagesHandler creates a new images handler
func NewImagesHandler(lib *library.Library) *ImagesHandler {
	return &ImagesHandler{
		lib: lib,
	}
}

// contentTypeByExtension maps image extensions to MIME types.
func contentTypeByExtension(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".bmp":
		return "image/bmp"
	case ".webp":
		return "image/webp"
	}
	return "application/octet-stream"
}

// Get serves a single image file
func (h *ImagesHandler) Get(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	filename := chi.URLParam(r, "filename")

	if !library.IsImageFile(filename) {
		respondError(w, http.StatusBadRequest, "not an image file")
		return
	}

	data, err := h.lib.ReadFile(category, filename)
	if err != nil {
		log.Printf("serving image %s/%s: %v", sanitizeForLog(category), sanitizeForLog(filename), err)
		respondLibraryError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentTypeByExtension(filename))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
