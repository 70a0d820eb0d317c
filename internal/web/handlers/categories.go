package handlers

import (
	"net/http"

	"github.com/kozaktomas/photo-curator/internal/library"
)

// CategoriesHandler handles category listing endpoints
type CategoriesHandler struct {
	lib *library.Library
}

// NewCategoriesHandler creates a new categories handler
func NewCategoriesHandler(lib *library.Library) *CategoriesHandler {
	return &CategoriesHandler{
		lib: lib,
	}
}

// CategoryInfo describes one category directory of the library
type CategoryInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	ImageCount  int    `json:"image_count"`
	TotalSize   int64  `json:"total_size"`
}

// CategoriesResponse is the category listing response
type CategoriesResponse struct {
	Categories []CategoryInfo `json:"categories"`
	Count      int            `json:"count"`
}

// List returns all categories with their image counts
func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	names, err := h.lib.Categories()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response := CategoriesResponse{Categories: []CategoryInfo{}}
	for _, name := range names {
		files, err := h.lib.List(name)
		if err != nil {
			continue
		}
		info := CategoryInfo{
			Name:        name,
			DisplayName: library.NormalizeCategory(name),
			ImageCount:  len(files),
		}
		for _, f := range files {
			info.TotalSize += f.Size
		}
		response.Categories = append(response.Categories, info)
	}
	response.Count = len(response.Categories)

	respondJSON(w, http.StatusOK, response)
}
