package handlers

import (
	"net/http"

	"github.com/kozaktomas/photo-curator/internal/deletion"
	"github.com/kozaktomas/photo-curator/internal/detect"
	"github.com/kozaktomas/photo-curator/internal/library"
)

// StatusHandler reports the overall engine state
type StatusHandler struct {
	lib   *library.Library
	svc   *detect.Service
	queue *deletion.Queue
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(lib *library.Library, svc *detect.Service, queue *deletion.Queue) *StatusHandler {
	return &StatusHandler{
		lib:   lib,
		svc:   svc,
		queue: queue,
	}
}

// StatusResponse is the engine status response
type StatusResponse struct {
	Status      string            `json:"status"`
	LibraryDir  string            `json:"library_dir"`
	Categories  int               `json:"categories"`
	IndexLoaded bool              `json:"index_loaded"`
	QueueSize   int               `json:"queue_size"`
	Cache       detect.CacheStats `json:"cache"`
}

// Get returns the engine status
func (h *StatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	categories, err := h.lib.Categories()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, StatusResponse{
		Status:      "ok",
		LibraryDir:  h.lib.BaseDir(),
		Categories:  len(categories),
		IndexLoaded: h.svc.IndexLoaded(),
		QueueSize:   h.queue.Len(),
		Cache:       h.svc.CacheStats(),
	})
}

// ClearCache evicts all cached analysis results
func (h *StatusHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	cleared := h.svc.ClearCache()
	respondJSON(w, http.StatusOK, map[string]int{
		"cleared": cleared,
	})
}
