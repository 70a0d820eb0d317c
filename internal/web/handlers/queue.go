package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/kozaktomas/photo-curator/internal/deletion"
)

// QueueHandler handles the deletion queue endpoints
type QueueHandler struct {
	queue *deletion.Queue
}

// NewQueueHandler creates a new queue handler
func NewQueueHandler(queue *deletion.Queue) *QueueHandler {
	return &QueueHandler{
		queue: queue,
	}
}

// AddRequest is the request body for queueing files
type AddRequest struct {
	Files []AddFile `json:"files"`
}

// AddFile is one file to queue for deletion
type AddFile struct {
	Category string `json:"category"`
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// AddResponse reports how many files were queued
type AddResponse struct {
	Added  int      `json:"added"`
	Queued int      `json:"queued"`
	Errors []string `json:"errors,omitempty"`
}

// Get returns the queue contents with statistics
func (h *QueueHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.queue.Snapshot())
}

// Add queues files for deletion
func (h *QueueHandler) Add(w http.ResponseWriter, r *http.Request) {
	var request AddRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if len(request.Files) == 0 {
		respondError(w, http.StatusBadRequest, "no files given")
		return
	}

	response := AddResponse{}
	for _, file := range request.Files {
		reason, err := deletion.ParseReason(file.Reason)
		if err != nil {
			response.Errors = append(response.Errors, err.Error())
			continue
		}
		added, err := h.queue.Add(file.Category, file.Filename, reason)
		if err != nil {
			response.Errors = append(response.Errors, err.Error())
			continue
		}
		if added {
			response.Added++
		}
	}
	response.Queued = h.queue.Len()

	respondJSON(w, http.StatusOK, response)
}

// Remove drops a single entry from the queue by its path
func (h *QueueHandler) Remove(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		respondError(w, http.StatusBadRequest, "missing path parameter")
		return
	}
	if !h.queue.Remove(path) {
		respondError(w, http.StatusNotFound, "not queued")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"removed": path,
		"queued":  h.queue.Len(),
	})
}

// Clear empties the queue without deleting anything
func (h *QueueHandler) Clear(w http.ResponseWriter, r *http.Request) {
	cleared := h.queue.Clear()
	respondJSON(w, http.StatusOK, map[string]int{
		"cleared": cleared,
	})
}

// Preview describes what a confirmation would delete
func (h *QueueHandler) Preview(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.queue.Preview())
}

// Confirm deletes all queued files from disk
func (h *QueueHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	result, err := h.queue.Confirm(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	log.Printf("deletion batch %s: %d deleted, %d failed", result.BatchID, result.DeletedCount, result.FailedCount)
	respondJSON(w, http.StatusOK, result)
}
