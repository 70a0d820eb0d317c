package handlers

import (
	"errors"
	"io/fs"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/photo-curator/internal/detect"
)

// AnalysisHandler handles the detection endpoints
type AnalysisHandler struct {
	svc *detect.Service
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(svc *detect.Service) *AnalysisHandler {
	return &AnalysisHandler{
		svc: svc,
	}
}

func (h *AnalysisHandler) duplicateParams(r *http.Request) (detect.DuplicateParams, bool) {
	params := h.svc.DefaultDuplicateParams()
	var ok bool
	if params.HashSize, ok = queryInt(r, "hash_size", params.HashSize); !ok {
		return params, false
	}
	if params.HammingThreshold, ok = queryInt(r, "hamming_threshold", params.HammingThreshold); !ok {
		return params, false
	}
	return params, true
}

func (h *AnalysisHandler) similarityParams(r *http.Request) (detect.SimilarityParams, bool) {
	params := h.svc.DefaultSimilarityParams()
	var ok bool
	if params.Threshold, ok = queryFloat(r, "threshold", params.Threshold); !ok {
		return params, false
	}
	return params, true
}

func (h *AnalysisHandler) outlierParams(r *http.Request) (detect.OutlierParams, bool) {
	params := h.svc.DefaultOutlierParams()
	var ok bool
	if params.Percentile, ok = queryFloat(r, "percentile", params.Percentile); !ok {
		return params, false
	}
	return params, true
}

// Duplicates finds near-identical images in a category
func (h *AnalysisHandler) Duplicates(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	params, ok := h.duplicateParams(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid query parameters")
		return
	}

	result, err := h.svc.Duplicates(r.Context(), category, params)
	if err != nil {
		h.respondAnalysisError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Similar finds clusters of visually similar images in a category
func (h *AnalysisHandler) Similar(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	params, ok := h.similarityParams(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid query parameters")
		return
	}

	result, err := h.svc.Similar(r.Context(), category, params)
	if err != nil {
		h.respondAnalysisError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Outliers flags images unusually far from their category centroid
func (h *AnalysisHandler) Outliers(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	params, ok := h.outlierParams(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid query parameters")
		return
	}

	result, err := h.svc.Outliers(r.Context(), category, params)
	if err != nil {
		h.respondAnalysisError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Combined runs all three analyses for a category in one request
func (h *AnalysisHandler) Combined(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	duplicates, ok := h.duplicateParams(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid query parameters")
		return
	}
	similarity, ok := h.similarityParams(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid query parameters")
		return
	}
	outliers, ok := h.outlierParams(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid query parameters")
		return
	}

	result, err := h.svc.Combined(r.Context(), category, detect.CombinedParams{
		Duplicates: duplicates,
		Similarity: similarity,
		Outliers:   outliers,
	})
	if err != nil {
		h.respondAnalysisError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// InvalidateCache evicts cached analysis results of a category
func (h *AnalysisHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	h.svc.InvalidateCategory(category)
	respondJSON(w, http.StatusOK, map[string]string{
		"status":   "invalidated",
		"category": category,
	})
}

// respondAnalysisError distinguishes bad parameters and unknown categories
// from internal failures.
func (h *AnalysisHandler) respondAnalysisError(w http.ResponseWriter, err error) {
	msg := err.Error()
	switch {
	case errors.Is(err, fs.ErrNotExist):
		respondError(w, http.StatusNotFound, "category not found")
	case strings.Contains(msg, "must be between"),
		strings.Contains(msg, "unknown parameter"),
		strings.Contains(msg, "invalid path component"):
		respondError(w, http.StatusBadRequest, msg)
	default:
		respondError(w, http.StatusInternalServerError, msg)
	}
}
