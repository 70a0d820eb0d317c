package handlers

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondLibraryError maps library access errors to HTTP status codes.
func respondLibraryError(w http.ResponseWriter, err error) {
	if errors.Is(err, fs.ErrNotExist) {
		respondError(w, http.StatusNotFound, "not found")
		return
	}
	respondError(w, http.StatusInternalServerError, err.Error())
}

// queryInt parses an integer query parameter, falling back to a default when
// the parameter is absent. Reports ok = false for unparseable values.
func queryInt(r *http.Request, name string, defaultVal int) (value int, ok bool) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// queryFloat parses a float query parameter, falling back to a default when
// the parameter is absent. Reports ok = false for unparseable values.
func queryFloat(r *http.Request, name string, defaultVal float64) (value float64, ok bool) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
