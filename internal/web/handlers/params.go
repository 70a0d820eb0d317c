package handlers

import (
	"net/http"

	"github.com/kozaktomas/photo-curator/internal/config"
)

// ParamsHandler exposes the analysis parameter descriptions
type ParamsHandler struct {
	params config.ParamsConfig
}

// NewParamsHandler creates a new params handler
func NewParamsHandler(params config.ParamsConfig) *ParamsHandler {
	return &ParamsHandler{
		params: params,
	}
}

// ParamsResponse lists all tunable analysis parameters
type ParamsResponse struct {
	Parameters []config.ParamInfo `json:"parameters"`
}

// Get returns the parameter descriptions the UI renders sliders from
func (h *ParamsHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, ParamsResponse{
		Parameters: h.params.Parameters,
	})
}
