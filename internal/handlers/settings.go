package handlers

import (
	"net/http"
	"strconv"

	"github.com/benvon/daily-agent/internal/agent"
	"github.com/gorilla/mux"
)

// SettingsHandler handles settings and trained pattern requests
type SettingsHandler struct {
	agent *agent.Agent
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(a *agent.Agent) *SettingsHandler {
	return &SettingsHandler{agent: a}
}

// RegisterRoutes registers settings routes on the /api/v1 router
func (h *SettingsHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/settings", h.GetSettings).Methods("GET")
	r.HandleFunc("/settings", h.UpdateSettings).Methods("PUT")
	r.HandleFunc("/patterns", h.ListPatterns).Methods("GET")
	r.HandleFunc("/patterns", h.AddPattern).Methods("POST")
	r.HandleFunc("/patterns/{index}", h.DeletePattern).Methods("DELETE")
}

// GetSettings returns the current settings
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.agent.Settings())
}

// UpdateSettings replaces the settings. Omitted fields keep their current values.
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	settings := h.agent.Settings()
	if !decodeJSON(w, r, &settings) {
		return
	}

	saved, err := h.agent.SaveSettings(r.Context(), settings)
	if err != nil {
		respondAgentError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

// ListPatterns returns trained patterns in match order
func (h *SettingsHandler) ListPatterns(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.agent.Patterns())
}

// AddPatternRequest represents a training lesson
type AddPatternRequest struct {
	Trigger  string `json:"trigger"`
	Response string `json:"response"`
}

// AddPattern appends a trained pattern
func (h *SettingsHandler) AddPattern(w http.ResponseWriter, r *http.Request) {
	var req AddPatternRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	pattern, err := h.agent.AddPattern(r.Context(), req.Trigger, req.Response)
	if err != nil {
		respondAgentError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, pattern)
}

// DeletePattern removes the pattern at the given index
func (h *SettingsHandler) DeletePattern(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid pattern index")
		return
	}

	removed, err := h.agent.DeletePattern(r.Context(), index)
	if err != nil {
		respondAgentError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, removed)
}
