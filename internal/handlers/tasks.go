package handlers

import (
	"bytes"
	"net/http"

	"github.com/benvon/daily-agent/internal/agent"
	"github.com/benvon/daily-agent/internal/export"
	"github.com/benvon/daily-agent/internal/models"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// TaskHandler handles task, routine and schedule requests
type TaskHandler struct {
	agent  *agent.Agent
	logger *zap.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(a *agent.Agent, logger *zap.Logger) *TaskHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskHandler{agent: a, logger: logger}
}

// RegisterRoutes registers task routes on the /api/v1 router
func (h *TaskHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/tasks", h.ListTasks).Methods("GET")
	r.HandleFunc("/tasks", h.CreateTask).Methods("POST")
	r.HandleFunc("/tasks/today", h.ListTodayTasks).Methods("GET")
	r.HandleFunc("/tasks/{id}/toggle", h.ToggleTask).Methods("POST")
	r.HandleFunc("/routines", h.AddRoutine).Methods("POST")
	r.HandleFunc("/stats", h.GetStats).Methods("GET")
	r.HandleFunc("/schedule", h.GetSchedule).Methods("GET")
	r.HandleFunc("/schedule.pdf", h.GetSchedulePDF).Methods("GET")
}

// ListTasks returns every task in insertion order
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.agent.Tasks())
}

// ListTodayTasks returns the tasks that apply today
func (h *TaskHandler) ListTodayTasks(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.agent.TodayTasks())
}

// CreateTask creates a task. reminder_enabled defaults to true when omitted.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	draft := models.NewTaskDraft("", "")
	if !decodeJSON(w, r, draft) {
		return
	}

	task, err := h.agent.CreateTask(r.Context(), *draft)
	if err != nil {
		respondAgentError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, task)
}

// ToggleTask flips a task's completion
func (h *TaskHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid task ID")
		return
	}

	task, err := h.agent.ToggleTask(r.Context(), id)
	if err != nil {
		respondAgentError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// RoutineResponse names the routine that was added
type RoutineResponse struct {
	Title string         `json:"title"`
	Tasks []*models.Task `json:"tasks"`
}

// AddRoutine adds one of the built-in routines
func (h *TaskHandler) AddRoutine(w http.ResponseWriter, r *http.Request) {
	routine, added := h.agent.AddRoutine(r.Context())
	respondJSON(w, http.StatusCreated, RoutineResponse{Title: routine.Title, Tasks: added})
}

// GetStats returns completion and screen-time figures
func (h *TaskHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.agent.Stats())
}

// GetSchedule posts today's schedule to the conversation and returns it
func (h *TaskHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"message": h.agent.ScheduleSummary(r.Context())})
}

// GetSchedulePDF renders today's schedule as a PDF
func (h *TaskHandler) GetSchedulePDF(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := export.SchedulePDF(&buf, h.agent.TodayTasks(), h.agent.Now()); err != nil {
		h.logger.Error("failed_to_render_schedule_pdf", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to render schedule")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="schedule.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
