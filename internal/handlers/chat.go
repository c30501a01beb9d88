package handlers

import (
	"net/http"

	"github.com/benvon/daily-agent/internal/agent"
	"github.com/benvon/daily-agent/internal/models"
	"github.com/benvon/daily-agent/internal/notify"
	"github.com/benvon/daily-agent/internal/request"
	"github.com/benvon/daily-agent/internal/services/ai"
	"github.com/benvon/daily-agent/internal/validation"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// MaxChatMessageLength bounds a single chat message
const MaxChatMessageLength = 2000

// ChatHandler serves the conversation, the task form and the voice outbox
type ChatHandler struct {
	agent  *agent.Agent
	outbox *notify.Outbox
	logger *zap.Logger
}

// NewChatHandler creates a chat handler. A nil outbox disables GET /speech.
func NewChatHandler(a *agent.Agent, outbox *notify.Outbox, logger *zap.Logger) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{agent: a, outbox: outbox, logger: logger}
}

// RegisterRoutes registers chat routes on the /api/v1 router
func (h *ChatHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/chat", h.SendMessage).Methods("POST")
	r.HandleFunc("/conversation", h.GetConversation).Methods("GET")
	r.HandleFunc("/draft", h.GetDraft).Methods("GET")
	r.HandleFunc("/draft", h.OpenDraft).Methods("POST")
	r.HandleFunc("/draft/save", h.SaveDraft).Methods("POST")
	r.HandleFunc("/draft/cancel", h.CancelDraft).Methods("POST")
	r.HandleFunc("/alarm/stop", h.StopAlarm).Methods("POST")
	r.HandleFunc("/notifications/test", h.TestNotification).Methods("POST")
	r.HandleFunc("/voice/test", h.TestVoice).Methods("POST")
	r.HandleFunc("/speech", h.TakeSpeech).Methods("GET")
}

// SendMessageRequest represents a chat message request
type SendMessageRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

// SendMessage handles one user chat message
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	ctx := ai.WithRequestID(r.Context(), request.IDFromContext(r.Context()))
	resp, err := h.agent.HandleMessage(ctx, req.Message)
	if err != nil {
		h.logger.Error("failed_to_handle_message", zap.Error(err))
		respondAgentError(w, err)
		return
	}
	if resp == nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Message is empty after sanitization")
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetConversation returns the chat log
func (h *ChatHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.agent.Conversation())
}

// DraftResponse describes the task form state
type DraftResponse struct {
	Open  bool              `json:"open"`
	Draft *models.TaskDraft `json:"draft,omitempty"`
}

// GetDraft returns the open task form, if any
func (h *ChatHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	draft, open := h.agent.Draft()
	respondJSON(w, http.StatusOK, DraftResponse{Open: open, Draft: draft})
}

// OpenDraft opens the task form. An empty body opens a blank form.
func (h *ChatHandler) OpenDraft(w http.ResponseWriter, r *http.Request) {
	draft := models.NewTaskDraft("", "")
	if r.ContentLength != 0 {
		if !decodeJSON(w, r, draft) {
			return
		}
	}
	respondJSON(w, http.StatusOK, DraftResponse{Open: true, Draft: h.agent.OpenForm(draft)})
}

// SaveDraft creates a task from the open form
func (h *ChatHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	task, err := h.agent.SaveForm(r.Context())
	if err != nil {
		respondAgentError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, task)
}

// CancelDraft closes the task form
func (h *ChatHandler) CancelDraft(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]bool{"cancelled": h.agent.CancelForm()})
}

// StopAlarm stops a running alarm. Stopping when idle is not an error.
func (h *ChatHandler) StopAlarm(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]bool{"stopped": h.agent.StopAlarm(r.Context())})
}

// TestNotification sends a test alert through the configured notifiers
func (h *ChatHandler) TestNotification(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]bool{"delivered": h.agent.TestNotification(r.Context())})
}

// TestVoice queues the voice greeting
func (h *ChatHandler) TestVoice(w http.ResponseWriter, r *http.Request) {
	if err := h.agent.TestVoice(r.Context()); err != nil {
		h.logger.Warn("failed_to_speak", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Voice output failed")
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]bool{"queued": true})
}

// SpeechResponse carries the pending utterance for a client to voice
type SpeechResponse struct {
	Pending   bool              `json:"pending"`
	Utterance *notify.Utterance `json:"utterance,omitempty"`
	Beeps     int64             `json:"beeps"`
}

// TakeSpeech hands the latest utterance to the client and clears it
func (h *ChatHandler) TakeSpeech(w http.ResponseWriter, r *http.Request) {
	if h.outbox == nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Speech output is not enabled")
		return
	}
	resp := SpeechResponse{Beeps: h.outbox.Beeps()}
	if u, ok := h.outbox.Take(); ok {
		resp.Pending = true
		resp.Utterance = &u
	}
	respondJSON(w, http.StatusOK, resp)
}
