package agent

import (
	"context"
	"errors"

	"github.com/benvon/daily-agent/internal/models"
	"github.com/benvon/daily-agent/internal/responder"
	"github.com/benvon/daily-agent/internal/services/ai"
	"github.com/benvon/daily-agent/internal/store"
	"github.com/benvon/daily-agent/internal/validation"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Response is the outcome of one chat message
type Response struct {
	Reply  string            `json:"reply"`
	Intent responder.Intent  `json:"intent"`
	Action responder.Action  `json:"action"`
	Draft  *models.TaskDraft `json:"draft,omitempty"`
	// Task is set when the message saved the open form
	Task *models.Task `json:"task,omitempty"`
	// Entries are the conversation entries this message produced, in order
	Entries []models.ConversationEntry `json:"entries"`
}

// HandleMessage processes one line of user text. Blank text is ignored and returns nil.
// The LLM fallback is asked without the state lock held.
func (a *Agent) HandleMessage(ctx context.Context, text string) (*Response, error) {
	text = validation.SanitizeText(text)
	if text == "" {
		return nil, nil
	}

	ctx, span := tracer.Start(ctx, "agent.handle_message")
	defer span.End()

	a.mu.Lock()
	start := len(a.state.Conversation)
	a.appendEntry(models.SenderUser, text)

	now := a.clk.Now()
	reply := a.generator.Generate(responder.Request{
		Text:       text,
		FormOpen:   a.draft != nil,
		TodayTasks: store.NewTaskStore(a.state.Tasks).ForDay(now),
		Patterns:   a.state.Patterns,
		Settings:   a.state.Settings,
		Now:        now,
	})
	span.SetAttributes(attribute.String("intent", string(reply.Intent)))

	resp := &Response{Intent: reply.Intent, Action: reply.Action}
	entries := append([]models.ConversationEntry(nil), a.state.Conversation[start:]...)

	switch reply.Action {
	case responder.ActionOpenForm:
		a.draft = reply.Draft
		resp.Draft = cloneDraft(reply.Draft)
	case responder.ActionSaveForm:
		entries = append(entries, a.confirmForm(ctx, resp, &reply.Text)...)
		a.persist(ctx)
		a.speak(ctx, reply.Text)
		a.mu.Unlock()
		return a.finish(resp, reply, entries), nil
	case responder.ActionCancelForm:
		a.draft = nil
	}

	var history []ai.ChatMessage
	settings := a.state.Settings
	askLLM := reply.Intent == responder.IntentDefault && a.fallback != nil
	if askLLM {
		history = ai.HistoryFromConversation(a.state.Conversation, a.historyLimit)
	}
	a.mu.Unlock()

	if askLLM {
		if text, ok := a.askFallback(ctx, history, settings); ok {
			reply.Text = text
		}
	}

	a.mu.Lock()
	entries = append(entries, a.post(reply.Text))
	a.persist(ctx)
	a.speak(ctx, reply.Text)
	a.mu.Unlock()

	return a.finish(resp, reply, entries), nil
}

// confirmForm posts the confirmation, then saves the open form. A draft that fails validation
// gets only the invalid input message and the form stays open. Caller holds mu.
func (a *Agent) confirmForm(ctx context.Context, resp *Response, text *string) []models.ConversationEntry {
	if _, err := validateDraft(*a.draft); err != nil {
		*text = invalidTaskMessage
		resp.Draft = cloneDraft(a.draft)
		return []models.ConversationEntry{a.post(*text)}
	}

	start := len(a.state.Conversation)
	a.post(*text)
	task, err := a.saveFormLocked(ctx)
	if err != nil {
		a.logger.Warn("failed_to_save_form", zap.Error(err))
		resp.Draft = cloneDraft(a.draft)
	} else {
		resp.Task = cloneTask(task)
	}
	return append([]models.ConversationEntry(nil), a.state.Conversation[start:]...)
}

func (a *Agent) finish(resp *Response, reply responder.Reply, entries []models.ConversationEntry) *Response {
	resp.Reply = reply.Text
	resp.Entries = entries
	a.logger.Debug("message_handled",
		zap.String("intent", string(reply.Intent)),
		zap.String("action", string(reply.Action)))
	return resp
}

// askFallback asks the LLM for a reply. Must be called without mu held.
func (a *Agent) askFallback(ctx context.Context, history []ai.ChatMessage, settings models.Settings) (string, bool) {
	text, err := a.fallback.Reply(ctx, history, settings)
	if err != nil {
		a.logger.Warn("fallback_reply_failed", zap.Error(err))
		return "", false
	}
	return text, true
}

// OpenForm opens the task form with draft, replacing any open draft. A nil draft opens a blank form.
func (a *Agent) OpenForm(draft *models.TaskDraft) *models.TaskDraft {
	a.mu.Lock()
	defer a.mu.Unlock()
	if draft == nil {
		draft = models.NewTaskDraft("", "")
	}
	a.draft = cloneDraft(draft)
	return cloneDraft(a.draft)
}

// CancelForm closes the task form and reports whether one was open
func (a *Agent) CancelForm() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	open := a.draft != nil
	a.draft = nil
	return open
}

// Draft returns the open form, if any
func (a *Agent) Draft() (*models.TaskDraft, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.draft == nil {
		return nil, false
	}
	return cloneDraft(a.draft), true
}

// SaveForm creates a task from the open form and closes it.
// On invalid input the form stays open and ErrInvalidTask is returned.
func (a *Agent) SaveForm(ctx context.Context) (*models.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	task, err := a.saveFormLocked(ctx)
	if err != nil {
		return nil, err
	}
	a.persist(ctx)
	return cloneTask(task), nil
}

func (a *Agent) saveFormLocked(ctx context.Context) (*models.Task, error) {
	if a.draft == nil {
		return nil, ErrNoDraft
	}
	task, err := a.createTaskLocked(*a.draft)
	if err != nil {
		return nil, err
	}
	a.draft = nil
	return task, nil
}

func cloneDraft(d *models.TaskDraft) *models.TaskDraft {
	if d == nil {
		return nil
	}
	out := *d
	out.Days = append([]string(nil), d.Days...)
	return &out
}

// IsInvalidInput reports whether err is a user input error rather than an internal failure
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidTask) ||
		errors.Is(err, ErrInvalidPattern) ||
		errors.Is(err, ErrInvalidSettings)
}
