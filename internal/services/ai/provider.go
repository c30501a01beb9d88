package ai

import (
	"context"

	"github.com/benvon/daily-agent/internal/models"
)

// Fallback produces a free-form reply when no built-in intent matched
type Fallback interface {
	// Reply answers the last user message in history
	Reply(ctx context.Context, history []ChatMessage, settings models.Settings) (string, error)
}

// ChatMessage represents a message in a chat conversation
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Chat roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// HistoryFromConversation converts the most recent conversation entries into chat messages
func HistoryFromConversation(entries []models.ConversationEntry, limit int) []ChatMessage {
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	out := make([]ChatMessage, 0, len(entries))
	for _, e := range entries {
		role := RoleUser
		if e.Sender == models.SenderAgent {
			role = RoleAssistant
		}
		out = append(out, ChatMessage{Role: role, Content: e.Message})
	}
	return out
}

// ProviderFactory creates a fallback provider from string config
type ProviderFactory func(config map[string]string) (Fallback, error)

// ProviderRegistry stores available AI providers
type ProviderRegistry struct {
	providers map[string]ProviderFactory
}

// NewProviderRegistry creates a registry with the built-in providers
func NewProviderRegistry() *ProviderRegistry {
	r := &ProviderRegistry{providers: make(map[string]ProviderFactory)}
	r.Register(ProviderOpenAI, func(config map[string]string) (Fallback, error) {
		return NewOpenAIProvider(config["api_key"], config["base_url"], config["model"], nil, false), nil
	})
	return r
}

// Register registers a provider factory
func (r *ProviderRegistry) Register(name string, factory ProviderFactory) {
	r.providers[name] = factory
}

// GetProvider gets a provider by name
func (r *ProviderRegistry) GetProvider(name string, config map[string]string) (Fallback, error) {
	factory, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}

	return factory(config)
}

// ErrProviderNotFound is returned when a provider is not found
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return "AI provider not found: " + e.Name
}
