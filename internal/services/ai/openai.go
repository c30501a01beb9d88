package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/benvon/daily-agent/internal/models"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

const (
	// ProviderOpenAI is the registry name of the OpenAI provider
	ProviderOpenAI = "openai"
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 30 * time.Second
	// DefaultMaxTokens caps the length of a fallback reply
	DefaultMaxTokens = 300

	// ErrNoChoicesInResponse is returned when the API response has no choices
	ErrNoChoicesInResponse = "no choices in response"
)

// OpenAIProvider answers unmatched chat messages with an OpenAI chat completion
type OpenAIProvider struct {
	client    openai.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

// NewOpenAIProvider creates a new OpenAI provider. Empty baseURL and model select the defaults.
func NewOpenAIProvider(apiKey, baseURL, model string, logger *zap.Logger, debugMode bool) *OpenAIProvider {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := &http.Client{
		Timeout: DefaultTimeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(1),
	)

	return &OpenAIProvider{
		client:    client,
		model:     model,
		logger:    logger,
		debugMode: debugMode,
	}
}

// systemPrompt describes the assistant persona for the given settings
func systemPrompt(settings models.Settings) string {
	var b strings.Builder
	b.WriteString("You are Lokha, a friendly personal daily assistant that helps the user manage their schedule and reminders. ")
	b.WriteString("Answer in one to three short sentences. Do not claim to have created, changed or deleted tasks.")
	fmt.Fprintf(&b, "\nThe user's name is %s.", settings.DisplayName())
	if settings.Timezone != "" {
		fmt.Fprintf(&b, " Their timezone is %s.", settings.Timezone)
	}
	return b.String()
}

// Reply implements Fallback
func (p *OpenAIProvider) Reply(ctx context.Context, history []ChatMessage, settings models.Settings) (string, error) {
	if len(history) == 0 {
		return "", errors.New("empty chat history")
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	messages = append(messages, openai.SystemMessage(systemPrompt(settings)))
	for _, msg := range history {
		switch msg.Role {
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}

	requestID := ExtractRequestID(ctx)
	if p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("operation", "fallback_reply"),
			zap.String("model", p.model),
			zap.Int("message_count", len(messages)),
			zap.String("last_message_preview", SanitizePrompt(history[len(history)-1].Content, false)),
			zap.String("request_id", requestID),
		)
	}

	req := openai.ChatCompletionNewParams{
		Model:     shared.ChatModel(p.model),
		Messages:  messages,
		MaxTokens: openai.Int(DefaultMaxTokens),
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)
	if err != nil {
		p.logger.Warn("llm_api_error",
			zap.String("operation", "fallback_reply"),
			zap.String("model", p.model),
			zap.Bool("rate_limited", IsRateLimitError(err)),
			zap.Bool("quota_exceeded", IsQuotaError(err)),
			zap.Duration("latency", latency),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		if apiErr := ExtractAPIError(err); apiErr != nil {
			return "", fmt.Errorf("failed to get fallback reply: %w", apiErr)
		}
		return "", fmt.Errorf("failed to get fallback reply: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New(ErrNoChoicesInResponse)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("operation", "fallback_reply"),
			zap.String("model", p.model),
			zap.Int("response_length", len(content)),
			zap.String("response_preview", SanitizeResponse(content, false)),
			zap.Int64("latency_ms", latency.Milliseconds()),
			zap.String("request_id", requestID),
		)
	}
	if content == "" {
		return "", errors.New("empty fallback reply")
	}
	return content, nil
}
