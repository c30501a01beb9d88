// Package app builds the collaborators shared by the server, worker and configure binaries.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/daily-agent/internal/config"
	"github.com/benvon/daily-agent/internal/handlers"
	"github.com/benvon/daily-agent/internal/notify"
	"github.com/benvon/daily-agent/internal/queue"
	"github.com/benvon/daily-agent/internal/services/ai"
	"github.com/benvon/daily-agent/internal/store"
	"go.uber.org/zap"
)

// Pinger is implemented by persisters and queues that can report connectivity
type Pinger interface {
	Ping(ctx context.Context) error
}

// OpenPersister opens the state backend selected by STATE_BACKEND
func OpenPersister(ctx context.Context, cfg *config.Config) (store.Persister, error) {
	switch cfg.StateBackend {
	case config.BackendFile, "":
		p, err := store.NewFilePersister(cfg.StateDir)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.BackendPostgres:
		p, err := store.NewPostgresPersister(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.BackendRedis:
		client, err := store.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return store.NewRedisPersister(client, cfg.RedisPrefix), nil
	case config.BackendMemory:
		return store.NewMemoryPersister(), nil
	default:
		return nil, fmt.Errorf("unknown state backend %q", cfg.StateBackend)
	}
}

// BuildFallback creates the LLM fallback. It returns nil when no API key is configured.
func BuildFallback(cfg *config.Config, logger *zap.Logger, debugMode bool) (ai.Fallback, error) {
	if cfg.OpenAIKey == "" {
		return nil, nil
	}

	providerType := cfg.AIProvider
	if providerType == "" {
		providerType = ai.ProviderOpenAI
	}

	if providerType == ai.ProviderOpenAI {
		return ai.NewOpenAIProvider(cfg.OpenAIKey, cfg.AIBaseURL, cfg.AIModel, logger, debugMode), nil
	}

	return ai.NewProviderRegistry().GetProvider(providerType, map[string]string{
		"api_key":  cfg.OpenAIKey,
		"model":    cfg.AIModel,
		"base_url": cfg.AIBaseURL,
	})
}

// BuildDeliveryNotifier combines the configured email and Telegram channels.
// With neither configured, alerts are only logged.
func BuildDeliveryNotifier(cfg *config.Config, logger *zap.Logger) (notify.Notifier, error) {
	var channels notify.Multi
	if cfg.EmailEnabled() {
		channels = append(channels, notify.NewEmailNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom, cfg.NotifyEmail))
	}
	if cfg.TelegramEnabled() {
		tg, err := notify.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			return nil, err
		}
		channels = append(channels, tg)
	}
	if len(channels) == 0 {
		return notify.NewLogNotifier(logger), nil
	}
	return channels, nil
}

// ConnectQueue dials RabbitMQ, retrying with exponential backoff capped at 30s
func ConnectQueue(ctx context.Context, cfg *config.Config, logger *zap.Logger, maxRetries int) (*queue.RabbitMQQueue, error) {
	const initialDelay = 2 * time.Second
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		q, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL, logger)
		if err == nil {
			logger.Info("connected_to_rabbitmq")
			return q, nil
		}
		lastErr = err

		delay := initialDelay * time.Duration(1<<uint(attempt))
		if delay > 30*time.Second {
			delay = 30 * time.Second
		}
		logger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
			zap.Duration("retry_delay", delay),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", maxRetries, lastErr)
}

// HealthChecks maps dependency names to their checks. Absent dependencies report "not configured".
func HealthChecks(persister store.Persister, jobQueue queue.JobQueue) map[string]handlers.CheckFunc {
	checks := map[string]handlers.CheckFunc{
		"state":    nil,
		"rabbitmq": nil,
	}
	if p, ok := persister.(Pinger); ok {
		checks["state"] = p.Ping
	} else if persister != nil {
		checks["state"] = func(context.Context) error { return nil }
	}
	if jobQueue != nil {
		checks["rabbitmq"] = jobQueue.HealthCheck
	}
	return checks
}
