package commands

import (
	"context"
	"fmt"

	"github.com/benvon/daily-agent/internal/agent"
	"github.com/benvon/daily-agent/internal/app"
	"github.com/benvon/daily-agent/internal/config"
	"go.uber.org/zap"
)

// Opener loads the agent a command operates on. The caller closes it.
type Opener func(ctx context.Context) (*agent.Agent, error)

// ConfigLoader loads process configuration
type ConfigLoader func() (*config.Config, error)

// OpenAgent opens the configured state backend with the same seed and delivery
// channels the server uses. Reminder ticks never run from the CLI.
func OpenAgent(loadConfig ConfigLoader, logger *zap.Logger) Opener {
	return func(ctx context.Context) (*agent.Agent, error) {
		cfg, err := loadConfig()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		seed, err := config.LoadSeed(cfg.SeedFile)
		if err != nil {
			return nil, err
		}
		persister, err := app.OpenPersister(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("open state backend: %w", err)
		}
		notifier, err := app.BuildDeliveryNotifier(cfg, logger)
		if err != nil {
			_ = persister.Close()
			return nil, fmt.Errorf("create notifier: %w", err)
		}
		fallback, err := app.BuildFallback(cfg, logger, false)
		if err != nil {
			logger.Warn("fallback_disabled", zap.Error(err))
			fallback = nil
		}
		return agent.New(ctx, agent.Options{
			Persister:    persister,
			Notifier:     notifier,
			Fallback:     fallback,
			Logger:       logger,
			SeedSettings: seed.Settings,
			SeedPatterns: seed.Patterns,
		})
	}
}

// withAgent opens the agent, runs fn and closes it
func withAgent(ctx context.Context, open Opener, fn func(a *agent.Agent) error) error {
	a, err := open(ctx)
	if err != nil {
		return err
	}
	runErr := fn(a)
	if err := a.Close(); err != nil && runErr == nil {
		return fmt.Errorf("close state backend: %w", err)
	}
	return runErr
}
