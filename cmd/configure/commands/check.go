package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/daily-agent/internal/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewCheckCmd verifies that the configured backends are reachable
func NewCheckCmd(loadConfig ConfigLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check configuration and backend connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Configuration OK")

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			persister, err := app.OpenPersister(ctx, cfg)
			if err != nil {
				return fmt.Errorf("state backend %s: %w", cfg.StateBackend, err)
			}
			defer func() { _ = persister.Close() }()
			if _, err := persister.Load(ctx); err != nil {
				return fmt.Errorf("state backend %s: %w", cfg.StateBackend, err)
			}
			fmt.Fprintf(out, "State backend %s: OK\n", cfg.StateBackend)

			if cfg.QueueEnabled() {
				q, err := app.ConnectQueue(ctx, cfg, zap.NewNop(), 1)
				if err != nil {
					return err
				}
				defer func() { _ = q.Close() }()
				if err := q.HealthCheck(ctx); err != nil {
					return fmt.Errorf("rabbitmq: %w", err)
				}
				fmt.Fprintln(out, "RabbitMQ: OK")
			} else {
				fmt.Fprintln(out, "RabbitMQ: not configured, reminders are delivered by the server")
			}

			fmt.Fprintf(out, "Email delivery: %s\n", enabled(cfg.EmailEnabled()))
			fmt.Fprintf(out, "Telegram delivery: %s\n", enabled(cfg.TelegramEnabled()))
			fmt.Fprintf(out, "LLM fallback: %s\n", enabled(cfg.OpenAIKey != ""))
			return nil
		},
	}
}

func enabled(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled"
}
