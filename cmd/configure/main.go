package main

import (
	"fmt"
	"os"

	"github.com/benvon/daily-agent/cmd/configure/commands"
	"github.com/benvon/daily-agent/internal/config"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewDevelopment(zap.IncreaseLevel(zap.WarnLevel))
	if err != nil {
		logger = zap.NewNop()
	}
	defer func() { _ = logger.Sync() }()

	rootCmd := commands.NewRootCmd(commands.OpenAgent(config.Load, logger), config.Load)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
