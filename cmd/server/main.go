package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ahmetcoskunkizilkaya/review-relay/internal/config"
	"github.com/ahmetcoskunkizilkaya/review-relay/internal/logging"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "review-relay",
		Short:         "Website form and review relay with Telegram moderation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg = config.Load()
			logging.Setup(cfg.LogLevel)
		},
	}

	serve := newServeCmd(func() *config.Config { return cfg })
	root.AddCommand(
		serve,
		newMigrateCmd(func() *config.Config { return cfg }),
		newSeedCmd(func() *config.Config { return cfg }),
	)

	// Running the binary without a subcommand starts the server.
	root.RunE = serve.RunE
	return root
}
