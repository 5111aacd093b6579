package main

import (
	"fmt"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/review-relay/internal/config"
	"github.com/ahmetcoskunkizilkaya/review-relay/internal/database"
	"github.com/spf13/cobra"
)

func newMigrateCmd(loadCfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.Connect(loadCfg())
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			slog.Info("migration completed")
			return nil
		},
	}
}
