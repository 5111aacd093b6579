package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ahmetcoskunkizilkaya/review-relay/internal/cache"
	"github.com/ahmetcoskunkizilkaya/review-relay/internal/config"
	"github.com/ahmetcoskunkizilkaya/review-relay/internal/database"
	"github.com/ahmetcoskunkizilkaya/review-relay/internal/dto"
	"github.com/ahmetcoskunkizilkaya/review-relay/internal/repository"
	"github.com/ahmetcoskunkizilkaya/review-relay/internal/services"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

func newSeedCmd(loadCfg func() *config.Config) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Bulk-insert reviews from a JSON array file",
		RunE: func(cmd *cobra.Command, args []string) error {
			reqs, err := readSeedFile(file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return runSeed(cmd.Context(), loadCfg(), reqs)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", `path to a JSON array of reviews ("-" reads stdin)`)
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readSeedFile(path string, stdin io.Reader) ([]dto.SeedReviewRequest, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var reqs []dto.SeedReviewRequest
	if err := json.Unmarshal(data, &reqs); err != nil {
		return nil, fmt.Errorf("seed file must contain a JSON array of reviews: %w", err)
	}
	return reqs, nil
}

func runSeed(ctx context.Context, cfg *config.Config, reqs []dto.SeedReviewRequest) error {
	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	var approvedCache services.ApprovedCache
	if cfg.RedisURL != "" {
		if reviewCache, err := cache.Connect(ctx, cfg.RedisURL, cfg.ReviewsCacheTTL); err == nil {
			defer reviewCache.Close()
			approvedCache = reviewCache
		} else {
			slog.Warn("redis unavailable, cached listing may be stale until it expires", "error", err)
		}
	}

	svc := services.NewReviewService(repository.NewReviewRepository(db), nil, approvedCache)
	inserted, err := svc.Seed(ctx, reqs)
	if err != nil {
		return err
	}
	slog.Info("seed completed", "inserted", inserted)
	return nil
}
