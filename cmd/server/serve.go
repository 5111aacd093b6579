package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/ahmetcoskunkizilkaya/review-relay/internal/cache"
	"github.com/ahmetcoskunkizilkaya/review-relay/internal/config"
	"github.com/ahmetcoskunkizilkaya/review-relay/internal/database"
	"github.com/ahmetcoskunkizilkaya/review-relay/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/review-relay/internal/logging"
	"github.com/ahmetcoskunkizilkaya/review-relay/internal/repository"
	"github.com/ahmetcoskunkizilkaya/review-relay/internal/routes"
	"github.com/ahmetcoskunkizilkaya/review-relay/internal/server"
	"github.com/ahmetcoskunkizilkaya/review-relay/internal/services"
	"github.com/ahmetcoskunkizilkaya/review-relay/internal/telegram"
	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(loadCfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the Telegram moderation listener",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), loadCfg())
		},
	}
}

func runServe(parent context.Context, cfg *config.Config) error {
	if err := cfg.ValidateBot(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			slog.Error("database close error", "error", err)
		}
	}()
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	stdoutHandler := logging.Setup(cfg.LogLevel)
	pgLogHandler := logging.NewPGHandler(db)
	defer pgLogHandler.Stop()
	slog.SetDefault(slog.New(logging.NewMultiHandler(stdoutHandler, pgLogHandler)))

	cleanupDone := make(chan struct{})
	defer close(cleanupDone)
	logging.StartCleanup(db, cfg.LogRetentionDays, cleanupDone)

	// Sentry error tracking
	sentryEnabled := initSentry(cfg)
	if sentryEnabled {
		defer sentry.Flush(2 * time.Second)
	}

	// Approved listing cache
	var approvedCache services.ApprovedCache
	if cfg.RedisURL != "" {
		reviewCache, err := cache.Connect(ctx, cfg.RedisURL, cfg.ReviewsCacheTTL)
		if err != nil {
			slog.Warn("redis unavailable, serving reviews uncached", "error", err)
		} else {
			defer reviewCache.Close()
			approvedCache = reviewCache
		}
	}

	// Telegram
	bot, err := telegram.NewBot(cfg.BotToken, cfg.TelegramDebug)
	if err != nil {
		return err
	}
	notifier, err := telegram.NewClient(bot, cfg.ChatID)
	if err != nil {
		return err
	}

	// Services
	repo := repository.NewReviewRepository(db)
	formService := services.NewFormService(notifier)
	reviewService := services.NewReviewService(repo, notifier, approvedCache)
	moderationService := services.NewModerationService(repo, approvedCache)

	listener := telegram.NewListener(bot, notifier, moderationService, cfg.TelegramPollTimeout)
	listenerDone := make(chan struct{})
	go func() {
		defer close(listenerDone)
		if err := listener.Run(ctx); err != nil {
			slog.Error("moderation listener failed", "error", err)
		}
	}()

	// Fiber app
	opts := server.Options{AccessLog: true}
	if sentryEnabled {
		opts.Before = append(opts.Before, sentryfiber.New(sentryfiber.Options{
			Repanic:         true,
			WaitForDelivery: false,
		}))
	}
	app := server.NewApp(cfg, opts)
	routes.Setup(app,
		handlers.NewFormHandler(formService),
		handlers.NewReviewHandler(reviewService),
		handlers.NewHealthHandler(db),
	)

	listenErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port)
		listenErr <- app.Listen(":" + cfg.Port)
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down server...")
	case err := <-listenErr:
		stop()
		<-listenerDone
		return fmt.Errorf("server failed to start: %w", err)
	}

	shutdown(app)
	<-listenerDone
	slog.Info("server stopped")
	return nil
}

func initSentry(cfg *config.Config) bool {
	if cfg.SentryDSN == "" {
		return false
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		EnableTracing:    true,
		TracesSampleRate: 0.2,
		Environment:      cfg.AppEnv,
	})
	if err != nil {
		slog.Error("sentry init failed", "error", err)
		return false
	}
	return true
}

func shutdown(app *fiber.App) {
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("server shutdown error", "error", err)
	}
}
