// Package server builds the fiber application shared by the serve command
// and the handler tests.
package server

import (
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/review-relay/internal/config"
	"github.com/ahmetcoskunkizilkaya/review-relay/internal/dto"
	"github.com/ahmetcoskunkizilkaya/review-relay/internal/middleware"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

type Options struct {
	// AccessLog enables the per-request log line.
	AccessLog bool
	// Extra middleware installed before the global stack, e.g. Sentry.
	Before []fiber.Handler
}

func NewApp(cfg *config.Config, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:             cfg.BodyLimitBytes,
		ErrorHandler:          ErrorHandler,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		DisableStartupMessage: true,
	})

	for _, h := range opts.Before {
		app.Use(h)
	}

	app.Use(recover.New())
	app.Use(requestid.New())
	if opts.AccessLog {
		app.Use(fiberlogger.New(fiberlogger.Config{
			Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
		}))
	}
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())

	return app
}

// ErrorHandler renders errors that escape handlers. Details are exposed only
// for client errors.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{Error: message})
}
