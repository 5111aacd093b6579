package routes

import (
	"github.com/ahmetcoskunkizilkaya/review-relay/internal/handlers"
	"github.com/gofiber/fiber/v2"
)

func Setup(
	app *fiber.App,
	formHandler *handlers.FormHandler,
	reviewHandler *handlers.ReviewHandler,
	healthHandler *handlers.HealthHandler,
) {
	app.Get("/health", healthHandler.Check)

	// Website form
	app.Post("/form", formHandler.Submit)

	// Reviews
	app.Post("/reviews", reviewHandler.Create)
	app.Get("/reviews", reviewHandler.List)
	app.Post("/seed-reviews", reviewHandler.Seed)
}
