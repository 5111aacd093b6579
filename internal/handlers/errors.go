package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/review-relay/internal/dto"
	"github.com/ahmetcoskunkizilkaya/review-relay/internal/services"
	"github.com/gofiber/fiber/v2"
)

const (
	msgInvalidBody   = "invalid request body"
	msgDatabaseError = "database error"
)

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: message})
}

// respondError maps service errors to HTTP. Validation messages are passed
// through; everything else gets serverMessage.
func respondError(c *fiber.Ctx, err error, serverMessage string) error {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return badRequest(c, verr.Message)
	}

	slog.Error("request failed",
		"method", c.Method(),
		"path", c.Path(),
		"request_id", requestID(c),
		"error", err.Error(),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: serverMessage})
}
