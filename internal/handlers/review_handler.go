package handlers

import (
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/review-relay/internal/dto"
	"github.com/ahmetcoskunkizilkaya/review-relay/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ReviewHandler struct {
	reviewService *services.ReviewService
}

func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// Create stores a pending review and prompts the moderators. The response
// does not depend on whether the prompt was delivered.
func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, msgInvalidBody)
	}

	outcome, err := h.reviewService.Submit(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err, msgDatabaseError)
	}
	if !outcome.Notified {
		slog.Warn("review stored without moderation prompt", "review_id", outcome.Review.ID, "request_id", requestID(c))
	}

	return c.JSON(dto.SuccessResponse{Success: true})
}

// List returns approved reviews, newest first.
func (h *ReviewHandler) List(c *fiber.Ctx) error {
	reviews, err := h.reviewService.ListApproved(c.UserContext())
	if err != nil {
		return respondError(c, err, msgDatabaseError)
	}
	return c.JSON(reviews)
}

// Seed bulk-inserts reviews from a JSON array.
func (h *ReviewHandler) Seed(c *fiber.Ctx) error {
	var req []dto.SeedReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid data format")
	}

	inserted, err := h.reviewService.Seed(c.UserContext(), req)
	if err != nil {
		return respondError(c, err, msgDatabaseError)
	}

	return c.JSON(dto.SeedResponse{Success: true, Inserted: inserted})
}
