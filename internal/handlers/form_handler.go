package handlers

import (
	"github.com/ahmetcoskunkizilkaya/review-relay/internal/dto"
	"github.com/ahmetcoskunkizilkaya/review-relay/internal/services"
	"github.com/gofiber/fiber/v2"
)

type FormHandler struct {
	formService *services.FormService
}

func NewFormHandler(formService *services.FormService) *FormHandler {
	return &FormHandler{formService: formService}
}

// Submit relays a contact form to the chat.
func (h *FormHandler) Submit(c *fiber.Ctx) error {
	var req dto.FormRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, msgInvalidBody)
	}

	if err := h.formService.Submit(c.UserContext(), &req); err != nil {
		return respondError(c, err, "failed to send the request")
	}

	return c.JSON(dto.SuccessResponse{Success: true})
}
