package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/socialpulse/internal/service"
	"github.com/maheshrc27/socialpulse/internal/transfer"
)

type AIHandler struct {
	s service.AIService
}

func NewAIHandler(service service.AIService) *AIHandler {
	return &AIHandler{s: service}
}

func (h *AIHandler) GenerateCaption(c *fiber.Ctx) error {
	var in transfer.CaptionRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Unable to parse json")
	}

	res, err := h.s.GenerateCaption(c.Context(), GetUserID(c), &in)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(res)
}

func (h *AIHandler) Recommendations(c *fiber.Ctx) error {
	var in transfer.RecommendationRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Unable to parse json")
	}

	res, err := h.s.Recommendations(c.Context(), GetUserID(c), &in)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(res)
}
