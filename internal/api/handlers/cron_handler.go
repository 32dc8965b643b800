package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/socialpulse/internal/service"
)

type CronHandler struct {
	p service.Publisher
}

func NewCronHandler(publisher service.Publisher) *CronHandler {
	return &CronHandler{p: publisher}
}

// ProcessScheduled runs one due batch synchronously and reports the counts.
func (h *CronHandler) ProcessScheduled(c *fiber.Ctx) error {
	res, err := h.p.ProcessDue(c.Context())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(res)
}
