package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/socialpulse/internal/service"
	"github.com/maheshrc27/socialpulse/internal/transfer"
)

type ScheduledPostHandler struct {
	s service.ScheduledPostService
}

func NewScheduledPostHandler(service service.ScheduledPostService) *ScheduledPostHandler {
	return &ScheduledPostHandler{s: service}
}

func (h *ScheduledPostHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var in transfer.CreateScheduledPost
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Unable to parse json")
	}

	post, err := h.s.Create(c.Context(), userID, &in)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

func (h *ScheduledPostHandler) List(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var in transfer.ListScheduledPosts
	if err := c.QueryParser(&in); err != nil {
		return badRequest(c, "Invalid query parameters")
	}

	page, err := h.s.List(c.Context(), userID, &in)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(page)
}

func (h *ScheduledPostHandler) Get(c *fiber.Ctx) error {
	post, err := h.s.Get(c.Context(), GetUserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(post)
}

func (h *ScheduledPostHandler) Update(c *fiber.Ctx) error {
	var in transfer.UpdateScheduledPost
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Unable to parse json")
	}

	post, err := h.s.Update(c.Context(), GetUserID(c), c.Params("id"), &in)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(post)
}

func (h *ScheduledPostHandler) Cancel(c *fiber.Ctx) error {
	if err := h.s.Cancel(c.Context(), GetUserID(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Post cancelled",
	})
}

// PublishNow answers a failed attempt with 502 and the post as it was stored.
func (h *ScheduledPostHandler) PublishNow(c *fiber.Ctx) error {
	post, err := h.s.PublishNow(c.Context(), GetUserID(c), c.Params("id"))
	if err != nil {
		if errors.Is(err, service.ErrPublishFailed) && post != nil {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": post.ErrorMessage,
				"post":  post,
			})
		}
		return writeError(c, err)
	}

	return c.JSON(post)
}

func (h *ScheduledPostHandler) PublishOnce(c *fiber.Ctx) error {
	var in transfer.PublishOnce
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Unable to parse json")
	}

	res, err := h.s.PublishOnce(c.Context(), GetUserID(c), &in)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(res)
}

func (h *ScheduledPostHandler) History(c *fiber.Ctx) error {
	entries, err := h.s.History(c.Context(), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(entries)
}
