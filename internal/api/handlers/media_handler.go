package handlers

import (
	"io"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/socialpulse/internal/service"
)

type MediaHandler struct {
	s service.MediaService
}

func NewMediaHandler(service service.MediaService) *MediaHandler {
	return &MediaHandler{s: service}
}

func (h *MediaHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "No file selected")
	}
	if fileHeader.Size > service.MaxUploadSize {
		return badRequest(c, "File is too large")
	}

	file, err := fileHeader.Open()
	if err != nil {
		slog.Info(err.Error())
		return badRequest(c, "Unable to read file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		slog.Info(err.Error())
		return badRequest(c, "Unable to read file")
	}

	asset, err := h.s.Upload(c.Context(), GetUserID(c), fileHeader.Filename, data)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(asset)
}

func (h *MediaHandler) List(c *fiber.Ctx) error {
	assets, err := h.s.List(c.Context(), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(assets)
}
