package handlers

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/socialpulse/configs"
	"github.com/maheshrc27/socialpulse/internal/service"
	"github.com/maheshrc27/socialpulse/pkg/utils"
)

const oauthStateTTL = 10 * time.Minute

type PlatformHandler struct {
	ps  service.PlatformService
	cfg config.Config
}

func NewPlatformHandler(ps service.PlatformService, cfg config.Config) *PlatformHandler {
	return &PlatformHandler{
		ps:  ps,
		cfg: cfg,
	}
}

// AddSocialAccount redirects to the platform consent screen. The state carries
// the signed-in user so the callback can attach the account.
func (h *PlatformHandler) AddSocialAccount(c *fiber.Ctx) error {
	state, err := utils.GenerateToken(h.cfg.SecretKey, fmt.Sprintf("%d", GetUserID(c)), oauthStateTTL)
	if err != nil {
		return writeError(c, err)
	}

	authURL, err := h.ps.GetAuthURL(c.Params("platform"), state)
	if err != nil {
		return writeError(c, err)
	}
	return c.Redirect(authURL)
}

func (h *PlatformHandler) CallbackHandler(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")
	platform := c.Params("platform")

	claims, err := utils.ValidateToken(h.cfg.SecretKey, state)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to validate user",
		})
	}

	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil || userID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to validate user",
		})
	}

	if err := h.ps.Connect(c.Context(), platform, code, userID); err != nil {
		slog.Error("unable to connect account", "platform", platform, "user_id", userID, "error", err)
		redirectURL := fmt.Sprintf("%s/dashboard/accounts?error=%s", h.cfg.FrontendURL, platform)
		return c.Redirect(redirectURL, fiber.StatusTemporaryRedirect)
	}

	redirectURL := fmt.Sprintf("%s/dashboard/accounts", h.cfg.FrontendURL)
	return c.Redirect(redirectURL, fiber.StatusTemporaryRedirect)
}

func (h *PlatformHandler) ListSocialAccounts(c *fiber.Ctx) error {
	accountList, err := h.ps.List(c.Context(), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(accountList)
}

func (h *PlatformHandler) DeleteSocialAccount(c *fiber.Ctx) error {
	accountID := c.QueryInt("id", 0)

	if err := h.ps.Disconnect(c.Context(), GetUserID(c), int64(accountID)); err != nil {
		return writeError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}
