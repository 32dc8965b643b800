package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/socialpulse/internal/service"
	"github.com/maheshrc27/socialpulse/internal/transfer"
)

const dateLayout = "2006-01-02"

type AnalyticsHandler struct {
	s service.AnalyticsService
}

func NewAnalyticsHandler(service service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{s: service}
}

// parseDate accepts RFC3339 or a plain date. A plain until date covers the whole day.
func parseDate(raw string, endOfDay bool) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), true
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return t, true
}

func (h *AnalyticsHandler) GetPlatformAnalytics(c *fiber.Ctx) error {
	since, ok := parseDate(c.Query("since"), false)
	if !ok {
		return badRequest(c, "since must be RFC3339 or YYYY-MM-DD")
	}
	until, ok := parseDate(c.Query("until"), true)
	if !ok {
		return badRequest(c, "until must be RFC3339 or YYYY-MM-DD")
	}

	var dr *transfer.DateRange
	if !since.IsZero() || !until.IsZero() {
		dr = &transfer.DateRange{Since: since, Until: until}
	}

	res, err := h.s.GetPlatformAnalytics(c.Context(), GetUserID(c), c.Params("platform"), c.QueryBool("refresh", false), dr)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(res)
}

func (h *AnalyticsHandler) Overview(c *fiber.Ctx) error {
	res, err := h.s.Overview(c.Context(), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(res)
}
