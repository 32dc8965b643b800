package transfer

import (
	"time"

	"github.com/maheshrc27/socialpulse/internal/models"
)

type DateRange struct {
	Since time.Time
	Until time.Time
}

func (r *DateRange) IsZero() bool {
	return r == nil || (r.Since.IsZero() && r.Until.IsZero())
}

// PlatformAnalytics is what a platform fetcher returns from a live call.
type PlatformAnalytics struct {
	Summary models.AnalyticsSummary
	Data    map[string]any
}

type AnalyticsResponse struct {
	Platform    string                  `json:"platform"`
	Cached      bool                    `json:"cached"`
	Stale       bool                    `json:"stale"`
	LastUpdated *time.Time              `json:"last_updated"`
	Summary     models.AnalyticsSummary `json:"summary"`
	Data        map[string]any          `json:"data"`
}
