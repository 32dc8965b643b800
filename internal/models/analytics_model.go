package models

import "time"

// AnalyticsSummary holds the counters derived from the latest snapshot.
type AnalyticsSummary struct {
	Followers  int64 `bson:"followers" json:"followers"`
	Views      int64 `bson:"views" json:"views"`
	Engagement int64 `bson:"engagement" json:"engagement"`
	PostCount  int64 `bson:"post_count" json:"post_count"`
}

type AnalyticsSnapshot struct {
	LatestAnalytics     map[string]any   `bson:"latest_analytics" json:"latest_analytics"`
	LastAnalyticsUpdate *time.Time       `bson:"last_analytics_update" json:"last_analytics_update"`
	Summary             AnalyticsSummary `bson:"summary" json:"summary"`
}

// UserAnalytics is the per-user document; platform snapshots are embedded by platform name.
type UserAnalytics struct {
	UserID    int64                         `bson:"_id" json:"user_id"`
	Platforms map[string]*AnalyticsSnapshot `bson:"platforms" json:"platforms"`
	UpdatedAt time.Time                     `bson:"updated_at" json:"updated_at"`
}
