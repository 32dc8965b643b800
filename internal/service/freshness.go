package service

import "time"

// AnalyticsTTL is how long a cached analytics snapshot counts as fresh.
const AnalyticsTTL = time.Hour

func ShouldRefetch(lastUpdate *time.Time, now time.Time) bool {
	if lastUpdate == nil || lastUpdate.IsZero() {
		return true
	}
	return now.Sub(*lastUpdate) >= AnalyticsTTL
}
