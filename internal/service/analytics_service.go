package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/maheshrc27/socialpulse/internal/models"
	"github.com/maheshrc27/socialpulse/internal/repository"
	"github.com/maheshrc27/socialpulse/internal/transfer"
)

type AnalyticsService interface {
	// GetPlatformAnalytics serves the cached snapshot while it is fresh and fetches live otherwise.
	GetPlatformAnalytics(ctx context.Context, userID int64, platform string, refresh bool, dr *transfer.DateRange) (*transfer.AnalyticsResponse, error)
	Overview(ctx context.Context, userID int64) ([]*transfer.AnalyticsResponse, error)
}

type analyticsService struct {
	snapshots repository.AnalyticsRepository
	accounts  repository.SocialAccountRepository
	fetchers  map[string]AnalyticsFetcher
	now       func() time.Time
}

func NewAnalyticsService(
	snapshots repository.AnalyticsRepository,
	accounts repository.SocialAccountRepository,
	fetchers map[string]AnalyticsFetcher) AnalyticsService {
	return &analyticsService{
		snapshots: snapshots,
		accounts:  accounts,
		fetchers:  fetchers,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func snapshotResponse(platform string, snap *models.AnalyticsSnapshot, stale bool) *transfer.AnalyticsResponse {
	return &transfer.AnalyticsResponse{
		Platform:    platform,
		Cached:      true,
		Stale:       stale,
		LastUpdated: snap.LastAnalyticsUpdate,
		Summary:     snap.Summary,
		Data:        snap.LatestAnalytics,
	}
}

func (s *analyticsService) GetPlatformAnalytics(ctx context.Context, userID int64, platform string, refresh bool, dr *transfer.DateRange) (*transfer.AnalyticsResponse, error) {
	if !models.IsValidPlatform(platform) {
		return nil, validationError("unknown platform %q", platform)
	}
	if !dr.IsZero() && !dr.Since.IsZero() && !dr.Until.IsZero() && dr.Since.After(dr.Until) {
		return nil, validationError("since must be before until")
	}

	fetcher, ok := s.fetchers[platform]
	if !ok {
		return nil, validationError("analytics are not available for %s", platform)
	}

	acc, err := s.accounts.GetByPlatform(ctx, userID, platform)
	if err != nil {
		return nil, err
	}
	if !acc.IsActive() {
		return nil, fmt.Errorf("%w: %s", ErrPlatformNotConnected, platform)
	}

	now := s.now()

	// Custom ranges are always live and never replace the default snapshot.
	if !dr.IsZero() {
		live, err := fetcher.FetchAnalytics(ctx, acc, dr)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
		}
		return &transfer.AnalyticsResponse{
			Platform:    platform,
			LastUpdated: &now,
			Summary:     live.Summary,
			Data:        live.Data,
		}, nil
	}

	snap, err := s.snapshots.GetSnapshot(ctx, userID, platform)
	if err != nil {
		return nil, err
	}

	if !refresh && snap != nil && !ShouldRefetch(snap.LastAnalyticsUpdate, now) {
		return snapshotResponse(platform, snap, false), nil
	}

	live, err := fetcher.FetchAnalytics(ctx, acc, nil)
	if err != nil {
		if snap != nil {
			slog.Warn("live analytics fetch failed, serving stale snapshot", "platform", platform, "user_id", userID, "error", err)
			return snapshotResponse(platform, snap, true), nil
		}
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	fresh := &models.AnalyticsSnapshot{
		LatestAnalytics:     live.Data,
		LastAnalyticsUpdate: &now,
		Summary:             live.Summary,
	}
	if err := s.snapshots.SaveSnapshot(ctx, userID, platform, fresh); err != nil {
		slog.Error("unable to cache analytics snapshot", "platform", platform, "user_id", userID, "error", err)
	}

	return &transfer.AnalyticsResponse{
		Platform:    platform,
		LastUpdated: &now,
		Summary:     live.Summary,
		Data:        live.Data,
	}, nil
}

// Overview lists the cached snapshot of every connected platform without calling out.
func (s *analyticsService) Overview(ctx context.Context, userID int64) ([]*transfer.AnalyticsResponse, error) {
	accounts, err := s.accounts.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	all, err := s.snapshots.GetAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := []*transfer.AnalyticsResponse{}
	for _, acc := range accounts {
		if !acc.IsActive() {
			continue
		}

		var snap *models.AnalyticsSnapshot
		if all != nil {
			snap = all.Platforms[acc.Platform]
		}
		if snap == nil {
			out = append(out, &transfer.AnalyticsResponse{Platform: acc.Platform, Stale: true})
			continue
		}
		out = append(out, snapshotResponse(acc.Platform, snap, ShouldRefetch(snap.LastAnalyticsUpdate, now)))
	}
	return out, nil
}
