package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/maheshrc27/socialpulse/internal/models"
	"github.com/maheshrc27/socialpulse/internal/repository"
	"github.com/maheshrc27/socialpulse/internal/service"
)

const (
	refreshWindow    = 30 * time.Minute
	concurrencyLimit = 10
)

type TokenRefreshJob struct {
	sr         repository.SocialAccountRepository
	refreshers map[string]service.TokenRefresher
	now        func() time.Time
}

func NewTokenRefreshJob(
	sr repository.SocialAccountRepository,
	refreshers map[string]service.TokenRefresher) *TokenRefreshJob {
	return &TokenRefreshJob{
		sr:         sr,
		refreshers: refreshers,
		now:        time.Now,
	}
}

// RefreshTokens renews tokens expiring within the next half hour. An account
// whose refresh fails is marked expired so it stops counting as connected.
func (c *TokenRefreshJob) RefreshTokens() {
	ctx := context.Background()

	currentTime := c.now()
	accounts, err := c.sr.ListByTimeInterval(ctx, currentTime, currentTime.Add(refreshWindow))
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, acc := range accounts {
		refresher, ok := c.refreshers[acc.Platform]
		if !ok {
			continue
		}

		wg.Add(1)
		semaphore <- struct{}{}

		go func(acc *models.SocialAccount) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if err := refresher.RefreshToken(ctx, acc); err != nil {
				slog.Warn("unable to refresh token", "platform", acc.Platform, "account_id", acc.ID, "error", err)
				if err := c.sr.SetStatus(ctx, acc.ID, models.AccountStatusExpired); err != nil {
					slog.Info(err.Error())
				}
			}
		}(acc)
	}

	wg.Wait()
}
