package job

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/maheshrc27/socialpulse/internal/models"
	"github.com/maheshrc27/socialpulse/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccounts struct {
	mu       sync.Mutex
	expiring []*models.SocialAccount
	from, to time.Time
	statuses map[int64]string
}

func (f *fakeAccounts) Upsert(ctx context.Context, tx *sql.Tx, sa *models.SocialAccount) (int64, error) {
	return 0, nil
}
func (f *fakeAccounts) GetByID(ctx context.Context, id int64) (*models.SocialAccount, error) {
	return nil, nil
}
func (f *fakeAccounts) GetByPlatform(ctx context.Context, userID int64, platform string) (*models.SocialAccount, error) {
	return nil, nil
}
func (f *fakeAccounts) ListByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	return nil, nil
}
func (f *fakeAccounts) ListByTimeInterval(ctx context.Context, initialTime, finalTime time.Time) ([]*models.SocialAccount, error) {
	f.from, f.to = initialTime, finalTime
	return f.expiring, nil
}
func (f *fakeAccounts) CheckByUserID(ctx context.Context, accountID, userID int64) (bool, error) {
	return true, nil
}
func (f *fakeAccounts) SetToken(ctx context.Context, id int64, sa *models.SocialAccount) error {
	return nil
}
func (f *fakeAccounts) SetStatus(ctx context.Context, id int64, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[id] = status
	return nil
}
func (f *fakeAccounts) Remove(ctx context.Context, id int64) error { return nil }

type fakeRefresher struct {
	mu     sync.Mutex
	failed map[int64]bool
	seen   []int64
}

func (r *fakeRefresher) RefreshToken(ctx context.Context, acc *models.SocialAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, acc.ID)
	if r.failed[acc.ID] {
		return errors.New("invalid_grant")
	}
	return nil
}

func TestRefreshTokens(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	accounts := &fakeAccounts{
		statuses: map[int64]string{},
		expiring: []*models.SocialAccount{
			{ID: 1, Platform: models.PlatformYoutube},
			{ID: 2, Platform: models.PlatformTiktok},
			{ID: 3, Platform: models.PlatformFacebook},
		},
	}
	yt := &fakeRefresher{}
	tt := &fakeRefresher{failed: map[int64]bool{2: true}}

	j := NewTokenRefreshJob(accounts, map[string]service.TokenRefresher{
		models.PlatformYoutube: yt,
		models.PlatformTiktok:  tt,
	})
	j.now = func() time.Time { return now }

	j.RefreshTokens()

	assert.Equal(t, now, accounts.from)
	assert.Equal(t, now.Add(30*time.Minute), accounts.to)
	assert.Equal(t, []int64{1}, yt.seen)
	assert.Equal(t, []int64{2}, tt.seen)
	assert.Equal(t, map[int64]string{2: models.AccountStatusExpired}, accounts.statuses)
}

type fakeEnqueuer struct {
	calls int
	err   error
}

func (f *fakeEnqueuer) EnqueueProcessDue(ctx context.Context) error {
	f.calls++
	_, ok := ctx.Deadline()
	if !ok {
		return errors.New("missing deadline")
	}
	return f.err
}

func TestProcessDueJob(t *testing.T) {
	enq := &fakeEnqueuer{}
	NewProcessDueJob(enq).Run()
	require.Equal(t, 1, enq.calls)

	enq.err = errors.New("redis unavailable")
	NewProcessDueJob(enq).Run()
	assert.Equal(t, 2, enq.calls)
}
