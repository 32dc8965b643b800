package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/maheshrc27/socialpulse/internal/models"
	"github.com/maheshrc27/socialpulse/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUser int64 = 7

type postFixture struct {
	posts    *memPosts
	accounts *memAccounts
	history  *memHistory
	adapter  *stubAdapter
	svc      *scheduledPostService
}

func newPostFixture(posts ...*models.ScheduledPost) *postFixture {
	f := &postFixture{
		posts:    newMemPosts(posts...),
		accounts: newMemAccounts(activeAccount(1, testUser, models.PlatformFacebook)),
		history:  &memHistory{},
		adapter:  &stubAdapter{fail: map[string]error{}},
	}

	pub := NewPublisher(f.posts, f.accounts, f.history, map[string]PlatformPublisher{
		models.PlatformFacebook: f.adapter,
	}).(*publisher)
	pub.now = fixedNow

	svc := NewScheduledPostService(f.posts, f.accounts, &memSettings{settings: map[int64]*models.Settings{
		testUser: {UserID: testUser, Timezone: "Europe/Berlin"},
	}}, f.history, pub, 0).(*scheduledPostService)
	svc.now = fixedNow
	f.svc = svc
	return f
}

func scheduledPost(status string) *models.ScheduledPost {
	return &models.ScheduledPost{
		UserID:        testUser,
		Platform:      models.PlatformFacebook,
		Content:       models.PostContent{Message: "hello", MediaType: models.MediaTypeNone},
		ScheduledTime: testNow.Add(time.Hour),
		Status:        status,
		MaxRetries:    models.DefaultMaxRetries,
	}
}

func TestCreateScheduledPost(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a scheduled post with user timezone", func(t *testing.T) {
		f := newPostFixture()
		post, err := f.svc.Create(ctx, testUser, &transfer.CreateScheduledPost{
			Platform:      models.PlatformFacebook,
			Message:       "Launch day",
			MediaURLs:     []string{"https://cdn.example.com/a.png"},
			ScheduledTime: testNow.Add(2 * time.Hour).Format(time.RFC3339),
		})

		require.NoError(t, err)
		assert.Equal(t, models.PostStatusScheduled, post.Status)
		assert.Equal(t, models.MediaTypeImage, post.Content.MediaType)
		assert.Equal(t, "Europe/Berlin", post.Timezone)
		assert.Equal(t, models.DefaultMaxRetries, post.MaxRetries)
		assert.Zero(t, post.RetryCount)
		assert.NotNil(t, f.posts.get(post.ID.Hex()))
	})

	tests := []struct {
		name    string
		in      transfer.CreateScheduledPost
		wantErr error
	}{
		{
			name:    "time in the past",
			in:      transfer.CreateScheduledPost{Platform: "facebook", Message: "m", ScheduledTime: testNow.Add(-time.Minute).Format(time.RFC3339)},
			wantErr: ErrValidation,
		},
		{
			name:    "time equal to now",
			in:      transfer.CreateScheduledPost{Platform: "facebook", Message: "m", ScheduledTime: testNow.Format(time.RFC3339)},
			wantErr: ErrValidation,
		},
		{
			name:    "malformed time",
			in:      transfer.CreateScheduledPost{Platform: "facebook", Message: "m", ScheduledTime: "tomorrow"},
			wantErr: ErrValidation,
		},
		{
			name:    "blank message",
			in:      transfer.CreateScheduledPost{Platform: "facebook", Message: "   ", ScheduledTime: testNow.Add(time.Hour).Format(time.RFC3339)},
			wantErr: ErrValidation,
		},
		{
			name:    "platform without publishing",
			in:      transfer.CreateScheduledPost{Platform: "tiktok", Message: "m", ScheduledTime: testNow.Add(time.Hour).Format(time.RFC3339)},
			wantErr: ErrPlatformNotPublishable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPostFixture()
			_, err := f.svc.Create(ctx, testUser, &tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("platform not connected", func(t *testing.T) {
		f := newPostFixture()
		f.accounts.accounts[0].AccountStatus = models.AccountStatusRevoked

		_, err := f.svc.Create(ctx, testUser, &transfer.CreateScheduledPost{
			Platform:      models.PlatformFacebook,
			Message:       "m",
			ScheduledTime: testNow.Add(time.Hour).Format(time.RFC3339),
		})
		assert.ErrorIs(t, err, ErrPlatformNotConnected)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestListScheduledPostsPaging(t *testing.T) {
	ctx := context.Background()
	f := newPostFixture(scheduledPost(models.PostStatusScheduled), scheduledPost(models.PostStatusPublished))

	page, err := f.svc.List(ctx, testUser, &transfer.ListScheduledPosts{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Page)
	assert.Equal(t, int64(defaultPageLimit), page.Limit)
	assert.Equal(t, int64(2), page.Total)

	page, err = f.svc.List(ctx, testUser, &transfer.ListScheduledPosts{Page: -3, Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Page)
	assert.Equal(t, int64(maxPageLimit), page.Limit)

	page, err = f.svc.List(ctx, testUser, &transfer.ListScheduledPosts{Status: models.PostStatusPublished})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	_, err = f.svc.List(ctx, testUser, &transfer.ListScheduledPosts{Page: math.MaxInt64, Limit: 50})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.List(ctx, testUser, &transfer.ListScheduledPosts{Status: "draft"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetScheduledPostHidesOtherUsers(t *testing.T) {
	post := scheduledPost(models.PostStatusScheduled)
	f := newPostFixture(post)

	_, err := f.svc.Get(context.Background(), testUser+1, post.ID.Hex())
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := f.svc.Get(context.Background(), testUser, post.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)
}

func TestUpdateScheduledPost(t *testing.T) {
	ctx := context.Background()

	t.Run("edits message and time", func(t *testing.T) {
		post := scheduledPost(models.PostStatusScheduled)
		f := newPostFixture(post)
		msg := "edited"
		when := testNow.Add(3 * time.Hour).Format(time.RFC3339)

		updated, err := f.svc.Update(ctx, testUser, post.ID.Hex(), &transfer.UpdateScheduledPost{Message: &msg, ScheduledTime: &when})

		require.NoError(t, err)
		assert.Equal(t, "edited", updated.Content.Message)
		assert.Equal(t, testNow.Add(3*time.Hour), updated.ScheduledTime)
	})

	t.Run("rejects past time", func(t *testing.T) {
		post := scheduledPost(models.PostStatusScheduled)
		f := newPostFixture(post)
		when := testNow.Add(-time.Hour).Format(time.RFC3339)

		_, err := f.svc.Update(ctx, testUser, post.ID.Hex(), &transfer.UpdateScheduledPost{ScheduledTime: &when})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("rejects posts that left scheduled", func(t *testing.T) {
		post := scheduledPost(models.PostStatusPublished)
		f := newPostFixture(post)
		msg := "late edit"

		_, err := f.svc.Update(ctx, testUser, post.ID.Hex(), &transfer.UpdateScheduledPost{Message: &msg})
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestCancelScheduledPost(t *testing.T) {
	ctx := context.Background()

	t.Run("from scheduled", func(t *testing.T) {
		post := scheduledPost(models.PostStatusScheduled)
		f := newPostFixture(post)

		require.NoError(t, f.svc.Cancel(ctx, testUser, post.ID.Hex()))
		assert.Equal(t, models.PostStatusCancelled, f.posts.get(post.ID.Hex()).Status)
	})

	for _, status := range []string{
		models.PostStatusPublished,
		models.PostStatusCancelled,
		models.PostStatusPublishing,
		models.PostStatusFailed,
	} {
		t.Run("rejected from "+status, func(t *testing.T) {
			post := scheduledPost(status)
			f := newPostFixture(post)

			err := f.svc.Cancel(ctx, testUser, post.ID.Hex())
			assert.ErrorIs(t, err, ErrInvalidTransition)
			assert.Equal(t, status, f.posts.get(post.ID.Hex()).Status)
		})
	}
}

func TestPublishNow(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes and records the permalink", func(t *testing.T) {
		post := scheduledPost(models.PostStatusScheduled)
		f := newPostFixture(post)

		got, err := f.svc.PublishNow(ctx, testUser, post.ID.Hex())

		require.NoError(t, err)
		assert.Equal(t, models.PostStatusPublished, got.Status)
		assert.Equal(t, "https://www.facebook.com/123_456", got.PublishedPostURL)
		stored := f.posts.get(post.ID.Hex())
		assert.Equal(t, models.PostStatusPublished, stored.Status)
		assert.Equal(t, testNow, *stored.PublishedAt)
		require.Len(t, f.history.entries, 1)
		assert.Equal(t, "123_456", f.history.entries[0].PlatformPostID)
	})

	t.Run("failure returns the updated post", func(t *testing.T) {
		post := scheduledPost(models.PostStatusScheduled)
		f := newPostFixture(post)
		f.adapter.fail["hello"] = errors.New("facebook: (#200) permission denied")

		got, err := f.svc.PublishNow(ctx, testUser, post.ID.Hex())

		assert.ErrorIs(t, err, ErrPublishFailed)
		require.NotNil(t, got)
		assert.Equal(t, models.PostStatusScheduled, got.Status)
		assert.Equal(t, 1, got.RetryCount)
		assert.Contains(t, got.ErrorMessage, "permission denied")
	})

	t.Run("published post cannot be published again", func(t *testing.T) {
		post := scheduledPost(models.PostStatusPublished)
		f := newPostFixture(post)

		_, err := f.svc.PublishNow(ctx, testUser, post.ID.Hex())
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Zero(t, f.adapter.calls)
	})

	t.Run("claim lost to the scheduler", func(t *testing.T) {
		post := scheduledPost(models.PostStatusScheduled)
		f := newPostFixture(post)
		f.posts.stolen[post.ID.Hex()] = true

		_, err := f.svc.PublishNow(ctx, testUser, post.ID.Hex())
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Zero(t, f.adapter.calls)
	})
}

func TestPublishOnce(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes without storing", func(t *testing.T) {
		f := newPostFixture()
		res, err := f.svc.PublishOnce(ctx, testUser, &transfer.PublishOnce{Platform: "facebook", Message: "now"})

		require.NoError(t, err)
		assert.Equal(t, "123_456", res.ID)
		assert.Empty(t, f.posts.posts)
	})

	t.Run("adapter error is a publish failure", func(t *testing.T) {
		f := newPostFixture()
		f.adapter.fail["now"] = errors.New("boom")

		_, err := f.svc.PublishOnce(ctx, testUser, &transfer.PublishOnce{Platform: "facebook", Message: "now"})
		assert.ErrorIs(t, err, ErrPublishFailed)
	})

	t.Run("not connected stays a validation error", func(t *testing.T) {
		f := newPostFixture()
		f.accounts.accounts = nil

		_, err := f.svc.PublishOnce(ctx, testUser, &transfer.PublishOnce{Platform: "facebook", Message: "now"})
		assert.ErrorIs(t, err, ErrPlatformNotConnected)
		assert.NotErrorIs(t, err, ErrPublishFailed)
	})
}

func TestHistoryListsAttempts(t *testing.T) {
	post := scheduledPost(models.PostStatusScheduled)
	f := newPostFixture(post)

	entries, err := f.svc.History(context.Background(), testUser)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = f.svc.PublishNow(context.Background(), testUser, post.ID.Hex())
	require.NoError(t, err)

	entries, err = f.svc.History(context.Background(), testUser)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, post.ID.Hex(), entries[0].PostID)
}
