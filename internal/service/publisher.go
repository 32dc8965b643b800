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

// outcomeWriteTimeout bounds the writes that record a finished publish attempt.
const outcomeWriteTimeout = 10 * time.Second

type Publisher interface {
	// ProcessDue publishes up to DueBatchSize due posts, oldest first.
	ProcessDue(ctx context.Context) (*transfer.BatchResult, error)
	// PublishClaimed runs one already claimed post through the adapter and persists the outcome.
	PublishClaimed(ctx context.Context, post *models.ScheduledPost) (*models.ScheduledPost, error)
	// PublishContent publishes content without a stored post.
	PublishContent(ctx context.Context, userID int64, platform string, content models.PostContent) (*transfer.PublishResult, error)
}

type publisher struct {
	posts      repository.ScheduledPostRepository
	accounts   repository.SocialAccountRepository
	history    repository.PostingHistoryRepository
	publishers map[string]PlatformPublisher
	now        func() time.Time
}

func NewPublisher(
	posts repository.ScheduledPostRepository,
	accounts repository.SocialAccountRepository,
	history repository.PostingHistoryRepository,
	publishers map[string]PlatformPublisher) Publisher {
	return &publisher{
		posts:      posts,
		accounts:   accounts,
		history:    history,
		publishers: publishers,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (p *publisher) ProcessDue(ctx context.Context) (*transfer.BatchResult, error) {
	now := p.now()
	result := &transfer.BatchResult{RanAt: now}

	due, err := p.posts.FindDue(ctx, now, DueBatchSize)
	if err != nil {
		return nil, fmt.Errorf("unable to load due posts: %w", err)
	}
	if len(due) > DueBatchSize {
		due = due[:DueBatchSize]
	}

	for _, post := range due {
		if err := ctx.Err(); err != nil {
			slog.Warn("scheduled post batch interrupted", "error", err)
			break
		}
		result.Processed++

		claimed, err := p.posts.Claim(ctx, post.ID.Hex(), p.now())
		if err != nil {
			slog.Error("unable to claim scheduled post", "post_id", post.ID.Hex(), "error", err)
			result.Failed++
			continue
		}
		if claimed == nil {
			result.Skipped++
			continue
		}

		if _, err := p.PublishClaimed(ctx, claimed); err != nil {
			slog.Error("scheduled post publish failed", "post_id", claimed.ID.Hex(), "platform", claimed.Platform, "error", err)
			result.Failed++
			continue
		}
		result.Succeeded++
	}

	slog.Info("scheduled post batch finished",
		"processed", result.Processed,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"skipped", result.Skipped)
	return result, nil
}

func (p *publisher) PublishClaimed(ctx context.Context, post *models.ScheduledPost) (*models.ScheduledPost, error) {
	res, pubErr := p.PublishContent(ctx, post.UserID, post.Platform, post.Content)
	now := p.now()
	id := post.ID.Hex()

	// The outcome is recorded even when ctx ended during the adapter call,
	// otherwise the post would stay in publishing.
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), outcomeWriteTimeout)
	defer cancel()

	if pubErr != nil {
		status, retries := failureOutcome(post)
		msg := errorMessage(pubErr)

		if err := p.posts.MarkFailed(wctx, id, status, retries, msg, now); err != nil {
			return nil, fmt.Errorf("unable to record publish failure: %w", err)
		}
		p.record(wctx, post, "", msg)

		post.Status = status
		post.RetryCount = retries
		post.ErrorMessage = msg
		post.UpdatedAt = now
		return post, fmt.Errorf("%w: %w", ErrPublishFailed, pubErr)
	}

	if err := p.posts.MarkPublished(wctx, id, now, res.ID, res.URL); err != nil {
		return nil, fmt.Errorf("unable to record published post: %w", err)
	}
	p.record(wctx, post, res.ID, "")

	post.Status = models.PostStatusPublished
	post.PublishedAt = &now
	post.PublishedPostID = res.ID
	post.PublishedPostURL = res.URL
	post.ErrorMessage = ""
	post.UpdatedAt = now
	return post, nil
}

func (p *publisher) PublishContent(ctx context.Context, userID int64, platform string, content models.PostContent) (*transfer.PublishResult, error) {
	adapter, ok := p.publishers[platform]
	if !ok {
		return nil, ErrPlatformNotPublishable
	}

	acc, err := p.accounts.GetByPlatform(ctx, userID, platform)
	if err != nil {
		return nil, fmt.Errorf("unable to load %s account: %w", platform, err)
	}
	if !acc.IsActive() {
		return nil, ErrPlatformNotConnected
	}

	return adapter.Publish(ctx, acc, content)
}

func (p *publisher) record(ctx context.Context, post *models.ScheduledPost, platformPostID, errMsg string) {
	_, err := p.history.Create(ctx, &models.PostingHistory{
		UserID:         post.UserID,
		PostID:         post.ID.Hex(),
		Platform:       post.Platform,
		PlatformPostID: platformPostID,
		ErrorMessage:   errMsg,
	})
	if err != nil {
		slog.Warn("unable to write posting history", "post_id", post.ID.Hex(), "error", err)
	}
}
