package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/maheshrc27/socialpulse/internal/models"
	"github.com/maheshrc27/socialpulse/internal/repository"
	"github.com/maheshrc27/socialpulse/internal/transfer"
	"github.com/maheshrc27/socialpulse/pkg/utils"
)

const (
	maxMessageLength = 5000
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type ScheduledPostService interface {
	Create(ctx context.Context, userID int64, in *transfer.CreateScheduledPost) (*models.ScheduledPost, error)
	List(ctx context.Context, userID int64, in *transfer.ListScheduledPosts) (*transfer.ScheduledPostPage, error)
	Get(ctx context.Context, userID int64, id string) (*models.ScheduledPost, error)
	Update(ctx context.Context, userID int64, id string, in *transfer.UpdateScheduledPost) (*models.ScheduledPost, error)
	Cancel(ctx context.Context, userID int64, id string) error
	PublishNow(ctx context.Context, userID int64, id string) (*models.ScheduledPost, error)
	PublishOnce(ctx context.Context, userID int64, in *transfer.PublishOnce) (*transfer.PublishResult, error)
	History(ctx context.Context, userID int64) ([]*models.PostingHistory, error)
}

type scheduledPostService struct {
	posts      repository.ScheduledPostRepository
	accounts   repository.SocialAccountRepository
	settings   repository.SettingsRepository
	history    repository.PostingHistoryRepository
	publisher  Publisher
	maxRetries int
	now        func() time.Time
}

func NewScheduledPostService(
	posts repository.ScheduledPostRepository,
	accounts repository.SocialAccountRepository,
	settings repository.SettingsRepository,
	history repository.PostingHistoryRepository,
	publisher Publisher,
	maxRetries int) ScheduledPostService {
	if maxRetries <= 0 {
		maxRetries = models.DefaultMaxRetries
	}
	return &scheduledPostService{
		posts:      posts,
		accounts:   accounts,
		settings:   settings,
		history:    history,
		publisher:  publisher,
		maxRetries: maxRetries,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func parseScheduledTime(raw string, now time.Time) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, validationError("scheduled_time must be an RFC3339 timestamp")
	}

	t = t.UTC()
	if !t.After(now) {
		return time.Time{}, validationError("scheduled_time must be in the future")
	}
	return t, nil
}

func validateMessage(msg string) error {
	if strings.TrimSpace(msg) == "" {
		return validationError("message is required")
	}
	if utf8.RuneCountInString(msg) > maxMessageLength {
		return validationError("message exceeds %d characters", maxMessageLength)
	}
	return nil
}

func inferMediaType(mediaType, link string, mediaURLs []string) string {
	switch {
	case mediaType != "":
		return mediaType
	case len(mediaURLs) > 0:
		return models.MediaTypeImage
	case link != "":
		return models.MediaTypeLink
	default:
		return models.MediaTypeNone
	}
}

func (s *scheduledPostService) requireConnected(ctx context.Context, userID int64, platform string) error {
	acc, err := s.accounts.GetByPlatform(ctx, userID, platform)
	if err != nil {
		return err
	}
	if !acc.IsActive() {
		return fmt.Errorf("%w: %s", ErrPlatformNotConnected, platform)
	}
	return nil
}

func (s *scheduledPostService) userTimezone(ctx context.Context, userID int64) string {
	settings, isExist, err := s.settings.GetByUserID(ctx, userID)
	if err != nil || !isExist || settings.Timezone == "" {
		return defaultTimezone
	}
	return settings.Timezone
}

func (s *scheduledPostService) Create(ctx context.Context, userID int64, in *transfer.CreateScheduledPost) (*models.ScheduledPost, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, validationError("%s", err.Error())
	}
	if err := validateMessage(in.Message); err != nil {
		return nil, err
	}

	now := s.now()
	scheduledTime, err := parseScheduledTime(in.ScheduledTime, now)
	if err != nil {
		return nil, err
	}

	if in.Platform != models.PlatformFacebook {
		return nil, ErrPlatformNotPublishable
	}
	if err := s.requireConnected(ctx, userID, in.Platform); err != nil {
		return nil, err
	}

	timezone := in.Timezone
	if timezone == "" {
		timezone = s.userTimezone(ctx, userID)
	}

	post := &models.ScheduledPost{
		UserID:   userID,
		Platform: in.Platform,
		Content: models.PostContent{
			Message:   in.Message,
			Link:      in.Link,
			MediaURLs: in.MediaURLs,
			MediaType: inferMediaType(in.MediaType, in.Link, in.MediaURLs),
		},
		ScheduledTime: scheduledTime,
		Timezone:      timezone,
		Status:        models.PostStatusScheduled,
		MaxRetries:    s.maxRetries,
		AIGenerated:   in.AIGenerated,
		AIPrompt:      in.AIPrompt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if post.Content.MediaURLs == nil {
		post.Content.MediaURLs = []string{}
	}

	if _, err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *scheduledPostService) List(ctx context.Context, userID int64, in *transfer.ListScheduledPosts) (*transfer.ScheduledPostPage, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, validationError("%s", err.Error())
	}

	page, limit := in.Page, in.Limit
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if page-1 > math.MaxInt64/limit {
		return nil, validationError("page %d is out of range", page)
	}

	posts, total, err := s.posts.List(ctx, repository.ScheduledPostFilter{
		UserID:   userID,
		Status:   in.Status,
		Platform: in.Platform,
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return nil, err
	}

	return &transfer.ScheduledPostPage{Posts: posts, Total: total, Page: page, Limit: limit}, nil
}

// Get returns the post only to its owner; anyone else sees not found.
func (s *scheduledPostService) Get(ctx context.Context, userID int64, id string) (*models.ScheduledPost, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil || post.UserID != userID {
		return nil, fmt.Errorf("%w: scheduled post %s", ErrNotFound, id)
	}
	return post, nil
}

func (s *scheduledPostService) Update(ctx context.Context, userID int64, id string, in *transfer.UpdateScheduledPost) (*models.ScheduledPost, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, validationError("%s", err.Error())
	}

	current, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if current.Status != models.PostStatusScheduled {
		return nil, fmt.Errorf("%w: only scheduled posts can be edited (status %s)", ErrInvalidTransition, current.Status)
	}

	now := s.now()
	update := &models.ScheduledPostUpdate{
		Message:   in.Message,
		Link:      in.Link,
		MediaURLs: in.MediaURLs,
		MediaType: in.MediaType,
		Timezone:  in.Timezone,
	}

	if in.Message != nil {
		if err := validateMessage(*in.Message); err != nil {
			return nil, err
		}
	}
	if in.ScheduledTime != nil {
		t, err := parseScheduledTime(*in.ScheduledTime, now)
		if err != nil {
			return nil, err
		}
		update.ScheduledTime = &t
	}

	updated, err := s.posts.UpdateScheduled(ctx, id, userID, update, now)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// Claimed or cancelled between the read and the write.
		return nil, fmt.Errorf("%w: post is no longer scheduled", ErrInvalidTransition)
	}
	return updated, nil
}

func (s *scheduledPostService) Cancel(ctx context.Context, userID int64, id string) error {
	post, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := checkTransition(post.Status, models.PostStatusCancelled); err != nil {
		return err
	}

	ok, err := s.posts.Cancel(ctx, id, userID, s.now())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: post is no longer scheduled", ErrInvalidTransition)
	}
	return nil
}

func (s *scheduledPostService) PublishNow(ctx context.Context, userID int64, id string) (*models.ScheduledPost, error) {
	post, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(post.Status, models.PostStatusPublishing); err != nil {
		return nil, err
	}
	if err := s.requireConnected(ctx, userID, post.Platform); err != nil {
		return nil, err
	}

	claimed, err := s.posts.Claim(ctx, id, s.now())
	if err != nil {
		return nil, err
	}
	if claimed == nil {
		return nil, fmt.Errorf("%w: post is already being published", ErrInvalidTransition)
	}

	return s.publisher.PublishClaimed(ctx, claimed)
}

func (s *scheduledPostService) PublishOnce(ctx context.Context, userID int64, in *transfer.PublishOnce) (*transfer.PublishResult, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, validationError("%s", err.Error())
	}
	if err := validateMessage(in.Message); err != nil {
		return nil, err
	}
	if in.Platform != models.PlatformFacebook {
		return nil, ErrPlatformNotPublishable
	}

	content := models.PostContent{
		Message:   in.Message,
		Link:      in.Link,
		MediaURLs: in.MediaURLs,
		MediaType: inferMediaType(in.MediaType, in.Link, in.MediaURLs),
	}

	res, err := s.publisher.PublishContent(ctx, userID, in.Platform, content)
	if err != nil {
		if isClientError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return res, nil
}

const historyLimit = 100

// History lists the most recent publish attempts, newest first.
func (s *scheduledPostService) History(ctx context.Context, userID int64) ([]*models.PostingHistory, error) {
	entries, err := s.history.ListByUserID(ctx, userID, historyLimit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*models.PostingHistory{}
	}
	return entries, nil
}

func isClientError(err error) bool {
	for _, target := range []error{ErrValidation, ErrNotFound, ErrInvalidTransition, ErrUnauthorized} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
