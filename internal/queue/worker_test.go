package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/maheshrc27/socialpulse/internal/models"
	"github.com/maheshrc27/socialpulse/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPublisher struct {
	calls int
	err   error
}

func (p *stubPublisher) ProcessDue(ctx context.Context) (*transfer.BatchResult, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &transfer.BatchResult{Processed: 2, Succeeded: 2}, nil
}

func (p *stubPublisher) PublishClaimed(ctx context.Context, post *models.ScheduledPost) (*models.ScheduledPost, error) {
	return post, nil
}

func (p *stubPublisher) PublishContent(ctx context.Context, userID int64, platform string, content models.PostContent) (*transfer.PublishResult, error) {
	return &transfer.PublishResult{}, nil
}

func TestHandleProcessDueTask(t *testing.T) {
	t.Run("runs one batch", func(t *testing.T) {
		pub := &stubPublisher{}
		task, err := newProcessDueTask(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
		require.NoError(t, err)

		err = NewQueue(pub).HandleProcessDueTask(context.Background(), task)

		require.NoError(t, err)
		assert.Equal(t, 1, pub.calls)
	})

	t.Run("batch error is returned", func(t *testing.T) {
		pub := &stubPublisher{err: errors.New("mongo down")}
		task, err := newProcessDueTask(time.Now())
		require.NoError(t, err)

		err = NewQueue(pub).HandleProcessDueTask(context.Background(), task)

		assert.EqualError(t, err, "mongo down")
	})

	t.Run("bad payload is not retried", func(t *testing.T) {
		pub := &stubPublisher{}
		task := asynq.NewTask(TaskTypeProcessScheduledPosts, []byte("{"))

		err := NewQueue(pub).HandleProcessDueTask(context.Background(), task)

		require.Error(t, err)
		assert.ErrorIs(t, err, asynq.SkipRetry)
		assert.Zero(t, pub.calls)
	})
}

func TestNewProcessDueTask(t *testing.T) {
	task, err := newProcessDueTask(time.Now())
	require.NoError(t, err)
	assert.Equal(t, TaskTypeProcessScheduledPosts, task.Type())
	assert.Contains(t, string(task.Payload()), "triggered_at")
}
