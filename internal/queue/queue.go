package queue

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/hibiken/asynq"
)

type Client struct {
	asynq *asynq.Client
}

func NewClient(c *asynq.Client) *Client {
	return &Client{asynq: c}
}

func newProcessDueTask(now time.Time) (*asynq.Task, error) {
	payload, err := json.Marshal(ProcessDuePayload{TriggeredAt: now})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeProcessScheduledPosts, payload), nil
}

// EnqueueProcessDue queues one due batch. A batch already queued inside the
// unique window is not an error.
func (c *Client) EnqueueProcessDue(ctx context.Context) error {
	task, err := newProcessDueTask(time.Now().UTC())
	if err != nil {
		return err
	}

	info, err := c.asynq.EnqueueContext(ctx, task,
		asynq.Unique(uniqueWindow),
		asynq.MaxRetry(0),
		asynq.Timeout(uniqueWindow),
	)
	if err != nil {
		if errors.Is(err, asynq.ErrDuplicateTask) {
			slog.Debug("due batch already queued")
			return nil
		}
		return err
	}

	slog.Debug("due batch queued", "task_id", info.ID)
	return nil
}
