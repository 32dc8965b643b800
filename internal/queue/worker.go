package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/goccy/go-json"
	"github.com/hibiken/asynq"
)

func (j *Queue) HandleProcessDueTask(ctx context.Context, task *asynq.Task) error {
	var payload ProcessDuePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("invalid payload: %w: %w", err, asynq.SkipRetry)
	}

	result, err := j.publisher.ProcessDue(ctx)
	if err != nil {
		slog.Error("due batch failed", "triggered_at", payload.TriggeredAt, "error", err)
		return err
	}

	slog.Info("due batch processed",
		"triggered_at", payload.TriggeredAt,
		"processed", result.Processed,
		"succeeded", result.Succeeded,
		"failed", result.Failed)
	return nil
}
