package job

import (
	"context"
	"log/slog"
	"time"
)

type DueBatchEnqueuer interface {
	EnqueueProcessDue(ctx context.Context) error
}

// ProcessDueJob hands the due batch to the worker queue on every cron tick.
type ProcessDueJob struct {
	enq     DueBatchEnqueuer
	timeout time.Duration
}

func NewProcessDueJob(enq DueBatchEnqueuer) *ProcessDueJob {
	return &ProcessDueJob{enq: enq, timeout: 10 * time.Second}
}

func (j *ProcessDueJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if err := j.enq.EnqueueProcessDue(ctx); err != nil {
		slog.Error("unable to enqueue due batch", "error", err)
	}
}
