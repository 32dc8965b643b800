package queue

import (
	"time"

	"github.com/maheshrc27/socialpulse/internal/service"
)

type Queue struct {
	publisher service.Publisher
}

func NewQueue(publisher service.Publisher) *Queue {
	return &Queue{
		publisher: publisher,
	}
}

const TaskTypeProcessScheduledPosts = "scheduled_posts:process_due"

// uniqueWindow keeps at most one due batch queued or running per tick.
const uniqueWindow = 55 * time.Second

type ProcessDuePayload struct {
	TriggeredAt time.Time `json:"triggered_at"`
}
