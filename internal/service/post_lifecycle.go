package service

import (
	"fmt"

	"github.com/maheshrc27/socialpulse/internal/models"
)

// DueBatchSize caps how many due posts a single scheduler pass handles.
const DueBatchSize = 10

var transitions = map[string][]string{
	models.PostStatusScheduled:  {models.PostStatusPublishing, models.PostStatusCancelled},
	models.PostStatusPublishing: {models.PostStatusPublished, models.PostStatusFailed, models.PostStatusScheduled},
}

func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func IsTerminal(status string) bool {
	return len(transitions[status]) == 0
}

func checkTransition(from, to string) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// failureOutcome returns the status and retry count a post moves to after a
// failed publish attempt. Below the retry limit it goes back to scheduled.
func failureOutcome(post *models.ScheduledPost) (string, int) {
	retries := post.RetryCount + 1

	maxRetries := post.MaxRetries
	if maxRetries <= 0 {
		maxRetries = models.DefaultMaxRetries
	}

	if retries >= maxRetries {
		return models.PostStatusFailed, retries
	}
	return models.PostStatusScheduled, retries
}
