package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrUpstream          = errors.New("upstream platform error")

	ErrPlatformNotConnected   = fmt.Errorf("%w: platform not connected", ErrValidation)
	ErrPlatformNotPublishable = fmt.Errorf("%w: publishing is only supported for facebook", ErrValidation)

	// ErrPublishFailed marks an attempt the platform rejected or that could not reach it.
	ErrPublishFailed = fmt.Errorf("%w: publish failed", ErrUpstream)
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
