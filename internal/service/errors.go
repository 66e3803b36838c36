package service

import (
	"errors"
	"fmt"
	"time"
)

// Error taxonomy shared by the REST handlers and the hubs. Handlers map
// these to status codes with errors.Is.
var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrRoomNotFound      = errors.New("room not found")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrValidation        = errors.New("validation failed")
	ErrRecordingActive   = errors.New("recording already active")
	ErrNoActiveRecording = errors.New("no active recording")
)

// RateLimitedError carries the retry-after hint surfaced to REST callers.
// Hub paths drop rate-limited actions silently instead.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}
