package deoldify

import (
	"errors"
	"fmt"
	"time"
)

// ErrMalformedResponse means the service answered 2xx with a body that
// matches neither accepted shape (raw image bytes or JSON envelope).
var ErrMalformedResponse = errors.New("invalid response format from deoldify API")

// UpstreamError is a non-2xx answer from the colorization service.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("deoldify API error: %d %s", e.StatusCode, e.Body)
}

// TimeoutError means the call exceeded the configured deadline.
// The deadline is part of the message so it ends up in the record's
// error_message for the user to see.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("deoldify API timeout after %s", e.Timeout)
}
