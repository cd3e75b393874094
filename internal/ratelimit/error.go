package ratelimit

import "errors"

// RateLimitError marks an error as a venue rate-limit rejection (HTTP 429 or
// equivalent), routing it through Backoff rather than being dropped as a
// plain transient failure.
type RateLimitError struct {
	Err error
}

func (e *RateLimitError) Error() string {
	return e.Err.Error()
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// IsRateLimitError reports whether err (or anything it wraps) is a RateLimitError.
func IsRateLimitError(err error) bool {
	var rle *RateLimitError
	return errors.As(err, &rle)
}
