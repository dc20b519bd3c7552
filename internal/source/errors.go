package source

import (
	"fmt"
	"time"
)

// RateLimitedError is returned when the API answers 429. Callers pause for
// Cooldown and retry once.
type RateLimitedError struct {
	Source   string
	Cooldown time.Duration
	// RetryAfter is the server's Retry-After hint, zero when absent.
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("%s: rate limited (cooldown %s)", e.Source, e.Cooldown)
}

// RequestFailedError covers non-200 answers, transport failures and bodies
// that do not decode. StatusCode is zero when no response arrived.
type RequestFailedError struct {
	Source     string
	StatusCode int
	Err        error
}

func (e *RequestFailedError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: request failed with status %d: %v", e.Source, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: request failed: %v", e.Source, e.Err)
}

func (e *RequestFailedError) Unwrap() error { return e.Err }

// MalformedDocumentError marks a single document that could not be normalized.
type MalformedDocumentError struct {
	Source string
	Index  int
	Reason string
}

func (e *MalformedDocumentError) Error() string {
	return fmt.Sprintf("%s: malformed document %d: %s", e.Source, e.Index, e.Reason)
}
