package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/FranksOps/newsfill/internal/metrics"
	"github.com/FranksOps/newsfill/pkg/httpclient"
)

// maxBody caps how much of a response is read.
const maxBody = 32 << 20

// Get performs one GET against rawURL and classifies the answer: the body on
// 200, *RateLimitedError on 429, *RequestFailedError otherwise. Every call is
// recorded in the request metrics.
func Get(ctx context.Context, c *httpclient.Client, name, rawURL string, cooldown time.Duration) ([]byte, error) {
	start := time.Now()

	resp, err := c.Get(ctx, rawURL)
	if err != nil {
		metrics.RecordRequest(name, metrics.OutcomeFailed, time.Since(start), 0)
		return nil, &RequestFailedError{Source: name, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		metrics.RecordRequest(name, metrics.OutcomeFailed, time.Since(start), len(body))
		return nil, &RequestFailedError{Source: name, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	err = Classify(name, resp, cooldown)
	outcome := metrics.OutcomeOK
	var rl *RateLimitedError
	switch {
	case errors.As(err, &rl):
		outcome = metrics.OutcomeRateLimited
	case err != nil:
		outcome = metrics.OutcomeFailed
	}
	metrics.RecordRequest(name, outcome, time.Since(start), len(body))

	if err != nil {
		return nil, err
	}
	return body, nil
}

// Classify maps a response status onto the error taxonomy. It returns nil for
// 200 OK.
func Classify(name string, resp *http.Response, cooldown time.Duration) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusTooManyRequests:
		return &RateLimitedError{
			Source:     name,
			Cooldown:   cooldown,
			RetryAfter: retryAfter(resp.Header.Get("Retry-After")),
		}
	default:
		return &RequestFailedError{
			Source:     name,
			StatusCode: resp.StatusCode,
			Err:        errors.New(http.StatusText(resp.StatusCode)),
		}
	}
}

func retryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// StatusOf extracts the HTTP status implied by an error from Fetch: 200 for
// nil, 429 for rate limiting, the recorded status for failures and 0 when no
// response was received.
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		return http.StatusTooManyRequests
	}
	var rf *RequestFailedError
	if errors.As(err, &rf) {
		return rf.StatusCode
	}
	return 0
}
