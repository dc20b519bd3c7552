package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/FranksOps/newsfill/pkg/httpclient"
)

func newClient(t *testing.T) *httpclient.Client {
	t.Helper()
	c, err := httpclient.New(httpclient.Config{Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c
}

func TestGet_Classification(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		retryAfter string
		check      func(t *testing.T, body []byte, err error)
	}{
		{
			name:   "ok",
			status: http.StatusOK,
			check: func(t *testing.T, body []byte, err error) {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if string(body) != `{"ok":true}` {
					t.Errorf("unexpected body %q", body)
				}
			},
		},
		{
			name:       "rate limited",
			status:     http.StatusTooManyRequests,
			retryAfter: "30",
			check: func(t *testing.T, body []byte, err error) {
				var rl *RateLimitedError
				if !errors.As(err, &rl) {
					t.Fatalf("expected RateLimitedError, got %v", err)
				}
				if rl.Cooldown != time.Minute {
					t.Errorf("expected source cooldown of 1m, got %s", rl.Cooldown)
				}
				if rl.RetryAfter != 30*time.Second {
					t.Errorf("expected Retry-After of 30s, got %s", rl.RetryAfter)
				}
			},
		},
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			check: func(t *testing.T, body []byte, err error) {
				var rf *RequestFailedError
				if !errors.As(err, &rf) {
					t.Fatalf("expected RequestFailedError, got %v", err)
				}
				if rf.StatusCode != http.StatusUnauthorized {
					t.Errorf("expected status 401, got %d", rf.StatusCode)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.retryAfter != "" {
					w.Header().Set("Retry-After", tt.retryAfter)
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"ok":true}`))
			}))
			defer srv.Close()

			body, err := Get(context.Background(), newClient(t), "test", srv.URL, time.Minute)
			tt.check(t, body, err)
		})
	}
}

func TestGet_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := Get(context.Background(), newClient(t), "test", url, time.Minute)
	var rf *RequestFailedError
	if !errors.As(err, &rf) {
		t.Fatalf("expected RequestFailedError, got %v", err)
	}
	if rf.StatusCode != 0 {
		t.Errorf("expected no status code, got %d", rf.StatusCode)
	}
	if StatusOf(err) != 0 {
		t.Errorf("expected StatusOf 0, got %d", StatusOf(err))
	}
}

func TestGet_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Get(ctx, newClient(t), "test", srv.URL, time.Minute)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled to be reachable, got %v", err)
	}
}

func TestStatusOf(t *testing.T) {
	if got := StatusOf(nil); got != http.StatusOK {
		t.Errorf("expected 200, got %d", got)
	}
	if got := StatusOf(&RateLimitedError{}); got != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", got)
	}
	if got := StatusOf(&RequestFailedError{StatusCode: 503}); got != 503 {
		t.Errorf("expected 503, got %d", got)
	}
}
