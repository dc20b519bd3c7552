package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Request outcomes used as the "outcome" label.
const (
	OutcomeOK          = "ok"
	OutcomeRateLimited = "rate_limited"
	OutcomeFailed      = "failed"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsfill_api_requests_total",
			Help: "Total number of search API requests executed",
		},
		[]string{"source", "outcome"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newsfill_api_request_duration_seconds",
			Help:    "Duration of search API requests in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"source"},
	)

	APIResponseBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsfill_api_response_bytes_total",
			Help: "Total bytes downloaded from search APIs",
		},
		[]string{"source"},
	)

	MalformedDocumentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsfill_malformed_documents_total",
			Help: "Documents skipped because they could not be normalized",
		},
		[]string{"source"},
	)

	MonthsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsfill_months_total",
			Help: "Months processed, by whether they were fetched or resumed from disk",
		},
		[]string{"source", "origin"},
	)

	ArticlesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsfill_articles_total",
			Help: "Articles in monthly datasets, by whether they were fetched or resumed from disk",
		},
		[]string{"source", "origin"},
	)

	CombinedArticles = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "newsfill_combined_articles",
			Help: "Articles in the most recently written combined dataset",
		},
		[]string{"source"},
	)
)

// RecordRequest updates the request metrics for one API call.
func RecordRequest(source, outcome string, d time.Duration, bytes int) {
	APIRequestsTotal.WithLabelValues(source, outcome).Inc()
	APIRequestDuration.WithLabelValues(source).Observe(d.Seconds())
	if bytes > 0 {
		APIResponseBytesTotal.WithLabelValues(source).Add(float64(bytes))
	}
}

// RecordMonth updates the per-month counters. origin is "fetched" or "resumed".
func RecordMonth(source, origin string, articles int) {
	MonthsTotal.WithLabelValues(source, origin).Inc()
	ArticlesTotal.WithLabelValues(source, origin).Add(float64(articles))
}

// Server encapsulates an HTTP server for Prometheus metrics.
type Server struct {
	srv *http.Server
}

// Start begins listening on the specified port and exposes /metrics.
func Start(port int) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		// Suppress the error from intentional shutdown
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server failed", "error", err)
		}
	}()

	return &Server{srv: srv}
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	if s == nil || s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
