package pipeline

import (
	"github.com/FranksOps/newsfill/internal/storage"
	"github.com/FranksOps/newsfill/pkg/monthrange"
)

// State is the progress of one month's fetch.
type State int

const (
	NotStarted State = iota
	MultiQueryDone
	Paginating
	Complete
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case MultiQueryDone:
		return "multi_query_done"
	case Paginating:
		return "paginating"
	case Complete:
		return "complete"
	default:
		return "unknown"
	}
}

// StopReason records why pagination ended.
type StopReason string

const (
	StopEmpty     StopReason = "empty_page"
	StopLastPage  StopReason = "last_page"
	StopMaxPages  StopReason = "max_pages"
	StopShortPage StopReason = "short_page"
	StopFailed    StopReason = "request_failed"
)

// MonthStats counts what happened while fetching one month.
type MonthStats struct {
	Key string
	// Requests includes rate-limit retries.
	Requests    int
	RateLimited int
	// Failures are requests that still failed after any retry.
	Failures         int
	QueriesAbandoned int
	Malformed        int
	// Pages counts successful pagination requests, excluding the coverage pass.
	Pages      int
	Duplicates int
	// MissingKey counts normalized articles dropped for having no identity key.
	MissingKey int
	// OutsideWindow counts kept articles dated outside the month.
	OutsideWindow int
	Articles      int
	Stop          StopReason
}

// Result is the monthly dataset with its stats. State is Complete unless the
// run was cancelled.
type Result struct {
	Window   monthrange.Window
	Articles []*storage.Article
	Stats    MonthStats
	State    State
}
