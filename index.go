package siteindex

import (
	"context"
	"time"
)

// MaxReportedFailures caps the failures listed in a RunResult.
const MaxReportedFailures = 20

// NoHTMLFetched is the failure description for URLs that produced no HTML.
const NoHTMLFetched = "No HTML fetched"

// Failure records a URL that could not be indexed during a run.
type Failure struct {
	URL        string `json:"url"`
	StatusCode int    `json:"statusCode,omitempty"`
	Error      string `json:"error"`
}

// RunResult summarizes the execution of a plan.
type RunResult struct {
	ID           int64         `json:"id,omitempty"`
	PlanID       string        `json:"planId"`
	SourceName   string        `json:"sourceName"`
	StartedAt    time.Time     `json:"startedAt"`
	FinishedAt   time.Time     `json:"finishedAt"`
	Duration     time.Duration `json:"duration"`
	URLsPlanned  int           `json:"urlsPlanned"`
	URLsFetched  int           `json:"urlsFetched"`
	PagesStored  int           `json:"pagesStored"`
	ChunksStored int           `json:"chunksStored"`

	// FailureCount is the total number of failed URLs; Failures lists at
	// most MaxReportedFailures of them.
	FailureCount int       `json:"failureCount"`
	Failures     []Failure `json:"failures"`
}

// AddFailure counts a failure and keeps it if the report has room.
func (r *RunResult) AddFailure(f Failure) {
	r.FailureCount++
	if len(r.Failures) < MaxReportedFailures {
		r.Failures = append(r.Failures, f)
	}
}

// Progress reports the outcome of indexing one planned URL.
type Progress struct {
	URL       string
	Completed int
	Total     int
	Chunks    int
	Failure   *Failure
}

// ProgressFunc is called after each planned URL is processed.
type ProgressFunc func(Progress)

// Indexer executes saved plans.
type Indexer interface {
	// Run fetches, extracts, chunks and stores every URL of the plan, one at
	// a time in plan order. Per-URL problems are reported in the result
	// rather than returned. Returns ENOTFOUND for an unknown plan ID.
	Run(ctx context.Context, planID string, progress ProgressFunc) (*RunResult, error)
}

// RunService represents a service for recording run history.
type RunService interface {
	// CreateRun records a completed run and sets its ID.
	CreateRun(ctx context.Context, run *RunResult) error

	// FindRuns retrieves recorded runs, newest first.
	FindRuns(ctx context.Context, filter RunFilter) ([]*RunResult, error)
}

// RunFilter represents a filter for FindRuns.
type RunFilter struct {
	SourceName *string `json:"sourceName"`

	Limit int `json:"limit"`
}
