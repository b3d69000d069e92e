package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/siteindex"
)

var (
	_ siteindex.Planner = (*LoggingPlanner)(nil)
	_ siteindex.Indexer = (*LoggingIndexer)(nil)
)

// LoggingPlanner wraps a Planner with logging.
type LoggingPlanner struct {
	next   siteindex.Planner
	logger *slog.Logger
}

// NewLoggingPlanner creates a new LoggingPlanner.
func NewLoggingPlanner(next siteindex.Planner, logger *slog.Logger) *LoggingPlanner {
	return &LoggingPlanner{next: next, logger: logger}
}

// Plan delegates to the wrapped planner and logs the planned URL count.
func (p *LoggingPlanner) Plan(ctx context.Context, req siteindex.PlanRequest) (plan *siteindex.Plan, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"source", req.SourceName,
			"url", req.URL,
			"mode", req.ScopeMode,
		}
		if plan != nil {
			attrs = append(attrs, "plan", plan.ID, "count", len(plan.URLs))
		}
		attrs = append(attrs, "duration", time.Since(begin), "err", err)
		p.logger.Log(ctx, levelFor(err), "plan", attrs...)
	}(time.Now())
	return p.next.Plan(ctx, req)
}

// LoggingIndexer wraps an Indexer with logging.
type LoggingIndexer struct {
	next   siteindex.Indexer
	logger *slog.Logger
}

// NewLoggingIndexer creates a new LoggingIndexer.
func NewLoggingIndexer(next siteindex.Indexer, logger *slog.Logger) *LoggingIndexer {
	return &LoggingIndexer{next: next, logger: logger}
}

// Run delegates to the wrapped indexer and logs the run totals. Each failed
// URL is logged at debug level.
func (ix *LoggingIndexer) Run(ctx context.Context, planID string, progress siteindex.ProgressFunc) (result *siteindex.RunResult, err error) {
	defer func(begin time.Time) {
		attrs := []any{"plan", planID}
		if result != nil {
			attrs = append(attrs,
				"source", result.SourceName,
				"pages", result.PagesStored,
				"chunks", result.ChunksStored,
				"failures", result.FailureCount,
			)
		}
		attrs = append(attrs, "duration", time.Since(begin), "err", err)
		ix.logger.Log(ctx, levelFor(err), "index run", attrs...)
	}(time.Now())

	return ix.next.Run(ctx, planID, func(p siteindex.Progress) {
		if p.Failure != nil {
			ix.logger.DebugContext(ctx, "index failure",
				"url", p.Failure.URL,
				"status", p.Failure.StatusCode,
				"err", p.Failure.Error,
			)
		}
		if progress != nil {
			progress(p)
		}
	})
}
