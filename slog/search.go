package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/siteindex"
)

// Ensure LoggingSearchService implements siteindex.SearchService.
var _ siteindex.SearchService = (*LoggingSearchService)(nil)

// LoggingSearchService wraps a SearchService with query logging.
type LoggingSearchService struct {
	next   siteindex.SearchService
	logger *slog.Logger
}

// NewLoggingSearchService creates a new LoggingSearchService.
func NewLoggingSearchService(next siteindex.SearchService, logger *slog.Logger) *LoggingSearchService {
	return &LoggingSearchService{next: next, logger: logger}
}

// Search delegates to the wrapped service and logs the hit count.
func (s *LoggingSearchService) Search(ctx context.Context, query string, opts siteindex.SearchOptions) (hits []*siteindex.SearchHit, err error) {
	defer func(begin time.Time) {
		s.logger.Log(ctx, levelFor(err), "search",
			"query", query,
			"source", opts.SourceName,
			"hits", len(hits),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Search(ctx, query, opts)
}
