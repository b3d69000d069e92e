package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/siteindex"
)

// Ensure LoggingFetcher implements siteindex.Fetcher.
var _ siteindex.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with request logging.
type LoggingFetcher struct {
	next   siteindex.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next siteindex.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the response size and status.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (resp *siteindex.Response, err error) {
	defer func(begin time.Time) {
		status, size := 0, 0
		if resp != nil {
			status, size = resp.StatusCode, len(resp.Body)
		}
		f.logger.Log(ctx, levelFor(err), "fetch",
			"url", url,
			"status", status,
			"bytes", size,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}
