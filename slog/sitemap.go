package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/siteindex"
)

// Ensure LoggingSitemapService implements siteindex.SitemapService.
var _ siteindex.SitemapService = (*LoggingSitemapService)(nil)

// LoggingSitemapService wraps a SitemapService with logging.
type LoggingSitemapService struct {
	next   siteindex.SitemapService
	logger *slog.Logger
}

// NewLoggingSitemapService creates a new LoggingSitemapService.
func NewLoggingSitemapService(next siteindex.SitemapService, logger *slog.Logger) *LoggingSitemapService {
	return &LoggingSitemapService{next: next, logger: logger}
}

// DiscoverSitemaps delegates to the wrapped service and logs the operation.
func (s *LoggingSitemapService) DiscoverSitemaps(ctx context.Context, rootURL string) (sitemaps []string, err error) {
	defer func(begin time.Time) {
		s.logger.Log(ctx, levelFor(err), "sitemap discovery",
			"url", rootURL,
			"count", len(sitemaps),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DiscoverSitemaps(ctx, rootURL)
}

// CollectURLs delegates to the wrapped service and logs the operation.
func (s *LoggingSitemapService) CollectURLs(ctx context.Context, sitemapURLs []string, opts siteindex.CollectOptions) (urls []string, err error) {
	defer func(begin time.Time) {
		s.logger.Log(ctx, levelFor(err), "sitemap collect",
			"sitemaps", len(sitemapURLs),
			"count", len(urls),
			"max", opts.MaxPages,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CollectURLs(ctx, sitemapURLs, opts)
}
