package mock

import (
	"context"

	"github.com/fwojciec/siteindex"
)

var (
	_ siteindex.SitemapService = (*SitemapService)(nil)
	_ siteindex.LinkExtractor  = (*LinkExtractor)(nil)
)

// SitemapService is a mock implementation of siteindex.SitemapService.
type SitemapService struct {
	DiscoverSitemapsFn func(ctx context.Context, rootURL string) ([]string, error)
	CollectURLsFn      func(ctx context.Context, sitemapURLs []string, opts siteindex.CollectOptions) ([]string, error)
}

func (s *SitemapService) DiscoverSitemaps(ctx context.Context, rootURL string) ([]string, error) {
	return s.DiscoverSitemapsFn(ctx, rootURL)
}

func (s *SitemapService) CollectURLs(ctx context.Context, sitemapURLs []string, opts siteindex.CollectOptions) ([]string, error) {
	return s.CollectURLsFn(ctx, sitemapURLs, opts)
}

// LinkExtractor is a mock implementation of siteindex.LinkExtractor.
type LinkExtractor struct {
	ExtractLinksFn func(html string, pageURL string) ([]string, error)
}

func (e *LinkExtractor) ExtractLinks(html string, pageURL string) ([]string, error) {
	return e.ExtractLinksFn(html, pageURL)
}
