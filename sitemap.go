package siteindex

import "context"

// Sitemap traversal bounds.
const (
	DefaultMaxSitemaps     = 25
	DefaultMaxSitemapDepth = 3
)

// SitemapService discovers page URLs from website sitemaps.
type SitemapService interface {
	// DiscoverSitemaps returns candidate sitemap URLs for the root's origin:
	// the conventional sitemap paths that respond with content, followed by
	// Sitemap directives from robots.txt. The list is de-duplicated in
	// first-seen order and capped.
	DiscoverSitemaps(ctx context.Context, rootURL string) ([]string, error)

	// CollectURLs walks sitemaps breadth-first, expanding sitemap indexes,
	// and returns normalized page URLs that pass opts.Scope and opts.Rules,
	// in discovery order and at most opts.MaxPages of them. Sitemaps that
	// fail to fetch, decompress or parse are skipped.
	CollectURLs(ctx context.Context, sitemapURLs []string, opts CollectOptions) ([]string, error)
}

// CollectOptions bounds and filters a sitemap traversal.
type CollectOptions struct {
	Scope    Scope
	Rules    *URLRules
	MaxPages int

	// MaxDepth is the number of index hops followed from a seed sitemap.
	// Zero visits only the seeds.
	MaxDepth int
}

// LinkExtractor extracts hyperlink targets from HTML.
type LinkExtractor interface {
	// ExtractLinks returns absolute, normalized link targets found in html,
	// resolved against pageURL and de-duplicated in document order.
	ExtractLinks(html string, pageURL string) ([]string, error)
}
