package http

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/siteindex"
	"github.com/temoto/robotstxt"
)

// Ensure SitemapService implements siteindex.SitemapService.
var _ siteindex.SitemapService = (*SitemapService)(nil)

// sitemapPaths are the conventional sitemap locations probed at an origin.
var sitemapPaths = []string{
	"/sitemap.xml",
	"/sitemap_index.xml",
	"/sitemapindex.xml",
	"/sitemap.xml.gz",
	"/sitemap_index.xml.gz",
	"/sitemapindex.xml.gz",
}

// SitemapService discovers URLs from website sitemaps. All requests go
// through the configured Fetcher.
type SitemapService struct {
	fetcher     siteindex.Fetcher
	maxSitemaps int
}

// SitemapOption configures a SitemapService.
type SitemapOption func(*SitemapService)

// WithMaxSitemaps caps the number of sitemap URLs DiscoverSitemaps returns.
func WithMaxSitemaps(n int) SitemapOption {
	return func(s *SitemapService) {
		if n > 0 {
			s.maxSitemaps = n
		}
	}
}

// NewSitemapService creates a new SitemapService backed by fetcher.
func NewSitemapService(fetcher siteindex.Fetcher, opts ...SitemapOption) *SitemapService {
	s := &SitemapService{
		fetcher:     fetcher,
		maxSitemaps: siteindex.DefaultMaxSitemaps,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DiscoverSitemaps probes the conventional sitemap paths at the root's
// origin, then appends the Sitemap directives found in robots.txt.
// A missing or unreadable robots.txt contributes nothing.
func (s *SitemapService) DiscoverSitemaps(ctx context.Context, rootURL string) ([]string, error) {
	origin := siteindex.Origin(rootURL)
	if origin == "" {
		return nil, siteindex.Errorf(siteindex.EINVALID, "invalid root URL: %q", rootURL)
	}

	var found []string
	for _, p := range sitemapPaths {
		candidate := origin + p
		resp, err := s.fetcher.Fetch(ctx, candidate)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		if resp.OK() && len(resp.Body) > 0 {
			found = append(found, candidate)
		}
	}

	robots, err := s.robotsSitemaps(ctx, origin)
	if err != nil {
		return nil, err
	}
	found = append(found, robots...)

	seen := make(map[string]bool, len(found))
	out := []string{}
	for _, u := range found {
		if seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
		if len(out) >= s.maxSitemaps {
			break
		}
	}

	return out, nil
}

// robotsSitemaps returns the Sitemap directives of the origin's robots.txt.
// Only context errors are returned.
func (s *SitemapService) robotsSitemaps(ctx context.Context, origin string) ([]string, error) {
	resp, err := s.fetcher.Fetch(ctx, origin+"/robots.txt")
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, nil
	}
	if resp.StatusCode >= 400 || len(resp.Body) == 0 {
		return nil, nil
	}

	data, err := robotstxt.FromBytes(resp.Body)
	if err != nil {
		return nil, nil
	}

	var sitemaps []string
	for _, sm := range data.Sitemaps {
		if sm = strings.TrimSpace(sm); sm != "" {
			sitemaps = append(sitemaps, sm)
		}
	}
	return sitemaps, nil
}

type queuedSitemap struct {
	url   string
	depth int
}

// CollectURLs walks the sitemap graph breadth-first from sitemapURLs.
func (s *SitemapService) CollectURLs(ctx context.Context, sitemapURLs []string, opts siteindex.CollectOptions) ([]string, error) {
	queue := make([]queuedSitemap, 0, len(sitemapURLs))
	for _, u := range sitemapURLs {
		queue = append(queue, queuedSitemap{url: u})
	}

	seenSitemaps := make(map[string]bool)
	seenURLs := make(map[string]bool)
	urls := []string{}

	for len(queue) > 0 && len(urls) < opts.MaxPages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		item := queue[0]
		queue = queue[1:]

		if seenSitemaps[item.url] {
			continue
		}
		seenSitemaps[item.url] = true

		if item.depth > opts.MaxDepth {
			continue
		}

		locs, children, ok := s.fetchSitemap(ctx, item.url)
		if !ok {
			continue
		}

		for _, loc := range locs {
			u := siteindex.NormalizeURL(loc)
			if seenURLs[u] || !opts.Scope.Contains(u) || !opts.Rules.Match(u) {
				continue
			}
			seenURLs[u] = true
			urls = append(urls, u)
			if len(urls) >= opts.MaxPages {
				break
			}
		}

		if item.depth < opts.MaxDepth {
			for _, child := range children {
				if !seenSitemaps[child] {
					queue = append(queue, queuedSitemap{url: child, depth: item.depth + 1})
				}
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return urls, nil
}

// fetchSitemap fetches, decompresses and parses one sitemap. ok is false if
// any step fails.
func (s *SitemapService) fetchSitemap(ctx context.Context, sitemapURL string) (locs, children []string, ok bool) {
	resp, err := s.fetcher.Fetch(ctx, sitemapURL)
	if err != nil || resp.StatusCode >= 400 || len(resp.Body) == 0 {
		return nil, nil, false
	}

	body := resp.Body
	if strings.HasSuffix(strings.ToLower(sitemapURL), ".gz") {
		if body, err = gunzip(body); err != nil {
			return nil, nil, false
		}
	}

	locs, children, err = parseSitemap(body)
	if err != nil {
		return nil, nil, false
	}
	return locs, children, true
}

func gunzip(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// parseSitemap returns the page URLs of a urlset or the child sitemap URLs
// of a sitemapindex. Elements are matched by local name, whatever their
// namespace prefix. Other documents yield nothing.
func parseSitemap(data []byte) (locs, children []string, err error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, nil, err
	}

	root := doc.Root()
	if root == nil {
		return nil, nil, nil
	}

	tag := strings.ToLower(root.Tag)
	switch {
	case strings.HasSuffix(tag, "urlset"):
		return collectLocs(root, "url"), nil, nil
	case strings.HasSuffix(tag, "sitemapindex"):
		return nil, collectLocs(root, "sitemap"), nil
	default:
		return nil, nil, nil
	}
}

// collectLocs returns the <loc> text of every descendant named entry.
func collectLocs(root *etree.Element, entry string) []string {
	var out []string
	var walk func(e *etree.Element)
	walk = func(e *etree.Element) {
		for _, child := range e.ChildElements() {
			if strings.EqualFold(child.Tag, entry) {
				if loc := firstChild(child, "loc"); loc != nil {
					if text := strings.TrimSpace(loc.Text()); text != "" {
						out = append(out, text)
					}
				}
				continue
			}
			walk(child)
		}
	}
	walk(root)
	return out
}

func firstChild(e *etree.Element, name string) *etree.Element {
	for _, child := range e.ChildElements() {
		if strings.EqualFold(child.Tag, name) {
			return child
		}
	}
	return nil
}
