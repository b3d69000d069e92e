// Package crawl plans and executes bounded crawls of documentation sites.
// Planning tries sitemaps first and falls back to following links; running
// a plan fetches, extracts, chunks and stores each planned URL in order.
package crawl

import (
	"context"

	"github.com/fwojciec/siteindex"
)

var _ siteindex.Planner = (*Planner)(nil)

// Planner builds crawl plans and saves them.
type Planner struct {
	Sitemaps siteindex.SitemapService
	Fetcher  siteindex.Fetcher
	Links    siteindex.LinkExtractor
	Plans    siteindex.PlanService

	// MaxSitemapDepth bounds how many sitemap index hops are followed from
	// a discovered sitemap. Zero reads only the discovered sitemaps.
	MaxSitemapDepth int
}

// Plan validates req, discovers URLs and saves the plan, replacing any
// previous plan for the source.
func (p *Planner) Plan(ctx context.Context, req siteindex.PlanRequest) (*siteindex.Plan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	rules, err := siteindex.CompileRules(req.Include, req.Exclude)
	if err != nil {
		return nil, err
	}

	scope := siteindex.NewScope(req.ScopeMode, req.URL)

	urls, err := p.discover(ctx, scope, rules, req.MaxPages)
	if err != nil {
		return nil, err
	}

	plan := &siteindex.Plan{
		SourceName: req.SourceName,
		RootURL:    scope.RootURL,
		Scope:      scope,
		MaxPages:   req.MaxPages,
		Include:    req.Include,
		Exclude:    req.Exclude,
		URLs:       urls,
	}
	if err := p.Plans.SavePlan(ctx, plan); err != nil {
		return nil, err
	}

	return plan, nil
}

// discover returns sitemap URLs when the sitemap pass accepts any,
// otherwise the result of a link crawl.
func (p *Planner) discover(ctx context.Context, scope siteindex.Scope, rules *siteindex.URLRules, maxPages int) ([]string, error) {
	sitemaps, err := p.Sitemaps.DiscoverSitemaps(ctx, scope.RootURL)
	if err != nil {
		return nil, err
	}

	if len(sitemaps) > 0 {
		urls, err := p.Sitemaps.CollectURLs(ctx, sitemaps, siteindex.CollectOptions{
			Scope:    scope,
			Rules:    rules,
			MaxPages: maxPages,
			MaxDepth: p.MaxSitemapDepth,
		})
		if err != nil {
			return nil, err
		}
		if len(urls) > 0 {
			return urls, nil
		}
	}

	return p.crawlLinks(ctx, scope, rules, maxPages)
}

// crawlLinks walks hyperlinks breadth-first from the scope root, one fetch
// at a time. A URL that fails scope or rules is dropped without expansion;
// page scope never follows links.
func (p *Planner) crawlLinks(ctx context.Context, scope siteindex.Scope, rules *siteindex.URLRules, maxPages int) ([]string, error) {
	frontier := NewFrontier()
	frontier.Push(scope.RootURL)

	planned := []string{}
	for len(planned) < maxPages && frontier.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		url, _ := frontier.Pop()
		if !scope.Contains(url) || !rules.Match(url) {
			continue
		}
		planned = append(planned, url)

		if scope.Mode == siteindex.ScopePage {
			continue
		}

		for _, link := range p.pageLinks(ctx, url) {
			if frontier.Seen(link) || !scope.Contains(link) || !rules.Match(link) {
				continue
			}
			frontier.Push(link)
		}
	}

	return planned, nil
}

// pageLinks fetches url and returns its links. Failed fetches, non-2xx
// responses and non-HTML bodies yield none.
func (p *Planner) pageLinks(ctx context.Context, url string) []string {
	resp, err := p.Fetcher.Fetch(ctx, url)
	if err != nil || !resp.OK() || !resp.IsHTML() {
		return nil
	}

	base := resp.URL
	if base == "" {
		base = url
	}
	links, err := p.Links.ExtractLinks(string(resp.Body), base)
	if err != nil {
		return nil
	}
	return links
}
