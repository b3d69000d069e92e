package crawl

import (
	"context"
	"net/url"
	"sync"

	"github.com/fwojciec/siteindex"
	"golang.org/x/time/rate"
)

var (
	_ siteindex.DomainLimiter = (*DomainLimiter)(nil)
	_ siteindex.Fetcher       = (*LimitedFetcher)(nil)
)

// DomainLimiter provides per-domain rate limiting using token buckets.
// Each domain gets its own limiter with a burst of 1, so requests to one
// host are spaced evenly. A non-positive rate disables limiting.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
}

// NewDomainLimiter creates a new DomainLimiter with the specified requests per second limit.
func NewDomainLimiter(rps float64) *DomainLimiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
	}
}

// Wait blocks until the rate limit allows a request to the domain.
// Returns an error if the context is canceled before the wait completes.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	d.mu.Lock()
	limiter, ok := d.limiters[domain]
	if !ok {
		limiter = rate.NewLimiter(d.limit, 1)
		d.limiters[domain] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}

// LimitedFetcher waits on a DomainLimiter keyed by the URL's host before
// delegating each fetch.
type LimitedFetcher struct {
	Fetcher siteindex.Fetcher
	Limiter siteindex.DomainLimiter
}

// Fetch waits for the host's rate limit, then fetches rawURL.
func (f *LimitedFetcher) Fetch(ctx context.Context, rawURL string) (*siteindex.Response, error) {
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		if err := f.Limiter.Wait(ctx, u.Host); err != nil {
			return nil, err
		}
	}
	return f.Fetcher.Fetch(ctx, rawURL)
}
