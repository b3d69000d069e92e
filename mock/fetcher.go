package mock

import (
	"context"

	"github.com/fwojciec/siteindex"
)

var (
	_ siteindex.Fetcher       = (*Fetcher)(nil)
	_ siteindex.DomainLimiter = (*DomainLimiter)(nil)
)

// Fetcher is a mock implementation of siteindex.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (*siteindex.Response, error)
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*siteindex.Response, error) {
	return f.FetchFn(ctx, url)
}

// DomainLimiter is a mock implementation of siteindex.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
