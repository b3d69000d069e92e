package siteindex

import (
	"context"
	"strings"
)

// Response is the outcome of a completed HTTP exchange, including non-2xx ones.
type Response struct {
	// URL is the final URL after redirects.
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// IsHTML reports whether the content type is HTML or XHTML.
func (r *Response) IsHTML() bool {
	if r == nil {
		return false
	}
	ct := strings.ToLower(r.ContentType)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml+xml")
}

// Fetcher retrieves URLs over the network.
type Fetcher interface {
	// Fetch follows redirects and returns the final response, whatever its
	// status. A transport failure (timeout, DNS, TLS, connection reset)
	// returns an error and no response; callers treat it as no content.
	Fetch(ctx context.Context, url string) (*Response, error)
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
