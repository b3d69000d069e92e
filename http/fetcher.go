// Package http provides HTTP-based implementations of siteindex.Fetcher and
// siteindex.SitemapService for static sites that don't require JavaScript
// rendering.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/siteindex"
	"golang.org/x/net/html/charset"
)

// DefaultFetchTimeout is the default total timeout for one request,
// redirects included.
const DefaultFetchTimeout = siteindex.DefaultFetchTimeout

// MaxBodyBytes caps how much of a response body is read.
const MaxBodyBytes = 10 << 20

// Ensure Fetcher implements siteindex.Fetcher at compile time.
var _ siteindex.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves URLs using plain HTTP GET requests.
// Unlike a browser, it does not execute JavaScript.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (30s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with each request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithClient sets the underlying HTTP client. The client's Timeout is
// overwritten by the fetcher's timeout.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: siteindex.DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		f.client = &http.Client{}
	}
	client := *f.client
	client.Timeout = f.timeout
	f.client = &client

	return f
}

// Fetch retrieves url, following redirects. Any completed exchange returns a
// Response regardless of status; HTML bodies are decoded to UTF-8 using the
// declared or sniffed charset.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*siteindex.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	result := &siteindex.Response{
		URL:         resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}

	var body io.Reader = io.LimitReader(resp.Body, MaxBodyBytes)
	if result.IsHTML() {
		decoded, err := charset.NewReader(body, result.ContentType)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", url, err)
		}
		body = decoded
	}

	if result.Body, err = io.ReadAll(body); err != nil {
		return nil, err
	}

	return result, nil
}
