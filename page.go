package siteindex

import (
	"context"
	"time"
)

// Page is the stored result of fetching one URL for a source.
// Pages are unique on (SourceName, URL) and are overwritten on re-index.
type Page struct {
	ID          int64     `json:"id"`
	SourceName  string    `json:"sourceName"`
	URL         string    `json:"url"`
	Title       string    `json:"title,omitempty"`
	FetchedAt   time.Time `json:"fetchedAt"`
	StatusCode  int       `json:"statusCode,omitempty"` // 0 when no response was received
	Content     string    `json:"content,omitempty"`
	ContentHash string    `json:"contentHash,omitempty"`
}

// Validate returns an error if the page contains invalid fields.
func (p *Page) Validate() error {
	if err := ValidateSourceName(p.SourceName); err != nil {
		return err
	}
	if p.URL == "" {
		return Errorf(EINVALID, "page URL required")
	}
	return nil
}

// PageService represents a service for storing fetched pages.
type PageService interface {
	// UpsertPage inserts the page or replaces title, fetch time, status and
	// content of the existing page with the same source and URL.
	// The page ID and content hash are set on success.
	UpsertPage(ctx context.Context, page *Page) error

	// FindPage retrieves the page stored for a source and URL.
	// Returns ENOTFOUND if the URL is not indexed.
	FindPage(ctx context.Context, sourceName, url string) (*Page, error)

	// FindPages retrieves pages matching the filter, ordered by URL.
	FindPages(ctx context.Context, filter PageFilter) ([]*Page, error)
}

// PageFilter represents a filter for FindPages.
type PageFilter struct {
	SourceName *string `json:"sourceName"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
