package siteindex

import (
	"context"
	"time"
)

// DefaultSearchLimit is the number of hits returned when no limit is given.
const DefaultSearchLimit = 5

// SearchService provides ranked lexical search over indexed chunks.
type SearchService interface {
	// Search returns chunks matching query ordered by ascending score,
	// where a lower score is a better match. When the full-text engine
	// cannot run the query, implementations fall back to substring
	// matching with a uniform score of 0, newest pages first.
	// Returns EINVALID if opts.SourceName is set and malformed.
	Search(ctx context.Context, query string, opts SearchOptions) ([]*SearchHit, error)
}

// SearchOptions configures search behavior.
type SearchOptions struct {
	// Restrict hits to a single source.
	SourceName string `json:"sourceName,omitempty"`

	// Maximum number of hits to return.
	Limit int `json:"limit,omitempty"`
}

// SearchHit is a single ranked match.
type SearchHit struct {
	ChunkID     int64     `json:"chunkId"`
	Text        string    `json:"text"`
	HeadingPath string    `json:"headingPath,omitempty"`
	SourceName  string    `json:"sourceName"`
	URL         string    `json:"url"`
	Title       string    `json:"title,omitempty"`
	FetchedAt   time.Time `json:"fetchedAt"`
	Score       float64   `json:"score"`
}
