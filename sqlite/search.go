package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/fwojciec/siteindex"
)

// Compile-time interface verification.
var _ siteindex.SearchService = (*SearchService)(nil)

// SearchService implements siteindex.SearchService with FTS5 and bm25 ranking.
type SearchService struct {
	db *DB
}

// NewSearchService creates a new SearchService.
func NewSearchService(db *DB) *SearchService {
	return &SearchService{db: db}
}

// Search runs query through FTS5 MATCH, ordered by bm25 ascending. The query
// uses FTS5 syntax; when FTS5 rejects it, Search falls back to a substring
// match over chunk text scored 0 and ordered by most recent fetch.
func (s *SearchService) Search(ctx context.Context, query string, opts siteindex.SearchOptions) ([]*siteindex.SearchHit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, siteindex.Errorf(siteindex.EINVALID, "query required")
	}
	if opts.SourceName != "" {
		if err := siteindex.ValidateSourceName(opts.SourceName); err != nil {
			return nil, err
		}
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = siteindex.DefaultSearchLimit
	}

	hits, err := s.searchFTS(ctx, query, opts.SourceName, limit)
	if err == nil {
		return hits, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	return s.searchLike(ctx, query, opts.SourceName, limit)
}

func (s *SearchService) searchFTS(ctx context.Context, query, sourceName string, limit int) ([]*siteindex.SearchHit, error) {
	var q strings.Builder
	args := []any{query}

	q.WriteString(`
		SELECT c.id, c.text, c.heading_path, p.source_name, p.url, p.title, p.fetched_at, bm25(chunks_fts) AS score
		FROM chunks_fts
		JOIN chunks c ON c.id = chunks_fts.rowid
		JOIN pages p ON p.id = c.page_id
		WHERE chunks_fts MATCH ?`)
	if sourceName != "" {
		q.WriteString(" AND p.source_name = ?")
		args = append(args, sourceName)
	}
	q.WriteString(" ORDER BY score ASC LIMIT ?")
	args = append(args, limit)

	return s.queryHits(ctx, q.String(), args...)
}

func (s *SearchService) searchLike(ctx context.Context, query, sourceName string, limit int) ([]*siteindex.SearchHit, error) {
	var q strings.Builder
	args := []any{"%" + escapeLike(query) + "%"}

	q.WriteString(`
		SELECT c.id, c.text, c.heading_path, p.source_name, p.url, p.title, p.fetched_at, 0.0 AS score
		FROM chunks c
		JOIN pages p ON p.id = c.page_id
		WHERE c.text LIKE ? ESCAPE '\'`)
	if sourceName != "" {
		q.WriteString(" AND p.source_name = ?")
		args = append(args, sourceName)
	}
	q.WriteString(" ORDER BY p.fetched_at DESC, c.id ASC LIMIT ?")
	args = append(args, limit)

	return s.queryHits(ctx, q.String(), args...)
}

func (s *SearchService) queryHits(ctx context.Context, query string, args ...any) ([]*siteindex.SearchHit, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hits := []*siteindex.SearchHit{}
	for rows.Next() {
		var hit siteindex.SearchHit
		var heading, title sql.NullString
		var fetchedAt string

		if err := rows.Scan(&hit.ChunkID, &hit.Text, &heading, &hit.SourceName, &hit.URL,
			&title, &fetchedAt, &hit.Score); err != nil {
			return nil, err
		}

		hit.HeadingPath = heading.String
		hit.Title = title.String
		if hit.FetchedAt, err = parseRFC3339(fetchedAt, "fetched_at"); err != nil {
			return nil, err
		}

		hits = append(hits, &hit)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return hits, nil
}

// escapeLike escapes LIKE wildcards so the query matches as a literal substring.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
