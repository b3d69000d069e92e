package sqlite

import (
	"context"
	"database/sql"
	"encoding/hex"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/siteindex"
)

// Compile-time interface verification.
var _ siteindex.PageService = (*PageService)(nil)

// PageService implements siteindex.PageService using SQLite.
type PageService struct {
	db *DB
}

// NewPageService creates a new PageService.
func NewPageService(db *DB) *PageService {
	return &PageService{db: db}
}

// hashContent computes xxHash of content and returns a big-endian hex string.
func hashContent(content string) string {
	h := xxhash.Sum64String(content)
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = byte(h)
		h >>= 8
	}
	return hex.EncodeToString(b)
}

// UpsertPage inserts a page or overwrites the stored one for the same source and URL.
func (s *PageService) UpsertPage(ctx context.Context, page *siteindex.Page) error {
	if err := page.Validate(); err != nil {
		return err
	}

	page.URL = siteindex.NormalizeURL(page.URL)
	if page.FetchedAt.IsZero() {
		page.FetchedAt = time.Now().UTC()
	}
	page.ContentHash = ""
	if page.Content != "" {
		page.ContentHash = hashContent(page.Content)
	}

	return s.db.QueryRowContext(ctx, `
		INSERT INTO pages (source_name, url, title, fetched_at, status_code, content_text, content_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_name, url) DO UPDATE SET
			title = excluded.title,
			fetched_at = excluded.fetched_at,
			status_code = excluded.status_code,
			content_text = excluded.content_text,
			content_hash = excluded.content_hash
		RETURNING id
	`, page.SourceName, page.URL, nullString(page.Title), formatTime(page.FetchedAt),
		nullInt(page.StatusCode), nullString(page.Content), page.ContentHash).Scan(&page.ID)
}

// FindPage retrieves the page stored for a source and URL.
// The URL is normalized before lookup.
func (s *PageService) FindPage(ctx context.Context, sourceName, url string) (*siteindex.Page, error) {
	if err := siteindex.ValidateSourceName(sourceName); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, source_name, url, title, fetched_at, status_code, content_text, content_hash
		FROM pages
		WHERE source_name = ? AND url = ?
	`, sourceName, siteindex.NormalizeURL(url))

	page, err := scanPage(row)
	if err == sql.ErrNoRows {
		return nil, siteindex.Errorf(siteindex.ENOTFOUND, "Not indexed")
	}
	return page, err
}

// FindPages retrieves pages matching the filter, ordered by URL.
func (s *PageService) FindPages(ctx context.Context, filter siteindex.PageFilter) ([]*siteindex.Page, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, source_name, url, title, fetched_at, status_code, content_text, content_hash FROM pages WHERE 1=1")

	if filter.SourceName != nil {
		if err := siteindex.ValidateSourceName(*filter.SourceName); err != nil {
			return nil, err
		}
		query.WriteString(" AND source_name = ?")
		args = append(args, *filter.SourceName)
	}

	query.WriteString(" ORDER BY source_name ASC, url ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []*siteindex.Page
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}

	return pages, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPage(row scanner) (*siteindex.Page, error) {
	var page siteindex.Page
	var title, content sql.NullString
	var status sql.NullInt64
	var fetchedAt string

	if err := row.Scan(&page.ID, &page.SourceName, &page.URL, &title, &fetchedAt,
		&status, &content, &page.ContentHash); err != nil {
		return nil, err
	}

	page.Title = title.String
	page.Content = content.String
	page.StatusCode = int(status.Int64)

	var err error
	if page.FetchedAt, err = parseRFC3339(fetchedAt, "fetched_at"); err != nil {
		return nil, err
	}

	return &page, nil
}
