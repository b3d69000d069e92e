package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/fwojciec/siteindex"
)

// Compile-time interface verification.
var _ siteindex.Inspector = (*Inspector)(nil)

// Inspector implements siteindex.Inspector by reading sqlite_master and
// table contents.
type Inspector struct {
	db *DB
}

// NewInspector creates a new Inspector.
func NewInspector(db *DB) *Inspector {
	return &Inspector{db: db}
}

// ListTables returns user table names, FTS5 shadow tables included.
func (i *Inspector) ListTables(ctx context.Context) ([]string, error) {
	rows, err := i.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	return names, rows.Err()
}

// DescribeTable returns the columns, row count and sample rows of a table.
// Only names reported by ListTables are accepted, so the name is safe to
// interpolate into the query.
func (i *Inspector) DescribeTable(ctx context.Context, name string, sampleRows int) (*siteindex.TableInfo, error) {
	tables, err := i.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	found := false
	for _, t := range tables {
		if t == name {
			found = true
			break
		}
	}
	if !found {
		return nil, siteindex.Errorf(siteindex.ENOTFOUND, "table %q not found", name)
	}
	if sampleRows < 0 {
		sampleRows = 0
	}

	quoted := `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	info := &siteindex.TableInfo{Name: name, Sample: []map[string]any{}}

	if info.Columns, err = i.columns(ctx, quoted); err != nil {
		return nil, err
	}

	if err := i.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoted).Scan(&info.RowCount); err != nil {
		return nil, fmt.Errorf("failed to count rows: %w", err)
	}

	if sampleRows > 0 {
		if info.Sample, err = i.sample(ctx, quoted, sampleRows); err != nil {
			return nil, err
		}
	}

	return info, nil
}

func (i *Inspector) columns(ctx context.Context, quoted string) ([]siteindex.Column, error) {
	rows, err := i.db.QueryContext(ctx, "PRAGMA table_info("+quoted+")")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []siteindex.Column
	for rows.Next() {
		var c siteindex.Column
		var notNull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&c.Position, &c.Name, &c.Type, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		c.NotNull = notNull != 0
		c.PrimaryKey = pk != 0
		c.DefaultValue = dflt.String
		cols = append(cols, c)
	}

	return cols, rows.Err()
}

func (i *Inspector) sample(ctx context.Context, quoted string, limit int) ([]map[string]any, error) {
	rows, err := i.db.QueryContext(ctx, "SELECT * FROM "+quoted+" LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	sample := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(names))
		ptrs := make([]any, len(names))
		for j := range values {
			ptrs[j] = &values[j]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(map[string]any, len(names))
		for j, n := range names {
			if b, ok := values[j].([]byte); ok {
				row[n] = string(b)
			} else {
				row[n] = values[j]
			}
		}
		sample = append(sample, row)
	}

	return sample, rows.Err()
}

// ListSources returns page counts and fetch ranges grouped by source.
func (i *Inspector) ListSources(ctx context.Context) ([]*siteindex.SourceStats, error) {
	rows, err := i.db.QueryContext(ctx, `
		SELECT source_name, COUNT(*), MIN(fetched_at), MAX(fetched_at)
		FROM pages
		GROUP BY source_name
		ORDER BY source_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []*siteindex.SourceStats
	for rows.Next() {
		var st siteindex.SourceStats
		var first, last string
		if err := rows.Scan(&st.SourceName, &st.PageCount, &first, &last); err != nil {
			return nil, err
		}
		if st.FirstFetched, err = parseRFC3339(first, "first_fetched"); err != nil {
			return nil, err
		}
		if st.LastFetched, err = parseRFC3339(last, "last_fetched"); err != nil {
			return nil, err
		}
		stats = append(stats, &st)
	}

	return stats, rows.Err()
}
