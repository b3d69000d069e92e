package siteindex

import (
	"context"
	"time"
)

// DefaultSampleRows is the number of sample rows returned by DescribeTable.
const DefaultSampleRows = 5

// Column describes one column of a stored table.
type Column struct {
	Position     int    `json:"position"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	NotNull      bool   `json:"notNull"`
	DefaultValue string `json:"defaultValue,omitempty"`
	PrimaryKey   bool   `json:"primaryKey"`
}

// TableInfo describes a stored table's schema and contents.
type TableInfo struct {
	Name     string           `json:"name"`
	Columns  []Column         `json:"columns"`
	RowCount int              `json:"rowCount"`
	Sample   []map[string]any `json:"sample"`
}

// SourceStats summarizes the pages indexed for a source.
type SourceStats struct {
	SourceName   string    `json:"sourceName"`
	PageCount    int       `json:"pageCount"`
	FirstFetched time.Time `json:"firstFetched"`
	LastFetched  time.Time `json:"lastFetched"`
}

// Inspector provides read-only introspection of the store.
type Inspector interface {
	// ListTables returns user table names in alphabetical order.
	ListTables(ctx context.Context) ([]string, error)

	// DescribeTable returns columns, row count and up to sampleRows rows.
	// Returns ENOTFOUND if the table does not exist.
	DescribeTable(ctx context.Context, name string, sampleRows int) (*TableInfo, error)

	// ListSources returns per-source page counts and fetch time ranges.
	ListSources(ctx context.Context) ([]*SourceStats, error)
}
