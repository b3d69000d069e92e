package sqlite_test

import (
	"context"
	"testing"

	"github.com/fwojciec/siteindex"
	"github.com/fwojciec/siteindex/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countRows(t *testing.T, db *sqlite.DB, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRowContext(context.Background(), query, args...).Scan(&n))
	return n
}

func TestChunkService_ReplaceChunks(t *testing.T) {
	t.Parallel()

	t.Run("inserts chunks and index entries", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		page := createTestPage(t, db, "docs", "https://example.com/a", "alpha\nbeta")
		svc := sqlite.NewChunkService(db)
		ctx := context.Background()

		chunks := []*siteindex.Chunk{{Index: 0, Text: "alpha"}, {Index: 1, Text: "beta"}}
		require.NoError(t, svc.ReplaceChunks(ctx, page.ID, chunks))

		for _, c := range chunks {
			assert.NotZero(t, c.ID)
			assert.Equal(t, page.ID, c.PageID)
		}
		assert.Equal(t, 2, countRows(t, db, "SELECT COUNT(*) FROM chunks"))
		assert.Equal(t, 2, countRows(t, db, "SELECT COUNT(*) FROM chunks_fts"))

		var url, source string
		require.NoError(t, db.QueryRowContext(ctx,
			"SELECT url, source_name FROM chunks_fts WHERE rowid = ?", chunks[1].ID).Scan(&url, &source))
		assert.Equal(t, "https://example.com/a", url)
		assert.Equal(t, "docs", source)
	})

	t.Run("replacement leaves no residual entries", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		page := createTestPage(t, db, "docs", "https://example.com/a", "x")
		svc := sqlite.NewChunkService(db)
		search := sqlite.NewSearchService(db)
		ctx := context.Background()

		require.NoError(t, svc.ReplaceChunks(ctx, page.ID, []*siteindex.Chunk{
			{Index: 0, Text: "obsolete walrus"},
			{Index: 1, Text: "obsolete penguin"},
			{Index: 2, Text: "obsolete otter"},
		}))
		require.NoError(t, svc.ReplaceChunks(ctx, page.ID, []*siteindex.Chunk{
			{Index: 0, Text: "fresh content"},
		}))

		hits, err := search.Search(ctx, "obsolete", siteindex.SearchOptions{Limit: 10})
		require.NoError(t, err)
		assert.Empty(t, hits)

		hits, err = search.Search(ctx, "fresh", siteindex.SearchOptions{Limit: 10})
		require.NoError(t, err)
		assert.Len(t, hits, 1)

		assert.Equal(t, 1, countRows(t, db, "SELECT COUNT(*) FROM chunks"))
		assert.Equal(t, 1, countRows(t, db, "SELECT COUNT(*) FROM chunks_fts"))
		assert.Zero(t, countRows(t, db,
			"SELECT COUNT(*) FROM chunks_fts WHERE rowid NOT IN (SELECT id FROM chunks)"))
	})

	t.Run("empty set clears the page", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		page := createTestPage(t, db, "docs", "https://example.com/a", "x")
		svc := sqlite.NewChunkService(db)
		ctx := context.Background()

		require.NoError(t, svc.ReplaceChunks(ctx, page.ID, []*siteindex.Chunk{{Index: 0, Text: "x"}}))
		require.NoError(t, svc.ReplaceChunks(ctx, page.ID, nil))

		assert.Zero(t, countRows(t, db, "SELECT COUNT(*) FROM chunks"))
		assert.Zero(t, countRows(t, db, "SELECT COUNT(*) FROM chunks_fts"))
	})

	t.Run("does not touch other pages", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		a := createTestPage(t, db, "docs", "https://example.com/a", "x")
		b := createTestPage(t, db, "docs", "https://example.com/b", "y")
		svc := sqlite.NewChunkService(db)
		ctx := context.Background()

		require.NoError(t, svc.ReplaceChunks(ctx, a.ID, []*siteindex.Chunk{{Index: 0, Text: "a text"}}))
		require.NoError(t, svc.ReplaceChunks(ctx, b.ID, []*siteindex.Chunk{{Index: 0, Text: "b text"}}))
		require.NoError(t, svc.ReplaceChunks(ctx, a.ID, []*siteindex.Chunk{{Index: 0, Text: "a2 text"}}))

		chunks, err := svc.FindChunks(ctx, b.ID)
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, "b text", chunks[0].Text)
		assert.Equal(t, 2, countRows(t, db, "SELECT COUNT(*) FROM chunks_fts"))
	})

	t.Run("returns ENOTFOUND for unknown page", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewChunkService(db)

		err := svc.ReplaceChunks(context.Background(), 999, []*siteindex.Chunk{{Index: 0, Text: "x"}})

		require.Error(t, err)
		assert.Equal(t, siteindex.ENOTFOUND, siteindex.ErrorCode(err))
		assert.Zero(t, countRows(t, db, "SELECT COUNT(*) FROM chunks"))
	})

	t.Run("failed insert rolls back the delete", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		page := createTestPage(t, db, "docs", "https://example.com/a", "x")
		svc := sqlite.NewChunkService(db)
		ctx := context.Background()

		require.NoError(t, svc.ReplaceChunks(ctx, page.ID, []*siteindex.Chunk{{Index: 0, Text: "kept"}}))

		ctx2, cancel := context.WithCancel(ctx)
		cancel()
		err := svc.ReplaceChunks(ctx2, page.ID, []*siteindex.Chunk{{Index: 0, Text: "lost"}})
		require.Error(t, err)

		chunks, err := svc.FindChunks(ctx, page.ID)
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, "kept", chunks[0].Text)
		assert.Equal(t, 1, countRows(t, db, "SELECT COUNT(*) FROM chunks_fts"))
	})
}

func TestChunkService_FindChunks(t *testing.T) {
	t.Parallel()

	t.Run("returns chunks ordered by index", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		page := createTestPage(t, db, "docs", "https://example.com/a", "x")
		svc := sqlite.NewChunkService(db)
		ctx := context.Background()

		require.NoError(t, svc.ReplaceChunks(ctx, page.ID, []*siteindex.Chunk{
			{Index: 1, Text: "second"},
			{Index: 0, Text: "first", HeadingPath: "Intro"},
		}))

		chunks, err := svc.FindChunks(ctx, page.ID)
		require.NoError(t, err)
		require.Len(t, chunks, 2)
		assert.Equal(t, "first", chunks[0].Text)
		assert.Equal(t, "Intro", chunks[0].HeadingPath)
		assert.Equal(t, "second", chunks[1].Text)
	})
}
