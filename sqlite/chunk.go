package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fwojciec/siteindex"
)

// Compile-time interface verification.
var _ siteindex.ChunkService = (*ChunkService)(nil)

// ChunkService implements siteindex.ChunkService using SQLite.
// Each chunk row is mirrored by a chunks_fts row with the same rowid.
type ChunkService struct {
	db *DB
}

// NewChunkService creates a new ChunkService.
func NewChunkService(db *DB) *ChunkService {
	return &ChunkService{db: db}
}

// ReplaceChunks deletes the page's chunks and index entries and inserts the
// new set in a single transaction.
func (s *ChunkService) ReplaceChunks(ctx context.Context, pageID int64, chunks []*siteindex.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var url, sourceName string
	var title sql.NullString
	err = tx.QueryRowContext(ctx, "SELECT url, title, source_name FROM pages WHERE id = ?", pageID).
		Scan(&url, &title, &sourceName)
	if err == sql.ErrNoRows {
		return siteindex.Errorf(siteindex.ENOTFOUND, "page %d not found", pageID)
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM chunks_fts WHERE rowid IN (SELECT id FROM chunks WHERE page_id = ?)", pageID); err != nil {
		return fmt.Errorf("failed to delete index entries: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE page_id = ?", pageID); err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}

	for _, c := range chunks {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO chunks (page_id, chunk_index, heading_path, text)
			VALUES (?, ?, ?, ?)
		`, pageID, c.Index, nullString(c.HeadingPath), c.Text)
		if err != nil {
			return fmt.Errorf("failed to insert chunk: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO chunks_fts (rowid, text, heading_path, url, title, source_name)
			VALUES (?, ?, ?, ?, ?, ?)
		`, id, c.Text, nullString(c.HeadingPath), url, title, sourceName); err != nil {
			return fmt.Errorf("failed to index chunk: %w", err)
		}

		c.ID = id
		c.PageID = pageID
	}

	return tx.Commit()
}

// FindChunks retrieves a page's chunks ordered by index.
func (s *ChunkService) FindChunks(ctx context.Context, pageID int64) ([]*siteindex.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, page_id, chunk_index, heading_path, text
		FROM chunks
		WHERE page_id = ?
		ORDER BY chunk_index ASC
	`, pageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*siteindex.Chunk
	for rows.Next() {
		var c siteindex.Chunk
		var heading sql.NullString
		if err := rows.Scan(&c.ID, &c.PageID, &c.Index, &heading, &c.Text); err != nil {
			return nil, err
		}
		c.HeadingPath = heading.String
		chunks = append(chunks, &c)
	}

	return chunks, rows.Err()
}
