package siteindex

import (
	"context"
	"strings"
	"unicode/utf8"
)

// DefaultMaxChunkChars is the packing bound used by ChunkText.
const DefaultMaxChunkChars = 1400

// Chunk is a contiguous slice of a page's text, stored and indexed on its own.
type Chunk struct {
	ID          int64  `json:"id"`
	PageID      int64  `json:"pageId"`
	Index       int    `json:"index"`
	HeadingPath string `json:"headingPath,omitempty"`
	Text        string `json:"text"`
}

// ChunkService represents a service for managing the chunks of a page.
type ChunkService interface {
	// ReplaceChunks atomically swaps the page's chunks and their index
	// entries for the given set. Readers observe either the old set or the
	// new set, never a mix. Chunk IDs and PageIDs are set on success.
	// Returns ENOTFOUND if the page does not exist.
	ReplaceChunks(ctx context.Context, pageID int64, chunks []*Chunk) error

	// FindChunks retrieves a page's chunks ordered by index.
	FindChunks(ctx context.Context, pageID int64) ([]*Chunk, error)
}

// ChunkText splits text into ordered chunks of paragraphs.
//
// Every non-blank line is a paragraph. Paragraphs are packed greedily: each
// one counts its length plus one separator, and the buffer is flushed before
// a paragraph that would push it over maxChars. A paragraph that alone
// exceeds maxChars becomes its own chunk unsplit. A non-positive maxChars
// selects DefaultMaxChunkChars.
func ChunkText(text string, maxChars int) []*Chunk {
	if maxChars <= 0 {
		maxChars = DefaultMaxChunkChars
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var chunks []*Chunk
	var buf []string
	bufLen := 0

	flush := func() {
		if len(buf) == 0 {
			return
		}
		joined := strings.TrimSpace(strings.Join(buf, "\n"))
		if joined != "" {
			chunks = append(chunks, &Chunk{Index: len(chunks), Text: joined})
		}
		buf = buf[:0]
		bufLen = 0
	}

	for _, line := range strings.Split(text, "\n") {
		p := strings.TrimSpace(line)
		if p == "" {
			continue
		}
		n := utf8.RuneCountInString(p)
		if bufLen+n+1 > maxChars && len(buf) > 0 {
			flush()
		}
		buf = append(buf, p)
		bufLen += n + 1
	}
	flush()

	return chunks
}
