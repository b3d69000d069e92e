// Package readability extracts main page content with go-readability, the
// alternative to the trafilatura extractor.
package readability

import (
	"strings"

	"github.com/fwojciec/siteindex"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements siteindex.Extractor at compile time.
var _ siteindex.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML string) (*siteindex.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, siteindex.Errorf(siteindex.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, err
	}

	return &siteindex.ExtractResult{
		Title:       strings.TrimSpace(article.Title),
		Text:        normalizeText(article.TextContent),
		ContentHTML: article.Content,
	}, nil
}

// normalizeText trims every line and collapses runs of blank lines, so that
// each paragraph ends up on its own line.
func normalizeText(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
