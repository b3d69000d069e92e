// Package trafilatura extracts main page content with go-trafilatura.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/siteindex"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements siteindex.Extractor at compile time.
var _ siteindex.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML.
// Tables are kept and comment sections dropped.
type Extractor struct {
	opts trafilatura.Options
}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{
		opts: trafilatura.Options{
			EnableFallback:  true,
			ExcludeComments: true,
			ExcludeTables:   false,
		},
	}
}

// Extract processes raw HTML and returns the main content as text and HTML.
func (e *Extractor) Extract(rawHTML string) (*siteindex.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, siteindex.Errorf(siteindex.EINVALID, "empty HTML input")
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), e.opts)
	if err != nil {
		return nil, err
	}

	var contentHTML string
	if result.ContentNode != nil {
		contentHTML, err = renderNode(result.ContentNode)
		if err != nil {
			return nil, err
		}
	}

	return &siteindex.ExtractResult{
		Title:       strings.TrimSpace(result.Metadata.Title),
		Text:        strings.TrimSpace(result.ContentText),
		ContentHTML: contentHTML,
	}, nil
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
