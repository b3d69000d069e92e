package siteindex

// ExtractResult holds the extracted content from an HTML page.
type ExtractResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// Text is the main content as plain text, tables included and
	// comments excluded.
	Text string

	// ContentHTML is the main content as clean HTML, when available.
	ContentHTML string
}

// Extractor extracts main content from HTML pages, removing boilerplate.
type Extractor interface {
	// Extract processes raw HTML and returns the main content.
	// An empty or whitespace-only Text means the page has no content.
	Extract(html string) (*ExtractResult, error)
}
