package siteindex

import "strings"

// FormatPage renders a stored page as a markdown document.
// Uses title if available, falls back to the URL.
func FormatPage(page *Page) string {
	header := page.Title
	if header == "" {
		header = page.URL
	}

	var b strings.Builder
	b.WriteString("# " + header + "\n\n")
	b.WriteString("Source: " + page.URL + "\n")
	if content := strings.TrimSpace(page.Content); content != "" {
		b.WriteString("\n" + content + "\n")
	}
	return b.String()
}

// FormatHits formats search hits for display, separated by blank lines.
func FormatHits(hits []*SearchHit) string {
	if len(hits) == 0 {
		return ""
	}

	parts := make([]string, 0, len(hits))
	for _, h := range hits {
		header := h.Title
		if header == "" {
			header = h.URL
		}
		parts = append(parts, "## "+header+"\n"+h.URL+"\n"+h.Text)
	}

	return strings.Join(parts, "\n\n")
}
