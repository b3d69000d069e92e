// Package fs exports indexed pages as markdown files.
package fs

import (
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/fwojciec/siteindex"
)

// URLToPath converts a page URL to a relative file path.
// Example: https://example.com/docs/api/users → docs/api/users.md
// Returns EINVALID for paths that would leave the export directory.
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", siteindex.Errorf(siteindex.EINVALID, "invalid page URL %q", rawURL)
	}

	p := u.Path
	if p == "" || p == "/" {
		return "index.md", nil
	}

	p = strings.TrimPrefix(p, "/")
	if strings.HasSuffix(p, "/") {
		p += "index"
	}

	p = path.Clean(p)
	if p == ".." || strings.HasPrefix(p, "../") {
		return "", siteindex.Errorf(siteindex.EINVALID, "page URL %q escapes the export directory", rawURL)
	}

	return p + ".md", nil
}

// FormatPage formats a page with YAML frontmatter. The title is written as
// a double-quoted scalar so colons, quotes and leading symbols survive.
func FormatPage(page *siteindex.Page) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("source: ")
	b.WriteString(page.URL)
	b.WriteString("\ntitle: ")
	b.WriteString(strconv.Quote(page.Title))
	b.WriteString("\nfetched: ")
	b.WriteString(page.FetchedAt.Format("2006-01-02"))
	b.WriteString("\n---\n\n")
	b.WriteString(page.Content)
	if !strings.HasSuffix(page.Content, "\n") {
		b.WriteString("\n")
	}
	return b.String()
}
