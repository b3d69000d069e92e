// Package goquery extracts hyperlinks from HTML using goquery.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/siteindex"
)

// Ensure LinkExtractor implements siteindex.LinkExtractor at compile time.
var _ siteindex.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor returns the targets of every href attribute in a document,
// not only anchors.
type LinkExtractor struct{}

// NewLinkExtractor creates a new LinkExtractor.
func NewLinkExtractor() *LinkExtractor {
	return &LinkExtractor{}
}

// ExtractLinks resolves each href against pageURL and returns the normalized
// targets in document order without duplicates. Fragment-only and non-HTTP
// hrefs are skipped.
func (e *LinkExtractor) ExtractLinks(html string, pageURL string) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, siteindex.Errorf(siteindex.EINVALID, "invalid page URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, siteindex.Errorf(siteindex.EINVALID, "failed to parse HTML: %v", err)
	}

	seen := make(map[string]bool)
	links := []string{}

	doc.Find("[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || isNonHTTPLink(href) {
			return
		}

		resolved := resolveURL(base, href)
		if resolved == "" || seen[resolved] {
			return
		}
		seen[resolved] = true
		links = append(links, resolved)
	})

	return links, nil
}

// resolveURL resolves href against base and normalizes the result.
// Returns empty string if the href cannot be parsed.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return siteindex.NormalizeURL(base.ResolveReference(ref).String())
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(href)
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
