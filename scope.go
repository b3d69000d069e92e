package siteindex

import (
	"net/url"
	"strings"
)

// ScopeMode selects which URLs a crawl may visit relative to its root.
type ScopeMode string

// Supported scope modes.
const (
	// ScopePage admits only the root URL itself.
	ScopePage ScopeMode = "page"
	// ScopeSubpath admits same-origin URLs that start with the root URL.
	ScopeSubpath ScopeMode = "subpath"
	// ScopeDomain admits any URL on the root's scheme and host.
	ScopeDomain ScopeMode = "domain"
)

// DefaultScopeMode is used when a plan request does not name a mode.
const DefaultScopeMode = ScopeSubpath

// Valid reports whether m is one of the supported modes.
func (m ScopeMode) Valid() bool {
	switch m {
	case ScopePage, ScopeSubpath, ScopeDomain:
		return true
	}
	return false
}

// Scope is the membership rule for a crawl. It is fixed once a plan exists.
type Scope struct {
	Mode    ScopeMode `json:"mode"`
	RootURL string    `json:"rootUrl"`
}

// NewScope returns a Scope with a normalized root URL.
func NewScope(mode ScopeMode, rootURL string) Scope {
	return Scope{Mode: mode, RootURL: NormalizeURL(rootURL)}
}

// Contains reports whether rawURL falls inside the scope.
// An unknown mode contains nothing.
func (s Scope) Contains(rawURL string) bool {
	u := NormalizeURL(rawURL)
	root := NormalizeURL(s.RootURL)

	switch s.Mode {
	case ScopePage:
		return u == root
	case ScopeDomain:
		return sameOrigin(u, root)
	case ScopeSubpath:
		return sameOrigin(u, root) && strings.HasPrefix(u, root)
	default:
		return false
	}
}

// NormalizeURL strips the fragment and any trailing slashes from rawURL.
// URLs that differ only by fragment or trailing slash normalize equally.
func NormalizeURL(rawURL string) string {
	u, _, _ := strings.Cut(strings.TrimSpace(rawURL), "#")
	return strings.TrimRight(u, "/")
}

// Origin returns the scheme://host prefix of rawURL, or "" if it cannot be parsed.
func Origin(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

func sameOrigin(a, b string) bool {
	ua, err := url.Parse(a)
	if err != nil {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil {
		return false
	}
	return ua.Scheme == ub.Scheme && ua.Host == ub.Host
}
