package siteindex

import "time"

// Content formats stored for a page.
const (
	ContentFormatText     = "text"
	ContentFormatMarkdown = "markdown"
)

// Extractor backends.
const (
	ExtractorTrafilatura = "trafilatura"
	ExtractorReadability = "readability"
)

// Default configuration values.
const (
	DefaultUserAgent    = "siteindex/0.1"
	DefaultFetchTimeout = 30 * time.Second
)

// Config holds runtime settings shared by the command surface.
type Config struct {
	// DBPath is the SQLite database file.
	DBPath string

	// UserAgent is sent with every request.
	UserAgent string

	// Timeout bounds each request, redirects included.
	Timeout time.Duration

	// RateLimit is the request rate per host in requests per second.
	// Zero disables rate limiting.
	RateLimit float64

	MaxSitemaps     int
	MaxSitemapDepth int
	MaxChunkChars   int

	// ContentFormat selects plain text or markdown page content.
	ContentFormat string

	// Extractor selects the main-content extraction backend.
	Extractor string
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		UserAgent:       DefaultUserAgent,
		Timeout:         DefaultFetchTimeout,
		MaxSitemaps:     DefaultMaxSitemaps,
		MaxSitemapDepth: DefaultMaxSitemapDepth,
		MaxChunkChars:   DefaultMaxChunkChars,
		ContentFormat:   ContentFormatText,
		Extractor:       ExtractorTrafilatura,
	}
}

// Validate returns an error if the configuration contains invalid fields.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return Errorf(EINVALID, "timeout must be positive")
	}
	if c.RateLimit < 0 {
		return Errorf(EINVALID, "rate_limit must not be negative")
	}
	if c.MaxSitemaps <= 0 {
		return Errorf(EINVALID, "max_sitemaps must be positive")
	}
	if c.MaxSitemapDepth < 0 {
		return Errorf(EINVALID, "max_sitemap_depth must not be negative")
	}
	if c.MaxChunkChars <= 0 {
		return Errorf(EINVALID, "max_chunk_chars must be positive")
	}
	switch c.ContentFormat {
	case ContentFormatText, ContentFormatMarkdown:
	default:
		return Errorf(EINVALID, "unknown content_format %q", c.ContentFormat)
	}
	switch c.Extractor {
	case ExtractorTrafilatura, ExtractorReadability:
	default:
		return Errorf(EINVALID, "unknown extractor %q", c.Extractor)
	}
	return nil
}
