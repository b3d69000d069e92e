package crawl

import (
	"fmt"
	"time"

	"github.com/fwojciec/siteindex"
)

// TruncateURL shortens a URL for display, keeping the end which is more informative.
func TruncateURL(url string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if maxLen < 4 {
		return url[:min(len(url), maxLen)]
	}
	if len(url) <= maxLen {
		return url
	}
	return "..." + url[len(url)-maxLen+3:]
}

// FormatFailure renders a run failure as "url: error (HTTP status)".
// The status is omitted when no response was received.
func FormatFailure(f siteindex.Failure) string {
	if f.StatusCode == 0 {
		return fmt.Sprintf("%s: %s", f.URL, f.Error)
	}
	return fmt.Sprintf("%s: %s (HTTP %d)", f.URL, f.Error, f.StatusCode)
}

// FormatRunSummary renders the counts of a finished run on one line.
func FormatRunSummary(r *siteindex.RunResult) string {
	return fmt.Sprintf("%d/%d URLs fetched, %d pages, %d chunks stored, %d failed in %s",
		r.URLsFetched, r.URLsPlanned, r.PagesStored, r.ChunksStored, r.FailureCount,
		r.Duration.Round(time.Millisecond))
}
