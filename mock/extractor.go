package mock

import "github.com/fwojciec/siteindex"

var _ siteindex.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of siteindex.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*siteindex.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*siteindex.ExtractResult, error) {
	return e.ExtractFn(html)
}
