package mock

import "github.com/fwojciec/siteindex"

var _ siteindex.Converter = (*Converter)(nil)

// Converter is a mock implementation of siteindex.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
