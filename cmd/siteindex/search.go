package main

import (
	"fmt"

	"github.com/fwojciec/siteindex"
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	hits, err := deps.Search.Search(deps.Ctx, c.Query, siteindex.SearchOptions{
		SourceName: c.Source,
		Limit:      c.TopK,
	})
	if err != nil {
		return err
	}

	if c.JSON {
		return writeJSON(deps, hits)
	}

	if len(hits) == 0 {
		fmt.Fprintln(deps.Stdout, "No results.")
		return nil
	}

	fmt.Fprintln(deps.Stdout, siteindex.FormatHits(hits))
	return nil
}

// Run executes the page command.
func (c *PageCmd) Run(deps *Dependencies) error {
	page, err := deps.Pages.FindPage(deps.Ctx, c.Source, c.URL)
	if err != nil {
		return err
	}

	fmt.Fprint(deps.Stdout, siteindex.FormatPage(page))
	return nil
}
