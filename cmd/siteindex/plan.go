package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/siteindex"
	"github.com/fwojciec/siteindex/crawl"
)

// Run executes the plan command.
func (c *PlanCmd) Run(deps *Dependencies) error {
	plan, err := deps.Planner.Plan(deps.Ctx, c.request())
	if err != nil {
		return err
	}

	if c.JSON {
		return writeJSON(deps, plan)
	}

	printPlan(deps, plan)
	fmt.Fprintf(deps.Stdout, "\nReview the URLs, then run 'siteindex run %s'.\n", plan.ID)
	return nil
}

// Run executes the run command.
func (c *RunCmd) Run(deps *Dependencies) error {
	result, err := deps.Indexer.Run(deps.Ctx, c.PlanID, progressPrinter(deps))
	if err != nil {
		return err
	}

	fmt.Fprintln(deps.Stdout, crawl.FormatRunSummary(result))
	return nil
}

// Run executes the refresh command.
func (c *RefreshCmd) Run(deps *Dependencies) error {
	plan, result, err := crawl.Refresh(deps.Ctx, deps.Planner, deps.Indexer, c.request(), progressPrinter(deps))
	if plan != nil {
		fmt.Fprintf(deps.Stdout, "Plan %s for %s: %d URLs\n", plan.ID, plan.SourceName, len(plan.URLs))
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(deps.Stdout, crawl.FormatRunSummary(result))
	return nil
}

func printPlan(deps *Dependencies, plan *siteindex.Plan) {
	fmt.Fprintf(deps.Stdout, "Plan %s for %s (%s scope, %d URLs)\n",
		plan.ID, plan.SourceName, plan.Scope.Mode, len(plan.URLs))
	for _, u := range plan.URLs {
		fmt.Fprintf(deps.Stdout, "  %s\n", u)
	}
}

// progressURLWidth bounds the URLs printed by progressPrinter.
const progressURLWidth = 80

// progressPrinter reports each failed URL on stderr as it happens.
func progressPrinter(deps *Dependencies) siteindex.ProgressFunc {
	return func(p siteindex.Progress) {
		if p.Failure != nil {
			f := *p.Failure
			f.URL = crawl.TruncateURL(f.URL, progressURLWidth)
			fmt.Fprintf(deps.Stderr, "  [%d/%d] skip %s\n", p.Completed, p.Total, crawl.FormatFailure(f))
		}
	}
}

func writeJSON(deps *Dependencies, v any) error {
	enc := json.NewEncoder(deps.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
