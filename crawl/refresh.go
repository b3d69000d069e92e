package crawl

import (
	"context"

	"github.com/fwojciec/siteindex"
)

// Refresh plans req and immediately runs the new plan.
// When planning fails nothing is run and both results are nil.
func Refresh(ctx context.Context, planner siteindex.Planner, indexer siteindex.Indexer, req siteindex.PlanRequest, progress siteindex.ProgressFunc) (*siteindex.Plan, *siteindex.RunResult, error) {
	plan, err := planner.Plan(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	result, err := indexer.Run(ctx, plan.ID, progress)
	if err != nil {
		return plan, nil, err
	}

	return plan, result, nil
}
