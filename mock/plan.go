package mock

import (
	"context"

	"github.com/fwojciec/siteindex"
)

var (
	_ siteindex.PlanService = (*PlanService)(nil)
	_ siteindex.Planner     = (*Planner)(nil)
)

// PlanService is a mock implementation of siteindex.PlanService.
type PlanService struct {
	SavePlanFn         func(ctx context.Context, plan *siteindex.Plan) error
	FindPlanByIDFn     func(ctx context.Context, id string) (*siteindex.Plan, error)
	FindPlanBySourceFn func(ctx context.Context, sourceName string) (*siteindex.Plan, error)
}

func (s *PlanService) SavePlan(ctx context.Context, plan *siteindex.Plan) error {
	return s.SavePlanFn(ctx, plan)
}

func (s *PlanService) FindPlanByID(ctx context.Context, id string) (*siteindex.Plan, error) {
	return s.FindPlanByIDFn(ctx, id)
}

func (s *PlanService) FindPlanBySource(ctx context.Context, sourceName string) (*siteindex.Plan, error) {
	return s.FindPlanBySourceFn(ctx, sourceName)
}

// Planner is a mock implementation of siteindex.Planner.
type Planner struct {
	PlanFn func(ctx context.Context, req siteindex.PlanRequest) (*siteindex.Plan, error)
}

func (p *Planner) Plan(ctx context.Context, req siteindex.PlanRequest) (*siteindex.Plan, error) {
	return p.PlanFn(ctx, req)
}
