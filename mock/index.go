package mock

import (
	"context"

	"github.com/fwojciec/siteindex"
)

var (
	_ siteindex.Indexer    = (*Indexer)(nil)
	_ siteindex.RunService = (*RunService)(nil)
)

// Indexer is a mock implementation of siteindex.Indexer.
type Indexer struct {
	RunFn func(ctx context.Context, planID string, progress siteindex.ProgressFunc) (*siteindex.RunResult, error)
}

func (i *Indexer) Run(ctx context.Context, planID string, progress siteindex.ProgressFunc) (*siteindex.RunResult, error) {
	return i.RunFn(ctx, planID, progress)
}

// RunService is a mock implementation of siteindex.RunService.
type RunService struct {
	CreateRunFn func(ctx context.Context, run *siteindex.RunResult) error
	FindRunsFn  func(ctx context.Context, filter siteindex.RunFilter) ([]*siteindex.RunResult, error)
}

func (s *RunService) CreateRun(ctx context.Context, run *siteindex.RunResult) error {
	return s.CreateRunFn(ctx, run)
}

func (s *RunService) FindRuns(ctx context.Context, filter siteindex.RunFilter) ([]*siteindex.RunResult, error) {
	return s.FindRunsFn(ctx, filter)
}
