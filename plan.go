package siteindex

import (
	"context"
	"net/url"
	"time"
)

// DefaultMaxPages is the page budget used when a plan request sets none.
const DefaultMaxPages = 25

// Plan is the frozen set of URLs a crawl run intends to fetch for one source.
// At most one plan exists per source; saving a new one replaces the old.
type Plan struct {
	ID         string    `json:"planId"`
	SourceName string    `json:"sourceName"`
	RootURL    string    `json:"rootUrl"`
	Scope      Scope     `json:"scope"`
	MaxPages   int       `json:"maxPages"`
	Include    []string  `json:"include"`
	Exclude    []string  `json:"exclude"`
	URLs       []string  `json:"urls"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Validate returns an error if the plan contains invalid fields.
func (p *Plan) Validate() error {
	if err := ValidateSourceName(p.SourceName); err != nil {
		return err
	}
	if p.RootURL == "" {
		return Errorf(EINVALID, "plan root URL required")
	}
	if p.MaxPages <= 0 {
		return Errorf(EINVALID, "plan max pages must be positive")
	}
	return nil
}

// PlanService represents a service for persisting plans.
type PlanService interface {
	// SavePlan stores a plan, assigning ID and CreatedAt when unset.
	// Any previous plan for the same source is replaced.
	SavePlan(ctx context.Context, plan *Plan) error

	// FindPlanByID retrieves a plan by ID.
	// Returns ENOTFOUND if the plan does not exist.
	FindPlanByID(ctx context.Context, id string) (*Plan, error)

	// FindPlanBySource retrieves the live plan for a source.
	// Returns ENOTFOUND if the source has no plan.
	FindPlanBySource(ctx context.Context, sourceName string) (*Plan, error)
}

// PlanRequest holds the caller-supplied parameters for creating a plan.
type PlanRequest struct {
	SourceName string    `json:"sourceName"`
	URL        string    `json:"url"`
	ScopeMode  ScopeMode `json:"scopeMode"`
	MaxPages   int       `json:"maxPages"`
	Include    []string  `json:"include"`
	Exclude    []string  `json:"exclude"`
}

// Validate checks the request and fills in defaults for an empty scope mode
// and a non-positive page budget. An unrecognized scope mode is accepted;
// such a scope contains nothing and yields an empty plan.
func (r *PlanRequest) Validate() error {
	if err := ValidateSourceName(r.SourceName); err != nil {
		return err
	}
	if r.URL == "" {
		return Errorf(EINVALID, "url required")
	}
	u, err := url.Parse(r.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Errorf(EINVALID, "invalid url %q: must be an absolute http(s) URL", r.URL)
	}
	if r.ScopeMode == "" {
		r.ScopeMode = DefaultScopeMode
	}
	if r.MaxPages <= 0 {
		r.MaxPages = DefaultMaxPages
	}
	return nil
}

// Planner builds and persists crawl plans.
type Planner interface {
	// Plan discovers candidate URLs for the request and saves the result.
	// Returns EINVALID for a bad source name, URL or pattern before any
	// network or storage work happens.
	Plan(ctx context.Context, req PlanRequest) (*Plan, error)
}
