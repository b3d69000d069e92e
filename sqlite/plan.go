package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/fwojciec/siteindex"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ siteindex.PlanService = (*PlanService)(nil)

// PlanService implements siteindex.PlanService using SQLite.
type PlanService struct {
	db *DB
}

// NewPlanService creates a new PlanService.
func NewPlanService(db *DB) *PlanService {
	return &PlanService{db: db}
}

// newPlanID returns "plan_" followed by 12 hex characters.
func newPlanID() string {
	return "plan_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// SavePlan stores a plan, replacing any previous plan for the same source.
func (s *PlanService) SavePlan(ctx context.Context, plan *siteindex.Plan) error {
	if err := plan.Validate(); err != nil {
		return err
	}

	if plan.ID == "" {
		plan.ID = newPlanID()
	}
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now().UTC()
	}

	include, err := marshalStrings(plan.Include)
	if err != nil {
		return err
	}
	exclude, err := marshalStrings(plan.Exclude)
	if err != nil {
		return err
	}
	urls, err := marshalStrings(plan.URLs)
	if err != nil {
		return err
	}

	// REPLACE drops the row that conflicts on source_name, so a source
	// never has more than one plan.
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO plans (plan_id, source_name, root_url, scope_mode, max_pages, include_json, exclude_json, urls_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, plan.ID, plan.SourceName, plan.RootURL, string(plan.Scope.Mode), plan.MaxPages,
		include, exclude, urls, formatTime(plan.CreatedAt))

	return err
}

// FindPlanByID retrieves a plan by ID.
func (s *PlanService) FindPlanByID(ctx context.Context, id string) (*siteindex.Plan, error) {
	plan, err := s.findPlan(ctx, "plan_id = ?", id)
	if err == sql.ErrNoRows {
		return nil, siteindex.Errorf(siteindex.ENOTFOUND, "Unknown plan_id: %s", id)
	}
	return plan, err
}

// FindPlanBySource retrieves the live plan for a source.
func (s *PlanService) FindPlanBySource(ctx context.Context, sourceName string) (*siteindex.Plan, error) {
	if err := siteindex.ValidateSourceName(sourceName); err != nil {
		return nil, err
	}
	plan, err := s.findPlan(ctx, "source_name = ?", sourceName)
	if err == sql.ErrNoRows {
		return nil, siteindex.Errorf(siteindex.ENOTFOUND, "no plan for source %q", sourceName)
	}
	return plan, err
}

func (s *PlanService) findPlan(ctx context.Context, where string, arg any) (*siteindex.Plan, error) {
	var plan siteindex.Plan
	var mode, include, exclude, urls, createdAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT plan_id, source_name, root_url, scope_mode, max_pages, include_json, exclude_json, urls_json, created_at
		FROM plans
		WHERE `+where, arg).Scan(&plan.ID, &plan.SourceName, &plan.RootURL, &mode, &plan.MaxPages,
		&include, &exclude, &urls, &createdAt)
	if err != nil {
		return nil, err
	}

	plan.Scope = siteindex.Scope{Mode: siteindex.ScopeMode(mode), RootURL: plan.RootURL}
	if plan.Include, err = unmarshalStrings(include, "include_json"); err != nil {
		return nil, err
	}
	if plan.Exclude, err = unmarshalStrings(exclude, "exclude_json"); err != nil {
		return nil, err
	}
	if plan.URLs, err = unmarshalStrings(urls, "urls_json"); err != nil {
		return nil, err
	}
	if plan.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}

	return &plan, nil
}
