package planner

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"family-planner/internal/planner/plan_db"
)

// PlanRepository is a database-backed repository for week plans.
type PlanRepository struct {
	queries *plan_db.Queries
	db      *sql.DB
	now     func() time.Time
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(d *sql.DB) *PlanRepository {
	return &PlanRepository{
		queries: plan_db.New(d),
		db:      d,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Get returns the stored plan of a week, or nil when none exists.
func (r *PlanRepository) Get(ctx context.Context, familyID, weekStart string) (*WeekPlan, error) {
	row, err := r.queries.GetWeekPlan(ctx, plan_db.GetWeekPlanParams{
		FamilyID:  familyID,
		WeekStart: weekStart,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get week plan %s for family %s: %w", weekStart, familyID, err)
	}

	var days []DayPlan
	if err := json.Unmarshal([]byte(row.Days), &days); err != nil {
		return nil, fmt.Errorf("failed to unmarshal week plan days: %w", err)
	}
	return &WeekPlan{
		FamilyID:  row.FamilyID,
		WeekStart: row.WeekStart,
		Days:      days,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

// GetOrCreate returns the plan of a week, creating the seven empty days on
// first read. Concurrent first reads converge on whichever insert won.
func (r *PlanRepository) GetOrCreate(ctx context.Context, familyID string, weekStart time.Time) (*WeekPlan, error) {
	week := weekStart.Format(DateLayout)
	plan, err := r.Get(ctx, familyID, week)
	if err != nil || plan != nil {
		return plan, err
	}

	empty := EmptyWeek(familyID, weekStart)
	daysJSON, err := json.Marshal(empty.Days)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal empty week: %w", err)
	}
	now := r.now()
	err = r.queries.CreateWeekPlan(ctx, plan_db.CreateWeekPlanParams{
		FamilyID:  familyID,
		WeekStart: week,
		Days:      string(daysJSON),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create week plan: %w", err)
	}
	return r.Get(ctx, familyID, week)
}

// Save writes the plan's days, keeping the original creation time.
func (r *PlanRepository) Save(ctx context.Context, plan *WeekPlan) error {
	daysJSON, err := json.Marshal(plan.Days)
	if err != nil {
		return fmt.Errorf("failed to marshal week plan days: %w", err)
	}

	now := r.now()
	created := plan.CreatedAt
	if created.IsZero() {
		created = now
	}
	err = r.queries.UpsertWeekPlan(ctx, plan_db.UpsertWeekPlanParams{
		FamilyID:  plan.FamilyID,
		WeekStart: plan.WeekStart,
		Days:      string(daysJSON),
		CreatedAt: created,
		UpdatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("failed to save week plan: %w", err)
	}
	plan.CreatedAt, plan.UpdatedAt = created, now
	return nil
}
