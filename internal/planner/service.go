package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"family-planner/internal/identity"
)

var (
	// ErrNoFamily is returned when the actor has no household to plan for.
	ErrNoFamily = errors.New("user has no family")
	// ErrInvalidSlot is returned for assignments outside the week or with a
	// bad meal kind or index.
	ErrInvalidSlot = errors.New("invalid meal slot")
)

// Syncer re-derives the shopping list of a week after the plan changed.
type Syncer interface {
	SyncWeek(ctx context.Context, actor identity.Actor, week string) error
}

// Service reads and mutates week plans.
type Service struct {
	plans  *PlanRepository
	syncer Syncer
	logger *slog.Logger
}

// NewService creates a Service. syncer may be nil and set later with
// SetSyncer, since the shopping service itself depends on the plan store.
func NewService(plans *PlanRepository, syncer Syncer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		plans:  plans,
		syncer: syncer,
		logger: logger.With("component", "planner"),
	}
}

// SetSyncer registers the component notified after every assignment.
func (s *Service) SetSyncer(syncer Syncer) {
	s.syncer = syncer
}

// GetWeek returns the plan of week, creating it empty on first read.
func (s *Service) GetWeek(ctx context.Context, actor identity.Actor, week string) (*WeekPlan, error) {
	if !actor.HasFamily() {
		return nil, ErrNoFamily
	}
	start, err := ParseWeek(week)
	if err != nil {
		return nil, err
	}
	return s.plans.GetOrCreate(ctx, actor.FamilyID, start)
}

// Assignment addresses one slot of a week plan.
type Assignment struct {
	Date     string   // YYYY-MM-DD, inside the week
	Meal     MealKind // one of MealKinds
	Index    int      // slot position, >= 0
	RecipeID string   // empty clears the slot
}

// AssignMeal sets one slot and re-syncs the shopping list. The plan write
// is committed before the sync runs; a sync failure is still reported.
func (s *Service) AssignMeal(ctx context.Context, actor identity.Actor, week string, a Assignment) (*WeekPlan, error) {
	if !actor.HasFamily() {
		return nil, ErrNoFamily
	}
	start, err := ParseWeek(week)
	if err != nil {
		return nil, err
	}
	if err := validateAssignment(start, a); err != nil {
		return nil, err
	}

	plan, err := s.plans.GetOrCreate(ctx, actor.FamilyID, start)
	if err != nil {
		return nil, err
	}
	plan.Assign(a.Date, a.Meal, a.Index, a.RecipeID)
	if err := s.plans.Save(ctx, plan); err != nil {
		return nil, err
	}
	s.logger.Info("meal assigned",
		"family_id", actor.FamilyID,
		"week", plan.WeekStart,
		"date", a.Date,
		"meal", a.Meal,
		"index", a.Index,
		"recipe_id", a.RecipeID)

	if s.syncer != nil {
		if err := s.syncer.SyncWeek(ctx, actor, plan.WeekStart); err != nil {
			return plan, fmt.Errorf("failed to sync shopping list after assignment: %w", err)
		}
	}
	return plan, nil
}

func validateAssignment(weekStart time.Time, a Assignment) error {
	if _, err := ParseMealKind(string(a.Meal)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSlot, err)
	}
	if a.Index < 0 {
		return fmt.Errorf("%w: negative index %d", ErrInvalidSlot, a.Index)
	}
	date, err := time.Parse(DateLayout, a.Date)
	if err != nil {
		return fmt.Errorf("%w: bad date %q", ErrInvalidSlot, a.Date)
	}
	if !WeekStart(date).Equal(weekStart) {
		return fmt.Errorf("%w: %s is outside week %s", ErrInvalidSlot, a.Date, weekStart.Format(DateLayout))
	}
	return nil
}
