package shopping

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"family-planner/internal/identity"
	"family-planner/internal/ingredient"
	"family-planner/internal/planner"
	"family-planner/internal/recipe"
)

// DefaultUnit is used for manual items entered without a unit.
const DefaultUnit = "pcs"

// DefaultDuplicateWindow is how long after a write a repeated manual add of
// the same item is ignored.
const DefaultDuplicateWindow = 5 * time.Second

// RecipeCatalog resolves recipe IDs. Missing IDs are absent from the result.
type RecipeCatalog interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]recipe.Recipe, error)
}

// PlanSource returns a family's plan of a week, or nil when there is none.
type PlanSource interface {
	Get(ctx context.Context, familyID, weekStart string) (*planner.WeekPlan, error)
}

// SyncReport describes one completed sync.
type SyncReport struct {
	FamilyID       string
	WeekStart      string
	Aggregated     int
	Upserted       int
	Unchanged      int
	Deleted        int
	DeleteFailures int
	Duration       time.Duration
}

// SyncObserver receives a report after every sync.
type SyncObserver interface {
	ObserveSync(ctx context.Context, report SyncReport)
}

// Options tunes a Service.
type Options struct {
	DuplicateWindow time.Duration
	Observer        SyncObserver
	Logger          *slog.Logger
	Now             func() time.Time
}

// Service is the shopping-list API used by the HTTP and chat front-ends.
type Service struct {
	store           Store
	plans           PlanSource
	recipes         RecipeCatalog
	observer        SyncObserver
	logger          *slog.Logger
	duplicateWindow time.Duration
	now             func() time.Time
}

// NewService creates a Service.
func NewService(store Store, plans PlanSource, recipes RecipeCatalog, opts Options) *Service {
	s := &Service{
		store:           store,
		plans:           plans,
		recipes:         recipes,
		observer:        opts.Observer,
		logger:          opts.Logger,
		duplicateWindow: opts.DuplicateWindow,
		now:             opts.Now,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "shopping")
	if s.duplicateWindow <= 0 {
		s.duplicateWindow = DefaultDuplicateWindow
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// GetList returns the stored list of week sorted by display name and unit.
// An actor without a family gets an empty list.
func (s *Service) GetList(ctx context.Context, actor identity.Actor, week string) (List, error) {
	weekStart, err := planner.NormalizeWeek(week)
	if err != nil {
		return List{}, err
	}
	list := List{WeekStart: weekStart, Items: []Item{}}
	if !actor.HasFamily() {
		return list, nil
	}

	items, err := s.store.List(ctx, Scope{FamilyID: actor.FamilyID, WeekStart: weekStart})
	if err != nil {
		return List{}, err
	}
	sortItems(items)
	if items != nil {
		list.Items = items
	}
	return list, nil
}

// Sync re-derives the recipe part of the list from the week plan and
// returns the resulting list. Checked state and manual items survive.
func (s *Service) Sync(ctx context.Context, actor identity.Actor, week string) (List, error) {
	weekStart, err := planner.NormalizeWeek(week)
	if err != nil {
		return List{}, err
	}
	if !actor.HasFamily() {
		s.logger.Warn("sync requested without family", "user_id", actor.UserID)
		return List{WeekStart: weekStart, Items: []Item{}}, nil
	}
	if err := s.sync(ctx, Scope{FamilyID: actor.FamilyID, WeekStart: weekStart}); err != nil {
		return List{}, err
	}
	return s.GetList(ctx, actor, weekStart)
}

// SyncWeek runs a sync and discards the list.
func (s *Service) SyncWeek(ctx context.Context, actor identity.Actor, week string) error {
	_, err := s.Sync(ctx, actor, week)
	return err
}

func (s *Service) sync(ctx context.Context, scope Scope) error {
	start := s.now()

	plan, err := s.plans.Get(ctx, scope.FamilyID, scope.WeekStart)
	if err != nil {
		return fmt.Errorf("failed to load week plan: %w", err)
	}
	var days []planner.DayPlan
	var ids []string
	if plan != nil {
		days = plan.Days
		ids = plan.RecipeIDs()
	}

	recipes, err := s.recipes.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load recipes: %w", err)
	}

	entries := Aggregate(days, recipes, s.logger)
	current, err := s.store.List(ctx, scope)
	if err != nil {
		return err
	}
	changes := Reconcile(scope, entries, current)

	report := SyncReport{
		FamilyID:   scope.FamilyID,
		WeekStart:  scope.WeekStart,
		Aggregated: len(entries),
	}
	for _, key := range changes.Deletes {
		if err := s.store.Delete(ctx, key); err != nil {
			report.DeleteFailures++
			s.logger.Warn("failed to delete stale shopping item",
				"family_id", key.FamilyID,
				"week", key.WeekStart,
				"key", key.MatchKey,
				"unit", key.Unit,
				"error", err)
			continue
		}
		report.Deleted++
	}

	prev := make(map[ItemKey]Item, len(current))
	for _, it := range current {
		prev[it.ItemKey()] = it
	}
	now := s.now().UTC()
	for _, item := range changes.Upserts {
		if old, ok := prev[item.ItemKey()]; ok && sameContent(old, item) {
			report.Unchanged++
			continue
		}
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}
		item.UpdatedAt = now
		if err := s.store.Upsert(ctx, item); err != nil {
			return fmt.Errorf("failed to upsert shopping item %s: %w", item.MatchKey, err)
		}
		report.Upserted++
	}

	report.Duration = s.now().Sub(start)
	s.logger.Info("shopping list synced",
		"family_id", scope.FamilyID,
		"week", scope.WeekStart,
		"aggregated", report.Aggregated,
		"upserted", report.Upserted,
		"unchanged", report.Unchanged,
		"deleted", report.Deleted,
		"delete_failures", report.DeleteFailures)
	if s.observer != nil {
		s.observer.ObserveSync(ctx, report)
	}
	return nil
}

// Toggle records the actor's checked state on the item matching name and
// unit and returns the item's resulting checked state.
func (s *Service) Toggle(ctx context.Context, actor identity.Actor, week, name, unit string, checked bool) (bool, error) {
	if actor.UserID == "" {
		return false, ErrUnauthenticated
	}
	scope, err := s.mutationScope(actor, week)
	if err != nil {
		return false, err
	}

	// Read-modify-write: two members toggling the same item at the same
	// moment can lose one contribution.
	item, err := s.locate(ctx, scope, name, unit)
	if err != nil {
		return false, err
	}
	if item == nil {
		return false, fmt.Errorf("%w: %s (%s)", ErrItemNotFound, name, unit)
	}

	updated := Toggle(*item, actor.UserID, checked)
	if updated.Checked == item.Checked && len(updated.CheckedBy) == len(item.CheckedBy) {
		return updated.Checked, nil
	}
	updated.UpdatedAt = s.now().UTC()
	if err := s.store.Upsert(ctx, updated); err != nil {
		return false, err
	}
	s.logger.Info("shopping item toggled",
		"family_id", scope.FamilyID,
		"week", scope.WeekStart,
		"key", updated.MatchKey,
		"user_id", actor.UserID,
		"checked", updated.Checked)
	return updated.Checked, nil
}

// AddManualItem adds quantity of an ingredient that no recipe asked for. An
// existing item with the same name and unit is incremented, unless it was
// written within the duplicate window, in which case the add is dropped.
func (s *Service) AddManualItem(ctx context.Context, actor identity.Actor, week, name, secondaryName string, quantity float64, unit string) error {
	scope, err := s.mutationScope(actor, week)
	if err != nil {
		return err
	}

	name = strings.TrimSpace(name)
	secondaryName = strings.TrimSpace(secondaryName)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidItem)
	}
	if quantity < 0 || math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		return fmt.Errorf("%w: quantity must be a non-negative number", ErrInvalidItem)
	}
	unit = strings.TrimSpace(unit)
	if unit == "" {
		unit = DefaultUnit
	}

	key := Key{
		Scope:    scope,
		MatchKey: ingredient.MatchKey(name, secondaryName),
		Unit:     ingredient.NormalizeUnit(unit),
	}
	if key.MatchKey == "" {
		return fmt.Errorf("%w: name %q has no letters or digits", ErrInvalidItem, name)
	}

	existing, err := s.store.Get(ctx, key)
	if err != nil {
		return err
	}
	if existing == nil && secondaryName == "" {
		// "Milk" alone should land on an existing "Lapte||Milk" line.
		if existing, err = s.locate(ctx, scope, name, unit); err != nil {
			return err
		}
		if existing != nil {
			key = existing.Key
		}
	}

	now := s.now().UTC()
	if existing != nil && now.Sub(existing.LastTouched()) < s.duplicateWindow {
		s.logger.Warn("ignoring duplicate manual item",
			"family_id", scope.FamilyID,
			"week", scope.WeekStart,
			"key", key.MatchKey,
			"unit", key.Unit)
		return nil
	}

	err = s.store.Increment(ctx, Item{
		Key:           key,
		Name:          name,
		NameSecondary: secondaryName,
		Quantity:      quantity,
		CheckedBy:     CheckedBy{},
		RecipeIDs:     []string{},
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return err
	}
	s.logger.Info("manual shopping item added",
		"family_id", scope.FamilyID,
		"week", scope.WeekStart,
		"key", key.MatchKey,
		"unit", key.Unit,
		"quantity", quantity)
	return nil
}

// DeleteItem removes the item matching name and unit. Deleting an item that
// does not exist succeeds.
func (s *Service) DeleteItem(ctx context.Context, actor identity.Actor, week, name, unit string) error {
	scope, err := s.mutationScope(actor, week)
	if err != nil {
		return err
	}
	item, err := s.locate(ctx, scope, name, unit)
	if err != nil || item == nil {
		return err
	}
	if err := s.store.Delete(ctx, item.Key); err != nil {
		return err
	}
	s.logger.Info("shopping item deleted",
		"family_id", scope.FamilyID,
		"week", scope.WeekStart,
		"key", item.MatchKey,
		"unit", item.Unit)
	return nil
}

func (s *Service) mutationScope(actor identity.Actor, week string) (Scope, error) {
	if !actor.HasFamily() {
		return Scope{}, ErrNoFamily
	}
	weekStart, err := planner.NormalizeWeek(week)
	if err != nil {
		return Scope{}, err
	}
	return Scope{FamilyID: actor.FamilyID, WeekStart: weekStart}, nil
}

// locate resolves a user-supplied name to a stored item. name may be the
// item's match key or any one of its names; unit is compared canonically.
func (s *Service) locate(ctx context.Context, scope Scope, name, unit string) (*Item, error) {
	name = strings.TrimSpace(name)
	canonical := ingredient.NormalizeUnit(unit)
	if name == "" {
		return nil, nil
	}

	for _, mk := range []string{name, ingredient.MatchKey(name)} {
		if mk == "" {
			continue
		}
		item, err := s.store.Get(ctx, Key{Scope: scope, MatchKey: mk, Unit: canonical})
		if err != nil || item != nil {
			return item, err
		}
	}

	items, err := s.store.List(ctx, scope)
	if err != nil {
		return nil, err
	}
	sortItems(items)
	for i := range items {
		if items[i].Unit == canonical && ingredient.KeyHasName(items[i].MatchKey, name) {
			return &items[i], nil
		}
	}
	return nil, nil
}

func sortItems(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := ingredient.NormalizeName(items[i].Name), ingredient.NormalizeName(items[j].Name)
		if a != b {
			return a < b
		}
		return items[i].Unit < items[j].Unit
	})
}
