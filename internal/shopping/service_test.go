package shopping

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"family-planner/internal/identity"
	"family-planner/internal/planner"
	"family-planner/internal/recipe"
)

const testWeek = "2025-03-03"

var (
	alice  = identity.Actor{UserID: "alice", FamilyID: "fam-1"}
	bob    = identity.Actor{UserID: "bob", FamilyID: "fam-1"}
	loner  = identity.Actor{UserID: "carol"}
	noUser = identity.Actor{FamilyID: "fam-1"}
)

type fakePlans struct {
	mu    sync.Mutex
	plans map[string]*planner.WeekPlan
	err   error
}

func (f *fakePlans) Get(_ context.Context, familyID, weekStart string) (*planner.WeekPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.plans[familyID+"/"+weekStart], nil
}

func (f *fakePlans) set(plan *planner.WeekPlan) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plans[plan.FamilyID+"/"+plan.WeekStart] = plan
}

type fakeCatalog struct {
	recipes map[string]recipe.Recipe
	err     error
}

func (f *fakeCatalog) GetByIDs(_ context.Context, ids []string) (map[string]recipe.Recipe, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]recipe.Recipe)
	for _, id := range ids {
		if r, ok := f.recipes[id]; ok {
			out[id] = r
		}
	}
	return out, nil
}

type recordingObserver struct {
	reports []SyncReport
}

func (r *recordingObserver) ObserveSync(_ context.Context, report SyncReport) {
	r.reports = append(r.reports, report)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	svc      *Service
	store    *memStore
	plans    *fakePlans
	catalog  *fakeCatalog
	observer *recordingObserver
	clock    *fakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: newMemStore(),
		plans: &fakePlans{plans: map[string]*planner.WeekPlan{}},
		catalog: &fakeCatalog{recipes: catalog(
			recipe.Recipe{ID: "pancakes", Ingredients: []recipe.Ingredient{
				ing("Flour", "Făină", 100, "g"),
				ing("Milk", "Lapte", 200, "ml"),
			}},
			recipe.Recipe{ID: "bread", Ingredients: []recipe.Ingredient{
				ing("Flour", "", 150, "g"),
				ing("Salt", "", 0, "pinch"),
			}},
			recipe.Recipe{ID: "omelette", Ingredients: []recipe.Ingredient{
				ing("Eggs", "Ouă", 3, "pcs"),
				ing("Salt", "", 5, "g"),
			}},
		)},
		observer: &recordingObserver{},
		clock:    &fakeClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)},
	}
	f.svc = NewService(f.store, f.plans, f.catalog, Options{
		DuplicateWindow: 5 * time.Second,
		Observer:        f.observer,
		Now:             f.clock.Now,
	})
	return f
}

func (f *fixture) plan(recipeIDs ...string) {
	plan := weekWith(recipeIDs...)
	plan.FamilyID = alice.FamilyID
	f.plans.set(plan)
}

func findItem(t *testing.T, list List, matchKey, unit string) Item {
	t.Helper()
	for _, it := range list.Items {
		if it.MatchKey == matchKey && it.Unit == unit {
			return it
		}
	}
	t.Fatalf("item %s (%s) not in list", matchKey, unit)
	return Item{}
}

func TestServiceSyncAggregatesPlan(t *testing.T) {
	f := newFixture(t)
	f.plan("pancakes", "bread", "omelette")
	ctx := context.Background()

	list, err := f.svc.Sync(ctx, alice, testWeek)
	require.NoError(t, err)

	assert.Equal(t, testWeek, list.WeekStart)
	require.Len(t, list.Items, 4)
	flour := findItem(t, list, "flour||făină", "g")
	assert.Equal(t, 250.0, flour.Quantity)
	assert.ElementsMatch(t, []string{"pancakes", "bread"}, flour.RecipeIDs)
	salt := findItem(t, list, "salt", "g")
	assert.Equal(t, 5.0, salt.Quantity)
	assert.Equal(t, []string{"omelette"}, salt.RecipeIDs)

	names := make([]string, 0, len(list.Items))
	for _, it := range list.Items {
		names = append(names, it.Name)
	}
	assert.IsNonDecreasing(t, names)
}

func TestServiceSyncIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.plan("pancakes", "omelette")
	ctx := context.Background()

	first, err := f.svc.Sync(ctx, alice, testWeek)
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	second, err := f.svc.Sync(ctx, alice, testWeek)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, f.observer.reports, 2)
	assert.Equal(t, 4, f.observer.reports[0].Upserted)
	assert.Zero(t, f.observer.reports[1].Upserted)
	assert.Equal(t, 4, f.observer.reports[1].Unchanged)
	assert.Zero(t, f.observer.reports[1].Deleted)
}

func TestServiceSyncPreservesManualAndCheckedState(t *testing.T) {
	f := newFixture(t)
	f.plan("pancakes", "omelette")
	ctx := context.Background()

	_, err := f.svc.Sync(ctx, alice, testWeek)
	require.NoError(t, err)
	require.NoError(t, f.svc.AddManualItem(ctx, alice, testWeek, "Batteries", "", 4, ""))
	checked, err := f.svc.Toggle(ctx, alice, testWeek, "Eggs", "pcs", true)
	require.NoError(t, err)
	assert.True(t, checked)

	// Omelette dropped, pancakes kept.
	f.plan("pancakes")
	list, err := f.svc.Sync(ctx, alice, testWeek)
	require.NoError(t, err)

	batteries := findItem(t, list, "batteries", "pcs")
	assert.True(t, batteries.IsManual())
	assert.Equal(t, 4.0, batteries.Quantity)
	for _, it := range list.Items {
		assert.NotEqual(t, "eggs||ouă", it.MatchKey)
	}

	// Re-adding the omelette does not resurrect the old checked state.
	f.plan("pancakes", "omelette")
	list, err = f.svc.Sync(ctx, alice, testWeek)
	require.NoError(t, err)
	assert.False(t, findItem(t, list, "eggs||ouă", "pcs").Checked)
}

func TestServiceSyncKeepsCheckedStateOfSurvivingItems(t *testing.T) {
	f := newFixture(t)
	f.plan("pancakes")
	ctx := context.Background()

	_, err := f.svc.Sync(ctx, alice, testWeek)
	require.NoError(t, err)
	_, err = f.svc.Toggle(ctx, alice, testWeek, "Milk", "ml", true)
	require.NoError(t, err)

	f.plan("pancakes", "pancakes")
	list, err := f.svc.Sync(ctx, alice, testWeek)
	require.NoError(t, err)

	milk := findItem(t, list, "lapte||milk", "ml")
	assert.Equal(t, 400.0, milk.Quantity)
	assert.True(t, milk.Checked)
	assert.Equal(t, CheckedBy{"alice"}, milk.CheckedBy)
}

func TestServiceSyncFailures(t *testing.T) {
	t.Run("recipe catalog error aborts before deleting", func(t *testing.T) {
		f := newFixture(t)
		f.plan("omelette")
		ctx := context.Background()
		_, err := f.svc.Sync(ctx, alice, testWeek)
		require.NoError(t, err)

		f.catalog.err = errors.New("catalog offline")
		_, err = f.svc.Sync(ctx, alice, testWeek)
		require.Error(t, err)
		assert.Zero(t, f.store.count("delete"))
	})

	t.Run("delete failures are tolerated", func(t *testing.T) {
		f := newFixture(t)
		f.plan("omelette")
		ctx := context.Background()
		_, err := f.svc.Sync(ctx, alice, testWeek)
		require.NoError(t, err)

		f.store.failOn("delete")
		f.plan("pancakes")
		_, err = f.svc.Sync(ctx, alice, testWeek)
		require.NoError(t, err)
		last := f.observer.reports[len(f.observer.reports)-1]
		assert.Equal(t, 2, last.DeleteFailures)
	})

	t.Run("upsert failure is returned", func(t *testing.T) {
		f := newFixture(t)
		f.plan("omelette")
		f.store.failOn("upsert")
		_, err := f.svc.Sync(context.Background(), alice, testWeek)
		assert.ErrorIs(t, err, errStoreDown)
	})

	t.Run("bad week", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Sync(context.Background(), alice, "next tuesday")
		assert.ErrorIs(t, err, ErrInvalidWeek)
	})
}

func TestServiceToggleResolvesNames(t *testing.T) {
	f := newFixture(t)
	f.plan("pancakes")
	ctx := context.Background()
	_, err := f.svc.Sync(ctx, alice, testWeek)
	require.NoError(t, err)

	for _, name := range []string{"lapte||milk", "Milk", "LAPTE", " milk "} {
		t.Run(name, func(t *testing.T) {
			checked, err := f.svc.Toggle(ctx, alice, testWeek, name, "milliliters", true)
			require.NoError(t, err)
			assert.True(t, checked)
			checked, err = f.svc.Toggle(ctx, alice, testWeek, name, "ml", false)
			require.NoError(t, err)
			assert.False(t, checked)
		})
	}

	_, err = f.svc.Toggle(ctx, alice, testWeek, "Milk", "l", true)
	assert.ErrorIs(t, err, ErrItemNotFound)
	_, err = f.svc.Toggle(ctx, alice, testWeek, "Butter", "g", true)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestServiceToggleUnionAcrossMembers(t *testing.T) {
	f := newFixture(t)
	f.plan("omelette")
	ctx := context.Background()
	_, err := f.svc.Sync(ctx, alice, testWeek)
	require.NoError(t, err)

	_, err = f.svc.Toggle(ctx, alice, testWeek, "Eggs", "pcs", true)
	require.NoError(t, err)
	_, err = f.svc.Toggle(ctx, bob, testWeek, "Ouă", "pcs", true)
	require.NoError(t, err)

	checked, err := f.svc.Toggle(ctx, alice, testWeek, "Eggs", "pcs", false)
	require.NoError(t, err)
	assert.True(t, checked)

	checked, err = f.svc.Toggle(ctx, bob, testWeek, "Eggs", "pcs", false)
	require.NoError(t, err)
	assert.False(t, checked)
}

func TestServiceAddManualItem(t *testing.T) {
	t.Run("duplicate within window is ignored", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		require.NoError(t, f.svc.AddManualItem(ctx, alice, testWeek, "Apples", "", 3, "pcs"))
		f.clock.Advance(2 * time.Second)
		require.NoError(t, f.svc.AddManualItem(ctx, bob, testWeek, "apples", "", 3, "pieces"))

		list, err := f.svc.GetList(ctx, alice, testWeek)
		require.NoError(t, err)
		assert.Equal(t, 3.0, findItem(t, list, "apples", "pcs").Quantity)
		assert.Equal(t, 1, f.store.count("increment"))
	})

	t.Run("add after window increments", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		require.NoError(t, f.svc.AddManualItem(ctx, alice, testWeek, "Apples", "", 3, ""))
		f.clock.Advance(10 * time.Second)
		require.NoError(t, f.svc.AddManualItem(ctx, alice, testWeek, "Apples", "", 2, ""))

		list, err := f.svc.GetList(ctx, alice, testWeek)
		require.NoError(t, err)
		require.Len(t, list.Items, 1)
		assert.Equal(t, 5.0, list.Items[0].Quantity)
		assert.Equal(t, DefaultUnit, list.Items[0].Unit)
	})

	t.Run("single name joins bilingual item", func(t *testing.T) {
		f := newFixture(t)
		f.plan("pancakes")
		ctx := context.Background()
		_, err := f.svc.Sync(ctx, alice, testWeek)
		require.NoError(t, err)
		f.clock.Advance(time.Minute)

		require.NoError(t, f.svc.AddManualItem(ctx, alice, testWeek, "milk", "", 300, "ml"))

		list, err := f.svc.GetList(ctx, alice, testWeek)
		require.NoError(t, err)
		milk := findItem(t, list, "lapte||milk", "ml")
		assert.Equal(t, 500.0, milk.Quantity)
	})

	t.Run("invalid input", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		assert.ErrorIs(t, f.svc.AddManualItem(ctx, alice, testWeek, "  ", "", 1, ""), ErrInvalidItem)
		assert.ErrorIs(t, f.svc.AddManualItem(ctx, alice, testWeek, "!!", "", 1, ""), ErrInvalidItem)
		assert.ErrorIs(t, f.svc.AddManualItem(ctx, alice, testWeek, "Apples", "", -1, ""), ErrInvalidItem)
		assert.Zero(t, f.store.count("increment"))
	})
}

func TestServiceDeleteItem(t *testing.T) {
	f := newFixture(t)
	f.plan("omelette")
	ctx := context.Background()
	_, err := f.svc.Sync(ctx, alice, testWeek)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteItem(ctx, alice, testWeek, "Ouă", "pcs"))
	require.NoError(t, f.svc.DeleteItem(ctx, alice, testWeek, "Ouă", "pcs"), "deleting twice is fine")

	list, err := f.svc.GetList(ctx, alice, testWeek)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "salt", list.Items[0].MatchKey)
}

func TestServiceWithoutFamily(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	list, err := f.svc.GetList(ctx, loner, testWeek)
	require.NoError(t, err)
	assert.Empty(t, list.Items)
	assert.NotNil(t, list.Items)

	list, err = f.svc.Sync(ctx, loner, "2025-W10")
	require.NoError(t, err)
	assert.Equal(t, testWeek, list.WeekStart)
	assert.Empty(t, list.Items)

	_, err = f.svc.Toggle(ctx, loner, testWeek, "Eggs", "pcs", true)
	assert.ErrorIs(t, err, ErrNoFamily)
	_, err = f.svc.Toggle(ctx, noUser, testWeek, "Eggs", "pcs", true)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.ErrorIs(t, f.svc.AddManualItem(ctx, loner, testWeek, "Eggs", "", 1, ""), ErrNoFamily)
	assert.ErrorIs(t, f.svc.DeleteItem(ctx, loner, testWeek, "Eggs", "pcs"), ErrNoFamily)

	assert.Zero(t, f.store.count("list"))
	assert.Zero(t, f.store.count("get"))
}

func TestServiceFallbackTransparency(t *testing.T) {
	f := newFixture(t)
	f.plan("omelette")
	ctx := context.Background()

	primary := newMemStore()
	primary.failOn("list", "get", "upsert", "increment", "delete")
	obs := newCountingObserver()
	f.svc.store = NewFallbackStore(primary, f.store, obs, nil)

	list, err := f.svc.Sync(ctx, alice, testWeek)
	require.NoError(t, err)
	assert.Len(t, list.Items, 2)

	list, err = f.svc.GetList(ctx, alice, testWeek)
	require.NoError(t, err)
	assert.Len(t, list.Items, 2)
	assert.Positive(t, obs.fallbacks["list"])
	assert.Empty(t, obs.failures)
}

func TestServiceKeepsListWhenPrimaryFailsAfterSync(t *testing.T) {
	f := newFixture(t)
	f.plan("pancakes", "omelette")
	ctx := context.Background()

	primary := f.store
	secondary := newMemStore()
	obs := newCountingObserver()
	f.svc.store = NewFallbackStore(primary, secondary, obs, nil)

	before, err := f.svc.Sync(ctx, alice, testWeek)
	require.NoError(t, err)
	require.Len(t, before.Items, 4)
	_, err = f.svc.Toggle(ctx, alice, testWeek, "Milk", "ml", true)
	require.NoError(t, err)
	before, err = f.svc.GetList(ctx, alice, testWeek)
	require.NoError(t, err)

	primary.failOn("list", "get", "upsert", "increment", "delete")

	during, err := f.svc.GetList(ctx, alice, testWeek)
	require.NoError(t, err)
	assert.Equal(t, before.Items, during.Items)

	checked, err := f.svc.Toggle(ctx, alice, testWeek, "Eggs", "pcs", true)
	require.NoError(t, err)
	assert.True(t, checked)
	require.NoError(t, f.svc.DeleteItem(ctx, alice, testWeek, "Milk", "ml"))

	during, err = f.svc.GetList(ctx, alice, testWeek)
	require.NoError(t, err)
	assert.Len(t, during.Items, 3)
	assert.Empty(t, obs.failures)
	assert.Empty(t, obs.mirrorFailures)
}
