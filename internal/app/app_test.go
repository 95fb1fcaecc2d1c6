package app

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"family-planner/internal/config"
	"family-planner/internal/identity"
	"family-planner/internal/planner"
	"family-planner/internal/recipe"
)

const catalogYAML = `
recipes:
  - id: pancakes
    name: Pancakes
    ingredients:
      - {name: Flour, quantity: 200, unit: g}
      - {name: Milk, name_secondary: Lapte, quantity: 0.5, unit: l}
  - id: omelette
    name: Omelette
    ingredients:
      - {name: Eggs, quantity: 3, unit: pcs}
      - {name: Milk, name_secondary: Lapte, quantity: 0.1, unit: liters}
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Server: config.ServerConfig{
			Port:            "0",
			Environment:     "test",
			AllowedOrigins:  []string{"*"},
			RateLimitPerSec: 100,
			RateLimitBurst:  100,
		},
		Database:  config.DatabaseConfig{Path: filepath.Join(dir, "family-planner.db")},
		Secondary: config.SecondaryConfig{Type: config.SecondaryFile, Path: filepath.Join(dir, "shopping"), Timeout: time.Second},
		Auth:      config.AuthConfig{JWTSecret: "0123456789abcdef0123", Issuer: "family-planner", TokenTTL: time.Hour},
		Shopping:  config.ShoppingConfig{DuplicateWindow: 5 * time.Second},
		Logging:   config.LoggingConfig{Level: "info", Format: "text"},
	}
}

func writeCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recipes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalogYAML), 0644))
	return path
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn", "json")

	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"key":"value"`)
}

type failingSaver struct {
	saved []string
}

func (f *failingSaver) Save(_ context.Context, rec recipe.Recipe) error {
	if rec.ID == "pancakes" {
		return errors.New("disk full")
	}
	f.saved = append(f.saved, rec.ID)
	return nil
}

func TestImportRecipes_ContinuesPastFailures(t *testing.T) {
	saver := &failingSaver{}

	n, err := ImportRecipes(context.Background(), saver, writeCatalog(t), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "pancakes")
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"omelette"}, saver.saved)
}

func TestImportRecipes_MissingFile(t *testing.T) {
	_, err := ImportRecipes(context.Background(), &failingSaver{}, filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
}

func TestApp_PlanToShoppingList(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testConfig(t), nil)
	require.NoError(t, err)
	defer a.Close(ctx)

	n, err := ImportRecipes(ctx, a.Recipes, writeCatalog(t), nil)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	actor := identity.Actor{UserID: "ana", FamilyID: "fam-1"}
	_, err = a.Planner.AssignMeal(ctx, actor, "2024-03-04", planner.Assignment{
		Date: "2024-03-04", Meal: planner.Breakfast, Index: 0, RecipeID: "pancakes",
	})
	require.NoError(t, err)
	_, err = a.Planner.AssignMeal(ctx, actor, "2024-W10", planner.Assignment{
		Date: "2024-03-05", Meal: planner.Dinner, Index: 0, RecipeID: "omelette",
	})
	require.NoError(t, err)

	list, err := a.Shopping.GetList(ctx, actor, "2024-03-06")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-04", list.WeekStart)
	require.Len(t, list.Items, 3)

	byName := map[string]float64{}
	for _, it := range list.Items {
		byName[strings.ToLower(it.Name)+"/"+it.Unit] = it.Quantity
	}
	assert.InDelta(t, 200, byName["flour/g"], 1e-9)
	assert.InDelta(t, 3, byName["eggs/pcs"], 1e-9)
	assert.InDelta(t, 0.6, byName["milk/l"], 1e-9)

	days, err := a.Metrics.GetDailySyncs(ctx, 1)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, 2, days[0].Runs)

	summaries, err := a.Primary.Summaries(ctx, "fam-1")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
}

func TestApp_RouterHealth(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testConfig(t), nil)
	require.NoError(t, err)
	defer a.Close(ctx)

	router, err := a.Router()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/shopping/2024-03-04", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNew_RejectsShortSecret(t *testing.T) {
	cfg := testConfig(t)
	cfg.Auth.JWTSecret = "short"

	_, err := New(context.Background(), cfg, nil)
	require.Error(t, err)
}
