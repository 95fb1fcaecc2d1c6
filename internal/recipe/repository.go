package recipe

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	db "family-planner/internal/recipe/db"
)

// Repository is a database-backed repository for recipes.
type Repository struct {
	queries *db.Queries
	db      *sql.DB
	logger  *slog.Logger
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		queries: db.New(d),
		db:      d,
		logger:  logger.With("component", "recipe_repository"),
	}
}

// Save inserts or updates a recipe in the database.
func (r *Repository) Save(ctx context.Context, rec Recipe) error {
	if rec.ID == "" {
		return errors.New("recipe id is required")
	}

	recipeJSON, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe to JSON: %w", err)
	}

	err = r.queries.InsertRecipe(ctx, db.InsertRecipeParams{
		ID:        rec.ID,
		FamilyID:  rec.FamilyID,
		Data:      string(recipeJSON),
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to save recipe %s: %w", rec.ID, err)
	}
	return nil
}

// Get retrieves a recipe by its ID.
func (r *Repository) Get(ctx context.Context, id string) (*Recipe, error) {
	dbRecipe, err := r.queries.GetRecipeByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Recipe not found
		}
		return nil, fmt.Errorf("failed to get recipe by ID: %w", err)
	}

	var rec Recipe
	if err := json.Unmarshal([]byte(dbRecipe.Data), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe JSON: %w", err)
	}
	return &rec, nil
}

// GetByIDs returns the recipes that exist for ids, keyed by ID. Missing IDs
// are simply absent; undecodable rows are logged and skipped.
func (r *Repository) GetByIDs(ctx context.Context, ids []string) (map[string]Recipe, error) {
	result := make(map[string]Recipe, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	dbRecipes, err := r.queries.GetRecipesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipes by IDs: %w", err)
	}

	for _, rec := range r.decode(dbRecipes) {
		result[rec.ID] = rec
	}
	return result, nil
}

// ListForFamily returns global recipes plus the ones owned by familyID.
func (r *Repository) ListForFamily(ctx context.Context, familyID string) ([]Recipe, error) {
	dbRecipes, err := r.queries.ListRecipesForFamily(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return r.decode(dbRecipes), nil
}

// Count returns the number of recipes in the database.
func (r *Repository) Count(ctx context.Context) (int, error) {
	count, err := r.queries.CountRecipes(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count recipes: %w", err)
	}
	return int(count), nil
}

func (r *Repository) decode(rows []db.Recipe) []Recipe {
	recipes := make([]Recipe, 0, len(rows))
	for _, row := range rows {
		var rec Recipe
		if err := json.Unmarshal([]byte(row.Data), &rec); err != nil {
			r.logger.Warn("skipping undecodable recipe", "recipe_id", row.ID, "error", err)
			continue
		}
		recipes = append(recipes, rec)
	}
	return recipes
}
