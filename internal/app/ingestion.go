package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"family-planner/internal/recipe"
)

// RecipeSaver stores catalog entries.
type RecipeSaver interface {
	Save(ctx context.Context, rec recipe.Recipe) error
}

// ImportRecipes loads a YAML or JSON catalog file and saves every recipe.
// A recipe that fails to save is logged and skipped; the failures are
// returned together after the rest were imported.
func ImportRecipes(ctx context.Context, repo RecipeSaver, path string, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}

	recipes, err := recipe.LoadFile(path)
	if err != nil {
		return 0, err
	}
	logger.Info("importing recipes", "path", path, "count", len(recipes))

	imported := 0
	var errs []error
	for _, rec := range recipes {
		if err := ctx.Err(); err != nil {
			return imported, err
		}
		if err := repo.Save(ctx, rec); err != nil {
			logger.Error("failed to save recipe", "recipe_id", rec.ID, "name", rec.Name, "error", err)
			errs = append(errs, fmt.Errorf("recipe %s: %w", rec.ID, err))
			continue
		}
		imported++
	}

	logger.Info("recipe import complete", "imported", imported, "failed", len(errs))
	return imported, errors.Join(errs...)
}
