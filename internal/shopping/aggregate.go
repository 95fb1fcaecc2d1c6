package shopping

import (
	"log/slog"
	"slices"
	"strings"

	"family-planner/internal/ingredient"
	"family-planner/internal/planner"
	"family-planner/internal/recipe"
)

// Entry is one aggregated ingredient line of a week.
type Entry struct {
	MatchKey      string
	Unit          string
	Name          string
	NameSecondary string
	Quantity      float64
	RecipeIDs     []string
}

// Aggregate sums the ingredients of every recipe assigned in days. Entries
// are grouped by match key and canonical unit and come out in the order
// their group was first seen. A name given in one language only joins the
// bilingual group of the same unit that carries it, so "Milk" and
// "Lapte"/"Milk" make one line. Unknown recipe IDs and ingredients without
// a usable name are skipped.
func Aggregate(days []planner.DayPlan, recipes map[string]recipe.Recipe, logger *slog.Logger) []Entry {
	if logger == nil {
		logger = slog.Default()
	}

	var entries []*Entry
	index := make(map[ItemKey]*Entry)

	planner.WalkDays(days, func(recipeID string) {
		rec, ok := recipes[recipeID]
		if !ok {
			logger.Debug("skipping unknown recipe", "recipe_id", recipeID)
			return
		}
		for i, ing := range rec.Ingredients {
			name := strings.TrimSpace(ing.Name)
			secondary := rec.SecondaryName(i)
			key := ItemKey{
				MatchKey: ingredient.MatchKey(name, secondary),
				Unit:     ingredient.NormalizeUnit(ing.Unit),
			}
			if key.MatchKey == "" {
				logger.Debug("skipping unnamed ingredient", "recipe_id", recipeID, "index", i)
				continue
			}

			qty, ok := ing.Quantity.Value()
			if !ok {
				logger.Warn("invalid ingredient quantity, using 0",
					"recipe_id", recipeID,
					"ingredient", name,
					"quantity", ing.Quantity.String())
			}

			e, seen := index[key]
			if !seen {
				e = &Entry{
					MatchKey: key.MatchKey,
					Unit:     key.Unit,
					Name:     name,
				}
				if name == "" {
					e.Name = secondary
				}
				index[key] = e
				entries = append(entries, e)
			}
			e.Quantity += qty
			if e.NameSecondary == "" && secondary != "" && secondary != e.Name {
				e.NameSecondary = secondary
			}
			if !slices.Contains(e.RecipeIDs, recipeID) {
				e.RecipeIDs = append(e.RecipeIDs, recipeID)
			}
		}
	})

	return suppressZeroVariants(foldSingleNames(entries))
}

// foldSingleNames merges every single-name group into the first bilingual
// group of the same unit that lists that name, using the rule manual items
// are matched with.
func foldSingleNames(entries []*Entry) []*Entry {
	out := make([]*Entry, 0, len(entries))
	for _, e := range entries {
		home := bilingualHome(entries, e)
		if home == nil {
			out = append(out, e)
			continue
		}
		home.Quantity += e.Quantity
		for _, id := range e.RecipeIDs {
			if !slices.Contains(home.RecipeIDs, id) {
				home.RecipeIDs = append(home.RecipeIDs, id)
			}
		}
	}
	return out
}

func bilingualHome(entries []*Entry, e *Entry) *Entry {
	if strings.Contains(e.MatchKey, ingredient.KeySeparator) {
		return nil
	}
	for _, other := range entries {
		if other.Unit == e.Unit &&
			strings.Contains(other.MatchKey, ingredient.KeySeparator) &&
			ingredient.KeyHasName(other.MatchKey, e.MatchKey) {
			return other
		}
	}
	return nil
}

// suppressZeroVariants drops zero-quantity unit variants of an ingredient
// that also has a positive amount in another unit. When every variant is
// zero only the first one is kept.
func suppressZeroVariants(entries []*Entry) []Entry {
	positive := make(map[string]bool)
	for _, e := range entries {
		if e.Quantity > 0 {
			positive[e.MatchKey] = true
		}
	}

	kept := make(map[string]bool)
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Quantity <= 0 {
			if positive[e.MatchKey] || kept[e.MatchKey] {
				continue
			}
		}
		kept[e.MatchKey] = true
		out = append(out, *e)
	}
	return out
}
