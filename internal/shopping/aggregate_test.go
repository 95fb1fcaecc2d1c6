package shopping

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"family-planner/internal/planner"
	"family-planner/internal/recipe"
)

var testMonday = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

func ing(name, secondary string, qty float64, unit string) recipe.Ingredient {
	return recipe.Ingredient{
		Name:          name,
		NameSecondary: secondary,
		Quantity:      recipe.NumericQuantity(qty),
		Unit:          unit,
	}
}

// weekWith assigns each recipe to dinner slot 0 of consecutive days.
func weekWith(recipeIDs ...string) *planner.WeekPlan {
	plan := planner.EmptyWeek("fam-1", testMonday)
	for i, id := range recipeIDs {
		date := testMonday.AddDate(0, 0, i).Format(planner.DateLayout)
		plan.Assign(date, planner.Dinner, 0, id)
	}
	return plan
}

func catalog(recipes ...recipe.Recipe) map[string]recipe.Recipe {
	out := make(map[string]recipe.Recipe, len(recipes))
	for _, r := range recipes {
		out[r.ID] = r
	}
	return out
}

func TestAggregateSumsQuantities(t *testing.T) {
	recipes := catalog(
		recipe.Recipe{ID: "pancakes", Ingredients: []recipe.Ingredient{ing("Flour", "", 100, "g")}},
		recipe.Recipe{ID: "bread", Ingredients: []recipe.Ingredient{ing("flour", "", 150, "grams")}},
	)

	entries := Aggregate(weekWith("pancakes", "bread").Days, recipes, nil)

	require.Len(t, entries, 1)
	assert.Equal(t, "flour", entries[0].MatchKey)
	assert.Equal(t, "g", entries[0].Unit)
	assert.Equal(t, "Flour", entries[0].Name)
	assert.Equal(t, 250.0, entries[0].Quantity)
	assert.Equal(t, []string{"pancakes", "bread"}, entries[0].RecipeIDs)
}

func TestAggregateMergesBilingualNames(t *testing.T) {
	recipes := catalog(
		recipe.Recipe{ID: "a", Ingredients: []recipe.Ingredient{ing("Milk", "Lapte", 200, "ml")}},
		recipe.Recipe{
			ID:                   "b",
			Ingredients:          []recipe.Ingredient{ing("Lapte", "", 100, "ml")},
			IngredientsSecondary: []recipe.Ingredient{{Name: "Milk"}},
		},
	)

	entries := Aggregate(weekWith("a", "b").Days, recipes, nil)

	require.Len(t, entries, 1)
	assert.Equal(t, "lapte||milk", entries[0].MatchKey)
	assert.Equal(t, "Milk", entries[0].Name)
	assert.Equal(t, "Lapte", entries[0].NameSecondary)
	assert.Equal(t, 300.0, entries[0].Quantity)
}

func TestAggregateJoinsSingleNameOntoBilingualGroup(t *testing.T) {
	recipes := catalog(
		recipe.Recipe{ID: "a", Ingredients: []recipe.Ingredient{ing("Milk", "", 200, "ml")}},
		recipe.Recipe{ID: "b", Ingredients: []recipe.Ingredient{ing("Lapte", "Milk", 100, "ml")}},
	)

	entries := Aggregate(weekWith("a", "b").Days, recipes, nil)

	require.Len(t, entries, 1)
	assert.Equal(t, "lapte||milk", entries[0].MatchKey)
	assert.Equal(t, "ml", entries[0].Unit)
	assert.Equal(t, "Lapte", entries[0].Name)
	assert.Equal(t, "Milk", entries[0].NameSecondary)
	assert.Equal(t, 300.0, entries[0].Quantity)
	assert.ElementsMatch(t, []string{"a", "b"}, entries[0].RecipeIDs)
}

func TestAggregateKeepsSingleNameInOtherUnit(t *testing.T) {
	recipes := catalog(
		recipe.Recipe{ID: "a", Ingredients: []recipe.Ingredient{ing("Milk", "", 1, "cup")}},
		recipe.Recipe{ID: "b", Ingredients: []recipe.Ingredient{ing("Lapte", "Milk", 100, "ml")}},
	)

	entries := Aggregate(weekWith("a", "b").Days, recipes, nil)

	require.Len(t, entries, 2)
	assert.Equal(t, "milk", entries[0].MatchKey)
	assert.Equal(t, "cup", entries[0].Unit)
	assert.Equal(t, "lapte||milk", entries[1].MatchKey)
	assert.Equal(t, 100.0, entries[1].Quantity)
}

func TestAggregateSuppressesZeroVariants(t *testing.T) {
	tests := []struct {
		name    string
		recipes map[string]recipe.Recipe
		want    []Entry
	}{
		{
			name: "zero variant dropped when another unit is positive",
			recipes: catalog(
				recipe.Recipe{ID: "a", Ingredients: []recipe.Ingredient{ing("Salt", "", 0, "pinch")}},
				recipe.Recipe{ID: "b", Ingredients: []recipe.Ingredient{ing("Salt", "", 5, "g")}},
			),
			want: []Entry{{MatchKey: "salt", Unit: "g", Name: "Salt", Quantity: 5, RecipeIDs: []string{"b"}}},
		},
		{
			name: "first zero variant kept when all are zero",
			recipes: catalog(
				recipe.Recipe{ID: "a", Ingredients: []recipe.Ingredient{ing("Salt", "", 0, "pinch")}},
				recipe.Recipe{ID: "b", Ingredients: []recipe.Ingredient{ing("Salt", "", 0, "g")}},
			),
			want: []Entry{{MatchKey: "salt", Unit: "pinch", Name: "Salt", Quantity: 0, RecipeIDs: []string{"a"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate(weekWith("a", "b").Days, tt.recipes, nil)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAggregateSkipsUnknownRecipesAndCoercesQuantities(t *testing.T) {
	recipes := catalog(recipe.Recipe{
		ID: "stew",
		Ingredients: []recipe.Ingredient{
			{Name: "Carrots", Quantity: recipe.TextQuantity("2 large"), Unit: "pieces"},
			{Name: "Thyme", Quantity: recipe.TextQuantity("a sprig"), Unit: ""},
			{Name: "  ", Quantity: recipe.NumericQuantity(1), Unit: "g"},
		},
	})

	entries := Aggregate(weekWith("missing", "stew").Days, recipes, nil)

	require.Len(t, entries, 2)
	assert.Equal(t, "carrots", entries[0].MatchKey)
	assert.Equal(t, "pcs", entries[0].Unit)
	assert.Equal(t, 2.0, entries[0].Quantity)
	assert.Equal(t, "thyme", entries[1].MatchKey)
	assert.Equal(t, 0.0, entries[1].Quantity)
}

func TestAggregateEmptyPlan(t *testing.T) {
	assert.Empty(t, Aggregate(nil, nil, nil))
	assert.Empty(t, Aggregate(planner.EmptyWeek("fam-1", testMonday).Days, nil, nil))
}
