package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotListSet(t *testing.T) {
	var l SlotList

	l = l.Set(2, "soup")
	l = l.Set(0, "toast")
	require.Len(t, l, 2)
	assert.Equal(t, 0, l[0].Index, "slots are kept in index order")

	l = l.Set(2, "stew")
	require.Len(t, l, 2, "existing index is replaced, not appended")
	got, ok := l.Get(2)
	assert.True(t, ok)
	assert.Equal(t, "stew", got)

	l = l.Set(0, "")
	_, ok = l.Get(0)
	assert.False(t, ok, "empty recipe clears the slot")

	_, ok = l.Get(7)
	assert.False(t, ok)
}

func TestWeekPlan(t *testing.T) {
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	plan := EmptyWeek("fam", start)
	require.Len(t, plan.Days, 7)
	assert.Empty(t, plan.RecipeIDs())

	plan.Assign("2024-03-04", Dinner, 0, "pasta")
	plan.Assign("2024-03-04", Breakfast, 1, "pancakes")
	plan.Assign("2024-03-05", Lunch, 0, "pasta")
	plan.Assign("2024-03-06", Dessert, 0, "")

	assert.Equal(t, []string{"pancakes", "pasta"}, plan.RecipeIDs(),
		"breakfast walks before dinner; duplicates collapse")

	var walked []string
	plan.EachRecipe(func(id string) { walked = append(walked, id) })
	assert.Equal(t, []string{"pancakes", "pasta", "pasta"}, walked)

	t.Run("day missing from stored plan is created in order", func(t *testing.T) {
		p := &WeekPlan{FamilyID: "fam", WeekStart: "2024-03-04", Days: []DayPlan{{Date: "2024-03-06"}}}
		p.Assign("2024-03-05", ToGo, 0, "wrap")
		p.Assign("2024-03-06", ToGo, 0, "salad")
		require.Len(t, p.Days, 2)
		assert.Equal(t, "2024-03-05", p.Days[0].Date)
		assert.Equal(t, []string{"wrap", "salad"}, p.RecipeIDs())
	})
}

func TestParseMealKind(t *testing.T) {
	k, err := ParseMealKind("togo")
	require.NoError(t, err)
	assert.Equal(t, ToGo, k)

	_, err = ParseMealKind("brunch")
	assert.Error(t, err)
}
