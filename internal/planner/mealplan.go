package planner

import (
	"fmt"
	"sort"
	"time"
)

// MealKind names one of the fixed meal slots of a day.
type MealKind string

const (
	Breakfast MealKind = "breakfast"
	Lunch     MealKind = "lunch"
	Dinner    MealKind = "dinner"
	ToGo      MealKind = "togo"
	Dessert   MealKind = "dessert"
)

// MealKinds lists the meal kinds in display order.
var MealKinds = []MealKind{Breakfast, Lunch, Dinner, ToGo, Dessert}

// ParseMealKind validates s.
func ParseMealKind(s string) (MealKind, error) {
	for _, k := range MealKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown meal %q", s)
}

// Slot is one position of a meal. An empty RecipeID is an unassigned slot.
type Slot struct {
	Index    int    `json:"index"`
	RecipeID string `json:"recipe_id,omitempty"`
}

// SlotList is a sparse, index-ordered list of slots.
type SlotList []Slot

// Set assigns recipeID to the slot at index, appending the slot when it does
// not exist yet. An empty recipeID clears the assignment.
func (l SlotList) Set(index int, recipeID string) SlotList {
	for i := range l {
		if l[i].Index == index {
			l[i].RecipeID = recipeID
			return l
		}
	}
	l = append(l, Slot{Index: index, RecipeID: recipeID})
	sort.Slice(l, func(i, j int) bool { return l[i].Index < l[j].Index })
	return l
}

// Get returns the recipe assigned at index, if any.
func (l SlotList) Get(index int) (string, bool) {
	for _, s := range l {
		if s.Index == index && s.RecipeID != "" {
			return s.RecipeID, true
		}
	}
	return "", false
}

// DayPlan holds the meals of one date.
type DayPlan struct {
	Date  string                `json:"date"` // YYYY-MM-DD
	Meals map[MealKind]SlotList `json:"meals"`
}

// WeekPlan is a family's plan for one ISO week.
type WeekPlan struct {
	FamilyID  string    `json:"family_id"`
	WeekStart string    `json:"week_start"` // Monday, YYYY-MM-DD
	Days      []DayPlan `json:"days"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EmptyWeek builds the seven empty days starting at weekStart.
func EmptyWeek(familyID string, weekStart time.Time) *WeekPlan {
	days := make([]DayPlan, 0, 7)
	for _, d := range WeekDates(weekStart) {
		days = append(days, emptyDay(d.Format(DateLayout)))
	}
	return &WeekPlan{
		FamilyID:  familyID,
		WeekStart: weekStart.Format(DateLayout),
		Days:      days,
	}
}

func emptyDay(date string) DayPlan {
	meals := make(map[MealKind]SlotList, len(MealKinds))
	for _, k := range MealKinds {
		meals[k] = SlotList{}
	}
	return DayPlan{Date: date, Meals: meals}
}

// Day returns the plan for date, creating it in order if it is missing.
func (p *WeekPlan) Day(date string) *DayPlan {
	for i := range p.Days {
		if p.Days[i].Date == date {
			if p.Days[i].Meals == nil {
				p.Days[i].Meals = emptyDay(date).Meals
			}
			return &p.Days[i]
		}
	}
	p.Days = append(p.Days, emptyDay(date))
	sort.Slice(p.Days, func(i, j int) bool { return p.Days[i].Date < p.Days[j].Date })
	return p.Day(date)
}

// Assign sets the recipe of one slot.
func (p *WeekPlan) Assign(date string, meal MealKind, index int, recipeID string) {
	day := p.Day(date)
	day.Meals[meal] = day.Meals[meal].Set(index, recipeID)
}

// RecipeIDs returns the distinct recipes referenced by the plan in walk order.
func (p *WeekPlan) RecipeIDs() []string {
	seen := make(map[string]struct{})
	var ids []string
	p.EachRecipe(func(recipeID string) {
		if _, ok := seen[recipeID]; ok {
			return
		}
		seen[recipeID] = struct{}{}
		ids = append(ids, recipeID)
	})
	return ids
}

// EachRecipe calls fn for every assigned slot, walking days in order, meal
// kinds in display order and slots by index.
func (p *WeekPlan) EachRecipe(fn func(recipeID string)) {
	WalkDays(p.Days, fn)
}

// WalkDays is EachRecipe over a bare list of days.
func WalkDays(days []DayPlan, fn func(recipeID string)) {
	for _, day := range days {
		for _, kind := range MealKinds {
			for _, slot := range day.Meals[kind] {
				if slot.RecipeID == "" {
					continue
				}
				fn(slot.RecipeID)
			}
		}
	}
}
