// Package shopping derives a family's weekly shopping list from its meal plan
// and keeps user-entered state (checks, manual items) across re-syncs.
package shopping

import (
	"time"
)

// Scope is the family and week a shopping list belongs to.
type Scope struct {
	FamilyID  string `json:"family_id"`
	WeekStart string `json:"week_start"` // Monday, YYYY-MM-DD
}

// Key identifies one shopping item inside a scope. MatchKey is the
// bilingual normalized name key and Unit the canonical unit; display names
// are carried separately on the Item.
type Key struct {
	Scope
	MatchKey string `json:"key"`
	Unit     string `json:"unit"`
}

// ItemKey is the scope-independent part of a key.
type ItemKey struct {
	MatchKey string
	Unit     string
}

// ItemKey drops the scope.
func (k Key) ItemKey() ItemKey {
	return ItemKey{MatchKey: k.MatchKey, Unit: k.Unit}
}

// Item is a persisted shopping-list line.
type Item struct {
	Key
	Name          string    `json:"ingredient_name"`
	NameSecondary string    `json:"ingredient_name_secondary,omitempty"`
	Quantity      float64   `json:"total_quantity"`
	Checked       bool      `json:"checked"`
	CheckedBy     CheckedBy `json:"checked_by"`
	RecipeIDs     []string  `json:"recipe_ids"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IsManual reports whether the item was added by a user rather than derived
// from a recipe. Manual items are never removed by reconciliation.
func (i Item) IsManual() bool {
	return len(i.RecipeIDs) == 0
}

// LastTouched is the later of the creation and update times.
func (i Item) LastTouched() time.Time {
	if i.UpdatedAt.After(i.CreatedAt) {
		return i.UpdatedAt
	}
	return i.CreatedAt
}

// List is the shopping list of one week.
type List struct {
	WeekStart string `json:"week_start"`
	Items     []Item `json:"items"`
}
