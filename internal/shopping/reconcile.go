package shopping

import "slices"

// Plan is the set of store writes that brings a list in line with the
// current meal plan.
type Plan struct {
	Upserts []Item
	Deletes []Key
}

// Reconcile diffs the freshly aggregated entries against the items already
// stored for scope. Checked state is carried over for surviving keys.
// Recipe-derived items that disappeared are deleted; manual items are left
// alone. Running it again against its own result yields the same upserts and
// no deletes.
func Reconcile(scope Scope, fresh []Entry, previous []Item) Plan {
	prev := make(map[ItemKey]Item, len(previous))
	for _, it := range previous {
		prev[it.ItemKey()] = it
	}

	var plan Plan
	wanted := make(map[ItemKey]struct{}, len(fresh))
	for _, e := range fresh {
		k := ItemKey{MatchKey: e.MatchKey, Unit: e.Unit}
		wanted[k] = struct{}{}

		item := Item{
			Key:           Key{Scope: scope, MatchKey: e.MatchKey, Unit: e.Unit},
			Name:          e.Name,
			NameSecondary: e.NameSecondary,
			Quantity:      e.Quantity,
			RecipeIDs:     slices.Clone(e.RecipeIDs),
			CheckedBy:     CheckedBy{},
		}
		if old, ok := prev[k]; ok {
			item.Checked = old.Checked
			item.CheckedBy = slices.Clone(old.CheckedBy)
			if item.CheckedBy == nil {
				item.CheckedBy = CheckedBy{}
			}
			item.CreatedAt = old.CreatedAt
		}
		plan.Upserts = append(plan.Upserts, item)
	}

	for _, it := range previous {
		if _, ok := wanted[it.ItemKey()]; ok || it.IsManual() {
			continue
		}
		plan.Deletes = append(plan.Deletes, Key{Scope: scope, MatchKey: it.MatchKey, Unit: it.Unit})
	}
	return plan
}

// sameContent reports whether writing next over prev would change anything
// other than timestamps.
func sameContent(prev, next Item) bool {
	return prev.Name == next.Name &&
		prev.NameSecondary == next.NameSecondary &&
		prev.Quantity == next.Quantity &&
		prev.Checked == next.Checked &&
		slices.Equal(prev.CheckedBy, next.CheckedBy) &&
		slices.Equal(prev.RecipeIDs, next.RecipeIDs)
}
