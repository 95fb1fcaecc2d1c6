package shopping

import "slices"

// CheckedBy is the set of household members who marked an item purchased.
// Insertion order is kept so the persisted form is stable.
type CheckedBy []string

// Contains reports whether userID is in the set.
func (c CheckedBy) Contains(userID string) bool {
	return slices.Contains(c, userID)
}

// With returns the set including userID.
func (c CheckedBy) With(userID string) CheckedBy {
	if c.Contains(userID) {
		return c
	}
	out := make(CheckedBy, 0, len(c)+1)
	out = append(out, c...)
	return append(out, userID)
}

// Without returns the set excluding userID.
func (c CheckedBy) Without(userID string) CheckedBy {
	out := make(CheckedBy, 0, len(c))
	for _, id := range c {
		if id != userID {
			out = append(out, id)
		}
	}
	return out
}

// Toggle records userID's checked state on item. The item stays checked for
// everyone while at least one member still has it checked.
func Toggle(item Item, userID string, checked bool) Item {
	if checked {
		item.CheckedBy = item.CheckedBy.With(userID)
	} else {
		item.CheckedBy = item.CheckedBy.Without(userID)
	}
	item.Checked = len(item.CheckedBy) > 0
	return item
}
