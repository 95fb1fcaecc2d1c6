// Package ingredient turns free-text ingredient names and units into the
// canonical keys used to decide whether two mentions are the same item.
package ingredient

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// KeySeparator joins the normalized names of a bilingual ingredient.
const KeySeparator = "||"

// unitAliases maps normalized unit spellings to their canonical form.
var unitAliases = map[string]string{
	"tsp": "tsp", "teaspoon": "tsp", "teaspoons": "tsp",
	"tbsp": "tbsp", "tablespoon": "tbsp", "tablespoons": "tbsp", "tbs": "tbsp", "tbl": "tbsp",
	"g": "g", "gr": "g", "gram": "g", "grams": "g",
	"kg": "kg", "kilogram": "kg", "kilograms": "kg",
	"mg": "mg", "milligram": "mg", "milligrams": "mg",
	"ml": "ml", "milliliter": "ml", "milliliters": "ml",
	"l": "l", "liter": "l", "liters": "l", "lit": "l",
	"oz": "oz", "ounce": "oz", "ounces": "oz",
	"lb": "lb", "lbs": "lb", "pound": "lb", "pounds": "lb",
	"cup": "cup", "cups": "cup", "c": "cup",
	"pcs": "pcs", "piece": "pcs", "pieces": "pcs", "pc": "pcs",
	"pinch": "pinch", "pinches": "pinch",
	"pkg": "pkg", "pack": "pkg", "packet": "pkg", "package": "pkg", "packages": "pkg",
	"jar": "jar", "jars": "jar",
	"can": "can", "cans": "can",
	"bottle": "bottle", "bottles": "bottle",
	"slice": "slice", "slices": "slice",
	"clove": "clove", "cloves": "clove",
	"bag": "bag", "bags": "bag",
	"bunch": "bunch", "bunches": "bunch",
}

// NormalizeName case-folds raw, drops punctuation and symbols, collapses
// whitespace runs and trims. Diacritics are kept.
func NormalizeName(raw string) string {
	// Casers are stateful; one per call keeps this safe for concurrent use.
	folded := cases.Fold().String(raw)

	var b strings.Builder
	b.Grow(len(folded))
	pendingSpace := false
	for _, r := range folded {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = b.Len() > 0
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			continue
		default:
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeUnit normalizes raw and resolves it through the alias table.
// Unknown units are returned normalized.
func NormalizeUnit(raw string) string {
	n := NormalizeName(raw)
	if canonical, ok := unitAliases[n]; ok {
		return canonical
	}
	return n
}

// IsKnownUnit reports whether raw is a spelling from the alias table.
func IsKnownUnit(raw string) bool {
	_, ok := unitAliases[NormalizeName(raw)]
	return ok
}

// MatchKey builds the identity of an ingredient from all of its names: each
// non-empty name is normalized, duplicates are dropped and the rest sorted,
// so the order in which locales were entered does not matter.
func MatchKey(names ...string) string {
	keys := make([]string, 0, len(names))
	for _, name := range names {
		n := NormalizeName(name)
		if n == "" {
			continue
		}
		dup := false
		for _, k := range keys {
			if k == n {
				dup = true
				break
			}
		}
		if !dup {
			keys = append(keys, n)
		}
	}
	sort.Strings(keys)
	return strings.Join(keys, KeySeparator)
}

// Names splits a match key back into its normalized name components.
func Names(matchKey string) []string {
	if matchKey == "" {
		return nil
	}
	return strings.Split(matchKey, KeySeparator)
}

// KeyHasName reports whether name is matchKey itself or, once normalized,
// one of its components.
func KeyHasName(matchKey, name string) bool {
	if matchKey != "" && matchKey == name {
		return true
	}
	n := NormalizeName(name)
	if n == "" {
		return false
	}
	for _, component := range Names(matchKey) {
		if component == n {
			return true
		}
	}
	return false
}
