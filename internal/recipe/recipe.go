package recipe

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Recipe is a catalog entry as consumed by the shopping list.
type Recipe struct {
	ID                   string       `json:"id" yaml:"id"`
	Name                 string       `json:"name" yaml:"name"`
	NameSecondary        string       `json:"name_secondary,omitempty" yaml:"name_secondary,omitempty"`
	MealTypes            []string     `json:"meal_types,omitempty" yaml:"meal_types,omitempty"`
	Ingredients          []Ingredient `json:"ingredients" yaml:"ingredients"`
	IngredientsSecondary []Ingredient `json:"ingredients_secondary,omitempty" yaml:"ingredients_secondary,omitempty"`
	FamilyID             string       `json:"family_id,omitempty" yaml:"family_id,omitempty"` // empty = global
	CreatedBy            string       `json:"created_by,omitempty" yaml:"created_by,omitempty"`
	CreatedAt            time.Time    `json:"created_at" yaml:"created_at"`
}

// Ingredient is one line of a recipe.
type Ingredient struct {
	Name          string   `json:"name" yaml:"name"`
	NameSecondary string   `json:"name_secondary,omitempty" yaml:"name_secondary,omitempty"`
	Quantity      Quantity `json:"quantity" yaml:"quantity"`
	Unit          string   `json:"unit" yaml:"unit"`
}

// SecondaryName returns the second-locale name of the ingredient at index i,
// falling back to the index-aligned IngredientsSecondary entry.
func (r Recipe) SecondaryName(i int) string {
	if i < 0 || i >= len(r.Ingredients) {
		return ""
	}
	if name := strings.TrimSpace(r.Ingredients[i].NameSecondary); name != "" {
		return name
	}
	if i < len(r.IngredientsSecondary) {
		return strings.TrimSpace(r.IngredientsSecondary[i].Name)
	}
	return ""
}

// leadingNumber matches the numeric prefix of strings like "2 cups" or "1.5kg".
var leadingNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// Quantity is an ingredient amount as entered. Recipes arrive with either
// numbers or free text ("2", "a pinch"), so both are kept until Value is
// asked for.
type Quantity struct {
	number float64
	text   string
	isText bool
}

// NumericQuantity wraps a plain number.
func NumericQuantity(v float64) Quantity {
	return Quantity{number: v}
}

// TextQuantity wraps a free-text amount.
func TextQuantity(s string) Quantity {
	return Quantity{text: s, isText: true}
}

// Value coerces the quantity to a number. ok is false when free text had no
// leading number; the value is then 0. Empty text is a valid 0.
func (q Quantity) Value() (value float64, ok bool) {
	if !q.isText {
		return q.number, true
	}
	s := strings.TrimSpace(q.text)
	if s == "" {
		return 0, true
	}
	m := leadingNumber.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// String returns the quantity as it was entered.
func (q Quantity) String() string {
	if q.isText {
		return q.text
	}
	return strconv.FormatFloat(q.number, 'f', -1, 64)
}

// MarshalJSON keeps text quantities as strings so they round-trip unchanged.
func (q Quantity) MarshalJSON() ([]byte, error) {
	if q.isText {
		return json.Marshal(q.text)
	}
	return json.Marshal(q.number)
}

// UnmarshalJSON accepts a number, a string or null.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*q = Quantity{}
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("failed to decode quantity: %w", err)
		}
		*q = TextQuantity(s)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("failed to decode quantity %s: %w", trimmed, err)
	}
	*q = NumericQuantity(v)
	return nil
}

// UnmarshalYAML accepts a number, a string or null.
func (q *Quantity) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("quantity must be a scalar, line %d", node.Line)
	}
	switch node.Tag {
	case "!!null":
		*q = Quantity{}
	case "!!int", "!!float":
		// .inf, .nan and hex ints are valid YAML numbers but not amounts;
		// keeping them as text makes Value report them as invalid.
		v, err := strconv.ParseFloat(node.Value, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			*q = TextQuantity(node.Value)
			return nil
		}
		*q = NumericQuantity(v)
	default:
		*q = TextQuantity(node.Value)
	}
	return nil
}
