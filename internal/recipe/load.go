package recipe

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// recipeFile is the on-disk import format: a top-level "recipes" list.
type recipeFile struct {
	Recipes []Recipe `yaml:"recipes"`
}

// LoadFile reads recipes from a YAML file. JSON is valid YAML, so exported
// JSON catalogs load too.
func LoadFile(path string) ([]Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a recipe document and fills in missing creation times.
func Parse(data []byte) ([]Recipe, error) {
	var f recipeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode recipes: %w", err)
	}

	now := time.Now().UTC()
	for i := range f.Recipes {
		if f.Recipes[i].ID == "" {
			return nil, fmt.Errorf("recipe %d (%q) has no id", i, f.Recipes[i].Name)
		}
		if f.Recipes[i].CreatedAt.IsZero() {
			f.Recipes[i].CreatedAt = now
		}
	}
	return f.Recipes, nil
}
