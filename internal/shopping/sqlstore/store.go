// Package sqlstore keeps shopping items in the relational database, one row
// per (family, week, match key, unit).
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"family-planner/internal/shopping"
	"family-planner/internal/shopping/sqlstore/shoppingdb"
)

// Store is the primary shopping.Store.
type Store struct {
	queries *shoppingdb.Queries
	db      *sql.DB
}

// New creates a Store on an already migrated database.
func New(d *sql.DB) *Store {
	return &Store{
		queries: shoppingdb.New(d),
		db:      d,
	}
}

var _ shopping.Store = (*Store)(nil)

func (s *Store) List(ctx context.Context, scope shopping.Scope) ([]shopping.Item, error) {
	rows, err := s.queries.ListShoppingItems(ctx, shoppingdb.ListShoppingItemsParams{
		FamilyID:  scope.FamilyID,
		WeekStart: scope.WeekStart,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list shopping items: %w", err)
	}

	items := make([]shopping.Item, 0, len(rows))
	for _, row := range rows {
		item, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *Store) Get(ctx context.Context, key shopping.Key) (*shopping.Item, error) {
	row, err := s.queries.GetShoppingItem(ctx, shoppingdb.GetShoppingItemParams{
		FamilyID:  key.FamilyID,
		WeekStart: key.WeekStart,
		MatchKey:  key.MatchKey,
		Unit:      key.Unit,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get shopping item: %w", err)
	}
	item, err := fromRow(row)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) Upsert(ctx context.Context, item shopping.Item) error {
	p, err := toParams(item)
	if err != nil {
		return err
	}
	if err := s.queries.UpsertShoppingItem(ctx, p); err != nil {
		return fmt.Errorf("failed to upsert shopping item %s: %w", item.MatchKey, err)
	}
	return nil
}

func (s *Store) Increment(ctx context.Context, item shopping.Item) error {
	p, err := toParams(item)
	if err != nil {
		return err
	}
	if err := s.queries.IncrementShoppingItem(ctx, shoppingdb.IncrementShoppingItemParams(p)); err != nil {
		return fmt.Errorf("failed to increment shopping item %s: %w", item.MatchKey, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key shopping.Key) error {
	err := s.queries.DeleteShoppingItem(ctx, shoppingdb.DeleteShoppingItemParams{
		FamilyID:  key.FamilyID,
		WeekStart: key.WeekStart,
		MatchKey:  key.MatchKey,
		Unit:      key.Unit,
	})
	if err != nil {
		return fmt.Errorf("failed to delete shopping item %s: %w", key.MatchKey, err)
	}
	return nil
}

// WeekSummary is the item count of one stored week.
type WeekSummary struct {
	WeekStart string
	Items     int
	Checked   int
}

// Summaries returns per-week item counts for familyID, newest week first.
func (s *Store) Summaries(ctx context.Context, familyID string) ([]WeekSummary, error) {
	rows, err := s.queries.CountShoppingItemsByWeek(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to count shopping items: %w", err)
	}
	out := make([]WeekSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, WeekSummary{
			WeekStart: r.WeekStart,
			Items:     int(r.Items),
			Checked:   int(r.Checked.Float64),
		})
	}
	return out, nil
}

func toParams(item shopping.Item) (shoppingdb.UpsertShoppingItemParams, error) {
	checkedBy := item.CheckedBy
	if checkedBy == nil {
		checkedBy = shopping.CheckedBy{}
	}
	checkedJSON, err := json.Marshal(checkedBy)
	if err != nil {
		return shoppingdb.UpsertShoppingItemParams{}, fmt.Errorf("failed to marshal checked_by: %w", err)
	}
	recipeIDs := item.RecipeIDs
	if recipeIDs == nil {
		recipeIDs = []string{}
	}
	recipesJSON, err := json.Marshal(recipeIDs)
	if err != nil {
		return shoppingdb.UpsertShoppingItemParams{}, fmt.Errorf("failed to marshal recipe_ids: %w", err)
	}

	now := time.Now().UTC()
	created, updated := item.CreatedAt.UTC(), item.UpdatedAt.UTC()
	if item.CreatedAt.IsZero() {
		created = now
	}
	if item.UpdatedAt.IsZero() {
		updated = now
	}

	var checked int64
	if item.Checked {
		checked = 1
	}
	return shoppingdb.UpsertShoppingItemParams{
		FamilyID:                item.FamilyID,
		WeekStart:               item.WeekStart,
		MatchKey:                item.MatchKey,
		Unit:                    item.Unit,
		IngredientName:          item.Name,
		IngredientNameSecondary: item.NameSecondary,
		TotalQuantity:           item.Quantity,
		Checked:                 checked,
		CheckedBy:               string(checkedJSON),
		RecipeIds:               string(recipesJSON),
		CreatedAt:               created,
		UpdatedAt:               updated,
	}, nil
}

func fromRow(row shoppingdb.ShoppingItem) (shopping.Item, error) {
	item := shopping.Item{
		Key: shopping.Key{
			Scope:    shopping.Scope{FamilyID: row.FamilyID, WeekStart: row.WeekStart},
			MatchKey: row.MatchKey,
			Unit:     row.Unit,
		},
		Name:          row.IngredientName,
		NameSecondary: row.IngredientNameSecondary,
		Quantity:      row.TotalQuantity,
		Checked:       row.Checked != 0,
		CheckedBy:     shopping.CheckedBy{},
		RecipeIDs:     []string{},
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	if err := json.Unmarshal([]byte(row.CheckedBy), &item.CheckedBy); err != nil {
		return shopping.Item{}, fmt.Errorf("failed to unmarshal checked_by of %s: %w", row.MatchKey, err)
	}
	if err := json.Unmarshal([]byte(row.RecipeIds), &item.RecipeIDs); err != nil {
		return shopping.Item{}, fmt.Errorf("failed to unmarshal recipe_ids of %s: %w", row.MatchKey, err)
	}
	return item, nil
}
