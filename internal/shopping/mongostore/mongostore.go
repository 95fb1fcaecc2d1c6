// Package mongostore keeps shopping items in a MongoDB collection, one
// document per item. It serves as the secondary store behind the SQL store.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"family-planner/internal/shopping"
)

// DefaultCollection is used when no collection name is configured.
const DefaultCollection = "shopping_items"

type itemDocument struct {
	ID                      primitive.ObjectID `bson:"_id,omitempty"`
	FamilyID                string             `bson:"family_id"`
	WeekStart               string             `bson:"week_start"`
	MatchKey                string             `bson:"match_key"`
	Unit                    string             `bson:"unit"`
	IngredientName          string             `bson:"ingredient_name"`
	IngredientNameSecondary string             `bson:"ingredient_name_secondary"`
	TotalQuantity           float64            `bson:"total_quantity"`
	Checked                 bool               `bson:"checked"`
	CheckedBy               []string           `bson:"checked_by"`
	RecipeIDs               []string           `bson:"recipe_ids"`
	CreatedAt               time.Time          `bson:"created_at"`
	UpdatedAt               time.Time          `bson:"updated_at"`
}

// Store is a shopping.Store over one collection.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
}

var _ shopping.Store = (*Store)(nil)

// Connect dials uri and ensures the unique key index exists.
func Connect(ctx context.Context, uri, database, collection string) (*Store, error) {
	if collection == "" {
		collection = DefaultCollection
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	s := &Store{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}
	_, err = s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "family_id", Value: 1},
			{Key: "week_start", Value: 1},
			{Key: "match_key", Value: 1},
			{Key: "unit", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName("item_key"),
	})
	if err != nil {
		s.Close(context.Background())
		return nil, fmt.Errorf("failed to create item index: %w", err)
	}
	return s, nil
}

// Ping checks that the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func keyFilter(key shopping.Key) bson.D {
	return bson.D{
		{Key: "family_id", Value: key.FamilyID},
		{Key: "week_start", Value: key.WeekStart},
		{Key: "match_key", Value: key.MatchKey},
		{Key: "unit", Value: key.Unit},
	}
}

func (s *Store) List(ctx context.Context, scope shopping.Scope) ([]shopping.Item, error) {
	cursor, err := s.collection.Find(ctx,
		bson.D{{Key: "family_id", Value: scope.FamilyID}, {Key: "week_start", Value: scope.WeekStart}},
		options.Find().SetSort(bson.D{{Key: "ingredient_name", Value: 1}, {Key: "unit", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find shopping items: %w", err)
	}
	var docs []itemDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode shopping items: %w", err)
	}

	items := make([]shopping.Item, 0, len(docs))
	for _, d := range docs {
		items = append(items, d.item())
	}
	return items, nil
}

func (s *Store) Get(ctx context.Context, key shopping.Key) (*shopping.Item, error) {
	var doc itemDocument
	err := s.collection.FindOne(ctx, keyFilter(key)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get shopping item: %w", err)
	}
	item := doc.item()
	return &item, nil
}

func (s *Store) Upsert(ctx context.Context, item shopping.Item) error {
	doc := newDocument(item)
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "ingredient_name", Value: doc.IngredientName},
			{Key: "ingredient_name_secondary", Value: doc.IngredientNameSecondary},
			{Key: "total_quantity", Value: doc.TotalQuantity},
			{Key: "checked", Value: doc.Checked},
			{Key: "checked_by", Value: doc.CheckedBy},
			{Key: "recipe_ids", Value: doc.RecipeIDs},
			{Key: "updated_at", Value: doc.UpdatedAt},
		}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "created_at", Value: doc.CreatedAt},
		}},
	}
	_, err := s.collection.UpdateOne(ctx, keyFilter(item.Key), update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert shopping item %s: %w", item.MatchKey, err)
	}
	return nil
}

func (s *Store) Increment(ctx context.Context, item shopping.Item) error {
	doc := newDocument(item)
	update := bson.D{
		{Key: "$inc", Value: bson.D{{Key: "total_quantity", Value: doc.TotalQuantity}}},
		{Key: "$set", Value: bson.D{{Key: "updated_at", Value: doc.UpdatedAt}}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "ingredient_name", Value: doc.IngredientName},
			{Key: "ingredient_name_secondary", Value: doc.IngredientNameSecondary},
			{Key: "checked", Value: doc.Checked},
			{Key: "checked_by", Value: doc.CheckedBy},
			{Key: "recipe_ids", Value: doc.RecipeIDs},
			{Key: "created_at", Value: doc.CreatedAt},
		}},
	}
	_, err := s.collection.UpdateOne(ctx, keyFilter(item.Key), update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to increment shopping item %s: %w", item.MatchKey, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key shopping.Key) error {
	if _, err := s.collection.DeleteOne(ctx, keyFilter(key)); err != nil {
		return fmt.Errorf("failed to delete shopping item %s: %w", key.MatchKey, err)
	}
	return nil
}

func newDocument(item shopping.Item) itemDocument {
	now := time.Now().UTC()
	doc := itemDocument{
		FamilyID:                item.FamilyID,
		WeekStart:               item.WeekStart,
		MatchKey:                item.MatchKey,
		Unit:                    item.Unit,
		IngredientName:          item.Name,
		IngredientNameSecondary: item.NameSecondary,
		TotalQuantity:           item.Quantity,
		Checked:                 item.Checked,
		CheckedBy:               []string(item.CheckedBy),
		RecipeIDs:               item.RecipeIDs,
		CreatedAt:               item.CreatedAt.UTC(),
		UpdatedAt:               item.UpdatedAt.UTC(),
	}
	if doc.CheckedBy == nil {
		doc.CheckedBy = []string{}
	}
	if doc.RecipeIDs == nil {
		doc.RecipeIDs = []string{}
	}
	if item.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	if item.UpdatedAt.IsZero() {
		doc.UpdatedAt = now
	}
	return doc
}

func (d itemDocument) item() shopping.Item {
	item := shopping.Item{
		Key: shopping.Key{
			Scope:    shopping.Scope{FamilyID: d.FamilyID, WeekStart: d.WeekStart},
			MatchKey: d.MatchKey,
			Unit:     d.Unit,
		},
		Name:          d.IngredientName,
		NameSecondary: d.IngredientNameSecondary,
		Quantity:      d.TotalQuantity,
		Checked:       d.Checked,
		CheckedBy:     shopping.CheckedBy(d.CheckedBy),
		RecipeIDs:     d.RecipeIDs,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	if item.CheckedBy == nil {
		item.CheckedBy = shopping.CheckedBy{}
	}
	if item.RecipeIDs == nil {
		item.RecipeIDs = []string{}
	}
	return item
}
