package shopping

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Store persists shopping items. Implementations key items by Key, store
// the timestamps they are given and fill in zero ones with the current
// time.
type Store interface {
	// List returns every item of scope.
	List(ctx context.Context, scope Scope) ([]Item, error)
	// Get returns the item at key, or nil when it does not exist.
	Get(ctx context.Context, key Key) (*Item, error)
	// Upsert writes item, keeping the stored creation time of an existing key.
	Upsert(ctx context.Context, item Item) error
	// Increment adds item.Quantity to the stored quantity, inserting item
	// when the key does not exist yet.
	Increment(ctx context.Context, item Item) error
	// Delete removes the item at key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key Key) error
}

// FallbackObserver is told about fallbacks, double failures and writes
// that could not be copied to the secondary store.
type FallbackObserver interface {
	StoreFallback(op string)
	StoreFailure(op string)
	StoreMirrorFailure(op string)
}

// FallbackStore sends every operation to the primary store and, when that
// fails, tries the secondary exactly once. Writes the primary accepted are
// copied to the secondary so it can serve the full list during an outage.
// A failed copy is logged and counted but never fails the write.
type FallbackStore struct {
	primary   Store
	secondary Store
	observer  FallbackObserver
	logger    *slog.Logger
}

// NewFallbackStore wraps primary. A nil secondary disables the fallback.
func NewFallbackStore(primary, secondary Store, observer FallbackObserver, logger *slog.Logger) *FallbackStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackStore{
		primary:   primary,
		secondary: secondary,
		observer:  observer,
		logger:    logger.With("component", "shopping_store"),
	}
}

func (f *FallbackStore) List(ctx context.Context, scope Scope) ([]Item, error) {
	items, _, err := withFallback(ctx, f, "list", func(s Store) ([]Item, error) {
		return s.List(ctx, scope)
	})
	return items, err
}

func (f *FallbackStore) Get(ctx context.Context, key Key) (*Item, error) {
	item, _, err := withFallback(ctx, f, "get", func(s Store) (*Item, error) {
		return s.Get(ctx, key)
	})
	return item, err
}

func (f *FallbackStore) Upsert(ctx context.Context, item Item) error {
	_, primaryOK, err := withFallback(ctx, f, "upsert", func(s Store) (struct{}, error) {
		return struct{}{}, s.Upsert(ctx, item)
	})
	if primaryOK {
		f.mirror(ctx, "upsert", item.Key, func(s Store) error {
			return s.Upsert(ctx, item)
		})
	}
	return err
}

// Increment copies the primary's resulting item rather than repeating the
// increment, so a secondary that missed earlier writes converges.
func (f *FallbackStore) Increment(ctx context.Context, item Item) error {
	_, primaryOK, err := withFallback(ctx, f, "increment", func(s Store) (struct{}, error) {
		return struct{}{}, s.Increment(ctx, item)
	})
	if primaryOK {
		f.mirror(ctx, "increment", item.Key, func(s Store) error {
			current, err := f.primary.Get(ctx, item.Key)
			if err != nil {
				return fmt.Errorf("failed to read back incremented item: %w", err)
			}
			if current == nil {
				return s.Delete(ctx, item.Key)
			}
			return s.Upsert(ctx, *current)
		})
	}
	return err
}

func (f *FallbackStore) Delete(ctx context.Context, key Key) error {
	_, primaryOK, err := withFallback(ctx, f, "delete", func(s Store) (struct{}, error) {
		return struct{}{}, s.Delete(ctx, key)
	})
	if primaryOK {
		f.mirror(ctx, "delete", key, func(s Store) error {
			return s.Delete(ctx, key)
		})
	}
	return err
}

// withFallback reports whether the primary served the call.
func withFallback[T any](ctx context.Context, f *FallbackStore, op string, call func(Store) (T, error)) (T, bool, error) {
	v, err := call(f.primary)
	if err == nil {
		return v, true, nil
	}
	if f.secondary == nil || ctx.Err() != nil {
		f.failure(op)
		return v, false, fmt.Errorf("failed to %s shopping items: %w", op, err)
	}

	f.logger.Warn("primary store failed, using secondary", "op", op, "error", err)
	if f.observer != nil {
		f.observer.StoreFallback(op)
	}

	v, secondaryErr := call(f.secondary)
	if secondaryErr == nil {
		return v, false, nil
	}
	f.failure(op)
	f.logger.Error("secondary store failed", "op", op, "error", secondaryErr)
	return v, false, fmt.Errorf("failed to %s shopping items: %w", op, errors.Join(err, secondaryErr))
}

func (f *FallbackStore) mirror(ctx context.Context, op string, key Key, write func(Store) error) {
	if f.secondary == nil {
		return
	}
	if err := write(f.secondary); err != nil {
		f.logger.Warn("failed to copy write to secondary store",
			"op", op,
			"family_id", key.FamilyID,
			"week", key.WeekStart,
			"key", key.MatchKey,
			"unit", key.Unit,
			"error", err)
		if f.observer != nil {
			f.observer.StoreMirrorFailure(op)
		}
	}
}

func (f *FallbackStore) failure(op string) {
	if f.observer != nil {
		f.observer.StoreFailure(op)
	}
}
