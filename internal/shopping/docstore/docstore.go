// Package docstore is a file-based shopping.Store: one JSON document per
// item under <base>/<family>/<week>/. It backs the primary store when no
// document database is configured.
package docstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"family-planner/internal/shopping"
)

var safeName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Store provides file-based storage for shopping items.
type Store struct {
	basePath string
	mu       sync.Mutex
}

// New creates a Store and ensures the base directory exists.
func New(basePath string) (*Store, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &Store{basePath: basePath}, nil
}

var _ shopping.Store = (*Store)(nil)

// dirName makes an identifier safe to use as a single path element.
func dirName(id string) string {
	if safeName.MatchString(id) {
		return id
	}
	sum := sha256.Sum256([]byte(id))
	return "h-" + hex.EncodeToString(sum[:8])
}

func (s *Store) scopeDir(scope shopping.Scope) string {
	return filepath.Join(s.basePath, dirName(scope.FamilyID), dirName(scope.WeekStart))
}

// itemPath returns the document path of key.
func (s *Store) itemPath(key shopping.Key) string {
	sum := sha256.Sum256([]byte(key.MatchKey + "\x00" + key.Unit))
	return filepath.Join(s.scopeDir(key.Scope), hex.EncodeToString(sum[:])+".json")
}

func (s *Store) List(ctx context.Context, scope shopping.Scope) ([]shopping.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	matches, err := filepath.Glob(filepath.Join(s.scopeDir(scope), "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob shopping items: %w", err)
	}
	items := make([]shopping.Item, 0, len(matches))
	for _, path := range matches {
		item, err := load(path)
		if err != nil {
			return nil, err
		}
		if item != nil {
			items = append(items, *item)
		}
	}
	return items, nil
}

func (s *Store) Get(ctx context.Context, key shopping.Key) (*shopping.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return load(s.itemPath(key))
}

func (s *Store) Upsert(ctx context.Context, item shopping.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.itemPath(item.Key)
	existing, err := load(path)
	if err != nil {
		return err
	}
	if existing != nil {
		item.CreatedAt = existing.CreatedAt
	}
	return save(path, stamp(item))
}

func (s *Store) Increment(ctx context.Context, item shopping.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.itemPath(item.Key)
	existing, err := load(path)
	if err != nil {
		return err
	}
	if existing != nil {
		existing.Quantity += item.Quantity
		existing.UpdatedAt = item.UpdatedAt
		item = *existing
	}
	return save(path, stamp(item))
}

func (s *Store) Delete(ctx context.Context, key shopping.Key) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.itemPath(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove shopping item %s: %w", key.MatchKey, err)
	}
	return nil
}

func stamp(item shopping.Item) shopping.Item {
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = now
	}
	if item.CheckedBy == nil {
		item.CheckedBy = shopping.CheckedBy{}
	}
	if item.RecipeIDs == nil {
		item.RecipeIDs = []string{}
	}
	return item
}

// load reads one document. A missing file is (nil, nil).
func load(path string) (*shopping.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read shopping item file: %w", err)
	}
	var item shopping.Item
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shopping item %s: %w", filepath.Base(path), err)
	}
	return &item, nil
}

// save writes through a temp file and rename so readers never see a
// partial document.
func save(path string, item shopping.Item) error {
	data, err := json.MarshalIndent(item, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal shopping item: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create week directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write shopping item file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace shopping item file: %w", err)
	}
	return nil
}
