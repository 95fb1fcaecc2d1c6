package shopping

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"
)

var errStoreDown = errors.New("store down")

// memStore is an in-memory Store with failure injection.
type memStore struct {
	mu    sync.Mutex
	items map[Key]Item
	fail  map[string]bool
	calls map[string]int
}

func newMemStore() *memStore {
	return &memStore{
		items: make(map[Key]Item),
		fail:  make(map[string]bool),
		calls: make(map[string]int),
	}
}

func (m *memStore) failOn(ops ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, op := range ops {
		m.fail[op] = true
	}
}

func (m *memStore) enter(op string) error {
	m.calls[op]++
	if m.fail[op] {
		return errStoreDown
	}
	return nil
}

func (m *memStore) List(_ context.Context, scope Scope) ([]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("list"); err != nil {
		return nil, err
	}
	var out []Item
	for k, it := range m.items {
		if k.Scope == scope {
			out = append(out, it)
		}
	}
	slices.SortFunc(out, func(a, b Item) int {
		if a.MatchKey != b.MatchKey {
			if a.MatchKey < b.MatchKey {
				return -1
			}
			return 1
		}
		if a.Unit < b.Unit {
			return -1
		}
		if a.Unit > b.Unit {
			return 1
		}
		return 0
	})
	return out, nil
}

func (m *memStore) Get(_ context.Context, key Key) (*Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("get"); err != nil {
		return nil, err
	}
	it, ok := m.items[key]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (m *memStore) Upsert(_ context.Context, item Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("upsert"); err != nil {
		return err
	}
	if old, ok := m.items[item.Key]; ok {
		item.CreatedAt = old.CreatedAt
	}
	stamp(&item)
	m.items[item.Key] = item
	return nil
}

func (m *memStore) Increment(_ context.Context, item Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("increment"); err != nil {
		return err
	}
	if old, ok := m.items[item.Key]; ok {
		old.Quantity += item.Quantity
		old.UpdatedAt = item.UpdatedAt
		stamp(&old)
		m.items[item.Key] = old
		return nil
	}
	stamp(&item)
	m.items[item.Key] = item
	return nil
}

func (m *memStore) Delete(_ context.Context, key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("delete"); err != nil {
		return err
	}
	delete(m.items, key)
	return nil
}

func (m *memStore) count(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func stamp(it *Item) {
	now := time.Now().UTC()
	if it.CreatedAt.IsZero() {
		it.CreatedAt = now
	}
	if it.UpdatedAt.IsZero() {
		it.UpdatedAt = now
	}
}
