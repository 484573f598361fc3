package queue

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore implements Store in process memory for testing and local development.
// It is safe for concurrent use; every method is atomic.
type MemoryStore struct {
	mu    sync.Mutex
	lists map[string][]string
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		lists: make(map[string][]string),
	}
}

// Append implements Store
func (ms *MemoryStore) Append(ctx context.Context, list, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.lists[list] = append(ms.lists[list], value)
	return nil
}

// Move implements Store
func (ms *MemoryStore) Move(ctx context.Context, src, dst string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	items := ms.lists[src]
	if len(items) == 0 {
		return "", ErrListEmpty
	}

	value := items[0]
	ms.set(src, items[1:])
	ms.lists[dst] = append(ms.lists[dst], value)

	return value, nil
}

// Remove implements Store
func (ms *MemoryStore) Remove(ctx context.Context, list, value string, count int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	return ms.remove(list, value, count), nil
}

// AppendAndRemove implements Store
func (ms *MemoryStore) AppendAndRemove(ctx context.Context, appendList, removeList, value string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.lists[appendList] = append(ms.lists[appendList], value)
	return ms.remove(removeList, value, 1), nil
}

// Len implements Store
func (ms *MemoryStore) Len(ctx context.Context, list string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	return int64(len(ms.lists[list])), nil
}

// Range implements Store
func (ms *MemoryStore) Range(ctx context.Context, list string, limit int64) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	items := ms.lists[list]
	if limit > 0 && int64(len(items)) > limit {
		items = items[:limit]
	}
	return slices.Clone(items), nil
}

// Delete implements Store
func (ms *MemoryStore) Delete(ctx context.Context, lists ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	for _, l := range lists {
		delete(ms.lists, l)
	}
	return nil
}

// remove must be called with ms.mu held
func (ms *MemoryStore) remove(list, value string, count int64) int64 {
	items := ms.lists[list]
	if count == 0 || len(items) == 0 {
		return 0
	}

	limit := count
	if limit < 0 {
		limit = -limit
	}

	var removed int64
	if count > 0 {
		for i := 0; i < len(items) && removed < limit; {
			if items[i] == value {
				items = slices.Delete(items, i, i+1)
				removed++
				continue
			}
			i++
		}
	} else {
		for i := len(items) - 1; i >= 0 && removed < limit; i-- {
			if items[i] == value {
				items = slices.Delete(items, i, i+1)
				removed++
			}
		}
	}

	ms.set(list, items)
	return removed
}

func (ms *MemoryStore) set(list string, items []string) {
	if len(items) == 0 {
		delete(ms.lists, list)
		return
	}
	ms.lists[list] = items
}
