package queue

import "context"

// Store is a shared list store with atomic move and transactional
// append-and-remove. It is the only synchronization point between workers.
//
// Implementations must wrap connectivity failures with ErrStoreUnavailable
// and return every other error unchanged.
type Store interface {
	// Append pushes value to the tail of list.
	Append(ctx context.Context, list, value string) error

	// Move atomically pops the head of src and pushes it to the tail of dst,
	// returning the moved value. Returns ErrListEmpty if src has no items.
	Move(ctx context.Context, src, dst string) (string, error)

	// Remove deletes up to |count| occurrences of value from list, scanning
	// from the head when count > 0 and from the tail when count < 0.
	// Returns the number of removed items.
	Remove(ctx context.Context, list, value string, count int64) (int64, error)

	// AppendAndRemove appends value to appendList and removes one occurrence
	// of it from removeList within a single transaction, in that order.
	// Returns the number of items removed from removeList.
	AppendAndRemove(ctx context.Context, appendList, removeList, value string) (int64, error)

	// Len returns the length of list.
	Len(ctx context.Context, list string) (int64, error)

	// Range returns up to limit items from the head of list. A limit <= 0 returns all items.
	Range(ctx context.Context, list string, limit int64) ([]string, error)

	// Delete removes the given lists entirely.
	Delete(ctx context.Context, lists ...string) error
}
