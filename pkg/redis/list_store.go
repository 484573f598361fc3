package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/reliablemail/pkg/queue"
)

// ListStore implements queue.Store on Redis lists.
//
// Move maps to LMOVE LEFT RIGHT and AppendAndRemove to a MULTI/EXEC block of
// RPUSH and LREM, so both are atomic on the server.
type ListStore struct {
	db redis.UniversalClient
}

var _ queue.Store = (*ListStore)(nil)

// NewListStore wraps a connected client. The caller owns the client.
func NewListStore(client redis.UniversalClient) (*ListStore, error) {
	if client == nil {
		return nil, ErrClientNil
	}
	return &ListStore{db: client}, nil
}

// Healthcheck pings the server. Unreachable servers report both
// ErrHealthcheckFailed and queue.ErrStoreUnavailable.
func (s *ListStore) Healthcheck(ctx context.Context) error {
	if err := s.db.Ping(ctx).Err(); err != nil {
		return errors.Join(ErrHealthcheckFailed, classify(err))
	}
	return nil
}

// Append implements queue.Store using RPUSH.
func (s *ListStore) Append(ctx context.Context, list, value string) error {
	return classify(s.db.RPush(ctx, list, value).Err())
}

// Move implements queue.Store using LMOVE. An empty source reports queue.ErrListEmpty.
func (s *ListStore) Move(ctx context.Context, src, dst string) (string, error) {
	value, err := s.db.LMove(ctx, src, dst, "LEFT", "RIGHT").Result()
	if errors.Is(err, redis.Nil) {
		return "", queue.ErrListEmpty
	}
	if err != nil {
		return "", classify(err)
	}
	return value, nil
}

// Remove implements queue.Store using LREM.
func (s *ListStore) Remove(ctx context.Context, list, value string, count int64) (int64, error) {
	n, err := s.db.LRem(ctx, list, count, value).Result()
	return n, classify(err)
}

// AppendAndRemove implements queue.Store with a MULTI/EXEC transaction.
func (s *ListStore) AppendAndRemove(ctx context.Context, appendList, removeList, value string) (int64, error) {
	var rem *redis.IntCmd
	_, err := s.db.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, appendList, value)
		rem = pipe.LRem(ctx, removeList, 1, value)
		return nil
	})
	if err != nil {
		return 0, classify(err)
	}
	return rem.Val(), nil
}

// Len implements queue.Store using LLEN.
func (s *ListStore) Len(ctx context.Context, list string) (int64, error) {
	n, err := s.db.LLen(ctx, list).Result()
	return n, classify(err)
}

// Range implements queue.Store using LRANGE.
func (s *ListStore) Range(ctx context.Context, list string, limit int64) ([]string, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = limit - 1
	}
	values, err := s.db.LRange(ctx, list, 0, stop).Result()
	return values, classify(err)
}

// Delete implements queue.Store using DEL.
func (s *ListStore) Delete(ctx context.Context, lists ...string) error {
	if len(lists) == 0 {
		return nil
	}
	return classify(s.db.Del(ctx, lists...).Err())
}
