package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/reliablemail/pkg/queue"
)

// ListStore implements queue.Store on the queue_items table.
//
// Items are ordered by id. Moving an item to the tail of another list
// reassigns its id from the sequence, and the head is picked with
// FOR UPDATE SKIP LOCKED so concurrent Move calls never return the same row.
type ListStore struct {
	pool *pgxpool.Pool
}

var _ queue.Store = (*ListStore)(nil)

// NewListStore wraps a connected pool. The caller owns the pool.
func NewListStore(pool *pgxpool.Pool) (*ListStore, error) {
	if pool == nil {
		return nil, ErrPoolNil
	}
	return &ListStore{pool: pool}, nil
}

// Healthcheck pings the database. Unreachable databases report both
// ErrHealthcheckFailed and queue.ErrStoreUnavailable.
func (s *ListStore) Healthcheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return errors.Join(ErrHealthcheckFailed, classify(err))
	}
	return nil
}

const (
	appendSQL = `INSERT INTO queue_items (list, value) VALUES ($1, $2)`

	moveSQL = `
WITH head AS (
    SELECT id FROM queue_items
    WHERE list = $1
    ORDER BY id
    LIMIT 1
    FOR UPDATE SKIP LOCKED
)
UPDATE queue_items AS q
SET list = $2, id = nextval(pg_get_serial_sequence('queue_items', 'id'))
FROM head
WHERE q.id = head.id
RETURNING q.value`

	removeHeadSQL = `
DELETE FROM queue_items
WHERE id IN (
    SELECT id FROM queue_items
    WHERE list = $1 AND value = $2
    ORDER BY id
    LIMIT $3
    FOR UPDATE
)`

	removeTailSQL = `
DELETE FROM queue_items
WHERE id IN (
    SELECT id FROM queue_items
    WHERE list = $1 AND value = $2
    ORDER BY id DESC
    LIMIT $3
    FOR UPDATE
)`

	lenSQL    = `SELECT count(*) FROM queue_items WHERE list = $1`
	rangeSQL  = `SELECT value FROM queue_items WHERE list = $1 ORDER BY id LIMIT $2`
	deleteSQL = `DELETE FROM queue_items WHERE list = ANY($1)`
)

// Append implements queue.Store.
func (s *ListStore) Append(ctx context.Context, list, value string) error {
	_, err := s.pool.Exec(ctx, appendSQL, list, value)
	return classify(err)
}

// Move implements queue.Store.
func (s *ListStore) Move(ctx context.Context, src, dst string) (string, error) {
	var value string
	err := s.pool.QueryRow(ctx, moveSQL, src, dst).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", queue.ErrListEmpty
	}
	if err != nil {
		return "", classify(err)
	}
	return value, nil
}

// Remove implements queue.Store.
func (s *ListStore) Remove(ctx context.Context, list, value string, count int64) (int64, error) {
	n, err := remove(ctx, s.pool, list, value, count)
	return n, classify(err)
}

// AppendAndRemove implements queue.Store in a single transaction.
func (s *ListStore) AppendAndRemove(ctx context.Context, appendList, removeList, value string) (int64, error) {
	var removed int64
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, appendSQL, appendList, value); err != nil {
			return err
		}
		var err error
		removed, err = remove(ctx, tx, removeList, value, 1)
		return err
	})
	if err != nil {
		return 0, classify(err)
	}
	return removed, nil
}

// Len implements queue.Store.
func (s *ListStore) Len(ctx context.Context, list string) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, lenSQL, list).Scan(&n); err != nil {
		return 0, classify(err)
	}
	return n, nil
}

// Range implements queue.Store.
func (s *ListStore) Range(ctx context.Context, list string, limit int64) ([]string, error) {
	var lim *int64
	if limit > 0 {
		lim = &limit
	}

	rows, err := s.pool.Query(ctx, rangeSQL, list, lim)
	if err != nil {
		return nil, classify(err)
	}

	values, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, classify(err)
	}
	return values, nil
}

// Delete implements queue.Store.
func (s *ListStore) Delete(ctx context.Context, lists ...string) error {
	if len(lists) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, deleteSQL, lists)
	return classify(err)
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func remove(ctx context.Context, db execer, list, value string, count int64) (int64, error) {
	query := removeHeadSQL
	switch {
	case count == 0:
		return 0, nil
	case count < 0:
		query = removeTailSQL
		count = -count
	}

	tag, err := db.Exec(ctx, query, list, value, count)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
