package queue_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/dmitrymomot/reliablemail/pkg/queue"
)

var errConnRefused = errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")

// flakyStore wraps a MemoryStore and fails with a connectivity error while
// down is set, or for the next `failures` calls.
type flakyStore struct {
	*queue.MemoryStore
	down     atomic.Bool
	failures atomic.Int32
	calls    atomic.Int32

	// failCompensation makes the tail-removal on the discard list fail
	failCompensation atomic.Bool
	// dropOnAppendAndRemove removes the token before the transaction runs
	dropOnAppendAndRemove atomic.Bool
}

func newFlakyStore() *flakyStore {
	return &flakyStore{MemoryStore: queue.NewMemoryStore()}
}

func (s *flakyStore) fail() error {
	s.calls.Add(1)
	if s.down.Load() {
		return errors.Join(queue.ErrStoreUnavailable, errConnRefused)
	}
	if s.failures.Load() > 0 {
		s.failures.Add(-1)
		return errors.Join(queue.ErrStoreUnavailable, errConnRefused)
	}
	return nil
}

func (s *flakyStore) Append(ctx context.Context, list, value string) error {
	if err := s.fail(); err != nil {
		return err
	}
	return s.MemoryStore.Append(ctx, list, value)
}

func (s *flakyStore) Move(ctx context.Context, src, dst string) (string, error) {
	if err := s.fail(); err != nil {
		return "", err
	}
	return s.MemoryStore.Move(ctx, src, dst)
}

func (s *flakyStore) Remove(ctx context.Context, list, value string, count int64) (int64, error) {
	if count < 0 && s.failCompensation.Load() {
		return 0, errors.Join(queue.ErrStoreUnavailable, errConnRefused)
	}
	if err := s.fail(); err != nil {
		return 0, err
	}
	return s.MemoryStore.Remove(ctx, list, value, count)
}

func (s *flakyStore) AppendAndRemove(ctx context.Context, appendList, removeList, value string) (int64, error) {
	if err := s.fail(); err != nil {
		return 0, err
	}
	if s.dropOnAppendAndRemove.Load() {
		_, _ = s.MemoryStore.Remove(ctx, removeList, value, 1)
	}
	return s.MemoryStore.AppendAndRemove(ctx, appendList, removeList, value)
}

func (s *flakyStore) Len(ctx context.Context, list string) (int64, error) {
	if err := s.fail(); err != nil {
		return 0, err
	}
	return s.MemoryStore.Len(ctx, list)
}

func (s *flakyStore) Delete(ctx context.Context, lists ...string) error {
	if err := s.fail(); err != nil {
		return err
	}
	return s.MemoryStore.Delete(ctx, lists...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testJob(subject string) queue.Job {
	return queue.Job{
		"subject":  subject,
		"body":     "Test",
		"to_email": "a@b.org",
	}
}
