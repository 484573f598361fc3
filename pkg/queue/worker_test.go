package queue_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/reliablemail/pkg/metrics"
	"github.com/dmitrymomot/reliablemail/pkg/queue"
)

// MockWorkerQueue is a mock implementation of queue.WorkerQueue
type MockWorkerQueue struct {
	mock.Mock
}

func (m *MockWorkerQueue) Poll(ctx context.Context, opts ...queue.CallOption) (*queue.Reservation, error) {
	args := m.Called(ctx)
	if res := args.Get(0); res != nil {
		return res.(*queue.Reservation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockWorkerQueue) Complete(ctx context.Context, token queue.Token, opts ...queue.CallOption) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockWorkerQueue) Discard(ctx context.Context, token queue.Token, opts ...queue.CallOption) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// MockSender is a mock implementation of queue.Sender
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, job queue.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func requireAddress(job queue.Job) (bool, string) {
	if !strings.Contains(job["to_email"], "@") {
		return false, "to_email is not an email address"
	}
	return true, ""
}

func newTestWorker(t *testing.T, q queue.WorkerQueue, s queue.Sender, opts ...queue.WorkerOption) *queue.Worker {
	t.Helper()

	opts = append([]queue.WorkerOption{
		queue.WithWorkerLogger(discardLogger()),
		queue.WithIdleInterval(0),
	}, opts...)
	w, err := queue.NewWorker(q, s, opts...)
	require.NoError(t, err)
	return w
}

func TestNewWorker(t *testing.T) {
	t.Parallel()

	t.Run("nil queue", func(t *testing.T) {
		t.Parallel()

		w, err := queue.NewWorker(nil, &MockSender{})
		assert.ErrorIs(t, err, queue.ErrQueueNil)
		assert.Nil(t, w)
	})

	t.Run("nil sender", func(t *testing.T) {
		t.Parallel()

		w, err := queue.NewWorker(&MockWorkerQueue{}, nil)
		assert.ErrorIs(t, err, queue.ErrSenderNil)
		assert.Nil(t, w)
	})

	t.Run("generated id", func(t *testing.T) {
		t.Parallel()

		w1 := newTestWorker(t, &MockWorkerQueue{}, &MockSender{})
		w2 := newTestWorker(t, &MockWorkerQueue{}, &MockSender{})
		assert.NotEmpty(t, w1.ID())
		assert.NotEqual(t, w1.ID(), w2.ID())
	})

	t.Run("custom id", func(t *testing.T) {
		t.Parallel()

		w := newTestWorker(t, &MockWorkerQueue{}, &MockSender{}, queue.WithWorkerID("worker-1"))
		assert.Equal(t, "worker-1", w.ID())
	})
}

func TestWorker_Process(t *testing.T) {
	t.Parallel()

	job := testJob("Test")
	res := &queue.Reservation{Job: job, Token: queue.Token(`{"body":"Test","subject":"Test","to_email":"a@b.org"}`)}

	t.Run("delivered job is completed", func(t *testing.T) {
		t.Parallel()

		q := &MockWorkerQueue{}
		s := &MockSender{}
		q.On("Poll", mock.Anything).Return(res, nil).Once()
		s.On("Send", mock.Anything, job).Return(nil).Once()
		q.On("Complete", mock.Anything, res.Token).Return(nil).Once()

		w := newTestWorker(t, q, s)
		outcome, err := w.Process(context.Background())
		require.NoError(t, err)
		assert.Equal(t, queue.OutcomeCompleted, outcome)

		q.AssertExpectations(t)
		s.AssertExpectations(t)
	})

	t.Run("empty queue is idle", func(t *testing.T) {
		t.Parallel()

		q := &MockWorkerQueue{}
		s := &MockSender{}
		q.On("Poll", mock.Anything).Return(nil, nil).Once()

		w := newTestWorker(t, q, s)
		outcome, err := w.Process(context.Background())
		require.NoError(t, err)
		assert.Equal(t, queue.OutcomeIdle, outcome)

		s.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("idle waits for interval", func(t *testing.T) {
		t.Parallel()

		q := &MockWorkerQueue{}
		q.On("Poll", mock.Anything).Return(nil, nil).Once()

		w := newTestWorker(t, q, &MockSender{}, queue.WithIdleInterval(50*time.Millisecond))
		start := time.Now()
		_, err := w.Process(context.Background())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("idle is cut short by cancellation", func(t *testing.T) {
		t.Parallel()

		q := &MockWorkerQueue{}
		q.On("Poll", mock.Anything).Return(nil, nil).Once()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		w := newTestWorker(t, q, &MockSender{}, queue.WithIdleInterval(time.Minute))
		start := time.Now()
		outcome, err := w.Process(ctx)
		require.NoError(t, err)
		assert.Equal(t, queue.OutcomeIdle, outcome)
		assert.Less(t, time.Since(start), 5*time.Second)
	})

	t.Run("invalid job is discarded without sending", func(t *testing.T) {
		t.Parallel()

		invalid := &queue.Reservation{
			Job:   queue.Job{"subject": "Test", "body": "Test", "to_email": "badaddress"},
			Token: queue.Token(`{"body":"Test","subject":"Test","to_email":"badaddress"}`),
		}

		q := &MockWorkerQueue{}
		s := &MockSender{}
		q.On("Poll", mock.Anything).Return(invalid, nil).Once()
		q.On("Discard", mock.Anything, invalid.Token).Return(nil).Once()

		w := newTestWorker(t, q, s, queue.WithValidator(queue.ValidatorFunc(requireAddress)))
		outcome, err := w.Process(context.Background())
		require.NoError(t, err)
		assert.Equal(t, queue.OutcomeDiscarded, outcome)

		q.AssertExpectations(t)
		s.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("rejected delivery is discarded", func(t *testing.T) {
		t.Parallel()

		q := &MockWorkerQueue{}
		s := &MockSender{}
		q.On("Poll", mock.Anything).Return(res, nil).Once()
		s.On("Send", mock.Anything, job).Return(fmt.Errorf("%w: mailbox does not exist", queue.ErrRejected)).Once()
		q.On("Discard", mock.Anything, res.Token).Return(nil).Once()

		w := newTestWorker(t, q, s)
		outcome, err := w.Process(context.Background())
		require.NoError(t, err)
		assert.Equal(t, queue.OutcomeDiscarded, outcome)

		q.AssertExpectations(t)
		q.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	})

	t.Run("temporary failure stops the worker", func(t *testing.T) {
		t.Parallel()

		q := &MockWorkerQueue{}
		s := &MockSender{}
		q.On("Poll", mock.Anything).Return(res, nil).Once()
		s.On("Send", mock.Anything, job).Return(fmt.Errorf("%w: quota exceeded", queue.ErrTemporary)).Once()

		w := newTestWorker(t, q, s)
		_, err := w.Process(context.Background())
		assert.ErrorIs(t, err, queue.ErrTemporary)

		q.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
		q.AssertNotCalled(t, "Discard", mock.Anything, mock.Anything)
	})

	t.Run("temporary failure retried within reservation", func(t *testing.T) {
		t.Parallel()

		q := &MockWorkerQueue{}
		s := &MockSender{}
		q.On("Poll", mock.Anything).Return(res, nil).Once()
		s.On("Send", mock.Anything, job).Return(fmt.Errorf("%w: throttled", queue.ErrTemporary)).Twice()
		s.On("Send", mock.Anything, job).Return(nil).Once()
		q.On("Complete", mock.Anything, res.Token).Return(nil).Once()

		w := newTestWorker(t, q, s, queue.WithSendRetry(queue.RetryWithin(time.Second, time.Millisecond)))
		outcome, err := w.Process(context.Background())
		require.NoError(t, err)
		assert.Equal(t, queue.OutcomeCompleted, outcome)

		s.AssertNumberOfCalls(t, "Send", 3)
		q.AssertExpectations(t)
	})

	t.Run("unexpected send error stops the worker", func(t *testing.T) {
		t.Parallel()

		q := &MockWorkerQueue{}
		s := &MockSender{}
		q.On("Poll", mock.Anything).Return(res, nil).Once()
		s.On("Send", mock.Anything, job).Return(errors.New("boom")).Once()

		w := newTestWorker(t, q, s, queue.WithSendRetry(queue.RetryForever(time.Millisecond)))
		_, err := w.Process(context.Background())
		require.Error(t, err)
		assert.NotErrorIs(t, err, queue.ErrTemporary)

		s.AssertNumberOfCalls(t, "Send", 1)
		q.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	})

	t.Run("malformed payload is discarded", func(t *testing.T) {
		t.Parallel()

		malformed := &queue.Reservation{Token: queue.Token("not json")}

		q := &MockWorkerQueue{}
		s := &MockSender{}
		q.On("Poll", mock.Anything).Return(malformed, queue.ErrMalformedPayload).Once()
		q.On("Discard", mock.Anything, malformed.Token).Return(nil).Once()

		w := newTestWorker(t, q, s)
		outcome, err := w.Process(context.Background())
		require.NoError(t, err)
		assert.Equal(t, queue.OutcomeDiscarded, outcome)

		s.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("reserve failure is fatal", func(t *testing.T) {
		t.Parallel()

		q := &MockWorkerQueue{}
		q.On("Poll", mock.Anything).Return(nil, queue.ErrStoreUnavailable).Once()

		w := newTestWorker(t, q, &MockSender{})
		_, err := w.Process(context.Background())
		assert.ErrorIs(t, err, queue.ErrStoreUnavailable)
	})

	t.Run("complete failure is fatal", func(t *testing.T) {
		t.Parallel()

		q := &MockWorkerQueue{}
		s := &MockSender{}
		q.On("Poll", mock.Anything).Return(res, nil).Once()
		s.On("Send", mock.Anything, job).Return(nil).Once()
		q.On("Complete", mock.Anything, res.Token).Return(queue.ErrTokenNotFound).Once()

		w := newTestWorker(t, q, s)
		_, err := w.Process(context.Background())
		assert.ErrorIs(t, err, queue.ErrTokenNotFound)
	})

	t.Run("panicking sender is fatal", func(t *testing.T) {
		t.Parallel()

		q := &MockWorkerQueue{}
		q.On("Poll", mock.Anything).Return(res, nil).Once()
		sender := queue.SenderFunc(func(context.Context, queue.Job) error {
			panic("sender exploded")
		})

		w := newTestWorker(t, q, sender)
		_, err := w.Process(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sender exploded")

		q.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
		q.AssertNotCalled(t, "Discard", mock.Anything, mock.Anything)
	})

	t.Run("reservation resolved after cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())

		q := &MockWorkerQueue{}
		q.On("Poll", mock.Anything).Return(res, nil).Once()
		q.On("Complete", mock.Anything, res.Token).Return(nil).Once()
		sender := queue.SenderFunc(func(ctx context.Context, _ queue.Job) error {
			cancel()
			return ctx.Err()
		})

		w := newTestWorker(t, q, sender)
		outcome, err := w.Process(ctx)
		require.NoError(t, err)
		assert.Equal(t, queue.OutcomeCompleted, outcome)
		q.AssertExpectations(t)
	})
}

func TestWorker_Run(t *testing.T) {
	t.Parallel()

	t.Run("drains the queue end to end", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := newTestQueue(t, queue.NewMemoryStore())
		require.NoError(t, q.Enqueue(ctx, testJob("one")))
		require.NoError(t, q.Enqueue(ctx, queue.Job{"subject": "two", "body": "Test", "to_email": "badaddress"}))
		require.NoError(t, q.Enqueue(ctx, testJob("three")))

		var sent atomic.Int32
		sender := queue.SenderFunc(func(context.Context, queue.Job) error {
			if sent.Add(1) == 2 {
				cancel()
			}
			return nil
		})

		w := newTestWorker(t, q, sender, queue.WithValidator(queue.ValidatorFunc(requireAddress)))
		require.NoError(t, w.Run(ctx))

		assert.Equal(t, int32(2), sent.Load())
		requireStats(t, q, 0, 0, 1)
	})

	t.Run("invalid address goes to discard", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		q := newTestQueue(t, queue.NewMemoryStore())
		require.NoError(t, q.Enqueue(ctx, queue.Job{"subject": "Test", "body": "Test", "to_email": "badaddress"}))

		s := &MockSender{}
		w := newTestWorker(t, q, s,
			queue.WithValidator(queue.ValidatorFunc(requireAddress)),
			queue.WithSingleIteration(),
		)
		require.NoError(t, w.Run(ctx))

		requireStats(t, q, 0, 0, 1)
		s.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("single iteration on empty queue", func(t *testing.T) {
		t.Parallel()

		q := &MockWorkerQueue{}
		q.On("Poll", mock.Anything).Return(nil, nil).Once()

		w := newTestWorker(t, q, &MockSender{}, queue.WithSingleIteration())
		require.NoError(t, w.Run(context.Background()))
		q.AssertNumberOfCalls(t, "Poll", 1)
	})

	t.Run("cancelled before start", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		q := &MockWorkerQueue{}
		w := newTestWorker(t, q, &MockSender{})
		require.NoError(t, w.Run(ctx))
		q.AssertNotCalled(t, "Poll", mock.Anything)
	})

	t.Run("cancelled while polling", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := &MockWorkerQueue{}
		q.On("Poll", mock.Anything).
			Run(func(mock.Arguments) { cancel() }).
			Return(nil, fmt.Errorf("failed to move job: %w", context.Canceled)).Once()

		reg := prometheus.NewRegistry()
		w := newTestWorker(t, q, &MockSender{}, queue.WithWorkerMetrics(metrics.New(reg)))
		require.NoError(t, w.Run(ctx))
		q.AssertNumberOfCalls(t, "Poll", 1)

		n, err := testutil.GatherAndCount(reg, "reliablemail_worker_fatal_errors_total")
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("returns fatal error", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := newFlakyStore()
		q := newTestQueue(t, store)
		require.NoError(t, q.Enqueue(ctx, testJob("Test")))
		store.down.Store(true)

		w := newTestWorker(t, q, &MockSender{})
		err := w.Run(ctx)
		assert.ErrorIs(t, err, queue.ErrStoreUnavailable)

		store.down.Store(false)
		requireStats(t, q, 1, 0, 0)
	})

	t.Run("temporary failure leaves job in processing", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		q := newTestQueue(t, queue.NewMemoryStore())
		require.NoError(t, q.Enqueue(ctx, testJob("Test")))

		sender := queue.SenderFunc(func(context.Context, queue.Job) error {
			return queue.ErrTemporary
		})

		w := newTestWorker(t, q, sender)
		assert.ErrorIs(t, w.Run(ctx), queue.ErrTemporary)
		requireStats(t, q, 0, 1, 0)
	})
}
