// Package queue provides a reliable, store-agnostic job queue for outbound
// email and the worker loop that drains it.
//
// The package is organised around two components:
//
//   - Queue  — the enqueue / reserve / complete / discard protocol
//   - Worker — reserves one job at a time, validates it, hands it to a Sender
//     and resolves the reservation
//
// # Architecture
//
// A queue is three lists in a shared Store, named after a namespace:
//
//	<namespace>.queue       pending jobs
//	<namespace>.processing  jobs reserved by a worker
//	<namespace>.discard     jobs that failed validation or were rejected
//
// Reserve moves the head of the pending list to the tail of the processing
// list with the store's atomic move primitive, so ownership of a job is never
// ambiguous and no application-level locking is needed. Whatever is left in
// processing after a crash is exactly the set of in-flight jobs.
//
// A job's Token is its serialized form. It is both the payload and the handle
// used by Complete and Discard. Jobs with identical content share a token.
//
// Store implementations live in sibling packages (redis, pg); MemoryStore is
// provided for tests and local development.
//
// # Usage
//
//	store := queue.NewMemoryStore()
//	q, err := queue.New(store, queue.WithNamespace("reliableemail"))
//	if err != nil {
//	    return err
//	}
//
//	_ = q.Enqueue(ctx, queue.Job{
//	    "subject":  "Welcome",
//	    "body":     "<p>Hello</p>",
//	    "to_email": "user@example.com",
//	})
//
//	w, err := queue.NewWorker(q, sender,
//	    queue.WithValidator(validator),
//	    queue.WithIdleInterval(5*time.Second),
//	)
//	if err != nil {
//	    return err
//	}
//	return w.Run(ctx)
//
// # Retries
//
// Every queue call runs under a RetryPolicy. The zero policy fails on the
// first error. Only errors wrapping ErrStoreUnavailable are retried; an empty
// queue or a missing token is returned immediately.
//
//	q.Enqueue(ctx, job, queue.WithRetry(30*time.Second, time.Second))
//
// # Error Handling
//
// ErrQueueEmpty is an expected condition; Poll reports it as a nil
// reservation instead. ErrTokenNotFound signals a double resolution or a job
// lost to an earlier crash and is always surfaced. Senders classify failures
// with ErrRejected (job is discarded) and ErrTemporary (worker stops).
package queue
