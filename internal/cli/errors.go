package cli

import "errors"

var (
	// ErrUnknownStore is returned when --store names an unsupported driver.
	ErrUnknownStore = errors.New("unknown store driver")

	// ErrInvalidConcurrency is returned when --concurrency is below one.
	ErrInvalidConcurrency = errors.New("concurrency must be at least 1")

	// ErrInvalidLimit is returned when --limit is negative.
	ErrInvalidLimit = errors.New("limit must not be negative")

	// ErrStoreOpenerNil is returned when the app has no way to open a store.
	ErrStoreOpenerNil = errors.New("store opener cannot be nil")
)
