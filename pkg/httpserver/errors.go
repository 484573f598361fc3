package httpserver

import "errors"

var (
	// ErrStart wraps listen and serve failures.
	ErrStart = errors.New("failed to start HTTP server")

	// ErrShutdown wraps failures of the graceful shutdown.
	ErrShutdown = errors.New("failed to shutdown HTTP server gracefully")

	// ErrAlreadyRunning is returned by a second Run on the same Server.
	ErrAlreadyRunning = errors.New("http server is already running")
)
