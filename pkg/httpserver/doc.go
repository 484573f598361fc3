// Package httpserver runs an http.Handler with timeouts and graceful shutdown.
//
// Run blocks until the context is cancelled (or Shutdown is called), then
// drains in-flight requests within the shutdown timeout. Signal handling is
// left to the caller, typically through signal.NotifyContext.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//	    return err
//	}
//
// LivenessHandler and ReadinessHandler serve JSON health probes; readiness
// runs named dependency checks and answers 503 when any of them fails.
//
// Listen failures are wrapped with ErrStart and shutdown failures with
// ErrShutdown.
package httpserver
