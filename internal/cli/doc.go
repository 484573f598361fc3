// Package cli implements the remail command line tool.
//
//	remail worker start <backend> [--concurrency N] [--idle 5s] [--once]
//	remail worker backends
//	remail queue size
//	remail queue list <pending|processing|discarded> [--limit N]
//	remail queue clear [--yes]
//	remail queue requeue-discarded [--limit N] [--yes]
//	remail queue recover [--limit N] [--yes]
//	remail serve [--addr :8080]
//
// Every command reads its configuration from the environment (optionally
// seeded from --env-file) on each invocation. The persistent flags --store,
// --redis-url and --namespace override STORE_DRIVER, REDIS_URL and
// QUEUE_NAMESPACE.
//
// Commands stop when their context is cancelled. Workers finish the job they
// hold before returning.
package cli
