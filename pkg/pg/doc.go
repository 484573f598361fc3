// Package pg provides a PostgreSQL backing store for the email queue using
// the pgx/v5 driver, together with connection pooling, migrations and
// health checks.
//
// # Architecture
//
//   - Config is populated from environment variables via
//     github.com/caarlos0/env and controls pool limits and retries.
//
//   - Connect opens a *pgxpool.Pool based on Config, retrying with linear
//     back-off until the database becomes available.
//
//   - Migrate runs the embedded goose migrations that create the
//     queue_items table.
//
//   - ListStore implements queue.Store on that table. Each queue list is a
//     set of rows sharing a list name, ordered by id. Its Healthcheck method
//     pings the pool for readiness probes.
//
// # Usage
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, slog.Default()); err != nil {
//	    return err
//	}
//
//	store, err := pg.NewListStore(pool)
//	if err != nil {
//	    return err
//	}
//	q, err := queue.New(store)
//
// # Error Handling
//
// Connection exceptions, dial failures and network timeouts are joined with
// queue.ErrStoreUnavailable. SQL errors are returned unchanged.
package pg
