// Package redis provides the Redis backing store for the email queue along
// with connection and health-check helpers.
//
// The package wraps the go-redis client and adds:
//
//   - Robust `Connect` which retries the connection using the supplied
//     configuration.
//   - `ListStore`, an implementation of queue.Store on Redis lists.
//   - `ListStore.Healthcheck` for readiness probes.
//
// Configuration is described by the `Config` struct whose fields can be
// populated from environment variables via github.com/caarlos0/env.
//
// # Usage
//
//	cfg := redis.Config{
//	    ConnectionURL:  "redis://localhost:6379/0",
//	    RetryAttempts:  3,
//	    RetryInterval:  5 * time.Second,
//	    ConnectTimeout: 30 * time.Second,
//	}
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    // handle error, probably terminate the application
//	}
//	defer client.Close()
//
//	store, err := redis.NewListStore(client)
//	if err != nil {
//	    return err
//	}
//	q, err := queue.New(store, queue.WithNamespace("reliableemail"))
//
// # Errors
//
// Connectivity failures (refused or reset connections, timeouts, a closed
// client) are joined with queue.ErrStoreUnavailable so the queue can retry
// them. Redis error replies are returned unchanged.
package redis
