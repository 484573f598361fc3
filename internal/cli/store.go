package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/reliablemail/pkg/config"
	"github.com/dmitrymomot/reliablemail/pkg/logger"
	"github.com/dmitrymomot/reliablemail/pkg/pg"
	"github.com/dmitrymomot/reliablemail/pkg/queue"
	"github.com/dmitrymomot/reliablemail/pkg/redis"
)

// Store drivers accepted by --store.
const (
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// StoreOptions selects and configures the backing store.
// Empty fields fall back to the environment.
type StoreOptions struct {
	Driver   string
	RedisURL string
	Logger   *slog.Logger
}

// Backing is an opened backing store together with its health probe.
type Backing struct {
	Store       queue.Store
	Healthcheck func(context.Context) error
	Close       func() error
}

// StoreOpener connects to the backing store described by opts.
type StoreOpener func(ctx context.Context, opts StoreOptions) (*Backing, error)

// OpenStore connects to Redis or Postgres. Postgres migrations are applied
// before the store is returned.
func OpenStore(ctx context.Context, opts StoreOptions) (*Backing, error) {
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}

	switch opts.Driver {
	case StoreRedis, "":
		return openRedis(ctx, opts)
	case StorePostgres, "pg":
		return openPostgres(ctx, opts)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStore, opts.Driver)
}

func openRedis(ctx context.Context, opts StoreOptions) (*Backing, error) {
	var cfg redis.Config
	if err := config.Parse(&cfg); err != nil {
		return nil, err
	}
	if opts.RedisURL != "" {
		cfg.ConnectionURL = opts.RedisURL
	}

	client, err := redis.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store, err := redis.NewListStore(client)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Backing{
		Store:       store,
		Healthcheck: store.Healthcheck,
		Close:       client.Close,
	}, nil
}

func openPostgres(ctx context.Context, opts StoreOptions) (*Backing, error) {
	var cfg pg.Config
	if err := config.Parse(&cfg); err != nil {
		return nil, err
	}

	pool, err := pg.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pg.Migrate(ctx, pool, cfg, opts.Logger); err != nil {
		pool.Close()
		return nil, err
	}
	store, err := pg.NewListStore(pool)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &Backing{
		Store:       store,
		Healthcheck: store.Healthcheck,
		Close: func() error {
			pool.Close()
			return nil
		},
	}, nil
}
