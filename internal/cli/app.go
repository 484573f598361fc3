package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/reliablemail/pkg/config"
	"github.com/dmitrymomot/reliablemail/pkg/email"
	"github.com/dmitrymomot/reliablemail/pkg/logger"
	"github.com/dmitrymomot/reliablemail/pkg/metrics"
	"github.com/dmitrymomot/reliablemail/pkg/queue"
)

const serviceName = "remail"

// queueLengthTimeout bounds the store calls made on each metrics scrape.
const queueLengthTimeout = 2 * time.Second

// Config is read from the environment on every command invocation.
type Config struct {
	StoreDriver string `env:"STORE_DRIVER" envDefault:"redis"`
	Log         logger.Config
	Queue       queue.Config
}

// App holds the dependencies shared by all commands.
type App struct {
	OpenStore StoreOpener
	Registry  *email.Registry

	// Listener, when set, is served by "serve" instead of HTTP_ADDR.
	Listener net.Listener
}

// NewApp returns an App wired to the real stores and email backends.
func NewApp() *App {
	return &App{
		OpenStore: OpenStore,
		Registry:  email.DefaultRegistry(),
	}
}

// globalFlags are the persistent flags of the root command.
type globalFlags struct {
	envFile   string
	store     string
	redisURL  string
	namespace string
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig(flags *globalFlags) (Config, error) {
	var cfg Config
	if flags.envFile != "" {
		if err := config.LoadEnv(flags.envFile); err != nil {
			return cfg, err
		}
	}
	if err := config.Parse(&cfg); err != nil {
		return cfg, err
	}

	if flags.store != "" {
		cfg.StoreDriver = flags.store
	}
	if flags.namespace != "" {
		cfg.Queue.Namespace = flags.namespace
	}
	return cfg, nil
}

// newLogger builds the command logger. Verbose forces debug level.
func newLogger(w io.Writer, cfg logger.Config, verbose bool) (*slog.Logger, error) {
	if cfg.Level != "" {
		if _, err := logger.ParseLevel(cfg.Level); err != nil {
			return nil, err
		}
	}
	switch logger.Format(cfg.Format) {
	case "", logger.FormatJSON, logger.FormatText:
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.Format)
	}

	opts := []logger.Option{
		logger.WithConfig(cfg, serviceName),
		logger.WithOutput(w),
	}
	if verbose {
		opts = append(opts, logger.WithLevel(slog.LevelDebug))
	}
	return logger.New(opts...), nil
}

// openQueue connects to the configured store and builds the queue on top of it.
// The returned function releases the store connection.
func (a *App) openQueue(ctx context.Context, flags *globalFlags, cfg Config, log *slog.Logger, m *metrics.Metrics) (*queue.Queue, *Backing, func(), error) {
	if a.OpenStore == nil {
		return nil, nil, nil, ErrStoreOpenerNil
	}

	backing, err := a.OpenStore(ctx, StoreOptions{
		Driver:   cfg.StoreDriver,
		RedisURL: flags.redisURL,
		Logger:   log,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}

	release := func() {
		if backing.Close == nil {
			return
		}
		if err := backing.Close(); err != nil {
			log.ErrorContext(ctx, "failed to close store", logger.Error(err))
		}
	}

	q, err := queue.New(backing.Store,
		queue.WithNamespace(cfg.Queue.Namespace),
		queue.WithRetryPolicy(cfg.Queue.RetryPolicy()),
		queue.WithLogger(log),
		queue.WithMetrics(m),
	)
	if err != nil {
		release()
		return nil, nil, nil, err
	}
	return q, backing, release, nil
}

// newRegistry returns a Prometheus registry with the runtime collectors
// and the queue metrics registered on it.
func newRegistry() (*prometheus.Registry, *metrics.Metrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, metrics.New(reg)
}

func queueLength(q *queue.Queue) metrics.StatsFunc {
	return func(ctx context.Context) (int64, int64, int64, error) {
		s, err := q.Stats(ctx)
		return s.Pending, s.Processing, s.Discarded, err
	}
}

// withQueue opens the queue for a one-shot command and runs fn against it.
func (a *App) withQueue(cmd *cobra.Command, flags *globalFlags, fn func(cfg Config, q *queue.Queue) error) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	log, err := newLogger(cmd.ErrOrStderr(), cfg.Log, false)
	if err != nil {
		return err
	}

	q, _, release, err := a.openQueue(cmd.Context(), flags, cfg, log, nil)
	if err != nil {
		return err
	}
	defer release()

	return fn(cfg, q)
}
