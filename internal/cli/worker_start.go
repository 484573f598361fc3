package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/reliablemail/pkg/config"
	"github.com/dmitrymomot/reliablemail/pkg/email"
	"github.com/dmitrymomot/reliablemail/pkg/httpserver"
	"github.com/dmitrymomot/reliablemail/pkg/logger"
	"github.com/dmitrymomot/reliablemail/pkg/queue"
)

type workerFlags struct {
	concurrency int
	idle        time.Duration
	once        bool
	verbose     bool
	logFile     string
	metricsAddr string
}

func newWorkerStartCmd(app *App, flags *globalFlags) *cobra.Command {
	wf := &workerFlags{}

	cmd := &cobra.Command{
		Use:   "start <backend>",
		Short: "Start workers delivering through the given backend",
		Args:  cobra.ExactArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return app.Registry.Names(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runWorkers(cmd, flags, wf, args[0])
		},
	}

	f := cmd.Flags()
	f.IntVarP(&wf.concurrency, "concurrency", "c", 0, "number of workers (default $QUEUE_WORKERS)")
	f.DurationVar(&wf.idle, "idle", 0, "wait between polls of an empty queue (default $QUEUE_IDLE_INTERVAL)")
	f.BoolVar(&wf.once, "once", false, "process a single job per worker and exit")
	f.BoolVarP(&wf.verbose, "verbose", "v", false, "log at debug level")
	f.StringVar(&wf.logFile, "log", "", "append logs to this file instead of stderr")
	f.StringVar(&wf.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	return cmd
}

func (a *App) runWorkers(cmd *cobra.Command, flags *globalFlags, wf *workerFlags, backend string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	if wf.concurrency != 0 {
		cfg.Queue.Workers = wf.concurrency
	}
	if wf.idle > 0 {
		cfg.Queue.IdleInterval = wf.idle
	}
	if cfg.Queue.Workers < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidConcurrency, cfg.Queue.Workers)
	}

	var logOut io.Writer = cmd.ErrOrStderr()
	if wf.logFile != "" {
		f, err := os.OpenFile(wf.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	log, err := newLogger(logOut, cfg.Log, wf.verbose)
	if err != nil {
		return err
	}

	var emailCfg email.Config
	if err := config.Parse(&emailCfg); err != nil {
		return err
	}
	sender, err := a.Registry.Build(ctx, backend, emailCfg, log)
	if err != nil {
		return err
	}

	reg, m := newRegistry()
	q, _, release, err := a.openQueue(ctx, flags, cfg, log, m)
	if err != nil {
		return err
	}
	defer release()
	if err := m.RegisterQueueLength(queueLength(q), queueLengthTimeout); err != nil {
		return err
	}

	opts := []queue.WorkerOption{
		queue.WithIdleInterval(cfg.Queue.IdleInterval),
		queue.WithValidator(email.Validator),
		queue.WithBackendName(backend),
		queue.WithWorkerLogger(log),
		queue.WithWorkerMetrics(m),
	}
	if wf.once {
		opts = append(opts, queue.WithSingleIteration())
	}

	workers := make([]*queue.Worker, 0, cfg.Queue.Workers)
	for range cfg.Queue.Workers {
		w, err := queue.NewWorker(q, sender, opts...)
		if err != nil {
			return err
		}
		workers = append(workers, w)
	}

	log.InfoContext(ctx, "starting workers",
		logger.Namespace(q.Namespace()),
		logger.Backend(backend),
		slog.Int("count", len(workers)))

	g, gctx := errgroup.WithContext(ctx)
	serverCtx, stopServer := context.WithCancel(gctx)
	defer stopServer()

	if wf.metricsAddr != "" {
		srv := httpserver.New(httpserver.WithAddr(wf.metricsAddr), httpserver.WithLogger(log))
		g.Go(func() error {
			return srv.Run(serverCtx, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		})
	}

	g.Go(func() error {
		defer stopServer()

		wg, wctx := errgroup.WithContext(gctx)
		for _, w := range workers {
			wg.Go(func() error {
				return w.Run(wctx)
			})
		}
		return wg.Wait()
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
