package cli

import (
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/reliablemail/pkg/config"
	"github.com/dmitrymomot/reliablemail/pkg/frontend"
	"github.com/dmitrymomot/reliablemail/pkg/httpserver"
)

func newServeCmd(app *App, flags *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP ingress accepting emails",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			log, err := newLogger(cmd.ErrOrStderr(), cfg.Log, false)
			if err != nil {
				return err
			}

			var httpCfg httpserver.Config
			if err := config.Parse(&httpCfg); err != nil {
				return err
			}
			if addr != "" {
				httpCfg.Addr = addr
			}
			var feCfg frontend.Config
			if err := config.Parse(&feCfg); err != nil {
				return err
			}

			reg, m := newRegistry()
			q, backing, release, err := app.openQueue(ctx, flags, cfg, log, m)
			if err != nil {
				return err
			}
			defer release()
			if err := m.RegisterQueueLength(queueLength(q), queueLengthTimeout); err != nil {
				return err
			}

			routerOpts := []frontend.Option{
				frontend.WithLogger(log),
				frontend.WithGatherer(reg),
			}
			if backing.Healthcheck != nil {
				routerOpts = append(routerOpts, frontend.WithReadinessCheck(httpserver.Check{
					Name: cfg.StoreDriver,
					Func: backing.Healthcheck,
				}))
			}
			handler, err := frontend.NewRouter(q, feCfg, routerOpts...)
			if err != nil {
				return err
			}

			serverOpts := []httpserver.Option{httpserver.WithLogger(log)}
			if app.Listener != nil {
				serverOpts = append(serverOpts, httpserver.WithListener(app.Listener))
			}
			return httpserver.NewFromConfig(httpCfg, serverOpts...).Run(ctx, handler)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default $HTTP_ADDR)")
	return cmd
}
