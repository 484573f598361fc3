package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the remail command tree.
func NewRootCmd(app *App) *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:          "remail",
		Short:        "Reliable email queue",
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.envFile, "env-file", "", "load environment variables from this file")
	pf.StringVar(&flags.store, "store", "", "backing store: redis or postgres (default $STORE_DRIVER)")
	pf.StringVar(&flags.redisURL, "redis-url", "", "Redis connection URL (default $REDIS_URL)")
	pf.StringVar(&flags.namespace, "namespace", "", "queue namespace (default $QUEUE_NAMESPACE)")

	cmd.AddCommand(
		newWorkerRootCmd(app, flags),
		newQueueRootCmd(app, flags),
		newServeCmd(app, flags),
	)
	return cmd
}
