package cli

import "github.com/spf13/cobra"

func newQueueRootCmd(app *App, flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and repair the queue",
	}
	cmd.AddCommand(
		newQueueSizeCmd(app, flags),
		newQueueClearCmd(app, flags),
		newQueueListCmd(app, flags),
		newQueueRequeueCmd(app, flags),
		newQueueRecoverCmd(app, flags),
	)
	return cmd
}
