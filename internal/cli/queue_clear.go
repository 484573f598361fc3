package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/reliablemail/pkg/queue"
)

func newQueueClearCmd(app *App, flags *globalFlags) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every pending, processing and discarded email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withQueue(cmd, flags, func(_ Config, q *queue.Queue) error {
				out := cmd.OutOrStdout()
				if !yes {
					ok, err := confirm(cmd, fmt.Sprintf("Delete all emails in namespace %q?", q.Namespace()))
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(out, "Aborted.")
						return nil
					}
				}

				if err := q.Reset(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(out, "Queue cleared.")
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
