package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/reliablemail/pkg/queue"
)

func newQueueRequeueCmd(app *App, flags *globalFlags) *cobra.Command {
	var (
		limit int64
		yes   bool
	)

	cmd := &cobra.Command{
		Use:   "requeue-discarded",
		Short: "Move discarded emails back to the pending list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return ErrInvalidLimit
			}

			return app.withQueue(cmd, flags, func(_ Config, q *queue.Queue) error {
				out := cmd.OutOrStdout()
				if !yes {
					ok, err := confirm(cmd, "Move discarded emails back to pending? They will be validated and sent again.")
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(out, "Aborted.")
						return nil
					}
				}

				n, err := q.RequeueDiscarded(cmd.Context(), limit)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Requeued %d discarded job(s).\n", n)
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&limit, "limit", 0, "maximum number of jobs to move (0 moves all)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newQueueRecoverCmd(app *App, flags *globalFlags) *cobra.Command {
	var (
		limit int64
		yes   bool
	)

	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Move emails stuck in processing back to the pending list",
		Long: "Move emails stuck in processing back to the pending list.\n\n" +
			"Use it after workers crashed. Jobs still held by running workers are moved too\n" +
			"and may be delivered twice.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return ErrInvalidLimit
			}

			return app.withQueue(cmd, flags, func(_ Config, q *queue.Queue) error {
				out := cmd.OutOrStdout()
				if !yes {
					ok, err := confirm(cmd, "Move processing emails back to pending? Running workers may deliver them twice.")
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(out, "Aborted.")
						return nil
					}
				}

				n, err := q.RecoverProcessing(cmd.Context(), limit)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Recovered %d processing job(s).\n", n)
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&limit, "limit", 0, "maximum number of jobs to move (0 moves all)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
