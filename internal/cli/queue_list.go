package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/reliablemail/pkg/email"
	"github.com/dmitrymomot/reliablemail/pkg/queue"
)

func newQueueListCmd(app *App, flags *globalFlags) *cobra.Command {
	var limit int64

	cmd := &cobra.Command{
		Use:       "list <pending|processing|discarded>",
		Short:     "List emails from the head of a queue list",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(queue.ListPending), string(queue.ListProcessing), string(queue.ListDiscarded)},
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := queue.ParseList(args[0])
			if err != nil {
				return err
			}
			if limit < 0 {
				return ErrInvalidLimit
			}

			return app.withQueue(cmd, flags, func(_ Config, q *queue.Queue) error {
				items, err := q.Peek(cmd.Context(), list, limit)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(items) == 0 {
					fmt.Fprintf(out, "No jobs in %s list.\n", list)
					return nil
				}

				for _, item := range items {
					if item.Job == nil {
						fmt.Fprintf(out, "%s | malformed payload\n", item.Token.ID())
						continue
					}
					fmt.Fprintf(out, "%s | to=%s | subject=%q\n",
						item.Token.ID(), item.Job[email.FieldToEmail], item.Job[email.FieldSubject])
				}
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&limit, "limit", 20, "maximum number of jobs to show (0 shows all)")
	return cmd
}
