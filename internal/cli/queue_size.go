package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/reliablemail/pkg/queue"
)

func newQueueSizeCmd(app *App, flags *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "size",
		Short: "Show the number of pending, processing and discarded emails",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withQueue(cmd, flags, func(_ Config, q *queue.Queue) error {
				stats, err := q.Stats(cmd.Context())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if asJSON {
					return json.NewEncoder(out).Encode(stats)
				}
				fmt.Fprintf(out, "Queue: %d\n", stats.Pending)
				fmt.Fprintf(out, "Processing: %d\n", stats.Processing)
				fmt.Fprintf(out, "Discarded: %d\n", stats.Discarded)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the counters as JSON")
	return cmd
}
