package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newWorkerRootCmd(app *App, flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run delivery workers",
	}
	cmd.AddCommand(
		newWorkerStartCmd(app, flags),
		newWorkerBackendsCmd(app),
	)
	return cmd
}

func newWorkerBackendsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List the available email backends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range app.Registry.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
