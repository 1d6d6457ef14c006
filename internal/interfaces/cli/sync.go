package cli

import (
	"github.com/spf13/cobra"
)

func newSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run a single synchronization cycle",
		Long:  "Pull records from every server, reconcile local state and propagate changes, then exit.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			return app.Manager().Sync(cmd.Context())
		},
	}
}
