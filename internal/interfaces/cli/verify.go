package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lite-lake/technisync/internal/application/verify"
	"github.com/lite-lake/technisync/internal/domain"
)

func newVerifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Verify that synchronized records resolve",
		Long:  "Query every server's resolver over port 53 and check the answers against the local state database.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			report, err := verify.New(app.Config, app.Store).Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if report.OK() {
				fmt.Fprintf(out, "ok: %d records verified\n", report.Checked)
				return nil
			}
			for i := range report.Mismatches {
				fmt.Fprintln(out, report.Mismatches[i].String())
			}
			return fmt.Errorf("%w: %d of %d records", domain.ErrVerifyMismatch, len(report.Mismatches), report.Checked)
		},
	}
}
