package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lite-lake/technisync/internal/domain/entity"
)

func newZonesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "zones",
		Short: "List synchronized zones",
		Long:  "List every zone known to the local state database with its owner and live record count.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			zones, err := app.Store.ListZones(cmd.Context())
			if err != nil {
				return err
			}
			if len(zones) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no zones synchronized yet")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ZONE\tOWNER\tRECORDS\tKIND")
			for _, zone := range zones {
				owner, err := app.Store.GetZoneOwner(cmd.Context(), zone)
				if err != nil {
					return err
				}
				if owner == "" {
					owner = "-"
				}
				count, err := app.Store.CountRecords(cmd.Context(), zone)
				if err != nil {
					return err
				}
				kind := "forward"
				if entity.IsReverseZone(zone) {
					kind = "reverse"
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", zone, owner, count, kind)
			}
			return w.Flush()
		},
	}
}
