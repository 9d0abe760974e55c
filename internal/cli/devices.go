package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List connected devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			client := newADBClient(cfg, GetLogger())
			devices, err := client.Devices(GetContext())
			if err != nil {
				return err
			}

			if len(devices) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no devices attached")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SERIAL\tSTATE\tMODEL")
			for _, d := range devices {
				fmt.Fprintf(w, "%s\t%s\t%s\n", d.Serial, d.State, d.Model)
			}
			return w.Flush()
		},
	}
}
