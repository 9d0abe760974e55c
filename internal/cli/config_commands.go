package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Melal1/adb-tui/internal/config"
)

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "remote.root: %s\n", cfg.Remote.Root)
			fmt.Fprintf(out, "local.dest: %s\n", cfg.Local.Dest)
			fmt.Fprintf(out, "transfer.clear_selection: %t\n", cfg.Transfer.ClearSelection)
			fmt.Fprintf(out, "adb.path: %s\n", cfg.ADB.Path)
			fmt.Fprintf(out, "adb.serial: %s\n", cfg.ADB.Serial)
			fmt.Fprintf(out, "notify.enabled: %t\n", cfg.Notify.Enabled)
			fmt.Fprintf(out, "log.file: %s\n", cfg.Log.File)
			fmt.Fprintf(out, "log.level: %s\n", cfg.Log.Level)
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.WriteDefault()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	})

	return configCmd
}
