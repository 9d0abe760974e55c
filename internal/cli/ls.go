package cli

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Melal1/adb-tui/internal/adb"
	"github.com/Melal1/adb-tui/internal/config"
	"github.com/Melal1/adb-tui/internal/history"
)

func newLsCmd() *cobra.Command {
	var long bool

	cmd := &cobra.Command{
		Use:   "ls [remote-path]",
		Short: "List a remote directory",
		Long: `List the contents of a directory on the device. Without a path the
last browsed directory is listed, falling back to the configured root.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			path := cfg.Remote.Root
			if len(args) == 1 {
				path = args[0]
			} else if last := history.NewStore(config.ConfigDirectory(), GetLogger()).LastDir(); last != "" {
				path = last
			}

			client := newADBClient(cfg, GetLogger())
			entries, err := client.List(GetContext(), path)
			if err != nil {
				return err
			}

			// Directories first, then case-insensitive by name.
			sort.SliceStable(entries, func(i, j int) bool {
				di := entries[i].Kind == adb.KindDirectory
				dj := entries[j].Kind == adb.KindDirectory
				if di != dj {
					return di
				}
				return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
			})

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
			for _, e := range entries {
				name := e.Name
				if e.Kind == adb.KindDirectory {
					name += "/"
				}

				if long && e.Kind == adb.KindFile {
					size, err := client.Size(GetContext(), e.FullPath())
					if err != nil {
						fmt.Fprintf(w, "%s\t%s\t?\n", e.Kind, name)
						continue
					}
					fmt.Fprintf(w, "%s\t%s\t%s\n", e.Kind, name, humanize.Bytes(uint64(size)))
					continue
				}

				fmt.Fprintf(w, "%s\t%s\t\n", e.Kind, name)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVarP(&long, "long", "l", false, "Show file sizes (one stat per file)")
	return cmd
}
