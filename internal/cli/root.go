// Package cli provides the command-line interface for adb-tui.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Melal1/adb-tui/internal/adb"
	"github.com/Melal1/adb-tui/internal/config"
	"github.com/Melal1/adb-tui/internal/logging"
	"github.com/Melal1/adb-tui/internal/pathutil"
	"github.com/Melal1/adb-tui/internal/version"
)

var (
	// Global flags
	cfgFile    string
	serial     string
	adbPath    string
	destDir    string
	remoteRoot string
	verbose    bool
	debug      bool

	// Global logger
	logger *logging.Logger

	// Global context for signal handling
	rootContext context.Context
	cancelFunc  context.CancelFunc
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "adb-tui",
		Short: "Terminal file browser for Android devices over adb",
		Long: `adb-tui ` + version.Version + ` - browse an attached Android device and
pull files to the local machine, wrapping the adb executable.

Run without arguments to start the interactive browser, or use the
subcommands for one-shot operations.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = logging.NewDefaultCLILogger()
			if verbose || debug {
				logging.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVarP(&serial, "serial", "s", "", "Device serial (adb -s)")
	rootCmd.PersistentFlags().StringVar(&adbPath, "adb", "", "Path to the adb executable")
	rootCmd.PersistentFlags().StringVarP(&destDir, "dest", "d", "", "Local destination directory for pulls")
	rootCmd.PersistentFlags().StringVar(&remoteRoot, "remote-root", "", "Starting remote directory (navigation ceiling)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (shows debug messages)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug output (same as --verbose)")

	rootCmd.Version = version.Version + " (" + version.BuildTime + ")"

	completionCmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
	}
	completionCmd.AddCommand(&cobra.Command{
		Use:   "bash",
		Short: "Generate bash completion script",
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.Root().GenBashCompletion(cmd.OutOrStdout())
		},
	})
	completionCmd.AddCommand(&cobra.Command{
		Use:   "zsh",
		Short: "Generate zsh completion script",
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.Root().GenZshCompletion(cmd.OutOrStdout())
		},
	})
	completionCmd.AddCommand(&cobra.Command{
		Use:   "fish",
		Short: "Generate fish completion script",
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
		},
	})
	completionCmd.AddCommand(&cobra.Command{
		Use:   "powershell",
		Short: "Generate PowerShell completion script",
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.Root().GenPowerShellCompletion(cmd.OutOrStdout())
		},
	})
	rootCmd.AddCommand(completionCmd)
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	return rootCmd
}

// Execute runs the CLI.
func Execute() error {
	rootContext, cancelFunc = context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		for sig := range sigChan {
			if sig != nil {
				fmt.Fprintf(os.Stderr, "\nReceived signal %v, cancelling...\n", sig)
				cancelFunc()
			}
		}
	}()

	rootCmd := NewRootCmd()
	AddCommands(rootCmd)
	err := rootCmd.Execute()

	signal.Stop(sigChan)
	close(sigChan)

	return err
}

// AddCommands adds all subcommands to the root command.
func AddCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newBrowseCmd())
	rootCmd.AddCommand(newLsCmd())
	rootCmd.AddCommand(newPullCmd())
	rootCmd.AddCommand(newDevicesCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// GetLogger returns the global CLI logger.
func GetLogger() *logging.Logger {
	if logger == nil {
		logger = logging.NewDefaultCLILogger()
	}
	return logger
}

// GetContext returns the global context, cancelled on Ctrl+C.
func GetContext() context.Context {
	if rootContext == nil {
		return context.Background()
	}
	return rootContext
}

// loadConfig loads configuration and applies flag overrides. Flags win
// over environment and file values.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	if serial != "" {
		cfg.ADB.Serial = serial
	}
	if adbPath != "" {
		cfg.ADB.Path = adbPath
	}
	if destDir != "" {
		dest, err := pathutil.ResolveAbsolutePath(destDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve destination %s: %w", destDir, err)
		}
		cfg.Local.Dest = dest
	}
	if remoteRoot != "" {
		cfg.Remote.Root = pathutil.CleanRemote(remoteRoot)
	}
	return cfg, nil
}

// newADBClient builds the device bridge from configuration.
func newADBClient(cfg *config.Config, log *logging.Logger) *adb.Client {
	return adb.NewClient(cfg.ADB.Path, cfg.ADB.Serial, log)
}
