// Package config provides configuration management for adb-tui.
// Precedence, lowest to highest: built-in defaults, config file,
// ADB_TUI_* environment variables, command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/Melal1/adb-tui/internal/constants"
	"github.com/Melal1/adb-tui/internal/pathutil"
)

// Config holds all settings read at session start. The browser core treats
// these as constants for the lifetime of a session.
type Config struct {
	Remote   RemoteConfig   `mapstructure:"remote"`
	Local    LocalConfig    `mapstructure:"local"`
	Transfer TransferConfig `mapstructure:"transfer"`
	ADB      ADBConfig      `mapstructure:"adb"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Log      LogConfig      `mapstructure:"log"`
}

// RemoteConfig describes the device side of a session.
type RemoteConfig struct {
	// Root is the starting directory and the navigation ceiling:
	// goToParent never climbs above it.
	Root string `mapstructure:"root"`
}

// LocalConfig describes the host side of a session.
type LocalConfig struct {
	// Dest is the local directory pulled files land in.
	Dest string `mapstructure:"dest"`
}

// TransferConfig controls transfer behavior.
type TransferConfig struct {
	// ClearSelection empties the selection set after a successful
	// transfer. Failed or cancelled transfers always keep the selection
	// so the user can retry without re-selecting.
	ClearSelection bool `mapstructure:"clear_selection"`
}

// ADBConfig locates the device bridge.
type ADBConfig struct {
	Path   string `mapstructure:"path"`
	Serial string `mapstructure:"serial"` // -s argument; empty targets the sole device
}

// NotifyConfig controls desktop notifications.
type NotifyConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LogConfig controls the optional log file.
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Remote:   RemoteConfig{Root: constants.DefaultRemoteRoot},
		Local:    LocalConfig{Dest: "."},
		Transfer: TransferConfig{ClearSelection: true},
		ADB:      ADBConfig{Path: constants.DefaultADBBinary},
		Notify:   NotifyConfig{Enabled: true},
		Log:      LogConfig{Level: "info"},
	}
}

// Load reads configuration from the given file, or from the default
// location when cfgFile is empty. A missing default file is not an error.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("ADB_TUI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", cfgFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(ConfigDirectory())
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, cfg.normalize()
}

func setDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault("remote.root", def.Remote.Root)
	v.SetDefault("local.dest", def.Local.Dest)
	v.SetDefault("transfer.clear_selection", def.Transfer.ClearSelection)
	v.SetDefault("adb.path", def.ADB.Path)
	v.SetDefault("adb.serial", def.ADB.Serial)
	v.SetDefault("notify.enabled", def.Notify.Enabled)
	v.SetDefault("log.file", def.Log.File)
	v.SetDefault("log.level", def.Log.Level)
}

// normalize cleans the remote root and resolves the local destination.
func (c *Config) normalize() error {
	c.Remote.Root = pathutil.CleanRemote(c.Remote.Root)

	dest, err := pathutil.ResolveAbsolutePath(c.Local.Dest)
	if err != nil {
		return fmt.Errorf("failed to resolve destination %s: %w", c.Local.Dest, err)
	}
	c.Local.Dest = dest
	return nil
}

// WriteDefault writes a commented default config file to the default
// location. Refuses to overwrite an existing file.
func WriteDefault() (string, error) {
	dir := ConfigDirectory()
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	path := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config already exists at %s", path)
	}

	def := Default()
	content := fmt.Sprintf(`# adb-tui configuration
remote:
  # Starting remote directory; navigation never climbs above it.
  root: %s
local:
  # Local directory pulled files land in.
  dest: %s
transfer:
  # Clear the selection after a successful transfer.
  clear_selection: %t
adb:
  # Path to the adb executable.
  path: %s
  # Device serial for adb -s; leave empty when a single device is attached.
  serial: ""
notify:
  enabled: %t
log:
  # Optional log file (rotated). Leave empty to disable file logging.
  file: ""
  level: %s
`, def.Remote.Root, def.Local.Dest, def.Transfer.ClearSelection,
		def.ADB.Path, def.Notify.Enabled, def.Log.Level)

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	return path, nil
}
