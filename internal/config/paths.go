package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// ConfigDirectory returns the directory holding the config file, transfer
// history, and session state.
//
// Locations:
//   - Windows: %LOCALAPPDATA%\adb-tui
//   - Unix: ~/.config/adb-tui
func ConfigDirectory() string {
	if runtime.GOOS == "windows" {
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return filepath.Join(os.TempDir(), "adb-tui")
			}
			localAppData = filepath.Join(homeDir, "AppData", "Local")
		}
		return filepath.Join(localAppData, "adb-tui")
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "adb-tui")
		}
		return filepath.Join(homeDir, ".config", "adb-tui")
	}
	return filepath.Join(configDir, "adb-tui")
}

// LogDirectory returns the directory for rotated log files.
func LogDirectory() string {
	return filepath.Join(ConfigDirectory(), "logs")
}
