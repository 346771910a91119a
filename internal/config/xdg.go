// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"
)

const appDir = "levelscore"

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// DefaultSnapshotPath returns the default location of the game snapshot.
func DefaultSnapshotPath() string {
	return filepath.Join(XDGDataHome(), appDir, "game_data.json")
}

// DefaultLogDir returns the default directory for per-level raw logs.
func DefaultLogDir() string {
	return filepath.Join(XDGDataHome(), appDir, "logs")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appDir, "config.toml")
}
