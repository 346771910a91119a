// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
}

// ServerConfig maps HTTP server settings.
type ServerConfig struct {
	Addr   *string `toml:"addr"`
	Levels *string `toml:"levels"`
}

// StorageConfig maps snapshot and raw log settings.
type StorageConfig struct {
	Snapshot *string `toml:"snapshot"`
	LogDir   *string `toml:"log-dir"`
	RawLog   *bool   `toml:"raw-log"`
	Persist  *string `toml:"persist"`
	Resume   *bool   `toml:"resume"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// Overlay returns c with every value set in env taking precedence.
func (c FileConfig) Overlay(env EnvConfig) FileConfig {
	out := c
	if env.Addr != nil {
		out.Server.Addr = env.Addr
	}
	if env.Levels != nil {
		out.Server.Levels = env.Levels
	}
	if env.Snapshot != nil {
		out.Storage.Snapshot = env.Snapshot
	}
	if env.LogDir != nil {
		out.Storage.LogDir = env.LogDir
	}
	if env.RawLog != nil {
		out.Storage.RawLog = env.RawLog
	}
	if env.Persist != nil {
		out.Storage.Persist = env.Persist
	}
	if env.Resume != nil {
		out.Storage.Resume = env.Resume
	}
	return out
}
