// Package config loads the application configuration and the per-folder
// scan settings.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the top-level application configuration.
type Config struct {
	Paths  PathsConfig  `toml:"paths"`
	Player PlayerConfig `toml:"player"`
	Log    LogConfig    `toml:"log"`
}

// PathsConfig locates the playlist and thumbnail folders.
type PathsConfig struct {
	PlaylistDir  string `toml:"playlist_dir"`
	ThumbnailDir string `toml:"thumbnail_dir"`
}

// PlayerConfig describes the external player and its control endpoint.
type PlayerConfig struct {
	Binary string `toml:"binary"`
	RCHost string `toml:"rc_host"`
	RCPort int    `toml:"rc_port"`
}

// LogConfig holds logging options.
type LogConfig struct {
	Level string `toml:"level"`
}

// Load reads a config file from path, falling back to defaults when the
// file does not exist.
func Load(path string) (Config, error) {
	cfg := defaults()
	if path == "" {
		return Config{}, errors.New("config path required")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, err
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		Paths: PathsConfig{
			PlaylistDir:  "playlists",
			ThumbnailDir: "thumbnails",
		},
		Player: PlayerConfig{
			Binary: "vlc",
			RCHost: "localhost",
			RCPort: 42123,
		},
		Log: LogConfig{Level: "info"},
	}
}

// DefaultConfigPath returns the default config location.
func DefaultConfigPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "mediadex", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "mediadex", "config.toml"), nil
}
