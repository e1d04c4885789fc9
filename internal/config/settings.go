package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Settings are the JSON-backed scan options kept inside the playlist
// folder, edited through the CLI and read before every auto-scan.
type Settings struct {
	AutoScanEnabled bool        `json:"auto_scan_enabled"`
	ScanFolders     ScanFolders `json:"scan_folders"`
}

// ScanFolders lists the folders scanned per media class.
type ScanFolders struct {
	MKV   []string `json:"mkv"`
	MP4   []string `json:"mp4"`
	PDF   []string `json:"pdf"`
	Music []string `json:"music"`
}

// DefaultSettings returns the settings used before any file exists.
func DefaultSettings() Settings {
	return Settings{}
}

// LoadSettings reads the settings file at path. A missing file yields
// the defaults.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return s, nil
}

// SaveSettings writes the settings file atomically.
func SaveSettings(path string, s Settings) error {
	payload, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings folder: %w", err)
	}
	tmp := fmt.Sprintf("%s.tmp.%d", path, time.Now().UnixNano())
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return os.Rename(tmp, path)
}
