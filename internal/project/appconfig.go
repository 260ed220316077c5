package project

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/piwi3910/RebarCut/internal/model"
)

// DefaultConfigDir is ~/.rebarcut, or .rebarcut in the working directory
// when the home directory cannot be resolved.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".rebarcut")
}

// DefaultConfigPath is config.json inside DefaultConfigDir.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// SaveAppConfig writes the application settings to path.
func SaveAppConfig(path string, cfg model.AppConfig) error {
	return writeJSON(path, cfg)
}

// LoadAppConfig reads the application settings at path. Settings missing from
// the file, or the whole file, fall back to model.DefaultAppConfig.
func LoadAppConfig(path string) (model.AppConfig, error) {
	cfg := model.DefaultAppConfig()
	if err := readJSON(path, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.DefaultAppConfig(), nil
		}
		return model.AppConfig{}, err
	}
	if cfg.RecentJobs == nil {
		cfg.RecentJobs = []string{}
	}
	return cfg, nil
}
