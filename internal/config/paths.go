package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	appDirName     = "tally"
	configFileName = "config.toml"
	sqliteFileName = "tally.db"
)

// DefaultDataDir is $XDG_DATA_HOME/tally when set, else ~/.tally.
func DefaultDataDir() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdg != "" {
		return filepath.Join(xdg, appDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, "."+appDirName), nil
}

// DefaultConfigPath is <user config dir>/tally/config.toml.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config dir: %w", err)
	}
	return filepath.Join(dir, appDirName, configFileName), nil
}

// expandHome turns a leading ~/ into the user's home directory.
func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
