package config

import (
	"os"
	"path/filepath"
)

// CacheDir returns the response cache directory following the XDG
// convention (~/.cache/sbomlens). It returns "" if no home directory is
// known.
func CacheDir() string {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".cache", appName)
}

// ConfigDir returns the user configuration directory (~/.config/sbomlens).
func ConfigDir() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// DefaultFile is where `sbomlens config init` writes.
func DefaultFile() string {
	return filepath.Join(ConfigDir(), fileName)
}

// SearchPath lists the directories searched for sbomlens.toml, in order:
// $XDG_CONFIG_HOME/sbomlens, ~/.config/sbomlens and the working directory.
func SearchPath() []string {
	var dirs []string
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		dirs = append(dirs, filepath.Join(configHome, appName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", appName))
	}
	return append(dirs, ".")
}
