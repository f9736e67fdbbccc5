package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// ResolveBoard picks the board directory to open: the explicit path, then
// the configured board, then the working directory.
func ResolveBoard(cfg *Config, explicit string) (string, error) {
	if cfg == nil {
		return "", fmt.Errorf("config not loaded")
	}
	path := explicit
	if path == "" {
		path = cfg.Board
	}
	if path == "" {
		path = cfg.WorkingDir()
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(cfg.WorkingDir(), path)
	}
	return filepath.Clean(path), nil
}

// BoardNeedsInitialization reports whether dir has no board config yet.
func BoardNeedsInitialization(dir string) (bool, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("failed to check board directory: %w", err)
	}
	if !info.IsDir() {
		return false, fmt.Errorf("board path %s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, fmt.Errorf("failed to read board directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == "board.yaml" {
			return false, nil
		}
	}
	return true, nil
}
