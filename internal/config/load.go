package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/daedalusboard/daedalus/internal/virtual"
)

const (
	EnvBoard = "DAEDALUS_BOARD"
	EnvDebug = "DAEDALUS_DEBUG"
)

// Load reads the global config files and applies defaults and environment
// overrides. workingDir is where relative board paths are resolved from.
func Load(workingDir string, debug bool) (*Config, error) {
	cfg := &Config{}
	for _, path := range []string{GlobalConfig(), GlobalConfigData()} {
		if err := mergeFile(cfg, path); err != nil {
			return nil, err
		}
	}
	cfg.workingDir = workingDir
	cfg.dataConfigDir = GlobalConfigData()
	cfg.setDefaults(debug)

	if board := os.Getenv(EnvBoard); board != "" {
		cfg.Board = board
	}
	if v := os.Getenv(EnvDebug); v != "" {
		if on, err := strconv.ParseBool(v); err == nil {
			cfg.Options.Debug = cfg.Options.Debug || on
		}
	}
	if cfg.Board != "" && !filepath.IsAbs(cfg.Board) {
		cfg.Board = filepath.Join(workingDir, cfg.Board)
	}
	return cfg, nil
}

// mergeFile overlays the JSON object in path onto cfg. Missing files are
// ignored.
func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	slog.Debug("Loaded config file", "path", path)
	return nil
}

func (c *Config) setDefaults(debug bool) {
	if c.Options == nil {
		c.Options = &Options{}
	}
	if c.Options.TUI == nil {
		c.Options.TUI = &TUIOptions{}
	}
	if c.Options.EstimatedHeight <= 0 {
		// estimates are in terminal rows; the pixel default does not apply
		c.Options.EstimatedHeight = DefaultEstimatedRows
	}
	if c.Options.Buffer == nil {
		buffer := virtual.DefaultBuffer
		c.Options.Buffer = &buffer
	}
	if c.Options.TUI.ColumnWidth <= 0 {
		c.Options.TUI.ColumnWidth = DefaultColumnWidth
	}
	if c.Options.DataDirectory == "" {
		c.Options.DataDirectory = filepath.Dir(GlobalConfigData())
	}
	c.Options.Debug = c.Options.Debug || debug
}

const (
	DefaultEstimatedRows = 4
	DefaultColumnWidth   = 36
)

// GlobalConfig returns the path of the user-authored config file.
func GlobalConfig() string {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, appName, appName+".json")
	}
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appName, appName+".json")
		}
	}
	return filepath.Join(homeDir(), ".config", appName, appName+".json")
}

// GlobalConfigData returns the path of the config file daedalus writes to
// itself. Its directory is the data directory.
func GlobalConfigData() string {
	if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
		return filepath.Join(xdgDataHome, appName, appName+".json")
	}
	if runtime.GOOS == "windows" {
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, appName, appName+".json")
		}
	}
	return filepath.Join(homeDir(), ".local", "share", appName, appName+".json")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
