package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/daedalusboard/daedalus/internal/virtual"
	"github.com/tidwall/sjson"
)

const (
	appName       = "daedalus"
	logsDirectory = "logs"
)

type TUIOptions struct {
	// MinimalView hides card previews, giving one-line cards.
	MinimalView bool `json:"minimal_view,omitempty"`
	ColumnWidth int  `json:"column_width,omitempty"`
}

type Options struct {
	// EstimatedHeight is the height, in rows, assumed for cards that have
	// not been rendered yet.
	EstimatedHeight float64     `json:"estimated_height,omitempty"`
	Buffer          *int        `json:"buffer,omitempty"`
	TUI             *TUIOptions `json:"tui,omitempty"`
	Debug           bool        `json:"debug,omitempty"`
	DataDirectory   string      `json:"data_directory,omitempty"`
}

// Config holds the configuration for daedalus.
type Config struct {
	// Board is the board directory opened when none is given on the command
	// line.
	Board string `json:"board,omitempty"`

	Options *Options `json:"options,omitempty"`

	// Internal
	workingDir    string `json:"-"`
	dataConfigDir string `json:"-"`
}

func (c *Config) WorkingDir() string {
	return c.workingDir
}

// LogFile is the path of the rotated log file.
func (c *Config) LogFile() string {
	return filepath.Join(c.Options.DataDirectory, logsDirectory, appName+".log")
}

// EngineOptions returns the virtual list options derived from the config.
func (c *Config) EngineOptions() []virtual.Option {
	var opts []virtual.Option
	if c.Options.EstimatedHeight > 0 {
		opts = append(opts, virtual.WithEstimatedHeight(c.Options.EstimatedHeight))
	}
	if c.Options.Buffer != nil {
		opts = append(opts, virtual.WithBuffer(*c.Options.Buffer))
	}
	return opts
}

func (c *Config) SetMinimalView(enabled bool) error {
	if c.Options.TUI == nil {
		c.Options.TUI = &TUIOptions{}
	}
	c.Options.TUI.MinimalView = enabled
	return c.SetConfigField("options.tui.minimal_view", enabled)
}

// SetBoard remembers path as the default board.
func (c *Config) SetBoard(path string) error {
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.workingDir, path)
	}
	c.Board = filepath.Clean(path)
	if err := c.SetConfigField("board", c.Board); err != nil {
		return fmt.Errorf("failed to update default board: %w", err)
	}
	return nil
}

func (c *Config) SetConfigField(key string, value any) error {
	// read the data
	data, err := os.ReadFile(c.dataConfigDir)
	if err != nil {
		if os.IsNotExist(err) {
			data = []byte("{}")
		} else {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	newValue, err := sjson.Set(string(data), key, value)
	if err != nil {
		return fmt.Errorf("failed to set config field %s: %w", key, err)
	}
	if err := os.MkdirAll(filepath.Dir(c.dataConfigDir), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(c.dataConfigDir, []byte(newValue), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
