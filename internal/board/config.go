package board

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// ConfigFilename is the board-level configuration file in the board root.
const ConfigFilename = "board.yaml"

// ListEntry holds per-list settings. The order of entries in Config.Lists is
// the display order.
type ListEntry struct {
	Dir       string `yaml:"dir" json:"dir"`
	Title     string `yaml:"title,omitempty" json:"title,omitempty"`
	Limit     int    `yaml:"limit,omitempty" json:"limit,omitempty"`
	Collapsed bool   `yaml:"collapsed,omitempty" json:"collapsed,omitempty"`
	Locked    bool   `yaml:"locked,omitempty" json:"locked,omitempty"`
	Color     string `yaml:"color,omitempty" json:"color,omitempty"`
	Icon      string `yaml:"icon,omitempty" json:"icon,omitempty"`
}

// DisplayTitle returns the configured title, falling back to the directory
// name.
func (e ListEntry) DisplayTitle() string {
	if e.Title != "" {
		return e.Title
	}
	return e.Dir
}

// Config is the content of board.yaml.
type Config struct {
	Title       string            `yaml:"title,omitempty" json:"title,omitempty"`
	Lists       []ListEntry       `yaml:"lists,omitempty" json:"lists,omitempty"`
	LabelColors map[string]string `yaml:"label_colors,omitempty" json:"label_colors,omitempty"`
	// Templates are kept verbatim so saving the config does not drop them.
	Templates   []map[string]any `yaml:"templates,omitempty" json:"templates,omitempty"`
	MinimalView *bool            `yaml:"minimal_view,omitempty" json:"minimal_view,omitempty"`
}

// LoadConfig reads board.yaml from root. A missing file yields an empty
// config.
func LoadConfig(root string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(filepath.Join(root, ConfigFilename))
	if err != nil {
		if os.IsNotExist(err) {
			slog.Debug("Board config not found, using defaults", "path", root)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", ConfigFilename, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ConfigFilename, err)
	}
	slog.Debug("Board config loaded", "path", root, "lists", len(cfg.Lists))
	return cfg, nil
}

// SaveConfig writes cfg to board.yaml in root.
func SaveConfig(root string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal board config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(root, ConfigFilename), data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", ConfigFilename, err)
	}
	slog.Debug("Board config saved", "path", root)
	return nil
}

// FindListEntry returns the index of the entry for dir, or -1.
func FindListEntry(lists []ListEntry, dir string) int {
	for i, entry := range lists {
		if entry.Dir == dir {
			return i
		}
	}
	return -1
}

// IsLocked reports whether the list dir is marked as locked.
func (c *Config) IsLocked(dir string) bool {
	idx := FindListEntry(c.Lists, dir)
	return idx >= 0 && c.Lists[idx].Locked
}

// InitDir makes sure path exists and holds a board.yaml.
func InitDir(path string) error {
	if _, err := os.Stat(filepath.Join(path, ConfigFilename)); err == nil {
		return nil
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("failed to create board directory: %w", err)
	}
	if err := SaveConfig(path, &Config{}); err != nil {
		return err
	}
	slog.Info("Initialized new board", "path", path)
	return nil
}

// mergeListEntries reconciles the configured lists with the directories
// found on disk: known entries keep their order, new directories are
// appended alphabetically and entries without a directory are dropped.
func mergeListEntries(cfg *Config, onDisk map[string]bool) {
	seen := make(map[string]bool, len(onDisk))
	var merged []ListEntry
	for _, entry := range cfg.Lists {
		if onDisk[entry.Dir] && !seen[entry.Dir] {
			merged = append(merged, entry)
			seen[entry.Dir] = true
		}
	}

	var added []string
	for dir := range onDisk {
		if !seen[dir] {
			added = append(added, dir)
		}
	}
	sort.Strings(added)
	for _, dir := range added {
		merged = append(merged, ListEntry{Dir: dir})
	}
	if len(added) > 0 {
		slog.Debug("Discovered new list directories", "dirs", added)
	}
	cfg.Lists = merged
}
