package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDirs(t *testing.T) (configHome, dataHome string) {
	t.Helper()
	configHome = t.TempDir()
	dataHome = t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	t.Setenv("XDG_DATA_HOME", dataHome)
	t.Setenv(EnvBoard, "")
	t.Setenv(EnvDebug, "")
	return configHome, dataHome
}

func writeJSON(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadDefaults(t *testing.T) {
	_, dataHome := setupDirs(t)
	wd := t.TempDir()

	cfg, err := Load(wd, false)
	require.NoError(t, err)

	assert.Equal(t, wd, cfg.WorkingDir())
	assert.Empty(t, cfg.Board)
	assert.Equal(t, float64(DefaultEstimatedRows), cfg.Options.EstimatedHeight)
	require.NotNil(t, cfg.Options.Buffer)
	assert.Equal(t, 2, *cfg.Options.Buffer)
	assert.Equal(t, DefaultColumnWidth, cfg.Options.TUI.ColumnWidth)
	assert.False(t, cfg.Options.Debug)
	assert.Equal(t, filepath.Join(dataHome, appName), cfg.Options.DataDirectory)
	assert.Equal(t, filepath.Join(dataHome, appName, "logs", "daedalus.log"), cfg.LogFile())
	assert.Len(t, cfg.EngineOptions(), 2)
}

func TestLoadMergesFilesAndEnv(t *testing.T) {
	configHome, dataHome := setupDirs(t)
	wd := t.TempDir()

	writeJSON(t, filepath.Join(configHome, appName, "daedalus.json"),
		`{"board": "boards/work", "options": {"estimated_height": 6, "buffer": 0}}`)
	writeJSON(t, filepath.Join(dataHome, appName, "daedalus.json"),
		`{"options": {"tui": {"minimal_view": true}}}`)

	cfg, err := Load(wd, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "boards", "work"), cfg.Board)
	assert.True(t, cfg.Options.TUI.MinimalView)
	assert.Equal(t, 0, *cfg.Options.Buffer)

	t.Setenv(EnvBoard, "/tmp/other")
	t.Setenv(EnvDebug, "1")
	cfg, err = Load(wd, false)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other", cfg.Board)
	assert.True(t, cfg.Options.Debug)
}

func TestLoadInvalidFile(t *testing.T) {
	configHome, _ := setupDirs(t)
	writeJSON(t, filepath.Join(configHome, appName, "daedalus.json"), `{not json`)

	_, err := Load(t.TempDir(), false)
	assert.Error(t, err)
}

func TestSetConfigField(t *testing.T) {
	_, dataHome := setupDirs(t)
	wd := t.TempDir()

	cfg, err := Load(wd, true)
	require.NoError(t, err)
	assert.True(t, cfg.Options.Debug)

	require.NoError(t, cfg.SetMinimalView(true))
	require.NoError(t, cfg.SetBoard("kanban"))
	assert.Equal(t, filepath.Join(wd, "kanban"), cfg.Board)

	data, err := os.ReadFile(filepath.Join(dataHome, appName, "daedalus.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"options":{"tui":{"minimal_view":true}},"board":"`+filepath.Join(wd, "kanban")+`"}`, string(data))

	reloaded, err := Load(wd, false)
	require.NoError(t, err)
	assert.True(t, reloaded.Options.TUI.MinimalView)
	assert.Equal(t, cfg.Board, reloaded.Board)
}

func TestResolveBoard(t *testing.T) {
	setupDirs(t)
	wd := t.TempDir()
	cfg, err := Load(wd, false)
	require.NoError(t, err)

	got, err := ResolveBoard(cfg, "")
	require.NoError(t, err)
	assert.Equal(t, wd, got)

	cfg.Board = "/srv/board"
	got, err = ResolveBoard(cfg, "")
	require.NoError(t, err)
	assert.Equal(t, "/srv/board", got)

	got, err = ResolveBoard(cfg, "here")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "here"), got)

	_, err = ResolveBoard(nil, "")
	assert.Error(t, err)
}

func TestBoardNeedsInitialization(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	needs, err := BoardNeedsInitialization(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.True(t, needs)

	needs, err = BoardNeedsInitialization(dir)
	require.NoError(t, err)
	assert.True(t, needs)

	require.NoError(t, os.Mkdir(filepath.Join(dir, "todo"), 0o755))
	needs, err = BoardNeedsInitialization(dir)
	require.NoError(t, err)
	assert.False(t, needs)

	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = BoardNeedsInitialization(file)
	assert.Error(t, err)
}
