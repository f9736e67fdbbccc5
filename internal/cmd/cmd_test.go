package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	charmlog "github.com/charmbracelet/log/v2"
	"github.com/daedalusboard/daedalus/internal/board"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// These tests drive the shared rootCmd, so they do not run in parallel.

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		// Set on a slice flag appends, so slices are emptied instead
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() { resetFlags(rootCmd) })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func newBoardDir(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	root := t.TempDir()
	require.NoError(t, board.InitDir(root))
	require.NoError(t, os.Mkdir(filepath.Join(root, "todo"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(root, "done"), 0o755))
	return root
}

func TestCardCommands(t *testing.T) {
	root := newBoardDir(t)

	out, err := run(t, "", "card", "create", "todo", "Write docs", "-b", root)
	require.NoError(t, err)
	assert.Equal(t, "Created card #1 in todo\n", out)

	out, err = run(t, "from stdin", "card", "create", "todo", "Ship it", "--position", "top", "--body", "-", "-b", root)
	require.NoError(t, err)
	assert.Equal(t, "Created card #2 in todo\n", out)

	out, err = run(t, "", "cards", "todo", "-b", root)
	require.NoError(t, err)
	assert.Equal(t, "#2     Ship it\n#1     Write docs\n", out)

	out, err = run(t, "", "card", "get", "#2", "-b", root)
	require.NoError(t, err)
	assert.Contains(t, out, "List: todo")
	assert.Contains(t, out, "from stdin")

	out, err = run(t, "", "card", "move", "1", "done", "-b", root)
	require.NoError(t, err)
	assert.Equal(t, "Moved card #1 to done\n", out)

	out, err = run(t, "", "card", "delete", "2", "-b", root)
	require.NoError(t, err)
	assert.Equal(t, "Deleted card #2\n", out)

	out, err = run(t, "", "cards", "todo", "-b", root)
	require.NoError(t, err)
	assert.Equal(t, "No cards found.\n", out)
}

func TestCardCommandErrors(t *testing.T) {
	root := newBoardDir(t)

	_, err := run(t, "", "card", "get", "abc", "-b", root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid card id")

	_, err = run(t, "", "card", "create", "missing", "x", "-b", root)
	require.ErrorIs(t, err, board.ErrListNotFound)

	_, err = run(t, "", "board", "-f", "toml", "-b", root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestOutputFormats(t *testing.T) {
	root := newBoardDir(t)
	_, err := run(t, "", "card", "create", "todo", "Write docs", "-b", root)
	require.NoError(t, err)

	out, err := run(t, "", "lists", "-f", "json", "-b", root)
	require.NoError(t, err)
	var lists []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &lists))
	require.Len(t, lists, 2)
	assert.Equal(t, "todo", lists[1]["dir"])

	out, err = run(t, "", "board", "-f", "yaml", "-b", root)
	require.NoError(t, err)
	var stats map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &stats))
	assert.NotEmpty(t, stats)
}

func TestListCommands(t *testing.T) {
	root := newBoardDir(t)

	out, err := run(t, "", "list", "create", "review", "-b", root)
	require.NoError(t, err)
	assert.Equal(t, "Created list review\n", out)
	assert.DirExists(t, filepath.Join(root, "review"))

	out, err = run(t, "", "lists", "-b", root)
	require.NoError(t, err)
	assert.Contains(t, out, "review")

	_, err = run(t, "", "list", "delete", "review", "-b", root)
	require.NoError(t, err)
	assert.NoDirExists(t, filepath.Join(root, "review"))
}

func TestExportJSON(t *testing.T) {
	root := newBoardDir(t)
	_, err := run(t, "body text", "card", "create", "todo", "Write docs", "--body", "-", "-b", root)
	require.NoError(t, err)

	out, err := run(t, "", "export", "json", "-b", root)
	require.NoError(t, err)
	var export board.Export
	require.NoError(t, json.Unmarshal([]byte(out), &export))
	require.Len(t, export.Lists, 2)

	path := filepath.Join(t.TempDir(), "board.json")
	out, err = run(t, "", "export", "json", path, "-b", root)
	require.NoError(t, err)
	assert.Equal(t, "Exported board to "+path+"\n", out)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "body text")
}

func TestPrintLogLine(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	out := charmlog.New(&buf)
	out.SetLevel(charmlog.DebugLevel)

	printLogLine(out, `{"time":"2025-01-02T03:04:05Z","level":"WARN","source":{"file":"/src/internal/board/board.go","line":12},"msg":"Card moved","id":3,"to":"done"}`)
	line := buf.String()
	assert.Contains(t, line, "Card moved")
	assert.Contains(t, line, "board/board.go:12")
	assert.Less(t, strings.Index(line, "id="), strings.Index(line, "to="), "extra keys are sorted")

	buf.Reset()
	printLogLine(out, "not json")
	assert.Contains(t, buf.String(), "not json")

	buf.Reset()
	printLogLine(out, "   ")
	assert.Empty(t, buf.String())
}

func TestCardUpdate(t *testing.T) {
	root := newBoardDir(t)
	_, err := run(t, "", "card", "create", "todo", "Write docs", "-b", root)
	require.NoError(t, err)

	out, err := run(t, "new body\n", "card", "update", "1", "--title", "Write the docs", "--labels", "docs,urgent", "--due", "2025-06-01", "--body", "-", "-b", root)
	require.NoError(t, err)
	assert.Equal(t, "Updated card #1\n", out)

	out, err = run(t, "", "card", "get", "1", "-f", "json", "-b", root)
	require.NoError(t, err)
	var got struct {
		Metadata board.Metadata `json:"metadata"`
		List     string         `json:"list"`
		Body     string         `json:"body"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Write the docs", got.Metadata.Title)
	assert.Equal(t, []string{"docs", "urgent"}, got.Metadata.Labels)
	require.NotNil(t, got.Metadata.Due)
	assert.Equal(t, "2025-06-01", got.Metadata.Due.Format("2006-01-02"))
	assert.Equal(t, "todo", got.List)
	assert.Equal(t, "new body\n", got.Body)

	// flags that are not given leave the card alone
	_, err = run(t, "", "card", "update", "#1", "--due", "", "-b", root)
	require.NoError(t, err)
	out, err = run(t, "", "card", "get", "1", "-b", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Write the docs [docs, urgent]")
	assert.Contains(t, out, "new body")

	_, err = run(t, "", "card", "update", "1", "--due", "tomorrow", "-b", root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid due date")

	_, err = run(t, "", "card", "update", "9", "--title", "x", "-b", root)
	require.ErrorIs(t, err, board.ErrCardNotFound)
}

func TestListSet(t *testing.T) {
	root := newBoardDir(t)

	out, err := run(t, "", "list", "set", "todo", "--title", "To do", "--limit", "3", "-b", root)
	require.NoError(t, err)
	assert.Equal(t, "Updated list todo\n", out)

	_, err = run(t, "", "list", "set", "done", "--locked", "-b", root)
	require.NoError(t, err)

	out, err = run(t, "", "lists", "-b", root)
	require.NoError(t, err)
	assert.Contains(t, out, "To do")
	assert.Contains(t, out, "(locked)")

	cfg, err := board.LoadConfig(root)
	require.NoError(t, err)
	i := board.FindListEntry(cfg.Lists, "todo")
	require.GreaterOrEqual(t, i, 0)
	assert.Equal(t, 3, cfg.Lists[i].Limit)
	assert.True(t, cfg.IsLocked("done"))

	// the title survives a later lock change
	_, err = run(t, "", "list", "set", "todo", "--locked", "-b", root)
	require.NoError(t, err)
	cfg, err = board.LoadConfig(root)
	require.NoError(t, err)
	assert.Equal(t, "To do", cfg.Lists[board.FindListEntry(cfg.Lists, "todo")].Title)

	_, err = run(t, "", "list", "set", "todo", "--locked", "--unlocked", "-b", root)
	require.Error(t, err)
	_, err = run(t, "", "list", "set", "missing", "--locked", "-b", root)
	require.ErrorIs(t, err, board.ErrListNotFound)
}

func TestLabelCommands(t *testing.T) {
	root := newBoardDir(t)
	_, err := run(t, "", "card", "create", "todo", "One", "-b", root)
	require.NoError(t, err)
	_, err = run(t, "", "card", "create", "done", "Two", "-b", root)
	require.NoError(t, err)
	_, err = run(t, "", "card", "update", "1", "--labels", "bug", "-b", root)
	require.NoError(t, err)
	_, err = run(t, "", "card", "update", "2", "--labels", "bug,ops", "-b", root)
	require.NoError(t, err)

	out, err := run(t, "", "label", "rename", "bug", "defect", "-b", root)
	require.NoError(t, err)
	assert.Equal(t, "Renamed label bug to defect on 2 cards\n", out)

	out, err = run(t, "", "label", "remove", "ops", "-b", root)
	require.NoError(t, err)
	assert.Equal(t, "Removed label ops from 1 cards\n", out)

	out, err = run(t, "", "cards", "done", "-b", root)
	require.NoError(t, err)
	assert.Equal(t, "#2     Two [defect]\n", out)

	_, err = run(t, "", "label", "rename", "defect", "defect", "-b", root)
	require.ErrorIs(t, err, board.ErrInvalidLabel)
}

func TestDirs(t *testing.T) {
	root := newBoardDir(t)

	out, err := run(t, "", "dirs", "board", "-b", root)
	require.NoError(t, err)
	assert.Equal(t, root+"\n", out)

	out, err = run(t, "", "dirs", "-f", "json", "-b", root)
	require.NoError(t, err)
	var dirs map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &dirs))
	assert.Equal(t, root, dirs["board"])
	assert.Equal(t, filepath.Join(dirs["data"], "logs"), dirs["logs"])

	_, err = run(t, "", "dirs", "cache", "-b", root)
	require.Error(t, err)
}
