package board

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadHeader(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "12.md")
	var body strings.Builder
	for range 30 {
		body.WriteString("line\n")
	}
	writeFile(t, path, "---\nid: 12\ntitle: Twelve\nlabels:\n  - a\n  - b\ncounter:\n  current: 2\n  max: 5\n---\n"+body.String())

	meta, preview, err := readHeader(path)
	require.NoError(t, err)
	assert.Equal(t, 12, meta.ID)
	assert.Equal(t, "Twelve", meta.Title)
	assert.Equal(t, []string{"a", "b"}, meta.Labels)
	require.NotNil(t, meta.Counter)
	assert.Equal(t, 5, meta.Counter.Max)
	assert.LessOrEqual(t, len(preview), PreviewMaxLen)
	assert.True(t, strings.HasPrefix(preview, "line\nline\n"))
}

func TestReadBodyWithoutFrontmatter(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "1.md")
	writeFile(t, path, "just text\n---\nmore\n")

	body, err := ReadBody(path)
	require.NoError(t, err)
	assert.Equal(t, "just text\n---\nmore\n", body)
}

func TestReadBodyKeepsLaterDashes(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "1.md")
	writeFile(t, path, "---\nid: 1\n---\nabove\n---\nbelow\n")

	body, err := ReadBody(path)
	require.NoError(t, err)
	assert.Equal(t, "above\n---\nbelow\n", body)
}

func TestWriteCardPreservesUnknownKeys(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "3.md")
	writeFile(t, path, "---\nzeta: last\nid: 3\nurl: https://example.com\ntitle: old\nicon: x\ntrello_data:\n  id: abc\nalpha: first\n---\nbody\n")

	meta, _, err := readHeader(path)
	require.NoError(t, err)
	meta.Title = "new"
	meta.Icon = ""
	meta.Checklist = []ChecklistItem{{Idx: 0, Desc: "yes: no # not a comment", Done: true}}
	require.NoError(t, WriteCard(path, meta, "new body\n"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "title: new\n")
	assert.NotContains(t, content, "icon:")
	assert.Contains(t, content, "url: https://example.com\n")
	assert.Contains(t, content, `desc: "yes: no # not a comment"`)

	// priority keys first, then the rest sorted, trello_data last
	order := []string{"id:", "title:", "list_order:", "url:", "alpha:", "checklist:", "zeta:", "trello_data:"}
	last := -1
	for _, key := range order {
		idx := strings.Index(content, "\n"+key)
		require.Greater(t, idx, last, "key %s out of order in:\n%s", key, content)
		last = idx
	}

	got, _, err := readHeader(path)
	require.NoError(t, err)
	assert.Equal(t, meta.Checklist, got.Checklist)

	body, err := ReadBody(path)
	require.NoError(t, err)
	assert.Equal(t, "new body\n", body)
}

func TestWriteCardTimestamps(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "4.md")
	created := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	require.NoError(t, WriteCard(path, Metadata{ID: 4, Title: "t", Created: &created}, ""))
	// rewrite to go through the existing-file path
	meta, _, err := readHeader(path)
	require.NoError(t, err)
	require.NoError(t, WriteCard(path, meta, ""))

	got, _, err := readHeader(path)
	require.NoError(t, err)
	require.NotNil(t, got.Created)
	assert.True(t, created.Equal(*got.Created))
}

func TestChecklistProgress(t *testing.T) {
	t.Parallel()

	m := Metadata{Checklist: []ChecklistItem{{Done: true}, {}, {Done: true}}}
	done, total := m.ChecklistProgress()
	assert.Equal(t, 2, done)
	assert.Equal(t, 3, total)
}

func TestWriteCardNewFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "1.md")
	require.NoError(t, WriteCard(path, Metadata{ID: 1, Title: "x"}, "body\n"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "---\nid: 1\ntitle: x\nlist_order: 0\n---\nbody\n", string(data))

	// the second write goes through the existing frontmatter
	require.NoError(t, WriteCard(path, Metadata{ID: 1, Title: "y", ListOrder: 1.5}, "body\n"))
	meta, _, err := readHeader(path)
	require.NoError(t, err)
	assert.Equal(t, "y", meta.Title)
	assert.InDelta(t, 1.5, meta.ListOrder, 0)
}

func TestCreateCardOnNewList(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, InitDir(root))
	b, err := Load(root)
	require.NoError(t, err)
	require.NoError(t, b.CreateList("todo"))

	c, err := b.CreateCard("todo", "hello", "", PositionBottom)
	require.NoError(t, err)
	assert.FileExists(t, c.Path)
	meta, _, err := readHeader(c.Path)
	require.NoError(t, err)
	assert.Equal(t, "hello", meta.Title)
}
