package board

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateCard(t *testing.T) {
	t.Parallel()
	b, err := Load(newTestBoard(t))
	require.NoError(t, err)

	due := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)
	meta := Metadata{
		ID:        99,
		Title:     "renamed",
		ListOrder: 42,
		Due:       &due,
		Labels:    []string{"ops"},
		Counter:   &Counter{Current: 1, Max: 3},
		Checklist: []ChecklistItem{{Desc: "step", Done: true}},
	}
	c, err := b.UpdateCard(1, meta, "# renamed\n\nnew body\n")
	require.NoError(t, err)
	assert.Equal(t, 1, c.Metadata.ID, "the id cannot change")
	assert.Equal(t, float64(2), c.Metadata.ListOrder, "order is kept")
	require.NotNil(t, c.Metadata.Updated)

	// on disk, and through a fresh scan
	b2, err := Load(b.Root())
	require.NoError(t, err)
	got, err := b2.Card(1)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Metadata.Title)
	assert.Equal(t, []string{"ops"}, got.Metadata.Labels)
	require.NotNil(t, got.Metadata.Due)
	assert.True(t, due.Equal(*got.Metadata.Due))
	assert.Equal(t, meta.Checklist, got.Metadata.Checklist)
	body, err := b2.Body(1)
	require.NoError(t, err)
	assert.Equal(t, "# renamed\n\nnew body\n", body)

	cards, err := b.Cards("todo")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, 7}, cardIDs(cards))
	assert.Equal(t, "renamed", cards[1].Metadata.Title)

	_, err = b.UpdateCard(100, meta, "")
	require.ErrorIs(t, err, ErrCardNotFound)
}

func TestUpdateCardInLockedList(t *testing.T) {
	t.Parallel()
	b, err := Load(newTestBoard(t))
	require.NoError(t, err)

	c, err := b.UpdateCard(4, Metadata{Title: "still editable"}, "")
	require.NoError(t, err)
	assert.Equal(t, "done", c.List)
}

func TestSetListConfig(t *testing.T) {
	t.Parallel()
	b, err := Load(newTestBoard(t))
	require.NoError(t, err)

	require.NoError(t, b.SetListConfig("doing", "In progress", 5))
	require.NoError(t, b.SetListLocked("todo", true))
	require.Error(t, b.SetListConfig("doing", "", -1))
	require.ErrorIs(t, b.SetListLocked("missing", true), ErrListNotFound)

	cfg, err := LoadConfig(b.Root())
	require.NoError(t, err)
	i := FindListEntry(cfg.Lists, "doing")
	require.GreaterOrEqual(t, i, 0)
	assert.Equal(t, "In progress", cfg.Lists[i].Title)
	assert.Equal(t, 5, cfg.Lists[i].Limit)
	assert.True(t, cfg.IsLocked("todo"))

	_, err = b.CreateCard("todo", "x", "", PositionBottom)
	require.ErrorIs(t, err, ErrListLocked)

	require.NoError(t, b.SetListLocked("todo", false))
	_, err = b.CreateCard("todo", "x", "", PositionBottom)
	require.NoError(t, err)
}

func TestRenameLabel(t *testing.T) {
	t.Parallel()
	b, err := Load(newTestBoard(t))
	require.NoError(t, err)

	n, err := b.RenameLabel("bug", "defect")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	c, err := b.Card(2)
	require.NoError(t, err)
	assert.Equal(t, []string{"defect"}, c.Metadata.Labels)
	assert.Equal(t, map[string]string{"defect": "red"}, b.Config().LabelColors)

	b2, err := Load(b.Root())
	require.NoError(t, err)
	c, err = b2.Card(2)
	require.NoError(t, err)
	assert.Equal(t, []string{"defect"}, c.Metadata.Labels)
	body, err := b2.Body(2)
	require.NoError(t, err)
	assert.Equal(t, "body two\n", body)

	_, err = b.RenameLabel("defect", "defect")
	require.ErrorIs(t, err, ErrInvalidLabel)
}

func TestRemoveLabel(t *testing.T) {
	t.Parallel()
	b, err := Load(newTestBoard(t))
	require.NoError(t, err)

	n, err := b.RemoveLabel("bug")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	c, err := b.Card(2)
	require.NoError(t, err)
	assert.Empty(t, c.Metadata.Labels)
	assert.Empty(t, b.Config().LabelColors)

	n, err = b.RemoveLabel("bug")
	require.NoError(t, err)
	assert.Zero(t, n)
}
