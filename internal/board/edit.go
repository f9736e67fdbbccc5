package board

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"time"
)

var ErrInvalidLabel = errors.New("invalid label names")

// UpdateCard rewrites the frontmatter and body of a card. The id and the
// list_order of the stored card are kept, use MoveCard to reorder. Locked
// lists only refuse adding and removing cards, so their cards stay
// editable.
func (b *Board) UpdateCard(id int, meta Metadata, body string) (Card, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.byID[id]
	if !ok {
		return Card{}, fmt.Errorf("%w: %d", ErrCardNotFound, id)
	}

	meta.ID = id
	meta.ListOrder = c.Metadata.ListOrder
	if meta.Created == nil {
		meta.Created = c.Metadata.Created
	}
	now := time.Now()
	meta.Updated = &now
	if meta.Created == nil {
		meta.Created = &now
	}

	updated := *c
	updated.Metadata = meta
	updated.Preview = TruncatePreview(body)
	if err := b.writeIndexed(c, &updated, body); err != nil {
		return Card{}, err
	}
	slog.Info("Card updated", "id", id, "list", c.List, "title", meta.Title)
	return updated, nil
}

// writeIndexed writes next to disk and swaps it for prev in the indexes.
// Callers hold the write lock.
func (b *Board) writeIndexed(prev, next *Card, body string) error {
	var oldSize int64
	if info, err := os.Stat(prev.Path); err == nil {
		oldSize = info.Size()
	}
	if err := WriteCard(next.Path, next.Metadata, body); err != nil {
		return err
	}
	if info, err := os.Stat(next.Path); err == nil {
		b.bytes += info.Size() - oldSize
	}

	idx := b.lists[prev.List]
	idx.remove(prev)
	idx.insert(next)
	b.byID[next.Metadata.ID] = next
	return nil
}

// SetListConfig sets the display title and card limit of a list. An empty
// title falls back to the directory name and a zero limit means no limit.
func (b *Board) SetListConfig(dir, title string, limit int) error {
	if limit < 0 {
		return fmt.Errorf("invalid limit %d", limit)
	}
	return b.updateListEntry(dir, func(e *ListEntry) {
		e.Title = title
		e.Limit = limit
	})
}

// SetListLocked marks a list as locked or unlocked.
func (b *Board) SetListLocked(dir string, locked bool) error {
	return b.updateListEntry(dir, func(e *ListEntry) {
		e.Locked = locked
	})
}

func (b *Board) updateListEntry(dir string, update func(*ListEntry)) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.lists[dir]; !ok {
		return fmt.Errorf("%w: %s", ErrListNotFound, dir)
	}
	i := FindListEntry(b.config.Lists, dir)
	if i < 0 {
		b.config.Lists = append(b.config.Lists, ListEntry{Dir: dir})
		i = len(b.config.Lists) - 1
	}
	update(&b.config.Lists[i])
	if err := SaveConfig(b.root, b.config); err != nil {
		return err
	}
	slog.Info("List config saved", "dir", dir, "entry", b.config.Lists[i])
	return nil
}

// RenameLabel replaces oldName with newName on every card and moves its
// color. It returns the number of cards rewritten.
func (b *Board) RenameLabel(oldName, newName string) (int, error) {
	if oldName == "" || newName == "" || oldName == newName {
		return 0, fmt.Errorf("%w: %q -> %q", ErrInvalidLabel, oldName, newName)
	}
	affected, err := b.updateLabels(oldName, func(labels []string, i int) []string {
		if slices.Contains(labels, newName) {
			return slices.Delete(labels, i, i+1)
		}
		labels[i] = newName
		return labels
	}, func(colors map[string]string) {
		if color, ok := colors[oldName]; ok {
			delete(colors, oldName)
			colors[newName] = color
		}
	})
	if err != nil {
		return affected, err
	}
	slog.Info("Label renamed", "old", oldName, "new", newName, "cards", affected)
	return affected, nil
}

// RemoveLabel strips label from every card and drops its color. It returns
// the number of cards rewritten.
func (b *Board) RemoveLabel(label string) (int, error) {
	if label == "" {
		return 0, fmt.Errorf("%w: empty label", ErrInvalidLabel)
	}
	affected, err := b.updateLabels(label, func(labels []string, i int) []string {
		return slices.Delete(labels, i, i+1)
	}, func(colors map[string]string) {
		delete(colors, label)
	})
	if err != nil {
		return affected, err
	}
	slog.Info("Label removed", "label", label, "cards", affected)
	return affected, nil
}

func (b *Board) updateLabels(label string, edit func(labels []string, i int) []string, editColors func(map[string]string)) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ids := make([]int, 0, len(b.byID))
	for id := range b.byID {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	affected := 0
	now := time.Now()
	for _, id := range ids {
		c := b.byID[id]
		i := slices.Index(c.Metadata.Labels, label)
		if i < 0 {
			continue
		}
		body, err := ReadBody(c.Path)
		if err != nil {
			return affected, fmt.Errorf("failed to read card %d: %w", id, err)
		}
		next := *c
		next.Metadata.Labels = edit(slices.Clone(c.Metadata.Labels), i)
		next.Metadata.Updated = &now
		if err := b.writeIndexed(c, &next, body); err != nil {
			return affected, fmt.Errorf("failed to write card %d: %w", id, err)
		}
		affected++
	}

	if len(b.config.LabelColors) > 0 {
		editColors(b.config.LabelColors)
		if err := SaveConfig(b.root, b.config); err != nil {
			return affected, err
		}
	}
	return affected, nil
}
