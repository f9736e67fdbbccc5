package board

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

var (
	ErrCardNotFound = errors.New("card not found")
	ErrListNotFound = errors.New("list not found")
	ErrListExists   = errors.New("list already exists")
	ErrListLocked   = errors.New("list is locked")
)

// List describes one column of the board.
type List struct {
	ListEntry `yaml:",inline"`
	Cards     int `json:"cards" yaml:"cards"`
}

// Stats summarizes a loaded board.
type Stats struct {
	Lists     int           `json:"lists" yaml:"lists"`
	Cards     int           `json:"cards" yaml:"cards"`
	Bytes     int64         `json:"bytes" yaml:"bytes"`
	MaxID     int           `json:"max_id" yaml:"max_id"`
	ScanTime  time.Duration `json:"scan_time" yaml:"scan_time"`
	LoadedAt  time.Time     `json:"loaded_at" yaml:"loaded_at"`
	RootPath  string        `json:"path" yaml:"path"`
	BoardName string        `json:"title" yaml:"title"`
}

// Repository is the card store used by the UI and the CLI.
type Repository interface {
	Root() string
	Title() string
	Config() Config
	Stats() Stats
	Lists() []List
	Cards(list string) ([]Card, error)
	Card(id int) (Card, error)
	Body(id int) (string, error)
	CreateCard(list, title, body, position string) (Card, error)
	DeleteCard(id int) error
	MoveCard(id int, list, position string) (Card, error)
	UpdateCard(id int, meta Metadata, body string) (Card, error)
	CreateList(name string) error
	DeleteList(name string) error
	SetListConfig(dir, title string, limit int) error
	SetListLocked(dir string, locked bool) error
	RenameLabel(oldName, newName string) (int, error)
	RemoveLabel(label string) (int, error)
	Reload() error
}

// Board is a directory of lists of markdown cards.
type Board struct {
	mu sync.RWMutex

	root     string
	config   *Config
	lists    map[string]*cardIndex
	byID     map[int]*Card
	maxID    int
	bytes    int64
	scanTime time.Duration
	loadedAt time.Time
}

var _ Repository = (*Board)(nil)

// Load scans the board at root.
func Load(root string) (*Board, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve board path: %w", err)
	}
	b := &Board{root: abs}
	if err := b.Reload(); err != nil {
		return nil, err
	}
	return b, nil
}

type scannedList struct {
	cards []*Card
	maxID int
	bytes int64
}

// Reload rescans the board from disk, replacing the in-memory state.
func (b *Board) Reload() error {
	start := time.Now()
	entries, err := os.ReadDir(b.root)
	if err != nil {
		return fmt.Errorf("failed to read board directory: %w", err)
	}
	cfg, err := LoadConfig(b.root)
	if err != nil {
		return err
	}

	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() && isListDir(entry.Name()) {
			dirs = append(dirs, entry.Name())
		}
	}

	scanned := make([]scannedList, len(dirs))
	var g errgroup.Group
	g.SetLimit(8)
	for i, dir := range dirs {
		g.Go(func() error {
			res, err := scanList(filepath.Join(b.root, dir), dir)
			if err != nil {
				return err
			}
			scanned[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	onDisk := make(map[string]bool, len(dirs))
	lists := make(map[string]*cardIndex, len(dirs))
	byID := make(map[int]*Card)
	var maxID int
	var total int64
	for i, dir := range dirs {
		onDisk[dir] = true
		idx := newCardIndex()
		for _, c := range scanned[i].cards {
			if prev, dup := byID[c.Metadata.ID]; dup {
				slog.Warn("Skipping card with duplicate id", "id", c.Metadata.ID, "path", c.Path, "first", prev.Path)
				continue
			}
			byID[c.Metadata.ID] = c
			idx.insert(c)
		}
		lists[dir] = idx
		maxID = max(maxID, scanned[i].maxID)
		total += scanned[i].bytes
	}
	mergeListEntries(cfg, onDisk)

	b.mu.Lock()
	b.config = cfg
	b.lists = lists
	b.byID = byID
	b.maxID = maxID
	b.bytes = total
	b.scanTime = time.Since(start)
	b.loadedAt = time.Now()
	b.mu.Unlock()

	slog.Debug("Board loaded", "path", b.root, "lists", len(lists), "cards", len(byID), "took", b.scanTime)
	return nil
}

func scanList(path, name string) (scannedList, error) {
	files, err := os.ReadDir(path)
	if err != nil {
		return scannedList{}, fmt.Errorf("failed to read list %s: %w", name, err)
	}
	var res scannedList
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".md") {
			continue
		}
		full := filepath.Join(path, file.Name())
		meta, preview, err := readHeader(full)
		if err != nil {
			slog.Warn("Skipping invalid card file", "file", full, "error", err)
			continue
		}
		if meta.ID == 0 {
			meta.ID, _ = strconv.Atoi(strings.TrimSuffix(file.Name(), ".md"))
		}
		if meta.ID == 0 {
			slog.Warn("Skipping card without id", "file", full)
			continue
		}
		if info, err := file.Info(); err == nil {
			res.bytes += info.Size()
		}
		res.maxID = max(res.maxID, meta.ID)
		res.cards = append(res.cards, &Card{
			Path:     full,
			List:     name,
			Metadata: meta,
			Preview:  preview,
		})
	}
	slog.Debug("List scanned", "list", name, "cards", len(res.cards), "maxID", res.maxID)
	return res, nil
}

// Root returns the absolute board directory.
func (b *Board) Root() string {
	return b.root
}

// Title returns the board title, or the directory name when none is set.
func (b *Board) Title() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.config.Title != "" {
		return b.config.Title
	}
	return filepath.Base(b.root)
}

// Config returns a copy of the board configuration.
func (b *Board) Config() Config {
	b.mu.RLock()
	defer b.mu.RUnlock()
	cfg := *b.config
	cfg.Lists = append([]ListEntry(nil), b.config.Lists...)
	return cfg
}

func (b *Board) Stats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()
	title := b.config.Title
	if title == "" {
		title = filepath.Base(b.root)
	}
	return Stats{
		Lists:     len(b.lists),
		Cards:     len(b.byID),
		Bytes:     b.bytes,
		MaxID:     b.maxID,
		ScanTime:  b.scanTime,
		LoadedAt:  b.loadedAt,
		RootPath:  b.root,
		BoardName: title,
	}
}

// Lists returns the lists in display order.
func (b *Board) Lists() []List {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]List, 0, len(b.config.Lists))
	for _, entry := range b.config.Lists {
		n := 0
		if idx, ok := b.lists[entry.Dir]; ok {
			n = idx.len()
		}
		out = append(out, List{ListEntry: entry, Cards: n})
	}
	return out
}

// Cards returns the cards of list in display order.
func (b *Board) Cards(list string) ([]Card, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	idx, ok := b.lists[list]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrListNotFound, list)
	}
	return idx.cards(), nil
}

func (b *Board) Card(id int) (Card, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	c, ok := b.byID[id]
	if !ok {
		return Card{}, fmt.Errorf("%w: %d", ErrCardNotFound, id)
	}
	return *c, nil
}

// Body reads the full markdown body of a card from disk.
func (b *Board) Body(id int) (string, error) {
	c, err := b.Card(id)
	if err != nil {
		return "", err
	}
	return ReadBody(c.Path)
}

// CreateCard writes a new card into list at position and returns it. An
// empty title becomes the card id.
func (b *Board) CreateCard(list, title, body, position string) (Card, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx, ok := b.lists[list]
	if !ok {
		return Card{}, fmt.Errorf("%w: %s", ErrListNotFound, list)
	}
	if b.config.IsLocked(list) {
		return Card{}, fmt.Errorf("%w: %s", ErrListLocked, list)
	}

	id := b.maxID + 1
	order, _ := ComputeInsertPosition(idx.cards(), position)
	if strings.TrimSpace(title) == "" {
		title = strconv.Itoa(id)
	}
	now := time.Now()
	meta := Metadata{
		ID:        id,
		Title:     title,
		Created:   &now,
		Updated:   &now,
		ListOrder: order,
	}
	path := filepath.Join(b.root, list, strconv.Itoa(id)+".md")
	if err := WriteCard(path, meta, fmt.Sprintf("# %s\n\n%s", title, body)); err != nil {
		return Card{}, err
	}

	c := &Card{Path: path, List: list, Metadata: meta}
	idx.insert(c)
	b.byID[id] = c
	// ids are a high-water mark and never reused
	b.maxID = id
	slog.Info("Card created", "id", id, "list", list, "position", position)
	return *c, nil
}

// DeleteCard removes a card file.
func (b *Board) DeleteCard(id int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.byID[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrCardNotFound, id)
	}
	if b.config.IsLocked(c.List) {
		return fmt.Errorf("%w: %s", ErrListLocked, c.List)
	}
	info, statErr := os.Stat(c.Path)
	if err := os.Remove(c.Path); err != nil {
		return fmt.Errorf("failed to remove card file: %w", err)
	}
	if statErr == nil {
		b.bytes -= info.Size()
	}
	b.lists[c.List].remove(c)
	delete(b.byID, id)
	slog.Info("Card deleted", "id", id, "list", c.List)
	return nil
}

// MoveCard moves a card to position within list, which may be its current
// list.
func (b *Board) MoveCard(id int, list, position string) (Card, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.byID[id]
	if !ok {
		return Card{}, fmt.Errorf("%w: %d", ErrCardNotFound, id)
	}
	target, ok := b.lists[list]
	if !ok {
		return Card{}, fmt.Errorf("%w: %s", ErrListNotFound, list)
	}
	for _, dir := range []string{c.List, list} {
		if b.config.IsLocked(dir) {
			return Card{}, fmt.Errorf("%w: %s", ErrListLocked, dir)
		}
	}

	body, err := ReadBody(c.Path)
	if err != nil {
		return Card{}, err
	}

	source := b.lists[c.List]
	source.remove(c)
	order, _ := ComputeInsertPosition(target.cards(), position)

	moved := *c
	now := time.Now()
	moved.Metadata.Updated = &now
	moved.Metadata.ListOrder = order
	if list != c.List {
		moved.Path = filepath.Join(b.root, list, filepath.Base(c.Path))
		moved.List = list
		if err := os.Rename(c.Path, moved.Path); err != nil {
			source.insert(c)
			return Card{}, fmt.Errorf("failed to move card file: %w", err)
		}
	}
	if err := WriteCard(moved.Path, moved.Metadata, body); err != nil {
		// the file is on disk in its new place; keep memory consistent with it
		target.insert(&moved)
		b.byID[id] = &moved
		return Card{}, err
	}

	target.insert(&moved)
	b.byID[id] = &moved
	slog.Info("Card moved", "id", id, "from", c.List, "to", list, "order", order)
	return moved, nil
}

// CreateList creates an empty list directory and registers it in board.yaml.
func (b *Board) CreateList(name string) error {
	name, err := ValidateListName(name)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.lists[name]; ok || FindListEntry(b.config.Lists, name) >= 0 {
		return fmt.Errorf("%w: %s", ErrListExists, name)
	}
	if err := os.MkdirAll(filepath.Join(b.root, name), 0o755); err != nil {
		return fmt.Errorf("failed to create list directory: %w", err)
	}
	b.lists[name] = newCardIndex()
	b.config.Lists = append(b.config.Lists, ListEntry{Dir: name})
	if err := SaveConfig(b.root, b.config); err != nil {
		return err
	}
	slog.Info("List created", "name", name)
	return nil
}

// DeleteList removes a list directory with all its cards.
func (b *Board) DeleteList(name string) error {
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return errors.New("invalid list name")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	idx, ok := b.lists[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrListNotFound, name)
	}
	if b.config.IsLocked(name) {
		return fmt.Errorf("%w: %s", ErrListLocked, name)
	}
	if err := os.RemoveAll(filepath.Join(b.root, name)); err != nil {
		return fmt.Errorf("failed to remove list directory: %w", err)
	}
	for _, c := range idx.cards() {
		delete(b.byID, c.Metadata.ID)
	}
	delete(b.lists, name)
	if i := FindListEntry(b.config.Lists, name); i >= 0 {
		b.config.Lists = append(b.config.Lists[:i], b.config.Lists[i+1:]...)
	}
	if err := SaveConfig(b.root, b.config); err != nil {
		return err
	}
	slog.Info("List deleted", "name", name, "cards", idx.len())
	return nil
}
