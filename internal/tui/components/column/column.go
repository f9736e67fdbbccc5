package column

import (
	"fmt"
	"slices"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/daedalusboard/daedalus/internal/board"
	"github.com/daedalusboard/daedalus/internal/tui/components/card"
	"github.com/daedalusboard/daedalus/internal/tui/exp/list"
	"github.com/daedalusboard/daedalus/internal/tui/styles"
	"github.com/daedalusboard/daedalus/internal/tui/util"
	"github.com/daedalusboard/daedalus/internal/virtual"
	"github.com/sahilm/fuzzy"
)

type Options struct {
	LabelColors   map[string]string
	Minimal       bool
	EngineOptions []virtual.Option
}

// Column is one list of the board: a header and a virtual list of cards.
type Column struct {
	entry board.List
	opts  Options

	list list.List[*card.Item]
	// every card of the list, the list itself may only hold the filtered ones
	all    []*card.Item
	filter string

	width, height int
	focused       bool
}

func New(entry board.List, cards []board.Card, opts Options) *Column {
	c := &Column{
		entry: entry,
		opts:  opts,
	}
	c.all = c.items(cards)
	c.list = list.New(c.all,
		list.WithGap(1),
		list.WithFocus(false),
		list.WithEnableMouse(),
		list.WithEngineOptions(opts.EngineOptions...),
	)
	return c
}

func (c *Column) items(cards []board.Card) []*card.Item {
	items := make([]*card.Item, 0, len(cards))
	for _, bc := range cards {
		items = append(items, card.New(bc, c.opts.LabelColors, c.opts.Minimal))
	}
	return items
}

func (c *Column) Name() string {
	return c.entry.Dir
}

func (c *Column) Entry() board.List {
	return c.entry
}

func (c *Column) Init() tea.Cmd {
	return c.list.Init()
}

func (c *Column) Update(msg tea.Msg) (util.Model, tea.Cmd) {
	u, cmd := c.list.Update(msg)
	c.list = u.(list.List[*card.Item])
	return c, cmd
}

// SetCards replaces the cards after a reload. The selection and the scroll
// offset survive when the selected card is still there.
func (c *Column) SetCards(entry board.List, cards []board.Card) tea.Cmd {
	c.entry = entry
	c.all = c.items(cards)
	return c.list.SetItems(c.filtered())
}

// SetOptions changes how cards are drawn, e.g. toggling the minimal view.
func (c *Column) SetOptions(opts Options) tea.Cmd {
	if opts.Minimal != c.opts.Minimal {
		// every card changes height
		c.list.ResetHeights()
	}
	c.opts.LabelColors = opts.LabelColors
	c.opts.Minimal = opts.Minimal
	cards := make([]board.Card, 0, len(c.all))
	for _, item := range c.all {
		cards = append(cards, item.Card())
	}
	c.all = c.items(cards)
	return c.list.SetItems(c.filtered())
}

// SetFilter fuzzy matches query against the card titles. An empty query
// shows every card.
func (c *Column) SetFilter(query string) tea.Cmd {
	c.filter = query
	return c.list.SetItems(c.filtered())
}

func (c *Column) Filter() string {
	return c.filter
}

func (c *Column) filtered() []*card.Item {
	if c.filter == "" {
		return c.all
	}
	titles := make([]string, len(c.all))
	for i, item := range c.all {
		titles[i] = item.Card().Metadata.Title
	}
	matches := fuzzy.Find(c.filter, titles)
	indexes := make([]int, 0, len(matches))
	for _, m := range matches {
		indexes = append(indexes, m.Index)
	}
	// board order, not score order
	slices.Sort(indexes)
	out := make([]*card.Item, 0, len(indexes))
	for _, i := range indexes {
		out = append(out, c.all[i])
	}
	return out
}

// Selected returns the selected card.
func (c *Column) Selected() (board.Card, bool) {
	s := c.list.SelectedItem()
	if s == nil {
		return board.Card{}, false
	}
	return (*s).Card(), true
}

func (c *Column) Select(key string) tea.Cmd {
	return c.list.SetSelected(key)
}

func (c *Column) Len() int {
	return len(c.list.Items())
}

func (c *Column) List() list.List[*card.Item] {
	return c.list
}

func (c *Column) Focus() tea.Cmd {
	c.focused = true
	return c.list.Focus()
}

func (c *Column) Blur() tea.Cmd {
	c.focused = false
	return c.list.Blur()
}

func (c *Column) IsFocused() bool {
	return c.focused
}

func (c *Column) SetSize(width, height int) tea.Cmd {
	c.width = width
	c.height = height
	style := c.style()
	return c.list.SetSize(
		max(width-style.GetHorizontalFrameSize(), 1),
		// header line
		max(height-style.GetVerticalFrameSize()-1, 1),
	)
}

func (c *Column) style() lipgloss.Style {
	t := styles.CurrentTheme()
	if c.focused {
		return t.S().ColumnFocused
	}
	return t.S().Column
}

func (c *Column) header(width int) string {
	t := styles.CurrentTheme()
	title := c.entry.DisplayTitle()
	if c.entry.Locked {
		title += " 🔒"
	}
	count := fmt.Sprintf("%d", len(c.all))
	if c.filter != "" {
		count = fmt.Sprintf("%d/%d", c.Len(), len(c.all))
	}
	if c.entry.Limit > 0 {
		count += fmt.Sprintf(" of %d", c.entry.Limit)
	}
	header := t.S().ColumnTitle.Render(title) + " " + t.S().Muted.Render(count)
	return ansi.Truncate(header, width, "…")
}

func (c *Column) View() string {
	if c.width <= 0 || c.height <= 0 {
		return ""
	}
	style := c.style()
	inner := max(c.width-style.GetHorizontalFrameSize(), 1)
	body := lipgloss.NewStyle().
		Width(inner).
		Height(max(c.height-style.GetVerticalFrameSize()-1, 1)).
		Render(c.list.View())
	return style.Render(c.header(inner) + "\n" + body)
}
