package card

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/daedalusboard/daedalus/internal/board"
	"github.com/daedalusboard/daedalus/internal/tui/exp/list"
	"github.com/daedalusboard/daedalus/internal/tui/styles"
	"github.com/daedalusboard/daedalus/internal/tui/util"
)

// previewLines is the number of body lines shown under the title.
const previewLines = 3

// Item is a card rendered inside a board column. Its height depends on the
// title length, the metadata present and the body preview.
type Item struct {
	card        board.Card
	labelColors map[string]string
	minimal     bool

	width   int
	focused bool
}

var (
	_ list.Item      = (*Item)(nil)
	_ list.Focusable = (*Item)(nil)
	_ list.Keyed     = (*Item)(nil)
)

func New(c board.Card, labelColors map[string]string, minimal bool) *Item {
	return &Item{
		card:        c,
		labelColors: labelColors,
		minimal:     minimal,
	}
}

func (i *Item) ID() string {
	return i.card.Key()
}

func (i *Item) Card() board.Card {
	return i.card
}

func (i *Item) Init() tea.Cmd {
	return nil
}

func (i *Item) Update(tea.Msg) (util.Model, tea.Cmd) {
	return i, nil
}

func (i *Item) SetSize(width, height int) tea.Cmd {
	i.width = width
	return nil
}

func (i *Item) Focus() tea.Cmd {
	i.focused = true
	return nil
}

func (i *Item) Blur() tea.Cmd {
	i.focused = false
	return nil
}

func (i *Item) IsFocused() bool {
	return i.focused
}

// RenderKey lists everything View reads besides the width and focus.
func (i *Item) RenderKey() string {
	m := i.card.Metadata
	var sb strings.Builder
	sb.WriteString(m.Icon + "\x00" + m.Title + "\x00" + strings.Join(m.Labels, ",") + "\x00")
	if m.Due != nil {
		sb.WriteString(m.Due.Format(time.DateOnly) + "\x00" + time.Now().Format(time.DateOnly))
	}
	sb.WriteString("\x00")
	if m.Counter != nil {
		fmt.Fprintf(&sb, "%s:%d/%d", m.Counter.Label, m.Counter.Current, m.Counter.Max)
	}
	done, total := m.ChecklistProgress()
	fmt.Fprintf(&sb, "\x00%d/%d\x00%t\x00", done, total, i.minimal)
	if !i.minimal {
		sb.WriteString(i.card.Preview)
	}
	for _, l := range m.Labels {
		sb.WriteString("\x00" + i.labelColors[l])
	}
	return sb.String()
}

func (i *Item) View() string {
	t := styles.CurrentTheme()
	style := t.S().Card
	if i.focused {
		style = t.S().CardFocused
	}
	// border and padding
	width := max(i.width-style.GetHorizontalFrameSize(), 1)

	m := i.card.Metadata
	title := m.Title
	if m.Icon != "" {
		title = m.Icon + " " + title
	}
	lines := []string{
		t.S().CardTitle.Width(width).Render(title),
	}
	if labels := i.labels(width); labels != "" {
		lines = append(lines, labels)
	}
	if meta := i.meta(); meta != "" {
		lines = append(lines, ansi.Truncate(meta, width, "…"))
	}
	if !i.minimal {
		for _, line := range previewOf(i.card.Preview, m.Title) {
			lines = append(lines, t.S().Muted.Render(ansi.Truncate(line, width, "…")))
		}
	}
	return style.Render(strings.Join(lines, "\n"))
}

func (i *Item) labels(width int) string {
	if len(i.card.Metadata.Labels) == 0 {
		return ""
	}
	t := styles.CurrentTheme()
	parts := make([]string, 0, len(i.card.Metadata.Labels))
	for _, l := range i.card.Metadata.Labels {
		c := t.LabelColor(l, i.labelColors)
		parts = append(parts, lipgloss.NewStyle().Foreground(c).Render("● "+l))
	}
	return ansi.Truncate(strings.Join(parts, " "), width, "…")
}

func (i *Item) meta() string {
	t := styles.CurrentTheme()
	m := i.card.Metadata
	var parts []string
	parts = append(parts, t.S().Subtle.Render("#"+strconv.Itoa(m.ID)))
	if m.Due != nil {
		due := "due " + m.Due.Format("Jan 2")
		if m.Due.Before(startOfDay(time.Now())) {
			parts = append(parts, t.S().Overdue.Render(due))
		} else {
			parts = append(parts, t.S().Muted.Render(due))
		}
	}
	if c := m.Counter; c != nil {
		label := c.Label
		if label == "" {
			label = "count"
		}
		parts = append(parts, t.S().Info.Render(fmt.Sprintf("%s %d/%d", label, c.Current, c.Max)))
	}
	if done, total := m.ChecklistProgress(); total > 0 {
		style := t.S().Muted
		if done == total {
			style = t.S().Success
		}
		parts = append(parts, style.Render(fmt.Sprintf("☑ %d/%d", done, total)))
	}
	return strings.Join(parts, " ")
}

func startOfDay(now time.Time) time.Time {
	y, mo, d := now.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, now.Location())
}

// previewOf returns the first non-empty body lines, skipping the heading
// that repeats the title.
func previewOf(preview, title string) []string {
	var out []string
	for line := range strings.SplitSeq(preview, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == "# "+title {
			continue
		}
		out = append(out, line)
		if len(out) == previewLines {
			break
		}
	}
	return out
}
