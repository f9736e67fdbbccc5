package kanban

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"
	"github.com/daedalusboard/daedalus/internal/board"
	"github.com/daedalusboard/daedalus/internal/config"
	"github.com/daedalusboard/daedalus/internal/tui/components/column"
	"github.com/daedalusboard/daedalus/internal/tui/components/dialogs/deletecard"
	"github.com/daedalusboard/daedalus/internal/tui/components/logo"
	"github.com/daedalusboard/daedalus/internal/tui/exp/list"
	"github.com/daedalusboard/daedalus/internal/tui/styles"
	"github.com/daedalusboard/daedalus/internal/tui/util"
)

// DefaultStatusTTL is how long info messages stay in the status line.
const DefaultStatusTTL = 5 * time.Second

// BoardChangedMsg reports that cards or lists changed on disk.
type BoardChangedMsg struct{}

type mode int

const (
	modeBoard mode = iota
	modeFilter
	modeNewCard
	modeDetail
	modeDelete
)

// Page is the board screen: one column per list plus a status and a help
// line.
type Page interface {
	util.Model
	SetSize(width, height int) tea.Cmd
}

type pageCmp struct {
	repo board.Repository
	cfg  *config.Config

	columns []*column.Column
	focus   int
	// first visible column
	first int

	width, height int
	mode          mode
	minimal       bool

	filter textinput.Model
	prompt textinput.Model
	dialog deletecard.Dialog

	detail       []string
	detailOffset int

	keyMap KeyMap
	help   help.Model
	status util.InfoMsg
}

func New(repo board.Repository, cfg *config.Config) Page {
	filter := textinput.New()
	filter.Prompt = "/ "
	filter.Placeholder = "filter cards"

	prompt := textinput.New()
	prompt.Prompt = "New card: "
	prompt.Placeholder = "title"

	minimal := cfg.Options.TUI != nil && cfg.Options.TUI.MinimalView
	if bc := repo.Config(); bc.MinimalView != nil {
		minimal = *bc.MinimalView
	}

	return &pageCmp{
		repo:    repo,
		cfg:     cfg,
		minimal: minimal,
		filter:  filter,
		prompt:  prompt,
		keyMap:  DefaultKeyMap(),
		help:    help.New(),
	}
}

func (p *pageCmp) Init() tea.Cmd {
	return p.reload(false)
}

func (p *pageCmp) columnOptions() column.Options {
	return column.Options{
		LabelColors:   p.repo.Config().LabelColors,
		Minimal:       p.minimal,
		EngineOptions: p.cfg.EngineOptions(),
	}
}

// reload rebuilds the columns from the repository. Existing columns keep
// their scroll position, selection and measured heights.
func (p *pageCmp) reload(fromDisk bool) tea.Cmd {
	if fromDisk {
		if err := p.repo.Reload(); err != nil {
			return util.ReportError(err)
		}
	}

	focused := ""
	if c := p.focused(); c != nil {
		focused = c.Name()
	}
	existing := make(map[string]*column.Column, len(p.columns))
	for _, c := range p.columns {
		existing[c.Name()] = c
	}

	var cmds []tea.Cmd
	columns := make([]*column.Column, 0, len(p.columns))
	for _, l := range p.repo.Lists() {
		cards, err := p.repo.Cards(l.Dir)
		if err != nil {
			cmds = append(cmds, util.ReportError(err))
			continue
		}
		if c, ok := existing[l.Dir]; ok {
			cmds = append(cmds, c.SetCards(l, cards))
			columns = append(columns, c)
			continue
		}
		c := column.New(l, cards, p.columnOptions())
		cmds = append(cmds, c.Init())
		columns = append(columns, c)
	}
	p.columns = columns

	p.focus = 0
	for i, c := range p.columns {
		if c.Name() == focused {
			p.focus = i
		}
	}
	slog.Debug("Board reloaded", "lists", len(p.columns), "from_disk", fromDisk)
	cmds = append(cmds, p.layout())
	return tea.Batch(cmds...)
}

func (p *pageCmp) focused() *column.Column {
	if p.focus < 0 || p.focus >= len(p.columns) {
		return nil
	}
	return p.columns[p.focus]
}

func (p *pageCmp) columnWidth() int {
	w := config.DefaultColumnWidth
	if p.cfg.Options.TUI != nil && p.cfg.Options.TUI.ColumnWidth > 0 {
		w = p.cfg.Options.TUI.ColumnWidth
	}
	return min(w, max(p.width, 1))
}

func (p *pageCmp) visibleColumns() int {
	return max(p.width/p.columnWidth(), 1)
}

// status and help lines
func (p *pageCmp) bodyHeight() int {
	return max(p.height-2, 1)
}

func (p *pageCmp) layout() tea.Cmd {
	if p.width <= 0 || p.height <= 0 {
		return nil
	}
	visible := p.visibleColumns()
	if p.focus < p.first {
		p.first = p.focus
	}
	if p.focus >= p.first+visible {
		p.first = p.focus - visible + 1
	}
	p.first = util.Clamp(p.first, 0, max(len(p.columns)-visible, 0))

	var cmds []tea.Cmd
	for i, c := range p.columns {
		cmds = append(cmds, c.SetSize(p.columnWidth(), p.bodyHeight()))
		switch {
		case i == p.focus && !c.IsFocused():
			cmds = append(cmds, c.Focus())
		case i != p.focus && c.IsFocused():
			cmds = append(cmds, c.Blur())
		}
	}
	p.filter.SetWidth(p.width - 4)
	p.prompt.SetWidth(p.width - 14)
	return tea.Batch(cmds...)
}

func (p *pageCmp) SetSize(width, height int) tea.Cmd {
	p.width = width
	p.height = height
	cmds := []tea.Cmd{p.layout()}
	if p.dialog != nil {
		_, cmd := p.dialog.Update(tea.WindowSizeMsg{Width: width, Height: height})
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (p *pageCmp) Update(msg tea.Msg) (util.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case BoardChangedMsg:
		return p, p.reload(true)
	case list.FrameMsg:
		// only the list that scheduled the frame acts on it
		var cmds []tea.Cmd
		for _, c := range p.columns {
			_, cmd := c.Update(msg)
			cmds = append(cmds, cmd)
		}
		return p, tea.Batch(cmds...)
	case util.InfoMsg:
		p.status = msg
		ttl := msg.TTL
		if ttl == 0 {
			ttl = DefaultStatusTTL
		}
		return p, tea.Tick(ttl, func(time.Time) tea.Msg {
			return util.ClearStatusMsg{}
		})
	case util.ClearStatusMsg:
		p.status = util.InfoMsg{}
		return p, nil
	case deletecard.CloseMsg:
		p.dialog = nil
		p.mode = modeBoard
		return p, nil
	case deletecard.ConfirmedMsg:
		return p, p.deleteCard(msg.Card)
	case editorFinishedMsg:
		return p, p.finishEdit(msg)
	case tea.MouseWheelMsg:
		if p.mode != modeBoard {
			return p, nil
		}
		inx := p.first + msg.X/p.columnWidth()
		if inx < 0 || inx >= len(p.columns) {
			return p, nil
		}
		_, cmd := p.columns[inx].Update(msg)
		return p, cmd
	case tea.KeyPressMsg:
		return p, p.handleKey(msg)
	}

	// cursor blinks and the like
	var cmd tea.Cmd
	switch p.mode {
	case modeFilter:
		p.filter, cmd = p.filter.Update(msg)
	case modeNewCard:
		p.prompt, cmd = p.prompt.Update(msg)
	}
	return p, cmd
}

func (p *pageCmp) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	switch p.mode {
	case modeDelete:
		if p.dialog == nil {
			p.mode = modeBoard
			return nil
		}
		_, cmd := p.dialog.Update(msg)
		return cmd
	case modeDetail:
		return p.handleDetailKey(msg)
	case modeFilter:
		return p.handleFilterKey(msg)
	case modeNewCard:
		return p.handlePromptKey(msg)
	}

	col := p.focused()
	switch {
	case key.Matches(msg, p.keyMap.Quit):
		return tea.Quit
	case key.Matches(msg, p.keyMap.NextColumn):
		return p.focusColumn(p.focus + 1)
	case key.Matches(msg, p.keyMap.PrevColumn):
		return p.focusColumn(p.focus - 1)
	case key.Matches(msg, p.keyMap.Reload):
		return tea.Sequence(p.reload(true), util.ReportInfo("Board reloaded"))
	case key.Matches(msg, p.keyMap.ToggleMinimal):
		return p.toggleMinimal()
	}
	if col == nil {
		return nil
	}
	switch {
	case key.Matches(msg, p.keyMap.Filter):
		p.mode = modeFilter
		p.filter.SetValue(col.Filter())
		p.filter.CursorEnd()
		return p.filter.Focus()
	case key.Matches(msg, p.keyMap.NewCard):
		if col.Entry().Locked {
			return util.ReportWarn("List " + col.Entry().DisplayTitle() + " is locked")
		}
		p.mode = modeNewCard
		p.prompt.Reset()
		return p.prompt.Focus()
	case key.Matches(msg, p.keyMap.Delete):
		c, ok := col.Selected()
		if !ok {
			return nil
		}
		if col.Entry().Locked {
			return util.ReportWarn("List " + col.Entry().DisplayTitle() + " is locked")
		}
		p.dialog = deletecard.New(c)
		p.mode = modeDelete
		_, cmd := p.dialog.Update(tea.WindowSizeMsg{Width: p.width, Height: p.height})
		return cmd
	case key.Matches(msg, p.keyMap.Open):
		return p.openDetail()
	case key.Matches(msg, p.keyMap.Edit):
		c, ok := col.Selected()
		if !ok {
			return nil
		}
		return p.editCard(c)
	case key.Matches(msg, p.keyMap.MoveLeft):
		return p.moveCard(-1)
	case key.Matches(msg, p.keyMap.MoveRight):
		return p.moveCard(1)
	}
	_, cmd := col.Update(msg)
	return cmd
}

func (p *pageCmp) focusColumn(inx int) tea.Cmd {
	if inx < 0 || inx >= len(p.columns) || inx == p.focus {
		return nil
	}
	p.focus = inx
	return p.layout()
}

func (p *pageCmp) handleFilterKey(msg tea.KeyPressMsg) tea.Cmd {
	col := p.focused()
	switch {
	case key.Matches(msg, p.keyMap.Cancel):
		p.mode = modeBoard
		p.filter.Blur()
		p.filter.Reset()
		if col != nil {
			return col.SetFilter("")
		}
		return nil
	case key.Matches(msg, p.keyMap.Confirm):
		p.mode = modeBoard
		p.filter.Blur()
		return nil
	}
	var cmd tea.Cmd
	p.filter, cmd = p.filter.Update(msg)
	if col != nil && col.Filter() != p.filter.Value() {
		return tea.Batch(cmd, col.SetFilter(p.filter.Value()))
	}
	return cmd
}

func (p *pageCmp) handlePromptKey(msg tea.KeyPressMsg) tea.Cmd {
	switch {
	case key.Matches(msg, p.keyMap.Cancel):
		p.mode = modeBoard
		p.prompt.Blur()
		return nil
	case key.Matches(msg, p.keyMap.Confirm):
		p.mode = modeBoard
		p.prompt.Blur()
		title := strings.TrimSpace(p.prompt.Value())
		if title == "" {
			return nil
		}
		return p.createCard(title)
	}
	var cmd tea.Cmd
	p.prompt, cmd = p.prompt.Update(msg)
	return cmd
}

func (p *pageCmp) createCard(title string) tea.Cmd {
	col := p.focused()
	if col == nil {
		return nil
	}
	c, err := p.repo.CreateCard(col.Name(), title, "", board.PositionBottom)
	if err != nil {
		return util.ReportError(err)
	}
	slog.Info("Card created", "id", c.Metadata.ID, "list", c.List)
	return tea.Batch(
		p.reload(false),
		col.Select(c.Key()),
		util.ReportInfo(fmt.Sprintf("Created card #%d", c.Metadata.ID)),
	)
}

func (p *pageCmp) deleteCard(c board.Card) tea.Cmd {
	p.dialog = nil
	p.mode = modeBoard
	if err := p.repo.DeleteCard(c.Metadata.ID); err != nil {
		return util.ReportError(err)
	}
	slog.Info("Card deleted", "id", c.Metadata.ID, "list", c.List)
	return tea.Batch(
		p.reload(false),
		util.ReportInfo(fmt.Sprintf("Deleted card #%d", c.Metadata.ID)),
	)
}

func (p *pageCmp) moveCard(delta int) tea.Cmd {
	col := p.focused()
	target := p.focus + delta
	if col == nil || target < 0 || target >= len(p.columns) {
		return nil
	}
	c, ok := col.Selected()
	if !ok {
		return nil
	}
	dst := p.columns[target]
	moved, err := p.repo.MoveCard(c.Metadata.ID, dst.Name(), board.PositionBottom)
	if err != nil {
		return util.ReportError(err)
	}
	slog.Info("Card moved", "id", moved.Metadata.ID, "from", c.List, "to", moved.List)
	p.focus = target
	return tea.Batch(p.reload(false), dst.Select(moved.Key()))
}

func (p *pageCmp) toggleMinimal() tea.Cmd {
	p.minimal = !p.minimal
	var cmds []tea.Cmd
	if err := p.cfg.SetMinimalView(p.minimal); err != nil {
		cmds = append(cmds, util.ReportError(err))
	}
	for _, c := range p.columns {
		cmds = append(cmds, c.SetOptions(p.columnOptions()))
	}
	return tea.Batch(cmds...)
}

func (p *pageCmp) openDetail() tea.Cmd {
	col := p.focused()
	if col == nil {
		return nil
	}
	c, ok := col.Selected()
	if !ok {
		return nil
	}
	body, err := p.repo.Body(c.Metadata.ID)
	if err != nil {
		return util.ReportError(err)
	}
	rendered, err := renderMarkdown(detailMarkdown(c, body), p.width)
	if err != nil {
		return util.ReportError(err)
	}
	p.detail = strings.Split(rendered, "\n")
	p.detailOffset = 0
	p.mode = modeDetail
	return nil
}

func (p *pageCmp) handleDetailKey(msg tea.KeyPressMsg) tea.Cmd {
	keys := list.DefaultKeyMap()
	maxOffset := max(len(p.detail)-p.bodyHeight(), 0)
	switch {
	case key.Matches(msg, p.keyMap.Cancel, p.keyMap.Quit, p.keyMap.Open):
		p.mode = modeBoard
		p.detail = nil
	case key.Matches(msg, p.keyMap.Edit):
		c, ok := p.detailCard()
		p.mode = modeBoard
		p.detail = nil
		if !ok {
			return nil
		}
		return p.editCard(c)
	case key.Matches(msg, keys.NextCard):
		p.detailOffset++
	case key.Matches(msg, keys.PrevCard):
		p.detailOffset--
	case key.Matches(msg, keys.PageDown):
		p.detailOffset += p.bodyHeight()
	case key.Matches(msg, keys.PageUp):
		p.detailOffset -= p.bodyHeight()
	case key.Matches(msg, keys.FirstCard):
		p.detailOffset = 0
	case key.Matches(msg, keys.LastCard):
		p.detailOffset = maxOffset
	}
	p.detailOffset = util.Clamp(p.detailOffset, 0, maxOffset)
	return nil
}

// detailMarkdown adds the card metadata to its body.
func detailMarkdown(c board.Card, body string) string {
	var sb strings.Builder
	m := c.Metadata
	if !strings.HasPrefix(strings.TrimSpace(body), "# ") {
		fmt.Fprintf(&sb, "# %s\n\n", m.Title)
	}
	sb.WriteString(body)
	sb.WriteString("\n\n---\n\n")
	fmt.Fprintf(&sb, "*#%d in %s*", m.ID, c.List)
	if len(m.Labels) > 0 {
		fmt.Fprintf(&sb, " · `%s`", strings.Join(m.Labels, "` `"))
	}
	if m.Due != nil {
		fmt.Fprintf(&sb, " · due %s", m.Due.Format(time.DateOnly))
	}
	sb.WriteString("\n")
	if len(m.Checklist) > 0 {
		sb.WriteString("\n## Checklist\n\n")
		for _, item := range m.Checklist {
			mark := " "
			if item.Done {
				mark = "x"
			}
			fmt.Fprintf(&sb, "- [%s] %s\n", mark, item.Desc)
		}
	}
	return sb.String()
}

func renderMarkdown(md string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(max(width-4, 20)),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render card: %w", err)
	}
	return strings.Trim(out, "\n"), nil
}

func (p *pageCmp) View() string {
	if p.width <= 0 || p.height <= 0 {
		return ""
	}
	var body string
	if p.mode == modeDetail {
		end := min(p.detailOffset+p.bodyHeight(), len(p.detail))
		body = strings.Join(p.detail[p.detailOffset:end], "\n")
	} else {
		body = p.columnsView()
	}
	body = lipgloss.NewStyle().
		Width(p.width).
		Height(p.bodyHeight()).
		MaxHeight(p.bodyHeight()).
		Render(body)

	view := strings.Join([]string{body, p.statusView(), p.helpView()}, "\n")
	if p.mode == modeDelete && p.dialog != nil {
		row, col := p.dialog.Position()
		view = util.Overlay(view, p.dialog.View(), row, col)
	}
	return view
}

func (p *pageCmp) columnsView() string {
	t := styles.CurrentTheme()
	if len(p.columns) == 0 {
		hint := t.S().Muted.Render("No lists yet. Create one with: daedalus list create <name>")
		art := logo.New(t.Border, t.Primary).Render(p.width)
		return lipgloss.Place(p.width, p.bodyHeight(), lipgloss.Center, lipgloss.Center,
			lipgloss.JoinVertical(lipgloss.Center, art, "", hint))
	}
	end := min(p.first+p.visibleColumns(), len(p.columns))
	views := make([]string, 0, end-p.first)
	for _, c := range p.columns[p.first:end] {
		views = append(views, c.View())
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}

func (p *pageCmp) statusView() string {
	t := styles.CurrentTheme()
	switch p.mode {
	case modeFilter:
		return p.filter.View()
	case modeNewCard:
		return p.prompt.View()
	}
	if p.status.Msg != "" {
		style := t.S().Info
		switch p.status.Type {
		case util.InfoTypeWarn:
			style = t.S().Warning
		case util.InfoTypeError:
			style = t.S().Error
		}
		return style.Render(p.status.Msg)
	}
	stats := p.repo.Stats()
	return t.S().Title.Render(p.repo.Title()) + " " +
		t.S().Muted.Render(fmt.Sprintf("%d lists · %d cards", stats.Lists, stats.Cards))
}

func (p *pageCmp) helpView() string {
	var bindings []key.Binding
	switch p.mode {
	case modeDelete:
		bindings = deletecard.DefaultKeyMap().ShortHelp()
	case modeDetail:
		keys := list.DefaultKeyMap()
		keys.NextCard.SetHelp("j/↓", "scroll down")
		keys.PrevCard.SetHelp("k/↑", "scroll up")
		bindings = []key.Binding{keys.NextCard, keys.PrevCard, keys.PageDown, keys.PageUp, p.keyMap.Edit, p.keyMap.Cancel}
	case modeFilter, modeNewCard:
		bindings = []key.Binding{p.keyMap.Confirm, p.keyMap.Cancel}
	default:
		bindings = p.keyMap.KeyBindings()
		if col := p.focused(); col != nil {
			bindings = append(col.List().KeyMap().KeyBindings()[:2], bindings...)
		}
	}
	p.help.SetWidth(p.width)
	return p.help.ShortHelpView(bindings)
}
