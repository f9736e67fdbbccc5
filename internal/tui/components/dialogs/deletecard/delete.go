package deletecard

import (
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/daedalusboard/daedalus/internal/board"
	"github.com/daedalusboard/daedalus/internal/tui/styles"
	"github.com/daedalusboard/daedalus/internal/tui/util"
)

// maxQuestionWidth keeps long titles from stretching the dialog.
const maxQuestionWidth = 60

type (
	// ConfirmedMsg asks the board to delete the card.
	ConfirmedMsg struct {
		Card board.Card
	}
	// CloseMsg closes the dialog.
	CloseMsg struct{}
)

type Dialog interface {
	util.Model
	Position() (int, int)
	Card() board.Card
}

type deleteCardDialogCmp struct {
	wWidth     int
	wHeight    int
	card       board.Card
	selectedNo bool
	keymap     KeyMap
}

func New(card board.Card) Dialog {
	return &deleteCardDialogCmp{
		card:       card,
		selectedNo: true,
		keymap:     DefaultKeyMap(),
	}
}

func (d *deleteCardDialogCmp) Init() tea.Cmd {
	return nil
}

func (d *deleteCardDialogCmp) Update(msg tea.Msg) (util.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		d.wWidth = msg.Width
		d.wHeight = msg.Height
	case tea.KeyPressMsg:
		switch {
		case key.Matches(msg, d.keymap.LeftRight, d.keymap.Tab):
			d.selectedNo = !d.selectedNo
			return d, nil
		case key.Matches(msg, d.keymap.EnterSpace):
			if !d.selectedNo {
				return d, d.confirm()
			}
			return d, util.CmdHandler(CloseMsg{})
		case key.Matches(msg, d.keymap.Yes):
			return d, d.confirm()
		case key.Matches(msg, d.keymap.No, d.keymap.Close):
			return d, util.CmdHandler(CloseMsg{})
		}
	}
	return d, nil
}

func (d *deleteCardDialogCmp) confirm() tea.Cmd {
	return tea.Sequence(
		util.CmdHandler(CloseMsg{}),
		util.CmdHandler(ConfirmedMsg{Card: d.card}),
	)
}

func (d *deleteCardDialogCmp) question() string {
	return ansi.Truncate("Delete card \""+d.card.Metadata.Title+"\"?", maxQuestionWidth, "…\"?")
}

func (d *deleteCardDialogCmp) View() string {
	t := styles.CurrentTheme()
	baseStyle := t.S().Base
	yesStyle := t.S().Text
	noStyle := yesStyle

	if d.selectedNo {
		noStyle = noStyle.Foreground(t.White).Background(t.Secondary)
		yesStyle = yesStyle.Background(t.BgSubtle)
	} else {
		yesStyle = yesStyle.Foreground(t.White).Background(t.Error)
		noStyle = noStyle.Background(t.BgSubtle)
	}

	question := d.question()
	const horizontalPadding = 3
	yesButton := yesStyle.Padding(0, horizontalPadding).Render("Delete")
	noButton := noStyle.Padding(0, horizontalPadding).Render("Cancel")

	buttons := baseStyle.Width(lipgloss.Width(question)).Align(lipgloss.Right).Render(
		lipgloss.JoinHorizontal(lipgloss.Center, yesButton, "  ", noButton),
	)

	content := baseStyle.Render(
		lipgloss.JoinVertical(
			lipgloss.Center,
			question,
			t.S().Muted.Render(d.card.List+" · #"+d.card.Key()),
			"",
			buttons,
		),
	)

	deleteDialogStyle := baseStyle.
		Padding(1, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderFocus)

	return deleteDialogStyle.Render(content)
}

// Position returns the row and column of the top left corner of the dialog,
// centered in the window.
func (d *deleteCardDialogCmp) Position() (int, int) {
	row := d.wHeight / 2
	row -= 8 / 2
	col := d.wWidth / 2
	col -= (lipgloss.Width(d.question()) + 6) / 2

	return max(row, 0), max(col, 0)
}

func (d *deleteCardDialogCmp) Card() board.Card {
	return d.card
}
