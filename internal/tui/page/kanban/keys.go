package kanban

import (
	"charm.land/bubbles/v2/key"
)

type KeyMap struct {
	NextColumn,
	PrevColumn,
	Open,
	Edit,
	Filter,
	NewCard,
	Delete,
	MoveRight,
	MoveLeft,
	Reload,
	ToggleMinimal,
	Confirm,
	Cancel,
	Quit key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextColumn: key.NewBinding(
			key.WithKeys("l", "right", "tab"),
			key.WithHelp("l/→", "next list"),
		),
		PrevColumn: key.NewBinding(
			key.WithKeys("h", "left", "shift+tab"),
			key.WithHelp("h/←", "prev list"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		NewCard: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new card"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "delete"),
		),
		MoveRight: key.NewBinding(
			key.WithKeys(">"),
			key.WithHelp(">", "move right"),
		),
		MoveLeft: key.NewBinding(
			key.WithKeys("<"),
			key.WithHelp("<", "move left"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r", "ctrl+r"),
			key.WithHelp("r", "reload"),
		),
		ToggleMinimal: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "minimal view"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k KeyMap) KeyBindings() []key.Binding {
	return []key.Binding{
		k.PrevColumn,
		k.NextColumn,
		k.Open,
		k.Edit,
		k.Filter,
		k.NewCard,
		k.Delete,
		k.MoveLeft,
		k.MoveRight,
		k.Reload,
		k.ToggleMinimal,
		k.Quit,
	}
}
