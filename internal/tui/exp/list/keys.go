package list

import (
	"charm.land/bubbles/v2/key"
)

// KeyMap moves the selection through a column of cards. Page and line
// scrolling leave the selection alone unless it scrolls out of view.
type KeyMap struct {
	NextCard,
	PrevCard,
	ScrollDown,
	ScrollUp,
	PageDown,
	PageUp,
	HalfPageDown,
	HalfPageUp,
	FirstCard,
	LastCard key.Binding
}

// DefaultKeyMap uses vim style keys that do not clash with the board
// actions, which take the plain letters.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextCard: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("j/↓", "next card"),
		),
		PrevCard: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("k/↑", "prev card"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("ctrl+e", "J"),
			key.WithHelp("J", "scroll down a line"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("ctrl+y", "K"),
			key.WithHelp("K", "scroll up a line"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+f"),
			key.WithHelp("pgdn", "page down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+b"),
			key.WithHelp("pgup", "page up"),
		),
		HalfPageDown: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "half page down"),
		),
		HalfPageUp: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "half page up"),
		),
		FirstCard: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "first card"),
		),
		LastCard: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "last card"),
		),
	}
}

// KeyBindings returns the bindings shown in the help line, selection first.
func (k KeyMap) KeyBindings() []key.Binding {
	return []key.Binding{
		k.NextCard,
		k.PrevCard,
		k.FirstCard,
		k.LastCard,
		k.PageDown,
		k.PageUp,
	}
}
