package styles

import (
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/exp/charmtone"
	"github.com/zeebo/xxh3"
)

type Theme struct {
	Name   string
	IsDark bool

	Primary   color.Color
	Secondary color.Color
	Tertiary  color.Color
	Accent    color.Color

	BgBase    color.Color
	BgSubtle  color.Color
	BgOverlay color.Color

	FgBase   color.Color
	FgMuted  color.Color
	FgSubtle color.Color

	Border      color.Color
	BorderFocus color.Color

	Success color.Color
	Error   color.Color
	Warning color.Color
	Info    color.Color

	White color.Color

	// Labels is the palette labels without a configured color are hashed
	// into.
	Labels []color.Color

	styles *Styles
}

type Styles struct {
	Base   lipgloss.Style
	Text   lipgloss.Style
	Muted  lipgloss.Style
	Subtle lipgloss.Style
	Title  lipgloss.Style

	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	// Columns
	Column        lipgloss.Style
	ColumnFocused lipgloss.Style
	ColumnTitle   lipgloss.Style

	// Cards
	Card        lipgloss.Style
	CardFocused lipgloss.Style
	CardTitle   lipgloss.Style
	Overdue     lipgloss.Style
}

var defaultTheme = NewCharmtoneTheme()

// CurrentTheme returns the theme used by every component.
func CurrentTheme() *Theme {
	return defaultTheme
}

func NewCharmtoneTheme() *Theme {
	t := &Theme{
		Name:   "charmtone",
		IsDark: true,

		Primary:   charmtone.Charple,
		Secondary: charmtone.Dolly,
		Tertiary:  charmtone.Bok,
		Accent:    charmtone.Zest,

		BgBase:    charmtone.Pepper,
		BgSubtle:  charmtone.Charcoal,
		BgOverlay: charmtone.Iron,

		FgBase:   charmtone.Ash,
		FgMuted:  charmtone.Squid,
		FgSubtle: charmtone.Oyster,

		Border:      charmtone.Charcoal,
		BorderFocus: charmtone.Charple,

		Success: charmtone.Guac,
		Error:   charmtone.Sriracha,
		Warning: charmtone.Zest,
		Info:    charmtone.Malibu,

		White: charmtone.Butter,

		Labels: []color.Color{
			charmtone.Coral,
			charmtone.Tang,
			charmtone.Mustard,
			charmtone.Julep,
			charmtone.Malibu,
			charmtone.Violet,
			charmtone.Dolly,
			charmtone.Bok,
		},
	}
	t.styles = t.buildStyles()
	return t
}

// S returns the styles derived from the theme colors.
func (t *Theme) S() *Styles {
	return t.styles
}

func (t *Theme) buildStyles() *Styles {
	base := lipgloss.NewStyle().Foreground(t.FgBase)
	return &Styles{
		Base:   base,
		Text:   base,
		Muted:  base.Foreground(t.FgMuted),
		Subtle: base.Foreground(t.FgSubtle),
		Title:  base.Foreground(t.Primary).Bold(true),

		Success: base.Foreground(t.Success),
		Error:   base.Foreground(t.Error),
		Warning: base.Foreground(t.Warning),
		Info:    base.Foreground(t.Info),

		Column: base.
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),
		ColumnFocused: base.
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderFocus).
			Padding(0, 1),
		ColumnTitle: base.Foreground(t.Secondary).Bold(true),

		Card: base.
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Border).
			PaddingLeft(1),
		CardFocused: base.
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(t.Primary).
			PaddingLeft(1),
		CardTitle: base.Bold(true),
		Overdue:   base.Foreground(t.Error),
	}
}

// LabelColor returns the color of a label. Colors configured for the board
// win; otherwise the label name picks a stable color from the palette.
func (t *Theme) LabelColor(label string, configured map[string]string) color.Color {
	if c, ok := configured[label]; ok && strings.HasPrefix(c, "#") {
		return lipgloss.Color(c)
	}
	if len(t.Labels) == 0 {
		return t.FgMuted
	}
	return t.Labels[xxh3.HashString(label)%uint64(len(t.Labels))]
}
