// Package logo draws the labyrinth shown on an empty board.
package logo

import (
	"image/color"
	"strings"
	"unicode"

	"charm.land/lipgloss/v2"
	"github.com/MakeNowJust/heredoc"
	"github.com/charmbracelet/x/ansi"
)

var Labyrinth = heredoc.Doc(`
	▄▄▄▄▄▄▄▄▄▄▄▄▄▄▄▄▄▄▄▄▄
	█ ▄▄▄▄▄▄▄▄▄▄▄▄▄▄▄▄▄ █
	█ █ ▄▄▄▄▄▄▄▄▄▄▄▄▄ █ █
	█ █ █ ▄▄▄▄▄▄▄▄▄ █ █ █
	█ █ █ █   ▄   █ █ █ █
	█ █ █ █▄▄▄█▄▄▄█ █ █ █
	█ █ █▄▄▄▄▄ ▄▄▄▄▄█ █ █
	█ █▄▄▄▄▄▄▄ ▄▄▄▄▄▄▄█ █
	█▄▄▄▄▄▄▄▄▄ ▄▄▄▄▄▄▄▄▄█
`)

const wordmark = "d a e d a l u s"

type Logo struct {
	face   string
	walls  color.Color
	center color.Color
}

func New(walls, center color.Color) *Logo {
	return &Logo{
		face:   strings.TrimRight(Labyrinth, "\n"),
		walls:  walls,
		center: center,
	}
}

// Width is the width of the widest line of the drawing.
func (l *Logo) Width() int {
	w := 0
	for _, line := range strings.Split(l.face, "\n") {
		w = max(w, ansi.StringWidth(line))
	}
	return w
}

// Render draws the labyrinth above the wordmark. When it does not fit in
// width only the wordmark is drawn.
func (l *Logo) Render(width int) string {
	mark := lipgloss.NewStyle().Foreground(l.center).Bold(true).Render(wordmark)
	if width < l.Width() {
		return mark
	}

	wall := lipgloss.NewStyle().Foreground(l.walls)
	lines := strings.Split(l.face, "\n")
	mid := len(lines) / 2
	var b strings.Builder
	for y, line := range lines {
		for x, r := range []rune(line) {
			switch {
			case unicode.IsSpace(r):
				b.WriteRune(r)
			case y >= mid-1 && y <= mid && x == len([]rune(line))/2:
				// the goal in the middle of the maze
				b.WriteString(lipgloss.NewStyle().Foreground(l.center).Render(string(r)))
			default:
				b.WriteString(wall.Render(string(r)))
			}
		}
		b.WriteString("\n")
	}
	return lipgloss.JoinVertical(lipgloss.Center, strings.TrimSuffix(b.String(), "\n"), "", mark)
}
