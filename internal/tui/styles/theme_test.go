package styles

import (
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/stretchr/testify/assert"
)

func TestLabelColor(t *testing.T) {
	t.Parallel()
	th := NewCharmtoneTheme()

	assert.Equal(t, th.LabelColor("bug", nil), th.LabelColor("bug", nil), "hashing is stable")
	assert.Contains(t, th.Labels, th.LabelColor("feature", nil))
	assert.Equal(t, lipgloss.Color("#ff0000"), th.LabelColor("bug", map[string]string{"bug": "#ff0000"}))
	// named colors of the desktop app are not terminal colors
	assert.Contains(t, th.Labels, th.LabelColor("bug", map[string]string{"bug": "red"}))
}
