package board

import (
	"strconv"
	"time"
)

// PreviewMaxLen is the maximum number of bytes kept as a card body preview.
const PreviewMaxLen = 150

// Card is a markdown file inside a list directory.
type Card struct {
	Path     string   `json:"path" yaml:"path"`
	List     string   `json:"list" yaml:"list"`
	Metadata Metadata `json:"metadata" yaml:"metadata"`
	Preview  string   `json:"preview,omitempty" yaml:"preview,omitempty"`
}

// Key returns the stable identity used by the UI for this card.
func (c Card) Key() string {
	return strconv.Itoa(c.Metadata.ID)
}

// Metadata is the YAML frontmatter of a card file.
type Metadata struct {
	ID        int             `yaml:"id" json:"id"`
	Title     string          `yaml:"title" json:"title"`
	Created   *time.Time      `yaml:"created,omitempty" json:"created,omitempty"`
	Updated   *time.Time      `yaml:"updated,omitempty" json:"updated,omitempty"`
	ListOrder float64         `yaml:"list_order" json:"list_order"`
	Due       *time.Time      `yaml:"due,omitempty" json:"due,omitempty"`
	Range     *DateRange      `yaml:"range,omitempty" json:"range,omitempty"`
	Labels    []string        `yaml:"labels,omitempty" json:"labels,omitempty"`
	Icon      string          `yaml:"icon,omitempty" json:"icon,omitempty"`
	Counter   *Counter        `yaml:"counter,omitempty" json:"counter,omitempty"`
	Checklist []ChecklistItem `yaml:"checklist,omitempty" json:"checklist,omitempty"`
}

// DateRange is the period during which a card is active.
type DateRange struct {
	Start time.Time `yaml:"start" json:"start"`
	End   time.Time `yaml:"end" json:"end"`
}

// Counter is a labelled counter. It counts up when Start < Max and down
// otherwise.
type Counter struct {
	Current int    `yaml:"current" json:"current"`
	Max     int    `yaml:"max" json:"max"`
	Start   int    `yaml:"start,omitempty" json:"start,omitempty"`
	Step    int    `yaml:"step,omitempty" json:"step,omitempty"`
	Label   string `yaml:"label,omitempty" json:"label,omitempty"`
}

// ChecklistItem is one entry of a card checklist.
type ChecklistItem struct {
	Idx  int    `yaml:"idx" json:"idx"`
	Desc string `yaml:"desc" json:"desc"`
	Done bool   `yaml:"done" json:"done"`
}

// ChecklistProgress returns how many checklist items are done out of the
// total.
func (m Metadata) ChecklistProgress() (done, total int) {
	for _, item := range m.Checklist {
		if item.Done {
			done++
		}
	}
	return done, len(m.Checklist)
}

// TruncatePreview cuts body to PreviewMaxLen bytes.
func TruncatePreview(body string) string {
	if len(body) > PreviewMaxLen {
		return body[:PreviewMaxLen]
	}
	return body
}
