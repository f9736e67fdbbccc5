package board

import (
	"encoding/json"
	"fmt"
	"io"
)

// Export is the JSON document written by ExportJSON.
type Export struct {
	Title string       `json:"title"`
	Lists []ExportList `json:"lists"`
}

type ExportList struct {
	ListEntry
	Cards []ExportCard `json:"cards"`
}

type ExportCard struct {
	Metadata
	Body string `json:"body"`
}

// ExportJSON writes the whole board, card bodies included, to w as indented
// JSON.
func ExportJSON(repo Repository, w io.Writer) error {
	out := Export{Title: repo.Title()}
	for _, list := range repo.Lists() {
		cards, err := repo.Cards(list.Dir)
		if err != nil {
			return err
		}
		el := ExportList{ListEntry: list.ListEntry, Cards: make([]ExportCard, 0, len(cards))}
		for _, c := range cards {
			body, err := ReadBody(c.Path)
			if err != nil {
				return fmt.Errorf("failed to read card %d: %w", c.Metadata.ID, err)
			}
			el.Cards = append(el.Cards, ExportCard{Metadata: c.Metadata, Body: body})
		}
		out.Lists = append(out.Lists, el)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode board: %w", err)
	}
	return nil
}
