package board

import "strconv"

// Insert positions understood by ComputeInsertPosition besides a numeric
// index.
const (
	PositionTop    = "top"
	PositionBottom = "bottom"
)

// ComputeInsertPosition returns the list_order for a card inserted into
// cards (already ordered) and the index it will occupy. position is "top",
// "bottom" or a 0-based index; anything else means top.
func ComputeInsertPosition(cards []Card, position string) (float64, int) {
	if len(cards) == 0 {
		return 0, 0
	}
	first := cards[0].Metadata.ListOrder
	last := cards[len(cards)-1].Metadata.ListOrder

	if position == PositionBottom {
		return last + 1, len(cards)
	}
	if idx, err := strconv.Atoi(position); err == nil {
		switch {
		case idx <= 0:
			return first - 1, 0
		case idx >= len(cards):
			return last + 1, len(cards)
		}
		return (cards[idx-1].Metadata.ListOrder + cards[idx].Metadata.ListOrder) / 2, idx
	}
	return first - 1, 0
}
