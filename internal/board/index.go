package board

import "github.com/google/btree"

// cardIndex keeps the cards of one list ordered by list_order, then id.
type cardIndex struct {
	tree *btree.BTreeG[*Card]
}

func cardLess(a, b *Card) bool {
	if a.Metadata.ListOrder != b.Metadata.ListOrder {
		return a.Metadata.ListOrder < b.Metadata.ListOrder
	}
	return a.Metadata.ID < b.Metadata.ID
}

func newCardIndex() *cardIndex {
	return &cardIndex{tree: btree.NewG(32, cardLess)}
}

func (x *cardIndex) insert(c *Card) {
	x.tree.ReplaceOrInsert(c)
}

func (x *cardIndex) remove(c *Card) {
	x.tree.Delete(c)
}

func (x *cardIndex) len() int {
	return x.tree.Len()
}

// cards returns copies of the cards in display order.
func (x *cardIndex) cards() []Card {
	out := make([]Card, 0, x.tree.Len())
	x.tree.Ascend(func(c *Card) bool {
		out = append(out, *c)
		return true
	})
	return out
}
