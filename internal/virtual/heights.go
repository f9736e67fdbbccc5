package virtual

import "math"

// DefaultEstimatedHeight is used for items that have not been measured yet.
const DefaultEstimatedHeight = 90

// heights maps item keys to their last measured height. A missing entry
// means "not measured", never zero.
type heights[K comparable] struct {
	estimate float64
	table    map[K]float64
}

func newHeights[K comparable](estimate float64) *heights[K] {
	if !validHeight(estimate) {
		estimate = DefaultEstimatedHeight
	}
	return &heights[K]{
		estimate: estimate,
		table:    make(map[K]float64),
	}
}

func (h *heights[K]) of(id K) float64 {
	if v, ok := h.table[id]; ok {
		return v
	}
	return h.estimate
}

// record stores a measurement and reports whether the stored value changed.
// Non-positive and non-finite heights are ignored so the prefix sums stay
// strictly increasing.
func (h *heights[K]) record(id K, height float64) bool {
	if !validHeight(height) {
		return false
	}
	if old, ok := h.table[id]; ok && old == height {
		return false
	}
	h.table[id] = height
	return true
}

func (h *heights[K]) measured(id K) bool {
	_, ok := h.table[id]
	return ok
}

func (h *heights[K]) reset() {
	clear(h.table)
}

// prune drops entries whose key is not in keep and returns how many were
// removed.
func (h *heights[K]) prune(keep map[K]struct{}) int {
	removed := 0
	for id := range h.table {
		if _, ok := keep[id]; !ok {
			delete(h.table, id)
			removed++
		}
	}
	return removed
}

func validHeight(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
