package virtual

import "sort"

// DefaultBuffer is the number of extra items mounted on each side of the
// visible window.
const DefaultBuffer = 2

// Range is a half-open interval [Start, End) of item indexes.
type Range struct {
	Start int
	End   int
}

// Len returns the number of items in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Contains reports whether index i falls within the range.
func (r Range) Contains(i int) bool {
	return i >= r.Start && i < r.End
}

// Resolve finds the items of a prefix-sum index that overlap the viewport
// [scrollOffset, scrollOffset+viewportHeight) and widens the result by buffer
// items on each side, clamped to [0, N].
//
// An offset past the end of the content resolves to the tail of the list
// instead of failing, which happens briefly after the item set shrinks.
func Resolve(prefix []float64, scrollOffset, viewportHeight float64, buffer int) Range {
	n := len(prefix) - 1
	if n <= 0 {
		return Range{}
	}
	scrollOffset = max(scrollOffset, 0)
	viewportHeight = max(viewportHeight, 0)
	buffer = max(buffer, 0)

	// First item whose span ends after the scroll offset. sort.Search returns
	// the lowest such index, so ties on equal offsets never skip an item.
	start := sort.Search(n, func(i int) bool {
		return prefix[i+1] > scrollOffset
	})

	bottom := scrollOffset + viewportHeight
	end := start
	for end < n && prefix[end] < bottom {
		end++
	}

	return Range{
		Start: max(0, start-buffer),
		End:   min(n, end+buffer),
	}
}
