package virtual

// Coalescer collapses a burst of values into the latest one. It is used to
// apply at most one scroll update per display frame: Push reports whether a
// frame has to be scheduled and Flush, called from that frame, hands back the
// most recent value only.
type Coalescer[V any] struct {
	pending bool
	latest  V
}

// Push records v as the latest value. It returns true when no flush was
// pending, meaning the caller must schedule one.
func (c *Coalescer[V]) Push(v V) bool {
	c.latest = v
	if c.pending {
		return false
	}
	c.pending = true
	return true
}

// Peek returns the pending value without consuming it.
func (c *Coalescer[V]) Peek() (V, bool) {
	return c.latest, c.pending
}

// Flush returns the latest pushed value and clears the pending flag. ok is
// false when nothing was pushed since the previous flush.
func (c *Coalescer[V]) Flush() (v V, ok bool) {
	if !c.pending {
		return v, false
	}
	c.pending = false
	return c.latest, true
}

// Pending reports whether a value is waiting to be flushed.
func (c *Coalescer[V]) Pending() bool {
	return c.pending
}
