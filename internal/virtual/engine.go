package virtual

import "slices"

// Option configures an Engine.
type Option func(*options)

type options struct {
	estimate float64
	buffer   int
}

// WithEstimatedHeight sets the height assumed for items that were never
// measured. Non-positive values keep the default.
func WithEstimatedHeight(h float64) Option {
	return func(o *options) {
		if validHeight(h) {
			o.estimate = h
		}
	}
}

// WithBuffer sets how many items beyond the viewport are mounted on each
// side.
func WithBuffer(n int) Option {
	return func(o *options) {
		o.buffer = max(n, 0)
	}
}

// Engine tracks item heights and resolves the visible window of one list.
type Engine[K comparable] struct {
	heights *heights[K]
	buffer  int

	ids []K

	// version is bumped whenever ids or a height change. prefix is valid
	// while prefixVersion == version, rng while rangeVersion == version and
	// the viewport is unchanged.
	version       uint64
	prefix        []float64
	prefixVersion uint64
	rng           Range
	rangeVersion  uint64

	offset   float64
	viewport float64

	needsPrune bool
}

// New returns an Engine with no items.
func New[K comparable](opts ...Option) *Engine[K] {
	o := options{
		estimate: DefaultEstimatedHeight,
		buffer:   DefaultBuffer,
	}
	for _, opt := range opts {
		opt(&o)
	}
	e := &Engine[K]{
		heights: newHeights[K](o.estimate),
		buffer:  o.buffer,
		version: 1,
	}
	e.rebuild()
	e.resolve()
	return e
}

// EstimatedHeight returns the height used for unmeasured items.
func (e *Engine[K]) EstimatedHeight() float64 {
	return e.heights.estimate
}

// Buffer returns the number of items mounted beyond each viewport edge.
func (e *Engine[K]) Buffer() int {
	return e.buffer
}

// HeightOf returns the measured height of id, or the estimate when id has
// not been measured.
func (e *Engine[K]) HeightOf(id K) float64 {
	return e.heights.of(id)
}

// Measured reports whether id has a recorded measurement.
func (e *Engine[K]) Measured(id K) bool {
	return e.heights.measured(id)
}

// MeasuredCount returns the number of entries in the height table.
func (e *Engine[K]) MeasuredCount() int {
	return len(e.heights.table)
}

// RecordMeasurement stores the rendered height of id. Heights that are not
// positive finite numbers are rejected. It reports whether the stored value
// changed; only a change invalidates the prefix index.
func (e *Engine[K]) RecordMeasurement(id K, height float64) bool {
	if !e.heights.record(id, height) {
		return false
	}
	e.version++
	return true
}

// ResetHeights forgets every measurement, for when the layout of all items
// changed at once (a new width, a denser card style). Items fall back to
// the estimate until measured again.
func (e *Engine[K]) ResetHeights() {
	if len(e.heights.table) == 0 {
		return
	}
	e.heights.reset()
	e.version++
	e.rebuild()
	e.resolve()
}

// SetItems replaces the item sequence. The prefix index is rebuilt right
// away and the window re-resolved against the current scroll offset. Height
// entries of keys that are gone are pruned on the next Measure.
func (e *Engine[K]) SetItems(ids []K) {
	e.ids = slices.Clone(ids)
	e.version++
	e.needsPrune = true
	e.rebuild()
	e.resolve()
}

// Items returns the current item keys. The slice must not be modified.
func (e *Engine[K]) Items() []K {
	return e.ids
}

// Len returns the number of items.
func (e *Engine[K]) Len() int {
	return len(e.ids)
}

// SetViewport updates the scroll offset and viewport height and re-resolves
// the window.
func (e *Engine[K]) SetViewport(scrollOffset, viewportHeight float64) {
	e.offset = max(scrollOffset, 0)
	e.viewport = max(viewportHeight, 0)
	e.resolve()
}

// ScrollOffset returns the last scroll offset passed to SetViewport.
func (e *Engine[K]) ScrollOffset() float64 {
	return e.offset
}

// ViewportHeight returns the last viewport height passed to SetViewport.
func (e *Engine[K]) ViewportHeight() float64 {
	return e.viewport
}

// PrefixSums returns the prefix-sum index, rebuilding it if items or heights
// changed since the last build. The slice must not be modified. A rebuild
// allocates a new slice, so one returned earlier keeps describing the
// layout it was built for.
func (e *Engine[K]) PrefixSums() []float64 {
	if e.prefixVersion != e.version {
		e.rebuild()
	}
	return e.prefix
}

// Range returns the buffered window of items to mount.
func (e *Engine[K]) Range() Range {
	if e.rangeVersion != e.version {
		e.resolve()
	}
	return e.rng
}

// TotalHeight returns the height of the whole content.
func (e *Engine[K]) TotalHeight() float64 {
	p := e.PrefixSums()
	return p[len(p)-1]
}

// TopOffset returns the offset of the first mounted item, which is the
// height of the spacer placed above the mounted window.
func (e *Engine[K]) TopOffset() float64 {
	r := e.Range()
	return e.prefix[r.Start]
}

// OffsetOf returns the top offset of the item at index i, clamped to the
// list bounds.
func (e *Engine[K]) OffsetOf(i int) float64 {
	p := e.PrefixSums()
	return p[min(max(i, 0), len(p)-1)]
}

// IndexAt returns the index of the item whose span contains offset, or Len()
// when offset is past the content.
func (e *Engine[K]) IndexAt(offset float64) int {
	p := e.PrefixSums()
	r := Resolve(p, offset, 0, 0)
	return r.Start
}

// ClampOffset bounds offset to the scrollable range of the current content
// for the current viewport height.
func (e *Engine[K]) ClampOffset(offset float64) float64 {
	maxOffset := max(e.TotalHeight()-e.viewport, 0)
	return min(max(offset, 0), maxOffset)
}

func (e *Engine[K]) rebuild() {
	e.prefix = BuildPrefixSums(e.ids, e.heights.of)
	e.prefixVersion = e.version
}

func (e *Engine[K]) resolve() {
	e.rng = Resolve(e.PrefixSums(), e.offset, e.viewport, e.buffer)
	e.rangeVersion = e.version
}
