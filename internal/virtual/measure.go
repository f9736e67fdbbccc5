package virtual

// Measurer reads the rendered height of a mounted item. It returns false when
// the item is not mounted or its layout cannot be read yet.
type Measurer[K comparable] interface {
	MeasureHeight(id K) (float64, bool)
}

// MeasurerFunc adapts a function to the Measurer interface.
type MeasurerFunc[K comparable] func(id K) (float64, bool)

// MeasureHeight implements Measurer.
func (f MeasurerFunc[K]) MeasureHeight(id K) (float64, bool) {
	return f(id)
}

// MeasureResult summarizes one measurement pass.
type MeasureResult struct {
	// Measured is the number of mounted items whose height could be read.
	Measured int
	// Changed is the number of height table entries that were updated.
	Changed int
	// Pruned is the number of entries dropped for keys no longer in the list.
	Pruned int
}

// Measure runs the post-render feedback step: it reads the real height of
// every item in the last resolved range, records the ones that changed and
// drops height entries for keys that left the item sequence.
//
// Must be called after the items in Range() have been rendered.
func (e *Engine[K]) Measure(m Measurer[K]) MeasureResult {
	var res MeasureResult
	r := e.rng
	for _, id := range e.ids[r.Start:r.End] {
		h, ok := m.MeasureHeight(id)
		if !ok {
			// unmounted since the render; picked up on a later pass
			continue
		}
		res.Measured++
		if e.RecordMeasurement(id, h) {
			res.Changed++
		}
	}
	if e.needsPrune {
		keep := make(map[K]struct{}, len(e.ids))
		for _, id := range e.ids {
			keep[id] = struct{}{}
		}
		res.Pruned = e.heights.prune(keep)
		e.needsPrune = false
	}
	return res
}
