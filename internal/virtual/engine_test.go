package virtual

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seqIDs(prefix string, n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s-%d", prefix, i)
	}
	return ids
}

// fakeSurface is a rendering surface with fixed real heights. Items outside
// mounted are reported as unreadable.
type fakeSurface struct {
	real    map[string]float64
	mounted map[string]bool
	reads   int
}

func (f *fakeSurface) mount(e *Engine[string]) {
	f.mounted = make(map[string]bool)
	r := e.Range()
	for _, id := range e.Items()[r.Start:r.End] {
		f.mounted[id] = true
	}
}

func (f *fakeSurface) MeasureHeight(id string) (float64, bool) {
	f.reads++
	if !f.mounted[id] {
		return 0, false
	}
	h, ok := f.real[id]
	return h, ok
}

func TestEngineScenarios(t *testing.T) {
	t.Parallel()

	t.Run("uniform list at the top", func(t *testing.T) {
		t.Parallel()
		e := New[string](WithEstimatedHeight(90))
		e.SetItems(seqIDs("a", 100))
		e.SetViewport(0, 800)
		assert.Equal(t, Range{Start: 0, End: 11}, e.Range())
		assert.Equal(t, float64(9000), e.TotalHeight())
		assert.Zero(t, e.TopOffset())
	})

	t.Run("uniform list scrolled", func(t *testing.T) {
		t.Parallel()
		e := New[string](WithEstimatedHeight(90))
		e.SetItems(seqIDs("a", 100))
		e.SetViewport(900, 800)
		r := e.Range()
		assert.Equal(t, 8, r.Start)
		assert.Equal(t, float64(720), e.TopOffset())
	})

	t.Run("mixed heights", func(t *testing.T) {
		t.Parallel()
		e := New[string](WithBuffer(0))
		ids := []string{"x", "y", "z"}
		e.RecordMeasurement("x", 50)
		e.RecordMeasurement("y", 200)
		e.RecordMeasurement("z", 50)
		e.SetItems(ids)
		e.SetViewport(0, 100)
		assert.Equal(t, []float64{0, 50, 250, 300}, e.PrefixSums())
		r := e.Range()
		assert.True(t, r.Contains(0))
		assert.True(t, r.Contains(1))
	})

	t.Run("empty list", func(t *testing.T) {
		t.Parallel()
		e := New[string]()
		e.SetItems(nil)
		e.SetViewport(0, 800)
		assert.Equal(t, Range{}, e.Range())
		assert.Zero(t, e.TotalHeight())
		assert.Zero(t, e.TopOffset())
	})

	t.Run("negative measurement rejected", func(t *testing.T) {
		t.Parallel()
		e := New[int](WithEstimatedHeight(90))
		e.SetItems([]int{5})
		assert.False(t, e.RecordMeasurement(5, -10))
		assert.False(t, e.Measured(5))
		assert.Equal(t, float64(90), e.HeightOf(5))
		assert.Zero(t, e.MeasuredCount())
	})

	t.Run("replacing the list prunes old heights", func(t *testing.T) {
		t.Parallel()
		e := New[string](WithEstimatedHeight(90))
		old := seqIDs("old", 100)
		e.SetItems(old)
		e.SetViewport(0, 800)
		s := &fakeSurface{real: map[string]float64{}}
		for _, id := range old {
			s.real[id] = 40
		}
		s.mount(e)
		e.Measure(s)
		require.Positive(t, e.MeasuredCount())

		fresh := seqIDs("new", 100)
		for _, id := range fresh {
			s.real[id] = 60
		}
		e.SetItems(fresh)
		s.mount(e)
		res := e.Measure(s)
		assert.Positive(t, res.Pruned)
		for _, id := range old {
			assert.False(t, e.Measured(id), id)
		}
		assert.Equal(t, res.Changed, e.MeasuredCount())
	})
}

func TestRecordMeasurement(t *testing.T) {
	t.Parallel()

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()
		e := New[int]()
		assert.True(t, e.RecordMeasurement(1, 42))
		assert.False(t, e.RecordMeasurement(1, 42))
		assert.True(t, e.RecordMeasurement(1, 43))
	})

	t.Run("rejects non-finite and non-positive values", func(t *testing.T) {
		t.Parallel()
		e := New[int]()
		for _, h := range []float64{0, -1, math.NaN(), math.Inf(1), math.Inf(-1)} {
			assert.False(t, e.RecordMeasurement(1, h), "%v", h)
		}
		assert.False(t, e.Measured(1))
	})

	t.Run("only effective changes invalidate the index", func(t *testing.T) {
		t.Parallel()
		e := New[int](WithEstimatedHeight(10))
		e.SetItems([]int{1, 2})
		before := e.PrefixSums()
		require.Equal(t, []float64{0, 10, 20}, before)

		e.RecordMeasurement(1, 10)
		assert.Equal(t, []float64{0, 10, 20}, e.PrefixSums())
		e.RecordMeasurement(1, 10)
		v := e.version
		e.RecordMeasurement(1, 10)
		assert.Equal(t, v, e.version)

		e.RecordMeasurement(2, 5)
		assert.Equal(t, []float64{0, 10, 15}, e.PrefixSums())
	})
}

func TestMeasureConvergence(t *testing.T) {
	t.Parallel()

	e := New[string](WithEstimatedHeight(90))
	ids := seqIDs("c", 50)
	e.SetItems(ids)
	e.SetViewport(0, 400)

	s := &fakeSurface{real: map[string]float64{}}
	for i, id := range ids {
		s.real[id] = float64(20 + (i%7)*15)
	}

	// first pass corrects the estimates of the mounted items
	s.mount(e)
	first := e.Measure(s)
	assert.Positive(t, first.Changed)

	// smaller items widen the window; the second pass measures the newcomers
	s.mount(e)
	e.Measure(s)

	// from here on the mounted set and its heights are stable
	s.mount(e)
	third := e.Measure(s)
	assert.Zero(t, third.Changed)

	r := e.Range()
	for _, id := range ids[r.Start:r.End] {
		assert.Equal(t, s.real[id], e.HeightOf(id), id)
	}
}

func TestMeasureSkipsUnmountedItems(t *testing.T) {
	t.Parallel()

	e := New[string](WithEstimatedHeight(10), WithBuffer(0))
	ids := seqIDs("u", 10)
	e.SetItems(ids)
	e.SetViewport(0, 30)

	s := &fakeSurface{real: map[string]float64{ids[0]: 12, ids[1]: 12, ids[2]: 12}}
	s.mounted = map[string]bool{ids[0]: true, ids[2]: true}

	res := e.Measure(s)
	assert.Equal(t, 3, s.reads)
	assert.Equal(t, 2, res.Measured)
	assert.Equal(t, 2, res.Changed)
	assert.False(t, e.Measured(ids[1]))
}

func TestMeasurePrunesOnlyAfterItemChanges(t *testing.T) {
	t.Parallel()

	e := New[int](WithEstimatedHeight(10))
	e.SetItems([]int{1, 2, 3})
	e.SetViewport(0, 100)
	m := MeasurerFunc[int](func(int) (float64, bool) { return 11, true })
	e.Measure(m)
	require.Equal(t, 3, e.MeasuredCount())

	e.SetItems([]int{2, 3})
	res := e.Measure(m)
	assert.Equal(t, 1, res.Pruned)
	assert.Equal(t, 2, e.MeasuredCount())

	res = e.Measure(m)
	assert.Zero(t, res.Pruned)
}

func TestSetItemsKeepsHeightsAcrossReorder(t *testing.T) {
	t.Parallel()

	e := New[int](WithEstimatedHeight(10))
	e.SetItems([]int{1, 2, 3})
	e.RecordMeasurement(1, 30)
	e.SetItems([]int{3, 2, 1})
	assert.Equal(t, []float64{0, 10, 20, 50}, e.PrefixSums())
	e.Measure(MeasurerFunc[int](func(int) (float64, bool) { return 0, false }))
	assert.True(t, e.Measured(1))
}

func TestSetItemsCopiesInput(t *testing.T) {
	t.Parallel()

	ids := []int{1, 2}
	e := New[int]()
	e.SetItems(ids)
	ids[0] = 99
	assert.Equal(t, []int{1, 2}, e.Items())
}

func TestPrefixSumsSnapshotSurvivesChanges(t *testing.T) {
	t.Parallel()

	e := New[int](WithEstimatedHeight(10))
	e.SetItems([]int{1, 2, 3})
	snapshot := e.PrefixSums()

	e.RecordMeasurement(1, 40)
	assert.Equal(t, []float64{0, 40, 50, 60}, e.PrefixSums())
	e.SetItems([]int{3, 1})
	assert.Equal(t, []float64{0, 10, 50}, e.PrefixSums())

	assert.Equal(t, []float64{0, 10, 20, 30}, snapshot)
}

func TestResetHeights(t *testing.T) {
	t.Parallel()

	e := New[int](WithEstimatedHeight(10), WithBuffer(0))
	e.SetItems([]int{1, 2, 3, 4})
	e.SetViewport(0, 50)
	e.RecordMeasurement(1, 40)
	e.RecordMeasurement(2, 40)
	require.Equal(t, Range{Start: 0, End: 2}, e.Range())
	v := e.version

	e.ResetHeights()
	assert.Zero(t, e.MeasuredCount())
	assert.False(t, e.Measured(1))
	assert.Equal(t, []float64{0, 10, 20, 30, 40}, e.PrefixSums())
	assert.Equal(t, Range{Start: 0, End: 4}, e.Range())
	assert.Greater(t, e.version, v)

	v = e.version
	e.ResetHeights()
	assert.Equal(t, v, e.version, "nothing to forget")
}

func TestSetItemsReResolvesStaleOffset(t *testing.T) {
	t.Parallel()

	e := New[int](WithEstimatedHeight(10), WithBuffer(0))
	ids := make([]int, 100)
	for i := range ids {
		ids[i] = i
	}
	e.SetItems(ids)
	e.SetViewport(900, 50)
	require.Equal(t, Range{Start: 90, End: 95}, e.Range())

	e.SetItems(ids[:20])
	assert.Equal(t, Range{Start: 20, End: 20}, e.Range())
	assert.Equal(t, float64(150), e.ClampOffset(e.ScrollOffset()))
}

func TestEngineHelpers(t *testing.T) {
	t.Parallel()

	e := New[int](WithEstimatedHeight(10), WithBuffer(1))
	assert.Equal(t, float64(10), e.EstimatedHeight())
	assert.Equal(t, 1, e.Buffer())
	e.SetItems([]int{1, 2, 3, 4})
	e.SetViewport(0, 25)

	assert.Equal(t, 4, e.Len())
	assert.Equal(t, float64(20), e.OffsetOf(2))
	assert.Equal(t, float64(40), e.OffsetOf(10))
	assert.Equal(t, float64(0), e.OffsetOf(-1))
	assert.Equal(t, 1, e.IndexAt(15))
	assert.Equal(t, 2, e.IndexAt(20))
	assert.Equal(t, 4, e.IndexAt(400))
	assert.Equal(t, float64(15), e.ClampOffset(100))
	assert.Equal(t, float64(0), e.ClampOffset(-3))
}

func TestOptionsIgnoreInvalidValues(t *testing.T) {
	t.Parallel()

	e := New[int](WithEstimatedHeight(-5), WithBuffer(-1))
	assert.Equal(t, float64(DefaultEstimatedHeight), e.EstimatedHeight())
	assert.Equal(t, 0, e.Buffer())
}

func BenchmarkEngineResolve(b *testing.B) {
	for _, size := range []int{100, 1000, 10000, 100000} {
		b.Run(fmt.Sprintf("Items_%d", size), func(b *testing.B) {
			ids := make([]int, size)
			for i := range ids {
				ids[i] = i
			}
			e := New[int](WithEstimatedHeight(4))
			e.SetItems(ids)
			total := e.TotalHeight()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				e.SetViewport(float64(i%int(total)), 40)
				_ = e.Range()
			}
		})
	}
}

func BenchmarkEngineMeasure(b *testing.B) {
	ids := make([]int, 10000)
	for i := range ids {
		ids[i] = i
	}
	e := New[int](WithEstimatedHeight(4))
	e.SetItems(ids)
	e.SetViewport(0, 40)
	flip := false
	m := MeasurerFunc[int](func(id int) (float64, bool) {
		if flip {
			return 5, true
		}
		return 3, true
	})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		flip = !flip
		e.Measure(m)
		_ = e.PrefixSums()
	}
}
