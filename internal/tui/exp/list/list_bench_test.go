package list

import (
	"fmt"
	"testing"

	"github.com/daedalusboard/daedalus/internal/virtual"
)

func createBenchItems(n int) []Item {
	items := make([]Item, n)
	for i := range n {
		items[i] = newVariableItem(fmt.Sprintf("This is item %d with some content", i), i%5+1)
	}
	return items
}

func newBenchList(n int) *list[Item] {
	l := New(createBenchItems(n), WithSize(80, 30), WithEngineOptions(virtual.WithEstimatedHeight(3))).(*list[Item])
	l.Init()
	return l
}

// BenchmarkListRender measures a full render and measure cycle of the window.
func BenchmarkListRender(b *testing.B) {
	for _, size := range []int{100, 1000, 10000} {
		b.Run(fmt.Sprintf("Items_%d", size), func(b *testing.B) {
			l := newBenchList(size)
			b.ResetTimer()
			for b.Loop() {
				l.render()
			}
		})
	}
}

func BenchmarkListScroll(b *testing.B) {
	for _, size := range []int{100, 1000, 10000} {
		b.Run(fmt.Sprintf("Items_%d", size), func(b *testing.B) {
			l := newBenchList(size)
			b.ResetTimer()
			for b.Loop() {
				l.MoveDown(10)
				l.MoveUp(10)
			}
		})
	}
}

// BenchmarkScrollThroughList walks the whole list, measuring every item once.
func BenchmarkScrollThroughList(b *testing.B) {
	l := newBenchList(10000)
	b.ResetTimer()
	for b.Loop() {
		for range 100 {
			l.MoveDown(100)
		}
		l.GoToTop()
	}
}

func BenchmarkListSetItems(b *testing.B) {
	for _, size := range []int{100, 1000, 10000} {
		b.Run(fmt.Sprintf("Items_%d", size), func(b *testing.B) {
			items := createBenchItems(size)
			l := newBenchList(size)
			b.ReportAllocs()
			b.ResetTimer()
			for b.Loop() {
				l.SetItems(items)
			}
		})
	}
}
