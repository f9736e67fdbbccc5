// Package virtual implements variable-height virtual scrolling for lists
// whose items are only partially mounted at any time.
//
// An Engine keeps a height per item key (measured, or an estimate when the
// item was never rendered), derives a prefix-sum index over the current item
// sequence and binary-searches it to find the window of items that overlap
// the viewport. After each render the caller feeds real heights back through
// Measure, which refines the index for the next pass.
//
// Typical render cycle:
//
//	e := virtual.New[string](virtual.WithEstimatedHeight(4))
//	e.SetItems(ids)
//	e.SetViewport(offset, height)
//	r := e.Range()
//	// mount ids[r.Start:r.End] below a spacer of e.TopOffset() rows,
//	// inside a container of e.TotalHeight() rows
//	e.Measure(measurer)
//
// Engines are not safe for concurrent use; each one belongs to a single list
// instance and is driven from that list's event loop.
package virtual
