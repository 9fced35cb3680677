// Package binding implements provenance-tagged values and two-way bound state
// cells.
//
// Every value written into a [Cell] carries an [Origin]: presenter logic
// writes with [Cell.Set] (FromPresenter) and the view writes with [Cell.Edit]
// (FromView). Both sides observe the same cell, and each side subscribes only
// to the other side's writes:
//
//	quantity := binding.NewCell(10)
//
//	// presenter: react to user edits only
//	sub := quantity.OnlyChangesFromView().Subscribe()
//
//	// view: render everything
//	all := quantity.Updates().Subscribe()
//
// A presenter correcting an edit with Set updates the view's display without
// re-triggering its own handler, which is what keeps a presenter and a view
// from oscillating.
package binding
