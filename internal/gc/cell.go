package gc

import "sync/atomic"

// Cell provides interior mutability with runtime aliasing checks: any
// number of concurrent shared borrows, or one exclusive borrow (§4.H "A
// borrowable cell type provides interior mutability with runtime aliasing
// checks"). Violating the borrow rules panics rather than returning an
// error, since the specification treats it as an implementation bug, not
// a user-visible error — the evaluation model is single-threaded and
// cooperative (§5), so in practice this catches a handler that re-enters
// a cell it is already holding open, not a genuine data race.
type Cell[T any] struct {
	value T
	state atomic.Int32 // 0 = free, n>0 = n shared borrows, -1 = exclusive borrow
}

// NewCell wraps v in a fresh, unborrowed cell.
func NewCell[T any](v T) *Cell[T] {
	return &Cell[T]{value: v}
}

// Ref is a live shared borrow of a Cell. It must be released exactly once
// via Drop.
type Ref[T any] struct {
	cell *Cell[T]
}

// Get returns a pointer to the cell's value, valid for as long as the
// borrow is held.
func (r *Ref[T]) Get() *T { return &r.cell.value }

// Drop releases the shared borrow.
func (r *Ref[T]) Drop() { r.cell.state.Add(-1) }

// Borrow takes a new shared borrow, panicking if the cell is already
// exclusively borrowed.
func (c *Cell[T]) Borrow() *Ref[T] {
	for {
		s := c.state.Load()
		if s < 0 {
			panic("gc: cell already exclusively borrowed")
		}
		if c.state.CompareAndSwap(s, s+1) {
			return &Ref[T]{cell: c}
		}
	}
}

// RefMut is a live exclusive borrow of a Cell. It must be released
// exactly once via Drop.
type RefMut[T any] struct {
	cell *Cell[T]
}

// Get returns a pointer to the cell's value, valid for as long as the
// borrow is held.
func (r *RefMut[T]) Get() *T { return &r.cell.value }

// Drop releases the exclusive borrow.
func (r *RefMut[T]) Drop() { r.cell.state.Store(0) }

// BorrowMut takes the cell's one exclusive borrow, panicking if the cell
// is already borrowed, shared or exclusive.
func (c *Cell[T]) BorrowMut() *RefMut[T] {
	if !c.state.CompareAndSwap(0, -1) {
		panic("gc: cell already borrowed")
	}
	return &RefMut[T]{cell: c}
}
