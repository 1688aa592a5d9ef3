package gc

import "weak"

// WeakRef is a weak reference to a heap value of type T: it does not keep
// its referent alive, and becomes empty once the referent is collected
// (§4.H "a weak handle does not keep its referent alive and becomes empty
// on collection"). It backs the WeakRef built-in.
type WeakRef[T any] struct {
	ptr weak.Pointer[T]
}

// NewWeakRef creates a weak reference to target.
func NewWeakRef[T any](target *T) WeakRef[T] {
	return WeakRef[T]{ptr: weak.Make(target)}
}

// Deref returns the referent and true, or nil and false once it has been
// collected.
func (w WeakRef[T]) Deref() (*T, bool) {
	v := w.ptr.Value()
	return v, v != nil
}
