package gc

import (
	"runtime"
	"sync"
)

// FinalizationRegistry lets a host register a callback to run after a
// target value becomes unreachable, backing the FinalizationRegistry
// built-in. Go's own collector schedules the underlying cleanup on its
// own goroutine, so callbacks are queued rather than invoked inline;
// Drain hands queued callbacks back to the VM's own thread for delivery,
// matching the specification's single-threaded execution model (§5
// "Mutation occurs only on the owning thread") — finalization callbacks
// are ordinary jobs from the VM's point of view, just like promise
// reactions.
type FinalizationRegistry[T any] struct {
	mu      sync.Mutex
	pending []any
	tokens  map[any][]runtime.Cleanup
}

// NewFinalizationRegistry creates an empty registry.
func NewFinalizationRegistry[T any]() *FinalizationRegistry[T] {
	return &FinalizationRegistry[T]{tokens: make(map[any][]runtime.Cleanup)}
}

// Register arranges for heldValue to be queued (for a later Drain) once
// target becomes unreachable. If unregisterToken is non-nil, a later call
// to Unregister with the same token cancels this registration.
func (r *FinalizationRegistry[T]) Register(target *T, heldValue any, unregisterToken any) {
	cl := runtime.AddCleanup(target, r.enqueue, heldValue)
	if unregisterToken == nil {
		return
	}
	r.mu.Lock()
	r.tokens[unregisterToken] = append(r.tokens[unregisterToken], cl)
	r.mu.Unlock()
}

func (r *FinalizationRegistry[T]) enqueue(heldValue any) {
	r.mu.Lock()
	r.pending = append(r.pending, heldValue)
	r.mu.Unlock()
}

// Unregister cancels every pending registration made under token,
// reporting whether any were found. A registration already delivered (or
// already queued for delivery) by the time Unregister runs is not
// recalled.
func (r *FinalizationRegistry[T]) Unregister(token any) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cls, ok := r.tokens[token]
	if !ok {
		return false
	}
	for _, cl := range cls {
		cl.Stop()
	}
	delete(r.tokens, token)
	return true
}

// Drain returns and clears every held value queued since the last Drain.
// The VM calls this at a job-queue checkpoint and enqueues one cleanup
// job per returned value.
func (r *FinalizationRegistry[T]) Drain() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.pending) == 0 {
		return nil
	}
	out := r.pending
	r.pending = nil
	return out
}
