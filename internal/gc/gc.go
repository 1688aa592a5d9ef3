// Package gc supplies the JS-visible garbage-collection-adjacent
// semantics the specification requires beyond what Go's own runtime
// collector already gives every heap value for free (§4.H "Garbage
// collector"). Object, Str, Sym and BigInt in internal/value are ordinary
// Go pointers, so their tracing, cycle collection and finalization are
// already handled by Go's own collector — a prototype chain or a closure
// environment that forms a cycle is exactly as collectible to Go's
// runtime as an acyclic one. What Go's collector does not give for free,
// and what this package adds, is the set of behaviors the specification
// says are JS-observable: weak references that read back empty once
// their referent is gone (WeakRef, and the weak object keys WeakMap and
// WeakSet use), finalization callbacks queued for delivery after
// collection (FinalizationRegistry), and a borrowable cell type with
// runtime aliasing checks for interior mutability.
//
// One specification detail does not translate: "code that holds raw
// references to heap data across an allocation must convert them to
// handles first" describes a moving collector that can relocate an
// object out from under a held pointer. Go's collector never moves heap
// objects this way, so an ordinary *value.Object (or any other Go
// pointer) is already the stable handle the specification asks for;
// there is no separate non-weak handle type here.
//
// Collector triggers collection on an allocation-count threshold or on
// an explicit request from the VM at a safe point, per §4.H; the actual
// sweep is delegated to runtime.GC, since there is no separate heap for
// this package to sweep itself.
package gc

import "runtime"

const defaultAllocThreshold = 1 << 16

// Collector tracks allocation volume for one context (the specification's
// "stop-the-world per context" collector) and triggers a collection
// either when the allocation threshold is reached or when the VM asks for
// one explicitly at a safe point.
type Collector struct {
	threshold int
	allocated int
}

// NewCollector creates a collector with the default allocation threshold.
func NewCollector() *Collector {
	return &Collector{threshold: defaultAllocThreshold}
}

// NewCollectorWithThreshold creates a collector that triggers after
// threshold allocations have been recorded through Alloc.
func NewCollectorWithThreshold(threshold int) *Collector {
	if threshold <= 0 {
		threshold = defaultAllocThreshold
	}
	return &Collector{threshold: threshold}
}

// Alloc records one heap allocation and triggers a collection once the
// threshold is reached.
func (c *Collector) Alloc() {
	c.allocated++
	if c.allocated >= c.threshold {
		c.Collect()
	}
}

// Collect forces an immediate, synchronous collection. The VM calls this
// at a safe point — a spot where it holds no raw references across the
// call that it has not already converted into handles — per §4.H
// "Triggers are allocation-threshold and explicit request from the VM at
// safe points."
func (c *Collector) Collect() {
	runtime.GC()
	c.allocated = 0
}
