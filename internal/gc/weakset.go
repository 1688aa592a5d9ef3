package gc

// WeakSet is a set of weakly-held members of type K, backing the WeakSet
// built-in. It is a thin wrapper over WeakMap[K, struct{}]; WeakSet's
// specified operations (add, delete, has) need no associated value.
type WeakSet[K any] struct {
	m *WeakMap[K, struct{}]
}

// NewWeakSet creates an empty weak set.
func NewWeakSet[K any]() *WeakSet[K] {
	return &WeakSet[K]{m: NewWeakMap[K, struct{}]()}
}

// Add inserts member into the set. member must not be nil.
func (s *WeakSet[K]) Add(member *K) { s.m.Set(member, struct{}{}) }

// Has reports whether member is a live member of the set.
func (s *WeakSet[K]) Has(member *K) bool { return s.m.Has(member) }

// Delete removes member from the set, reporting whether it was present.
func (s *WeakSet[K]) Delete(member *K) bool { return s.m.Delete(member) }

// ForEach calls fn once for every member still alive, in an unspecified
// order.
func (s *WeakSet[K]) ForEach(fn func(member *K)) {
	s.m.ForEach(func(k *K, _ struct{}) { fn(k) })
}
