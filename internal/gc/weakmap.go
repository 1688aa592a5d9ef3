package gc

import (
	"runtime"
	"sync"
	"weak"
)

// WeakMap maps a weakly-held key of type K to a strongly-held value of
// type V, backing the WeakMap built-in (§4.H "WeakMap and WeakSet use
// weak object keys"). An entry's key does not keep the key's referent
// alive; once the key is collected, Get/Has/Delete stop observing the
// entry immediately (it is evicted from under them by a runtime cleanup),
// matching the specification's "they skip entries whose key is dead
// during enumeration and drop them on the next collection cycle" for the
// enumeration case, and eagerly for the point-lookup case.
type WeakMap[K any, V any] struct {
	mu      sync.Mutex
	entries map[weak.Pointer[K]]V
}

// NewWeakMap creates an empty weak map.
func NewWeakMap[K any, V any]() *WeakMap[K, V] {
	return &WeakMap[K, V]{entries: make(map[weak.Pointer[K]]V)}
}

// Set associates value with key. key must not be nil.
func (m *WeakMap[K, V]) Set(key *K, value V) {
	wp := weak.Make(key)
	m.mu.Lock()
	if _, exists := m.entries[wp]; !exists {
		runtime.AddCleanup(key, m.evict, wp)
	}
	m.entries[wp] = value
	m.mu.Unlock()
}

func (m *WeakMap[K, V]) evict(wp weak.Pointer[K]) {
	m.mu.Lock()
	delete(m.entries, wp)
	m.mu.Unlock()
}

// Get looks up key, reporting whether a live entry was found.
func (m *WeakMap[K, V]) Get(key *K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[weak.Make(key)]
	return v, ok
}

// Has reports whether key has a live entry.
func (m *WeakMap[K, V]) Has(key *K) bool {
	_, ok := m.Get(key)
	return ok
}

// Delete removes key's entry, reporting whether one existed.
func (m *WeakMap[K, V]) Delete(key *K) bool {
	wp := weak.Make(key)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[wp]; !ok {
		return false
	}
	delete(m.entries, wp)
	return true
}

// Len reports the number of entries as of the last eviction, which may
// overcount live entries between collection cycles — matching the
// specification's "drop them on the next collection cycle" for
// enumeration-style consumers; it is not used for point lookups, which
// Get/Has/Delete already answer exactly.
func (m *WeakMap[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// ForEach calls fn once for every entry whose key is still alive, in an
// unspecified order, skipping (and not re-surfacing) any entry whose key
// has already been collected.
func (m *WeakMap[K, V]) ForEach(fn func(key *K, value V)) {
	m.mu.Lock()
	keys := make([]weak.Pointer[K], 0, len(m.entries))
	for wp := range m.entries {
		keys = append(keys, wp)
	}
	m.mu.Unlock()

	for _, wp := range keys {
		k := wp.Value()
		if k == nil {
			continue
		}
		m.mu.Lock()
		v, ok := m.entries[wp]
		m.mu.Unlock()
		if !ok {
			continue
		}
		fn(k, v)
	}
}
