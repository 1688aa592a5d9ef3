package value

// WidthClass distinguishes whether a slot stores a data value or an
// accessor pair, per the specification's "an access 'slot' is a pair
// (index, width_class) where width_class encodes whether the slot stores a
// data or accessor descriptor" (spec.md §Architecture, "Shape").
type WidthClass uint8

const (
	DataWidth WidthClass = iota
	AccessorWidth
)

// Slot is a resolved property location: an index into the object's named
// slot vector plus the attribute triple and width class recorded when the
// property was added.
type Slot struct {
	Index int
	Width WidthClass
	Attrs Attributes
}

// transitionKey is a shared shape's edge label: "add property with key K
// and attributes A" (spec.md §Architecture, "Shape").
type transitionKey struct {
	key   PropertyKey
	attrs Attributes
	width WidthClass
}

// Shape is the hidden-class descriptor backing an object's property
// layout (§4.F "Shapes"). It is either a shared shape — immutable, interned
// in a tree of parent→child "add property" transitions, so that two
// objects built through identical sequences of property additions land on
// the identical shape pointer — or a unique shape, owned by a single
// object once that object deletes a property, changes a property's
// attributes or width class, or changes prototype.
//
// This subsystem has no analogue in the teacher repo, whose object model
// is a plain `Fields map[string]Value`; it is designed directly from the
// specification's own algorithmic description of hidden classes rather
// than ported from any example file.
type Shape struct {
	Proto *Object // prototype pointer, or nil for null prototype

	unique bool

	// keys is the insertion-ordered list of property keys this shape
	// knows about; slots[i] corresponds to keys[i]. Shared and unique
	// shapes both maintain this so for..in / Object.keys iteration order
	// is simply a walk of keys.
	keys  []PropertyKey
	slots []Slot

	// table indexes keys for O(1) lookup by key; present on both shared
	// and unique shapes.
	table map[PropertyKey]int

	// transitions is the shared shape's forward-transition cache: for a
	// given (key, attrs, width) not yet on this shape, the child shape
	// reached by adding it. Nil on unique shapes, which never transition.
	transitions map[transitionKey]*Shape

	parent *Shape // the shape this one transitioned from; nil at the root
}

// RootShape returns a fresh, empty shared shape with the given prototype —
// the interning tree's root for objects built with that prototype.
func RootShape(proto *Object) *Shape {
	return &Shape{
		Proto:       proto,
		table:       make(map[PropertyKey]int),
		transitions: make(map[transitionKey]*Shape),
	}
}

// IsUnique reports whether s is a per-object unique shape rather than a
// shared, interned one.
func (s *Shape) IsUnique() bool { return s.unique }

// Lookup resolves key against this shape's property table.
func (s *Shape) Lookup(key PropertyKey) (Slot, bool) {
	idx, ok := s.table[key]
	if !ok {
		return Slot{}, false
	}
	return s.slots[idx], true
}

// Keys returns the shape's property keys in insertion order.
func (s *Shape) Keys() []PropertyKey { return s.keys }

// Len reports how many properties this shape describes.
func (s *Shape) Len() int { return len(s.keys) }

// AddProperty computes the transition for adding key with the given
// attributes/width to s and returns the resulting shape. On a shared shape
// this either follows an existing forward transition or allocates and
// caches a new child shape (§4.F: "every property insertion computes a
// transition key ... allocating a new shared child shape on miss"). On a
// unique shape the property is appended directly to its own table, since
// unique shapes are not interned and own their table outright.
func (s *Shape) AddProperty(key PropertyKey, attrs Attributes, width WidthClass) *Shape {
	if s.unique {
		return s.addUniqueProperty(key, attrs, width)
	}

	tk := transitionKey{key: key, attrs: attrs, width: width}
	if child, ok := s.transitions[tk]; ok {
		return child
	}

	child := &Shape{
		Proto:       s.Proto,
		keys:        append(append([]PropertyKey{}, s.keys...), key),
		slots:       append([]Slot{}, s.slots...),
		table:       make(map[PropertyKey]int, len(s.table)+1),
		transitions: make(map[transitionKey]*Shape),
		parent:      s,
	}
	for k, v := range s.table {
		child.table[k] = v
	}
	idx := len(child.slots)
	child.slots = append(child.slots, Slot{Index: idx, Width: width, Attrs: attrs})
	child.table[key] = idx

	s.transitions[tk] = child
	return child
}

func (s *Shape) addUniqueProperty(key PropertyKey, attrs Attributes, width WidthClass) *Shape {
	if _, exists := s.table[key]; exists {
		return s
	}
	idx := len(s.slots)
	s.keys = append(s.keys, key)
	s.slots = append(s.slots, Slot{Index: idx, Width: width, Attrs: attrs})
	s.table[key] = idx
	return s
}

// ToUnique converts s (shared or already-unique) into a freshly owned
// unique shape with the same property layout, used whenever an operation
// "perturbs slot indices" (delete, width-class change, prototype change)
// per §4.F: "Delete always produces a unique shape because it perturbs
// slot indices."
func (s *Shape) ToUnique() *Shape {
	u := &Shape{
		Proto:  s.Proto,
		unique: true,
		keys:   append([]PropertyKey{}, s.keys...),
		slots:  append([]Slot{}, s.slots...),
		table:  make(map[PropertyKey]int, len(s.table)),
	}
	for k, v := range s.table {
		u.table[k] = v
	}
	return u
}

// WithoutProperty returns a unique shape with key removed and all
// subsequent slot indices renumbered to stay contiguous and in insertion
// order, per §4.F's delete rule.
func (s *Shape) WithoutProperty(key PropertyKey) *Shape {
	u := s.ToUnique()
	idx, ok := u.table[key]
	if !ok {
		return u
	}
	u.keys = append(u.keys[:idx], u.keys[idx+1:]...)
	u.slots = append(u.slots[:idx], u.slots[idx+1:]...)
	delete(u.table, key)
	for i := idx; i < len(u.slots); i++ {
		u.slots[i].Index = i
		u.table[u.keys[i]] = i
	}
	return u
}

// WithAttributes returns a shape identical to s but with key's attributes
// (and width class) replaced; slot indices are unchanged. An already-unique
// shape with an unchanged width class is mutated in place; every other
// change yields a new unique shape.
func (s *Shape) WithAttributes(key PropertyKey, attrs Attributes, width WidthClass) *Shape {
	idx, ok := s.table[key]
	if !ok {
		return s
	}
	if s.slots[idx].Width == width && s.unique {
		s.slots[idx].Attrs = attrs
		return s
	}
	u := s.ToUnique()
	u.slots[idx].Attrs = attrs
	u.slots[idx].Width = width
	return u
}

// WithPrototype returns a unique shape identical to s but with a different
// prototype pointer, per §4.F's "prototype change converts the shape to
// unique" rule.
func (s *Shape) WithPrototype(proto *Object) *Shape {
	u := s.ToUnique()
	u.Proto = proto
	return u
}
