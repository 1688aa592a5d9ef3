package value

// ObjectKind tags which family of exotic behavior an object has; it
// "selects the object's internal-method table" (spec.md §Architecture,
// "Object"). Ordinary objects use the default (ordinary) internal methods;
// every other kind overrides some subset via its Internal vtable.
type ObjectKind uint8

const (
	KindOrdinary ObjectKind = iota
	KindArray
	KindFunction
	KindBoundFunction
	KindArguments
	KindTypedArray
	KindRegExp
	KindMap
	KindSet
	KindWeakMap
	KindWeakSet
	KindIterator
	KindModuleNamespace
	KindProxy
	KindDate
	KindPromise
	KindError
)

// Internal is the internal-method vtable an object's Kind selects (§4.F
// "Hidden-class transitions vs. polymorphism": "Each object kind's
// internal methods are dispatched through a static vtable pointer stored
// with the object"). Every entry defaults to the ordinary algorithm;
// exotic kinds (array, function, proxy, ...) override the entries their
// semantics require and leave the rest pointing at the shared ordinary
// implementation.
type Internal struct {
	GetPrototypeOf    func(o *Object) *Object
	SetPrototypeOf    func(o *Object, proto *Object) bool
	IsExtensible      func(o *Object) bool
	PreventExtensions func(o *Object) bool
	GetOwnProperty    func(o *Object, key PropertyKey) (Descriptor, bool)
	DefineOwnProperty func(o *Object, key PropertyKey, desc Descriptor) bool
	HasProperty       func(o *Object, key PropertyKey) bool
	Get               func(o *Object, key PropertyKey, receiver Value) (Value, error)
	Set               func(o *Object, key PropertyKey, v Value, receiver Value) (bool, error)
	Delete            func(o *Object, key PropertyKey) bool
	OwnPropertyKeys   func(o *Object) []PropertyKey

	// Call and Construct are nil on non-callable objects; IsCallable and
	// IsConstructor test their presence.
	Call      func(o *Object, this Value, args []Value) (Value, error)
	Construct func(o *Object, args []Value, newTarget *Object) (Value, error)
}

// Object is the runtime object record: a shape reference, dense storage
// for indexed (array-like) and named properties, and a kind tag selecting
// the internal-method vtable (§3 "Object").
type Object struct {
	shape *Shape
	kind  ObjectKind

	// slots is the named-property storage vector; index i holds the value
	// (or getter/setter pair, packed as [2]Value-like via accessors map)
	// for shape.Keys()[i]/shape's slot table.
	slots []Value

	// accessors holds getter/setter pairs for slots whose width class is
	// AccessorWidth; keyed by slot index since most objects have none.
	accessors map[int]accessorPair

	// Elements is the dense indexed-property vector backing array-exotic
	// and typed-array objects; ordinary objects leave it nil.
	Elements []Value

	// Extensible tracks whether new properties may be added (the
	// IsExtensible/PreventExtensions internal methods).
	Extensible bool

	// Internal is this object's internal-method vtable. Every Object
	// (even ordinary ones) carries one so dispatch is a direct field
	// load, never a kind-tag switch at the call site.
	Internal Internal

	// Private carries kind-specific payload: *FunctionData for
	// KindFunction, *ArrayData bookkeeping for KindArray, etc. Consumers
	// type-assert against their own kind's payload type.
	Private any
}

type accessorPair struct {
	Getter *Object
	Setter *Object
}

func (*Object) Kind() Kind              { return KindObject }
func (o *Object) DisplayString() string { return "[object Object]" }

// Class reports this object's exotic kind tag.
func (o *Object) Class() ObjectKind { return o.kind }

// IsCallable reports whether the object can be invoked as a function.
func (o *Object) IsCallable() bool { return o.Internal.Call != nil }

// IsConstructor reports whether the object can be used with `new`.
func (o *Object) IsConstructor() bool { return o.Internal.Construct != nil }

// NewObject builds a fresh ordinary object with the given prototype,
// sharing the prototype's empty root shape.
func NewObject(proto *Object) *Object {
	o := &Object{
		kind:       KindOrdinary,
		shape:      RootShape(proto),
		Extensible: true,
	}
	o.Internal = ordinaryInternal(o)
	return o
}

// NewObjectWithShape builds an object that starts life already conforming
// to shape, used when cloning object-literal templates that share layout.
func NewObjectWithShape(shape *Shape, kind ObjectKind) *Object {
	o := &Object{kind: kind, shape: shape, Extensible: true}
	o.slots = make([]Value, shape.Len())
	for i := range o.slots {
		o.slots[i] = U
	}
	o.Internal = ordinaryInternal(o)
	return o
}

func ordinaryInternal(o *Object) Internal {
	return Internal{
		GetPrototypeOf:    func(o *Object) *Object { return o.shape.Proto },
		SetPrototypeOf:    ordinarySetPrototypeOf,
		IsExtensible:      func(o *Object) bool { return o.Extensible },
		PreventExtensions: func(o *Object) bool { o.Extensible = false; return true },
		GetOwnProperty:    ordinaryGetOwnProperty,
		DefineOwnProperty: ordinaryDefineOwnProperty,
		HasProperty:       ordinaryHasProperty,
		Get:               ordinaryGet,
		Set:               ordinarySet,
		Delete:            ordinaryDelete,
		OwnPropertyKeys:   func(o *Object) []PropertyKey { return append([]PropertyKey{}, o.shape.Keys()...) },
	}
}

func ordinarySetPrototypeOf(o *Object, proto *Object) bool {
	if !o.Extensible && proto != o.shape.Proto {
		return false
	}
	o.shape = o.shape.WithPrototype(proto)
	return true
}

func ordinaryGetOwnProperty(o *Object, key PropertyKey) (Descriptor, bool) {
	slot, ok := o.shape.Lookup(key)
	if !ok {
		return Descriptor{}, false
	}
	if slot.Width == AccessorWidth {
		pair := o.accessors[slot.Index]
		return NewAccessorDescriptor(pair.Getter, pair.Setter, slot.Attrs), true
	}
	return NewDataDescriptor(o.slots[slot.Index], slot.Attrs), true
}

// ordinaryDefineOwnProperty implements property creation/redefinition,
// transitioning the shape on add and converting to a unique shape when the
// width class of an existing property changes (§4.F "Set that adds a
// property transitions the shape; if the new shape differs in width class
// ... all slots after the changed one must be renumbered").
func ordinaryDefineOwnProperty(o *Object, key PropertyKey, desc Descriptor) bool {
	width := DataWidth
	if desc.IsAccessor() {
		width = AccessorWidth
	}

	if slot, ok := o.shape.Lookup(key); ok {
		if slot.Width == width {
			o.shape = o.shape.WithAttributes(key, desc.Attrs, width)
			slot, _ = o.shape.Lookup(key)
			o.setSlotValue(slot, desc)
			return true
		}
		o.shape = o.shape.WithAttributes(key, desc.Attrs, width)
		slot, _ = o.shape.Lookup(key)
		o.growSlots()
		o.setSlotValue(slot, desc)
		return true
	}

	if !o.Extensible {
		return false
	}
	o.shape = o.shape.AddProperty(key, desc.Attrs, width)
	slot, _ := o.shape.Lookup(key)
	o.growSlots()
	o.setSlotValue(slot, desc)
	return true
}

func (o *Object) growSlots() {
	for len(o.slots) < o.shape.Len() {
		o.slots = append(o.slots, U)
	}
}

func (o *Object) setSlotValue(slot Slot, desc Descriptor) {
	if slot.Width == AccessorWidth {
		if o.accessors == nil {
			o.accessors = make(map[int]accessorPair)
		}
		o.accessors[slot.Index] = accessorPair{Getter: desc.Getter, Setter: desc.Setter}
		return
	}
	o.slots[slot.Index] = desc.Value
}

func ordinaryHasProperty(o *Object, key PropertyKey) bool {
	if _, ok := o.shape.Lookup(key); ok {
		return true
	}
	proto := o.Internal.GetPrototypeOf(o)
	if proto == nil {
		return false
	}
	return proto.Internal.HasProperty(proto, key)
}

func ordinaryGet(o *Object, key PropertyKey, receiver Value) (Value, error) {
	slot, ok := o.shape.Lookup(key)
	if !ok {
		proto := o.Internal.GetPrototypeOf(o)
		if proto == nil {
			return U, nil
		}
		return proto.Internal.Get(proto, key, receiver)
	}
	if slot.Width == AccessorWidth {
		pair := o.accessors[slot.Index]
		if pair.Getter == nil {
			return U, nil
		}
		return pair.Getter.Internal.Call(pair.Getter, receiver, nil)
	}
	return o.slots[slot.Index], nil
}

func ordinarySet(o *Object, key PropertyKey, v Value, receiver Value) (bool, error) {
	slot, ok := o.shape.Lookup(key)
	if !ok {
		proto := o.Internal.GetPrototypeOf(o)
		if proto != nil {
			if ownSlot, protoHas := proto.shape.Lookup(key); protoHas && ownSlot.Width == AccessorWidth {
				return proto.Internal.Set(proto, key, v, receiver)
			}
		}
		if recv, ok := receiver.(*Object); ok {
			return recv.Internal.DefineOwnProperty(recv, key, NewDataDescriptor(v, Default())), nil
		}
		return false, nil
	}
	if slot.Width == AccessorWidth {
		pair := o.accessors[slot.Index]
		if pair.Setter == nil {
			return false, nil
		}
		_, err := pair.Setter.Internal.Call(pair.Setter, receiver, []Value{v})
		return err == nil, err
	}
	if !slot.Attrs.Has(Writable) {
		return false, nil
	}
	o.slots[slot.Index] = v
	return true, nil
}

func ordinaryDelete(o *Object, key PropertyKey) bool {
	slot, ok := o.shape.Lookup(key)
	if !ok {
		return true
	}
	if !slot.Attrs.Has(Configurable) {
		return false
	}
	o.shape = o.shape.WithoutProperty(key)
	idx := slot.Index
	o.slots = append(o.slots[:idx], o.slots[idx+1:]...)
	if o.accessors != nil {
		delete(o.accessors, idx)
	}
	return true
}

// GetOwn is a convenience wrapper over the Internal.GetOwnProperty method.
func (o *Object) GetOwn(key PropertyKey) (Descriptor, bool) { return o.Internal.GetOwnProperty(o, key) }

// Get is a convenience wrapper over Internal.Get with o itself as receiver.
func (o *Object) Get(key PropertyKey) (Value, error) { return o.Internal.Get(o, key, o) }

// SetProp is a convenience wrapper over Internal.Set with o itself as receiver.
func (o *Object) SetProp(key PropertyKey, v Value) (bool, error) { return o.Internal.Set(o, key, v, o) }

// HasProp is a convenience wrapper over Internal.HasProperty.
func (o *Object) HasProp(key PropertyKey) bool { return o.Internal.HasProperty(o, key) }

// DeleteProp is a convenience wrapper over Internal.Delete.
func (o *Object) DeleteProp(key PropertyKey) bool { return o.Internal.Delete(o, key) }

// OwnKeys is a convenience wrapper over Internal.OwnPropertyKeys.
func (o *Object) OwnKeys() []PropertyKey { return o.Internal.OwnPropertyKeys(o) }

// Proto returns the object's prototype via its internal method.
func (o *Object) Proto() *Object { return o.Internal.GetPrototypeOf(o) }
