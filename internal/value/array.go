package value

import (
	"strconv"
)

const lengthProp = "length"

// NewArray builds an array-exotic object with the given initial elements
// and a `length` data property set to len(elems): writable, non-enumerable,
// non-configurable, per the array-exotic object's fixed length descriptor.
func NewArray(proto *Object, elems []Value) *Object {
	o := &Object{
		kind:       KindArray,
		shape:      RootShape(proto),
		Elements:   append([]Value{}, elems...),
		Extensible: true,
	}
	o.Internal = ordinaryInternal(o)
	o.shape = o.shape.AddProperty(StringKey(lengthProp), Writable, DataWidth)
	o.slots = []Value{NumberFromFloat(float64(len(elems)))}
	o.Internal.DefineOwnProperty = arrayDefineOwnProperty
	o.Internal.GetOwnProperty = arrayGetOwnProperty
	o.Internal.Get = arrayGet
	o.Internal.Set = arraySet
	o.Internal.Delete = arrayDelete
	o.Internal.OwnPropertyKeys = arrayOwnPropertyKeys
	return o
}

// arrayIndex reports whether key is a canonical non-negative-integer array
// index (e.g. "0", "17", but not "01" or "-1" or "4294967295" which exceeds
// the u32 index range minus one reserved for length overflow).
func arrayIndex(key PropertyKey) (uint32, bool) {
	if key.IsSymbol() {
		return 0, false
	}
	s := key.Str.DisplayString()
	if s == "" {
		return 0, false
	}
	if s == "0" {
		return 0, true
	}
	if s[0] < '1' || s[0] > '9' {
		return 0, false
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil || n >= 0xFFFFFFFF {
		return 0, false
	}
	if strconv.FormatUint(n, 10) != s {
		return 0, false
	}
	return uint32(n), true
}

func (o *Object) arrayLength() uint32 {
	return uint32(ToFloat64(o.slots[0]))
}

func (o *Object) setArrayLength(n uint32) {
	o.slots[0] = NumberFromFloat(float64(n))
}

func arrayGetOwnProperty(o *Object, key PropertyKey) (Descriptor, bool) {
	if idx, ok := arrayIndex(key); ok {
		if uint64(idx) < uint64(len(o.Elements)) {
			if o.Elements[idx] == nil {
				return Descriptor{}, false
			}
			return NewDataDescriptor(o.Elements[idx], Default()), true
		}
		return Descriptor{}, false
	}
	return ordinaryGetOwnProperty(o, key)
}

func arrayGet(o *Object, key PropertyKey, receiver Value) (Value, error) {
	if idx, ok := arrayIndex(key); ok {
		if uint64(idx) < uint64(len(o.Elements)) && o.Elements[idx] != nil {
			return o.Elements[idx], nil
		}
		proto := o.Internal.GetPrototypeOf(o)
		if proto == nil {
			return U, nil
		}
		return proto.Internal.Get(proto, key, receiver)
	}
	return ordinaryGet(o, key, receiver)
}

func arraySet(o *Object, key PropertyKey, v Value, receiver Value) (bool, error) {
	if idx, ok := arrayIndex(key); ok {
		if recv, ok := receiver.(*Object); ok && recv == o {
			o.growElements(int(idx) + 1)
			o.Elements[idx] = v
			if idx >= o.arrayLength() {
				o.setArrayLength(idx + 1)
			}
			return true, nil
		}
		return false, nil
	}
	if key.Equal(StringKey(lengthProp)) {
		n, ok := asUint32(v)
		if !ok {
			return false, rangeErrorValue("invalid array length")
		}
		return true, arrayShrinkGrow(o, n)
	}
	return ordinarySet(o, key, v, receiver)
}

func (o *Object) growElements(n int) {
	for len(o.Elements) < n {
		o.Elements = append(o.Elements, nil)
	}
}

// asUint32 implements the ToUint32 check the array-length setter requires:
// a value whose ToNumber differs from its ToUint32 reading is rejected
// (§4.F "assigning a value whose numeric ToNumber differs from
// ToUint32(value) is a RangeError").
func asUint32(v Value) (uint32, bool) {
	f := ToFloat64(v)
	u := uint32(int64(f))
	if float64(u) != f {
		return 0, false
	}
	return u, true
}

// arrayShrinkGrow implements the array-exotic length-set algorithm (§4.F
// "Array-exotic length"): growing just widens length; shrinking walks
// existing integer-indexed properties in descending order deleting each,
// stopping (and leaving length one past the refusing index) at the first
// non-configurable index that refuses deletion. Every index this engine's
// dense Elements vector holds is configurable (array elements carry the
// default attribute triple), so in practice this always reaches the
// requested length — the refusal path exists for objects that had
// Object.defineProperty used to freeze a specific index.
func arrayShrinkGrow(o *Object, newLen uint32) error {
	oldLen := o.arrayLength()
	if newLen >= oldLen {
		o.growElements(int(newLen))
		o.setArrayLength(newLen)
		return nil
	}
	i := oldLen
	for i > newLen {
		i--
		if uint64(i) < uint64(len(o.Elements)) {
			if !o.deletableIndex(i) {
				o.setArrayLength(i + 1)
				return nil
			}
			o.Elements[i] = nil
		}
	}
	o.Elements = o.Elements[:minInt(len(o.Elements), int(newLen))]
	o.setArrayLength(newLen)
	return nil
}

// deletableIndex reports whether index i has been frozen non-configurable
// via an explicit shape-table entry (Object.defineProperty on an array
// index falls back to the ordinary shape path for attribute tracking).
func (o *Object) deletableIndex(i uint32) bool {
	slot, ok := o.shape.Lookup(StringKey(strconv.FormatUint(uint64(i), 10)))
	if !ok {
		return true
	}
	return slot.Attrs.Has(Configurable)
}

func arrayDelete(o *Object, key PropertyKey) bool {
	if idx, ok := arrayIndex(key); ok {
		if !o.deletableIndex(idx) {
			return false
		}
		if uint64(idx) < uint64(len(o.Elements)) {
			o.Elements[idx] = nil
		}
		return true
	}
	return ordinaryDelete(o, key)
}

func arrayDefineOwnProperty(o *Object, key PropertyKey, desc Descriptor) bool {
	if idx, ok := arrayIndex(key); ok && desc.IsData() {
		o.growElements(int(idx) + 1)
		o.Elements[idx] = desc.Value
		if idx >= o.arrayLength() {
			o.setArrayLength(idx + 1)
		}
		if !desc.Attrs.Has(Configurable) || !desc.Attrs.Has(Writable) {
			o.shape = o.shape.AddProperty(key, desc.Attrs, DataWidth)
		}
		return true
	}
	if key.Equal(StringKey(lengthProp)) {
		n, ok := asUint32(desc.Value)
		if !ok {
			return false
		}
		return arrayShrinkGrow(o, n) == nil
	}
	return ordinaryDefineOwnProperty(o, key, desc)
}

func arrayOwnPropertyKeys(o *Object) []PropertyKey {
	keys := make([]PropertyKey, 0, len(o.Elements)+o.shape.Len())
	for i, v := range o.Elements {
		if v != nil {
			keys = append(keys, StringKey(strconv.Itoa(i)))
		}
	}
	return append(keys, o.shape.Keys()...)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// rangeErrorValue is a placeholder until internal/vm wires real error
// object construction through the realm's RangeError constructor; it lets
// this package signal the condition without importing the VM.
func rangeErrorValue(msg string) error { return &EngineError{Kind: "RangeError", Msg: msg} }

// EngineError is a minimal Go error carrying the ECMAScript error kind, so
// callers above this package (the VM) can map it to a real thrown Error
// object without this package needing to know about exceptions/realms.
type EngineError struct {
	Kind string
	Msg  string
}

func (e *EngineError) Error() string { return e.Kind + ": " + e.Msg }
