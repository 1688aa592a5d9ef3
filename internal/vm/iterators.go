package vm

import "github.com/cwbudde/ecma/internal/value"

// iterators.go implements the Iterable/Iterator protocol opcodes plus the
// eager iterateAll helper spread positions (array literals, call/construct
// spread arguments collapsed by the compiler into a single runtime array)
// use instead of the step-by-step for-of opcodes.

// getIteratorMethod resolves v's @@iterator (or @@asyncIterator) method and
// calls it, matching GetIterator/the specification's well-known-symbol
// lookup. Plain arrays and strings get a fast built-in iterator rather than
// dispatching through a user-overridable method, since this engine's
// default Array.prototype/String.prototype expose @@iterator as a real
// property anyway (component J); the fast path here only matters before
// that library is consulted, so it degrades to the generic path whenever
// the fast shape doesn't match.
func (vm *VM) getIterator(v value.Value, async bool) (*value.Object, error) {
	o, ok := v.(*value.Object)
	if ok && !async && o.Class() == value.KindArray {
		return vm.newArrayIterator(o), nil
	}
	if s, ok := v.(*value.Str); ok && !async {
		return vm.newStringIterator(s), nil
	}
	obj, ok := v.(*value.Object)
	if !ok {
		return nil, &value.EngineError{Kind: "TypeError", Msg: value.Fmt(v) + " is not iterable"}
	}
	sym := value.SymIterator
	if async {
		sym = value.SymAsyncIterator
	}
	m, err := obj.Get(value.SymbolKey(value.WellKnownSymbol(sym)))
	if err != nil {
		return nil, err
	}
	fn, ok := m.(*value.Object)
	if !ok || !fn.IsCallable() {
		return nil, &value.EngineError{Kind: "TypeError", Msg: value.Fmt(v) + " is not iterable"}
	}
	res, err := fn.Internal.Call(fn, obj, nil)
	if err != nil {
		return nil, err
	}
	it, ok := res.(*value.Object)
	if !ok {
		return nil, &value.EngineError{Kind: "TypeError", Msg: "Result of the Symbol.iterator method is not an object"}
	}
	return it, nil
}

// newArrayIterator builds a simple stateful iterator object over arr's
// elements, used as the fast path in lieu of a real Array.prototype
// entry when no host library has installed one yet.
func (vm *VM) newArrayIterator(arr *value.Object) *value.Object {
	idx := 0
	it := value.NewObject(vm.Realm.IteratorProto)
	defineMethod(it, value.StringKey("next"), "next", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		result := value.NewObject(vm.Realm.ObjectProto)
		if idx >= len(arr.Elements) {
			defineData(result, "value", value.U)
			defineData(result, "done", value.Boolean(true))
			return result, nil
		}
		defineData(result, "value", arr.Elements[idx])
		defineData(result, "done", value.Boolean(false))
		idx++
		return result, nil
	})
	return it
}

func (vm *VM) newStringIterator(s *value.Str) *value.Object {
	idx := 0
	units := s.Units
	it := value.NewObject(vm.Realm.IteratorProto)
	defineMethod(it, value.StringKey("next"), "next", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		result := value.NewObject(vm.Realm.ObjectProto)
		if idx >= len(units) {
			defineData(result, "value", value.U)
			defineData(result, "done", value.Boolean(true))
			return result, nil
		}
		n, size := decodeSurrogatePair(units, idx)
		defineData(result, "value", value.NewStringFromUnits(units[idx:idx+size]))
		defineData(result, "done", value.Boolean(false))
		_ = n
		idx += size
		return result, nil
	})
	return it
}

func decodeSurrogatePair(units []uint16, idx int) (rune, int) {
	u := units[idx]
	if u >= 0xD800 && u <= 0xDBFF && idx+1 < len(units) {
		u2 := units[idx+1]
		if u2 >= 0xDC00 && u2 <= 0xDFFF {
			return 0, 2
		}
	}
	return 0, 1
}

// iterateAll drives v's iterator to completion eagerly, for spread
// positions the compiler has not already collapsed to an opcode sequence.
func (vm *VM) iterateAll(v value.Value) ([]value.Value, error) {
	it, err := vm.getIterator(v, false)
	if err != nil {
		return nil, err
	}
	var out []value.Value
	for {
		val, done, err := vm.iteratorStep(it)
		if err != nil {
			return nil, err
		}
		if done {
			return out, nil
		}
		out = append(out, val)
	}
}

func (vm *VM) iteratorStep(it *value.Object) (val value.Value, done bool, err error) {
	nextV, err := it.Get(value.StringKey("next"))
	if err != nil {
		return nil, false, err
	}
	next, ok := nextV.(*value.Object)
	if !ok || !next.IsCallable() {
		return nil, false, &value.EngineError{Kind: "TypeError", Msg: "iterator.next is not a function"}
	}
	res, err := next.Internal.Call(next, it, nil)
	if err != nil {
		return nil, false, err
	}
	resObj, ok := res.(*value.Object)
	if !ok {
		return nil, false, &value.EngineError{Kind: "TypeError", Msg: "Iterator result is not an object"}
	}
	doneV, _ := resObj.Get(value.StringKey("done"))
	if value.ToBoolean(doneV) {
		return value.U, true, nil
	}
	valV, _ := resObj.Get(value.StringKey("value"))
	return valV, false, nil
}

// opGetForInIterator/opGetIterator/opGetAsyncIterator pop the iterable and
// push a live iterator object.
func (vm *VM) opGetForInIterator() error {
	v := vm.pop()
	if isNullish(v) {
		vm.push(vm.newArrayIterator(value.NewArray(vm.Realm.ArrayProto, nil)))
		return nil
	}
	o, ok := v.(*value.Object)
	if !ok {
		vm.push(vm.newArrayIterator(value.NewArray(vm.Realm.ArrayProto, nil)))
		return nil
	}
	seen := map[string]bool{}
	var keys []value.Value
	for cur := o; cur != nil; cur = cur.Proto() {
		for _, k := range cur.OwnKeys() {
			if k.IsSymbol() || seen[k.String()] {
				continue
			}
			seen[k.String()] = true
			if desc, ok := cur.GetOwn(k); ok && desc.Attrs.Has(value.Enumerable) {
				keys = append(keys, value.NewString(k.String()))
			}
		}
	}
	vm.push(vm.newArrayIterator(value.NewArray(vm.Realm.ArrayProto, keys)))
	return nil
}

func (vm *VM) opGetIterator(async bool) error {
	v := vm.pop()
	it, err := vm.getIterator(v, async)
	if err != nil {
		return err
	}
	vm.push(it)
	return nil
}

// opIteratorNext peeks the iterator (leaves it on the stack) and pushes
// value then done, per the compiler's for-in/for-of loop-test contract.
func (vm *VM) opIteratorNext() error {
	it, ok := vm.peek(0).(*value.Object)
	if !ok {
		return &value.EngineError{Kind: "TypeError", Msg: "not an iterator"}
	}
	val, done, err := vm.iteratorStep(it)
	if err != nil {
		return err
	}
	vm.push(val)
	vm.push(value.Boolean(done))
	return nil
}

// opIteratorClose calls return() on the iterator beneath, ignoring a
// missing/non-callable return method, per IteratorClose's "ignore" mode.
func (vm *VM) opIteratorClose() error {
	v := vm.pop()
	it, ok := v.(*value.Object)
	if !ok {
		return nil
	}
	retV, err := it.Get(value.StringKey("return"))
	if err != nil {
		return nil
	}
	ret, ok := retV.(*value.Object)
	if !ok || !ret.IsCallable() {
		return nil
	}
	_, _ = ret.Internal.Call(ret, it, nil)
	return nil
}
