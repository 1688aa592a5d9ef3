package vm

import (
	"github.com/cwbudde/ecma/internal/bytecode"
	"github.com/cwbudde/ecma/internal/value"
)

// accessorKind distinguishes OpDefineMethod/Getter/Setter's shared handling.
type accessorKind byte

const (
	accessorMethod accessorKind = iota
	accessorGetter
	accessorSetter
)

// opArraySpreadAppend pops an iterable off the top and appends its elements
// onto the array now exposed beneath it; the array stays on the stack,
// mutated in place (compileArrayLiteral/appendSingle's shared idiom).
func (vm *VM) opArraySpreadAppend() error {
	src := vm.pop()
	arr, ok := vm.peek(0).(*value.Object)
	if !ok || arr.Class() != value.KindArray {
		return &value.EngineError{Kind: "TypeError", Msg: "internal: array spread target is not an array"}
	}
	elems, err := vm.iterateAll(src)
	if err != nil {
		return err
	}
	arr.Elements = append(arr.Elements, elems...)
	_, err = arr.SetProp(value.StringKey("length"), value.NumberFromFloat(float64(len(arr.Elements))))
	return err
}

// opObjectSpreadAppend pops a source value and copies its own enumerable
// properties onto the object beneath it, which stays on the stack.
func (vm *VM) opObjectSpreadAppend() error {
	src := vm.pop()
	dst, ok := vm.peek(0).(*value.Object)
	if !ok {
		return &value.EngineError{Kind: "TypeError", Msg: "internal: object spread target is not an object"}
	}
	srcObj, ok := src.(*value.Object)
	if !ok || isNullish(src) {
		return nil // spreading a primitive/nullish value contributes no properties
	}
	for _, k := range srcObj.OwnKeys() {
		desc, ok := srcObj.GetOwn(k)
		if !ok || !desc.Attrs.Has(value.Enumerable) {
			continue
		}
		v, err := srcObj.Get(k)
		if err != nil {
			return err
		}
		dst.Internal.DefineOwnProperty(dst, k, value.NewDataDescriptor(v, value.Default()))
	}
	return nil
}

// opDefineProp implements OpDefineProp/OpDefinePropComputed: stack
// [obj, (key,) value] -> [obj]; the object stays for chaining.
func (vm *VM) opDefineProp(f *frame, inst bytecode.Instruction, computed bool) error {
	v := vm.pop()
	key, err := vm.resolveDefineKey(f, inst, computed)
	if err != nil {
		return err
	}
	obj, ok := vm.peek(0).(*value.Object)
	if !ok {
		return &value.EngineError{Kind: "TypeError", Msg: "internal: property target is not an object"}
	}
	obj.Internal.DefineOwnProperty(obj, key, value.NewDataDescriptor(v, value.Default()))
	return nil
}

// opDefineAccessor implements OpDefineMethod(Computed)/OpDefineGetter(Computed)/
// OpDefineSetter(Computed): stack [obj, (key,) closure] -> [obj], attaching
// the home object for `super` lookups inside the method/accessor body.
func (vm *VM) opDefineAccessor(f *frame, inst bytecode.Instruction, computed bool, kind accessorKind) error {
	fnV := vm.pop()
	key, err := vm.resolveDefineKey(f, inst, computed)
	if err != nil {
		return err
	}
	obj, ok := vm.peek(0).(*value.Object)
	if !ok {
		return &value.EngineError{Kind: "TypeError", Msg: "internal: method target is not an object"}
	}
	fn, ok := fnV.(*value.Object)
	if ok && fn.Class() == value.KindFunction {
		value.FuncData(fn).HomeObject = obj
	}
	switch kind {
	case accessorMethod:
		obj.Internal.DefineOwnProperty(obj, key, value.NewDataDescriptor(fnV, value.Default()))
	case accessorGetter:
		existing, _ := obj.GetOwn(key)
		setter := existing.Setter
		obj.Internal.DefineOwnProperty(obj, key, value.NewAccessorDescriptor(fn, setter, value.Default()))
	case accessorSetter:
		existing, _ := obj.GetOwn(key)
		getter := existing.Getter
		obj.Internal.DefineOwnProperty(obj, key, value.NewAccessorDescriptor(getter, fn, value.Default()))
	}
	return nil
}

// resolveDefineKey reads a literal key out of the instruction's constant
// operand for the non-computed opcodes, or pops a just-evaluated key value
// (coerced to a property key) for the computed ones.
func (vm *VM) resolveDefineKey(f *frame, inst bytecode.Instruction, computed bool) (value.PropertyKey, error) {
	if computed {
		return vm.toPropertyKey(vm.pop())
	}
	c := f.chunk.GetConstant(int(inst.B()))
	return value.StringKey(c.Str), nil
}

// opGetProp implements OpGetProp/OpGetPropComputed: pops the object (and
// key, if computed), pushes the looked-up value.
func (vm *VM) opGetProp(f *frame, inst bytecode.Instruction, computed bool) error {
	var key value.PropertyKey
	var err error
	if computed {
		keyV := vm.pop()
		key, err = vm.toPropertyKey(keyV)
		if err != nil {
			return err
		}
	} else {
		c := f.chunk.GetConstant(int(inst.B()))
		key = value.StringKey(c.Str)
	}
	objV := vm.pop()
	v, err := vm.getProperty(objV, key)
	if err != nil {
		return err
	}
	vm.push(v)
	return nil
}

// getProperty implements the member-access abstract operation across every
// primitive wrapper kind, boxing just long enough to read the prototype's
// method (e.g. "abc".length, (5).toFixed).
func (vm *VM) getProperty(v value.Value, key value.PropertyKey) (value.Value, error) {
	switch o := v.(type) {
	case *value.Object:
		return o.Get(key)
	case *value.Str:
		if !key.IsSymbol() && key.Str != nil && key.Str.DisplayString() == "length" {
			return value.NumberFromFloat(float64(o.Len())), nil
		}
		if idx, ok := stringIndexKey(key); ok {
			if idx < 0 || idx >= o.Len() {
				return value.U, nil
			}
			return value.NewStringFromUnits(o.Units[idx : idx+1]), nil
		}
		return vm.Realm.StringProto.Get(key)
	case value.Int32, value.Float64:
		return vm.Realm.NumberProto.Get(key)
	case value.Boolean:
		return vm.Realm.BooleanProto.Get(key)
	case *value.BigInt:
		return vm.Realm.BigIntProto.Get(key)
	case *value.Sym:
		return vm.Realm.SymbolProto.Get(key)
	case value.Undefined, value.Null:
		return nil, &value.EngineError{Kind: "TypeError", Msg: "Cannot read properties of " + v.DisplayString() + " (reading '" + key.String() + "')"}
	}
	return value.U, nil
}

func stringIndexKey(key value.PropertyKey) (int, bool) {
	if key.IsSymbol() || key.Str == nil {
		return 0, false
	}
	n := 0
	s := key.Str.DisplayString()
	if s == "" {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

// opSetProp implements OpSetProp/OpSetPropComputed: stack [obj, (key,) value]
// -> [value] (the assigned value is the expression's own result).
func (vm *VM) opSetProp(f *frame, inst bytecode.Instruction, computed bool) error {
	v := vm.pop()
	var key value.PropertyKey
	var err error
	if computed {
		key, err = vm.toPropertyKey(vm.pop())
		if err != nil {
			return err
		}
	} else {
		c := f.chunk.GetConstant(int(inst.B()))
		key = value.StringKey(c.Str)
	}
	objV := vm.pop()
	obj, ok := objV.(*value.Object)
	if !ok {
		if isNullish(objV) {
			return &value.EngineError{Kind: "TypeError", Msg: "Cannot set properties of " + objV.DisplayString()}
		}
		vm.push(v)
		return nil // primitive receivers silently discard the assignment (sloppy mode)
	}
	if _, err := obj.SetProp(key, v); err != nil {
		return err
	}
	vm.push(v)
	return nil
}

// opDeleteProp implements OpDeleteProp/OpDeletePropComputed.
func (vm *VM) opDeleteProp(f *frame, inst bytecode.Instruction, computed bool) error {
	var key value.PropertyKey
	var err error
	if computed {
		key, err = vm.toPropertyKey(vm.pop())
		if err != nil {
			return err
		}
	} else {
		c := f.chunk.GetConstant(int(inst.B()))
		key = value.StringKey(c.Str)
	}
	objV := vm.pop()
	obj, ok := objV.(*value.Object)
	if !ok {
		vm.push(value.Boolean(true))
		return nil
	}
	vm.push(value.Boolean(obj.DeleteProp(key)))
	return nil
}

// opGetSuperProp implements OpGetSuperProp/OpGetSuperPropComputed: stack
// [this, (key)] -> [value] (also popping this, despite the opcode's name
// suggesting otherwise — both this and key must be consumed for the stack
// to balance, matching compileMember's non-forCall contract of leaving
// exactly one value behind).
func (vm *VM) opGetSuperProp(f *frame, inst bytecode.Instruction, computed bool) error {
	var key value.PropertyKey
	var err error
	if computed {
		key, err = vm.toPropertyKey(vm.pop())
		if err != nil {
			return err
		}
	} else {
		c := f.chunk.GetConstant(int(inst.B()))
		key = value.StringKey(c.Str)
	}
	this := vm.pop()
	if f.homeObject == nil {
		return &value.EngineError{Kind: "SyntaxError", Msg: "'super' keyword is only valid inside a method"}
	}
	proto := f.homeObject.Proto()
	if proto == nil {
		vm.push(value.U)
		return nil
	}
	v, err := proto.Internal.Get(proto, key, this)
	if err != nil {
		return err
	}
	vm.push(v)
	return nil
}

// opSetSuperProp implements OpSetSuperProp/OpSetSuperPropComputed: stack
// [this, (key,) value] -> [value].
func (vm *VM) opSetSuperProp(f *frame, inst bytecode.Instruction, computed bool) error {
	v := vm.pop()
	var key value.PropertyKey
	var err error
	if computed {
		key, err = vm.toPropertyKey(vm.pop())
		if err != nil {
			return err
		}
	} else {
		c := f.chunk.GetConstant(int(inst.B()))
		key = value.StringKey(c.Str)
	}
	this := vm.pop()
	if f.homeObject == nil {
		return &value.EngineError{Kind: "SyntaxError", Msg: "'super' keyword is only valid inside a method"}
	}
	proto := f.homeObject.Proto()
	if proto != nil {
		if _, err := proto.Internal.Set(proto, key, v, this); err != nil {
			return err
		}
	}
	vm.push(v)
	return nil
}
