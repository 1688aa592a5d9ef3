package vm

import (
	"github.com/cwbudde/ecma/internal/bytecode"
	"github.com/cwbudde/ecma/internal/value"
)

// opDefineClass implements OpDefineClass: the superclass value (or
// undefined) is already on the stack, evaluated by compileClassLike before
// the rest of the class body was even compiled. Every member — methods,
// accessors, static fields, static blocks — is wired here, once, at
// class-definition time, rather than one opcode per member the way a
// function declaration emits one OpClosure.
func (vm *VM) opDefineClass(f *frame, inst bytecode.Instruction) error {
	superV := vm.pop()
	c := f.chunk.GetConstant(int(inst.B()))
	tmpl := c.Class

	var superCtor *value.Object
	protoParent := vm.Realm.ObjectProto
	funcParent := vm.Realm.FunctionProto
	if !isNullish(superV) {
		sc, ok := superV.(*value.Object)
		if !ok || !sc.IsConstructor() {
			return &value.EngineError{Kind: "TypeError", Msg: "Class extends value " + value.Fmt(superV) + " is not a constructor"}
		}
		superCtor = sc
		protoVal, err := sc.Get(value.StringKey("prototype"))
		if err != nil {
			return err
		}
		switch p := protoVal.(type) {
		case *value.Object:
			protoParent = p
		default:
			if isNullish(protoVal) {
				protoParent = nil
			} else {
				return &value.EngineError{Kind: "TypeError", Msg: "Class extends value does not have valid prototype property"}
			}
		}
		funcParent = sc
	}

	protoObj := value.NewObject(protoParent)

	ctor := vm.instantiateClosure(tmpl.Ctor, f, protoObj, superCtor)
	data := value.FuncData(ctor)
	data.IsClassCtor = true
	ctor.Internal.SetPrototypeOf(ctor, funcParent)

	// instantiateClosure already attached a fresh, throwaway .prototype;
	// replace it with protoObj, the object every method/field below
	// actually attaches to, and point it back at ctor.
	ctor.Internal.DefineOwnProperty(ctor, value.StringKey("prototype"), value.NewDataDescriptor(protoObj, value.Sealed()))
	protoObj.Internal.DefineOwnProperty(protoObj, value.StringKey("constructor"), value.NewDataDescriptor(ctor, value.Sealed()))
	if tmpl.Name != "" {
		ctor.Internal.DefineOwnProperty(ctor, value.StringKey("name"), value.NewDataDescriptor(value.NewString(tmpl.Name), value.Sealed().Without(value.Writable)))
	}

	var instanceFields []bytecode.MethodTemplate
	for _, m := range tmpl.Members {
		switch m.Kind {
		case bytecode.MethodTemplateMethod, bytecode.MethodTemplateGetter, bytecode.MethodTemplateSetter:
			target := protoObj
			if m.Static {
				target = ctor
			}
			if err := vm.defineClassMember(f, target, m); err != nil {
				return err
			}
		case bytecode.MethodTemplateField:
			if m.Static {
				if err := vm.runStaticFieldInit(f, ctor, m); err != nil {
					return err
				}
			} else {
				instanceFields = append(instanceFields, m)
			}
		case bytecode.MethodTemplateStaticBlock:
			if err := vm.runStaticBlock(f, ctor, m); err != nil {
				return err
			}
		}
	}
	if len(instanceFields) > 0 {
		vm.classInfos[ctor] = &classInfo{Fields: instanceFields}
	}

	vm.push(ctor)
	return nil
}

// resolveClassKey resolves a class element's key: a static name, or (for a
// genuinely computed key) the one-time evaluation of its KeyTemplate thunk,
// run in the enclosing frame's closure context per the class-evaluation
// order (§3 "computed member names evaluate once, at class-definition
// time, in declaration order").
func (vm *VM) resolveClassKey(f *frame, m bytecode.MethodTemplate) (value.PropertyKey, error) {
	if m.Computed {
		kv, err := vm.callThunk(m.KeyTemplate, f)
		if err != nil {
			return value.PropertyKey{}, err
		}
		return vm.toPropertyKey(kv)
	}
	return value.StringKey(m.Key), nil
}

// defineClassMember instantiates m's closure with target as its home
// object (wiring `super` lookups inside the method body) and attaches it
// to target as a plain method or as one side of a getter/setter pair,
// preserving any sibling accessor already defined under the same key.
func (vm *VM) defineClassMember(f *frame, target *value.Object, m bytecode.MethodTemplate) error {
	key, err := vm.resolveClassKey(f, m)
	if err != nil {
		return err
	}
	fn := vm.instantiateClosure(m.Function, f, target, nil)
	switch m.Kind {
	case bytecode.MethodTemplateGetter:
		existing, _ := target.GetOwn(key)
		target.Internal.DefineOwnProperty(target, key, value.NewAccessorDescriptor(fn, existing.Setter, value.Sealed()))
	case bytecode.MethodTemplateSetter:
		existing, _ := target.GetOwn(key)
		target.Internal.DefineOwnProperty(target, key, value.NewAccessorDescriptor(existing.Getter, fn, value.Sealed()))
	default:
		target.Internal.DefineOwnProperty(target, key, value.NewDataDescriptor(fn, value.Sealed()))
	}
	return nil
}

// runStaticFieldInit evaluates a static field's initializer (if any) with
// `this` bound to the class itself and defines the result directly on
// ctor, once, at class-definition time.
func (vm *VM) runStaticFieldInit(f *frame, ctor *value.Object, m bytecode.MethodTemplate) error {
	key, err := vm.resolveClassKey(f, m)
	if err != nil {
		return err
	}
	var v value.Value = value.U
	if m.Function != nil {
		fn := vm.instantiateClosure(m.Function, f, nil, nil)
		res, err := fn.Internal.Call(fn, ctor, nil)
		if err != nil {
			return err
		}
		v = res
	}
	ctor.Internal.DefineOwnProperty(ctor, key, value.NewDataDescriptor(v, value.Default()))
	return nil
}

// runStaticBlock runs a `static { ... }` block once, at class-definition
// time, with `this` bound to the class itself.
func (vm *VM) runStaticBlock(f *frame, ctor *value.Object, m bytecode.MethodTemplate) error {
	fn := vm.instantiateClosure(m.Function, f, nil, nil)
	_, err := fn.Internal.Call(fn, ctor, nil)
	return err
}
