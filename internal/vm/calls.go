package vm

import (
	"github.com/cwbudde/ecma/internal/bytecode"
	"github.com/cwbudde/ecma/internal/value"
)

// opClosure instantiates a closure object from the FunctionTemplate named
// by inst's constant operand, capturing inst.A() upvalues from the current
// frame's own locals/upvalues per each UpvalueSource entry.
func (vm *VM) opClosure(f *frame, inst bytecode.Instruction) error {
	c := f.chunk.GetConstant(int(inst.B()))
	tmpl := c.Function
	fn := vm.instantiateClosure(tmpl, f, nil, nil)
	vm.push(fn)
	return nil
}

// instantiateClosure builds a live function object from tmpl, capturing
// upvalues from the enclosing frame (for OpClosure) or leaving them for the
// caller to fill in directly (class methods, which close over the same
// enclosing frame as their class declaration). homeObject is attached for
// `super` lookups inside class/object methods; parentClass is set only for
// a class constructor with an `extends` clause, marking it for
// constructClosure's derived-construction path.
func (vm *VM) instantiateClosure(tmpl *bytecode.FunctionTemplate, enclosing *frame, homeObject, parentClass *value.Object) *value.Object {
	upvalues := make([]*value.Value, len(tmpl.Upvalues))
	for i, src := range tmpl.Upvalues {
		if src.FromParentLocal {
			upvalues[i] = enclosing.locals[src.Index]
		} else {
			upvalues[i] = enclosing.upvalues[src.Index]
		}
	}
	data := &value.FunctionData{
		Name:        tmpl.Name,
		Length:      tmpl.ParamCount,
		Template:    tmpl,
		Upvalues:    upvalues,
		IsArrow:     tmpl.IsArrow,
		IsGenerator: tmpl.IsGenerator,
		IsAsync:     tmpl.IsAsync,
		HomeObject:  homeObject,
		ParentClass: parentClass,
	}
	proto := vm.Realm.FunctionProto
	var construct func(*value.Object, []value.Value, *value.Object) (value.Value, error)
	if !tmpl.IsArrow && !tmpl.IsGenerator && !tmpl.IsAsync {
		construct = func(fnObj *value.Object, args []value.Value, newTarget *value.Object) (value.Value, error) {
			return vm.constructClosure(fnObj, tmpl, data, args, newTarget)
		}
	}
	fn := value.NewFunction(proto, data,
		func(fnObj *value.Object, this value.Value, args []value.Value) (value.Value, error) {
			return vm.invokeClosure(fnObj, this, args, nil)
		},
		construct)
	if !tmpl.IsArrow && !tmpl.IsGenerator && !tmpl.IsAsync {
		protoObj := value.NewObject(vm.Realm.ObjectProto)
		protoObj.Internal.DefineOwnProperty(protoObj, value.StringKey("constructor"), value.NewDataDescriptor(fn, value.Sealed()))
		fn.Internal.DefineOwnProperty(fn, value.StringKey("prototype"), value.NewDataDescriptor(protoObj, value.Attributes(value.Writable)))
	}
	fn.Internal.DefineOwnProperty(fn, value.StringKey("name"), value.NewDataDescriptor(value.NewString(tmpl.Name), value.Sealed().Without(value.Writable)))
	fn.Internal.DefineOwnProperty(fn, value.StringKey("length"), value.NewDataDescriptor(value.Int32(tmpl.ParamCount), value.Sealed().Without(value.Writable)))
	return fn
}

// constructClosure implements [[Construct]] for a bytecode-backed
// constructor: an ordinary function or a class constructor (base or
// derived, distinguished by data.ParentClass). A base constructor (or a
// plain function used with `new`) gets its `this` created up front, with
// any instance-field initializers run immediately before the body; a
// derived class constructor's `this` stays uninitialized until its body's
// super() call runs (opSuperCall), with its own fields deferred to right
// after that call returns.
func (vm *VM) constructClosure(fnObj *value.Object, tmpl *bytecode.FunctionTemplate, data *value.FunctionData, args []value.Value, newTarget *value.Object) (value.Value, error) {
	proto := vm.Realm.ObjectProto
	if protoVal, err := newTarget.Get(value.StringKey("prototype")); err == nil {
		if p, ok := protoVal.(*value.Object); ok {
			proto = p
		}
	}
	info := vm.classInfos[fnObj]
	derived := data.ParentClass != nil

	var this value.Value = value.U
	if !derived {
		this = value.NewObject(proto)
	}

	nf := newFrame(tmpl.Chunk, fnObj, this, newTarget, data.HomeObject, data.ParentClass)
	nf.upvalues = data.Upvalues
	nf.thisInitialized = !derived

	if info != nil {
		if derived {
			nf.pendingFieldInit = info.Fields
		} else {
			for _, field := range info.Fields {
				if err := vm.runFieldInit(nf, field); err != nil {
					return nil, err
				}
			}
		}
	}

	vm.bindArgs(nf, tmpl, args)
	baseDepth := len(vm.frames)
	vm.frames = append(vm.frames, nf)
	result, err := vm.runLoop(baseDepth)
	if err != nil {
		return nil, err
	}
	if resObj, ok := result.(*value.Object); ok {
		return resObj, nil
	}
	if !nf.thisInitialized {
		return nil, &value.EngineError{Kind: "ReferenceError", Msg: "Must call super constructor in derived class before returning from derived constructor"}
	}
	return nf.this, nil
}

// bindArgs fills locals 0..tmpl.TotalParams-1 of a freshly pushed frame
// from args, per the compiler's parameter contract (functions.go,
// compileParam): ordinary slots get the matching argument or undefined,
// the trailing rest slot (when HasRest) gets every remaining argument
// collected into a fresh array. Defaults are compiled into the callee's
// own bytecode (an OpGetLocal/OpStrictEq/OpJumpIfFalse/.../OpSetLocal
// sequence at the top of the body), so this never evaluates one itself.
func (vm *VM) bindArgs(f *frame, tmpl *bytecode.FunctionTemplate, args []value.Value) {
	n := tmpl.TotalParams
	if tmpl.HasRest {
		n--
	}
	for i := 0; i < n; i++ {
		if i < len(args) {
			f.setLocal(uint16(i), args[i])
		}
	}
	if tmpl.HasRest {
		var rest []value.Value
		if len(args) > n {
			rest = append([]value.Value{}, args[n:]...)
		}
		f.setLocal(uint16(n), value.NewArray(vm.Realm.ArrayProto, rest))
	}
}

// invokeClosure runs a bytecode-backed closure to completion as a nested
// runLoop, recursing through Go only for this one call (the inline OpCall
// fast path below avoids this recursion for the common case of a plain,
// non-generator, non-async call appearing directly in a running frame).
func (vm *VM) invokeClosure(fnObj *value.Object, this value.Value, args []value.Value, newTgt *value.Object) (value.Value, error) {
	data := value.FuncData(fnObj)
	if data.Native != nil {
		return data.Native(this, args)
	}
	tmpl, ok := data.Template.(*bytecode.FunctionTemplate)
	if !ok {
		return value.U, &value.EngineError{Kind: "TypeError", Msg: fnObj.DisplayString() + " is not callable"}
	}
	if tmpl.IsGenerator {
		return vm.newGenerator(fnObj, tmpl, this, args), nil
	}
	callThis := this
	if !tmpl.IsArrow && isNullish(this) {
		callThis = vm.Realm.GlobalObject
	}
	if tmpl.IsAsync {
		return vm.runAsync(fnObj, tmpl, data, callThis, args), nil
	}
	nf := newFrame(tmpl.Chunk, fnObj, callThis, newTgt, data.HomeObject, data.ParentClass)
	nf.upvalues = data.Upvalues
	nf.thisInitialized = tmpl.IsArrow || data.ParentClass == nil
	vm.bindArgs(nf, tmpl, args)
	baseDepth := len(vm.frames)
	vm.frames = append(vm.frames, nf)
	return vm.runLoop(baseDepth)
}

// opCall implements OpCall/OpCallSpread. Stack: [this, callee, arg0..N-1]
// (argc supplied by the caller for OpCall) or [this, callee, argsArray]
// for the spread form.
func (vm *VM) opCall(f *frame, argc int, spread bool) error {
	var args []value.Value
	if spread {
		argsArr := vm.pop()
		args = arrayLikeToSlice(argsArr)
	} else {
		args = vm.popN(argc)
	}
	calleeV := vm.pop()
	thisV := vm.pop()
	callee, ok := calleeV.(*value.Object)
	if !ok || !callee.IsCallable() {
		return &value.EngineError{Kind: "TypeError", Msg: value.Fmt(calleeV) + " is not a function"}
	}

	data, isClosure := callee.Private.(*value.FunctionData)
	if isClosure && data.Native == nil && !data.IsGenerator && !data.IsAsync {
		tmpl, ok := data.Template.(*bytecode.FunctionTemplate)
		if ok {
			callThis := thisV
			if !tmpl.IsArrow && isNullish(thisV) {
				callThis = vm.Realm.GlobalObject
			}
			nf := newFrame(tmpl.Chunk, callee, callThis, nil, data.HomeObject, data.ParentClass)
			nf.upvalues = data.Upvalues
			nf.thisInitialized = true
			vm.bindArgs(nf, tmpl, args)
			vm.frames = append(vm.frames, nf)
			return nil
		}
	}
	result, err := callee.Internal.Call(callee, thisV, args)
	if err != nil {
		return err
	}
	vm.push(result)
	return nil
}

// opConstruct implements OpConstruct/OpConstructSpread. Stack:
// [callee, arg0..N-1] or [callee, argsArray] — no `this` slot; the callee's
// own [[Construct]] is responsible for producing one.
func (vm *VM) opConstruct(argc int, spread bool) error {
	var args []value.Value
	if spread {
		argsArr := vm.pop()
		args = arrayLikeToSlice(argsArr)
	} else {
		args = vm.popN(argc)
	}
	calleeV := vm.pop()
	callee, ok := calleeV.(*value.Object)
	if !ok || !callee.IsConstructor() {
		return &value.EngineError{Kind: "TypeError", Msg: value.Fmt(calleeV) + " is not a constructor"}
	}
	result, err := callee.Internal.Construct(callee, args, callee)
	if err != nil {
		return err
	}
	vm.push(result)
	return nil
}

// opSuperCall implements OpSuperCall/OpSuperCallSpread: invokes the
// superclass constructor with the current frame's own newTgt, binds the
// result as `this`, then runs any pending subclass instance-field
// initializers before control resumes. Stack holds only the arguments —
// the callee is resolved via f.parentCtor.
func (vm *VM) opSuperCall(f *frame, argc int, spread bool) error {
	var args []value.Value
	if spread {
		argsArr := vm.pop()
		args = arrayLikeToSlice(argsArr)
	} else {
		args = vm.popN(argc)
	}
	if f.parentCtor == nil {
		return &value.EngineError{Kind: "SyntaxError", Msg: "'super' keyword is only valid inside a class"}
	}
	newTgt := f.newTgt
	if newTgt == nil {
		newTgt = f.parentCtor
	}
	thisVal, err := f.parentCtor.Internal.Construct(f.parentCtor, args, newTgt)
	if err != nil {
		return err
	}
	f.this = thisVal
	f.thisInitialized = true
	for _, field := range f.pendingFieldInit {
		if err := vm.runFieldInit(f, field); err != nil {
			return err
		}
	}
	f.pendingFieldInit = nil
	vm.push(thisVal)
	return nil
}

func (vm *VM) runFieldInit(f *frame, field bytecode.MethodTemplate) error {
	this, ok := f.this.(*value.Object)
	if !ok {
		return nil
	}
	key := field.Key
	if field.KeyTemplate != nil {
		kv, err := vm.callThunk(field.KeyTemplate, f)
		if err != nil {
			return err
		}
		pk, err := vm.toPropertyKey(kv)
		if err != nil {
			return err
		}
		return vm.defineFieldValue(this, pk, field, f)
	}
	return vm.defineFieldValue(this, value.StringKey(key), field, f)
}

func (vm *VM) defineFieldValue(this *value.Object, key value.PropertyKey, field bytecode.MethodTemplate, f *frame) error {
	var v value.Value = value.U
	if field.Function != nil {
		fn := vm.instantiateClosure(field.Function, f, nil, nil)
		res, err := fn.Internal.Call(fn, this, nil)
		if err != nil {
			return err
		}
		v = res
	}
	this.Internal.DefineOwnProperty(this, key, value.NewDataDescriptor(v, value.Default()))
	return nil
}

// callThunk invokes a zero-argument template (a computed class-member key
// expression) synchronously against the enclosing frame's closure context.
func (vm *VM) callThunk(tmpl *bytecode.FunctionTemplate, enclosing *frame) (value.Value, error) {
	fn := vm.instantiateClosure(tmpl, enclosing, nil, nil)
	return fn.Internal.Call(fn, value.U, nil)
}
