package value

// NativeImpl is a host-provided or built-in function body, invoked by a
// KindFunction object's Call/Construct internal methods when the object
// has no bytecode template of its own (built-ins, bound-function targets
// supplied directly from Go).
type NativeImpl func(this Value, args []Value) (Value, error)

// FunctionData is the KindFunction object's Private payload: either a
// compiled closure over a bytecode.FunctionTemplate (identified here only
// by an opaque Template handle to keep this package independent of
// internal/bytecode, mirroring the compiler/chunk split) or a native Go
// implementation, never both.
type FunctionData struct {
	Name   string
	Length int // declared parameter count, for `.length`

	// Template is the compiled function template this closure wraps, as an
	// opaque handle; internal/vm knows the concrete type and type-asserts
	// it back to *bytecode.FunctionTemplate when it executes a call.
	Template any
	// Upvalues holds the closed-over variable cells captured at closure
	// creation time, indexed the way the template's Upvalues list expects.
	Upvalues []*Value

	Native NativeImpl

	IsArrow     bool
	IsGenerator bool
	IsAsync     bool
	IsClassCtor bool

	// HomeObject backs `super` property lookups inside methods (§4.F
	// "OpGetSuperProp"): the object literal or class prototype a method
	// was defined on, whose [[Prototype]] super lookups start from.
	HomeObject *Object

	// Fields and constructor-parent wiring for class constructors.
	ParentClass *Object
}

// NewFunction builds a KindFunction object wrapping data, with Call (and,
// for non-arrow/non-generator/non-async functions, Construct) wired to the
// caller-supplied invoke/construct callbacks — internal/vm supplies these
// since only it knows how to push a call frame and run bytecode.
func NewFunction(proto *Object, data *FunctionData, invoke func(fn *Object, this Value, args []Value) (Value, error), construct func(fn *Object, args []Value, newTarget *Object) (Value, error)) *Object {
	o := NewObject(proto)
	o.kind = KindFunction
	o.Private = data
	o.Internal.Call = func(o *Object, this Value, args []Value) (Value, error) { return invoke(o, this, args) }
	if construct != nil {
		o.Internal.Construct = func(o *Object, args []Value, newTarget *Object) (Value, error) {
			return construct(o, args, newTarget)
		}
	}
	return o
}

// BoundData is the Private payload of a KindBoundFunction object (§4.F
// Object kind tags: "bound-function").
type BoundData struct {
	Target    *Object
	BoundThis Value
	BoundArgs []Value
}

// NewBoundFunction builds a bound-function exotic object per
// Function.prototype.bind semantics: calling it calls Target with
// BoundThis and BoundArgs prepended; constructing it (if Target is a
// constructor) constructs Target, ignoring BoundThis.
func NewBoundFunction(proto *Object, target *Object, boundThis Value, boundArgs []Value) *Object {
	data := &BoundData{Target: target, BoundThis: boundThis, BoundArgs: boundArgs}
	o := NewObject(proto)
	o.kind = KindBoundFunction
	o.Private = data
	o.Internal.Call = func(o *Object, this Value, args []Value) (Value, error) {
		full := append(append([]Value{}, boundArgs...), args...)
		return target.Internal.Call(target, boundThis, full)
	}
	if target.IsConstructor() {
		o.Internal.Construct = func(o *Object, args []Value, newTarget *Object) (Value, error) {
			full := append(append([]Value{}, boundArgs...), args...)
			if newTarget == o {
				newTarget = target
			}
			return target.Internal.Construct(target, full, newTarget)
		}
	}
	return o
}

// NewNativeFunction builds a function object whose body is a Go closure,
// the mechanism built-ins (Array.prototype.map, console.log, the
// host-hook-backed globals, ...) use.
func NewNativeFunction(proto *Object, name string, length int, impl NativeImpl) *Object {
	data := &FunctionData{Name: name, Length: length, Native: impl}
	o := NewObject(proto)
	o.kind = KindFunction
	o.Private = data
	o.Internal.Call = func(o *Object, this Value, args []Value) (Value, error) { return impl(this, args) }
	return o
}

// FuncData type-asserts o's Private payload back to *FunctionData; it
// panics if o is not a KindFunction object, which would be an engine bug.
func FuncData(o *Object) *FunctionData { return o.Private.(*FunctionData) }
