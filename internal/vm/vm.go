package vm

import (
	"fmt"
	"math"

	"github.com/cwbudde/ecma/internal/bytecode"
	"github.com/cwbudde/ecma/internal/environment"
	"github.com/cwbudde/ecma/internal/value"
)

// VM executes compiled chunks against a Realm. It keeps a single shared
// value stack and call-frame stack across every nested invocation (native
// callbacks calling back into script, `super()`, generator resumption),
// grounded on the teacher's internal/bytecode.VM (stack []Value, frames
// []callFrame, a single dispatch loop). Unlike the teacher, locals live in
// individually heap-allocated cells (see frame.go) so upvalue capture needs
// no open/closed-upvalue bookkeeping, and exception unwinding is resolved
// against a VM-wide handler stack rather than per-frame state, so a handler
// installed by an enclosing Go-level call (a native function that invoked a
// closure which itself threw) is still reachable from deeper in the call
// chain (see raise, below).
type VM struct {
	Realm *Realm

	stack  []value.Value
	frames []*frame

	handlers []tryHandler

	// classInfos carries each class constructor's non-static instance-field
	// templates, keyed by the live constructor object. It lives only here,
	// not on value.FunctionData, so internal/value need not import
	// internal/bytecode for a single struct field's sake.
	classInfos map[*value.Object]*classInfo
}

// classInfo is the side-table entry opDefineClass installs for every class
// it instantiates, and constructClosure consults when constructing an
// instance (§3 "instance fields initialize in declaration order").
type classInfo struct {
	Fields []bytecode.MethodTemplate
}

// tryHandler is one live exception-handler frame, installed by OpPushTry
// and consulted by raise on OpThrow/any internal runtime error.
type tryHandler struct {
	frameDepth int // index into vm.frames this handler belongs to
	stackDepth int // vm.stack length to trim back to on unwind
	info       bytecode.TryInfo
}

// thrownError wraps a live ECMAScript value propagating as a Go error,
// either because no handler claimed it or because it is crossing a Go-level
// call boundary (a native function's call into script) on its way to one
// that will.
type thrownError struct {
	val value.Value
}

func (e *thrownError) Error() string { return "uncaught exception" }

// generatorReturn is a distinct Go error carrying the value a `.return()`
// call on a suspended generator resumes with, a propagating abrupt
// completion runLoop/handleStepError recognizes and unwinds on directly
// rather than routing through raise (it is not a thrown exception: no
// catch clause should ever see it, matching how a plain `return` inside a
// try already bypasses any enclosing catch). See opYield in generators.go.
type generatorReturn struct{ val value.Value }

func (g *generatorReturn) Error() string { return "generator return" }

// NewVM creates a VM bound to realm.
func NewVM(realm *Realm) *VM {
	return &VM{Realm: realm, classInfos: make(map[*value.Object]*classInfo)}
}

func (vm *VM) push(v value.Value) { vm.stack = append(vm.stack, v) }

func (vm *VM) pop() value.Value {
	n := len(vm.stack) - 1
	v := vm.stack[n]
	vm.stack = vm.stack[:n]
	return v
}

func (vm *VM) peek(distFromTop int) value.Value {
	return vm.stack[len(vm.stack)-1-distFromTop]
}

func (vm *VM) popN(n int) []value.Value {
	out := append([]value.Value{}, vm.stack[len(vm.stack)-n:]...)
	vm.stack = vm.stack[:len(vm.stack)-n]
	return out
}

// Run executes chunk as a top-level script: `this` is the realm's global
// object (sloppy-mode top-level this), new.target is nil, and there is no
// home object or superclass. The job queue is drained to fixpoint once the
// script itself finishes, per the specification's run-to-completion model.
func (vm *VM) Run(chunk *bytecode.Chunk) (value.Value, error) {
	f := newFrame(chunk, nil, vm.Realm.GlobalObject, nil, nil, nil)
	f.thisInitialized = true
	vm.frames = append(vm.frames, f)
	result, err := vm.runLoop(0)
	if err != nil {
		if te, ok := err.(*thrownError); ok {
			return value.U, fmt.Errorf("uncaught exception: %s", vm.describeThrown(te.val))
		}
		return value.U, err
	}
	vm.Realm.DrainJobs()
	return result, nil
}

func (vm *VM) describeThrown(v value.Value) string {
	if o, ok := v.(*value.Object); ok && value.IsError(o) {
		s, err := vm.toStr(o)
		if err == nil {
			return s.DisplayString()
		}
	}
	if s, err := vm.toStr(v); err == nil {
		return s.DisplayString()
	}
	return v.DisplayString()
}

// runLoop is the VM's single dispatch loop. It runs until vm.frames shrinks
// to baseDepth, then returns the value left by whichever OpReturn/OpHalt
// ended that frame (every call - invoke, construct, super() - pushes a
// frame and calls runLoop again rather than nesting a second loop shape, so
// there is exactly one dispatch implementation to keep correct).
func (vm *VM) runLoop(baseDepth int) (value.Value, error) {
	for len(vm.frames) > baseDepth {
		f := vm.frames[len(vm.frames)-1]
		if f.ip >= len(f.chunk.Code) {
			// Fell off the end without an explicit OpHalt/OpReturn: implicit
			// undefined return, matching emitImplicitReturn's contract.
			vm.frames = vm.frames[:len(vm.frames)-1]
			if len(vm.frames) == baseDepth {
				return value.U, nil
			}
			vm.push(value.U)
			continue
		}
		inst := f.chunk.Code[f.ip]
		f.ip++

		if err := vm.step(f, inst, baseDepth); err != nil {
			if done, retVal, rerr := vm.handleStepError(f, err, baseDepth); done {
				if rerr != nil {
					return value.U, rerr
				}
				return retVal, nil
			}
			continue
		}
		if f.returned {
			f.returned = false
			retVal := f.returnValue
			vm.frames = vm.frames[:len(vm.frames)-1]
			if len(vm.frames) == baseDepth {
				return retVal, nil
			}
			vm.push(retVal)
		}
	}
	return value.U, nil
}

// handleStepError converts a Go error raised by step into either an in-VM
// exception (resumed by continuing runLoop) or a propagating Go error, per
// raise's handler-stack walk.
func (vm *VM) handleStepError(f *frame, err error, baseDepth int) (done bool, retVal value.Value, rerr error) {
	if gr, ok := err.(*generatorReturn); ok {
		vm.frames = vm.frames[:baseDepth]
		return true, gr.val, nil
	}
	if te, ok := err.(*thrownError); ok {
		if rerr := vm.raise(te.val, baseDepth); rerr != nil {
			return true, value.U, rerr
		}
		return false, value.U, nil
	}
	errVal := vm.errorToValue(err)
	if rerr := vm.raise(errVal, baseDepth); rerr != nil {
		return true, value.U, rerr
	}
	return false, value.U, nil
}

// errorToValue converts an internal Go error (an *value.EngineError raised
// deep inside internal/value or internal/environment, or any other runtime
// error) into a real thrown Error object.
func (vm *VM) errorToValue(err error) value.Value {
	if ee, ok := err.(*value.EngineError); ok {
		kind := value.ErrorKind(ee.Kind)
		if _, known := vm.Realm.ErrorProtos[kind]; !known {
			kind = value.GenericError
		}
		return vm.Realm.NewError(kind, ee.Msg)
	}
	return vm.Realm.NewError(value.GenericError, err.Error())
}

// raise implements the specification's exception-unwind algorithm: walk
// the handler stack innermost-first, honoring Go-level call boundaries. A
// handler whose frameDepth is shallower than baseDepth belongs to an
// enclosing invocation (e.g. a native function's callback into script
// threw); it is left on vm.handlers untouched and the exception continues
// to propagate as a Go error so that enclosing call's own runLoop can
// resume the same search. Returns nil once a handler in this runLoop's own
// range has been installed into (jumped to); returns a *thrownError when
// the search exhausts vm.handlers or must cross a Go boundary.
func (vm *VM) raise(val value.Value, baseDepth int) error {
	for len(vm.handlers) > 0 {
		h := vm.handlers[len(vm.handlers)-1]
		if h.frameDepth < baseDepth {
			vm.frames = vm.frames[:baseDepth]
			return &thrownError{val: val}
		}
		vm.handlers = vm.handlers[:len(vm.handlers)-1]
		vm.frames = vm.frames[:h.frameDepth+1]
		if h.stackDepth <= len(vm.stack) {
			vm.stack = vm.stack[:h.stackDepth]
		}
		target := vm.frames[h.frameDepth]
		if h.info.HasCatch {
			target.ip = h.info.CatchTarget
		} else if h.info.HasFinally {
			target.ip = h.info.FinallyTarget
		} else {
			continue
		}
		vm.push(val)
		return nil
	}
	vm.frames = vm.frames[:baseDepth]
	return &thrownError{val: val}
}

// step executes a single instruction against frame f, returning any error
// (a *thrownError for an explicit `throw`, or a plain Go error/EngineError
// for an internal failure - both handled uniformly by handleStepError).
func (vm *VM) step(f *frame, inst bytecode.Instruction, baseDepth int) error {
	switch inst.OpCode() {

	// ---- Constants and literals ----
	case bytecode.OpLoadConst:
		c := f.chunk.GetConstant(int(inst.B()))
		v, err := vm.loadConstant(f, c)
		if err != nil {
			return err
		}
		vm.push(v)
	case bytecode.OpLoadUndefined:
		vm.push(value.U)
	case bytecode.OpLoadNull:
		vm.push(value.N)
	case bytecode.OpLoadTrue:
		vm.push(value.Boolean(true))
	case bytecode.OpLoadFalse:
		vm.push(value.Boolean(false))
	case bytecode.OpLoadThis:
		if !f.thisInitialized {
			return &value.EngineError{Kind: "ReferenceError", Msg: "Must call super constructor before accessing 'this'"}
		}
		vm.push(f.this)
	case bytecode.OpLoadNewTarget:
		if f.newTgt == nil {
			vm.push(value.U)
		} else {
			vm.push(f.newTgt)
		}

	// ---- Bindings ----
	case bytecode.OpGetLocal:
		v := f.getLocal(inst.B())
		if value.IsTDZ(v) {
			return tdzError()
		}
		vm.push(v)
	case bytecode.OpSetLocal:
		if value.IsTDZ(f.getLocal(inst.B())) {
			return tdzError()
		}
		f.setLocal(inst.B(), vm.peek(0))
	case bytecode.OpInitLocal:
		f.setLocal(inst.B(), vm.pop())
	case bytecode.OpDeclareTDZ:
		f.setLocal(inst.B(), value.TDZ)
	case bytecode.OpGetUpvalue:
		v := *f.upvalues[inst.B()]
		if value.IsTDZ(v) {
			return tdzError()
		}
		vm.push(v)
	case bytecode.OpSetUpvalue:
		if value.IsTDZ(*f.upvalues[inst.B()]) {
			return tdzError()
		}
		*f.upvalues[inst.B()] = vm.peek(0)
	case bytecode.OpGetGlobal:
		c := f.chunk.GetConstant(int(inst.B()))
		sym := vm.Realm.Interner.Intern(c.Str)
		v, err := environment.Chain(vm.Realm.GlobalEnv, sym, c.Str)
		if err != nil {
			if inst.A() != 0 {
				vm.push(value.U)
				break
			}
			return err
		}
		vm.push(v)
	case bytecode.OpSetGlobal:
		c := f.chunk.GetConstant(int(inst.B()))
		sym := vm.Realm.Interner.Intern(c.Str)
		v := vm.peek(0)
		if err := environment.SetChain(vm.Realm.GlobalEnv, sym, c.Str, v); err != nil {
			if inst.A() == 0 {
				return err
			}
			vm.Realm.GlobalEnv.DeclareVarBinding(sym, c.Str)
			_ = environment.SetChain(vm.Realm.GlobalEnv, sym, c.Str, v)
		}
	case bytecode.OpMutateImmutable:
		return &value.EngineError{Kind: "TypeError", Msg: "Assignment to constant variable"}

	// ---- Environments (never emitted by the compiler; stubs only) ----
	case bytecode.OpPushDeclarativeEnv, bytecode.OpPushFunctionEnv, bytecode.OpPopEnv:
		// no-op: the compiler resolves every binding statically.

	// ---- Arithmetic ----
	case bytecode.OpAdd:
		b, a := vm.pop(), vm.pop()
		v, err := vm.add(a, b)
		if err != nil {
			return err
		}
		vm.push(v)
	case bytecode.OpSub:
		b, a := vm.pop(), vm.pop()
		v, err := vm.numericBinOp(a, b, numericSub, func(x, y *value.BigInt) (*value.BigInt, error) {
			return value.BigIntSub(x, y), nil
		})
		if err != nil {
			return err
		}
		vm.push(v)
	case bytecode.OpMul:
		b, a := vm.pop(), vm.pop()
		v, err := vm.numericBinOp(a, b, numericMul, func(x, y *value.BigInt) (*value.BigInt, error) {
			return value.BigIntMul(x, y), nil
		})
		if err != nil {
			return err
		}
		vm.push(v)
	case bytecode.OpDiv:
		b, a := vm.pop(), vm.pop()
		v, err := vm.numericBinOp(a, b, numericDiv, divBigInt)
		if err != nil {
			return err
		}
		vm.push(v)
	case bytecode.OpMod:
		b, a := vm.pop(), vm.pop()
		v, err := vm.numericBinOp(a, b, numericMod, modBigInt)
		if err != nil {
			return err
		}
		vm.push(v)
	case bytecode.OpExp:
		b, a := vm.pop(), vm.pop()
		v, err := vm.numericBinOp(a, b, numericExp, func(x, y *value.BigInt) (*value.BigInt, error) {
			return value.BigIntExp(x, y), nil
		})
		if err != nil {
			return err
		}
		vm.push(v)
	case bytecode.OpNeg:
		n, err := vm.toNumber(vm.pop())
		if err != nil {
			return err
		}
		vm.push(value.NumberFromFloat(-value.ToFloat64(n)))
	case bytecode.OpPos:
		n, err := vm.toNumber(vm.pop())
		if err != nil {
			return err
		}
		vm.push(n)
	case bytecode.OpBitNot:
		i, err := vm.toInt32(vm.pop())
		if err != nil {
			return err
		}
		vm.push(value.NumberFromFloat(float64(^i)))
	case bytecode.OpBitAnd:
		if err := vm.binBitwise(func(a, b int32) int32 { return a & b }); err != nil {
			return err
		}
	case bytecode.OpBitOr:
		if err := vm.binBitwise(func(a, b int32) int32 { return a | b }); err != nil {
			return err
		}
	case bytecode.OpBitXor:
		if err := vm.binBitwise(func(a, b int32) int32 { return a ^ b }); err != nil {
			return err
		}
	case bytecode.OpShl:
		if err := vm.binShift(func(a int32, s uint32) float64 { return float64(a << (s & 31)) }); err != nil {
			return err
		}
	case bytecode.OpShr:
		if err := vm.binShift(func(a int32, s uint32) float64 { return float64(a >> (s & 31)) }); err != nil {
			return err
		}
	case bytecode.OpUShr:
		b, a := vm.pop(), vm.pop()
		ua, err := vm.toUint32(a)
		if err != nil {
			return err
		}
		ub, err := vm.toUint32(b)
		if err != nil {
			return err
		}
		vm.push(value.NumberFromFloat(float64(ua >> (ub & 31))))

	// ---- Comparison and equality ----
	case bytecode.OpEq:
		b, a := vm.pop(), vm.pop()
		r, err := vm.looseEquals(a, b)
		if err != nil {
			return err
		}
		vm.push(value.Boolean(r))
	case bytecode.OpNotEq:
		b, a := vm.pop(), vm.pop()
		r, err := vm.looseEquals(a, b)
		if err != nil {
			return err
		}
		vm.push(value.Boolean(!r))
	case bytecode.OpStrictEq:
		b, a := vm.pop(), vm.pop()
		vm.push(value.Boolean(vm.strictEquals(a, b)))
	case bytecode.OpStrictNotEq:
		b, a := vm.pop(), vm.pop()
		vm.push(value.Boolean(!vm.strictEquals(a, b)))
	case bytecode.OpLess:
		b, a := vm.pop(), vm.pop()
		r, def, err := vm.relational(a, b, true)
		if err != nil {
			return err
		}
		vm.push(value.Boolean(def && r))
	case bytecode.OpLessEqual:
		b, a := vm.pop(), vm.pop()
		r, def, err := vm.relational(b, a, false)
		if err != nil {
			return err
		}
		vm.push(value.Boolean(def && !r))
	case bytecode.OpGreater:
		b, a := vm.pop(), vm.pop()
		r, def, err := vm.relational(b, a, false)
		if err != nil {
			return err
		}
		vm.push(value.Boolean(def && r))
	case bytecode.OpGreaterEqual:
		b, a := vm.pop(), vm.pop()
		r, def, err := vm.relational(a, b, true)
		if err != nil {
			return err
		}
		vm.push(value.Boolean(def && !r))
	case bytecode.OpInstanceOf:
		b, a := vm.pop(), vm.pop()
		r, err := vm.instanceOf(a, b)
		if err != nil {
			return err
		}
		vm.push(value.Boolean(r))
	case bytecode.OpIn:
		b, a := vm.pop(), vm.pop()
		r, err := vm.in(a, b)
		if err != nil {
			return err
		}
		vm.push(value.Boolean(r))

	// ---- Logical ----
	case bytecode.OpNot:
		vm.push(value.Boolean(!value.ToBoolean(vm.pop())))
	case bytecode.OpToBool:
		vm.push(value.Boolean(value.ToBoolean(vm.pop())))
	case bytecode.OpJumpIfFalseNoPop:
		if !value.ToBoolean(vm.peek(0)) {
			f.ip += int(inst.SignedB())
		}
	case bytecode.OpJumpIfTrueNoPop:
		if value.ToBoolean(vm.peek(0)) {
			f.ip += int(inst.SignedB())
		}
	case bytecode.OpJumpIfNotNullishNoPop:
		if !isNullish(vm.peek(0)) {
			f.ip += int(inst.SignedB())
		}

	// ---- Control flow ----
	case bytecode.OpJump:
		f.ip += int(inst.SignedB())
	case bytecode.OpJumpIfTrue:
		if value.ToBoolean(vm.pop()) {
			f.ip += int(inst.SignedB())
		}
	case bytecode.OpJumpIfFalse:
		if !value.ToBoolean(vm.pop()) {
			f.ip += int(inst.SignedB())
		}
	case bytecode.OpLoop:
		f.ip += int(inst.SignedB())
	case bytecode.OpReturn:
		f.returnValue = vm.pop()
		f.returned = true
	case bytecode.OpThrow:
		val := vm.pop()
		return &thrownError{val: val}

	// ---- Stack shuffling ----
	case bytecode.OpPop:
		vm.pop()
	case bytecode.OpDup:
		vm.push(vm.peek(0))
	case bytecode.OpDup2:
		b, a := vm.peek(0), vm.peek(1)
		vm.push(a)
		vm.push(b)
	case bytecode.OpSwap:
		n := len(vm.stack)
		vm.stack[n-1], vm.stack[n-2] = vm.stack[n-2], vm.stack[n-1]

	// ---- Objects and arrays ----
	case bytecode.OpNewArray:
		elems := vm.popN(int(inst.B()))
		vm.push(value.NewArray(vm.Realm.ArrayProto, elems))
	case bytecode.OpArraySpreadAppend:
		if err := vm.opArraySpreadAppend(); err != nil {
			return err
		}
	case bytecode.OpNewObject:
		vm.push(value.NewObject(vm.Realm.ObjectProto))
	case bytecode.OpDefineProp:
		return vm.opDefineProp(f, inst, false)
	case bytecode.OpDefinePropComputed:
		return vm.opDefineProp(f, inst, true)
	case bytecode.OpDefineMethod:
		return vm.opDefineAccessor(f, inst, false, accessorMethod)
	case bytecode.OpDefineMethodComputed:
		return vm.opDefineAccessor(f, inst, true, accessorMethod)
	case bytecode.OpDefineGetter:
		return vm.opDefineAccessor(f, inst, false, accessorGetter)
	case bytecode.OpDefineGetterComputed:
		return vm.opDefineAccessor(f, inst, true, accessorGetter)
	case bytecode.OpDefineSetter:
		return vm.opDefineAccessor(f, inst, false, accessorSetter)
	case bytecode.OpDefineSetterComputed:
		return vm.opDefineAccessor(f, inst, true, accessorSetter)
	case bytecode.OpObjectSpreadAppend:
		return vm.opObjectSpreadAppend()
	case bytecode.OpGetProp:
		return vm.opGetProp(f, inst, false)
	case bytecode.OpSetProp:
		return vm.opSetProp(f, inst, false)
	case bytecode.OpGetPropComputed:
		return vm.opGetProp(f, inst, true)
	case bytecode.OpSetPropComputed:
		return vm.opSetProp(f, inst, true)
	case bytecode.OpDeleteProp:
		return vm.opDeleteProp(f, inst, false)
	case bytecode.OpDeletePropComputed:
		return vm.opDeleteProp(f, inst, true)
	case bytecode.OpGetSuperProp:
		return vm.opGetSuperProp(f, inst, false)
	case bytecode.OpGetSuperPropComputed:
		return vm.opGetSuperProp(f, inst, true)
	case bytecode.OpSetSuperProp:
		return vm.opSetSuperProp(f, inst, false)
	case bytecode.OpSetSuperPropComputed:
		return vm.opSetSuperProp(f, inst, true)
	case bytecode.OpTypeof:
		vm.push(value.NewString(value.TypeOf(vm.pop())))

	// ---- Functions and classes ----
	case bytecode.OpClosure:
		return vm.opClosure(f, inst)
	case bytecode.OpCall:
		return vm.opCall(f, int(inst.A()), false)
	case bytecode.OpCallSpread:
		return vm.opCall(f, 0, true)
	case bytecode.OpConstruct:
		return vm.opConstruct(int(inst.A()), false)
	case bytecode.OpConstructSpread:
		return vm.opConstruct(0, true)
	case bytecode.OpSuperCall:
		return vm.opSuperCall(f, int(inst.B()), false)
	case bytecode.OpSuperCallSpread:
		return vm.opSuperCall(f, 0, true)
	case bytecode.OpDefineClass:
		return vm.opDefineClass(f, inst)

	// ---- Iterators ----
	case bytecode.OpGetForInIterator:
		return vm.opGetForInIterator()
	case bytecode.OpGetIterator:
		return vm.opGetIterator(false)
	case bytecode.OpGetAsyncIterator:
		return vm.opGetIterator(true)
	case bytecode.OpIteratorNext:
		return vm.opIteratorNext()
	case bytecode.OpIteratorClose:
		return vm.opIteratorClose()

	// ---- Generators and async ----
	case bytecode.OpYield:
		return vm.opYield(f)
	case bytecode.OpYieldStar:
		return vm.opYieldStar(f)
	case bytecode.OpAwait:
		return vm.opAwait(f)

	// ---- Exception handling ----
	case bytecode.OpPushTry:
		info, _ := f.chunk.TryInfoAt(f.ip - 1)
		vm.handlers = append(vm.handlers, tryHandler{
			frameDepth: len(vm.frames) - 1,
			stackDepth: len(vm.stack),
			info:       info,
		})
	case bytecode.OpPopTry:
		if len(vm.handlers) > 0 {
			vm.handlers = vm.handlers[:len(vm.handlers)-1]
		}

	// ---- Misc ----
	case bytecode.OpHalt:
		f.returnValue = value.U
		f.returned = true
	case bytecode.OpDebugger:
		// no-op: no debugger attached.

	default:
		return fmt.Errorf("vm: unimplemented opcode %s", inst.OpCode())
	}
	return nil
}

func (vm *VM) loadConstant(f *frame, c bytecode.Constant) (value.Value, error) {
	switch c.Kind {
	case bytecode.ConstNumber:
		return value.NumberFromFloat(c.Number), nil
	case bytecode.ConstString:
		return value.NewString(c.Str), nil
	case bytecode.ConstBigInt:
		b, ok := value.ParseBigInt(c.BigInt)
		if !ok {
			return nil, fmt.Errorf("vm: invalid bigint constant %q", c.BigInt)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("vm: constant kind %d is not a value literal", c.Kind)
	}
}

// tdzError reports a read or write through a local/upvalue slot that is
// still in its temporal dead zone (a let/const/class binding reached
// before its own declaration's initializer ran).
func tdzError() error {
	return &value.EngineError{Kind: "ReferenceError", Msg: "Cannot access variable before initialization"}
}

func numericSub(a, b float64) float64 { return a - b }
func numericMul(a, b float64) float64 { return a * b }
func numericDiv(a, b float64) float64 { return a / b }
func numericMod(a, b float64) float64 { return jsMod(a, b) }
func numericExp(a, b float64) float64 { return jsPow(a, b) }

func jsPow(a, b float64) float64 {
	if b == 0 {
		return 1
	}
	if math.IsNaN(b) {
		return math.NaN()
	}
	return math.Pow(a, b)
}

func (vm *VM) binBitwise(op func(a, b int32) int32) error {
	b, a := vm.pop(), vm.pop()
	ia, err := vm.toInt32(a)
	if err != nil {
		return err
	}
	ib, err := vm.toInt32(b)
	if err != nil {
		return err
	}
	vm.push(value.NumberFromFloat(float64(op(ia, ib))))
	return nil
}

func (vm *VM) binShift(op func(a int32, shift uint32) float64) error {
	b, a := vm.pop(), vm.pop()
	ia, err := vm.toInt32(a)
	if err != nil {
		return err
	}
	ub, err := vm.toUint32(b)
	if err != nil {
		return err
	}
	vm.push(value.NumberFromFloat(op(ia, ub)))
	return nil
}
