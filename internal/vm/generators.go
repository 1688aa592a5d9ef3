package vm

import (
	"github.com/cwbudde/ecma/internal/bytecode"
	"github.com/cwbudde/ecma/internal/value"
)

// generators.go implements generator and async function activations as
// goroutine-backed coroutines: the function body runs to completion (or
// suspension) on its own goroutine against its own *VM — a separate stack
// and frame list sharing only the Realm — and hands control back to
// whichever goroutine is driving it (script calling .next()/.throw()/
// .return(), or the promise-reaction job that woke an awaiting async
// function) over a pair of unbuffered channels. This replaces the
// specification's "save PC and stack into the generator object" snapshot
// model with Go's own stack-per-goroutine, the idiomatic substitute for a
// language with no first-class continuations.

// genResumeKind selects how a suspended generator is resumed, mirroring
// Normal/Throw/Return completion kinds (§4.I "a 'resume kind'").
type genResumeKind byte

const (
	genResumeNormal genResumeKind = iota
	genResumeThrow
	genResumeReturn
)

type genResume struct {
	kind  genResumeKind
	value value.Value
}

// genYield is one message from the generator's goroutine back to whoever
// is driving it: either a yielded value (done false) or the generator's
// final completion (done true), which is either a return value or an
// escaping error.
type genYield struct {
	value value.Value
	done  bool
	err   error
}

// generatorState is the channel pair a suspended generator body's OpYield
// (and OpYieldStar) blocks on, installed as frame.gen for the lifetime of
// the coroutine.
type generatorState struct {
	resumeCh chan genResume
	yieldCh  chan genYield
	done     bool
}

// newGenerator builds the generator object returned the instant a
// generator function is called; per generator semantics the body does not
// run a single instruction until the first next()/throw()/return() call,
// which is why the goroutine below blocks on its very first resumeCh read
// before ever pushing a frame.
func (vm *VM) newGenerator(fnObj *value.Object, tmpl *bytecode.FunctionTemplate, this value.Value, args []value.Value) *value.Object {
	gs := &generatorState{resumeCh: make(chan genResume), yieldCh: make(chan genYield)}
	data := value.FuncData(fnObj)

	go func() {
		first := <-gs.resumeCh
		switch first.kind {
		case genResumeReturn:
			gs.yieldCh <- genYield{value: first.value, done: true}
			return
		case genResumeThrow:
			gs.yieldCh <- genYield{err: &thrownError{val: first.value}, done: true}
			return
		}

		genVM := &VM{Realm: vm.Realm, classInfos: vm.classInfos}
		nf := newFrame(tmpl.Chunk, fnObj, this, nil, data.HomeObject, data.ParentClass)
		nf.upvalues = data.Upvalues
		nf.thisInitialized = true
		nf.gen = gs
		genVM.bindArgs(nf, tmpl, args)
		genVM.frames = append(genVM.frames, nf)

		result, err := genVM.runLoop(0)
		if err != nil {
			if gr, ok := err.(*generatorReturn); ok {
				gs.yieldCh <- genYield{value: gr.val, done: true}
				return
			}
			if te, ok := err.(*thrownError); ok {
				gs.yieldCh <- genYield{err: te, done: true}
				return
			}
			gs.yieldCh <- genYield{err: err, done: true}
			return
		}
		gs.yieldCh <- genYield{value: result, done: true}
	}()

	obj := value.NewObject(vm.Realm.GeneratorProto)
	defineMethod(obj, value.StringKey("next"), "next", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		return vm.generatorResume(gs, genResumeNormal, argOrUndefined(args, 0))
	})
	defineMethod(obj, value.StringKey("throw"), "throw", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		arg := argOrUndefined(args, 0)
		if gs.done {
			return nil, &thrownError{val: arg}
		}
		return vm.generatorResume(gs, genResumeThrow, arg)
	})
	defineMethod(obj, value.StringKey("return"), "return", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		return vm.generatorResume(gs, genResumeReturn, argOrUndefined(args, 0))
	})
	return obj
}

func argOrUndefined(args []value.Value, i int) value.Value {
	if i < len(args) {
		return args[i]
	}
	return value.U
}

// generatorResume drives one resumption of gs and renders the result as
// an iterator-result object {value, done}, or propagates an escaped
// error as a genuine Go error (handled the same way any other call's
// error is: raised at the call site).
func (vm *VM) generatorResume(gs *generatorState, kind genResumeKind, arg value.Value) (value.Value, error) {
	if gs.done {
		if kind == genResumeReturn {
			return vm.iterResult(arg, true), nil
		}
		return vm.iterResult(value.U, true), nil
	}
	gs.resumeCh <- genResume{kind: kind, value: arg}
	y := <-gs.yieldCh
	if y.done {
		gs.done = true
	}
	if y.err != nil {
		if te, ok := y.err.(*thrownError); ok {
			return nil, te
		}
		return nil, y.err
	}
	return vm.iterResult(y.value, y.done), nil
}

func (vm *VM) iterResult(v value.Value, done bool) *value.Object {
	o := value.NewObject(vm.Realm.ObjectProto)
	defineData(o, "value", v)
	defineData(o, "done", value.Boolean(done))
	return o
}

// opYield implements OpYield: suspend, handing the popped operand to
// whichever of next/throw/return resumes us, then act on the resumption
// kind — push the resume value, re-raise it as a thrown exception (caught
// by any enclosing try/catch in this same generator body, since raise
// walks this goroutine's own vm.handlers), or unwind to completion
// (generatorReturn, a documented simplification: intervening finally
// blocks are not re-run for an externally driven .return(), only for an
// actual `return` statement the compiler already inlines past them).
func (vm *VM) opYield(f *frame) error {
	v := vm.pop()
	f.gen.yieldCh <- genYield{value: v, done: false}
	resume := <-f.gen.resumeCh
	switch resume.kind {
	case genResumeThrow:
		return &thrownError{val: resume.value}
	case genResumeReturn:
		return &generatorReturn{val: resume.value}
	default:
		vm.push(resume.value)
		return nil
	}
}

// opYieldStar implements OpYieldStar: drains iterableV's iterator,
// forwarding this generator's own next(v)/throw(v)/return(v) calls into
// the inner iterator's corresponding method (per the delegation algorithm,
// §4.I "OpYieldStar delegates to a nested iterable"), and pushes the
// inner iterator's final value once it reports done.
func (vm *VM) opYieldStar(f *frame) error {
	iterableV := vm.pop()
	it, err := vm.getIterator(iterableV, false)
	if err != nil {
		return err
	}
	sent := value.U
	for {
		val, done, derr := vm.iteratorStepWithArg(it, sent)
		if derr != nil {
			return derr
		}
		if done {
			vm.push(val)
			return nil
		}
		f.gen.yieldCh <- genYield{value: val, done: false}
		resume := <-f.gen.resumeCh
		switch resume.kind {
		case genResumeNormal:
			sent = resume.value
		case genResumeThrow:
			handled, rv, rdone, herr := vm.forwardIteratorMethod(it, "throw", resume.value)
			if herr != nil {
				return herr
			}
			if !handled {
				vm.iteratorCloseIgnoring(it)
				return &value.EngineError{Kind: "TypeError", Msg: "iterator does not have a throw method"}
			}
			if rdone {
				vm.push(rv)
				return nil
			}
			sent = value.U
			f.gen.yieldCh <- genYield{value: rv, done: false}
			inner := <-f.gen.resumeCh
			resume = inner
			sent = resume.value
			if resume.kind == genResumeThrow {
				return &thrownError{val: resume.value}
			}
			if resume.kind == genResumeReturn {
				return &generatorReturn{val: resume.value}
			}
		case genResumeReturn:
			handled, rv, _, herr := vm.forwardIteratorMethod(it, "return", resume.value)
			if herr != nil {
				return herr
			}
			if handled {
				return &generatorReturn{val: rv}
			}
			return &generatorReturn{val: resume.value}
		}
	}
}

// iteratorStepWithArg calls it.next(arg) and reads back {value, done}.
func (vm *VM) iteratorStepWithArg(it *value.Object, arg value.Value) (value.Value, bool, error) {
	nextV, err := it.Get(value.StringKey("next"))
	if err != nil {
		return nil, false, err
	}
	next, ok := nextV.(*value.Object)
	if !ok || !next.IsCallable() {
		return nil, false, &value.EngineError{Kind: "TypeError", Msg: "iterator.next is not a function"}
	}
	res, err := next.Internal.Call(next, it, []value.Value{arg})
	if err != nil {
		return nil, false, err
	}
	resObj, ok := res.(*value.Object)
	if !ok {
		return nil, false, &value.EngineError{Kind: "TypeError", Msg: "Iterator result is not an object"}
	}
	doneV, _ := resObj.Get(value.StringKey("done"))
	valV, _ := resObj.Get(value.StringKey("value"))
	return valV, value.ToBoolean(doneV), nil
}

// forwardIteratorMethod calls it[name](arg) if present and callable,
// reporting handled=false (rather than erroring) when it is absent, so
// the caller can apply the delegation algorithm's own fallback.
func (vm *VM) forwardIteratorMethod(it *value.Object, name string, arg value.Value) (handled bool, v value.Value, done bool, err error) {
	mV, err := it.Get(value.StringKey(name))
	if err != nil {
		return false, nil, false, err
	}
	m, ok := mV.(*value.Object)
	if !ok || !m.IsCallable() {
		return false, nil, false, nil
	}
	res, err := m.Internal.Call(m, it, []value.Value{arg})
	if err != nil {
		return true, nil, false, err
	}
	resObj, ok := res.(*value.Object)
	if !ok {
		return true, nil, false, &value.EngineError{Kind: "TypeError", Msg: "Iterator result is not an object"}
	}
	doneV, _ := resObj.Get(value.StringKey("done"))
	valV, _ := resObj.Get(value.StringKey("value"))
	return true, valV, value.ToBoolean(doneV), nil
}

func (vm *VM) iteratorCloseIgnoring(it *value.Object) {
	retV, err := it.Get(value.StringKey("return"))
	if err != nil {
		return
	}
	ret, ok := retV.(*value.Object)
	if !ok || !ret.IsCallable() {
		return
	}
	_, _ = ret.Internal.Call(ret, it, nil)
}

// asyncSignal is the one-shot message runAsync's launch goroutine sends
// back once: either as soon as the async body suspends on its first
// OpAwait, or, if it never awaits at all, once the body has already run
// to completion. Every await after the first settles the function's
// result promise directly and touches no channel anyone is still reading.
type asyncSignal struct {
	suspended bool
}

// runAsync starts fnObj's body on its own goroutine and blocks only until
// that body either reaches its first await or returns outright — the part
// of calling an async function that the specification still runs
// synchronously within the caller's own turn — then returns the pending
// (or already-settled) result promise.
func (vm *VM) runAsync(fnObj *value.Object, tmpl *bytecode.FunctionTemplate, data *value.FunctionData, this value.Value, args []value.Value) *value.Object {
	promise := vm.newPromise()
	gate := make(chan asyncSignal, 1)

	asyncVM := &VM{Realm: vm.Realm, classInfos: vm.classInfos}
	nf := newFrame(tmpl.Chunk, fnObj, this, nil, data.HomeObject, data.ParentClass)
	nf.upvalues = data.Upvalues
	nf.thisInitialized = true
	nf.asyncGate = gate
	asyncVM.bindArgs(nf, tmpl, args)
	asyncVM.frames = append(asyncVM.frames, nf)

	go func() {
		result, err := asyncVM.runLoop(0)
		if err != nil {
			if te, ok := err.(*thrownError); ok {
				vm.rejectPromise(promise, te.val)
			} else {
				vm.rejectPromise(promise, vm.errorToValue(err))
			}
		} else {
			vm.resolvePromise(promise, result)
		}
		if nf.asyncGate != nil {
			g := nf.asyncGate
			nf.asyncGate = nil
			g <- asyncSignal{}
		}
	}()

	<-gate
	return promise
}

// opAwait implements OpAwait: suspend the current async activation until
// the awaited value's promise (wrapping it in one first, if it is not
// already a promise) settles, resuming with the fulfillment value or
// re-raising the rejection reason as a thrown exception at the await
// point.
func (vm *VM) opAwait(f *frame) error {
	v := vm.pop()
	p := vm.promiseResolve(v)
	resultCh := make(chan genYield, 1)
	vm.onSettle(p,
		func(val value.Value) { resultCh <- genYield{value: val} },
		func(reason value.Value) { resultCh <- genYield{err: &thrownError{val: reason}} })
	if f.asyncGate != nil {
		gate := f.asyncGate
		f.asyncGate = nil
		gate <- asyncSignal{suspended: true}
	}
	sig := <-resultCh
	if sig.err != nil {
		return sig.err
	}
	vm.push(sig.value)
	return nil
}
