package vm

import (
	"strconv"

	"github.com/cwbudde/ecma/internal/value"
)

// setupConstructors wires the handful of global constructor bindings the
// engine's own opcodes need to be reachable from script (`new Error(...)`,
// `new Object()`, `Array.isArray`, ...); the rest of each constructor's
// static surface (Object.keys, Array.prototype.map, ...) belongs to
// component J's default host library, layered on after the realm exists.
func (r *Realm) setupConstructors() {
	r.setupObjectCtor()
	r.setupFunctionCtor()
	r.setupArrayCtor()
	r.setupErrorCtors()
	r.setupPromiseCtor()
}

func (r *Realm) setupObjectCtor() {
	ctor := value.NewFunction(r.FunctionProto, &value.FunctionData{Name: "Object", Length: 1},
		func(fn *value.Object, this value.Value, args []value.Value) (value.Value, error) {
			if len(args) == 0 || isNullish(args[0]) {
				return value.NewObject(r.ObjectProto), nil
			}
			if o, ok := args[0].(*value.Object); ok {
				return o, nil
			}
			return value.NewObject(r.ObjectProto), nil
		},
		func(fn *value.Object, args []value.Value, newTarget *value.Object) (value.Value, error) {
			return value.NewObject(r.ObjectProto), nil
		})
	defineData(ctor, "prototype", r.ObjectProto)
	defineData(r.ObjectProto, "constructor", ctor)
	r.defineGlobalValue("Object", ctor)
}

func (r *Realm) setupFunctionCtor() {
	ctor := value.NewFunction(r.FunctionProto, &value.FunctionData{Name: "Function", Length: 1},
		func(fn *value.Object, this value.Value, args []value.Value) (value.Value, error) {
			return nil, &value.EngineError{Kind: "TypeError", Msg: "Function constructor via source text is not supported"}
		}, nil)
	defineData(ctor, "prototype", r.FunctionProto)
	defineData(r.FunctionProto, "constructor", ctor)
	defineMethod(r.FunctionProto, value.StringKey("call"), "call", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		fn, ok := this.(*value.Object)
		if !ok || !fn.IsCallable() {
			return nil, &value.EngineError{Kind: "TypeError", Msg: "Function.prototype.call called on non-callable"}
		}
		var thisArg value.Value = value.U
		var rest []value.Value
		if len(args) > 0 {
			thisArg = args[0]
			rest = args[1:]
		}
		return fn.Internal.Call(fn, thisArg, rest)
	})
	defineMethod(r.FunctionProto, value.StringKey("apply"), "apply", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		fn, ok := this.(*value.Object)
		if !ok || !fn.IsCallable() {
			return nil, &value.EngineError{Kind: "TypeError", Msg: "Function.prototype.apply called on non-callable"}
		}
		var thisArg value.Value = value.U
		if len(args) > 0 {
			thisArg = args[0]
		}
		var spread []value.Value
		if len(args) > 1 {
			spread = arrayLikeToSlice(args[1])
		}
		return fn.Internal.Call(fn, thisArg, spread)
	})
	defineMethod(r.FunctionProto, value.StringKey("bind"), "bind", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		fn, ok := this.(*value.Object)
		if !ok || !fn.IsCallable() {
			return nil, &value.EngineError{Kind: "TypeError", Msg: "Function.prototype.bind called on non-callable"}
		}
		var thisArg value.Value = value.U
		var bound []value.Value
		if len(args) > 0 {
			thisArg = args[0]
			bound = append([]value.Value{}, args[1:]...)
		}
		return value.NewBoundFunction(r.FunctionProto, fn, thisArg, bound), nil
	})
	r.defineGlobalValue("Function", ctor)
}

func arrayLikeToSlice(v value.Value) []value.Value {
	o, ok := v.(*value.Object)
	if !ok {
		return nil
	}
	if o.Class() == value.KindArray {
		return append([]value.Value{}, o.Elements...)
	}
	lv, err := o.Get(value.StringKey("length"))
	if err != nil {
		return nil
	}
	n := int(value.ToFloat64(lv))
	out := make([]value.Value, 0, n)
	for i := 0; i < n; i++ {
		ev, _ := o.Get(value.StringKey(strconv.Itoa(i)))
		if ev == nil {
			ev = value.U
		}
		out = append(out, ev)
	}
	return out
}

func (r *Realm) setupArrayCtor() {
	ctor := value.NewFunction(r.FunctionProto, &value.FunctionData{Name: "Array", Length: 1},
		func(fn *value.Object, this value.Value, args []value.Value) (value.Value, error) {
			return r.constructArray(args), nil
		},
		func(fn *value.Object, args []value.Value, newTarget *value.Object) (value.Value, error) {
			return r.constructArray(args), nil
		})
	defineData(ctor, "prototype", r.ArrayProto)
	defineData(r.ArrayProto, "constructor", ctor)
	defineMethod(ctor, value.StringKey("isArray"), "isArray", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return value.Boolean(false), nil
		}
		o, ok := args[0].(*value.Object)
		return value.Boolean(ok && o.Class() == value.KindArray), nil
	})
	r.defineGlobalValue("Array", ctor)
}

func (r *Realm) constructArray(args []value.Value) *value.Object {
	if len(args) == 1 && value.IsNumber(args[0]) {
		n := int(value.ToFloat64(args[0]))
		return value.NewArray(r.ArrayProto, make([]value.Value, n))
	}
	return value.NewArray(r.ArrayProto, args)
}

func (r *Realm) setupErrorCtors() {
	kinds := []value.ErrorKind{
		value.GenericError, value.TypeErrorKind, value.RangeErrorKind,
		value.ReferenceError, value.SyntaxErrorKind, value.EvalErrorKind, value.URIErrorKind,
	}
	for _, kind := range kinds {
		kind := kind
		proto := r.ErrorProtos[kind]
		ctor := value.NewFunction(r.FunctionProto, &value.FunctionData{Name: string(kind), Length: 1},
			func(fn *value.Object, this value.Value, args []value.Value) (value.Value, error) {
				return r.constructErrorFrom(proto, kind, args), nil
			},
			func(fn *value.Object, args []value.Value, newTarget *value.Object) (value.Value, error) {
				return r.constructErrorFrom(proto, kind, args), nil
			})
		defineData(ctor, "prototype", proto)
		defineData(proto, "constructor", ctor)
		r.ErrorCtors[kind] = ctor
		r.defineGlobalValue(string(kind), ctor)
	}
}

func (r *Realm) constructErrorFrom(proto *value.Object, kind value.ErrorKind, args []value.Value) *value.Object {
	msg := ""
	if len(args) > 0 && args[0].Kind() != value.KindUndefined {
		msg = value.Fmt(args[0])
		if s, ok := args[0].(*value.Str); ok {
			msg = s.DisplayString()
		}
	}
	return value.NewErrorObject(proto, kind, msg)
}

// setupPromiseCtor wires `new Promise(executor)` plus .then/.catch/.finally
// on PromiseProto, grounded directly on §12's "Jobs" description (no
// teacher/pack analog: DWScript and the rest of the pack have no promise
// type). The settle/reaction primitives themselves (newPromise,
// resolvePromise, rejectPromise, onSettle) live in promises.go as VM
// methods; since none of them touch any VM state beyond the Realm, a
// throwaway *VM wrapping just this realm is enough to invoke them from a
// realm-setup closure that runs before any real VM exists.
func (r *Realm) setupPromiseCtor() {
	helper := &VM{Realm: r}

	ctor := value.NewFunction(r.FunctionProto, &value.FunctionData{Name: "Promise", Length: 1},
		func(fn *value.Object, this value.Value, args []value.Value) (value.Value, error) {
			return nil, &value.EngineError{Kind: "TypeError", Msg: "Promise constructor cannot be invoked without 'new'"}
		},
		func(fn *value.Object, args []value.Value, newTarget *value.Object) (value.Value, error) {
			if len(args) == 0 {
				return nil, &value.EngineError{Kind: "TypeError", Msg: "Promise resolver is not a function"}
			}
			executor, ok := args[0].(*value.Object)
			if !ok || !executor.IsCallable() {
				return nil, &value.EngineError{Kind: "TypeError", Msg: "Promise resolver is not a function"}
			}
			p := helper.newPromise()
			resolveFn := value.NewNativeFunction(r.FunctionProto, "resolve", 1, func(this value.Value, rargs []value.Value) (value.Value, error) {
				helper.resolvePromise(p, argOrUndefined(rargs, 0))
				return value.U, nil
			})
			rejectFn := value.NewNativeFunction(r.FunctionProto, "reject", 1, func(this value.Value, rargs []value.Value) (value.Value, error) {
				helper.rejectPromise(p, argOrUndefined(rargs, 0))
				return value.U, nil
			})
			if _, err := executor.Internal.Call(executor, value.U, []value.Value{resolveFn, rejectFn}); err != nil {
				if te, ok := err.(*thrownError); ok {
					helper.rejectPromise(p, te.val)
				} else {
					helper.rejectPromise(p, helper.errorToValue(err))
				}
			}
			return p, nil
		})
	defineData(ctor, "prototype", r.PromiseProto)
	defineData(r.PromiseProto, "constructor", ctor)

	defineMethod(ctor, value.StringKey("resolve"), "resolve", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		return helper.promiseResolve(argOrUndefined(args, 0)), nil
	})
	defineMethod(ctor, value.StringKey("reject"), "reject", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		p := helper.newPromise()
		helper.rejectPromise(p, argOrUndefined(args, 0))
		return p, nil
	})

	defineMethod(r.PromiseProto, value.StringKey("then"), "then", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		p, ok := this.(*value.Object)
		if !ok || p.Class() != value.KindPromise {
			return nil, &value.EngineError{Kind: "TypeError", Msg: "Promise.prototype.then called on non-promise"}
		}
		onFulfilled, _ := argOrUndefined(args, 0).(*value.Object)
		onRejected, _ := argOrUndefined(args, 1).(*value.Object)
		result := helper.newPromise()
		helper.onSettle(p,
			func(v value.Value) { runReaction(helper, result, onFulfilled, v, false) },
			func(v value.Value) { runReaction(helper, result, onRejected, v, true) })
		return result, nil
	})
	defineMethod(r.PromiseProto, value.StringKey("catch"), "catch", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		thenFn, err := this.(*value.Object).Get(value.StringKey("then"))
		if err != nil {
			return nil, err
		}
		then := thenFn.(*value.Object)
		return then.Internal.Call(this.(*value.Object), this, []value.Value{value.U, argOrUndefined(args, 0)})
	})
	defineMethod(r.PromiseProto, value.StringKey("finally"), "finally", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		p, ok := this.(*value.Object)
		if !ok || p.Class() != value.KindPromise {
			return nil, &value.EngineError{Kind: "TypeError", Msg: "Promise.prototype.finally called on non-promise"}
		}
		onFinally, _ := argOrUndefined(args, 0).(*value.Object)
		result := helper.newPromise()
		run := func(v value.Value, reject bool) {
			if onFinally != nil && onFinally.IsCallable() {
				if _, err := onFinally.Internal.Call(onFinally, value.U, nil); err != nil {
					if te, ok := err.(*thrownError); ok {
						helper.rejectPromise(result, te.val)
					} else {
						helper.rejectPromise(result, helper.errorToValue(err))
					}
					return
				}
			}
			if reject {
				helper.rejectPromise(result, v)
			} else {
				helper.resolvePromise(result, v)
			}
		}
		helper.onSettle(p, func(v value.Value) { run(v, false) }, func(v value.Value) { run(v, true) })
		return result, nil
	})

	r.defineGlobalValue("Promise", ctor)
}

// runReaction applies one of Promise.prototype.then's two callbacks (or,
// absent one, forwards the settlement unchanged) and settles result with
// whatever it produces, matching the PromiseReactionJob abstract operation.
func runReaction(vm *VM, result *value.Object, handler *value.Object, v value.Value, wasRejection bool) {
	if handler == nil || !handler.IsCallable() {
		if wasRejection {
			vm.rejectPromise(result, v)
		} else {
			vm.resolvePromise(result, v)
		}
		return
	}
	rv, err := handler.Internal.Call(handler, value.U, []value.Value{v})
	if err != nil {
		if te, ok := err.(*thrownError); ok {
			vm.rejectPromise(result, te.val)
		} else {
			vm.rejectPromise(result, vm.errorToValue(err))
		}
		return
	}
	vm.resolvePromise(result, rv)
}

func isNullish(v value.Value) bool {
	switch v.(type) {
	case value.Undefined, value.Null:
		return true
	}
	return v == nil
}

