package vm

import "github.com/cwbudde/ecma/internal/value"

// promises.go implements the settle/react primitives OpAwait and the
// Promise constructor (constructors.go) build on: a promise is a
// KindPromise object whose Private is a *value.PromiseData, moved through
// its one-way state transition by resolvePromise/rejectPromise and
// observed by onSettle, every reaction always running as a queued job
// (§12 "Jobs run to completion, FIFO, after the current script/callback
// finishes") rather than synchronously, even when the promise has already
// settled by the time a reaction is attached.

func (vm *VM) newPromise() *value.Object {
	o := value.NewObjectWithShape(value.RootShape(vm.Realm.PromiseProto), value.KindPromise)
	o.Private = &value.PromiseData{State: value.PromisePending}
	return o
}

// promiseResolve wraps v in an already-settled promise, or returns v
// itself when it is already a promise, per the Promise.resolve abstract
// operation.
func (vm *VM) promiseResolve(v value.Value) *value.Object {
	if o, ok := v.(*value.Object); ok && o.Class() == value.KindPromise {
		return o
	}
	p := vm.newPromise()
	vm.resolvePromise(p, v)
	return p
}

// resolvePromise fulfills p with v, unless v is itself a thenable (a
// promise, since this engine has no foreign-thenable interop beyond its
// own Promise kind), in which case p instead adopts that promise's
// eventual state (the "resolve with a thenable chains" rule).
func (vm *VM) resolvePromise(p *value.Object, v value.Value) {
	data := value.PromiseDataOf(p)
	if data.State != value.PromisePending {
		return
	}
	if inner, ok := v.(*value.Object); ok && inner.Class() == value.KindPromise && inner != p {
		vm.onSettle(inner,
			func(val value.Value) { vm.resolvePromise(p, val) },
			func(reason value.Value) { vm.rejectPromise(p, reason) })
		return
	}
	data.State = value.PromiseFulfilled
	data.Result = v
	reactions := data.OnFulfilled
	data.OnFulfilled, data.OnRejected = nil, nil
	for _, r := range reactions {
		r := r
		vm.Realm.EnqueueJob(func() { r(v) })
	}
}

func (vm *VM) rejectPromise(p *value.Object, reason value.Value) {
	data := value.PromiseDataOf(p)
	if data.State != value.PromisePending {
		return
	}
	data.State = value.PromiseRejected
	data.Result = reason
	reactions := data.OnRejected
	data.OnFulfilled, data.OnRejected = nil, nil
	for _, r := range reactions {
		r := r
		vm.Realm.EnqueueJob(func() { r(reason) })
	}
}

// onSettle registers fulfillment/rejection reactions against p, running
// whichever one applies (queued as a job, not called directly) as soon as
// p has a terminal state to report, whether that is already true or still
// to come.
func (vm *VM) onSettle(p *value.Object, onFulfilled, onRejected func(value.Value)) {
	data := value.PromiseDataOf(p)
	switch data.State {
	case value.PromisePending:
		data.OnFulfilled = append(data.OnFulfilled, onFulfilled)
		data.OnRejected = append(data.OnRejected, onRejected)
	case value.PromiseFulfilled:
		v := data.Result
		vm.Realm.EnqueueJob(func() { onFulfilled(v) })
	case value.PromiseRejected:
		v := data.Result
		vm.Realm.EnqueueJob(func() { onRejected(v) })
	}
}
