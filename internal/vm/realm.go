package vm

import (
	"fmt"
	"io"
	"math"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/cwbudde/ecma/internal/environment"
	"github.com/cwbudde/ecma/internal/gc"
	"github.com/cwbudde/ecma/internal/intern"
	"github.com/cwbudde/ecma/internal/value"
)

// Realm bundles the global object, the intrinsic prototype chain, and the
// process-wide services (interner, collector, microtask queue) one
// evaluation context shares, grounded on the teacher's single VM-wide
// globals table (internal/bytecode.VM.globals) generalized to the
// specification's multi-realm model (§12 "Realms", supplemented from
// boa_engine's Context/intrinsics split — each Realm here is what boa
// calls a Context's intrinsics plus global object). pkg/ecma owns exactly
// one Realm per Engine, shared by every Run against it; nothing below internal/vm
// constructs a second one, so today every realm is the sole realm —
// component J's host hooks are the extension point a future multi-realm
// host (iframes, workers) would use to create more.
type Realm struct {
	ID uuid.UUID

	Interner *intern.Interner
	GC       *gc.Collector

	GlobalObject *value.Object
	GlobalEnv    *environment.Environment

	ObjectProto   *value.Object
	FunctionProto *value.Object
	ArrayProto    *value.Object
	StringProto   *value.Object
	NumberProto   *value.Object
	BooleanProto  *value.Object
	SymbolProto   *value.Object
	BigIntProto   *value.Object
	RegExpProto   *value.Object
	DateProto     *value.Object
	MapProto      *value.Object
	SetProto      *value.Object
	WeakMapProto  *value.Object
	WeakSetProto  *value.Object
	IteratorProto *value.Object
	GeneratorProto *value.Object
	PromiseProto  *value.Object

	ErrorProtos map[value.ErrorKind]*value.Object

	ErrorCtors map[value.ErrorKind]*value.Object

	// Jobs is the microtask queue (promise reaction jobs, per §12 "Jobs");
	// drained to fixpoint by DrainJobs after each top-level Run and after
	// every host callback, per the specification's run-to-completion model.
	// jobsMu guards it since a suspended generator/async body settling a
	// promise runs on its own goroutine, concurrently with whichever
	// goroutine is mid-DrainJobs.
	jobsMu sync.Mutex
	Jobs   []func()

	Output io.Writer
}

// NewRealm builds a realm with the baseline intrinsic object graph
// installed: prototype chain, global object, and the handful of global
// bindings (globalThis, undefined, NaN, Infinity, console) the engine
// itself depends on. The full standard library (Array.prototype methods,
// JSON, Promise combinators, ...) is layered on afterward by
// internal/host's default hook set (component J) calling Populate-style
// helpers against this already-built skeleton.
func NewRealm(interner *intern.Interner) *Realm {
	r := &Realm{
		ID:         uuid.New(),
		Interner:   interner,
		GC:         gc.NewCollector(),
		ErrorProtos: make(map[value.ErrorKind]*value.Object),
		ErrorCtors:  make(map[value.ErrorKind]*value.Object),
		Output:      os.Stdout,
	}
	r.setupIntrinsics()
	return r
}

func (r *Realm) setupIntrinsics() {
	r.ObjectProto = value.NewObject(nil)
	r.FunctionProto = value.NewObject(r.ObjectProto)
	r.FunctionProto.Internal.Call = func(o *value.Object, this value.Value, args []value.Value) (value.Value, error) {
		return value.U, nil
	}

	r.ArrayProto = value.NewObject(r.ObjectProto)
	r.StringProto = value.NewObject(r.ObjectProto)
	r.NumberProto = value.NewObject(r.ObjectProto)
	r.BooleanProto = value.NewObject(r.ObjectProto)
	r.SymbolProto = value.NewObject(r.ObjectProto)
	r.BigIntProto = value.NewObject(r.ObjectProto)
	r.RegExpProto = value.NewObject(r.ObjectProto)
	r.DateProto = value.NewObject(r.ObjectProto)
	r.MapProto = value.NewObject(r.ObjectProto)
	r.SetProto = value.NewObject(r.ObjectProto)
	r.WeakMapProto = value.NewObject(r.ObjectProto)
	r.WeakSetProto = value.NewObject(r.ObjectProto)
	r.PromiseProto = value.NewObject(r.ObjectProto)

	r.IteratorProto = value.NewObject(r.ObjectProto)
	defineMethod(r.IteratorProto, value.SymbolKey(value.WellKnownSymbol(value.SymIterator)), "[Symbol.iterator]", 0,
		func(this value.Value, args []value.Value) (value.Value, error) { return this, nil })
	r.GeneratorProto = value.NewObject(r.IteratorProto)

	kinds := []value.ErrorKind{
		value.GenericError, value.TypeErrorKind, value.RangeErrorKind,
		value.ReferenceError, value.SyntaxErrorKind, value.EvalErrorKind, value.URIErrorKind,
	}
	errorProto := value.NewObject(r.ObjectProto)
	r.ErrorProtos[value.GenericError] = errorProto
	defineData(errorProto, "name", value.NewString(string(value.GenericError)))
	defineData(errorProto, "message", value.NewString(""))
	defineMethod(errorProto, value.StringKey("toString"), "toString", 0, errorToString)
	for _, k := range kinds {
		if k == value.GenericError {
			continue
		}
		proto := value.NewObject(errorProto)
		defineData(proto, "name", value.NewString(string(k)))
		r.ErrorProtos[k] = proto
	}

	r.GlobalObject = value.NewObject(r.ObjectProto)
	r.GlobalEnv = environment.NewGlobal(r.GlobalObject)

	r.defineGlobalValue("globalThis", r.GlobalObject)
	r.defineGlobalValue("undefined", value.U)
	r.defineGlobalValue("NaN", value.NumberFromFloat(math.NaN()))
	r.defineGlobalValue("Infinity", value.NumberFromFloat(math.Inf(1)))

	r.setupConstructors()
	r.setupConsole()
}

func (r *Realm) defineGlobalValue(name string, v value.Value) {
	r.GlobalObject.Internal.DefineOwnProperty(r.GlobalObject, value.StringKey(name), value.NewDataDescriptor(v, value.Attributes(0)))
}

func defineData(o *value.Object, name string, v value.Value) {
	o.Internal.DefineOwnProperty(o, value.StringKey(name), value.NewDataDescriptor(v, value.Sealed()))
}

func defineMethod(o *value.Object, key value.PropertyKey, name string, length int, impl value.NativeImpl) *value.Object {
	fn := value.NewNativeFunction(nil, name, length, impl)
	o.Internal.DefineOwnProperty(o, key, value.NewDataDescriptor(fn, value.Sealed()))
	return fn
}

func errorToString(this value.Value, args []value.Value) (value.Value, error) {
	o, ok := this.(*value.Object)
	if !ok {
		return value.NewString("Error"), nil
	}
	name := "Error"
	if nv, err := o.Get(value.StringKey("name")); err == nil {
		if s, ok := nv.(*value.Str); ok {
			name = s.DisplayString()
		}
	}
	msg := ""
	if mv, err := o.Get(value.StringKey("message")); err == nil {
		if s, ok := mv.(*value.Str); ok {
			msg = s.DisplayString()
		}
	}
	if msg == "" {
		return value.NewString(name), nil
	}
	return value.NewString(name + ": " + msg), nil
}

// NewError constructs a fresh error object of kind with message, capturing
// no stack trace (use (*VM).throwError for a runtime-thrown error, which
// attaches one from the live call stack).
func (r *Realm) NewError(kind value.ErrorKind, message string) *value.Object {
	proto, ok := r.ErrorProtos[kind]
	if !ok {
		proto = r.ErrorProtos[value.GenericError]
	}
	return value.NewErrorObject(proto, kind, message)
}

func (r *Realm) setupConsole() {
	console := value.NewObject(r.ObjectProto)
	log := func(this value.Value, args []value.Value) (value.Value, error) {
		if r.Output == nil {
			return value.U, nil
		}
		for i, a := range args {
			if i > 0 {
				fmt.Fprint(r.Output, " ")
			}
			fmt.Fprint(r.Output, consoleDisplay(a))
		}
		fmt.Fprintln(r.Output)
		return value.U, nil
	}
	defineMethod(console, value.StringKey("log"), "log", 0, log)
	defineMethod(console, value.StringKey("info"), "info", 0, log)
	defineMethod(console, value.StringKey("warn"), "warn", 0, log)
	defineMethod(console, value.StringKey("error"), "error", 0, log)
	defineMethod(console, value.StringKey("debug"), "debug", 0, log)
	r.defineGlobalValue("console", console)
}

func consoleDisplay(v value.Value) string {
	if s, ok := v.(*value.Str); ok {
		return s.DisplayString()
	}
	return v.DisplayString()
}

// EnqueueJob appends a microtask (a settled-promise reaction, typically)
// to the realm's job queue, per §12 "Jobs run to completion, FIFO, after
// the current script/callback finishes".
func (r *Realm) EnqueueJob(job func()) {
	r.jobsMu.Lock()
	r.Jobs = append(r.Jobs, job)
	r.jobsMu.Unlock()
}

func (r *Realm) dequeueJob() (func(), bool) {
	r.jobsMu.Lock()
	defer r.jobsMu.Unlock()
	if len(r.Jobs) == 0 {
		return nil, false
	}
	job := r.Jobs[0]
	r.Jobs = r.Jobs[1:]
	return job, true
}

// DrainJobs runs every queued microtask to fixpoint, including jobs newly
// enqueued by jobs that ran earlier in the same drain (or by a
// generator/async goroutine that wakes up and settles a promise while
// this drain is still running).
func (r *Realm) DrainJobs() {
	for {
		job, ok := r.dequeueJob()
		if !ok {
			return
		}
		job()
	}
}
