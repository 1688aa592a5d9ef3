package vm

import (
	"github.com/cwbudde/ecma/internal/bytecode"
	"github.com/cwbudde/ecma/internal/value"
)

// frame is one call frame in the VM's call stack, the bytecode equivalent
// of the teacher's callFrame (internal/bytecode.callFrame: chunk/closure/
// locals/ip). Locals are individually heap-allocated cells
// (`[]*value.Value`, not `[]value.Value`) so that capturing one as an
// upvalue is a plain pointer copy: a closure keeps its captured cell alive
// for as long as it holds the pointer, and two closures created in the
// same scope share mutations through the same cell automatically. This
// replaces the teacher's manual open/closed-upvalue machinery
// (captureUpvalue/closeUpvaluesForFrame) with nothing at all — Go's
// garbage collector already does the job.
type frame struct {
	chunk *bytecode.Chunk
	ip    int

	locals   []*value.Value
	upvalues []*value.Value

	fn     *value.Object // the closure object running this frame, nil for the top-level script
	this   value.Value
	newTgt *value.Object // non-nil only inside a [[Construct]] invocation

	// thisInitialized is false only for a derived-class constructor frame
	// before its super() call has returned; every other frame (including
	// base-class constructors and the top-level script) starts true.
	thisInitialized bool

	// returned/returnValue communicate an OpReturn/OpHalt back to runLoop
	// without a second dispatch loop shape.
	returned    bool
	returnValue value.Value

	// homeObject backs `super` property lookups and super() calls inside
	// methods/constructors (§4.F "OpGetSuperProp"/"OpSuperCall"); nil
	// outside a class body.
	homeObject *value.Object
	parentCtor *value.Object // the superclass constructor, for OpSuperCall/OpSuperCallSpread

	// pendingFieldInit holds the subclass instance field initializers that
	// must run immediately after `super(...)` returns, per class-fields
	// semantics (§3 "instance fields initialize in declaration order right
	// after the super call returns, or immediately in a base class").
	pendingFieldInit []bytecode.MethodTemplate

	// gen is non-nil when this frame belongs to a generator function body
	// running on its own goroutine coroutine (component I, "Generators and
	// async").
	gen *generatorState

	// asyncGate is non-nil only on the outermost frame of an async
	// function activation, for exactly as long as that activation has not
	// yet reached its first OpAwait (or returned without ever awaiting):
	// runAsync blocks on it once to learn whether the synchronous prefix
	// of the call finished outright or suspended, the same rendezvous
	// opYield/the generator launcher use, then never touches it again.
	asyncGate chan asyncSignal
}

func newFrame(chunk *bytecode.Chunk, fn *value.Object, this value.Value, newTgt *value.Object, homeObject, parentCtor *value.Object) *frame {
	locals := make([]*value.Value, chunk.LocalCount)
	for i := range locals {
		u := value.Value(value.U)
		locals[i] = &u
	}
	return &frame{
		chunk:      chunk,
		locals:     locals,
		fn:         fn,
		this:       this,
		newTgt:     newTgt,
		homeObject: homeObject,
		parentCtor: parentCtor,
	}
}

func (f *frame) getLocal(slot uint16) value.Value  { return *f.locals[slot] }
func (f *frame) setLocal(slot uint16, v value.Value) { *f.locals[slot] = v }
