// Package compiler lowers an internal/ast tree into internal/bytecode
// chunks: one per function-like unit, plus one for the top-level script or
// module. It resolves every identifier reference to a BindingLocator
// (local slot, upvalue, or global) at compile time, the same scope walk
// the VM's environment stack performs at run time.
package compiler

import (
	"fmt"

	"github.com/cwbudde/ecma/internal/ast"
	"github.com/cwbudde/ecma/internal/bytecode"
	"github.com/cwbudde/ecma/internal/intern"
)

// CompileError is a single compile-time diagnostic (an early error the
// specification requires to be reported before execution, e.g. duplicate
// let bindings or an assignment to an undeclared const).
type CompileError struct {
	Pos     ast.Node
	Message string
}

func (e CompileError) Error() string { return e.Message }

// loopCtx tracks the jump patch list for one enclosing loop or switch, so
// break and continue can patch to the exit/increment points once they are
// known. isSwitch marks a frame continue must skip past to find an actual
// loop: a switch statement's own frame, and also the zero-iteration frame
// compileLabeled installs for a label on a non-loop, non-switch statement
// (valid only as a break target, never a continue target).
type loopCtx struct {
	label         string
	isSwitch      bool
	breakJumps    []int
	continueJumps []int
	continueTo    int // already-known target for continue if set (e.g. for-loop update clause)
	tryDepth      int // len(c.tryStack) when this loop/switch was entered
}

// tryCtx records one enclosing try statement's finally block, so a
// break/continue/return compiled inside its try or catch body can inline
// the finally block's statements before actually transferring control.
// popCount is how many OpPushTry handler frames are still live on the VM's
// handler stack at the point this tryCtx is active (2 while compiling the
// try body of a try/catch/finally, 1 while compiling its catch body, since
// the catch handler frame is implicitly consumed by the jump to the catch
// target) — a break/continue/return that jumps past this tryCtx's normal
// OpPopTry instructions must emit that many OpPopTry itself, or the VM's
// handler stack would retain a stale entry for a try statement no longer
// lexically active.
type tryCtx struct {
	finally  *ast.BlockStatement
	popCount int
	// cleanup, when set, replaces finally as the inline-on-unwind action:
	// a for-of/spread/destructuring iterator's close-on-abrupt-completion
	// handler has no AST finally block to recompile, just a fixed bytecode
	// sequence (OpIteratorClose and whatever stack shuffling it needs).
	cleanup func(line int)
}

// Compiler walks one function-like AST body (or the top-level program) and
// emits a bytecode.Chunk for it, spawning a child Compiler per nested
// function.
type Compiler struct {
	chunk     *bytecode.Chunk
	enclosing *Compiler
	interner  *intern.Interner

	globals map[intern.Symbol]globalVar // shared by reference across the whole compile

	locals     []localVar
	upvalues   []upvalueDesc
	scopeDepth int
	nextSlot   uint16
	maxSlot    uint16

	isScript bool // true for the outermost script/module compiler: var/function hoist to globals, not locals
	isArrow  bool // true for arrow functions: this/arguments/new.target resolve through enclosing
	strict   bool

	loopStack []*loopCtx
	tryStack  []*tryCtx

	classDepth int // >0 while compiling inside a class body, for private-name resolution (future)

	errors []CompileError
}

// New creates a compiler for a top-level script or module.
func New(interner *intern.Interner, strict bool) *Compiler {
	return &Compiler{
		chunk:    bytecode.NewChunk("<script>"),
		interner: interner,
		globals:  make(map[intern.Symbol]globalVar),
		isScript: true,
		strict:   strict,
	}
}

func (c *Compiler) child(name string, isArrow bool) *Compiler {
	return &Compiler{
		chunk:     bytecode.NewChunk(name),
		enclosing: c,
		interner:  c.interner,
		globals:   c.globals,
		isArrow:   isArrow,
		strict:    c.strict,
	}
}

// Errors returns every compile error accumulated so far.
func (c *Compiler) Errors() []CompileError { return c.errors }

func (c *Compiler) errorf(node ast.Node, format string, args ...interface{}) {
	c.errors = append(c.errors, CompileError{Pos: node, Message: fmt.Sprintf(format, args...)})
}

func (c *Compiler) line(node ast.Node) int { return node.Pos().Line }

// Compile compiles a full program into its top-level chunk. Callers should
// check Errors() afterward; a non-empty error list means the chunk is not
// safe to run.
func Compile(prog *ast.Program, interner *intern.Interner) (*bytecode.Chunk, []CompileError) {
	c := New(interner, prog.IsStrict)
	c.hoistProgram(prog)
	for _, item := range prog.Body {
		c.compileModuleItem(item)
	}
	c.chunk.WriteSimple(bytecode.OpHalt, 0)
	c.chunk.LocalCount = int(c.maxSlot)
	return c.chunk, c.errors
}

func (c *Compiler) compileModuleItem(item ast.ModuleItem) {
	switch n := item.(type) {
	case *ast.StatementListItem:
		c.compileStatement(n.Item)
	default:
		// Import/export declarations: component J's module linker consumes
		// these separately from the evaluated chunk; nothing to emit here
		// beyond the already-hoisted bindings.
	}
}

// emitConstant adds value to the chunk's constant pool and emits
// OpLoadConst for it.
func (c *Compiler) emitConstant(value bytecode.Constant, line int) {
	idx := c.chunk.AddConstant(value)
	c.chunk.Write(bytecode.OpLoadConst, 0, uint16(idx), line)
}

func (c *Compiler) emitString(s string, line int) int {
	return c.chunk.AddConstant(bytecode.Constant{Kind: bytecode.ConstString, Str: s})
}

// emitGetBinding emits the load sequence for a resolved binding.
func (c *Compiler) emitGetBinding(loc BindingLocator, line int) {
	switch loc.Kind {
	case locatorLocal:
		c.chunk.Write(bytecode.OpGetLocal, 0, loc.Slot, line)
	case locatorUpvalue:
		c.chunk.Write(bytecode.OpGetUpvalue, 0, loc.Slot, line)
	default:
		idx := c.emitString(c.interner.MustLookup(loc.Sym), line)
		c.chunk.Write(bytecode.OpGetGlobal, 0, uint16(idx), line)
	}
}

// allocTemp reserves one local slot for a compiler-internal temporary (used
// to hold a member expression's object/key once so it is evaluated exactly
// once across a get-then-set sequence, e.g. compound assignment or ++/--
// on a computed member). Callers must freeTemp in the reverse order they
// were allocated, mirroring endScope's LIFO slot reuse.
func (c *Compiler) allocTemp() uint16 {
	slot := c.nextSlot
	c.nextSlot++
	if c.nextSlot > c.maxSlot {
		c.maxSlot = c.nextSlot
	}
	return slot
}

// freeTemp releases the most recently allocated temporary slot.
func (c *Compiler) freeTemp() { c.nextSlot-- }

// emitGetLocal/emitSetLocal read or write a raw local slot directly,
// bypassing BindingLocator resolution; used for compiler-internal
// temporaries that have no source-level binding.
func (c *Compiler) emitGetLocal(slot uint16, line int) {
	c.chunk.Write(bytecode.OpGetLocal, 0, slot, line)
}

func (c *Compiler) emitSetLocal(slot uint16, line int) {
	c.chunk.Write(bytecode.OpSetLocal, 0, slot, line)
}

// emitSetBinding emits the store sequence for a resolved binding, assuming
// the value to store is already on top of the stack.
func (c *Compiler) emitSetBinding(loc BindingLocator, line int) {
	switch loc.Kind {
	case locatorLocal:
		if !loc.Mutable {
			c.chunk.WriteSimple(bytecode.OpMutateImmutable, line)
			return
		}
		c.chunk.Write(bytecode.OpSetLocal, 0, loc.Slot, line)
	case locatorUpvalue:
		if !loc.Mutable {
			c.chunk.WriteSimple(bytecode.OpMutateImmutable, line)
			return
		}
		c.chunk.Write(bytecode.OpSetUpvalue, 0, loc.Slot, line)
	case locatorImmutableGlobal:
		c.chunk.WriteSimple(bytecode.OpMutateImmutable, line)
	default:
		idx := c.emitString(c.interner.MustLookup(loc.Sym), line)
		a := byte(0)
		if !c.strict {
			a = 1
		}
		c.chunk.Write(bytecode.OpSetGlobal, a, uint16(idx), line)
	}
}
