package compiler

import "github.com/cwbudde/ecma/internal/intern"

// localVar is one slot in the current function's stack frame.
type localVar struct {
	sym         intern.Symbol
	slot        uint16
	depth       int
	mutable     bool
	initialized bool // false between binding creation and its let/const init point (TDZ)
	captured    bool // true once some nested closure captures this as an upvalue
}

// upvalueDesc is one entry of a function's upvalue list, resolved once at
// compile time the same way the VM will close over it at run time.
type upvalueDesc struct {
	sym             intern.Symbol
	fromParentLocal bool
	index           uint16
	mutable         bool
}

// globalVar records a compile-time global binding: name plus whether it
// was declared const (mutation resolves to OpMutateImmutable instead of
// OpSetGlobal).
type globalVar struct {
	sym     intern.Symbol
	mutable bool
}

// declareLocal reserves the next local slot in the current function scope
// for sym and returns it. Redeclaration at the same depth (e.g. `var` seen
// twice) reuses the existing slot instead of allocating a new one.
func (c *Compiler) declareLocal(sym intern.Symbol, mutable bool, initialized bool) uint16 {
	for i := range c.locals {
		if c.locals[i].sym == sym && c.locals[i].depth == c.scopeDepth {
			c.locals[i].initialized = c.locals[i].initialized || initialized
			return c.locals[i].slot
		}
	}
	slot := c.nextSlot
	c.nextSlot++
	if c.nextSlot > c.maxSlot {
		c.maxSlot = c.nextSlot
	}
	c.locals = append(c.locals, localVar{sym: sym, slot: slot, depth: c.scopeDepth, mutable: mutable, initialized: initialized})
	return slot
}

// beginScope increases the lexical block depth.
func (c *Compiler) beginScope() { c.scopeDepth++ }

// endScope pops every local declared at the current depth, freeing their
// slots for reuse by sibling blocks.
func (c *Compiler) endScope() {
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth == c.scopeDepth {
		c.locals = c.locals[:len(c.locals)-1]
		c.nextSlot--
	}
	c.scopeDepth--
}

// resolveLocal finds sym among the current function's own locals.
func (c *Compiler) resolveLocal(sym intern.Symbol) (*localVar, bool) {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].sym == sym {
			return &c.locals[i], true
		}
	}
	return nil, false
}

// resolveUpvalue finds sym in an enclosing function, adding upvalue chain
// entries through every intermediate function compiler so the closure can
// capture it, and returns this compiler's upvalue index for it.
func (c *Compiler) resolveUpvalue(sym intern.Symbol) (uint16, bool) {
	if c.enclosing == nil {
		return 0, false
	}
	if local, ok := c.enclosing.resolveLocal(sym); ok {
		local.captured = true
		return c.addUpvalue(sym, true, local.slot, local.mutable), true
	}
	if idx, ok := c.enclosing.resolveUpvalue(sym); ok {
		mutable := c.enclosing.upvalues[idx].mutable
		return c.addUpvalue(sym, false, idx, mutable), true
	}
	return 0, false
}

func (c *Compiler) addUpvalue(sym intern.Symbol, fromParentLocal bool, index uint16, mutable bool) uint16 {
	for i, uv := range c.upvalues {
		if uv.sym == sym && uv.fromParentLocal == fromParentLocal && uv.index == index {
			return uint16(i)
		}
	}
	c.upvalues = append(c.upvalues, upvalueDesc{sym: sym, fromParentLocal: fromParentLocal, index: index, mutable: mutable})
	return uint16(len(c.upvalues) - 1)
}

// bindingLocatorKind identifies where a resolved name lives.
type bindingLocatorKind int

const (
	locatorLocal bindingLocatorKind = iota
	locatorUpvalue
	locatorGlobal
	locatorImmutableGlobal
	locatorUnresolved
)

// BindingLocator is the result of resolving an identifier against the
// current scope chain: a local slot, an upvalue index, or a global name.
type BindingLocator struct {
	Kind    bindingLocatorKind
	Slot    uint16
	Sym     intern.Symbol
	Mutable bool
}

// resolve walks locals, then enclosing-function upvalues, then falls back
// to a global binding (declared or implicit).
func (c *Compiler) resolve(sym intern.Symbol) BindingLocator {
	if local, ok := c.resolveLocal(sym); ok {
		return BindingLocator{Kind: locatorLocal, Slot: local.slot, Sym: sym, Mutable: local.mutable}
	}
	if idx, ok := c.resolveUpvalue(sym); ok {
		return BindingLocator{Kind: locatorUpvalue, Slot: idx, Sym: sym, Mutable: c.upvalues[idx].mutable}
	}
	if g, ok := c.globals[sym]; ok {
		kind := locatorGlobal
		if !g.mutable {
			kind = locatorImmutableGlobal
		}
		return BindingLocator{Kind: kind, Sym: sym, Mutable: g.mutable}
	}
	return BindingLocator{Kind: locatorUnresolved, Sym: sym, Mutable: true}
}
