package compiler

import (
	"github.com/cwbudde/ecma/internal/ast"
	"github.com/cwbudde/ecma/internal/bytecode"
)

// bindPattern consumes the value currently on top of the stack, binding or
// assigning it to target. declare selects between creating a new binding
// (let/const/var/param/catch) and assigning to an existing one
// (destructuring assignment expressions); mutable controls whether a
// created binding is reassignable.
func (c *Compiler) bindPattern(target ast.Binding, declare bool, mutable bool) {
	switch t := target.(type) {
	case *ast.Identifier:
		c.bindIdentifier(t, declare, mutable)
	case *ast.ArrayPattern:
		c.bindArrayPattern(t, declare, mutable)
	case *ast.ObjectPattern:
		c.bindObjectPattern(t, declare, mutable)
	}
}

func (c *Compiler) bindIdentifier(id *ast.Identifier, declare bool, mutable bool) {
	line := id.Position.Line
	if !declare {
		loc := c.resolve(id.Sym)
		c.emitSetBinding(loc, line)
		return
	}
	if c.isScript {
		if _, ok := c.globals[id.Sym]; !ok {
			c.globals[id.Sym] = globalVar{sym: id.Sym, mutable: mutable}
		}
		idx := c.emitString(c.interner.MustLookup(id.Sym), line)
		c.chunk.Write(bytecode.OpSetGlobal, 1, uint16(idx), line)
		return
	}
	slot := c.declareLocal(id.Sym, mutable, true)
	c.chunk.Write(bytecode.OpInitLocal, 0, slot, line)
}

// bindArrayPattern destructures an iterable value via the iterator
// protocol: OpGetIterator once, then one OpIteratorNext per element
// (value/done both pushed; done is discarded since an exhausted iterator
// already yields undefined for value). The whole sequence runs under a
// runtime exception handler so a throw from a default-value expression or
// a nested binding's own property access still closes the iterator before
// the exception keeps propagating, the same way compileForInOf's handler
// does for a for-of loop body.
func (c *Compiler) bindArrayPattern(pat *ast.ArrayPattern, declare bool, mutable bool) {
	line := pat.Position.Line
	c.chunk.WriteSimple(bytecode.OpGetIterator, line)
	pushIdx := c.chunk.Write(bytecode.OpPushTry, 0, 0, line)
	for _, el := range pat.Elements {
		c.chunk.WriteSimple(bytecode.OpIteratorNext, line)
		c.chunk.WriteSimple(bytecode.OpPop, line) // discard done
		if el == nil {
			c.chunk.WriteSimple(bytecode.OpPop, line) // elision: discard value too
			continue
		}
		if el.Default != nil {
			c.chunk.WriteSimple(bytecode.OpDup, line)
			c.chunk.WriteSimple(bytecode.OpLoadUndefined, line)
			c.chunk.WriteSimple(bytecode.OpStrictEq, line)
			jump := c.chunk.EmitJump(bytecode.OpJumpIfFalse, line)
			c.chunk.WriteSimple(bytecode.OpPop, line)
			c.compileExpression(el.Default)
			_ = c.chunk.PatchJump(jump)
		}
		c.bindPattern(el.Target, declare, mutable)
	}
	if pat.Rest != nil {
		// Remaining elements: drain the iterator into a fresh array.
		c.chunk.Write(bytecode.OpNewArray, 0, 0, line)
		c.chunk.WriteSimple(bytecode.OpSwap, line)
		loopStart := c.chunk.InstructionCount()
		c.chunk.WriteSimple(bytecode.OpIteratorNext, line)
		exitJump := c.chunk.EmitJump(bytecode.OpJumpIfTrue, line)
		c.chunk.WriteSimple(bytecode.OpArraySpreadAppend, line)
		_ = c.chunk.EmitLoop(loopStart, line)
		_ = c.chunk.PatchJump(exitJump)
		c.chunk.WriteSimple(bytecode.OpPop, line) // the now-exhausted iterator
		c.bindPattern(pat.Rest, declare, mutable)
	} else {
		c.chunk.WriteSimple(bytecode.OpIteratorClose, line)
	}

	c.closeDestructureHandler(pushIdx, line)
}

func (c *Compiler) bindObjectPattern(pat *ast.ObjectPattern, declare bool, mutable bool) {
	line := pat.Position.Line
	seen := make([]string, 0, len(pat.Properties))
	for _, p := range pat.Properties {
		c.chunk.WriteSimple(bytecode.OpDup, line)
		if p.Computed {
			c.compileExpression(p.Key)
			c.chunk.WriteSimple(bytecode.OpGetPropComputed, line)
		} else {
			name := propertyKeyName(p.Key)
			seen = append(seen, name)
			idx := c.emitString(name, line)
			c.chunk.Write(bytecode.OpGetProp, 0, uint16(idx), line)
		}
		if p.Default != nil {
			c.chunk.WriteSimple(bytecode.OpDup, line)
			c.chunk.WriteSimple(bytecode.OpLoadUndefined, line)
			c.chunk.WriteSimple(bytecode.OpStrictEq, line)
			jump := c.chunk.EmitJump(bytecode.OpJumpIfFalse, line)
			c.chunk.WriteSimple(bytecode.OpPop, line)
			c.compileExpression(p.Default)
			_ = c.chunk.PatchJump(jump)
		}
		c.bindPattern(p.Target, declare, mutable)
	}
	if pat.Rest != nil {
		c.chunk.WriteSimple(bytecode.OpDup, line)
		c.chunk.WriteSimple(bytecode.OpNewObject, line)
		c.chunk.WriteSimple(bytecode.OpSwap, line)
		c.chunk.WriteSimple(bytecode.OpObjectSpreadAppend, line)
		for _, name := range seen {
			idx := c.emitString(name, line)
			c.chunk.Write(bytecode.OpDeleteProp, 0, uint16(idx), line)
		}
		c.bindPattern(pat.Rest, declare, mutable)
	}
	c.chunk.WriteSimple(bytecode.OpPop, line) // the source object
}

// propertyKeyName extracts a static string key from a Property/PatternElement
// key expression (Identifier or StringLiteral/NumberLiteral).
func propertyKeyName(key ast.Expression) string {
	switch k := key.(type) {
	case *ast.Identifier:
		return k.Name
	case *ast.StringLiteral:
		return k.Value
	case *ast.NumberLiteral:
		return k.Raw
	default:
		return key.String()
	}
}
