package compiler

import (
	"github.com/cwbudde/ecma/internal/ast"
	"github.com/cwbudde/ecma/internal/bytecode"
)

// compileDestructureAssign consumes the value on top of the stack and
// assigns it into target: an identifier, a member expression, or a nested
// array/object destructuring pattern. This is the assignment-expression
// counterpart to bindPattern — it operates on arbitrary ast.Expression
// assignment targets (member expressions, already-declared bindings)
// rather than ast.Binding declaration patterns, since `[a.x, b[0]] = arr`
// is valid destructuring assignment but a.x/b[0] are not ast.Binding nodes.
func (c *Compiler) compileDestructureAssign(target ast.Expression, line int) {
	switch t := target.(type) {
	case *ast.Identifier:
		loc := c.resolve(t.Sym)
		c.emitSetBinding(loc, line)
	case *ast.MemberExpression:
		c.assignMemberFromStack(t, line)
	case *ast.ArrayLiteral:
		c.destructureArrayLiteral(t)
	case *ast.ObjectLiteral:
		c.destructureObjectLiteral(t)
	default:
		c.errorf(target, "invalid destructuring assignment target")
	}
}

// assignMemberFromStack assigns the value already on top of the stack into
// a member expression target. The value is stashed in a temp slot while the
// object (and key, if computed) is evaluated underneath it, exactly once,
// left to right — mirroring compileCompoundAssign's temp-slot reordering
// since no stack-rotation primitive exists to move a 3rd-from-top value
// back to the top.
func (c *Compiler) assignMemberFromStack(t *ast.MemberExpression, line int) {
	tVal := c.allocTemp()
	c.emitSetLocal(tVal, line)

	if _, ok := t.Object.(*ast.SuperExpression); ok {
		c.chunk.WriteSimple(bytecode.OpLoadThis, line)
		if t.Computed {
			c.compileExpression(t.Property)
			c.emitGetLocal(tVal, line)
			c.chunk.WriteSimple(bytecode.OpSetSuperPropComputed, line)
		} else {
			c.emitGetLocal(tVal, line)
			idx := c.emitString(propertyKeyName(t.Property), line)
			c.chunk.Write(bytecode.OpSetSuperProp, 0, uint16(idx), line)
		}
		c.chunk.WriteSimple(bytecode.OpPop, line) // discard Set's pushed-back value
		c.freeTemp()
		return
	}

	c.compileExpression(t.Object)
	if t.Computed {
		c.compileExpression(t.Property)
		c.emitGetLocal(tVal, line)
		c.chunk.WriteSimple(bytecode.OpSetPropComputed, line)
	} else {
		c.emitGetLocal(tVal, line)
		idx := c.emitString(propertyKeyName(t.Property), line)
		c.chunk.Write(bytecode.OpSetProp, 0, uint16(idx), line)
	}
	c.chunk.WriteSimple(bytecode.OpPop, line)
	c.freeTemp()
}

// destructureTargetAndDefault unwraps a `target = default` AssignExpression
// wrapper, the AST shape parsers use for destructuring defaults (e.g. the
// `a = 1` inside `[a = 1] = arr` or `{a = 1} = obj`).
func destructureTargetAndDefault(e ast.Expression) (ast.Expression, ast.Expression) {
	if assign, ok := e.(*ast.AssignExpression); ok && assign.Operator == "=" {
		return assign.Target, assign.Value
	}
	return e, nil
}

// destructureArrayLiteral mirrors bindArrayPattern's iterator-protocol walk,
// but over an ArrayLiteral's arbitrary-expression elements: plain
// identifier/member/nested-pattern targets, AssignExpression-wrapped
// defaults, a trailing SpreadElement rest, and nil elisions. As in
// bindArrayPattern, the walk runs under a runtime exception handler so a
// throw from a default-value expression or an assignment target's own
// evaluation (e.g. a getter in `[a.x] = arr`) still closes the iterator
// before the exception keeps propagating.
func (c *Compiler) destructureArrayLiteral(lit *ast.ArrayLiteral) {
	line := lit.Position.Line
	c.chunk.WriteSimple(bytecode.OpGetIterator, line)
	pushIdx := c.chunk.Write(bytecode.OpPushTry, 0, 0, line)

	for _, el := range lit.Elements {
		if spread, ok := el.(*ast.SpreadElement); ok {
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
			c.compileDestructureAssign(spread.Argument, line)
			c.closeDestructureHandler(pushIdx, line)
			return
		}

		c.chunk.WriteSimple(bytecode.OpIteratorNext, line)
		c.chunk.WriteSimple(bytecode.OpPop, line) // discard done
		if el == nil {
			c.chunk.WriteSimple(bytecode.OpPop, line) // elision: discard value too
			continue
		}
		target, defaultExpr := destructureTargetAndDefault(el)
		if defaultExpr != nil {
			c.chunk.WriteSimple(bytecode.OpDup, line)
			c.chunk.WriteSimple(bytecode.OpLoadUndefined, line)
			c.chunk.WriteSimple(bytecode.OpStrictEq, line)
			jump := c.chunk.EmitJump(bytecode.OpJumpIfFalse, line)
			c.chunk.WriteSimple(bytecode.OpPop, line)
			c.compileExpression(defaultExpr)
			_ = c.chunk.PatchJump(jump)
		}
		c.compileDestructureAssign(target, line)
	}
	c.chunk.WriteSimple(bytecode.OpIteratorClose, line)
	c.closeDestructureHandler(pushIdx, line)
}

// closeDestructureHandler emits the normal-completion exit and the
// finally-target handler for a destructuring walk's iterator-close try
// region opened with OpPushTry at pushIdx. On an abrupt completion (a
// throw from inside the region) the handler closes the iterator before
// re-throwing; on normal completion the iterator has already been closed
// (or handed off as the rest array) by the region itself, so the handler
// only needs to pop the try frame and skip past.
func (c *Compiler) closeDestructureHandler(pushIdx int, line int) {
	c.chunk.WriteSimple(bytecode.OpPopTry, line)
	normalEnd := c.chunk.EmitJump(bytecode.OpJump, line)

	finallyTarget := c.chunk.InstructionCount()
	excSlot := c.allocTemp()
	c.emitSetLocal(excSlot, line)
	c.chunk.WriteSimple(bytecode.OpIteratorClose, line)
	c.emitGetLocal(excSlot, line)
	c.chunk.WriteSimple(bytecode.OpThrow, line)
	c.freeTemp()
	c.chunk.SetTryInfo(pushIdx, bytecode.TryInfo{HasFinally: true, FinallyTarget: finallyTarget})

	_ = c.chunk.PatchJump(normalEnd)
}

// destructureObjectLiteral mirrors bindObjectPattern over an ObjectLiteral's
// properties: computed keys, AssignExpression-wrapped defaults, and a
// trailing PropertySpread rest.
func (c *Compiler) destructureObjectLiteral(lit *ast.ObjectLiteral) {
	line := lit.Position.Line
	seen := make([]string, 0, len(lit.Properties))
	for _, p := range lit.Properties {
		if p.Kind == ast.PropertySpread {
			continue
		}
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
		target, defaultExpr := destructureTargetAndDefault(p.Value)
		if defaultExpr != nil {
			c.chunk.WriteSimple(bytecode.OpDup, line)
			c.chunk.WriteSimple(bytecode.OpLoadUndefined, line)
			c.chunk.WriteSimple(bytecode.OpStrictEq, line)
			jump := c.chunk.EmitJump(bytecode.OpJumpIfFalse, line)
			c.chunk.WriteSimple(bytecode.OpPop, line)
			c.compileExpression(defaultExpr)
			_ = c.chunk.PatchJump(jump)
		}
		c.compileDestructureAssign(target, line)
	}
	for _, p := range lit.Properties {
		if p.Kind != ast.PropertySpread {
			continue
		}
		c.chunk.WriteSimple(bytecode.OpDup, line)
		c.chunk.WriteSimple(bytecode.OpNewObject, line)
		c.chunk.WriteSimple(bytecode.OpSwap, line)
		c.chunk.WriteSimple(bytecode.OpObjectSpreadAppend, line)
		for _, name := range seen {
			idx := c.emitString(name, line)
			c.chunk.Write(bytecode.OpDeleteProp, 0, uint16(idx), line)
		}
		c.compileDestructureAssign(p.Value, line)
	}
	c.chunk.WriteSimple(bytecode.OpPop, line) // the source object
}
