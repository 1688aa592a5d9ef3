package compiler

import (
	"github.com/cwbudde/ecma/internal/ast"
	"github.com/cwbudde/ecma/internal/bytecode"
)

var binaryOps = map[string]bytecode.OpCode{
	"+": bytecode.OpAdd, "-": bytecode.OpSub, "*": bytecode.OpMul, "/": bytecode.OpDiv,
	"%": bytecode.OpMod, "**": bytecode.OpExp,
	"==": bytecode.OpEq, "!=": bytecode.OpNotEq, "===": bytecode.OpStrictEq, "!==": bytecode.OpStrictNotEq,
	"<": bytecode.OpLess, "<=": bytecode.OpLessEqual, ">": bytecode.OpGreater, ">=": bytecode.OpGreaterEqual,
	"instanceof": bytecode.OpInstanceOf, "in": bytecode.OpIn,
	"&": bytecode.OpBitAnd, "|": bytecode.OpBitOr, "^": bytecode.OpBitXor,
	"<<": bytecode.OpShl, ">>": bytecode.OpShr, ">>>": bytecode.OpUShr,
}

var compoundOps = map[string]bytecode.OpCode{
	"+=": bytecode.OpAdd, "-=": bytecode.OpSub, "*=": bytecode.OpMul, "/=": bytecode.OpDiv,
	"%=": bytecode.OpMod, "**=": bytecode.OpExp,
	"&=": bytecode.OpBitAnd, "|=": bytecode.OpBitOr, "^=": bytecode.OpBitXor,
	"<<=": bytecode.OpShl, ">>=": bytecode.OpShr, ">>>=": bytecode.OpUShr,
}

// compileExpression lowers a single expression, leaving exactly one value
// on the stack.
func (c *Compiler) compileExpression(expr ast.Expression) {
	line := c.line(expr)
	switch n := expr.(type) {
	case *ast.NumberLiteral:
		c.emitConstant(bytecode.Constant{Kind: bytecode.ConstNumber, Number: n.Value}, line)
	case *ast.BigIntLiteral:
		c.emitConstant(bytecode.Constant{Kind: bytecode.ConstBigInt, BigInt: n.Raw}, line)
	case *ast.StringLiteral:
		idx := c.emitString(n.Value, line)
		c.chunk.Write(bytecode.OpLoadConst, 0, uint16(idx), line)
	case *ast.BoolLiteral:
		if n.Value {
			c.chunk.WriteSimple(bytecode.OpLoadTrue, line)
		} else {
			c.chunk.WriteSimple(bytecode.OpLoadFalse, line)
		}
	case *ast.NullLiteral:
		c.chunk.WriteSimple(bytecode.OpLoadNull, line)
	case *ast.UndefinedLiteral:
		c.chunk.WriteSimple(bytecode.OpLoadUndefined, line)
	case *ast.RegexLiteral:
		idx := c.chunk.AddConstant(bytecode.Constant{Kind: bytecode.ConstRegExp, Str: n.Pattern + "\x00" + n.Flags})
		c.chunk.Write(bytecode.OpLoadConst, 0, uint16(idx), line)
	case *ast.ThisExpression:
		c.chunk.WriteSimple(bytecode.OpLoadThis, line)
	case *ast.NewTargetExpression:
		c.chunk.WriteSimple(bytecode.OpLoadNewTarget, line)
	case *ast.Identifier:
		loc := c.resolve(n.Sym)
		c.emitGetBinding(loc, line)
	case *ast.TemplateLiteral:
		c.compileTemplateLiteral(n)
	case *ast.TaggedTemplateExpression:
		c.compileTaggedTemplate(n)
	case *ast.ArrayLiteral:
		c.compileArrayLiteral(n)
	case *ast.ObjectLiteral:
		c.compileObjectLiteral(n)
	case *ast.BinaryExpression:
		c.compileExpression(n.Left)
		c.compileExpression(n.Right)
		op, ok := binaryOps[n.Operator]
		if !ok {
			c.errorf(n, "unsupported binary operator %q", n.Operator)
			return
		}
		c.chunk.WriteSimple(op, line)
	case *ast.LogicalExpression:
		c.compileLogical(n)
	case *ast.UnaryExpression:
		c.compileUnary(n)
	case *ast.UpdateExpression:
		c.compileUpdate(n)
	case *ast.AssignExpression:
		c.compileAssign(n)
	case *ast.ConditionalExpression:
		c.compileConditional(n)
	case *ast.SequenceExpression:
		for i, e := range n.Expressions {
			if i > 0 {
				c.chunk.WriteSimple(bytecode.OpPop, line)
			}
			c.compileExpression(e)
		}
	case *ast.MemberExpression:
		c.compileMember(n, false)
	case *ast.CallExpression:
		c.compileCall(n)
	case *ast.NewExpression:
		c.compileNew(n)
	case *ast.SuperCallExpression:
		c.compileSuperCall(n)
	case *ast.SuperExpression:
		// Bare `super` only ever appears as the object of a member access or
		// the callee of a super call; both are handled directly by their
		// parent node without recursing through here.
		c.errorf(n, "'super' keyword is only valid inside a class")
	case *ast.FunctionExpression:
		c.compileFunctionLike(n.FunctionLike)
	case *ast.ArrowFunctionExpression:
		c.compileFunctionLike(n.FunctionLike)
	case *ast.ClassExpression:
		c.compileClassLike(n.Name, n.SuperClass, n.Body, line)
	case *ast.YieldExpression:
		c.compileYield(n)
	case *ast.AwaitExpression:
		c.compileExpression(n.Argument)
		c.chunk.WriteSimple(bytecode.OpAwait, line)
	case *ast.SpreadElement:
		// Only reachable through call-argument/array-literal handling, which
		// special-case SpreadElement before recursing into compileExpression.
		c.errorf(n, "unexpected spread element")
	default:
		c.errorf(expr, "compiler: unhandled expression %T", expr)
	}
}

func (c *Compiler) compileTemplateLiteral(n *ast.TemplateLiteral) {
	line := c.line(n)
	idx := c.emitString(n.Quasis[0].Cooked, line)
	c.chunk.Write(bytecode.OpLoadConst, 0, uint16(idx), line)
	for i, expr := range n.Expressions {
		c.compileExpression(expr)
		c.chunk.WriteSimple(bytecode.OpAdd, line)
		tail := n.Quasis[i+1]
		tidx := c.emitString(tail.Cooked, line)
		c.chunk.Write(bytecode.OpLoadConst, 0, uint16(tidx), line)
		c.chunk.WriteSimple(bytecode.OpAdd, line)
	}
}

// appendSingle consumes a value sitting on top of an array (stack: arr,
// value) and appends it as one element, by first wrapping it in a
// throwaway one-element array and spreading that. OpNewArray/
// OpArraySpreadAppend are the only array-construction primitives, so a
// "push one non-spread element" step is built from them rather than
// needing its own opcode.
func (c *Compiler) appendSingle(line int) {
	c.chunk.Write(bytecode.OpNewArray, 0, 1, line)
	c.chunk.WriteSimple(bytecode.OpArraySpreadAppend, line)
}

func (c *Compiler) compileTaggedTemplate(n *ast.TaggedTemplateExpression) {
	line := c.line(n)
	c.chunk.WriteSimple(bytecode.OpLoadUndefined, line) // this, for a plain call
	c.compileExpression(n.Tag)
	c.chunk.Write(bytecode.OpNewArray, 0, 0, line)
	for _, q := range n.Quasi.Quasis {
		idx := c.emitString(q.Cooked, line)
		c.chunk.Write(bytecode.OpLoadConst, 0, uint16(idx), line)
		c.appendSingle(line)
	}
	c.chunk.Write(bytecode.OpNewArray, 0, 0, line)
	for _, q := range n.Quasi.Quasis {
		idx := c.emitString(q.Raw, line)
		c.chunk.Write(bytecode.OpLoadConst, 0, uint16(idx), line)
		c.appendSingle(line)
	}
	ridx := c.emitString("raw", line)
	c.chunk.Write(bytecode.OpDefineProp, 0, uint16(ridx), line)

	for _, expr := range n.Quasi.Expressions {
		c.compileExpression(expr)
	}
	c.chunk.Write(bytecode.OpCall, byte(1+len(n.Quasi.Expressions)), 0, line)
}

func (c *Compiler) compileArrayLiteral(n *ast.ArrayLiteral) {
	line := c.line(n)
	c.chunk.Write(bytecode.OpNewArray, 0, 0, line)
	for _, el := range n.Elements {
		if el == nil {
			// Elisions are approximated as undefined elements rather than
			// true sparse holes.
			c.chunk.WriteSimple(bytecode.OpLoadUndefined, line)
			c.appendSingle(line)
			continue
		}
		if spread, ok := el.(*ast.SpreadElement); ok {
			c.compileExpression(spread.Argument)
			c.chunk.WriteSimple(bytecode.OpArraySpreadAppend, line)
			continue
		}
		c.compileExpression(el)
		c.appendSingle(line)
	}
}

func (c *Compiler) compileObjectLiteral(n *ast.ObjectLiteral) {
	line := c.line(n)
	c.chunk.WriteSimple(bytecode.OpNewObject, line)
	for _, p := range n.Properties {
		switch p.Kind {
		case ast.PropertySpread:
			c.compileExpression(p.Value)
			c.chunk.WriteSimple(bytecode.OpObjectSpreadAppend, line)
		case ast.PropertyGet, ast.PropertySet:
			fn := p.Value.(*ast.FunctionExpression)
			c.compileFunctionLike(fn.FunctionLike)
			op, computedOp := bytecode.OpDefineGetter, bytecode.OpDefineGetterComputed
			if p.Kind == ast.PropertySet {
				op, computedOp = bytecode.OpDefineSetter, bytecode.OpDefineSetterComputed
			}
			c.defineKeyed(p.Key, p.Computed, op, computedOp, line)
		case ast.PropertyMethod:
			fn := p.Value.(*ast.FunctionExpression)
			c.compileFunctionLike(fn.FunctionLike)
			c.defineKeyed(p.Key, p.Computed, bytecode.OpDefineMethod, bytecode.OpDefineMethodComputed, line)
		default: // PropertyInit, including shorthand
			c.compileExpression(p.Value)
			c.defineKeyed(p.Key, p.Computed, bytecode.OpDefineProp, bytecode.OpDefinePropComputed, line)
		}
	}
}

// defineKeyed consumes the value on top of the stack (with the object just
// beneath it) and attaches it under key via op (static key) or computedOp
// (key is compiled first; stack becomes object, key, value before the
// computed opcode runs).
func (c *Compiler) defineKeyed(key ast.Expression, computed bool, op, computedOp bytecode.OpCode, line int) {
	if computed {
		// Stack is currently obj, value. Stash the value, evaluate the key,
		// then restore it: obj, value -> obj, key, value.
		tmp := c.allocTemp()
		c.emitSetLocal(tmp, line)
		c.compileExpression(key)
		c.emitGetLocal(tmp, line)
		c.freeTemp()
		c.chunk.WriteSimple(computedOp, line)
		return
	}
	idx := c.emitString(propertyKeyName(key), line)
	c.chunk.Write(op, 0, uint16(idx), line)
}

func (c *Compiler) compileLogical(n *ast.LogicalExpression) {
	line := c.line(n)
	c.compileExpression(n.Left)
	var jump int
	switch n.Operator {
	case "&&":
		jump = c.chunk.EmitJump(bytecode.OpJumpIfFalseNoPop, line)
	case "||":
		jump = c.chunk.EmitJump(bytecode.OpJumpIfTrueNoPop, line)
	case "??":
		jump = c.chunk.EmitJump(bytecode.OpJumpIfNotNullishNoPop, line)
	default:
		c.errorf(n, "unsupported logical operator %q", n.Operator)
		return
	}
	c.chunk.WriteSimple(bytecode.OpPop, line)
	c.compileExpression(n.Right)
	_ = c.chunk.PatchJump(jump)
}

func (c *Compiler) compileUnary(n *ast.UnaryExpression) {
	line := c.line(n)
	switch n.Operator {
	case "typeof":
		if id, ok := n.Operand.(*ast.Identifier); ok {
			loc := c.resolve(id.Sym)
			if loc.Kind == locatorUnresolved {
				idx := c.emitString(id.Name, line)
				c.chunk.Write(bytecode.OpGetGlobal, 1, uint16(idx), line)
				c.chunk.WriteSimple(bytecode.OpTypeof, line)
				return
			}
		}
		c.compileExpression(n.Operand)
		c.chunk.WriteSimple(bytecode.OpTypeof, line)
	case "void":
		c.compileExpression(n.Operand)
		c.chunk.WriteSimple(bytecode.OpPop, line)
		c.chunk.WriteSimple(bytecode.OpLoadUndefined, line)
	case "delete":
		c.compileDelete(n.Operand, line)
	case "!":
		c.compileExpression(n.Operand)
		c.chunk.WriteSimple(bytecode.OpNot, line)
	case "-":
		c.compileExpression(n.Operand)
		c.chunk.WriteSimple(bytecode.OpNeg, line)
	case "+":
		c.compileExpression(n.Operand)
		c.chunk.WriteSimple(bytecode.OpPos, line)
	case "~":
		c.compileExpression(n.Operand)
		c.chunk.WriteSimple(bytecode.OpBitNot, line)
	default:
		c.errorf(n, "unsupported unary operator %q", n.Operator)
	}
}

func (c *Compiler) compileDelete(target ast.Expression, line int) {
	m, ok := target.(*ast.MemberExpression)
	if !ok {
		// delete on a non-member reference is a no-op `true` in non-strict
		// code (and a SyntaxError in strict code, rejected by the parser's
		// early-error pass rather than here).
		c.chunk.WriteSimple(bytecode.OpLoadTrue, line)
		return
	}
	c.compileExpression(m.Object)
	if m.Computed {
		c.compileExpression(m.Property)
		c.chunk.WriteSimple(bytecode.OpDeletePropComputed, line)
		return
	}
	idx := c.emitString(propertyKeyName(m.Property), line)
	c.chunk.Write(bytecode.OpDeleteProp, 0, uint16(idx), line)
}

// compileUpdate implements prefix/postfix ++/--. Identifier targets use the
// binding get/set opcodes directly; member targets stash the object (and,
// for computed access, the key) in temporary local slots so they are
// evaluated exactly once despite being needed for both the get and the set.
func (c *Compiler) compileUpdate(n *ast.UpdateExpression) {
	line := c.line(n)
	op := bytecode.OpAdd
	if n.Operator == "--" {
		op = bytecode.OpSub
	}
	one := bytecode.Constant{Kind: bytecode.ConstNumber, Number: 1}

	switch target := n.Operand.(type) {
	case *ast.Identifier:
		loc := c.resolve(target.Sym)
		c.emitGetBinding(loc, line)
		c.chunk.WriteSimple(bytecode.OpPos, line)
		if !n.Prefix {
			c.chunk.WriteSimple(bytecode.OpDup, line)
		}
		c.emitConstant(one, line)
		c.chunk.WriteSimple(op, line)
		if n.Prefix {
			c.chunk.WriteSimple(bytecode.OpDup, line)
		}
		c.emitSetBinding(loc, line)
		if n.Prefix {
			c.chunk.WriteSimple(bytecode.OpPop, line)
		}

	case *ast.MemberExpression:
		tObj := c.allocTemp()
		c.compileExpression(target.Object)
		c.emitSetLocal(tObj, line)

		computed := target.Computed
		var tKey uint16
		if computed {
			tKey = c.allocTemp()
			c.compileExpression(target.Property)
			c.emitSetLocal(tKey, line)
		}

		c.emitGetLocal(tObj, line)
		if computed {
			c.emitGetLocal(tKey, line)
			c.chunk.WriteSimple(bytecode.OpGetPropComputed, line)
		} else {
			idx := c.emitString(propertyKeyName(target.Property), line)
			c.chunk.Write(bytecode.OpGetProp, 0, uint16(idx), line)
		}
		c.chunk.WriteSimple(bytecode.OpPos, line)
		if !n.Prefix {
			c.chunk.WriteSimple(bytecode.OpDup, line)
		}
		c.emitConstant(one, line)
		c.chunk.WriteSimple(op, line)

		tNew := c.allocTemp()
		c.emitSetLocal(tNew, line)

		c.emitGetLocal(tObj, line)
		if computed {
			c.emitGetLocal(tKey, line)
			c.emitGetLocal(tNew, line)
			c.chunk.WriteSimple(bytecode.OpSetPropComputed, line)
		} else {
			c.emitGetLocal(tNew, line)
			idx := c.emitString(propertyKeyName(target.Property), line)
			c.chunk.Write(bytecode.OpSetProp, 0, uint16(idx), line)
		}
		c.chunk.WriteSimple(bytecode.OpPop, line)

		if n.Prefix {
			c.emitGetLocal(tNew, line)
		}
		c.freeTemp() // tNew
		if computed {
			c.freeTemp() // tKey
		}
		c.freeTemp() // tObj

	default:
		c.errorf(n, "invalid update target")
	}
}

func (c *Compiler) compileAssign(n *ast.AssignExpression) {
	line := c.line(n)

	if isPattern(n.Target) {
		c.compileExpression(n.Value)
		c.chunk.WriteSimple(bytecode.OpDup, line)
		c.compileDestructureAssign(n.Target, line)
		return
	}

	switch {
	case n.Operator == "=":
		c.compileSimpleAssign(n.Target, n.Value, line)
	case n.Operator == "&&=" || n.Operator == "||=" || n.Operator == "??=":
		c.compileLogicalAssign(n, line)
	default:
		op, ok := compoundOps[n.Operator]
		if !ok {
			c.errorf(n, "unsupported assignment operator %q", n.Operator)
			return
		}
		c.compileCompoundAssign(n.Target, n.Value, op, line)
	}
}

func isPattern(e ast.Expression) bool {
	switch e.(type) {
	case *ast.ArrayLiteral, *ast.ObjectLiteral:
		return true
	}
	return false
}

// compileSimpleAssign evaluates target's reference components, then value,
// then stores, leaving value on the stack. Left-to-right evaluation order
// (object, key, value) matches the specification's assignment semantics.
func (c *Compiler) compileSimpleAssign(target, value ast.Expression, line int) {
	switch t := target.(type) {
	case *ast.Identifier:
		loc := c.resolve(t.Sym)
		c.compileExpression(value)
		c.chunk.WriteSimple(bytecode.OpDup, line)
		c.emitSetBinding(loc, line)
		return
	case *ast.MemberExpression:
		if _, ok := t.Object.(*ast.SuperExpression); ok {
			c.chunk.WriteSimple(bytecode.OpLoadThis, line)
			if t.Computed {
				c.compileExpression(t.Property)
				c.compileExpression(value)
				c.chunk.WriteSimple(bytecode.OpSetSuperPropComputed, line)
			} else {
				c.compileExpression(value)
				idx := c.emitString(propertyKeyName(t.Property), line)
				c.chunk.Write(bytecode.OpSetSuperProp, 0, uint16(idx), line)
			}
			return
		}
		c.compileExpression(t.Object)
		if t.Computed {
			c.compileExpression(t.Property)
			c.compileExpression(value)
			c.chunk.WriteSimple(bytecode.OpSetPropComputed, line)
			return
		}
		c.compileExpression(value)
		idx := c.emitString(propertyKeyName(t.Property), line)
		c.chunk.Write(bytecode.OpSetProp, 0, uint16(idx), line)
		return
	}
	c.errorf(target, "invalid assignment target")
}

// compileCompoundAssign implements `target op= value` for identifier and
// member targets, evaluating the member reference exactly once via
// temporary local slots.
func (c *Compiler) compileCompoundAssign(target, value ast.Expression, op bytecode.OpCode, line int) {
	switch t := target.(type) {
	case *ast.Identifier:
		loc := c.resolve(t.Sym)
		c.emitGetBinding(loc, line)
		c.compileExpression(value)
		c.chunk.WriteSimple(op, line)
		c.chunk.WriteSimple(bytecode.OpDup, line)
		c.emitSetBinding(loc, line)
		c.chunk.WriteSimple(bytecode.OpPop, line)
		return
	case *ast.MemberExpression:
		tObj := c.allocTemp()
		c.compileExpression(t.Object)
		c.emitSetLocal(tObj, line)
		computed := t.Computed
		var tKey uint16
		if computed {
			tKey = c.allocTemp()
			c.compileExpression(t.Property)
			c.emitSetLocal(tKey, line)
		}
		c.emitGetLocal(tObj, line)
		if computed {
			c.emitGetLocal(tKey, line)
			c.chunk.WriteSimple(bytecode.OpGetPropComputed, line)
		} else {
			idx := c.emitString(propertyKeyName(t.Property), line)
			c.chunk.Write(bytecode.OpGetProp, 0, uint16(idx), line)
		}
		c.compileExpression(value)
		c.chunk.WriteSimple(op, line)

		tNew := c.allocTemp()
		c.emitSetLocal(tNew, line)
		c.emitGetLocal(tObj, line)
		if computed {
			c.emitGetLocal(tKey, line)
			c.emitGetLocal(tNew, line)
			c.chunk.WriteSimple(bytecode.OpSetPropComputed, line)
		} else {
			c.emitGetLocal(tNew, line)
			idx := c.emitString(propertyKeyName(t.Property), line)
			c.chunk.Write(bytecode.OpSetProp, 0, uint16(idx), line)
		}
		c.chunk.WriteSimple(bytecode.OpPop, line)
		c.emitGetLocal(tNew, line)

		c.freeTemp() // tNew
		if computed {
			c.freeTemp() // tKey
		}
		c.freeTemp() // tObj
		return
	}
	c.errorf(target, "invalid assignment target")
}

// compileLogicalAssign implements &&=, ||=, ??= : the right-hand side and
// the store are only evaluated when the short-circuit test passes.
func (c *Compiler) compileLogicalAssign(n *ast.AssignExpression, line int) {
	switch t := n.Target.(type) {
	case *ast.Identifier:
		loc := c.resolve(t.Sym)
		c.emitGetBinding(loc, line)
		jump := c.logicalAssignTestJump(n.Operator, line)
		c.chunk.WriteSimple(bytecode.OpPop, line)
		c.compileExpression(n.Value)
		c.chunk.WriteSimple(bytecode.OpDup, line)
		c.emitSetBinding(loc, line)
		c.chunk.WriteSimple(bytecode.OpPop, line)
		_ = c.chunk.PatchJump(jump)
		return
	case *ast.MemberExpression:
		tObj := c.allocTemp()
		c.compileExpression(t.Object)
		c.emitSetLocal(tObj, line)
		computed := t.Computed
		var tKey uint16
		if computed {
			tKey = c.allocTemp()
			c.compileExpression(t.Property)
			c.emitSetLocal(tKey, line)
		}
		c.emitGetLocal(tObj, line)
		if computed {
			c.emitGetLocal(tKey, line)
			c.chunk.WriteSimple(bytecode.OpGetPropComputed, line)
		} else {
			idx := c.emitString(propertyKeyName(t.Property), line)
			c.chunk.Write(bytecode.OpGetProp, 0, uint16(idx), line)
		}
		jump := c.logicalAssignTestJump(n.Operator, line)
		c.chunk.WriteSimple(bytecode.OpPop, line)
		c.compileExpression(n.Value)
		c.chunk.WriteSimple(bytecode.OpDup, line)

		tNew := c.allocTemp()
		c.emitSetLocal(tNew, line)
		c.emitGetLocal(tObj, line)
		if computed {
			c.emitGetLocal(tKey, line)
			c.emitGetLocal(tNew, line)
			c.chunk.WriteSimple(bytecode.OpSetPropComputed, line)
		} else {
			c.emitGetLocal(tNew, line)
			idx := c.emitString(propertyKeyName(t.Property), line)
			c.chunk.Write(bytecode.OpSetProp, 0, uint16(idx), line)
		}
		c.chunk.WriteSimple(bytecode.OpPop, line)
		_ = c.chunk.PatchJump(jump)
		c.freeTemp() // tNew
		if computed {
			c.freeTemp() // tKey
		}
		c.freeTemp() // tObj
		return
	}
	c.errorf(n, "invalid assignment target")
}

func (c *Compiler) logicalAssignTestJump(operator string, line int) int {
	switch operator {
	case "&&=":
		return c.chunk.EmitJump(bytecode.OpJumpIfFalseNoPop, line)
	case "||=":
		return c.chunk.EmitJump(bytecode.OpJumpIfTrueNoPop, line)
	default: // "??="
		return c.chunk.EmitJump(bytecode.OpJumpIfNotNullishNoPop, line)
	}
}

func (c *Compiler) compileConditional(n *ast.ConditionalExpression) {
	line := c.line(n)
	c.compileExpression(n.Test)
	elseJump := c.chunk.EmitJump(bytecode.OpJumpIfFalse, line)
	c.compileExpression(n.Consequent)
	endJump := c.chunk.EmitJump(bytecode.OpJump, line)
	_ = c.chunk.PatchJump(elseJump)
	c.compileExpression(n.Alternate)
	_ = c.chunk.PatchJump(endJump)
}

// compileMember compiles `obj.prop`/`obj[expr]`, including `super.prop` and
// optional chaining. When forCall is true, the receiver (`this` for the
// subsequent call) is left beneath the property value so OpCall's
// this/callee/args stack shape is satisfied without re-evaluating Object.
func (c *Compiler) compileMember(n *ast.MemberExpression, forCall bool) {
	line := c.line(n)
	if _, ok := n.Object.(*ast.SuperExpression); ok {
		c.chunk.WriteSimple(bytecode.OpLoadThis, line)
		if forCall {
			c.chunk.WriteSimple(bytecode.OpDup, line)
		}
		if n.Computed {
			c.compileExpression(n.Property)
			c.chunk.WriteSimple(bytecode.OpGetSuperPropComputed, line)
			return
		}
		idx := c.emitString(propertyKeyName(n.Property), line)
		c.chunk.Write(bytecode.OpGetSuperProp, 0, uint16(idx), line)
		return
	}

	c.compileExpression(n.Object)
	if forCall {
		c.chunk.WriteSimple(bytecode.OpDup, line)
	}

	if !n.Optional {
		c.emitMemberGet(n, line)
		return
	}

	// Optional chaining: obj?.prop short-circuits to undefined (discarding
	// the receiver pushed for forCall too) when obj is null or undefined.
	c.chunk.WriteSimple(bytecode.OpDup, line)
	notNullish := c.chunk.EmitJump(bytecode.OpJumpIfNotNullishNoPop, line)
	c.chunk.WriteSimple(bytecode.OpPop, line) // the duped nullish value
	c.chunk.WriteSimple(bytecode.OpPop, line) // obj
	if forCall {
		c.chunk.WriteSimple(bytecode.OpPop, line) // the duped obj (this)
	}
	c.chunk.WriteSimple(bytecode.OpLoadUndefined, line)
	if forCall {
		c.chunk.WriteSimple(bytecode.OpLoadUndefined, line)
	}
	skip := c.chunk.EmitJump(bytecode.OpJump, line)
	_ = c.chunk.PatchJump(notNullish)
	c.chunk.WriteSimple(bytecode.OpPop, line) // the duped non-nullish value
	c.emitMemberGet(n, line)
	_ = c.chunk.PatchJump(skip)
}

func (c *Compiler) emitMemberGet(n *ast.MemberExpression, line int) {
	if n.Computed {
		c.compileExpression(n.Property)
		c.chunk.WriteSimple(bytecode.OpGetPropComputed, line)
		return
	}
	idx := c.emitString(propertyKeyName(n.Property), line)
	c.chunk.Write(bytecode.OpGetProp, 0, uint16(idx), line)
}

// compileCall compiles a call expression, pushing this/callee/args in the
// order OpCall expects (this, callee, arg0..argN-1), falling back to
// OpCallSpread whenever any argument is a spread, and short-circuiting to
// undefined for an optional call on a nullish callee.
func (c *Compiler) compileCall(n *ast.CallExpression) {
	line := c.line(n)

	hasSpread := false
	for _, a := range n.Arguments {
		if _, ok := a.(*ast.SpreadElement); ok {
			hasSpread = true
			break
		}
	}

	if m, ok := n.Callee.(*ast.MemberExpression); ok {
		// compileMember(forCall=true) already leaves the dup'd receiver
		// beneath the property value: this, callee.
		c.compileMember(m, true)
	} else {
		c.chunk.WriteSimple(bytecode.OpLoadUndefined, line)
		c.compileExpression(n.Callee)
	}

	hasSkip := false
	var skip int
	if n.Optional {
		c.chunk.WriteSimple(bytecode.OpDup, line)
		notNullish := c.chunk.EmitJump(bytecode.OpJumpIfNotNullishNoPop, line)
		c.chunk.WriteSimple(bytecode.OpPop, line) // duped callee
		c.chunk.WriteSimple(bytecode.OpPop, line) // callee
		c.chunk.WriteSimple(bytecode.OpPop, line) // this
		c.chunk.WriteSimple(bytecode.OpLoadUndefined, line)
		skip = c.chunk.EmitJump(bytecode.OpJump, line)
		hasSkip = true
		_ = c.chunk.PatchJump(notNullish)
		c.chunk.WriteSimple(bytecode.OpPop, line) // duped callee
	}

	if hasSpread {
		c.compileSpreadArgs(n.Arguments, line)
		c.chunk.WriteSimple(bytecode.OpCallSpread, line)
	} else {
		for _, a := range n.Arguments {
			c.compileExpression(a)
		}
		c.chunk.Write(bytecode.OpCall, byte(len(n.Arguments)), 0, line)
	}

	if hasSkip {
		_ = c.chunk.PatchJump(skip)
	}
}

// compileSpreadArgs builds a single array value from a mixed list of plain
// and spread arguments, for OpCallSpread/OpConstructSpread/OpSuperCallSpread.
func (c *Compiler) compileSpreadArgs(args []ast.Expression, line int) {
	c.chunk.Write(bytecode.OpNewArray, 0, 0, line)
	for _, a := range args {
		if spread, ok := a.(*ast.SpreadElement); ok {
			c.compileExpression(spread.Argument)
			c.chunk.WriteSimple(bytecode.OpArraySpreadAppend, line)
			continue
		}
		c.compileExpression(a)
		c.appendSingle(line)
	}
}

func (c *Compiler) compileNew(n *ast.NewExpression) {
	line := c.line(n)
	c.compileExpression(n.Callee)

	hasSpread := false
	for _, a := range n.Arguments {
		if _, ok := a.(*ast.SpreadElement); ok {
			hasSpread = true
			break
		}
	}
	if hasSpread {
		c.compileSpreadArgs(n.Arguments, line)
		c.chunk.WriteSimple(bytecode.OpConstructSpread, line)
		return
	}
	for _, a := range n.Arguments {
		c.compileExpression(a)
	}
	c.chunk.Write(bytecode.OpConstruct, byte(len(n.Arguments)), 0, line)
}

func (c *Compiler) compileSuperCall(n *ast.SuperCallExpression) {
	line := c.line(n)
	hasSpread := false
	for _, a := range n.Arguments {
		if _, ok := a.(*ast.SpreadElement); ok {
			hasSpread = true
			break
		}
	}
	if hasSpread {
		c.compileSpreadArgs(n.Arguments, line)
		c.chunk.WriteSimple(bytecode.OpSuperCallSpread, line)
		return
	}
	for _, a := range n.Arguments {
		c.compileExpression(a)
	}
	c.chunk.Write(bytecode.OpSuperCall, 0, uint16(len(n.Arguments)), line)
}

func (c *Compiler) compileYield(n *ast.YieldExpression) {
	line := c.line(n)
	if n.Argument == nil {
		c.chunk.WriteSimple(bytecode.OpLoadUndefined, line)
	} else {
		c.compileExpression(n.Argument)
	}
	if n.Delegate {
		c.chunk.WriteSimple(bytecode.OpYieldStar, line)
	} else {
		c.chunk.WriteSimple(bytecode.OpYield, line)
	}
}
