package compiler

import (
	"fmt"

	"github.com/cwbudde/ecma/internal/ast"
	"github.com/cwbudde/ecma/internal/bytecode"
)

// compileFunctionLike compiles fn's body in a child compiler and emits an
// OpClosure over the resulting FunctionTemplate in the current chunk.
func (c *Compiler) compileFunctionLike(fn *ast.FunctionLike) {
	child := c.child(functionChunkName(fn), fn.Kind == ast.FunctionArrow)
	child.compileParamsAndBody(fn)
	child.chunk.LocalCount = int(child.maxSlot)

	tmpl := &bytecode.FunctionTemplate{
		Name:        functionChunkName(fn),
		Chunk:       child.chunk,
		ParamCount:  fn.Params.Length,
		TotalParams: len(fn.Params.Params),
		HasRest:     fn.Params.HasRest,
		IsArrow:     fn.Kind == ast.FunctionArrow,
		IsGenerator: fn.IsGenerator,
		IsAsync:     fn.IsAsync,
		IsStrict:    fn.IsStrict || c.strict,
	}
	for _, uv := range child.upvalues {
		tmpl.Upvalues = append(tmpl.Upvalues, bytecode.UpvalueSource{FromParentLocal: uv.fromParentLocal, Index: uv.index})
	}
	c.errors = append(c.errors, child.errors...)

	idx := c.chunk.AddConstant(bytecode.Constant{Kind: bytecode.ConstFunction, Function: tmpl})
	c.chunk.Write(bytecode.OpClosure, byte(len(tmpl.Upvalues)), uint16(idx), fn.Position.Line)
}

func functionChunkName(fn *ast.FunctionLike) string {
	if fn.Name != nil {
		return fn.Name.Name
	}
	switch fn.Kind {
	case ast.FunctionArrow:
		return "<arrow>"
	case ast.FunctionGetter:
		return "<getter>"
	case ast.FunctionSetter:
		return "<setter>"
	default:
		return "<anonymous>"
	}
}

// compileParamsAndBody declares the function's own frame — one local per
// parameter, handling defaults and rest — and then compiles the body,
// hoisting var/function declarations first. The this/new.target/arguments
// bindings are materialized by the VM's call setup directly into this
// frame rather than through any opcode here (component I, call frame
// layout); arrow functions never get their own, resolving through the
// enclosing scope instead.
func (c *Compiler) compileParamsAndBody(fn *ast.FunctionLike) {
	c.beginScope()
	for i, p := range fn.Params.Params {
		last := i == len(fn.Params.Params)-1
		c.compileParam(p, fn.Params.HasRest && last)
	}

	if fn.Body != nil {
		c.hoistFunctionBody(fn.Body.Body)
		for _, s := range fn.Body.Body {
			c.compileStatement(s)
		}
		c.emitImplicitReturn(fn.Body)
	} else if fn.ExprBody != nil {
		c.compileExpression(fn.ExprBody)
		c.chunk.Write(bytecode.OpReturn, 1, 0, fn.ExprBody.Pos().Line)
	}
	c.endScope()
}

func (c *Compiler) compileParam(p ast.Param, isRest bool) {
	id, ok := p.Target.(*ast.Identifier)
	if !ok {
		// Destructuring parameters: bind the raw argument under a synthetic
		// name, then destructure it as if by a let declaration.
		line := p.Target.Pos().Line
		synthSym := c.interner.Intern(fmt.Sprintf("%%param%d", len(c.locals)))
		argSlot := c.declareLocal(synthSym, true, true)
		c.chunk.Write(bytecode.OpGetLocal, 0, argSlot, line)
		c.bindPattern(p.Target, true, true)
		return
	}

	argSlot := c.declareLocal(id.Sym, true, true)
	if isRest {
		return // rest collection is performed by the VM's call setup, which
		// writes the remaining arguments directly into this slot as an array.
	}
	if p.Default == nil {
		return
	}
	// Parameter defaults apply only when the argument is undefined: the
	// VM's call setup writes undefined into every unsupplied parameter
	// slot, so checking for non-nullish is not quite right (null should not
	// trigger the default) — check specifically against undefined instead.
	line := p.Default.Pos().Line
	c.chunk.Write(bytecode.OpGetLocal, 0, argSlot, line)
	c.chunk.WriteSimple(bytecode.OpLoadUndefined, line)
	c.chunk.WriteSimple(bytecode.OpStrictEq, line)
	jump := c.chunk.EmitJump(bytecode.OpJumpIfFalse, line)
	c.compileExpression(p.Default)
	c.chunk.Write(bytecode.OpSetLocal, 0, argSlot, line)
	_ = c.chunk.PatchJump(jump)
}

// emitImplicitReturn appends a bare `return undefined;`. It is always safe
// to append, even when every path through body already returns, since the
// VM never reaches it in that case.
func (c *Compiler) emitImplicitReturn(body *ast.BlockStatement) {
	line := body.Position.Line
	if len(body.Body) > 0 {
		line = body.Body[len(body.Body)-1].Pos().Line
	}
	c.chunk.WriteSimple(bytecode.OpLoadUndefined, line)
	c.chunk.Write(bytecode.OpReturn, 1, 0, line)
}
