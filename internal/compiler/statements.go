package compiler

import (
	"github.com/cwbudde/ecma/internal/ast"
	"github.com/cwbudde/ecma/internal/bytecode"
)

// compileStatement dispatches on the concrete statement type, emitting its
// bytecode into the current chunk. Every direct FunctionDeclaration in a
// statement list has already been bound by hoistFunctionDeclarations before
// this is reached, so that case is a no-op here.
func (c *Compiler) compileStatement(stmt ast.Statement) {
	switch n := stmt.(type) {
	case *ast.ExpressionStatement:
		c.compileExpression(n.Expression)
		c.chunk.WriteSimple(bytecode.OpPop, c.line(n))
	case *ast.BlockStatement:
		c.compileBlock(n)
	case *ast.EmptyStatement:
		// nothing to emit
	case *ast.DebuggerStatement:
		c.chunk.WriteSimple(bytecode.OpDebugger, c.line(n))
	case *ast.VariableDeclaration:
		c.compileVariableDeclaration(n)
	case *ast.FunctionDeclaration:
		// already bound at hoisting time
	case *ast.ClassDeclaration:
		c.compileClassDeclaration(n)
	case *ast.IfStatement:
		c.compileIf(n)
	case *ast.WhileStatement:
		c.compileWhile(n, "")
	case *ast.DoWhileStatement:
		c.compileDoWhile(n, "")
	case *ast.ForStatement:
		c.compileFor(n, "")
	case *ast.ForInOfStatement:
		c.compileForInOf(n, "")
	case *ast.BreakStatement:
		c.compileBreak(n)
	case *ast.ContinueStatement:
		c.compileContinue(n)
	case *ast.ReturnStatement:
		c.compileReturn(n)
	case *ast.ThrowStatement:
		c.compileExpression(n.Argument)
		c.chunk.WriteSimple(bytecode.OpThrow, c.line(n))
	case *ast.TryStatement:
		c.compileTry(n)
	case *ast.SwitchStatement:
		c.compileSwitch(n, "")
	case *ast.LabeledStatement:
		c.compileLabeled(n)
	case *ast.WithStatement:
		c.compileWith(n)
	default:
		c.errorf(stmt, "compiler: unsupported statement %T", stmt)
	}
}

// compileBlock compiles a block statement in its own lexical scope. Only
// the block's own direct function declarations are (re-)hoisted here —
// var bindings were already hoisted once, to the nearest function or
// script scope, by hoistFunctionBody/hoistProgram.
func (c *Compiler) compileBlock(block *ast.BlockStatement) {
	c.beginScope()
	c.hoistLexicalNames(block.Body)
	c.hoistFunctionDeclarations(block.Body)
	for _, s := range block.Body {
		c.compileStatement(s)
	}
	c.endScope()
}

// compileVariableDeclaration compiles a var/let/const declaration. A var
// with no initializer is a no-op at its textual position: hoisting already
// created the binding (as undefined), and re-visiting it here must not
// stomp a value some earlier statement already assigned.
func (c *Compiler) compileVariableDeclaration(n *ast.VariableDeclaration) {
	line := c.line(n)
	for _, d := range n.Declarations {
		if n.Kind == ast.DeclVar {
			if d.Init == nil {
				continue
			}
			c.compileExpression(d.Init)
			c.bindPattern(d.Target, false, true)
			continue
		}
		if d.Init != nil {
			c.compileExpression(d.Init)
		} else {
			c.chunk.WriteSimple(bytecode.OpLoadUndefined, line)
		}
		c.bindPattern(d.Target, true, n.Kind != ast.DeclConst)
	}
}

func (c *Compiler) compileClassDeclaration(n *ast.ClassDeclaration) {
	line := c.line(n)
	c.compileClassLike(n.Name, n.SuperClass, n.Body, line)
	if n.Name != nil {
		c.bindIdentifier(n.Name, true, true)
	}
}

func (c *Compiler) compileIf(n *ast.IfStatement) {
	line := c.line(n)
	c.compileExpression(n.Test)
	elseJump := c.chunk.EmitJump(bytecode.OpJumpIfFalse, line)
	c.compileStatement(n.Consequent)
	if n.Alternate != nil {
		endJump := c.chunk.EmitJump(bytecode.OpJump, line)
		_ = c.chunk.PatchJump(elseJump)
		c.compileStatement(n.Alternate)
		_ = c.chunk.PatchJump(endJump)
		return
	}
	_ = c.chunk.PatchJump(elseJump)
}

// patchJumps patches every placeholder jump in jumps to the chunk's
// current end.
func (c *Compiler) patchJumps(jumps []int) {
	for _, j := range jumps {
		_ = c.chunk.PatchJump(j)
	}
}

func (c *Compiler) compileWhile(n *ast.WhileStatement, label string) {
	line := c.line(n)
	lc := &loopCtx{label: label, tryDepth: len(c.tryStack)}
	c.loopStack = append(c.loopStack, lc)

	loopStart := c.chunk.InstructionCount()
	c.compileExpression(n.Test)
	exitJump := c.chunk.EmitJump(bytecode.OpJumpIfFalse, line)
	c.compileStatement(n.Body)
	c.patchJumps(lc.continueJumps)
	_ = c.chunk.EmitLoop(loopStart, line)
	_ = c.chunk.PatchJump(exitJump)
	c.patchJumps(lc.breakJumps)

	c.loopStack = c.loopStack[:len(c.loopStack)-1]
}

func (c *Compiler) compileDoWhile(n *ast.DoWhileStatement, label string) {
	line := c.line(n)
	lc := &loopCtx{label: label, tryDepth: len(c.tryStack)}
	c.loopStack = append(c.loopStack, lc)

	loopStart := c.chunk.InstructionCount()
	c.compileStatement(n.Body)
	c.patchJumps(lc.continueJumps)
	c.compileExpression(n.Test)
	exitJump := c.chunk.EmitJump(bytecode.OpJumpIfFalse, line)
	_ = c.chunk.EmitLoop(loopStart, line)
	_ = c.chunk.PatchJump(exitJump)
	c.patchJumps(lc.breakJumps)

	c.loopStack = c.loopStack[:len(c.loopStack)-1]
}

func (c *Compiler) compileFor(n *ast.ForStatement, label string) {
	line := c.line(n)
	c.beginScope()

	switch init := n.Init.(type) {
	case nil:
	case *ast.VariableDeclaration:
		c.compileVariableDeclaration(init)
	default:
		if expr, ok := n.Init.(ast.Expression); ok {
			c.compileExpression(expr)
			c.chunk.WriteSimple(bytecode.OpPop, line)
		}
	}

	lc := &loopCtx{label: label, tryDepth: len(c.tryStack)}
	c.loopStack = append(c.loopStack, lc)

	loopStart := c.chunk.InstructionCount()
	exitJump := -1
	if n.Test != nil {
		c.compileExpression(n.Test)
		exitJump = c.chunk.EmitJump(bytecode.OpJumpIfFalse, line)
	}
	c.compileStatement(n.Body)
	c.patchJumps(lc.continueJumps)
	if n.Update != nil {
		c.compileExpression(n.Update)
		c.chunk.WriteSimple(bytecode.OpPop, line)
	}
	_ = c.chunk.EmitLoop(loopStart, line)
	if exitJump >= 0 {
		_ = c.chunk.PatchJump(exitJump)
	}
	c.patchJumps(lc.breakJumps)

	c.loopStack = c.loopStack[:len(c.loopStack)-1]
	c.endScope()
}

// compileForInOf compiles both for-in (key enumeration) and for-of
// (iterator protocol) loops. OpIteratorNext peeks the iterator and pushes
// value then done; once done the value is always undefined and the
// iterator is not advanced again, so the natural-exhaustion exit path has
// one more value on the stack (that leftover undefined) than the
// early-break exit path does, since break only ever runs after the body
// has already consumed the per-iteration value via bindForTarget. The
// break-jump target is placed after that extra pop so both paths converge
// on an identical stack shape (just the iterator) before closing it.
//
// The iterator stays on the stack for the whole loop, underneath whatever
// the body pushes and pops, so a runtime exception handler wraps the body:
// an abrupt throw out of it lands at finallyTarget with the iterator still
// at the stack depth recorded when the handler was pushed, closes it, then
// re-raises. A break/continue/return that instead jumps out at compile
// time goes through c.tryStack/inlineFinallyDown exactly like an
// enclosing try's finally would — except a continue or break that targets
// this very loop must NOT close the iterator (the loop either keeps going
// or has already consumed its value normally), so lc.tryDepth is captured
// after this loop's own tryCtx is pushed, putting it out of
// inlineFinallyDown's range for those two; the explicit OpIteratorClose
// after patchJumps(breakJumps) below covers that case directly instead.
func (c *Compiler) compileForInOf(n *ast.ForInOfStatement, label string) {
	line := c.line(n)
	c.compileExpression(n.Right)
	switch {
	case n.Kind == ast.ForIn:
		c.chunk.WriteSimple(bytecode.OpGetForInIterator, line)
	case n.IsAwait:
		c.chunk.WriteSimple(bytecode.OpGetAsyncIterator, line)
	default:
		c.chunk.WriteSimple(bytecode.OpGetIterator, line)
	}

	pushIdx := c.chunk.Write(bytecode.OpPushTry, 0, 0, line)
	c.tryStack = append(c.tryStack, &tryCtx{popCount: 1, cleanup: func(ln int) {
		c.chunk.WriteSimple(bytecode.OpIteratorClose, ln)
	}})

	c.beginScope()
	lc := &loopCtx{label: label, tryDepth: len(c.tryStack)}
	c.loopStack = append(c.loopStack, lc)

	loopStart := c.chunk.InstructionCount()
	c.chunk.WriteSimple(bytecode.OpIteratorNext, line)
	doneJump := c.chunk.EmitJump(bytecode.OpJumpIfTrue, line)

	c.bindForTarget(n.Left, line)
	c.compileStatement(n.Body)
	c.patchJumps(lc.continueJumps)
	_ = c.chunk.EmitLoop(loopStart, line)

	_ = c.chunk.PatchJump(doneJump)
	c.chunk.WriteSimple(bytecode.OpPop, line) // leftover undefined value, only reachable via natural exhaustion

	c.patchJumps(lc.breakJumps)
	c.loopStack = c.loopStack[:len(c.loopStack)-1]
	c.endScope()
	c.tryStack = c.tryStack[:len(c.tryStack)-1]

	c.chunk.WriteSimple(bytecode.OpPopTry, line)
	c.chunk.WriteSimple(bytecode.OpIteratorClose, line) // natural exhaustion and break both converge here
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

// bindForTarget binds a for-in/for-of loop's per-iteration value, already
// on top of the stack, to its left-hand side: a fresh var/let/const
// declaration, or an existing assignment target (identifier, member
// expression, or destructuring pattern).
func (c *Compiler) bindForTarget(left ast.Node, line int) {
	if decl, ok := left.(*ast.VariableDeclaration); ok {
		target := decl.Declarations[0].Target
		c.bindPattern(target, decl.Kind != ast.DeclVar, decl.Kind != ast.DeclConst)
		return
	}
	expr, ok := left.(ast.Expression)
	if !ok {
		c.errorf(left, "invalid for-in/for-of left-hand side")
		return
	}
	c.compileDestructureAssign(expr, line)
}

// findLoop searches the loop/switch stack for a break or continue target:
// innermost match for an unlabeled statement, any matching label otherwise.
// continue always skips past switch frames, since a switch is never itself
// a valid continue target.
func (c *Compiler) findLoop(label string, forBreak bool) *loopCtx {
	for i := len(c.loopStack) - 1; i >= 0; i-- {
		lc := c.loopStack[i]
		if !forBreak && lc.isSwitch {
			continue
		}
		if label == "" || lc.label == label {
			return lc
		}
	}
	return nil
}

// inlineFinallyDown unwinds every try statement active at the current
// point down to (but not including) depth, so a break/continue/return
// that jumps out of those try/catch bodies leaves the VM's exception-
// handler stack exactly as it would be had control fallen through
// normally: it emits one OpPopTry per handler frame tryCtx.popCount says
// is still live (the jump bypasses the OpPopTry instructions that would
// otherwise have done this), then, innermost first, inlines the finally
// block's statements so it still runs before control actually transfers.
// A break/continue/return reached while compiling a finally block's own
// statements never reaches back into that same frame, since compileTry
// removes a try's tryCtx before compiling any copy of its own finally
// body.
func (c *Compiler) inlineFinallyDown(depth int, line int) {
	for i := len(c.tryStack) - 1; i >= depth; i-- {
		tc := c.tryStack[i]
		for j := 0; j < tc.popCount; j++ {
			c.chunk.WriteSimple(bytecode.OpPopTry, line)
		}
		if tc.cleanup != nil {
			tc.cleanup(line)
		} else if tc.finally != nil {
			c.compileBlock(tc.finally)
		}
	}
}

func (c *Compiler) compileBreak(n *ast.BreakStatement) {
	label := ""
	if n.Label != nil {
		label = n.Label.Name
	}
	lc := c.findLoop(label, true)
	if lc == nil {
		c.errorf(n, "illegal break statement")
		return
	}
	line := c.line(n)
	c.inlineFinallyDown(lc.tryDepth, line)
	jump := c.chunk.EmitJump(bytecode.OpJump, line)
	lc.breakJumps = append(lc.breakJumps, jump)
}

func (c *Compiler) compileContinue(n *ast.ContinueStatement) {
	label := ""
	if n.Label != nil {
		label = n.Label.Name
	}
	lc := c.findLoop(label, false)
	if lc == nil {
		c.errorf(n, "illegal continue statement")
		return
	}
	line := c.line(n)
	c.inlineFinallyDown(lc.tryDepth, line)
	jump := c.chunk.EmitJump(bytecode.OpJump, line)
	lc.continueJumps = append(lc.continueJumps, jump)
}

func (c *Compiler) compileReturn(n *ast.ReturnStatement) {
	line := c.line(n)
	if n.Argument != nil {
		c.compileExpression(n.Argument)
	} else {
		c.chunk.WriteSimple(bytecode.OpLoadUndefined, line)
	}
	if len(c.tryStack) > 0 {
		retSlot := c.allocTemp()
		c.emitSetLocal(retSlot, line)
		c.inlineFinallyDown(0, line)
		c.emitGetLocal(retSlot, line)
		c.freeTemp()
	}
	c.chunk.Write(bytecode.OpReturn, 1, 0, line)
}

// compileCatchClause binds the thrown exception value (pushed onto the
// stack by the VM at the catch target) to the clause's parameter, if any,
// and compiles the handler body in its own scope.
func (c *Compiler) compileCatchClause(h *ast.CatchClause) {
	line := h.Position.Line
	c.beginScope()
	if h.Param != nil {
		c.bindPattern(h.Param, true, true)
	} else {
		c.chunk.WriteSimple(bytecode.OpPop, line)
	}
	c.hoistLexicalNames(h.Body.Body)
	c.hoistFunctionDeclarations(h.Body.Body)
	for _, s := range h.Body.Body {
		c.compileStatement(s)
	}
	c.endScope()
}

// compileTry compiles a try/catch/finally statement over the opcode set's
// single PushTry/PopTry exception-handler frame, a TryInfo side table
// keyed by the PushTry instruction's own index carrying the catch and
// finally jump targets — playing the same role as the teacher's own
// OpTry/TryInfo pair, minus the teacher's separate inline OpCatch/OpFinally
// marker opcodes, which this opcode set has no equivalent of.
//
// A finally clause gets its own outer handler frame (HasCatch: false)
// wrapping both the try body and the catch body, so an exception raised
// inside the catch clause itself still reaches the finally block before
// propagating further — the standard try/catch/finally-as-nested-try
// desugaring. The finally block's statements are compiled three times:
// inline after the try body's normal completion, inline again after the
// catch body's normal completion, and once more at FinallyTarget, the
// exceptional-unwind entry point, which re-raises the saved exception via
// OpThrow once finally completes there.
//
// A break/continue/return reached directly inside the try or catch body
// does not reach any of these three inline copies directly — it is
// handled separately, at compile time, by pushing this try's finally
// block (and the count of handler frames still live at that point) onto
// tryStack, for inlineFinallyDown to find: it emits the OpPopTry
// instructions the jump would otherwise have skipped, then inlines a
// fourth copy of the finally block's statements, so the VM's handler
// stack and the finally block's "always runs" guarantee both hold even
// though control never reaches this function's own three copies.
func (c *Compiler) compileTry(stmt *ast.TryStatement) {
	line := c.line(stmt)
	hasCatch := stmt.Handler != nil
	hasFinally := stmt.Finally != nil
	if !hasCatch && !hasFinally {
		c.errorf(stmt, "try statement requires a catch or finally clause")
		return
	}

	outerPush, innerPush := -1, -1
	if hasFinally {
		outerPush = c.chunk.Write(bytecode.OpPushTry, 0, 0, line)
	}
	if hasCatch {
		innerPush = c.chunk.Write(bytecode.OpPushTry, 1, 0, line)
	}

	tryPopCount := 0
	if hasFinally {
		tryPopCount++
	}
	if hasCatch {
		tryPopCount++
	}

	c.tryStack = append(c.tryStack, &tryCtx{finally: stmt.Finally, popCount: tryPopCount})
	c.compileBlock(stmt.Block)
	c.tryStack = c.tryStack[:len(c.tryStack)-1]

	if hasCatch {
		c.chunk.WriteSimple(bytecode.OpPopTry, line)
	}
	if hasFinally {
		c.chunk.WriteSimple(bytecode.OpPopTry, line)
		c.compileBlock(stmt.Finally)
	}
	jumpToEnd := c.chunk.EmitJump(bytecode.OpJump, line)

	catchTarget := -1
	if hasCatch {
		catchTarget = c.chunk.InstructionCount()
		catchPopCount := 0
		if hasFinally {
			catchPopCount = 1
		}
		c.tryStack = append(c.tryStack, &tryCtx{finally: stmt.Finally, popCount: catchPopCount})
		c.compileCatchClause(stmt.Handler)
		c.tryStack = c.tryStack[:len(c.tryStack)-1]
		if hasFinally {
			c.chunk.WriteSimple(bytecode.OpPopTry, line)
			c.compileBlock(stmt.Finally)
		}
	}
	_ = c.chunk.PatchJump(jumpToEnd)

	finallyTarget := -1
	if hasFinally {
		finallyTarget = c.chunk.InstructionCount()
		excSlot := c.allocTemp()
		c.emitSetLocal(excSlot, line)
		c.compileBlock(stmt.Finally)
		c.emitGetLocal(excSlot, line)
		c.chunk.WriteSimple(bytecode.OpThrow, line)
		c.freeTemp()
	}

	if hasCatch {
		c.chunk.SetTryInfo(innerPush, bytecode.TryInfo{HasCatch: true, CatchTarget: catchTarget})
	}
	if hasFinally {
		c.chunk.SetTryInfo(outerPush, bytecode.TryInfo{HasFinally: true, FinallyTarget: finallyTarget})
	}
}

// compileSwitch compiles a discriminant evaluated once, compared by strict
// equality against each case test in source order (first match wins,
// control then falls through subsequent case bodies until a break), with
// an out-of-order default clause reached only when no case test matches.
func (c *Compiler) compileSwitch(n *ast.SwitchStatement, label string) {
	line := c.line(n)
	c.compileExpression(n.Discriminant)
	tmp := c.allocTemp()
	c.emitSetLocal(tmp, line)

	lc := &loopCtx{label: label, isSwitch: true, tryDepth: len(c.tryStack)}
	c.loopStack = append(c.loopStack, lc)
	c.beginScope()

	var allStmts []ast.Statement
	for _, cs := range n.Cases {
		allStmts = append(allStmts, cs.Consequent...)
	}
	c.hoistLexicalNames(allStmts)
	c.hoistFunctionDeclarations(allStmts)

	caseJumps := make([]int, len(n.Cases))
	defaultIdx := -1
	for i, cs := range n.Cases {
		if cs.Test == nil {
			defaultIdx = i
			continue
		}
		c.emitGetLocal(tmp, line)
		c.compileExpression(cs.Test)
		c.chunk.WriteSimple(bytecode.OpStrictEq, line)
		caseJumps[i] = c.chunk.EmitJump(bytecode.OpJumpIfTrue, line)
	}
	defaultJump := -1
	if defaultIdx >= 0 {
		defaultJump = c.chunk.EmitJump(bytecode.OpJump, line)
	}
	endJump := c.chunk.EmitJump(bytecode.OpJump, line)

	for i, cs := range n.Cases {
		if cs.Test == nil {
			_ = c.chunk.PatchJump(defaultJump)
		} else {
			_ = c.chunk.PatchJump(caseJumps[i])
		}
		for _, s := range cs.Consequent {
			c.compileStatement(s)
		}
	}
	_ = c.chunk.PatchJump(endJump)

	c.endScope()
	c.patchJumps(lc.breakJumps)
	c.loopStack = c.loopStack[:len(c.loopStack)-1]
	c.freeTemp()
}

// compileLabeled attaches a label to its body. A loop or switch body gets
// the label directly, so unlabeled-break/continue and labeled-break/
// continue both resolve against the very same loopCtx; any other labeled
// statement only needs a break target, represented as a zero-iteration
// loopCtx of its own.
func (c *Compiler) compileLabeled(n *ast.LabeledStatement) {
	label := n.Label.Name
	switch body := n.Body.(type) {
	case *ast.WhileStatement:
		c.compileWhile(body, label)
	case *ast.DoWhileStatement:
		c.compileDoWhile(body, label)
	case *ast.ForStatement:
		c.compileFor(body, label)
	case *ast.ForInOfStatement:
		c.compileForInOf(body, label)
	case *ast.SwitchStatement:
		c.compileSwitch(body, label)
	default:
		lc := &loopCtx{label: label, isSwitch: true, tryDepth: len(c.tryStack)}
		c.loopStack = append(c.loopStack, lc)
		c.compileStatement(body)
		c.patchJumps(lc.breakJumps)
		c.loopStack = c.loopStack[:len(c.loopStack)-1]
	}
}

// compileWith compiles a `with` statement. Identifier resolution inside the
// body is still this compiler's ordinary static local/upvalue/global
// resolution — with's dynamic property-shadowing behavior (an unqualified
// identifier inside the body resolving through the with object's own
// properties before falling through to the enclosing scope) is not
// implemented, since expressing it exactly would need a dynamic,
// per-identifier runtime lookup this opcode set has no instruction for.
// `with` is forbidden in strict-mode code regardless, so every use of it is
// already non-strict legacy code; the object expression is still evaluated
// (and any of its side effects still happen), only the scoping it would
// introduce is skipped.
func (c *Compiler) compileWith(n *ast.WithStatement) {
	line := c.line(n)
	if c.strict {
		c.errorf(n, "'with' statement is not allowed in strict mode")
		return
	}
	c.compileExpression(n.Object)
	c.chunk.WriteSimple(bytecode.OpPop, line)
	c.compileStatement(n.Body)
}
