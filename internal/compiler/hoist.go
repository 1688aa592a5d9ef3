package compiler

import (
	"github.com/cwbudde/ecma/internal/ast"
	"github.com/cwbudde/ecma/internal/bytecode"
	"github.com/cwbudde/ecma/internal/intern"
)

// hoistProgram declares every var-scoped name and top-level function
// declaration in prog before any statement executes, matching the
// specification's hoisting rule: "var-declared names are hoisted to the
// nearest function or script scope."
func (c *Compiler) hoistProgram(prog *ast.Program) {
	var stmts []ast.Statement
	for _, item := range prog.Body {
		if sli, ok := item.(*ast.StatementListItem); ok {
			stmts = append(stmts, sli.Item)
		}
	}
	c.hoistVarNames(stmts)
	c.hoistFunctionDeclarations(stmts)
}

// hoistFunctionBody declares var-scoped names and function declarations
// for one function body, to be called before compiling its statements.
func (c *Compiler) hoistFunctionBody(body []ast.Statement) {
	c.hoistVarNames(body)
	// Lexical names first: hoistFunctionDeclarations compiles each nested
	// function's body immediately (it is not just bookkeeping), so a
	// closure capturing one of this scope's own let/const bindings as an
	// upvalue must already find its pre-declared (TDZ) slot here, not
	// resolve through to an enclosing scope of the same name.
	c.hoistLexicalNames(body)
	c.hoistFunctionDeclarations(body)
}

// hoistVarNames walks stmts recursively (without crossing into nested
// function bodies) collecting every `var` binding target identifier and
// declaring it, uninitialized (undefined), in the current scope.
func (c *Compiler) hoistVarNames(stmts []ast.Statement) {
	for _, s := range stmts {
		c.hoistVarNamesIn(s)
	}
}

func (c *Compiler) hoistVarNamesIn(s ast.Statement) {
	switch n := s.(type) {
	case *ast.VariableDeclaration:
		if n.Kind != ast.DeclVar {
			return
		}
		for _, d := range n.Declarations {
			c.declareVarBinding(d.Target)
		}
	case *ast.BlockStatement:
		c.hoistVarNames(n.Body)
	case *ast.IfStatement:
		c.hoistVarNamesIn(n.Consequent)
		if n.Alternate != nil {
			c.hoistVarNamesIn(n.Alternate)
		}
	case *ast.WhileStatement:
		c.hoistVarNamesIn(n.Body)
	case *ast.DoWhileStatement:
		c.hoistVarNamesIn(n.Body)
	case *ast.ForStatement:
		if decl, ok := n.Init.(*ast.VariableDeclaration); ok && decl.Kind == ast.DeclVar {
			for _, d := range decl.Declarations {
				c.declareVarBinding(d.Target)
			}
		}
		c.hoistVarNamesIn(n.Body)
	case *ast.ForInOfStatement:
		if decl, ok := n.Left.(*ast.VariableDeclaration); ok && decl.Kind == ast.DeclVar {
			for _, d := range decl.Declarations {
				c.declareVarBinding(d.Target)
			}
		}
		c.hoistVarNamesIn(n.Body)
	case *ast.TryStatement:
		c.hoistVarNames(n.Block.Body)
		if n.Handler != nil {
			c.hoistVarNames(n.Handler.Body.Body)
		}
		if n.Finally != nil {
			c.hoistVarNames(n.Finally.Body)
		}
	case *ast.SwitchStatement:
		for _, cs := range n.Cases {
			c.hoistVarNames(cs.Consequent)
		}
	case *ast.LabeledStatement:
		c.hoistVarNamesIn(n.Body)
	case *ast.WithStatement:
		c.hoistVarNamesIn(n.Body)
	}
}

// hoistLexicalNames pre-declares every let/const/class binding stmts
// introduces directly (never crossing into nested blocks or function
// bodies, since let/const are block-scoped rather than hoisted like var)
// as a local slot in its temporal dead zone, before any statement in
// stmts runs. Without this, a reference compiled before the declaration
// itself reaches would find no local for the name yet and fall through
// resolve() to an enclosing scope's binding of the same name instead of
// observing this scope's own (still-uninitialized) binding.
//
// Script-level let/const/class keep their existing global-binding path
// (bindIdentifier's isScript branch): this pass only covers function and
// block scope, where compile-time resolve() order is what the spec's
// matching runtime behavior depends on.
func (c *Compiler) hoistLexicalNames(stmts []ast.Statement) {
	if c.isScript {
		return
	}
	for _, s := range stmts {
		switch n := s.(type) {
		case *ast.VariableDeclaration:
			if n.Kind == ast.DeclVar {
				continue
			}
			mutable := n.Kind != ast.DeclConst
			line := n.Position.Line
			for _, d := range n.Declarations {
				c.declareLexicalBinding(d.Target, mutable, line)
			}
		case *ast.ClassDeclaration:
			if n.Name != nil {
				c.declareLexicalName(n.Name.Sym, true, n.Position.Line)
			}
		}
	}
}

func (c *Compiler) declareLexicalBinding(b ast.Binding, mutable bool, line int) {
	switch t := b.(type) {
	case *ast.Identifier:
		c.declareLexicalName(t.Sym, mutable, line)
	case *ast.ArrayPattern:
		for _, el := range t.Elements {
			if el != nil {
				c.declareLexicalBinding(el.Target, mutable, line)
			}
		}
		if t.Rest != nil {
			c.declareLexicalBinding(t.Rest, mutable, line)
		}
	case *ast.ObjectPattern:
		for _, p := range t.Properties {
			c.declareLexicalBinding(p.Target, mutable, line)
		}
		if t.Rest != nil {
			c.declareLexicalBinding(t.Rest, mutable, line)
		}
	}
}

// declareLexicalName reserves sym's local slot and marks it TDZ: the slot
// exists for resolve() purposes immediately, but reads/writes through it
// throw ReferenceError until OpInitLocal overwrites it at the
// declaration's actual position (bindIdentifier, compileClassDeclaration).
// local.initialized guards against re-marking a slot a prior hoist pass
// already declared (e.g. a catch parameter sharing a synthetic rescan).
func (c *Compiler) declareLexicalName(sym intern.Symbol, mutable bool, line int) {
	slot := c.declareLocal(sym, mutable, false)
	if local, ok := c.resolveLocal(sym); ok && !local.initialized {
		c.chunk.Write(bytecode.OpDeclareTDZ, 0, slot, line)
	}
}

// declareVarBinding declares every identifier named by a (possibly
// destructuring) var binding target.
func (c *Compiler) declareVarBinding(b ast.Binding) {
	switch t := b.(type) {
	case *ast.Identifier:
		c.declareVarName(t.Sym)
	case *ast.ArrayPattern:
		for _, el := range t.Elements {
			if el != nil {
				c.declareVarBinding(el.Target)
			}
		}
		if t.Rest != nil {
			c.declareVarBinding(t.Rest)
		}
	case *ast.ObjectPattern:
		for _, p := range t.Properties {
			c.declareVarBinding(p.Target)
		}
		if t.Rest != nil {
			c.declareVarBinding(t.Rest)
		}
	}
}

// declareVarName creates the binding for a hoisted var or function-
// declaration name: a local slot (initialized to undefined) in a function
// scope, or a global binding in script scope.
func (c *Compiler) declareVarName(sym intern.Symbol) {
	if c.isScript {
		if _, ok := c.globals[sym]; !ok {
			c.globals[sym] = globalVar{sym: sym, mutable: true}
		}
		return
	}
	c.declareLocal(sym, true, true)
}

// hoistFunctionDeclarations declares and binds every function declaration
// that is a direct statement in stmts to its actual closure value, before
// any statement in stmts runs — matching the specification's
// "FunctionDeclarationInstantiation creates the function object itself at
// hoisting time, not just a placeholder binding" rule, which is what lets
// a call textually precede its function declaration. Nested block-scoped
// function declarations are additionally bound, block-locally, when that
// block is compiled (compileStatement's *ast.BlockStatement case calls
// this again over the block's own direct statements); a FunctionDeclaration
// reached by the ordinary statement-compilation loop is therefore always a
// no-op; it was already bound here.
func (c *Compiler) hoistFunctionDeclarations(stmts []ast.Statement) {
	for _, s := range stmts {
		if fd, ok := s.(*ast.FunctionDeclaration); ok && fd.Name != nil {
			c.declareVarName(fd.Name.Sym)
			line := fd.Position.Line
			c.compileFunctionLike(fd.FunctionLike)
			loc := c.resolve(fd.Name.Sym)
			c.emitSetBinding(loc, line)
		}
	}
}
