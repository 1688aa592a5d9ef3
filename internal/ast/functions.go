package ast

import (
	"bytes"

	"github.com/cwbudde/ecma/internal/lexer"
)

// Param is a single entry of a FormalParameterList: a binding target with
// an optional default and an optional rest marker.
type Param struct {
	Target  Binding
	Default Expression // nil when this parameter has no default
	Rest    bool
}

// FormalParameterList carries the precomputed flags §3 requires so the
// compiler and runtime Function.length/arguments-object logic never have
// to re-walk the parameter list.
type FormalParameterList struct {
	Params          []Param
	IsSimple        bool // every param is a plain identifier with no default/rest
	HasDuplicates   bool
	HasRest         bool
	HasExpressions  bool // at least one default value
	HasArguments    bool // a parameter is literally named "arguments"
	Length          int  // count of leading params with no default and no rest
}

func (f *FormalParameterList) String() string {
	var out bytes.Buffer
	for i, p := range f.Params {
		if i > 0 {
			out.WriteString(", ")
		}
		if p.Rest {
			out.WriteString("...")
		}
		out.WriteString(p.Target.String())
		if p.Default != nil {
			out.WriteString(" = ")
			out.WriteString(p.Default.String())
		}
	}
	return out.String()
}

// FunctionKind distinguishes the declaration/expression forms a
// function-like node may take; generators and async are orthogonal flags
// since async generators exist.
type FunctionKind int

const (
	FunctionNormal FunctionKind = iota
	FunctionArrow
	FunctionMethod
	FunctionConstructorKind
	FunctionGetter
	FunctionSetter
)

// FunctionLike is the shared shape of FunctionDeclaration, FunctionExpression,
// and ArrowFunctionExpression; the parser and compiler use it directly
// rather than duplicating field lists.
type FunctionLike struct {
	Position    lexer.Position
	Name        *Identifier // nil for anonymous function expressions and all arrows
	Params      *FormalParameterList
	Body        *BlockStatement // nil when Kind == FunctionArrow and ExprBody is set
	ExprBody    Expression      // arrow concise body: `x => x + 1`
	Kind        FunctionKind
	IsGenerator bool
	IsAsync     bool
	IsStrict    bool // true when Body starts with a "use strict" directive prologue
	SourceText  string
}

func (f *FunctionLike) header() string {
	var out bytes.Buffer
	if f.IsAsync {
		out.WriteString("async ")
	}
	out.WriteString("function")
	if f.IsGenerator {
		out.WriteString("*")
	}
	if f.Name != nil {
		out.WriteString(" ")
		out.WriteString(f.Name.Name)
	}
	out.WriteString("(")
	out.WriteString(f.Params.String())
	out.WriteString(")")
	return out.String()
}

// FunctionDeclaration is `function name(...) { ... }` in statement
// position, hoisted to the top of its enclosing function/script scope.
type FunctionDeclaration struct {
	*FunctionLike
}

func (n *FunctionDeclaration) statementNode()        {}
func (n *FunctionDeclaration) TokenLiteral() string  { return "function" }
func (n *FunctionDeclaration) String() string        { return n.header() + " " + n.Body.String() }
func (n *FunctionDeclaration) Pos() lexer.Position    { return n.Position }

// FunctionExpression is the same grammar used as an expression; it is not
// hoisted and may be anonymous.
type FunctionExpression struct {
	*FunctionLike
}

func (n *FunctionExpression) expressionNode()      {}
func (n *FunctionExpression) TokenLiteral() string { return "function" }
func (n *FunctionExpression) String() string       { return n.header() + " " + n.Body.String() }
func (n *FunctionExpression) Pos() lexer.Position  { return n.Position }

// ArrowFunctionExpression never has its own `this`, `arguments`,
// `new.target`, or `super`; the compiler resolves those through the
// enclosing non-arrow scope.
type ArrowFunctionExpression struct {
	*FunctionLike
}

func (n *ArrowFunctionExpression) expressionNode()      {}
func (n *ArrowFunctionExpression) TokenLiteral() string { return "=>" }
func (n *ArrowFunctionExpression) String() string {
	body := n.Body
	if body != nil {
		return "(" + n.Params.String() + ") => " + body.String()
	}
	return "(" + n.Params.String() + ") => " + n.ExprBody.String()
}
func (n *ArrowFunctionExpression) Pos() lexer.Position { return n.Position }

// YieldExpression suspends a generator; Delegate marks `yield*`.
type YieldExpression struct {
	Position lexer.Position
	Argument Expression // nil for a bare `yield;`
	Delegate bool
}

func (n *YieldExpression) expressionNode()      {}
func (n *YieldExpression) TokenLiteral() string { return "yield" }
func (n *YieldExpression) String() string {
	if n.Argument == nil {
		return "yield"
	}
	if n.Delegate {
		return "yield* " + n.Argument.String()
	}
	return "yield " + n.Argument.String()
}
func (n *YieldExpression) Pos() lexer.Position { return n.Position }

type AwaitExpression struct {
	Position lexer.Position
	Argument Expression
}

func (n *AwaitExpression) expressionNode()      {}
func (n *AwaitExpression) TokenLiteral() string { return "await" }
func (n *AwaitExpression) String() string       { return "await " + n.Argument.String() }
func (n *AwaitExpression) Pos() lexer.Position  { return n.Position }
