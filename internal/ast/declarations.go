package ast

import (
	"bytes"

	"github.com/cwbudde/ecma/internal/lexer"
)

// Binding is either a plain identifier or a destructuring pattern (§3
// "Declarations carry a Binding which is either an identifier or a
// destructuring pattern").
type Binding interface {
	Node
	bindingNode()
}

func (i *Identifier) bindingNode() {}

// ArrayPattern destructures an iterable: `[a, , b = 1, ...rest]`.
type ArrayPattern struct {
	Position lexer.Position
	Elements []*PatternElement // nil entries are elisions
	Rest     Binding           // nil when there is no rest element
}

// PatternElement is one slot of an array or object destructuring pattern,
// carrying its own nested target, default value, and (for object patterns)
// source key.
type PatternElement struct {
	Key      Expression // only set for ObjectPattern properties
	Target   Binding
	Default  Expression
	Computed bool
}

func (a *ArrayPattern) bindingNode()        {}
func (a *ArrayPattern) TokenLiteral() string { return "[" }
func (a *ArrayPattern) Pos() lexer.Position  { return a.Position }
func (a *ArrayPattern) String() string {
	var out bytes.Buffer
	out.WriteString("[")
	for i, el := range a.Elements {
		if i > 0 {
			out.WriteString(", ")
		}
		if el == nil {
			continue
		}
		out.WriteString(el.Target.String())
		if el.Default != nil {
			out.WriteString(" = ")
			out.WriteString(el.Default.String())
		}
	}
	if a.Rest != nil {
		out.WriteString(", ...")
		out.WriteString(a.Rest.String())
	}
	out.WriteString("]")
	return out.String()
}

// ObjectPattern destructures an object: `{a, b: c = 1, ...rest}`.
type ObjectPattern struct {
	Position   lexer.Position
	Properties []*PatternElement
	Rest       Binding
}

func (o *ObjectPattern) bindingNode()        {}
func (o *ObjectPattern) TokenLiteral() string { return "{" }
func (o *ObjectPattern) Pos() lexer.Position  { return o.Position }
func (o *ObjectPattern) String() string {
	var out bytes.Buffer
	out.WriteString("{")
	for i, p := range o.Properties {
		if i > 0 {
			out.WriteString(", ")
		}
		if p.Computed {
			out.WriteString("[")
			out.WriteString(p.Key.String())
			out.WriteString("]: ")
		} else if p.Key != nil {
			out.WriteString(p.Key.String())
			out.WriteString(": ")
		}
		out.WriteString(p.Target.String())
		if p.Default != nil {
			out.WriteString(" = ")
			out.WriteString(p.Default.String())
		}
	}
	if o.Rest != nil {
		out.WriteString(", ...")
		out.WriteString(o.Rest.String())
	}
	out.WriteString("}")
	return out.String()
}

// DeclarationKind distinguishes var/let/const: var is function-scoped and
// hoisted; let/const are lexically scoped to their block (§3 "Environment
// frame"/§4.E "var-declared names are hoisted").
type DeclarationKind int

const (
	DeclVar DeclarationKind = iota
	DeclLet
	DeclConst
)

func (k DeclarationKind) String() string {
	switch k {
	case DeclVar:
		return "var"
	case DeclLet:
		return "let"
	case DeclConst:
		return "const"
	}
	return "?"
}

// VariableDeclarator is one `binding = init` entry of a declaration list.
type VariableDeclarator struct {
	Target Binding
	Init   Expression // nil when the declarator has no initializer
}

// VariableDeclaration is `var|let|const decl, decl, ...;` as both a
// statement and (without the trailing semicolon) a for-head initializer.
type VariableDeclaration struct {
	Position     lexer.Position
	Kind         DeclarationKind
	Declarations []VariableDeclarator
}

func (n *VariableDeclaration) statementNode()       {}
func (n *VariableDeclaration) TokenLiteral() string { return n.Kind.String() }
func (n *VariableDeclaration) Pos() lexer.Position  { return n.Position }
func (n *VariableDeclaration) String() string {
	var out bytes.Buffer
	out.WriteString(n.Kind.String())
	out.WriteString(" ")
	for i, d := range n.Declarations {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(d.Target.String())
		if d.Init != nil {
			out.WriteString(" = ")
			out.WriteString(d.Init.String())
		}
	}
	out.WriteString(";")
	return out.String()
}
