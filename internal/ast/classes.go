package ast

import (
	"bytes"

	"github.com/cwbudde/ecma/internal/lexer"
)

// MethodKind distinguishes the concrete/accessor flavors of a class
// element; FieldKind values never read this, only MethodDefinition does.
type MethodKind int

const (
	MethodOrdinary MethodKind = iota
	MethodGetter
	MethodSetter
	MethodConstructor
)

func (k MethodKind) String() string {
	switch k {
	case MethodGetter:
		return "get"
	case MethodSetter:
		return "set"
	case MethodConstructor:
		return "constructor"
	}
	return ""
}

// ClassElement is either a MethodDefinition, a FieldDefinition, or a
// StaticBlock (§3 "class bodies").
type ClassElement interface {
	Node
	classElementNode()
}

// MethodDefinition covers ordinary methods, get/set accessors, and the
// constructor. Key is an Expression so computed keys (`[Symbol.iterator]`)
// and PrivateIdentifier keys share one field.
type MethodDefinition struct {
	Position lexer.Position
	Key      Expression
	Value    *FunctionExpression
	Kind     MethodKind
	Static   bool
	Computed bool
}

func (n *MethodDefinition) classElementNode()     {}
func (n *MethodDefinition) TokenLiteral() string  { return "method" }
func (n *MethodDefinition) Pos() lexer.Position   { return n.Position }
func (n *MethodDefinition) String() string {
	var out bytes.Buffer
	if n.Static {
		out.WriteString("static ")
	}
	if n.Value.IsAsync {
		out.WriteString("async ")
	}
	if n.Kind == MethodGetter {
		out.WriteString("get ")
	} else if n.Kind == MethodSetter {
		out.WriteString("set ")
	}
	if n.Value.IsGenerator {
		out.WriteString("*")
	}
	if n.Computed {
		out.WriteString("[" + n.Key.String() + "]")
	} else {
		out.WriteString(n.Key.String())
	}
	out.WriteString("(")
	out.WriteString(n.Value.Params.String())
	out.WriteString(") ")
	out.WriteString(n.Value.Body.String())
	return out.String()
}

// FieldDefinition is an instance or static class field, with an optional
// initializer evaluated in a dedicated field-initializer scope that has
// access to `this` but not to arguments (§3 "class field initializers").
type FieldDefinition struct {
	Position lexer.Position
	Key      Expression
	Value    Expression // nil for an uninitialized field
	Static   bool
	Computed bool
}

func (n *FieldDefinition) classElementNode()    {}
func (n *FieldDefinition) TokenLiteral() string { return "field" }
func (n *FieldDefinition) Pos() lexer.Position  { return n.Position }
func (n *FieldDefinition) String() string {
	var out bytes.Buffer
	if n.Static {
		out.WriteString("static ")
	}
	if n.Computed {
		out.WriteString("[" + n.Key.String() + "]")
	} else {
		out.WriteString(n.Key.String())
	}
	if n.Value != nil {
		out.WriteString(" = ")
		out.WriteString(n.Value.String())
	}
	out.WriteString(";")
	return out.String()
}

// StaticBlock is a `static { ... }` initializer block, run once at class
// definition time with `this` bound to the class itself.
type StaticBlock struct {
	Position lexer.Position
	Body     []Statement
}

func (n *StaticBlock) classElementNode()    {}
func (n *StaticBlock) TokenLiteral() string { return "static" }
func (n *StaticBlock) Pos() lexer.Position  { return n.Position }
func (n *StaticBlock) String() string {
	var out bytes.Buffer
	out.WriteString("static {\n")
	for _, s := range n.Body {
		out.WriteString("  " + s.String() + "\n")
	}
	out.WriteString("}")
	return out.String()
}

// ClassBody is the brace-delimited list of a class's elements, shared by
// ClassDeclaration and ClassExpression.
type ClassBody struct {
	Elements []ClassElement
}

func (b *ClassBody) String() string {
	var out bytes.Buffer
	out.WriteString("{\n")
	for _, el := range b.Elements {
		out.WriteString("  " + el.String() + "\n")
	}
	out.WriteString("}")
	return out.String()
}

// ClassDeclaration is `class Name extends Super { ... }` in statement
// position; like let/const it is block-scoped and not hoisted across the
// temporal dead zone.
type ClassDeclaration struct {
	Position   lexer.Position
	Name       *Identifier // nil only for a default-exported anonymous class
	SuperClass Expression  // nil when there is no `extends` clause
	Body       *ClassBody
}

func (n *ClassDeclaration) statementNode()      {}
func (n *ClassDeclaration) TokenLiteral() string { return "class" }
func (n *ClassDeclaration) Pos() lexer.Position  { return n.Position }
func (n *ClassDeclaration) String() string {
	var out bytes.Buffer
	out.WriteString("class")
	if n.Name != nil {
		out.WriteString(" " + n.Name.Name)
	}
	if n.SuperClass != nil {
		out.WriteString(" extends " + n.SuperClass.String())
	}
	out.WriteString(" ")
	out.WriteString(n.Body.String())
	return out.String()
}

// ClassExpression is the same grammar used as an expression; it may be
// anonymous and is given an inferred name when assigned directly to a
// binding (§3 "NamedEvaluation").
type ClassExpression struct {
	Position   lexer.Position
	Name       *Identifier
	SuperClass Expression
	Body       *ClassBody
}

func (n *ClassExpression) expressionNode()      {}
func (n *ClassExpression) TokenLiteral() string { return "class" }
func (n *ClassExpression) Pos() lexer.Position  { return n.Position }
func (n *ClassExpression) String() string {
	var out bytes.Buffer
	out.WriteString("class")
	if n.Name != nil {
		out.WriteString(" " + n.Name.Name)
	}
	if n.SuperClass != nil {
		out.WriteString(" extends " + n.SuperClass.String())
	}
	out.WriteString(" ")
	out.WriteString(n.Body.String())
	return out.String()
}
