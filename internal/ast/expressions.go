package ast

import (
	"bytes"
	"fmt"

	"github.com/cwbudde/ecma/internal/lexer"
)

// Literal node kinds (§3 "Expressions include: literals").

type NumberLiteral struct {
	Position lexer.Position
	Raw      string
	Value    float64
	IsInt    bool
}

func (n *NumberLiteral) expressionNode()      {}
func (n *NumberLiteral) TokenLiteral() string { return n.Raw }
func (n *NumberLiteral) String() string       { return n.Raw }
func (n *NumberLiteral) Pos() lexer.Position  { return n.Position }

type BigIntLiteral struct {
	Position lexer.Position
	Raw      string // decimal/hex/octal/binary digits, without the trailing 'n'
}

func (n *BigIntLiteral) expressionNode()      {}
func (n *BigIntLiteral) TokenLiteral() string { return n.Raw + "n" }
func (n *BigIntLiteral) String() string       { return n.Raw + "n" }
func (n *BigIntLiteral) Pos() lexer.Position  { return n.Position }

type StringLiteral struct {
	Position lexer.Position
	Value    string
}

func (n *StringLiteral) expressionNode()      {}
func (n *StringLiteral) TokenLiteral() string { return n.Value }
func (n *StringLiteral) String() string       { return fmt.Sprintf("%q", n.Value) }
func (n *StringLiteral) Pos() lexer.Position  { return n.Position }

type BoolLiteral struct {
	Position lexer.Position
	Value    bool
}

func (n *BoolLiteral) expressionNode() {}
func (n *BoolLiteral) TokenLiteral() string {
	if n.Value {
		return "true"
	}
	return "false"
}
func (n *BoolLiteral) String() string      { return n.TokenLiteral() }
func (n *BoolLiteral) Pos() lexer.Position { return n.Position }

type NullLiteral struct{ Position lexer.Position }

func (n *NullLiteral) expressionNode()      {}
func (n *NullLiteral) TokenLiteral() string { return "null" }
func (n *NullLiteral) String() string       { return "null" }
func (n *NullLiteral) Pos() lexer.Position  { return n.Position }

type UndefinedLiteral struct{ Position lexer.Position }

func (n *UndefinedLiteral) expressionNode()      {}
func (n *UndefinedLiteral) TokenLiteral() string { return "undefined" }
func (n *UndefinedLiteral) String() string       { return "undefined" }
func (n *UndefinedLiteral) Pos() lexer.Position  { return n.Position }

type RegexLiteral struct {
	Position lexer.Position
	Pattern  string
	Flags    string
}

func (n *RegexLiteral) expressionNode()      {}
func (n *RegexLiteral) TokenLiteral() string { return "/" + n.Pattern + "/" + n.Flags }
func (n *RegexLiteral) String() string       { return n.TokenLiteral() }
func (n *RegexLiteral) Pos() lexer.Position  { return n.Position }

type ThisExpression struct{ Position lexer.Position }

func (n *ThisExpression) expressionNode()      {}
func (n *ThisExpression) TokenLiteral() string { return "this" }
func (n *ThisExpression) String() string       { return "this" }
func (n *ThisExpression) Pos() lexer.Position  { return n.Position }

type SuperExpression struct{ Position lexer.Position }

func (n *SuperExpression) expressionNode()      {}
func (n *SuperExpression) TokenLiteral() string { return "super" }
func (n *SuperExpression) String() string       { return "super" }
func (n *SuperExpression) Pos() lexer.Position  { return n.Position }

// TemplateLiteral keeps cooked and raw forms per quasi segment (§3
// invariant: raw always exists; cooked may be absent for an invalid
// escape when the literal is tagged — CookedValid reports which).
type TemplateLiteral struct {
	Position     lexer.Position
	Quasis       []TemplateElement
	Expressions  []Expression
}

type TemplateElement struct {
	Cooked      string
	Raw         string
	CookedValid bool
	Tail        bool
}

func (n *TemplateLiteral) expressionNode()      {}
func (n *TemplateLiteral) TokenLiteral() string { return "`" }
func (n *TemplateLiteral) String() string {
	var out bytes.Buffer
	out.WriteString("`")
	for i, q := range n.Quasis {
		out.WriteString(q.Raw)
		if !q.Tail {
			out.WriteString("${")
			out.WriteString(n.Expressions[i].String())
			out.WriteString("}")
		}
	}
	out.WriteString("`")
	return out.String()
}
func (n *TemplateLiteral) Pos() lexer.Position { return n.Position }

// TaggedTemplateExpression is `tag` applied to a TemplateLiteral: String.raw`...`.
type TaggedTemplateExpression struct {
	Position lexer.Position
	Tag      Expression
	Quasi    *TemplateLiteral
}

func (n *TaggedTemplateExpression) expressionNode()      {}
func (n *TaggedTemplateExpression) TokenLiteral() string { return n.Tag.TokenLiteral() }
func (n *TaggedTemplateExpression) String() string       { return n.Tag.String() + n.Quasi.String() }
func (n *TaggedTemplateExpression) Pos() lexer.Position  { return n.Position }

// Operators

type BinaryExpression struct {
	Position lexer.Position
	Operator string
	Left     Expression
	Right    Expression
}

func (n *BinaryExpression) expressionNode()      {}
func (n *BinaryExpression) TokenLiteral() string { return n.Operator }
func (n *BinaryExpression) String() string {
	return "(" + n.Left.String() + " " + n.Operator + " " + n.Right.String() + ")"
}
func (n *BinaryExpression) Pos() lexer.Position { return n.Position }

// LogicalExpression is BinaryExpression's short-circuiting sibling
// (&&, ||, ??) — kept distinct because the compiler lowers it to jumps
// rather than an opcode, and constant folding must preserve side effects.
type LogicalExpression struct {
	Position lexer.Position
	Operator string
	Left     Expression
	Right    Expression
}

func (n *LogicalExpression) expressionNode()      {}
func (n *LogicalExpression) TokenLiteral() string { return n.Operator }
func (n *LogicalExpression) String() string {
	return "(" + n.Left.String() + " " + n.Operator + " " + n.Right.String() + ")"
}
func (n *LogicalExpression) Pos() lexer.Position { return n.Position }

type UnaryExpression struct {
	Position lexer.Position
	Operator string
	Operand  Expression
	Prefix   bool
}

func (n *UnaryExpression) expressionNode()      {}
func (n *UnaryExpression) TokenLiteral() string { return n.Operator }
func (n *UnaryExpression) String() string {
	if n.Prefix {
		return "(" + n.Operator + n.Operand.String() + ")"
	}
	return "(" + n.Operand.String() + n.Operator + ")"
}
func (n *UnaryExpression) Pos() lexer.Position { return n.Position }

// UpdateExpression is ++/-- in either prefix or postfix position.
type UpdateExpression struct {
	Position lexer.Position
	Operator string
	Operand  Expression
	Prefix   bool
}

func (n *UpdateExpression) expressionNode()      {}
func (n *UpdateExpression) TokenLiteral() string { return n.Operator }
func (n *UpdateExpression) String() string {
	if n.Prefix {
		return n.Operator + n.Operand.String()
	}
	return n.Operand.String() + n.Operator
}
func (n *UpdateExpression) Pos() lexer.Position { return n.Position }

// AssignExpression covers plain `=` and every compound/logical-assign
// operator (+=, &&=, ??=, ...). Target is validated by the parser's cover
// grammar to be a valid assignment target (identifier, member expression,
// or destructuring pattern).
type AssignExpression struct {
	Position lexer.Position
	Operator string
	Target   Expression
	Value    Expression
}

func (n *AssignExpression) expressionNode()      {}
func (n *AssignExpression) TokenLiteral() string { return n.Operator }
func (n *AssignExpression) String() string {
	return "(" + n.Target.String() + " " + n.Operator + " " + n.Value.String() + ")"
}
func (n *AssignExpression) Pos() lexer.Position { return n.Position }

type ConditionalExpression struct {
	Position   lexer.Position
	Test       Expression
	Consequent Expression
	Alternate  Expression
}

func (n *ConditionalExpression) expressionNode()      {}
func (n *ConditionalExpression) TokenLiteral() string { return "?" }
func (n *ConditionalExpression) String() string {
	return "(" + n.Test.String() + " ? " + n.Consequent.String() + " : " + n.Alternate.String() + ")"
}
func (n *ConditionalExpression) Pos() lexer.Position { return n.Position }

type SequenceExpression struct {
	Position    lexer.Position
	Expressions []Expression
}

func (n *SequenceExpression) expressionNode()      {}
func (n *SequenceExpression) TokenLiteral() string { return "," }
func (n *SequenceExpression) String() string       { return joinStrings(n.Expressions, ", ") }
func (n *SequenceExpression) Pos() lexer.Position  { return n.Position }

// SpreadElement is `...expr` inside array/object literals and call
// argument lists.
type SpreadElement struct {
	Position lexer.Position
	Argument Expression
}

func (n *SpreadElement) expressionNode()      {}
func (n *SpreadElement) TokenLiteral() string { return "..." }
func (n *SpreadElement) String() string       { return "..." + n.Argument.String() }
func (n *SpreadElement) Pos() lexer.Position  { return n.Position }

// Property access

// MemberExpression covers both `obj.prop` (Computed == false, Property is
// an *Identifier) and `obj[expr]` (Computed == true).
type MemberExpression struct {
	Position lexer.Position
	Object   Expression
	Property Expression
	Computed bool
	Optional bool // `?.` short-circuiting member access
}

func (n *MemberExpression) expressionNode()      {}
func (n *MemberExpression) TokenLiteral() string { return "." }
func (n *MemberExpression) String() string {
	op := "."
	if n.Optional {
		op = "?."
	}
	if n.Computed {
		return n.Object.String() + "[" + n.Property.String() + "]"
	}
	return n.Object.String() + op + n.Property.String()
}
func (n *MemberExpression) Pos() lexer.Position { return n.Position }

type CallExpression struct {
	Position  lexer.Position
	Callee    Expression
	Arguments []Expression
	Optional  bool
}

func (n *CallExpression) expressionNode()      {}
func (n *CallExpression) TokenLiteral() string { return "(" }
func (n *CallExpression) String() string {
	return n.Callee.String() + "(" + joinStrings(n.Arguments, ", ") + ")"
}
func (n *CallExpression) Pos() lexer.Position { return n.Position }

type NewExpression struct {
	Position  lexer.Position
	Callee    Expression
	Arguments []Expression
}

func (n *NewExpression) expressionNode()      {}
func (n *NewExpression) TokenLiteral() string { return "new" }
func (n *NewExpression) String() string {
	return "new " + n.Callee.String() + "(" + joinStrings(n.Arguments, ", ") + ")"
}
func (n *NewExpression) Pos() lexer.Position { return n.Position }

// NewTargetExpression is `new.target`.
type NewTargetExpression struct{ Position lexer.Position }

func (n *NewTargetExpression) expressionNode()      {}
func (n *NewTargetExpression) TokenLiteral() string { return "new.target" }
func (n *NewTargetExpression) String() string       { return "new.target" }
func (n *NewTargetExpression) Pos() lexer.Position  { return n.Position }

// SuperCallExpression is `super(...)` in a derived constructor.
type SuperCallExpression struct {
	Position  lexer.Position
	Arguments []Expression
}

func (n *SuperCallExpression) expressionNode()      {}
func (n *SuperCallExpression) TokenLiteral() string { return "super" }
func (n *SuperCallExpression) String() string {
	return "super(" + joinStrings(n.Arguments, ", ") + ")"
}
func (n *SuperCallExpression) Pos() lexer.Position { return n.Position }

// Array and object literals

type ArrayLiteral struct {
	Position lexer.Position
	Elements []Expression // may contain nil for elisions and *SpreadElement for spreads
}

func (n *ArrayLiteral) expressionNode()      {}
func (n *ArrayLiteral) TokenLiteral() string { return "[" }
func (n *ArrayLiteral) String() string {
	parts := make([]string, len(n.Elements))
	for i, e := range n.Elements {
		if e == nil {
			parts[i] = ""
			continue
		}
		parts[i] = e.String()
	}
	var out bytes.Buffer
	out.WriteString("[")
	for i, p := range parts {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(p)
	}
	out.WriteString("]")
	return out.String()
}
func (n *ArrayLiteral) Pos() lexer.Position { return n.Position }

// PropertyKind distinguishes the forms an ObjectLiteral/ClassBody member
// can take.
type PropertyKind int

const (
	PropertyInit PropertyKind = iota
	PropertyGet
	PropertySet
	PropertyMethod
	PropertySpread
)

type Property struct {
	Position  lexer.Position
	Key       Expression // *Identifier, *StringLiteral, *NumberLiteral, or a computed Expression
	Value     Expression
	Kind      PropertyKind
	Computed  bool
	Shorthand bool
}

func (p Property) String() string {
	if p.Kind == PropertySpread {
		return "..." + p.Value.String()
	}
	if p.Shorthand {
		return p.Key.String()
	}
	key := p.Key.String()
	if p.Computed {
		key = "[" + key + "]"
	}
	return key + ": " + p.Value.String()
}

type ObjectLiteral struct {
	Position   lexer.Position
	Properties []Property
}

func (n *ObjectLiteral) expressionNode()      {}
func (n *ObjectLiteral) TokenLiteral() string { return "{" }
func (n *ObjectLiteral) String() string {
	var out bytes.Buffer
	out.WriteString("{")
	for i, p := range n.Properties {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(p.String())
	}
	out.WriteString("}")
	return out.String()
}
func (n *ObjectLiteral) Pos() lexer.Position { return n.Position }
