// Package ast defines the abstract syntax tree produced by internal/parser:
// a strongly typed sum of expressions, statements, declarations, and
// module items (§3). The tree owns its children exclusively; there is no
// back-pointer to a parent, matching the teacher's tree-ownership AST.
package ast

import (
	"bytes"
	"strings"

	"github.com/cwbudde/ecma/internal/intern"
	"github.com/cwbudde/ecma/internal/lexer"
)

// Node is the interface every AST node implements.
type Node interface {
	TokenLiteral() string
	String() string
	Pos() lexer.Position
}

// Expression is any node that produces a value.
type Expression interface {
	Node
	expressionNode()
}

// Statement is any node that performs an action but does not itself
// produce a value.
type Statement interface {
	Node
	statementNode()
}

// ModuleItem is either an import/export declaration or a StatementListItem
// (§3 "Module items").
type ModuleItem interface {
	Node
	moduleItemNode()
}

// Program is the root of the tree: either a Script or a Module body.
type Program struct {
	Body     []ModuleItem
	IsModule bool
	IsStrict bool
}

func (p *Program) TokenLiteral() string {
	if len(p.Body) > 0 {
		return p.Body[0].TokenLiteral()
	}
	return ""
}

func (p *Program) Pos() lexer.Position {
	if len(p.Body) > 0 {
		return p.Body[0].Pos()
	}
	return lexer.Position{}
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, item := range p.Body {
		out.WriteString(item.String())
		out.WriteString("\n")
	}
	return out.String()
}

// StatementListItem wraps a Statement or Declaration so it can appear
// directly in a Program's Body as a ModuleItem (§3 "Module items").
type StatementListItem struct {
	Item Statement
}

func (s *StatementListItem) TokenLiteral() string   { return s.Item.TokenLiteral() }
func (s *StatementListItem) String() string         { return s.Item.String() }
func (s *StatementListItem) Pos() lexer.Position    { return s.Item.Pos() }
func (s *StatementListItem) moduleItemNode()        {}

// Identifier is a reference to a binding by interned symbol.
type Identifier struct {
	Position lexer.Position
	Name     string // original spelling, for diagnostics; lookup always goes through Sym
	Sym      intern.Symbol
}

func (i *Identifier) expressionNode()            {}
func (i *Identifier) TokenLiteral() string       { return i.Name }
func (i *Identifier) String() string             { return i.Name }
func (i *Identifier) Pos() lexer.Position        { return i.Position }

// PrivateIdentifier is a `#name` reference used for private class fields.
type PrivateIdentifier struct {
	Position lexer.Position
	Name     string
	Sym      intern.Symbol
}

func (i *PrivateIdentifier) expressionNode()      {}
func (i *PrivateIdentifier) TokenLiteral() string { return "#" + i.Name }
func (i *PrivateIdentifier) String() string       { return "#" + i.Name }
func (i *PrivateIdentifier) Pos() lexer.Position  { return i.Position }

func joinStrings(nodes []Expression, sep string) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, sep)
}
