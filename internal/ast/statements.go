package ast

import (
	"bytes"

	"github.com/cwbudde/ecma/internal/lexer"
)

type ExpressionStatement struct {
	Position   lexer.Position
	Expression Expression
}

func (n *ExpressionStatement) statementNode()      {}
func (n *ExpressionStatement) TokenLiteral() string { return n.Expression.TokenLiteral() }
func (n *ExpressionStatement) String() string       { return n.Expression.String() + ";" }
func (n *ExpressionStatement) Pos() lexer.Position  { return n.Position }

type BlockStatement struct {
	Position lexer.Position
	Body     []Statement
}

func (n *BlockStatement) statementNode()      {}
func (n *BlockStatement) TokenLiteral() string { return "{" }
func (n *BlockStatement) Pos() lexer.Position  { return n.Position }
func (n *BlockStatement) String() string {
	var out bytes.Buffer
	out.WriteString("{\n")
	for _, s := range n.Body {
		out.WriteString("  ")
		out.WriteString(s.String())
		out.WriteString("\n")
	}
	out.WriteString("}")
	return out.String()
}

type EmptyStatement struct{ Position lexer.Position }

func (n *EmptyStatement) statementNode()      {}
func (n *EmptyStatement) TokenLiteral() string { return ";" }
func (n *EmptyStatement) String() string       { return ";" }
func (n *EmptyStatement) Pos() lexer.Position  { return n.Position }

type DebuggerStatement struct{ Position lexer.Position }

func (n *DebuggerStatement) statementNode()      {}
func (n *DebuggerStatement) TokenLiteral() string { return "debugger" }
func (n *DebuggerStatement) String() string       { return "debugger;" }
func (n *DebuggerStatement) Pos() lexer.Position  { return n.Position }

type IfStatement struct {
	Position   lexer.Position
	Test       Expression
	Consequent Statement
	Alternate  Statement // nil when there is no else branch
}

func (n *IfStatement) statementNode()      {}
func (n *IfStatement) TokenLiteral() string { return "if" }
func (n *IfStatement) Pos() lexer.Position  { return n.Position }
func (n *IfStatement) String() string {
	s := "if (" + n.Test.String() + ") " + n.Consequent.String()
	if n.Alternate != nil {
		s += " else " + n.Alternate.String()
	}
	return s
}

type WhileStatement struct {
	Position lexer.Position
	Test     Expression
	Body     Statement
}

func (n *WhileStatement) statementNode()      {}
func (n *WhileStatement) TokenLiteral() string { return "while" }
func (n *WhileStatement) Pos() lexer.Position  { return n.Position }
func (n *WhileStatement) String() string {
	return "while (" + n.Test.String() + ") " + n.Body.String()
}

type DoWhileStatement struct {
	Position lexer.Position
	Body     Statement
	Test     Expression
}

func (n *DoWhileStatement) statementNode()      {}
func (n *DoWhileStatement) TokenLiteral() string { return "do" }
func (n *DoWhileStatement) Pos() lexer.Position  { return n.Position }
func (n *DoWhileStatement) String() string {
	return "do " + n.Body.String() + " while (" + n.Test.String() + ");"
}

// ForStatement is the classic three-clause `for`. Init may be nil, a
// *VariableDeclaration, or an Expression.
type ForStatement struct {
	Position lexer.Position
	Init     Node
	Test     Expression
	Update   Expression
	Body     Statement
}

func (n *ForStatement) statementNode()      {}
func (n *ForStatement) TokenLiteral() string { return "for" }
func (n *ForStatement) Pos() lexer.Position  { return n.Position }
func (n *ForStatement) String() string {
	var out bytes.Buffer
	out.WriteString("for (")
	if n.Init != nil {
		out.WriteString(n.Init.String())
	}
	out.WriteString("; ")
	if n.Test != nil {
		out.WriteString(n.Test.String())
	}
	out.WriteString("; ")
	if n.Update != nil {
		out.WriteString(n.Update.String())
	}
	out.WriteString(") ")
	out.WriteString(n.Body.String())
	return out.String()
}

// ForInOfKind distinguishes `for-in` (enumerates property keys) from
// `for-of` (consumes the iterator protocol).
type ForInOfKind int

const (
	ForIn ForInOfKind = iota
	ForOf
)

// ForInOfStatement covers both `for (x in obj)` and `for (x of iterable)`.
// Left is either a *VariableDeclaration with exactly one declarator and no
// initializer, or an assignment-target Expression (§4.C "Head-of-loop
// initializers").
type ForInOfStatement struct {
	Position lexer.Position
	Kind     ForInOfKind
	Left     Node
	Right    Expression
	Body     Statement
	IsAwait  bool // for-await-of
}

func (n *ForInOfStatement) statementNode()      {}
func (n *ForInOfStatement) TokenLiteral() string { return "for" }
func (n *ForInOfStatement) Pos() lexer.Position  { return n.Position }
func (n *ForInOfStatement) String() string {
	op := "in"
	if n.Kind == ForOf {
		op = "of"
	}
	prefix := "for ("
	if n.IsAwait {
		prefix = "for await ("
	}
	return prefix + n.Left.String() + " " + op + " " + n.Right.String() + ") " + n.Body.String()
}

type BreakStatement struct {
	Position lexer.Position
	Label    *Identifier // nil for an unlabeled break
}

func (n *BreakStatement) statementNode()      {}
func (n *BreakStatement) TokenLiteral() string { return "break" }
func (n *BreakStatement) Pos() lexer.Position  { return n.Position }
func (n *BreakStatement) String() string {
	if n.Label != nil {
		return "break " + n.Label.Name + ";"
	}
	return "break;"
}

type ContinueStatement struct {
	Position lexer.Position
	Label    *Identifier
}

func (n *ContinueStatement) statementNode()      {}
func (n *ContinueStatement) TokenLiteral() string { return "continue" }
func (n *ContinueStatement) Pos() lexer.Position  { return n.Position }
func (n *ContinueStatement) String() string {
	if n.Label != nil {
		return "continue " + n.Label.Name + ";"
	}
	return "continue;"
}

type ReturnStatement struct {
	Position lexer.Position
	Argument Expression // nil for a bare `return;`
}

func (n *ReturnStatement) statementNode()      {}
func (n *ReturnStatement) TokenLiteral() string { return "return" }
func (n *ReturnStatement) Pos() lexer.Position  { return n.Position }
func (n *ReturnStatement) String() string {
	if n.Argument == nil {
		return "return;"
	}
	return "return " + n.Argument.String() + ";"
}

type ThrowStatement struct {
	Position lexer.Position
	Argument Expression
}

func (n *ThrowStatement) statementNode()      {}
func (n *ThrowStatement) TokenLiteral() string { return "throw" }
func (n *ThrowStatement) Pos() lexer.Position  { return n.Position }
func (n *ThrowStatement) String() string       { return "throw " + n.Argument.String() + ";" }

// CatchClause binds an optional pattern (`catch (e)` vs. bare `catch`) and
// runs Body with that binding in scope.
type CatchClause struct {
	Position lexer.Position
	Param    Binding // nil for a parameter-less catch
	Body     *BlockStatement
}

type TryStatement struct {
	Position lexer.Position
	Block    *BlockStatement
	Handler  *CatchClause    // nil when there is no catch
	Finally  *BlockStatement // nil when there is no finally
}

func (n *TryStatement) statementNode()      {}
func (n *TryStatement) TokenLiteral() string { return "try" }
func (n *TryStatement) Pos() lexer.Position  { return n.Position }
func (n *TryStatement) String() string {
	var out bytes.Buffer
	out.WriteString("try ")
	out.WriteString(n.Block.String())
	if n.Handler != nil {
		out.WriteString(" catch ")
		if n.Handler.Param != nil {
			out.WriteString("(" + n.Handler.Param.String() + ") ")
		}
		out.WriteString(n.Handler.Body.String())
	}
	if n.Finally != nil {
		out.WriteString(" finally ")
		out.WriteString(n.Finally.String())
	}
	return out.String()
}

// SwitchCase is one `case expr:` or `default:` arm. Test is nil for the
// default arm.
type SwitchCase struct {
	Test       Expression
	Consequent []Statement
}

type SwitchStatement struct {
	Position     lexer.Position
	Discriminant Expression
	Cases        []SwitchCase
}

func (n *SwitchStatement) statementNode()      {}
func (n *SwitchStatement) TokenLiteral() string { return "switch" }
func (n *SwitchStatement) Pos() lexer.Position  { return n.Position }
func (n *SwitchStatement) String() string {
	var out bytes.Buffer
	out.WriteString("switch (")
	out.WriteString(n.Discriminant.String())
	out.WriteString(") {\n")
	for _, c := range n.Cases {
		if c.Test != nil {
			out.WriteString("case " + c.Test.String() + ":\n")
		} else {
			out.WriteString("default:\n")
		}
		for _, s := range c.Consequent {
			out.WriteString("  " + s.String() + "\n")
		}
	}
	out.WriteString("}")
	return out.String()
}

// LabeledStatement attaches a label usable by break/continue. A labeled
// function declaration is only legal in non-strict, non-module code
// directly at source level or inside a block (§4.C).
type LabeledStatement struct {
	Position lexer.Position
	Label    *Identifier
	Body     Statement
}

func (n *LabeledStatement) statementNode()      {}
func (n *LabeledStatement) TokenLiteral() string { return n.Label.Name }
func (n *LabeledStatement) Pos() lexer.Position  { return n.Position }
func (n *LabeledStatement) String() string {
	return n.Label.Name + ": " + n.Body.String()
}

// WithStatement pushes an object as a dynamic scope for its Body; illegal
// in strict mode.
type WithStatement struct {
	Position lexer.Position
	Object   Expression
	Body     Statement
}

func (n *WithStatement) statementNode()      {}
func (n *WithStatement) TokenLiteral() string { return "with" }
func (n *WithStatement) Pos() lexer.Position  { return n.Position }
func (n *WithStatement) String() string {
	return "with (" + n.Object.String() + ") " + n.Body.String()
}
