package parser

import (
	"fmt"

	"github.com/cwbudde/ecma/internal/ast"
	"github.com/cwbudde/ecma/internal/lexer"
)

// Precedence levels for binary/logical operators, lowest to highest.
// Assignment and the conditional operator are handled directly in
// parseAssignmentExpression rather than through this table since they are
// right-associative and sit below every entry here.
const (
	_ int = iota
	LOWEST
	NULLISH    // ??
	LOGICALOR  // ||
	LOGICALAND // &&
	BITOR      // |
	BITXOR     // ^
	BITAND     // &
	EQUALITY   // == != === !==
	RELATIONAL // < > <= >= instanceof in
	SHIFT      // << >> >>>
	ADDITIVE   // + -
	MULTIPLICATIVE // * / %
	EXPONENT   // **
)

var binaryPrecedence = map[lexer.TokenType]int{
	lexer.QuestionQuestion: NULLISH,
	lexer.PipePipe:         LOGICALOR,
	lexer.AmpAmp:           LOGICALAND,
	lexer.Pipe:             BITOR,
	lexer.Caret:            BITXOR,
	lexer.Amp:               BITAND,
	lexer.EqEq:              EQUALITY,
	lexer.NotEq:             EQUALITY,
	lexer.EqEqEq:            EQUALITY,
	lexer.NotEqEq:           EQUALITY,
	lexer.LessThan:          RELATIONAL,
	lexer.GreaterThan:       RELATIONAL,
	lexer.LessEqual:         RELATIONAL,
	lexer.GreaterEqual:      RELATIONAL,
	lexer.KeywordInstanceof: RELATIONAL,
	lexer.KeywordIn:         RELATIONAL,
	lexer.LShift:            SHIFT,
	lexer.RShift:            SHIFT,
	lexer.URShift:           SHIFT,
	lexer.Plus:              ADDITIVE,
	lexer.Minus:             ADDITIVE,
	lexer.Star:              MULTIPLICATIVE,
	lexer.Slash:             MULTIPLICATIVE,
	lexer.Percent:           MULTIPLICATIVE,
	lexer.StarStar:          EXPONENT,
}

var logicalOperators = map[lexer.TokenType]bool{
	lexer.QuestionQuestion: true,
	lexer.PipePipe:         true,
	lexer.AmpAmp:           true,
}

var assignmentOperators = map[lexer.TokenType]bool{
	lexer.Assign: true, lexer.PlusAssign: true, lexer.MinusAssign: true,
	lexer.StarAssign: true, lexer.SlashAssign: true, lexer.PercentAssign: true,
	lexer.StarStarAssign: true, lexer.LShiftAssign: true, lexer.RShiftAssign: true,
	lexer.URShiftAssign: true, lexer.AmpAssign: true, lexer.PipeAssign: true,
	lexer.CaretAssign: true, lexer.AmpAmpAssign: true, lexer.PipePipeAssign: true,
	lexer.QuestionQuestionAssign: true,
}

// scopeKind tracks what early-error checks apply inside the statement
// currently being parsed: return is only legal inside a function body,
// break/continue need an enclosing loop or (for bare break) switch.
type scopeKind struct {
	inFunction bool
	inLoop     bool
	inSwitch   bool
	inGenerator bool
	inAsync    bool
	labels     []string
}

// Option configures a Parser at construction time.
type Option func(*Parser)

// WithModule parses the source as a Module instead of a Script, enabling
// import/export declarations and implicit strict mode.
func WithModule(isModule bool) Option {
	return func(p *Parser) { p.isModule = isModule }
}

// Parser is a recursive-descent parser driven by a TokenCursor; it never
// looks behind the cursor's current Mark, so arrow-function and
// assignment-target disambiguation is done by a bounded amount of
// lookahead or by speculative re-parse with Mark/ResetTo.
type Parser struct {
	cursor   *TokenCursor
	errors   []*ParserError
	isModule bool
	strict   bool
	scope    scopeKind
}

// New creates a Parser over an already-constructed Lexer, which owns the
// Interner identifiers resolve into.
func New(lx *lexer.Lexer, opts ...Option) (*Parser, error) {
	cursor, err := NewTokenCursor(lx)
	if err != nil {
		return nil, err
	}
	p := &Parser{cursor: cursor}
	for _, opt := range opts {
		opt(p)
	}
	if p.isModule {
		p.strict = true
	}
	return p, nil
}

// Errors returns every error accumulated during parsing.
func (p *Parser) Errors() []*ParserError {
	return p.errors
}

func (p *Parser) addErrorf(pos lexer.Position, code, format string, args ...interface{}) {
	p.errors = append(p.errors, NewParserError(pos, fmt.Sprintf(format, args...), code))
}

// ParseProgram parses the full input as either a Script or a Module,
// depending on the WithModule option.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	prog := &ast.Program{IsModule: p.isModule, IsStrict: p.strict}
	p.scope.inFunction = false

	if !p.isModule {
		if prologueStrict := p.scanDirectivePrologue(); prologueStrict {
			prog.IsStrict = true
			p.strict = true
		}
	}

	for !p.cursor.IsEOF() {
		item, err := p.parseModuleItem()
		if err != nil {
			return prog, err
		}
		if item != nil {
			prog.Body = append(prog.Body, item)
		}
	}
	if len(p.errors) > 0 {
		return prog, p.errors[0]
	}
	return prog, nil
}

// scanDirectivePrologue peeks leading string-literal expression statements
// looking for "use strict", without consuming anything — the real
// directive-prologue statements are parsed normally afterward as ordinary
// ExpressionStatements (§4.A "Directive prologue").
func (p *Parser) scanDirectivePrologue() bool {
	i := 0
	for {
		tok := p.cursor.Peek(i, lexer.GoalDiv)
		if tok.Type != lexer.StringLiteral {
			return false
		}
		next := p.cursor.Peek(i+1, lexer.GoalDiv)
		isStrict := tok.Cooked == "use strict"
		if next.Type == lexer.Semicolon || next.Span.Start.Line > tok.Span.End.Line || next.Type == lexer.EOF || next.Type == lexer.RBrace {
			if isStrict {
				return true
			}
			i++
			continue
		}
		return false
	}
}

func (p *Parser) parseModuleItem() (ast.ModuleItem, error) {
	if p.isModule {
		if p.cursor.Is(lexer.KeywordImport) {
			return p.parseImportDeclaration()
		}
		if p.cursor.Is(lexer.KeywordExport) {
			return p.parseExportDeclaration()
		}
	}
	stmt, err := p.parseStatementListItem()
	if err != nil || stmt == nil {
		return nil, err
	}
	return &ast.StatementListItem{Item: stmt}, nil
}

// parseStatementListItem parses a Statement or a Declaration (function,
// class, var/let/const) — the grammar production used inside blocks,
// switch cases, and at Program top level.
func (p *Parser) parseStatementListItem() (ast.Statement, error) {
	switch p.cursor.Current().Type {
	case lexer.KeywordFunction:
		fn, err := p.parseFunctionDeclaration()
		return fn, err
	case lexer.KeywordAsync:
		if p.cursor.Peek(1, lexer.GoalDiv).Type == lexer.KeywordFunction && !p.peekPrecededByLineTerminator(1) {
			return p.parseFunctionDeclaration()
		}
	case lexer.KeywordClass:
		return p.parseClassDeclaration()
	case lexer.KeywordConst, lexer.KeywordLet:
		return p.parseVariableDeclarationStatement()
	case lexer.KeywordVar:
		return p.parseVariableDeclarationStatement()
	}
	return p.parseStatement()
}

// peekPrecededByLineTerminator reports whether the token n positions ahead
// begins on a later source line than the token immediately before it —
// used for the `async [no LineTerminator here] function` restriction.
func (p *Parser) peekPrecededByLineTerminator(n int) bool {
	prev := p.cursor.Peek(n-1, lexer.GoalDiv)
	cur := p.cursor.Peek(n, lexer.GoalDiv)
	return cur.Span.Start.Line > prev.Span.End.Line
}
