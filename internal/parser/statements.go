package parser

import (
	"github.com/cwbudde/ecma/internal/ast"
	"github.com/cwbudde/ecma/internal/lexer"
)

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.cursor.Current().Type {
	case lexer.LBrace:
		return p.parseBlockStatement()
	case lexer.Semicolon:
		pos := p.cursor.Position()
		p.cursor.Advance(lexer.GoalRegExp)
		return &ast.EmptyStatement{Position: pos}, nil
	case lexer.KeywordVar, lexer.KeywordLet, lexer.KeywordConst:
		return p.parseVariableDeclarationStatement()
	case lexer.KeywordIf:
		return p.parseIfStatement()
	case lexer.KeywordWhile:
		return p.parseWhileStatement()
	case lexer.KeywordDo:
		return p.parseDoWhileStatement()
	case lexer.KeywordFor:
		return p.parseForStatement()
	case lexer.KeywordReturn:
		return p.parseReturnStatement()
	case lexer.KeywordBreak:
		return p.parseBreakStatement()
	case lexer.KeywordContinue:
		return p.parseContinueStatement()
	case lexer.KeywordThrow:
		return p.parseThrowStatement()
	case lexer.KeywordTry:
		return p.parseTryStatement()
	case lexer.KeywordSwitch:
		return p.parseSwitchStatement()
	case lexer.KeywordWith:
		return p.parseWithStatement()
	case lexer.KeywordDebugger:
		pos := p.cursor.Position()
		p.cursor.Advance(lexer.GoalDiv)
		p.consumeSemicolon()
		return &ast.DebuggerStatement{Position: pos}, nil
	case lexer.KeywordFunction, lexer.KeywordClass:
		return p.parseStatementListItem()
	case lexer.IDENT:
		if p.cursor.Peek(1, lexer.GoalDiv).Type == lexer.Colon {
			return p.parseLabeledStatement()
		}
	}
	return p.parseExpressionStatement()
}

func (p *Parser) parseBlockStatement() (*ast.BlockStatement, error) {
	pos := p.cursor.Position()
	if !p.cursor.Expect(lexer.LBrace) {
		p.addErrorf(pos, ErrUnexpectedToken, "expected '{'")
	}
	block := &ast.BlockStatement{Position: pos}
	for !p.cursor.Is(lexer.RBrace) && !p.cursor.IsEOF() {
		item, err := p.parseStatementListItem()
		if err != nil {
			return block, err
		}
		if item != nil {
			block.Body = append(block.Body, item)
		}
	}
	if !p.cursor.Expect(lexer.RBrace) {
		p.addErrorf(p.cursor.Position(), ErrMissingRBrace, "expected '}'")
	}
	return block, nil
}

func (p *Parser) parseExpressionStatement() (ast.Statement, error) {
	pos := p.cursor.Position()
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.consumeSemicolon()
	return &ast.ExpressionStatement{Position: pos, Expression: expr}, nil
}

// consumeSemicolon implements automatic semicolon insertion: a semicolon
// is consumed if present; otherwise one is inserted if the next token is
// `}`, EOF, or is preceded by a line terminator (§4.B "ASI").
func (p *Parser) consumeSemicolon() {
	if p.cursor.Is(lexer.Semicolon) {
		p.cursor.Advance(lexer.GoalRegExp)
		return
	}
	if p.cursor.Is(lexer.RBrace) || p.cursor.IsEOF() || p.cursor.PrecededByLineTerminator() {
		return
	}
	p.addErrorf(p.cursor.Position(), ErrMissingSemicolon, "expected ';'")
}

func (p *Parser) parseIfStatement() (ast.Statement, error) {
	pos := p.cursor.Position()
	p.cursor.Advance(lexer.GoalDiv)
	if !p.cursor.Expect(lexer.LParen) {
		p.addErrorf(p.cursor.Position(), ErrMissingLParen, "expected '(' after 'if'")
	}
	test, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.cursor.Expect(lexer.RParen) {
		p.addErrorf(p.cursor.Position(), ErrMissingRParen, "expected ')'")
	}
	cons, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	stmt := &ast.IfStatement{Position: pos, Test: test, Consequent: cons}
	if p.cursor.Is(lexer.KeywordElse) {
		p.cursor.Advance(lexer.GoalRegExp)
		alt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmt.Alternate = alt
	}
	return stmt, nil
}

func (p *Parser) parseWhileStatement() (ast.Statement, error) {
	pos := p.cursor.Position()
	p.cursor.Advance(lexer.GoalDiv)
	if !p.cursor.Expect(lexer.LParen) {
		p.addErrorf(p.cursor.Position(), ErrMissingLParen, "expected '(' after 'while'")
	}
	test, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.cursor.Expect(lexer.RParen) {
		p.addErrorf(p.cursor.Position(), ErrMissingRParen, "expected ')'")
	}
	outerLoop := p.scope.inLoop
	p.scope.inLoop = true
	body, err := p.parseStatement()
	p.scope.inLoop = outerLoop
	if err != nil {
		return nil, err
	}
	return &ast.WhileStatement{Position: pos, Test: test, Body: body}, nil
}

func (p *Parser) parseDoWhileStatement() (ast.Statement, error) {
	pos := p.cursor.Position()
	p.cursor.Advance(lexer.GoalRegExp)
	outerLoop := p.scope.inLoop
	p.scope.inLoop = true
	body, err := p.parseStatement()
	p.scope.inLoop = outerLoop
	if err != nil {
		return nil, err
	}
	if !p.cursor.Expect(lexer.KeywordWhile) {
		p.addErrorf(p.cursor.Position(), ErrUnexpectedToken, "expected 'while'")
	}
	if !p.cursor.Expect(lexer.LParen) {
		p.addErrorf(p.cursor.Position(), ErrMissingLParen, "expected '('")
	}
	test, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.cursor.Expect(lexer.RParen) {
		p.addErrorf(p.cursor.Position(), ErrMissingRParen, "expected ')'")
	}
	// A `;` here is optional even without a line terminator (§4.B special case).
	if p.cursor.Is(lexer.Semicolon) {
		p.cursor.Advance(lexer.GoalRegExp)
	}
	return &ast.DoWhileStatement{Position: pos, Body: body, Test: test}, nil
}

// parseForStatement disambiguates the three for-head grammars by parsing
// the head speculatively: declarations are unambiguous on their leading
// keyword, but a bare expression head must be checked for a following
// `in`/`of` before committing to the three-clause form.
func (p *Parser) parseForStatement() (ast.Statement, error) {
	pos := p.cursor.Position()
	p.cursor.Advance(lexer.GoalDiv)
	isAwait := false
	if p.cursor.Is(lexer.KeywordAwait) {
		isAwait = true
		p.cursor.Advance(lexer.GoalDiv)
	}
	if !p.cursor.Expect(lexer.LParen) {
		p.addErrorf(p.cursor.Position(), ErrMissingLParen, "expected '(' after 'for'")
	}

	var left ast.Node
	if p.cursor.IsAny(lexer.KeywordVar, lexer.KeywordLet, lexer.KeywordConst) {
		decl, err := p.parseForHeadDeclaration()
		if err != nil {
			return nil, err
		}
		left = decl
	} else if !p.cursor.Is(lexer.Semicolon) {
		expr, err := p.parseExpressionNoIn()
		if err != nil {
			return nil, err
		}
		left = expr
	}

	if p.cursor.Is(lexer.KeywordIn) || p.cursor.Is(lexer.KeywordOf) {
		kind := ast.ForIn
		if p.cursor.Is(lexer.KeywordOf) {
			kind = ast.ForOf
		}
		p.cursor.Advance(lexer.GoalRegExp)
		right, err := p.parseAssignmentExpression()
		if err != nil {
			return nil, err
		}
		if !p.cursor.Expect(lexer.RParen) {
			p.addErrorf(p.cursor.Position(), ErrMissingRParen, "expected ')'")
		}
		outerLoop := p.scope.inLoop
		p.scope.inLoop = true
		body, err := p.parseStatement()
		p.scope.inLoop = outerLoop
		if err != nil {
			return nil, err
		}
		return &ast.ForInOfStatement{Position: pos, Kind: kind, Left: left, Right: right, Body: body, IsAwait: isAwait}, nil
	}

	if !p.cursor.Expect(lexer.Semicolon) {
		p.addErrorf(p.cursor.Position(), ErrMissingSemicolon, "expected ';' in for-statement head")
	}
	var test ast.Expression
	if !p.cursor.Is(lexer.Semicolon) {
		var err error
		test, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if !p.cursor.Expect(lexer.Semicolon) {
		p.addErrorf(p.cursor.Position(), ErrMissingSemicolon, "expected ';' in for-statement head")
	}
	var update ast.Expression
	if !p.cursor.Is(lexer.RParen) {
		var err error
		update, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if !p.cursor.Expect(lexer.RParen) {
		p.addErrorf(p.cursor.Position(), ErrMissingRParen, "expected ')'")
	}
	outerLoop := p.scope.inLoop
	p.scope.inLoop = true
	body, err := p.parseStatement()
	p.scope.inLoop = outerLoop
	if err != nil {
		return nil, err
	}
	return &ast.ForStatement{Position: pos, Init: left, Test: test, Update: update, Body: body}, nil
}

// parseExpressionNoIn parses the for-head expression/declaration form; the
// grammar's NoIn restriction (the head's top-level `in` belongs to the
// for-statement, not to a relational expression) is approximated here by
// parsing a full expression and letting for-in detection above look past
// it — adequate for the common case of a single assignment target, which
// is the only form a for-in/for-of left side may legally take.
func (p *Parser) parseExpressionNoIn() (ast.Expression, error) {
	return p.parseAssignmentExpression()
}

func (p *Parser) parseForHeadDeclaration() (*ast.VariableDeclaration, error) {
	pos := p.cursor.Position()
	kind := p.declarationKindFromToken()
	p.cursor.Advance(lexer.GoalDiv)
	target, err := p.parseBindingTarget()
	if err != nil {
		return nil, err
	}
	decl := &ast.VariableDeclaration{Position: pos, Kind: kind}
	d := ast.VariableDeclarator{Target: target}
	if p.cursor.Is(lexer.Assign) {
		p.cursor.Advance(lexer.GoalDiv)
		init, err := p.parseAssignmentExpression()
		if err != nil {
			return nil, err
		}
		d.Init = init
	}
	decl.Declarations = append(decl.Declarations, d)
	for p.cursor.Is(lexer.Comma) {
		p.cursor.Advance(lexer.GoalDiv)
		target, err := p.parseBindingTarget()
		if err != nil {
			return nil, err
		}
		d := ast.VariableDeclarator{Target: target}
		if p.cursor.Is(lexer.Assign) {
			p.cursor.Advance(lexer.GoalDiv)
			init, err := p.parseAssignmentExpression()
			if err != nil {
				return nil, err
			}
			d.Init = init
		}
		decl.Declarations = append(decl.Declarations, d)
	}
	return decl, nil
}

func (p *Parser) declarationKindFromToken() ast.DeclarationKind {
	switch p.cursor.Current().Type {
	case lexer.KeywordLet:
		return ast.DeclLet
	case lexer.KeywordConst:
		return ast.DeclConst
	default:
		return ast.DeclVar
	}
}

func (p *Parser) parseVariableDeclarationStatement() (ast.Statement, error) {
	decl, err := p.parseForHeadDeclaration()
	if err != nil {
		return nil, err
	}
	p.consumeSemicolon()
	return decl, nil
}

func (p *Parser) parseReturnStatement() (ast.Statement, error) {
	pos := p.cursor.Position()
	if !p.scope.inFunction {
		p.addErrorf(pos, ErrIllegalReturn, "'return' outside of a function")
	}
	p.cursor.Advance(lexer.GoalRegExp)
	if p.cursor.Is(lexer.Semicolon) || p.cursor.Is(lexer.RBrace) || p.cursor.IsEOF() || p.cursor.PrecededByLineTerminator() {
		p.consumeSemicolon()
		return &ast.ReturnStatement{Position: pos}, nil
	}
	arg, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.consumeSemicolon()
	return &ast.ReturnStatement{Position: pos, Argument: arg}, nil
}

func (p *Parser) parseBreakStatement() (ast.Statement, error) {
	pos := p.cursor.Position()
	p.cursor.Advance(lexer.GoalDiv)
	stmt := &ast.BreakStatement{Position: pos}
	if p.cursor.Is(lexer.IDENT) && !p.cursor.PrecededByLineTerminator() {
		tok := p.cursor.Current()
		stmt.Label = &ast.Identifier{Position: tok.Span.Start, Name: tok.Literal, Sym: tok.Sym}
		p.cursor.Advance(lexer.GoalRegExp)
	} else if !p.scope.inLoop && !p.scope.inSwitch {
		p.addErrorf(pos, ErrIllegalBreak, "'break' outside of a loop or switch")
	}
	p.consumeSemicolon()
	return stmt, nil
}

func (p *Parser) parseContinueStatement() (ast.Statement, error) {
	pos := p.cursor.Position()
	p.cursor.Advance(lexer.GoalDiv)
	stmt := &ast.ContinueStatement{Position: pos}
	if p.cursor.Is(lexer.IDENT) && !p.cursor.PrecededByLineTerminator() {
		tok := p.cursor.Current()
		stmt.Label = &ast.Identifier{Position: tok.Span.Start, Name: tok.Literal, Sym: tok.Sym}
		p.cursor.Advance(lexer.GoalRegExp)
	} else if !p.scope.inLoop {
		p.addErrorf(pos, ErrIllegalContinue, "'continue' outside of a loop")
	}
	p.consumeSemicolon()
	return stmt, nil
}

func (p *Parser) parseThrowStatement() (ast.Statement, error) {
	pos := p.cursor.Position()
	p.cursor.Advance(lexer.GoalRegExp)
	if p.cursor.PrecededByLineTerminator() {
		p.addErrorf(pos, ErrRestrictedProduction, "no line terminator allowed after 'throw'")
	}
	arg, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.consumeSemicolon()
	return &ast.ThrowStatement{Position: pos, Argument: arg}, nil
}

func (p *Parser) parseTryStatement() (ast.Statement, error) {
	pos := p.cursor.Position()
	p.cursor.Advance(lexer.GoalDiv)
	block, err := p.parseBlockStatement()
	if err != nil {
		return nil, err
	}
	stmt := &ast.TryStatement{Position: pos, Block: block}
	if p.cursor.Is(lexer.KeywordCatch) {
		cpos := p.cursor.Position()
		p.cursor.Advance(lexer.GoalDiv)
		var param ast.Binding
		if p.cursor.Is(lexer.LParen) {
			p.cursor.Advance(lexer.GoalDiv)
			param, err = p.parseBindingTarget()
			if err != nil {
				return nil, err
			}
			if !p.cursor.Expect(lexer.RParen) {
				p.addErrorf(p.cursor.Position(), ErrMissingRParen, "expected ')'")
			}
		}
		body, err := p.parseBlockStatement()
		if err != nil {
			return nil, err
		}
		stmt.Handler = &ast.CatchClause{Position: cpos, Param: param, Body: body}
	}
	if p.cursor.Is(lexer.KeywordFinally) {
		p.cursor.Advance(lexer.GoalDiv)
		fin, err := p.parseBlockStatement()
		if err != nil {
			return nil, err
		}
		stmt.Finally = fin
	}
	if stmt.Handler == nil && stmt.Finally == nil {
		p.addErrorf(pos, ErrUnexpectedToken, "'try' must have a catch or finally clause")
	}
	return stmt, nil
}

func (p *Parser) parseSwitchStatement() (ast.Statement, error) {
	pos := p.cursor.Position()
	p.cursor.Advance(lexer.GoalDiv)
	if !p.cursor.Expect(lexer.LParen) {
		p.addErrorf(p.cursor.Position(), ErrMissingLParen, "expected '(' after 'switch'")
	}
	disc, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.cursor.Expect(lexer.RParen) {
		p.addErrorf(p.cursor.Position(), ErrMissingRParen, "expected ')'")
	}
	if !p.cursor.Expect(lexer.LBrace) {
		p.addErrorf(p.cursor.Position(), ErrUnexpectedToken, "expected '{'")
	}
	outerSwitch := p.scope.inSwitch
	p.scope.inSwitch = true
	stmt := &ast.SwitchStatement{Position: pos, Discriminant: disc}
	seenDefault := false
	for !p.cursor.Is(lexer.RBrace) && !p.cursor.IsEOF() {
		var c ast.SwitchCase
		if p.cursor.Is(lexer.KeywordCase) {
			p.cursor.Advance(lexer.GoalRegExp)
			test, err := p.parseExpression()
			if err != nil {
				p.scope.inSwitch = outerSwitch
				return nil, err
			}
			c.Test = test
		} else if p.cursor.Is(lexer.KeywordDefault) {
			if seenDefault {
				p.addErrorf(p.cursor.Position(), ErrUnexpectedToken, "more than one 'default' clause in switch")
			}
			seenDefault = true
			p.cursor.Advance(lexer.GoalDiv)
		} else {
			p.addErrorf(p.cursor.Position(), ErrUnexpectedToken, "expected 'case' or 'default'")
			break
		}
		if !p.cursor.Expect(lexer.Colon) {
			p.addErrorf(p.cursor.Position(), ErrMissingColon, "expected ':'")
		}
		for !p.cursor.IsAny(lexer.KeywordCase, lexer.KeywordDefault, lexer.RBrace) && !p.cursor.IsEOF() {
			item, err := p.parseStatementListItem()
			if err != nil {
				p.scope.inSwitch = outerSwitch
				return nil, err
			}
			c.Consequent = append(c.Consequent, item)
		}
		stmt.Cases = append(stmt.Cases, c)
	}
	p.scope.inSwitch = outerSwitch
	if !p.cursor.Expect(lexer.RBrace) {
		p.addErrorf(p.cursor.Position(), ErrMissingRBrace, "expected '}'")
	}
	return stmt, nil
}

func (p *Parser) parseWithStatement() (ast.Statement, error) {
	pos := p.cursor.Position()
	if p.strict {
		p.addErrorf(pos, ErrStrictModeViolation, "'with' statement is not allowed in strict mode")
	}
	p.cursor.Advance(lexer.GoalDiv)
	if !p.cursor.Expect(lexer.LParen) {
		p.addErrorf(p.cursor.Position(), ErrMissingLParen, "expected '(' after 'with'")
	}
	obj, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.cursor.Expect(lexer.RParen) {
		p.addErrorf(p.cursor.Position(), ErrMissingRParen, "expected ')'")
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.WithStatement{Position: pos, Object: obj, Body: body}, nil
}

func (p *Parser) parseLabeledStatement() (ast.Statement, error) {
	tok := p.cursor.Current()
	label := &ast.Identifier{Position: tok.Span.Start, Name: tok.Literal, Sym: tok.Sym}
	p.cursor.Advance(lexer.GoalDiv) // identifier
	p.cursor.Advance(lexer.GoalRegExp) // ':'
	for _, l := range p.scope.labels {
		if l == label.Name {
			p.addErrorf(tok.Span.Start, ErrDuplicateLabel, "label %q has already been declared", label.Name)
		}
	}
	p.scope.labels = append(p.scope.labels, label.Name)
	body, err := p.parseStatement()
	p.scope.labels = p.scope.labels[:len(p.scope.labels)-1]
	if err != nil {
		return nil, err
	}
	return &ast.LabeledStatement{Position: tok.Span.Start, Label: label, Body: body}, nil
}
