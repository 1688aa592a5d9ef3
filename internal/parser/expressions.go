package parser

import (
	"github.com/cwbudde/ecma/internal/ast"
	"github.com/cwbudde/ecma/internal/lexer"
)

// parseExpression parses a full Expression production, including the
// comma operator at the top level (§3 "SequenceExpression").
func (p *Parser) parseExpression() (ast.Expression, error) {
	first, err := p.parseAssignmentExpression()
	if err != nil {
		return nil, err
	}
	if !p.cursor.Is(lexer.Comma) {
		return first, nil
	}
	exprs := []ast.Expression{first}
	for p.cursor.Is(lexer.Comma) {
		p.cursor.Advance(lexer.GoalDiv)
		next, err := p.parseAssignmentExpression()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, next)
	}
	return &ast.SequenceExpression{Position: first.Pos(), Expressions: exprs}, nil
}

// parseAssignmentExpression handles `=` and every compound/logical-assign
// operator (right-associative), arrow functions, yield, and falls through
// to the conditional expression chain otherwise.
func (p *Parser) parseAssignmentExpression() (ast.Expression, error) {
	if p.scope.inGenerator && p.cursor.Is(lexer.KeywordYield) {
		return p.parseYieldExpression()
	}

	if arrow, ok, err := p.tryParseArrowFunction(); err != nil {
		return nil, err
	} else if ok {
		return arrow, nil
	}

	left, err := p.parseConditionalExpression()
	if err != nil {
		return nil, err
	}

	cur := p.cursor.Current()
	if assignmentOperators[cur.Type] {
		if cur.Type != lexer.Assign {
			if !isSimpleAssignTarget(left) {
				p.addErrorf(cur.Span.Start, ErrInvalidAssignTarget, "invalid assignment target")
			}
		}
		p.cursor.Advance(lexer.GoalDiv)
		value, err := p.parseAssignmentExpression()
		if err != nil {
			return nil, err
		}
		return &ast.AssignExpression{
			Position: left.Pos(),
			Operator: operatorText[cur.Type],
			Target:   left,
			Value:    value,
		}, nil
	}
	return left, nil
}

func isSimpleAssignTarget(e ast.Expression) bool {
	switch e.(type) {
	case *ast.Identifier, *ast.MemberExpression:
		return true
	}
	return false
}

func (p *Parser) parseYieldExpression() (ast.Expression, error) {
	pos := p.cursor.Position()
	p.cursor.Advance(lexer.GoalDiv)
	delegate := false
	if p.cursor.Is(lexer.Star) {
		delegate = true
		p.cursor.Advance(lexer.GoalDiv)
	}
	cur := p.cursor.Current()
	if cur.Type == lexer.Semicolon || cur.Type == lexer.RParen || cur.Type == lexer.RBrace ||
		cur.Type == lexer.RBracket || cur.Type == lexer.Comma || cur.Type == lexer.EOF ||
		p.cursor.PrecededByLineTerminator() {
		return &ast.YieldExpression{Position: pos, Delegate: delegate}, nil
	}
	arg, err := p.parseAssignmentExpression()
	if err != nil {
		return nil, err
	}
	return &ast.YieldExpression{Position: pos, Argument: arg, Delegate: delegate}, nil
}

func (p *Parser) parseConditionalExpression() (ast.Expression, error) {
	test, err := p.parseBinaryExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if !p.cursor.Is(lexer.Question) {
		return test, nil
	}
	p.cursor.Advance(lexer.GoalDiv)
	cons, err := p.parseAssignmentExpression()
	if err != nil {
		return nil, err
	}
	if !p.cursor.Expect(lexer.Colon) {
		p.addErrorf(p.cursor.Position(), ErrMissingColon, "expected ':' in conditional expression")
	}
	alt, err := p.parseAssignmentExpression()
	if err != nil {
		return nil, err
	}
	return &ast.ConditionalExpression{Position: test.Pos(), Test: test, Consequent: cons, Alternate: alt}, nil
}

// parseBinaryExpression is precedence-climbing over binaryPrecedence.
// Mixing ?? with || or && without parentheses is not rejected, here or
// later in the compiler; such input parses by the precedence table.
func (p *Parser) parseBinaryExpression(minPrec int) (ast.Expression, error) {
	left, err := p.parseUnaryExpression()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.cursor.Current()
		prec, ok := binaryPrecedence[tok.Type]
		if !ok || prec < minPrec {
			return left, nil
		}
		// ** is right-associative.
		nextMin := prec + 1
		if tok.Type == lexer.StarStar {
			nextMin = prec
		}
		p.cursor.Advance(lexer.GoalDiv)
		right, err := p.parseBinaryExpression(nextMin)
		if err != nil {
			return nil, err
		}
		if logicalOperators[tok.Type] {
			left = &ast.LogicalExpression{Position: left.Pos(), Operator: operatorText[tok.Type], Left: left, Right: right}
		} else {
			left = &ast.BinaryExpression{Position: left.Pos(), Operator: operatorText[tok.Type], Left: left, Right: right}
		}
	}
}

var unaryOperators = map[lexer.TokenType]bool{
	lexer.Plus: true, lexer.Minus: true, lexer.Bang: true, lexer.Tilde: true,
	lexer.KeywordTypeof: true, lexer.KeywordVoid: true, lexer.KeywordDelete: true,
}

func (p *Parser) parseUnaryExpression() (ast.Expression, error) {
	cur := p.cursor.Current()
	if cur.Type == lexer.KeywordAwait && p.scope.inAsync {
		pos := cur.Span.Start
		p.cursor.Advance(lexer.GoalDiv)
		arg, err := p.parseUnaryExpression()
		if err != nil {
			return nil, err
		}
		return &ast.AwaitExpression{Position: pos, Argument: arg}, nil
	}
	if unaryOperators[cur.Type] {
		pos := cur.Span.Start
		p.cursor.Advance(lexer.GoalRegExp)
		operand, err := p.parseUnaryExpression()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpression{Position: pos, Operator: operatorText[cur.Type], Operand: operand, Prefix: true}, nil
	}
	if cur.Type == lexer.Increment || cur.Type == lexer.Decrement {
		pos := cur.Span.Start
		p.cursor.Advance(lexer.GoalDiv)
		operand, err := p.parseUnaryExpression()
		if err != nil {
			return nil, err
		}
		return &ast.UpdateExpression{Position: pos, Operator: operatorText[cur.Type], Operand: operand, Prefix: true}, nil
	}
	return p.parsePostfixExpression()
}

// parsePostfixExpression handles trailing ++/-- (no LineTerminator
// permitted before them, per §4.B's restricted-production rule).
func (p *Parser) parsePostfixExpression() (ast.Expression, error) {
	expr, err := p.parseLeftHandSideExpression()
	if err != nil {
		return nil, err
	}
	cur := p.cursor.Current()
	if (cur.Type == lexer.Increment || cur.Type == lexer.Decrement) && !p.cursor.PrecededByLineTerminator() {
		p.cursor.Advance(lexer.GoalDiv)
		return &ast.UpdateExpression{Position: expr.Pos(), Operator: operatorText[cur.Type], Operand: expr, Prefix: false}, nil
	}
	return expr, nil
}

// parseLeftHandSideExpression parses NewExpression/CallExpression/member
// access chains: `new Foo().bar[baz](qux)?.quux`.
func (p *Parser) parseLeftHandSideExpression() (ast.Expression, error) {
	var expr ast.Expression
	var err error
	if p.cursor.Is(lexer.KeywordNew) {
		expr, err = p.parseNewExpression()
	} else {
		expr, err = p.parsePrimaryExpression()
	}
	if err != nil {
		return nil, err
	}
	return p.parseCallMemberTail(expr)
}

func (p *Parser) parseNewExpression() (ast.Expression, error) {
	pos := p.cursor.Position()
	p.cursor.Advance(lexer.GoalDiv)
	if p.cursor.Is(lexer.Dot) {
		p.cursor.Advance(lexer.GoalDiv)
		if p.cursor.Current().Literal != "target" {
			p.addErrorf(p.cursor.Position(), ErrUnexpectedToken, "expected 'target' after 'new.'")
		}
		p.cursor.Advance(lexer.GoalDiv)
		return &ast.NewTargetExpression{Position: pos}, nil
	}
	var callee ast.Expression
	var err error
	if p.cursor.Is(lexer.KeywordNew) {
		callee, err = p.parseNewExpression()
	} else {
		callee, err = p.parsePrimaryExpression()
	}
	if err != nil {
		return nil, err
	}
	callee, err = p.parseMemberTailOnly(callee)
	if err != nil {
		return nil, err
	}
	var args []ast.Expression
	if p.cursor.Is(lexer.LParen) {
		args, err = p.parseArguments()
		if err != nil {
			return nil, err
		}
	}
	return &ast.NewExpression{Position: pos, Callee: callee, Arguments: args}, nil
}

// parseMemberTailOnly consumes `.prop`/`[expr]` but not `(...)` calls —
// used while building the callee of a `new` expression, since
// `new Foo(a)(b)` means "call the result of `new Foo(a)` with `(b)`", not
// "new-construct Foo with call-then-member chain as the callee".
func (p *Parser) parseMemberTailOnly(expr ast.Expression) (ast.Expression, error) {
	for {
		switch p.cursor.Current().Type {
		case lexer.Dot:
			p.cursor.Advance(lexer.GoalDiv)
			prop := p.parseIdentifierName()
			expr = &ast.MemberExpression{Position: expr.Pos(), Object: expr, Property: prop, Computed: false}
		case lexer.LBracket:
			p.cursor.Advance(lexer.GoalDiv)
			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if !p.cursor.Expect(lexer.RBracket) {
				p.addErrorf(p.cursor.Position(), ErrMissingRBracket, "expected ']'")
			}
			expr = &ast.MemberExpression{Position: expr.Pos(), Object: expr, Property: index, Computed: true}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parseCallMemberTail(expr ast.Expression) (ast.Expression, error) {
	for {
		switch p.cursor.Current().Type {
		case lexer.Dot:
			p.cursor.Advance(lexer.GoalDiv)
			prop := p.parseIdentifierName()
			expr = &ast.MemberExpression{Position: expr.Pos(), Object: expr, Property: prop, Computed: false}
		case lexer.QuestionDot:
			p.cursor.Advance(lexer.GoalDiv)
			if p.cursor.Is(lexer.LParen) {
				args, err := p.parseArguments()
				if err != nil {
					return nil, err
				}
				expr = &ast.CallExpression{Position: expr.Pos(), Callee: expr, Arguments: args, Optional: true}
				continue
			}
			if p.cursor.Is(lexer.LBracket) {
				p.cursor.Advance(lexer.GoalDiv)
				index, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				if !p.cursor.Expect(lexer.RBracket) {
					p.addErrorf(p.cursor.Position(), ErrMissingRBracket, "expected ']'")
				}
				expr = &ast.MemberExpression{Position: expr.Pos(), Object: expr, Property: index, Computed: true, Optional: true}
				continue
			}
			prop := p.parseIdentifierName()
			expr = &ast.MemberExpression{Position: expr.Pos(), Object: expr, Property: prop, Computed: false, Optional: true}
		case lexer.LBracket:
			p.cursor.Advance(lexer.GoalDiv)
			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if !p.cursor.Expect(lexer.RBracket) {
				p.addErrorf(p.cursor.Position(), ErrMissingRBracket, "expected ']'")
			}
			expr = &ast.MemberExpression{Position: expr.Pos(), Object: expr, Property: index, Computed: true}
		case lexer.LParen:
			args, err := p.parseArguments()
			if err != nil {
				return nil, err
			}
			if sup, ok := expr.(*ast.SuperExpression); ok {
				expr = &ast.SuperCallExpression{Position: sup.Position, Arguments: args}
				continue
			}
			expr = &ast.CallExpression{Position: expr.Pos(), Callee: expr, Arguments: args}
		case lexer.TemplateHead, lexer.NoSubstitutionTemplate:
			tmpl, err := p.parseTemplateLiteral()
			if err != nil {
				return nil, err
			}
			expr = &ast.TaggedTemplateExpression{Position: expr.Pos(), Tag: expr, Quasi: tmpl}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parseArguments() ([]ast.Expression, error) {
	p.cursor.Advance(lexer.GoalRegExp) // consume '('
	var args []ast.Expression
	for !p.cursor.Is(lexer.RParen) {
		if p.cursor.Is(lexer.DotDotDot) {
			pos := p.cursor.Position()
			p.cursor.Advance(lexer.GoalRegExp)
			arg, err := p.parseAssignmentExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, &ast.SpreadElement{Position: pos, Argument: arg})
		} else {
			arg, err := p.parseAssignmentExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		if p.cursor.Is(lexer.Comma) {
			p.cursor.Advance(lexer.GoalRegExp)
			continue
		}
		break
	}
	if !p.cursor.Expect(lexer.RParen) {
		p.addErrorf(p.cursor.Position(), ErrMissingRParen, "expected ')' in argument list")
	}
	return args, nil
}

// parseIdentifierName accepts any IdentifierName, including reserved
// words, for use as a non-computed member property (`obj.class` is legal).
func (p *Parser) parseIdentifierName() *ast.Identifier {
	tok := p.cursor.Current()
	id := &ast.Identifier{Position: tok.Span.Start, Name: tok.Literal, Sym: tok.Sym}
	p.cursor.Advance(lexer.GoalDiv)
	return id
}

var operatorText = map[lexer.TokenType]string{
	lexer.Plus: "+", lexer.Minus: "-", lexer.Star: "*", lexer.Slash: "/", lexer.Percent: "%",
	lexer.StarStar: "**", lexer.Bang: "!", lexer.Tilde: "~",
	lexer.KeywordTypeof: "typeof", lexer.KeywordVoid: "void", lexer.KeywordDelete: "delete",
	lexer.Increment: "++", lexer.Decrement: "--",
	lexer.LessThan: "<", lexer.GreaterThan: ">", lexer.LessEqual: "<=", lexer.GreaterEqual: ">=",
	lexer.EqEq: "==", lexer.NotEq: "!=", lexer.EqEqEq: "===", lexer.NotEqEq: "!==",
	lexer.KeywordInstanceof: "instanceof", lexer.KeywordIn: "in",
	lexer.LShift: "<<", lexer.RShift: ">>", lexer.URShift: ">>>",
	lexer.Amp: "&", lexer.Pipe: "|", lexer.Caret: "^",
	lexer.AmpAmp: "&&", lexer.PipePipe: "||", lexer.QuestionQuestion: "??",
	lexer.Assign: "=", lexer.PlusAssign: "+=", lexer.MinusAssign: "-=",
	lexer.StarAssign: "*=", lexer.SlashAssign: "/=", lexer.PercentAssign: "%=",
	lexer.StarStarAssign: "**=", lexer.LShiftAssign: "<<=", lexer.RShiftAssign: ">>=",
	lexer.URShiftAssign: ">>>=", lexer.AmpAssign: "&=", lexer.PipeAssign: "|=",
	lexer.CaretAssign: "^=", lexer.AmpAmpAssign: "&&=", lexer.PipePipeAssign: "||=",
	lexer.QuestionQuestionAssign: "??=",
}
