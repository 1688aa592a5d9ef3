package parser

import (
	"strconv"

	"github.com/cwbudde/ecma/internal/ast"
	"github.com/cwbudde/ecma/internal/lexer"
)

func (p *Parser) parsePrimaryExpression() (ast.Expression, error) {
	tok := p.cursor.Current()
	switch tok.Type {
	case lexer.NumericLiteral:
		p.cursor.Advance(lexer.GoalDiv)
		return &ast.NumberLiteral{Position: tok.Span.Start, Raw: tok.Literal, Value: parseNumberLiteralValue(tok.Cooked)}, nil
	case lexer.BigIntLiteral:
		p.cursor.Advance(lexer.GoalDiv)
		return &ast.BigIntLiteral{Position: tok.Span.Start, Raw: tok.Cooked}, nil
	case lexer.StringLiteral:
		p.cursor.Advance(lexer.GoalDiv)
		return &ast.StringLiteral{Position: tok.Span.Start, Value: tok.Cooked}, nil
	case lexer.KeywordTrue:
		p.cursor.Advance(lexer.GoalDiv)
		return &ast.BoolLiteral{Position: tok.Span.Start, Value: true}, nil
	case lexer.KeywordFalse:
		p.cursor.Advance(lexer.GoalDiv)
		return &ast.BoolLiteral{Position: tok.Span.Start, Value: false}, nil
	case lexer.KeywordNull:
		p.cursor.Advance(lexer.GoalDiv)
		return &ast.NullLiteral{Position: tok.Span.Start}, nil
	case lexer.KeywordThis:
		p.cursor.Advance(lexer.GoalDiv)
		return &ast.ThisExpression{Position: tok.Span.Start}, nil
	case lexer.KeywordSuper:
		p.cursor.Advance(lexer.GoalDiv)
		return &ast.SuperExpression{Position: tok.Span.Start}, nil
	case lexer.RegexLiteral:
		p.cursor.Advance(lexer.GoalDiv)
		return &ast.RegexLiteral{Position: tok.Span.Start, Pattern: tok.Cooked, Flags: tok.RegexFlags}, nil
	case lexer.IDENT, lexer.KeywordGet, lexer.KeywordSet, lexer.KeywordAsync, lexer.KeywordFrom, lexer.KeywordAs, lexer.KeywordOf, lexer.KeywordStatic:
		if tok.Type == lexer.KeywordAsync && p.cursor.Peek(1, lexer.GoalDiv).Type == lexer.KeywordFunction {
			return p.parseFunctionExpression()
		}
		p.cursor.Advance(lexer.GoalDiv)
		return &ast.Identifier{Position: tok.Span.Start, Name: tok.Literal, Sym: tok.Sym}, nil
	case lexer.KeywordYield:
		// yield used as an identifier outside a generator body
		p.cursor.Advance(lexer.GoalDiv)
		return &ast.Identifier{Position: tok.Span.Start, Name: tok.Literal, Sym: tok.Sym}, nil
	case lexer.LParen:
		return p.parseParenthesizedExpression()
	case lexer.LBracket:
		return p.parseArrayLiteral()
	case lexer.LBrace:
		return p.parseObjectLiteral()
	case lexer.TemplateHead, lexer.NoSubstitutionTemplate:
		return p.parseTemplateLiteral()
	case lexer.KeywordFunction:
		return p.parseFunctionExpression()
	case lexer.KeywordClass:
		return p.parseClassExpression()
	}
	p.addErrorf(tok.Span.Start, ErrNoPrefixParse, "unexpected token %q", tok.Literal)
	p.cursor.Advance(lexer.GoalDiv)
	return &ast.Identifier{Position: tok.Span.Start, Name: "(error)"}, nil
}

// parseNumberLiteralValue converts a numeric literal's cooked text (prefix
// and digits, underscores already stripped) to its float64 value. Integer
// forms, including the 0x/0o/0b prefixes, are tried first so a literal like
// 0x2a yields 42 rather than failing to parse as a decimal float.
func parseNumberLiteralValue(cooked string) float64 {
	if iv, err := strconv.ParseInt(cooked, 0, 64); err == nil {
		return float64(iv)
	}
	if uv, err := strconv.ParseUint(cooked, 0, 64); err == nil {
		return float64(uv)
	}
	val, _ := strconv.ParseFloat(cooked, 64)
	return val
}

func (p *Parser) parseParenthesizedExpression() (ast.Expression, error) {
	p.cursor.Advance(lexer.GoalRegExp)
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.cursor.Expect(lexer.RParen) {
		p.addErrorf(p.cursor.Position(), ErrMissingRParen, "expected ')'")
	}
	return expr, nil
}

func (p *Parser) parseArrayLiteral() (ast.Expression, error) {
	pos := p.cursor.Position()
	p.cursor.Advance(lexer.GoalRegExp)
	var elements []ast.Expression
	for !p.cursor.Is(lexer.RBracket) {
		if p.cursor.Is(lexer.Comma) {
			elements = append(elements, nil)
			p.cursor.Advance(lexer.GoalRegExp)
			continue
		}
		if p.cursor.Is(lexer.DotDotDot) {
			spos := p.cursor.Position()
			p.cursor.Advance(lexer.GoalRegExp)
			arg, err := p.parseAssignmentExpression()
			if err != nil {
				return nil, err
			}
			elements = append(elements, &ast.SpreadElement{Position: spos, Argument: arg})
		} else {
			el, err := p.parseAssignmentExpression()
			if err != nil {
				return nil, err
			}
			elements = append(elements, el)
		}
		if p.cursor.Is(lexer.Comma) {
			p.cursor.Advance(lexer.GoalRegExp)
			continue
		}
		break
	}
	if !p.cursor.Expect(lexer.RBracket) {
		p.addErrorf(p.cursor.Position(), ErrMissingRBracket, "expected ']'")
	}
	return &ast.ArrayLiteral{Position: pos, Elements: elements}, nil
}

func (p *Parser) parseObjectLiteral() (ast.Expression, error) {
	pos := p.cursor.Position()
	p.cursor.Advance(lexer.GoalDiv)
	var props []ast.Property
	for !p.cursor.Is(lexer.RBrace) {
		prop, err := p.parseObjectProperty()
		if err != nil {
			return nil, err
		}
		props = append(props, prop)
		if p.cursor.Is(lexer.Comma) {
			p.cursor.Advance(lexer.GoalDiv)
			continue
		}
		break
	}
	if !p.cursor.Expect(lexer.RBrace) {
		p.addErrorf(p.cursor.Position(), ErrMissingRBrace, "expected '}'")
	}
	return &ast.ObjectLiteral{Position: pos, Properties: props}, nil
}

func (p *Parser) parseObjectProperty() (ast.Property, error) {
	pos := p.cursor.Position()
	if p.cursor.Is(lexer.DotDotDot) {
		p.cursor.Advance(lexer.GoalDiv)
		val, err := p.parseAssignmentExpression()
		if err != nil {
			return ast.Property{}, err
		}
		return ast.Property{Position: pos, Kind: ast.PropertySpread, Value: val}, nil
	}

	isAsync, isGenerator := false, false
	kind := ast.PropertyInit
	if p.cursor.Is(lexer.KeywordAsync) && !p.isPropertyKeyTerminator(1) {
		isAsync = true
		p.cursor.Advance(lexer.GoalDiv)
	}
	if p.cursor.Is(lexer.Star) {
		isGenerator = true
		p.cursor.Advance(lexer.GoalDiv)
	}
	if (p.cursor.Is(lexer.KeywordGet) || p.cursor.Is(lexer.KeywordSet)) && !p.isPropertyKeyTerminator(1) {
		if p.cursor.Is(lexer.KeywordGet) {
			kind = ast.PropertyGet
		} else {
			kind = ast.PropertySet
		}
		p.cursor.Advance(lexer.GoalDiv)
	}

	key, computed, err := p.parsePropertyKey()
	if err != nil {
		return ast.Property{}, err
	}

	if p.cursor.Is(lexer.LParen) {
		fn, err := p.parseMethodBody(isAsync, isGenerator)
		if err != nil {
			return ast.Property{}, err
		}
		if kind == ast.PropertyInit {
			kind = ast.PropertyMethod
		}
		return ast.Property{Position: pos, Key: key, Value: fn, Kind: kind, Computed: computed}, nil
	}

	if p.cursor.Is(lexer.Colon) {
		p.cursor.Advance(lexer.GoalDiv)
		val, err := p.parseAssignmentExpression()
		if err != nil {
			return ast.Property{}, err
		}
		return ast.Property{Position: pos, Key: key, Value: val, Kind: ast.PropertyInit, Computed: computed}, nil
	}

	// Shorthand: `{x}` or `{x = defaultInPattern}` (the latter only legal
	// when this object literal is later reinterpreted as a pattern).
	if id, ok := key.(*ast.Identifier); ok {
		if p.cursor.Is(lexer.Assign) {
			p.cursor.Advance(lexer.GoalDiv)
			def, err := p.parseAssignmentExpression()
			if err != nil {
				return ast.Property{}, err
			}
			return ast.Property{Position: pos, Key: id, Value: &ast.AssignExpression{Position: pos, Operator: "=", Target: id, Value: def}, Kind: ast.PropertyInit, Shorthand: true}, nil
		}
		return ast.Property{Position: pos, Key: id, Value: id, Kind: ast.PropertyInit, Shorthand: true}, nil
	}
	p.addErrorf(pos, ErrInvalidExpression, "invalid shorthand property")
	return ast.Property{Position: pos, Key: key, Value: key, Kind: ast.PropertyInit}, nil
}

// isPropertyKeyTerminator reports whether the token n ahead would make
// the current contextual keyword (`async`/`get`/`set`) a property key
// itself rather than a modifier prefix, e.g. `{ get() {} }` or `{ async:
// 1 }`.
func (p *Parser) isPropertyKeyTerminator(n int) bool {
	t := p.cursor.Peek(n, lexer.GoalDiv).Type
	return t == lexer.Colon || t == lexer.LParen || t == lexer.Comma || t == lexer.RBrace || t == lexer.Assign
}

func (p *Parser) parsePropertyKey() (ast.Expression, bool, error) {
	tok := p.cursor.Current()
	if tok.Type == lexer.LBracket {
		p.cursor.Advance(lexer.GoalDiv)
		key, err := p.parseAssignmentExpression()
		if err != nil {
			return nil, false, err
		}
		if !p.cursor.Expect(lexer.RBracket) {
			p.addErrorf(p.cursor.Position(), ErrMissingRBracket, "expected ']'")
		}
		return key, true, nil
	}
	if tok.Type == lexer.StringLiteral {
		p.cursor.Advance(lexer.GoalDiv)
		return &ast.StringLiteral{Position: tok.Span.Start, Value: tok.Cooked}, false, nil
	}
	if tok.Type == lexer.NumericLiteral {
		p.cursor.Advance(lexer.GoalDiv)
		return &ast.NumberLiteral{Position: tok.Span.Start, Raw: tok.Literal, Value: parseNumberLiteralValue(tok.Cooked)}, false, nil
	}
	// IdentifierName: any identifier or keyword spelling is a legal key.
	p.cursor.Advance(lexer.GoalDiv)
	return &ast.Identifier{Position: tok.Span.Start, Name: tok.Literal, Sym: tok.Sym}, false, nil
}

// parseTemplateLiteral parses a run of TemplateHead/Middle/Tail or
// NoSubstitutionTemplate tokens plus the expressions between them. The
// lexer scans a backtick-led token regardless of the requested goal, but
// the `}` that resumes a template after `${ ... }` requires the goal to
// be set to GoalTemplateTail before that token is lexed, so the token
// after each embedded expression is re-lexed under that goal.
func (p *Parser) parseTemplateLiteral() (*ast.TemplateLiteral, error) {
	pos := p.cursor.Position()
	lit := &ast.TemplateLiteral{Position: pos}
	cur := p.cursor.Current()
	for {
		lit.Quasis = append(lit.Quasis, ast.TemplateElement{
			Cooked: cur.Cooked, Raw: cur.Raw, CookedValid: cur.CookedValid,
			Tail: cur.Type == lexer.TemplateTail || cur.Type == lexer.NoSubstitutionTemplate,
		})
		if cur.Type == lexer.TemplateTail || cur.Type == lexer.NoSubstitutionTemplate {
			p.cursor.Advance(lexer.GoalDiv)
			break
		}
		p.cursor.Advance(lexer.GoalRegExp)
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		lit.Expressions = append(lit.Expressions, expr)
		cur = p.cursor.Retarget(lexer.GoalTemplateTail)
		if cur.Type != lexer.TemplateMiddle && cur.Type != lexer.TemplateTail {
			p.addErrorf(p.cursor.Position(), ErrMissingRBrace, "expected '}' to resume template literal")
		}
	}
	return lit, nil
}
