package parser

import (
	"github.com/cwbudde/ecma/internal/ast"
	"github.com/cwbudde/ecma/internal/lexer"
)

func (p *Parser) parseFunctionDeclaration() (ast.Statement, error) {
	fn, err := p.parseFunctionCommon(true)
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDeclaration{FunctionLike: fn}, nil
}

func (p *Parser) parseFunctionExpression() (ast.Expression, error) {
	fn, err := p.parseFunctionCommon(false)
	if err != nil {
		return nil, err
	}
	return &ast.FunctionExpression{FunctionLike: fn}, nil
}

func (p *Parser) parseFunctionCommon(requireName bool) (*ast.FunctionLike, error) {
	pos := p.cursor.Position()
	isAsync := false
	if p.cursor.Is(lexer.KeywordAsync) {
		isAsync = true
		p.cursor.Advance(lexer.GoalDiv)
	}
	if !p.cursor.Expect(lexer.KeywordFunction) {
		p.addErrorf(p.cursor.Position(), ErrUnexpectedToken, "expected 'function'")
	}
	isGenerator := false
	if p.cursor.Is(lexer.Star) {
		isGenerator = true
		p.cursor.Advance(lexer.GoalDiv)
	}
	var name *ast.Identifier
	if p.cursor.Is(lexer.IDENT) || p.cursor.Current().Type.IsKeyword() {
		tok := p.cursor.Current()
		name = &ast.Identifier{Position: tok.Span.Start, Name: tok.Literal, Sym: tok.Sym}
		p.cursor.Advance(lexer.GoalDiv)
	} else if requireName {
		p.addErrorf(p.cursor.Position(), ErrExpectedIdent, "expected function name")
	}

	outer := p.scope
	p.scope = scopeKind{inFunction: true, inGenerator: isGenerator, inAsync: isAsync}

	params, err := p.parseFormalParameters()
	if err != nil {
		p.scope = outer
		return nil, err
	}
	body, err := p.parseBlockStatement()
	p.scope = outer
	if err != nil {
		return nil, err
	}

	kind := ast.FunctionNormal
	return &ast.FunctionLike{
		Position: pos, Name: name, Params: params, Body: body,
		Kind: kind, IsGenerator: isGenerator, IsAsync: isAsync,
	}, nil
}

// parseMethodBody parses the `(params) { body }` tail of an already-keyed
// class or object method, inheriting async/generator flags decided by the
// caller from the leading modifiers it consumed.
func (p *Parser) parseMethodBody(isAsync, isGenerator bool) (*ast.FunctionExpression, error) {
	pos := p.cursor.Position()
	outer := p.scope
	p.scope = scopeKind{inFunction: true, inGenerator: isGenerator, inAsync: isAsync}
	params, err := p.parseFormalParameters()
	if err != nil {
		p.scope = outer
		return nil, err
	}
	body, err := p.parseBlockStatement()
	p.scope = outer
	if err != nil {
		return nil, err
	}
	return &ast.FunctionExpression{FunctionLike: &ast.FunctionLike{
		Position: pos, Params: params, Body: body, Kind: ast.FunctionMethod,
		IsGenerator: isGenerator, IsAsync: isAsync,
	}}, nil
}

func (p *Parser) parseFormalParameters() (*ast.FormalParameterList, error) {
	if !p.cursor.Expect(lexer.LParen) {
		p.addErrorf(p.cursor.Position(), ErrMissingLParen, "expected '('")
	}
	list := &ast.FormalParameterList{IsSimple: true}
	seen := map[string]bool{}
	for !p.cursor.Is(lexer.RParen) {
		var param ast.Param
		if p.cursor.Is(lexer.DotDotDot) {
			p.cursor.Advance(lexer.GoalDiv)
			param.Rest = true
			list.HasRest = true
			list.IsSimple = false
		}
		target, err := p.parseBindingTarget()
		if err != nil {
			return nil, err
		}
		param.Target = target
		if id, ok := target.(*ast.Identifier); ok {
			if id.Name == "arguments" {
				list.HasArguments = true
			}
			if seen[id.Name] {
				list.HasDuplicates = true
			}
			seen[id.Name] = true
		} else {
			list.IsSimple = false
		}
		if p.cursor.Is(lexer.Assign) {
			p.cursor.Advance(lexer.GoalDiv)
			def, err := p.parseAssignmentExpression()
			if err != nil {
				return nil, err
			}
			param.Default = def
			list.HasExpressions = true
			list.IsSimple = false
		}
		list.Params = append(list.Params, param)
		if p.cursor.Is(lexer.Comma) {
			p.cursor.Advance(lexer.GoalDiv)
			continue
		}
		break
	}
	if !p.cursor.Expect(lexer.RParen) {
		p.addErrorf(p.cursor.Position(), ErrMissingRParen, "expected ')'")
	}
	for _, param := range list.Params {
		if param.Default != nil || param.Rest {
			break
		}
		list.Length++
	}
	return list, nil
}

// parseBindingTarget parses an identifier or a destructuring pattern used
// as a declaration/parameter target.
func (p *Parser) parseBindingTarget() (ast.Binding, error) {
	switch p.cursor.Current().Type {
	case lexer.LBracket:
		return p.parseArrayPattern()
	case lexer.LBrace:
		return p.parseObjectPattern()
	default:
		tok := p.cursor.Current()
		if tok.Type != lexer.IDENT && !tok.Type.IsKeyword() {
			p.addErrorf(tok.Span.Start, ErrExpectedBinding, "expected binding identifier")
		}
		p.cursor.Advance(lexer.GoalDiv)
		return &ast.Identifier{Position: tok.Span.Start, Name: tok.Literal, Sym: tok.Sym}, nil
	}
}

func (p *Parser) parseArrayPattern() (ast.Binding, error) {
	pos := p.cursor.Position()
	p.cursor.Advance(lexer.GoalDiv)
	pat := &ast.ArrayPattern{Position: pos}
	for !p.cursor.Is(lexer.RBracket) {
		if p.cursor.Is(lexer.Comma) {
			pat.Elements = append(pat.Elements, nil)
			p.cursor.Advance(lexer.GoalDiv)
			continue
		}
		if p.cursor.Is(lexer.DotDotDot) {
			p.cursor.Advance(lexer.GoalDiv)
			rest, err := p.parseBindingTarget()
			if err != nil {
				return nil, err
			}
			pat.Rest = rest
			break
		}
		target, err := p.parseBindingTarget()
		if err != nil {
			return nil, err
		}
		el := &ast.PatternElement{Target: target}
		if p.cursor.Is(lexer.Assign) {
			p.cursor.Advance(lexer.GoalDiv)
			def, err := p.parseAssignmentExpression()
			if err != nil {
				return nil, err
			}
			el.Default = def
		}
		pat.Elements = append(pat.Elements, el)
		if p.cursor.Is(lexer.Comma) {
			p.cursor.Advance(lexer.GoalDiv)
			continue
		}
		break
	}
	if !p.cursor.Expect(lexer.RBracket) {
		p.addErrorf(p.cursor.Position(), ErrMissingRBracket, "expected ']'")
	}
	return pat, nil
}

func (p *Parser) parseObjectPattern() (ast.Binding, error) {
	pos := p.cursor.Position()
	p.cursor.Advance(lexer.GoalDiv)
	pat := &ast.ObjectPattern{Position: pos}
	for !p.cursor.Is(lexer.RBrace) {
		if p.cursor.Is(lexer.DotDotDot) {
			p.cursor.Advance(lexer.GoalDiv)
			rest, err := p.parseBindingTarget()
			if err != nil {
				return nil, err
			}
			pat.Rest = rest
			break
		}
		key, computed, err := p.parsePropertyKey()
		if err != nil {
			return nil, err
		}
		el := &ast.PatternElement{Key: key, Computed: computed}
		if p.cursor.Is(lexer.Colon) {
			p.cursor.Advance(lexer.GoalDiv)
			target, err := p.parseBindingTarget()
			if err != nil {
				return nil, err
			}
			el.Target = target
		} else if id, ok := key.(*ast.Identifier); ok {
			el.Target = id
		} else {
			p.addErrorf(pos, ErrExpectedBinding, "expected ':' after computed property key in pattern")
		}
		if p.cursor.Is(lexer.Assign) {
			p.cursor.Advance(lexer.GoalDiv)
			def, err := p.parseAssignmentExpression()
			if err != nil {
				return nil, err
			}
			el.Default = def
		}
		pat.Properties = append(pat.Properties, el)
		if p.cursor.Is(lexer.Comma) {
			p.cursor.Advance(lexer.GoalDiv)
			continue
		}
		break
	}
	if !p.cursor.Expect(lexer.RBrace) {
		p.addErrorf(p.cursor.Position(), ErrMissingRBrace, "expected '}'")
	}
	return pat, nil
}

// tryParseArrowFunction speculatively parses an ArrowFunction by marking
// the cursor, attempting a parameter list (either a single identifier or
// a parenthesized list), and checking for `=>` with no line terminator
// before committing. On any mismatch it rewinds to the mark and reports
// no match, leaving the conditional-expression parser to handle the input
// as ordinary parenthesized/identifier expressions.
func (p *Parser) tryParseArrowFunction() (ast.Expression, bool, error) {
	mark := p.cursor.Mark()
	errCount := len(p.errors)
	pos := p.cursor.Position()

	isAsync := false
	if p.cursor.Is(lexer.KeywordAsync) && !p.peekPrecededByLineTerminator(1) {
		next := p.cursor.Peek(1, lexer.GoalDiv).Type
		if next == lexer.LParen || next == lexer.IDENT {
			isAsync = true
			p.cursor.Advance(lexer.GoalDiv)
		}
	}

	var params *ast.FormalParameterList
	if p.cursor.Is(lexer.IDENT) {
		tok := p.cursor.Current()
		id := &ast.Identifier{Position: tok.Span.Start, Name: tok.Literal, Sym: tok.Sym}
		params = &ast.FormalParameterList{IsSimple: true, Length: 1, Params: []ast.Param{{Target: id}}}
		p.cursor.Advance(lexer.GoalDiv)
	} else if p.cursor.Is(lexer.LParen) {
		var err error
		params, err = p.parseFormalParameters()
		if err != nil {
			p.cursor.ResetTo(mark)
			p.errors = p.errors[:errCount]
			return nil, false, nil
		}
	} else {
		p.cursor.ResetTo(mark)
		p.errors = p.errors[:errCount]
		return nil, false, nil
	}

	if !p.cursor.Is(lexer.Arrow) || p.cursor.PrecededByLineTerminator() {
		p.cursor.ResetTo(mark)
		p.errors = p.errors[:errCount]
		return nil, false, nil
	}
	p.cursor.Advance(lexer.GoalRegExp)

	outer := p.scope
	p.scope = scopeKind{inFunction: true, inAsync: isAsync}

	fn := &ast.FunctionLike{Position: pos, Params: params, Kind: ast.FunctionArrow, IsAsync: isAsync}
	if p.cursor.Is(lexer.LBrace) {
		body, err := p.parseBlockStatement()
		p.scope = outer
		if err != nil {
			return nil, false, err
		}
		fn.Body = body
	} else {
		expr, err := p.parseAssignmentExpression()
		p.scope = outer
		if err != nil {
			return nil, false, err
		}
		fn.ExprBody = expr
	}
	return &ast.ArrowFunctionExpression{FunctionLike: fn}, true, nil
}
