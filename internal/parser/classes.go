package parser

import (
	"github.com/cwbudde/ecma/internal/ast"
	"github.com/cwbudde/ecma/internal/lexer"
)

func (p *Parser) parseClassDeclaration() (ast.Statement, error) {
	pos, name, super, body, err := p.parseClassCommon()
	if err != nil {
		return nil, err
	}
	return &ast.ClassDeclaration{Position: pos, Name: name, SuperClass: super, Body: body}, nil
}

func (p *Parser) parseClassExpression() (ast.Expression, error) {
	pos, name, super, body, err := p.parseClassCommon()
	if err != nil {
		return nil, err
	}
	return &ast.ClassExpression{Position: pos, Name: name, SuperClass: super, Body: body}, nil
}

func (p *Parser) parseClassCommon() (lexer.Position, *ast.Identifier, ast.Expression, *ast.ClassBody, error) {
	pos := p.cursor.Position()
	p.cursor.Advance(lexer.GoalDiv)
	outerStrict := p.strict
	p.strict = true // class bodies are always strict

	var name *ast.Identifier
	if p.cursor.Is(lexer.IDENT) {
		tok := p.cursor.Current()
		name = &ast.Identifier{Position: tok.Span.Start, Name: tok.Literal, Sym: tok.Sym}
		p.cursor.Advance(lexer.GoalDiv)
	}

	var super ast.Expression
	if p.cursor.Is(lexer.KeywordExtends) {
		p.cursor.Advance(lexer.GoalRegExp)
		expr, err := p.parseLeftHandSideExpression()
		if err != nil {
			p.strict = outerStrict
			return pos, nil, nil, nil, err
		}
		super = expr
	}

	body, err := p.parseClassBody()
	p.strict = outerStrict
	if err != nil {
		return pos, nil, nil, nil, err
	}
	return pos, name, super, body, nil
}

func (p *Parser) parseClassBody() (*ast.ClassBody, error) {
	if !p.cursor.Expect(lexer.LBrace) {
		p.addErrorf(p.cursor.Position(), ErrUnexpectedToken, "expected '{'")
	}
	body := &ast.ClassBody{}
	for !p.cursor.Is(lexer.RBrace) && !p.cursor.IsEOF() {
		if p.cursor.Is(lexer.Semicolon) {
			p.cursor.Advance(lexer.GoalRegExp)
			continue
		}
		el, err := p.parseClassElement()
		if err != nil {
			return body, err
		}
		if el != nil {
			body.Elements = append(body.Elements, el)
		}
	}
	if !p.cursor.Expect(lexer.RBrace) {
		p.addErrorf(p.cursor.Position(), ErrMissingRBrace, "expected '}'")
	}
	return body, nil
}

func (p *Parser) parseClassElement() (ast.ClassElement, error) {
	static := false
	if p.cursor.Is(lexer.KeywordStatic) && !p.isPropertyKeyTerminator(1) {
		if p.cursor.Peek(1, lexer.GoalDiv).Type == lexer.LBrace {
			p.cursor.Advance(lexer.GoalDiv)
			return p.parseStaticBlock()
		}
		static = true
		p.cursor.Advance(lexer.GoalDiv)
	}

	isAsync, isGenerator := false, false
	kind := ast.MethodOrdinary
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
			kind = ast.MethodGetter
		} else {
			kind = ast.MethodSetter
		}
		p.cursor.Advance(lexer.GoalDiv)
	}

	pos := p.cursor.Position()
	var key ast.Expression
	var computed bool
	var err error
	if p.cursor.Current().Type == lexer.IDENT && p.cursor.Current().Literal[0] == '#' {
		tok := p.cursor.Current()
		key = &ast.PrivateIdentifier{Position: tok.Span.Start, Name: tok.Literal[1:], Sym: tok.Sym}
		p.cursor.Advance(lexer.GoalDiv)
	} else {
		key, computed, err = p.parsePropertyKey()
		if err != nil {
			return nil, err
		}
	}

	if p.cursor.Is(lexer.LParen) {
		fn, err := p.parseMethodBody(isAsync, isGenerator)
		if err != nil {
			return nil, err
		}
		if kind == ast.MethodOrdinary {
			if id, ok := key.(*ast.Identifier); ok && id.Name == "constructor" && !static {
				kind = ast.MethodConstructor
			}
		}
		fn.Kind = methodKindToFunctionKind(kind)
		return &ast.MethodDefinition{Position: pos, Key: key, Value: fn, Kind: kind, Static: static, Computed: computed}, nil
	}

	// Field definition, with an optional initializer up to the terminating
	// semicolon (ASI applies the same as any other statement).
	field := &ast.FieldDefinition{Position: pos, Key: key, Static: static, Computed: computed}
	if p.cursor.Is(lexer.Assign) {
		p.cursor.Advance(lexer.GoalRegExp)
		val, err := p.parseAssignmentExpression()
		if err != nil {
			return nil, err
		}
		field.Value = val
	}
	p.consumeSemicolon()
	return field, nil
}

func methodKindToFunctionKind(k ast.MethodKind) ast.FunctionKind {
	switch k {
	case ast.MethodGetter:
		return ast.FunctionGetter
	case ast.MethodSetter:
		return ast.FunctionSetter
	case ast.MethodConstructor:
		return ast.FunctionConstructorKind
	default:
		return ast.FunctionMethod
	}
}

func (p *Parser) parseStaticBlock() (ast.ClassElement, error) {
	pos := p.cursor.Position()
	block, err := p.parseBlockStatement()
	if err != nil {
		return nil, err
	}
	return &ast.StaticBlock{Position: pos, Body: block.Body}, nil
}
