package parser

import (
	"github.com/cwbudde/ecma/internal/ast"
	"github.com/cwbudde/ecma/internal/lexer"
)

func (p *Parser) parseImportDeclaration() (ast.ModuleItem, error) {
	pos := p.cursor.Position()
	p.cursor.Advance(lexer.GoalDiv)

	decl := &ast.ImportDeclaration{Position: pos}

	if p.cursor.Is(lexer.StringLiteral) {
		// bare `import "mod";` side-effect import
		tok := p.cursor.Current()
		decl.Source = tok.Cooked
		p.cursor.Advance(lexer.GoalRegExp)
		p.consumeSemicolon()
		return decl, nil
	}

	if p.cursor.Is(lexer.IDENT) {
		tok := p.cursor.Current()
		decl.Default = &ast.Identifier{Position: tok.Span.Start, Name: tok.Literal, Sym: tok.Sym}
		p.cursor.Advance(lexer.GoalDiv)
		if p.cursor.Is(lexer.Comma) {
			p.cursor.Advance(lexer.GoalDiv)
		}
	}

	if p.cursor.Is(lexer.Star) {
		p.cursor.Advance(lexer.GoalDiv)
		if !p.cursor.Expect(lexer.KeywordAs) {
			p.addErrorf(p.cursor.Position(), ErrUnexpectedToken, "expected 'as' in namespace import")
		}
		tok := p.cursor.Current()
		decl.Namespace = &ast.Identifier{Position: tok.Span.Start, Name: tok.Literal, Sym: tok.Sym}
		p.cursor.Advance(lexer.GoalDiv)
	} else if p.cursor.Is(lexer.LBrace) {
		p.cursor.Advance(lexer.GoalDiv)
		for !p.cursor.Is(lexer.RBrace) {
			itok := p.cursor.Current()
			imported := &ast.Identifier{Position: itok.Span.Start, Name: itok.Literal, Sym: itok.Sym}
			p.cursor.Advance(lexer.GoalDiv)
			local := imported
			if p.cursor.Is(lexer.KeywordAs) {
				p.cursor.Advance(lexer.GoalDiv)
				ltok := p.cursor.Current()
				local = &ast.Identifier{Position: ltok.Span.Start, Name: ltok.Literal, Sym: ltok.Sym}
				p.cursor.Advance(lexer.GoalDiv)
			}
			decl.Named = append(decl.Named, ast.ImportSpecifier{Imported: imported, Local: local})
			if p.cursor.Is(lexer.Comma) {
				p.cursor.Advance(lexer.GoalDiv)
				continue
			}
			break
		}
		if !p.cursor.Expect(lexer.RBrace) {
			p.addErrorf(p.cursor.Position(), ErrMissingRBrace, "expected '}'")
		}
	}

	if !p.cursor.Expect(lexer.KeywordFrom) {
		p.addErrorf(p.cursor.Position(), ErrUnexpectedToken, "expected 'from'")
	}
	src := p.cursor.Current()
	decl.Source = src.Cooked
	p.cursor.Advance(lexer.GoalRegExp)
	p.consumeSemicolon()
	return decl, nil
}

func (p *Parser) parseExportDeclaration() (ast.ModuleItem, error) {
	pos := p.cursor.Position()
	p.cursor.Advance(lexer.GoalDiv)

	if p.cursor.Is(lexer.KeywordDefault) {
		p.cursor.Advance(lexer.GoalDiv)
		var node ast.Node
		var err error
		switch p.cursor.Current().Type {
		case lexer.KeywordFunction:
			node, err = p.parseFunctionDeclaration()
		case lexer.KeywordAsync:
			node, err = p.parseFunctionDeclaration()
		case lexer.KeywordClass:
			node, err = p.parseClassDeclaration()
		default:
			node, err = p.parseAssignmentExpression()
			if err == nil {
				p.consumeSemicolon()
			}
		}
		if err != nil {
			return nil, err
		}
		return &ast.ExportDefaultDeclaration{Position: pos, Declaration: node}, nil
	}

	if p.cursor.Is(lexer.Star) {
		p.cursor.Advance(lexer.GoalDiv)
		all := &ast.ExportAllDeclaration{Position: pos}
		if p.cursor.Is(lexer.KeywordAs) {
			p.cursor.Advance(lexer.GoalDiv)
			tok := p.cursor.Current()
			all.Exported = &ast.Identifier{Position: tok.Span.Start, Name: tok.Literal, Sym: tok.Sym}
			p.cursor.Advance(lexer.GoalDiv)
		}
		if !p.cursor.Expect(lexer.KeywordFrom) {
			p.addErrorf(p.cursor.Position(), ErrUnexpectedToken, "expected 'from'")
		}
		src := p.cursor.Current()
		all.Source = src.Cooked
		p.cursor.Advance(lexer.GoalRegExp)
		p.consumeSemicolon()
		return all, nil
	}

	if p.cursor.Is(lexer.LBrace) {
		p.cursor.Advance(lexer.GoalDiv)
		named := &ast.ExportNamedDeclaration{Position: pos}
		for !p.cursor.Is(lexer.RBrace) {
			ltok := p.cursor.Current()
			local := &ast.Identifier{Position: ltok.Span.Start, Name: ltok.Literal, Sym: ltok.Sym}
			p.cursor.Advance(lexer.GoalDiv)
			exported := local
			if p.cursor.Is(lexer.KeywordAs) {
				p.cursor.Advance(lexer.GoalDiv)
				etok := p.cursor.Current()
				exported = &ast.Identifier{Position: etok.Span.Start, Name: etok.Literal, Sym: etok.Sym}
				p.cursor.Advance(lexer.GoalDiv)
			}
			named.Specifiers = append(named.Specifiers, ast.ExportSpecifier{Local: local, Exported: exported})
			if p.cursor.Is(lexer.Comma) {
				p.cursor.Advance(lexer.GoalDiv)
				continue
			}
			break
		}
		if !p.cursor.Expect(lexer.RBrace) {
			p.addErrorf(p.cursor.Position(), ErrMissingRBrace, "expected '}'")
		}
		if p.cursor.Is(lexer.KeywordFrom) {
			p.cursor.Advance(lexer.GoalDiv)
			src := p.cursor.Current()
			named.Source = src.Cooked
			p.cursor.Advance(lexer.GoalRegExp)
		}
		p.consumeSemicolon()
		return named, nil
	}

	// `export <declaration>`: var/let/const/function/class.
	decl, err := p.parseStatementListItem()
	if err != nil {
		return nil, err
	}
	return &ast.ExportNamedDeclaration{Position: pos, Declaration: decl}, nil
}
