package lexer

import (
	"testing"

	"github.com/cwbudde/ecma/internal/intern"
)

func allTokens(t *testing.T, src string) []Token {
	t.Helper()
	in := intern.New()
	l := New(src, in)
	var toks []Token
	for {
		tok, err := l.Next(GoalRegExp)
		if err != nil {
			t.Fatalf("lex error: %v", err)
		}
		toks = append(toks, tok)
		if tok.Type == EOF {
			return toks
		}
	}
}

func TestIdentifiersAndKeywords(t *testing.T) {
	toks := allTokens(t, "let x = foo")
	want := []TokenType{KeywordLet, IDENT, Assign, IDENT, EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].Type != w {
			t.Errorf("token %d: got %v, want %v", i, toks[i].Type, w)
		}
	}
}

func TestEscapedKeywordIsIdentifier(t *testing.T) {
	toks := allTokens(t, "\x5cu0066unction") // \x5c is a backslash
	if toks[0].Type != IDENT {
		t.Fatalf("escaped keyword spelling must lex as IDENT, got %v", toks[0].Type)
	}
	if !toks[0].Escaped {
		t.Errorf("expected Escaped flag set")
	}
	if toks[0].Cooked != "function" {
		t.Errorf("cooked identifier = %q, want %q", toks[0].Cooked, "function")
	}
}

func TestNumericLiterals(t *testing.T) {
	cases := []struct {
		src  string
		typ  TokenType
		want string
	}{
		{"123", NumericLiteral, "123"},
		{"1.5e10", NumericLiteral, "1.5e10"},
		{"0xFF", NumericLiteral, "0xFF"},
		{"0b1010", NumericLiteral, "0b1010"},
		{"0o17", NumericLiteral, "0o17"},
		{"10n", BigIntLiteral, "10"},
	}
	for _, c := range cases {
		toks := allTokens(t, c.src)
		if toks[0].Type != c.typ {
			t.Errorf("%q: got type %v, want %v", c.src, toks[0].Type, c.typ)
		}
	}
}

func TestStringEscapes(t *testing.T) {
	toks := allTokens(t, `'a\nb'`)
	if toks[0].Type != StringLiteral {
		t.Fatalf("expected StringLiteral, got %v", toks[0].Type)
	}
	if toks[0].Cooked != "a\nb" {
		t.Errorf("cooked = %q, want %q", toks[0].Cooked, "a\nb")
	}
}

func TestTemplateHeadAndTail(t *testing.T) {
	in := intern.New()
	l := New("`a${1}b`", in)
	head, err := l.Next(GoalDiv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if head.Type != TemplateHead || head.Cooked != "a" {
		t.Fatalf("head = %+v", head)
	}
	num, err := l.Next(GoalDiv)
	if err != nil || num.Type != NumericLiteral {
		t.Fatalf("expected numeric literal inside substitution, got %+v err=%v", num, err)
	}
	tail, err := l.Next(GoalTemplateTail)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tail.Type != TemplateTail || tail.Cooked != "b" {
		t.Fatalf("tail = %+v", tail)
	}
}

func TestLineTerminatorCountsCRLFAsOne(t *testing.T) {
	toks := allTokens(t, "a\r\nb")
	// IDENT, LineTerminator, IDENT, EOF
	if len(toks) != 4 {
		t.Fatalf("got %d tokens, want 4: %+v", len(toks), toks)
	}
	if toks[1].Type != LineTerminator {
		t.Fatalf("expected LineTerminator, got %v", toks[1].Type)
	}
	if toks[2].Span.Start.Line != 2 {
		t.Errorf("second identifier should be on line 2, got %d", toks[2].Span.Start.Line)
	}
}

func TestDivisionVsRegexGoal(t *testing.T) {
	in := intern.New()
	l := New("/abc/", in)
	tok, err := l.Next(GoalRegExp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.Type != RegexLiteral {
		t.Fatalf("expected RegexLiteral under GoalRegExp, got %v", tok.Type)
	}

	l2 := New("/ abc", in)
	tok2, err := l2.Next(GoalDiv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok2.Type != Slash {
		t.Fatalf("expected Slash under GoalDiv, got %v", tok2.Type)
	}
}

func TestLineCommentSkipped(t *testing.T) {
	toks := allTokens(t, "a // comment\nb")
	if toks[0].Type != IDENT || toks[1].Type != LineTerminator || toks[2].Type != IDENT {
		t.Fatalf("unexpected tokens: %+v", toks)
	}
}
