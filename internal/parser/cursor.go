// Package parser implements a recursive-descent ECMAScript parser that
// consumes internal/lexer tokens through a TokenCursor and builds an
// internal/ast tree.
package parser

import (
	"github.com/cwbudde/ecma/internal/intern"
	"github.com/cwbudde/ecma/internal/lexer"
)

// TokenCursor wraps a Lexer with lookahead buffering and goal-symbol
// control. Unlike a plain token slice, the next token is only well
// defined once the caller has told the cursor which lexical goal applies
// (Div, RegExp, RegExpOrTemplateTail, TemplateTail) — so buffered lookahead
// past the current position is invalidated whenever the goal for the
// next token changes from what it was lexed with.
type TokenCursor struct {
	lx      *lexer.Lexer
	tokens  []lexer.Token
	goals   []lexer.Goal // the goal each buffered token was lexed with
	index   int
	pending error
}

// NewTokenCursor creates a cursor positioned at the first token, lexed
// under GoalDiv (the default goal at the start of any statement).
func NewTokenCursor(lx *lexer.Lexer) (*TokenCursor, error) {
	c := &TokenCursor{lx: lx}
	tok, err := lx.Next(lexer.GoalDiv)
	if err != nil {
		return nil, err
	}
	c.tokens = append(c.tokens, tok)
	c.goals = append(c.goals, lexer.GoalDiv)
	return c, nil
}

// Current returns the token at the cursor's position.
func (c *TokenCursor) Current() lexer.Token {
	return c.tokens[c.index]
}

// Err returns the first lex error encountered while buffering, if any.
func (c *TokenCursor) Err() error {
	return c.pending
}

// Peek returns the token n positions ahead, lexing it under goal if it is
// not already buffered with that goal. Peek(0) is Current().
func (c *TokenCursor) Peek(n int, goal lexer.Goal) lexer.Token {
	target := c.index + n
	if target < 0 {
		target = 0
	}
	if target < len(c.tokens) && c.goals[target] != goal {
		// Buffered under a stale goal: drop everything from here on and
		// re-lex, since a stale token's length/kind may be wrong (e.g. a
		// `/` lexed as Divide when the caller now wants GoalRegExp).
		c.tokens = c.tokens[:target]
		c.goals = c.goals[:target]
	}
	for target >= len(c.tokens) {
		last := c.tokens[len(c.tokens)-1]
		if last.Type == lexer.EOF {
			return last
		}
		tok, err := c.lx.Next(goal)
		if err != nil && c.pending == nil {
			c.pending = err
		}
		c.tokens = append(c.tokens, tok)
		c.goals = append(c.goals, goal)
	}
	return c.tokens[target]
}

// Retarget re-lexes the token at the current position under goal,
// discarding any already-buffered lookahead past it, and returns it. Used
// when a later goal decision (e.g. "this `}` resumes a template") applies
// to a token that was already lexed under a different, now-stale goal.
func (c *TokenCursor) Retarget(goal lexer.Goal) lexer.Token {
	if c.goals[c.index] != goal {
		c.tokens = c.tokens[:c.index]
		c.goals = c.goals[:c.index]
		tok, err := c.lx.Next(goal)
		if err != nil && c.pending == nil {
			c.pending = err
		}
		c.tokens = append(c.tokens, tok)
		c.goals = append(c.goals, goal)
	}
	return c.tokens[c.index]
}

// Advance moves the cursor to the next token, lexed under goal.
func (c *TokenCursor) Advance(goal lexer.Goal) lexer.Token {
	c.Peek(1, goal)
	if c.index+1 < len(c.tokens) {
		c.index++
	}
	return c.tokens[c.index]
}

// Is reports whether the current token has type t.
func (c *TokenCursor) Is(t lexer.TokenType) bool {
	return c.tokens[c.index].Type == t
}

// IsAny reports whether the current token matches one of types.
func (c *TokenCursor) IsAny(types ...lexer.TokenType) bool {
	cur := c.tokens[c.index].Type
	for _, t := range types {
		if cur == t {
			return true
		}
	}
	return false
}

// Expect advances past the current token under GoalDiv if it matches t,
// reporting whether it matched.
func (c *TokenCursor) Expect(t lexer.TokenType) bool {
	if !c.Is(t) {
		return false
	}
	c.Advance(lexer.GoalDiv)
	return true
}

// Mark captures the cursor's buffer position for later backtracking with
// ResetTo. It is cheap: one integer plus a shared, already-lexed buffer.
type Mark struct{ index int }

func (c *TokenCursor) Mark() Mark { return Mark{index: c.index} }

func (c *TokenCursor) ResetTo(m Mark) {
	c.index = m.index
}

// IsEOF reports whether the current token is EOF.
func (c *TokenCursor) IsEOF() bool {
	return c.tokens[c.index].Type == lexer.EOF
}

// Position is the source position of the current token.
func (c *TokenCursor) Position() lexer.Position {
	return c.tokens[c.index].Span.Start
}

// PrecededByLineTerminator reports whether a line terminator appears
// between the token at the cursor and the one immediately before it —
// the basic signal automatic semicolon insertion and no-LineTerminator
// restrictions (postfix ++/--, arrow `=>`, `yield`, `return`, `throw`,
// `break`/`continue` with a label) key off.
func (c *TokenCursor) PrecededByLineTerminator() bool {
	if c.index == 0 {
		return false
	}
	return c.tokens[c.index].Span.Start.Line > c.tokens[c.index-1].Span.End.Line
}

// Interner exposes the lexer's symbol interner so the parser can resolve
// identifier tokens to Symbols without re-interning.
func (c *TokenCursor) Interner() *intern.Interner {
	return c.lx.Interner()
}
