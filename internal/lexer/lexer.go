// Package lexer turns ECMAScript source bytes into a restartable stream of
// tokens. It tracks the parser-controlled goal symbol (§4.B of the design)
// so that `/` can be disambiguated between division and a regex literal,
// and template literals can be re-entered after a `${ ... }` substitution.
package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cwbudde/ecma/internal/intern"
)

// Error is a lexer failure: a malformed token, unterminated literal, bad
// escape, or illegal regex. Lex errors are never recovered from; the
// parser propagates them immediately (§4.B, §7).
type Error struct {
	Message string
	Pos     Position
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Lexer is a single-pass scanner over a UTF-8 source string.
type Lexer struct {
	interner *intern.Interner

	input string

	position     int // byte offset of ch
	readPosition int // byte offset of the next rune
	line         int
	column       int // 1-based rune position within the current line
	ch           rune

	preserveComments bool
}

// Option configures a Lexer at construction time.
type Option func(*Lexer)

// WithPreserveComments makes Next return COMMENT tokens instead of
// skipping them, for tools (formatters, doc generators) that need source
// comments.
func WithPreserveComments(preserve bool) Option {
	return func(l *Lexer) { l.preserveComments = preserve }
}

// New creates a Lexer over input, stripping a leading UTF-8 BOM if present
// (§6: "byte-order-mark at start is consumed and treated as whitespace").
func New(input string, interner *intern.Interner, opts ...Option) *Lexer {
	if strings.HasPrefix(input, "\xEF\xBB\xBF") {
		input = input[len("\xEF\xBB\xBF"):]
	} else if len(input) >= 3 && input[0] == 0xEF && input[1] == 0xBB && input[2] == 0xBF {
		input = input[3:]
	}

	l := &Lexer{
		interner: interner,
		input:    input,
		line:     1,
		column:   1,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.readChar()
	return l
}

// Interner returns the symbol table this lexer interns identifiers into.
func (l *Lexer) Interner() *intern.Interner {
	return l.interner
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += size
}

// advance consumes the current rune (l.ch) and positions the lexer at the
// next one, bumping line/column. Line terminators bump the line counter
// and reset the column; every other rune advances the column by one.
func (l *Lexer) advance() {
	wasTerminator := isLineTerminatorRune(l.ch)
	l.readChar()
	if wasTerminator {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) peekCharAt(byteOffset int) rune {
	if byteOffset >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[byteOffset:])
	return r
}

func isLineTerminatorRune(r rune) bool {
	return r == '\n' || r == '\r' || r == ' ' || r == ' '
}

// isWhitespace matches the ECMAScript WhiteSpace production: tab, VT, FF,
// space, NBSP, BOM/ZWNBSP, and every Space_Separator code point.
func isWhitespace(r rune) bool {
	switch r {
	case '\t', '\v', '\f', ' ', ' ', 0xFEFF:
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

func isIdentStart(r rune) bool {
	return r == '$' || r == '_' || unicode.IsLetter(r) || unicode.Is(unicode.Nl, r)
}

func isIdentContinue(r rune) bool {
	if isIdentStart(r) {
		return true
	}
	if r == '‌' || r == '‍' { // ZWNJ, ZWJ
		return true
	}
	return unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r) || unicode.Is(unicode.Pc, r)
}

func (l *Lexer) pos() Position {
	return Position{Line: l.line, Column: l.column, Offset: l.position}
}

func (l *Lexer) errf(pos Position, format string, args ...interface{}) error {
	return &Error{Message: fmt.Sprintf(format, args...), Pos: pos}
}

// skipInsignificantWhitespace consumes runs of WhiteSpace, returning when
// it encounters a line terminator, a comment, EOF, or real content. Line
// terminators and comments are handled by the caller because the parser
// needs to observe line terminators (for ASI) even though comments are
// dropped.
func (l *Lexer) skipInsignificantWhitespace() {
	for isWhitespace(l.ch) {
		l.advance()
	}
}

// Next scans and returns the next token under the given goal symbol. EOF
// is reported as a token of type EOF, never as an error.
func (l *Lexer) Next(goal Goal) (Token, error) {
	l.skipInsignificantWhitespace()

	start := l.pos()

	switch {
	case l.ch == 0:
		return Token{Type: EOF, Span: Span{start, start}}, nil

	case isLineTerminatorRune(l.ch):
		return l.scanLineTerminator(start)

	case l.ch == '/' && l.peekChar() == '/':
		return l.scanLineComment(start)

	case l.ch == '/' && l.peekChar() == '*':
		return l.scanBlockComment(start)

	case l.ch == '/' && (goal == GoalRegExp || goal == GoalRegExpOrTemplateTail):
		return l.scanRegex(start)

	case l.ch == '"' || l.ch == '\'':
		return l.scanString(start)

	case l.ch == '`':
		l.advance()
		return l.scanTemplatePart(start, true)

	case l.ch == '}' && (goal == GoalTemplateTail || goal == GoalRegExpOrTemplateTail):
		l.advance()
		return l.scanTemplatePart(start, false)

	case isDecimalDigit(l.ch):
		return l.scanNumber(start)

	case l.ch == '.' && isDecimalDigit(l.peekChar()):
		return l.scanNumber(start)

	case isIdentStart(l.ch):
		return l.scanIdentifier(start)

	case l.ch == '\\' && l.peekChar() == 'u':
		return l.scanIdentifier(start)

	case l.ch == '#' && (isIdentStart(l.peekChar()) || l.peekChar() == '\\'):
		return l.scanPrivateIdentifier(start)

	default:
		return l.scanPunctuator(start)
	}
}

func (l *Lexer) scanLineTerminator(start Position) (Token, error) {
	// A bare \r and a \r\n pair both count as a single terminator: advance()
	// already bumps the line once for the \r; the paired \n is consumed
	// with the raw reader so it does not bump the line a second time.
	if l.ch == '\r' {
		l.advance()
		if l.ch == '\n' {
			l.readChar()
		}
	} else {
		l.advance()
	}
	end := l.pos()
	return Token{Type: LineTerminator, Span: Span{start, end}, Literal: "\n"}, nil
}

func (l *Lexer) scanLineComment(start Position) (Token, error) {
	for l.ch != 0 && !isLineTerminatorRune(l.ch) {
		l.advance()
	}
	tok := Token{Type: COMMENT, Span: Span{start, l.pos()}, Literal: l.input[start.Offset:l.position]}
	if l.preserveComments {
		return tok, nil
	}
	return l.Next(GoalDiv)
}

func (l *Lexer) scanBlockComment(start Position) (Token, error) {
	l.advance() // '/'
	l.advance() // '*'
	hasNewline := false
	for {
		if l.ch == 0 {
			return Token{}, l.errf(start, "unterminated block comment")
		}
		if isLineTerminatorRune(l.ch) {
			hasNewline = true
		}
		if l.ch == '*' && l.peekChar() == '/' {
			l.advance()
			l.advance()
			break
		}
		l.advance()
	}
	tok := Token{Type: COMMENT, Span: Span{start, l.pos()}, Literal: l.input[start.Offset:l.position]}
	if l.preserveComments {
		return tok, nil
	}
	if hasNewline {
		// A multi-line comment containing a line terminator participates in
		// ASI exactly like an explicit LineTerminator token.
		return Token{Type: LineTerminator, Span: tok.Span, Literal: "\n"}, nil
	}
	return l.Next(GoalDiv)
}

func isDecimalDigit(r rune) bool { return r >= '0' && r <= '9' }

func isHexDigit(r rune) bool {
	return isDecimalDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func (l *Lexer) scanNumber(start Position) (Token, error) {
	var sb strings.Builder
	isBigInt := false
	tokType := NumericLiteral

	writeAndAdvance := func() {
		sb.WriteRune(l.ch)
		l.advance()
	}

	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		writeAndAdvance()
		writeAndAdvance()
		for isHexDigit(l.ch) || l.ch == '_' {
			writeAndAdvance()
		}
	} else if l.ch == '0' && (l.peekChar() == 'o' || l.peekChar() == 'O') {
		writeAndAdvance()
		writeAndAdvance()
		for (l.ch >= '0' && l.ch <= '7') || l.ch == '_' {
			writeAndAdvance()
		}
	} else if l.ch == '0' && (l.peekChar() == 'b' || l.peekChar() == 'B') {
		writeAndAdvance()
		writeAndAdvance()
		for l.ch == '0' || l.ch == '1' || l.ch == '_' {
			writeAndAdvance()
		}
	} else if l.ch == '0' && isDecimalDigit(l.peekChar()) {
		// Legacy octal: 0777. It is scanned the same way in every mode;
		// neither the lexer nor the parser rejects it in strict code.
		for isDecimalDigit(l.ch) {
			writeAndAdvance()
		}
	} else {
		for isDecimalDigit(l.ch) || l.ch == '_' {
			writeAndAdvance()
		}
		if l.ch == '.' {
			writeAndAdvance()
			for isDecimalDigit(l.ch) || l.ch == '_' {
				writeAndAdvance()
			}
		}
		if l.ch == 'e' || l.ch == 'E' {
			writeAndAdvance()
			if l.ch == '+' || l.ch == '-' {
				writeAndAdvance()
			}
			for isDecimalDigit(l.ch) {
				writeAndAdvance()
			}
		}
	}

	if l.ch == 'n' {
		isBigInt = true
		tokType = BigIntLiteral
		l.advance()
	}

	if isIdentStart(l.ch) {
		return Token{}, l.errf(l.pos(), "identifier starts immediately after numeric literal")
	}

	lit := sb.String()
	_ = isBigInt
	return Token{Type: tokType, Literal: lit, Cooked: strings.ReplaceAll(lit, "_", ""), Span: Span{start, l.pos()}}, nil
}

func (l *Lexer) scanIdentifier(start Position) (Token, error) {
	var sb strings.Builder
	var raw strings.Builder
	escaped := false

	readOne := func(isFirst bool) error {
		if l.ch == '\\' {
			if l.peekChar() != 'u' {
				return l.errf(l.pos(), "invalid escape in identifier")
			}
			escapeStart := l.pos()
			raw.WriteRune('\\')
			l.advance()
			raw.WriteRune('u')
			l.advance()
			r, consumed, err := l.readUnicodeEscapeValue()
			if err != nil {
				return err
			}
			raw.WriteString(consumed)
			if isFirst && !isIdentStart(r) || !isFirst && !isIdentContinue(r) {
				return l.errf(escapeStart, "escaped character is not a valid identifier character")
			}
			sb.WriteRune(r)
			escaped = true
			return nil
		}
		sb.WriteRune(l.ch)
		raw.WriteRune(l.ch)
		l.advance()
		return nil
	}

	if err := readOne(true); err != nil {
		return Token{}, err
	}
	for isIdentContinue(l.ch) || l.ch == '\\' {
		if err := readOne(false); err != nil {
			return Token{}, err
		}
	}

	name := sb.String()
	tt := IDENT
	if !escaped {
		tt = LookupIdent(name)
	}
	tok := Token{
		Type:    tt,
		Literal: raw.String(),
		Cooked:  name,
		Escaped: escaped,
		Span:    Span{start, l.pos()},
	}
	if tt == IDENT {
		tok.Sym = l.interner.Intern(name)
	}
	return tok, nil
}

// scanPrivateIdentifier scans `#name` class-private-field references. The
// returned token keeps the IDENT kind with the leading '#' folded into
// Literal so the parser can tell a private name from an ordinary one
// without a dedicated token type.
func (l *Lexer) scanPrivateIdentifier(start Position) (Token, error) {
	l.advance() // consume '#'
	tok, err := l.scanIdentifier(start)
	if err != nil {
		return tok, err
	}
	tok.Literal = "#" + tok.Literal
	tok.Type = IDENT
	tok.Sym = l.interner.Intern(tok.Literal)
	return tok, nil
}

// readUnicodeEscapeValue parses the digits of a \u escape (either \uHHHH or
// \u{H...}) assuming the leading "\u" has already been consumed. It returns
// the decoded rune and the raw digit text (including braces) consumed.
func (l *Lexer) readUnicodeEscapeValue() (rune, string, error) {
	if l.ch == '{' {
		var sb strings.Builder
		sb.WriteRune('{')
		l.advance()
		var hex strings.Builder
		for l.ch != '}' {
			if !isHexDigit(l.ch) {
				return 0, "", l.errf(l.pos(), "invalid unicode escape")
			}
			hex.WriteRune(l.ch)
			sb.WriteRune(l.ch)
			l.advance()
		}
		sb.WriteRune('}')
		l.advance()
		v, err := strconv.ParseInt(hex.String(), 16, 32)
		if err != nil || v > 0x10FFFF {
			return 0, "", l.errf(l.pos(), "unicode escape out of range")
		}
		return rune(v), sb.String(), nil
	}
	var hex strings.Builder
	for i := 0; i < 4; i++ {
		if !isHexDigit(l.ch) {
			return 0, "", l.errf(l.pos(), "invalid unicode escape")
		}
		hex.WriteRune(l.ch)
		l.advance()
	}
	v, _ := strconv.ParseInt(hex.String(), 16, 32)
	return rune(v), hex.String(), nil
}

func (l *Lexer) scanString(start Position) (Token, error) {
	quote := l.ch
	l.advance()

	var cooked strings.Builder
	var raw strings.Builder

	for l.ch != quote {
		if l.ch == 0 || isLineTerminatorRune(l.ch) {
			return Token{}, l.errf(start, "unterminated string literal")
		}
		if l.ch == '\\' {
			raw.WriteRune('\\')
			l.advance()
			if isLineTerminatorRune(l.ch) {
				// Line continuation: escaped terminator contributes nothing
				// to the cooked value.
				if l.ch == '\r' {
					l.advance()
					if l.ch == '\n' {
						l.readChar()
					}
				} else {
					l.advance()
				}
				continue
			}
			r, rawEsc, err := l.readStringEscape()
			if err != nil {
				return Token{}, err
			}
			raw.WriteString(rawEsc)
			cooked.WriteRune(r)
			continue
		}
		cooked.WriteRune(l.ch)
		raw.WriteRune(l.ch)
		l.advance()
	}
	l.advance() // closing quote

	return Token{
		Type:    StringLiteral,
		Cooked:  cooked.String(),
		Raw:     raw.String(),
		Literal: cooked.String(),
		Span:    Span{start, l.pos()},
	}, nil
}

// readStringEscape decodes a single escape sequence assuming the leading
// backslash has already been consumed. Returns the decoded rune and the
// raw text of the escape body (without the backslash).
func (l *Lexer) readStringEscape() (rune, string, error) {
	switch l.ch {
	case 'n':
		l.advance()
		return '\n', "n", nil
	case 't':
		l.advance()
		return '\t', "t", nil
	case 'r':
		l.advance()
		return '\r', "r", nil
	case 'b':
		l.advance()
		return '\b', "b", nil
	case 'f':
		l.advance()
		return '\f', "f", nil
	case 'v':
		l.advance()
		return '\v', "v", nil
	case '0':
		if !isDecimalDigit(l.peekChar()) {
			l.advance()
			return 0, "0", nil
		}
		// Legacy octal escape: decoded the same way in every mode; neither
		// the lexer nor the parser rejects it in strict code.
		return l.readLegacyOctalEscape()
	case '1', '2', '3', '4', '5', '6', '7':
		return l.readLegacyOctalEscape()
	case 'x':
		l.advance()
		var hex strings.Builder
		for i := 0; i < 2; i++ {
			if !isHexDigit(l.ch) {
				return 0, "", l.errf(l.pos(), "invalid hex escape")
			}
			hex.WriteRune(l.ch)
			l.advance()
		}
		v, _ := strconv.ParseInt(hex.String(), 16, 32)
		return rune(v), "x" + hex.String(), nil
	case 'u':
		l.advance()
		r, digits, err := l.readUnicodeEscapeValue()
		if err != nil {
			return 0, "", err
		}
		return r, "u" + digits, nil
	default:
		r := l.ch
		l.advance()
		return r, string(r), nil
	}
}

func (l *Lexer) readLegacyOctalEscape() (rune, string, error) {
	var sb strings.Builder
	for i := 0; i < 3 && l.ch >= '0' && l.ch <= '7'; i++ {
		sb.WriteRune(l.ch)
		l.advance()
	}
	v, _ := strconv.ParseInt(sb.String(), 8, 32)
	return rune(v), sb.String(), nil
}

// scanTemplatePart scans from just after an opening backtick or a `}` that
// resumes a template, through the next `${` or closing backtick.
// fromBacktick distinguishes TemplateHead/NoSubstitutionTemplate from
// TemplateMiddle/TemplateTail.
func (l *Lexer) scanTemplatePart(start Position, fromBacktick bool) (Token, error) {
	var cooked strings.Builder
	var raw strings.Builder
	cookedValid := true

	for {
		if l.ch == 0 {
			return Token{}, l.errf(start, "unterminated template literal")
		}
		if l.ch == '`' {
			l.advance()
			tt := NoSubstitutionTemplate
			if !fromBacktick {
				tt = TemplateTail
			}
			return Token{
				Type: tt, Cooked: cooked.String(), Raw: raw.String(),
				CookedValid: cookedValid, Span: Span{start, l.pos()},
			}, nil
		}
		if l.ch == '$' && l.peekChar() == '{' {
			l.advance()
			l.advance()
			tt := TemplateHead
			if !fromBacktick {
				tt = TemplateMiddle
			}
			return Token{
				Type: tt, Cooked: cooked.String(), Raw: raw.String(),
				CookedValid: cookedValid, Span: Span{start, l.pos()},
			}, nil
		}
		if l.ch == '\r' {
			// \r and \r\n normalize to \n in the raw form (§3 AST invariants).
			raw.WriteRune('\n')
			cooked.WriteRune('\n')
			l.advance()
			if l.ch == '\n' {
				l.readChar()
			}
			continue
		}
		if l.ch == '\\' {
			raw.WriteRune('\\')
			l.advance()
			r, rawEsc, err := l.readStringEscape()
			if err != nil {
				cookedValid = false
				// Still consume the rest of the template lexically so the
				// literal remains legal in tagged contexts (§9 open question).
				raw.WriteString(rawEsc)
				continue
			}
			raw.WriteString(rawEsc)
			cooked.WriteRune(r)
			continue
		}
		cooked.WriteRune(l.ch)
		raw.WriteRune(l.ch)
		l.advance()
	}
}

func (l *Lexer) scanRegex(start Position) (Token, error) {
	l.advance() // leading '/'
	var body strings.Builder
	inClass := false
	for {
		switch {
		case l.ch == 0 || isLineTerminatorRune(l.ch):
			return Token{}, l.errf(start, "unterminated regular expression literal")
		case l.ch == '\\':
			body.WriteRune(l.ch)
			l.advance()
			if l.ch == 0 || isLineTerminatorRune(l.ch) {
				return Token{}, l.errf(start, "unterminated regular expression literal")
			}
			body.WriteRune(l.ch)
			l.advance()
			continue
		case l.ch == '[':
			inClass = true
		case l.ch == ']':
			inClass = false
		case l.ch == '/' && !inClass:
			l.advance()
			goto flags
		}
		body.WriteRune(l.ch)
		l.advance()
	}
flags:
	var flags strings.Builder
	for isIdentContinue(l.ch) {
		flags.WriteRune(l.ch)
		l.advance()
	}
	return Token{
		Type: RegexLiteral, Cooked: body.String(), RegexFlags: flags.String(),
		Literal: "/" + body.String() + "/" + flags.String(), Span: Span{start, l.pos()},
	}, nil
}

// punctuators is checked longest-match-first.
var punctuatorTable = []struct {
	text string
	typ  TokenType
}{
	{">>>=", URShiftAssign},
	{"...", DotDotDot},
	{"===", EqEqEq}, {"!==", NotEqEq}, {"**=", StarStarAssign},
	{"<<=", LShiftAssign}, {">>=", RShiftAssign}, {">>>", URShift},
	{"&&=", AmpAmpAssign}, {"||=", PipePipeAssign}, {"??=", QuestionQuestionAssign},
	{"?.", QuestionDot},
	{"=>", Arrow},
	{"==", EqEq}, {"!=", NotEq}, {"<=", LessEqual}, {">=", GreaterEqual},
	{"&&", AmpAmp}, {"||", PipePipe}, {"??", QuestionQuestion},
	{"++", Increment}, {"--", Decrement},
	{"**", StarStar}, {"<<", LShift}, {">>", RShift},
	{"+=", PlusAssign}, {"-=", MinusAssign}, {"*=", StarAssign}, {"/=", SlashAssign},
	{"%=", PercentAssign}, {"&=", AmpAssign}, {"|=", PipeAssign}, {"^=", CaretAssign},
	{"{", LBrace}, {"}", RBrace}, {"(", LParen}, {")", RParen},
	{"[", LBracket}, {"]", RBracket}, {".", Dot}, {";", Semicolon}, {",", Comma},
	{"<", LessThan}, {">", GreaterThan}, {"+", Plus}, {"-", Minus}, {"*", Star},
	{"%", Percent}, {"&", Amp}, {"|", Pipe}, {"^", Caret}, {"!", Bang}, {"~", Tilde},
	{"?", Question}, {":", Colon}, {"=", Assign}, {"/", Slash}, {"`", BackQuote},
}

func (l *Lexer) scanPunctuator(start Position) (Token, error) {
	rest := l.input[l.position:]
	for _, p := range punctuatorTable {
		if strings.HasPrefix(rest, p.text) {
			for range p.text {
				l.advance()
			}
			return Token{Type: p.typ, Literal: p.text, Span: Span{start, l.pos()}}, nil
		}
	}
	bad := l.ch
	l.advance()
	return Token{}, l.errf(start, "unexpected character %q", bad)
}
