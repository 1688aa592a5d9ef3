package lexer

import "github.com/cwbudde/ecma/internal/intern"

// TokenType identifies the kind of a Token. Organized by category so
// related kinds sit together, the way the teacher groups its punctuator
// and keyword constants.
type TokenType int

const (
	ILLEGAL TokenType = iota
	EOF
	COMMENT
	LineTerminator

	IDENT // identifier symbol; may carry an escape flag (see Token.Escaped)

	NumericLiteral
	BigIntLiteral
	StringLiteral
	TemplateHead
	TemplateMiddle
	TemplateTail
	NoSubstitutionTemplate
	RegexLiteral

	literalEnd

	// Keywords
	KeywordAwait
	KeywordBreak
	KeywordCase
	KeywordCatch
	KeywordClass
	KeywordConst
	KeywordContinue
	KeywordDebugger
	KeywordDefault
	KeywordDelete
	KeywordDo
	KeywordElse
	KeywordExport
	KeywordExtends
	KeywordFinally
	KeywordFor
	KeywordFunction
	KeywordIf
	KeywordImport
	KeywordIn
	KeywordInstanceof
	KeywordLet
	KeywordNew
	KeywordOf
	KeywordReturn
	KeywordStatic
	KeywordSuper
	KeywordSwitch
	KeywordThis
	KeywordThrow
	KeywordTry
	KeywordTypeof
	KeywordVar
	KeywordVoid
	KeywordWhile
	KeywordWith
	KeywordYield
	KeywordNull
	KeywordTrue
	KeywordFalse
	KeywordGet
	KeywordSet
	KeywordAsync
	KeywordFrom
	KeywordAs

	keywordEnd

	// Punctuators
	LBrace
	RBrace
	LParen
	RParen
	LBracket
	RBracket
	Dot
	DotDotDot
	Semicolon
	Comma
	LessThan
	GreaterThan
	LessEqual
	GreaterEqual
	EqEq
	NotEq
	EqEqEq
	NotEqEq
	Plus
	Minus
	Star
	Percent
	StarStar
	Increment
	Decrement
	LShift
	RShift
	URShift
	Amp
	Pipe
	Caret
	Bang
	Tilde
	AmpAmp
	PipePipe
	QuestionQuestion
	Question
	QuestionDot
	Colon
	Arrow
	Slash
	Assign
	PlusAssign
	MinusAssign
	StarAssign
	SlashAssign
	PercentAssign
	StarStarAssign
	LShiftAssign
	RShiftAssign
	URShiftAssign
	AmpAssign
	PipeAssign
	CaretAssign
	AmpAmpAssign
	PipePipeAssign
	QuestionQuestionAssign
	BackQuote
)

// Position is a 1-based (line, column) pair.
type Position struct {
	Line   int
	Column int
	Offset int
}

// Span is an ordered pair of source positions.
type Span struct {
	Start Position
	End   Position
}

// Token is a tagged value carrying a kind, a span, and the literal payload
// the kind requires (escaped identifier/keyword flag, string/template
// cooked+raw text, numeric value spelling, regex body/flags).
type Token struct {
	Raw         string // raw source spelling, used for template raw segments and diagnostics
	Cooked      string // escape-processed text; meaningful for StringLiteral/Template*
	RegexFlags  string
	Literal     string // original spelling as it appeared in source (keyword casing, identifier spelling)
	Type        TokenType
	Span        Span
	Sym         intern.Symbol // valid when Type == IDENT
	Escaped     bool          // identifier/keyword contained a \u escape
	CookedValid bool          // false when Cooked is absent due to an invalid escape (template literals only)
}

func (t Token) String() string {
	return t.Literal
}

// IsKeyword reports whether tt names one of the ECMAScript reserved words.
func (tt TokenType) IsKeyword() bool {
	return tt > literalEnd && tt < keywordEnd
}

// IsLiteral reports whether tt is one of the literal-producing token kinds
// (everything between IDENT, exclusive, and the literalEnd marker).
func (tt TokenType) IsLiteral() bool {
	return tt > IDENT && tt < literalEnd
}
