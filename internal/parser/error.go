package parser

import (
	"fmt"

	"github.com/cwbudde/ecma/internal/lexer"
)

// ParserError is a structured parse failure with position information;
// Code lets callers branch on failure kind without string matching.
type ParserError struct {
	Message string
	Code    string
	Pos     lexer.Position
}

func (e *ParserError) Error() string {
	return fmt.Sprintf("%s at %d:%d", e.Message, e.Pos.Line, e.Pos.Column)
}

func NewParserError(pos lexer.Position, message, code string) *ParserError {
	return &ParserError{Message: message, Pos: pos, Code: code}
}

const (
	ErrUnexpectedToken  = "E_UNEXPECTED_TOKEN"
	ErrUnexpectedEOF    = "E_UNEXPECTED_EOF"
	ErrMissingSemicolon = "E_MISSING_SEMICOLON"
	ErrMissingLParen    = "E_MISSING_LPAREN"
	ErrMissingRParen    = "E_MISSING_RPAREN"
	ErrMissingRBracket  = "E_MISSING_RBRACKET"
	ErrMissingRBrace    = "E_MISSING_RBRACE"
	ErrMissingColon     = "E_MISSING_COLON"
	ErrMissingArrow     = "E_MISSING_ARROW"
	ErrInvalidExpression = "E_INVALID_EXPRESSION"
	ErrNoPrefixParse    = "E_NO_PREFIX_PARSE"
	ErrExpectedIdent    = "E_EXPECTED_IDENT"
	ErrExpectedBinding  = "E_EXPECTED_BINDING"
	ErrInvalidAssignTarget = "E_INVALID_ASSIGN_TARGET"
	ErrIllegalReturn    = "E_ILLEGAL_RETURN"
	ErrIllegalBreak     = "E_ILLEGAL_BREAK"
	ErrIllegalContinue  = "E_ILLEGAL_CONTINUE"
	ErrDuplicateLabel   = "E_DUPLICATE_LABEL"
	ErrRestrictedProduction = "E_RESTRICTED_PRODUCTION" // an ASI-sensitive production forbids a line terminator here
	ErrStrictModeViolation  = "E_STRICT_MODE_VIOLATION"
)
