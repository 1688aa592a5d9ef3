package lexer

// Goal is the lexer's current goal symbol. The parser sets this before
// requesting each token because `/` is ambiguous between division and the
// start of a regular-expression literal, and `}` is ambiguous between a
// block-closing brace and the tail of a template substitution.
type Goal int

const (
	// GoalDiv: `/` and `/=` are division operators.
	GoalDiv Goal = iota
	// GoalRegExp: `/` begins a regular-expression literal.
	GoalRegExp
	// GoalRegExpOrTemplateTail: `/` begins a regex, or `}` resumes a
	// template literal after a `${ ... }` substitution.
	GoalRegExpOrTemplateTail
	// GoalTemplateTail: `}` resumes a template literal body; `/` is
	// division (this goal is entered only between `${` and the matching
	// `}` when the parser already knows a division cannot start there).
	GoalTemplateTail
)
