package lexer

// keywords maps the ECMAScript reserved-word spellings to their TokenType.
// Unlike the teacher's DWScript lexer, ECMAScript keywords are
// case-sensitive, so this table is consulted with the literal spelling
// unchanged — no case-folding pass like the teacher's LookupIdent.
var keywords = map[string]TokenType{
	"await":      KeywordAwait,
	"break":      KeywordBreak,
	"case":       KeywordCase,
	"catch":      KeywordCatch,
	"class":      KeywordClass,
	"const":      KeywordConst,
	"continue":   KeywordContinue,
	"debugger":   KeywordDebugger,
	"default":    KeywordDefault,
	"delete":     KeywordDelete,
	"do":         KeywordDo,
	"else":       KeywordElse,
	"export":     KeywordExport,
	"extends":    KeywordExtends,
	"finally":    KeywordFinally,
	"for":        KeywordFor,
	"function":   KeywordFunction,
	"if":         KeywordIf,
	"import":     KeywordImport,
	"in":         KeywordIn,
	"instanceof": KeywordInstanceof,
	"let":        KeywordLet,
	"new":        KeywordNew,
	"of":         KeywordOf,
	"return":     KeywordReturn,
	"static":     KeywordStatic,
	"super":      KeywordSuper,
	"switch":     KeywordSwitch,
	"this":       KeywordThis,
	"throw":      KeywordThrow,
	"try":        KeywordTry,
	"typeof":     KeywordTypeof,
	"var":        KeywordVar,
	"void":       KeywordVoid,
	"while":      KeywordWhile,
	"with":       KeywordWith,
	"yield":      KeywordYield,
	"null":       KeywordNull,
	"true":       KeywordTrue,
	"false":      KeywordFalse,
	"get":        KeywordGet,
	"set":        KeywordSet,
	"async":      KeywordAsync,
	"from":       KeywordFrom,
	"as":         KeywordAs,
}

// LookupIdent returns the keyword TokenType for ident, or IDENT if ident is
// not a reserved word.
func LookupIdent(ident string) TokenType {
	if tt, ok := keywords[ident]; ok {
		return tt
	}
	return IDENT
}
