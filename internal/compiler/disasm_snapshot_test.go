package compiler

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/cwbudde/ecma/internal/intern"
	"github.com/cwbudde/ecma/internal/lexer"
	"github.com/cwbudde/ecma/internal/parser"
)

// compileSource is the compiler-package equivalent of the parser
// package's own testParser/parseProgram helpers: lex, parse, and compile
// a fresh script in one call, failing the test on any parse or compile
// error.
func compileSource(t *testing.T, src string) string {
	t.Helper()
	interner := intern.New()
	lx := lexer.New(src, interner)
	p, err := parser.New(lx)
	if err != nil {
		t.Fatalf("parser.New() error = %v", err)
	}
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("ParseProgram() error = %v", err)
	}
	chunk, errs := Compile(prog, interner)
	if len(errs) > 0 {
		t.Fatalf("Compile() errors = %v", errs)
	}
	return chunk.String()
}

// TestDisassemblySnapshots golden-files the bytecode disassembly for a
// handful of representative programs, grounded on the teacher's own use
// of go-snaps for AST/disassembly golden tests: a change to the compiler
// that alters emitted opcodes shows up as a snapshot diff instead of a
// silent behavior change.
func TestDisassemblySnapshots(t *testing.T) {
	cases := map[string]string{
		"arithmetic":    `var x = (1 + 2) * 3 - 4 / 2;`,
		"if_else":       `if (x > 0) { y = 1; } else { y = -1; }`,
		"while_loop":    `var i = 0; while (i < 10) { i = i + 1; }`,
		"function_call": `function add(a, b) { return a + b; } add(1, 2);`,
		"try_finally":   `try { risky(); } catch (e) { handle(e); } finally { cleanup(); }`,
		"class_decl":    `class Point { constructor(x, y) { this.x = x; this.y = y; } sum() { return this.x + this.y; } }`,
	}

	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			snaps.MatchSnapshot(t, compileSource(t, src))
		})
	}
}
