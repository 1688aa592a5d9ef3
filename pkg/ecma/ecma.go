// Package ecma is the public, embeddable façade over the engine:
// construct an Engine, feed it source text, read back its result and
// captured output. Mirrors the teacher's pkg/dwscript surface (New with
// functional options, Compile once/Run many, a Result carrying captured
// output) generalized from DWScript source text to ECMAScript source
// text; internal/vm, internal/compiler, internal/parser and
// internal/lexer do the actual work, internal/host supplies the standard
// library, and this package is purely the wiring a caller outside the
// module is meant to depend on.
package ecma

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/cwbudde/ecma/internal/bytecode"
	"github.com/cwbudde/ecma/internal/compiler"
	"github.com/cwbudde/ecma/internal/host"
	"github.com/cwbudde/ecma/internal/intern"
	"github.com/cwbudde/ecma/internal/lexer"
	"github.com/cwbudde/ecma/internal/parser"
	"github.com/cwbudde/ecma/internal/value"
	"github.com/cwbudde/ecma/internal/vm"
)

// Engine is one realm (global object, intrinsic prototypes, standard
// library) plus the interner its compiled programs share identifiers
// through. Safe for sequential use; concurrent Eval/Run calls against the
// same Engine are not supported, since script itself is not reentrant
// here (two scripts mutating the same global object concurrently would
// race) — create one Engine per goroutine that needs one.
type Engine struct {
	realm    *vm.Realm
	interner *intern.Interner

	buf        bytes.Buffer
	userOutput io.Writer
	forceStrict bool
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithOutput tees everything console.log (and friends) writes to w, in
// addition to being captured in each Result.Output.
func WithOutput(w io.Writer) Option {
	return func(e *Engine) { e.userOutput = w }
}

// WithStrictMode forces every program Compile/Eval parses to be treated
// as strict mode code, regardless of whether its source has its own "use
// strict" directive prologue — for embedders that want to disallow
// sloppy-mode legacy constructs outright.
func WithStrictMode(strict bool) Option {
	return func(e *Engine) { e.forceStrict = strict }
}

// New builds an Engine with a fresh realm and the default standard
// library installed.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{interner: intern.New()}
	for _, opt := range opts {
		opt(e)
	}
	e.realm = vm.NewRealm(e.interner)
	e.realm.Output = &e.buf
	host.Install(e.realm)
	return e, nil
}

// Program is source text already lexed, parsed, and compiled to bytecode,
// ready to Run any number of times against the Engine that compiled it.
type Program struct {
	chunk *bytecode.Chunk
}

// Result is what running a program produced: the script's completion
// value and everything it wrote to console.log et al. during that one
// run.
type Result struct {
	Value  value.Value
	Output string
}

// Compile lexes, parses, and compiles src without executing it. The
// returned Program is bound to this Engine's interner (its identifiers
// were resolved against it) and must only be Run against this Engine.
func (e *Engine) Compile(src string) (*Program, error) {
	lx := lexer.New(src, e.interner)
	p, err := parser.New(lx)
	if err != nil {
		return nil, fmt.Errorf("ecma: %w", err)
	}
	prog, err := p.ParseProgram()
	if err != nil {
		return nil, fmt.Errorf("ecma: parse error: %s", formatParserErrors(p))
	}
	if e.forceStrict {
		prog.IsStrict = true
	}
	chunk, cerrs := compiler.Compile(prog, e.interner)
	if len(cerrs) > 0 {
		msgs := make([]string, len(cerrs))
		for i, ce := range cerrs {
			msgs[i] = ce.Error()
		}
		return nil, fmt.Errorf("ecma: compile error(s): %s", strings.Join(msgs, "; "))
	}
	return &Program{chunk: chunk}, nil
}

func formatParserErrors(p *parser.Parser) string {
	errs := p.Errors()
	msgs := make([]string, len(errs))
	for i, pe := range errs {
		msgs[i] = pe.Error()
	}
	return strings.Join(msgs, "; ")
}

// Run executes an already-compiled Program against this Engine's realm,
// draining the microtask queue (promise reactions) to fixpoint before
// returning, per the specification's run-to-completion-per-turn model.
func (e *Engine) Run(program *Program) (*Result, error) {
	e.buf.Reset()
	machine := vm.NewVM(e.realm)
	result, err := machine.Run(program.chunk)
	out := e.buf.String()
	if e.userOutput != nil {
		_, _ = io.WriteString(e.userOutput, out)
	}
	if err != nil {
		return &Result{Output: out}, err
	}
	return &Result{Value: result, Output: out}, nil
}

// Eval compiles and runs src in one step, the common case for
// one-shot scripts and the REPL.
func (e *Engine) Eval(src string) (*Result, error) {
	program, err := e.Compile(src)
	if err != nil {
		return nil, err
	}
	return e.Run(program)
}
