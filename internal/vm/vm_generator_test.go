package vm_test

import (
	"testing"

	"github.com/cwbudde/ecma/internal/compiler"
	"github.com/cwbudde/ecma/internal/intern"
	"github.com/cwbudde/ecma/internal/lexer"
	"github.com/cwbudde/ecma/internal/parser"
	"github.com/cwbudde/ecma/internal/vm"
)

// runSource lexes, parses, compiles, and runs src against a fresh realm,
// the same pipeline pkg/ecma.Engine.Eval drives, kept local here so
// internal/vm's own generator/async/class machinery can be pinned down
// without a standard-library realm in the way.
func runSource(t *testing.T, src string) string {
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
	chunk, cerrs := compiler.Compile(prog, interner)
	if len(cerrs) > 0 {
		t.Fatalf("Compile() errors = %v", cerrs)
	}
	realm := vm.NewRealm(interner)
	machine := vm.NewVM(realm)
	result, err := machine.Run(chunk)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return result.DisplayString()
}

func TestGeneratorNextSequence(t *testing.T) {
	got := runSource(t, `
		function* gen() {
			yield 1;
			yield 2;
			return 3;
		}
		var g = gen();
		var a = g.next().value;
		var b = g.next().value;
		var c = g.next().value;
		a + "," + b + "," + c;
	`)
	if got != "1,2,3" {
		t.Fatalf("got %q, want 1,2,3", got)
	}
}

func TestGeneratorReturnEarly(t *testing.T) {
	got := runSource(t, `
		function* gen() {
			yield 1;
			yield 2;
		}
		var g = gen();
		g.next();
		var r = g.return(42);
		r.value + "," + r.done;
	`)
	if got != "42,true" {
		t.Fatalf("got %q, want 42,true", got)
	}
}

func TestGeneratorThrowIsCatchable(t *testing.T) {
	got := runSource(t, `
		function* gen() {
			try {
				yield 1;
			} catch (e) {
				yield "caught:" + e;
			}
		}
		var g = gen();
		g.next();
		g.throw("boom").value;
	`)
	if got != "caught:boom" {
		t.Fatalf("got %q, want caught:boom", got)
	}
}

func TestYieldStarDelegation(t *testing.T) {
	got := runSource(t, `
		function* inner() {
			yield "a";
			yield "b";
		}
		function* outer() {
			yield* inner();
			yield "c";
		}
		var out = "";
		for (var v of outer()) { out = out + v; }
		out;
	`)
	if got != "abc" {
		t.Fatalf("got %q, want abc", got)
	}
}

func TestClassStaticAndInstanceFields(t *testing.T) {
	got := runSource(t, `
		class Counter {
			static count = 0;
			id = 0;
			constructor() { Counter.count = Counter.count + 1; this.id = Counter.count; }
		}
		new Counter();
		new Counter();
		var third = new Counter();
		third.id + "," + Counter.count;
	`)
	if got != "3,3" {
		t.Fatalf("got %q, want 3,3", got)
	}
}
