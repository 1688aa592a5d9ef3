package parser

import (
	"fmt"
	"testing"

	"github.com/cwbudde/ecma/internal/ast"
	"github.com/cwbudde/ecma/internal/intern"
	"github.com/cwbudde/ecma/internal/lexer"
)

// testParser builds a Parser over a fresh Lexer/Interner pair for input.
func testParser(input string, opts ...Option) *Parser {
	lx := lexer.New(input, intern.New())
	p, err := New(lx, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

func checkParserErrors(t *testing.T, p *Parser) {
	t.Helper()
	errors := p.Errors()
	if len(errors) == 0 {
		return
	}
	t.Errorf("parser has %d errors", len(errors))
	for _, e := range errors {
		t.Errorf("parser error: %s", e.Message)
	}
	t.FailNow()
}

func parseProgram(t *testing.T, input string, opts ...Option) *ast.Program {
	t.Helper()
	p := testParser(input, opts...)
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("ParseProgram() error = %v", err)
	}
	checkParserErrors(t, p)
	return prog
}

func soleStatement(t *testing.T, prog *ast.Program) ast.Statement {
	t.Helper()
	if len(prog.Body) != 1 {
		t.Fatalf("program has wrong number of items. got=%d", len(prog.Body))
	}
	item, ok := prog.Body[0].(*ast.StatementListItem)
	if !ok {
		t.Fatalf("item is not *ast.StatementListItem. got=%T", prog.Body[0])
	}
	return item.Item
}

func soleExpression(t *testing.T, prog *ast.Program) ast.Expression {
	t.Helper()
	stmt := soleStatement(t, prog)
	exprStmt, ok := stmt.(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("statement is not *ast.ExpressionStatement. got=%T", stmt)
	}
	return exprStmt.Expression
}

func TestNumberLiterals(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"5;", 5},
		{"10;", 10},
		{"0;", 0},
		{"3.5;", 3.5},
		{"0x2a;", 42},
		{"0b101010;", 42},
		{"0o52;", 42},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			prog := parseProgram(t, tt.input)
			lit, ok := soleExpression(t, prog).(*ast.NumberLiteral)
			if !ok {
				t.Fatalf("expression is not *ast.NumberLiteral. got=%T", soleExpression(t, prog))
			}
			if lit.Value != tt.expected {
				t.Errorf("lit.Value = %v, want %v", lit.Value, tt.expected)
			}
		})
	}
}

func TestStringLiteral(t *testing.T) {
	prog := parseProgram(t, `"hello";`)
	lit, ok := soleExpression(t, prog).(*ast.StringLiteral)
	if !ok {
		t.Fatalf("expression is not *ast.StringLiteral. got=%T", soleExpression(t, prog))
	}
	if lit.Value != "hello" {
		t.Errorf("lit.Value = %q, want %q", lit.Value, "hello")
	}
}

func TestBooleanAndNullLiterals(t *testing.T) {
	prog := parseProgram(t, `true; false; null; undefined;`)
	if len(prog.Body) != 4 {
		t.Fatalf("program has wrong number of items. got=%d", len(prog.Body))
	}
}

func TestIdentifierExpression(t *testing.T) {
	prog := parseProgram(t, `foobar;`)
	id, ok := soleExpression(t, prog).(*ast.Identifier)
	if !ok {
		t.Fatalf("expression is not *ast.Identifier. got=%T", soleExpression(t, prog))
	}
	if id.Name != "foobar" {
		t.Errorf("id.Name = %q, want %q", id.Name, "foobar")
	}
}

func TestPrefixExpressions(t *testing.T) {
	tests := []struct {
		input    string
		operator string
	}{
		{"!true;", "!"},
		{"-15;", "-"},
		{"+15;", "+"},
		{"~1;", "~"},
		{"typeof x;", "typeof"},
		{"void 0;", "void"},
		{"delete x.y;", "delete"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			prog := parseProgram(t, tt.input)
			expr, ok := soleExpression(t, prog).(*ast.UnaryExpression)
			if !ok {
				t.Fatalf("expression is not *ast.UnaryExpression. got=%T", soleExpression(t, prog))
			}
			if expr.Operator != tt.operator {
				t.Errorf("expr.Operator = %q, want %q", expr.Operator, tt.operator)
			}
		})
	}
}

func TestBinaryExpressionPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"a + b + c;", "((a + b) + c)"},
		{"a + b * c;", "(a + (b * c))"},
		{"a * b + c;", "((a * b) + c)"},
		{"a + b - c;", "((a + b) - c)"},
		{"2 ** 3 ** 2;", "(2 ** (3 ** 2))"},
		{"a == b && c == d;", "((a == b) && (c == d))"},
		{"a ?? b ?? c;", "((a ?? b) ?? c)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			prog := parseProgram(t, tt.input)
			expr := soleExpression(t, prog)
			if expr.String() != tt.expected {
				t.Errorf("expr.String() = %q, want %q", expr.String(), tt.expected)
			}
		})
	}
}

func TestConditionalExpression(t *testing.T) {
	prog := parseProgram(t, `a ? b : c;`)
	expr, ok := soleExpression(t, prog).(*ast.ConditionalExpression)
	if !ok {
		t.Fatalf("expression is not *ast.ConditionalExpression. got=%T", soleExpression(t, prog))
	}
	if expr.Test.(*ast.Identifier).Name != "a" {
		t.Errorf("unexpected test expression %s", expr.Test.String())
	}
}

func TestAssignmentExpressions(t *testing.T) {
	tests := []struct {
		input    string
		operator string
	}{
		{"a = 1;", "="},
		{"a += 1;", "+="},
		{"a ??= 1;", "??="},
		{"a ||= 1;", "||="},
		{"a &&= 1;", "&&="},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			prog := parseProgram(t, tt.input)
			expr, ok := soleExpression(t, prog).(*ast.AssignExpression)
			if !ok {
				t.Fatalf("expression is not *ast.AssignExpression. got=%T", soleExpression(t, prog))
			}
			if expr.Operator != tt.operator {
				t.Errorf("expr.Operator = %q, want %q", expr.Operator, tt.operator)
			}
		})
	}
}

func TestCallExpression(t *testing.T) {
	prog := parseProgram(t, `add(1, 2 * 3, 4 + 5);`)
	call, ok := soleExpression(t, prog).(*ast.CallExpression)
	if !ok {
		t.Fatalf("expression is not *ast.CallExpression. got=%T", soleExpression(t, prog))
	}
	if len(call.Arguments) != 3 {
		t.Fatalf("wrong number of arguments. got=%d", len(call.Arguments))
	}
}

func TestMemberExpressionChain(t *testing.T) {
	prog := parseProgram(t, `a.b[c].d?.e(f);`)
	_, ok := soleExpression(t, prog).(*ast.CallExpression)
	if !ok {
		t.Fatalf("expression is not *ast.CallExpression. got=%T", soleExpression(t, prog))
	}
}

func TestNewExpression(t *testing.T) {
	prog := parseProgram(t, `new Foo(1, 2);`)
	expr, ok := soleExpression(t, prog).(*ast.NewExpression)
	if !ok {
		t.Fatalf("expression is not *ast.NewExpression. got=%T", soleExpression(t, prog))
	}
	if len(expr.Arguments) != 2 {
		t.Errorf("wrong number of arguments. got=%d", len(expr.Arguments))
	}
}

func TestNewExpressionWithoutArguments(t *testing.T) {
	prog := parseProgram(t, `new Foo;`)
	expr, ok := soleExpression(t, prog).(*ast.NewExpression)
	if !ok {
		t.Fatalf("expression is not *ast.NewExpression. got=%T", soleExpression(t, prog))
	}
	if len(expr.Arguments) != 0 {
		t.Errorf("wrong number of arguments. got=%d", len(expr.Arguments))
	}
}

func TestArrayLiteral(t *testing.T) {
	prog := parseProgram(t, `[1, 2, , ...rest];`)
	arr, ok := soleExpression(t, prog).(*ast.ArrayLiteral)
	if !ok {
		t.Fatalf("expression is not *ast.ArrayLiteral. got=%T", soleExpression(t, prog))
	}
	if len(arr.Elements) != 4 {
		t.Fatalf("wrong number of elements. got=%d", len(arr.Elements))
	}
	if arr.Elements[2] != nil {
		t.Errorf("expected elision at index 2, got %v", arr.Elements[2])
	}
	if _, ok := arr.Elements[3].(*ast.SpreadElement); !ok {
		t.Errorf("expected SpreadElement at index 3, got %T", arr.Elements[3])
	}
}

func TestObjectLiteral(t *testing.T) {
	prog := parseProgram(t, `({a: 1, b, [c]: 2, ...d, get e() { return 1; }});`)
	obj, ok := soleExpression(t, prog).(*ast.ObjectLiteral)
	if !ok {
		t.Fatalf("expression is not *ast.ObjectLiteral. got=%T", soleExpression(t, prog))
	}
	if len(obj.Properties) != 5 {
		t.Fatalf("wrong number of properties. got=%d", len(obj.Properties))
	}
	if !obj.Properties[1].Shorthand {
		t.Errorf("expected property 1 to be shorthand")
	}
	if !obj.Properties[2].Computed {
		t.Errorf("expected property 2 to be computed")
	}
	if obj.Properties[3].Kind != ast.PropertySpread {
		t.Errorf("expected property 3 to be a spread")
	}
	if obj.Properties[4].Kind != ast.PropertyGet {
		t.Errorf("expected property 4 to be a getter")
	}
}

func TestTemplateLiteral(t *testing.T) {
	prog := parseProgram(t, "`a${x}b${y}c`;")
	tmpl, ok := soleExpression(t, prog).(*ast.TemplateLiteral)
	if !ok {
		t.Fatalf("expression is not *ast.TemplateLiteral. got=%T", soleExpression(t, prog))
	}
	if len(tmpl.Quasis) != 3 {
		t.Fatalf("wrong number of quasis. got=%d", len(tmpl.Quasis))
	}
	if len(tmpl.Expressions) != 2 {
		t.Fatalf("wrong number of expressions. got=%d", len(tmpl.Expressions))
	}
	if !tmpl.Quasis[2].Tail {
		t.Errorf("expected final quasi to be tail")
	}
}

func TestTaggedTemplateExpression(t *testing.T) {
	prog := parseProgram(t, "tag`a${x}b`;")
	tagged, ok := soleExpression(t, prog).(*ast.TaggedTemplateExpression)
	if !ok {
		t.Fatalf("expression is not *ast.TaggedTemplateExpression. got=%T", soleExpression(t, prog))
	}
	if _, ok := tagged.Tag.(*ast.Identifier); !ok {
		t.Errorf("tag is not *ast.Identifier. got=%T", tagged.Tag)
	}
}

func TestRegexAfterOperator(t *testing.T) {
	prog := parseProgram(t, `x = /abc/g;`)
	assign, ok := soleExpression(t, prog).(*ast.AssignExpression)
	if !ok {
		t.Fatalf("expression is not *ast.AssignExpression. got=%T", soleExpression(t, prog))
	}
	re, ok := assign.Value.(*ast.RegexLiteral)
	if !ok {
		t.Fatalf("assign value is not *ast.RegexLiteral. got=%T", assign.Value)
	}
	if re.Pattern != "abc" || re.Flags != "g" {
		t.Errorf("re = /%s/%s, want /abc/g", re.Pattern, re.Flags)
	}
}

func TestDivisionAfterIdentifierIsNotRegex(t *testing.T) {
	prog := parseProgram(t, `a / b;`)
	expr, ok := soleExpression(t, prog).(*ast.BinaryExpression)
	if !ok {
		t.Fatalf("expression is not *ast.BinaryExpression. got=%T", soleExpression(t, prog))
	}
	if expr.Operator != "/" {
		t.Errorf("expr.Operator = %q, want %q", expr.Operator, "/")
	}
}

func TestArrowFunctions(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"single identifier param, expression body", "x => x + 1;"},
		{"parenthesized param list, expression body", "(x, y) => x + y;"},
		{"no params, block body", "() => { return 1; };"},
		{"async arrow", "async (x) => x;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := parseProgram(t, tt.input)
			if _, ok := soleExpression(t, prog).(*ast.ArrowFunctionExpression); !ok {
				t.Fatalf("expression is not *ast.ArrowFunctionExpression. got=%T", soleExpression(t, prog))
			}
		})
	}
}

func TestArrowFunctionDoesNotConsumeParenthesizedExpression(t *testing.T) {
	prog := parseProgram(t, `(x + 1);`)
	if _, ok := soleExpression(t, prog).(*ast.BinaryExpression); !ok {
		t.Fatalf("expression is not *ast.BinaryExpression. got=%T", soleExpression(t, prog))
	}
}

func TestFunctionDeclaration(t *testing.T) {
	prog := parseProgram(t, `function add(a, b) { return a + b; }`)
	fn, ok := soleStatement(t, prog).(*ast.FunctionDeclaration)
	if !ok {
		t.Fatalf("statement is not *ast.FunctionDeclaration. got=%T", soleStatement(t, prog))
	}
	if fn.Name == nil || fn.Name.Name != "add" {
		t.Fatalf("unexpected function name %v", fn.Name)
	}
	if len(fn.Params.Params) != 2 {
		t.Fatalf("wrong number of params. got=%d", len(fn.Params.Params))
	}
}

func TestFunctionWithDefaultAndRestParams(t *testing.T) {
	prog := parseProgram(t, `function f(a, b = 1, ...rest) {}`)
	fn, ok := soleStatement(t, prog).(*ast.FunctionDeclaration)
	if !ok {
		t.Fatalf("statement is not *ast.FunctionDeclaration. got=%T", soleStatement(t, prog))
	}
	if fn.Params.IsSimple {
		t.Errorf("expected IsSimple = false")
	}
	if !fn.Params.HasRest {
		t.Errorf("expected HasRest = true")
	}
	if !fn.Params.HasExpressions {
		t.Errorf("expected HasExpressions = true")
	}
	if fn.Params.Length != 1 {
		t.Errorf("Params.Length = %d, want 1", fn.Params.Length)
	}
}

func TestGeneratorAndAsyncFunctions(t *testing.T) {
	prog := parseProgram(t, `function* gen() { yield 1; }`)
	fn, ok := soleStatement(t, prog).(*ast.FunctionDeclaration)
	if !ok {
		t.Fatalf("statement is not *ast.FunctionDeclaration. got=%T", soleStatement(t, prog))
	}
	if !fn.IsGenerator {
		t.Errorf("expected IsGenerator = true")
	}

	prog2 := parseProgram(t, `async function f() { await x; }`)
	fn2, ok := soleStatement(t, prog2).(*ast.FunctionDeclaration)
	if !ok {
		t.Fatalf("statement is not *ast.FunctionDeclaration. got=%T", soleStatement(t, prog2))
	}
	if !fn2.IsAsync {
		t.Errorf("expected IsAsync = true")
	}
}

func TestVariableDeclarations(t *testing.T) {
	tests := []struct {
		input string
		kind  ast.DeclarationKind
	}{
		{"var x = 1;", ast.DeclVar},
		{"let y = 2;", ast.DeclLet},
		{"const z = 3;", ast.DeclConst},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			prog := parseProgram(t, tt.input)
			decl, ok := soleStatement(t, prog).(*ast.VariableDeclaration)
			if !ok {
				t.Fatalf("statement is not *ast.VariableDeclaration. got=%T", soleStatement(t, prog))
			}
			if decl.Kind != tt.kind {
				t.Errorf("decl.Kind = %v, want %v", decl.Kind, tt.kind)
			}
		})
	}
}

func TestDestructuringDeclarations(t *testing.T) {
	prog := parseProgram(t, `let {a, b: c, ...rest} = obj; let [x, , y = 1] = arr;`)
	if len(prog.Body) != 2 {
		t.Fatalf("program has wrong number of items. got=%d", len(prog.Body))
	}
	decl1 := prog.Body[0].(*ast.StatementListItem).Item.(*ast.VariableDeclaration)
	if _, ok := decl1.Declarations[0].Target.(*ast.ObjectPattern); !ok {
		t.Fatalf("target is not *ast.ObjectPattern. got=%T", decl1.Declarations[0].Target)
	}
	decl2 := prog.Body[1].(*ast.StatementListItem).Item.(*ast.VariableDeclaration)
	if _, ok := decl2.Declarations[0].Target.(*ast.ArrayPattern); !ok {
		t.Fatalf("target is not *ast.ArrayPattern. got=%T", decl2.Declarations[0].Target)
	}
}

func TestIfStatement(t *testing.T) {
	prog := parseProgram(t, `if (a) { b(); } else { c(); }`)
	stmt, ok := soleStatement(t, prog).(*ast.IfStatement)
	if !ok {
		t.Fatalf("statement is not *ast.IfStatement. got=%T", soleStatement(t, prog))
	}
	if stmt.Alternate == nil {
		t.Errorf("expected an else branch")
	}
}

func TestWhileAndDoWhileStatements(t *testing.T) {
	prog := parseProgram(t, `while (a) { b(); } do { c(); } while (d);`)
	if len(prog.Body) != 2 {
		t.Fatalf("program has wrong number of items. got=%d", len(prog.Body))
	}
	if _, ok := prog.Body[0].(*ast.StatementListItem).Item.(*ast.WhileStatement); !ok {
		t.Errorf("first statement is not *ast.WhileStatement")
	}
	if _, ok := prog.Body[1].(*ast.StatementListItem).Item.(*ast.DoWhileStatement); !ok {
		t.Errorf("second statement is not *ast.DoWhileStatement")
	}
}

func TestForStatementVariants(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, stmt ast.Statement)
	}{
		{
			name:  "classic three-clause",
			input: "for (let i = 0; i < 10; i++) {}",
			check: func(t *testing.T, stmt ast.Statement) {
				if _, ok := stmt.(*ast.ForStatement); !ok {
					t.Fatalf("statement is not *ast.ForStatement. got=%T", stmt)
				}
			},
		},
		{
			name:  "for-in",
			input: "for (let k in obj) {}",
			check: func(t *testing.T, stmt ast.Statement) {
				forIn, ok := stmt.(*ast.ForInOfStatement)
				if !ok {
					t.Fatalf("statement is not *ast.ForInOfStatement. got=%T", stmt)
				}
				if forIn.Kind != ast.ForIn {
					t.Errorf("expected ForIn kind")
				}
			},
		},
		{
			name:  "for-of",
			input: "for (const v of arr) {}",
			check: func(t *testing.T, stmt ast.Statement) {
				forOf, ok := stmt.(*ast.ForInOfStatement)
				if !ok {
					t.Fatalf("statement is not *ast.ForInOfStatement. got=%T", stmt)
				}
				if forOf.Kind != ast.ForOf {
					t.Errorf("expected ForOf kind")
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := parseProgram(t, tt.input)
			stmt := soleStatement(t, prog)
			tt.check(t, stmt)
		})
	}
}

func TestBreakAndContinueWithLabel(t *testing.T) {
	prog := parseProgram(t, `outer: for (;;) { break outer; }`)
	stmt, ok := soleStatement(t, prog).(*ast.LabeledStatement)
	if !ok {
		t.Fatalf("statement is not *ast.LabeledStatement. got=%T", soleStatement(t, prog))
	}
	if stmt.Label.Name != "outer" {
		t.Errorf("stmt.Label.Name = %q, want %q", stmt.Label.Name, "outer")
	}
}

func TestTryCatchFinally(t *testing.T) {
	prog := parseProgram(t, `try { a(); } catch (e) { b(); } finally { c(); }`)
	stmt, ok := soleStatement(t, prog).(*ast.TryStatement)
	if !ok {
		t.Fatalf("statement is not *ast.TryStatement. got=%T", soleStatement(t, prog))
	}
	if stmt.Handler == nil {
		t.Fatalf("expected a catch handler")
	}
	if stmt.Handler.Param == nil {
		t.Errorf("expected a bound catch parameter")
	}
	if stmt.Finally == nil {
		t.Errorf("expected a finally block")
	}
}

func TestTryCatchWithoutParameter(t *testing.T) {
	prog := parseProgram(t, `try { a(); } catch { b(); }`)
	stmt, ok := soleStatement(t, prog).(*ast.TryStatement)
	if !ok {
		t.Fatalf("statement is not *ast.TryStatement. got=%T", soleStatement(t, prog))
	}
	if stmt.Handler.Param != nil {
		t.Errorf("expected no bound catch parameter")
	}
}

func TestSwitchStatement(t *testing.T) {
	prog := parseProgram(t, `switch (x) { case 1: a(); break; case 2: b(); break; default: c(); }`)
	stmt, ok := soleStatement(t, prog).(*ast.SwitchStatement)
	if !ok {
		t.Fatalf("statement is not *ast.SwitchStatement. got=%T", soleStatement(t, prog))
	}
	if len(stmt.Cases) != 3 {
		t.Fatalf("wrong number of cases. got=%d", len(stmt.Cases))
	}
	if stmt.Cases[2].Test != nil {
		t.Errorf("expected default case to have a nil test")
	}
}

func TestClassDeclaration(t *testing.T) {
	prog := parseProgram(t, `
		class Point extends Base {
			#x = 0;
			static count = 0;
			constructor(x, y) {
				super();
				this.#x = x;
			}
			get x() { return this.#x; }
			static create() { return new Point(0, 0); }
		}
	`)
	cls, ok := soleStatement(t, prog).(*ast.ClassDeclaration)
	if !ok {
		t.Fatalf("statement is not *ast.ClassDeclaration. got=%T", soleStatement(t, prog))
	}
	if cls.Name == nil || cls.Name.Name != "Point" {
		t.Fatalf("unexpected class name %v", cls.Name)
	}
	if cls.SuperClass == nil {
		t.Fatalf("expected a superclass")
	}
	if len(cls.Body.Elements) != 5 {
		t.Fatalf("wrong number of class elements. got=%d", len(cls.Body.Elements))
	}

	field, ok := cls.Body.Elements[0].(*ast.FieldDefinition)
	if !ok {
		t.Fatalf("element 0 is not *ast.FieldDefinition. got=%T", cls.Body.Elements[0])
	}
	if _, ok := field.Key.(*ast.PrivateIdentifier); !ok {
		t.Errorf("field key is not *ast.PrivateIdentifier. got=%T", field.Key)
	}

	staticField, ok := cls.Body.Elements[1].(*ast.FieldDefinition)
	if !ok {
		t.Fatalf("element 1 is not *ast.FieldDefinition. got=%T", cls.Body.Elements[1])
	}
	if !staticField.Static {
		t.Errorf("expected static field")
	}

	ctor, ok := cls.Body.Elements[2].(*ast.MethodDefinition)
	if !ok {
		t.Fatalf("element 2 is not *ast.MethodDefinition. got=%T", cls.Body.Elements[2])
	}
	if ctor.Kind != ast.MethodConstructor {
		t.Errorf("expected constructor method kind")
	}

	getter, ok := cls.Body.Elements[3].(*ast.MethodDefinition)
	if !ok {
		t.Fatalf("element 3 is not *ast.MethodDefinition. got=%T", cls.Body.Elements[3])
	}
	if getter.Kind != ast.MethodGetter {
		t.Errorf("expected getter method kind")
	}

	staticMethod, ok := cls.Body.Elements[4].(*ast.MethodDefinition)
	if !ok {
		t.Fatalf("element 4 is not *ast.MethodDefinition. got=%T", cls.Body.Elements[4])
	}
	if !staticMethod.Static {
		t.Errorf("expected static method")
	}
}

func TestClassStaticBlock(t *testing.T) {
	prog := parseProgram(t, `class C { static { C.ready = true; } }`)
	cls, ok := soleStatement(t, prog).(*ast.ClassDeclaration)
	if !ok {
		t.Fatalf("statement is not *ast.ClassDeclaration. got=%T", soleStatement(t, prog))
	}
	if len(cls.Body.Elements) != 1 {
		t.Fatalf("wrong number of class elements. got=%d", len(cls.Body.Elements))
	}
	if _, ok := cls.Body.Elements[0].(*ast.StaticBlock); !ok {
		t.Errorf("expected a static block element")
	}
}

func TestModuleImportExport(t *testing.T) {
	prog := parseProgram(t, `
		import def, { a, b as c } from "mod";
		export { x, y as z };
		export default function named() {}
		export const pi = 3.14;
	`, WithModule(true))

	if len(prog.Body) != 4 {
		t.Fatalf("program has wrong number of items. got=%d", len(prog.Body))
	}

	imp, ok := prog.Body[0].(*ast.ImportDeclaration)
	if !ok {
		t.Fatalf("item 0 is not *ast.ImportDeclaration. got=%T", prog.Body[0])
	}
	if imp.Default == nil || imp.Default.Name != "def" {
		t.Fatalf("unexpected default import %v", imp.Default)
	}
	if len(imp.Named) != 2 {
		t.Fatalf("wrong number of named imports. got=%d", len(imp.Named))
	}
	if imp.Source != "mod" {
		t.Errorf("imp.Source = %q, want %q", imp.Source, "mod")
	}

	named, ok := prog.Body[1].(*ast.ExportNamedDeclaration)
	if !ok {
		t.Fatalf("item 1 is not *ast.ExportNamedDeclaration. got=%T", prog.Body[1])
	}
	if len(named.Specifiers) != 2 {
		t.Fatalf("wrong number of export specifiers. got=%d", len(named.Specifiers))
	}

	def, ok := prog.Body[2].(*ast.ExportDefaultDeclaration)
	if !ok {
		t.Fatalf("item 2 is not *ast.ExportDefaultDeclaration. got=%T", prog.Body[2])
	}
	if _, ok := def.Declaration.(*ast.FunctionDeclaration); !ok {
		t.Errorf("export default declaration is not *ast.FunctionDeclaration. got=%T", def.Declaration)
	}
}

func TestUseStrictDirectivePrologue(t *testing.T) {
	prog := parseProgram(t, `"use strict"; x = 1;`)
	if !prog.IsStrict {
		t.Errorf("expected program to be marked strict")
	}
}

func TestSequenceExpression(t *testing.T) {
	prog := parseProgram(t, `a, b, c;`)
	seq, ok := soleExpression(t, prog).(*ast.SequenceExpression)
	if !ok {
		t.Fatalf("expression is not *ast.SequenceExpression. got=%T", soleExpression(t, prog))
	}
	if len(seq.Expressions) != 3 {
		t.Errorf("wrong number of expressions. got=%d", len(seq.Expressions))
	}
}

func TestAutomaticSemicolonInsertion(t *testing.T) {
	prog := parseProgram(t, "a = 1\nb = 2\n")
	if len(prog.Body) != 2 {
		t.Fatalf("program has wrong number of items. got=%d", len(prog.Body))
	}
}

func TestErrorReportedOnMissingToken(t *testing.T) {
	p := testParser(`if (a b;`)
	_, err := p.ParseProgram()
	if err == nil && len(p.Errors()) == 0 {
		t.Fatalf("expected a parse error for a malformed if-statement")
	}
}

func TestStringer(t *testing.T) {
	prog := parseProgram(t, `1 + 2;`)
	if got := fmt.Sprint(soleExpression(t, prog)); got != "(1 + 2)" {
		t.Errorf("String() = %q, want %q", got, "(1 + 2)")
	}
}
