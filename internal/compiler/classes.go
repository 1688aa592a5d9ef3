package compiler

import (
	"github.com/cwbudde/ecma/internal/ast"
	"github.com/cwbudde/ecma/internal/bytecode"
)

// compileClassLike compiles a class declaration or expression body into a
// ClassTemplate and emits OpDefineClass over it. superClass, when non-nil,
// is compiled before the template is built so any reference error in the
// extends clause surfaces before the class's methods are even considered;
// OpDefineClass itself always pops exactly one value (the superclass, or
// undefined when there is none).
func (c *Compiler) compileClassLike(name *ast.Identifier, superClass ast.Expression, body *ast.ClassBody, line int) {
	if superClass != nil {
		c.compileExpression(superClass)
	} else {
		c.chunk.WriteSimple(bytecode.OpLoadUndefined, line)
	}

	tmpl := &bytecode.ClassTemplate{Name: className(name)}

	c.classDepth++
	var explicitCtor *ast.MethodDefinition
	for _, el := range body.Elements {
		if md, ok := el.(*ast.MethodDefinition); ok && md.Kind == ast.MethodConstructor {
			explicitCtor = md
			break
		}
	}
	if explicitCtor != nil {
		tmpl.Ctor = c.compileMethodFunction(explicitCtor.Value.FunctionLike)
	} else {
		tmpl.Ctor = c.synthesizeDefaultCtor(superClass != nil, line)
	}

	for _, el := range body.Elements {
		switch n := el.(type) {
		case *ast.MethodDefinition:
			if n.Kind == ast.MethodConstructor {
				continue
			}
			tmpl.Members = append(tmpl.Members, c.compileMethodMember(n))
		case *ast.FieldDefinition:
			tmpl.Members = append(tmpl.Members, c.compileFieldMember(n))
		case *ast.StaticBlock:
			tmpl.Members = append(tmpl.Members, c.compileStaticBlockMember(n))
		}
	}
	c.classDepth--

	idx := c.chunk.AddConstant(bytecode.Constant{Kind: bytecode.ConstClass, Class: tmpl})
	c.chunk.Write(bytecode.OpDefineClass, 0, uint16(idx), line)
}

func className(name *ast.Identifier) string {
	if name == nil {
		return ""
	}
	return name.Name
}

// compileMethodFunction compiles a method/getter/setter/constructor body in
// a child compiler, the same way compileFunctionLike does for an ordinary
// function expression, but returns the FunctionTemplate directly instead of
// emitting an OpClosure — class members are instantiated into closures by
// the VM at OpDefineClass time, all at once, rather than one OpClosure per
// member in the surrounding chunk. Class bodies are always strict (§3
// "class body code is always strict mode code").
func (c *Compiler) compileMethodFunction(fn *ast.FunctionLike) *bytecode.FunctionTemplate {
	child := c.child(functionChunkName(fn), false)
	child.strict = true
	child.compileParamsAndBody(fn)
	child.chunk.LocalCount = int(child.maxSlot)

	tmpl := &bytecode.FunctionTemplate{
		Name:        functionChunkName(fn),
		Chunk:       child.chunk,
		ParamCount:  fn.Params.Length,
		TotalParams: len(fn.Params.Params),
		HasRest:     fn.Params.HasRest,
		IsGenerator: fn.IsGenerator,
		IsAsync:     fn.IsAsync,
		IsStrict:    true,
	}
	for _, uv := range child.upvalues {
		tmpl.Upvalues = append(tmpl.Upvalues, bytecode.UpvalueSource{FromParentLocal: uv.fromParentLocal, Index: uv.index})
	}
	c.errors = append(c.errors, child.errors...)
	return tmpl
}

// synthesizeDefaultCtor builds the implicit constructor the specification
// gives a class that declares none (§3 "default constructor"): for a base
// class, an empty body; for a derived class, `constructor(...args) {
// super(...args); }`. The rest parameter is declared the same way
// compileParam's synthetic destructuring-parameter names are, since no
// source identifier exists for it to bind to.
func (c *Compiler) synthesizeDefaultCtor(derived bool, line int) *bytecode.FunctionTemplate {
	child := c.child("constructor", false)
	child.strict = true
	child.beginScope()
	if derived {
		sym := child.interner.Intern("%ctorArgs")
		slot := child.declareLocal(sym, true, true)
		child.chunk.Write(bytecode.OpGetLocal, 0, slot, line)
		child.chunk.WriteSimple(bytecode.OpSuperCallSpread, line)
		child.chunk.WriteSimple(bytecode.OpPop, line)
	}
	child.chunk.WriteSimple(bytecode.OpLoadUndefined, line)
	child.chunk.Write(bytecode.OpReturn, 1, 0, line)
	child.endScope()
	child.chunk.LocalCount = int(child.maxSlot)

	totalParams := 0
	if derived {
		totalParams = 1
	}
	tmpl := &bytecode.FunctionTemplate{
		Name:        "constructor",
		Chunk:       child.chunk,
		TotalParams: totalParams,
		HasRest:     derived,
		IsStrict:    true,
	}
	for _, uv := range child.upvalues {
		tmpl.Upvalues = append(tmpl.Upvalues, bytecode.UpvalueSource{FromParentLocal: uv.fromParentLocal, Index: uv.index})
	}
	c.errors = append(c.errors, child.errors...)
	return tmpl
}

func (c *Compiler) compileMethodMember(n *ast.MethodDefinition) bytecode.MethodTemplate {
	mt := bytecode.MethodTemplate{
		Static:   n.Static,
		Function: c.compileMethodFunction(n.Value.FunctionLike),
	}
	switch n.Kind {
	case ast.MethodGetter:
		mt.Kind = bytecode.MethodTemplateGetter
	case ast.MethodSetter:
		mt.Kind = bytecode.MethodTemplateSetter
	default:
		mt.Kind = bytecode.MethodTemplateMethod
	}
	c.setMemberKey(&mt, n.Key, n.Computed)
	return mt
}

// compileFieldMember compiles an instance or static field. A field with an
// initializer gets a zero-argument thunk the VM invokes with `this` bound
// to the new instance (or the class itself, if static) and no `arguments`
// object (§3 "class field initializers"); an uninitialized field carries no
// Function at all, and the VM simply defines it as undefined.
func (c *Compiler) compileFieldMember(n *ast.FieldDefinition) bytecode.MethodTemplate {
	mt := bytecode.MethodTemplate{Static: n.Static, Kind: bytecode.MethodTemplateField}
	c.setMemberKey(&mt, n.Key, n.Computed)
	if n.Value != nil {
		mt.Function = c.compileThunk("<field initializer>", n.Value)
	}
	return mt
}

// compileStaticBlockMember compiles a `static { ... }` block into a
// zero-argument thunk run once at class-definition time with `this` bound
// to the class itself.
func (c *Compiler) compileStaticBlockMember(n *ast.StaticBlock) bytecode.MethodTemplate {
	child := c.child("<static block>", false)
	child.strict = true
	child.beginScope()
	child.hoistFunctionBody(n.Body)
	for _, s := range n.Body {
		child.compileStatement(s)
	}
	child.chunk.WriteSimple(bytecode.OpLoadUndefined, n.Position.Line)
	child.chunk.Write(bytecode.OpReturn, 1, 0, n.Position.Line)
	child.endScope()
	child.chunk.LocalCount = int(child.maxSlot)

	tmpl := &bytecode.FunctionTemplate{Name: "<static block>", Chunk: child.chunk, IsStrict: true}
	for _, uv := range child.upvalues {
		tmpl.Upvalues = append(tmpl.Upvalues, bytecode.UpvalueSource{FromParentLocal: uv.fromParentLocal, Index: uv.index})
	}
	c.errors = append(c.errors, child.errors...)
	return bytecode.MethodTemplate{Static: true, Kind: bytecode.MethodTemplateStaticBlock, Function: tmpl}
}

// compileThunk compiles a single expression into a zero-argument function
// template that returns its value — used for computed class-element keys
// and field initializers, both of which the specification evaluates in
// their own dedicated scope at class-definition/instantiation time rather
// than inline in the surrounding chunk.
func (c *Compiler) compileThunk(name string, expr ast.Expression) *bytecode.FunctionTemplate {
	child := c.child(name, false)
	child.strict = true
	child.beginScope()
	child.compileExpression(expr)
	child.chunk.Write(bytecode.OpReturn, 1, 0, expr.Pos().Line)
	child.endScope()
	child.chunk.LocalCount = int(child.maxSlot)

	tmpl := &bytecode.FunctionTemplate{Name: name, Chunk: child.chunk, IsStrict: true}
	for _, uv := range child.upvalues {
		tmpl.Upvalues = append(tmpl.Upvalues, bytecode.UpvalueSource{FromParentLocal: uv.fromParentLocal, Index: uv.index})
	}
	c.errors = append(c.errors, child.errors...)
	return tmpl
}

// setMemberKey resolves a class element's key to either a static name
// (the common case: an identifier, or a computed key that happens to be a
// literal) or a KeyTemplate thunk (a computed key that is a genuine
// expression, evaluated once at class-definition time).
func (c *Compiler) setMemberKey(mt *bytecode.MethodTemplate, key ast.Expression, computed bool) {
	if !computed {
		mt.Key = propertyKeyName(key)
		return
	}
	if lit, ok := staticKeyLiteral(key); ok {
		mt.Key = lit
		return
	}
	mt.Computed = true
	mt.KeyTemplate = c.compileThunk("<computed key>", key)
}

// staticKeyLiteral reports whether a computed key expression is a
// compile-time-constant literal, letting `["foo"]` and `[1]` be stored as
// plain static keys instead of paying for a KeyTemplate thunk.
func staticKeyLiteral(key ast.Expression) (string, bool) {
	switch k := key.(type) {
	case *ast.StringLiteral:
		return k.Value, true
	case *ast.NumberLiteral:
		return k.Raw, true
	}
	return "", false
}
