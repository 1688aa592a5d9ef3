// Package environment implements the runtime environment-record chain
// (component G) that backs dynamic scoping: the realm's global
// environment, `with`-statement object environments, and declarative
// environments for scopes the compiler cannot resolve to static
// local/upvalue slots (the `eval` boundary and catch-clause bindings that
// escape into a closure captured before the catch block compiles).
//
// Grounded on the teacher's internal/interp/runtime.Environment (a
// name-keyed store chained to an outer environment, with Get/Set/Define
// searching the chain and Define always creating in the current scope),
// generalized from DWScript's single mutable-map environment to three
// distinct kinds of record `with`/the global object/plain declarative
// scopes need, and from always-initialized variables to the temporal-dead-
// zone "declared but not yet initialized" state `let`/`const`/`class`
// bindings require (§9 "Temporal dead zone").
package environment

import (
	"fmt"

	"github.com/cwbudde/ecma/internal/intern"
	"github.com/cwbudde/ecma/internal/value"
)

// binding is one environment record slot: a value plus whether it has been
// initialized yet (the TDZ flag) and whether it may be reassigned.
type binding struct {
	val         value.Value
	initialized bool
	mutable     bool
}

// Kind distinguishes the three environment-record flavors the spec's
// environment chain needs.
type Kind int

const (
	// Declarative holds `let`/`const`/`class`/catch-parameter bindings in
	// a plain name→slot map.
	Declarative Kind = iota
	// Object wraps an object's properties as bindings, used for `with`
	// statements: get/set/has all delegate to the object's own internal
	// methods (§4.F "with" object-environment semantics).
	Object
	// Global is the realm's single global environment record: var/function
	// declarations at top level become properties of the global object,
	// exactly like an Object environment, but let/const top-level
	// bindings live in an attached declarative record layered on top —
	// mirroring how real engines split "global object record" and
	// "global declarative record".
	Global
)

// Environment is one link in the environment-record chain.
type Environment struct {
	kind    Kind
	outer   *Environment
	bindObj *value.Object          // meaningful for Object and Global
	vars    map[intern.Symbol]*binding // meaningful for Declarative and Global
	// withUnscopables, when true, causes HasBinding to consult the
	// Symbol.unscopables object on bindObj before reporting true, per the
	// `with` statement's unscopables opt-out (§6 dispatch interface note).
	withUnscopables bool
}

// NewDeclarative creates a child declarative environment.
func NewDeclarative(outer *Environment) *Environment {
	return &Environment{kind: Declarative, outer: outer, vars: make(map[intern.Symbol]*binding)}
}

// NewObject creates a child object environment wrapping obj, used for
// `with (obj) { ... }`.
func NewObject(outer *Environment, obj *value.Object, unscopables bool) *Environment {
	return &Environment{kind: Object, outer: outer, bindObj: obj, withUnscopables: unscopables}
}

// NewGlobal creates the realm's root global environment backed by
// globalObj, with its own declarative layer for top-level let/const/class.
func NewGlobal(globalObj *value.Object) *Environment {
	return &Environment{kind: Global, bindObj: globalObj, vars: make(map[intern.Symbol]*binding)}
}

// Outer returns the enclosing environment, or nil at the chain's root.
func (e *Environment) Outer() *Environment { return e.outer }

// DeclareMutableBinding creates an uninitialized `let` binding in the
// current declarative/global scope (TDZ until Initialize is called).
func (e *Environment) DeclareMutableBinding(sym intern.Symbol) {
	e.vars[sym] = &binding{mutable: true}
}

// DeclareImmutableBinding creates an uninitialized `const`/class binding.
func (e *Environment) DeclareImmutableBinding(sym intern.Symbol) {
	e.vars[sym] = &binding{mutable: false}
}

// DeclareVarBinding creates (or no-ops over an existing) `var`/function
// binding, initialized to undefined immediately — `var` bindings have no
// TDZ. On a Global environment this creates the property on the global
// object instead, matching real engines' CreateGlobalVarBinding.
func (e *Environment) DeclareVarBinding(sym intern.Symbol, name string) {
	if e.kind == Global {
		if !e.bindObj.HasProp(value.StringKey(name)) {
			e.bindObj.Internal.DefineOwnProperty(e.bindObj, value.StringKey(name), value.NewDataDescriptor(value.U, value.Default()))
		}
		return
	}
	if _, ok := e.vars[sym]; !ok {
		e.vars[sym] = &binding{val: value.U, initialized: true, mutable: true}
	}
}

// Initialize sets a previously declared binding's value and clears its
// TDZ flag, used by `let x = v;`/function-parameter binding/catch-clause
// binding at the point control reaches the initializer.
func (e *Environment) Initialize(sym intern.Symbol, v value.Value) {
	if b, ok := e.vars[sym]; ok {
		b.val = v
		b.initialized = true
	}
}

// HasBinding reports whether name resolves in this single record (not the
// chain), honoring `with`'s unscopables opt-out.
func (e *Environment) HasBinding(sym intern.Symbol, name string) bool {
	switch e.kind {
	case Object, Global:
		if e.kind == Global {
			if _, ok := e.vars[sym]; ok {
				return true
			}
		}
		if !e.bindObj.HasProp(value.StringKey(name)) {
			return false
		}
		if e.withUnscopables {
			unscopables, err := e.bindObj.Get(value.SymbolKey(value.WellKnownSymbol(value.SymUnscopables)))
			if err == nil {
				if uo, ok := unscopables.(*value.Object); ok {
					if v, _ := uo.Get(value.StringKey(name)); value.ToBoolean(v) {
						return false
					}
				}
			}
		}
		return true
	default:
		_, ok := e.vars[sym]
		return ok
	}
}

// GetBindingValue reads name's value, throwing a ReferenceError-shaped Go
// error for an unresolved or still-TDZ binding (§9 "reads throw
// ReferenceError").
func (e *Environment) GetBindingValue(sym intern.Symbol, name string) (value.Value, error) {
	switch e.kind {
	case Object, Global:
		if e.kind == Global {
			if b, ok := e.vars[sym]; ok {
				if !b.initialized {
					return nil, referenceError(name)
				}
				return b.val, nil
			}
		}
		return e.bindObj.Get(value.StringKey(name))
	default:
		b, ok := e.vars[sym]
		if !ok {
			return nil, referenceError(name)
		}
		if !b.initialized {
			return nil, referenceError(name)
		}
		return b.val, nil
	}
}

// SetMutableBinding assigns name's value, throwing a TypeError for an
// immutable binding (the `mutate_immutable` locator's runtime TypeError,
// §4.B BindingLocator) and, in a declarative record, a ReferenceError for
// a name the record does not hold. It takes no strict-mode flag: an
// object or global record assigns a missing name as a property.
func (e *Environment) SetMutableBinding(sym intern.Symbol, name string, v value.Value) error {
	switch e.kind {
	case Object, Global:
		if e.kind == Global {
			if b, ok := e.vars[sym]; ok {
				if !b.mutable {
					return typeError(name)
				}
				b.val = v
				b.initialized = true
				return nil
			}
		}
		_, err := e.bindObj.SetProp(value.StringKey(name), v)
		return err
	default:
		b, ok := e.vars[sym]
		if !ok {
			return referenceError(name)
		}
		if !b.mutable {
			return typeError(name)
		}
		b.val = v
		b.initialized = true
		return nil
	}
}

func referenceError(name string) error {
	return &value.EngineError{Kind: "ReferenceError", Msg: name + " is not defined"}
}

func typeError(name string) error {
	return &value.EngineError{Kind: "TypeError", Msg: fmt.Sprintf("Assignment to constant variable %q", name)}
}

// Chain resolves sym/name up the environment chain starting at e, calling
// get on the first record where HasBinding is true. It mirrors the
// specification's GetIdentifierReference walk, used by the VM's dynamic
// fallback path when a name was not resolvable to a static local/upvalue
// slot at compile time (i.e. it crossed a `with` or an `eval` boundary).
func Chain(e *Environment, sym intern.Symbol, name string) (value.Value, error) {
	for cur := e; cur != nil; cur = cur.outer {
		if cur.HasBinding(sym, name) {
			return cur.GetBindingValue(sym, name)
		}
	}
	return nil, referenceError(name)
}

// SetChain is Chain's assignment counterpart.
func SetChain(e *Environment, sym intern.Symbol, name string, v value.Value) error {
	for cur := e; cur != nil; cur = cur.outer {
		if cur.HasBinding(sym, name) {
			return cur.SetMutableBinding(sym, name, v)
		}
	}
	return referenceError(name)
}
