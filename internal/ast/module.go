package ast

import (
	"bytes"

	"github.com/cwbudde/ecma/internal/lexer"
)

// ImportSpecifier is one binding of a named import clause:
// `import { a, b as c } from "mod"`.
type ImportSpecifier struct {
	Imported *Identifier // name exported by the source module
	Local    *Identifier // local binding name, equal to Imported when unaliased
}

// ImportDeclaration covers all import forms: default, namespace, named,
// and the combinations thereof, plus a bare `import "mod";` side-effect
// import when all three binding lists are empty.
type ImportDeclaration struct {
	Position     lexer.Position
	Default      *Identifier // nil when there is no default import
	Namespace    *Identifier // nil unless `import * as ns from "mod"`
	Named        []ImportSpecifier
	Source       string // the raw module specifier string
}

func (n *ImportDeclaration) moduleItemNode()     {}
func (n *ImportDeclaration) TokenLiteral() string { return "import" }
func (n *ImportDeclaration) Pos() lexer.Position  { return n.Position }
func (n *ImportDeclaration) String() string {
	var out bytes.Buffer
	out.WriteString("import ")
	parts := []string{}
	if n.Default != nil {
		parts = append(parts, n.Default.Name)
	}
	if n.Namespace != nil {
		parts = append(parts, "* as "+n.Namespace.Name)
	}
	if len(n.Named) > 0 {
		var names bytes.Buffer
		names.WriteString("{ ")
		for i, s := range n.Named {
			if i > 0 {
				names.WriteString(", ")
			}
			if s.Imported.Name != s.Local.Name {
				names.WriteString(s.Imported.Name + " as " + s.Local.Name)
			} else {
				names.WriteString(s.Imported.Name)
			}
		}
		names.WriteString(" }")
		parts = append(parts, names.String())
	}
	for i, p := range parts {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(p)
	}
	if len(parts) > 0 {
		out.WriteString(" from ")
	}
	out.WriteString("\"" + n.Source + "\";")
	return out.String()
}

// ExportSpecifier is one binding of a named export clause:
// `export { a, b as c }`.
type ExportSpecifier struct {
	Local    *Identifier
	Exported *Identifier
}

// ExportNamedDeclaration covers `export { ... }`, `export { ... } from
// "mod"`, and `export <declaration>` (in which case Declaration is set and
// Specifiers is empty).
type ExportNamedDeclaration struct {
	Position    lexer.Position
	Declaration Statement // nil unless this wraps a var/let/const/function/class decl
	Specifiers  []ExportSpecifier
	Source      string // non-empty for a re-export `from "mod"` clause
}

func (n *ExportNamedDeclaration) moduleItemNode()     {}
func (n *ExportNamedDeclaration) TokenLiteral() string { return "export" }
func (n *ExportNamedDeclaration) Pos() lexer.Position  { return n.Position }
func (n *ExportNamedDeclaration) String() string {
	if n.Declaration != nil {
		return "export " + n.Declaration.String()
	}
	var out bytes.Buffer
	out.WriteString("export { ")
	for i, s := range n.Specifiers {
		if i > 0 {
			out.WriteString(", ")
		}
		if s.Local.Name != s.Exported.Name {
			out.WriteString(s.Local.Name + " as " + s.Exported.Name)
		} else {
			out.WriteString(s.Local.Name)
		}
	}
	out.WriteString(" }")
	if n.Source != "" {
		out.WriteString(" from \"" + n.Source + "\"")
	}
	out.WriteString(";")
	return out.String()
}

// ExportDefaultDeclaration is `export default <expr|decl>`; Declaration is
// an Expression, a *FunctionDeclaration, or a *ClassDeclaration (the latter
// two may be anonymous when exported this way).
type ExportDefaultDeclaration struct {
	Position    lexer.Position
	Declaration Node
}

func (n *ExportDefaultDeclaration) moduleItemNode()     {}
func (n *ExportDefaultDeclaration) TokenLiteral() string { return "export" }
func (n *ExportDefaultDeclaration) Pos() lexer.Position  { return n.Position }
func (n *ExportDefaultDeclaration) String() string {
	return "export default " + n.Declaration.String()
}

// ExportAllDeclaration is `export * from "mod"` or `export * as ns from
// "mod"`.
type ExportAllDeclaration struct {
	Position  lexer.Position
	Exported  *Identifier // nil unless `as ns` is present
	Source    string
}

func (n *ExportAllDeclaration) moduleItemNode()     {}
func (n *ExportAllDeclaration) TokenLiteral() string { return "export" }
func (n *ExportAllDeclaration) Pos() lexer.Position  { return n.Position }
func (n *ExportAllDeclaration) String() string {
	if n.Exported != nil {
		return "export * as " + n.Exported.Name + " from \"" + n.Source + "\";"
	}
	return "export * from \"" + n.Source + "\";"
}
