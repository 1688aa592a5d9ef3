package ast

// VisitFlow is returned by a Visitor's methods to control traversal: a
// visitor that wants to stop walking early returns Break instead of
// threading error values through every call site.
type VisitFlow int

const (
	FlowContinue VisitFlow = iota
	FlowSkipChildren
	FlowBreak
)

// Visitor walks a read-only tree. Walk calls VisitNode once per node,
// before descending into its children; returning FlowSkipChildren visits
// the node's siblings but not its children, FlowBreak stops the entire
// walk immediately.
type Visitor interface {
	VisitNode(n Node) VisitFlow
}

// Walk drives a Visitor over a Program, descending into every reachable
// child node in source order. It mirrors the teacher's visitor dispatch:
// one type switch, each arm walking exactly the fields that hold child
// nodes.
func Walk(v Visitor, n Node) VisitFlow {
	if n == nil {
		return FlowContinue
	}
	flow := v.VisitNode(n)
	if flow != FlowContinue {
		if flow == FlowBreak {
			return FlowBreak
		}
		return FlowContinue
	}

	switch node := n.(type) {
	case *Program:
		for _, item := range node.Body {
			if Walk(v, item) == FlowBreak {
				return FlowBreak
			}
		}

	case *StatementListItem:
		return Walk(v, node.Item)

	case *BlockStatement:
		for _, s := range node.Body {
			if Walk(v, s) == FlowBreak {
				return FlowBreak
			}
		}

	case *ExpressionStatement:
		return Walk(v, node.Expression)

	case *IfStatement:
		if Walk(v, node.Test) == FlowBreak {
			return FlowBreak
		}
		if Walk(v, node.Consequent) == FlowBreak {
			return FlowBreak
		}
		if node.Alternate != nil {
			return Walk(v, node.Alternate)
		}

	case *WhileStatement:
		if Walk(v, node.Test) == FlowBreak {
			return FlowBreak
		}
		return Walk(v, node.Body)

	case *DoWhileStatement:
		if Walk(v, node.Body) == FlowBreak {
			return FlowBreak
		}
		return Walk(v, node.Test)

	case *ForStatement:
		if node.Init != nil {
			if nd, ok := node.Init.(Node); ok && Walk(v, nd) == FlowBreak {
				return FlowBreak
			}
		}
		if node.Test != nil && Walk(v, node.Test) == FlowBreak {
			return FlowBreak
		}
		if node.Update != nil && Walk(v, node.Update) == FlowBreak {
			return FlowBreak
		}
		return Walk(v, node.Body)

	case *ForInOfStatement:
		if nd, ok := node.Left.(Node); ok && Walk(v, nd) == FlowBreak {
			return FlowBreak
		}
		if Walk(v, node.Right) == FlowBreak {
			return FlowBreak
		}
		return Walk(v, node.Body)

	case *ReturnStatement:
		if node.Argument != nil {
			return Walk(v, node.Argument)
		}

	case *ThrowStatement:
		return Walk(v, node.Argument)

	case *TryStatement:
		if Walk(v, node.Block) == FlowBreak {
			return FlowBreak
		}
		if node.Handler != nil {
			if node.Handler.Param != nil {
				if Walk(v, node.Handler.Param) == FlowBreak {
					return FlowBreak
				}
			}
			if Walk(v, node.Handler.Body) == FlowBreak {
				return FlowBreak
			}
		}
		if node.Finally != nil {
			return Walk(v, node.Finally)
		}

	case *SwitchStatement:
		if Walk(v, node.Discriminant) == FlowBreak {
			return FlowBreak
		}
		for _, c := range node.Cases {
			if c.Test != nil && Walk(v, c.Test) == FlowBreak {
				return FlowBreak
			}
			for _, s := range c.Consequent {
				if Walk(v, s) == FlowBreak {
					return FlowBreak
				}
			}
		}

	case *LabeledStatement:
		return Walk(v, node.Body)

	case *WithStatement:
		if Walk(v, node.Object) == FlowBreak {
			return FlowBreak
		}
		return Walk(v, node.Body)

	case *VariableDeclaration:
		for _, d := range node.Declarations {
			if Walk(v, d.Target) == FlowBreak {
				return FlowBreak
			}
			if d.Init != nil && Walk(v, d.Init) == FlowBreak {
				return FlowBreak
			}
		}

	case *FunctionDeclaration:
		return walkFunctionLike(v, node.FunctionLike)

	case *FunctionExpression:
		return walkFunctionLike(v, node.FunctionLike)

	case *ArrowFunctionExpression:
		return walkFunctionLike(v, node.FunctionLike)

	case *ClassDeclaration:
		if node.SuperClass != nil && Walk(v, node.SuperClass) == FlowBreak {
			return FlowBreak
		}
		return walkClassBody(v, node.Body)

	case *ClassExpression:
		if node.SuperClass != nil && Walk(v, node.SuperClass) == FlowBreak {
			return FlowBreak
		}
		return walkClassBody(v, node.Body)

	case *ImportDeclaration, *ExportAllDeclaration:
		// leaf module items: no expression/statement children to descend into

	case *ExportNamedDeclaration:
		if node.Declaration != nil {
			return Walk(v, node.Declaration)
		}

	case *ExportDefaultDeclaration:
		return Walk(v, node.Declaration)

	case *ArrayPattern:
		for _, el := range node.Elements {
			if el == nil {
				continue
			}
			if Walk(v, el.Target) == FlowBreak {
				return FlowBreak
			}
			if el.Default != nil && Walk(v, el.Default) == FlowBreak {
				return FlowBreak
			}
		}
		if node.Rest != nil {
			return Walk(v, node.Rest)
		}

	case *ObjectPattern:
		for _, p := range node.Properties {
			if p.Computed && Walk(v, p.Key) == FlowBreak {
				return FlowBreak
			}
			if Walk(v, p.Target) == FlowBreak {
				return FlowBreak
			}
			if p.Default != nil && Walk(v, p.Default) == FlowBreak {
				return FlowBreak
			}
		}
		if node.Rest != nil {
			return Walk(v, node.Rest)
		}

	case *TemplateLiteral:
		for _, e := range node.Expressions {
			if Walk(v, e) == FlowBreak {
				return FlowBreak
			}
		}

	case *TaggedTemplateExpression:
		if Walk(v, node.Tag) == FlowBreak {
			return FlowBreak
		}
		return Walk(v, node.Quasi)

	case *BinaryExpression:
		if Walk(v, node.Left) == FlowBreak {
			return FlowBreak
		}
		return Walk(v, node.Right)

	case *LogicalExpression:
		if Walk(v, node.Left) == FlowBreak {
			return FlowBreak
		}
		return Walk(v, node.Right)

	case *UnaryExpression:
		return Walk(v, node.Operand)

	case *UpdateExpression:
		return Walk(v, node.Operand)

	case *AssignExpression:
		if Walk(v, node.Target) == FlowBreak {
			return FlowBreak
		}
		return Walk(v, node.Value)

	case *ConditionalExpression:
		if Walk(v, node.Test) == FlowBreak {
			return FlowBreak
		}
		if Walk(v, node.Consequent) == FlowBreak {
			return FlowBreak
		}
		return Walk(v, node.Alternate)

	case *SequenceExpression:
		for _, e := range node.Expressions {
			if Walk(v, e) == FlowBreak {
				return FlowBreak
			}
		}

	case *SpreadElement:
		return Walk(v, node.Argument)

	case *MemberExpression:
		if Walk(v, node.Object) == FlowBreak {
			return FlowBreak
		}
		return Walk(v, node.Property)

	case *CallExpression:
		if Walk(v, node.Callee) == FlowBreak {
			return FlowBreak
		}
		for _, a := range node.Arguments {
			if Walk(v, a) == FlowBreak {
				return FlowBreak
			}
		}

	case *NewExpression:
		if Walk(v, node.Callee) == FlowBreak {
			return FlowBreak
		}
		for _, a := range node.Arguments {
			if Walk(v, a) == FlowBreak {
				return FlowBreak
			}
		}

	case *SuperCallExpression:
		for _, a := range node.Arguments {
			if Walk(v, a) == FlowBreak {
				return FlowBreak
			}
		}

	case *ArrayLiteral:
		for _, e := range node.Elements {
			if e == nil {
				continue
			}
			if Walk(v, e) == FlowBreak {
				return FlowBreak
			}
		}

	case *ObjectLiteral:
		for _, p := range node.Properties {
			if p.Computed && Walk(v, p.Key) == FlowBreak {
				return FlowBreak
			}
			if p.Value != nil && Walk(v, p.Value) == FlowBreak {
				return FlowBreak
			}
		}

	case *YieldExpression:
		if node.Argument != nil {
			return Walk(v, node.Argument)
		}

	case *AwaitExpression:
		return Walk(v, node.Argument)

	default:
		// Leaf nodes: literals, this/super, new.target, identifiers.
	}

	return FlowContinue
}

func walkFunctionLike(v Visitor, f *FunctionLike) VisitFlow {
	if f.Params != nil {
		for _, p := range f.Params.Params {
			if Walk(v, p.Target) == FlowBreak {
				return FlowBreak
			}
			if p.Default != nil && Walk(v, p.Default) == FlowBreak {
				return FlowBreak
			}
		}
	}
	if f.Body != nil {
		return Walk(v, f.Body)
	}
	if f.ExprBody != nil {
		return Walk(v, f.ExprBody)
	}
	return FlowContinue
}

func walkClassBody(v Visitor, body *ClassBody) VisitFlow {
	if body == nil {
		return FlowContinue
	}
	for _, el := range body.Elements {
		switch e := el.(type) {
		case *MethodDefinition:
			if e.Computed && Walk(v, e.Key) == FlowBreak {
				return FlowBreak
			}
			if Walk(v, e.Value) == FlowBreak {
				return FlowBreak
			}
		case *FieldDefinition:
			if e.Computed && Walk(v, e.Key) == FlowBreak {
				return FlowBreak
			}
			if e.Value != nil && Walk(v, e.Value) == FlowBreak {
				return FlowBreak
			}
		case *StaticBlock:
			for _, s := range e.Body {
				if Walk(v, s) == FlowBreak {
					return FlowBreak
				}
			}
		}
	}
	return FlowContinue
}
