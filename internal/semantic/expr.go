package semantic

import (
	"exflow/internal/hierarchy"
	"exflow/internal/syntax"
)

// maxInferenceDepth bounds `var` initializer chasing.
const maxInferenceDepth = 8

// TypeOf returns the static type of an expression, or nil when it cannot be
// determined. Only shapes that matter for thrown values are understood:
// object creation, casts, `as`, conditionals, parenthesized expressions,
// locals, parameters, catch variables and calls to methods of the
// enclosing type.
func (m *Model) TypeOf(expr *syntax.Node) *hierarchy.TypeNode {
	return m.typeOf(expr, 0)
}

func (m *Model) typeOf(expr *syntax.Node, depth int) *hierarchy.TypeNode {
	if expr == nil || depth > maxInferenceDepth {
		return nil
	}
	switch expr.Kind {
	case syntax.KindObjectCreation:
		if t := expr.ChildByField("type"); t != nil {
			return m.ResolveType(t)
		}
		return m.ResolveType(firstTypeChild(expr))
	case syntax.KindParenthesized:
		return m.typeOf(firstNamedChild(expr), depth+1)
	case syntax.KindCast:
		if t := expr.ChildByField("type"); t != nil {
			return m.ResolveType(t)
		}
		return m.ResolveType(firstTypeChild(expr))
	case syntax.KindAs:
		if t := expr.ChildByField("right"); t != nil {
			return m.ResolveType(t)
		}
		named := expr.NamedChildren()
		if len(named) == 0 {
			return nil
		}
		return m.ResolveType(named[len(named)-1])
	case syntax.KindConditional:
		named := expr.NamedChildren()
		if len(named) != 3 {
			return nil
		}
		return hierarchy.FindCommonBaseType(m.typeOf(named[1], depth+1), m.typeOf(named[2], depth+1))
	case syntax.KindIdentifier:
		return m.variableType(expr, expr.Text(), depth)
	case syntax.KindInvocation:
		return m.invocationType(expr)
	}
	return nil
}

// variableType finds the declaration of name visible at ref and returns its
// declared (or inferred) type.
func (m *Model) variableType(ref *syntax.Node, name string, depth int) *hierarchy.TypeNode {
	child := ref
	for p := ref.Parent(); p != nil; child, p = p, p.Parent() {
		switch {
		case p.Kind == syntax.KindCatchClause:
			decl := p.ChildOfKind(syntax.KindCatchDeclaration)
			if typ, id := catchDeclarationParts(decl); id != nil && id.Text() == name {
				return m.ResolveType(typ)
			}
		case p.Is(syntax.KindMethod, syntax.KindConstructor, syntax.KindLocalFunction,
			syntax.KindLambda, syntax.KindAnonymousMethod, syntax.KindOperator,
			syntax.KindConversionOperator, syntax.KindIndexer):
			if t, found := m.parameterType(p, name); found {
				return t
			}
		case p.Kind == syntax.KindBlock || p.Kind == "switch_section":
			if t, found := m.localType(p, child, name, depth); found {
				return t
			}
		case p.Is(syntax.TypeDeclarationKinds...):
			return nil
		}
	}
	return nil
}

// CatchDeclaration splits `(Type name)` into its type and optional variable.
func CatchDeclaration(decl *syntax.Node) (typ, name *syntax.Node) {
	return catchDeclarationParts(decl)
}

func catchDeclarationParts(decl *syntax.Node) (typ, name *syntax.Node) {
	if decl == nil {
		return nil, nil
	}
	typ = decl.ChildByField("type")
	name = decl.ChildByField("name")
	if typ != nil {
		return typ, name
	}
	named := decl.NamedChildren()
	if len(named) > 0 {
		typ = named[0]
	}
	if len(named) > 1 && named[1].Kind == syntax.KindIdentifier {
		name = named[1]
	}
	return typ, name
}

func (m *Model) parameterType(owner *syntax.Node, name string) (*hierarchy.TypeNode, bool) {
	var params []*syntax.Node
	if list := owner.ChildOfKind(syntax.KindParameterList); list != nil {
		params = list.NamedChildren()
	}
	if bracketed := owner.ChildOfKind("bracketed_parameter_list"); bracketed != nil {
		params = append(params, bracketed.NamedChildren()...)
	}
	for _, p := range params {
		if p.Kind != syntax.KindParameter {
			continue
		}
		id := p.ChildByField("name")
		if id == nil {
			id = lastIdentifier(p)
		}
		if id == nil || id.Text() != name {
			continue
		}
		typ := p.ChildByField("type")
		if typ == nil {
			for _, c := range p.NamedChildren() {
				if c != id && c.Is(syntax.TypeKinds...) {
					typ = c
					break
				}
			}
		}
		return m.ResolveType(typ), true
	}
	return nil, false
}

// localType scans the statements of container that precede upto for a local
// declaration of name.
func (m *Model) localType(container, upto *syntax.Node, name string, depth int) (*hierarchy.TypeNode, bool) {
	for _, stmt := range container.Children() {
		if stmt == upto {
			break
		}
		if stmt.Kind != syntax.KindLocalDeclaration {
			continue
		}
		decl := stmt.ChildOfKind(syntax.KindVariableDeclaration)
		if decl == nil {
			continue
		}
		typ := decl.ChildByField("type")
		if typ == nil {
			typ = firstNamedChild(decl)
		}
		for _, v := range decl.NamedChildren() {
			if v.Kind != syntax.KindVariableDeclarator {
				continue
			}
			id := v.ChildByField("name")
			if id == nil {
				id = v.ChildOfKind(syntax.KindIdentifier)
			}
			if id == nil || id.Text() != name {
				continue
			}
			if !isVar(typ) {
				return m.ResolveType(typ), true
			}
			return m.typeOf(initializer(v), depth+1), true
		}
	}
	return nil, false
}

func initializer(declarator *syntax.Node) *syntax.Node {
	if eq := declarator.ChildOfKind("equals_value_clause"); eq != nil {
		return firstNamedChild(eq)
	}
	for _, c := range declarator.Children() {
		if c.Kind == "=" {
			return c.NextSibling()
		}
	}
	return nil
}

// invocationType resolves `Create(...)` to the return type of a method with
// that name declared in the enclosing type, when exactly one exists.
func (m *Model) invocationType(call *syntax.Node) *hierarchy.TypeNode {
	fn := call.ChildByField("function")
	if fn == nil {
		fn = firstNamedChild(call)
	}
	if fn == nil || fn.Kind != syntax.KindIdentifier {
		return nil
	}
	owner := call.Ancestor(syntax.TypeDeclarationKinds...)
	if owner == nil {
		return nil
	}
	body := owner.ChildOfKind(syntax.KindDeclarationList)
	var match *syntax.Node
	for _, member := range body.NamedChildren() {
		if member.Kind != syntax.KindMethod {
			continue
		}
		if id := methodName(member); id != nil && id.Text() == fn.Text() {
			if match != nil {
				return nil
			}
			match = member
		}
	}
	if match == nil {
		return nil
	}
	return m.ResolveType(returnType(match))
}

func methodName(method *syntax.Node) *syntax.Node {
	if id := method.ChildByField("name"); id != nil {
		return id
	}
	var last *syntax.Node
	for _, c := range method.Children() {
		if c.Is(syntax.KindParameterList, syntax.KindTypeParameterList) {
			break
		}
		if c.Kind == syntax.KindIdentifier {
			last = c
		}
	}
	return last
}

func returnType(method *syntax.Node) *syntax.Node {
	for _, field := range []string{"returns", "type"} {
		if t := method.ChildByField(field); t != nil {
			return t
		}
	}
	name := methodName(method)
	if name == nil {
		return nil
	}
	if prev := name.PrevSibling(); prev != nil && prev.Is(syntax.TypeKinds...) {
		return prev
	}
	return nil
}

func firstNamedChild(n *syntax.Node) *syntax.Node {
	for _, c := range n.Children() {
		if c.Named && !syntax.IsTrivia(c) {
			return c
		}
	}
	return nil
}

func lastIdentifier(n *syntax.Node) *syntax.Node {
	var last *syntax.Node
	for _, c := range n.Children() {
		if c.Kind == syntax.KindIdentifier {
			last = c
		}
	}
	return last
}
