// Package hierarchy answers questions about the type graph: assignability,
// base-type chains, interface implementation and common base types.
//
// A nil *TypeNode stands for an unresolved type. Every operation treats it as
// "no relationship": it is never assignable, never a common base and never
// implements anything.
package hierarchy

import (
	"strconv"
	"strings"
)

// TypeNode is one type in the graph. Identity is pointer identity.
type TypeNode struct {
	Name      string
	Namespace string
	// Arity is the number of generic type parameters; zero for non-generic types.
	Arity int
	// Base is nil only for the universal root type.
	Base *TypeNode
	// Interfaces are the directly implemented (or, for interfaces, inherited)
	// interfaces.
	Interfaces []*TypeNode
	// Definition is the unbound generic definition of a constructed type, or
	// nil when the type is not a construction.
	Definition *TypeNode
	TypeArgs   []*TypeNode
	Interface  bool
	// Incomplete marks declared types whose base list could not be resolved.
	Incomplete bool
}

// FullName returns the namespace-qualified metadata name (`List`1`).
func (t *TypeNode) FullName() string {
	if t == nil {
		return ""
	}
	name := t.MetadataName()
	if t.Namespace == "" {
		return name
	}
	return t.Namespace + "." + name
}

// MetadataName is the simple name with the generic arity suffix.
func (t *TypeNode) MetadataName() string {
	if t == nil {
		return ""
	}
	if t.Arity > 0 && t.Definition == nil {
		return t.Name + "`" + strconv.Itoa(t.Arity)
	}
	return t.Name
}

// String renders the type the way C# source spells it.
func (t *TypeNode) String() string {
	if t == nil {
		return "<unresolved>"
	}
	if len(t.TypeArgs) == 0 {
		return t.Name
	}
	args := make([]string, len(t.TypeArgs))
	for i, a := range t.TypeArgs {
		args[i] = a.String()
	}
	return t.Name + "<" + strings.Join(args, ", ") + ">"
}

// GenericDefinition returns the unbound definition of t (t itself when t is
// not a construction).
func (t *TypeNode) GenericDefinition() *TypeNode {
	if t == nil {
		return nil
	}
	if t.Definition != nil {
		return t.Definition
	}
	return t
}

// AllInterfaces returns the transitive closure of interfaces implemented by t
// and its base types, without duplicates, nearest first.
func (t *TypeNode) AllInterfaces() []*TypeNode {
	if t == nil {
		return nil
	}
	seen := make(map[*TypeNode]bool)
	var out []*TypeNode
	var visit func(*TypeNode)
	visit = func(i *TypeNode) {
		if i == nil || seen[i] {
			return
		}
		seen[i] = true
		out = append(out, i)
		for _, parent := range i.Interfaces {
			visit(parent)
		}
	}
	for cur := t; cur != nil; cur = cur.Base {
		for _, i := range cur.Interfaces {
			visit(i)
		}
	}
	return out
}
