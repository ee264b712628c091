package semantic

import (
	"strconv"
	"strings"

	"exflow/internal/cache"
	"exflow/internal/hierarchy"
	"exflow/internal/syntax"
)

// Model resolves names inside one tree. It is safe for concurrent use.
type Model struct {
	universe *Universe
	tree     *syntax.Tree
	usings   []string
	aliases  map[string]string
}

// Model returns the resolution scope of tree.
func (u *Universe) Model(tree *syntax.Tree) *Model {
	m := &Model{universe: u, tree: tree, aliases: make(map[string]string)}
	if tree == nil {
		return m
	}
	for _, n := range syntax.Find(tree.Root, syntax.KindUsingDirective) {
		m.addUsing(n.Text())
	}
	return m
}

// Universe returns the universe the model resolves against.
func (m *Model) Universe() *Universe { return m.universe }

// Tree returns the tree the model was built for.
func (m *Model) Tree() *syntax.Tree { return m.tree }

func (m *Model) addUsing(text string) {
	text = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), ";"))
	fields := strings.Fields(text)
	// drop "global" and "using", keep "static" imports out: they name types.
	for len(fields) > 0 && (fields[0] == "global" || fields[0] == "using") {
		fields = fields[1:]
	}
	if len(fields) == 0 || fields[0] == "static" {
		return
	}
	rest := strings.Join(fields, " ")
	if alias, target, ok := strings.Cut(rest, "="); ok {
		m.aliases[strings.TrimSpace(alias)] = normalizeName(target)
		return
	}
	m.usings = append(m.usings, normalizeName(rest))
}

type typeKey struct {
	path  string
	scope string
	text  string
}

const typeTable = "semantic.types"

// ResolveType maps a type reference to its TypeNode, or nil when the
// reference cannot be resolved unambiguously. `var` is never resolved here.
func (m *Model) ResolveType(n *syntax.Node) *hierarchy.TypeNode {
	if n == nil || isVar(n) {
		return nil
	}
	key := typeKey{path: m.path(), scope: containerName(n), text: normalizeName(n.Text())}
	return cache.Table[typeKey, *hierarchy.TypeNode](m.universe.run, typeTable).GetOrCompute(key, func() *hierarchy.TypeNode {
		return m.resolveType(n)
	})
}

func (m *Model) path() string {
	if m.tree == nil {
		return ""
	}
	return m.tree.Path
}

func (m *Model) resolveType(n *syntax.Node) *hierarchy.TypeNode {
	switch n.Kind {
	case syntax.KindPredefinedType:
		return m.universe.Lookup(predefined[strings.TrimSpace(n.Text())])
	case syntax.KindNullableType:
		return m.ResolveType(firstTypeChild(n))
	case syntax.KindIdentifier:
		return m.lookupName(n, n.Text(), 0)
	case syntax.KindGenericName:
		return m.resolveGeneric(n, "")
	case syntax.KindQualifiedName, syntax.KindAliasQualifiedName:
		return m.resolveQualified(n)
	}
	return nil
}

func (m *Model) resolveGeneric(n *syntax.Node, qualifier string) *hierarchy.TypeNode {
	name := n.ChildOfKind(syntax.KindIdentifier)
	argList := n.ChildOfKind(syntax.KindTypeArgumentList)
	if name == nil || argList == nil {
		return nil
	}
	argNodes := argList.NamedChildren()
	args := make([]*hierarchy.TypeNode, len(argNodes))
	for i, a := range argNodes {
		if args[i] = m.ResolveType(a); args[i] == nil {
			return nil
		}
	}
	text := name.Text()
	if qualifier != "" {
		text = qualifier + "." + text
	}
	def := m.lookupName(n, text, len(args))
	return m.universe.Construct(def, args...)
}

func (m *Model) resolveQualified(n *syntax.Node) *hierarchy.TypeNode {
	if n.Kind == syntax.KindQualifiedName {
		named := n.NamedChildren()
		if len(named) == 2 && named[1].Kind == syntax.KindGenericName {
			return m.resolveGeneric(named[1], normalizeName(named[0].Text()))
		}
	}
	return m.lookupName(n, normalizeName(n.Text()), 0)
}

// lookupName resolves a simple or dotted name with the given generic arity.
// Candidates are tried in tiers: enclosing namespaces (innermost first), the
// global namespace, using directives, then any unique match. Ambiguity within a tier yields nil.
func (m *Model) lookupName(at *syntax.Node, name string, arity int) *hierarchy.TypeNode {
	if target, ok := m.aliases[name]; ok && arity == 0 {
		if t := m.universe.Lookup(target); t != nil {
			return t
		}
	}
	meta := name
	if arity > 0 {
		meta = name + "`" + strconv.Itoa(arity)
	}
	if strings.Contains(name, ".") {
		if t := m.universe.Lookup(meta); t != nil {
			return t
		}
		for _, scope := range m.scopes(at) {
			if t := m.universe.Lookup(scope + "." + meta); t != nil {
				return t
			}
		}
		return nil
	}

	candidates := m.universe.bySimple[meta]
	if len(candidates) == 0 {
		return nil
	}
	for _, scope := range enclosingScopes(at) {
		if t, ambiguous := pick(candidates, func(t *hierarchy.TypeNode) bool { return t.Namespace == scope }); t != nil || ambiguous {
			return t
		}
	}
	if t, ambiguous := pick(candidates, func(t *hierarchy.TypeNode) bool { return t.Namespace == "" }); t != nil || ambiguous {
		return t
	}
	if t, ambiguous := pick(candidates, func(t *hierarchy.TypeNode) bool { return contains(m.usings, t.Namespace) }); t != nil || ambiguous {
		return t
	}
	if len(candidates) == 1 {
		return candidates[0]
	}
	return nil
}

// scopes returns the enclosing scopes followed by the using namespaces.
func (m *Model) scopes(at *syntax.Node) []string {
	return append(enclosingScopes(at), m.usings...)
}

// enclosingScopes lists every prefix of the node's container name, innermost
// first: "A.B.C", "A.B", "A".
func enclosingScopes(at *syntax.Node) []string {
	full := containerName(at)
	var out []string
	for full != "" {
		out = append(out, full)
		i := strings.LastIndexByte(full, '.')
		if i < 0 {
			break
		}
		full = full[:i]
	}
	return out
}

func pick(candidates []*hierarchy.TypeNode, match func(*hierarchy.TypeNode) bool) (*hierarchy.TypeNode, bool) {
	var found *hierarchy.TypeNode
	for _, c := range candidates {
		if !match(c) {
			continue
		}
		if found != nil {
			return nil, true
		}
		found = c
	}
	return found, false
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

func isVar(n *syntax.Node) bool {
	return n.Kind == syntax.KindImplicitType || n.Kind == syntax.KindIdentifier && n.Text() == "var"
}
