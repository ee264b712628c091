// Package semantic is the type-resolution service of the analysis. It seeds
// the well-known framework types, declares the classes and interfaces found
// in the analyzed sources, and resolves type syntax and thrown expressions to
// hierarchy.TypeNode values.
package semantic

import (
	"log"
	"strings"

	"exflow/internal/cache"
	"exflow/internal/hierarchy"
	"exflow/internal/syntax"
)

// Universe holds every known type of one analysis run.
//
// Declare and Link must run before analysis starts; afterwards the universe
// is read-only and safe for concurrent use.
type Universe struct {
	run    *cache.Run
	logger *log.Logger

	byFullName map[string]*hierarchy.TypeNode
	// bySimple indexes metadata names (`List`1`) to every type carrying them.
	bySimple map[string][]*hierarchy.TypeNode
	builtin  map[*hierarchy.TypeNode]bool
	decls    []declaration
}

type declaration struct {
	node *syntax.Node
	tree *syntax.Tree
	typ  *hierarchy.TypeNode
}

// NewUniverse creates a universe seeded with the framework types.
func NewUniverse(run *cache.Run) *Universe {
	u := &Universe{
		run:        run,
		logger:     log.Default(),
		byFullName: make(map[string]*hierarchy.TypeNode),
		bySimple:   make(map[string][]*hierarchy.TypeNode),
		builtin:    make(map[*hierarchy.TypeNode]bool),
	}
	for _, b := range builtins {
		ns, name := splitFullName(b.name)
		t := &hierarchy.TypeNode{
			Name:      trimArity(name),
			Namespace: ns,
			Arity:     b.arity,
			Interface: b.iface,
		}
		if b.base != "" {
			t.Base = u.byFullName[b.base]
		} else if b.name != objectType {
			t.Base = u.byFullName[objectType]
		}
		for _, i := range b.interfaces {
			t.Interfaces = append(t.Interfaces, u.byFullName[i])
		}
		u.add(t)
		u.builtin[t] = true
	}
	return u
}

// SetLogger replaces the logger used for declaration warnings.
func (u *Universe) SetLogger(l *log.Logger) {
	if l != nil {
		u.logger = l
	}
}

// Run returns the cache scope the universe memoizes into.
func (u *Universe) Run() *cache.Run {
	return u.run
}

func (u *Universe) add(t *hierarchy.TypeNode) {
	u.byFullName[t.FullName()] = t
	u.bySimple[t.MetadataName()] = append(u.bySimple[t.MetadataName()], t)
}

// Object is the universal root type.
func (u *Universe) Object() *hierarchy.TypeNode { return u.byFullName[objectType] }

// Exception is the root exception type.
func (u *Universe) Exception() *hierarchy.TypeNode { return u.byFullName[exceptionType] }

// Lookup finds a type by metadata full name (`System.Collections.Generic.List`1`).
func (u *Universe) Lookup(fullName string) *hierarchy.TypeNode {
	return u.byFullName[fullName]
}

// isBuiltin reports whether t was seeded rather than declared in source.
func (u *Universe) isBuiltin(t *hierarchy.TypeNode) bool {
	return u.builtin[t]
}

// Declared returns the types declared in source, in declaration order.
func (u *Universe) Declared() []*hierarchy.TypeNode {
	seen := make(map[*hierarchy.TypeNode]bool, len(u.decls))
	var out []*hierarchy.TypeNode
	for _, d := range u.decls {
		if !seen[d.typ] {
			seen[d.typ] = true
			out = append(out, d.typ)
		}
	}
	return out
}

// Declare registers every type declared in tree. Partial declarations of the
// same type share one TypeNode.
func (u *Universe) Declare(tree *syntax.Tree) {
	for _, n := range syntax.Find(tree.Root, syntax.TypeDeclarationKinds...) {
		name := declaredName(n)
		if name == nil {
			continue
		}
		t := &hierarchy.TypeNode{
			Name:      name.Text(),
			Namespace: containerName(n),
			Arity:     typeParameterCount(n),
			Interface: n.Kind == syntax.KindInterface,
			Base:      u.Object(),
		}
		if existing, ok := u.byFullName[t.FullName()]; ok {
			if u.isBuiltin(existing) {
				u.logger.Printf("⚠️ %s: declaration of %s shadows a framework type, ignored", tree.Path, t.FullName())
				continue
			}
			u.decls = append(u.decls, declaration{node: n, tree: tree, typ: existing})
			continue
		}
		if n.Is(syntax.KindStruct, syntax.KindRecordStruct) {
			t.Base = u.byFullName[valueType]
		}
		u.add(t)
		u.decls = append(u.decls, declaration{node: n, tree: tree, typ: t})
	}
}

// Link resolves the base lists of every declared type. A base that would
// close a cycle is dropped and the type is marked incomplete, which keeps
// every base chain finite.
func (u *Universe) Link() {
	models := make(map[*syntax.Tree]*Model)
	for _, d := range u.decls {
		m, ok := models[d.tree]
		if !ok {
			m = u.Model(d.tree)
			models[d.tree] = m
		}
		baseList := d.node.ChildOfKind(syntax.KindBaseList)
		if baseList == nil {
			continue
		}
		classBaseSet := false
		for _, entry := range baseList.NamedChildren() {
			ref := entry
			if !ref.Is(syntax.TypeKinds...) {
				// primary_constructor_base_type and friends wrap the type.
				ref = firstTypeChild(entry)
			}
			bt := m.ResolveType(ref)
			switch {
			case bt == nil:
				d.typ.Incomplete = true
			case bt.Interface:
				d.typ.Interfaces = appendUnique(d.typ.Interfaces, bt)
			case d.typ.Interface || classBaseSet || d.node.Is(syntax.KindStruct, syntax.KindRecordStruct):
				// Interfaces and structs cannot have a class base.
				d.typ.Incomplete = true
			case hierarchy.IsAssignableTo(bt, d.typ):
				u.logger.Printf("⚠️ %s: base type %s of %s is circular, ignored", d.tree.Path, bt.FullName(), d.typ.FullName())
				d.typ.Incomplete = true
			default:
				d.typ.Base = bt
				classBaseSet = true
			}
		}
	}
}

const constructedTable = "semantic.constructed"

// Construct returns the generic type def instantiated with args. Constructions
// are memoized per run, so the same arguments yield the same TypeNode.
func (u *Universe) Construct(def *hierarchy.TypeNode, args ...*hierarchy.TypeNode) *hierarchy.TypeNode {
	if def == nil || def.Arity != len(args) {
		return nil
	}
	keyParts := make([]string, 0, len(args)+1)
	keyParts = append(keyParts, def.FullName())
	for _, a := range args {
		if a == nil {
			return nil
		}
		keyParts = append(keyParts, a.FullName())
	}
	key := strings.Join(keyParts, "|")
	return cache.Table[string, *hierarchy.TypeNode](u.run, constructedTable).GetOrCompute(key, func() *hierarchy.TypeNode {
		t := &hierarchy.TypeNode{
			Name:       def.Name,
			Namespace:  def.Namespace,
			Arity:      def.Arity,
			Base:       def.Base,
			Definition: def,
			TypeArgs:   args,
			Interface:  def.Interface,
		}
		for _, i := range def.Interfaces {
			if i.Arity == len(args) {
				t.Interfaces = append(t.Interfaces, u.Construct(i, args...))
			} else {
				t.Interfaces = append(t.Interfaces, i)
			}
		}
		return t
	})
}

func appendUnique(list []*hierarchy.TypeNode, t *hierarchy.TypeNode) []*hierarchy.TypeNode {
	for _, x := range list {
		if x == t {
			return list
		}
	}
	return append(list, t)
}

func declaredName(n *syntax.Node) *syntax.Node {
	if name := n.ChildByField("name"); name != nil {
		return name
	}
	return n.ChildOfKind(syntax.KindIdentifier)
}

func typeParameterCount(n *syntax.Node) int {
	params := n.ChildOfKind(syntax.KindTypeParameterList)
	if params == nil {
		return 0
	}
	return len(params.NamedChildren())
}

// containerName joins the enclosing namespaces and types of n with dots.
func containerName(n *syntax.Node) string {
	var parts []string
	for p := n.Parent(); p != nil; p = p.Parent() {
		switch {
		case p.Is(syntax.KindNamespace, syntax.KindFileScopedNamespace):
			parts = append(parts, namespaceName(p))
		case p.Is(syntax.TypeDeclarationKinds...):
			if name := declaredName(p); name != nil {
				parts = append(parts, name.Text())
			}
		}
	}
	if !hasNamespaceAncestor(n) {
		if fs := fileScopedNamespace(n.Tree()); fs != nil {
			parts = append(parts, namespaceName(fs))
		}
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

func hasNamespaceAncestor(n *syntax.Node) bool {
	return n.Ancestor(syntax.KindNamespace, syntax.KindFileScopedNamespace) != nil
}

func fileScopedNamespace(tree *syntax.Tree) *syntax.Node {
	if tree == nil || tree.Root == nil {
		return nil
	}
	return tree.Root.ChildOfKind(syntax.KindFileScopedNamespace)
}

func namespaceName(ns *syntax.Node) string {
	name := ns.ChildByField("name")
	if name == nil {
		name = ns.ChildOfKind(syntax.KindQualifiedName, syntax.KindIdentifier)
	}
	return normalizeName(name.Text())
}

func firstTypeChild(n *syntax.Node) *syntax.Node {
	for _, c := range n.NamedChildren() {
		if c.Is(syntax.TypeKinds...) {
			return c
		}
	}
	return nil
}

// normalizeName strips whitespace and the global:: alias from a dotted name.
func normalizeName(s string) string {
	s = strings.Join(strings.Fields(s), "")
	return strings.TrimPrefix(s, "global::")
}

func splitFullName(full string) (ns, name string) {
	if i := strings.LastIndexByte(full, '.'); i >= 0 {
		return full[:i], full[i+1:]
	}
	return "", full
}

func trimArity(name string) string {
	if i := strings.IndexByte(name, '`'); i >= 0 {
		return name[:i]
	}
	return name
}
