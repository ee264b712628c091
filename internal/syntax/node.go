package syntax

import "fmt"

// Point is a 1-based line and 0-based byte column, matching how editors
// report positions.
type Point struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Span is the half-open byte interval [StartByte, EndByte) of a node together
// with its line/column endpoints.
type Span struct {
	StartByte int   `json:"start_byte"`
	EndByte   int   `json:"end_byte"`
	Start     Point `json:"start"`
	End       Point `json:"end"`
}

// Contains reports whether o lies entirely inside s.
func (s Span) Contains(o Span) bool {
	return s.StartByte <= o.StartByte && o.EndByte <= s.EndByte
}

// Node is an immutable snapshot of one tree-sitter node. Unnamed nodes
// (punctuation and keywords) are kept so that shapes like `throw;` or
// `get => ...` can be told apart; their Kind is the token text.
type Node struct {
	Kind  string
	Field string
	Named bool
	Span  Span

	tree     *Tree
	parent   *Node
	children []*Node
	index    int
}

// Tree is a parsed source unit.
type Tree struct {
	Path   string
	Source []byte
	Root   *Node

	hasErrors bool
}

// HasErrors reports whether the parser recovered from syntax errors.
func (t *Tree) HasErrors() bool {
	return t != nil && t.hasErrors
}

func (n *Node) Parent() *Node {
	if n == nil {
		return nil
	}
	return n.parent
}

func (n *Node) Tree() *Tree {
	if n == nil {
		return nil
	}
	return n.tree
}

func (n *Node) Children() []*Node {
	if n == nil {
		return nil
	}
	return n.children
}

// NamedChildren returns the named children in source order.
func (n *Node) NamedChildren() []*Node {
	if n == nil {
		return nil
	}
	out := make([]*Node, 0, len(n.children))
	for _, c := range n.children {
		if c.Named {
			out = append(out, c)
		}
	}
	return out
}

// ChildByField returns the first child stored under the given grammar field.
func (n *Node) ChildByField(field string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.children {
		if c.Field == field {
			return c
		}
	}
	return nil
}

// ChildOfKind returns the first direct child whose kind is one of kinds.
func (n *Node) ChildOfKind(kinds ...string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.children {
		for _, k := range kinds {
			if c.Kind == k {
				return c
			}
		}
	}
	return nil
}

// HasChild reports whether a direct child (named or not) has the given kind.
func (n *Node) HasChild(kind string) bool {
	return n.ChildOfKind(kind) != nil
}

func (n *Node) NextSibling() *Node {
	if n == nil || n.parent == nil || n.index+1 >= len(n.parent.children) {
		return nil
	}
	return n.parent.children[n.index+1]
}

func (n *Node) PrevSibling() *Node {
	if n == nil || n.parent == nil || n.index == 0 {
		return nil
	}
	return n.parent.children[n.index-1]
}

// Text returns the source text covered by the node.
func (n *Node) Text() string {
	if n == nil || n.tree == nil {
		return ""
	}
	return string(n.tree.Source[n.Span.StartByte:n.Span.EndByte])
}

// Is reports whether the node kind is one of kinds.
func (n *Node) Is(kinds ...string) bool {
	if n == nil {
		return false
	}
	for _, k := range kinds {
		if n.Kind == k {
			return true
		}
	}
	return false
}

// IsAncestorOf reports whether n is a strict ancestor of other.
func (n *Node) IsAncestorOf(other *Node) bool {
	if n == nil || other == nil {
		return false
	}
	for p := other.parent; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// Ancestor returns the nearest strict ancestor whose kind is one of kinds.
func (n *Node) Ancestor(kinds ...string) *Node {
	for p := n.Parent(); p != nil; p = p.parent {
		if p.Is(kinds...) {
			return p
		}
	}
	return nil
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the children of the current node.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		Walk(c, fn)
	}
}

// Find collects every node under n (n included) whose kind is one of kinds,
// in document order.
func Find(n *Node, kinds ...string) []*Node {
	var out []*Node
	Walk(n, func(c *Node) bool {
		if c.Is(kinds...) {
			out = append(out, c)
		}
		return true
	})
	return out
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s@%d:%d", n.Kind, n.Span.Start.Line, n.Span.Start.Column)
}
