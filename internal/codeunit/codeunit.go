// Package codeunit models every syntactic construct that can hold executable
// code, and the executable regions each one owns.
package codeunit

import "exflow/internal/syntax"

// Kind is the variant tag of a CodeUnit.
type Kind uint8

const (
	KindUnknown Kind = iota
	Method
	Constructor
	Destructor
	Operator
	ConversionOperator
	Property
	Accessor
	LocalFunction
	Lambda
	AnonymousFunction
)

// Kinds lists every concrete kind in declaration order.
var Kinds = []Kind{
	Method,
	Constructor,
	Destructor,
	Operator,
	ConversionOperator,
	Property,
	Accessor,
	LocalFunction,
	Lambda,
	AnonymousFunction,
}

func (k Kind) String() string {
	switch k {
	case Method:
		return "method"
	case Constructor:
		return "constructor"
	case Destructor:
		return "destructor"
	case Operator:
		return "operator"
	case ConversionOperator:
		return "conversion_operator"
	case Property:
		return "property"
	case Accessor:
		return "accessor"
	case LocalFunction:
		return "local_function"
	case Lambda:
		return "lambda"
	case AnonymousFunction:
		return "anonymous_method"
	}
	return "member"
}

// ConfigName is the plural spelling used by `<prefix>_analyze_<unitKind>` keys.
func (k Kind) ConfigName() string {
	switch k {
	case Property:
		return "properties"
	case AnonymousFunction:
		return "anonymous_methods"
	case KindUnknown:
		return "members"
	}
	return k.String() + "s"
}

// AccessorKind distinguishes accessor flavors.
type AccessorKind uint8

const (
	AccessorNone AccessorKind = iota
	Get
	Set
	Init
	Add
	Remove
)

func (a AccessorKind) String() string {
	switch a {
	case Get:
		return "get"
	case Set:
		return "set"
	case Init:
		return "init"
	case Add:
		return "add"
	case Remove:
		return "remove"
	}
	return ""
}

// ParseAccessorKind maps an accessor keyword to its kind.
func ParseAccessorKind(keyword string) AccessorKind {
	switch keyword {
	case "get":
		return Get
	case "set":
		return Set
	case "init":
		return Init
	case "add":
		return Add
	case "remove":
		return Remove
	}
	return AccessorNone
}

// RegionStyle tells a statement block from an expression body.
type RegionStyle uint8

const (
	BlockBody RegionStyle = iota
	ExpressionBody
)

func (s RegionStyle) String() string {
	if s == ExpressionBody {
		return "expression"
	}
	return "block"
}

// Region is one executable body. For BlockBody, Node is the block; for
// ExpressionBody, Node is the expression standing in for a return.
type Region struct {
	Style RegionStyle
	Node  *syntax.Node
}

// Statements returns the region's top-level statements. An expression body
// counts as a single statement.
func (r Region) Statements() []*syntax.Node {
	return syntax.Statements(r.Node)
}

// Contains reports whether n lies inside the region (the root included).
func (r Region) Contains(n *syntax.Node) bool {
	return n != nil && (n == r.Node || r.Node.IsAncestorOf(n))
}

// CodeUnit is one analyzable unit. It is built fresh per analysis pass and
// never mutated afterwards.
type CodeUnit struct {
	Kind        Kind
	Accessor    AccessorKind
	Name        string
	DisplayName string
	Node        *syntax.Node
	NameNode    *syntax.Node
	Regions     []Region
}

// HasBody reports whether the unit owns at least one region.
func (u *CodeUnit) HasBody() bool {
	return u != nil && len(u.Regions) > 0
}

// Anchor returns the node diagnostics about the unit itself are placed on:
// the name identifier when there is one, the declaration otherwise.
func (u *CodeUnit) Anchor() *syntax.Node {
	if u == nil {
		return nil
	}
	if u.NameNode != nil {
		return u.NameNode
	}
	return u.Node
}
