// Package flow finds throw sites and try regions inside executable regions
// and decides which throws escape every protecting try.
package flow

import (
	"exflow/internal/codeunit"
	"exflow/internal/hierarchy"
	"exflow/internal/syntax"
)

// Resolver maps an expression to its static type, or nil when unknown.
// *semantic.Model implements it.
type Resolver interface {
	TypeOf(expr *syntax.Node) *hierarchy.TypeNode
}

// Tag tells a bare rethrow from a throw with an operand.
type Tag uint8

const (
	BareRethrow Tag = iota
	ThrowWithValue
)

func (t Tag) String() string {
	if t == BareRethrow {
		return "rethrow"
	}
	return "throw"
}

// ThrowSite is one place where control leaves through an exception.
type ThrowSite struct {
	Node *syntax.Node
	Tag  Tag
	// Value is the thrown expression; nil for a bare rethrow.
	Value *syntax.Node
	// TypeHint is the static type of Value, nil when it cannot be resolved.
	TypeHint *hierarchy.TypeNode
	// Region is the body the site was found in.
	Region codeunit.Region
}

// IsBareRethrow reports whether the site is `throw;`.
func (s ThrowSite) IsBareRethrow() bool {
	return s.Tag == BareRethrow
}

// FindThrowSites returns every throw statement and throw expression inside
// region in document order. Bodies of nested lambdas and local functions are
// included. A nil resolver leaves every hint absent.
func FindThrowSites(region codeunit.Region, resolver Resolver) []ThrowSite {
	var sites []ThrowSite
	syntax.Walk(region.Node, func(n *syntax.Node) bool {
		if !n.Is(syntax.KindThrowStatement, syntax.KindThrowExpression) {
			return true
		}
		site := ThrowSite{Node: n, Tag: BareRethrow, Region: region}
		if value := thrownValue(n); value != nil {
			site.Tag = ThrowWithValue
			site.Value = value
			if resolver != nil {
				site.TypeHint = resolver.TypeOf(value)
			}
		}
		sites = append(sites, site)
		// `throw new X(() => throw ...)` still counts the inner throw.
		return true
	})
	return sites
}

func thrownValue(n *syntax.Node) *syntax.Node {
	for _, c := range n.Children() {
		if c.Named && !syntax.IsTrivia(c) {
			return c
		}
	}
	return nil
}

// IsRethrowStatement reports whether n is a `throw;` statement.
func IsRethrowStatement(n *syntax.Node) bool {
	return n.Is(syntax.KindThrowStatement) && thrownValue(n) == nil
}
