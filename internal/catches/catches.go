// Package catches reasons about catch clauses: ordering, body shape, breadth
// and the `throw ex;` anti-pattern.
package catches

import (
	"cmp"
	"slices"

	"exflow/internal/codeunit"
	"exflow/internal/flow"
	"exflow/internal/hierarchy"
	"exflow/internal/semantic"
	"exflow/internal/syntax"
)

// Unreachable pairs a shadowed clause with the earliest clause shadowing it.
type Unreachable struct {
	Blocked  flow.CatchClause
	Blocking flow.CatchClause
}

// FindUnreachableClauses reports every clause of block that can never run
// because an earlier clause always catches first. Clause j is blocked by the
// earliest i < j that is an unguarded catch-all, or whose declared type is
// on j's base chain and carries no guard. Unresolved types never block and
// are never blocked.
func FindUnreachableClauses(block flow.ProtectedBlock) []Unreachable {
	var out []Unreachable
	flagged := make([]bool, len(block.Catches))
	for i, earlier := range block.Catches {
		if earlier.HasFilter() {
			continue
		}
		for j := i + 1; j < len(block.Catches); j++ {
			if flagged[j] {
				continue
			}
			later := block.Catches[j]
			if earlier.IsCatchAll() || hierarchy.IsAssignableTo(later.Type, earlier.Type) {
				flagged[j] = true
				out = append(out, Unreachable{Blocked: later, Blocking: earlier})
			}
		}
	}
	sortByBlocked(out)
	return out
}

func sortByBlocked(list []Unreachable) {
	slices.SortStableFunc(list, func(a, b Unreachable) int {
		return cmp.Compare(a.Blocked.Index, b.Blocked.Index)
	})
}

// IsEmpty reports whether the handler body has no statements.
func IsEmpty(c flow.CatchClause) bool {
	return c.Body != nil && len(c.Statements()) == 0
}

// IsRethrowOnly reports whether the handler body is exactly `throw;`.
func IsRethrowOnly(c flow.CatchClause) bool {
	stmts := c.Statements()
	return len(stmts) == 1 && flow.IsRethrowStatement(stmts[0])
}

// RethrowAntiPattern is a `throw ex;` that re-raises the caught exception
// through its variable.
type RethrowAntiPattern struct {
	Clause flow.CatchClause
	Site   flow.ThrowSite
}

// FindRethrowAntiPatterns returns the throw sites of c that throw the
// clause's own bound variable, nested handlers included. A site belongs to
// the nearest enclosing catch that binds the thrown name.
func FindRethrowAntiPatterns(c flow.CatchClause) []RethrowAntiPattern {
	if c.Variable == "" || c.Body == nil {
		return nil
	}
	var out []RethrowAntiPattern
	for _, site := range flow.FindThrowSites(bodyRegion(c), nil) {
		if site.Tag != flow.ThrowWithValue || site.Value == nil {
			continue
		}
		value := unwrapParens(site.Value)
		if value.Kind != syntax.KindIdentifier || value.Text() != c.Variable {
			continue
		}
		if bindingCatch(value, c.Variable) != c.Node {
			continue
		}
		if shadowedBetween(value, c) {
			continue
		}
		out = append(out, RethrowAntiPattern{Clause: c, Site: site})
	}
	return out
}

// bindingCatch returns the nearest catch clause above ref whose declaration
// binds name.
func bindingCatch(ref *syntax.Node, name string) *syntax.Node {
	for p := ref.Ancestor(syntax.KindCatchClause); p != nil; p = p.Ancestor(syntax.KindCatchClause) {
		_, id := semantic.CatchDeclaration(p.ChildOfKind(syntax.KindCatchDeclaration))
		if id != nil && id.Text() == name {
			return p
		}
	}
	return nil
}

func bodyRegion(c flow.CatchClause) codeunit.Region {
	return codeunit.Region{Style: codeunit.BlockBody, Node: c.Body}
}

func unwrapParens(n *syntax.Node) *syntax.Node {
	for n.Kind == syntax.KindParenthesized {
		inner := firstNamed(n)
		if inner == nil {
			break
		}
		n = inner
	}
	return n
}

// shadowedBetween reports whether a lambda parameter or nested code unit
// between ref and the clause could rebind the name; such throws are skipped.
func shadowedBetween(ref *syntax.Node, c flow.CatchClause) bool {
	for p := ref.Parent(); p != nil && p != c.Body; p = p.Parent() {
		if p.Is(syntax.KindLambda, syntax.KindAnonymousMethod, syntax.KindLocalFunction) {
			for _, id := range syntax.Find(p.ChildOfKind(syntax.KindParameterList), syntax.KindIdentifier) {
				if id.Text() == c.Variable {
					return true
				}
			}
			if id := p.ChildOfKind(syntax.KindIdentifier); id != nil && p.Kind == syntax.KindLambda && id.Text() == c.Variable {
				return true
			}
		}
	}
	return false
}

func firstNamed(n *syntax.Node) *syntax.Node {
	for _, c := range n.Children() {
		if c.Named && !syntax.IsTrivia(c) {
			return c
		}
	}
	return nil
}
