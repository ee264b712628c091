package flow

import (
	"exflow/internal/codeunit"
	"exflow/internal/hierarchy"
	"exflow/internal/semantic"
	"exflow/internal/syntax"
)

// ProtectedBlock is a try statement: its guarded body and the ordered catch
// clauses attached to it.
type ProtectedBlock struct {
	Try *syntax.Node
	// Body is the guarded block.
	Body    *syntax.Node
	Catches []CatchClause
	// Finally is the finally block, if any. It never handles anything.
	Finally *syntax.Node
	Region  codeunit.Region
}

// Statements returns the guarded statements.
func (b ProtectedBlock) Statements() []*syntax.Node {
	return syntax.Statements(b.Body)
}

// CatchClause is one handler. Index is its position within the owning block.
type CatchClause struct {
	Node  *syntax.Node
	Index int
	// TypeSyntax is the declared exception type; nil for `catch { }`.
	TypeSyntax *syntax.Node
	// Type is the resolved declared type; nil when absent or unresolved.
	Type         *hierarchy.TypeNode
	Variable     string
	VariableNode *syntax.Node
	// Filter is the `when` predicate expression, if any.
	Filter *syntax.Node
	Body   *syntax.Node
}

// HasDeclaredType reports whether the clause names an exception type,
// resolved or not.
func (c CatchClause) HasDeclaredType() bool {
	return c.TypeSyntax != nil
}

// HasFilter reports whether the clause carries a `when` guard.
func (c CatchClause) HasFilter() bool {
	return c.Filter != nil
}

// IsCatchAll reports whether the clause catches everything unconditionally:
// no declared type and no guard.
func (c CatchClause) IsCatchAll() bool {
	return c.TypeSyntax == nil && c.Filter == nil
}

// Statements returns the handler body statements, trivia excluded.
func (c CatchClause) Statements() []*syntax.Node {
	return syntax.Statements(c.Body)
}

// Describe names the clause for messages: `catch (ArgumentException)`.
func (c CatchClause) Describe() string {
	if c.TypeSyntax == nil {
		return "catch"
	}
	return "catch (" + c.TypeSyntax.Text() + ")"
}

// TypeResolver resolves declared type syntax; *semantic.Model implements it.
type TypeResolver interface {
	ResolveType(n *syntax.Node) *hierarchy.TypeNode
}

// FindProtectedBlocks returns every try statement inside region in textual
// order. Nested trys are separate entries. A nil resolver leaves every
// declared catch type unresolved.
func FindProtectedBlocks(region codeunit.Region, resolver TypeResolver) []ProtectedBlock {
	var blocks []ProtectedBlock
	for _, try := range syntax.Find(region.Node, syntax.KindTryStatement) {
		block := ProtectedBlock{Try: try, Region: region}
		block.Body = try.ChildByField("body")
		if block.Body == nil {
			block.Body = try.ChildOfKind(syntax.KindBlock)
		}
		for _, c := range try.Children() {
			switch c.Kind {
			case syntax.KindCatchClause:
				block.Catches = append(block.Catches, newCatchClause(c, len(block.Catches), resolver))
			case syntax.KindFinallyClause:
				block.Finally = c.ChildOfKind(syntax.KindBlock)
			}
		}
		blocks = append(blocks, block)
	}
	return blocks
}

func newCatchClause(n *syntax.Node, index int, resolver TypeResolver) CatchClause {
	clause := CatchClause{Node: n, Index: index}
	clause.TypeSyntax, clause.VariableNode = semantic.CatchDeclaration(n.ChildOfKind(syntax.KindCatchDeclaration))
	if clause.VariableNode != nil {
		clause.Variable = clause.VariableNode.Text()
	}
	if filter := n.ChildOfKind(syntax.KindCatchFilter); filter != nil {
		clause.Filter = firstNamedChild(filter)
		if clause.Filter == nil {
			clause.Filter = filter
		}
	}
	clause.Body = n.ChildByField("body")
	if clause.Body == nil {
		clause.Body = n.ChildOfKind(syntax.KindBlock)
	}
	if clause.TypeSyntax != nil && resolver != nil {
		clause.Type = resolver.ResolveType(clause.TypeSyntax)
	}
	return clause
}

func firstNamedChild(n *syntax.Node) *syntax.Node {
	for _, c := range n.Children() {
		if c.Named && !syntax.IsTrivia(c) {
			return c
		}
	}
	return nil
}
