// Package member classifies syntax nodes into code units and extracts their
// executable regions.
//
// Every code-unit variant is backed by exactly one Detector. A Registry holds
// the detectors in a fixed priority order; the first detector that supports
// a node wins.
package member

import (
	"exflow/internal/codeunit"
	"exflow/internal/syntax"
)

// Detector recognizes one node shape.
type Detector interface {
	// Kind is the code-unit variant this detector produces.
	Kind() codeunit.Kind
	// NodeKinds lists the syntax kinds the detector may accept. It is used to
	// index detectors; Supports makes the final decision.
	NodeKinds() []string
	Supports(n *syntax.Node) bool
	Regions(n *syntax.Node) []codeunit.Region
	DisplayName(n *syntax.Node) string
	// NameNode returns the identifier (or operator token) naming the unit, if any.
	NameNode(n *syntax.Node) *syntax.Node
}

// bodyRegions collects the block and expression bodies that are direct
// children of n, in source order.
func bodyRegions(n *syntax.Node) []codeunit.Region {
	var regions []codeunit.Region
	for _, c := range n.Children() {
		switch c.Kind {
		case syntax.KindBlock:
			regions = append(regions, codeunit.Region{Style: codeunit.BlockBody, Node: c})
		case syntax.KindArrowExpression:
			if expr := firstNamed(c); expr != nil {
				regions = append(regions, codeunit.Region{Style: codeunit.ExpressionBody, Node: expr})
			}
		}
	}
	return regions
}

func firstNamed(n *syntax.Node) *syntax.Node {
	for _, c := range n.Children() {
		if c.Named && !syntax.IsTrivia(c) {
			return c
		}
	}
	return nil
}

func lastNamed(n *syntax.Node) *syntax.Node {
	children := n.Children()
	for i := len(children) - 1; i >= 0; i-- {
		if c := children[i]; c.Named && !syntax.IsTrivia(c) {
			return c
		}
	}
	return nil
}

// nameBefore returns the grammar's name field, or else the last identifier
// appearing before the first child whose kind is one of stop.
func nameBefore(n *syntax.Node, stop ...string) *syntax.Node {
	if name := n.ChildByField("name"); name != nil && name.Kind == syntax.KindIdentifier {
		return name
	}
	var last *syntax.Node
	for _, c := range n.Children() {
		if c.Is(stop...) {
			break
		}
		if c.Kind == syntax.KindIdentifier {
			last = c
		}
	}
	return last
}

// tokenAfter returns the child following the first child of the given kind.
func tokenAfter(n *syntax.Node, kind string) *syntax.Node {
	for _, c := range n.Children() {
		if c.Kind == kind {
			return c.NextSibling()
		}
	}
	return nil
}

func quoted(prefix string, name *syntax.Node) string {
	if name == nil {
		return prefix
	}
	return prefix + " '" + name.Text() + "'"
}

type methodDetector struct{}

func (methodDetector) Kind() codeunit.Kind        { return codeunit.Method }
func (methodDetector) NodeKinds() []string        { return []string{syntax.KindMethod} }
func (methodDetector) Supports(*syntax.Node) bool { return true }

func (methodDetector) Regions(n *syntax.Node) []codeunit.Region { return bodyRegions(n) }

func (d methodDetector) DisplayName(n *syntax.Node) string {
	return quoted("Method", d.NameNode(n))
}

func (methodDetector) NameNode(n *syntax.Node) *syntax.Node {
	return nameBefore(n, syntax.KindParameterList, syntax.KindTypeParameterList)
}

type constructorDetector struct{}

func (constructorDetector) Kind() codeunit.Kind        { return codeunit.Constructor }
func (constructorDetector) NodeKinds() []string        { return []string{syntax.KindConstructor} }
func (constructorDetector) Supports(*syntax.Node) bool { return true }

func (constructorDetector) Regions(n *syntax.Node) []codeunit.Region { return bodyRegions(n) }

func (d constructorDetector) DisplayName(n *syntax.Node) string {
	return quoted("Constructor", d.NameNode(n))
}

func (constructorDetector) NameNode(n *syntax.Node) *syntax.Node {
	return nameBefore(n, syntax.KindParameterList)
}

type destructorDetector struct{}

func (destructorDetector) Kind() codeunit.Kind        { return codeunit.Destructor }
func (destructorDetector) NodeKinds() []string        { return []string{syntax.KindDestructor} }
func (destructorDetector) Supports(*syntax.Node) bool { return true }

func (destructorDetector) Regions(n *syntax.Node) []codeunit.Region { return bodyRegions(n) }

func (d destructorDetector) DisplayName(n *syntax.Node) string {
	name := d.NameNode(n)
	if name == nil {
		return "Destructor"
	}
	return "Destructor '~" + name.Text() + "'"
}

func (destructorDetector) NameNode(n *syntax.Node) *syntax.Node {
	return nameBefore(n, syntax.KindParameterList)
}

type operatorDetector struct{}

func (operatorDetector) Kind() codeunit.Kind        { return codeunit.Operator }
func (operatorDetector) NodeKinds() []string        { return []string{syntax.KindOperator} }
func (operatorDetector) Supports(*syntax.Node) bool { return true }

func (operatorDetector) Regions(n *syntax.Node) []codeunit.Region { return bodyRegions(n) }

func (d operatorDetector) DisplayName(n *syntax.Node) string {
	return quoted("Operator", d.NameNode(n))
}

func (operatorDetector) NameNode(n *syntax.Node) *syntax.Node {
	if op := n.ChildByField("operator"); op != nil {
		return op
	}
	return tokenAfter(n, "operator")
}

type conversionOperatorDetector struct{}

func (conversionOperatorDetector) Kind() codeunit.Kind { return codeunit.ConversionOperator }
func (conversionOperatorDetector) NodeKinds() []string {
	return []string{syntax.KindConversionOperator}
}
func (conversionOperatorDetector) Supports(*syntax.Node) bool { return true }

func (conversionOperatorDetector) Regions(n *syntax.Node) []codeunit.Region { return bodyRegions(n) }

func (d conversionOperatorDetector) DisplayName(n *syntax.Node) string {
	target := d.NameNode(n)
	if target == nil {
		return "Conversion operator"
	}
	mode := "explicit"
	if n.HasChild("implicit") {
		mode = "implicit"
	}
	return "Conversion operator '" + mode + " " + target.Text() + "'"
}

func (conversionOperatorDetector) NameNode(n *syntax.Node) *syntax.Node {
	if t := n.ChildByField("type"); t != nil {
		return t
	}
	return tokenAfter(n, "operator")
}

// expressionPropertyDetector accepts properties and indexers written with an
// expression body. Accessor-based properties are not units themselves; each
// accessor is picked up by accessorDetector.
type expressionPropertyDetector struct{}

func (expressionPropertyDetector) Kind() codeunit.Kind { return codeunit.Property }

func (expressionPropertyDetector) NodeKinds() []string {
	return []string{syntax.KindProperty, syntax.KindIndexer}
}

func (expressionPropertyDetector) Supports(n *syntax.Node) bool {
	return n.HasChild(syntax.KindArrowExpression) && !n.HasChild(syntax.KindAccessorList)
}

func (expressionPropertyDetector) Regions(n *syntax.Node) []codeunit.Region { return bodyRegions(n) }

func (d expressionPropertyDetector) DisplayName(n *syntax.Node) string {
	if n.Kind == syntax.KindIndexer {
		return "Indexer 'this[]'"
	}
	return quoted("Property", d.NameNode(n))
}

func (expressionPropertyDetector) NameNode(n *syntax.Node) *syntax.Node {
	if n.Kind == syntax.KindIndexer {
		return n.ChildOfKind("this")
	}
	return nameBefore(n, syntax.KindArrowExpression, syntax.KindAccessorList)
}

type accessorDetector struct{}

func (accessorDetector) Kind() codeunit.Kind        { return codeunit.Accessor }
func (accessorDetector) NodeKinds() []string        { return []string{syntax.KindAccessor} }
func (accessorDetector) Supports(*syntax.Node) bool { return true }

func (accessorDetector) Regions(n *syntax.Node) []codeunit.Region { return bodyRegions(n) }

func (d accessorDetector) DisplayName(n *syntax.Node) string {
	keyword := "accessor"
	if kw := d.NameNode(n); kw != nil {
		keyword = kw.Text() + " accessor"
	}
	owner := n.Ancestor(syntax.KindProperty, syntax.KindIndexer, syntax.KindEvent)
	switch {
	case owner == nil:
		return keyword
	case owner.Kind == syntax.KindIndexer:
		return keyword + " of 'this[]'"
	}
	if name := ownerName(owner); name != nil {
		return keyword + " of '" + name.Text() + "'"
	}
	return keyword
}

func (accessorDetector) NameNode(n *syntax.Node) *syntax.Node {
	for _, c := range n.Children() {
		if codeunit.ParseAccessorKind(c.Kind) != codeunit.AccessorNone {
			return c
		}
	}
	return nil
}

func ownerName(owner *syntax.Node) *syntax.Node {
	if owner.Kind == syntax.KindEvent {
		return nameBefore(owner, syntax.KindAccessorList)
	}
	return nameBefore(owner, syntax.KindAccessorList, syntax.KindArrowExpression)
}

// AccessorKindOf returns the accessor flavor of an accessor declaration.
func AccessorKindOf(n *syntax.Node) codeunit.AccessorKind {
	if kw := (accessorDetector{}).NameNode(n); kw != nil {
		return codeunit.ParseAccessorKind(kw.Kind)
	}
	return codeunit.AccessorNone
}

type localFunctionDetector struct{}

func (localFunctionDetector) Kind() codeunit.Kind        { return codeunit.LocalFunction }
func (localFunctionDetector) NodeKinds() []string        { return []string{syntax.KindLocalFunction} }
func (localFunctionDetector) Supports(*syntax.Node) bool { return true }

func (localFunctionDetector) Regions(n *syntax.Node) []codeunit.Region { return bodyRegions(n) }

func (d localFunctionDetector) DisplayName(n *syntax.Node) string {
	return quoted("Local function", d.NameNode(n))
}

func (localFunctionDetector) NameNode(n *syntax.Node) *syntax.Node {
	return nameBefore(n, syntax.KindParameterList, syntax.KindTypeParameterList)
}

type lambdaDetector struct{}

func (lambdaDetector) Kind() codeunit.Kind        { return codeunit.Lambda }
func (lambdaDetector) NodeKinds() []string        { return []string{syntax.KindLambda} }
func (lambdaDetector) Supports(*syntax.Node) bool { return true }

// Regions returns the lambda body. Everything before `=>` is parameters,
// modifiers or a return type, so the body is the last named child.
func (lambdaDetector) Regions(n *syntax.Node) []codeunit.Region {
	body := n.ChildByField("body")
	if body == nil {
		body = lastNamed(n)
	}
	if body == nil || !n.HasChild("=>") {
		return nil
	}
	if body.Kind == syntax.KindBlock {
		return []codeunit.Region{{Style: codeunit.BlockBody, Node: body}}
	}
	return []codeunit.Region{{Style: codeunit.ExpressionBody, Node: body}}
}

func (lambdaDetector) DisplayName(*syntax.Node) string { return "Lambda expression" }

func (lambdaDetector) NameNode(n *syntax.Node) *syntax.Node { return n.ChildOfKind("=>") }

type anonymousMethodDetector struct{}

func (anonymousMethodDetector) Kind() codeunit.Kind        { return codeunit.AnonymousFunction }
func (anonymousMethodDetector) NodeKinds() []string        { return []string{syntax.KindAnonymousMethod} }
func (anonymousMethodDetector) Supports(*syntax.Node) bool { return true }

func (anonymousMethodDetector) Regions(n *syntax.Node) []codeunit.Region { return bodyRegions(n) }

func (anonymousMethodDetector) DisplayName(*syntax.Node) string { return "Anonymous method" }

func (anonymousMethodDetector) NameNode(n *syntax.Node) *syntax.Node {
	return n.ChildOfKind("delegate")
}
