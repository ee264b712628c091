package member

import (
	"exflow/internal/codeunit"
	"exflow/internal/syntax"
)

// GenericDisplayName is used for nodes no detector recognizes.
const GenericDisplayName = "Member"

// Registry dispatches nodes to detectors. The priority order is fixed at
// construction; a kind index keeps lookups O(1) without changing which
// detector wins.
type Registry struct {
	detectors []Detector
	byKind    map[string][]Detector
}

// NewRegistry creates a registry whose priority order is the argument order.
func NewRegistry(detectors ...Detector) *Registry {
	r := &Registry{
		detectors: detectors,
		byKind:    make(map[string][]Detector),
	}
	for _, d := range detectors {
		for _, k := range d.NodeKinds() {
			r.byKind[k] = append(r.byKind[k], d)
		}
	}
	return r
}

// DefaultRegistry returns the registry with one detector per code-unit variant.
func DefaultRegistry() *Registry {
	return NewRegistry(
		methodDetector{},
		constructorDetector{},
		destructorDetector{},
		operatorDetector{},
		conversionOperatorDetector{},
		expressionPropertyDetector{},
		accessorDetector{},
		localFunctionDetector{},
		lambdaDetector{},
		anonymousMethodDetector{},
	)
}

// Detect returns the first detector supporting n.
func (r *Registry) Detect(n *syntax.Node) (Detector, bool) {
	if n == nil {
		return nil, false
	}
	for _, d := range r.byKind[n.Kind] {
		if d.Supports(n) {
			return d, true
		}
	}
	return nil, false
}

// Classify builds the code unit for n, or reports false when n is not one.
func (r *Registry) Classify(n *syntax.Node) (*codeunit.CodeUnit, bool) {
	d, ok := r.Detect(n)
	if !ok {
		return nil, false
	}
	unit := &codeunit.CodeUnit{
		Kind:        d.Kind(),
		DisplayName: d.DisplayName(n),
		Node:        n,
		NameNode:    d.NameNode(n),
		Regions:     d.Regions(n),
	}
	if unit.Kind == codeunit.Accessor {
		unit.Accessor = AccessorKindOf(n)
	}
	if unit.NameNode != nil && unit.NameNode.Named {
		unit.Name = unit.NameNode.Text()
	}
	return unit, true
}

// ExtractRegions returns the executable regions of n. Declarations without
// a body (abstract, partial, extern, interface members) yield none.
func (r *Registry) ExtractRegions(n *syntax.Node) []codeunit.Region {
	d, ok := r.Detect(n)
	if !ok {
		return nil
	}
	return d.Regions(n)
}

// DisplayName returns the human-readable name of n.
func (r *Registry) DisplayName(n *syntax.Node) string {
	d, ok := r.Detect(n)
	if !ok {
		return GenericDisplayName
	}
	return d.DisplayName(n)
}

// Units enumerates every code unit under root in document order. Nested
// units (lambdas, local functions) are returned as units of their own.
func (r *Registry) Units(root *syntax.Node) []*codeunit.CodeUnit {
	var units []*codeunit.CodeUnit
	syntax.Walk(root, func(n *syntax.Node) bool {
		if unit, ok := r.Classify(n); ok {
			units = append(units, unit)
		}
		return true
	})
	return units
}

// Enclosing returns the nearest strict ancestor of n that is a code unit.
func (r *Registry) Enclosing(n *syntax.Node) *syntax.Node {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if _, ok := r.Detect(p); ok {
			return p
		}
	}
	return nil
}
