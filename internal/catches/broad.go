package catches

import (
	"exflow/internal/flow"
	"exflow/internal/hierarchy"
)

// Broadness decides which declared catch types are too broad. The zero value
// treats nothing as broad; use NewBroadness.
type Broadness struct {
	broad map[*hierarchy.TypeNode]struct{}
}

// NewBroadness marks the given types as too broad. Nil entries (unresolved
// names) are ignored.
func NewBroadness(types ...*hierarchy.TypeNode) *Broadness {
	b := &Broadness{broad: make(map[*hierarchy.TypeNode]struct{}, len(types))}
	for _, t := range types {
		if t != nil {
			b.broad[t] = struct{}{}
		}
	}
	return b
}

// IsBroad reports whether t is one of the designated broad types.
func (b *Broadness) IsBroad(t *hierarchy.TypeNode) bool {
	if b == nil || t == nil {
		return false
	}
	_, ok := b.broad[t]
	return ok
}

// IsOverlyBroad reports whether c catches a designated broad type, or
// catches everything, without a guard. The body is not inspected. An
// unresolved declared type is never broad.
func (b *Broadness) IsOverlyBroad(c flow.CatchClause) bool {
	if c.HasFilter() {
		return false
	}
	if !c.HasDeclaredType() {
		return true
	}
	return b.IsBroad(c.Type)
}
