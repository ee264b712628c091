package hierarchy

import "exflow/internal/cache"

// IsAssignableTo reports whether derived is base or has base on its base-type
// chain. Interfaces are not considered.
func IsAssignableTo(derived, base *TypeNode) bool {
	if derived == nil || base == nil {
		return false
	}
	for cur := derived; cur != nil; cur = cur.Base {
		if cur == base {
			return true
		}
	}
	return false
}

// Hierarchy returns t followed by each of its base types, ending at the root.
func Hierarchy(t *TypeNode) []*TypeNode {
	var chain []*TypeNode
	for cur := t; cur != nil; cur = cur.Base {
		chain = append(chain, cur)
	}
	return chain
}

// ImplementsInterface reports whether t is iface or implements it, directly or
// through a base type or an inherited interface.
func ImplementsInterface(t, iface *TypeNode) bool {
	if t == nil || iface == nil {
		return false
	}
	if t == iface {
		return true
	}
	for _, i := range t.AllInterfaces() {
		if i == iface {
			return true
		}
	}
	return false
}

// ImplementsGenericInterface is ImplementsInterface comparing unbound generic
// definitions, so IList<int> and IList<string> both satisfy a check against
// IList<T>.
func ImplementsGenericInterface(t, definition *TypeNode) bool {
	if t == nil || definition == nil {
		return false
	}
	def := definition.GenericDefinition()
	if t.GenericDefinition() == def {
		return true
	}
	for _, i := range t.AllInterfaces() {
		if i.GenericDefinition() == def {
			return true
		}
	}
	return false
}

// FindCommonBaseType returns the most derived type on both hierarchies. It
// only returns nil when a or b is nil, since every chain ends at the root.
func FindCommonBaseType(a, b *TypeNode) *TypeNode {
	if a == nil || b == nil {
		return nil
	}
	seen := make(map[*TypeNode]struct{})
	for _, t := range Hierarchy(a) {
		seen[t] = struct{}{}
	}
	for _, t := range Hierarchy(b) {
		if _, ok := seen[t]; ok {
			return t
		}
	}
	return nil
}

const depthTable = "hierarchy.depth"

// Depth returns the number of base-type steps from t to the root, or -1 for
// an unresolved type. Results are memoized in run.
func Depth(run *cache.Run, t *TypeNode) int {
	if t == nil {
		return -1
	}
	return cache.Table[*TypeNode, int](run, depthTable).GetOrCompute(t, func() int {
		return len(Hierarchy(t)) - 1
	})
}
