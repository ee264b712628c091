package flow

import (
	"exflow/internal/codeunit"
	"exflow/internal/syntax"
)

// HasUnhandledThrow reports whether any throw site of unit escapes every try
// of its regions. It stops at the first escaping site.
func HasUnhandledThrow(unit *codeunit.CodeUnit) bool {
	return len(unhandled(unit, nil, true)) > 0
}

// UnhandledThrowSites returns every throw site of unit that escapes, with
// type hints resolved through resolver (which may be nil).
func UnhandledThrowSites(unit *codeunit.CodeUnit, resolver Resolver) []ThrowSite {
	return unhandled(unit, resolver, false)
}

func unhandled(unit *codeunit.CodeUnit, resolver Resolver, first bool) []ThrowSite {
	if unit == nil {
		return nil
	}
	var sites []ThrowSite
	guarded := make(map[*syntax.Node]struct{})
	for _, region := range unit.Regions {
		sites = append(sites, FindThrowSites(region, resolver)...)
		for _, block := range FindProtectedBlocks(region, nil) {
			if block.Body != nil {
				guarded[block.Body] = struct{}{}
			}
		}
	}
	if len(sites) == 0 {
		return nil
	}
	if len(guarded) == 0 {
		if first {
			return sites[:1]
		}
		return sites
	}

	var out []ThrowSite
	for _, site := range sites {
		if IsHandled(site, guarded) {
			continue
		}
		out = append(out, site)
		if first {
			break
		}
	}
	return out
}

// IsHandled walks the ancestors of site and reports whether the walk enters
// one of the guarded try bodies before it reaches a catch clause or the
// region root. A throw inside a handler is therefore never handled, even when
// that handler sits inside an outer try.
func IsHandled(site ThrowSite, guarded map[*syntax.Node]struct{}) bool {
	root := site.Region.Node
	if site.Node == root {
		return false
	}
	for p := site.Node.Parent(); p != nil; p = p.Parent() {
		if p == root {
			return false
		}
		if _, ok := guarded[p]; ok {
			return true
		}
		if p.Kind == syntax.KindCatchClause {
			return false
		}
	}
	return false
}
