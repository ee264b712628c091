package git

import (
	"path/filepath"

	"exflow/internal/diag"
)

// Filter keeps findings whose span touches a changed line. Finding paths are
// made relative to root before matching the repository-relative diff paths.
type Filter struct {
	root  string
	lines map[string]map[int]struct{}
}

func NewFilter(root string, changes []ChangedFile) *Filter {
	f := &Filter{root: root, lines: make(map[string]map[int]struct{}, len(changes))}
	for _, c := range changes {
		set := make(map[int]struct{}, len(c.ChangedLines))
		for _, l := range c.ChangedLines {
			set[l] = struct{}{}
		}
		f.lines[filepath.ToSlash(filepath.Clean(c.Path))] = set
	}
	return f
}

// Keep reports whether d overlaps a changed line.
func (f *Filter) Keep(d diag.Diagnostic) bool {
	lines, ok := f.lines[f.relative(d.Location.File)]
	if !ok {
		return false
	}
	return isAffected(d.Location, lines)
}

func (f *Filter) relative(path string) string {
	if f.root != "" && filepath.IsAbs(path) {
		if rel, err := filepath.Rel(f.root, path); err == nil {
			path = rel
		}
	}
	return filepath.ToSlash(filepath.Clean(path))
}

func isAffected(loc diag.Location, lines map[int]struct{}) bool {
	// Simple overlap check
	for line := loc.Span.Start.Line; line <= loc.Span.End.Line; line++ {
		if _, ok := lines[line]; ok {
			return true
		}
	}
	return false
}
