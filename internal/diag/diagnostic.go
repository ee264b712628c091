package diag

import (
	"fmt"

	"exflow/internal/codeunit"
	"exflow/internal/syntax"
)

// Location is a span inside one file.
type Location struct {
	File string      `json:"file" msgpack:"file"`
	Span syntax.Span `json:"span" msgpack:"span"`
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Span.Start.Line, l.Span.Start.Column+1)
}

// At returns the location of n.
func At(n *syntax.Node) Location {
	loc := Location{Span: n.Span}
	if t := n.Tree(); t != nil {
		loc.File = t.Path
	}
	return loc
}

// UnitRef identifies the code unit a finding belongs to.
type UnitRef struct {
	Kind        string `json:"kind" msgpack:"kind"`
	DisplayName string `json:"display_name" msgpack:"display_name"`
	Line        int    `json:"line" msgpack:"line"`
}

// RefOf builds the reference for unit.
func RefOf(unit *codeunit.CodeUnit) UnitRef {
	if unit == nil {
		return UnitRef{}
	}
	return UnitRef{
		Kind:        unit.Kind.String(),
		DisplayName: unit.DisplayName,
		Line:        unit.Anchor().Span.Start.Line,
	}
}

type Diagnostic struct {
	RuleID   string   `json:"rule_id" msgpack:"rule_id"`
	Severity Severity `json:"severity" msgpack:"severity"`
	Message  string   `json:"message" msgpack:"message"`
	Location Location `json:"location" msgpack:"location"`
	Unit     UnitRef  `json:"unit" msgpack:"unit"`
}

// New formats rule's message with args.
func New(rule Rule, loc Location, unit UnitRef, args ...any) Diagnostic {
	return Diagnostic{
		RuleID:   rule.ID,
		Severity: rule.Severity,
		Message:  fmt.Sprintf(rule.Format, args...),
		Location: loc,
		Unit:     unit,
	}
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s %s: %s", d.Location, d.Severity, d.RuleID, d.Message)
}
