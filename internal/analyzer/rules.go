package analyzer

import (
	"fmt"

	"exflow/internal/catches"
	"exflow/internal/codeunit"
	"exflow/internal/diag"
	"exflow/internal/flow"
	"exflow/internal/semantic"
	"exflow/internal/syntax"
)

// unitPass holds the state of one code unit's analysis.
type unitPass struct {
	a     *Analyzer
	unit  *codeunit.CodeUnit
	model *semantic.Model
	broad *catches.Broadness
	ref   diag.UnitRef
	out   []diag.Diagnostic
}

// analyzeUnit runs every enabled rule on unit. A panic is recovered and
// reported as an analyzer failure of this unit only.
func (a *Analyzer) analyzeUnit(unit *codeunit.CodeUnit, model *semantic.Model, broad *catches.Broadness) (out []diag.Diagnostic) {
	p := &unitPass{a: a, unit: unit, model: model, broad: broad, ref: diag.RefOf(unit)}
	defer func() {
		if r := recover(); r != nil {
			loc := diag.At(unit.Anchor())
			a.logger.Printf("⚠️ %s: analysis of %s failed: %v", loc, unit.DisplayName, r)
			out = nil
			if a.settings.RuleEnabled(diag.AnalyzerFailure) {
				out = []diag.Diagnostic{diag.New(diag.AnalyzerFailure, loc, p.ref, unit.DisplayName, r)}
			}
		}
	}()
	if a.unitHook != nil {
		a.unitHook(unit)
	}
	p.run()
	return p.out
}

func (p *unitPass) report(rule diag.Rule, at *syntax.Node, args ...any) {
	if !p.a.settings.RuleEnabled(rule) {
		return
	}
	p.out = append(p.out, diag.New(rule, diag.At(at), p.ref, args...))
}

// owns reports whether n belongs to this unit rather than to a nested one.
// Nested lambdas and local functions report their own findings.
func (p *unitPass) owns(n *syntax.Node) bool {
	return p.a.registry.Enclosing(n) == p.unit.Node
}

func (p *unitPass) run() {
	var sites []flow.ThrowSite
	var blocks []flow.ProtectedBlock
	for _, region := range p.unit.Regions {
		for _, s := range flow.FindThrowSites(region, nil) {
			if p.owns(s.Node) {
				sites = append(sites, s)
			}
		}
		for _, b := range flow.FindProtectedBlocks(region, p.model) {
			if p.owns(b.Try) {
				blocks = append(blocks, b)
			}
		}
	}

	if len(sites) > 0 {
		p.report(diag.ThrowStatement, p.unit.Anchor(), p.unit.DisplayName)
	}
	if flow.HasUnhandledThrow(p.unit) {
		for _, s := range flow.UnhandledThrowSites(p.unit, p.model) {
			if p.owns(s.Node) {
				p.report(diag.UnhandledThrow, s.Node, p.unit.DisplayName, describeThrown(s))
			}
		}
	}
	for _, b := range blocks {
		if len(b.Catches) > 0 {
			p.report(diag.TryCatch, p.unit.Anchor(), p.unit.DisplayName)
			break
		}
	}

	for _, b := range blocks {
		p.checkBlock(b)
	}
}

func (p *unitPass) checkBlock(b flow.ProtectedBlock) {
	for _, u := range catches.FindUnreachableClauses(b) {
		p.report(diag.UnreachableCatch, u.Blocked.Node, u.Blocked.Describe(), p.unit.DisplayName, u.Blocking.Describe())
	}
	for _, c := range b.Catches {
		switch {
		case catches.IsEmpty(c):
			p.report(diag.EmptyCatch, c.Node, c.Describe(), p.unit.DisplayName)
		case catches.IsRethrowOnly(c):
			p.report(diag.RethrowOnlyCatch, c.Node, c.Describe(), p.unit.DisplayName)
		}
		if p.broad.IsOverlyBroad(c) {
			p.report(diag.OverlyBroadCatch, c.Node, c.Describe(), p.unit.DisplayName)
		}
		for _, ap := range catches.FindRethrowAntiPatterns(c) {
			if p.owns(ap.Site.Node) {
				p.report(diag.RethrowAntiPattern, ap.Site.Node, c.Variable, p.unit.DisplayName)
			}
		}
	}
}

func describeThrown(s flow.ThrowSite) string {
	switch {
	case s.IsBareRethrow():
		return "the caught exception"
	case s.TypeHint != nil:
		return fmt.Sprintf("'%s'", s.TypeHint)
	default:
		return "an exception"
	}
}
