package config

import (
	"strings"

	"exflow/internal/codeunit"
	"exflow/internal/diag"
)

// Source is the key lookup the analysis reads its toggles from.
type Source interface {
	Get(key string) (string, bool)
}

// MapSource is a Source over a plain map. Keys are matched case-insensitively.
type MapSource map[string]string

func (m MapSource) Get(key string) (string, bool) {
	if v, ok := m[key]; ok {
		return v, true
	}
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

// Settings are the resolved rule and code-unit toggles.
type Settings struct {
	Prefix string
	rules  map[string]bool
	kinds  kindSet
}

// kindSet holds one bit per codeunit.Kind.
type kindSet uint16

func (s *kindSet) set(k codeunit.Kind, on bool) {
	if on {
		*s |= 1 << k
	} else {
		*s &^= 1 << k
	}
}

func (s kindSet) has(k codeunit.Kind) bool {
	return s&(1<<k) != 0
}

// NewSettings resolves every known toggle from src. Missing and unparseable
// values mean enabled. A nil src enables everything.
func NewSettings(prefix string, src Source) *Settings {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	s := &Settings{Prefix: prefix, rules: make(map[string]bool, len(diag.Rules))}
	for _, r := range diag.Rules {
		s.rules[r.ID] = lookupBool(src, prefix+"_enable_"+r.Name)
	}
	for _, k := range codeunit.Kinds {
		s.kinds.set(k, lookupBool(src, prefix+"_analyze_"+k.ConfigName()))
	}
	return s
}

// RuleEnabled reports whether findings of rule should be produced.
func (s *Settings) RuleEnabled(rule diag.Rule) bool {
	if s == nil {
		return true
	}
	enabled, ok := s.rules[rule.ID]
	return !ok || enabled
}

// AnalyzeKind reports whether code units of kind k are analyzed.
func (s *Settings) AnalyzeKind(k codeunit.Kind) bool {
	if s == nil {
		return true
	}
	return s.kinds.has(k)
}

func lookupBool(src Source, key string) bool {
	if src == nil {
		return true
	}
	v, ok := src.Get(key)
	if !ok {
		return true
	}
	enabled, ok := ParseBool(v)
	if !ok {
		return true
	}
	return enabled
}

// ParseBool understands the spellings used in editorconfig-style files.
func ParseBool(v string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "yes", "on", "1", "enable", "enabled":
		return true, true
	case "false", "no", "off", "0", "disable", "disabled", "none":
		return false, true
	}
	return false, false
}
