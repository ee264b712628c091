package config

import (
	"os"
	"path/filepath"
	"testing"

	"exflow/internal/codeunit"
	"exflow/internal/diag"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "exflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
project:
  root: ./src
  exclude: [generated]
analysis:
  workers: 4
output:
  format: json
options:
  exflow_enable_empty_catch: "false"
  exflow_analyze_lambdas: "no"
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "./src", cfg.Project.Root)
	assert.Equal(t, []string{"generated"}, cfg.Project.Exclude)
	assert.Equal(t, 4, cfg.Analysis.Workers)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, DefaultPrefix, cfg.Prefix)
	assert.Equal(t, []string{"System.Exception", "System.SystemException"}, cfg.Analysis.BroadTypes)

	s := NewSettings(cfg.Prefix, cfg.Source())
	assert.False(t, s.RuleEnabled(diag.EmptyCatch))
	assert.True(t, s.RuleEnabled(diag.UnhandledThrow))
	assert.False(t, s.AnalyzeKind(codeunit.Lambda))
	assert.True(t, s.AnalyzeKind(codeunit.Method))
}

func TestLoadConfig_TOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "exflow.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
prefix = "team"

[analysis]
broad_types = ["System.Exception"]

[options]
team_enable_overly_broad_catch = "off"
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "team", cfg.Prefix)
	assert.Equal(t, []string{"System.Exception"}, cfg.Analysis.BroadTypes)

	s := NewSettings(cfg.Prefix, cfg.Source())
	assert.False(t, s.RuleEnabled(diag.OverlyBroadCatch))
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("project: [unclosed"), 0o644))
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("EXFLOW_WORKERS", "3")
	t.Setenv("EXFLOW_FORMAT", "msgpack")
	t.Setenv("EXFLOW_ENABLE_TRY_CATCH", "false")
	t.Setenv("EXFLOW_BROAD_TYPES", "System.Exception, MyApp.BaseError")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Analysis.Workers)
	assert.Equal(t, "msgpack", cfg.Output.Format)
	assert.Equal(t, []string{"System.Exception", "MyApp.BaseError"}, cfg.Analysis.BroadTypes)
	assert.False(t, NewSettings(cfg.Prefix, cfg.Source()).RuleEnabled(diag.TryCatch))
}

func TestSettings_Defaults(t *testing.T) {
	s := NewSettings("", MapSource{
		"exflow_enable_unhandled_throw": "maybe",
		"EXFLOW_ANALYZE_PROPERTIES":     "false",
		"exflow_analyze_accessors":      "",
	})
	assert.True(t, s.RuleEnabled(diag.UnhandledThrow), "unparseable means enabled")
	assert.False(t, s.AnalyzeKind(codeunit.Property), "keys match case-insensitively")
	assert.True(t, s.AnalyzeKind(codeunit.Accessor))

	for _, r := range diag.Rules {
		assert.True(t, NewSettings("", nil).RuleEnabled(r), r.Name)
	}
	var none *Settings
	assert.True(t, none.AnalyzeKind(codeunit.Lambda))
}

func TestKindSet(t *testing.T) {
	var s kindSet
	s.set(codeunit.Method, true)
	s.set(codeunit.Lambda, true)
	assert.True(t, s.has(codeunit.Method))
	assert.False(t, s.has(codeunit.Accessor))

	s.set(codeunit.Method, false)
	s.set(codeunit.AnonymousFunction, true)
	assert.False(t, s.has(codeunit.Method))
	assert.True(t, s.has(codeunit.Lambda))
	assert.True(t, s.has(codeunit.AnonymousFunction))
}
