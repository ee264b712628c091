package flow

import (
	"context"
	"testing"

	"exflow/internal/cache"
	"exflow/internal/codeunit"
	"exflow/internal/member"
	"exflow/internal/semantic"
	"exflow/internal/syntax"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *syntax.Tree {
	t.Helper()
	p, err := syntax.NewParser("csharp")
	require.NoError(t, err)
	tree, err := p.Parse(context.Background(), "Test.cs", []byte(src))
	require.NoError(t, err)
	return tree
}

func model(t *testing.T, tree *syntax.Tree) *semantic.Model {
	t.Helper()
	u := semantic.NewUniverse(cache.New())
	u.Declare(tree)
	u.Link()
	return u.Model(tree)
}

func method(t *testing.T, tree *syntax.Tree, name string) *codeunit.CodeUnit {
	t.Helper()
	for _, unit := range member.DefaultRegistry().Units(tree.Root) {
		if unit.Kind == codeunit.Method && unit.Name == name {
			return unit
		}
	}
	require.FailNow(t, "method not found", name)
	return nil
}

const reachabilitySource = `
using System;

class Sample
{
    void NoThrow(int x) { Console.WriteLine(x); }

    void Unguarded(int x)
    {
        if (x < 0) throw new ArgumentException();
    }

    void Guarded()
    {
        try { throw new Exception(); } catch (Exception) { }
    }

    void InsideCatch()
    {
        try
        {
            try { Work(); }
            catch (Exception) { throw; }
        }
        catch (Exception) { }
    }

    void NestedTryBody()
    {
        try
        {
            try { throw new InvalidOperationException(); }
            finally { Work(); }
        }
        catch { }
    }

    void Mixed()
    {
        try { throw new Exception(); } catch { }
        throw new NotSupportedException();
    }

    int Arrow() => throw new NotImplementedException();

    void Work() { }
}
`

func TestHasUnhandledThrow(t *testing.T) {
	tree := parse(t, reachabilitySource)

	tests := []struct {
		name string
		want bool
	}{
		{"NoThrow", false},
		{"Unguarded", true},
		{"Guarded", false},
		{"InsideCatch", true},
		{"NestedTryBody", false},
		{"Mixed", true},
		{"Arrow", true},
		{"Work", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasUnhandledThrow(method(t, tree, tt.name)))
		})
	}
}

func TestUnhandledThrowSites(t *testing.T) {
	tree := parse(t, reachabilitySource)
	m := model(t, tree)

	sites := UnhandledThrowSites(method(t, tree, "Mixed"), m)
	require.Len(t, sites, 1)
	require.NotNil(t, sites[0].TypeHint)
	assert.Equal(t, "System.NotSupportedException", sites[0].TypeHint.FullName())

	sites = UnhandledThrowSites(method(t, tree, "InsideCatch"), m)
	require.Len(t, sites, 1)
	assert.True(t, sites[0].IsBareRethrow())

	assert.Empty(t, UnhandledThrowSites(method(t, tree, "Guarded"), m))
	assert.False(t, HasUnhandledThrow(nil))
}

func TestFindThrowSites(t *testing.T) {
	tree := parse(t, `
using System;

class Sample
{
    string Run(string s, Exception saved)
    {
        var name = s ?? throw new ArgumentNullException(nameof(s));
        Action a = () => throw new InvalidOperationException();
        if (name.Length == 0) throw saved;
        throw;
    }
}
`)
	m := model(t, tree)
	unit := method(t, tree, "Run")
	require.Len(t, unit.Regions, 1)

	sites := FindThrowSites(unit.Regions[0], m)
	require.Len(t, sites, 4)

	assert.Equal(t, ThrowWithValue, sites[0].Tag)
	require.NotNil(t, sites[0].TypeHint)
	assert.Equal(t, "System.ArgumentNullException", sites[0].TypeHint.FullName())

	// nested lambda bodies are scanned too
	require.NotNil(t, sites[1].TypeHint)
	assert.Equal(t, "System.InvalidOperationException", sites[1].TypeHint.FullName())

	assert.Equal(t, ThrowWithValue, sites[2].Tag)
	require.NotNil(t, sites[2].TypeHint)
	assert.Equal(t, "System.Exception", sites[2].TypeHint.FullName())

	assert.Equal(t, BareRethrow, sites[3].Tag)
	assert.Nil(t, sites[3].Value)
	assert.Nil(t, sites[3].TypeHint)

	t.Run("nil resolver leaves hints absent", func(t *testing.T) {
		for _, s := range FindThrowSites(unit.Regions[0], nil) {
			assert.Nil(t, s.TypeHint)
		}
	})
}

func TestFindThrowSites_UnresolvedHint(t *testing.T) {
	tree := parse(t, `
class Sample
{
    void Run() { throw new MysteryException(); }
}
`)
	unit := method(t, tree, "Run")
	sites := FindThrowSites(unit.Regions[0], model(t, tree))
	require.Len(t, sites, 1)
	assert.Equal(t, ThrowWithValue, sites[0].Tag)
	assert.Nil(t, sites[0].TypeHint)
}

func TestFindProtectedBlocks(t *testing.T) {
	tree := parse(t, `
using System;

class Sample
{
    void Run()
    {
        try
        {
            try { Work(); }
            catch (ArgumentException ex) when (ex.ParamName != null) { }
        }
        catch (Exception e) { Log(e); }
        catch { throw; }
        finally { Work(); }
    }

    void Work() { }
    void Log(Exception e) { }
}
`)
	m := model(t, tree)
	unit := method(t, tree, "Run")
	blocks := FindProtectedBlocks(unit.Regions[0], m)
	require.Len(t, blocks, 2)

	outer, inner := blocks[0], blocks[1]
	assert.True(t, outer.Try.IsAncestorOf(inner.Try))
	assert.NotNil(t, outer.Finally)
	assert.Nil(t, inner.Finally)
	assert.Len(t, outer.Statements(), 1)

	require.Len(t, outer.Catches, 2)
	assert.Equal(t, 0, outer.Catches[0].Index)
	assert.Equal(t, "e", outer.Catches[0].Variable)
	require.NotNil(t, outer.Catches[0].Type)
	assert.Equal(t, "System.Exception", outer.Catches[0].Type.FullName())
	assert.Len(t, outer.Catches[0].Statements(), 1)

	assert.Equal(t, 1, outer.Catches[1].Index)
	assert.False(t, outer.Catches[1].HasDeclaredType())
	assert.True(t, outer.Catches[1].IsCatchAll())
	assert.Equal(t, "catch", outer.Catches[1].Describe())

	require.Len(t, inner.Catches, 1)
	c := inner.Catches[0]
	assert.True(t, c.HasFilter())
	assert.False(t, c.IsCatchAll())
	assert.Equal(t, "ex", c.Variable)
	assert.Equal(t, "catch (ArgumentException)", c.Describe())
	require.NotNil(t, c.Type)
	assert.Equal(t, "System.ArgumentException", c.Type.FullName())
}

func TestFindProtectedBlocks_None(t *testing.T) {
	tree := parse(t, `class C { void M() { } }`)
	assert.Empty(t, FindProtectedBlocks(method(t, tree, "M").Regions[0], nil))
}
