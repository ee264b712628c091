package member

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"exflow/internal/codeunit"
	"exflow/internal/syntax"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseFile(t *testing.T, name string) *syntax.Tree {
	t.Helper()
	src, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return parse(t, string(src))
}

func parse(t *testing.T, src string) *syntax.Tree {
	t.Helper()
	p, err := syntax.NewParser("csharp")
	require.NoError(t, err)
	tree, err := p.Parse(context.Background(), "Test.cs", []byte(src))
	require.NoError(t, err)
	require.False(t, tree.HasErrors())
	return tree
}

func TestRegistry_Units(t *testing.T) {
	tree := parseFile(t, "money.cs")
	units := DefaultRegistry().Units(tree.Root)

	type want struct {
		kind    codeunit.Kind
		name    string
		regions int
	}
	expected := []want{
		{codeunit.Constructor, "Constructor 'Money'", 1},
		{codeunit.Destructor, "Destructor '~Money'", 1},
		{codeunit.Accessor, "get accessor of 'Cents'", 0},
		{codeunit.Accessor, "set accessor of 'Cents'", 0},
		{codeunit.Property, "Property 'Dollars'", 1},
		{codeunit.Property, "Indexer 'this[]'", 1},
		{codeunit.Accessor, "get accessor of 'Label'", 1},
		{codeunit.Accessor, "set accessor of 'Label'", 1},
		{codeunit.Accessor, "add accessor of 'Changed'", 1},
		{codeunit.Accessor, "remove accessor of 'Changed'", 1},
		{codeunit.Method, "Method 'Spend'", 0},
		{codeunit.Operator, "Operator '+'", 1},
		{codeunit.ConversionOperator, "Conversion operator 'implicit int'", 1},
		{codeunit.Method, "Method 'Run'", 1},
		{codeunit.LocalFunction, "Local function 'Local'", 1},
		{codeunit.Lambda, "Lambda expression", 1},
		{codeunit.AnonymousFunction, "Anonymous method", 1},
	}

	got := make([]want, len(units))
	for i, u := range units {
		got[i] = want{u.Kind, u.DisplayName, len(u.Regions)}
	}
	assert.Equal(t, expected, got)
}

func TestRegistry_AccessorsAndRegions(t *testing.T) {
	tree := parseFile(t, "money.cs")
	units := DefaultRegistry().Units(tree.Root)

	byName := make(map[string]*codeunit.CodeUnit)
	for _, u := range units {
		byName[u.DisplayName] = u
	}

	get := byName["get accessor of 'Label'"]
	require.NotNil(t, get)
	assert.Equal(t, codeunit.Get, get.Accessor)
	assert.Equal(t, codeunit.BlockBody, get.Regions[0].Style)
	assert.Len(t, get.Regions[0].Statements(), 1)

	set := byName["set accessor of 'Label'"]
	require.NotNil(t, set)
	assert.Equal(t, codeunit.Set, set.Accessor)
	assert.Equal(t, codeunit.ExpressionBody, set.Regions[0].Style)
	assert.Len(t, set.Regions[0].Statements(), 1, "an expression body is one statement")

	assert.Equal(t, codeunit.Remove, byName["remove accessor of 'Changed'"].Accessor)

	dollars := byName["Property 'Dollars'"]
	assert.Equal(t, "Dollars", dollars.Name)
	assert.Equal(t, codeunit.ExpressionBody, dollars.Regions[0].Style)

	spend := byName["Method 'Spend'"]
	assert.False(t, spend.HasBody())
	assert.Empty(t, DefaultRegistry().ExtractRegions(spend.Node))

	lambda := byName["Lambda expression"]
	assert.Equal(t, codeunit.ExpressionBody, lambda.Regions[0].Style)
	assert.True(t, lambda.Regions[0].Contains(lambda.Regions[0].Node))
}

func TestRegistry_UnrecognizedNodes(t *testing.T) {
	tree := parse(t, `class C { int field; }`)
	r := DefaultRegistry()

	class := syntax.Find(tree.Root, syntax.KindClass)[0]
	_, ok := r.Classify(class)
	assert.False(t, ok)
	assert.Equal(t, GenericDisplayName, r.DisplayName(class))
	assert.Empty(t, r.ExtractRegions(class))
	assert.Empty(t, r.Units(tree.Root))

	_, ok = r.Classify(nil)
	assert.False(t, ok)
}

func TestRegistry_InterfaceMembersHaveNoRegions(t *testing.T) {
	tree := parse(t, `
interface IShape
{
    double Area();
    string Name { get; }
}
`)
	units := DefaultRegistry().Units(tree.Root)
	require.Len(t, units, 2)
	assert.Equal(t, "Method 'Area'", units[0].DisplayName)
	assert.Equal(t, "get accessor of 'Name'", units[1].DisplayName)
	for _, u := range units {
		assert.Empty(t, u.Regions)
	}
}

func TestRegistry_Enclosing(t *testing.T) {
	tree := parseFile(t, "money.cs")
	r := DefaultRegistry()

	binary := syntax.Find(tree.Root, "binary_expression")
	require.NotEmpty(t, binary)
	// Cents / 100 lives in the Dollars property
	assert.Equal(t, syntax.KindProperty, r.Enclosing(binary[0]).Kind)

	// x + 1 lives in the lambda, not in Run
	last := binary[len(binary)-1]
	assert.Equal(t, syntax.KindLambda, r.Enclosing(last).Kind)
	assert.Nil(t, r.Enclosing(tree.Root))
}

// stubDetector claims every method, to check first-match priority.
type stubDetector struct {
	methodDetector
	label string
}

func (d stubDetector) DisplayName(*syntax.Node) string { return d.label }

func TestRegistry_PriorityOrder(t *testing.T) {
	tree := parse(t, `class C { void M() { } }`)
	method := syntax.Find(tree.Root, syntax.KindMethod)[0]

	first := NewRegistry(stubDetector{label: "first"}, stubDetector{label: "second"})
	assert.Equal(t, "first", first.DisplayName(method))

	reversed := NewRegistry(stubDetector{label: "second"}, stubDetector{label: "first"})
	assert.Equal(t, "second", reversed.DisplayName(method))

	d, ok := first.Detect(method)
	require.True(t, ok)
	assert.Equal(t, codeunit.Method, d.Kind())
}
