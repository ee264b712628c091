package semantic

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"exflow/internal/cache"
	"exflow/internal/hierarchy"
	"exflow/internal/syntax"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, path string, src []byte) *syntax.Tree {
	t.Helper()
	p, err := syntax.NewParser("csharp")
	require.NoError(t, err)
	tree, err := p.Parse(context.Background(), path, src)
	require.NoError(t, err)
	require.False(t, tree.HasErrors())
	return tree
}

func load(t *testing.T, trees ...*syntax.Tree) *Universe {
	t.Helper()
	u := NewUniverse(cache.New())
	u.SetLogger(log.New(io.Discard, "", 0))
	for _, tree := range trees {
		u.Declare(tree)
	}
	u.Link()
	return u
}

func shop(t *testing.T) (*Universe, *syntax.Tree) {
	t.Helper()
	src, err := os.ReadFile(filepath.Join("testdata", "shop.cs"))
	require.NoError(t, err)
	tree := parse(t, "shop.cs", src)
	return load(t, tree), tree
}

func TestUniverse_Builtins(t *testing.T) {
	u := NewUniverse(nil)
	object := u.Object()
	require.NotNil(t, object)
	assert.Nil(t, object.Base)

	fnf := u.Lookup("System.IO.FileNotFoundException")
	require.NotNil(t, fnf)
	assert.True(t, u.isBuiltin(fnf))
	assert.True(t, hierarchy.IsAssignableTo(fnf, u.Exception()))
	assert.Equal(t, "FileNotFoundException", fnf.String())

	list := u.Lookup("System.Collections.Generic.List`1")
	require.NotNil(t, list)
	assert.True(t, hierarchy.ImplementsGenericInterface(list, u.Lookup("System.Collections.Generic.IEnumerable`1")))
	assert.True(t, hierarchy.ImplementsInterface(u.Lookup("System.Exception"), u.Lookup("System.Runtime.Serialization.ISerializable")))
	assert.Same(t, u.Lookup("System.ValueType"), u.Lookup("System.Int32").Base)

	// every builtin chain ends at Object
	for name, ty := range u.byFullName {
		chain := hierarchy.Hierarchy(ty)
		assert.Same(t, object, chain[len(chain)-1], name)
	}
}

func TestUniverse_Declared(t *testing.T) {
	u, _ := shop(t)

	names := make([]string, 0)
	for _, ty := range u.Declared() {
		names = append(names, ty.FullName())
	}
	assert.Equal(t, []string{
		"Shop.Errors.OrderException",
		"Shop.Errors.PaymentException",
		"Shop.Errors.Loop1",
		"Shop.Errors.Loop2",
		"Shop.Errors.Mystery",
		"Shop.Errors.IRetryable",
		"Shop.Errors.Money",
		"Shop.Errors.Batch`1",
		"Shop.Orders.Service",
	}, names)

	order := u.Lookup("Shop.Errors.OrderException")
	payment := u.Lookup("Shop.Errors.PaymentException")
	assert.Same(t, u.Exception(), order.Base)
	assert.Same(t, order, payment.Base)
	assert.True(t, hierarchy.ImplementsInterface(payment, u.Lookup("System.IDisposable")))
	assert.False(t, payment.Incomplete)

	money := u.Lookup("Shop.Errors.Money")
	assert.Same(t, u.Lookup("System.ValueType"), money.Base)
	assert.True(t, hierarchy.ImplementsInterface(money, u.Lookup("Shop.Errors.IRetryable")))

	iface := u.Lookup("Shop.Errors.IRetryable")
	assert.True(t, iface.Interface)
	assert.Same(t, u.Object(), iface.Base)

	batch := u.Lookup("Shop.Errors.Batch`1")
	assert.Equal(t, 1, batch.Arity)
	assert.False(t, u.isBuiltin(batch))
}

func TestUniverse_CircularAndUnresolvedBases(t *testing.T) {
	u, _ := shop(t)
	loop1 := u.Lookup("Shop.Errors.Loop1")
	loop2 := u.Lookup("Shop.Errors.Loop2")

	assert.Same(t, loop2, loop1.Base)
	assert.Same(t, u.Object(), loop2.Base, "the base closing the cycle is dropped")
	assert.True(t, loop2.Incomplete)
	assert.Len(t, hierarchy.Hierarchy(loop1), 3)

	mystery := u.Lookup("Shop.Errors.Mystery")
	assert.True(t, mystery.Incomplete)
	assert.Same(t, u.Object(), mystery.Base)
}

func TestUniverse_PartialAndShadowing(t *testing.T) {
	a := parse(t, "A.cs", []byte(`namespace N { partial class P : System.Exception { } }`))
	b := parse(t, "B.cs", []byte(`namespace N { partial class P { } } namespace System { class Exception { } }`))
	u := load(t, a, b)

	require.Len(t, u.Declared(), 1, "partials share one type and framework types cannot be redeclared")
	p := u.Lookup("N.P")
	assert.Same(t, u.Exception(), p.Base)
	assert.True(t, u.isBuiltin(u.Exception()))
}

func TestUniverse_Construct(t *testing.T) {
	u := NewUniverse(cache.New())
	list := u.Lookup("System.Collections.Generic.List`1")
	intType := u.Lookup("System.Int32")
	stringType := u.Lookup("System.String")

	listOfInt := u.Construct(list, intType)
	require.NotNil(t, listOfInt)
	assert.Same(t, listOfInt, u.Construct(list, intType), "constructions are memoized")
	assert.NotSame(t, listOfInt, u.Construct(list, stringType))
	assert.Equal(t, "List<Int32>", listOfInt.String())
	assert.Same(t, list, listOfInt.GenericDefinition())
	assert.True(t, hierarchy.ImplementsGenericInterface(listOfInt, u.Lookup("System.Collections.Generic.IList`1")))

	assert.Nil(t, u.Construct(list), "arity mismatch")
	assert.Nil(t, u.Construct(list, nil))
	assert.Nil(t, u.Construct(nil, intType))
}

func TestModel_ResolveCatchTypes(t *testing.T) {
	tree := parse(t, "Catches.cs", []byte(`
using System;
using System.IO;
using Alias = System.InvalidOperationException;

namespace App
{
    class MyError : Exception { }

    class Worker
    {
        void Run()
        {
            try { }
            catch (IOException) { }
            catch (System.FormatException) { }
            catch (global::System.TimeoutException) { }
            catch (Alias) { }
            catch (MyError) { }
            catch (App.MyError) { }
            catch (NoSuchException) { }
            catch (Exception) { }
        }
    }
}
`))
	u := load(t, tree)
	m := u.Model(tree)

	var got []string
	for _, decl := range syntax.Find(tree.Root, syntax.KindCatchDeclaration) {
		typ, _ := CatchDeclaration(decl)
		got = append(got, m.ResolveType(typ).FullName())
	}
	assert.Equal(t, []string{
		"System.IO.IOException",
		"System.FormatException",
		"System.TimeoutException",
		"System.InvalidOperationException",
		"App.MyError",
		"App.MyError",
		"",
		"System.Exception",
	}, got)
	assert.Same(t, u, m.Universe())
	assert.Same(t, tree, m.Tree())
}

func TestModel_Ambiguous(t *testing.T) {
	tree := parse(t, "Ambiguous.cs", []byte(`
using A;
using B;

namespace A { class Conflict : System.Exception { } }
namespace B { class Conflict : System.Exception { } }

namespace C
{
    class Worker
    {
        void Run()
        {
            try { }
            catch (Conflict) { }
        }
    }
}
`))
	u := load(t, tree)
	decl := syntax.Find(tree.Root, syntax.KindCatchDeclaration)[0]
	typ, _ := CatchDeclaration(decl)
	assert.Nil(t, u.Model(tree).ResolveType(typ))
}

func TestModel_TypeOf(t *testing.T) {
	u, tree := shop(t)
	m := u.Model(tree)

	var got []string
	for _, throw := range syntax.Find(tree.Root, syntax.KindThrowStatement) {
		var value *syntax.Node
		for _, c := range throw.NamedChildren() {
			if !syntax.IsTrivia(c) {
				value = c
				break
			}
		}
		got = append(got, m.TypeOf(value).FullName())
	}
	assert.Equal(t, []string{
		"System.IO.IOException",
		"Shop.Errors.PaymentException",
		"System.ArgumentNullException",
		"System.ArgumentException",
		"System.ArgumentNullException",
		"Shop.Errors.OrderException",
		"System.Exception",
		"System.IO.IOException",
		"Shop.Errors.PaymentException",
		"Shop.Errors.OrderException",
		"",
		"System.ArgumentException",
	}, got)

	assert.Nil(t, m.TypeOf(nil))
}

func TestModel_GlobalNamespaceBeforeUsings(t *testing.T) {
	tree := parse(t, "Global.cs", []byte(`
using System;

class ArgumentException : Exception { }

namespace App
{
    class Worker
    {
        void Run()
        {
            try { }
            catch (ArgumentException) { }
        }
    }
}
`))
	u := load(t, tree)
	decl := syntax.Find(tree.Root, syntax.KindCatchDeclaration)[0]
	typ, _ := CatchDeclaration(decl)

	got := u.Model(tree).ResolveType(typ)
	require.NotNil(t, got)
	assert.Equal(t, "ArgumentException", got.FullName())
	assert.False(t, u.isBuiltin(got))
}
