package mathexpr_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrtronium/mathexpr"
)

func num(n int64) mathexpr.Value {
	return mathexpr.Int(n, mathexpr.DefaultPrec)
}

func TestScopeGetSet(t *testing.T) {
	root := mathexpr.NewScope(nil)
	root.Set("a", num(1))
	child := root.Child()

	v, err := child.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "1", v.String())

	child.Set("a", num(2))
	v, err = child.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "2", v.String(), "child definition shadows the parent")
	v, err = root.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "1", v.String(), "parent is unaffected by the child")

	v, err = child.Get("pi")
	require.NoError(t, err)
	assert.Equal(t, "3.1415926535898", v.String())

	_, err = child.Get("nothing")
	var uerr *mathexpr.UndefinedSymbolError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "nothing", uerr.Name)
}

func TestScopeRecords(t *testing.T) {
	s := mathexpr.NewScope(nil).Child()
	s.CreateDef("b")
	s.CreateDef("a")
	s.CreateLink("c")
	s.CreateUpdate("m")

	if diff := cmp.Diff([]string{"a", "b", "m"}, s.Defs()); diff != "" {
		t.Errorf("wrong defs (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"c"}, s.Links()); diff != "" {
		t.Errorf("wrong links (-want +got):\n%s", diff)
	}
	assert.True(t, s.HasDef("a"))
	assert.False(t, s.HasDef("m"))
	assert.True(t, s.HasLink("c"))
	assert.True(t, s.HasUpdate("m"))

	s.RemoveDef("a")
	s.RemoveLink("c")
	s.RemoveUpdate("m")
	assert.Equal(t, []string{"b"}, s.Defs())
	assert.Empty(t, s.Links())
	assert.False(t, s.HasUpdate("m"))
}

func TestScopeNested(t *testing.T) {
	s := mathexpr.NewScope(nil).Child()
	n := s.Nested()
	n.CreateDef("x")
	n.CreateLink("x")
	n.CreateLink("y")

	assert.True(t, s.HasLink("y"), "nested reads count as the parent's")
	assert.False(t, s.HasLink("x"), "nested reads of nested definitions do not")
	assert.Equal(t, []string{"y"}, s.Links())
	assert.Empty(t, s.Defs())

	c := s.Child()
	c.CreateLink("z")
	assert.False(t, s.HasLink("z"), "children are not tracked")
}

func TestScopeSymbolsShareCells(t *testing.T) {
	s := mathexpr.NewScope(nil)
	a := s.CreateLink("x")
	b := s.CreateDef("x")
	assert.Same(t, a, b)
	assert.Equal(t, "x", a.Name())
	assert.Same(t, b, s.FindDef("x"))
}

func TestScopeInit(t *testing.T) {
	root := mathexpr.NewScope(nil)
	root.Set("a", num(1))
	s := root.Child()
	link := s.CreateLink("a")

	v, err := link.Get()
	require.NoError(t, err)
	assert.Equal(t, "1", v.String())

	// A definition appearing in the parent is picked up after Init.
	mid := root.Child()
	mid.Set("a", num(5))
	s.SetParent(mid)
	v, err = link.Get()
	require.NoError(t, err)
	assert.Equal(t, "5", v.String())

	link.Set(num(9))
	s.Init()
	v, err = link.Get()
	require.NoError(t, err)
	assert.Equal(t, "5", v.String(), "Init forgets values of non-root scopes")

	root.Init()
	v, err = root.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "1", v.String(), "Init keeps values of root scopes")
}

func TestScopeLateLink(t *testing.T) {
	root := mathexpr.NewScope(nil)
	s := root.Child()
	link := s.CreateLink("later")
	_, err := link.Get()
	require.Error(t, err)

	root.Set("later", num(3))
	v, err := link.Get()
	require.NoError(t, err)
	assert.Equal(t, "3", v.String())
}

func TestScopeClear(t *testing.T) {
	s := mathexpr.NewScope(nil).Child()
	s.Set("a", num(1))
	s.CreateLink("b")
	s.Nested().CreateLink("c")
	s.Clear()
	assert.Empty(t, s.Defs())
	assert.Empty(t, s.Links())
	assert.False(t, s.HasLink("c"))
	_, err := s.Get("a")
	assert.Error(t, err)
}

func TestScopeNames(t *testing.T) {
	ns := mathexpr.DefaultNamespace(mathexpr.WithoutUnits())
	root := mathexpr.NewScope(ns)
	root.Set("alpha", num(1))
	s := root.Child()
	s.Set("beta", num(2))
	names := s.Names()
	assert.Contains(t, names, "alpha")
	assert.Contains(t, names, "beta")
	assert.Contains(t, names, "sqrt")
	assert.NotContains(t, root.Names(), "beta")
	assert.Same(t, ns, s.Namespace())
}

func TestScopeSuggestions(t *testing.T) {
	root := mathexpr.NewScope(nil)
	root.Set("alpha", num(1))
	_, err := root.Get("alph")
	var uerr *mathexpr.UndefinedSymbolError
	require.ErrorAs(t, err, &uerr)
	assert.Contains(t, uerr.Suggestions, "alpha")
	assert.LessOrEqual(t, len(uerr.Suggestions), 3)
	assert.Contains(t, err.Error(), "did you mean")
}
