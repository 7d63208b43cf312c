package mathexpr_test

import (
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrtronium/mathexpr"
)

func ExampleNewFunc() {
	nargin := mathexpr.NewFunc("nargin", 0, -1, func(args []mathexpr.Value) (mathexpr.Value, error) {
		return mathexpr.Int(int64(len(args)), mathexpr.DefaultPrec), nil
	})
	s := mathexpr.NewScope(mathexpr.DefaultNamespace(mathexpr.WithFunc("nargin", nargin)))
	for _, src := range []string{"nargin()", "nargin(100)", "nargin(3, 2, 1)"} {
		n := mathexpr.MustParse(src, s)
		r, _ := n.Eval()
		fmt.Println(r, n)
	}

	// Output:
	// 0 nargin()
	// 1 nargin(100)
	// 3 nargin(3, 2, 1)
}

func TestBuiltinCanCall(t *testing.T) {
	f := mathexpr.NewFunc("f", 1, 2, nil)
	assert.False(t, f.CanCall(0))
	assert.True(t, f.CanCall(1))
	assert.True(t, f.CanCall(2))
	assert.False(t, f.CanCall(3))
	g := mathexpr.NewFunc("g", 0, -1, nil)
	assert.True(t, g.CanCall(0))
	assert.True(t, g.CanCall(100))
}

func TestMonadic(t *testing.T) {
	cube := mathexpr.Monadic("cube", func(z, x *big.Float) *big.Float {
		z.Mul(x, x)
		return z.Mul(z, x)
	})
	s := mathexpr.NewScope(mathexpr.DefaultNamespace(mathexpr.WithFunc("cube", cube)))

	r, err := mathexpr.MustParse("cube(3)", s).Eval()
	require.NoError(t, err)
	assert.Equal(t, "27", r.String())

	r, err = mathexpr.MustParse("cube([1, 2; 3, 4])", s).Eval()
	require.NoError(t, err)
	assert.Equal(t, "[1, 8; 27, 64]", r.String())

	r, err = mathexpr.MustParse("cube(1:3)", s).Eval()
	require.NoError(t, err)
	assert.Equal(t, "[1, 8, 27]", r.String())

	_, err = mathexpr.MustParse(`cube("x")`, s).Eval()
	var terr *mathexpr.TypeError
	assert.ErrorAs(t, err, &terr)

	_, err = mathexpr.MustParse("cube(1, 2)", s).Eval()
	var aerr *mathexpr.ArgumentCountError
	assert.ErrorAs(t, err, &aerr)
}

func TestFuncNaN(t *testing.T) {
	inf := new(big.Float).SetInf(false)
	bad := mathexpr.Monadic("bad", func(z, x *big.Float) *big.Float {
		return z.Sub(inf, inf)
	})
	worse := mathexpr.NewFunc("worse", 0, 0, func([]mathexpr.Value) (mathexpr.Value, error) {
		new(big.Float).Sub(inf, inf)
		return nil, nil
	})
	s := mathexpr.NewScope(mathexpr.DefaultNamespace(mathexpr.WithFunc("bad", bad), mathexpr.WithFunc("worse", worse)))

	_, err := mathexpr.MustParse("bad(1)", s).Eval()
	var derr *mathexpr.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "bad", derr.Func)
	assert.Equal(t, 1, derr.Arg)
	assert.True(t, errors.As(err, new(big.ErrNaN)))

	_, err = mathexpr.MustParse("worse()", s).Eval()
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "worse", derr.Func)
}

func TestFuncPanics(t *testing.T) {
	boom := mathexpr.NewFunc("boom", 0, 0, func([]mathexpr.Value) (mathexpr.Value, error) {
		panic("boom")
	})
	s := mathexpr.NewScope(mathexpr.DefaultNamespace(mathexpr.WithFunc("boom", boom)))
	n := mathexpr.MustParse("boom()", s)
	assert.Panics(t, func() { n.Eval() })
}

func TestNamespaceOptions(t *testing.T) {
	ns := mathexpr.DefaultNamespace(
		mathexpr.WithConstant("tau", mathexpr.Int(6, mathexpr.DefaultPrec)),
		mathexpr.Without("sqrt", "add"),
		mathexpr.WithoutUnits(),
	)
	s := mathexpr.NewScope(ns)

	r, err := mathexpr.MustParse("tau", s).Eval()
	require.NoError(t, err)
	assert.Equal(t, "6", r.String())

	var uerr *mathexpr.UndefinedSymbolError
	_, err = mathexpr.MustParse("sqrt(4)", s).Eval()
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "sqrt", uerr.Name)

	_, err = mathexpr.MustParse("1 + 2", s).Eval()
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "add", uerr.Name)

	_, err = mathexpr.MustParse("cm", s).Eval()
	require.ErrorAs(t, err, &uerr)

	assert.NotContains(t, ns.Names(), "sqrt")
	assert.Contains(t, ns.Names(), "tau")
	assert.Contains(t, ns.Names(), "pi")
}
