package mathexpr_test

import (
	"testing"

	"github.com/zephyrtronium/mathexpr"
)

func FuzzEval(f *testing.F) {
	f.Add("x")
	f.Add("y")
	f.Add("1×2")
	f.Add("x(2) = 3; x")
	f.Add("sqrt(-x) + 1/0")
	f.Fuzz(func(t *testing.T, s string) {
		if len(s) > 64 {
			return
		}
		sc := mathexpr.NewScope(nil)
		sc.Set("x", mathexpr.Int(2, mathexpr.DefaultPrec))
		n, err := mathexpr.Parse(s, sc)
		if err != nil {
			return
		}
		n.Eval()
	})
}
