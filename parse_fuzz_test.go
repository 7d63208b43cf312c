package mathexpr_test

import (
	"testing"

	"github.com/zephyrtronium/mathexpr"
)

func FuzzParse(f *testing.F) {
	f.Add("x")
	f.Add("y = 2x")
	f.Add("1×2")
	f.Add("f(x) = x^2; f(3)")
	f.Add("[1, 2; 3, 4](2, 1:2)")
	f.Add(`"a\"b" + 5 cm in inch`)
	f.Add("max((a = 3), 1)")
	f.Add("[(b = 2), 1]")
	f.Add("g((f(x) = x))")
	f.Add("a = (f(x) = x)")
	f.Fuzz(func(t *testing.T, s string) {
		n, err := mathexpr.Parse(s, nil)
		if err != nil {
			return
		}
		if _, err := mathexpr.Parse(n.String(), nil); err != nil {
			t.Errorf("%q renders as %q, which does not parse: %v", s, n.String(), err)
		}
	})
}
