package mathexpr

import (
	"errors"
	"regexp"
	"strings"
	"testing"
)

func TestParseTrees(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"add-mul", "1+2*3", "1 + 2 * 3"},
		{"paren", "(1+2)*3", "(1 + 2) * 3"},
		{"redundant", "((x))", "x"},
		{"sub-left", "a-b-c", "a - b - c"},
		{"sub-right", "a-(b-c)", "a - (b - c)"},
		{"div-mul", "a/b*c", "a / b * c"},
		{"div-paren", "a/(b*c)", "a / (b * c)"},
		{"alt", "a×b÷c", "a * b / c"},
		{"pow-right", "2^3^4", "2^3^4"},
		{"pow-left", "(2^3)^4", "(2^3)^4"},
		{"neg-pow", "-3^2", "-3^2"},
		{"pow-neg-base", "(-3)^2", "(-3)^2"},
		{"pow-neg-exp", "x^-y", "x^(-y)"},
		{"pow-neg-chain", "x^-y^z", "x^(-y^z)"},
		{"pow-fact", "2^3!", "2^3!"},
		{"fact-neg", "(-x)!", "(-x)!"},
		{"fact-fact", "3!!", "3!!"},
		{"neg-neg", "--x", "--x"},
		{"mul-neg", "2*-3", "2 * -3"},
		{"mod", "7%3", "7 % 3"},
		{"range", "1:10", "1:10"},
		{"range-step", "1 : 2 : 10", "1:2:10"},
		{"range-expr", "a+1:b", "a + 1:b"},
		{"range-paren", "(1:3)(2)", "(1:3)(2)"},
		{"vector", "[1,2,3]", "[1, 2, 3]"},
		{"matrix", "[1, 2; 3, 4]", "[1, 2; 3, 4]"},
		{"matrix-newlines", "[1, 2\n; 3, 4]", "[1, 2; 3, 4]"},
		{"empty-matrix", "[]", "[]"},
		{"call", "f(x, y + 1)", "f(x, y + 1)"},
		{"call-empty", "f()", "f()"},
		{"call-chain", "f(1)(2)", "f(1)(2)"},
		{"index", "[1, 2](2)", "[1, 2](2)"},
		{"compare", "a < b == c", "a < b == c"},
		{"logic", "a & b | c", "a & b | c"},
		{"in", "5 cm in inch", "5 cm in inch"},
		{"unit", "5 cm", "5 cm"},
		{"unit-expr", "2.5m * 2", "2.5 m * 2"},
		{"imag", "1 + 2i", "1 + 2i"},
		{"string", `"a\"b" + "c"`, `"a\"b" + "c"`},
		{"assign", "a = 1 + 2", "a = 1 + 2"},
		{"assign-chain", "a = b = 3", "a = b = 3"},
		{"assign-index", "a(2) = 5", "a(2) = 5"},
		{"assign-index2", "a(1, 2:3) = 0", "a(1, 2:3) = 0"},
		{"func-sugar", "f(x) = x^2", "function f(x) = x^2"},
		{"func-keyword", "function g(a, b) = a + b", "function g(a, b) = a + b"},
		{"func-none", "function k() = 4", "function k() = 4"},
		{"func-range", "f(n) = 1:n", "function f(n) = 1:n"},
		{"block-hidden", "b = 43; b * 4", "b = 43; b * 4"},
		{"block-lines", "a=3\nb=4\na*b", "a = 3\nb = 4\na * b"},
		{"block-empty-statements", ";;a = 1;;\n\n2", "a = 1; 2"},
		{"comment", "1 + 2 # three", "1 + 2"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			n, err := Parse(c.src, nil)
			if err != nil {
				t.Fatalf("failed to parse %q: %v", c.src, err)
			}
			if got := n.String(); got != c.want {
				t.Errorf("%q renders wrong:\n\twant %q\n\tgot  %q", c.src, c.want, got)
			}
			// The rendering must parse to the same tree.
			m, err := Parse(n.String(), nil)
			if err != nil {
				t.Fatalf("%q -> %q failed to parse: %v", c.src, n.String(), err)
			}
			if m.String() != n.String() {
				t.Errorf("%q -> %q re-renders as %q", c.src, n.String(), m.String())
			}
		})
	}
}

func TestParseStructure(t *testing.T) {
	n := MustParse("f(x) = x + a", nil)
	fa, ok := n.(*FunctionAssignment)
	if !ok {
		t.Fatalf("f(x) = x + a parsed as %T", n)
	}
	if fa.Name() != "f" || len(fa.Params()) != 1 || fa.Params()[0] != "x" {
		t.Errorf("wrong function header %s(%v)", fa.Name(), fa.Params())
	}
	bin, ok := fa.Body().(*BinaryOp)
	if !ok || bin.Op() != "+" || bin.Fn() != "add" {
		t.Fatalf("body is %#v", fa.Body())
	}

	n = MustParse("2 + 3", nil)
	a, ok := n.(*Assignment)
	if !ok || !a.Implicit() || a.Name() != "ans" {
		t.Fatalf("bare expression parsed as %#v", n)
	}
	if a.Format(FormatOptions{Ans: true}) != "ans = 2 + 3" {
		t.Errorf("implicit ans renders as %q", a.Format(FormatOptions{Ans: true}))
	}

	n = MustParse("a = 1; a\nb", nil)
	blk, ok := n.(*Block)
	if !ok {
		t.Fatalf("block parsed as %T", n)
	}
	var vis []bool
	for _, it := range blk.Items() {
		vis = append(vis, it.Visible)
	}
	if len(vis) != 3 || vis[0] || !vis[1] || !vis[2] {
		t.Errorf("wrong visibility %v", vis)
	}
}

func TestFormatOptions(t *testing.T) {
	cases := []struct {
		name string
		src  string
		opts FormatOptions
		want string
	}{
		{"alt", "a * b / c", FormatOptions{Alt: true}, "a × b ÷ c"},
		{"digits", "x = 3.14159", FormatOptions{Digits: 3}, "x = 3.14"},
		{"digits-int", "12345 + 1", FormatOptions{Digits: 2}, "12345 + 1"},
		{"ans", "1 + 1", FormatOptions{Ans: true}, "ans = 1 + 1"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			n := MustParse(c.src, nil)
			if got := n.Format(c.opts); got != c.want {
				t.Errorf("%q with %+v: want %q, got %q", c.src, c.opts, c.want, got)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name     string
		src      string
		row, col int
		res      []string
	}{
		{"empty-operand", "1 +", 1, 4, []string{`(?i)\bunexpected end\b`}},
		{"unclosed", "(1", 1, 3, []string{`"\)" expected`}},
		{"unclosed-call", "f(1, 2", 1, 7, []string{`"\)" expected`}},
		{"unclosed-matrix", "[1, 2", 1, 6, []string{`"]" expected`}},
		{"extra-close", "1)", 1, 2, []string{`(?i)unexpected operator "\)"`}},
		{"juxtaposed", "1 2", 1, 3, []string{`(?i)unexpected number "2"`}},
		{"leading-op", "*2", 1, 1, []string{`(?i)unexpected operator "\*"`}},
		{"second-line", "x\n+", 2, 1, []string{`(?i)unexpected operator "\+"`}},
		{"ragged", "[1, 2; 3]", 1, 9, []string{`column dimensions mismatch \(2 != 1\)`}},
		{"range-parts", "1:2:3:4", 1, 6, []string{`(?i)three parts`}},
		{"duplicate-param", "f(x, x) = x", 1, 6, []string{`(?i)duplicate parameter x`}},
		{"assign-constant", "3 = 4", 1, 3, []string{`(?i)invalid assignment target 3`}},
		{"keyword-no-eq", "function f(x) x", 1, 15, []string{`"=" expected`}},
		{"lex", "1 $", 1, 3, []string{`\$`}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			n, err := Parse(c.src, nil)
			if n != nil {
				t.Errorf("%q parsed to %v", c.src, n)
			}
			var ierr InputError
			if !errors.As(err, &ierr) {
				t.Fatalf("%q gave %#v, not an InputError", c.src, err)
			}
			if _, ok := err.(*SyntaxError); !ok {
				t.Errorf("%q gave %T, not *SyntaxError", c.src, err)
			}
			if row, col := ierr.Pos(); row != c.row || col != c.col {
				t.Errorf("%q: wrong position: want %d:%d, got %d:%d (%v)", c.src, c.row, c.col, row, col, err)
			}
			msg := err.Error()
			for _, re := range c.res {
				if !regexp.MustCompile(re).MatchString(msg) {
					t.Errorf("error message %q does not match %s", msg, re)
				}
			}
		})
	}
}

func TestParseAllOrNothing(t *testing.T) {
	s := NewScope(nil)
	MustParse("keep = 1", s)
	_, err := Parse("a = 1; f(x) = x; b = a +", s)
	if err == nil {
		t.Fatal("incomplete expression parsed")
	}
	for _, name := range []string{"a", "f", "b"} {
		if s.HasDef(name) {
			t.Errorf("failed parse left a definition of %s", name)
		}
	}
	if !s.HasDef("keep") {
		t.Error("failed parse removed an earlier definition")
	}
	if got := len(s.nested); got != 0 {
		t.Errorf("failed parse left %d nested scopes", got)
	}
}

func TestParseDepth(t *testing.T) {
	deep := strings.Repeat("(", 300) + "1" + strings.Repeat(")", 300)
	if _, err := Parse(deep, nil); err == nil {
		t.Error("300 nested parentheses parsed with the default limit")
	} else if !strings.Contains(err.Error(), "nested") {
		t.Errorf("wrong error for deep nesting: %v", err)
	}
	if _, err := Parse(deep, nil, MaxDepth(1000)); err != nil {
		t.Errorf("300 nested parentheses failed with a raised limit: %v", err)
	}
	neg := strings.Repeat("-", 300) + "1"
	if _, err := Parse(neg, nil, MaxDepth(100)); err == nil {
		t.Error("300 unary minuses parsed with a limit of 100")
	}

	chains := []struct {
		name string
		src  string
	}{
		{"pow", "1" + strings.Repeat("^1", 500)},
		{"neg-pow", "2" + strings.Repeat("^-1", 300)},
		{"add", "1" + strings.Repeat("+1", 500)},
		{"mul", "1" + strings.Repeat("*1", 500)},
		{"cmp", "1" + strings.Repeat("<1", 500)},
		{"and", "1" + strings.Repeat("&1", 500)},
		{"fact", "1" + strings.Repeat("!", 500)},
		{"call", "f" + strings.Repeat("(1)", 500)},
	}
	for _, c := range chains {
		t.Run(c.name, func(t *testing.T) {
			_, err := Parse(c.src, nil, MaxDepth(8))
			if err == nil {
				t.Fatalf("long chain parsed with a limit of 8")
			}
			if !strings.Contains(err.Error(), "nested") {
				t.Errorf("wrong error for a long chain: %v", err)
			}
			if _, err := Parse(c.src, nil, MaxDepth(1000)); err != nil {
				t.Errorf("long chain failed with a raised limit: %v", err)
			}
		})
	}
	if _, err := Parse("1 + 2 * 3 - 4^2! < 5", nil, MaxDepth(8)); err != nil {
		t.Errorf("short expression failed under a limit of 8: %v", err)
	}
}

func TestParseLinks(t *testing.T) {
	cases := []struct {
		name    string
		src     string
		defs    []string
		links   []string
		updates []string
	}{
		{"read", "x + y", []string{"ans"}, []string{"x", "y"}, nil},
		{"assign", "y = x + 1", []string{"y"}, []string{"x"}, nil},
		{"self", "a = a + 1", []string{"a"}, []string{"a"}, nil},
		{"target-not-read", "a = 1", []string{"a"}, nil, nil},
		{"index", "m(2) = k", []string{"m"}, []string{"k"}, []string{"m"}},
		{"function", "f(t) = t + z", []string{"f"}, []string{"z"}, nil},
		{"function-reads-self", "f(n) = f(n - 1)", []string{"f"}, []string{"f"}, nil},
		{"block", "a = 1; b = a", []string{"a", "b"}, []string{"a"}, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := NewScope(nil)
			MustParse(c.src, s)
			if got := s.Defs(); !equalNames(got, c.defs) {
				t.Errorf("%q defines %q, want %q", c.src, got, c.defs)
			}
			if got := s.Links(); !equalNames(got, c.links) {
				t.Errorf("%q links %q, want %q", c.src, got, c.links)
			}
			for _, name := range c.updates {
				if !s.HasUpdate(name) {
					t.Errorf("%q does not update %s", c.src, name)
				}
			}
		})
	}
}

func equalNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func BenchmarkParse(b *testing.B) {
	cases := []struct {
		name string
		src  string
	}{
		{"descasc", "w^x*y+z+a*b^c"},
		{"descasc-parens", "(((w^x)*y)+z)+a*(b^c)"},
		{"ascdesc", "w+x*y^z^a*b+c"},
		{"nums", "1^1.1*1.1e1+1.1e-1+.1*2"},
		{"matrix", "[1, 2, 3; 4, 5, 6; 7, 8, 9]"},
		{"func", "f(x, y) = x^2 + y^2"},
	}
	for _, c := range cases {
		b.Run(c.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				Parse(c.src, nil)
			}
		})
	}
}
