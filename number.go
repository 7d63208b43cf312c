package mathexpr

import (
	"math/big"
	"strings"
)

// DefaultPrec is the precision in bits of numbers created without an
// explicit precision.
const DefaultPrec = 128

// Number is an arbitrary-precision real number.
type Number struct {
	x *big.Float
}

// NewNumber returns a Number holding a copy of x.
func NewNumber(x *big.Float) Number {
	return Number{new(big.Float).Copy(x)}
}

// Int returns a Number with the value of n at the given precision.
func Int(n int64, prec uint) Number {
	return Number{new(big.Float).SetPrec(prec).SetInt64(n)}
}

// Float returns a Number with the value of f at the given precision.
func Float(f float64, prec uint) Number {
	return Number{new(big.Float).SetPrec(prec).SetFloat64(f)}
}

// ParseNumber parses a decimal literal such as "1.5e3" at the given
// precision.
func ParseNumber(s string, prec uint) (Number, error) {
	if prec == 0 {
		prec = DefaultPrec
	}
	x, _, err := big.ParseFloat(s, 10, prec, big.ToNearestEven)
	if err != nil {
		return Number{}, err
	}
	return Number{x}, nil
}

// Float returns a copy of the number's value.
func (n Number) Float() *big.Float {
	if n.x == nil {
		return new(big.Float)
	}
	return new(big.Float).Copy(n.x)
}

func (Number) Kind() Kind { return KindNumber }

func (n Number) String() string { return n.Format(FormatOptions{}) }

func (n Number) Format(o FormatOptions) string {
	if n.x == nil {
		return "0"
	}
	return formatFloat(n.x, o.digits())
}

// formatFloat renders integers of moderate size exactly and everything else
// with the given number of significant digits.
func formatFloat(x *big.Float, digits int) string {
	switch {
	case x.IsInf():
		if x.Sign() < 0 {
			return "-Infinity"
		}
		return "Infinity"
	case x.Sign() == 0:
		return "0"
	case x.IsInt() && x.MantExp(nil) <= DefaultPrec:
		return x.Text('f', 0)
	}
	s := x.Text('g', digits)
	// big.Float writes e+06 style exponents; trim the padding.
	if k := strings.IndexByte(s, 'e'); k >= 0 {
		mant, exp := s[:k], s[k+1:]
		sign := exp[:1]
		exp = strings.TrimLeft(exp[1:], "0")
		if sign == "+" {
			sign = ""
		}
		s = mant + "e" + sign + exp
	}
	return s
}

// Complex is a complex number with arbitrary-precision parts.
type Complex struct {
	re, im *big.Float
}

// NewComplex returns a Complex with copies of re and im.
func NewComplex(re, im *big.Float) Complex {
	return Complex{new(big.Float).Copy(re), new(big.Float).Copy(im)}
}

// Real returns a copy of the real part.
func (c Complex) Real() *big.Float { return new(big.Float).Copy(c.re) }

// Imag returns a copy of the imaginary part.
func (c Complex) Imag() *big.Float { return new(big.Float).Copy(c.im) }

func (Complex) Kind() Kind { return KindComplex }

func (c Complex) String() string { return c.Format(FormatOptions{}) }

func (c Complex) Format(o FormatOptions) string {
	d := o.digits()
	if c.re.Sign() == 0 {
		return imagText(c.im, d)
	}
	var b strings.Builder
	b.WriteString(formatFloat(c.re, d))
	im := c.im
	if im.Sign() < 0 {
		b.WriteString(" - ")
		im = new(big.Float).Neg(im)
	} else {
		b.WriteString(" + ")
	}
	b.WriteString(imagText(im, d))
	return b.String()
}

func imagText(x *big.Float, digits int) string {
	switch s := formatFloat(x, digits); s {
	case "1":
		return "i"
	case "-1":
		return "-i"
	default:
		return s + "i"
	}
}

// precOf returns the largest precision among xs, or DefaultPrec if none
// has one.
func precOf(xs ...*big.Float) uint {
	var p uint
	for _, x := range xs {
		if x != nil && x.Prec() > p {
			p = x.Prec()
		}
	}
	if p == 0 {
		p = DefaultPrec
	}
	return p
}

func newFloat(prec uint) *big.Float {
	return new(big.Float).SetPrec(prec)
}

// isInt reports whether x is a finite integer.
func isInt(x *big.Float) bool {
	return !x.IsInf() && x.IsInt()
}

// floor sets z to the greatest integer not greater than x.
func floor(z, x *big.Float) *big.Float {
	if x.IsInf() || x.IsInt() {
		return z.Set(x)
	}
	i, _ := x.Int(nil)
	z.SetInt(i)
	if x.Sign() < 0 {
		z.Sub(z, big.NewFloat(1))
	}
	return z
}

// ceil sets z to the least integer not less than x.
func ceil(z, x *big.Float) *big.Float {
	if x.IsInf() || x.IsInt() {
		return z.Set(x)
	}
	i, _ := x.Int(nil)
	z.SetInt(i)
	if x.Sign() > 0 {
		z.Add(z, big.NewFloat(1))
	}
	return z
}

// trunc sets z to the integer part of x.
func trunc(z, x *big.Float) *big.Float {
	if x.IsInf() || x.IsInt() {
		return z.Set(x)
	}
	i, _ := x.Int(nil)
	return z.SetInt(i)
}

// toInt converts v to an int if it is an integral number.
func toInt(v Value) (int, bool) {
	var x *big.Float
	switch v := v.(type) {
	case Number:
		x = v.x
	case Bool:
		if v {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
	if !isInt(x) {
		return 0, false
	}
	n, acc := x.Int64()
	if acc != big.Exact || n != int64(int(n)) {
		return 0, false
	}
	return int(n), true
}

// realOf returns the real value of a number or boolean.
func realOf(v Value) (*big.Float, bool) {
	switch v := v.(type) {
	case Number:
		return v.x, true
	case Bool:
		if v {
			return big.NewFloat(1), true
		}
		return big.NewFloat(0), true
	}
	return nil, false
}

// complexOf promotes a number, boolean, or complex value to its parts.
func complexOf(v Value) (re, im *big.Float, ok bool) {
	if c, ok := v.(Complex); ok {
		return c.re, c.im, true
	}
	x, ok := realOf(v)
	if !ok {
		return nil, nil, false
	}
	return x, new(big.Float).SetPrec(x.Prec()), true
}

// mkComplex builds a complex result, collapsing to a Number when the
// imaginary part is exactly zero.
func mkComplex(re, im *big.Float) Value {
	if im.Sign() == 0 {
		return Number{re}
	}
	return Complex{re, im}
}
