package mathexpr

import (
	"math"
	"math/big"
	"slices"
	"strconv"
	"strings"

	"github.com/zephyrtronium/bigfloat"
)

type binary func(a, b Value) (Value, error)

// elementwise lifts f over matrices and ranges. Two matrices must have the
// same size; a scalar operand is broadcast against every element.
func elementwise(name string, f binary) binary {
	var g binary
	g = func(a, b Value) (Value, error) {
		am, aok := asMatrix(a)
		bm, bok := asMatrix(b)
		switch {
		case aok && bok:
			if !slices.Equal(am.size, bm.size) {
				return nil, &DimensionError{Msg: name + " of sizes " + sizeText(am.size) + " and " + sizeText(bm.size)}
			}
			r := &Matrix{size: am.Size(), data: make([]Value, len(am.data))}
			for i := range am.data {
				v, err := g(am.data[i], bm.data[i])
				if err != nil {
					return nil, err
				}
				r.data[i] = v
			}
			return r, nil
		case aok:
			return mapValues(am, func(e Value) (Value, error) { return g(e, b) })
		case bok:
			return mapValues(bm, func(e Value) (Value, error) { return g(a, e) })
		}
		return f(a, b)
	}
	return g
}

// numeric applies re to real operands or cx to complex operands. Booleans
// count as 0 and 1. A nil cx rejects complex operands.
func numeric(name string, a, b Value, re func(z, x, y *big.Float) error, cx func(ar, ai, br, bi *big.Float) (Value, error)) (Value, error) {
	if x, ok := realOf(a); ok {
		if y, ok := realOf(b); ok {
			z := newFloat(precOf(x, y))
			if err := re(z, x, y); err != nil {
				return nil, err
			}
			return Number{z}, nil
		}
	}
	if cx != nil {
		if ar, ai, ok := complexOf(a); ok {
			if br, bi, ok := complexOf(b); ok {
				return cx(ar, ai, br, bi)
			}
		}
	}
	return nil, &TypeError{Func: name, Kinds: []Kind{a.Kind(), b.Kind()}}
}

var (
	addOp      = elementwise("add", addScalar)
	subtractOp = elementwise("subtract", subScalar)
	mulElem    = elementwise("multiply", mulScalar)
	divideElem = elementwise("divide", divScalar)
	modOp      = elementwise("mod", modScalar)
	inOp       = elementwise("in", convert)
	andOp      = elementwise("and", logic("and", func(x, y bool) bool { return x && y }))
	orOp       = elementwise("or", logic("or", func(x, y bool) bool { return x || y }))
)

func addScalar(a, b Value) (Value, error) {
	if ua, ok := a.(Unit); ok {
		if ub, ok := b.(Unit); ok {
			return sumUnits("add", ua, ub, (*big.Float).Add)
		}
	}
	if sa, ok := a.(String); ok {
		if sb, ok := b.(String); ok {
			return sa + sb, nil
		}
	}
	return numeric("add", a, b,
		func(z, x, y *big.Float) error { z.Add(x, y); return nil },
		func(ar, ai, br, bi *big.Float) (Value, error) {
			p := precOf(ar, ai, br, bi)
			return mkComplex(newFloat(p).Add(ar, br), newFloat(p).Add(ai, bi)), nil
		})
}

func subScalar(a, b Value) (Value, error) {
	if ua, ok := a.(Unit); ok {
		if ub, ok := b.(Unit); ok {
			return sumUnits("subtract", ua, ub, (*big.Float).Sub)
		}
	}
	return numeric("subtract", a, b,
		func(z, x, y *big.Float) error { z.Sub(x, y); return nil },
		func(ar, ai, br, bi *big.Float) (Value, error) {
			p := precOf(ar, ai, br, bi)
			return mkComplex(newFloat(p).Sub(ar, br), newFloat(p).Sub(ai, bi)), nil
		})
}

func sumUnits(name string, a, b Unit, op func(z, x, y *big.Float) *big.Float) (Value, error) {
	if a.x == nil || b.x == nil || a.def.dim != b.def.dim {
		return nil, &TypeError{Func: name, Kinds: []Kind{KindUnit, KindUnit}, Msg: "incompatible units " + a.def.name + " and " + b.def.name}
	}
	z := newFloat(precOf(a.x, b.x))
	op(z, a.x, b.x)
	return a.scaled(z), nil
}

func mulScalar(a, b Value) (Value, error) {
	if u, ok := a.(Unit); ok {
		if x, ok := realOf(b); ok {
			return scaleUnit(u, x), nil
		}
	}
	if u, ok := b.(Unit); ok {
		if x, ok := realOf(a); ok {
			return scaleUnit(u, x), nil
		}
	}
	return numeric("multiply", a, b,
		func(z, x, y *big.Float) error { z.Mul(x, y); return nil },
		func(ar, ai, br, bi *big.Float) (Value, error) {
			p := precOf(ar, ai, br, bi)
			re := newFloat(p).Mul(ar, br)
			re.Sub(re, newFloat(p).Mul(ai, bi))
			im := newFloat(p).Mul(ar, bi)
			im.Add(im, newFloat(p).Mul(ai, br))
			return mkComplex(re, im), nil
		})
}

func scaleUnit(u Unit, x *big.Float) Unit {
	if u.x == nil {
		return u.WithValue(x)
	}
	return u.scaled(newFloat(precOf(u.x, x)).Mul(u.x, x))
}

// multiply is the matrix product when both operands are matrices and the
// element-wise product otherwise.
func multiply(a, b Value) (Value, error) {
	am, aok := asMatrix(a)
	bm, bok := asMatrix(b)
	if aok && bok {
		return matmul(am, bm)
	}
	return mulElem(a, b)
}

// matmul multiplies matrices. Two vectors give their dot product. A vector
// on the left acts as a row and a vector on the right acts as a column.
func matmul(a, b *Matrix) (Value, error) {
	if len(a.size) == 1 && len(b.size) == 1 {
		if a.size[0] != b.size[0] {
			return nil, &DimensionError{Msg: "dot product of lengths " + strconv.Itoa(a.size[0]) + " and " + strconv.Itoa(b.size[0])}
		}
		return dot(a.data, 0, 1, b.data, 0, 1, a.size[0])
	}
	ar, ac := 1, a.size[0]
	if len(a.size) == 2 {
		ar, ac = a.size[0], a.size[1]
	}
	br, bc := b.size[0], 1
	if len(b.size) == 2 {
		bc = b.size[1]
	}
	if ac != br {
		return nil, &DimensionError{Msg: "cannot multiply " + sizeText(a.size) + " by " + sizeText(b.size)}
	}
	r := &Matrix{data: make([]Value, ar*bc)}
	switch {
	case len(a.size) == 1:
		r.size = []int{bc}
	case len(b.size) == 1:
		r.size = []int{ar}
	default:
		r.size = []int{ar, bc}
	}
	for i := range ar {
		for j := range bc {
			v, err := dot(a.data, i*ac, 1, b.data, j, bc, ac)
			if err != nil {
				return nil, err
			}
			r.data[i*bc+j] = v
		}
	}
	return r, nil
}

// dot sums n products of strided elements of x and y.
func dot(x []Value, xo, xs int, y []Value, yo, ys int, n int) (Value, error) {
	var acc Value = Int(0, DefaultPrec)
	for k := range n {
		p, err := mulScalar(x[xo+k*xs], y[yo+k*ys])
		if err != nil {
			return nil, err
		}
		if acc, err = addScalar(acc, p); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// divide divides element-wise by a scalar divisor.
func divide(a, b Value) (Value, error) {
	if _, ok := asMatrix(b); ok {
		return nil, &TypeError{Func: "divide", Kinds: []Kind{a.Kind(), b.Kind()}, Msg: "cannot divide by a matrix"}
	}
	return divideElem(a, b)
}

func divScalar(a, b Value) (Value, error) {
	if u, ok := a.(Unit); ok && u.x != nil {
		switch d := b.(type) {
		case Unit:
			if d.x == nil || d.def.dim != u.def.dim {
				break
			}
			return quo(u.x, d.x)
		default:
			if x, ok := realOf(d); ok {
				q, err := quo(u.x, x)
				if err != nil {
					return nil, err
				}
				return u.scaled(q.(Number).x), nil
			}
		}
		return nil, &TypeError{Func: "divide", Kinds: []Kind{a.Kind(), b.Kind()}}
	}
	return numeric("divide", a, b,
		func(z, x, y *big.Float) error {
			if x.Sign() == 0 && y.Sign() == 0 || x.IsInf() && y.IsInf() {
				return &DomainError{X: Number{y}, Arg: 2, Func: "divide"}
			}
			z.Quo(x, y)
			return nil
		},
		func(ar, ai, br, bi *big.Float) (Value, error) {
			p := precOf(ar, ai, br, bi)
			d := newFloat(p).Mul(br, br)
			d.Add(d, newFloat(p).Mul(bi, bi))
			if d.Sign() == 0 {
				return nil, &DomainError{X: b, Arg: 2, Func: "divide"}
			}
			re := newFloat(p).Mul(ar, br)
			re.Add(re, newFloat(p).Mul(ai, bi))
			im := newFloat(p).Mul(ai, br)
			im.Sub(im, newFloat(p).Mul(ar, bi))
			return mkComplex(re.Quo(re, d), im.Quo(im, d)), nil
		})
}

func quo(x, y *big.Float) (Value, error) {
	if x.Sign() == 0 && y.Sign() == 0 || x.IsInf() && y.IsInf() {
		return nil, &DomainError{X: Number{y}, Arg: 2, Func: "divide"}
	}
	return Number{newFloat(precOf(x, y)).Quo(x, y)}, nil
}

// modScalar computes x - y*floor(x/y), with mod(x, 0) = x.
func modScalar(a, b Value) (Value, error) {
	return numeric("mod", a, b, func(z, x, y *big.Float) error {
		if x.IsInf() || y.IsInf() {
			return &DomainError{X: Number{x}, Arg: 1, Func: "mod"}
		}
		if y.Sign() == 0 {
			z.Set(x)
			return nil
		}
		q := newFloat(z.Prec()).Quo(x, y)
		floor(q, q)
		q.Mul(q, y)
		z.Sub(x, q)
		return nil
	}, nil)
}

// maxIntPow is the largest exponent computed by repeated squaring.
const maxIntPow = 1 << 30

// pow raises a to the power b. Integer exponents are exact up to the
// precision of the operands.
func pow(a, b Value) (Value, error) {
	if _, ok := asMatrix(a); ok {
		return nil, &TypeError{Func: "pow", Kinds: []Kind{a.Kind(), b.Kind()}}
	}
	if _, ok := asMatrix(b); ok {
		return nil, &TypeError{Func: "pow", Kinds: []Kind{a.Kind(), b.Kind()}}
	}
	if y, ok := realOf(b); ok && isInt(y) && new(big.Float).Abs(y).Cmp(big.NewFloat(maxIntPow)) <= 0 {
		n, _ := y.Int64()
		if x, ok := realOf(a); ok {
			return Number{powInt(x, n)}, nil
		}
		if c, ok := a.(Complex); ok {
			return powComplex(c, n)
		}
	}
	return numeric("pow", a, b, func(z, x, y *big.Float) error {
		switch {
		case x.Sign() < 0:
			return &DomainError{X: Number{x}, Arg: 1, Func: "pow"}
		case x.Sign() == 0:
			if y.Sign() < 0 {
				z.SetInf(false)
			} else {
				z.SetInt64(0)
			}
			return nil
		case x.IsInf() || y.IsInf():
			xf, _ := x.Float64()
			yf, _ := y.Float64()
			r := math.Pow(xf, yf)
			if math.IsNaN(r) {
				return &DomainError{X: Number{y}, Arg: 2, Func: "pow"}
			}
			z.SetFloat64(r)
			return nil
		}
		bigfloat.Pow(z, x, y)
		return nil
	}, nil)
}

// powInt computes x^n by repeated squaring with guard bits.
func powInt(x *big.Float, n int64) *big.Float {
	p := precOf(x)
	neg := n < 0
	if neg {
		n = -n
	}
	w := p + 64
	r := newFloat(w).SetInt64(1)
	b := newFloat(w).Set(x)
	for n > 0 {
		if n&1 != 0 {
			r.Mul(r, b)
		}
		n >>= 1
		if n > 0 {
			b.Mul(b, b)
		}
	}
	if neg {
		if r.Sign() == 0 {
			return newFloat(p).SetInf(false)
		}
		r.Quo(newFloat(w).SetInt64(1), r)
	}
	return newFloat(p).Set(r)
}

func powComplex(c Complex, n int64) (Value, error) {
	neg := n < 0
	if neg {
		n = -n
	}
	var r Value = Int(1, precOf(c.re))
	var b Value = c
	var err error
	for n > 0 {
		if n&1 != 0 {
			if r, err = mulScalar(r, b); err != nil {
				return nil, err
			}
		}
		n >>= 1
		if n > 0 {
			if b, err = mulScalar(b, b); err != nil {
				return nil, err
			}
		}
	}
	if neg {
		return divScalar(Int(1, precOf(c.re)), r)
	}
	return r, nil
}

func unaryMinus(v Value) (Value, error) {
	return mapValues(v, func(v Value) (Value, error) {
		switch v := v.(type) {
		case Complex:
			return Complex{new(big.Float).Neg(v.re), new(big.Float).Neg(v.im)}, nil
		case Unit:
			if v.x == nil {
				break
			}
			return v.scaled(new(big.Float).Neg(v.x)), nil
		default:
			if x, ok := realOf(v); ok {
				return Number{new(big.Float).Neg(x)}, nil
			}
		}
		return nil, &TypeError{Func: "unaryminus", Kinds: []Kind{v.Kind()}}
	})
}

// maxFactorial is the largest argument accepted by factorial.
const maxFactorial = 100000

func factorial(v Value) (Value, error) {
	return mapValues(v, func(v Value) (Value, error) {
		x, ok := realOf(v)
		if !ok {
			return nil, &TypeError{Func: "factorial", Kinds: []Kind{v.Kind()}}
		}
		if !isInt(x) || x.Sign() < 0 || x.Cmp(big.NewFloat(maxFactorial)) > 0 {
			return nil, &DomainError{X: v, Arg: 1, Func: "factorial"}
		}
		n, _ := x.Int64()
		if n == 0 {
			return Int(1, precOf(x)), nil
		}
		f := new(big.Int).MulRange(1, n)
		return Number{newFloat(precOf(x)).SetInt(f)}, nil
	})
}

// compare orders a and b, which must be real numbers, units of the same
// dimension, or strings.
func compare(name string, a, b Value) (int, error) {
	if x, ok := realOf(a); ok {
		if y, ok := realOf(b); ok {
			return x.Cmp(y), nil
		}
	}
	switch a := a.(type) {
	case Unit:
		if b, ok := b.(Unit); ok && a.x != nil && b.x != nil && a.def.dim == b.def.dim {
			return a.x.Cmp(b.x), nil
		}
	case String:
		if b, ok := b.(String); ok {
			return strings.Compare(string(a), string(b)), nil
		}
	}
	return 0, &TypeError{Func: name, Kinds: []Kind{a.Kind(), b.Kind()}}
}

// comparison creates an element-wise comparison operator.
func comparison(name string, pred func(int) bool) binary {
	return elementwise(name, func(a, b Value) (Value, error) {
		c, err := compare(name, a, b)
		if err != nil {
			return nil, err
		}
		return Bool(pred(c)), nil
	})
}

// equality creates an element-wise equality operator, which unlike the
// ordering comparisons also accepts complex numbers.
func equality(name string, want bool) binary {
	return elementwise(name, func(a, b Value) (Value, error) {
		if ar, ai, ok := complexOf(a); ok {
			if br, bi, ok := complexOf(b); ok {
				eq := ar.Cmp(br) == 0 && ai.Cmp(bi) == 0
				return Bool(eq == want), nil
			}
		}
		c, err := compare(name, a, b)
		if err != nil {
			return nil, err
		}
		return Bool((c == 0) == want), nil
	})
}

// truth interprets v as a condition.
func truth(name string, v Value) (bool, error) {
	switch v := v.(type) {
	case Bool:
		return bool(v), nil
	case Number:
		return v.x.Sign() != 0, nil
	case Complex:
		return v.re.Sign() != 0 || v.im.Sign() != 0, nil
	case Unit:
		return v.x != nil && v.x.Sign() != 0, nil
	case String:
		return v != "", nil
	}
	return false, &TypeError{Func: name, Kinds: []Kind{v.Kind()}}
}

func logic(name string, op func(x, y bool) bool) binary {
	return func(a, b Value) (Value, error) {
		x, err := truth(name, a)
		if err != nil {
			return nil, err
		}
		y, err := truth(name, b)
		if err != nil {
			return nil, err
		}
		return Bool(op(x, y)), nil
	}
}

// convert expresses a unit quantity in another unit.
func convert(a, b Value) (Value, error) {
	u, ok := a.(Unit)
	to, ok2 := b.(Unit)
	if !ok || !ok2 {
		return nil, &TypeError{Func: "in", Kinds: []Kind{a.Kind(), b.Kind()}}
	}
	return u.convert(to)
}
