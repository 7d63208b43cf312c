package mathexpr

import (
	"maps"
	"math"
	"math/big"
	"slices"

	"github.com/zephyrtronium/bigfloat"
)

// Namespace resolves names that no scope defines. Operators are looked up by
// function name, e.g. "add" for +, when an expression is parsed.
type Namespace interface {
	// Constant returns a reserved constant such as pi.
	Constant(name string) (Value, bool)
	// Lookup returns a function or other named value.
	Lookup(name string) (Value, bool)
	// Unit returns a unit without a magnitude, such as cm.
	Unit(name string) (Value, bool)
	// IsUnit reports whether name may follow a number as its unit.
	IsUnit(name string) bool
	// Names returns every name the namespace resolves.
	Names() []string
}

// Builtins is the default Namespace. It is immutable once created and may be
// shared by any number of scopes.
type Builtins struct {
	prec   uint
	consts map[string]Value
	values map[string]Value
	units  bool
}

// NamespaceOption configures DefaultNamespace.
type NamespaceOption func(*nsConfig)

type nsConfig struct {
	prec    uint
	values  map[string]Value
	consts  map[string]Value
	without []string
	units   bool
}

// WithPrec sets the precision of the namespace's constants. The default is
// DefaultPrec.
func WithPrec(prec uint) NamespaceOption {
	return func(c *nsConfig) {
		c.prec = prec
	}
}

// WithFunc adds or replaces a function. It may replace an operator function,
// such as "add".
func WithFunc(name string, f Func) NamespaceOption {
	return func(c *nsConfig) {
		c.values[name] = f
	}
}

// WithConstant adds or replaces a constant.
func WithConstant(name string, v Value) NamespaceOption {
	return func(c *nsConfig) {
		c.consts[name] = v
	}
}

// Without removes functions and constants from the namespace. Expressions
// using a removed operator fail to evaluate with an UndefinedSymbolError.
func Without(names ...string) NamespaceOption {
	return func(c *nsConfig) {
		c.without = append(c.without, names...)
	}
}

// WithoutUnits disables unit suffixes and unit names.
func WithoutUnits() NamespaceOption {
	return func(c *nsConfig) {
		c.units = false
	}
}

// DefaultNamespace creates the default namespace with the given options.
func DefaultNamespace(opts ...NamespaceOption) *Builtins {
	cfg := nsConfig{
		prec:   DefaultPrec,
		values: make(map[string]Value),
		consts: make(map[string]Value),
		units:  true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	b := &Builtins{
		prec:   cfg.prec,
		consts: defaultConstants(cfg.prec),
		values: defaultFuncs(),
		units:  cfg.units,
	}
	maps.Copy(b.consts, cfg.consts)
	maps.Copy(b.values, cfg.values)
	for _, name := range cfg.without {
		delete(b.consts, name)
		delete(b.values, name)
	}
	return b
}

// Prec returns the precision of the namespace's constants.
func (b *Builtins) Prec() uint { return b.prec }

func (b *Builtins) Constant(name string) (Value, bool) {
	v, ok := b.consts[name]
	return v, ok
}

func (b *Builtins) Lookup(name string) (Value, bool) {
	v, ok := b.values[name]
	return v, ok
}

func (b *Builtins) Unit(name string) (Value, bool) {
	if !b.units {
		return nil, false
	}
	u, ok := lookupUnit(name)
	if !ok {
		return nil, false
	}
	return u, true
}

func (b *Builtins) IsUnit(name string) bool {
	_, ok := b.Unit(name)
	return ok
}

func (b *Builtins) Names() []string {
	names := slices.Collect(maps.Keys(b.consts))
	names = slices.AppendSeq(names, maps.Keys(b.values))
	if b.units {
		names = append(names, UnitNames()...)
	}
	slices.Sort(names)
	return slices.Compact(names)
}

func defaultConstants(prec uint) map[string]Value {
	one := newFloat(prec).SetInt64(1)
	return map[string]Value{
		"pi":       Number{bigfloat.Pi(newFloat(prec))},
		"e":        Number{bigfloat.Exp(newFloat(prec), one)},
		"i":        Complex{newFloat(prec), newFloat(prec).SetInt64(1)},
		"true":     Bool(true),
		"false":    Bool(false),
		"Infinity": Number{newFloat(prec).SetInf(false)},
	}
}

func op2(name string, f binary) *Builtin {
	return NewFunc(name, 2, 2, func(args []Value) (Value, error) {
		return f(args[0], args[1])
	})
}

func op1(name string, f func(Value) (Value, error)) *Builtin {
	return NewFunc(name, 1, 1, func(args []Value) (Value, error) {
		return f(args[0])
	})
}

func defaultFuncs() map[string]Value {
	fs := []*Builtin{
		// operators
		op2("add", addOp),
		op2("subtract", subtractOp),
		op2("multiply", multiply),
		op2("divide", divide),
		op2("mod", modOp),
		op2("pow", pow),
		op1("unaryminus", unaryMinus),
		op1("factorial", factorial),
		op2("equal", equality("equal", true)),
		op2("unequal", equality("unequal", false)),
		op2("smaller", comparison("smaller", func(c int) bool { return c < 0 })),
		op2("larger", comparison("larger", func(c int) bool { return c > 0 })),
		op2("smallerEq", comparison("smallerEq", func(c int) bool { return c <= 0 })),
		op2("largerEq", comparison("largerEq", func(c int) bool { return c >= 0 })),
		op2("and", andOp),
		op2("or", orOp),
		op2("in", inOp),

		// arithmetic
		op1("abs", absFunc),
		op1("sqrt", sqrtFunc),
		NewFunc("log", 1, 2, logFunc),
		op1("log10", func(v Value) (Value, error) { return logFunc([]Value{v, Int(10, DefaultPrec)}) }),
		NewFunc("round", 1, 2, roundFunc),
		op1("floor", rounding("floor", floor)),
		op1("ceil", rounding("ceil", ceil)),
		op1("fix", rounding("fix", trunc)),
		op1("sign", signFunc),
		NewFunc("min", 1, -1, extremum("min", -1)),
		NewFunc("max", 1, -1, extremum("max", 1)),
		NewFunc("sum", 1, -1, sumFunc),
		NewFunc("mean", 1, -1, meanFunc),

		// trigonometry
		trig("sin", math.Sin),
		trig("cos", math.Cos),
		trig("tan", math.Tan),
		trig("asin", math.Asin),
		trig("acos", math.Acos),
		trig("atan", math.Atan),
		NewFunc("atan2", 2, 2, atan2Func),

		// complex
		op1("re", partFunc("re")),
		op1("im", partFunc("im")),
		op1("conj", partFunc("conj")),

		// matrices
		op1("size", sizeFunc),
		NewFunc("zeros", 1, 2, filled("zeros", 0)),
		NewFunc("ones", 1, 2, filled("ones", 1)),
		op1("transpose", transposeFunc),
	}
	m := make(map[string]Value, len(fs)+1)
	for _, f := range fs {
		m[f.name] = f
	}
	m["exp"] = Monadic("exp", bigfloat.Exp)
	return m
}

func absFunc(v Value) (Value, error) {
	return mapValues(v, func(v Value) (Value, error) {
		switch v := v.(type) {
		case Complex:
			p := precOf(v.re, v.im)
			z := newFloat(p).Mul(v.re, v.re)
			z.Add(z, newFloat(p).Mul(v.im, v.im))
			return Number{z.Sqrt(z)}, nil
		case Unit:
			if v.x != nil {
				return v.scaled(new(big.Float).Abs(v.x)), nil
			}
		default:
			if x, ok := realOf(v); ok {
				return Number{new(big.Float).Abs(x)}, nil
			}
		}
		return nil, &TypeError{Func: "abs", Kinds: []Kind{v.Kind()}}
	})
}

// sqrtFunc gives imaginary results for negative arguments.
func sqrtFunc(v Value) (Value, error) {
	return mapValues(v, func(v Value) (Value, error) {
		if x, ok := realOf(v); ok {
			p := precOf(x)
			if x.Sign() < 0 {
				z := newFloat(p).Neg(x)
				return Complex{newFloat(p), z.Sqrt(z)}, nil
			}
			if x.IsInf() {
				return Number{newFloat(p).Set(x)}, nil
			}
			return Number{newFloat(p).Sqrt(x)}, nil
		}
		c, ok := v.(Complex)
		if !ok {
			return nil, &TypeError{Func: "sqrt", Kinds: []Kind{v.Kind()}}
		}
		// sqrt(a+bi) = sqrt((r+a)/2) + sign(b) sqrt((r-a)/2) i
		p := precOf(c.re, c.im)
		r := newFloat(p).Mul(c.re, c.re)
		r.Add(r, newFloat(p).Mul(c.im, c.im))
		r.Sqrt(r)
		half := big.NewFloat(0.5)
		re := newFloat(p).Add(r, c.re)
		re.Mul(re, half)
		re.Sqrt(re)
		im := newFloat(p).Sub(r, c.re)
		im.Mul(im, half)
		im.Sqrt(im)
		if c.im.Sign() < 0 {
			im.Neg(im)
		}
		return mkComplex(re, im), nil
	})
}

// logFunc is the natural logarithm, or the logarithm to a base given as the
// second argument.
func logFunc(args []Value) (Value, error) {
	ln := func(v Value, arg int) (*big.Float, error) {
		x, ok := realOf(v)
		if !ok {
			return nil, &TypeError{Func: "log", Kinds: []Kind{v.Kind()}}
		}
		if x.Sign() <= 0 {
			return nil, &DomainError{X: v, Arg: arg, Func: "log"}
		}
		if x.IsInf() {
			return newFloat(precOf(x)).SetInf(false), nil
		}
		return bigfloat.Log(newFloat(precOf(x)), x), nil
	}
	if len(args) == 1 {
		return mapValues(args[0], func(v Value) (Value, error) {
			z, err := ln(v, 1)
			if err != nil {
				return nil, err
			}
			return Number{z}, nil
		})
	}
	base, err := ln(args[1], 2)
	if err != nil {
		return nil, err
	}
	if base.Sign() == 0 {
		return nil, &DomainError{X: args[1], Arg: 2, Func: "log"}
	}
	return mapValues(args[0], func(v Value) (Value, error) {
		z, err := ln(v, 1)
		if err != nil {
			return nil, err
		}
		return Number{z.Quo(z, base)}, nil
	})
}

// maxRoundDigits bounds the second argument of round.
const maxRoundDigits = 100

// roundFunc rounds half away from zero to a number of decimal places.
func roundFunc(args []Value) (Value, error) {
	n := 0
	if len(args) == 2 {
		k, ok := toInt(args[1])
		if !ok || k < 0 || k > maxRoundDigits {
			return nil, &DomainError{X: args[1], Arg: 2, Func: "round"}
		}
		n = k
	}
	return mapValues(args[0], func(v Value) (Value, error) {
		x, ok := realOf(v)
		if !ok {
			return nil, &TypeError{Func: "round", Kinds: []Kind{v.Kind()}}
		}
		if x.IsInf() || x.IsInt() {
			return Number{x}, nil
		}
		p := precOf(x) + 64
		scale := powInt(newFloat(p).SetInt64(10), int64(n))
		z := newFloat(p).Mul(x, scale)
		neg := z.Sign() < 0
		z.Abs(z)
		z.Add(z, big.NewFloat(0.5))
		floor(z, z)
		if neg {
			z.Neg(z)
		}
		z.Quo(z, scale)
		return Number{newFloat(precOf(x)).Set(z)}, nil
	})
}

func rounding(name string, f func(z, x *big.Float) *big.Float) func(Value) (Value, error) {
	return func(v Value) (Value, error) {
		return mapValues(v, func(v Value) (Value, error) {
			x, ok := realOf(v)
			if !ok {
				return nil, &TypeError{Func: name, Kinds: []Kind{v.Kind()}}
			}
			return Number{f(newFloat(precOf(x)), x)}, nil
		})
	}
}

func signFunc(v Value) (Value, error) {
	return mapValues(v, func(v Value) (Value, error) {
		x, ok := realOf(v)
		if !ok {
			return nil, &TypeError{Func: "sign", Kinds: []Kind{v.Kind()}}
		}
		return Int(int64(x.Sign()), precOf(x)), nil
	})
}

// elements flattens the arguments of an aggregate function.
func elements(args []Value) []Value {
	var r []Value
	for _, a := range args {
		if m, ok := asMatrix(a); ok {
			r = append(r, m.data...)
		} else {
			r = append(r, a)
		}
	}
	return r
}

func extremum(name string, want int) func([]Value) (Value, error) {
	return func(args []Value) (Value, error) {
		xs := elements(args)
		if len(xs) == 0 {
			return nil, &DimensionError{Msg: name + " of an empty matrix"}
		}
		best := xs[0]
		for _, x := range xs[1:] {
			c, err := compare(name, x, best)
			if err != nil {
				return nil, err
			}
			if c == want {
				best = x
			}
		}
		return best, nil
	}
}

func sumFunc(args []Value) (Value, error) {
	var acc Value = Int(0, DefaultPrec)
	for _, x := range elements(args) {
		var err error
		if acc, err = addScalar(acc, x); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func meanFunc(args []Value) (Value, error) {
	xs := elements(args)
	if len(xs) == 0 {
		return nil, &DimensionError{Msg: "mean of an empty matrix"}
	}
	s, err := sumFunc(xs)
	if err != nil {
		return nil, err
	}
	return divScalar(s, Int(int64(len(xs)), DefaultPrec))
}

func trig(name string, f func(float64) float64) *Builtin {
	return op1(name, func(v Value) (Value, error) {
		return mapValues(v, func(v Value) (Value, error) {
			x, ok := radians(v)
			if !ok {
				return nil, &TypeError{Func: name, Kinds: []Kind{v.Kind()}}
			}
			xf, _ := x.Float64()
			r := f(xf)
			if math.IsNaN(r) {
				return nil, &DomainError{X: v, Arg: 1, Func: name}
			}
			return Number{newFloat(precOf(x)).SetFloat64(r)}, nil
		})
	})
}

func atan2Func(args []Value) (Value, error) {
	y, ok := realOf(args[0])
	x, ok2 := realOf(args[1])
	if !ok || !ok2 {
		return nil, &TypeError{Func: "atan2", Kinds: []Kind{args[0].Kind(), args[1].Kind()}}
	}
	yf, _ := y.Float64()
	xf, _ := x.Float64()
	return Number{newFloat(precOf(x, y)).SetFloat64(math.Atan2(yf, xf))}, nil
}

func partFunc(name string) func(Value) (Value, error) {
	return func(v Value) (Value, error) {
		return mapValues(v, func(v Value) (Value, error) {
			re, im, ok := complexOf(v)
			if !ok {
				return nil, &TypeError{Func: name, Kinds: []Kind{v.Kind()}}
			}
			switch name {
			case "re":
				return Number{re}, nil
			case "im":
				return Number{im}, nil
			}
			return mkComplex(re, new(big.Float).Neg(im)), nil
		})
	}
}

func sizeFunc(v Value) (Value, error) {
	switch v := v.(type) {
	case *Matrix:
		r := make([]Value, len(v.size))
		for i, d := range v.size {
			r[i] = Int(int64(d), DefaultPrec)
		}
		return Vector(r...), nil
	case Range:
		return Vector(Int(int64(v.Len()), DefaultPrec)), nil
	case String:
		return Vector(Int(int64(len([]rune(string(v)))), DefaultPrec)), nil
	}
	return Vector(), nil
}

func filled(name string, k int64) func([]Value) (Value, error) {
	return func(args []Value) (Value, error) {
		size := make([]int, len(args))
		n := 1
		for i, a := range args {
			d, ok := toInt(a)
			if !ok || d < 0 || d > MaxRangeLen {
				return nil, &DomainError{X: a, Arg: i + 1, Func: name}
			}
			size[i] = d
			n *= d
		}
		if n > MaxRangeLen {
			return nil, &DimensionError{Msg: name + " of size " + sizeText(size) + " is too large"}
		}
		data := make([]Value, n)
		x := Int(k, DefaultPrec)
		for i := range data {
			data[i] = x
		}
		return NewMatrix(size, data)
	}
}

func transposeFunc(v Value) (Value, error) {
	if m, ok := asMatrix(v); ok {
		return m.transpose(), nil
	}
	return v, nil
}
