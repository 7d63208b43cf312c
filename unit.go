package mathexpr

import (
	"math/big"

	"github.com/zephyrtronium/bigfloat"
)

type dimension int8

const (
	dimLength dimension = iota
	dimMass
	dimTime
	dimAngle
)

func (d dimension) String() string {
	switch d {
	case dimLength:
		return "length"
	case dimMass:
		return "mass"
	case dimTime:
		return "time"
	case dimAngle:
		return "angle"
	}
	return "dimensionless"
}

// unitDef describes a unit by the number of base units in one of it.
type unitDef struct {
	name   string
	dim    dimension
	factor *big.Float
}

const unitPrec = 256

var unitDefs = func() map[string]*unitDef {
	dec := func(s string) *big.Float {
		x, _, err := big.ParseFloat(s, 10, unitPrec, big.ToNearestEven)
		if err != nil {
			panic(err)
		}
		return x
	}
	pi := bigfloat.Pi(newFloat(unitPrec))
	per := func(n int64) *big.Float {
		return newFloat(unitPrec).Quo(pi, newFloat(unitPrec).SetInt64(n))
	}
	defs := []*unitDef{
		{"m", dimLength, dec("1")},
		{"cm", dimLength, dec("0.01")},
		{"mm", dimLength, dec("0.001")},
		{"km", dimLength, dec("1000")},
		{"inch", dimLength, dec("0.0254")},
		{"ft", dimLength, dec("0.3048")},
		{"mi", dimLength, dec("1609.344")},
		{"g", dimMass, dec("0.001")},
		{"kg", dimMass, dec("1")},
		{"s", dimTime, dec("1")},
		{"min", dimTime, dec("60")},
		{"h", dimTime, dec("3600")},
		{"rad", dimAngle, dec("1")},
		{"deg", dimAngle, per(180)},
		{"grad", dimAngle, per(200)},
	}
	m := make(map[string]*unitDef, len(defs))
	for _, d := range defs {
		m[d.name] = d
	}
	return m
}()

// Unit is a quantity with a unit from a fixed table, such as 5 cm or 45 deg.
// A Unit may be valueless, denoting the unit itself, as the target of a
// conversion like 5 cm in inch.
type Unit struct {
	// x is the magnitude in base units, or nil for a valueless unit.
	x   *big.Float
	def *unitDef
}

// UnitNames returns the names of the units that can follow a number.
func UnitNames() []string {
	r := make([]string, 0, len(unitDefs))
	for name := range unitDefs {
		r = append(r, name)
	}
	return r
}

func lookupUnit(name string) (Unit, bool) {
	d, ok := unitDefs[name]
	if !ok {
		return Unit{}, false
	}
	return Unit{def: d}, true
}

// Name returns the name of the unit in which the quantity is displayed.
func (u Unit) Name() string { return u.def.name }

// HasValue reports whether the unit has a magnitude.
func (u Unit) HasValue() bool { return u.x != nil }

// WithValue returns a quantity of x in the receiver's unit.
func (u Unit) WithValue(x *big.Float) Unit {
	z := newFloat(x.Prec()).Mul(x, u.def.factor)
	return Unit{x: z, def: u.def}
}

// value returns the magnitude in the unit's own scale.
func (u Unit) value() *big.Float {
	return newFloat(u.x.Prec()).Quo(u.x, u.def.factor)
}

func (Unit) Kind() Kind { return KindUnit }

func (u Unit) String() string { return u.Format(FormatOptions{}) }

func (u Unit) Format(o FormatOptions) string {
	if u.x == nil {
		return u.def.name
	}
	return formatFloat(u.value(), o.digits()) + " " + u.def.name
}

func (u Unit) scaled(x *big.Float) Unit {
	return Unit{x: x, def: u.def}
}

// convert expresses u in the unit of to.
func (u Unit) convert(to Unit) (Unit, error) {
	if u.x == nil {
		return Unit{}, &TypeError{Func: "in", Kinds: []Kind{KindUnit, KindUnit}, Msg: "cannot convert a unit without a value"}
	}
	if u.def.dim != to.def.dim {
		return Unit{}, &TypeError{Func: "in", Kinds: []Kind{KindUnit, KindUnit}, Msg: "cannot convert " + u.def.dim.String() + " to " + to.def.dim.String()}
	}
	return Unit{x: u.x, def: to.def}, nil
}

// radians returns the magnitude of an angle in radians.
func radians(v Value) (*big.Float, bool) {
	if u, ok := v.(Unit); ok && u.x != nil && u.def.dim == dimAngle {
		return u.x, true
	}
	return realOf(v)
}
