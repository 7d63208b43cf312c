package mathexpr

import (
	"errors"
	"math/big"
)

// Func is a callable value. Namespaces provide Funcs for operators and named
// functions, and function assignments create them.
type Func interface {
	Value
	// Call evaluates the function. args has a length for which CanCall
	// returned true. Call must not modify the elements of args.
	Call(args []Value) (Value, error)
	// CanCall returns whether the function can be called with n arguments.
	CanCall(n int) bool
}

// Builtin is a Func implemented in Go.
type Builtin struct {
	name     string
	min, max int
	fn       func(args []Value) (Value, error)
}

// NewFunc creates a Func named name accepting between min and max arguments
// inclusive. A negative max means any number of at least min arguments.
//
// If fn panics with an error that unwraps to big.ErrNaN, as math/big does for
// operations like Inf-Inf, Call returns a DomainError instead.
func NewFunc(name string, min, max int, fn func(args []Value) (Value, error)) *Builtin {
	return &Builtin{name: name, min: min, max: max, fn: fn}
}

// Name returns the function's name.
func (f *Builtin) Name() string { return f.name }

func (f *Builtin) Call(args []Value) (r Value, err error) {
	defer func() {
		p := recover()
		if p == nil {
			return
		}
		e, ok := p.(error)
		if !ok || !errors.As(e, &big.ErrNaN{}) {
			panic(p)
		}
		r, err = nil, &DomainError{Func: f.name}
	}()
	return f.fn(args)
}

func (f *Builtin) CanCall(n int) bool {
	return n >= f.min && (f.max < 0 || n <= f.max)
}

func (*Builtin) Kind() Kind { return KindFunc }

func (f *Builtin) String() string { return f.name }

func (f *Builtin) Format(FormatOptions) string { return f.name }

// Monadic wraps a function of one real variable into a Func that applies
// element-wise to matrices. f must set out to its result, to the precision of
// out; its return value is ignored. If f is called on an argument outside
// its domain, it should panic with an error of type big.ErrNaN, or that
// unwraps to it.
func Monadic(name string, f func(out, in *big.Float) *big.Float) Func {
	var g func(Value) (Value, error)
	g = func(v Value) (r Value, err error) {
		x, ok := realOf(v)
		if !ok {
			return nil, &TypeError{Func: name, Kinds: []Kind{v.Kind()}}
		}
		defer func() {
			p := recover()
			if p == nil {
				return
			}
			e, ok := p.(error)
			if !ok || !errors.As(e, &big.ErrNaN{}) {
				panic(p)
			}
			r, err = nil, &DomainError{X: v, Arg: 1, Func: name}
		}()
		z := newFloat(precOf(x))
		f(z, new(big.Float).Copy(x))
		return Number{z}, nil
	}
	return NewFunc(name, 1, 1, func(args []Value) (Value, error) {
		return mapValues(args[0], g)
	})
}

// mapValues applies f to v, or to each element of v if it is a matrix or
// range.
func mapValues(v Value, f func(Value) (Value, error)) (Value, error) {
	m, ok := asMatrix(v)
	if !ok {
		return f(v)
	}
	r := &Matrix{size: m.Size(), data: make([]Value, len(m.data))}
	for i, e := range m.data {
		x, err := mapValues(e, f)
		if err != nil {
			return nil, err
		}
		r.data[i] = x
	}
	return r, nil
}
