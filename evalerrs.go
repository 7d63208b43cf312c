package mathexpr

import (
	"math/big"
	"strconv"
	"strings"
)

// UndefinedSymbolError is an error evaluating a symbol that no scope or
// namespace defines.
type UndefinedSymbolError struct {
	// Name is the undefined symbol.
	Name string
	// Suggestions are defined names similar to Name, best first.
	Suggestions []string
}

func (err *UndefinedSymbolError) Error() string {
	s := "undefined symbol " + err.Name
	switch len(err.Suggestions) {
	case 0:
		return s
	case 1:
		return s + " (did you mean " + err.Suggestions[0] + "?)"
	default:
		return s + " (did you mean one of " + strings.Join(err.Suggestions, ", ") + "?)"
	}
}

// ArgumentCountError is an error calling a function with a number of
// arguments it does not accept.
type ArgumentCountError struct {
	// Func is the name of the function.
	Func string
	// Len is the number of arguments in the call.
	Len int
}

func (err *ArgumentCountError) Error() string {
	return "cannot call " + err.Func + " with " + strconv.Itoa(err.Len) + " arguments"
}

// TypeError is an error applying a function to arguments of kinds it does
// not support.
type TypeError struct {
	// Func is the name of the function.
	Func string
	// Kinds are the kinds of the arguments.
	Kinds []Kind
	// Msg optionally gives more detail.
	Msg string
}

func (err *TypeError) Error() string {
	if err.Msg != "" {
		return err.Func + ": " + err.Msg
	}
	ks := make([]string, len(err.Kinds))
	for i, k := range err.Kinds {
		ks[i] = k.String()
	}
	return "unexpected type of argument in " + err.Func + " (" + strings.Join(ks, ", ") + ")"
}

// NotCallableError is an error calling or indexing a value that is neither
// a function nor indexable.
type NotCallableError struct {
	// Name is the name of the symbol, if the value came from one.
	Name string
	// Kind is the kind of the value.
	Kind Kind
}

func (err *NotCallableError) Error() string {
	if err.Name == "" {
		return "cannot call or index a " + err.Kind.String()
	}
	return err.Name + " is a " + err.Kind.String() + ", not a function or matrix"
}

// IndexError is an error from an out-of-range or malformed subscript.
type IndexError struct {
	// Kind is the kind of the indexed value, if known.
	Kind Kind
	// Msg describes the problem.
	Msg string
}

func (err *IndexError) Error() string {
	return "index error: " + err.Msg
}

// DimensionError is an error from operands with incompatible sizes.
type DimensionError struct {
	Msg string
}

func (err *DimensionError) Error() string {
	return "dimension mismatch: " + err.Msg
}

// DomainError is returned when a function is called on arguments outside its
// domain. DomainError unwraps to big.ErrNaN.
type DomainError struct {
	// X is the out-of-domain argument.
	X Value
	// Arg is the 1-based index of the argument.
	Arg int
	// Func is a name identifying the function.
	Func string
}

func (err *DomainError) Error() string {
	r := "argument outside domain"
	if err.X != nil {
		r = err.X.String() + " outside domain"
	}
	if err.Func != "" {
		r += " of " + err.Func
	}
	if err.Arg > 0 {
		r += " (argument " + strconv.Itoa(err.Arg) + ")"
	}
	return r
}

func (err *DomainError) Unwrap() error {
	return big.ErrNaN{}
}

// RecursionError is an error from user-defined functions calling themselves
// too deeply.
type RecursionError struct {
	// Func is the function whose call exceeded the limit.
	Func string
	// Depth is the limit.
	Depth int
}

func (err *RecursionError) Error() string {
	return "maximum call depth " + strconv.Itoa(err.Depth) + " exceeded in " + err.Func
}
