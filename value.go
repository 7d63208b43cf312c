package mathexpr

import (
	"strconv"
	"strings"
)

// Kind identifies the dynamic type of a Value.
type Kind int8

const (
	KindNone Kind = iota
	KindNumber
	KindComplex
	KindUnit
	KindMatrix
	KindRange
	KindString
	KindBool
	KindFunc
	KindResults
)

var kindNames = [...]string{
	KindNone:    "none",
	KindNumber:  "number",
	KindComplex: "complex",
	KindUnit:    "unit",
	KindMatrix:  "matrix",
	KindRange:   "range",
	KindString:  "string",
	KindBool:    "boolean",
	KindFunc:    "function",
	KindResults: "results",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// Value is the result of evaluating an expression. Values other than
// matrices are immutable; use Clone before mutating a matrix that may be
// shared.
type Value interface {
	// Kind returns the dynamic type of the value.
	Kind() Kind
	// String formats the value with default options.
	String() string
	// Format formats the value.
	Format(FormatOptions) string
}

// Indexable is a Value supporting 1-based subscripts, as in a(2, 3).
type Indexable interface {
	Value
	// Index returns the element or sub-range selected by idx.
	Index(idx []Value) (Value, error)
	// SetIndex returns a copy of the receiver with the elements selected by
	// idx replaced by v. The receiver is not modified.
	SetIndex(idx []Value, v Value) (Value, error)
}

// Clone returns a copy of v that does not share mutable state with v.
func Clone(v Value) Value {
	if m, ok := v.(*Matrix); ok {
		return m.clone()
	}
	return v
}

// String is a string value.
type String string

func (String) Kind() Kind { return KindString }

func (s String) String() string { return quote(string(s)) }

func (s String) Format(FormatOptions) string { return s.String() }

// Index selects characters of the string by 1-based position.
func (s String) Index(idx []Value) (Value, error) {
	r := []rune(string(s))
	if len(idx) != 1 {
		return nil, &IndexError{Kind: KindString, Msg: "strings take one index, not " + strconv.Itoa(len(idx))}
	}
	pos, _, err := positions(idx[0])
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	for _, p := range pos {
		if p >= len(r) {
			return nil, outOfRange(p, len(r))
		}
		b.WriteRune(r[p])
	}
	return String(b.String()), nil
}

// SetIndex always fails; strings are immutable.
func (s String) SetIndex(idx []Value, v Value) (Value, error) {
	return nil, &TypeError{Func: "subset", Kinds: []Kind{KindString, v.Kind()}}
}

// Bool is a boolean value. Arithmetic treats it as 0 or 1.
type Bool bool

func (Bool) Kind() Kind { return KindBool }

func (b Bool) String() string { return strconv.FormatBool(bool(b)) }

func (b Bool) Format(FormatOptions) string { return b.String() }

// Results is the list of visible values produced by a block of statements.
type Results []Value

func (Results) Kind() Kind { return KindResults }

func (r Results) String() string { return r.Format(FormatOptions{}) }

func (r Results) Format(o FormatOptions) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range r {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(v.Format(o))
	}
	b.WriteByte(']')
	return b.String()
}

// FormatOptions control rendering of nodes and values.
type FormatOptions struct {
	// Digits is the number of significant digits used for numbers that are
	// not exact integers. Zero means DefaultDigits.
	Digits int
	// Alt renders multiplication and division as × and ÷.
	Alt bool
	// Ans renders the implicit assignment to ans that wraps bare
	// expressions.
	Ans bool
}

// DefaultDigits is the number of significant digits used to format
// non-integer numbers when FormatOptions does not say otherwise.
const DefaultDigits = 14

func (o FormatOptions) digits() int {
	if o.Digits <= 0 {
		return DefaultDigits
	}
	return o.Digits
}
