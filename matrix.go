package mathexpr

import (
	"math/big"
	"strconv"
	"strings"
)

// Matrix is a dense one- or two-dimensional array of values stored in row
// major order.
type Matrix struct {
	size []int
	data []Value
}

// NewMatrix creates a matrix of the given size. size must have one or two
// dimensions, and data must hold exactly as many elements as size implies.
func NewMatrix(size []int, data []Value) (*Matrix, error) {
	if len(size) < 1 || len(size) > 2 {
		return nil, &DimensionError{Msg: "matrices have one or two dimensions, not " + strconv.Itoa(len(size))}
	}
	n := 1
	for _, d := range size {
		if d < 0 {
			return nil, &DimensionError{Msg: "negative dimension " + strconv.Itoa(d)}
		}
		n *= d
	}
	if n != len(data) {
		return nil, &DimensionError{Msg: "size " + sizeText(size) + " needs " + strconv.Itoa(n) + " elements, have " + strconv.Itoa(len(data))}
	}
	return &Matrix{size: append([]int(nil), size...), data: append([]Value(nil), data...)}, nil
}

// Vector creates a one-dimensional matrix.
func Vector(data ...Value) *Matrix {
	return &Matrix{size: []int{len(data)}, data: append([]Value(nil), data...)}
}

func (*Matrix) Kind() Kind { return KindMatrix }

// Size returns the dimensions of the matrix.
func (m *Matrix) Size() []int { return append([]int(nil), m.size...) }

// Len returns the total number of elements.
func (m *Matrix) Len() int { return len(m.data) }

// At returns the element at the given 0-based position in row major order.
func (m *Matrix) At(i int) Value { return m.data[i] }

func (m *Matrix) clone() *Matrix {
	return &Matrix{size: append([]int(nil), m.size...), data: append([]Value(nil), m.data...)}
}

func (m *Matrix) String() string { return m.Format(FormatOptions{}) }

func (m *Matrix) Format(o FormatOptions) string {
	var b strings.Builder
	b.WriteByte('[')
	if len(m.size) == 1 {
		for i, v := range m.data {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(v.Format(o))
		}
	} else {
		cols := m.size[1]
		for r := 0; r < m.size[0]; r++ {
			if r > 0 {
				b.WriteString("; ")
			}
			for c := 0; c < cols; c++ {
				if c > 0 {
					b.WriteString(", ")
				}
				b.WriteString(m.data[r*cols+c].Format(o))
			}
		}
	}
	b.WriteByte(']')
	return b.String()
}

// Index selects an element or submatrix by 1-based indices. Each index is a
// number, a range, or a vector of numbers. A vector takes one index and a
// two-dimensional matrix takes two.
func (m *Matrix) Index(idx []Value) (Value, error) {
	if len(idx) != len(m.size) {
		return nil, &IndexError{Kind: KindMatrix, Msg: "matrix of size " + sizeText(m.size) + " takes " + strconv.Itoa(len(m.size)) + " indices, not " + strconv.Itoa(len(idx))}
	}
	sel := make([][]int, len(idx))
	scalar := true
	for d, v := range idx {
		p, s, err := positions(v)
		if err != nil {
			return nil, err
		}
		for _, k := range p {
			if k >= m.size[d] {
				return nil, outOfRange(k, m.size[d])
			}
		}
		sel[d] = p
		scalar = scalar && s
	}
	if len(sel) == 1 {
		if scalar {
			return m.data[sel[0][0]], nil
		}
		r := &Matrix{size: []int{len(sel[0])}, data: make([]Value, len(sel[0]))}
		for i, k := range sel[0] {
			r.data[i] = m.data[k]
		}
		return r, nil
	}
	cols := m.size[1]
	if scalar {
		return m.data[sel[0][0]*cols+sel[1][0]], nil
	}
	r := &Matrix{size: []int{len(sel[0]), len(sel[1])}}
	r.data = make([]Value, 0, len(sel[0])*len(sel[1]))
	for _, i := range sel[0] {
		for _, j := range sel[1] {
			r.data = append(r.data, m.data[i*cols+j])
		}
	}
	return r, nil
}

// SetIndex returns a copy of m with the selected elements replaced by v. If
// v is a matrix, its elements are assigned in row major order and it must
// have as many elements as the selection. Selecting past the end grows the
// copy, filling new elements with zero.
func (m *Matrix) SetIndex(idx []Value, v Value) (Value, error) {
	if len(idx) != len(m.size) {
		return nil, &IndexError{Kind: KindMatrix, Msg: "matrix of size " + sizeText(m.size) + " takes " + strconv.Itoa(len(m.size)) + " indices, not " + strconv.Itoa(len(idx))}
	}
	sel := make([][]int, len(idx))
	want := append([]int(nil), m.size...)
	count := 1
	for d, x := range idx {
		p, _, err := positions(x)
		if err != nil {
			return nil, err
		}
		for _, k := range p {
			if k >= MaxRangeLen {
				return nil, &DimensionError{Msg: "index " + strconv.Itoa(k+1) + " is too large"}
			}
			if k+1 > want[d] {
				want[d] = k + 1
			}
		}
		sel[d] = p
		count *= len(p)
	}
	if n := numElements(want); n > MaxRangeLen && n > len(m.data) {
		return nil, &DimensionError{Msg: "cannot grow matrix of size " + sizeText(m.size) + " to size " + sizeText(want)}
	}
	var src []Value
	if vm, ok := asMatrix(v); ok {
		if vm.Len() != count {
			return nil, &DimensionError{Msg: "cannot assign " + strconv.Itoa(vm.Len()) + " elements to a selection of " + strconv.Itoa(count)}
		}
		src = vm.data
	}
	r := m.resize(want)
	put := func(i, k int) {
		if src != nil {
			r.data[k] = src[i]
		} else {
			r.data[k] = v
		}
	}
	if len(sel) == 1 {
		for i, k := range sel[0] {
			put(i, k)
		}
		return r, nil
	}
	i := 0
	for _, a := range sel[0] {
		for _, b := range sel[1] {
			put(i, a*r.size[1]+b)
			i++
		}
	}
	return r, nil
}

// numElements returns the number of elements in a matrix of the given size.
func numElements(size []int) int {
	n := 1
	for _, d := range size {
		n *= d
	}
	return n
}

// resize returns a copy of m with the given size, padding with zeros.
func (m *Matrix) resize(size []int) *Matrix {
	zero := Int(0, DefaultPrec)
	if len(size) == 1 {
		r := &Matrix{size: []int{size[0]}, data: make([]Value, size[0])}
		copy(r.data, m.data)
		for i := len(m.data); i < size[0]; i++ {
			r.data[i] = zero
		}
		return r
	}
	r := &Matrix{size: []int{size[0], size[1]}, data: make([]Value, size[0]*size[1])}
	for i := range size[0] {
		for j := range size[1] {
			if i < m.size[0] && j < m.size[1] {
				r.data[i*size[1]+j] = m.data[i*m.size[1]+j]
			} else {
				r.data[i*size[1]+j] = zero
			}
		}
	}
	return r
}

// transpose returns the transpose of a two-dimensional matrix. A vector is
// returned unchanged.
func (m *Matrix) transpose() *Matrix {
	if len(m.size) == 1 {
		return m
	}
	rows, cols := m.size[0], m.size[1]
	r := &Matrix{size: []int{cols, rows}, data: make([]Value, len(m.data))}
	for i := range rows {
		for j := range cols {
			r.data[j*rows+i] = m.data[i*cols+j]
		}
	}
	return r
}

func sizeText(size []int) string {
	s := make([]string, len(size))
	for i, d := range size {
		s[i] = strconv.Itoa(d)
	}
	return "[" + strings.Join(s, ", ") + "]"
}

// positions converts a 1-based index value to 0-based positions. scalar
// reports whether the index was a single number.
func positions(v Value) (pos []int, scalar bool, err error) {
	if k, ok := toInt(v); ok {
		if k < 1 {
			return nil, false, &IndexError{Msg: "index " + strconv.Itoa(k) + " is less than 1"}
		}
		return []int{k - 1}, true, nil
	}
	m, ok := asMatrix(v)
	if !ok {
		if x, ok := realOf(v); ok {
			return nil, false, &IndexError{Msg: "index " + formatFloat(x, DefaultDigits) + " is not an integer"}
		}
		return nil, false, &IndexError{Msg: "cannot index with a " + v.Kind().String()}
	}
	pos = make([]int, m.Len())
	for i, e := range m.data {
		p, s, err := positions(e)
		if err != nil {
			return nil, false, err
		}
		if !s {
			return nil, false, &IndexError{Msg: "index vectors must hold numbers"}
		}
		pos[i] = p[0]
	}
	return pos, false, nil
}

func outOfRange(k, n int) error {
	return &IndexError{Msg: "index " + strconv.Itoa(k+1) + " out of range [1, " + strconv.Itoa(n) + "]"}
}

// asMatrix converts matrices and ranges to matrices.
func asMatrix(v Value) (*Matrix, bool) {
	switch v := v.(type) {
	case *Matrix:
		return v, true
	case Range:
		m, err := v.Matrix()
		if err != nil {
			return nil, false
		}
		return m, true
	}
	return nil, false
}

// MaxRangeLen is the largest number of elements a range may produce.
const MaxRangeLen = 1 << 24

// Range is an arithmetic sequence start, start+step, ... up to end
// inclusive.
type Range struct {
	start, step, end *big.Float
}

// NewRange creates a range. A zero step is a DomainError.
func NewRange(start, step, end *big.Float) (Range, error) {
	if step.Sign() == 0 {
		return Range{}, &DomainError{Func: "range", X: Number{step}, Arg: 2}
	}
	for i, x := range []*big.Float{start, step, end} {
		if x.IsInf() {
			return Range{}, &DomainError{Func: "range", X: Number{x}, Arg: i + 1}
		}
	}
	return Range{start: start, step: step, end: end}, nil
}

func (Range) Kind() Kind { return KindRange }

// Len returns the number of elements in the range.
func (r Range) Len() int {
	p := precOf(r.start, r.step, r.end)
	n := newFloat(p).Sub(r.end, r.start)
	n.Quo(n, r.step)
	if n.Sign() < 0 {
		return 0
	}
	floor(n, n)
	if n.Cmp(big.NewFloat(MaxRangeLen)) >= 0 {
		return MaxRangeLen + 1
	}
	k, _ := n.Int64()
	return int(k) + 1
}

// Matrix materializes the range as a vector.
func (r Range) Matrix() (*Matrix, error) {
	n := r.Len()
	if n > MaxRangeLen {
		return nil, &DimensionError{Msg: "range " + r.String() + " has too many elements"}
	}
	p := precOf(r.start, r.step, r.end)
	m := &Matrix{size: []int{n}, data: make([]Value, n)}
	for i := range n {
		x := newFloat(p).SetInt64(int64(i))
		x.Mul(x, r.step)
		x.Add(x, r.start)
		m.data[i] = Number{x}
	}
	return m, nil
}

func (r Range) String() string { return r.Format(FormatOptions{}) }

func (r Range) Format(o FormatOptions) string {
	d := o.digits()
	if r.step.Cmp(big.NewFloat(1)) == 0 {
		return formatFloat(r.start, d) + ":" + formatFloat(r.end, d)
	}
	return formatFloat(r.start, d) + ":" + formatFloat(r.step, d) + ":" + formatFloat(r.end, d)
}

// Index selects elements of the range by 1-based position.
func (r Range) Index(idx []Value) (Value, error) {
	m, err := r.Matrix()
	if err != nil {
		return nil, err
	}
	return m.Index(idx)
}

// SetIndex converts the range to a vector and sets elements of it.
func (r Range) SetIndex(idx []Value, v Value) (Value, error) {
	m, err := r.Matrix()
	if err != nil {
		return nil, err
	}
	return m.SetIndex(idx, v)
}
