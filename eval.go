package mathexpr

import "strings"

// DefaultMaxCallDepth is the default limit on nested calls of one
// user-defined function.
const DefaultMaxCallDepth = 1000

func (n *Constant) Eval() (Value, error) {
	return n.value, nil
}

func (n *SymbolRef) Eval() (Value, error) {
	v, err := n.cell.Get()
	if err != nil {
		return nil, err
	}
	if !n.call {
		return v, nil
	}
	args, err := evalAll(n.args)
	if err != nil {
		return nil, err
	}
	return apply(n.name, v, args)
}

func (n *UnaryOp) Eval() (Value, error) {
	if n.f == nil {
		return nil, &UndefinedSymbolError{Name: n.fn}
	}
	x, err := n.operand.Eval()
	if err != nil {
		return nil, err
	}
	return call(n.fn, n.f, []Value{x})
}

func (n *BinaryOp) Eval() (Value, error) {
	if n.f == nil {
		return nil, &UndefinedSymbolError{Name: n.fn}
	}
	x, err := n.left.Eval()
	if err != nil {
		return nil, err
	}
	y, err := n.right.Eval()
	if err != nil {
		return nil, err
	}
	return call(n.fn, n.f, []Value{x, y})
}

func (n *MatrixLiteral) Eval() (Value, error) {
	if len(n.rows) == 0 {
		return Vector(), nil
	}
	var data []Value
	for _, row := range n.rows {
		vs, err := evalAll(row)
		if err != nil {
			return nil, err
		}
		data = append(data, vs...)
	}
	if len(n.rows) == 1 {
		if m, ok := stackRows(data); ok {
			return m, nil
		}
		return Vector(data...), nil
	}
	return NewMatrix([]int{len(n.rows), len(n.rows[0])}, data)
}

// stackRows builds a two-dimensional matrix from a list of vectors of equal
// length, so that [[1, 2], [3, 4]] is the same as [1, 2; 3, 4].
func stackRows(rows []Value) (*Matrix, bool) {
	cols := -1
	var data []Value
	for _, r := range rows {
		m, ok := r.(*Matrix)
		if !ok || len(m.size) != 1 || cols >= 0 && m.size[0] != cols {
			return nil, false
		}
		cols = m.size[0]
		data = append(data, m.data...)
	}
	return &Matrix{size: []int{len(rows), cols}, data: data}, true
}

func (n *RangeExpr) Eval() (Value, error) {
	parts := []Node{n.start, n.step, n.end}
	xs := make([]Value, 3)
	for i, p := range parts {
		if p == nil {
			xs[i] = Int(1, DefaultPrec)
			continue
		}
		v, err := p.Eval()
		if err != nil {
			return nil, err
		}
		xs[i] = v
	}
	start, ok1 := realOf(xs[0])
	step, ok2 := realOf(xs[1])
	end, ok3 := realOf(xs[2])
	if !ok1 || !ok2 || !ok3 {
		return nil, &TypeError{Func: "range", Kinds: []Kind{xs[0].Kind(), xs[1].Kind(), xs[2].Kind()}}
	}
	return NewRange(start, step, end)
}

func (n *Arguments) Eval() (Value, error) {
	v, err := n.object.Eval()
	if err != nil {
		return nil, err
	}
	args, err := evalAll(n.args)
	if err != nil {
		return nil, err
	}
	return apply("", v, args)
}

func (n *Assignment) Eval() (Value, error) {
	v, err := n.value.Eval()
	if err != nil {
		return nil, err
	}
	if n.index == nil {
		v = Clone(v)
		n.cell.Set(v)
		return v, nil
	}
	cur, err := n.cell.Get()
	if err != nil {
		return nil, err
	}
	t, ok := cur.(Indexable)
	if !ok {
		return nil, &NotCallableError{Name: n.name, Kind: cur.Kind()}
	}
	idx, err := evalAll(n.index)
	if err != nil {
		return nil, err
	}
	r, err := t.SetIndex(idx, Clone(v))
	if err != nil {
		return nil, err
	}
	n.cell.Set(r)
	return r, nil
}

func (n *FunctionAssignment) Eval() (Value, error) {
	f := &UserFunc{
		name:     n.name,
		params:   n.params,
		cells:    n.cells,
		body:     n.body,
		maxDepth: n.maxDepth,
	}
	n.cell.Set(f)
	return f, nil
}

func (n *Block) Eval() (Value, error) {
	r := Results{}
	for _, it := range n.items {
		v, err := it.Node.Eval()
		if err != nil {
			return nil, err
		}
		if it.Visible {
			r = append(r, v)
		}
	}
	return r, nil
}

func evalAll(ns []Node) ([]Value, error) {
	vs := make([]Value, len(ns))
	for i, n := range ns {
		v, err := n.Eval()
		if err != nil {
			return nil, err
		}
		vs[i] = v
	}
	return vs, nil
}

// apply calls target if it is a function or indexes it if it is indexable.
func apply(name string, target Value, args []Value) (Value, error) {
	switch t := target.(type) {
	case Func:
		return call(name, t, args)
	case Indexable:
		return t.Index(args)
	}
	return nil, &NotCallableError{Name: name, Kind: target.Kind()}
}

func call(name string, f Func, args []Value) (Value, error) {
	if !f.CanCall(len(args)) {
		if name == "" {
			name = f.String()
		}
		return nil, &ArgumentCountError{Func: name, Len: len(args)}
	}
	return f.Call(args)
}

// UserFunc is a function created by a function assignment. Its body reads
// free names from the scope where it was defined at the time of each call.
type UserFunc struct {
	name     string
	params   []string
	cells    []*Cell
	body     Node
	depth    int
	maxDepth int
}

func (f *UserFunc) Call(args []Value) (Value, error) {
	if len(args) != len(f.params) {
		return nil, &ArgumentCountError{Func: f.name, Len: len(args)}
	}
	limit := f.maxDepth
	if limit <= 0 {
		limit = DefaultMaxCallDepth
	}
	if f.depth >= limit {
		return nil, &RecursionError{Func: f.name, Depth: limit}
	}
	saved := make([]Value, len(f.cells))
	for i, c := range f.cells {
		saved[i] = c.value
		c.value = Clone(args[i])
	}
	f.depth++
	defer func() {
		f.depth--
		for i, c := range f.cells {
			c.value = saved[i]
		}
	}()
	return f.body.Eval()
}

func (f *UserFunc) CanCall(n int) bool {
	return n == len(f.params)
}

func (*UserFunc) Kind() Kind { return KindFunc }

func (f *UserFunc) String() string {
	return f.name + "(" + strings.Join(f.params, ", ") + ")"
}

func (f *UserFunc) Format(FormatOptions) string { return f.String() }
