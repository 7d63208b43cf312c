package mathexpr

import (
	"maps"
	"slices"
	"strings"
)

// Node is a node of a parsed expression. The set of node types is closed;
// every Node is one of the pointer types in this file.
type Node interface {
	// Eval evaluates the node against the current contents of the cells it
	// references.
	Eval() (Value, error)
	// String renders the node as source text with default options.
	String() string
	// Format renders the node as source text.
	Format(FormatOptions) string

	format(b *strings.Builder, o *FormatOptions)
	precedence() Precedence
}

// Precedence is the binding strength of an operator. Higher binds tighter.
type Precedence int

const (
	PrecBlock Precedence = iota
	PrecAssignment
	PrecRange
	PrecConditional
	PrecComparison
	PrecAdditive
	PrecMultiplicative
	PrecUnary
	PrecPower
	PrecFactorial
	PrecPrimary
)

// Associativity is the side on which an operator absorbs operands of equal
// precedence without parentheses.
type Associativity int8

const (
	AssocNone Associativity = iota
	AssocLeft
	AssocRight
)

// Constant is a literal number, number with unit, imaginary number, or
// string.
type Constant struct {
	value Value
	text  string
}

// NewConstant creates a constant node rendering as v.String().
func NewConstant(v Value) *Constant {
	return &Constant{value: v, text: v.String()}
}

// Value returns the constant's value.
func (n *Constant) Value() Value { return n.value }

// SymbolRef is a reference to a name, optionally called or indexed with
// arguments as in f(x).
type SymbolRef struct {
	name string
	cell *Cell
	args []Node
	call bool
}

// Name returns the referenced name.
func (n *SymbolRef) Name() string { return n.name }

// Args returns the call arguments, or nil if the symbol is not called.
func (n *SymbolRef) Args() []Node { return n.args }

// Called reports whether the symbol is followed by an argument list,
// possibly empty.
func (n *SymbolRef) Called() bool { return n.call }

// UnaryOp is a prefix minus or a postfix factorial.
type UnaryOp struct {
	op      string
	fn      string
	f       Func
	operand Node
}

// Op returns the operator, "-" or "!".
func (n *UnaryOp) Op() string { return n.op }

// Fn returns the name of the function implementing the operator.
func (n *UnaryOp) Fn() string { return n.fn }

// Operand returns the operand.
func (n *UnaryOp) Operand() Node { return n.operand }

// Precedence returns the precedence of the operator.
func (n *UnaryOp) Precedence() Precedence { return n.precedence() }

// Associativity returns the side on which the operator absorbs its operand.
func (n *UnaryOp) Associativity() Associativity {
	if n.op == "!" {
		return AssocLeft
	}
	return AssocRight
}

func (n *UnaryOp) precedence() Precedence {
	if n.op == "!" {
		return PrecFactorial
	}
	return PrecUnary
}

// BinaryOp is an infix operation.
type BinaryOp struct {
	op          string
	fn          string
	f           Func
	left, right Node
}

// Op returns the operator, such as "+".
func (n *BinaryOp) Op() string { return n.op }

// Fn returns the name of the function implementing the operator.
func (n *BinaryOp) Fn() string { return n.fn }

// Operands returns the left and right operands.
func (n *BinaryOp) Operands() (left, right Node) { return n.left, n.right }

// Precedence returns the precedence of the operator.
func (n *BinaryOp) Precedence() Precedence { return n.precedence() }

// Associativity returns the side on which the operator absorbs operands of
// equal precedence.
func (n *BinaryOp) Associativity() Associativity {
	if binops[n.op].right {
		return AssocRight
	}
	return AssocLeft
}

func (n *BinaryOp) precedence() Precedence { return binops[n.op].prec }

// MatrixLiteral is a bracketed list of rows.
type MatrixLiteral struct {
	rows [][]Node
}

// Rows returns the element expressions by row.
func (n *MatrixLiteral) Rows() [][]Node { return n.rows }

// RangeExpr is start:end or start:step:end.
type RangeExpr struct {
	start, step, end Node
}

// Arguments is a call or subscript of an expression that is not a plain
// symbol, as in f(1)(2) or (a)(1).
type Arguments struct {
	object Node
	args   []Node
}

// Assignment defines a name, or with an index, updates part of a value as
// in a(2) = 5.
type Assignment struct {
	name     string
	index    []Node
	value    Node
	cell     *Cell
	implicit bool
}

// Name returns the assigned name.
func (n *Assignment) Name() string { return n.name }

// Index returns the index expressions of an indexed update, or nil.
func (n *Assignment) Index() []Node { return n.index }

// Value returns the assigned expression.
func (n *Assignment) Value() Node { return n.value }

// Implicit reports whether the assignment is the implicit definition of ans
// that wraps a bare expression.
func (n *Assignment) Implicit() bool { return n.implicit }

// FunctionAssignment defines a function as in f(x, y) = x^y.
type FunctionAssignment struct {
	name     string
	params   []string
	cells    []*Cell
	body     Node
	cell     *Cell
	maxDepth int
}

// Name returns the function's name.
func (n *FunctionAssignment) Name() string { return n.name }

// Params returns the parameter names.
func (n *FunctionAssignment) Params() []string { return slices.Clone(n.params) }

// Body returns the function body.
func (n *FunctionAssignment) Body() Node { return n.body }

// Block is a sequence of statements. Statements ending with a semicolon are
// evaluated but hidden from the block's results.
type Block struct {
	items []BlockItem
}

// BlockItem is one statement of a block.
type BlockItem struct {
	Node    Node
	Visible bool
}

// Items returns the statements of the block.
func (n *Block) Items() []BlockItem { return slices.Clone(n.items) }

func (*Constant) precedence() Precedence           { return PrecPrimary }
func (*SymbolRef) precedence() Precedence          { return PrecPrimary }
func (*MatrixLiteral) precedence() Precedence      { return PrecPrimary }
func (*Arguments) precedence() Precedence          { return PrecPrimary }
func (*RangeExpr) precedence() Precedence          { return PrecRange }
func (*Assignment) precedence() Precedence         { return PrecAssignment }
func (*FunctionAssignment) precedence() Precedence { return PrecAssignment }
func (*Block) precedence() Precedence              { return PrecBlock }

// Walk calls f on n and its descendants depth first, parents before
// children. If f returns false, Walk skips the node's children.
func Walk(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	each := func(ns []Node) {
		for _, c := range ns {
			Walk(c, f)
		}
	}
	switch n := n.(type) {
	case *SymbolRef:
		each(n.args)
	case *UnaryOp:
		Walk(n.operand, f)
	case *BinaryOp:
		Walk(n.left, f)
		Walk(n.right, f)
	case *MatrixLiteral:
		for _, row := range n.rows {
			each(row)
		}
	case *RangeExpr:
		Walk(n.start, f)
		Walk(n.step, f)
		Walk(n.end, f)
	case *Arguments:
		Walk(n.object, f)
		each(n.args)
	case *Assignment:
		each(n.index)
		Walk(n.value, f)
	case *FunctionAssignment:
		Walk(n.body, f)
	case *Block:
		for _, it := range n.items {
			Walk(it.Node, f)
		}
	}
}

// Symbols returns the sorted names that n reads from its scope. Parameters
// of function assignments are not free in their bodies, and names are free
// only where they are read, so the target of a plain assignment does not
// count.
func Symbols(n Node) []string {
	seen := make(map[string]bool)
	var visit func(Node, map[string]bool)
	visit = func(n Node, bound map[string]bool) {
		Walk(n, func(n Node) bool {
			switch n := n.(type) {
			case *SymbolRef:
				if !bound[n.name] {
					seen[n.name] = true
				}
			case *Assignment:
				if n.index != nil && !bound[n.name] {
					seen[n.name] = true
				}
			case *FunctionAssignment:
				inner := maps.Clone(bound)
				if inner == nil {
					inner = make(map[string]bool)
				}
				for _, p := range n.params {
					inner[p] = true
				}
				visit(n.body, inner)
				return false
			}
			return true
		})
	}
	visit(n, nil)
	return slices.Sorted(maps.Keys(seen))
}
