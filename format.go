package mathexpr

import "strings"

func render(n Node, o FormatOptions) string {
	var b strings.Builder
	n.format(&b, &o)
	return b.String()
}

func (n *Constant) String() string { return render(n, FormatOptions{}) }

func (n *Constant) Format(o FormatOptions) string { return render(n, o) }

func (n *SymbolRef) String() string { return render(n, FormatOptions{}) }

func (n *SymbolRef) Format(o FormatOptions) string { return render(n, o) }

func (n *UnaryOp) String() string { return render(n, FormatOptions{}) }

func (n *UnaryOp) Format(o FormatOptions) string { return render(n, o) }

func (n *BinaryOp) String() string { return render(n, FormatOptions{}) }

func (n *BinaryOp) Format(o FormatOptions) string { return render(n, o) }

func (n *MatrixLiteral) String() string { return render(n, FormatOptions{}) }

func (n *MatrixLiteral) Format(o FormatOptions) string { return render(n, o) }

func (n *RangeExpr) String() string { return render(n, FormatOptions{}) }

func (n *RangeExpr) Format(o FormatOptions) string { return render(n, o) }

func (n *Arguments) String() string { return render(n, FormatOptions{}) }

func (n *Arguments) Format(o FormatOptions) string { return render(n, o) }

func (n *Assignment) String() string { return render(n, FormatOptions{}) }

func (n *Assignment) Format(o FormatOptions) string { return render(n, o) }

func (n *FunctionAssignment) String() string { return render(n, FormatOptions{}) }

func (n *FunctionAssignment) Format(o FormatOptions) string { return render(n, o) }

func (n *Block) String() string { return render(n, FormatOptions{}) }

func (n *Block) Format(o FormatOptions) string { return render(n, o) }

// operand writes a child of an operator, parenthesized if the operator
// would otherwise capture it differently when parsed.
func operand(b *strings.Builder, o *FormatOptions, child Node, prec Precedence, assoc Associativity, right bool) {
	cp := child.precedence()
	if c, ok := child.(*Constant); ok && strings.HasPrefix(c.text, "-") {
		cp = PrecUnary
	}
	paren := cp < prec
	if cp == prec {
		switch assoc {
		case AssocLeft:
			paren = right
		case AssocRight:
			paren = !right
		default:
			paren = true
		}
	}
	if paren {
		b.WriteByte('(')
	}
	child.format(b, o)
	if paren {
		b.WriteByte(')')
	}
}

// list writes the elements of an argument list or matrix row. Elements are
// parsed as ranges, so assignments need parentheses.
func list(b *strings.Builder, o *FormatOptions, ns []Node) {
	for i, n := range ns {
		if i > 0 {
			b.WriteString(", ")
		}
		operand(b, o, n, PrecRange, AssocLeft, false)
	}
}

func (n *Constant) format(b *strings.Builder, o *FormatOptions) {
	if o.Digits != 0 && n.value != nil {
		if _, ok := n.value.(Number); ok {
			b.WriteString(n.value.Format(*o))
			return
		}
	}
	b.WriteString(n.text)
}

func (n *SymbolRef) format(b *strings.Builder, o *FormatOptions) {
	b.WriteString(n.name)
	if n.call {
		b.WriteByte('(')
		list(b, o, n.args)
		b.WriteByte(')')
	}
}

func (n *UnaryOp) format(b *strings.Builder, o *FormatOptions) {
	if n.op == "!" {
		operand(b, o, n.operand, PrecFactorial, AssocLeft, false)
		b.WriteByte('!')
		return
	}
	b.WriteString(n.op)
	operand(b, o, n.operand, PrecUnary, AssocRight, true)
}

func (n *BinaryOp) format(b *strings.Builder, o *FormatOptions) {
	prec, assoc := n.Precedence(), n.Associativity()
	operand(b, o, n.left, prec, assoc, false)
	switch op := n.op; {
	case op == "^":
		b.WriteString(op)
	case o.Alt && op == "*":
		b.WriteString(" × ")
	case o.Alt && op == "/":
		b.WriteString(" ÷ ")
	default:
		b.WriteString(" " + op + " ")
	}
	operand(b, o, n.right, prec, assoc, true)
}

func (n *MatrixLiteral) format(b *strings.Builder, o *FormatOptions) {
	b.WriteByte('[')
	for i, row := range n.rows {
		if i > 0 {
			b.WriteString("; ")
		}
		list(b, o, row)
	}
	b.WriteByte(']')
}

func (n *RangeExpr) format(b *strings.Builder, o *FormatOptions) {
	operand(b, o, n.start, PrecRange, AssocNone, false)
	if n.step != nil {
		b.WriteByte(':')
		operand(b, o, n.step, PrecRange, AssocNone, true)
	}
	b.WriteByte(':')
	operand(b, o, n.end, PrecRange, AssocNone, true)
}

func (n *Arguments) format(b *strings.Builder, o *FormatOptions) {
	if _, ok := n.object.(*Constant); ok {
		b.WriteByte('(')
		n.object.format(b, o)
		b.WriteByte(')')
	} else {
		operand(b, o, n.object, PrecPrimary, AssocLeft, false)
	}
	b.WriteByte('(')
	list(b, o, n.args)
	b.WriteByte(')')
}

func (n *Assignment) format(b *strings.Builder, o *FormatOptions) {
	if n.implicit && !o.Ans {
		n.value.format(b, o)
		return
	}
	b.WriteString(n.name)
	if n.index != nil {
		b.WriteByte('(')
		list(b, o, n.index)
		b.WriteByte(')')
	}
	b.WriteString(" = ")
	if _, ok := n.value.(*FunctionAssignment); ok {
		b.WriteByte('(')
		n.value.format(b, o)
		b.WriteByte(')')
		return
	}
	n.value.format(b, o)
}

func (n *FunctionAssignment) format(b *strings.Builder, o *FormatOptions) {
	b.WriteString("function ")
	b.WriteString(n.name)
	b.WriteByte('(')
	b.WriteString(strings.Join(n.params, ", "))
	b.WriteString(") = ")
	operand(b, o, n.body, PrecRange, AssocLeft, false)
}

func (n *Block) format(b *strings.Builder, o *FormatOptions) {
	for i, it := range n.items {
		it.Node.format(b, o)
		if !it.Visible {
			b.WriteByte(';')
		}
		if i < len(n.items)-1 {
			if it.Visible {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		}
	}
}
