package mathexpr

import (
	"slices"
	"strconv"
)

// Block     = Statement { (';' | '\n') Statement }
// Statement = FuncDef | Assign
// FuncDef   = ['function'] name '(' [name { ',' name }] ')' '=' Range
// Assign    = Range [ '=' Assign ]
// Range     = Cond [ ':' Cond [ ':' Cond ] ]
// Cond      = Cmp { ('in' | '&' | '|') Cmp }
// Cmp       = Add { ('==' | '!=' | '<' | '>' | '<=' | '>=') Add }
// Add       = Mul { ('+' | '-') Mul }
// Mul       = Unary { ('*' | '/' | '%') Unary }
// Unary     = '-' Unary | Pow
// Pow       = Fact { '^' (Fact | '-' Pow) }
// Fact      = Primary { '!' }
// Primary   = name [Args] {Args} | string {Args} | Matrix {Args}
//           | num [unit | 'i'] | '(' Statement ')' {Args}
// Args      = '(' [Range { ',' Range }] ')'
// Matrix    = '[' [Range { ',' Range } { ';' Range { ',' Range } }] ']'

// operator describes a binary operator.
type operator struct {
	prec  Precedence
	right bool
	fn    string
}

var binops = map[string]operator{
	"in": {PrecConditional, false, "in"},
	"&":  {PrecConditional, false, "and"},
	"|":  {PrecConditional, false, "or"},
	"==": {PrecComparison, false, "equal"},
	"!=": {PrecComparison, false, "unequal"},
	"<":  {PrecComparison, false, "smaller"},
	">":  {PrecComparison, false, "larger"},
	"<=": {PrecComparison, false, "smallerEq"},
	">=": {PrecComparison, false, "largerEq"},
	"+":  {PrecAdditive, false, "add"},
	"-":  {PrecAdditive, false, "subtract"},
	"*":  {PrecMultiplicative, false, "multiply"},
	"/":  {PrecMultiplicative, false, "divide"},
	"%":  {PrecMultiplicative, false, "mod"},
	"^":  {PrecPower, true, "pow"},
}

// Parse parses src in scope. Names the expression defines are defined in
// scope and names it reads are linked through scope, so evaluating the
// result reads and writes the scope's cells. If scope is nil, Parse uses a
// new root scope with the default namespace.
//
// If parsing fails, scope is left as it was and the error is a *SyntaxError.
func Parse(src string, scope *Scope, opts ...ParseOption) (Node, error) {
	cfg := makeParseConfig(opts)
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	if scope == nil {
		scope = NewScope(nil)
	}
	ns := scope.Namespace()
	if cfg.prec == 0 {
		cfg.prec = DefaultPrec
		if pr, ok := ns.(interface{ Prec() uint }); ok {
			cfg.prec = pr.Prec()
		}
	}
	p := parser{toks: toks, tok: toks[0], cfg: cfg, ns: ns}
	st := scope.save()
	n, err := p.parseBlock(scope)
	if err != nil {
		scope.restore(st)
		return nil, err
	}
	return n, nil
}

// MustParse is like Parse but panics if the expression cannot be parsed.
func MustParse(src string, scope *Scope, opts ...ParseOption) Node {
	n, err := Parse(src, scope, opts...)
	if err != nil {
		panic("mathexpr: " + err.Error())
	}
	return n
}

type parser struct {
	toks []token
	i    int
	tok  token
	// nest is the bracket depth. Newlines inside brackets are skipped.
	nest  int
	depth int
	cfg   parseConfig
	ns    Namespace
}

// advance moves to the next token.
func (p *parser) advance() {
	for {
		if p.i < len(p.toks)-1 {
			p.i++
		}
		p.tok = p.toks[p.i]
		if p.nest == 0 || !p.isDelim("\n") {
			return
		}
	}
}

// open consumes an opening bracket.
func (p *parser) open() {
	p.nest++
	p.advance()
}

// close consumes a closing bracket, reporting an error if the current token
// is not want.
func (p *parser) close(want string) error {
	if !p.isDelim(want) {
		return p.expected(want)
	}
	p.nest--
	p.advance()
	return nil
}

func (p *parser) isDelim(text string) bool {
	return p.tok.kind == tokenDelim && p.tok.text == text
}

// peek returns the token n positions ahead, skipping newlines inside
// brackets counting from the current nesting.
func (p *parser) peek(n int) token {
	nest := p.nest
	i := p.i
	for n > 0 && i < len(p.toks)-1 {
		i++
		t := p.toks[i]
		if t.kind == tokenDelim {
			switch t.text {
			case "(", "[":
				nest++
			case ")", "]":
				nest--
			case "\n":
				if nest > 0 {
					continue
				}
			}
		}
		n--
	}
	return p.toks[i]
}

func (p *parser) errorf(tok token, msg string) error {
	return &SyntaxError{Msg: msg, Token: tok.text, Row: tok.row, Col: tok.col}
}

// unexpected creates an error for the current token.
func (p *parser) unexpected() error {
	t := p.tok
	switch t.kind {
	case tokenEOF:
		return p.errorf(t, "unexpected end of expression")
	case tokenString:
		return p.errorf(t, "unexpected string "+strconv.Quote(t.text))
	case tokenDelim:
		if t.text == "\n" {
			return p.errorf(t, "unexpected newline")
		}
		return p.errorf(t, "unexpected operator "+strconv.Quote(t.text))
	}
	return p.errorf(t, "unexpected "+t.kind.String()+" "+strconv.Quote(t.text))
}

func (p *parser) expected(what string) error {
	if p.tok.kind == tokenEOF {
		return p.errorf(p.tok, strconv.Quote(what)+" expected, got end of expression")
	}
	return p.errorf(p.tok, strconv.Quote(what)+" expected, got "+strconv.Quote(p.tok.text))
}

// enter increases the nesting depth, failing if it exceeds the limit.
func (p *parser) enter() error {
	p.depth++
	if p.depth > p.cfg.maxDepth {
		return p.errorf(p.tok, "expression nested more than "+strconv.Itoa(p.cfg.maxDepth)+" levels deep")
	}
	return nil
}

func (p *parser) leave() {
	p.depth--
}

// restoreDepth resets the nesting depth after a loop that entered once per
// operator it folded.
func (p *parser) restoreDepth(depth int) {
	p.depth = depth
}

// fn resolves the function implementing an operator.
func (p *parser) fn(name string) Func {
	v, ok := p.ns.Lookup(name)
	if !ok {
		return nil
	}
	f, _ := v.(Func)
	return f
}

func (p *parser) binary(op string, left, right Node) Node {
	o := binops[op]
	return &BinaryOp{op: op, fn: o.fn, f: p.fn(o.fn), left: left, right: right}
}

func (p *parser) unary(op string, x Node) Node {
	name := "unaryminus"
	if op == "!" {
		name = "factorial"
	}
	return &UnaryOp{op: op, fn: name, f: p.fn(name), operand: x}
}

func (p *parser) parseBlock(s *Scope) (Node, error) {
	var items []BlockItem
	for {
		for p.isDelim(";") || p.isDelim("\n") {
			p.advance()
		}
		if p.tok.kind == tokenEOF {
			break
		}
		n, err := p.parseAns(s)
		if err != nil {
			return nil, err
		}
		it := BlockItem{Node: n, Visible: true}
		switch {
		case p.isDelim(";"):
			it.Visible = false
			p.advance()
		case p.isDelim("\n"):
			p.advance()
		case p.tok.kind == tokenEOF:
		default:
			return nil, p.unexpected()
		}
		items = append(items, it)
	}
	if len(items) == 1 && items[0].Visible {
		return items[0].Node, nil
	}
	return &Block{items: items}, nil
}

// parseAns wraps a bare expression in an implicit definition of ans.
func (p *parser) parseAns(s *Scope) (Node, error) {
	n, err := p.parseFunctionAssignment(s)
	if err != nil {
		return nil, err
	}
	switch n.(type) {
	case *Assignment, *FunctionAssignment:
		return n, nil
	}
	return &Assignment{name: "ans", value: n, cell: s.CreateDef("ans"), implicit: true}, nil
}

// isFunctionHeader reports whether the tokens starting at the current one
// are the left side of a function assignment, and whether the keyword form
// is used.
func (p *parser) isFunctionHeader() (ok, keyword bool) {
	k := 0
	if p.tok.kind == tokenSymbol && p.tok.text == "function" && p.peek(1).kind == tokenSymbol {
		keyword = true
		k = 1
	}
	if p.peek(k).kind != tokenSymbol {
		return false, false
	}
	if t := p.peek(k + 1); t.kind != tokenDelim || t.text != "(" {
		return false, false
	}
	k += 2
	if t := p.peek(k); t.kind == tokenDelim && t.text == ")" {
		k++
	} else {
		for {
			if p.peek(k).kind != tokenSymbol {
				return false, false
			}
			t := p.peek(k + 1)
			if t.kind != tokenDelim {
				return false, false
			}
			k += 2
			if t.text == ")" {
				break
			}
			if t.text != "," {
				return false, false
			}
		}
	}
	t := p.peek(k)
	if t.kind == tokenDelim && t.text == "=" {
		return true, keyword
	}
	return keyword, keyword
}

func (p *parser) parseFunctionAssignment(s *Scope) (Node, error) {
	ok, keyword := p.isFunctionHeader()
	if !ok {
		return p.parseAssignment(s)
	}
	if keyword {
		p.advance()
	}
	if p.tok.kind != tokenSymbol {
		return nil, p.unexpected()
	}
	name := p.tok.text
	p.advance()
	if !p.isDelim("(") {
		return nil, p.expected("(")
	}
	p.open()
	var params []string
	for p.tok.kind == tokenSymbol {
		if slices.Contains(params, p.tok.text) {
			return nil, p.errorf(p.tok, "duplicate parameter "+p.tok.text+" in function "+name)
		}
		params = append(params, p.tok.text)
		p.advance()
		if !p.isDelim(",") {
			break
		}
		p.advance()
	}
	if err := p.close(")"); err != nil {
		return nil, err
	}
	if !p.isDelim("=") {
		return nil, p.expected("=")
	}
	p.advance()

	inner := s.Nested()
	cells := make([]*Cell, len(params))
	for i, name := range params {
		cells[i] = inner.CreateDef(name)
	}
	body, err := p.parseRange(inner)
	if err != nil {
		return nil, err
	}
	return &FunctionAssignment{
		name:     name,
		params:   params,
		cells:    cells,
		body:     body,
		cell:     s.CreateDef(name),
		maxDepth: p.cfg.maxCallDepth,
	}, nil
}

func (p *parser) parseAssignment(s *Scope) (Node, error) {
	linked := false
	if p.tok.kind == tokenSymbol {
		_, linked = s.links[p.tok.text]
	}
	n, err := p.parseRange(s)
	if err != nil {
		return nil, err
	}
	if !p.isDelim("=") {
		return n, nil
	}
	sym, ok := n.(*SymbolRef)
	if !ok || sym.call && len(sym.args) == 0 {
		return nil, p.errorf(p.tok, "invalid assignment target "+n.String())
	}
	if !linked {
		// Reading the target while parsing it isn't a real read.
		s.RemoveLink(sym.name)
	}
	p.advance()
	value, err := p.parseAssignment(s)
	if err != nil {
		return nil, err
	}
	if sym.call {
		return &Assignment{name: sym.name, index: sym.args, value: value, cell: s.CreateUpdate(sym.name)}, nil
	}
	return &Assignment{name: sym.name, value: value, cell: s.CreateDef(sym.name)}, nil
}

func (p *parser) parseRange(s *Scope) (Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()
	n, err := p.parseConditions(s)
	if err != nil {
		return nil, err
	}
	if !p.isDelim(":") {
		return n, nil
	}
	parts := []Node{n}
	for p.isDelim(":") {
		if len(parts) == 3 {
			return nil, p.errorf(p.tok, "a range has at most three parts")
		}
		p.advance()
		n, err := p.parseConditions(s)
		if err != nil {
			return nil, err
		}
		parts = append(parts, n)
	}
	if len(parts) == 3 {
		return &RangeExpr{start: parts[0], step: parts[1], end: parts[2]}, nil
	}
	return &RangeExpr{start: parts[0], end: parts[1]}, nil
}

// leftAssoc parses a left-associative chain of operators of precedence
// prec whose operands are parsed by next. Each operator in the chain counts
// as a level of nesting.
func (p *parser) leftAssoc(s *Scope, prec Precedence, next func(*Scope) (Node, error)) (Node, error) {
	defer p.restoreDepth(p.depth)
	n, err := next(s)
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.binaryOperator()
		if !ok || binops[op].prec != prec {
			return n, nil
		}
		p.advance()
		if err := p.enter(); err != nil {
			return nil, err
		}
		r, err := next(s)
		if err != nil {
			return nil, err
		}
		n = p.binary(op, n, r)
	}
}

// binaryOperator returns the current token as a binary operator.
func (p *parser) binaryOperator() (string, bool) {
	switch p.tok.kind {
	case tokenDelim:
		_, ok := binops[p.tok.text]
		return p.tok.text, ok
	case tokenSymbol:
		return "in", p.tok.text == "in"
	}
	return "", false
}

func (p *parser) parseConditions(s *Scope) (Node, error) {
	return p.leftAssoc(s, PrecConditional, p.parseComparison)
}

func (p *parser) parseComparison(s *Scope) (Node, error) {
	return p.leftAssoc(s, PrecComparison, p.parseAdditive)
}

func (p *parser) parseAdditive(s *Scope) (Node, error) {
	return p.leftAssoc(s, PrecAdditive, p.parseMultiplicative)
}

func (p *parser) parseMultiplicative(s *Scope) (Node, error) {
	return p.leftAssoc(s, PrecMultiplicative, p.parseUnary)
}

func (p *parser) parseUnary(s *Scope) (Node, error) {
	if !p.isDelim("-") {
		return p.parsePow(s)
	}
	p.advance()
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()
	x, err := p.parseUnary(s)
	if err != nil {
		return nil, err
	}
	return p.unary("-", x), nil
}

// parsePow collects the operands of a chain of ^ and folds them from the
// right. A minus sign after ^ negates the rest of the chain.
func (p *parser) parsePow(s *Scope) (Node, error) {
	defer p.restoreDepth(p.depth)
	n, err := p.parseFactorial(s)
	if err != nil {
		return nil, err
	}
	ops := []Node{n}
	for p.isDelim("^") {
		p.advance()
		if err := p.enter(); err != nil {
			return nil, err
		}
		if p.isDelim("-") {
			p.advance()
			if err := p.enter(); err != nil {
				return nil, err
			}
			x, err := p.parsePow(s)
			p.leave()
			if err != nil {
				return nil, err
			}
			ops = append(ops, p.unary("-", x))
			break
		}
		x, err := p.parseFactorial(s)
		if err != nil {
			return nil, err
		}
		ops = append(ops, x)
	}
	n = ops[len(ops)-1]
	for i := len(ops) - 2; i >= 0; i-- {
		n = p.binary("^", ops[i], n)
	}
	return n, nil
}

func (p *parser) parseFactorial(s *Scope) (Node, error) {
	n, err := p.parsePrimary(s)
	if err != nil {
		return nil, err
	}
	defer p.restoreDepth(p.depth)
	for p.isDelim("!") {
		if err := p.enter(); err != nil {
			return nil, err
		}
		p.advance()
		n = p.unary("!", n)
	}
	return n, nil
}

func (p *parser) parsePrimary(s *Scope) (Node, error) {
	tok := p.tok
	switch tok.kind {
	case tokenNum:
		return p.parseNumber()
	case tokenString:
		p.advance()
		return p.parseArguments(s, &Constant{value: String(tok.text), text: quote(tok.text)})
	case tokenSymbol:
		p.advance()
		n := &SymbolRef{name: tok.text, cell: s.CreateLink(tok.text)}
		if p.isDelim("(") {
			args, err := p.parseArgs(s)
			if err != nil {
				return nil, err
			}
			n.args = args
			n.call = true
		}
		return p.parseArguments(s, n)
	case tokenDelim:
		switch tok.text {
		case "(":
			p.open()
			n, err := p.parseFunctionAssignment(s)
			if err != nil {
				return nil, err
			}
			if err := p.close(")"); err != nil {
				return nil, err
			}
			return p.parseArguments(s, n)
		case "[":
			n, err := p.parseMatrix(s)
			if err != nil {
				return nil, err
			}
			return p.parseArguments(s, n)
		}
	}
	return nil, p.unexpected()
}

// parseNumber parses a number literal and an optional unit or imaginary
// suffix.
func (p *parser) parseNumber() (Node, error) {
	tok := p.tok
	x, err := ParseNumber(tok.text, p.cfg.prec)
	if err != nil {
		return nil, p.errorf(tok, "invalid number "+strconv.Quote(tok.text))
	}
	p.advance()
	if p.tok.kind != tokenSymbol {
		return &Constant{value: x, text: tok.text}, nil
	}
	suffix := p.tok.text
	if suffix == "i" {
		p.advance()
		return &Constant{value: Complex{newFloat(p.cfg.prec), x.x}, text: tok.text + "i"}, nil
	}
	if !p.ns.IsUnit(suffix) {
		return &Constant{value: x, text: tok.text}, nil
	}
	uv, _ := p.ns.Unit(suffix)
	u, ok := uv.(Unit)
	if !ok {
		return nil, p.errorf(p.tok, "invalid unit "+suffix)
	}
	p.advance()
	return &Constant{value: u.WithValue(x.x), text: tok.text + " " + suffix}, nil
}

// parseArgs parses a parenthesized argument list.
func (p *parser) parseArgs(s *Scope) ([]Node, error) {
	p.open()
	args := []Node{}
	if p.isDelim(")") {
		p.nest--
		p.advance()
		return args, nil
	}
	for {
		n, err := p.parseRange(s)
		if err != nil {
			return nil, err
		}
		args = append(args, n)
		if !p.isDelim(",") {
			break
		}
		p.advance()
	}
	if err := p.close(")"); err != nil {
		return nil, err
	}
	return args, nil
}

// parseArguments parses any argument lists following a primary expression.
func (p *parser) parseArguments(s *Scope, n Node) (Node, error) {
	defer p.restoreDepth(p.depth)
	for p.isDelim("(") {
		if err := p.enter(); err != nil {
			return nil, err
		}
		args, err := p.parseArgs(s)
		if err != nil {
			return nil, err
		}
		n = &Arguments{object: n, args: args}
	}
	return n, nil
}

func (p *parser) parseMatrix(s *Scope) (Node, error) {
	p.open()
	m := &MatrixLiteral{}
	if p.isDelim("]") {
		p.nest--
		p.advance()
		return m, nil
	}
	var row []Node
	for {
		n, err := p.parseRange(s)
		if err != nil {
			return nil, err
		}
		row = append(row, n)
		switch {
		case p.isDelim(","):
			p.advance()
			continue
		case p.isDelim(";"):
			if err := p.addRow(m, row); err != nil {
				return nil, err
			}
			row = nil
			p.advance()
			continue
		}
		break
	}
	if err := p.addRow(m, row); err != nil {
		return nil, err
	}
	if err := p.close("]"); err != nil {
		return nil, err
	}
	return m, nil
}

func (p *parser) addRow(m *MatrixLiteral, row []Node) error {
	if len(m.rows) > 0 && len(m.rows[0]) != len(row) {
		return p.errorf(p.tok, "column dimensions mismatch ("+strconv.Itoa(len(m.rows[0]))+" != "+strconv.Itoa(len(row))+")")
	}
	m.rows = append(m.rows, row)
	return nil
}
