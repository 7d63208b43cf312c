package mathexpr

import (
	"strconv"
	"strings"
)

type token struct {
	text string
	kind tokenKind
	row  int
	col  int
}

func (t token) String() string {
	return t.kind.String() + ":" + strconv.Quote(t.text) + "@" + strconv.Itoa(t.row) + ":" + strconv.Itoa(t.col)
}

type tokenKind int

const (
	tokenNone tokenKind = iota
	// tokenEOF indicates the end of the input.
	tokenEOF
	// tokenNum is a number literal.
	tokenNum
	// tokenSymbol is a variable, function, unit, or keyword name.
	tokenSymbol
	// tokenDelim is an operator, bracket, or separator, including newlines.
	tokenDelim
	// tokenString is a string literal. Its text is the decoded contents.
	tokenString
)

func (k tokenKind) String() string {
	switch k {
	case tokenEOF:
		return "EOF"
	case tokenNum:
		return "number"
	case tokenSymbol:
		return "symbol"
	case tokenDelim:
		return "delimiter"
	case tokenString:
		return "string"
	}
	return "none"
}

// Delimiters contains the single-rune operators, brackets, and separators.
// The two-rune operators == != <= >= are recognized as well.
const Delimiters = "()[];:,\n-&|<>=+/*%^!"

// aliases maps alternative operator runes to their canonical spelling.
var aliases = map[rune]string{
	'×': "*",
	'÷': "/",
}

type lexer struct {
	src []rune
	off int
	row int
	col int
}

// lex scans all tokens in src. The last token is always tokenEOF.
func lex(src string) ([]token, error) {
	l := lexer{src: []rune(src), row: 1, col: 1}
	var toks []token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.kind == tokenEOF {
			return toks, nil
		}
	}
}

// peek returns the next rune without consuming it, or -1 at the end of the
// input.
func (l *lexer) peek() rune {
	if l.off >= len(l.src) {
		return -1
	}
	return l.src[l.off]
}

// readRune consumes a rune and updates the lexer's position info.
func (l *lexer) readRune() rune {
	r := l.peek()
	if r < 0 {
		return r
	}
	l.off++
	if r == '\n' {
		l.row++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

// mark and reset allow backtracking within a line.
func (l *lexer) mark() (int, int) { return l.off, l.col }

func (l *lexer) reset(off, col int) { l.off, l.col = off, col }

// next scans the next token from the input.
func (l *lexer) next() (token, error) {
	for {
		tok := token{row: l.row, col: l.col}
		r := l.peek()
		switch {
		case r < 0:
			tok.kind = tokenEOF
			return tok, nil
		case r == ' ', r == '\t', r == '\r':
			l.readRune()
		case r == '#':
			for r := l.peek(); r >= 0 && r != '\n'; r = l.peek() {
				l.readRune()
			}
		case isDigit(r), r == '.' && l.off+1 < len(l.src) && isDigit(l.src[l.off+1]):
			tok.kind = tokenNum
			tok.text = l.scanNum()
			return tok, nil
		case isSymbolStart(r):
			tok.kind = tokenSymbol
			tok.text = l.scanSymbol()
			return tok, nil
		case r == '"':
			l.readRune()
			s, err := l.scanString(tok)
			tok.kind = tokenString
			tok.text = s
			return tok, err
		default:
			l.readRune()
			tok.kind = tokenDelim
			if alias, ok := aliases[r]; ok {
				tok.text = alias
				return tok, nil
			}
			if !strings.ContainsRune(Delimiters, r) {
				return tok, l.invalid(tok, r)
			}
			tok.text = string(r)
			switch r {
			case '=', '!', '<', '>':
				if l.peek() == '=' {
					l.readRune()
					tok.text += "="
				}
			}
			return tok, nil
		}
	}
}

func (l *lexer) scanNum() string {
	start := l.off
	for isDigit(l.peek()) {
		l.readRune()
	}
	if l.peek() == '.' {
		l.readRune()
		for isDigit(l.peek()) {
			l.readRune()
		}
	}
	if r := l.peek(); r == 'e' || r == 'E' {
		// The exponent is speculative: 2em is 2 followed by em.
		off, col := l.mark()
		l.readRune()
		if r := l.peek(); r == '+' || r == '-' {
			l.readRune()
		}
		if !isDigit(l.peek()) {
			l.reset(off, col)
		}
		for isDigit(l.peek()) {
			l.readRune()
		}
	}
	return string(l.src[start:l.off])
}

func (l *lexer) scanSymbol() string {
	start := l.off
	for r := l.peek(); isSymbolStart(r) || isDigit(r); r = l.peek() {
		l.readRune()
	}
	return string(l.src[start:l.off])
}

// scanString scans a string literal after its opening quote and returns its
// decoded contents.
func (l *lexer) scanString(tok token) (string, error) {
	var b strings.Builder
	for {
		r := l.readRune()
		switch r {
		case -1:
			return "", &SyntaxError{Msg: "unterminated string", Token: `"` + b.String(), Row: tok.row, Col: tok.col}
		case '"':
			return b.String(), nil
		case '\\':
			e := l.readRune()
			switch e {
			case '"', '\\':
				b.WriteRune(e)
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case -1:
				return "", &SyntaxError{Msg: "unterminated string", Token: `"` + b.String(), Row: tok.row, Col: tok.col}
			default:
				return "", &SyntaxError{Msg: "invalid escape sequence \\" + string(e), Token: `\` + string(e), Row: tok.row, Col: tok.col}
			}
		default:
			b.WriteRune(r)
		}
	}
}

// invalid consumes the rest of a token beginning with the invalid rune r and
// returns an error describing it.
func (l *lexer) invalid(tok token, r rune) error {
	var b strings.Builder
	b.WriteRune(r)
	for r := l.peek(); r >= 0 && !isSpace(r) && !strings.ContainsRune(Delimiters, r); r = l.peek() {
		b.WriteRune(l.readRune())
	}
	return &SyntaxError{
		Msg:   "invalid token " + strconv.Quote(b.String()),
		Token: b.String(),
		Row:   tok.row,
		Col:   tok.col,
	}
}

// quote renders s as a string literal that scans back to s.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isSymbolStart(r rune) bool {
	return r == '_' || 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z'
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}
