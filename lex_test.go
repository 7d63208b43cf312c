package mathexpr

import (
	"errors"
	"slices"
	"testing"
)

func TestLex(t *testing.T) {
	tk := func(kind tokenKind, text string, row, col int) token {
		return token{text: text, kind: kind, row: row, col: col}
	}
	eof := func(row, col int) token { return tk(tokenEOF, "", row, col) }
	cases := []struct {
		name string
		src  string
		want []token
	}{
		{"empty", "", []token{eof(1, 1)}},
		{"spaces", " \t\r ", []token{eof(1, 5)}},
		{"int", "9876543210", []token{tk(tokenNum, "9876543210", 1, 1), eof(1, 11)}},
		{"dec", "1.5", []token{tk(tokenNum, "1.5", 1, 1), eof(1, 4)}},
		{"leading-dot", ".5", []token{tk(tokenNum, ".5", 1, 1), eof(1, 3)}},
		{"exp", "1.5e3", []token{tk(tokenNum, "1.5e3", 1, 1), eof(1, 6)}},
		{"exp-sign", "1e-3", []token{tk(tokenNum, "1e-3", 1, 1), eof(1, 5)}},
		{"exp-unit", "2em", []token{tk(tokenNum, "2", 1, 1), tk(tokenSymbol, "em", 1, 2), eof(1, 4)}},
		{"exp-dangling", "1e-", []token{tk(tokenNum, "1", 1, 1), tk(tokenSymbol, "e", 1, 2), tk(tokenDelim, "-", 1, 3), eof(1, 4)}},
		{"two-dots", "1.2.3", []token{tk(tokenNum, "1.2", 1, 1), tk(tokenNum, ".3", 1, 4), eof(1, 6)}},
		{"symbol", "_x1", []token{tk(tokenSymbol, "_x1", 1, 1), eof(1, 4)}},
		{"add", "1 + 2", []token{tk(tokenNum, "1", 1, 1), tk(tokenDelim, "+", 1, 3), tk(tokenNum, "2", 1, 5), eof(1, 6)}},
		{"compare", "a <= b", []token{tk(tokenSymbol, "a", 1, 1), tk(tokenDelim, "<=", 1, 3), tk(tokenSymbol, "b", 1, 6), eof(1, 7)}},
		{"not-equal", "a!=b", []token{tk(tokenSymbol, "a", 1, 1), tk(tokenDelim, "!=", 1, 2), tk(tokenSymbol, "b", 1, 4), eof(1, 5)}},
		{"factorial", "3!", []token{tk(tokenNum, "3", 1, 1), tk(tokenDelim, "!", 1, 2), eof(1, 3)}},
		{"alt-mul", "3×4", []token{tk(tokenNum, "3", 1, 1), tk(tokenDelim, "*", 1, 2), tk(tokenNum, "4", 1, 3), eof(1, 4)}},
		{"alt-div", "3÷4", []token{tk(tokenNum, "3", 1, 1), tk(tokenDelim, "/", 1, 2), tk(tokenNum, "4", 1, 3), eof(1, 4)}},
		{"call", "f(x, y)", []token{
			tk(tokenSymbol, "f", 1, 1), tk(tokenDelim, "(", 1, 2), tk(tokenSymbol, "x", 1, 3),
			tk(tokenDelim, ",", 1, 4), tk(tokenSymbol, "y", 1, 6), tk(tokenDelim, ")", 1, 7), eof(1, 8),
		}},
		{"newline", "x\ny", []token{tk(tokenSymbol, "x", 1, 1), tk(tokenDelim, "\n", 1, 2), tk(tokenSymbol, "y", 2, 1), eof(2, 2)}},
		{"comment", "# note\n1", []token{tk(tokenDelim, "\n", 1, 7), tk(tokenNum, "1", 2, 1), eof(2, 2)}},
		{"string", `"a\"b"`, []token{tk(tokenString, `a"b`, 1, 1), eof(1, 7)}},
		{"string-escapes", `"\n\t\\"`, []token{tk(tokenString, "\n\t\\", 1, 1), eof(1, 9)}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := lex(c.src)
			if err != nil {
				t.Fatalf("lexing %q: %v", c.src, err)
			}
			if !slices.Equal(got, c.want) {
				t.Errorf("lexing %q:\n\twant %v\n\tgot  %v", c.src, c.want, got)
			}
		})
	}
}

func TestLexErrors(t *testing.T) {
	cases := []struct {
		name     string
		src      string
		tok      string
		row, col int
	}{
		{"dollar", "$", "$", 1, 1},
		{"dollar-word", "a $b", "$b", 1, 3},
		{"second-line", "1\n  @x + 1", "@x", 2, 3},
		{"unterminated", `1 + "abc`, `"abc`, 1, 5},
		{"bad-escape", `"\q"`, `\q`, 1, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			toks, err := lex(c.src)
			if toks != nil {
				t.Errorf("lexing %q gave tokens %v", c.src, toks)
			}
			var serr *SyntaxError
			if !errors.As(err, &serr) {
				t.Fatalf("lexing %q gave %#v, not a *SyntaxError", c.src, err)
			}
			if serr.Token != c.tok {
				t.Errorf("wrong token: want %q, got %q", c.tok, serr.Token)
			}
			if row, col := serr.Pos(); row != c.row || col != c.col {
				t.Errorf("wrong position: want %d:%d, got %d:%d", c.row, c.col, row, col)
			}
		})
	}
}

func TestQuote(t *testing.T) {
	cases := []string{"", "plain", `say "hi"`, `back\slash`, "two\nlines", "tab\there"}
	for _, s := range cases {
		toks, err := lex(quote(s))
		if err != nil {
			t.Errorf("quote(%q) = %s does not lex: %v", s, quote(s), err)
			continue
		}
		if toks[0].kind != tokenString || toks[0].text != s {
			t.Errorf("quote(%q) = %s lexes as %v", s, quote(s), toks[0])
		}
	}
}
