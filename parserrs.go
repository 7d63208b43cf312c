package mathexpr

import "strconv"

// SyntaxError is an error indicating input that cannot be parsed. It
// implements InputError.
type SyntaxError struct {
	// Msg describes the problem.
	Msg string
	// Token is the text of the offending token, if any.
	Token string
	// Row and Col are the 1-based position of the offending token, counted
	// in runes.
	Row, Col int
}

func (err *SyntaxError) Error() string {
	return errpos(err.Row, err.Col, err.Msg)
}

// Pos returns the row and column of the error.
func (err *SyntaxError) Pos() (row, col int) {
	return err.Row, err.Col
}

// errpos is a shortcut to create an error message with a position.
func errpos(row, col int, msg string) string {
	return strconv.Itoa(row) + ":" + strconv.Itoa(col) + ": " + msg
}

// InputError is an error with position information. Every error resulting
// from invalid input implements InputError.
type InputError interface {
	error
	// Pos returns the position of the start of the token that caused the
	// error. Rows and columns begin at 1.
	Pos() (row, col int)
}

var _ InputError = (*SyntaxError)(nil)
