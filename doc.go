// Package mathexpr implements an arbitrary-precision math expression engine.
//
// The syntax is meant to look like math written in notes or a calculator.
// "-2^2^n" is the same as "-(2^(2^n))". Numbers may carry units, as in
// "5 cm in inch", and "2i" is imaginary. Matrices are written "[1, 2; 3, 4]"
// and indexed from 1 with "m(2, 1)". "f(x) = x^2" defines a function and
// "a = 3; a * 4" is a block whose visible results are collected in order.
//
// Parsing binds every name to a cell in a Scope, so a parsed expression can
// be evaluated many times as the definitions it reads change. Names no scope
// defines come from a Namespace. Operators are functions in the namespace
// too, so DefaultNamespace can be extended or trimmed to change them.
//
// A Workspace is a list of expressions, each seeing the definitions of the
// ones before it. Editing one expression re-evaluates only the later
// expressions that depend on it.
package mathexpr
