package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"strings"

	"github.com/zephyrtronium/mathexpr"
)

// evalCmd evaluates expressions in one scope, so each sees the definitions
// of the ones before it.
type evalCmd struct {
	Prec   uint     `default:"128" help:"Precision of numbers in bits."`
	Digits int      `default:"14"  help:"Significant digits of printed results."`
	Echo   bool     `              help:"Print each parsed expression before its result."`
	Given  []string `              help:"Define a name before evaluating, as name=expr. Repeatable." placeholder:"NAME=EXPR" sep:"none"`

	Exprs []string `arg:"" optional:"" help:"Expressions to evaluate. Lines of stdin are read if none are given." sep:"none"`
}

var errGiven = mathexpr.NewError(`definitions must be "name=expr"`)

func (c *evalCmd) Run(e *env) error {
	if c.Prec == 0 {
		c.Prec = mathexpr.DefaultPrec
	}
	s := mathexpr.NewScope(mathexpr.DefaultNamespace(mathexpr.WithPrec(c.Prec)))
	opts := []mathexpr.ParseOption{mathexpr.Prec(c.Prec)}
	fo := mathexpr.FormatOptions{Digits: c.Digits}

	for _, g := range c.Given {
		name, src, ok := strings.Cut(g, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return errGiven.With(slog.String("given", g))
		}
		n, err := mathexpr.Parse(src, s.Child(), opts...)
		if err != nil {
			return errFailed.Wrap(err).With(slog.String("given", name))
		}
		v, err := n.Eval()
		if err != nil {
			return errFailed.Wrap(err).With(slog.String("given", name))
		}
		s.Set(name, v)
		e.log.Debug("given", slog.String("name", name), slog.String("value", v.String()))
	}

	exprs := c.Exprs
	if len(exprs) == 0 {
		sc := bufio.NewScanner(e.stdin)
		for sc.Scan() {
			if line := strings.TrimSpace(sc.Text()); line != "" {
				exprs = append(exprs, line)
			}
		}
		if err := sc.Err(); err != nil {
			return err
		}
	}

	failed := 0
	for _, src := range exprs {
		n, err := mathexpr.Parse(src, s, opts...)
		if err != nil {
			fmt.Fprintln(e.stdout, "Error:", err)
			failed++
			continue
		}
		if c.Echo {
			fmt.Fprint(e.stdout, n.Format(fo), " : ")
		}
		v, err := n.Eval()
		if err != nil {
			fmt.Fprintln(e.stdout, "Error:", err)
			e.log.Debug("evaluation failed", slog.String("expr", src), slog.Any("error", err))
			failed++
			continue
		}
		fmt.Fprintln(e.stdout, v.Format(fo))
	}
	if failed > 0 {
		return errFailed.With(slog.Int("failed", failed), slog.Int("total", len(exprs)))
	}
	return nil
}
