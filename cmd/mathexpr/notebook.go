package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/zephyrtronium/mathexpr"
)

// notebook is the YAML form of a workspace read from a file.
type notebook struct {
	// Prec is the precision of numbers in bits. Zero means the default.
	Prec  uint     `yaml:"prec,omitempty"`
	Cells []string `yaml:"cells"`
}

// notebookResult is the YAML form of an evaluated workspace.
type notebookResult struct {
	Cells []cellResult `yaml:"cells"`
}

type cellResult struct {
	ID     int    `yaml:"id"`
	Expr   string `yaml:"expr"`
	Result string `yaml:"result,omitempty"`
	Error  string `yaml:"error,omitempty"`
}

type notebookCmd struct {
	File    string   `arg:"" type:"existingfile" help:"YAML notebook with a list of cells."`
	Replace []string `help:"Replace the cell with the given id after loading. Repeatable." placeholder:"ID=EXPR" sep:"none"`
	Remove  []int    `help:"Remove the cell with the given id after loading. Repeatable." placeholder:"ID"`
	Changed bool     `help:"Print only the cells evaluated by replacements and removals."`
	Digits  int      `default:"14" help:"Significant digits of printed results."`
	Indent  int      `default:"2"  help:"Indentation of the YAML output."`
}

var (
	errNotebook = mathexpr.NewError("invalid notebook")
	errReplace  = mathexpr.NewError(`replacements must be "id=expr"`)
)

func (c *notebookCmd) Run(e *env) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return err
	}
	var nb notebook
	if err := yaml.UnmarshalContext(e.ctx, data, &nb, yaml.Strict()); err != nil {
		return errNotebook.Wrap(err).With(slog.String("file", c.File))
	}

	opts := []mathexpr.WorkspaceOption{mathexpr.WithLogger(e.log.Handler())}
	if nb.Prec != 0 {
		opts = append(opts,
			mathexpr.WithNamespace(mathexpr.DefaultNamespace(mathexpr.WithPrec(nb.Prec))),
			mathexpr.WithParseOptions(mathexpr.Prec(nb.Prec)),
		)
	}
	w := mathexpr.New(opts...)
	for _, src := range nb.Cells {
		w.Append(src)
	}
	l := e.log.With(slog.String("file", c.File))
	l.Info("loaded notebook", slog.Int("cells", w.Len()))
	if w.Len() == 0 {
		l.Warn("notebook has no cells")
	}

	seq := w.UpdateSeq()
	for _, r := range c.Replace {
		k, src, ok := strings.Cut(r, "=")
		id, err := strconv.Atoi(strings.TrimSpace(k))
		if !ok || err != nil {
			return errReplace.With(slog.String("replace", r))
		}
		if old, err := w.Expression(id); err == nil && old == src {
			l.Warn("replacement leaves cell unchanged", slog.Int("id", id))
			continue
		}
		if err := w.Replace(src, id); err != nil {
			return err
		}
	}
	for _, id := range c.Remove {
		if err := w.Remove(id); err != nil {
			return err
		}
	}

	ids := w.IDs()
	if c.Changed {
		ids = w.Changes(seq)
	}
	out := notebookResult{Cells: make([]cellResult, 0, len(ids))}
	fo := mathexpr.FormatOptions{Digits: c.Digits}
	for _, id := range ids {
		out.Cells = append(out.Cells, c.result(w, id, fo))
	}

	var yo []yaml.EncodeOption
	if c.Indent > 0 {
		yo = append(yo, yaml.Indent(c.Indent))
	}
	b, err := yaml.MarshalContext(e.ctx, out, yo...)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(e.stdout, string(b))
	return err
}

func (c *notebookCmd) result(w *mathexpr.Workspace, id int, fo mathexpr.FormatOptions) cellResult {
	r := cellResult{ID: id}
	r.Expr, _ = w.Expression(id)
	v, err := w.Result(id)
	switch {
	case err != nil:
		r.Error = err.Error()
	case v != nil:
		r.Result = v.Format(fo)
	}
	return r
}
