package mathexpr

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zephyrtronium/mathexpr/internal/log"
)

// Workspace is an ordered list of expressions, each parsed in its own scope
// chained to the scope of the expression before it. Changing an expression
// re-evaluates exactly the later expressions that depend on names it
// defines. Evaluation errors are stored as results rather than returned.
//
// A Workspace is not safe for concurrent use.
type Workspace struct {
	root  *Scope
	first *cell
	last  *cell
	cells map[int]*cell

	nextID int
	seq    int

	log   log.Logger
	popts []ParseOption
}

// cell is one expression of a workspace.
type cell struct {
	id    int
	expr  string
	scope *Scope
	node  Node
	// parseErr is the error from parsing expr. It is the result of every
	// update of the cell until expr changes.
	parseErr error

	result Value
	err    error
	seq    int

	prev, next *cell
}

// WorkspaceOption configures a Workspace.
type WorkspaceOption func(*Workspace)

// WithNamespace sets the namespace of the workspace's root scope. The
// default is DefaultNamespace().
func WithNamespace(ns Namespace) WorkspaceOption {
	return func(w *Workspace) {
		w.root = NewScope(ns)
	}
}

// WithLogger sets the handler for the workspace's logs. Edits are logged at
// Debug level and evaluations at Trace level.
func WithLogger(h slog.Handler) WorkspaceOption {
	return func(w *Workspace) {
		w.log = log.FromHandler(h)
	}
}

// WithParseOptions sets options used to parse every expression.
func WithParseOptions(opts ...ParseOption) WorkspaceOption {
	return func(w *Workspace) {
		w.popts = append(w.popts, opts...)
	}
}

// New creates an empty workspace.
func New(opts ...WorkspaceOption) *Workspace {
	w := &Workspace{cells: make(map[int]*cell)}
	for _, opt := range opts {
		opt(w)
	}
	if w.root == nil {
		w.root = NewScope(nil)
	}
	return w
}

// Append adds expr to the end of the workspace, evaluates it, and returns
// its id.
func (w *Workspace) Append(expr string) int {
	c := w.add(expr, w.last, nil)
	w.update([]*cell{c})
	return c.id
}

// InsertBefore adds expr before the expression with the given id. The new
// expression and the later expressions that depend on it are evaluated.
func (w *Workspace) InsertBefore(expr string, id int) (int, error) {
	at, err := w.lookup(id)
	if err != nil {
		return 0, err
	}
	c := w.add(expr, at.prev, at)
	w.update(append([]*cell{c}, w.dependents(c)...))
	return c.id, nil
}

// InsertAfter adds expr after the expression with the given id. The new
// expression and the later expressions that depend on it are evaluated.
func (w *Workspace) InsertAfter(expr string, id int) (int, error) {
	at, err := w.lookup(id)
	if err != nil {
		return 0, err
	}
	c := w.add(expr, at, at.next)
	w.update(append([]*cell{c}, w.dependents(c)...))
	return c.id, nil
}

// Replace changes the expression with the given id to expr. The expression
// is evaluated along with every later expression that depended on its old
// content or depends on its new content.
func (w *Workspace) Replace(expr string, id int) error {
	c, err := w.lookup(id)
	if err != nil {
		return err
	}
	w.log.Debug("replace", slog.Int("id", id), slog.String("old", c.expr), slog.String("expr", expr))
	stale := w.dependents(c)
	c.scope.Clear()
	c.expr = expr
	w.parse(c)
	w.update(w.inOrder(c, stale, w.dependents(c)))
	return nil
}

// Remove deletes the expression with the given id. Later expressions that
// depended on it are evaluated again, which may leave them with errors.
func (w *Workspace) Remove(id int) error {
	c, err := w.lookup(id)
	if err != nil {
		return err
	}
	w.log.Debug("remove", slog.Int("id", id), slog.String("expr", c.expr))
	deps := w.dependents(c)
	if c.prev != nil {
		c.prev.next = c.next
	} else {
		w.first = c.next
	}
	if c.next != nil {
		c.next.prev = c.prev
		c.next.scope.SetParent(c.scope.Parent())
	} else {
		w.last = c.prev
	}
	c.prev, c.next = nil, nil
	delete(w.cells, id)
	w.update(deps)
	return nil
}

// Clear removes every expression. Ids and update sequence numbers are not
// reused.
func (w *Workspace) Clear() {
	w.log.Debug("clear", slog.Int("len", len(w.cells)))
	w.first, w.last = nil, nil
	clear(w.cells)
}

// Dependencies returns the ids of the expressions that depend on the
// expression with the given id, directly or transitively, in workspace
// order.
func (w *Workspace) Dependencies(id int) ([]int, error) {
	c, err := w.lookup(id)
	if err != nil {
		return nil, err
	}
	return ids(w.dependents(c)), nil
}

// Changes returns the ids of the expressions evaluated after the update
// numbered seq, in workspace order.
func (w *Workspace) Changes(seq int) []int {
	var r []int
	for c := w.first; c != nil; c = c.next {
		if c.seq > seq {
			r = append(r, c.id)
		}
	}
	return r
}

// Expression returns the text of the expression with the given id.
func (w *Workspace) Expression(id int) (string, error) {
	c, err := w.lookup(id)
	if err != nil {
		return "", err
	}
	return c.expr, nil
}

// Result returns the stored result of the expression with the given id. The
// error is either an ErrCellNotFound error or the error the expression
// produced when last parsed or evaluated.
func (w *Workspace) Result(id int) (Value, error) {
	c, err := w.lookup(id)
	if err != nil {
		return nil, err
	}
	return c.result, c.err
}

// ResultString renders the stored result of the expression with the given
// id. A failed evaluation renders as its error message. The error is
// non-nil only if there is no such expression.
func (w *Workspace) ResultString(id int) (string, error) {
	c, err := w.lookup(id)
	if err != nil {
		return "", err
	}
	if c.err != nil {
		return "Error: " + c.err.Error(), nil
	}
	if c.result == nil {
		return "", nil
	}
	return c.result.Format(FormatOptions{}), nil
}

// IDs returns the ids of all expressions in workspace order.
func (w *Workspace) IDs() []int {
	var r []int
	for c := w.first; c != nil; c = c.next {
		r = append(r, c.id)
	}
	return r
}

// Len returns the number of expressions in the workspace.
func (w *Workspace) Len() int {
	return len(w.cells)
}

// UpdateSeq returns the number of the latest update. Pass it to Changes to
// find the expressions evaluated by later edits.
func (w *Workspace) UpdateSeq() int {
	return w.seq
}

// Scope returns the root scope of the workspace, the parent of the first
// expression's scope.
func (w *Workspace) Scope() *Scope {
	return w.root
}

func (w *Workspace) lookup(id int) (*cell, error) {
	c := w.cells[id]
	if c == nil {
		return nil, ErrCellNotFound.With(slog.Int("id", id))
	}
	return c, nil
}

// add parses expr in a new cell and splices it between prev and next.
func (w *Workspace) add(expr string, prev, next *cell) *cell {
	w.nextID++
	c := &cell{id: w.nextID, expr: expr, prev: prev, next: next}
	parent := w.root
	if prev != nil {
		parent = prev.scope
	}
	c.scope = parent.Child()
	w.log.Debug("add", slog.Int("id", c.id), slog.String("expr", expr))
	w.parse(c)
	if prev != nil {
		prev.next = c
	} else {
		w.first = c
	}
	if next != nil {
		next.prev = c
		next.scope.SetParent(c.scope)
	} else {
		w.last = c
	}
	w.cells[c.id] = c
	return c
}

func (w *Workspace) parse(c *cell) {
	c.node, c.parseErr = Parse(c.expr, c.scope, w.popts...)
	if c.parseErr != nil {
		w.log.Debug("parse failed", slog.Int("id", c.id), slog.Any("error", c.parseErr))
	}
}

// dependents finds the later cells that read or update a name c defines or
// updates, or a name defined by another dependent. A cell that defines a
// name without depending on it hides the earlier definition from the cells
// after it.
func (w *Workspace) dependents(c *cell) []*cell {
	tracked := make(map[string]bool)
	for _, name := range c.scope.Defs() {
		tracked[name] = true
	}
	var deps []*cell
	for d := c.next; d != nil && len(tracked) > 0; d = d.next {
		if reads(d.scope, tracked) {
			deps = append(deps, d)
			for _, name := range d.scope.Defs() {
				tracked[name] = true
			}
			continue
		}
		for name := range tracked {
			if d.scope.HasDef(name) {
				delete(tracked, name)
			}
		}
	}
	return deps
}

func reads(s *Scope, names map[string]bool) bool {
	for name := range names {
		if s.HasLink(name) || s.HasUpdate(name) {
			return true
		}
	}
	return false
}

// inOrder returns c followed by the cells in either list, deduplicated in
// workspace order.
func (w *Workspace) inOrder(c *cell, a, b []*cell) []*cell {
	want := make(map[*cell]bool, len(a)+len(b))
	for _, d := range a {
		want[d] = true
	}
	for _, d := range b {
		want[d] = true
	}
	r := []*cell{c}
	for d := c.next; d != nil && len(r) <= len(want); d = d.next {
		if want[d] {
			r = append(r, d)
		}
	}
	return r
}

// update evaluates cells in order as one update.
func (w *Workspace) update(cells []*cell) {
	w.seq++
	for _, c := range cells {
		c.seq = w.seq
		if c.parseErr != nil {
			c.result, c.err = nil, c.parseErr
			continue
		}
		c.scope.Init()
		c.result, c.err = w.eval(c)
		if c.err != nil {
			w.log.Debug("evaluation failed", slog.Int("id", c.id), slog.Int("seq", w.seq), slog.Any("error", c.err))
			continue
		}
		if w.log.Enabled(context.Background(), log.LevelTrace) {
			w.log.Trace("evaluated", slog.Int("id", c.id), slog.Int("seq", w.seq), slog.String("result", c.result.String()))
		}
	}
}

// eval evaluates the cell's expression. A panic from a namespace function
// becomes the cell's error.
func (w *Workspace) eval(c *cell) (v Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, ErrPanic.Wrap(fmt.Errorf("%v", r)).With(slog.Int("id", c.id))
		}
	}()
	return c.node.Eval()
}

func ids(cells []*cell) []int {
	r := make([]int, len(cells))
	for i, c := range cells {
		r[i] = c.id
	}
	return r
}
