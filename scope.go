package mathexpr

import (
	"maps"
	"slices"

	"github.com/sahilm/fuzzy"
)

// maxSuggestions bounds the "did you mean" list of an UndefinedSymbolError.
const maxSuggestions = 3

// Cell is the storage for one name in one scope. A cell either holds a
// value or reads through a link to the cell defining the name in an
// enclosing scope. Nodes that mention a name share its cell, so assigning
// to a cell is visible to every node that reads it.
type Cell struct {
	name  string
	scope *Scope
	link  *Cell
	value Value
}

// Name returns the name the cell stores.
func (c *Cell) Name() string { return c.name }

// Get returns the cell's value, following links to the defining cell. If no
// link was resolved when the cell was created, Get tries to resolve it now,
// so functions can refer to names defined after them.
func (c *Cell) Get() (Value, error) {
	for d := c; d != nil; d = d.link {
		if d.value != nil {
			return d.value, nil
		}
		if d.link == nil {
			d.link = d.resolve()
		}
	}
	return nil, c.scope.undefined(c.name)
}

// Set stores v in the cell. It does not affect the cell's link.
func (c *Cell) Set(v Value) {
	c.value = v
}

// resolve finds the cell that currently defines the name outside c's scope.
func (c *Cell) resolve() *Cell {
	if c.scope.parent == nil {
		return c.scope.builtin(c.name)
	}
	return c.scope.parent.FindDef(c.name)
}

// Scope is a lexical environment. Each scope records, per name, whether it
// reads the name (a link), defines it (a def), or modifies part of a value
// defined elsewhere (an update). The records drive dependency tracking in a
// Workspace; the cells carry the values.
//
// A Scope is not safe for concurrent use.
type Scope struct {
	ns     Namespace
	parent *Scope

	symbols map[string]*Cell
	links   map[string]*Cell
	defs    map[string]*Cell
	updates map[string]*Cell
	nested  []*Scope

	// builtins memoizes namespace lookups in a root scope.
	builtins map[string]*Cell
}

// NewScope creates a root scope resolving otherwise undefined names in ns.
// If ns is nil, the scope uses DefaultNamespace().
func NewScope(ns Namespace) *Scope {
	if ns == nil {
		ns = DefaultNamespace()
	}
	s := newScope(nil)
	s.ns = ns
	s.builtins = make(map[string]*Cell)
	return s
}

func newScope(parent *Scope) *Scope {
	return &Scope{
		parent:  parent,
		symbols: make(map[string]*Cell),
		links:   make(map[string]*Cell),
		defs:    make(map[string]*Cell),
		updates: make(map[string]*Cell),
	}
}

// Child creates a scope whose parent is s. Unlike Nested, s does not track
// the child.
func (s *Scope) Child() *Scope {
	return newScope(s)
}

// Nested creates a scope whose parent is s and which s tracks, so that the
// child's links and updates count as the parent's.
func (s *Scope) Nested() *Scope {
	c := newScope(s)
	s.nested = append(s.nested, c)
	return c
}

// Parent returns the scope's parent, or nil for a root scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// SetParent changes the scope's parent. Links resolved through the old
// parent are dropped from s and its nested scopes.
func (s *Scope) SetParent(p *Scope) {
	s.parent = p
	s.ClearCache()
}

// Namespace returns the namespace of the scope's root.
func (s *Scope) Namespace() Namespace {
	r := s
	for r.parent != nil {
		r = r.parent
	}
	return r.ns
}

// Symbol returns the scope's cell for name, creating it if needed. A new
// cell links to the current definition of name in the enclosing scopes.
func (s *Scope) Symbol(name string) *Cell {
	if c := s.symbols[name]; c != nil {
		return c
	}
	c := &Cell{name: name, scope: s}
	c.link = c.resolve()
	s.symbols[name] = c
	return c
}

// CreateDef records that s defines name and returns its cell.
func (s *Scope) CreateDef(name string) *Cell {
	c := s.Symbol(name)
	s.defs[name] = c
	return c
}

// CreateLink records that s reads name and returns its cell.
func (s *Scope) CreateLink(name string) *Cell {
	c := s.Symbol(name)
	s.links[name] = c
	return c
}

// CreateUpdate records that s modifies part of name and returns its cell.
func (s *Scope) CreateUpdate(name string) *Cell {
	c := s.Symbol(name)
	s.updates[name] = c
	return c
}

// FindDef returns the cell defining name as seen from s, searching s and
// then its ancestors. A root scope falls back to its namespace. The result
// is nil if nothing defines name.
func (s *Scope) FindDef(name string) *Cell {
	for sc := s; sc != nil; sc = sc.parent {
		if c := sc.defs[name]; c != nil {
			return c
		}
		if c := sc.updates[name]; c != nil {
			return c
		}
		if sc.parent == nil {
			return sc.builtin(name)
		}
	}
	return nil
}

// builtin resolves name in the namespace of the root scope s, memoizing
// matches. Constants take precedence over functions and values, which take
// precedence over units.
func (s *Scope) builtin(name string) *Cell {
	if c := s.builtins[name]; c != nil {
		return c
	}
	if s.ns == nil {
		return nil
	}
	v, ok := s.ns.Constant(name)
	if !ok {
		v, ok = s.ns.Lookup(name)
	}
	if !ok {
		v, ok = s.ns.Unit(name)
	}
	if !ok {
		return nil
	}
	c := &Cell{name: name, scope: s, value: v}
	s.builtins[name] = c
	return c
}

// HasDef reports whether s itself defines name.
func (s *Scope) HasDef(name string) bool {
	return s.defs[name] != nil
}

// HasLink reports whether s or any scope nested in it reads name. A nested
// scope reading its own definition, such as a function parameter, does not
// count.
func (s *Scope) HasLink(name string) bool {
	if s.links[name] != nil {
		return true
	}
	return slices.ContainsFunc(s.nested, func(n *Scope) bool { return n.defs[name] == nil && n.HasLink(name) })
}

// HasUpdate reports whether s or any scope nested in it modifies name.
func (s *Scope) HasUpdate(name string) bool {
	if s.updates[name] != nil {
		return true
	}
	return slices.ContainsFunc(s.nested, func(n *Scope) bool { return n.defs[name] == nil && n.HasUpdate(name) })
}

// RemoveDef removes the record that s defines name. Cells held by nodes are
// unaffected.
func (s *Scope) RemoveDef(name string) {
	delete(s.defs, name)
}

// RemoveLink removes the record that s reads name.
func (s *Scope) RemoveLink(name string) {
	delete(s.links, name)
}

// RemoveUpdate removes the record that s modifies name.
func (s *Scope) RemoveUpdate(name string) {
	delete(s.updates, name)
}

// Defs returns the names s defines or updates, sorted.
func (s *Scope) Defs() []string {
	names := slices.Collect(maps.Keys(s.defs))
	for name := range s.updates {
		if s.defs[name] == nil {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Links returns the names s and its nested scopes read from outside
// themselves, sorted.
func (s *Scope) Links() []string {
	seen := make(map[string]bool)
	for name := range s.links {
		seen[name] = true
	}
	for _, n := range s.nested {
		for _, name := range n.Links() {
			if n.defs[name] == nil {
				seen[name] = true
			}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}

// Names returns every name visible from s: definitions in s and its
// ancestors and the names of the root namespace, sorted and deduplicated.
func (s *Scope) Names() []string {
	seen := make(map[string]bool)
	for sc := s; sc != nil; sc = sc.parent {
		for name := range sc.defs {
			seen[name] = true
		}
		for name := range sc.updates {
			seen[name] = true
		}
		if sc.parent == nil && sc.ns != nil {
			for _, name := range sc.ns.Names() {
				seen[name] = true
			}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}

// Init prepares s for evaluation. Every cell of a non-root scope forgets its
// value and links to the current definition of its name in the parent
// scope. Nested scopes are initialized likewise. A root scope keeps its own
// cells.
func (s *Scope) Init() {
	if s.parent != nil {
		for name, c := range s.symbols {
			c.value = nil
			c.link = s.parent.FindDef(name)
		}
	}
	for _, n := range s.nested {
		n.Init()
	}
}

// Clear removes all symbols and nested scopes from s. Nodes parsed in s
// keep their cells, but s no longer records them.
func (s *Scope) Clear() {
	clear(s.symbols)
	clear(s.links)
	clear(s.defs)
	clear(s.updates)
	s.nested = nil
}

// ClearCache drops the resolved links of s and its nested scopes. Cells
// resolve again on their next read.
func (s *Scope) ClearCache() {
	for _, c := range s.symbols {
		c.link = nil
	}
	for _, n := range s.nested {
		n.ClearCache()
	}
}

// Get evaluates name as seen from s.
func (s *Scope) Get(name string) (Value, error) {
	if c := s.symbols[name]; c != nil {
		return c.Get()
	}
	if c := s.FindDef(name); c != nil {
		return c.Get()
	}
	return nil, s.undefined(name)
}

// Set defines name in s with the value v.
func (s *Scope) Set(name string, v Value) {
	s.CreateDef(name).Set(v)
}

// undefined creates an error for an undefined name with suggestions of
// similar visible names.
func (s *Scope) undefined(name string) error {
	err := &UndefinedSymbolError{Name: name}
	names := s.Names()
	for _, m := range fuzzy.Find(name, names) {
		if m.Str == name {
			continue
		}
		err.Suggestions = append(err.Suggestions, m.Str)
		if len(err.Suggestions) == maxSuggestions {
			break
		}
	}
	return err
}

// scopeState is a copy of the records of a scope, used to undo a failed
// parse.
type scopeState struct {
	symbols, links, defs, updates map[string]*Cell
	nested                        []*Scope
}

func (s *Scope) save() scopeState {
	return scopeState{
		symbols: maps.Clone(s.symbols),
		links:   maps.Clone(s.links),
		defs:    maps.Clone(s.defs),
		updates: maps.Clone(s.updates),
		nested:  slices.Clone(s.nested),
	}
}

func (s *Scope) restore(st scopeState) {
	s.symbols = st.symbols
	s.links = st.links
	s.defs = st.defs
	s.updates = st.updates
	s.nested = st.nested
}
