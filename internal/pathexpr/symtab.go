package pathexpr

import "github.com/heracles-engine/heracles/internal/tree"

// binding is either a compiled expression (defvar) or a direct weak
// reference to a set of tree nodes (defnode). Node bindings are swept
// whenever their referenced nodes are unlinked, per spec.md §4.2's
// "weak tree-reference bindings swept on unlink".
type binding struct {
	expr  *Expr
	nodes []*tree.Node
}

// SymbolTable holds the variable bindings created by DefineVariable
// and DefineNode (spec.md §6 "defvar"/"defnode").
type SymbolTable struct {
	vars map[string]*binding
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{vars: make(map[string]*binding)}
}

// DefineVariable binds name to a compiled expression, re-evaluated
// every time the variable is dereferenced.
func (s *SymbolTable) DefineVariable(name string, expr *Expr) {
	s.vars[name] = &binding{expr: expr}
}

// DefineNode binds name directly to a fixed node set; unlike
// DefineVariable this binding does not re-run path evaluation.
func (s *SymbolTable) DefineNode(name string, nodes []*tree.Node) {
	s.vars[name] = &binding{nodes: nodes}
}

// RemoveVariable deletes name's binding, returning whether it existed.
func (s *SymbolTable) RemoveVariable(name string) bool {
	if _, ok := s.vars[name]; !ok {
		return false
	}
	delete(s.vars, name)
	return true
}

// Sweep drops any node from node bindings that is no longer reachable
// from root; call after a bulk unlink to keep weak references honest.
func (s *SymbolTable) Sweep(root *tree.Node) {
	reachable := map[*tree.Node]bool{}
	var mark func(n *tree.Node)
	mark = func(n *tree.Node) {
		reachable[n] = true
		for _, c := range n.Children() {
			mark(c)
		}
	}
	mark(root)
	for _, b := range s.vars {
		if b.nodes == nil {
			continue
		}
		kept := b.nodes[:0]
		for _, n := range b.nodes {
			if reachable[n] {
				kept = append(kept, n)
			}
		}
		b.nodes = kept
	}
}

func (s *SymbolTable) lookup(name string) (*binding, bool) {
	b, ok := s.vars[name]
	return b, ok
}
