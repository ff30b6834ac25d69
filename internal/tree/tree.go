package tree

import "strings"

// Tree wraps an origin sentinel node whose only child is the real
// root (spec.md §3, "Origin"). Every real node's parent chain
// terminates at the origin rather than at nil, so traversal code never
// needs a nil check (spec.md §9, "Node↔parent links").
type Tree struct {
	origin *Node
}

// New constructs a tree with an empty root.
func New() *Tree {
	origin := NewNode(nil, nil)
	origin.parent = origin
	root := NewNode(nil, nil)
	root.parent = origin
	origin.children = []*Node{root}
	return &Tree{origin: origin}
}

// Origin returns the sentinel node whose sole child is the real root.
func (t *Tree) Origin() *Node { return t.origin }

// Root returns the real root node (the origin's only child).
func (t *Tree) Root() *Node { return t.origin.children[0] }

// MakeNode constructs a new node with the given label and value as a
// new child of parent. The new node and its ancestors are marked
// dirty. See spec.md §4.1 "make_node".
func (t *Tree) MakeNode(label, value *string, parent *Node) *Node {
	n := NewNode(label, value)
	n.flags |= dirty
	t.Append(parent, n)
	return n
}

// Append adds child as parent's last child and marks parent dirty.
func (t *Tree) Append(parent, child *Node) {
	child.parent = parent
	parent.children = append(parent.children, child)
	parent.markDirty()
}

// Side selects which side of an existing node Insert adds the new
// sibling on.
type Side int

const (
	Before Side = iota
	After
)

// Insert creates a new sibling of at, with the given label and nil
// value, before or after it (spec.md §6, "insert"). It fails if label
// contains '/'.
func (t *Tree) Insert(at *Node, label string, side Side) (*Node, error) {
	if containsSlash(label) {
		return nil, errorf("Insert", "%w", ErrInvalidLabel)
	}
	parent := at.parent
	n := NewNode(&label, nil)
	n.parent = parent
	idx := indexOf(parent.children, at)
	if idx < 0 {
		return nil, errorf("Insert", "%w: node not found among its parent's children", ErrInvariant)
	}
	if side == After {
		idx++
	}
	parent.children = append(parent.children, nil)
	copy(parent.children[idx+1:], parent.children[idx:])
	parent.children[idx] = n
	parent.markDirty()
	return n, nil
}

func indexOf(children []*Node, target *Node) int {
	for i, c := range children {
		if c == target {
			return i
		}
	}
	return -1
}

// Unlink detaches n (and its descendants) from its parent and marks
// the parent dirty. Returns the number of nodes actually unlinked
// (0 if n was not found among its parent's children, 1 otherwise).
func (t *Tree) Unlink(n *Node) int {
	if n == nil || n.parent == nil || n.IsOrigin() {
		return 0
	}
	parent := n.parent
	idx := indexOf(parent.children, n)
	if idx < 0 {
		return 0
	}
	parent.children = append(parent.children[:idx], parent.children[idx+1:]...)
	n.parent = nil
	parent.markDirty()
	return 1
}

// FreeSubtree detaches and discards n; an alias for Unlink kept for
// parity with spec.md §4.1's "free_subtree" name at call sites where
// the removal-count return value is not used.
func (t *Tree) FreeSubtree(n *Node) { t.Unlink(n) }

// ChildOrCreate returns the first child of parent with the given
// label, creating it (with a nil value) if none exists.
func (t *Tree) ChildOrCreate(parent *Node, label string) *Node {
	if c := parent.FindChild(label); c != nil {
		return c
	}
	return t.MakeNode(&label, nil, parent)
}

// PathCreate walks from start, creating any missing node along labels,
// and returns the deepest node (spec.md §4.1 "path_create").
func (t *Tree) PathCreate(start *Node, labels ...string) *Node {
	cur := start
	for _, label := range labels {
		cur = t.ChildOrCreate(cur, label)
	}
	return cur
}

// Move implements spec.md §4.1 "mv": src becomes dst. Fails with
// ErrIsDescendant if dst is a descendant of src.
func (t *Tree) Move(src, dst *Node) error {
	if isDescendant(dst, src) {
		return errorf("Move", "%w", ErrIsDescendant)
	}
	dst.children = src.children
	for _, c := range dst.children {
		c.parent = dst
	}
	dst.value = src.value
	t.Unlink(src)
	dst.markDirty()
	return nil
}

func isDescendant(candidate, ancestor *Node) bool {
	for cur := candidate; cur != nil && !cur.IsOrigin(); cur = cur.parent {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// Rename relabels every node in matches to newLabel, failing with
// ErrInvalidLabel if newLabel contains '/'. Per spec.md §9's resolved
// ambiguity, validation happens up-front so a partial rename never
// occurs. Returns the count renamed.
func (t *Tree) Rename(matches []*Node, newLabel string) (int, error) {
	if containsSlash(newLabel) {
		return 0, errorf("Rename", "%w", ErrInvalidLabel)
	}
	for _, n := range matches {
		if err := n.SetLabel(newLabel); err != nil {
			return 0, err
		}
	}
	return len(matches), nil
}

// Clean recursively clears the dirty bit on n and its descendants,
// typically called after a successful load or save sweep.
func Clean(n *Node) { n.clean() }

// Equal reports structural equality (label, value, and ordered
// children) between two nodes, ignoring dirty bits and spans (spec.md
// §4.1 "equal").
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Label() != b.Label() || a.Hidden() != b.Hidden() {
		return false
	}
	av, aok := a.Value()
	bv, bok := b.Value()
	if aok != bok || (aok && av != bv) {
		return false
	}
	if len(a.children) != len(b.children) {
		return false
	}
	for i := range a.children {
		if !Equal(a.children[i], b.children[i]) {
			return false
		}
	}
	return true
}

// SplitPath splits an absolute "/"-separated path into labels,
// ignoring a leading slash and collapsing a trailing one.
func SplitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
