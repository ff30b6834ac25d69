// Package tree implements the engine's canonical in-memory tree: an
// ordered, labelled key/value tree with dirty-bit propagation and
// optional source spans.
package tree

import (
	"bytes"
	"fmt"
)

type flags uint8

const (
	// dirty marks a node that has mutated (structurally, or by value)
	// since it was last loaded or saved. A dirty node's ancestors, up
	// to the origin, are always dirty too (invariant 3).
	dirty flags = 1 << 0

	// hidden marks a node with no label. Hidden nodes are invisible to
	// path matching but can anchor a subtree, e.g. the origin sentinel.
	hidden flags = 1 << 1
)

// String implements fmt.Stringer for debugging purposes.
func (f flags) String() string {
	if f == 0 {
		return "none"
	}
	var buf bytes.Buffer
	if f&dirty != 0 {
		buf.WriteString("dirty,")
	}
	if f&hidden != 0 {
		buf.WriteString("hidden,")
	}
	if f&^(dirty|hidden) != 0 {
		buf.WriteString("extraneous,")
	}
	buf.Truncate(buf.Len() - 1)
	return buf.String()
}

// Span records the byte offsets of a node's label, value, and whole
// extent within the file it was parsed from, when span tracking
// (ENABLE_SPAN) was active at parse time. See invariant 6.
type Span struct {
	Filename   string
	LabelStart int
	LabelEnd   int
	ValueStart int
	ValueEnd   int
	SpanStart  int
	SpanEnd    int
}

// Node is a node in the canonical tree. The zero Node is a detached,
// unlabelled, valueless node; use NewNode or a Tree's constructors to build
// usable ones.
type Node struct {
	label *string
	value *string

	flags flags
	span  *Span

	parent   *Node
	children []*Node
}

// NewNode constructs a detached node with the given label and value.
// Pass nil for label to build a hidden node.
func NewNode(label, value *string) *Node {
	n := &Node{label: label, value: value}
	if label == nil {
		n.flags |= hidden
	}
	return n
}

// Label returns the node's label, or "" if it is hidden.
func (n *Node) Label() string {
	if n == nil || n.label == nil {
		return ""
	}
	return *n.label
}

// LabelPtr returns the node's label pointer, nil for a hidden node.
func (n *Node) LabelPtr() *string { return n.label }

// Value returns the node's value and whether it has one at all (a
// node can have no value, which is distinct from an empty-string
// value).
func (n *Node) Value() (string, bool) {
	if n == nil || n.value == nil {
		return "", false
	}
	return *n.value, true
}

// ValuePtr returns the node's value pointer, nil if the node has no value.
func (n *Node) ValuePtr() *string { return n.value }

// Hidden reports whether the node has no label.
func (n *Node) Hidden() bool { return n != nil && n.flags&hidden != 0 }

// Dirty reports whether the node has mutated since it was last loaded
// or saved.
func (n *Node) Dirty() bool { return n != nil && n.flags&dirty != 0 }

// Parent returns the node's parent. The origin is its own parent
// (invariant 1); every other node's parent is non-nil.
func (n *Node) Parent() *Node {
	if n == nil {
		return nil
	}
	return n.parent
}

// Children returns the node's children in insertion order. The
// returned slice must not be mutated by the caller.
func (n *Node) Children() []*Node {
	if n == nil {
		return nil
	}
	return n.children
}

// Span returns the node's recorded span, or nil if spans were not
// tracked when this subtree was parsed (invariant 6).
func (n *Node) Span() *Span { return n.span }

// SetSpan attaches a span to the node.
func (n *Node) SetSpan(s *Span) { n.span = s }

// IsOrigin reports whether n is its own parent (invariant 1).
func (n *Node) IsOrigin() bool { return n != nil && n.parent == n }

// markDirty walks from n to the origin, marking every node dirty.
// Stops as soon as it finds an already-dirty ancestor, which gives the
// amortised O(1) behaviour spec.md promises.
func (n *Node) markDirty() {
	for cur := n; cur != nil; cur = cur.parent {
		if cur.flags&dirty != 0 {
			return
		}
		cur.flags |= dirty
		if cur.IsOrigin() {
			return
		}
	}
}

// clean recursively resets the dirty bit on n and its descendants.
func (n *Node) clean() {
	if n == nil || n.flags&dirty == 0 {
		return
	}
	n.flags &^= dirty
	for _, c := range n.children {
		c.clean()
	}
}

// SetValue sets the node's value. It is a no-op, and leaves the dirty
// bit untouched, when the new value is byte-equal to the existing one
// (spec.md §4.1 guarantee).
func (n *Node) SetValue(value *string) {
	if samePtrString(n.value, value) {
		return
	}
	n.value = value
	n.markDirty()
}

func samePtrString(a, b *string) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

// SetLabel relabels the node. It fails if newLabel contains '/', per
// spec.md §4.1 ("rename ... fails with ELABEL when newlabel contains
// /").
func (n *Node) SetLabel(newLabel string) error {
	if containsSlash(newLabel) {
		return fmt.Errorf("tree: label %q contains '/'", newLabel)
	}
	n.label = &newLabel
	n.flags &^= hidden
	n.markDirty()
	return nil
}

func containsSlash(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '/' {
			return true
		}
	}
	return false
}

// FindChild returns the first child with the given label, or nil.
func (n *Node) FindChild(label string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.children {
		if !c.Hidden() && c.Label() == label {
			return c
		}
	}
	return nil
}

// ChildrenWithLabel returns all children with the given label, in
// order (invariant 2: same-labelled siblings are addressable by
// 1-based positional index among themselves).
func (n *Node) ChildrenWithLabel(label string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.children {
		if !c.Hidden() && c.Label() == label {
			out = append(out, c)
		}
	}
	return out
}

// Path reconstructs the absolute path from the real root (the
// origin's sole child) down to n, e.g. "/files/etc/hosts".
func (n *Node) Path() string {
	if n == nil || n.IsOrigin() {
		return ""
	}
	var stk []*Node
	for cur := n; cur != nil && !cur.IsOrigin() && !cur.parent.IsOrigin(); cur = cur.parent {
		stk = append(stk, cur)
	}
	var buf bytes.Buffer
	for i := len(stk) - 1; i >= 0; i-- {
		buf.WriteByte('/')
		buf.WriteString(stk[i].Label())
	}
	return buf.String()
}

// String implements fmt.Stringer for debugging.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	v, ok := n.Value()
	if !ok {
		return fmt.Sprintf("%s%s", n.Path(), dirtySuffix(n))
	}
	return fmt.Sprintf("%s=%q%s", n.Path(), v, dirtySuffix(n))
}

func dirtySuffix(n *Node) string {
	if n.Dirty() {
		return " (dirty)"
	}
	return ""
}
