// Package lens defines the narrow Get/Put contract spec.md §4.3a
// describes for turning file bytes into tree fragments and back, plus
// a small registry and two fixture lenses used to exercise the loader
// and saver without depending on a real lens language (explicitly out
// of scope per spec.md's Non-goals).
package lens

import "github.com/heracles-engine/heracles/internal/tree"

// Lens converts between a file's raw bytes and a tree fragment rooted
// at the node the loader splices into the canonical tree.
type Lens interface {
	// Name identifies the lens for /heracles/load/<xfm>/lens reporting.
	Name() string
	// Get parses input into children appended under root.
	Get(tr *tree.Tree, root *tree.Node, input []byte) error
	// Put serializes root's children back into file bytes. oldInput is
	// the previous on-disk content, used by real lenses to preserve
	// byte-for-byte formatting of untouched regions; fixture lenses
	// ignore it.
	Put(root *tree.Node, oldInput []byte) ([]byte, error)
}

// Registry maps lens names to implementations, mirroring spec.md
// §4.3's "resolve lens" loader step.
type Registry struct {
	lenses map[string]Lens
}

func NewRegistry() *Registry {
	return &Registry{lenses: make(map[string]Lens)}
}

func (r *Registry) Register(l Lens) { r.lenses[l.Name()] = l }

func (r *Registry) Lookup(name string) (Lens, bool) {
	l, ok := r.lenses[name]
	return l, ok
}

// DefaultRegistry returns a registry pre-populated with the fixture
// lenses used by tests and the CLI's demo transforms.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(SimplevarsLines{})
	r.Register(SimplelistLines{})
	return r
}
