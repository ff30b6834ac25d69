// Package transform implements spec.md §4.3's transform registry:
// named (lens, include/exclude glob) bindings that tell the loader
// which files to feed to which lens. Grounded on
// original_source/src/transform.c's filter_generate/filter_matches,
// translated from libglob fnmatch chains to path/filepath.Match.
package transform

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Filter is one include or exclude glob entry, applied in declaration
// order; the last matching filter wins (transform.c's filter_matches
// walks filters front-to-back and remembers the last verdict).
type Filter struct {
	Glob    string
	Exclude bool
}

// Transform names a lens and the set of filters that decide which
// files it Applies to.
type Transform struct {
	Name    string
	Lens    string
	Filters []Filter
}

// Applies reports whether path should be loaded through this
// transform: true only if at least one include filter matches and no
// later exclude filter overrides it. An exclude glob without a '/' is
// matched against the base name of path only.
func (t *Transform) Applies(path string) (bool, error) {
	verdict := false
	matchedAny := false
	for _, f := range t.Filters {
		target := path
		if f.Exclude && !strings.Contains(f.Glob, "/") {
			target = filepath.Base(path)
		}
		ok, err := filepath.Match(f.Glob, target)
		if err != nil {
			return false, errors.Wrapf(err, "transform %s: bad glob %q", t.Name, f.Glob)
		}
		if !ok {
			continue
		}
		matchedAny = true
		verdict = !f.Exclude
	}
	return matchedAny && verdict, nil
}

// Expand walks candidates and returns the subset this transform
// Applies to, preserving input order.
func (t *Transform) Expand(candidates []string) ([]string, error) {
	var out []string
	for _, c := range candidates {
		ok, err := t.Applies(c)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// Registry holds the configured transforms in declaration order,
// mirroring the /heracles/load/<xfm>/* meta-tree ordering.
type Registry struct {
	order []*Transform
	byName map[string]*Transform
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Transform)}
}

func (r *Registry) Add(t *Transform) {
	r.order = append(r.order, t)
	r.byName[t.Name] = t
}

func (r *Registry) All() []*Transform { return r.order }

func (r *Registry) Lookup(name string) (*Transform, bool) {
	t, ok := r.byName[name]
	return t, ok
}
