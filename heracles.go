// Package heracles implements a bidirectional configuration-file
// engine: a tree representation of structured config files, a
// restricted XPath-like query language to navigate and edit it, and a
// load/save pipeline that turns edits back into the original file
// format. The public Heracles type is the façade every caller goes
// through, in the spirit of honnef.co/go/augeas's Augeas type, generalized
// from a cgo wrapper to a pure-Go implementation with its own tree,
// lens, loader and saver packages underneath.
package heracles

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/heracles-engine/heracles/internal/engcfg"
	"github.com/heracles-engine/heracles/internal/lens"
	"github.com/heracles-engine/heracles/internal/loader"
	"github.com/heracles-engine/heracles/internal/localeguard"
	"github.com/heracles-engine/heracles/internal/metatree"
	"github.com/heracles-engine/heracles/internal/pathexpr"
	"github.com/heracles-engine/heracles/internal/saver"
	"github.com/heracles-engine/heracles/internal/transform"
	"github.com/heracles-engine/heracles/internal/tree"
)

// Heracles is a handle on one tree, its configured transforms, and
// the loader/saver state needed to sync it with disk.
type Heracles struct {
	flags Flag
	root  string

	tr         *tree.Tree
	symtab     *pathexpr.SymbolTable
	transforms *transform.Registry
	lenses     *lens.Registry
	ld         *loader.Loader
	meta       *metatree.Tree
	guard      localeguard.Guard
	log        *logrus.Entry

	fileLens map[string]string // absolute path -> lens name, for Save
}

// New creates a Heracles handle rooted at root, with the given
// behavior Flags. loadPath is accepted for API parity and is not used:
// lenses come from the built-in fixture registry.
// Unless NoLoad is set, it immediately loads every configured
// transform.
func New(root, loadPath string, flags Flag) (*Heracles, error) {
	env := engcfg.FromEnviron()
	if root == "" {
		root = env.Root
	}

	h := &Heracles{
		flags:      flags,
		root:       root,
		tr:         tree.New(),
		symtab:     pathexpr.NewSymbolTable(),
		transforms: transform.NewRegistry(),
		lenses:     lens.DefaultRegistry(),
		log:        logrus.NewEntry(logrus.StandardLogger()),
		fileLens:   make(map[string]string),
	}
	h.ld = loader.New(h.transforms, h.lenses)
	h.meta = metatree.Ensure(h.tr, h.tr.Root(), root)

	if flags.has(TraceModuleLoading) {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if !flags.has(NoLoad) {
		if err := h.Load(); err != nil {
			if !flags.has(NoErrClose) {
				return nil, newError(EINTERNAL, err.Error())
			}
			return h, newError(EINTERNAL, err.Error())
		}
	}
	return h, nil
}

// AddTransform registers a transform for Load/Reload to use; this is
// the in-process equivalent of writing under /heracles/load in the
// original design (spec.md §4.3).
func (h *Heracles) AddTransform(name, lensName string, filters []transform.Filter) {
	h.transforms.Add(&transform.Transform{Name: name, Lens: lensName, Filters: filters})
}

// Close releases the handle. There is no explicit resource to free in
// this pure-Go implementation, but Close exists for API parity and so
// callers can rely on it as a lifetime boundary.
func (h *Heracles) Close() {}

// Version returns the engine version string recorded at
// /heracles/version.
func (h *Heracles) Version() string {
	v, _ := h.Get("/heracles/version")
	return v
}

func (h *Heracles) enter() func() {
	h.guard.Enter()
	return h.guard.Exit
}

func (h *Heracles) matchCtx() *pathexpr.Context {
	return &pathexpr.Context{Tree: h.tr, Node: h.tr.Root(), Symbols: h.symtab}
}

// Match returns the paths of every node matching path, spec.md §4.2's
// whole-tree query operation.
func (h *Heracles) Match(path string) ([]string, error) {
	defer h.enter()()
	expr, perr := pathexpr.Parse(path)
	if perr != nil {
		metatree.RecordPathxError(h.tr, h.meta, perr.Code.String(), perr.Offset, perr.Substring)
		return nil, newError(EPATHX, perr.Error())
	}
	nodes, merr := pathexpr.Match(h.matchCtx(), expr)
	if merr != nil {
		metatree.RecordPathxError(h.tr, h.meta, merr.Code.String(), merr.Offset, merr.Substring)
		return nil, newError(EPATHX, merr.Error())
	}
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Path()
	}
	return out, nil
}

func (h *Heracles) matchOne(path string) (*tree.Node, error) {
	expr, perr := pathexpr.Parse(path)
	if perr != nil {
		return nil, newError(EPATHX, perr.Error())
	}
	nodes, merr := pathexpr.Match(h.matchCtx(), expr)
	if merr != nil {
		return nil, newError(EPATHX, merr.Error())
	}
	if len(nodes) == 0 {
		return nil, newError(ENOMATCH, path)
	}
	if len(nodes) > 1 {
		return nil, newError(EMMATCH, path)
	}
	return nodes[0], nil
}

// Get looks up the value at path, failing with ENOMATCH/EMMATCH if
// path does not match exactly one node.
func (h *Heracles) Get(path string) (string, error) {
	defer h.enter()()
	n, err := h.matchOne(path)
	if err != nil {
		return "", err
	}
	v, _ := n.Value()
	return v, nil
}

// GetAll gets all values for every node matching path.
func (h *Heracles) GetAll(path string) ([]string, error) {
	paths, err := h.Match(path)
	if err != nil {
		return nil, err
	}
	var values []string
	for _, p := range paths {
		v, err := h.Get(p)
		if err != nil {
			return values, err
		}
		values = append(values, v)
	}
	return values, nil
}

// Label gets the label of the single node matching path.
func (h *Heracles) Label(path string) (string, error) {
	defer h.enter()()
	n, err := h.matchOne(path)
	if err != nil {
		return "", err
	}
	return n.Label(), nil
}

// Set sets the value at path, creating intermediate nodes as needed.
func (h *Heracles) Set(path, value string) error {
	defer h.enter()()
	n, err := h.pathCreate(path)
	if err != nil {
		return err
	}
	n.SetValue(&value)
	return nil
}

// pathCreate resolves path, creating missing nodes along an absolute
// path when it does not already exist, mirroring aug_set's behavior.
// Any other lookup failure (EMMATCH, EPATHX) is returned as is.
func (h *Heracles) pathCreate(path string) (*tree.Node, error) {
	n, err := h.matchOne(path)
	if err == nil {
		return n, nil
	}
	if herr, ok := err.(*Error); !ok || herr.Code != ENOMATCH {
		return nil, err
	}
	labels := tree.SplitPath(path)
	if len(labels) == 0 {
		return nil, newError(EBADARG, path)
	}
	return h.tr.PathCreate(h.tr.Root(), labels...), nil
}

// SetMultiple finds or creates a node matching sub, interpreted
// relative to each node matching base, and sets it to value. Returns
// the number of modified nodes (spec.md §6 "setm").
func (h *Heracles) SetMultiple(base, sub, value string) (int, error) {
	defer h.enter()()
	baseNodes, err := h.Match(base)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, b := range baseNodes {
		target := b
		if sub != "" && sub != "." {
			target = b + "/" + sub
		}
		n, err := h.pathCreate(target)
		if err != nil {
			return count, err
		}
		n.SetValue(&value)
		count++
	}
	return count, nil
}

// DefineVariable compiles expression and binds it to name for later
// use as "$name" in other path expressions. Returns the number of
// matches if expression evaluates to a node set. An empty expression
// removes the variable.
func (h *Heracles) DefineVariable(name, expression string) (int, error) {
	defer h.enter()()
	if expression == "" {
		h.symtab.RemoveVariable(name)
		return 0, nil
	}
	expr, perr := pathexpr.Parse(expression)
	if perr != nil {
		return 0, newError(EPATHX, perr.Error())
	}
	h.symtab.DefineVariable(name, expr)
	nodes, merr := pathexpr.Match(h.matchCtx(), expr)
	if merr != nil {
		return 0, nil
	}
	metatree.RecordVariable(h.tr, h.meta, name, expression)
	return len(nodes), nil
}

// RemoveVariable removes a variable defined by DefineVariable.
func (h *Heracles) RemoveVariable(name string) error {
	defer h.enter()()
	h.symtab.RemoveVariable(name)
	return nil
}

// DefineNode defines a variable bound directly to the node set
// expression evaluates to, creating a node with value if the set is
// empty. Returns the match count and whether a node was created.
func (h *Heracles) DefineNode(name, expression, value string) (int, bool, error) {
	defer h.enter()()
	expr, perr := pathexpr.Parse(expression)
	if perr != nil {
		return 0, false, newError(EPATHX, perr.Error())
	}
	nodes, merr := pathexpr.Match(h.matchCtx(), expr)
	if merr != nil {
		return 0, false, newError(EPATHX, merr.Error())
	}
	created := false
	if len(nodes) == 0 {
		n, err := h.pathCreate(expression)
		if err != nil {
			return 0, false, err
		}
		n.SetValue(&value)
		nodes = []*tree.Node{n}
		created = true
	}
	h.symtab.DefineNode(name, nodes)
	metatree.RecordVariable(h.tr, h.meta, name, expression)
	return len(nodes), created, nil
}

// Insert creates a new sibling of the single node matching path, with
// the given label, before or after it.
func (h *Heracles) Insert(path, label string, before bool) error {
	defer h.enter()()
	n, err := h.matchOne(path)
	if err != nil {
		return err
	}
	side := tree.After
	if before {
		side = tree.Before
	}
	if _, terr := h.tr.Insert(n, label, side); terr != nil {
		return newError(ELABEL, terr.Error())
	}
	return nil
}

// Remove removes every node matching path and its descendants,
// returning the count removed.
func (h *Heracles) Remove(path string) (int, error) {
	defer h.enter()()
	nodes, err := matchNodes(h, path)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, n := range nodes {
		count += h.tr.Unlink(n)
	}
	h.symtab.Sweep(h.tr.Root())
	return count, nil
}

func matchNodes(h *Heracles, path string) ([]*tree.Node, error) {
	expr, perr := pathexpr.Parse(path)
	if perr != nil {
		return nil, newError(EPATHX, perr.Error())
	}
	nodes, merr := pathexpr.Match(h.matchCtx(), expr)
	if merr != nil {
		return nil, newError(EPATHX, merr.Error())
	}
	return nodes, nil
}

// Move moves the single node matching src to dst, per tree.Tree.Move
// semantics; dst may already exist (it is replaced) or be created.
func (h *Heracles) Move(src, dst string) error {
	defer h.enter()()
	srcNode, err := h.matchOne(src)
	if err != nil {
		return err
	}
	dstNode, err := h.pathCreate(dst)
	if err != nil {
		return err
	}
	if terr := h.tr.Move(srcNode, dstNode); terr != nil {
		return newError(EMVDESC, terr.Error())
	}
	return nil
}

// Rename relabels every node matching path to newLabel, returning the
// count renamed.
func (h *Heracles) Rename(path, newLabel string) (int, error) {
	defer h.enter()()
	nodes, err := matchNodes(h, path)
	if err != nil {
		return 0, err
	}
	n, terr := h.tr.Rename(nodes, newLabel)
	if terr != nil {
		return 0, newError(ELABEL, terr.Error())
	}
	return n, nil
}

// Span returns the source-file span of the single node matching path.
// Fails with ENOSPAN if EnableSpan was not set or the node has no
// recorded span.
func (h *Heracles) Span(path string) (tree.Span, error) {
	defer h.enter()()
	n, err := h.matchOne(path)
	if err != nil {
		return tree.Span{}, err
	}
	if !h.flags.has(EnableSpan) || n.Span() == nil {
		return tree.Span{}, newError(ENOSPAN, path)
	}
	return *n.Span(), nil
}

// Load (re-)loads every configured transform into the tree, recording
// per-file metadata under /heracles/load.
func (h *Heracles) Load() error {
	defer h.enter()()
	filesRoot := h.tr.ChildOrCreate(h.tr.Root(), "files")
	if err := h.ld.Load(context.Background(), h.tr, filesRoot); err != nil {
		return newError(EINTERNAL, err.Error())
	}
	h.recordLoadMeta()
	return nil
}

// Reload re-reads every loaded file, dropping metadata for files no
// longer matched by any transform (spec.md §4.3 "reload").
func (h *Heracles) Reload() error {
	defer h.enter()()
	filesRoot := h.tr.ChildOrCreate(h.tr.Root(), "files")
	if err := h.ld.Reload(context.Background(), h.tr, filesRoot); err != nil {
		return newError(EINTERNAL, err.Error())
	}
	h.recordLoadMeta()
	return nil
}

func (h *Heracles) recordLoadMeta() {
	all := h.ld.All()
	for path, meta := range all {
		if meta.Error == nil {
			h.fileLens[path] = meta.Lens
		}
	}
	for _, xfm := range h.transforms.All() {
		var filters []metatree.FilterReport
		for _, f := range xfm.Filters {
			filters = append(filters, metatree.FilterReport{Glob: f.Glob, Exclude: f.Exclude})
		}
		files := map[string]*loader.FileMeta{}
		for path, meta := range all {
			if meta.Lens == xfm.Lens {
				files[path] = meta
			}
		}
		metatree.RecordLoad(h.tr, h.meta, xfm.Name, xfm.Lens, filters, files)
	}
}

// Save writes every dirty loaded file back to disk, according to the
// SaveBackup/SaveNewFile/SaveNoop flags (spec.md §4.4, §6).
func (h *Heracles) Save() error {
	defer h.enter()()
	mode := saver.ModeOverwrite
	switch {
	case h.flags.has(SaveNoop):
		mode = saver.ModeNoop
	case h.flags.has(SaveNewFile):
		mode = saver.ModeNewFile
	case h.flags.has(SaveBackup):
		mode = saver.ModeBackup
	}
	sv := saver.New(h.lenses, mode)

	bindings := map[string]saver.FileBinding{}
	filesRoot := h.tr.ChildOrCreate(h.tr.Root(), "files")
	for path, lensName := range h.fileLens {
		fn, werr := tree.Walk(filesRoot, tree.SplitPath(path))
		if werr != nil {
			continue
		}
		bindings[path] = saver.FileBinding{Node: fn, Lens: lensName}
	}

	results, err := sv.Save(bindings)
	metatree.RecordSave(h.tr, h.meta, modeName(mode), results)
	if err != nil {
		return newError(EINTERNAL, err.Error())
	}
	return nil
}

func modeName(m saver.Mode) string {
	switch m {
	case saver.ModeBackup:
		return "backup"
	case saver.ModeNewFile:
		return "newfile"
	case saver.ModeNoop:
		return "noop"
	default:
		return "overwrite"
	}
}
