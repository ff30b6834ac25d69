// Package metatree builds and maintains the /heracles/* reserved
// subtree spec.md §3 describes: engine metadata exposed through the
// same tree API as user data (version, the configured root, the
// per-transform load report, defined variables, and the last save's
// outcome), built with the same node-construction idiom used for
// file-content nodes elsewhere in the tree.
package metatree

import (
	"fmt"
	"strconv"

	"github.com/heracles-engine/heracles/internal/loader"
	"github.com/heracles-engine/heracles/internal/saver"
	"github.com/heracles-engine/heracles/internal/tree"
)

const (
	Version = "1.0.0"

	rootLabel = "heracles"
)

// Tree wraps the /heracles/* subtree, attached as a child of the real
// tree root the first time Ensure is called.
type Tree struct {
	node *tree.Node
}

// Ensure returns the existing /heracles node under root, or creates
// and populates its static children (version, with the supported save
// modes under version/save/mode, root, context) if this is the first
// call.
func Ensure(tr *tree.Tree, root *tree.Node, rootPrefix string) *Tree {
	n := root.FindChild(rootLabel)
	if n == nil {
		n = tr.MakeNode(strp(rootLabel), nil, root)
		version := tr.MakeNode(strp("version"), strp(Version), n)
		save := tr.MakeNode(strp("save"), nil, version)
		for _, mode := range []string{"backup", "newfile", "noop", "overwrite"} {
			tr.MakeNode(strp("mode"), strp(mode), save)
		}
		tr.MakeNode(strp("root"), strp(rootPrefix), n)
		tr.MakeNode(strp("context"), strp(""), n)
	}
	return &Tree{node: n}
}

// Node returns the underlying /heracles node.
func (m *Tree) Node() *tree.Node { return m.node }

// SetContext updates the value of /heracles/context. The value is only
// stored: path evaluation does not read it, and relative paths resolve
// against the tree root.
func (m *Tree) SetContext(tr *tree.Tree, context string) {
	ctx := m.node.FindChild("context")
	ctx.SetValue(strp(context))
}

// RecordLoad populates /heracles/load/<xfm>/{lens,incl,excl,files/<path>/{path,mtime,error}}
// from the loader's current bookkeeping for one transform.
func RecordLoad(tr *tree.Tree, m *Tree, xfmName, lensName string, filters []FilterReport, files map[string]*loader.FileMeta) {
	loadRoot := tr.ChildOrCreate(m.node, "load")
	for _, c := range loadRoot.Children() {
		if c.Label() == xfmName {
			tr.Unlink(c)
			break
		}
	}
	xfmNode := tr.MakeNode(strp(xfmName), nil, loadRoot)
	tr.MakeNode(strp("lens"), strp(lensName), xfmNode)

	for _, f := range filters {
		label := "incl"
		if f.Exclude {
			label = "excl"
		}
		tr.MakeNode(strp(label), strp(f.Glob), xfmNode)
	}

	filesNode := tr.MakeNode(strp("files"), nil, xfmNode)
	for path, meta := range files {
		fn := tr.MakeNode(strp(path), nil, filesNode)
		tr.MakeNode(strp("path"), strp(path), fn)
		tr.MakeNode(strp("mtime"), strp(meta.ModTime.String()), fn)
		if meta.Error != nil {
			tr.MakeNode(strp("error"), strp(meta.Error.Error()), fn)
		}
	}
}

// FilterReport is the RecordLoad-facing view of a transform.Filter,
// kept separate to avoid metatree importing the transform package
// just for this one struct shape.
type FilterReport struct {
	Glob    string
	Exclude bool
}

// RecordVariable mirrors one defvar binding under
// /heracles/variables/<name>.
func RecordVariable(tr *tree.Tree, m *Tree, name, compiledPath string) {
	vars := tr.ChildOrCreate(m.node, "variables")
	for _, c := range vars.Children() {
		if c.Label() == name {
			tr.Unlink(c)
			break
		}
	}
	tr.MakeNode(strp(name), strp(compiledPath), vars)
}

// RecordSave replaces /heracles/events/saved with the outcome of one
// save sweep: a "mode" child with the save mode, then
// one numbered child per file holding path, changed ("1" or "0"),
// written (when a file was written) and error (when saving failed).
func RecordSave(tr *tree.Tree, m *Tree, mode string, results []saver.Result) {
	events := tr.ChildOrCreate(m.node, "events")
	for _, c := range events.Children() {
		if c.Label() == "saved" {
			tr.Unlink(c)
			break
		}
	}
	saved := tr.MakeNode(strp("saved"), nil, events)
	tr.MakeNode(strp("mode"), strp(mode), saved)
	for i, r := range results {
		fn := tr.MakeNode(strp(strconv.Itoa(i+1)), nil, saved)
		tr.MakeNode(strp("path"), strp(r.Path), fn)
		changed := "0"
		if r.Changed {
			changed = "1"
		}
		tr.MakeNode(strp("changed"), strp(changed), fn)
		if r.Written != "" {
			tr.MakeNode(strp("written"), strp(r.Written), fn)
		}
		if r.Err != nil {
			tr.MakeNode(strp("error"), strp(r.Err.Error()), fn)
		}
	}
}

// RecordPathxError populates /heracles/pathx/error with the details
// of the last path-expression evaluation failure (spec.md §6).
func RecordPathxError(tr *tree.Tree, m *Tree, code string, offset int, substring string) {
	pathx := tr.ChildOrCreate(m.node, "pathx")
	for _, c := range pathx.Children() {
		if c.Label() == "error" {
			tr.Unlink(c)
			break
		}
	}
	errNode := tr.MakeNode(strp("error"), nil, pathx)
	tr.MakeNode(strp("code"), strp(code), errNode)
	tr.MakeNode(strp("pos"), strp(fmt.Sprintf("%d", offset)), errNode)
	tr.MakeNode(strp("char"), strp(substring), errNode)
}

func strp(s string) *string { return &s }
