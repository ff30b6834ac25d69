package lens

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/heracles-engine/heracles/internal/tree"
)

// SimplelistLines is a fixture lens for plain newline-separated list
// files (e.g. /etc/hosts.allow-style one-entry-per-line), where every
// non-blank line becomes a same-labelled "entry" node addressable by
// positional index, exercising invariant 2's 1-based sibling indexing
// end to end. Blank lines are dropped on Get and not restored by Put.
type SimplelistLines struct{}

func (SimplelistLines) Name() string { return "Simplelist.lines" }

func (SimplelistLines) Get(tr *tree.Tree, root *tree.Node, input []byte) error {
	scanner := bufio.NewScanner(bytes.NewReader(input))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		label := "entry"
		val := line
		tr.MakeNode(&label, &val, root)
	}
	return scanner.Err()
}

func (SimplelistLines) Put(root *tree.Node, _ []byte) ([]byte, error) {
	var buf bytes.Buffer
	for _, n := range root.ChildrenWithLabel("entry") {
		v, _ := n.Value()
		buf.WriteString(v)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}
