package lens

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/heracles-engine/heracles/internal/tree"
)

// SimplevarsLines is a fixture lens for "key = value" files, one
// assignment per line, blank lines and "#"-comments preserved as
// hidden nodes so Put can round-trip them unchanged. Grounded on the
// shape of Augeas' real Simplevars.lns (see original_source/lenses),
// simplified to what the loader/saver tests need.
type SimplevarsLines struct{}

func (SimplevarsLines) Name() string { return "Simplevars.lines" }

func (SimplevarsLines) Get(tr *tree.Tree, root *tree.Node, input []byte) error {
	scanner := bufio.NewScanner(bytes.NewReader(input))
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			comment := line
			tr.MakeNode(nil, &comment, root)
			continue
		}
		idx := strings.Index(line, "=")
		if idx < 0 {
			return fmt.Errorf("simplevars: no '=' in line %q", line)
		}
		key := strings.TrimSpace(line[:idx])
		val := strings.TrimSpace(line[idx+1:])
		tr.MakeNode(&key, &val, root)
	}
	return scanner.Err()
}

func (SimplevarsLines) Put(root *tree.Node, _ []byte) ([]byte, error) {
	var buf bytes.Buffer
	for _, n := range root.Children() {
		if n.Hidden() {
			v, _ := n.Value()
			buf.WriteString(v)
			buf.WriteByte('\n')
			continue
		}
		v, _ := n.Value()
		fmt.Fprintf(&buf, "%s = %s\n", n.Label(), v)
	}
	return buf.Bytes(), nil
}
