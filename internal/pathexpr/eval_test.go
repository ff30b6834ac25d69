package pathexpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heracles-engine/heracles/internal/tree"
)

func str(s string) *string { return &s }

func buildTree() *tree.Tree {
	tr := tree.New()
	etc := tr.MakeNode(str("etc"), nil, tr.Root())
	hosts := tr.MakeNode(str("hosts"), nil, etc)
	tr.MakeNode(str("ipaddr"), str("10.0.0.1"), hosts)
	tr.MakeNode(str("canonical"), str("a.example.com"), hosts)
	tr.MakeNode(str("hosts"), nil, etc)
	return tr
}

func TestMatchAbsolutePath(t *testing.T) {
	tr := buildTree()
	expr, perr := Parse("/etc/hosts/ipaddr")
	require.Nil(t, perr)
	ctx := &Context{Tree: tr, Node: tr.Root()}
	nodes, err := Match(ctx, expr)
	require.Nil(t, err)
	require.Len(t, nodes, 1)
	v, _ := nodes[0].Value()
	assert.Equal(t, "10.0.0.1", v)
}

func TestMatchWildcardStep(t *testing.T) {
	tr := buildTree()
	expr, perr := Parse("/etc/*")
	require.Nil(t, perr)
	ctx := &Context{Tree: tr, Node: tr.Root()}
	nodes, err := Match(ctx, expr)
	require.Nil(t, err)
	assert.Len(t, nodes, 2)
}

func TestMatchPositionalIndex(t *testing.T) {
	tr := buildTree()
	expr, perr := Parse("/etc/hosts[2]")
	require.Nil(t, perr)
	ctx := &Context{Tree: tr, Node: tr.Root()}
	nodes, err := Match(ctx, expr)
	require.Nil(t, err)
	require.Len(t, nodes, 1)
	assert.Same(t, tr.Root().FindChild("etc").ChildrenWithLabel("hosts")[1], nodes[0])
}

func TestMatchLastIndex(t *testing.T) {
	tr := buildTree()
	expr, perr := Parse("/etc/hosts[last()]")
	require.Nil(t, perr)
	ctx := &Context{Tree: tr, Node: tr.Root()}
	nodes, err := Match(ctx, expr)
	require.Nil(t, err)
	require.Len(t, nodes, 1)
	assert.Same(t, tr.Root().FindChild("etc").ChildrenWithLabel("hosts")[1], nodes[0])
}

func TestMatchValuePredicate(t *testing.T) {
	tr := buildTree()
	expr, perr := Parse("/etc/hosts/*[. = '10.0.0.1']")
	require.Nil(t, perr)
	ctx := &Context{Tree: tr, Node: tr.Root()}
	nodes, err := Match(ctx, expr)
	require.Nil(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "ipaddr", nodes[0].Label())
}

func TestMatchExistencePredicate(t *testing.T) {
	tr := buildTree()
	expr, perr := Parse("/etc/hosts[ipaddr]")
	require.Nil(t, perr)
	ctx := &Context{Tree: tr, Node: tr.Root()}
	nodes, err := Match(ctx, expr)
	require.Nil(t, err)
	require.Len(t, nodes, 1)
}

func TestMatchVariableRoot(t *testing.T) {
	tr := buildTree()
	symtab := NewSymbolTable()
	hostsExpr, perr := Parse("/etc/hosts[1]")
	require.Nil(t, perr)
	ctx := &Context{Tree: tr, Node: tr.Root(), Symbols: symtab}
	hosts, err := Match(ctx, hostsExpr)
	require.Nil(t, err)
	symtab.DefineNode("h", hosts)

	expr, perr := Parse("$h/ipaddr")
	require.Nil(t, perr)
	nodes, err := Match(ctx, expr)
	require.Nil(t, err)
	require.Len(t, nodes, 1)
	v, _ := nodes[0].Value()
	assert.Equal(t, "10.0.0.1", v)
}

func TestMatchUndefinedVariable(t *testing.T) {
	tr := buildTree()
	ctx := &Context{Tree: tr, Node: tr.Root(), Symbols: NewSymbolTable()}
	expr, perr := Parse("$nope")
	require.Nil(t, perr)
	_, err := Match(ctx, expr)
	require.NotNil(t, err)
	assert.Equal(t, ENOVAR, err.Code)
}

func TestParseErrorReportsOffset(t *testing.T) {
	_, err := Parse("/etc/#bad")
	require.NotNil(t, err)
	assert.Equal(t, EDELIM, err.Code)
	assert.Equal(t, 5, err.Offset)
}

func TestSymbolTableSweepDropsUnlinked(t *testing.T) {
	tr := buildTree()
	symtab := NewSymbolTable()
	hosts := tr.Root().FindChild("etc").ChildrenWithLabel("hosts")[0]
	symtab.DefineNode("h", []*tree.Node{hosts})
	tr.Unlink(hosts)
	symtab.Sweep(tr.Root())
	b, ok := symtab.lookup("h")
	require.True(t, ok)
	assert.Empty(t, b.nodes)
}
