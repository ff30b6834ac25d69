package tree

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }

func TestOriginInvariant(t *testing.T) {
	tr := New()
	require.True(t, tr.Origin().IsOrigin())
	require.Equal(t, tr.Origin(), tr.Origin().Parent())
	require.Equal(t, tr.Origin(), tr.Root().Parent())
}

func TestMarkDirtyPropagatesToOrigin(t *testing.T) {
	tr := New()
	a := tr.MakeNode(str("a"), nil, tr.Root())
	b := tr.MakeNode(str("b"), nil, a)
	require.True(t, a.Dirty())
	require.True(t, b.Dirty())
	require.True(t, tr.Root().Dirty())
	require.True(t, tr.Origin().Dirty())

	Clean(tr.Root())
	require.False(t, b.Dirty())
	require.False(t, tr.Root().Dirty())
}

func TestSetValueNoopWhenEqual(t *testing.T) {
	tr := New()
	n := tr.MakeNode(str("a"), str("v"), tr.Root())
	Clean(tr.Root())
	require.False(t, n.Dirty())

	n.SetValue(str("v"))
	assert.False(t, n.Dirty(), "setting an equal value must not dirty the node")

	n.SetValue(str("v2"))
	assert.True(t, n.Dirty())
}

func TestUnlinkMarksParentDirty(t *testing.T) {
	tr := New()
	a := tr.MakeNode(str("a"), nil, tr.Root())
	Clean(tr.Root())

	require.Equal(t, 1, tr.Unlink(a))
	assert.True(t, tr.Root().Dirty())
	assert.Nil(t, tr.Root().FindChild("a"))
}

func TestMoveRejectsDescendantDestination(t *testing.T) {
	tr := New()
	a := tr.MakeNode(str("a"), nil, tr.Root())
	b := tr.MakeNode(str("b"), nil, a)
	c := tr.MakeNode(str("c"), nil, b)

	err := tr.Move(a, c)
	require.ErrorIs(t, err, ErrIsDescendant)
}

func TestMoveReplacesDestination(t *testing.T) {
	tr := New()
	a := tr.MakeNode(str("a"), str("va"), tr.Root())
	tr.MakeNode(str("x"), str("vx"), a)
	dst := tr.MakeNode(str("dst"), str("old"), tr.Root())

	require.NoError(t, tr.Move(a, dst))
	assert.Equal(t, "va", func() string { v, _ := dst.Value(); return v }())
	// Move does not copy the value of src onto dst's label identity;
	// it keeps dst's own label but takes src's children and value.
	assert.Nil(t, tr.Root().FindChild("a"))
	assert.NotNil(t, dst.FindChild("x"))
}

func TestRenameValidatesUpFront(t *testing.T) {
	tr := New()
	a := tr.MakeNode(str("a"), str("v"), tr.Root())

	n, err := tr.Rename([]*Node{a}, "bad/label")
	require.ErrorIs(t, err, ErrInvalidLabel)
	require.Equal(t, 0, n)
	// a must be untouched: validation happens before any node is renamed.
	assert.Equal(t, "a", a.Label())
}

func TestRenameCountsRenamed(t *testing.T) {
	tr := New()
	a := tr.MakeNode(str("a"), str("1"), tr.Root())
	b := tr.MakeNode(str("a"), str("2"), tr.Root())

	n, err := tr.Rename([]*Node{a, b}, "z")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "z", a.Label())
	assert.Equal(t, "z", b.Label())
}

func TestPathCreateAndPath(t *testing.T) {
	tr := New()
	n := tr.PathCreate(tr.Root(), "etc", "hosts", "1")
	assert.Equal(t, "/etc/hosts/1", n.Path())
}

func TestEqualStructural(t *testing.T) {
	t1 := New()
	tr1a := t1.MakeNode(str("a"), str("v"), t1.Root())
	t1.MakeNode(str("b"), str("w"), tr1a)

	t2 := New()
	tr2a := t2.MakeNode(str("a"), str("v"), t2.Root())
	t2.MakeNode(str("b"), str("w"), tr2a)

	if !Equal(t1.Root(), t2.Root()) {
		t.Fatalf("expected equal trees, cmp: %s", cmp.Diff(dump(t1.Root()), dump(t2.Root())))
	}

	t2.MakeNode(str("b"), str("w"), tr2a)
	assert.False(t, Equal(t1.Root(), t2.Root()))
}

// dump renders a node tree into a comparable, cmp-friendly shape for
// test failure messages only; production code never needs this.
func dump(n *Node) interface{} {
	v, ok := n.Value()
	var val interface{}
	if ok {
		val = v
	}
	children := make([]interface{}, 0, len(n.Children()))
	for _, c := range n.Children() {
		children = append(children, dump(c))
	}
	return map[string]interface{}{
		"label":    n.Label(),
		"value":    val,
		"children": children,
	}
}
