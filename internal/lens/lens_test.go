package lens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heracles-engine/heracles/internal/tree"
)

func TestSimplevarsRoundTrip(t *testing.T) {
	input := []byte("# comment\nfoo = bar\nbaz = qux\n")
	tr := tree.New()
	root := tr.MakeNode(strp("test"), nil, tr.Root())
	l := SimplevarsLines{}
	require.NoError(t, l.Get(tr, root, input))
	require.Len(t, root.Children(), 3)
	assert.Equal(t, "foo", root.Children()[1].Label())

	out, err := l.Put(root, input)
	require.NoError(t, err)
	assert.Equal(t, string(input), string(out))
}

func TestSimplelistPositionalIndex(t *testing.T) {
	input := []byte("one\ntwo\nthree\n")
	tr := tree.New()
	root := tr.MakeNode(strp("list"), nil, tr.Root())
	l := SimplelistLines{}
	require.NoError(t, l.Get(tr, root, input))
	entries := root.ChildrenWithLabel("entry")
	require.Len(t, entries, 3)
	v, _ := entries[1].Value()
	assert.Equal(t, "two", v)

	out, err := l.Put(root, input)
	require.NoError(t, err)
	assert.Equal(t, string(input), string(out))
}

func TestDefaultRegistryLookup(t *testing.T) {
	r := DefaultRegistry()
	l, ok := r.Lookup("Simplevars.lines")
	require.True(t, ok)
	assert.Equal(t, "Simplevars.lines", l.Name())

	_, ok = r.Lookup("NoSuchLens")
	assert.False(t, ok)
}

func strp(s string) *string { return &s }
