package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLabelRejectsSlash(t *testing.T) {
	n := NewNode(str("a"), nil)
	err := n.SetLabel("b/c")
	require.Error(t, err)
	assert.Equal(t, "a", n.Label())
}

func TestHiddenNodeInvisibleToLabelLookup(t *testing.T) {
	tr := New()
	hiddenChild := NewNode(nil, str("comment"))
	tr.Append(tr.Root(), hiddenChild)
	visible := tr.MakeNode(str("x"), str("1"), tr.Root())

	assert.True(t, hiddenChild.Hidden())
	assert.Nil(t, tr.Root().FindChild(""))
	assert.Equal(t, visible, tr.Root().FindChild("x"))
}

func TestSpanRoundTrip(t *testing.T) {
	n := NewNode(str("ipaddr"), str("10.0.0.1"))
	assert.Nil(t, n.Span())
	s := &Span{Filename: "/etc/hosts", ValueStart: 10, ValueEnd: 20}
	n.SetSpan(s)
	assert.Equal(t, s, n.Span())
}
