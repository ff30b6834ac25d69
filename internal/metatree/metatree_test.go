package metatree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heracles-engine/heracles/internal/saver"
	"github.com/heracles-engine/heracles/internal/tree"
)

func TestEnsureCreatesStaticChildren(t *testing.T) {
	tr := tree.New()
	m := Ensure(tr, tr.Root(), "/")
	v, err := tree.Walk(m.Node(), []string{"version"})
	require.NoError(t, err)
	val, _ := v.Value()
	assert.Equal(t, Version, val)

	m2 := Ensure(tr, tr.Root(), "/")
	assert.Same(t, m.Node(), m2.Node())
}

func TestRecordSavePopulatesEvents(t *testing.T) {
	tr := tree.New()
	m := Ensure(tr, tr.Root(), "/")
	RecordSave(tr, m, "overwrite", []saver.Result{
		{Path: "/etc/app.conf", Changed: true, Written: "/etc/app.conf"},
	})
	n, err := tree.Walk(m.Node(), []string{"events", "saved", "1", "path"})
	require.NoError(t, err)
	v, _ := n.Value()
	assert.Equal(t, "/etc/app.conf", v)
}

func TestRecordPathxError(t *testing.T) {
	tr := tree.New()
	m := Ensure(tr, tr.Root(), "/")
	RecordPathxError(tr, m, "ENAME", 4, "bad")
	n, err := tree.Walk(m.Node(), []string{"pathx", "error", "code"})
	require.NoError(t, err)
	v, _ := n.Value()
	assert.Equal(t, "ENAME", v)
}
