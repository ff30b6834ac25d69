package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyIncludeThenExclude(t *testing.T) {
	tr := &Transform{
		Name: "hosts",
		Lens: "Hosts.lns",
		Filters: []Filter{
			{Glob: "/etc/*"},
			{Glob: "/etc/secret*", Exclude: true},
		},
	}
	ok, err := tr.Applies("/etc/hosts")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = tr.Applies("/etc/secret.conf")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = tr.Applies("/var/log/messages")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExpandPreservesOrder(t *testing.T) {
	tr := &Transform{Name: "t", Filters: []Filter{{Glob: "/etc/*"}}}
	got, err := tr.Expand([]string{"/var/a", "/etc/b", "/etc/a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/etc/b", "/etc/a"}, got)
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()
	r.Add(&Transform{Name: "hosts"})
	r.Add(&Transform{Name: "passwd"})
	assert.Len(t, r.All(), 2)
	tr, ok := r.Lookup("passwd")
	require.True(t, ok)
	assert.Equal(t, "passwd", tr.Name)
	_, ok = r.Lookup("nope")
	assert.False(t, ok)
}
