package heracles

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heracles-engine/heracles/internal/transform"
)

func newTestHandle(t *testing.T) (*Heracles, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "app.conf")
	require.NoError(t, os.WriteFile(path, []byte("foo = bar\n"), 0644))

	h, err := New(dir, "", NoModlAutoload)
	require.NoError(t, err)
	h.AddTransform("app", "Simplevars.lines", []transform.Filter{{Glob: filepath.Join(dir, "*")}})
	require.NoError(t, h.Load())
	return h, path
}

func TestGetSetRoundTrip(t *testing.T) {
	h, path := newTestHandle(t)

	v, err := h.Get("/files" + path + "/foo")
	require.NoError(t, err)
	assert.Equal(t, "bar", v)

	require.NoError(t, h.Set("/files"+path+"/foo", "baz"))
	v, err = h.Get("/files" + path + "/foo")
	require.NoError(t, err)
	assert.Equal(t, "baz", v)

	require.NoError(t, h.Save())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "foo = baz\n", string(got))
}

func TestMatchWildcard(t *testing.T) {
	h, path := newTestHandle(t)
	matches, err := h.Match("/files" + path + "/*")
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestGetNoMatchFails(t *testing.T) {
	h, _ := newTestHandle(t)
	_, err := h.Get("/files/does/not/exist")
	require.Error(t, err)
	herr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ENOMATCH, herr.Code)
}

func TestDefineVariableAndUseIt(t *testing.T) {
	h, path := newTestHandle(t)
	n, err := h.DefineVariable("f", "/files"+path+"/foo")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	v, err := h.Get("$f")
	require.NoError(t, err)
	assert.Equal(t, "bar", v)
}

func TestInsertAndRemove(t *testing.T) {
	h, path := newTestHandle(t)
	require.NoError(t, h.Insert("/files"+path+"/foo", "newkey", false))
	matches, err := h.Match("/files" + path + "/*")
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	n, err := h.Remove("/files" + path + "/newkey")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSaveNoopDoesNotWriteDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.conf")
	require.NoError(t, os.WriteFile(path, []byte("foo = bar\n"), 0644))

	h, err := New(dir, "", NoModlAutoload|SaveNoop)
	require.NoError(t, err)
	h.AddTransform("app", "Simplevars.lines", []transform.Filter{{Glob: filepath.Join(dir, "*")}})
	require.NoError(t, h.Load())

	require.NoError(t, h.Set("/files"+path+"/foo", "changed"))
	require.NoError(t, h.Save())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "foo = bar\n", string(got))
}
