package saver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heracles-engine/heracles/internal/lens"
	"github.com/heracles-engine/heracles/internal/tree"
)

func strp(s string) *string { return &s }

func TestSaveOverwritesChangedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.conf")
	require.NoError(t, os.WriteFile(path, []byte("foo = bar\n"), 0644))

	tr := tree.New()
	root := tr.MakeNode(strp("app.conf"), nil, tr.Root())
	l := lens.SimplevarsLines{}
	require.NoError(t, l.Get(tr, root, []byte("foo = bar\n")))
	tree.Clean(root)
	root.FindChild("foo").SetValue(strp("baz"))

	s := New(lens.DefaultRegistry(), ModeOverwrite)
	results, err := s.Save(map[string]FileBinding{path: {Node: root, Lens: "Simplevars.lines"}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Changed)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "foo = baz\n", string(got))
}

func TestSaveBackupModeKeepsOldContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.conf")
	require.NoError(t, os.WriteFile(path, []byte("foo = bar\n"), 0644))

	tr := tree.New()
	root := tr.MakeNode(strp("app.conf"), nil, tr.Root())
	l := lens.SimplevarsLines{}
	require.NoError(t, l.Get(tr, root, []byte("foo = bar\n")))
	tree.Clean(root)
	root.FindChild("foo").SetValue(strp("baz"))

	s := New(lens.DefaultRegistry(), ModeBackup)
	_, err := s.Save(map[string]FileBinding{path: {Node: root, Lens: "Simplevars.lines"}})
	require.NoError(t, err)

	backup, err := os.ReadFile(path + backupExt)
	require.NoError(t, err)
	assert.Equal(t, "foo = bar\n", string(backup))
}

func TestSaveNoopModeWritesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.conf")
	require.NoError(t, os.WriteFile(path, []byte("foo = bar\n"), 0644))

	tr := tree.New()
	root := tr.MakeNode(strp("app.conf"), nil, tr.Root())
	l := lens.SimplevarsLines{}
	require.NoError(t, l.Get(tr, root, []byte("foo = bar\n")))
	tree.Clean(root)
	root.FindChild("foo").SetValue(strp("baz"))

	s := New(lens.DefaultRegistry(), ModeNoop)
	results, err := s.Save(map[string]FileBinding{path: {Node: root, Lens: "Simplevars.lines"}})
	require.NoError(t, err)
	assert.True(t, results[0].Changed)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "foo = bar\n", string(got))
}

func TestSaveSkipsCleanFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.conf")
	require.NoError(t, os.WriteFile(path, []byte("foo = bar\n"), 0644))

	tr := tree.New()
	root := tr.MakeNode(strp("app.conf"), nil, tr.Root())
	l := lens.SimplevarsLines{}
	require.NoError(t, l.Get(tr, root, []byte("foo = bar\n")))
	tree.Clean(root)

	s := New(lens.DefaultRegistry(), ModeOverwrite)
	results, err := s.Save(map[string]FileBinding{path: {Node: root, Lens: "Simplevars.lines"}})
	require.NoError(t, err)
	assert.False(t, results[0].Changed)
}
