// Package saver implements spec.md §4.4's save sweep: for each loaded
// file, run its lens Put, compare against the existing disk content,
// and if changed, write it back atomically via a temp-file-plus-
// rename, honoring the configured backup/newfile/noop/overwrite mode.
// Writes go through a temp-file-then-syscall.Rename pattern for
// crash-safe atomic replacement, with a copy fallback when rename
// fails across devices, and use a ".heranew"/".herasave" suffix
// convention for newfile/backup modes.
package saver

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/heracles-engine/heracles/internal/lens"
	"github.com/heracles-engine/heracles/internal/tree"
)

// Mode selects how an on-disk file changed by Save is written back,
// spec.md §6's save-mode enumeration.
type Mode int

const (
	// ModeOverwrite replaces the file in place (the default).
	ModeOverwrite Mode = iota
	// ModeBackup additionally leaves the old content at path+".herasave".
	ModeBackup
	// ModeNewFile writes the new content to path+".heranew" instead of
	// touching the original file at all.
	ModeNewFile
	// ModeNoop computes and reports changes without writing anything.
	ModeNoop
)

const (
	backupExt  = ".herasave"
	newFileExt = ".heranew"
)

// Result records the outcome of saving a single file.
type Result struct {
	Path    string
	Changed bool
	Written string // the path actually written, "" if nothing was written
	Err     error
}

// Saver runs the save sweep for every file node beneath a /files
// subtree.
type Saver struct {
	Lenses *lens.Registry
	Mode   Mode
	Log    *logrus.Entry
}

func New(lenses *lens.Registry, mode Mode) *Saver {
	return &Saver{Lenses: lenses, Mode: mode, Log: logrus.NewEntry(logrus.StandardLogger())}
}

// Save walks every file node loader.Loader recorded and, for each one
// whose subtree is dirty, re-serializes it with lensName and writes it
// back per s.Mode. fileNodes maps an absolute disk path to the tree
// node its content was spliced under and the lens used to load it.
func (s *Saver) Save(fileNodes map[string]FileBinding) ([]Result, error) {
	var results []Result
	for path, fb := range fileNodes {
		r := s.saveOne(path, fb)
		results = append(results, r)
		if r.Err != nil {
			return results, errors.Wrapf(r.Err, "saving %s", path)
		}
	}
	return results, nil
}

// FileBinding pairs a loaded file's tree node with the lens used to
// load it, enough context for Save to re-serialize it.
type FileBinding struct {
	Node *tree.Node
	Lens string
}

func (s *Saver) saveOne(path string, fb FileBinding) Result {
	if !fb.Node.Dirty() {
		return Result{Path: path}
	}

	lns, ok := s.Lenses.Lookup(fb.Lens)
	if !ok {
		return Result{Path: path, Err: errors.Errorf("no such lens %q", fb.Lens)}
	}

	oldContent, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return Result{Path: path, Err: errors.Wrapf(err, "reading current content of %s", path)}
	}

	newContent, err := lns.Put(fb.Node, oldContent)
	if err != nil {
		return Result{Path: path, Err: errors.Wrapf(err, "lens %s serializing %s", fb.Lens, path)}
	}

	if bytes.Equal(oldContent, newContent) {
		tree.Clean(fb.Node)
		return Result{Path: path, Changed: false}
	}

	if s.Mode == ModeNoop {
		return Result{Path: path, Changed: true}
	}

	target := path
	if s.Mode == ModeNewFile {
		target = path + newFileExt
	}

	if s.Mode == ModeBackup {
		if oldContent != nil {
			if err := os.WriteFile(path+backupExt, oldContent, 0644); err != nil {
				return Result{Path: path, Err: errors.Wrapf(err, "writing backup for %s", path)}
			}
		}
	}

	if err := atomicWrite(target, newContent, perm(path)); err != nil {
		return Result{Path: path, Err: errors.Wrapf(err, "writing %s", target)}
	}

	if s.Mode != ModeNewFile {
		tree.Clean(fb.Node)
	}

	s.Log.WithField("path", path).WithField("written", target).Info("saved file")
	return Result{Path: path, Changed: true, Written: target}
}

func perm(path string) os.FileMode {
	if fi, err := os.Stat(path); err == nil {
		return fi.Mode().Perm()
	}
	return 0644
}

// atomicWrite writes data to a temp file in target's directory, then
// renames it into place. Falls back to a read-then-write copy when
// the rename crosses a filesystem boundary (EXDEV) or the destination
// is briefly busy (EBUSY), mirroring transform.c's
// copy_if_rename_fails.
func atomicWrite(target string, data []byte, perm os.FileMode) error {
	tmp := target + newFileExt + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(tmp), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(tmp, data, perm); err != nil {
			return err
		}
	}
	f, err := os.Open(tmp)
	if err == nil {
		_ = f.Sync()
		_ = f.Close()
	}

	err = syscall.Rename(tmp, target)
	if err == nil {
		return nil
	}
	if errors.Is(err, syscall.EXDEV) || errors.Is(err, syscall.EBUSY) {
		return copyIfRenameFails(tmp, target)
	}
	return err
}

func copyIfRenameFails(tmp, target string) error {
	src, err := os.Open(tmp)
	if err != nil {
		return err
	}
	defer src.Close()
	dst, err := os.Create(target)
	if err != nil {
		return err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return err
	}
	if err := dst.Sync(); err != nil {
		return err
	}
	return os.Remove(tmp)
}
