// Package loader drives spec.md §4.3's per-transform load sweep: for
// each configured transform, resolve its lens, expand its globs
// against the filesystem, skip files whose mtime proves they are
// unchanged, and splice the parsed fragment into the canonical tree
// under /files. Concurrency is bounded with an errgroup plus a
// semaphore channel, same shape as a bounded fan-out over a tree's
// children.
package loader

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/heracles-engine/heracles/internal/lens"
	"github.com/heracles-engine/heracles/internal/transform"
	"github.com/heracles-engine/heracles/internal/tree"
)

// maxConcurrentLoads bounds in-flight file reads per sweep.
const maxConcurrentLoads = 8

// FileSystem abstracts the bits of disk access the loader needs so
// tests can exercise it without touching the real filesystem.
type FileSystem interface {
	Glob(pattern string) ([]string, error)
	Stat(path string) (os.FileInfo, error)
	ReadFile(path string) ([]byte, error)
}

type osFileSystem struct{}

func (osFileSystem) Glob(pattern string) ([]string, error) { return filepath.Glob(pattern) }
func (osFileSystem) Stat(path string) (os.FileInfo, error) { return os.Stat(path) }
func (osFileSystem) ReadFile(path string) ([]byte, error)  { return os.ReadFile(path) }

// OSFileSystem is the production FileSystem backed by the real disk.
var OSFileSystem FileSystem = osFileSystem{}

// FileMeta records what the loader knows about one loaded file, the
// backing data for /heracles/load/<xfm>/files/<path>/* reporting.
type FileMeta struct {
	Path    string
	ModTime time.Time
	Lens    string
	Node    *tree.Node
	Error   error
}

// Loader owns the registry, lens registry, and per-file metadata
// needed to load and reload transforms into a tree.
type Loader struct {
	FS         FileSystem
	Transforms *transform.Registry
	Lenses     *lens.Registry
	Log        *logrus.Entry

	files map[string]*FileMeta
}

func New(transforms *transform.Registry, lenses *lens.Registry) *Loader {
	return &Loader{
		FS:         OSFileSystem,
		Transforms: transforms,
		Lenses:     lenses,
		Log:        logrus.NewEntry(logrus.StandardLogger()),
		files:      make(map[string]*FileMeta),
	}
}

// Load runs every configured transform against tr's /files subtree,
// honoring the mtime/dirty skip check so an unchanged file is not
// re-parsed (spec.md §4.3's step 4).
func (l *Loader) Load(ctx context.Context, tr *tree.Tree, filesRoot *tree.Node) error {
	for _, xfm := range l.Transforms.All() {
		if err := l.loadTransform(ctx, tr, filesRoot, xfm); err != nil {
			return errors.Wrapf(err, "loading transform %s", xfm.Name)
		}
	}
	return nil
}

func (l *Loader) loadTransform(ctx context.Context, tr *tree.Tree, filesRoot *tree.Node, xfm *transform.Transform) error {
	lns, ok := l.Lenses.Lookup(xfm.Lens)
	if !ok {
		return errors.Errorf("transform %s: no such lens %q", xfm.Name, xfm.Lens)
	}

	var candidates []string
	seen := map[string]bool{}
	for _, f := range xfm.Filters {
		if f.Exclude {
			continue
		}
		matches, err := l.FS.Glob(f.Glob)
		if err != nil {
			return errors.Wrapf(err, "globbing %q", f.Glob)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				candidates = append(candidates, m)
			}
		}
	}

	paths, err := xfm.Expand(candidates)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	semc := make(chan struct{}, maxConcurrentLoads)
	mu := make(chan struct{}, 1)
	mu <- struct{}{}

	for _, path := range paths {
		path := path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			semc <- struct{}{}
			defer func() { <-semc }()
			return l.loadOne(tr, filesRoot, xfm, lns, path, mu)
		})
	}
	return g.Wait()
}

// loadOne fetches and parses one file. Disk I/O (the slow part) runs
// unlocked so concurrent loads overlap; mu is only held around reads
// and writes of shared state — l.files and the tree itself, which
// PathCreate/Unlink/Get mutate structurally and so cannot be touched
// by two goroutines at once.
func (l *Loader) loadOne(tr *tree.Tree, filesRoot *tree.Node, xfm *transform.Transform, lns lens.Lens, path string, mu chan struct{}) error {
	info, err := l.FS.Stat(path)
	if err != nil {
		return errors.Wrapf(err, "stat %s", path)
	}
	if !info.Mode().IsRegular() {
		return nil
	}

	<-mu
	existing, wasLoaded := l.files[path]
	skip := wasLoaded && existing.ModTime.Equal(info.ModTime()) && existing.Error == nil && !existing.Node.Dirty()
	mu <- struct{}{}
	if skip {
		return nil
	}

	data, err := l.FS.ReadFile(path)
	if err != nil {
		<-mu
		l.files[path] = &FileMeta{Path: path, Error: err}
		mu <- struct{}{}
		return errors.Wrapf(err, "reading %s", path)
	}

	<-mu
	defer func() { mu <- struct{}{} }()

	labels := tree.SplitPath(path)
	fileNode := tr.PathCreate(filesRoot, labels...)
	for _, c := range append([]*tree.Node(nil), fileNode.Children()...) {
		tr.Unlink(c)
	}
	if err := lns.Get(tr, fileNode, data); err != nil {
		l.files[path] = &FileMeta{Path: path, ModTime: info.ModTime(), Error: err}
		return errors.Wrapf(err, "lens %s parsing %s", xfm.Lens, path)
	}

	tree.Clean(fileNode)
	l.files[path] = &FileMeta{Path: path, ModTime: info.ModTime(), Lens: xfm.Lens, Node: fileNode}
	return nil
}

// Reload marks every previously loaded file as needing a fresh read,
// re-runs Load, and then, for files no longer matched by any
// transform, unlinks their file node and drops their metadata. Parent
// directory nodes left without children are kept.
func (l *Loader) Reload(ctx context.Context, tr *tree.Tree, filesRoot *tree.Node) error {
	for _, m := range l.files {
		m.ModTime = time.Time{}
	}
	if err := l.Load(ctx, tr, filesRoot); err != nil {
		return err
	}
	stillMatched := map[string]bool{}
	for _, xfm := range l.Transforms.All() {
		for path := range l.files {
			ok, err := xfm.Applies(path)
			if err == nil && ok {
				stillMatched[path] = true
			}
		}
	}
	for path := range l.files {
		if !stillMatched[path] {
			tr.Unlink(l.files[path].Node)
			delete(l.files, path)
		}
	}
	return nil
}

// FileMetadata returns what the loader recorded for path, if it was loaded.
func (l *Loader) FileMetadata(path string) (*FileMeta, bool) {
	m, ok := l.files[path]
	return m, ok
}

// All returns every file the loader has recorded metadata for, keyed
// by absolute path.
func (l *Loader) All() map[string]*FileMeta {
	out := make(map[string]*FileMeta, len(l.files))
	for k, v := range l.files {
		out[k] = v
	}
	return out
}
