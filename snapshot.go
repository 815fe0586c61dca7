package typbatch

import (
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// Snapshot is an immutable map of pre-resolved file content, built once
// per batch by walking the transitive import closure of a set of entry
// files. After construction it is read-only for its entire lifetime, so
// any number of workers can consult it without locking; a new snapshot
// is built rather than mutating an existing one.
type Snapshot struct {
	sources map[FileID]*Source
	bytes   map[FileID][]byte
}

// SnapshotOption configures snapshot construction.
type SnapshotOption func(*snapshotConfig)

type snapshotConfig struct {
	prelude     string
	postlude    string
	onLoad      func(path string)
	fs          afero.Fs
	parallelism int
}

// WithPrelude injects text at the beginning of each entry file. Imported
// files are never injected.
func WithPrelude(prelude string) SnapshotOption {
	return func(c *snapshotConfig) { c.prelude = prelude }
}

// WithPostlude injects text at the end of each entry file.
func WithPostlude(postlude string) SnapshotOption {
	return func(c *snapshotConfig) { c.postlude = postlude }
}

// WithOnLoad registers a callback invoked once per entry file as it is
// loaded. Called concurrently from worker goroutines.
func WithOnLoad(fn func(path string)) SnapshotOption {
	return func(c *snapshotConfig) { c.onLoad = fn }
}

// WithSnapshotFS sets the filesystem snapshot construction reads from.
// Primarily useful for testing with in-memory filesystems.
func WithSnapshotFS(fs afero.Fs) SnapshotOption {
	return func(c *snapshotConfig) { c.fs = fs }
}

// WithSnapshotParallelism bounds the number of concurrent file loads.
func WithSnapshotParallelism(n int) SnapshotOption {
	return func(c *snapshotConfig) {
		if n > 0 {
			c.parallelism = n
		}
	}
}

// BuildSnapshot loads the entry files and breadth-first traverses their
// import graph, freezing everything reachable into an immutable
// snapshot.
//
// Entry files are fail-fast: the first I/O error aborts the whole build,
// and an entry outside the project root is a hard error. Imported files
// are fail-soft: a missing or unreadable import is simply left out, and
// the engine surfaces the authoritative diagnostic during compilation.
// Import cycles terminate through the seen-set.
func BuildSnapshot(entries []string, root string, opts ...SnapshotOption) (*Snapshot, error) {
	cfg := snapshotConfig{
		fs:          afero.NewOsFs(),
		parallelism: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	root = normalizeForFS(root, cfg.fs)

	// Resolve entry identities; these receive prelude/postlude injection.
	entryIDs := make([]FileID, len(entries))
	for i, entry := range entries {
		abs := entry
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(root, abs)
		}
		id, ok := FileIDInRoot(normalizeForFS(abs, cfg.fs), root)
		if !ok {
			return nil, &SnapshotError{Path: entry, Err: ErrOutsideRoot}
		}
		entryIDs[i] = id
	}

	sources := make(map[FileID]*Source)
	seen := make(map[FileID]struct{})
	var pending []FileID

	// Load entry files in parallel, injecting affixes. First error wins.
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(cfg.parallelism)
	for i := range entryIDs {
		id := entryIDs[i]
		entry := entries[i]
		g.Go(func() error {
			text, err := readPhysicalText(cfg.fs, root, id)
			if err != nil {
				return &SnapshotError{Path: entry, Err: err}
			}
			src := NewSource(id, injectAffixes(text, cfg.prelude, cfg.postlude))
			mu.Lock()
			sources[id] = src
			mu.Unlock()
			if cfg.onLoad != nil {
				cfg.onLoad(entry)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, id := range entryIDs {
		seen[id] = struct{}{}
		if src, ok := sources[id]; ok {
			pending = append(pending, scanImports(src)...)
		}
	}

	// BFS over the import graph. The seen-set covers every attempted
	// identity, failed loads included, so cycles and repeated failures
	// both terminate.
	for len(pending) > 0 {
		var frontier []FileID
		for _, id := range pending {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			frontier = append(frontier, id)
		}
		pending = pending[:0]
		if len(frontier) == 0 {
			break
		}

		loaded := make([]*Source, len(frontier))
		var fg errgroup.Group
		fg.SetLimit(cfg.parallelism)
		for i := range frontier {
			i := i
			id := frontier[i]
			fg.Go(func() error {
				text, err := readPhysicalText(cfg.fs, root, id)
				if err != nil {
					return nil // imports are fail-soft
				}
				loaded[i] = NewSource(id, text)
				return nil
			})
		}
		fg.Wait() //nolint:errcheck // workers never return errors

		for _, src := range loaded {
			if src == nil {
				continue
			}
			sources[src.ID()] = src
			pending = append(pending, scanImports(src)...)
		}
	}

	return &Snapshot{sources: sources, bytes: make(map[FileID][]byte)}, nil
}

// Source returns the pre-resolved source for id, if present.
func (s *Snapshot) Source(id FileID) (*Source, bool) {
	src, ok := s.sources[id]
	return src, ok
}

// Bytes returns the pre-resolved raw bytes for id, if present.
func (s *Snapshot) Bytes(id FileID) ([]byte, bool) {
	data, ok := s.bytes[id]
	return data, ok
}

// SourceCount returns the number of sources frozen into the snapshot.
func (s *Snapshot) SourceCount() int {
	return len(s.sources)
}

// readPhysicalText reads and decodes a project file straight from disk.
// Snapshot construction deliberately bypasses the virtual filesystem:
// snapshot entries are physical project content, and virtual overrides
// resolve through the normal loader path on snapshot misses.
func readPhysicalText(hostFS afero.Fs, root string, id FileID) (string, error) {
	rel := strings.TrimPrefix(id.Path(), "/")
	path := filepath.Join(root, filepath.FromSlash(rel))
	info, err := hostFS.Stat(path)
	if err != nil {
		return "", fileErrorFromOS(path, err)
	}
	if info.IsDir() {
		return "", &FileError{Path: path, Kind: ErrIsDirectory}
	}
	data, err := afero.ReadFile(hostFS, path)
	if err != nil {
		return "", fileErrorFromOS(path, err)
	}
	text, err := decodeUTF8(data)
	if err != nil {
		return "", &FileError{Path: path, Kind: ErrInvalidEncoding}
	}
	return text, nil
}

// normalizeForFS normalizes through the OS only when reading the real
// filesystem; in-memory filesystems keep paths as given.
func normalizeForFS(path string, hostFS afero.Fs) string {
	if isOsFs(hostFS) {
		return normalizePath(path)
	}
	return path
}
