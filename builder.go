package typbatch

import (
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// WorldBuilder configures and builds a World. Obtain one from NewWorld;
// unset knobs fall back to safe defaults (local cache, no fonts, the
// shared definitions table).
type WorldBuilder struct {
	mainPath  string
	root      string
	cache     CacheStrategy
	fonts     FontStrategy
	library   *Library
	prelude   string
	postlude  string
	timestamp *time.Time
	fs        afero.Fs
	vfs       VirtualFS
	storage   Storage
	progress  Progress
}

// NewWorld starts building a world for the given entry file under the
// given project root.
func NewWorld(mainPath, root string) *WorldBuilder {
	return &WorldBuilder{mainPath: mainPath, root: root}
}

// WithLocalCache uses a fresh run-scoped cache with no sharing.
func (b *WorldBuilder) WithLocalCache() *WorldBuilder {
	b.cache = LocalStrategy()
	return b
}

// WithSharedCache uses the process-wide file cache.
func (b *WorldBuilder) WithSharedCache() *WorldBuilder {
	b.cache = SharedStrategy(nil)
	return b
}

// WithFileCache uses a specific file cache instead of the process-wide
// one.
func (b *WorldBuilder) WithFileCache(cache *FileCache) *WorldBuilder {
	b.cache = SharedStrategy(cache)
	return b
}

// WithSnapshot serves file content from a pre-built immutable snapshot,
// lock-free.
func (b *WorldBuilder) WithSnapshot(snap *Snapshot) *WorldBuilder {
	b.cache = SnapshotStrategy(snap)
	return b
}

// WithFonts exposes the process-wide font table.
func (b *WorldBuilder) WithFonts() *WorldBuilder {
	b.fonts = FontsShared
	return b
}

// NoFonts exposes an empty font table; for evaluation-only scans.
func (b *WorldBuilder) NoFonts() *WorldBuilder {
	b.fonts = FontsNone
	return b
}

// WithInputs injects input values into a custom definitions table for
// this world.
func (b *WorldBuilder) WithInputs(inputs map[string]any) *WorldBuilder {
	b.library = NewLibrary(inputs)
	return b
}

// WithLibrary uses a pre-built definitions table.
func (b *WorldBuilder) WithLibrary(lib *Library) *WorldBuilder {
	b.library = lib
	return b
}

// WithPrelude prepends text to the entry file before compilation.
func (b *WorldBuilder) WithPrelude(prelude string) *WorldBuilder {
	b.prelude = prelude
	return b
}

// WithPostlude appends text to the entry file before compilation.
func (b *WorldBuilder) WithPostlude(postlude string) *WorldBuilder {
	b.postlude = postlude
	return b
}

// WithTimestamp fixes the date reported by Today. Without it, Today
// reports nothing and builds stay reproducible.
func (b *WorldBuilder) WithTimestamp(t time.Time) *WorldBuilder {
	b.timestamp = &t
	return b
}

// WithFS sets the physical filesystem the world's loader reads from.
// Primarily useful for testing with in-memory filesystems.
func (b *WorldBuilder) WithFS(fs afero.Fs) *WorldBuilder {
	b.fs = fs
	return b
}

// WithVirtualFS overrides the process-wide virtual filesystem for this
// world only.
func (b *WorldBuilder) WithVirtualFS(vfs VirtualFS) *WorldBuilder {
	b.vfs = vfs
	return b
}

// WithStorage overrides the process-wide package storage for this world
// only.
func (b *WorldBuilder) WithStorage(s Storage) *WorldBuilder {
	b.storage = s
	return b
}

// WithProgress receives package preparation notifications.
func (b *WorldBuilder) WithProgress(p Progress) *WorldBuilder {
	b.progress = p
	return b
}

// Build constructs the world and begins its run. The entry path is
// resolved against the project root; an entry outside the root falls
// back to its bare filename, matching loader resolution of detached
// content.
func (b *WorldBuilder) Build() *World {
	root := b.root
	mainAbs := b.mainPath
	if b.fs == nil || isOsFs(b.fs) {
		root = normalizePath(root)
		if !filepath.IsAbs(mainAbs) {
			mainAbs = filepath.Join(root, mainAbs)
		}
		mainAbs = normalizePath(mainAbs)
	} else if !filepath.IsAbs(mainAbs) {
		mainAbs = filepath.Join(root, mainAbs)
	}

	main, ok := FileIDInRoot(mainAbs, root)
	if !ok {
		main = NewFileID(filepath.Base(b.mainPath))
	}

	loader := &Loader{
		Root:     root,
		FS:       b.fs,
		VFS:      b.vfs,
		Packages: b.storage,
		Progress: b.progress,
	}
	if loader.FS == nil {
		loader.FS = afero.NewOsFs()
	}

	cache := b.cache
	if cache == nil {
		cache = LocalStrategy()
	}
	library := b.library
	if library == nil {
		library = DefaultLibrary()
	}

	return &World{
		root:      root,
		main:      main,
		cache:     cache,
		fonts:     b.fonts,
		library:   library,
		loader:    loader,
		run:       NewRun(),
		prelude:   b.prelude,
		postlude:  b.postlude,
		timestamp: b.timestamp,
	}
}

func isOsFs(fs afero.Fs) bool {
	_, ok := fs.(*afero.OsFs)
	return ok
}
