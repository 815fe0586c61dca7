package typbatch

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

// Progress receives package preparation notifications. Downloads happen
// lazily on first access, so callers that want visibility pass their own
// implementation through the Loader.
type Progress interface {
	Start(pkg PackageSpec)
	Done(pkg PackageSpec, err error)
}

// silentProgress discards all notifications.
type silentProgress struct{}

func (silentProgress) Start(PackageSpec)       {}
func (silentProgress) Done(PackageSpec, error) {}

// Storage prepares package contents on the local filesystem. The
// contract is deliberately small: given a spec, make its files available
// and return the directory holding them. A registry client plugs in
// here; this package ships only directory-backed storage.
type Storage interface {
	Prepare(pkg PackageSpec, progress Progress) (string, error)
}

// DirStorage serves packages from a directory tree laid out as
// root/namespace/name/version. It never downloads anything; a spec with
// no directory yields ErrPackageNotFound.
type DirStorage struct {
	Root string
	FS   afero.Fs // defaults to the OS filesystem
}

// Prepare implements Storage.
func (d DirStorage) Prepare(pkg PackageSpec, progress Progress) (string, error) {
	if progress == nil {
		progress = silentProgress{}
	}
	progress.Start(pkg)

	fs := d.FS
	if fs == nil {
		fs = afero.NewOsFs()
	}
	dir := filepath.Join(d.Root, pkg.Namespace, pkg.Name, pkg.Version.String())
	ok, err := afero.DirExists(fs, dir)
	if err != nil {
		progress.Done(pkg, err)
		return "", &FileError{Path: dir, Err: err}
	}
	if !ok {
		err := &FileError{Path: dir, Kind: ErrPackageNotFound}
		progress.Done(pkg, err)
		return "", err
	}
	progress.Done(pkg, nil)
	return dir, nil
}

// defaultStorage is the process-wide package storage: set once, first
// caller wins, read-only thereafter.
var defaultStorage struct {
	mu sync.Mutex
	s  Storage
}

// SetStorage installs the process-wide package storage. Only the first
// call takes effect; it reports whether this call installed s.
func SetStorage(s Storage) bool {
	defaultStorage.mu.Lock()
	defer defaultStorage.mu.Unlock()
	if defaultStorage.s != nil {
		return false
	}
	defaultStorage.s = s
	return true
}

// activeStorage returns the process-wide storage, initializing it with
// directory storage under the platform cache directory on first use.
func activeStorage() Storage {
	defaultStorage.mu.Lock()
	defer defaultStorage.mu.Unlock()
	if defaultStorage.s == nil {
		root, err := os.UserCacheDir()
		if err != nil {
			root = os.TempDir()
		}
		defaultStorage.s = DirStorage{Root: filepath.Join(root, "typbatch", "packages")}
	}
	return defaultStorage.s
}
