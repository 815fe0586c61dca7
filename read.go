package typbatch

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/afero"
)

// Loader resolves FileIDs to raw bytes. Resolution order:
//
//  1. Sentinel identities (EmptyID, StdinID) short-circuit.
//  2. For package-qualified identities, the virtual filesystem's package
//     hook is consulted before any download.
//  3. The virtual filesystem's path hook is consulted for the plain
//     virtual path.
//  4. The identity resolves to a physical path under the project root
//     (or the prepared package directory) and is read from disk.
//
// Every successful resolution is recorded in the run's access log.
type Loader struct {
	Root     string    // absolute project root
	FS       afero.Fs  // physical filesystem; defaults to the OS filesystem
	VFS      VirtualFS // overrides the process-wide virtual filesystem when set
	Packages Storage   // overrides the process-wide package storage when set
	Progress Progress  // package preparation notifications; silent by default
	Stdin    io.Reader // defaults to os.Stdin
}

// NewLoader creates a loader rooted at the given project directory,
// reading from the OS filesystem.
func NewLoader(root string) *Loader {
	return &Loader{Root: normalizePath(root), FS: afero.NewOsFs()}
}

// ReadFile resolves id to raw bytes, following the documented resolution
// order and recording the access on run.
func (l *Loader) ReadFile(id FileID, run *Run) ([]byte, error) {
	switch id {
	case EmptyID:
		return nil, nil
	case StdinID:
		return l.readStdin()
	}

	if pkg, ok := id.Package(); ok {
		if data, ok := l.readVirtualPackage(pkg, id.Path()); ok {
			run.record(id)
			return data, nil
		}
	}
	if data, ok := l.readVirtual(id.Path()); ok {
		run.record(id)
		return data, nil
	}

	path, err := l.resolvePhysical(id)
	if err != nil {
		return nil, err
	}
	data, err := l.readDisk(path)
	if err != nil {
		return nil, err
	}
	run.record(id)
	return data, nil
}

func (l *Loader) readVirtual(path string) ([]byte, bool) {
	if l.VFS != nil {
		return l.VFS.Read(path)
	}
	return readGlobalVirtual(path)
}

func (l *Loader) readVirtualPackage(pkg PackageSpec, path string) ([]byte, bool) {
	if l.VFS != nil {
		return l.VFS.ReadPackage(pkg, path)
	}
	return readGlobalVirtualPackage(pkg, path)
}

// resolvePhysical turns id into an on-disk path, preparing the package
// directory first for package-qualified identities.
func (l *Loader) resolvePhysical(id FileID) (string, error) {
	root := l.Root
	if pkg, ok := id.Package(); ok {
		storage := l.Packages
		if storage == nil {
			storage = activeStorage()
		}
		dir, err := storage.Prepare(pkg, l.Progress)
		if err != nil {
			return "", err
		}
		root = dir
	}
	if root == "" {
		return "", &FileError{Path: id.Path(), Kind: ErrAccessDenied}
	}
	rel := strings.TrimPrefix(id.Path(), "/")
	return filepath.Join(root, filepath.FromSlash(rel)), nil
}

func (l *Loader) readDisk(path string) ([]byte, error) {
	hostFS := l.FS
	if hostFS == nil {
		hostFS = afero.NewOsFs()
	}
	info, err := hostFS.Stat(path)
	if err != nil {
		return nil, fileErrorFromOS(path, err)
	}
	if info.IsDir() {
		return nil, &FileError{Path: path, Kind: ErrIsDirectory}
	}
	data, err := afero.ReadFile(hostFS, path)
	if err != nil {
		return nil, fileErrorFromOS(path, err)
	}
	return data, nil
}

func (l *Loader) readStdin() ([]byte, error) {
	r := l.Stdin
	if r == nil {
		r = os.Stdin
	}
	data, err := io.ReadAll(r)
	if err != nil && !errors.Is(err, fs.ErrClosed) && !errors.Is(err, io.ErrClosedPipe) {
		return nil, &FileError{Path: StdinID.Path(), Err: err}
	}
	return data, nil
}

// fileErrorFromOS maps an OS error onto the package taxonomy while
// preserving the original error for unwrapping.
func fileErrorFromOS(path string, err error) error {
	kind := error(nil)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = ErrNotFound
	case errors.Is(err, fs.ErrPermission):
		kind = ErrAccessDenied
	}
	return &FileError{Path: path, Kind: kind, Err: err}
}

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// decodeUTF8 decodes source bytes as UTF-8, stripping a byte-order mark
// if present.
func decodeUTF8(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return "", ErrInvalidEncoding
	}
	return string(data), nil
}
