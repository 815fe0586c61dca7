package typbatch

import "sync"

// VirtualFS is a pluggable content override consulted before any
// physical file resolution. It can shadow ordinary project files and
// whole packages; the cache and the engine never see the difference.
//
// Implementations must be safe for concurrent readers.
type VirtualFS interface {
	// Read returns content for a rooted virtual path such as
	// "/_data/site.json", or false to fall through to physical
	// resolution.
	Read(path string) ([]byte, bool)

	// ReadPackage returns content for a path inside a package, or false
	// to fall through to normal package resolution.
	ReadPackage(pkg PackageSpec, path string) ([]byte, bool)
}

// MapVFS is a map-backed VirtualFS for injecting fixed content without
// writing a custom implementation. The zero value is not usable; call
// NewMapVFS.
//
// MapVFS is safe for concurrent readers once populated. Mutating it
// while compilations are running is a caller error.
type MapVFS struct {
	files map[string][]byte
	pkgs  map[PackageSpec]map[string][]byte
}

// NewMapVFS creates an empty map-backed virtual filesystem.
func NewMapVFS() *MapVFS {
	return &MapVFS{
		files: make(map[string][]byte),
		pkgs:  make(map[PackageSpec]map[string][]byte),
	}
}

// Insert registers string content for a virtual path.
func (m *MapVFS) Insert(path, content string) {
	m.files[rootedPath(path)] = []byte(content)
}

// InsertBytes registers binary content for a virtual path.
func (m *MapVFS) InsertBytes(path string, content []byte) {
	m.files[rootedPath(path)] = content
}

// InsertPackage registers content for a path inside a virtual package.
func (m *MapVFS) InsertPackage(pkg PackageSpec, path string, content []byte) {
	files, ok := m.pkgs[pkg]
	if !ok {
		files = make(map[string][]byte)
		m.pkgs[pkg] = files
	}
	files[rootedPath(path)] = content
}

// Contains reports whether the path has virtual content.
func (m *MapVFS) Contains(path string) bool {
	_, ok := m.files[rootedPath(path)]
	return ok
}

// Remove drops a virtual path, returning its previous content.
func (m *MapVFS) Remove(path string) []byte {
	key := rootedPath(path)
	content := m.files[key]
	delete(m.files, key)
	return content
}

// Len returns the number of registered virtual paths.
func (m *MapVFS) Len() int {
	return len(m.files)
}

// Read implements VirtualFS.
func (m *MapVFS) Read(path string) ([]byte, bool) {
	content, ok := m.files[rootedPath(path)]
	return content, ok
}

// ReadPackage implements VirtualFS.
func (m *MapVFS) ReadPackage(pkg PackageSpec, path string) ([]byte, bool) {
	files, ok := m.pkgs[pkg]
	if !ok {
		return nil, false
	}
	content, ok := files[rootedPath(path)]
	return content, ok
}

// globalVFS is the process-wide override: registered rarely, read by
// many concurrent compilations.
var globalVFS struct {
	mu sync.RWMutex
	fs VirtualFS
}

// SetVirtualFS installs the process-wide virtual filesystem. Pass nil to
// remove the override. Loaders with an explicit VFS ignore this.
func SetVirtualFS(fs VirtualFS) {
	globalVFS.mu.Lock()
	defer globalVFS.mu.Unlock()
	globalVFS.fs = fs
}

// IsVirtualPath reports whether the process-wide override answers for
// the given rooted path.
func IsVirtualPath(path string) bool {
	_, ok := readGlobalVirtual(path)
	return ok
}

func readGlobalVirtual(path string) ([]byte, bool) {
	globalVFS.mu.RLock()
	fs := globalVFS.fs
	globalVFS.mu.RUnlock()
	if fs == nil {
		return nil, false
	}
	return fs.Read(path)
}

func readGlobalVirtualPackage(pkg PackageSpec, path string) ([]byte, bool) {
	globalVFS.mu.RLock()
	fs := globalVFS.fs
	globalVFS.mu.RUnlock()
	if fs == nil {
		return nil, false
	}
	return fs.ReadPackage(pkg, path)
}
