package typbatch

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// Version is a strict semantic version with three numeric components.
type Version struct {
	Major int
	Minor int
	Patch int
}

// String formats the version as "major.minor.patch".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// PackageSpec identifies a downloadable package by namespace, name and
// exact version.
type PackageSpec struct {
	Namespace string
	Name      string
	Version   Version
}

// String formats the spec as "@namespace/name:major.minor.patch".
func (p PackageSpec) String() string {
	return fmt.Sprintf("@%s/%s:%s", p.Namespace, p.Name, p.Version)
}

// FileID uniquely names a file: a rooted virtual path, optionally
// qualified by a package spec. FileIDs are cheap comparable values and
// serve as the cache key everywhere in this package. Two IDs are equal
// iff both path and package match.
type FileID struct {
	vpath    string // rooted, slash-separated, cleaned
	pkg      PackageSpec
	inPkg    bool
	detached bool // sentinel IDs are never resolved against a root
}

// Sentinel file identities. They short-circuit resolution: EmptyID loads
// no content at all, StdinID loads the process standard input.
var (
	EmptyID = FileID{vpath: "/<empty>", detached: true}
	StdinID = FileID{vpath: "/<stdin>", detached: true}
)

// NewFileID creates an identity for a project file. The path is
// interpreted relative to the project root and normalized to rooted,
// slash-separated form.
func NewFileID(p string) FileID {
	return FileID{vpath: rootedPath(p)}
}

// PackageFileID creates an identity for a file inside a package.
func PackageFileID(pkg PackageSpec, p string) FileID {
	return FileID{vpath: rootedPath(p), pkg: pkg, inPkg: true}
}

// FileIDInRoot converts an absolute filesystem path into a FileID,
// provided the path lies under root. Reports false otherwise.
func FileIDInRoot(abs, root string) (FileID, bool) {
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return FileID{}, false
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return FileID{}, false
	}
	return NewFileID(rel), true
}

// Path returns the rooted virtual path, e.g. "/chapters/intro.typ".
func (id FileID) Path() string {
	return id.vpath
}

// Package returns the package spec qualifying this identity, if any.
func (id FileID) Package() (PackageSpec, bool) {
	return id.pkg, id.inPkg
}

// Join resolves a relative path against the directory of this identity,
// staying within the same package.
func (id FileID) Join(rel string) FileID {
	joined := path.Join(path.Dir(id.vpath), rel)
	return FileID{vpath: rootedPath(joined), pkg: id.pkg, inPkg: id.inPkg}
}

// String renders the identity for diagnostics.
func (id FileID) String() string {
	if id.inPkg {
		return id.pkg.String() + id.vpath
	}
	return id.vpath
}

// rootedPath normalizes p to a cleaned, slash-separated path anchored at
// "/". Leading ".." segments cannot escape the root; path.Clean resolves
// them against it.
func rootedPath(p string) string {
	return path.Clean("/" + filepath.ToSlash(p))
}
