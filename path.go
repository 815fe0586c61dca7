package typbatch

import "path/filepath"

// normalizePath brings a filesystem path into absolute form, resolving
// symlinks when the path exists. A path that cannot be resolved is
// returned as given.
func normalizePath(p string) string {
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		p = resolved
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
