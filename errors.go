package typbatch

import (
	"errors"
	"fmt"
)

// Sentinel errors forming the file-access error taxonomy. Match them
// with errors.Is; the concrete error is usually a *FileError carrying
// the offending path.
var (
	// ErrNotFound is returned when a file does not exist.
	ErrNotFound = errors.New("file not found")
	// ErrAccessDenied is returned when a file cannot be accessed or an
	// identity cannot be resolved to a physical path.
	ErrAccessDenied = errors.New("access denied")
	// ErrIsDirectory is returned when a directory is read as a file.
	ErrIsDirectory = errors.New("is a directory")
	// ErrInvalidEncoding is returned when source bytes are not valid UTF-8.
	ErrInvalidEncoding = errors.New("invalid utf-8 encoding")
	// ErrOutsideRoot is returned when an entry file lies outside the
	// project root during snapshot construction.
	ErrOutsideRoot = errors.New("entry file outside project root")
	// ErrPackageNotFound is returned when package storage has no content
	// for a requested package spec.
	ErrPackageNotFound = errors.New("package not found")
)

// FileError ties a file-access failure to the path it occurred on.
// Kind is one of the sentinel errors above; Err preserves the underlying
// OS error when there is one.
type FileError struct {
	Path string
	Kind error
	Err  error
}

// Error implements the error interface.
func (e *FileError) Error() string {
	switch {
	case e.Kind != nil && e.Err != nil:
		return fmt.Sprintf("%s: %v: %v", e.Path, e.Kind, e.Err)
	case e.Kind != nil:
		return fmt.Sprintf("%s: %v", e.Path, e.Kind)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Path + ": file error"
}

// Is reports whether target matches this error's kind, letting
// errors.Is(err, ErrNotFound) work through the wrapper.
func (e *FileError) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

// Unwrap returns the underlying OS error, if any.
func (e *FileError) Unwrap() error {
	return e.Err
}

// SnapshotError reports the first entry-file failure encountered while
// building a snapshot. Entry failures are fail-fast: the whole build is
// aborted rather than partially succeeding.
type SnapshotError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *SnapshotError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *SnapshotError) Unwrap() error {
	return e.Err
}
