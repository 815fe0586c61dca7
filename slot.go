package typbatch

// SlotCell memoizes one derived value for a file together with the
// fingerprint of the raw content it was derived from and the generation
// that last touched it. Cells are owned exclusively by their FileSlot
// and are only mutated through getOrInit.
type SlotCell[T any] struct {
	value       T
	err         error
	loaded      bool
	fingerprint Fingerprint
	lastAccess  uint64
}

// getOrInit resolves the cell's value with two cheap gates in front of
// the expensive work:
//
//  1. Generation gate: if the cell was already touched in this run,
//     return the cached result without calling load at all.
//  2. Fingerprint gate: otherwise load the raw content and hash it,
//     error state included. If the fingerprint matches the stored one,
//     return the cached result without calling process.
//
// Only genuinely changed content reaches process, which receives the
// previous value (when there was a successful one) so it can update
// incremental state in place instead of rebuilding it.
func (c *SlotCell[T]) getOrInit(
	gen uint64,
	load func() ([]byte, error),
	process func(data []byte, prev T, hadPrev bool) (T, error),
) (T, error) {
	touched := gen != 0 && c.lastAccess == gen
	c.lastAccess = gen

	if touched && c.loaded {
		return c.value, c.err
	}

	data, loadErr := load()
	fp := fingerprintOf(data, loadErr)
	if fp == c.fingerprint && c.loaded {
		return c.value, c.err
	}
	c.fingerprint = fp

	var prev T
	hadPrev := c.loaded && c.err == nil
	if hadPrev {
		prev = c.value
	}

	var value T
	err := loadErr
	if err == nil {
		value, err = process(data, prev, hadPrev)
	}
	if err != nil {
		var zero T
		value = zero
	}
	c.value, c.err, c.loaded = value, err, true
	return value, err
}

// FileSlot owns the cached source and raw bytes for a single FileID.
// Slots live in a FileCache for the process lifetime, or transiently
// during snapshot construction.
type FileSlot struct {
	id     FileID
	source SlotCell[*Source]
	bytes  SlotCell[[]byte]
}

// newFileSlot creates an empty slot for the given identity.
func newFileSlot(id FileID) *FileSlot {
	return &FileSlot{id: id}
}

// Source returns the parsed source for this slot, reloading and
// reparsing only when the content fingerprint changed since the last
// run. An existing source is edited in place on reparse.
func (s *FileSlot) Source(run *Run, loader *Loader) (*Source, error) {
	run.record(s.id)
	return s.source.getOrInit(
		run.Generation(),
		func() ([]byte, error) { return loader.ReadFile(s.id, run) },
		func(data []byte, prev *Source, hadPrev bool) (*Source, error) {
			text, err := decodeUTF8(data)
			if err != nil {
				return nil, &FileError{Path: s.id.Path(), Kind: ErrInvalidEncoding}
			}
			if hadPrev {
				prev.Replace(text)
				return prev, nil
			}
			return NewSource(s.id, text), nil
		},
	)
}

// Bytes returns the raw bytes for this slot, subject to the same
// generation and fingerprint gates as Source.
func (s *FileSlot) Bytes(run *Run, loader *Loader) ([]byte, error) {
	run.record(s.id)
	return s.bytes.getOrInit(
		run.Generation(),
		func() ([]byte, error) { return loader.ReadFile(s.id, run) },
		func(data []byte, _ []byte, _ bool) ([]byte, error) { return data, nil },
	)
}
