package typbatch

import "sync"

// Font is a handle to one discovered font face.
type Font struct {
	Family string
	Path   string
	Index  int
}

// FontTable indexes the discovered font faces. Immutable once built.
type FontTable struct {
	fonts []Font
}

// NewFontTable builds a table over the given faces.
func NewFontTable(fonts []Font) *FontTable {
	return &FontTable{fonts: fonts}
}

// Font returns the face at the given index.
func (t *FontTable) Font(index int) (Font, bool) {
	if index < 0 || index >= len(t.fonts) {
		return Font{}, false
	}
	return t.fonts[index], true
}

// Len returns the number of faces in the table.
func (t *FontTable) Len() int {
	return len(t.fonts)
}

// FontSearcher discovers fonts on the host. External collaborator
// contract: given extra search paths and whether to include system
// fonts, return the full table.
type FontSearcher func(paths []string, includeSystem bool) (*FontTable, error)

var fontState struct {
	mu       sync.Mutex
	searcher FontSearcher
	once     sync.Once
	table    *FontTable
}

var emptyFonts = &FontTable{}

// SetFontSearcher installs the process-wide font searcher. Only the
// first call before SharedFonts takes effect; it reports whether this
// call installed fn.
func SetFontSearcher(fn FontSearcher) bool {
	fontState.mu.Lock()
	defer fontState.mu.Unlock()
	if fontState.searcher != nil {
		return false
	}
	fontState.searcher = fn
	return true
}

// SharedFonts returns the process-wide font table, running the
// registered searcher on first use. Without a searcher, or when the
// search fails, the table is empty. All callers observe the same
// completed initialization.
func SharedFonts() *FontTable {
	fontState.once.Do(func() {
		fontState.mu.Lock()
		searcher := fontState.searcher
		fontState.mu.Unlock()

		fontState.table = emptyFonts
		if searcher == nil {
			return
		}
		if table, err := searcher(nil, true); err == nil && table != nil {
			fontState.table = table
		}
	})
	return fontState.table
}
