package typbatch

import (
	"strings"
	"time"
)

// World is the data-access facade handed to the compilation engine. It
// is cheap to construct (one per compiled file) and backs every accessor
// with the configured cache strategy and the shared singletons: fonts,
// definitions table, package storage.
type World struct {
	root      string
	main      FileID
	cache     CacheStrategy
	fonts     FontStrategy
	library   *Library
	loader    *Loader
	run       *Run
	prelude   string
	postlude  string
	timestamp *time.Time
}

// Root returns the absolute project root.
func (w *World) Root() string {
	return w.root
}

// MainID returns the identity of the entry file this world compiles.
func (w *World) MainID() FileID {
	return w.main
}

// Library returns the definitions table for this compilation.
func (w *World) Library() *Library {
	return w.library
}

// Fonts returns the font table selected by the font strategy.
func (w *World) Fonts() *FontTable {
	if w.fonts == FontsShared {
		return SharedFonts()
	}
	return emptyFonts
}

// Font returns the font face at the given index, if fonts are loaded.
func (w *World) Font(index int) (Font, bool) {
	return w.Fonts().Font(index)
}

// Source resolves the parsed source for id through the cache strategy.
func (w *World) Source(id FileID) (*Source, error) {
	return w.cache.source(w, id)
}

// Bytes resolves the raw bytes for id through the cache strategy.
func (w *World) Bytes(id FileID) ([]byte, error) {
	return w.cache.bytes(w, id)
}

// MainSource resolves the entry file's source.
func (w *World) MainSource() (*Source, error) {
	return w.Source(w.main)
}

// Date is a calendar date as exposed to the engine.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// Today returns the calendar date for the world's configured timestamp,
// shifted by an optional UTC offset in hours. Reports false when no
// timestamp is configured, which keeps builds reproducible by default.
func (w *World) Today(utcOffsetHours *int) (Date, bool) {
	if w.timestamp == nil {
		return Date{}, false
	}
	t := *w.timestamp
	if utcOffsetHours != nil {
		t = t.In(time.FixedZone("", *utcOffsetHours*3600))
	} else {
		t = t.Local()
	}
	year, month, day := t.Date()
	return Date{Year: year, Month: month, Day: day}, true
}

// AccessedDeps lists the files and packages touched since this world was
// built.
func (w *World) AccessedDeps() AccessedDeps {
	return w.run.AccessedDeps()
}

// PreludeLineCount returns the number of lines the prelude injection
// adds in front of the entry file, including the separating newline.
// Diagnostic line numbers shift by this amount.
func (w *World) PreludeLineCount() int {
	if w.prelude == "" {
		return 0
	}
	return strings.Count(w.prelude, "\n") + 1
}

func (w *World) hasInjection() bool {
	return w.prelude != "" || w.postlude != ""
}

// loadSource resolves a source through the plain loader, injecting the
// prelude/postlude when id is the entry file. This is the fallback path
// for cache strategies that cannot serve the request themselves.
func (w *World) loadSource(id FileID) (*Source, error) {
	w.run.record(id)
	data, err := w.loader.ReadFile(id, w.run)
	if err != nil {
		return nil, err
	}
	text, err := decodeUTF8(data)
	if err != nil {
		return nil, &FileError{Path: id.Path(), Kind: ErrInvalidEncoding}
	}
	if id == w.main {
		text = injectAffixes(text, w.prelude, w.postlude)
	}
	return NewSource(id, text), nil
}

func (w *World) loadBytes(id FileID) ([]byte, error) {
	w.run.record(id)
	return w.loader.ReadFile(id, w.run)
}
