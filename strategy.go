package typbatch

import "sync"

// CacheStrategy chooses how a World resolves file content. Selected once
// per facade:
//
//   - Local: a fresh run-scoped cache, no sharing, discarded with the
//     facade.
//   - Shared: the process-wide FileCache behind its lock.
//   - Snapshot: an immutable pre-built snapshot plus the run's private
//     overflow maps for misses.
type CacheStrategy interface {
	source(w *World, id FileID) (*Source, error)
	bytes(w *World, id FileID) ([]byte, error)
}

// LocalStrategy returns a strategy backed by fresh maps private to the
// facade. Best for isolated one-off compilations.
func LocalStrategy() CacheStrategy {
	return &localStrategy{
		sources: make(map[FileID]*Source),
		data:    make(map[FileID][]byte),
	}
}

type localStrategy struct {
	mu      sync.RWMutex
	sources map[FileID]*Source
	data    map[FileID][]byte
}

func (s *localStrategy) source(w *World, id FileID) (*Source, error) {
	s.mu.RLock()
	src, ok := s.sources[id]
	s.mu.RUnlock()
	if ok {
		return src, nil
	}
	src, err := w.loadSource(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.sources[id] = src
	s.mu.Unlock()
	return src, nil
}

func (s *localStrategy) bytes(w *World, id FileID) ([]byte, error) {
	s.mu.RLock()
	data, ok := s.data[id]
	s.mu.RUnlock()
	if ok {
		return data, nil
	}
	data, err := w.loadBytes(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.data[id] = data
	s.mu.Unlock()
	return data, nil
}

// SharedStrategy returns a strategy delegating to the given cache, or to
// the process-wide SharedCache when cache is nil. Best for hot reload
// and incremental rebuilds where files change between runs.
func SharedStrategy(cache *FileCache) CacheStrategy {
	if cache == nil {
		cache = SharedCache()
	}
	return &sharedStrategy{cache: cache}
}

type sharedStrategy struct {
	cache *FileCache
}

func (s *sharedStrategy) source(w *World, id FileID) (*Source, error) {
	// The shared cache knows nothing about per-facade injection, so the
	// main file bypasses it when a prelude or postlude is configured.
	if id == w.main && w.hasInjection() {
		return w.loadSource(id)
	}
	return s.cache.Source(id, w.run, w.loader)
}

func (s *sharedStrategy) bytes(w *World, id FileID) ([]byte, error) {
	return s.cache.Bytes(id, w.run, w.loader)
}

// SnapshotStrategy returns a strategy serving from an immutable
// snapshot, overflowing into the run's private maps on miss. The
// snapshot itself is never written to. Best for batch compilation.
func SnapshotStrategy(snap *Snapshot) CacheStrategy {
	return &snapshotStrategy{snap: snap}
}

type snapshotStrategy struct {
	snap *Snapshot
}

func (s *snapshotStrategy) source(w *World, id FileID) (*Source, error) {
	if src, ok := s.snap.Source(id); ok {
		w.run.record(id)
		return src, nil
	}
	if src, ok := w.run.overflowSource(id); ok {
		return src, nil
	}
	src, err := w.loadSource(id)
	if err != nil {
		return nil, err
	}
	w.run.storeOverflowSource(id, src)
	return src, nil
}

func (s *snapshotStrategy) bytes(w *World, id FileID) ([]byte, error) {
	if data, ok := s.snap.Bytes(id); ok {
		w.run.record(id)
		return data, nil
	}
	if data, ok := w.run.overflowByte(id); ok {
		return data, nil
	}
	data, err := w.loadBytes(id)
	if err != nil {
		return nil, err
	}
	w.run.storeOverflowBytes(id, data)
	return data, nil
}

// FontStrategy selects which font table a World exposes.
type FontStrategy int

const (
	// FontsNone loads no fonts. For evaluation-only scans and queries.
	FontsNone FontStrategy = iota
	// FontsShared uses the process-wide font table. For full compiles.
	FontsShared
)
