package typbatch

import (
	"sort"
	"sync/atomic"
)

// runGeneration is the process-wide run counter. It only ever moves
// forward; values are never reused within the process lifetime (uint64
// wrap-around is accepted given realistic run volume).
var runGeneration atomic.Uint64

// Run carries the scratch state of one compilation run: the generation
// captured when the run began, the access log, and the overflow maps
// used by the snapshot strategy. A Run belongs to a single task and
// needs no synchronization.
//
// Beginning a run is the O(1) replacement for clearing a per-slot
// accessed flag across the whole cache: slots compare their last-access
// generation against the run's instead.
type Run struct {
	generation      uint64
	accessed        map[FileID]struct{}
	overflowSources map[FileID]*Source
	overflowBytes   map[FileID][]byte
}

// NewRun begins a new compilation run, post-incrementing the global
// generation counter. Safe under arbitrary concurrent calls; each caller
// observes its own distinct generation.
func NewRun() *Run {
	return &Run{
		generation: runGeneration.Add(1),
		accessed:   make(map[FileID]struct{}),
	}
}

// Generation returns the run's captured generation. A nil run reports
// zero, which no slot ever matches.
func (r *Run) Generation() uint64 {
	if r == nil {
		return 0
	}
	return r.generation
}

// record logs a file access for dependency collection.
func (r *Run) record(id FileID) {
	if r == nil {
		return
	}
	r.accessed[id] = struct{}{}
}

// AccessedDeps lists the files and packages this run touched, derived
// from the access log. Never persisted; order is deterministic.
type AccessedDeps struct {
	Files    []string
	Packages []PackageSpec
}

// AccessedDeps splits the run's access log into root-relative file paths
// and package specs, both sorted and deduplicated.
func (r *Run) AccessedDeps() AccessedDeps {
	var deps AccessedDeps
	if r == nil {
		return deps
	}
	pkgs := make(map[PackageSpec]struct{})
	for id := range r.accessed {
		if pkg, ok := id.Package(); ok {
			pkgs[pkg] = struct{}{}
			continue
		}
		deps.Files = append(deps.Files, id.Path())
	}
	for pkg := range pkgs {
		deps.Packages = append(deps.Packages, pkg)
	}
	sort.Strings(deps.Files)
	sort.Slice(deps.Packages, func(i, j int) bool {
		return deps.Packages[i].String() < deps.Packages[j].String()
	})
	return deps
}

// overflowSource looks up the run's private snapshot-miss cache.
func (r *Run) overflowSource(id FileID) (*Source, bool) {
	src, ok := r.overflowSources[id]
	return src, ok
}

func (r *Run) storeOverflowSource(id FileID, src *Source) {
	if r.overflowSources == nil {
		r.overflowSources = make(map[FileID]*Source)
	}
	r.overflowSources[id] = src
}

func (r *Run) overflowByte(id FileID) ([]byte, bool) {
	data, ok := r.overflowBytes[id]
	return data, ok
}

func (r *Run) storeOverflowBytes(id FileID, data []byte) {
	if r.overflowBytes == nil {
		r.overflowBytes = make(map[FileID][]byte)
	}
	r.overflowBytes[id] = data
}
