package typbatch

import (
	"runtime"
	"strings"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// Result holds one entry file's outcome. A failed file never aborts its
// siblings; each slot independently carries success or error.
type Result[T any] struct {
	Path  string
	Value T
	Err   error
}

// CompileFunc invokes the engine against one prepared facade. The
// engine is opaque to this layer: it receives the world, returns a
// document (or module, or any other result type) or an error.
type CompileFunc[T any] func(*World) (T, error)

// Batcher compiles many entry files against one shared snapshot. Build
// the snapshot once, then fan out scans and compiles over it; both see
// byte-identical source content, which is what lets engine-level
// memoization carry results from a scan pass into a compile pass.
type Batcher struct {
	root        string
	fs          afero.Fs
	snapshot    *Snapshot
	preludes    []string
	postludes   []string
	inputs      map[string]any
	timestamp   *time.Time
	parallelism int
	onEach      func(path string)
}

// NewBatcher creates a batcher rooted at the given project directory.
func NewBatcher(root string) *Batcher {
	return &Batcher{
		root:        root,
		fs:          afero.NewOsFs(),
		parallelism: runtime.GOMAXPROCS(0),
	}
}

// WithFS sets the filesystem the batcher reads from. Primarily useful
// for testing with in-memory filesystems.
func (b *Batcher) WithFS(fs afero.Fs) *Batcher {
	b.fs = fs
	return b
}

// WithPrelude appends prelude text injected at the beginning of each
// entry file. Set preludes before building the snapshot.
func (b *Batcher) WithPrelude(prelude string) *Batcher {
	b.preludes = append(b.preludes, prelude)
	return b
}

// WithPostlude appends postlude text injected at the end of each entry
// file.
func (b *Batcher) WithPostlude(postlude string) *Batcher {
	b.postludes = append(b.postludes, postlude)
	return b
}

// WithInputs merges input values injected into every file's definitions
// table.
func (b *Batcher) WithInputs(inputs map[string]any) *Batcher {
	if b.inputs == nil {
		b.inputs = make(map[string]any, len(inputs))
	}
	for k, v := range inputs {
		b.inputs[k] = v
	}
	return b
}

// WithTimestamp fixes the date reported by Today in every world.
func (b *Batcher) WithTimestamp(t time.Time) *Batcher {
	b.timestamp = &t
	return b
}

// WithParallelism bounds the worker pool. Defaults to GOMAXPROCS.
func (b *Batcher) WithParallelism(n int) *Batcher {
	if n > 0 {
		b.parallelism = n
	}
	return b
}

// WithOnEach registers a callback invoked after each file finishes.
// Called concurrently from worker goroutines.
func (b *Batcher) WithOnEach(fn func(path string)) *Batcher {
	b.onEach = fn
	return b
}

// PrepareSnapshot builds the shared snapshot from the given entry files.
// Preludes and postludes configured so far are injected into it.
func (b *Batcher) PrepareSnapshot(files []string) error {
	if len(files) == 0 {
		return nil
	}
	snap, err := BuildSnapshot(files, b.root,
		WithPrelude(b.prelude()),
		WithPostlude(b.postlude()),
		WithSnapshotFS(b.fs),
		WithSnapshotParallelism(b.parallelism),
	)
	if err != nil {
		return err
	}
	b.snapshot = snap
	return nil
}

// UseSnapshot shares an existing snapshot with this batcher.
func (b *Batcher) UseSnapshot(snap *Snapshot) *Batcher {
	b.snapshot = snap
	return b
}

// Snapshot returns the batcher's snapshot, or nil if none was prepared.
func (b *Batcher) Snapshot() *Snapshot {
	return b.snapshot
}

// BatchCompile compiles every file in parallel with shared fonts.
// Result order matches input order; execution order is unspecified.
func BatchCompile[T any](b *Batcher, files []string, compile CompileFunc[T]) ([]Result[T], error) {
	return batch(b, files, FontsShared, nil, compile)
}

// BatchScan runs an evaluation-only pass in parallel: no fonts, same
// snapshot, so a later BatchCompile sees identical content.
func BatchScan[T any](b *Batcher, files []string, scan CompileFunc[T]) ([]Result[T], error) {
	return batch(b, files, FontsNone, nil, scan)
}

// BatchCompileWithContext compiles every file in parallel, merging the
// per-file inputs produced by contextFn into that file's definitions
// table. This injects file-specific data without rebuilding the
// snapshot.
func BatchCompileWithContext[T any](
	b *Batcher,
	files []string,
	contextFn func(path string) map[string]any,
	compile CompileFunc[T],
) ([]Result[T], error) {
	return batch(b, files, FontsShared, contextFn, compile)
}

func batch[T any](
	b *Batcher,
	files []string,
	fonts FontStrategy,
	contextFn func(path string) map[string]any,
	fn CompileFunc[T],
) ([]Result[T], error) {
	if len(files) == 0 {
		return nil, nil
	}
	snap := b.snapshot
	if snap == nil {
		if err := b.PrepareSnapshot(files); err != nil {
			return nil, err
		}
		snap = b.snapshot
	}

	results := make([]Result[T], len(files))
	var g errgroup.Group
	g.SetLimit(b.parallelism)
	for i := range files {
		i := i
		path := files[i]
		g.Go(func() error {
			var extra map[string]any
			if contextFn != nil {
				extra = contextFn(path)
			}
			world := b.world(path, snap, fonts, extra)
			value, err := fn(world)
			results[i] = Result[T]{Path: path, Value: value, Err: err}
			if b.onEach != nil {
				b.onEach(path)
			}
			return nil
		})
	}
	g.Wait() //nolint:errcheck // per-file errors live in the result slots

	return results, nil
}

// world constructs the per-file facade bound to the shared snapshot.
func (b *Batcher) world(path string, snap *Snapshot, fonts FontStrategy, extra map[string]any) *World {
	builder := NewWorld(path, b.root).
		WithSnapshot(snap).
		WithFS(b.fs)

	if fonts == FontsShared {
		builder.WithFonts()
	} else {
		builder.NoFonts()
	}

	inputs := b.inputs
	if len(extra) > 0 {
		merged := make(map[string]any, len(inputs)+len(extra))
		for k, v := range inputs {
			merged[k] = v
		}
		for k, v := range extra {
			merged[k] = v
		}
		inputs = merged
	}
	if len(inputs) > 0 {
		builder.WithInputs(inputs)
	}

	// The snapshot already carries the injected text; the world still
	// needs the prelude for diagnostic line offsets.
	if p := b.prelude(); p != "" {
		builder.WithPrelude(p)
	}
	if b.timestamp != nil {
		builder.WithTimestamp(*b.timestamp)
	}
	return builder.Build()
}

func (b *Batcher) prelude() string {
	return strings.Join(b.preludes, "\n")
}

func (b *Batcher) postlude() string {
	return strings.Join(b.postludes, "\n")
}
