/*
Package typbatch is the resource-sharing and file-access caching layer in
front of a document-compilation engine. It lets hundreds of documents
compile in parallel against one project while sharing the globally
expensive state (fonts, the definitions table, downloaded packages) and
safely reusing per-file parsed content.

# Core Architecture

Three layers cooperate:

  - Fingerprinted slots: every file gets a FileSlot holding one cell for
    parsed source and one for raw bytes. A cell is gated first by a
    generation counter (was this file already resolved in the current
    run?) and then by a 128-bit content fingerprint (did the content
    actually change across runs?). Unchanged files pay neither I/O nor
    reparse cost on repeated runs.

  - Immutable snapshots: before a batch, BuildSnapshot walks the
    transitive import closure of the entry files in parallel and freezes
    everything into a read-only map. Workers read it lock-free for the
    whole batch; misses overflow into per-run private maps.

  - Strategies: each World (the facade handed to the engine) picks Local
    (scratch maps, no sharing), Shared (the process-wide FileCache), or
    Snapshot resolution, plus a font strategy and an optional custom
    definitions table with injected inputs.

# Basic Usage

Compiling one file against the shared cache:

	world := typbatch.NewWorld("report.typ", projectRoot).
		WithSharedCache().
		WithFonts().
		Build()
	doc, err := engine.Compile(world)

Batch compilation over a shared snapshot:

	batcher := typbatch.NewBatcher(projectRoot)
	if err := batcher.PrepareSnapshot(files); err != nil {
		log.Fatal(err)
	}
	results, err := typbatch.BatchCompile(batcher, files, engine.Compile)
	for _, r := range results {
		if r.Err != nil {
			fmt.Printf("%s failed: %v\n", r.Path, r.Err)
		}
	}

Result order always matches input order; a failed file never aborts its
siblings.

# Virtual Content

A VirtualFS registered with SetVirtualFS (or per-loader) is consulted
before any physical resolution and can shadow both ordinary files and
whole packages:

	vfs := typbatch.NewMapVFS()
	vfs.Insert("/_data/site.json", `{"title":"My Site"}`)
	typbatch.SetVirtualFS(vfs)

# Error Handling

File-access failures are values, cached and fingerprinted like any other
result. Match them against the sentinel taxonomy with errors.Is:

	if _, err := world.Source(id); errors.Is(err, typbatch.ErrNotFound) {
		// handle missing file
	}
*/
package typbatch
