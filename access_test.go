package typbatch

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
)

func TestRunGenerationsAreDistinct(t *testing.T) {
	r1 := NewRun()
	r2 := NewRun()
	if r1.Generation() == r2.Generation() {
		t.Error("each run must observe its own generation")
	}
	if r2.Generation() <= r1.Generation() {
		t.Error("generations must move forward")
	}
}

func TestNilRunIsInert(t *testing.T) {
	var r *Run
	if r.Generation() != 0 {
		t.Error("nil run must report generation zero")
	}
	r.record(NewFileID("a.typ")) // must not panic
	if deps := r.AccessedDeps(); len(deps.Files) != 0 || len(deps.Packages) != 0 {
		t.Error("nil run must report no deps")
	}
}

func TestRunResetTouchesNoSlots(t *testing.T) {
	fs := afero.NewMemMapFs()
	loader := &Loader{Root: "/proj", FS: fs}
	cache := NewFileCache()
	run := NewRun()
	for i := 0; i < 64; i++ {
		path := "/proj/f" + string(rune('a'+i%26)) + ".typ"
		if err := afero.WriteFile(fs, path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		id, _ := FileIDInRoot(path, "/proj")
		if _, err := cache.Source(id, run, loader); err != nil {
			t.Fatalf("resolve: %v", err)
		}
	}

	// Beginning a run is one atomic increment; no slot is visited. The
	// per-slot access marks from the previous run must survive untouched.
	before := make(map[FileID]uint64, cache.Len())
	for id, slot := range cache.slots {
		before[id] = slot.source.lastAccess
	}
	next := NewRun()
	for id, slot := range cache.slots {
		if slot.source.lastAccess != before[id] {
			t.Fatalf("slot %v was touched by beginning a run", id)
		}
		if slot.source.lastAccess == next.Generation() {
			t.Fatalf("slot %v already carries the new generation", id)
		}
	}
}

func TestAccessedDepsSplitsAndSorts(t *testing.T) {
	pkgA := PackageSpec{Namespace: "preview", Name: "alpha", Version: Version{Major: 1}}
	pkgB := PackageSpec{Namespace: "preview", Name: "beta", Version: Version{Major: 2}}

	run := NewRun()
	run.record(NewFileID("z.typ"))
	run.record(NewFileID("a.typ"))
	run.record(NewFileID("a.typ")) // duplicate
	run.record(PackageFileID(pkgB, "lib.typ"))
	run.record(PackageFileID(pkgA, "lib.typ"))
	run.record(PackageFileID(pkgA, "util.typ")) // same package, second file

	got := run.AccessedDeps()
	want := AccessedDeps{
		Files:    []string{"/a.typ", "/z.typ"},
		Packages: []PackageSpec{pkgA, pkgB},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("AccessedDeps mismatch (-want +got):\n%s", diff)
	}
}

func TestWorldAccessedDepsFromCompile(t *testing.T) {
	fs := afero.NewMemMapFs()
	for path, content := range map[string]string{
		"/proj/main.typ": "main",
		"/proj/data.csv": "1,2,3",
	} {
		if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	w := NewWorld("main.typ", "/proj").WithFS(fs).Build()

	if _, err := w.MainSource(); err != nil {
		t.Fatalf("source: %v", err)
	}
	if _, err := w.Bytes(NewFileID("data.csv")); err != nil {
		t.Fatalf("bytes: %v", err)
	}
	// Failed accesses are recorded too; the file participated in the
	// compilation even though it was missing.
	if _, err := w.Source(NewFileID("absent.typ")); err == nil {
		t.Fatal("expected missing-file error")
	}

	got := w.AccessedDeps()
	want := AccessedDeps{Files: []string{"/absent.typ", "/data.csv", "/main.typ"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("AccessedDeps mismatch (-want +got):\n%s", diff)
	}
}
