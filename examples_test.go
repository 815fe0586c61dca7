package typbatch_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/gophersatwork/typbatch"
	"github.com/spf13/afero"
)

// renderText stands in for the engine: it "compiles" a world by
// resolving the entry source and counting its lines.
func renderText(w *typbatch.World) (string, error) {
	src, err := w.MainSource()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d lines", src.LineCount()), nil
}

func TestSiteBatchScenario(t *testing.T) {
	isDebug := false // Set to true when you want to troubleshoot issues visually.
	memFs := afero.NewMemMapFs()

	pages := map[string]string{
		"/site/index.typ":       "#import \"/lib/nav.typ\"\n= Home",
		"/site/about.typ":       "#import \"/lib/nav.typ\"\n= About\nSome text.",
		"/site/posts/first.typ": "#import \"../lib/nav.typ\"\n= First Post",
		"/site/lib/nav.typ":     "#let nav() = []",
	}
	for path, content := range pages {
		if err := afero.WriteFile(memFs, path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}

	files := []string{"index.typ", "about.typ", "posts/first.typ"}
	batcher := typbatch.NewBatcher("/site").
		WithFS(memFs).
		WithPrelude("#set text(font: \"Libertinus Serif\")").
		WithInputs(map[string]any{"base-url": "https://example.org"}).
		WithTimestamp(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))

	if err := batcher.PrepareSnapshot(files); err != nil {
		t.Fatalf("failed to build snapshot: %v", err)
	}
	if isDebug {
		spew.Dump(batcher.Snapshot().SourceCount())
	}
	// Three pages plus the shared nav library.
	if got := batcher.Snapshot().SourceCount(); got != 4 {
		t.Fatalf("snapshot holds %d sources, want 4", got)
	}

	results, err := typbatch.BatchCompile(batcher, files, renderText)
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}
	if isDebug {
		spew.Dump(results)
	}

	for i, r := range results {
		if r.Path != files[i] {
			t.Errorf("result %d path = %s, want %s", i, r.Path, files[i])
		}
		if r.Err != nil {
			t.Errorf("%s failed: %v", r.Path, r.Err)
		}
	}
	// The prelude adds one line in front of every page.
	if results[0].Value != "3 lines" {
		t.Errorf("index rendered as %q, want %q", results[0].Value, "3 lines")
	}
}

func TestHotReloadScenario(t *testing.T) {
	memFs := afero.NewMemMapFs()
	if err := afero.WriteFile(memFs, "/proj/report.typ", []byte("draft"), 0o644); err != nil {
		t.Fatalf("failed to write report: %v", err)
	}
	cache := typbatch.NewFileCache()

	build := func() string {
		w := typbatch.NewWorld("report.typ", "/proj").
			WithFS(memFs).
			WithFileCache(cache).
			Build()
		src, err := w.MainSource()
		if err != nil {
			t.Fatalf("compile failed: %v", err)
		}
		return src.Text()
	}

	if got := build(); got != "draft" {
		t.Fatalf("first build = %q", got)
	}

	// Edit the file; the next run re-fingerprints and picks it up.
	if err := afero.WriteFile(memFs, "/proj/report.typ", []byte("final"), 0o644); err != nil {
		t.Fatalf("failed to rewrite report: %v", err)
	}
	if got := build(); got != "final" {
		t.Fatalf("rebuild = %q, want %q", got, "final")
	}
}

func TestVirtualContentScenario(t *testing.T) {
	memFs := afero.NewMemMapFs()
	if err := afero.WriteFile(memFs, "/proj/main.typ", []byte("uses data"), 0o644); err != nil {
		t.Fatalf("failed to write main: %v", err)
	}

	// The data file exists only virtually; no disk write happens.
	vfs := typbatch.NewMapVFS()
	vfs.Insert("/data.json", `{"generated": true}`)

	w := typbatch.NewWorld("main.typ", "/proj").
		WithFS(memFs).
		WithVirtualFS(vfs).
		Build()

	data, err := w.Bytes(typbatch.NewFileID("data.json"))
	if err != nil {
		t.Fatalf("virtual read failed: %v", err)
	}
	if !strings.Contains(string(data), "generated") {
		t.Errorf("virtual content = %q", data)
	}

	if _, err := w.Bytes(typbatch.NewFileID("absent.json")); !errors.Is(err, typbatch.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound for non-virtual miss", err)
	}
}
