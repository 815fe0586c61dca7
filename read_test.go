package typbatch

import (
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func TestReadFileSentinels(t *testing.T) {
	loader := &Loader{
		Root:  "/proj",
		FS:    afero.NewMemMapFs(),
		Stdin: strings.NewReader("piped input"),
	}
	run := NewRun()

	data, err := loader.ReadFile(EmptyID, run)
	if err != nil {
		t.Fatalf("empty: %v", err)
	}
	if data != nil {
		t.Errorf("empty content = %q, want nil", data)
	}

	data, err = loader.ReadFile(StdinID, run)
	if err != nil {
		t.Fatalf("stdin: %v", err)
	}
	if string(data) != "piped input" {
		t.Errorf("stdin content = %q, want %q", data, "piped input")
	}
}

func TestReadFileErrorTaxonomy(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("/proj/dir", 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	loader := &Loader{Root: "/proj", FS: fs}

	tests := []struct {
		name string
		id   FileID
		want error
	}{
		{"missing file", NewFileID("missing.typ"), ErrNotFound},
		{"directory", NewFileID("dir"), ErrIsDirectory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.ReadFile(tt.id, NewRun())
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			var fe *FileError
			if !errors.As(err, &fe) {
				t.Errorf("err %T must wrap as *FileError", err)
			}
		})
	}
}

func TestReadFileNoRootDenied(t *testing.T) {
	loader := &Loader{FS: afero.NewMemMapFs()}
	_, err := loader.ReadFile(NewFileID("anything.typ"), NewRun())
	if !errors.Is(err, ErrAccessDenied) {
		t.Errorf("err = %v, want ErrAccessDenied", err)
	}
}

func TestReadFileVirtualShadowsDisk(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/proj/data.json", []byte("disk"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	vfs := NewMapVFS()
	vfs.Insert("/data.json", "virtual")
	loader := &Loader{Root: "/proj", FS: fs, VFS: vfs}

	data, err := loader.ReadFile(NewFileID("data.json"), NewRun())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "virtual" {
		t.Errorf("got %q, want virtual content to shadow disk", data)
	}
}

func TestReadFileVirtualPackage(t *testing.T) {
	pkg := PackageSpec{Namespace: "preview", Name: "cards", Version: Version{Major: 1}}
	vfs := NewMapVFS()
	vfs.InsertPackage(pkg, "/lib.typ", []byte("#let card() = []"))
	loader := &Loader{Root: "/proj", FS: afero.NewMemMapFs(), VFS: vfs}

	data, err := loader.ReadFile(PackageFileID(pkg, "lib.typ"), NewRun())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "#let card() = []" {
		t.Errorf("got %q", data)
	}
}

func TestReadFilePackageStorage(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/pkgs/preview/cards/1.2.0/lib.typ", []byte("lib"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	loader := &Loader{
		Root:     "/proj",
		FS:       fs,
		Packages: &DirStorage{Root: "/pkgs", FS: fs},
	}
	pkg := PackageSpec{Namespace: "preview", Name: "cards", Version: Version{Major: 1, Minor: 2}}

	data, err := loader.ReadFile(PackageFileID(pkg, "lib.typ"), NewRun())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "lib" {
		t.Errorf("got %q, want %q", data, "lib")
	}

	absent := PackageSpec{Namespace: "preview", Name: "gone", Version: Version{Major: 9}}
	if _, err := loader.ReadFile(PackageFileID(absent, "lib.typ"), NewRun()); !errors.Is(err, ErrPackageNotFound) {
		t.Errorf("err = %v, want ErrPackageNotFound", err)
	}
}

func TestDecodeUTF8(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    string
		wantErr bool
	}{
		{"plain", []byte("hello"), "hello", false},
		{"bom stripped", []byte{0xef, 0xbb, 0xbf, 'h', 'i'}, "hi", false},
		{"invalid", []byte{0xff, 0xfe, 0x00}, "", true},
		{"empty", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeUTF8(tt.data)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidEncoding) {
					t.Fatalf("err = %v, want ErrInvalidEncoding", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
