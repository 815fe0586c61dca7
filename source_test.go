package typbatch

import "testing"

func TestSourceLineIndex(t *testing.T) {
	src := NewSource(NewFileID("a.typ"), "one\ntwo\nthree")
	if src.LineCount() != 3 {
		t.Fatalf("LineCount() = %d, want 3", src.LineCount())
	}

	tests := []struct {
		line   int
		want   int
		wantOK bool
	}{
		{0, 0, true},
		{1, 4, true},
		{2, 8, true},
		{3, 0, false},
		{-1, 0, false},
	}
	for _, tt := range tests {
		got, ok := src.LineStart(tt.line)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("LineStart(%d) = %d, %v, want %d, %v", tt.line, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestSourceReplaceRebuildsIndex(t *testing.T) {
	src := NewSource(NewFileID("a.typ"), "one\ntwo")
	src.Replace("a\nb\nc\nd")
	if src.LineCount() != 4 {
		t.Errorf("LineCount() after Replace = %d, want 4", src.LineCount())
	}
	if src.Text() != "a\nb\nc\nd" {
		t.Errorf("Text() = %q", src.Text())
	}
	if src.ID() != NewFileID("a.typ") {
		t.Error("Replace must keep the identity")
	}
}

func TestSourceEmptyText(t *testing.T) {
	src := NewSource(NewFileID("a.typ"), "")
	if src.LineCount() != 1 {
		t.Errorf("LineCount() = %d, want 1 (empty text is one empty line)", src.LineCount())
	}
}

func TestInjectAffixes(t *testing.T) {
	tests := []struct {
		name     string
		prelude  string
		postlude string
		want     string
	}{
		{"none", "", "", "body"},
		{"prelude only", "pre", "", "pre\nbody"},
		{"postlude only", "", "post", "body\npost"},
		{"both", "pre", "post", "pre\nbody\npost"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := injectAffixes("body", tt.prelude, tt.postlude); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFingerprintDomains(t *testing.T) {
	data := []byte("content")
	ok := fingerprintOf(data, nil)
	if ok != fingerprintOf(data, nil) {
		t.Error("identical content must fingerprint identically")
	}
	if ok == fingerprintOf([]byte("other"), nil) {
		t.Error("different content must fingerprint differently")
	}

	// An error whose message equals the content still fingerprints
	// differently: success and failure live in separate domains.
	if ok == fingerprintOf(nil, errFromString("content")) {
		t.Error("error and success domains must never collide")
	}
}

type errFromString string

func (e errFromString) Error() string { return string(e) }
