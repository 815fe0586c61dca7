package typbatch

import "strings"

// Source is one parsed source file: decoded text plus a line index.
// Sources are reused across runs when only content changed; Replace
// swaps the text in place so downstream incremental state keyed on the
// value survives a reparse.
type Source struct {
	id    FileID
	text  string
	lines []int // byte offset of each line start
}

// NewSource parses text into a source for the given identity.
func NewSource(id FileID, text string) *Source {
	s := &Source{id: id}
	s.Replace(text)
	return s
}

// ID returns the identity this source was parsed from.
func (s *Source) ID() FileID {
	return s.id
}

// Text returns the full decoded text.
func (s *Source) Text() string {
	return s.text
}

// Replace swaps the text in place and rebuilds the line index. Used by
// the slot cache to reprocess changed content without discarding the
// source value itself.
func (s *Source) Replace(text string) {
	s.text = text
	s.lines = s.lines[:0]
	s.lines = append(s.lines, 0)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			s.lines = append(s.lines, i+1)
		}
	}
}

// LineCount returns the number of lines in the text.
func (s *Source) LineCount() int {
	return len(s.lines)
}

// LineStart returns the byte offset at which the given zero-based line
// begins. Reports false for out-of-range lines.
func (s *Source) LineStart(line int) (int, bool) {
	if line < 0 || line >= len(s.lines) {
		return 0, false
	}
	return s.lines[line], true
}

// injectAffixes surrounds text with an optional prelude and postlude.
// Entry files receive this injection; imported files never do.
func injectAffixes(text, prelude, postlude string) string {
	if prelude == "" && postlude == "" {
		return text
	}
	var b strings.Builder
	b.Grow(len(prelude) + len(text) + len(postlude) + 2)
	if prelude != "" {
		b.WriteString(prelude)
		b.WriteByte('\n')
	}
	b.WriteString(text)
	if postlude != "" {
		b.WriteByte('\n')
		b.WriteString(postlude)
	}
	return b.String()
}
