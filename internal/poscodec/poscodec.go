// Package poscodec converts between byte offsets in an in-memory document
// string and LSP Positions expressed in the client's position encoding.
//
// Grounded on the UTF-16/byte-offset conversion in the teacher's
// lsp/posconv.go (ByteOffsetFromLSP, ByteToUTF16Offset): the same
// surrogate-pair-aware walk, rehomed onto plain strings instead of a
// multi-file source registry, since one run only ever tracks one document.
package poscodec

import (
	"strings"
	"unicode/utf8"
)

// Position is a (line, character) pair in the client's position encoding.
// Character is never bytes or code points, only client code units (§3).
type Position struct {
	Line      uint32
	Character uint32
}

// Less reports whether p sorts lexicographically before o.
func (p Position) Less(o Position) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Character < o.Character
}

// Range is a half-open (start inclusive, end exclusive in byte terms) span
// between two Positions. Invariant: Start <= End lexicographically.
type Range struct {
	Start Position
	End   Position
}

// Codec converts between byte offsets into a document string and Positions
// in the client's position encoding. Implementations are stateless and pure.
type Codec interface {
	// OffsetToPosition converts a byte offset within text to a Position.
	// offset is clamped to [0, len(text)].
	OffsetToPosition(text string, offset int) Position

	// PositionToOffset converts a Position to a byte offset within text.
	// Returns ok=false if the line does not exist in text.
	PositionToOffset(text string, pos Position) (offset int, ok bool)

	// Units returns the length of s, expressed in client position units.
	// s must not contain a line terminator.
	Units(s string) uint32
}

// UTF16 is the baseline LSP position encoding: character is counted in
// UTF-16 code units, matching every LSP client below protocol 3.17.
type UTF16 struct{}

var _ Codec = UTF16{}

// OffsetToPosition implements Codec.
func (UTF16) OffsetToPosition(text string, offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}

	line := uint32(0)
	lineStart := 0
	for i := 0; i < offset; {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == '\n' {
			line++
			lineStart = i + size
		}
		i += size
	}

	return Position{Line: line, Character: UTF16{}.Units(text[lineStart:offset])}
}

// PositionToOffset implements Codec.
func (UTF16) PositionToOffset(text string, pos Position) (int, bool) {
	lineStart, ok := lineStartOffset(text, pos.Line)
	if !ok {
		return 0, false
	}

	target := pos.Character
	units := uint32(0)
	i := lineStart
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == '\n' {
			break
		}
		if units >= target {
			break
		}
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
		i += size
	}
	return i, true
}

// Units implements Codec.
func (UTF16) Units(s string) uint32 {
	units := uint32(0)
	for _, r := range s {
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
	}
	return units
}

// lineStartOffset returns the byte offset of the first byte of the given
// 0-based line, or ok=false if text has fewer lines.
func lineStartOffset(text string, line uint32) (int, bool) {
	if line == 0 {
		return 0, true
	}
	seen := uint32(0)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			seen++
			if seen == line {
				return i + 1, true
			}
		}
	}
	return 0, false
}

// CountNewlines returns the number of line terminators in s.
func CountNewlines(s string) uint32 {
	n := uint32(0)
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
		}
	}
	return n
}

// EndOfDocument returns the Position just past the last character of
// text: a trailing newline places it at the start of the line after it,
// matching how editors report end-of-file.
func EndOfDocument(text string, codec Codec) Position {
	if text == "" {
		return Position{Line: 0, Character: 0}
	}
	if strings.HasSuffix(text, "\n") {
		return Position{Line: CountNewlines(text), Character: 0}
	}
	return Position{Line: CountNewlines(text), Character: codec.Units(LastLine(text))}
}

// LastLine returns the text following the final newline in s (the whole
// string if s contains no newline).
func LastLine(s string) string {
	idx := -1
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			idx = i
		}
	}
	return s[idx+1:]
}
