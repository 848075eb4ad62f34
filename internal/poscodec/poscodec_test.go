package poscodec_test

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/simon-lentz/prapti/internal/poscodec"
)

func TestUTF16_OffsetToPosition(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		offset   int
		expected poscodec.Position
	}{
		{"start of document", "hello\nworld", 0, poscodec.Position{Line: 0, Character: 0}},
		{"middle of first line", "hello\nworld", 3, poscodec.Position{Line: 0, Character: 3}},
		{"start of second line", "hello\nworld", 6, poscodec.Position{Line: 1, Character: 0}},
		{"end of document", "hello\nworld", 11, poscodec.Position{Line: 1, Character: 5}},
		{"offset clamped past end", "hi", 99, poscodec.Position{Line: 0, Character: 2}},
		{"surrogate pair counts as two units", "a\U0001F600b", 5, poscodec.Position{Line: 0, Character: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := poscodec.UTF16{}.OffsetToPosition(tt.text, tt.offset)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestUTF16_PositionToOffset(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		pos      poscodec.Position
		expected int
		ok       bool
	}{
		{"start", "hello\nworld", poscodec.Position{Line: 0, Character: 0}, 0, true},
		{"mid first line", "hello\nworld", poscodec.Position{Line: 0, Character: 3}, 3, true},
		{"start second line", "hello\nworld", poscodec.Position{Line: 1, Character: 0}, 6, true},
		{"line past end", "hello", poscodec.Position{Line: 5, Character: 0}, 0, false},
		{"surrogate pair", "a\U0001F600b", poscodec.Position{Line: 0, Character: 3}, 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := poscodec.UTF16{}.PositionToOffset(tt.text, tt.pos)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestUTF16_Units(t *testing.T) {
	assert.Equal(t, uint32(5), poscodec.UTF16{}.Units("hello"))
	assert.Equal(t, uint32(2), poscodec.UTF16{}.Units("\U0001F600"))
	assert.Equal(t, uint32(0), poscodec.UTF16{}.Units(""))
}

func TestRoundTrip(t *testing.T) {
	codec := poscodec.UTF16{}
	text := "line one\nline two\U0001F600\nline three"
	offset := 0
	for offset <= len(text) {
		pos := codec.OffsetToPosition(text, offset)
		back, ok := codec.PositionToOffset(text, pos)
		assert.True(t, ok)
		assert.Equal(t, offset, back)
		if offset == len(text) {
			break
		}
		_, size := utf8.DecodeRuneInString(text[offset:])
		offset += size
	}
}

func TestEndOfDocument(t *testing.T) {
	codec := poscodec.UTF16{}
	tests := []struct {
		name     string
		text     string
		expected poscodec.Position
	}{
		{"empty document", "", poscodec.Position{Line: 0, Character: 0}},
		{"no trailing newline", "hello", poscodec.Position{Line: 0, Character: 5}},
		{"trailing newline", "hello\n", poscodec.Position{Line: 1, Character: 0}},
		{"multiple lines", "a\nbb\nccc", poscodec.Position{Line: 2, Character: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, poscodec.EndOfDocument(tt.text, codec))
		})
	}
}

func TestCountNewlines(t *testing.T) {
	assert.Equal(t, uint32(0), poscodec.CountNewlines(""))
	assert.Equal(t, uint32(2), poscodec.CountNewlines("a\nb\nc"))
}

func TestLastLine(t *testing.T) {
	assert.Equal(t, "ccc", poscodec.LastLine("a\nbb\nccc"))
	assert.Equal(t, "solo", poscodec.LastLine("solo"))
	assert.Equal(t, "", poscodec.LastLine("trailing\n"))
}

func TestPositionLess(t *testing.T) {
	assert.True(t, poscodec.Position{Line: 0, Character: 5}.Less(poscodec.Position{Line: 1, Character: 0}))
	assert.True(t, poscodec.Position{Line: 1, Character: 0}.Less(poscodec.Position{Line: 1, Character: 1}))
	assert.False(t, poscodec.Position{Line: 1, Character: 1}.Less(poscodec.Position{Line: 1, Character: 1}))
}
