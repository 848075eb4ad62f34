package change_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/simon-lentz/prapti/internal/change"
	"github.com/simon-lentz/prapti/internal/poscodec"
)

func TestMinimalDiff_IdenticalStrings(t *testing.T) {
	got := change.MinimalDiff("same text", "same text", poscodec.UTF16{})
	assert.Equal(t, "", got.NewText)
	assert.Equal(t, got.Range.Start, got.Range.End)
}

func TestMinimalDiff_PureAppend(t *testing.T) {
	got := change.MinimalDiff("hello", "hello world", poscodec.UTF16{})
	assert.Equal(t, " world", got.NewText)
	assert.Equal(t, poscodec.Position{Line: 0, Character: 5}, got.Range.Start)
	assert.Equal(t, poscodec.Position{Line: 0, Character: 5}, got.Range.End)
}

func TestMinimalDiff_PurePrepend(t *testing.T) {
	got := change.MinimalDiff("world", "hello world", poscodec.UTF16{})
	assert.Equal(t, "hello ", got.NewText)
	assert.Equal(t, poscodec.Position{Line: 0, Character: 0}, got.Range.Start)
	assert.Equal(t, poscodec.Position{Line: 0, Character: 0}, got.Range.End)
}

func TestMinimalDiff_MiddleReplacement(t *testing.T) {
	got := change.MinimalDiff("the cat sat", "the dog sat", poscodec.UTF16{})
	assert.Equal(t, "dog", got.NewText)
	assert.Equal(t, poscodec.Position{Line: 0, Character: 4}, got.Range.Start)
	assert.Equal(t, poscodec.Position{Line: 0, Character: 7}, got.Range.End)
}

func TestMinimalDiff_Deletion(t *testing.T) {
	got := change.MinimalDiff("hello world", "hello", poscodec.UTF16{})
	assert.Equal(t, "", got.NewText)
	assert.Equal(t, poscodec.Position{Line: 0, Character: 5}, got.Range.Start)
	assert.Equal(t, poscodec.Position{Line: 0, Character: 11}, got.Range.End)
}

// MinimalDiff(a, a) must always yield an empty range and empty text.
func TestMinimalDiff_IdempotenceLaw(t *testing.T) {
	samples := []string{"", "x", "hello\nworld", "\U0001F600 emoji line\n"}
	for _, s := range samples {
		got := change.MinimalDiff(s, s, poscodec.UTF16{})
		assert.Empty(t, got.NewText)
		assert.Equal(t, got.Range.Start, got.Range.End)
	}
}

// Applying MinimalDiff(a, b)'s edit to a must reproduce b exactly.
func TestMinimalDiff_ProducesValidEdit(t *testing.T) {
	codec := poscodec.UTF16{}
	cases := [][2]string{
		{"abcdef", "abXYef"},
		{"line1\nline2\nline3", "line1\nCHANGED\nline3"},
		{"", "brand new content"},
		{"goodbye", ""},
	}

	for _, c := range cases {
		pre, post := c[0], c[1]
		ev := change.MinimalDiff(pre, post, codec)
		startOff, ok := codec.PositionToOffset(pre, ev.Range.Start)
		assert.True(t, ok)
		endOff, ok := codec.PositionToOffset(pre, ev.Range.End)
		assert.True(t, ok)
		rebuilt := pre[:startOff] + ev.NewText + pre[endOff:]
		assert.Equal(t, post, rebuilt)
	}
}
