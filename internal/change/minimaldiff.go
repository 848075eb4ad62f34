package change

import (
	"unicode/utf8"

	"github.com/simon-lentz/prapti/internal/poscodec"
)

// MinimalDiff derives the MinimalEvent equivalent to replacing pre with
// post in full, per spec.md §3's construction rule: find the longest
// non-overlapping common prefix and suffix of pre and post; the range
// spans the bytes between them.
//
// Degenerate cases — identical strings, pure prefix extension/trimming,
// pure suffix extension/trimming — fall out of the general algorithm
// without special-casing.
func MinimalDiff(pre, post string, codec poscodec.Codec) MinimalEvent {
	prefixLen := commonPrefixLen(pre, post)

	maxSuffix := len(pre) - prefixLen
	if rem := len(post) - prefixLen; rem < maxSuffix {
		maxSuffix = rem
	}
	suffixLen := commonSuffixLen(pre, post, maxSuffix)

	startOffset := prefixLen
	endOffset := len(pre) - suffixLen
	newText := post[prefixLen : len(post)-suffixLen]

	start := codec.OffsetToPosition(pre, startOffset)
	end := codec.OffsetToPosition(pre, endOffset)

	return MinimalEvent{Range: poscodec.Range{Start: start, End: end}, NewText: newText}
}

// commonPrefixLen returns the length, in bytes, of the longest common
// prefix of a and b, snapped back to a rune boundary.
func commonPrefixLen(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	for i > 0 && i < len(a) && !utf8.RuneStart(a[i]) {
		i--
	}
	return i
}

// commonSuffixLen returns the length, in bytes, of the longest common
// suffix of a and b not exceeding maxLen, snapped forward to a rune
// boundary.
func commonSuffixLen(a, b string, maxLen int) int {
	i := 0
	for i < maxLen && a[len(a)-1-i] == b[len(b)-1-i] {
		i++
	}
	for i > 0 {
		idx := len(a) - i
		if utf8.RuneStart(a[idx]) {
			break
		}
		i--
	}
	return i
}
