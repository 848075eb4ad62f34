package docstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simon-lentz/prapti/internal/docstore"
)

func TestDetectEOL_PrefersCRLFOverLF(t *testing.T) {
	assert.Equal(t, "\r\n", docstore.DetectEOL("one\r\ntwo\nthree", "\n"))
}

func TestDetectEOL_FallsBackToLF(t *testing.T) {
	assert.Equal(t, "\n", docstore.DetectEOL("one\ntwo", "\r\n"))
}

func TestDetectEOL_FallsBackToHostDefault(t *testing.T) {
	assert.Equal(t, "\r\n", docstore.DetectEOL("no line breaks here", "\r\n"))
}

func TestStore_OpenGetUpdateClose(t *testing.T) {
	s := docstore.New()

	doc := s.Open("file:///a.txt", "hello\nworld", 1, "\n")
	require.NotNil(t, doc)
	assert.Equal(t, "file:///a.txt", doc.URI)
	assert.Equal(t, uint64(1), doc.Version)
	assert.Equal(t, "\n", doc.EOL)

	got := s.Get("file:///a.txt")
	require.NotNil(t, got)
	assert.Same(t, doc, got)

	s.Update("file:///a.txt", "hello\nthere", 2)
	assert.Equal(t, "hello\nthere", s.Get("file:///a.txt").Text)
	assert.Equal(t, uint64(2), s.Get("file:///a.txt").Version)
	// EOL is fixed at open time and never recomputed on update.
	assert.Equal(t, "\n", s.Get("file:///a.txt").EOL)

	s.Close("file:///a.txt")
	assert.Nil(t, s.Get("file:///a.txt"))
}

func TestStore_UpdateOnUnknownURIIsNoop(t *testing.T) {
	s := docstore.New()
	assert.NotPanics(t, func() {
		s.Update("file:///missing.txt", "text", 1)
	})
	assert.Nil(t, s.Get("file:///missing.txt"))
}

func TestStore_URIsListsAllOpenDocuments(t *testing.T) {
	s := docstore.New()
	assert.Empty(t, s.URIs())

	s.Open("file:///a.txt", "a", 1, "\n")
	s.Open("file:///b.txt", "b", 1, "\n")

	uris := s.URIs()
	assert.Len(t, uris, 2)
	assert.Contains(t, uris, "file:///a.txt")
	assert.Contains(t, uris, "file:///b.txt")

	s.Close("file:///a.txt")
	assert.Equal(t, []string{"file:///b.txt"}, s.URIs())
}
