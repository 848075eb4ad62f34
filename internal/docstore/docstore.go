// Package docstore tracks the open documents a run might attach to:
// their text, LSP version, and detected end-of-line style.
//
// Grounded on the teacher's lsp/workspace.go Document/DocumentSnapshot
// pair, trimmed to the fields spec.md §6 actually needs (no analysis
// scheduling, no brace-depth tracking, no Markdown variant) and with the
// EOL-detection rule of spec.md §6 added, which the teacher never needed
// since it always normalized incoming text to LF internally.
package docstore

import "strings"

// Document is the store's view of one open text document.
type Document struct {
	URI     string
	Text    string
	Version uint64
	EOL     string
}

// DetectEOL implements spec.md §6: prefer CRLF if present, else LF, else
// fall back to hostDefault.
func DetectEOL(text, hostDefault string) string {
	if strings.Contains(text, "\r\n") {
		return "\r\n"
	}
	if strings.Contains(text, "\n") {
		return "\n"
	}
	return hostDefault
}

// Store is a mutex-free map of open documents, owned and mutated only by
// the single goroutine dispatching LSP notifications (spec.md §5 keeps
// all core state in one scheduling domain; the store is never touched
// concurrently).
type Store struct {
	docs map[string]*Document
}

// New constructs an empty Store.
func New() *Store { return &Store{docs: make(map[string]*Document)} }

// Open registers uri as freshly opened with the given initial text and
// version, detecting its EOL style against hostDefault.
func (s *Store) Open(uri, text string, version uint64, hostDefault string) *Document {
	d := &Document{URI: uri, Text: text, Version: version, EOL: DetectEOL(text, hostDefault)}
	s.docs[uri] = d
	return d
}

// Get returns the document for uri, or nil if it is not open.
func (s *Store) Get(uri string) *Document { return s.docs[uri] }

// Update replaces a document's text and version after a normalized
// change transaction has been folded. The EOL style is fixed at open
// time, matching spec.md §6 ("the pre-run source").
func (s *Store) Update(uri, text string, version uint64) {
	if d, ok := s.docs[uri]; ok {
		d.Text = text
		d.Version = version
	}
}

// Close removes uri from the store.
func (s *Store) Close(uri string) { delete(s.docs, uri) }

// URIs returns the URIs of all currently open documents, in no
// particular order.
func (s *Store) URIs() []string {
	uris := make([]string, 0, len(s.docs))
	for uri := range s.docs {
		uris = append(uris, uri)
	}
	return uris
}
