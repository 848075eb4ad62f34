// Package change normalizes raw textDocument/didChange notifications into
// minimal, chained change transactions that the cursor tracker can fold.
//
// Grounded on the teacher's lsp/server.go DidChangeTextDocumentParams
// handling and lsp/workspace.go mergeIncrementalChanges — both walk a raw
// change-event list applying each one to a running document snapshot; this
// package generalizes that walk into the explicit ChangeTransaction shape
// spec.md §3/§4.1 requires, adding the minimal-diff derivation the teacher
// never needed (it only ever applies changes, never re-minimizes them for a
// downstream consumer).
package change

import "github.com/simon-lentz/prapti/internal/poscodec"

// Event is a raw change event as delivered on the wire: either a ranged
// edit (Range non-nil) or a full-document replacement (Range nil).
type Event struct {
	Range *poscodec.Range
	Text  string
}

// IsFull reports whether e is a full-document-replacement event.
func (e Event) IsFull() bool { return e.Range == nil }

// MinimalEvent is the smallest contiguous ranged edit equivalent to some
// (pre, post) text pair (spec.md §3, MinimalChangeEvent).
type MinimalEvent struct {
	Range   poscodec.Range
	NewText string
}

// Details holds one normalized change event plus the document text on
// either side of it.
type Details struct {
	FromText string
	ToText   string
	Raw      Event
	Minimal  MinimalEvent
}

// Transaction is the normalized result of one didChange notification.
// Invariant: FromText of Changes[0] is the document source at FromVersion;
// successive FromText/ToText chain; ToText of the last change equals the
// document source at ToVersion.
type Transaction struct {
	FromVersion uint64
	ToVersion   uint64
	Changes     []Details
}

// IsEmpty reports whether the transaction carries no textual changes (every
// raw event was a no-op and was dropped).
func (t Transaction) IsEmpty() bool { return len(t.Changes) == 0 }
