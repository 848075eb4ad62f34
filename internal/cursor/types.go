// Package cursor tracks the position and glyph state of one in-flight
// insertion cursor as the document around it changes, folding each
// normalized change transaction through the cursor's position the way
// a text editor's own mark would move.
//
// Grounded on the teacher's lsp/workspace.go Document/DocumentSnapshot
// version bookkeeping (AtVersion mirrors its lastVersion field) and its
// debounceEntry pending-state pattern, generalized from "is there a
// pending re-analysis" to "is there a pending cursor-owned edit that
// might show up in the next transaction".
package cursor

import "github.com/simon-lentz/prapti/internal/poscodec"

// Description is the cursor's shape at some point in time: where it sits,
// and whether the glyph and a following line terminator are actually
// present in the document there (spec.md §3).
type Description struct {
	Position      poscodec.Position
	HasCursorChar bool
	HasEOL        bool
}

// TextEdit is one ranged edit the insertion driver applied to the
// document, recorded on a pending Update so it can be matched against
// the next transaction's change events.
type TextEdit struct {
	Range   poscodec.Range
	NewText string
}

// Update describes an edit the driver has submitted to the client but not
// yet seen echoed back as a didChange transaction. FromVersion must equal
// the owning State's AtVersion at the time the edit was submitted.
type Update struct {
	FromVersion uint64
	ToVersion   uint64
	TextEdits   []TextEdit
	Cursor      Description
}

// State is one tracked cursor: its last known description, the document
// version that description is valid at, and an optional in-flight Update
// describing an edit the cursor's own driver submitted but has not yet
// been reconciled against an incoming transaction.
type State struct {
	Cursor    Description
	AtVersion uint64
	Pending   *Update
}
