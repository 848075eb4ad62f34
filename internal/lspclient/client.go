// Package lspclient narrows glsp.Context down to the two operations the
// insertion core needs, so internal/insertion and internal/cursor never
// import glsp directly (spec.md §4.4 design note: "the core never
// imports glsp directly, only this interface").
//
// Grounded on the teacher's lsp/server.go use of glsp.Context.Notify and
// the protocol_3_16 ApplyWorkspaceEditParams/ApplyWorkspaceEditResult
// round-trip in its workspace/applyEdit calls.
package lspclient

import (
	"context"

	"github.com/simon-lentz/prapti/internal/poscodec"
)

// TextEdit is one ranged replacement to submit against a specific
// document version.
type TextEdit struct {
	Range   poscodec.Range
	NewText string
}

// EditRequest is a versioned document edit: the client rejects it (and
// reports Applied=false) if the document has since moved past Version.
type EditRequest struct {
	URI     string
	Version uint64
	Edits   []TextEdit
}

// Client is the subset of the LSP transport the insertion core depends
// on: submitting a versioned edit and emitting log messages visible to
// the editor's client, independent of which protocol library backs it.
type Client interface {
	// ApplyEdit submits req as a workspace/applyEdit request and reports
	// whether the client applied it.
	ApplyEdit(ctx context.Context, req EditRequest) (applied bool, err error)

	// LogMessage emits a window/logMessage-style notification to the
	// connected editor, independent of server-side structured logging.
	LogMessage(message string)
}
