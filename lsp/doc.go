// Package lsp implements a Language Server Protocol server that streams
// generated text into a live document, tracking a visible insertion
// cursor through concurrent client edits.
//
// The server speaks LSP 3.16 over stdio via github.com/tliron/glsp. It
// supports exactly the surface spec.md §6 names: textDocument/didChange
// notifications in, workspace/applyEdit requests out, and two commands
// (runPrapti, stopPrapti) each exposed as a matching code action.
//
// # Architecture
//
// All of the interesting behavior — cursor tracking, change
// normalization, the insertion protocol — lives under internal/ and is
// glsp-agnostic. This package is the thin adapter layer that wires those
// packages to a real editor connection:
//   - Server: LSP protocol lifecycle, document sync, command dispatch
//   - glspClient: adapts *glsp.Context to internal/lspclient.Client
//
// # Usage
//
// The server is typically started via the praptilsp command:
//
//	praptilsp [options]
//
// The server communicates over stdio (implicit, no flag required).
//
// For debugging:
//
//	praptilsp --log-level debug --log-file /tmp/prapti-lsp.log
//
// # Limitations
//
// The server implements LSP 3.16, which does not support position
// encoding negotiation (added in LSP 3.17). UTF-16 encoding is assumed
// for all character positions.
//
// The URI scheme is not inspected: a run's end-of-line style is detected
// from the document text when it is opened, falling back to the
// configured host default when the text has no line break.
package lsp
