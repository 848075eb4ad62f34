// Package cursorerr names the error taxonomy of spec.md §7 so every
// component logs with the same vocabulary instead of ad-hoc strings.
//
// Grounded on the teacher's structured slog usage throughout lsp/server.go
// and lsp/workspace.go (slog.String("uri", uri), slog.Int("version", ...)):
// Category values are attached the same way, as a slog.String("category", ...)
// field on the relevant log record.
package cursorerr

// Category is one of the four error classes spec.md §7 defines. All are
// recovered locally by the component that detects them.
type Category string

const (
	// TransientEditConflict: applyEdit returned applied:false, or
	// try_begin_edit's preconditions failed. Recovered by back-off + retry.
	TransientEditConflict Category = "transient_edit_conflict"

	// CursorDesync: a pending update could not be matched to the
	// transaction that was supposed to contain it, or the transaction
	// spans the pending update without starting at it.
	CursorDesync Category = "cursor_desync"

	// ProtocolViolation: a monotonic-version assumption was broken, or a
	// change event's range fell outside the document.
	ProtocolViolation Category = "protocol_violation"

	// GeneratorError: the text generator reported a failure. Surfaced as
	// end-of-stream; the run terminates cleanly. generator.Drain does not
	// log the error itself, so no record currently carries this category.
	GeneratorError Category = "generator_error"
)
