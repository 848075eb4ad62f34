// Package generator adapts an asynchronous text producer onto an
// insertion.Queue, rewriting line endings to match the run's detected
// EOL style before each fragment is enqueued (spec.md §4.4).
//
// Grounded on the teacher's lsp/workspace.go normalizeLineEndings, the
// one piece of that file genuinely reused rather than replaced: the same
// \r\n-insertion/removal walk, now applied to generator fragments instead
// of whole incoming documents.
package generator

import (
	"context"
	"strings"

	"github.com/simon-lentz/prapti/internal/insertion"
)

// Generator produces a stream of opaque text fragments until it returns
// a non-nil error (treated as spec.md §7's GeneratorError) or the
// context is canceled. Next returns ok=false with a nil error at a clean
// end of stream.
type Generator interface {
	Next(ctx context.Context) (fragment string, ok bool, err error)
}

// Drain pulls fragments from gen until it ends, is canceled, or errors,
// rewriting each fragment's line endings to eol and pushing it onto q.
// Always ends by pushing exactly one insertion.EndOfStream. A generator
// error ends the stream the same way; the error is not logged. Intended to
// run in its own goroutine for the lifetime of one document run.
func Drain(ctx context.Context, gen Generator, q *insertion.Queue, eol string) {
	defer q.Push(insertion.EndOfStream)

	for {
		fragment, ok, err := gen.Next(ctx)
		if err != nil || !ok {
			return
		}
		if fragment == "" {
			continue
		}
		q.Push(insertion.TextFragment(rewriteEOL(fragment, eol)))

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// rewriteEOL normalizes every line terminator in s to eol.
func rewriteEOL(s, eol string) string {
	normalized := strings.ReplaceAll(s, "\r\n", "\n")
	if eol == "\n" {
		return normalized
	}
	return strings.ReplaceAll(normalized, "\n", eol)
}
