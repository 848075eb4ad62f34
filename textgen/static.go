// Package textgen holds concrete text generators, kept outside internal/
// because spec.md §1 names "the text generator that actually produces
// content" an explicit non-goal ("Designing the text generator itself")
// and SPEC_FULL.md §4.4 treats it as an external collaborator specified
// only by the generator.Generator interface. Static is a minimal
// stand-in good enough to exercise the insertion engine end to end; a
// real deployment supplies its own generator.Generator, such as one
// backed by a language-model API.
package textgen

import (
	"context"

	"github.com/simon-lentz/prapti/internal/generator"
)

// Static replays a fixed slice of fragments, then ends the stream.
type Static struct {
	Fragments []string
	pos       int
}

var _ generator.Generator = (*Static)(nil)

// Next implements generator.Generator.
func (s *Static) Next(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, nil
	}
	if s.pos >= len(s.Fragments) {
		return "", false, nil
	}
	f := s.Fragments[s.pos]
	s.pos++
	return f, true, nil
}
