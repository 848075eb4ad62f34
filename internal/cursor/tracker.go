package cursor

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/simon-lentz/prapti/internal/change"
	"github.com/simon-lentz/prapti/internal/cursorerr"
	"github.com/simon-lentz/prapti/internal/poscodec"
)

// Tracker folds change.Transactions through a set of cursor States. One
// Tracker is shared by every cursor tracked for a single document run,
// since all of them move through the same sequence of transactions.
type Tracker struct {
	Codec poscodec.Codec
	Glyph rune
}

// NewTracker constructs a Tracker using codec for position arithmetic and
// glyph as the cursor placeholder character.
func NewTracker(codec poscodec.Codec, glyph rune) *Tracker {
	return &Tracker{Codec: codec, Glyph: glyph}
}

// Apply folds tx through every state in states, mutating each in place.
// finalText is the document source at tx.ToVersion, used for the
// brute-force has_cursor_char/has_eol refresh that closes out every fold.
//
// Returns true if, for any cursor, the glyph was present at the cursor
// both before and after the fold (the user may have typed around it,
// leaving duplicate or displaced glyphs) — the caller should enqueue a
// RequestCursorRepair fragment.
func (t *Tracker) Apply(log *slog.Logger, states []*State, tx change.Transaction, finalText string) bool {
	repair := false
	for _, st := range states {
		if t.applyOne(log, st, tx, finalText) {
			repair = true
		}
	}
	return repair
}

func (t *Tracker) applyOne(log *slog.Logger, st *State, tx change.Transaction, finalText string) bool {
	oldHasCursorChar := st.Cursor.HasCursorChar
	workingChanges := tx.Changes
	expectRepair := false

	if p := st.Pending; p != nil {
		switch {
		case p.FromVersion < tx.FromVersion:
			// Stale: whatever this pending update described has already
			// been superseded by a transaction we never saw reconciled.
			st.Pending = nil

		case p.FromVersion == tx.FromVersion && p.ToVersion == tx.ToVersion:
			// The transaction is exactly the echo of this pending edit.
			st.Cursor = p.Cursor
			st.Pending = nil
			workingChanges = nil

		case p.FromVersion == tx.FromVersion && matchesPrefix(tx.Changes, p.TextEdits):
			// The transaction begins with this pending edit, plus more.
			st.Cursor = p.Cursor
			st.Pending = nil
			workingChanges = tx.Changes[len(p.TextEdits):]

		case p.FromVersion == tx.FromVersion:
			// Same starting version, but the content diverges: the client
			// reordered or merged edits in a way we can't replay exactly.
			if !oldHasCursorChar && p.Cursor.HasCursorChar {
				expectRepair = true
			}
			if log != nil {
				log.Warn("cursor pending update content mismatch",
					slog.String("category", string(cursorerr.CursorDesync)),
					slog.Uint64("fromVersion", p.FromVersion))
			}
			st.Pending = nil

		case tx.FromVersion < p.FromVersion && p.FromVersion < tx.ToVersion:
			// The pending update is supposed to start strictly inside this
			// transaction's version span but not at its head: impossible
			// under the one-edit-at-a-time protocol assumption.
			if log != nil {
				log.Error("cursor pending update spans transaction boundary",
					slog.String("category", string(cursorerr.CursorDesync)),
					slog.Uint64("pendingFromVersion", p.FromVersion),
					slog.Uint64("transactionFromVersion", tx.FromVersion),
					slog.Uint64("transactionToVersion", tx.ToVersion))
			}
			st.Pending = nil

		default:
			// p.FromVersion >= tx.ToVersion: this transaction predates the
			// pending edit's own starting point. Leave it untouched and
			// still fold the transaction's events into the position.
		}
	}

	cursorCharPresent := oldHasCursorChar
	p := st.Cursor.Position

	for _, d := range workingChanges {
		p, cursorCharPresent, expectRepair = t.foldEvent(p, d.Minimal, cursorCharPresent, expectRepair)
	}

	st.Cursor.Position = p
	st.Cursor.HasCursorChar, st.Cursor.HasEOL = t.refresh(finalText, p)
	st.AtVersion = tx.ToVersion

	// Both old and new has_cursor_char true: the user typed around the
	// glyph without deleting it, which may have produced duplicate or
	// displaced glyphs elsewhere in the document.
	return oldHasCursorChar && st.Cursor.HasCursorChar
}

// foldEvent folds one minimal change event into the cursor position p,
// returning the updated position, glyph-presence guess, and repair flag.
func (t *Tracker) foldEvent(p poscodec.Position, ev change.MinimalEvent, cursorCharPresent, expectRepair bool) (poscodec.Position, bool, bool) {
	switch {
	case rangeBefore(ev.Range, p):
		if ev.Range.End.Line < p.Line {
			lineDelta := int64(poscodec.CountNewlines(ev.NewText)) - int64(ev.Range.End.Line-ev.Range.Start.Line)
			p.Line = addLine(p.Line, lineDelta)
			return p, cursorCharPresent, expectRepair
		}

		// Ends on p's line.
		if expectRepair && ev.Range.End == p {
			if idx, ok := singleGlyphIndex(ev.NewText, t.Glyph); ok {
				return positionWithinText(ev.Range.Start, ev.NewText, idx, t.Codec), true, false
			}
		}

		newlines := poscodec.CountNewlines(ev.NewText)
		lineDelta := int64(newlines) - int64(ev.Range.End.Line-ev.Range.Start.Line)
		newLine := addLine(p.Line, lineDelta)
		var newChar uint32
		if newlines > 0 {
			newChar = t.Codec.Units(poscodec.LastLine(ev.NewText)) + (p.Character - ev.Range.End.Character)
		} else {
			charDelta := int64(t.Codec.Units(ev.NewText)) - int64(ev.Range.End.Character-ev.Range.Start.Character)
			newChar = addLine(p.Character, charDelta)
		}
		return poscodec.Position{Line: newLine, Character: newChar}, cursorCharPresent, expectRepair

	case !ev.Range.Start.Less(p):
		// Strictly after p (or starting exactly at p without covering it):
		// ignored for position; has_cursor_char/has_eol are re-derived by
		// the brute-force refresh after the whole transaction is folded.
		return p, cursorCharPresent, expectRepair

	default:
		// Straddles p.
		if ev.NewText == "" {
			return ev.Range.Start, false, expectRepair
		}
		if cursorCharPresent {
			if idx, ok := singleGlyphIndex(ev.NewText, t.Glyph); ok {
				return positionWithinText(ev.Range.Start, ev.NewText, idx, t.Codec), true, expectRepair
			}
		}
		if expectRepair {
			if idx, ok := singleGlyphIndex(ev.NewText, t.Glyph); ok {
				return positionWithinText(ev.Range.Start, ev.NewText, idx, t.Codec), true, false
			}
		}
		return ev.Range.Start, false, expectRepair
	}
}

// refresh re-derives has_cursor_char and has_eol directly from text at p,
// superseding whatever the fold heuristics guessed along the way.
func (t *Tracker) refresh(text string, p poscodec.Position) (hasCursorChar, hasEOL bool) {
	offset, ok := t.Codec.PositionToOffset(text, p)
	if !ok {
		return false, false
	}
	rest := text[offset:]

	glyphLen := 0
	if r, size := utf8.DecodeRuneInString(rest); r == t.Glyph {
		hasCursorChar = true
		glyphLen = size
	}

	after := rest[glyphLen:]
	hasEOL = strings.HasPrefix(after, "\r\n") || strings.HasPrefix(after, "\n")
	return hasCursorChar, hasEOL
}

// rangeBefore reports whether r ends at or before p.
func rangeBefore(r poscodec.Range, p poscodec.Position) bool {
	return !p.Less(r.End)
}

// matchesPrefix reports whether changes begins with edits, element-wise by
// range and replacement text.
func matchesPrefix(changes []change.Details, edits []TextEdit) bool {
	if len(changes) < len(edits) {
		return false
	}
	for i, e := range edits {
		m := changes[i].Minimal
		if m.Range != e.Range || m.NewText != e.NewText {
			return false
		}
	}
	return true
}

// singleGlyphIndex returns the byte offset of glyph in s if it appears
// exactly once.
func singleGlyphIndex(s string, glyph rune) (int, bool) {
	first := strings.IndexRune(s, glyph)
	if first < 0 {
		return 0, false
	}
	if strings.IndexRune(s[first+utf8.RuneLen(glyph):], glyph) >= 0 {
		return 0, false
	}
	return first, true
}

// positionWithinText returns the Position reached by advancing start
// through the bytes of text preceding byte offset idx.
func positionWithinText(start poscodec.Position, text string, idx int, codec poscodec.Codec) poscodec.Position {
	prefix := text[:idx]
	nl := poscodec.CountNewlines(prefix)
	if nl == 0 {
		return poscodec.Position{Line: start.Line, Character: start.Character + codec.Units(prefix)}
	}
	return poscodec.Position{Line: start.Line + nl, Character: codec.Units(poscodec.LastLine(prefix))}
}

// addLine adds a signed delta to an unsigned position component, clamping
// at zero. A well-formed transaction never drives this negative, but
// folding is defensive against a malformed one.
func addLine(base uint32, delta int64) uint32 {
	v := int64(base) + delta
	if v < 0 {
		return 0
	}
	return uint32(v)
}
