package insertion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/simon-lentz/prapti/internal/cursor"
	"github.com/simon-lentz/prapti/internal/cursorerr"
	"github.com/simon-lentz/prapti/internal/lspclient"
	"github.com/simon-lentz/prapti/internal/poscodec"
)

// backoff is the fixed retry delay spec.md §4.3 names for both
// try_insert_text failures and try_remove_cursor_sequence cleanup.
const backoff = 100 * time.Millisecond

// Driver runs the edit protocol of spec.md §4.3 for one document run. It
// owns the single active cursor-state vector for that run; the vector has
// length 1 except during an in-flight edit, when it briefly forks to 2
// (spec.md §5 suspension-point invariant).
type Driver struct {
	URI     string
	Client  lspclient.Client
	Tracker *cursor.Tracker
	Codec   poscodec.Codec
	Glyph   rune
	EOL     string
	Logger  *slog.Logger

	queue   *Queue
	changes <-chan Change
	states  []*cursor.State
}

// Change is what the run dispatcher feeds the driver for every folded
// didChange notification: the transaction plus the document's resulting
// full text, needed for the tracker's brute-force has_cursor_char/has_eol
// refresh.
type Change struct {
	FromVersion uint64
	ToVersion   uint64
	Fold        func(tracker *cursor.Tracker, log *slog.Logger, states []*cursor.State) bool
}

// NewDriver constructs a Driver starting with a single cursor state at
// initial, bound to q for fragments and changes for folded transactions.
func NewDriver(uri string, client lspclient.Client, tracker *cursor.Tracker, codec poscodec.Codec, glyph rune, eol string, logger *slog.Logger, q *Queue, changes <-chan Change, initial cursor.State) *Driver {
	st := initial
	return &Driver{
		URI: uri, Client: client, Tracker: tracker, Codec: codec,
		Glyph: glyph, EOL: eol, Logger: logger,
		queue: q, changes: changes,
		states: []*cursor.State{&st},
	}
}

// Run executes the driver main loop until the queue reaches end of
// stream and the cursor sequence has been removed. Cancellation of ctx
// is treated as end of stream: Run still inserts any text already pulled
// and removes the cursor sequence before it returns.
func (d *Driver) Run(ctx context.Context) {
	var pending string
	repairPending := true // repair cursor at start of run
	streamEnded := false

	for {
		for {
			f, ok := d.queue.TryPull()
			if !ok {
				break
			}
			switch f.Kind {
			case KindText:
				pending += f.Text
			case KindRequestCursorRepair:
				repairPending = true
			case KindEndOfStream:
				streamEnded = true
			}
		}

		if pending == "" && !repairPending {
			if streamEnded {
				break
			}
			select {
			case f := <-d.rawQueue():
				switch f.Kind {
				case KindText:
					pending += f.Text
				case KindRequestCursorRepair:
					repairPending = true
				case KindEndOfStream:
					streamEnded = true
				}
			case ch := <-d.changes:
				d.foldChange(ch)
			case <-ctx.Done():
				streamEnded = true
			}
			continue
		}

		if d.tryInsertText(ctx, pending) {
			pending = ""
			repairPending = false
			continue
		}
		d.sleepServicingChanges(ctx, backoff)
	}

	for !d.tryRemoveCursorSequence(ctx) {
		d.sleepServicingChanges(ctx, backoff)
	}
}

// rawQueue exposes the queue's channel for multiplexed select; Queue
// keeps its field unexported so every other caller goes through Pull.
func (d *Driver) rawQueue() chan Fragment { return d.queue.items }

func (d *Driver) foldChange(ch Change) {
	if ch.Fold(d.Tracker, d.Logger, d.states) {
		if d.Logger != nil {
			d.Logger.Info("cursor repair requested", slog.String("uri", d.URI))
		}
		d.queue.Push(RequestCursorRepair)
	}
}

// sleepServicingChanges backs off for delay, folding any transaction
// that arrives in the meantime rather than letting it queue up silently.
func (d *Driver) sleepServicingChanges(ctx context.Context, delay time.Duration) {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	for {
		select {
		case <-timer.C:
			return
		case ch := <-d.changes:
			d.foldChange(ch)
		case <-ctx.Done():
			return
		}
	}
}

// tryInsertText attempts one insertion of text per spec.md §4.3.
func (d *Driver) tryInsertText(ctx context.Context, text string) bool {
	if len(d.states) != 1 || d.states[0].Pending != nil {
		return false
	}
	cur := d.states[0]
	p := cur.Cursor.Position

	projected := cur.Cursor
	newlines := poscodec.CountNewlines(text)
	if newlines > 0 {
		projected.Position = poscodec.Position{Line: p.Line + newlines, Character: d.Codec.Units(poscodec.LastLine(text))}
	} else {
		projected.Position = poscodec.Position{Line: p.Line, Character: p.Character + d.Codec.Units(text)}
	}

	insertText := text
	if !cur.Cursor.HasCursorChar {
		insertText += string(d.Glyph)
		projected.HasCursorChar = true
		if !cur.Cursor.HasEOL {
			insertText += d.EOL
			projected.HasEOL = true
		}
	}

	if insertText == "" {
		return true
	}

	edits := []lspclient.TextEdit{{Range: poscodec.Range{Start: p, End: p}, NewText: insertText}}
	return d.submitRacingEdit(ctx, cur, projected, edits)
}

// tryRemoveCursorSequence deletes the glyph (and trailing EOL, if
// present) at cleanup time, per the same protocol as tryInsertText.
func (d *Driver) tryRemoveCursorSequence(ctx context.Context) bool {
	if len(d.states) != 1 || d.states[0].Pending != nil {
		return false
	}
	cur := d.states[0]
	if !cur.Cursor.HasCursorChar {
		return true
	}
	p := cur.Cursor.Position

	end := poscodec.Position{Line: p.Line, Character: p.Character + d.Codec.Units(string(d.Glyph))}
	if cur.Cursor.HasEOL {
		// The EOL sequence is a line terminator: removing it merges p's
		// line with the next one, so end moves to the start of that line.
		end = poscodec.Position{Line: p.Line + 1, Character: 0}
	}

	projected := cursor.Description{Position: p, HasCursorChar: false, HasEOL: false}
	edits := []lspclient.TextEdit{{Range: poscodec.Range{Start: p, End: end}, NewText: ""}}
	return d.submitRacingEdit(ctx, cur, projected, edits)
}

// submitRacingEdit implements the two-path racing submission protocol
// shared by tryInsertText and tryRemoveCursorSequence.
func (d *Driver) submitRacingEdit(ctx context.Context, cur *cursor.State, projected cursor.Description, edits []lspclient.TextEdit) bool {
	textEdits := make([]cursor.TextEdit, len(edits))
	for i, e := range edits {
		textEdits[i] = cursor.TextEdit{Range: e.Range, NewText: e.NewText}
	}

	successPath := &cursor.State{
		Cursor:    cur.Cursor,
		AtVersion: cur.AtVersion,
		Pending: &cursor.Update{
			FromVersion: cur.AtVersion,
			ToVersion:   cur.AtVersion + 1,
			TextEdits:   textEdits,
			Cursor:      projected,
		},
	}
	failurePath := &cursor.State{Cursor: cur.Cursor, AtVersion: cur.AtVersion}

	d.states = []*cursor.State{successPath, failurePath}

	type result struct {
		applied bool
		err     error
	}
	resultCh := make(chan result, 1)
	go func() {
		applied, err := d.Client.ApplyEdit(ctx, lspclient.EditRequest{URI: d.URI, Version: cur.AtVersion, Edits: edits})
		resultCh <- result{applied, err}
	}()

	for {
		select {
		case ch := <-d.changes:
			d.foldChange(ch)
		case r := <-resultCh:
			if r.err != nil {
				if d.Logger != nil {
					d.Logger.Warn("applyEdit failed",
						slog.String("category", string(cursorerr.TransientEditConflict)),
						slog.String("uri", d.URI), slog.String("error", r.err.Error()))
				}
				if d.Client != nil {
					d.Client.LogMessage(fmt.Sprintf("prapti: edit conflict on %s: %v", d.URI, r.err))
				}
			}
			if r.applied {
				d.states = []*cursor.State{successPath}
			} else {
				d.states = []*cursor.State{failurePath}
			}
			return r.applied
		case <-ctx.Done():
			d.states = []*cursor.State{failurePath}
			return false
		}
	}
}

// CursorPosition returns the position exposed to external observers: the
// single active cursor's position, or the position recorded before an
// in-flight edit forked the state vector. Never exposes the fork.
func (d *Driver) CursorPosition(lastKnown poscodec.Position) poscodec.Position {
	if len(d.states) == 1 {
		return d.states[0].Cursor.Position
	}
	return lastKnown
}
