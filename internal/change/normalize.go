package change

import (
	"fmt"

	"github.com/simon-lentz/prapti/internal/poscodec"
)

// Normalizer converts raw didChange event lists into Transactions.
type Normalizer struct {
	Codec poscodec.Codec
}

// NewNormalizer constructs a Normalizer using the given position codec.
func NewNormalizer(codec poscodec.Codec) *Normalizer {
	return &Normalizer{Codec: codec}
}

// Normalize applies events in order to currentText (the document source at
// fromVersion) and returns the resulting Transaction, whose ToText equals
// the document source at toVersion.
//
// A malformed event — a range outside the document, or toVersion not
// strictly greater than fromVersion — is a protocol violation: the
// transaction is rejected and the caller should keep tracking its last
// consistent state (spec.md §4.1 Failure semantics).
func (n *Normalizer) Normalize(fromVersion, toVersion uint64, currentText string, events []Event) (Transaction, error) {
	if toVersion <= fromVersion {
		return Transaction{}, fmt.Errorf("change: non-monotonic version %d -> %d", fromVersion, toVersion)
	}

	tx := Transaction{FromVersion: fromVersion, ToVersion: toVersion}
	text := currentText

	for _, ev := range events {
		pre := text
		post, minimal, err := n.applyEvent(pre, ev)
		if err != nil {
			return Transaction{}, err
		}
		if post == pre {
			// No textual change: dropped from the transaction (§4.1).
			continue
		}
		tx.Changes = append(tx.Changes, Details{
			FromText: pre,
			ToText:   post,
			Raw:      ev,
			Minimal:  minimal,
		})
		text = post
	}

	return tx, nil
}

// applyEvent applies a single raw event to pre, returning the resulting
// text and its minimal ranged form.
func (n *Normalizer) applyEvent(pre string, ev Event) (post string, minimal MinimalEvent, err error) {
	if ev.IsFull() {
		post = ev.Text
		if post == pre {
			return post, MinimalEvent{}, nil
		}
		return post, MinimalDiff(pre, post, n.Codec), nil
	}

	startOff, ok1 := n.Codec.PositionToOffset(pre, ev.Range.Start)
	endOff, ok2 := n.Codec.PositionToOffset(pre, ev.Range.End)
	if !ok1 || !ok2 || startOff > endOff || endOff > len(pre) {
		return "", MinimalEvent{}, fmt.Errorf("change: range outside document")
	}

	post = pre[:startOff] + ev.Text + pre[endOff:]

	isInsertion := ev.Range.Start == ev.Range.End
	isDeletion := ev.Text == ""
	if isInsertion || isDeletion {
		// Already minimal by construction: pass through unmodified (§4.1).
		return post, MinimalEvent{Range: *ev.Range, NewText: ev.Text}, nil
	}

	return post, MinimalDiff(pre, post, n.Codec), nil
}
