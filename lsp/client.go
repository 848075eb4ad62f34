package lsp

import (
	"context"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/simon-lentz/prapti/internal/lspclient"
)

// glspClient adapts a *glsp.Context to internal/lspclient.Client, the
// narrow interface the insertion core depends on. This keeps
// internal/insertion and internal/cursor free of any glsp import
// (SPEC_FULL.md §4.4 design note).
type glspClient struct {
	ctx *glsp.Context
}

var _ lspclient.Client = (*glspClient)(nil)

const editLabel = "Prapti: Insert Text"

// ApplyEdit submits req as a versioned workspace/applyEdit request.
func (c *glspClient) ApplyEdit(_ context.Context, req lspclient.EditRequest) (bool, error) {
	edits := make([]any, len(req.Edits))
	for i, e := range req.Edits {
		edits[i] = protocol.TextEdit{
			Range: protocol.Range{
				Start: protocol.Position{Line: e.Range.Start.Line, Character: e.Range.Start.Character},
				End:   protocol.Position{Line: e.Range.End.Line, Character: e.Range.End.Character},
			},
			NewText: e.NewText,
		}
	}

	version := protocol.Integer(req.Version) //nolint:gosec // document versions never approach int32 overflow
	label := editLabel
	params := protocol.ApplyWorkspaceEditParams{
		Label: &label,
		Edit: protocol.WorkspaceEdit{
			DocumentChanges: []any{
				protocol.TextDocumentEdit{
					TextDocument: protocol.OptionalVersionedTextDocumentIdentifier{
						TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: req.URI},
						Version:                &version,
					},
					Edits: edits,
				},
			},
		},
	}

	var result protocol.ApplyWorkspaceEditResult
	if err := c.ctx.Call("workspace/applyEdit", params, &result); err != nil {
		return false, err
	}
	return result.Applied, nil
}

// LogMessage emits a window/logMessage notification to the client.
func (c *glspClient) LogMessage(message string) {
	c.ctx.Notify(protocol.ServerWindowLogMessage, protocol.LogMessageParams{
		Type:    protocol.MessageTypeLog,
		Message: message,
	})
}
