package lsp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	// commonlog is a required dependency of github.com/tliron/glsp.
	// We silence it in NewServer() via commonlog.Configure(0, nil) because
	// this server uses slog for all logging. The blank import of the
	// "simple" backend is required by glsp at runtime.
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple" // required backend for glsp

	"github.com/simon-lentz/prapti/internal/change"
	"github.com/simon-lentz/prapti/internal/cursor"
	"github.com/simon-lentz/prapti/internal/docstore"
	"github.com/simon-lentz/prapti/internal/poscodec"
	"github.com/simon-lentz/prapti/internal/runs"
	"github.com/simon-lentz/prapti/textgen"
)

const (
	serverName = "prapti-lsp"

	commandRun  = "runPrapti"
	commandStop = "stopPrapti"

	codeActionRun  = "source.prapti.run"
	codeActionStop = "source.prapti.stop"
)

// Config holds the server configuration.
type Config struct {
	CursorGlyph  rune
	RetryBackoff int // milliseconds
	HostEOL      string
}

// Server is the prapti insertion language server.
type Server struct {
	logger   *slog.Logger
	config   Config
	handler  protocol.Handler
	server   *server.Server
	docs     *docstore.Store
	registry *runs.Registry
	codec    poscodec.Codec
	norm     *change.Normalizer

	shutdownCalled bool

	closeOnce sync.Once
	closeErr  error
}

// NewServer creates a new prapti language server. If logger is nil,
// slog.Default() is used.
func NewServer(logger *slog.Logger, cfg Config) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.CursorGlyph == 0 {
		cfg.CursorGlyph = '█'
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = 100
	}
	if cfg.HostEOL == "" {
		cfg.HostEOL = "\n"
	}

	codec := poscodec.UTF16{}
	s := &Server{
		logger:   logger.With(slog.String("component", "server")),
		config:   cfg,
		docs:     docstore.New(),
		registry: runs.NewRegistry(),
		codec:    codec,
		norm:     change.NewNormalizer(codec),
	}

	// Silence commonlog: glsp uses it internally but we use slog for all
	// logging.
	commonlog.Configure(0, nil)

	s.handler = protocol.Handler{
		Initialize:    s.initialize,
		Initialized:   s.initialized,
		Shutdown:      s.shutdown,
		Exit:          s.exit,
		SetTrace:      s.setTrace,
		CancelRequest: s.cancelRequest,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCodeAction: s.textDocumentCodeAction,
		WorkspaceExecuteCommand: s.workspaceExecuteCommand,
	}

	s.server = server.NewServer(&s.handler, serverName, false)

	return s
}

// Handler returns the protocol handler, for testing.
func (s *Server) Handler() *protocol.Handler { return &s.handler }

// RunStdio runs the server using stdio transport.
func (s *Server) RunStdio() error {
	if err := s.server.RunStdio(); err != nil {
		return fmt.Errorf("run stdio: %w", err)
	}
	return nil
}

// Shutdown initiates graceful server shutdown, cancelling every active run.
func (s *Server) Shutdown() {
	s.logger.Info("initiating shutdown")
	for _, uri := range s.docs.URIs() {
		s.registry.Stop(uri)
	}
}

// Close closes the JSON-RPC connection, causing RunStdio to return.
// Close is idempotent and safe to call before RunStdio.
func (s *Server) Close() error {
	conn := s.server.GetStdio()
	if conn == nil {
		return nil
	}
	s.closeOnce.Do(func() {
		if err := conn.Close(); err != nil {
			s.closeErr = fmt.Errorf("close connection: %w", err)
		}
	})
	return s.closeErr
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.logger.Info("initialize request received", slog.String("client_name", s.clientName(params)))

	capabilities := s.handler.CreateServerCapabilities()
	syncKind := protocol.TextDocumentSyncKindFull
	if syncOpts, ok := capabilities.TextDocumentSync.(*protocol.TextDocumentSyncOptions); ok {
		syncOpts.Change = &syncKind
	}

	if capabilities.ExecuteCommandProvider == nil {
		capabilities.ExecuteCommandProvider = &protocol.ExecuteCommandOptions{}
	}
	capabilities.ExecuteCommandProvider.Commands = []string{commandRun, commandStop}

	version := "dev"
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &version,
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	s.logger.Info("server initialized")
	return nil
}

func (s *Server) shutdown(ctx *glsp.Context) error {
	s.logger.Info("shutdown request received")
	s.shutdownCalled = true
	s.Shutdown()
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (s *Server) exit(_ *glsp.Context) error {
	exitCode := 0
	if !s.shutdownCalled {
		s.logger.Warn("exit called without shutdown")
		exitCode = 1
	}
	s.logger.Info("exit notification received", slog.Int("exit_code", exitCode))
	os.Exit(exitCode)
	return nil
}

func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) cancelRequest(ctx *glsp.Context, params *protocol.CancelParams) error {
	s.logger.Debug("cancelRequest", slog.Any("id", params.ID))
	return nil
}

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.logger.Debug("textDocument/didOpen", slog.String("uri", uri), slog.Int("version", int(params.TextDocument.Version)))
	s.docs.Open(uri, params.TextDocument.Text, uint64(params.TextDocument.Version), s.config.HostEOL)
	return nil
}

func (s *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.registry.Stop(uri)
	s.docs.Close(uri)
	return nil
}

// textDocumentDidChange handles textDocument/didChange: normalizes the
// raw change events, updates the document store, and — if a run is
// active for this document — delivers the folded transaction to it.
func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	doc := s.docs.Get(uri)
	if doc == nil {
		s.logger.Warn("didChange for unopened document", slog.String("uri", uri))
		return nil
	}

	events := make([]change.Event, 0, len(params.ContentChanges))
	for _, raw := range params.ContentChanges {
		switch c := raw.(type) {
		case protocol.TextDocumentContentChangeEvent:
			r := &poscodec.Range{
				Start: poscodec.Position{Line: c.Range.Start.Line, Character: c.Range.Start.Character},
				End:   poscodec.Position{Line: c.Range.End.Line, Character: c.Range.End.Character},
			}
			events = append(events, change.Event{Range: r, Text: c.Text})
		case protocol.TextDocumentContentChangeEventWhole:
			events = append(events, change.Event{Text: c.Text})
		}
	}

	toVersion := uint64(params.TextDocument.Version)
	tx, err := s.norm.Normalize(doc.Version, toVersion, doc.Text, events)
	if err != nil {
		s.logger.Error("malformed didChange transaction", slog.String("uri", uri), slog.String("error", err.Error()))
		return nil
	}

	finalText := doc.Text
	if !tx.IsEmpty() {
		finalText = tx.Changes[len(tx.Changes)-1].ToText
	}
	s.docs.Update(uri, finalText, toVersion)

	if run, ok := s.registry.Get(uri); ok {
		run.Deliver(trackerFor(s.config), tx, finalText)
	}

	return nil
}

// trackerFor constructs the shared cursor.Tracker for the server's
// configured glyph. Stateless: safe to build fresh per call.
func trackerFor(cfg Config) *cursor.Tracker {
	return cursor.NewTracker(poscodec.UTF16{}, cfg.CursorGlyph)
}

func (s *Server) workspaceExecuteCommand(ctx *glsp.Context, params *protocol.ExecuteCommandParams) (any, error) {
	uri, err := firstStringArgument(params.Arguments)
	if err != nil {
		return nil, err
	}

	switch params.Command {
	case commandRun:
		return nil, s.startRun(ctx, uri)
	case commandStop:
		s.registry.Stop(uri)
		return nil, nil
	default:
		return nil, fmt.Errorf("prapti: unknown command %q", params.Command)
	}
}

func (s *Server) textDocumentCodeAction(ctx *glsp.Context, params *protocol.CodeActionParams) (any, error) {
	uri := params.TextDocument.URI
	runCmd := commandRun
	stopCmd := commandStop
	runKind := protocol.CodeActionKind(codeActionRun)
	stopKind := protocol.CodeActionKind(codeActionStop)
	runTitle := "Prapti: Run"
	stopTitle := "Prapti: Stop"

	return []protocol.CodeAction{
		{
			Title: runTitle,
			Kind:  &runKind,
			Command: &protocol.Command{
				Title:     runTitle,
				Command:   runCmd,
				Arguments: []any{uri},
			},
		},
		{
			Title: stopTitle,
			Kind:  &stopKind,
			Command: &protocol.Command{
				Title:     stopTitle,
				Command:   stopCmd,
				Arguments: []any{uri},
			},
		},
	}, nil
}

// startRun begins a run at the document's current end-of-file, per
// spec.md §6 ("start an insertion run on the document at its current
// end-of-file"). The generator is a minimal stand-in; designing the
// text generator itself is out of scope (spec.md §1 Non-goals).
func (s *Server) startRun(ctx *glsp.Context, uri string) error {
	doc := s.docs.Get(uri)
	if doc == nil {
		return fmt.Errorf("prapti: cannot run, document %q is not open", uri)
	}

	insertionPos := poscodec.EndOfDocument(doc.Text, s.codec)
	initial := cursor.State{
		Cursor:    cursor.Description{Position: insertionPos},
		AtVersion: doc.Version,
	}

	_, started := s.registry.Start(context.Background(), runs.Params{
		URI:     uri,
		Client:  &glspClient{ctx: ctx},
		Codec:   s.codec,
		Glyph:   s.config.CursorGlyph,
		EOL:     doc.EOL,
		Initial: initial,
		Tracker: trackerFor(s.config),
		Gen:     &textgen.Static{},
		Logger:  s.logger,
	})
	if !started {
		s.logger.Info("run already active", slog.String("uri", uri))
	}
	return nil
}

func (s *Server) clientName(params *protocol.InitializeParams) string {
	if params.ClientInfo != nil {
		return params.ClientInfo.Name
	}
	return "unknown"
}

func firstStringArgument(args *[]any) (string, error) {
	if args == nil || len(*args) == 0 {
		return "", fmt.Errorf("prapti: command requires a document URI argument")
	}
	uri, ok := (*args)[0].(string)
	if !ok {
		return "", fmt.Errorf("prapti: command argument must be a URI string")
	}
	return uri, nil
}
