// Package runs owns the process-wide run registry: at most one active
// insertion run per document URI, each wiring together a change
// normalizer, a cursor tracker, a fragment queue, a generator-drain
// goroutine, and an InsertionDriver goroutine (SPEC_FULL.md §4.6).
//
// Grounded on the teacher's lsp/workspace.go Workspace type: a
// mutex-guarded map keyed by URI, with AddRoot/RemoveRoot-style
// lifecycle methods. URI canonicalization before the map lookup follows
// the (now superseded) teacher location.CanonicalPath helper, which used
// golang.org/x/text/unicode/norm to fold URIs to NFC before comparison.
package runs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/simon-lentz/prapti/internal/change"
	"github.com/simon-lentz/prapti/internal/cursor"
	"github.com/simon-lentz/prapti/internal/generator"
	"github.com/simon-lentz/prapti/internal/insertion"
	"github.com/simon-lentz/prapti/internal/lspclient"
	"github.com/simon-lentz/prapti/internal/poscodec"
)

// CanonicalURI folds a document URI to NFC so visually identical URIs
// that differ only in Unicode normalization form compare equal.
func CanonicalURI(uri string) string { return norm.NFC.String(uri) }

// Run is one active insertion run bound to a single document.
type Run struct {
	ID      string
	URI     string
	cancel  context.CancelFunc
	queue   *insertion.Queue
	changes chan insertion.Change
	driver  *insertion.Driver
	done    chan struct{}
}

// Cancel requests cancellation; the generator stops producing and pushes
// EndOfStream, and the driver then removes the cursor sequence and exits
// (spec.md §5 Cancellation).
func (r *Run) Cancel() { r.cancel() }

// Done returns a channel closed once the run's driver goroutine exits.
func (r *Run) Done() <-chan struct{} { return r.done }

// Deliver folds a normalized change transaction into the run's cursor
// state on the driver's own goroutine, via its changes channel.
func (r *Run) Deliver(tracker *cursor.Tracker, tx change.Transaction, finalText string) {
	r.changes <- insertion.Change{
		FromVersion: tx.FromVersion,
		ToVersion:   tx.ToVersion,
		Fold: func(t *cursor.Tracker, log *slog.Logger, states []*cursor.State) bool {
			return t.Apply(log, states, tx, finalText)
		},
	}
}

// Registry is the process-wide map of active runs, keyed by canonical
// URI. At most one run is active per URI at a time (spec.md §6
// Concurrency limit).
type Registry struct {
	mu   sync.Mutex
	runs map[string]*Run
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry { return &Registry{runs: make(map[string]*Run)} }

// Get returns the active run for uri, if any.
func (reg *Registry) Get(uri string) (*Run, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	r, ok := reg.runs[CanonicalURI(uri)]
	return r, ok
}

// Params bundles everything Start needs to wire a new run's driver and
// generator-drain goroutines.
type Params struct {
	URI     string
	Client  lspclient.Client
	Codec   poscodec.Codec
	Glyph   rune
	EOL     string
	Initial cursor.State
	Tracker *cursor.Tracker
	Gen     generator.Generator
	Logger  *slog.Logger
}

// Start begins a new run for p.URI. If a run is already active for that
// URI, Start is a no-op and returns ok=false (spec.md §6 Concurrency
// limit: "Attempting to start a second is a no-op with a log message").
func (reg *Registry) Start(ctx context.Context, p Params) (*Run, bool) {
	key := CanonicalURI(p.URI)

	reg.mu.Lock()
	if _, exists := reg.runs[key]; exists {
		reg.mu.Unlock()
		if p.Logger != nil {
			p.Logger.Info("run already active, ignoring start request", slog.String("uri", p.URI))
		}
		return nil, false
	}

	runCtx, cancel := context.WithCancel(ctx)
	id := uuid.NewString()
	logger := p.Logger
	if logger != nil {
		logger = logger.With(slog.String("runID", id), slog.String("uri", p.URI))
	}

	q := insertion.NewQueue(64)
	changes := make(chan insertion.Change, 16)
	driver := insertion.NewDriver(p.URI, p.Client, p.Tracker, p.Codec, p.Glyph, p.EOL, logger, q, changes, p.Initial)

	r := &Run{ID: id, URI: key, cancel: cancel, queue: q, changes: changes, driver: driver, done: make(chan struct{})}
	reg.runs[key] = r
	reg.mu.Unlock()

	go generator.Drain(runCtx, p.Gen, q, p.EOL)
	go func() {
		defer close(r.done)
		driver.Run(runCtx)
		reg.remove(key)
		if logger != nil {
			logger.Info("run finished")
		}
	}()

	if logger != nil {
		logger.Info("run started")
	}
	return r, true
}

// Stop requests cancellation of the run bound to uri, if any. Returns
// false if no run is active for uri.
func (reg *Registry) Stop(uri string) bool {
	r, ok := reg.Get(uri)
	if !ok {
		return false
	}
	r.Cancel()
	return true
}

func (reg *Registry) remove(key string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.runs, key)
}

// ErrNoActiveRun is returned by operations that require a run to already
// be active for a given URI.
var ErrNoActiveRun = fmt.Errorf("runs: no active run for this document")
