// Package editor ties the document core, the reconciler and a rendering
// surface together behind the update/read API frontends program against.
//
// All mutation flows through Update: the closure receives the transaction
// context, and when it returns the editor commits the pending snapshot,
// reconciles it against the surface and notifies listeners. Update calls
// nested inside an open update flatten into the same transaction. The
// editor is not safe for concurrent use; drive it from one goroutine.
package editor

import (
	"errors"
	"sort"

	"github.com/loomdoc/loom/internal/engine/doc"
	"github.com/loomdoc/loom/internal/engine/reconcile"
	"github.com/loomdoc/loom/internal/engine/surface"
)

// ErrListenerClosed is returned when an unsubscribe function is called
// twice.
var ErrListenerClosed = errors.New("listener already removed")

// UpdateFn mutates the document through the open transaction.
type UpdateFn func(ctx *doc.Context) error

// Listener observes committed snapshot swaps. prev is the snapshot that
// was current before the update, next the one that replaced it.
type Listener func(prev, next *doc.State)

// Option configures an Editor.
type Option func(*Editor)

// WithSurface sets the rendering surface. Defaults to an in-memory text
// buffer.
func WithSurface(s surface.Surface) Option {
	return func(e *Editor) { e.surf = s }
}

// WithDecoratorRegistry sets the decorator registry. Defaults to an
// in-memory registry.
func WithDecoratorRegistry(r surface.Registry) Option {
	return func(e *Editor) { e.deco = r }
}

// WithNodeRegistry sets the node type registry consulted by NewNode.
func WithNodeRegistry(r *doc.Registry) Option {
	return func(e *Editor) { e.nodes = r }
}

// WithKeyFunc sets the node key generator.
func WithKeyFunc(keys doc.KeyFunc) Option {
	return func(e *Editor) { e.keys = keys }
}

// WithLogger sets the editor's logger. Defaults to NullLogger.
func WithLogger(l *Logger) Option {
	return func(e *Editor) { e.logger = l }
}

// WithSanityCheck enables the reconciler's full-rebuild verification on
// every update.
func WithSanityCheck() Option {
	return func(e *Editor) { e.sanity = true }
}

// Editor owns the committed snapshot and coordinates transactions,
// reconciliation and listeners.
type Editor struct {
	state     *doc.State
	keys      doc.KeyFunc
	nodes     *doc.Registry
	surf      surface.Surface
	deco      surface.Registry
	rec       *reconcile.Reconciler
	logger    *Logger
	sanity    bool
	ctx       *doc.Context
	listeners map[int]Listener
	nextID    int
}

// New creates an editor over an empty document and mounts it into the
// surface.
func New(opts ...Option) (*Editor, error) {
	e := &Editor{
		state:     doc.NewState(),
		keys:      doc.SequentialKeys(),
		nodes:     doc.NewRegistry(),
		logger:    NullLogger,
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.surf == nil {
		e.surf = surface.NewTextBuffer()
	}
	if e.deco == nil {
		e.deco = surface.NewMemRegistry()
	}
	var recOpts []reconcile.Option
	if e.sanity {
		recOpts = append(recOpts, reconcile.WithSanityCheck())
	}
	e.rec = reconcile.New(e.surf, e.deco, recOpts...)
	if err := e.rec.Mount(e.state); err != nil {
		return nil, err
	}
	return e, nil
}

// State returns the committed snapshot.
func (e *Editor) State() *doc.State { return e.state }

// Surface returns the rendering surface the editor writes to.
func (e *Editor) Surface() surface.Surface { return e.surf }

// Nodes returns the node type registry.
func (e *Editor) Nodes() *doc.Registry { return e.nodes }

// Logger returns the editor's logger.
func (e *Editor) Logger() *Logger { return e.logger }

// Update runs fn inside a transaction. If no transaction is open one is
// begun over the committed snapshot; when fn returns without error the
// pending snapshot is committed, reconciled against the surface, swapped
// in as current and announced to listeners. If fn returns an error, or an
// invariant violation surfaces from the tree code, the pending snapshot is
// discarded and the committed snapshot stays current.
//
// Calling Update from inside an open update runs fn against the already
// open transaction; the outer call commits for both.
func (e *Editor) Update(fn UpdateFn) error {
	if e.ctx != nil {
		return fn(e.ctx)
	}

	ctx, err := doc.Begin(e.state, e.keys)
	if err != nil {
		return err
	}
	e.ctx = ctx
	err = runUpdate(ctx, fn)
	e.ctx = nil
	if err != nil {
		ctx.Abort()
		e.logger.Warn("update aborted: %v", err)
		return err
	}

	prev := e.state
	dirty := ctx.Dirty()
	comp := ctx.Composition()
	next, err := ctx.Commit()
	if err != nil {
		e.logger.Error("commit failed: %v", err)
		return err
	}
	if err := e.rec.Run(prev, next, dirty, comp); err != nil {
		e.logger.Error("reconcile failed: %v", err)
		return err
	}
	e.state = next
	e.logger.Debug("update committed: %d dirty nodes, %d listeners", len(dirty), len(e.listeners))
	e.notify(prev, next)
	return nil
}

// runUpdate isolates the invariant recovery so a panic inside fn turns
// into an error without unwinding past the editor.
func runUpdate(ctx *doc.Context, fn UpdateFn) (err error) {
	defer doc.RecoverInvariant(&err)
	return fn(ctx)
}

// Read runs fn against the committed snapshot. Inside an open update the
// committed snapshot is still the pre-update one; use the transaction
// context to see pending changes.
func (e *Editor) Read(fn func(st *doc.State) error) error {
	return fn(e.state)
}

// RegisterListener subscribes to committed snapshot swaps and returns an
// unsubscribe function.
func (e *Editor) RegisterListener(fn Listener) func() error {
	id := e.nextID
	e.nextID++
	e.listeners[id] = fn
	return func() error {
		if _, ok := e.listeners[id]; !ok {
			return ErrListenerClosed
		}
		delete(e.listeners, id)
		return nil
	}
}

// notify runs listeners in registration order.
func (e *Editor) notify(prev, next *doc.State) {
	ids := make([]int, 0, len(e.listeners))
	for id := range e.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if fn, ok := e.listeners[id]; ok {
			fn(prev, next)
		}
	}
}
