// Package editor is the entry point for editing one image: it owns the scene, the registered
// operations and the undo/redo history, and exposes one typed method per editing action.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/inamate/imagedit/internal/command"
	"github.com/inamate/imagedit/internal/graphics"
	"github.com/inamate/imagedit/internal/ops"
	"github.com/inamate/imagedit/internal/scene"
)

// ErrDestroyed is returned by every operation after Destroy.
var ErrDestroyed = errors.New("editor destroyed")

// Event names a history notification.
type Event string

const (
	EventUndoStackChanged Event = "undoStackChanged"
	EventRedoStackChanged Event = "redoStackChanged"
)

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the logger for the editor and its invoker.
func WithLogger(l *slog.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithImageSource sets where loadImage and addImageObject resolve images.
func WithImageSource(src graphics.ImageSource) Option {
	return func(e *Editor) { e.source = src }
}

// WithIcons registers extra icon paths by name.
func WithIcons(paths map[string]string) Option {
	return func(e *Editor) { e.icons = paths }
}

type History struct {
	UndoLen  int    `json:"undoLen"`
	RedoLen  int    `json:"redoLen"`
	UndoName string `json:"undoName,omitempty"`
	RedoName string `json:"redoName,omitempty"`
}

// Editor is safe for concurrent use; mutations are serialized by the invoker lock and a
// mutation attempted while another runs fails with command.ErrLocked.
type Editor struct {
	logger *slog.Logger
	source graphics.ImageSource
	icons  map[string]string

	graphics *graphics.Graphics
	registry *command.Registry[*graphics.Graphics]
	invoker  *command.Invoker[*graphics.Graphics]

	mu        sync.Mutex
	subs      []command.SubscriptionID
	destroyed atomic.Bool
}

// New creates an editor with an empty scene and every operation registered.
func New(opts ...Option) *Editor {
	e := &Editor{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(e)
	}
	e.graphics = graphics.New(scene.NewGraph(), e.source)
	if len(e.icons) > 0 {
		e.graphics.Icon.RegisterIcons(e.icons)
	}
	e.registry = ops.NewRegistry()
	e.invoker = command.NewInvoker(e.graphics, e.registry, command.WithLogger(e.logger))
	return e
}

// Register adds or replaces an action. Custom actions run through the same history.
func (e *Editor) Register(a command.Action[*graphics.Graphics]) {
	e.registry.Register(a)
}

// Commands lists the registered action names.
func (e *Editor) Commands() []string {
	return e.registry.Names()
}

// Execute runs a registered action by name.
func (e *Editor) Execute(ctx context.Context, name string, args ...any) (any, error) {
	if e.destroyed.Load() {
		return nil, ErrDestroyed
	}
	return e.invoker.Execute(ctx, name, args...)
}

// Undo reverts the last action.
func (e *Editor) Undo(ctx context.Context) (any, error) {
	if e.destroyed.Load() {
		return nil, ErrDestroyed
	}
	return e.invoker.Undo(ctx)
}

// Redo replays the last undone action.
func (e *Editor) Redo(ctx context.Context) (any, error) {
	if e.destroyed.Load() {
		return nil, ErrDestroyed
	}
	return e.invoker.Redo(ctx)
}

func (e *Editor) Lock() error     { return e.invoker.Lock() }
func (e *Editor) Unlock()         { e.invoker.Unlock() }
func (e *Editor) IsLocked() bool  { return e.invoker.IsLocked() }
func (e *Editor) ClearUndoStack() { e.invoker.ClearUndoStack() }
func (e *Editor) ClearRedoStack() { e.invoker.ClearRedoStack() }

func (e *Editor) IsEmptyUndoStack() bool { return e.invoker.IsEmptyUndoStack() }
func (e *Editor) IsEmptyRedoStack() bool { return e.invoker.IsEmptyRedoStack() }

// History reports the stack lengths and the names of the next undo and redo.
func (e *Editor) History() History {
	return History{
		UndoLen:  e.invoker.UndoLen(),
		RedoLen:  e.invoker.RedoLen(),
		UndoName: e.invoker.UndoName(),
		RedoName: e.invoker.RedoName(),
	}
}

// On calls h with the new stack length whenever the named stack changes.
func (e *Editor) On(event Event, h func(length int)) (command.SubscriptionID, error) {
	var kind command.EventKind
	switch event {
	case EventUndoStackChanged:
		kind = command.EventUndoStackChanged
	case EventRedoStackChanged:
		kind = command.EventRedoStackChanged
	default:
		return 0, fmt.Errorf("%w: unknown event %q", scene.ErrInvalidParameter, event)
	}
	if e.destroyed.Load() {
		return 0, ErrDestroyed
	}
	id := e.invoker.Subscribe(kind, command.Handler(h))

	e.mu.Lock()
	e.subs = append(e.subs, id)
	e.mu.Unlock()
	return id, nil
}

// Off removes a handler added with On.
func (e *Editor) Off(id command.SubscriptionID) bool {
	return e.invoker.Unsubscribe(id)
}

// ObjectProperties reads the named keys of an object, or all of them.
func (e *Editor) ObjectProperties(id string, keys ...string) (scene.Props, error) {
	return e.graphics.ObjectProperties(id, keys...)
}

// Objects returns a copy of every object in painter's order.
func (e *Editor) Objects() []*scene.Object {
	return e.graphics.Scene.Objects()
}

// Snapshot captures the scene.
func (e *Editor) Snapshot() scene.Document {
	return e.graphics.Scene.Snapshot()
}

// Restore replaces the scene with doc and discards the history, which no longer applies.
func (e *Editor) Restore(doc scene.Document) error {
	if e.destroyed.Load() {
		return ErrDestroyed
	}
	if err := e.invoker.Lock(); err != nil {
		return err
	}
	e.graphics.Scene.Load(doc)
	e.invoker.ClearUndoStack()
	e.invoker.ClearRedoStack()
	e.invoker.Unlock()

	e.logger.Debug("scene restored", "objects", len(doc.Objects))
	return nil
}

// Destroy drops every handler added with On and discards the history.
func (e *Editor) Destroy() {
	if e.destroyed.Swap(true) {
		return
	}
	e.mu.Lock()
	subs := e.subs
	e.subs = nil
	e.mu.Unlock()

	for _, id := range subs {
		e.invoker.Unsubscribe(id)
	}
	e.invoker.ClearUndoStack()
	e.invoker.ClearRedoStack()
}

// ErrorCode maps an editor error to a stable code for transports.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, command.ErrLocked):
		return "locked"
	case errors.Is(err, command.ErrNothingToUndo), errors.Is(err, command.ErrNothingToRedo):
		return "empty_history"
	case errors.Is(err, scene.ErrNotFound):
		return "not_found"
	case errors.Is(err, scene.ErrInvalidParameter):
		return "invalid_parameter"
	case errors.Is(err, scene.ErrNoOp):
		return "no_op"
	case errors.Is(err, scene.ErrUnsupported):
		return "unsupported"
	case errors.Is(err, command.ErrUnknownCommand):
		return "unknown_command"
	case errors.Is(err, ErrDestroyed):
		return "destroyed"
	}
	return "internal"
}
