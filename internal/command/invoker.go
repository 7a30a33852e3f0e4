package command

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// state is the invoker's execution state. Only idle accepts a new operation.
type state int32

const (
	stateIdle state = iota
	stateExecuting
	stateUndoing
	stateRedoing
	stateHeld // locked from outside through Lock
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateExecuting:
		return "executing"
	case stateUndoing:
		return "undoing"
	case stateRedoing:
		return "redoing"
	case stateHeld:
		return "held"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Option configures an Invoker.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for command lifecycle messages.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Invoker runs commands against a target one at a time and keeps the undo and redo history.
// An operation attempted while another is in flight fails with ErrLocked; nothing is queued.
type Invoker[T any] struct {
	target   T
	registry *Registry[T]
	logger   *slog.Logger

	state atomic.Int32

	mu        sync.Mutex
	undoStack []*Command[T] // most recent last
	redoStack []*Command[T]

	observers observers
}

// NewInvoker creates an invoker that runs commands from registry against target.
func NewInvoker[T any](target T, registry *Registry[T], opts ...Option) *Invoker[T] {
	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	return &Invoker[T]{
		target:   target,
		registry: registry,
		logger:   o.logger,
	}
}

func (inv *Invoker[T]) acquire(to state) bool {
	return inv.state.CompareAndSwap(int32(stateIdle), int32(to))
}

func (inv *Invoker[T]) release(from state) {
	if !inv.state.CompareAndSwap(int32(from), int32(stateIdle)) {
		inv.logger.Error("invoker state changed underneath operation",
			"expected", from, "actual", state(inv.state.Load()))
	}
}

// Lock holds the invoker so that no command can run until Unlock.
func (inv *Invoker[T]) Lock() error {
	if !inv.acquire(stateHeld) {
		return ErrLocked
	}
	return nil
}

// Unlock releases a Lock. It has no effect while a command is in flight.
func (inv *Invoker[T]) Unlock() {
	inv.state.CompareAndSwap(int32(stateHeld), int32(stateIdle))
}

// IsLocked reports whether an operation is in flight or the invoker is held.
func (inv *Invoker[T]) IsLocked() bool {
	return state(inv.state.Load()) != stateIdle
}

// Subscribe registers h for kind.
func (inv *Invoker[T]) Subscribe(kind EventKind, h Handler) SubscriptionID {
	return inv.observers.subscribe(kind, h)
}

// Unsubscribe removes a handler. It reports whether the id was known.
func (inv *Invoker[T]) Unsubscribe(id SubscriptionID) bool {
	return inv.observers.unsubscribe(id)
}

// Execute creates a command from the registry and runs it as new work.
func (inv *Invoker[T]) Execute(ctx context.Context, name string, args ...any) (any, error) {
	if inv.IsLocked() {
		return nil, ErrLocked
	}
	cmd, ok := inv.registry.Create(name, args...)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	return inv.ExecuteCommand(ctx, cmd)
}

// ExecuteCommand runs cmd as new work. On success the redo history is discarded.
func (inv *Invoker[T]) ExecuteCommand(ctx context.Context, cmd *Command[T]) (any, error) {
	if !inv.acquire(stateExecuting) {
		return nil, ErrLocked
	}
	result, err := inv.invokeExecution(ctx, cmd, stateExecuting)
	if err != nil {
		return nil, err
	}
	inv.ClearRedoStack()
	return result, nil
}

func (inv *Invoker[T]) invokeExecution(ctx context.Context, cmd *Command[T], st state) (any, error) {
	result, err := inv.run(st, func() (any, error) { return cmd.Execute(ctx, inv.target) })
	if err != nil {
		inv.logger.Debug("command rejected", "command", cmd.Name(), "state", st, "error", err)
		return nil, err
	}
	inv.logger.Debug("command executed", "command", cmd.Name(), "state", st)
	inv.PushUndoStack(cmd, false)
	cmd.afterExecute(result)
	return result, nil
}

// run releases st when fn returns, including when fn panics.
func (inv *Invoker[T]) run(st state, fn func() (any, error)) (any, error) {
	defer inv.release(st)
	return fn()
}

// Undo reverts the most recent command and moves it to the redo stack.
// A failed undo leaves the command on neither stack.
func (inv *Invoker[T]) Undo(ctx context.Context) (any, error) {
	if !inv.acquire(stateUndoing) {
		return nil, fmt.Errorf("%w because %w", ErrNothingToUndo, ErrLocked)
	}
	cmd, remaining, ok := inv.pop(&inv.undoStack)
	if !ok {
		inv.release(stateUndoing)
		return nil, ErrNothingToUndo
	}
	if remaining == 0 {
		inv.observers.emit(EventUndoStackChanged, 0)
	}

	result, err := inv.run(stateUndoing, func() (any, error) { return cmd.Undo(ctx, inv.target) })
	if err != nil {
		inv.logger.Warn("undo failed, command dropped from history", "command", cmd.Name(), "error", err)
		return nil, err
	}
	inv.logger.Debug("command undone", "command", cmd.Name())
	inv.PushRedoStack(cmd, false)
	cmd.afterUndo(result)
	return result, nil
}

// Redo re-executes the most recently undone command and moves it back to the undo stack.
// The remaining redo history is kept.
func (inv *Invoker[T]) Redo(ctx context.Context) (any, error) {
	if !inv.acquire(stateRedoing) {
		return nil, fmt.Errorf("%w because %w", ErrNothingToRedo, ErrLocked)
	}
	cmd, remaining, ok := inv.pop(&inv.redoStack)
	if !ok {
		inv.release(stateRedoing)
		return nil, ErrNothingToRedo
	}
	if remaining == 0 {
		inv.observers.emit(EventRedoStackChanged, 0)
	}
	result, err := inv.invokeExecution(ctx, cmd, stateRedoing)
	if err != nil {
		inv.logger.Warn("redo failed, command dropped from history", "command", cmd.Name(), "error", err)
		return nil, err
	}
	return result, nil
}

func (inv *Invoker[T]) pop(stack *[]*Command[T]) (*Command[T], int, bool) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	n := len(*stack)
	if n == 0 {
		return nil, 0, false
	}
	cmd := (*stack)[n-1]
	(*stack)[n-1] = nil
	*stack = (*stack)[:n-1]
	return cmd, n - 1, true
}

func (inv *Invoker[T]) push(stack *[]*Command[T], kind EventKind, cmd *Command[T], silent bool) {
	inv.mu.Lock()
	*stack = append(*stack, cmd)
	n := len(*stack)
	inv.mu.Unlock()
	if !silent {
		inv.observers.emit(kind, n)
	}
}

func (inv *Invoker[T]) clear(stack *[]*Command[T], kind EventKind) {
	inv.mu.Lock()
	n := len(*stack)
	*stack = nil
	inv.mu.Unlock()
	if n > 0 {
		inv.observers.emit(kind, 0)
	}
}

// PushUndoStack appends cmd to the undo stack, notifying unless silent.
func (inv *Invoker[T]) PushUndoStack(cmd *Command[T], silent bool) {
	inv.push(&inv.undoStack, EventUndoStackChanged, cmd, silent)
}

// PushRedoStack appends cmd to the redo stack, notifying unless silent.
func (inv *Invoker[T]) PushRedoStack(cmd *Command[T], silent bool) {
	inv.push(&inv.redoStack, EventRedoStackChanged, cmd, silent)
}

// ClearUndoStack empties the undo stack. Nothing is emitted when it was already empty.
func (inv *Invoker[T]) ClearUndoStack() {
	inv.clear(&inv.undoStack, EventUndoStackChanged)
}

// ClearRedoStack empties the redo stack. Nothing is emitted when it was already empty.
func (inv *Invoker[T]) ClearRedoStack() {
	inv.clear(&inv.redoStack, EventRedoStackChanged)
}

func (inv *Invoker[T]) IsEmptyUndoStack() bool { return inv.UndoLen() == 0 }
func (inv *Invoker[T]) IsEmptyRedoStack() bool { return inv.RedoLen() == 0 }

func (inv *Invoker[T]) UndoLen() int {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return len(inv.undoStack)
}

func (inv *Invoker[T]) RedoLen() int {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return len(inv.redoStack)
}

// UndoName returns the name of the command Undo would revert, "" if there is none.
func (inv *Invoker[T]) UndoName() string {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if len(inv.undoStack) == 0 {
		return ""
	}
	return inv.undoStack[len(inv.undoStack)-1].Name()
}

// RedoName returns the name of the command Redo would replay, "" if there is none.
func (inv *Invoker[T]) RedoName() string {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if len(inv.redoStack) == 0 {
		return ""
	}
	return inv.redoStack[len(inv.redoStack)-1].Name()
}
