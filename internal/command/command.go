package command

import (
	"context"
	"fmt"
	"slices"
)

// Operation is one undoable mutation of a target. Implementations keep whatever they need to
// reverse the mutation in their own fields, filled in by Execute and read back by Undo.
type Operation[T any] interface {
	Execute(ctx context.Context, target T) (any, error)
	Undo(ctx context.Context, target T) (any, error)
}

// Callback observes the result of a finished execute or undo.
type Callback func(result any)

// BuildFunc binds arguments to a fresh operation. Argument errors should wrap
// ErrInvalidParameter; they are reported when the command executes.
type BuildFunc[T any] func(args []any) (Operation[T], error)

// Action describes a registrable command kind.
type Action[T any] struct {
	Name            string
	Build           BuildFunc[T]
	ExecuteCallback Callback
	UndoCallback    Callback
}

// Command is an operation bound to its arguments. The zero value is not bound to any action
// and panics when run.
type Command[T any] struct {
	name     string
	args     []any
	op       Operation[T]
	buildErr error

	executeCallback Callback
	undoCallback    Callback
}

// New binds op directly, bypassing a registry.
func New[T any](name string, op Operation[T], args ...any) *Command[T] {
	return &Command[T]{name: name, op: op, args: slices.Clone(args)}
}

func fromAction[T any](a Action[T], args []any) *Command[T] {
	c := &Command[T]{
		name:            a.Name,
		args:            slices.Clone(args),
		executeCallback: a.ExecuteCallback,
		undoCallback:    a.UndoCallback,
	}
	if a.Build != nil {
		c.op, c.buildErr = a.Build(c.args)
	}
	return c
}

// Name returns the action name the command was created from.
func (c *Command[T]) Name() string { return c.name }

// Args returns the bound arguments in the order they were supplied.
func (c *Command[T]) Args() []any { return slices.Clone(c.args) }

// SetExecuteCallback sets the hook run after a successful execute.
func (c *Command[T]) SetExecuteCallback(fn Callback) *Command[T] {
	c.executeCallback = fn
	return c
}

// SetUndoCallback sets the hook run after a successful undo.
func (c *Command[T]) SetUndoCallback(fn Callback) *Command[T] {
	c.undoCallback = fn
	return c
}

func (c *Command[T]) Execute(ctx context.Context, target T) (any, error) {
	if err := c.bound("execute"); err != nil {
		return nil, err
	}
	return c.op.Execute(ctx, target)
}

func (c *Command[T]) Undo(ctx context.Context, target T) (any, error) {
	if err := c.bound("undo"); err != nil {
		return nil, err
	}
	return c.op.Undo(ctx, target)
}

func (c *Command[T]) bound(method string) error {
	if c.buildErr != nil {
		return c.buildErr
	}
	if c.op == nil {
		panic(fmt.Errorf("%w: %s called on %q", ErrUnimplemented, method, c.name))
	}
	return nil
}

func (c *Command[T]) afterExecute(result any) {
	if c.executeCallback != nil {
		c.executeCallback(result)
	}
}

func (c *Command[T]) afterUndo(result any) {
	if c.undoCallback != nil {
		c.undoCallback(result)
	}
}
