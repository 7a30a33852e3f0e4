package command

import (
	"errors"

	"github.com/inamate/imagedit/internal/scene"
)

var (
	ErrLocked         = errors.New("command execution is locked")
	ErrNothingToUndo  = errors.New("nothing to undo")
	ErrNothingToRedo  = errors.New("nothing to redo")
	ErrUnknownCommand = errors.New("unknown command")
	ErrUnimplemented  = errors.New("command is not bound to an action")
)

// Domain rejections produced by operations.
var (
	ErrNotFound         = scene.ErrNotFound
	ErrInvalidParameter = scene.ErrInvalidParameter
	ErrNoOp             = scene.ErrNoOp
	ErrUnsupported      = scene.ErrUnsupported
)
