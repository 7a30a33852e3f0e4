package scene

import "errors"

// Rejections shared by the scene graph, the visual components and the commands built on them.
var (
	ErrNotFound         = errors.New("no such object")
	ErrInvalidParameter = errors.New("invalid parameters")
	ErrNoOp             = errors.New("nothing changed")
	ErrUnsupported      = errors.New("unsupported operation for this object")
)
