// Package ops defines the undoable editor operations and registers them as command actions.
package ops

import (
	"github.com/inamate/imagedit/internal/command"
	"github.com/inamate/imagedit/internal/graphics"
)

// Operation names.
const (
	LoadImage             = "loadImage"
	Flip                  = "flip"
	Rotate                = "rotate"
	AddObject             = "addObject"
	AddImageObject        = "addImageObject"
	RemoveObject          = "removeObject"
	AddShape              = "addShape"
	ChangeShape           = "changeShape"
	AddIcon               = "addIcon"
	ChangeIconColor       = "changeIconColor"
	AddText               = "addText"
	ChangeText            = "changeText"
	ChangeTextStyle       = "changeTextStyle"
	ApplyFilter           = "applyFilter"
	RemoveFilter          = "removeFilter"
	ResizeCanvasDimension = "resizeCanvasDimension"
	SetObjectProperties   = "setObjectProperties"
	SetObjectPosition     = "setObjectPosition"
	ClearObjects          = "clearObjects"
	ChangeSelection       = "changeSelection"
)

// Rotate modes.
const (
	RotateBy = "rotate"
	SetAngle = "setAngle"
)

type (
	target    = *graphics.Graphics
	operation = command.Operation[target]
)

var builders = map[string]command.BuildFunc[target]{
	LoadImage:             buildLoadImage,
	Flip:                  buildFlip,
	Rotate:                buildRotate,
	AddObject:             buildAddObject,
	AddImageObject:        buildAddImageObject,
	RemoveObject:          buildRemoveObject,
	AddShape:              buildAddShape,
	ChangeShape:           buildChangeShape,
	AddIcon:               buildAddIcon,
	ChangeIconColor:       buildChangeIconColor,
	AddText:               buildAddText,
	ChangeText:            buildChangeText,
	ChangeTextStyle:       buildChangeTextStyle,
	ApplyFilter:           buildApplyFilter,
	RemoveFilter:          buildRemoveFilter,
	ResizeCanvasDimension: buildResizeCanvasDimension,
	SetObjectProperties:   buildSetObjectProperties,
	SetObjectPosition:     buildSetObjectPosition,
	ClearObjects:          buildClearObjects,
	ChangeSelection:       buildChangeSelection,
}

// Register adds every editor operation to reg.
func Register(reg *command.Registry[*graphics.Graphics]) {
	for name, build := range builders {
		reg.Register(command.Action[target]{Name: name, Build: build})
	}
}

// NewRegistry returns a registry holding every editor operation.
func NewRegistry() *command.Registry[*graphics.Graphics] {
	reg := command.NewRegistry[*graphics.Graphics]()
	Register(reg)
	return reg
}
