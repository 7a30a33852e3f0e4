package ops

import (
	"context"

	"github.com/inamate/imagedit/internal/scene"
)

type addShape struct {
	created
	kind  scene.ObjectType
	props scene.Props
}

func buildAddShape(args []any) (operation, error) {
	kind, err := argString(args, 0, "shape type")
	if err != nil {
		return nil, err
	}
	props, err := optProps(args, 1, "shape options")
	if err != nil {
		return nil, err
	}
	return &addShape{kind: scene.ObjectType(kind), props: props}, nil
}

func (op *addShape) Execute(_ context.Context, g target) (any, error) {
	if obj, ok, err := op.readd(g); ok {
		return obj, err
	}
	obj, err := g.Shape.Add(op.kind, op.props)
	if err != nil {
		return nil, err
	}
	op.id = obj.ID
	return obj, nil
}

type changeShape struct {
	propChange
}

func buildChangeShape(args []any) (operation, error) {
	id, err := argString(args, 0, "object id")
	if err != nil {
		return nil, err
	}
	props, err := argProps(args, 1, "shape options")
	if err != nil {
		return nil, err
	}
	return &changeShape{propChange{id: id, props: props}}, nil
}

func (op *changeShape) Execute(_ context.Context, g target) (any, error) {
	prev, err := g.Shape.Change(op.id, op.props)
	if err != nil {
		return nil, err
	}
	op.prev = prev
	return PropsResult{ID: op.id, Props: op.props}, nil
}

type addText struct {
	created
	text  string
	props scene.Props
}

func buildAddText(args []any) (operation, error) {
	props, err := optProps(args, 1, "text options")
	if err != nil {
		return nil, err
	}
	return &addText{text: optString(args, 0), props: props}, nil
}

func (op *addText) Execute(_ context.Context, g target) (any, error) {
	if obj, ok, err := op.readd(g); ok {
		return obj, err
	}
	obj, err := g.Text.Add(op.text, op.props)
	if err != nil {
		return nil, err
	}
	op.id = obj.ID
	return obj, nil
}

type changeText struct {
	id, text string
	prev     string
}

func buildChangeText(args []any) (operation, error) {
	id, err := argString(args, 0, "object id")
	if err != nil {
		return nil, err
	}
	if _, err := argAt(args, 1, "text"); err != nil {
		return nil, err
	}
	return &changeText{id: id, text: optString(args, 1)}, nil
}

func (op *changeText) Execute(_ context.Context, g target) (any, error) {
	prev, err := g.Text.Change(op.id, op.text)
	if err != nil {
		return nil, err
	}
	op.prev = prev
	return PropsResult{ID: op.id, Props: scene.Props{scene.PropText: op.text}}, nil
}

func (op *changeText) Undo(_ context.Context, g target) (any, error) {
	if _, err := g.Text.Change(op.id, op.prev); err != nil {
		return nil, err
	}
	return PropsResult{ID: op.id, Props: scene.Props{scene.PropText: op.prev}}, nil
}

type changeTextStyle struct {
	propChange
}

func buildChangeTextStyle(args []any) (operation, error) {
	id, err := argString(args, 0, "object id")
	if err != nil {
		return nil, err
	}
	styles, err := argProps(args, 1, "text styles")
	if err != nil {
		return nil, err
	}
	return &changeTextStyle{propChange{id: id, props: styles}}, nil
}

func (op *changeTextStyle) Execute(_ context.Context, g target) (any, error) {
	prev, err := g.Text.SetStyle(op.id, op.props)
	if err != nil {
		return nil, err
	}
	op.prev = prev
	return PropsResult{ID: op.id, Props: op.props}, nil
}

type addIcon struct {
	created
	kind  string
	props scene.Props
}

func buildAddIcon(args []any) (operation, error) {
	kind, err := argString(args, 0, "icon type")
	if err != nil {
		return nil, err
	}
	props, err := optProps(args, 1, "icon options")
	if err != nil {
		return nil, err
	}
	return &addIcon{kind: kind, props: props}, nil
}

func (op *addIcon) Execute(_ context.Context, g target) (any, error) {
	if obj, ok, err := op.readd(g); ok {
		return obj, err
	}
	obj, err := g.Icon.Add(op.kind, op.props)
	if err != nil {
		return nil, err
	}
	op.id = obj.ID
	return obj, nil
}

type changeIconColor struct {
	id, color string
	prev      string
}

func buildChangeIconColor(args []any) (operation, error) {
	id, err := argString(args, 0, "object id")
	if err != nil {
		return nil, err
	}
	color, err := argString(args, 1, "color")
	if err != nil {
		return nil, err
	}
	return &changeIconColor{id: id, color: color}, nil
}

func (op *changeIconColor) Execute(_ context.Context, g target) (any, error) {
	prev, err := g.Icon.SetColor(op.id, op.color)
	if err != nil {
		return nil, err
	}
	op.prev = prev
	return PropsResult{ID: op.id, Props: scene.Props{scene.PropFill: op.color}}, nil
}

func (op *changeIconColor) Undo(_ context.Context, g target) (any, error) {
	if _, err := g.Icon.SetColor(op.id, op.prev); err != nil {
		return nil, err
	}
	return PropsResult{ID: op.id, Props: scene.Props{scene.PropFill: op.prev}}, nil
}
