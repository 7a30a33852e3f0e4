package graphics

import (
	"fmt"

	"github.com/inamate/imagedit/internal/scene"
)

var shapeDefaults = scene.Props{
	scene.PropFill:        "#ffffff",
	scene.PropStroke:      "#000000",
	scene.PropStrokeWidth: 1.0,
	scene.PropWidth:       1.0,
	scene.PropHeight:      1.0,
}

// Shape adds and edits rect, circle and triangle objects.
type Shape struct {
	graph *scene.Graph
}

// Add creates a shape of type t with opts layered over the defaults.
func (s *Shape) Add(t scene.ObjectType, opts scene.Props) (*scene.Object, error) {
	if !t.IsShape() {
		return nil, fmt.Errorf("%w: unknown shape type %q", scene.ErrInvalidParameter, t)
	}
	obj := scene.NewObject(t)
	if err := obj.Apply(defaultProps(shapeDefaults, opts)); err != nil {
		return nil, err
	}
	if t == scene.ObjectTypeCircle {
		if _, ok := opts[scene.PropRx]; !ok {
			obj.Rx = obj.Width / 2
		}
		if _, ok := opts[scene.PropRy]; !ok {
			obj.Ry = obj.Height / 2
		}
	}
	if err := s.graph.Add(obj); err != nil {
		return nil, err
	}
	return obj.Clone(), nil
}

// Change applies opts to a shape and returns the previous values of the same keys.
func (s *Shape) Change(id string, opts scene.Props) (scene.Props, error) {
	if len(opts) == 0 {
		return nil, fmt.Errorf("%w: no shape options given", scene.ErrInvalidParameter)
	}
	var prev scene.Props
	err := s.graph.Update(id, func(o *scene.Object) error {
		if !o.Type.IsShape() {
			return fmt.Errorf("%w: %s is a %s, not a shape", scene.ErrUnsupported, id, o.Type)
		}
		var err error
		if prev, err = o.Props(opts.Keys()...); err != nil {
			return err
		}
		return o.Apply(opts)
	})
	if err != nil {
		return nil, err
	}
	return prev, nil
}
