// Package graphics holds the editing components that mutate a scene graph: flip, rotation,
// shapes, text, icons, filters, image loading and canvas sizing. Commands delegate every
// mutation to one of these components and capture what they return for undo.
package graphics

import (
	"context"
	"fmt"
	"math"

	"github.com/inamate/imagedit/internal/scene"
)

// ImageInfo describes a decoded image resolved by an ImageSource.
type ImageInfo struct {
	AssetID string
	Name    string
	Width   int
	Height  int
}

// ImageSource resolves an image reference (asset id or path). Fetch may block on I/O.
type ImageSource interface {
	Fetch(ctx context.Context, src string) (ImageInfo, error)
}

// Graphics is the component set bound to one scene graph.
type Graphics struct {
	Scene *scene.Graph

	Flip     *Flip
	Rotation *Rotation
	Shape    *Shape
	Text     *Text
	Icon     *Icon
	Filter   *Filter
	Loader   *ImageLoader
	Resizer  *Resizer
}

// New wires every component to graph. src may be nil when images are never loaded.
func New(graph *scene.Graph, src ImageSource) *Graphics {
	return &Graphics{
		Scene:    graph,
		Flip:     &Flip{graph: graph},
		Rotation: &Rotation{graph: graph},
		Shape:    &Shape{graph: graph},
		Text:     &Text{graph: graph},
		Icon:     newIcon(graph),
		Filter:   &Filter{graph: graph},
		Loader:   &ImageLoader{graph: graph, source: src},
		Resizer:  &Resizer{graph: graph},
	}
}

// ObjectProperties reads the named keys of an object, or every key when none are given.
func (g *Graphics) ObjectProperties(id string, keys ...string) (scene.Props, error) {
	obj, err := g.Scene.Get(id)
	if err != nil {
		return nil, err
	}
	return obj.Props(keys...)
}

// SetObjectProperties writes props and returns the previous values of the same keys.
func (g *Graphics) SetObjectProperties(id string, props scene.Props) (scene.Props, error) {
	if len(props) == 0 {
		return nil, fmt.Errorf("%w: no properties given", scene.ErrInvalidParameter)
	}
	var prev scene.Props
	err := g.Scene.Update(id, func(o *scene.Object) error {
		var err error
		if prev, err = o.Props(props.Keys()...); err != nil {
			return err
		}
		return o.Apply(props)
	})
	if err != nil {
		return nil, err
	}
	return prev, nil
}

// Position places an object so that its (OriginX, OriginY) corner or center sits at (X, Y).
type Position struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	OriginX string  `json:"originX"` // left, center, right
	OriginY string  `json:"originY"` // top, center, bottom
}

// SetObjectPosition moves an object and returns its previous left/top.
// Object left/top are center coordinates.
func (g *Graphics) SetObjectPosition(id string, pos Position) (scene.Props, error) {
	var prev scene.Props
	err := g.Scene.Update(id, func(o *scene.Object) error {
		w, h := o.Width*math.Abs(o.ScaleX), o.Height*math.Abs(o.ScaleY)
		dx, err := originOffset(pos.OriginX, "left", "right", w)
		if err != nil {
			return err
		}
		dy, err := originOffset(pos.OriginY, "top", "bottom", h)
		if err != nil {
			return err
		}
		prev = scene.Props{scene.PropLeft: o.Left, scene.PropTop: o.Top}
		o.Left = pos.X + dx
		o.Top = pos.Y + dy
		return nil
	})
	if err != nil {
		return nil, err
	}
	return prev, nil
}

func originOffset(origin, start, end string, size float64) (float64, error) {
	switch origin {
	case start:
		return size / 2, nil
	case "", "center":
		return 0, nil
	case end:
		return -size / 2, nil
	}
	return 0, fmt.Errorf("%w: unknown origin %q", scene.ErrInvalidParameter, origin)
}

// AddObject puts an existing object into the scene.
func (g *Graphics) AddObject(obj *scene.Object) (*scene.Object, error) {
	if obj == nil || obj.Type == "" {
		return nil, fmt.Errorf("%w: object type is required", scene.ErrInvalidParameter)
	}
	if err := g.Scene.Add(obj); err != nil {
		return nil, err
	}
	return obj.Clone(), nil
}

// RemoveObjects removes the named objects together.
func (g *Graphics) RemoveObjects(ids ...string) ([]scene.Placement, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no object id given", scene.ErrInvalidParameter)
	}
	return g.Scene.Remove(ids...)
}

// ClearObjects removes every object except the crop zone.
func (g *Graphics) ClearObjects() []scene.Placement {
	return g.Scene.Clear(func(o *scene.Object) bool { return o.Type == scene.ObjectTypeCropzone })
}

// boundingSize is the axis-aligned size of a w*h box rotated by degrees.
func boundingSize(w, h, degrees float64) scene.Dimension {
	rad := degrees * math.Pi / 180
	sin, cos := math.Abs(math.Sin(rad)), math.Abs(math.Cos(rad))
	return scene.Dimension{Width: w*cos + h*sin, Height: w*sin + h*cos}
}

func defaultProps(defaults, opts scene.Props) scene.Props {
	out := make(scene.Props, len(defaults)+len(opts))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range opts {
		out[k] = v
	}
	return out
}
