package graphics

import (
	"fmt"

	"github.com/inamate/imagedit/internal/scene"
)

var textDefaults = scene.Props{
	scene.PropFill:       "#000000",
	scene.PropFontSize:   20.0,
	scene.PropFontFamily: "Noto Sans",
	scene.PropFontWeight: "normal",
	scene.PropFontStyle:  "normal",
	scene.PropTextAlign:  "left",
}

var textStyleKeys = map[string]bool{
	scene.PropFill:           true,
	scene.PropStroke:         true,
	scene.PropFontSize:       true,
	scene.PropFontFamily:     true,
	scene.PropFontWeight:     true,
	scene.PropFontStyle:      true,
	scene.PropTextAlign:      true,
	scene.PropTextDecoration: true,
	scene.PropOpacity:        true,
}

// Text adds and edits text objects.
type Text struct {
	graph *scene.Graph
}

func (t *Text) Add(text string, opts scene.Props) (*scene.Object, error) {
	obj := scene.NewObject(scene.ObjectTypeText)
	if err := obj.Apply(defaultProps(textDefaults, opts)); err != nil {
		return nil, err
	}
	obj.Text = text
	if err := t.graph.Add(obj); err != nil {
		return nil, err
	}
	return obj.Clone(), nil
}

// Change replaces the text content and returns the previous content.
func (t *Text) Change(id, text string) (string, error) {
	var prev string
	err := t.graph.Update(id, func(o *scene.Object) error {
		if o.Type != scene.ObjectTypeText {
			return fmt.Errorf("%w: %s is a %s, not text", scene.ErrUnsupported, id, o.Type)
		}
		prev, o.Text = o.Text, text
		return nil
	})
	return prev, err
}

// SetStyle applies text style keys and returns their previous values.
func (t *Text) SetStyle(id string, styles scene.Props) (scene.Props, error) {
	if len(styles) == 0 {
		return nil, fmt.Errorf("%w: no styles given", scene.ErrInvalidParameter)
	}
	for k := range styles {
		if !textStyleKeys[k] {
			return nil, fmt.Errorf("%w: %q is not a text style", scene.ErrInvalidParameter, k)
		}
	}
	var prev scene.Props
	err := t.graph.Update(id, func(o *scene.Object) error {
		if o.Type != scene.ObjectTypeText {
			return fmt.Errorf("%w: %s is a %s, not text", scene.ErrUnsupported, id, o.Type)
		}
		var err error
		if prev, err = o.Props(styles.Keys()...); err != nil {
			return err
		}
		return o.Apply(styles)
	})
	if err != nil {
		return nil, err
	}
	return prev, nil
}
