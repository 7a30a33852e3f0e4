package graphics

import (
	"fmt"

	"github.com/inamate/imagedit/internal/scene"
)

// Flip modes.
const (
	FlipX     = "flipX"
	FlipY     = "flipY"
	FlipReset = "reset"
)

// FlipSetting is the mirror state of the background image.
type FlipSetting struct {
	FlipX bool `json:"flipX"`
	FlipY bool `json:"flipY"`
}

// FlipResult reports the state after a flip.
type FlipResult struct {
	FlipSetting
	Angle float64 `json:"angle"`
}

// Flip mirrors the image and every object around the canvas center.
type Flip struct {
	graph *scene.Graph
}

// Current returns the background's flip state.
func (f *Flip) Current() (FlipSetting, error) {
	bg := f.graph.Background()
	if bg == nil {
		return FlipSetting{}, scene.ErrNoImage
	}
	return FlipSetting{FlipX: bg.FlipX, FlipY: bg.FlipY}, nil
}

// Flip applies a mode relative to the current state.
func (f *Flip) Flip(mode string) (FlipResult, error) {
	cur, err := f.Current()
	if err != nil {
		return FlipResult{}, err
	}
	next := cur
	switch mode {
	case FlipX:
		next.FlipX = !cur.FlipX
	case FlipY:
		next.FlipY = !cur.FlipY
	case FlipReset:
		next = FlipSetting{}
	default:
		return FlipResult{}, fmt.Errorf("%w: unknown flip mode %q", scene.ErrInvalidParameter, mode)
	}
	return f.Set(next)
}

// Set moves to an absolute flip state. It fails with ErrNoOp when nothing would change.
func (f *Flip) Set(next FlipSetting) (FlipResult, error) {
	cur, err := f.Current()
	if err != nil {
		return FlipResult{}, err
	}
	horizontal := cur.FlipX != next.FlipX
	vertical := cur.FlipY != next.FlipY
	if !horizontal && !vertical {
		return FlipResult{}, fmt.Errorf("%w: already flipped %+v", scene.ErrNoOp, next)
	}

	var angle float64
	err = f.graph.UpdateBackground(func(img *scene.Image) error {
		img.FlipX, img.FlipY = next.FlipX, next.FlipY
		if horizontal != vertical {
			img.Angle = -img.Angle
		}
		angle = img.Angle
		return nil
	})
	if err != nil {
		return FlipResult{}, err
	}

	cx, cy := f.graph.Center()
	m := scene.MirrorAround(horizontal, vertical, cx, cy)
	f.graph.UpdateAll(func(o *scene.Object) {
		o.Left, o.Top = m.TransformPoint(o.Left, o.Top)
		if horizontal {
			o.FlipX = !o.FlipX
		}
		if vertical {
			o.FlipY = !o.FlipY
		}
		if horizontal != vertical {
			o.Angle = -o.Angle
		}
	})
	return FlipResult{FlipSetting: next, Angle: angle}, nil
}
