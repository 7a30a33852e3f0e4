package graphics

import (
	"github.com/inamate/imagedit/internal/scene"
)

// Rotation turns the background image and carries every object along with it.
type Rotation struct {
	graph *scene.Graph
}

// Angle returns the background angle in degrees.
func (r *Rotation) Angle() (float64, error) {
	bg := r.graph.Background()
	if bg == nil {
		return 0, scene.ErrNoImage
	}
	return bg.Angle, nil
}

// Rotate adds delta degrees to the current angle.
func (r *Rotation) Rotate(delta float64) (float64, error) {
	cur, err := r.Angle()
	if err != nil {
		return 0, err
	}
	return r.SetAngle(cur + delta)
}

// SetAngle sets the absolute angle. Objects are rotated around the old canvas center by the
// difference, the canvas is resized to the rotated image bounds and everything is re-centered.
func (r *Rotation) SetAngle(angle float64) (float64, error) {
	angle = scene.NormalizeAngle(angle)

	var delta float64
	var size scene.Dimension
	err := r.graph.UpdateBackground(func(img *scene.Image) error {
		delta = angle - img.Angle
		img.Angle = angle
		size = boundingSize(img.Width, img.Height, angle)
		return nil
	})
	if err != nil {
		return 0, err
	}

	oldX, oldY := r.graph.Center()
	r.graph.SetSize(size)
	newX, newY := r.graph.Center()

	m := scene.Translate(newX-oldX, newY-oldY).Multiply(scene.RotateAround(delta, oldX, oldY))
	r.graph.UpdateAll(func(o *scene.Object) {
		o.Left, o.Top = m.TransformPoint(o.Left, o.Top)
		o.Angle = scene.NormalizeAngle(o.Angle + delta)
	})
	return angle, nil
}
