package graphics

import (
	"fmt"

	"github.com/inamate/imagedit/internal/scene"
)

// Resizer controls the maximum display size of the canvas.
type Resizer struct {
	graph *scene.Graph
}

// SetMaxDimension sets the maximum display size and returns the previous one.
func (r *Resizer) SetMaxDimension(d scene.Dimension) (scene.Dimension, error) {
	if d.Width <= 0 || d.Height <= 0 {
		return scene.Dimension{}, fmt.Errorf("%w: dimension must be positive, got %vx%v",
			scene.ErrInvalidParameter, d.Width, d.Height)
	}
	return r.graph.SetMaxSize(d), nil
}
