package graphics

import (
	"fmt"
	"sync"

	"github.com/inamate/imagedit/internal/scene"
)

var builtinIcons = map[string]string{
	"arrow":        "M40 12V0l24 24-24 24V36H0V12h40z",
	"arrow-2":      "M49,32 H3 V22 h46 l-18,-18 h12 l23,23 L43,50 h-12 l18,-18  z ",
	"arrow-3":      "M43.349998,27 L17.354,53 H1.949999 l25.996,-26 L1.949999,1 h15.404 L43.349998,27 z",
	"star":         "M35,54.557999 l-19.912001,10.468 l3.804,-22.172001 l-16.108,-15.7 l22.26,-3.236 L35,3.746 l9.956,20.172001 l22.26,3.236 l-16.108,15.7 l3.804,22.172001  z ",
	"star-2":       "M17,31.212 l-7.194,4.08 l-4.728,-6.83 l-8.234,0.524 l-1.328,-8.226 l-7.644,-3.079 l2.338,-7.99 l-5.413,-6.274 l6.245,-5.417 l-1.976,-8.062 l8.173,-1.224 l2.64,-7.905 l7.72,2.911 L17,-24.039 l5.396,6.246 l7.72,-2.911 l2.64,7.905 l8.173,1.224 l-1.976,8.062 l6.245,5.417 l-5.413,6.274 l2.338,7.99 l-7.644,3.079 l-1.328,8.226 l-8.234,-0.524 l-4.728,6.83 z ",
	"polygon":      "M3,31 L19,3 h32 l16,28 l-16,28 H19 z ",
	"location":     "M24 62C8 45.503 0 32.837 0 24 0 10.745 10.745 0 24 0s24 10.745 24 24c0 8.837-8 21.503-24 38zm0-28c5.523 0 10-4.477 10-10s-4.477-10-10-10-10 4.477-10 10 4.477 10 10 10z",
	"heart":        "M49.994999,91.349998 l-6.96,-6.333 C18.324001,62.606995 2.01,47.829002 2.01,29.690998 C2.01,14.912998 13.619999,3.299999 28.401001,3.299999 c8.349,0 16.362,5.859 21.594,12 c5.229,-6.141 13.242001,-12 21.591,-12 c14.778,0 26.390999,11.61 26.390999,26.390999 c0,18.138 -16.314001,32.916 -41.025002,55.374001 l-6.96,6.285 z ",
	"bubble":       "M44 48L34 58V48H12C5.373 48 0 42.627 0 36V12C0 5.373 5.373 0 12 0h40c6.627 0 12 5.373 12 12v24c0 6.627-5.373 12-12 12h-8z",
	"cancel":       "M30 25l12-12-5-5-12 12-12-12-5 5 12 12-12 12 5 5 12-12 12 12 5-5z",
	"rect-outline": "M0 0h60v60H0z",
}

// Icon adds path-based icons from a registry of named paths.
type Icon struct {
	graph *scene.Graph

	mu    sync.RWMutex
	paths map[string]string
}

func newIcon(graph *scene.Graph) *Icon {
	paths := make(map[string]string, len(builtinIcons))
	for k, v := range builtinIcons {
		paths[k] = v
	}
	return &Icon{graph: graph, paths: paths}
}

// RegisterIcons adds or replaces named icon paths.
func (i *Icon) RegisterIcons(paths map[string]string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	for k, v := range paths {
		i.paths[k] = v
	}
}

func (i *Icon) path(iconType string) (string, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	p, ok := i.paths[iconType]
	return p, ok
}

func (i *Icon) Add(iconType string, opts scene.Props) (*scene.Object, error) {
	path, ok := i.path(iconType)
	if !ok {
		return nil, fmt.Errorf("%w: unknown icon type %q", scene.ErrInvalidParameter, iconType)
	}
	obj := scene.NewObject(scene.ObjectTypeIcon)
	if err := obj.Apply(defaultProps(scene.Props{scene.PropFill: "#000000"}, opts)); err != nil {
		return nil, err
	}
	obj.IconType = iconType
	obj.Path = path
	if err := i.graph.Add(obj); err != nil {
		return nil, err
	}
	return obj.Clone(), nil
}

// SetColor changes an icon's fill and returns the previous fill.
func (i *Icon) SetColor(id, color string) (string, error) {
	if color == "" {
		return "", fmt.Errorf("%w: color is required", scene.ErrInvalidParameter)
	}
	var prev string
	err := i.graph.Update(id, func(o *scene.Object) error {
		if o.Type != scene.ObjectTypeIcon {
			return fmt.Errorf("%w: %s is a %s, not an icon", scene.ErrUnsupported, id, o.Type)
		}
		prev, o.Fill = o.Fill, color
		return nil
	})
	return prev, err
}
