package graphics

import (
	"fmt"
	"slices"

	"github.com/inamate/imagedit/internal/scene"
)

// FilterMask uses an image object as an alpha mask. Its options carry the mask object id.
const FilterMask = "mask"

// MaskOption is the FilterMask option key holding the mask object id.
const MaskOption = "maskObjId"

var filterTypes = map[string]bool{
	"grayscale":   true,
	"invert":      true,
	"sepia":       true,
	"vintage":     true,
	"blur":        true,
	"sharpen":     true,
	"emboss":      true,
	"removeColor": true,
	"brightness":  true,
	"noise":       true,
	"pixelate":    true,
	"colorFilter": true,
	"tint":        true,
	"multiply":    true,
	"blend":       true,
	FilterMask:    true,
}

// Filter maintains the background image's filter chain. Pixel work happens in the renderer.
type Filter struct {
	graph *scene.Graph
}

// ValidType reports whether t names a known filter.
func ValidType(t string) bool { return filterTypes[t] }

func (f *Filter) Has(t string) bool {
	_, ok := f.Options(t)
	return ok
}

// Options returns a copy of the options of an applied filter.
func (f *Filter) Options(t string) (scene.FilterOptions, bool) {
	bg := f.graph.Background()
	if bg == nil {
		return nil, false
	}
	i := slices.IndexFunc(bg.Filters, func(x scene.Filter) bool { return x.Type == t })
	if i < 0 {
		return nil, false
	}
	return bg.Filters[i].Options, true
}

// Apply adds the filter or replaces its options. It returns the options it replaced and
// whether the filter was already applied.
func (f *Filter) Apply(t string, opts scene.FilterOptions) (scene.FilterOptions, bool, error) {
	if !ValidType(t) {
		return nil, false, fmt.Errorf("%w: unknown filter %q", scene.ErrInvalidParameter, t)
	}
	var prev scene.FilterOptions
	var existed bool
	err := f.graph.UpdateBackground(func(img *scene.Image) error {
		i := slices.IndexFunc(img.Filters, func(x scene.Filter) bool { return x.Type == t })
		next := scene.Filter{Type: t, Options: copyOptions(opts)}
		if i >= 0 {
			prev, existed = img.Filters[i].Options, true
			img.Filters[i] = next
			return nil
		}
		img.Filters = append(img.Filters, next)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return prev, existed, nil
}

// Remove drops the filter and returns its options.
func (f *Filter) Remove(t string) (scene.FilterOptions, error) {
	var prev scene.FilterOptions
	err := f.graph.UpdateBackground(func(img *scene.Image) error {
		i := slices.IndexFunc(img.Filters, func(x scene.Filter) bool { return x.Type == t })
		if i < 0 {
			return fmt.Errorf("%w: filter %q is not applied", scene.ErrNoOp, t)
		}
		prev = img.Filters[i].Options
		img.Filters = slices.Delete(img.Filters, i, i+1)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return prev, nil
}

func copyOptions(o scene.FilterOptions) scene.FilterOptions {
	if o == nil {
		return nil
	}
	c := make(scene.FilterOptions, len(o))
	for k, v := range o {
		c[k] = v
	}
	return c
}
