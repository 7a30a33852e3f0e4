package ops

import (
	"context"
	"fmt"

	"github.com/inamate/imagedit/internal/graphics"
	"github.com/inamate/imagedit/internal/scene"
)

// loadImage replaces the background and clears the objects drawn over the old one.
type loadImage struct {
	name, src string

	prevImage *scene.Image
	removed   []scene.Placement
}

func buildLoadImage(args []any) (operation, error) {
	src, err := argString(args, 1, "image source")
	if err != nil {
		return nil, err
	}
	return &loadImage{name: optString(args, 0), src: src}, nil
}

func (op *loadImage) Execute(ctx context.Context, g target) (any, error) {
	prev := g.Scene.Background()
	res, err := g.Loader.Load(ctx, op.name, op.src)
	if err != nil {
		return nil, err
	}
	op.prevImage = prev
	op.removed = g.ClearObjects()
	return res, nil
}

func (op *loadImage) Undo(_ context.Context, g target) (any, error) {
	res := g.Loader.Install(op.prevImage)
	g.Scene.Restore(op.removed)
	op.removed = nil
	return res, nil
}

type flip struct {
	mode string
	prev graphics.FlipSetting
}

func buildFlip(args []any) (operation, error) {
	mode, err := argString(args, 0, "flip mode")
	if err != nil {
		return nil, err
	}
	switch mode {
	case graphics.FlipX, graphics.FlipY, graphics.FlipReset:
	default:
		return nil, fmt.Errorf("%w: unknown flip mode %q", scene.ErrInvalidParameter, mode)
	}
	return &flip{mode: mode}, nil
}

func (op *flip) Execute(_ context.Context, g target) (any, error) {
	prev, err := g.Flip.Current()
	if err != nil {
		return nil, err
	}
	res, err := g.Flip.Flip(op.mode)
	if err != nil {
		return nil, err
	}
	op.prev = prev
	return res, nil
}

func (op *flip) Undo(_ context.Context, g target) (any, error) {
	return g.Flip.Set(op.prev)
}

type rotate struct {
	mode  string
	angle float64
	prev  float64
}

func buildRotate(args []any) (operation, error) {
	mode, err := argString(args, 0, "rotate mode")
	if err != nil {
		return nil, err
	}
	if mode != RotateBy && mode != SetAngle {
		return nil, fmt.Errorf("%w: unknown rotate mode %q", scene.ErrInvalidParameter, mode)
	}
	angle, err := argFloat(args, 1, "angle")
	if err != nil {
		return nil, err
	}
	return &rotate{mode: mode, angle: angle}, nil
}

func (op *rotate) Execute(_ context.Context, g target) (any, error) {
	prev, err := g.Rotation.Angle()
	if err != nil {
		return nil, err
	}
	var angle float64
	if op.mode == RotateBy {
		angle, err = g.Rotation.Rotate(op.angle)
	} else {
		angle, err = g.Rotation.SetAngle(op.angle)
	}
	if err != nil {
		return nil, err
	}
	op.prev = prev
	return angle, nil
}

func (op *rotate) Undo(_ context.Context, g target) (any, error) {
	return g.Rotation.SetAngle(op.prev)
}

type resizeCanvasDimension struct {
	dim  scene.Dimension
	prev scene.Dimension
}

func buildResizeCanvasDimension(args []any) (operation, error) {
	dim, err := decodeArg[scene.Dimension](args, 0, "dimension")
	if err != nil {
		return nil, err
	}
	return &resizeCanvasDimension{dim: dim}, nil
}

func (op *resizeCanvasDimension) Execute(_ context.Context, g target) (any, error) {
	prev, err := g.Resizer.SetMaxDimension(op.dim)
	if err != nil {
		return nil, err
	}
	op.prev = prev
	return op.dim, nil
}

func (op *resizeCanvasDimension) Undo(_ context.Context, g target) (any, error) {
	return g.Resizer.SetMaxDimension(op.prev)
}

// FilterResult reports a filter change.
type FilterResult struct {
	Type    string              `json:"type"`
	Action  string              `json:"action"` // add or remove
	Options scene.FilterOptions `json:"options,omitempty"`
}

// applyFilter adds a filter or replaces its options. A mask filter takes its mask image
// object out of the scene; undo puts it back.
type applyFilter struct {
	kind string
	opts scene.FilterOptions

	prev    scene.FilterOptions
	existed bool
	mask    []scene.Placement
}

func buildApplyFilter(args []any) (operation, error) {
	kind, err := argString(args, 0, "filter type")
	if err != nil {
		return nil, err
	}
	if !graphics.ValidType(kind) {
		return nil, fmt.Errorf("%w: unknown filter %q", scene.ErrInvalidParameter, kind)
	}
	var opts scene.FilterOptions
	if len(args) > 1 && args[1] != nil {
		if opts, err = decodeArg[scene.FilterOptions](args, 1, "filter options"); err != nil {
			return nil, err
		}
	}
	if kind == graphics.FilterMask {
		if id, _ := opts[graphics.MaskOption].(string); id == "" {
			return nil, fmt.Errorf("%w: mask filter needs %s", scene.ErrInvalidParameter, graphics.MaskOption)
		}
	}
	return &applyFilter{kind: kind, opts: opts}, nil
}

func (op *applyFilter) Execute(_ context.Context, g target) (any, error) {
	opts := make(scene.FilterOptions, len(op.opts))
	for k, v := range op.opts {
		opts[k] = v
	}

	var mask []scene.Placement
	if op.kind == graphics.FilterMask {
		id := opts[graphics.MaskOption].(string)
		obj, err := g.Scene.Get(id)
		if err != nil {
			return nil, err
		}
		if obj.Type != scene.ObjectTypeImage {
			return nil, fmt.Errorf("%w: mask %s must be an image, got %s", scene.ErrInvalidParameter, id, obj.Type)
		}
		if mask, err = g.Scene.Remove(id); err != nil {
			return nil, err
		}
		opts["assetId"] = obj.AssetID
	}

	prev, existed, err := g.Filter.Apply(op.kind, opts)
	if err != nil {
		g.Scene.Restore(mask)
		return nil, err
	}
	op.prev, op.existed, op.mask = prev, existed, mask
	return FilterResult{Type: op.kind, Action: "add", Options: opts}, nil
}

func (op *applyFilter) Undo(_ context.Context, g target) (any, error) {
	if op.existed {
		if _, _, err := g.Filter.Apply(op.kind, op.prev); err != nil {
			return nil, err
		}
	} else if _, err := g.Filter.Remove(op.kind); err != nil {
		return nil, err
	}
	g.Scene.Restore(op.mask)
	op.mask = nil
	if op.existed {
		return FilterResult{Type: op.kind, Action: "add", Options: op.prev}, nil
	}
	return FilterResult{Type: op.kind, Action: "remove"}, nil
}

type removeFilter struct {
	kind string
	prev scene.FilterOptions
}

func buildRemoveFilter(args []any) (operation, error) {
	kind, err := argString(args, 0, "filter type")
	if err != nil {
		return nil, err
	}
	return &removeFilter{kind: kind}, nil
}

func (op *removeFilter) Execute(_ context.Context, g target) (any, error) {
	prev, err := g.Filter.Remove(op.kind)
	if err != nil {
		return nil, err
	}
	op.prev = prev
	return FilterResult{Type: op.kind, Action: "remove"}, nil
}

func (op *removeFilter) Undo(_ context.Context, g target) (any, error) {
	if _, _, err := g.Filter.Apply(op.kind, op.prev); err != nil {
		return nil, err
	}
	return FilterResult{Type: op.kind, Action: "add", Options: op.prev}, nil
}
