package ops

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/imagedit/internal/command"
	"github.com/inamate/imagedit/internal/graphics"
	"github.com/inamate/imagedit/internal/scene"
)

type fakeSource map[string]graphics.ImageInfo

func (f fakeSource) Fetch(_ context.Context, src string) (graphics.ImageInfo, error) {
	info, ok := f[src]
	if !ok {
		return graphics.ImageInfo{}, errors.New("missing")
	}
	return info, nil
}

var images = fakeSource{
	"bg.png":   {AssetID: "asset_bg", Name: "bg.png", Width: 400, Height: 200},
	"next.png": {AssetID: "asset_next", Name: "next.png", Width: 100, Height: 100},
	"mask.png": {AssetID: "asset_mask", Name: "mask.png", Width: 50, Height: 50},
}

func setup(t *testing.T) (*graphics.Graphics, *command.Invoker[*graphics.Graphics]) {
	t.Helper()
	g := graphics.New(scene.NewGraph(), images)
	inv := command.NewInvoker(g, NewRegistry())
	_, err := inv.Execute(context.Background(), LoadImage, "", "bg.png")
	require.NoError(t, err)
	inv.ClearUndoStack()
	return g, inv
}

func addRect(t *testing.T, inv *command.Invoker[*graphics.Graphics], props map[string]any) string {
	t.Helper()
	res, err := inv.Execute(context.Background(), AddShape, "rect", props)
	require.NoError(t, err)
	return res.(*scene.Object).ID
}

func TestRegistryHoldsEveryOperation(t *testing.T) {
	reg := NewRegistry()
	assert.Len(t, reg.Names(), 20)
	for _, name := range []string{LoadImage, ClearObjects, ChangeSelection, ApplyFilter} {
		_, ok := reg.Lookup(name)
		assert.True(t, ok, name)
	}
}

func TestUndoRedoSymmetry(t *testing.T) {
	tests := []struct {
		name string
		op   string
		args func(t *testing.T, inv *command.Invoker[*graphics.Graphics]) []any
	}{
		{"flip", Flip, func(*testing.T, *command.Invoker[*graphics.Graphics]) []any {
			return []any{graphics.FlipX}
		}},
		{"add shape", AddShape, func(*testing.T, *command.Invoker[*graphics.Graphics]) []any {
			return []any{"circle", map[string]any{"width": 40.0, "height": 40.0}}
		}},
		{"add text", AddText, func(*testing.T, *command.Invoker[*graphics.Graphics]) []any {
			return []any{"caption", nil}
		}},
		{"add icon", AddIcon, func(*testing.T, *command.Invoker[*graphics.Graphics]) []any {
			return []any{"arrow", nil}
		}},
		{"add image object", AddImageObject, func(*testing.T, *command.Invoker[*graphics.Graphics]) []any {
			return []any{"next.png"}
		}},
		{"add object", AddObject, func(*testing.T, *command.Invoker[*graphics.Graphics]) []any {
			return []any{"line", map[string]any{"width": 10.0, "stroke": "#ff0000"}}
		}},
		{"remove object", RemoveObject, func(t *testing.T, inv *command.Invoker[*graphics.Graphics]) []any {
			return []any{addRect(t, inv, nil)}
		}},
		{"change shape", ChangeShape, func(t *testing.T, inv *command.Invoker[*graphics.Graphics]) []any {
			return []any{addRect(t, inv, nil), map[string]any{"fill": "#00ff00", "width": 30.0}}
		}},
		{"set object properties", SetObjectProperties, func(t *testing.T, inv *command.Invoker[*graphics.Graphics]) []any {
			return []any{addRect(t, inv, nil), map[string]any{"opacity": 0.5}}
		}},
		{"set object position", SetObjectPosition, func(t *testing.T, inv *command.Invoker[*graphics.Graphics]) []any {
			id := addRect(t, inv, map[string]any{"width": 10.0, "height": 10.0})
			return []any{id, map[string]any{"x": 0.0, "y": 0.0, "originX": "left", "originY": "top"}}
		}},
		{"clear objects", ClearObjects, func(t *testing.T, inv *command.Invoker[*graphics.Graphics]) []any {
			addRect(t, inv, nil)
			addRect(t, inv, nil)
			return nil
		}},
		{"apply filter", ApplyFilter, func(*testing.T, *command.Invoker[*graphics.Graphics]) []any {
			return []any{"blur", map[string]any{"blur": 0.2}}
		}},
		{"resize canvas", ResizeCanvasDimension, func(*testing.T, *command.Invoker[*graphics.Graphics]) []any {
			return []any{map[string]any{"width": 640.0, "height": 480.0}}
		}},
		{"load image", LoadImage, func(t *testing.T, inv *command.Invoker[*graphics.Graphics]) []any {
			addRect(t, inv, nil)
			return []any{"", "next.png"}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			g, inv := setup(t)
			args := tt.args(t, inv)
			before := g.Scene.Snapshot()

			_, err := inv.Execute(ctx, tt.op, args...)
			require.NoError(t, err)
			after := g.Scene.Snapshot()
			assert.NotEqual(t, before, after)

			_, err = inv.Undo(ctx)
			require.NoError(t, err)
			assert.Equal(t, before, g.Scene.Snapshot())

			_, err = inv.Redo(ctx)
			require.NoError(t, err)
			assert.Equal(t, after, g.Scene.Snapshot())
		})
	}
}

func TestRemoveGroupSelectionAndUndo(t *testing.T) {
	ctx := context.Background()
	g, inv := setup(t)
	a := addRect(t, inv, nil)
	b := addRect(t, inv, nil)
	c := addRect(t, inv, nil)

	res, err := inv.Execute(ctx, RemoveObject, []any{a, c})
	require.NoError(t, err)
	assert.Equal(t, []string{a, c}, res)
	assert.Equal(t, 1, g.Scene.Len())

	_, err = inv.Undo(ctx)
	require.NoError(t, err)
	ids := make([]string, 0, 3)
	for _, o := range g.Scene.Objects() {
		ids = append(ids, o.ID)
	}
	assert.Equal(t, []string{a, b, c}, ids)
}

func TestRemoveMissingObjectRejects(t *testing.T) {
	ctx := context.Background()
	g, inv := setup(t)
	a := addRect(t, inv, nil)

	_, err := inv.Execute(ctx, RemoveObject, []string{a, "obj_missing"})
	require.ErrorIs(t, err, scene.ErrNotFound)
	assert.True(t, g.Scene.Has(a))
	assert.Equal(t, 1, inv.UndoLen())
}

func TestChangeShapeUndoTouchesOnlyChangedKeys(t *testing.T) {
	ctx := context.Background()
	g, inv := setup(t)
	id := addRect(t, inv, map[string]any{"fill": "#111111", "stroke": "#222222"})

	_, err := inv.Execute(ctx, ChangeShape, id, map[string]any{"fill": "#333333"})
	require.NoError(t, err)

	// An edit outside history lands on another key.
	_, err = g.SetObjectProperties(id, scene.Props{scene.PropStroke: "#444444"})
	require.NoError(t, err)

	_, err = inv.Undo(ctx)
	require.NoError(t, err)
	props, err := g.ObjectProperties(id, scene.PropFill, scene.PropStroke)
	require.NoError(t, err)
	assert.Equal(t, scene.Props{scene.PropFill: "#111111", scene.PropStroke: "#444444"}, props)
}

func TestChangeShapeOnTextIsUnsupported(t *testing.T) {
	ctx := context.Background()
	_, inv := setup(t)
	res, err := inv.Execute(ctx, AddText, "hello")
	require.NoError(t, err)

	_, err = inv.Execute(ctx, ChangeShape, res.(*scene.Object).ID, map[string]any{"fill": "red"})
	assert.ErrorIs(t, err, scene.ErrUnsupported)
}

func TestLoadImageUndoRestoresBackgroundAndObjects(t *testing.T) {
	ctx := context.Background()
	g, inv := setup(t)
	id := addRect(t, inv, nil)
	_, err := inv.Execute(ctx, ApplyFilter, "sepia", nil)
	require.NoError(t, err)

	res, err := inv.Execute(ctx, LoadImage, "replacement", "next.png")
	require.NoError(t, err)
	assert.Equal(t, graphics.LoadResult{
		OldSize: scene.Dimension{Width: 400, Height: 200},
		NewSize: scene.Dimension{Width: 100, Height: 100},
	}, res)
	assert.Equal(t, "replacement", g.Scene.Background().Name)
	assert.Zero(t, g.Scene.Len())

	_, err = inv.Undo(ctx)
	require.NoError(t, err)
	bg := g.Scene.Background()
	assert.Equal(t, "bg.png", bg.Name)
	assert.Len(t, bg.Filters, 1)
	assert.True(t, g.Scene.Has(id))
}

func TestLoadImageFailureKeepsScene(t *testing.T) {
	ctx := context.Background()
	g, inv := setup(t)
	id := addRect(t, inv, nil)

	_, err := inv.Execute(ctx, LoadImage, "", "unknown.png")
	require.Error(t, err)
	assert.True(t, g.Scene.Has(id))
	assert.Equal(t, "bg.png", g.Scene.Background().Name)
}

func TestFlipNoOpRejects(t *testing.T) {
	_, inv := setup(t)
	_, err := inv.Execute(context.Background(), Flip, graphics.FlipReset)
	assert.ErrorIs(t, err, scene.ErrNoOp)
	assert.True(t, inv.IsEmptyUndoStack())
}

func TestRotateUndoRestoresObjects(t *testing.T) {
	ctx := context.Background()
	g, inv := setup(t)
	id := addRect(t, inv, map[string]any{"left": 300.0, "top": 50.0})

	res, err := inv.Execute(ctx, Rotate, RotateBy, 90.0)
	require.NoError(t, err)
	assert.Equal(t, 90.0, res)

	_, err = inv.Undo(ctx)
	require.NoError(t, err)
	obj, err := g.Scene.Get(id)
	require.NoError(t, err)
	assert.InDelta(t, 300, obj.Left, 1e-9)
	assert.InDelta(t, 50, obj.Top, 1e-9)
	assert.InDelta(t, 0, obj.Angle, 1e-9)
	size := g.Scene.Size()
	assert.InDelta(t, 400, size.Width, 1e-9)
	assert.InDelta(t, 200, size.Height, 1e-9)

	res, err = inv.Execute(ctx, Rotate, SetAngle, 45)
	require.NoError(t, err)
	assert.Equal(t, 45.0, res)

	_, err = inv.Execute(ctx, Rotate, "spin", 45.0)
	assert.ErrorIs(t, err, scene.ErrInvalidParameter)
}

func TestMaskFilterConsumesMaskObject(t *testing.T) {
	ctx := context.Background()
	g, inv := setup(t)
	res, err := inv.Execute(ctx, AddImageObject, "mask.png")
	require.NoError(t, err)
	maskID := res.(*scene.Object).ID

	_, err = inv.Execute(ctx, ApplyFilter, graphics.FilterMask, map[string]any{graphics.MaskOption: maskID})
	require.NoError(t, err)
	assert.False(t, g.Scene.Has(maskID))
	opts, ok := g.Filter.Options(graphics.FilterMask)
	require.True(t, ok)
	assert.Equal(t, "asset_mask", opts["assetId"])

	_, err = inv.Undo(ctx)
	require.NoError(t, err)
	assert.True(t, g.Scene.Has(maskID))
	assert.False(t, g.Filter.Has(graphics.FilterMask))

	_, err = inv.Redo(ctx)
	require.NoError(t, err)
	assert.False(t, g.Scene.Has(maskID))
	assert.True(t, g.Filter.Has(graphics.FilterMask))
}

func TestMaskFilterNeedsImageObject(t *testing.T) {
	ctx := context.Background()
	g, inv := setup(t)
	id := addRect(t, inv, nil)

	_, err := inv.Execute(ctx, ApplyFilter, graphics.FilterMask, map[string]any{graphics.MaskOption: id})
	require.ErrorIs(t, err, scene.ErrInvalidParameter)
	assert.True(t, g.Scene.Has(id))

	_, err = inv.Execute(ctx, ApplyFilter, graphics.FilterMask, nil)
	assert.ErrorIs(t, err, scene.ErrInvalidParameter)
}

func TestApplyFilterUndoRestoresPreviousOptions(t *testing.T) {
	ctx := context.Background()
	g, inv := setup(t)
	_, err := inv.Execute(ctx, ApplyFilter, "blur", map[string]any{"blur": 0.1})
	require.NoError(t, err)
	_, err = inv.Execute(ctx, ApplyFilter, "blur", map[string]any{"blur": 0.9})
	require.NoError(t, err)

	_, err = inv.Undo(ctx)
	require.NoError(t, err)
	opts, ok := g.Filter.Options("blur")
	require.True(t, ok)
	assert.Equal(t, 0.1, opts["blur"])
}

func TestRemoveFilter(t *testing.T) {
	ctx := context.Background()
	g, inv := setup(t)
	_, err := inv.Execute(ctx, RemoveFilter, "blur")
	require.ErrorIs(t, err, scene.ErrNoOp)

	_, err = inv.Execute(ctx, ApplyFilter, "tint", map[string]any{"color": "#ff0000"})
	require.NoError(t, err)
	_, err = inv.Execute(ctx, RemoveFilter, "tint")
	require.NoError(t, err)
	assert.False(t, g.Filter.Has("tint"))

	_, err = inv.Undo(ctx)
	require.NoError(t, err)
	opts, ok := g.Filter.Options("tint")
	require.True(t, ok)
	assert.Equal(t, "#ff0000", opts["color"])
}

func TestChangeSelection(t *testing.T) {
	ctx := context.Background()
	g, inv := setup(t)
	id := addRect(t, inv, map[string]any{"left": 10.0, "top": 10.0})

	// The object was dragged before the edit is recorded.
	_, err := g.SetObjectProperties(id, scene.Props{scene.PropLeft: 80.0, scene.PropTop: 90.0})
	require.NoError(t, err)

	_, err = inv.Execute(ctx, ChangeSelection, []any{map[string]any{"id": id, "left": 10.0, "top": 10.0}})
	require.NoError(t, err)
	obj, err := g.Scene.Get(id)
	require.NoError(t, err)
	assert.Equal(t, 80.0, obj.Left)

	_, err = inv.Undo(ctx)
	require.NoError(t, err)
	obj, err = g.Scene.Get(id)
	require.NoError(t, err)
	assert.Equal(t, 10.0, obj.Left)
	assert.Equal(t, 10.0, obj.Top)

	_, err = inv.Redo(ctx)
	require.NoError(t, err)
	obj, err = g.Scene.Get(id)
	require.NoError(t, err)
	assert.Equal(t, 80.0, obj.Left)
	assert.Equal(t, 90.0, obj.Top)
}

func TestChangeTextAndStyle(t *testing.T) {
	ctx := context.Background()
	g, inv := setup(t)
	res, err := inv.Execute(ctx, AddText, "before", map[string]any{"fontSize": 20.0})
	require.NoError(t, err)
	id := res.(*scene.Object).ID

	_, err = inv.Execute(ctx, ChangeText, id, "after")
	require.NoError(t, err)
	_, err = inv.Execute(ctx, ChangeTextStyle, id, map[string]any{"fontStyle": "italic"})
	require.NoError(t, err)

	_, err = inv.Undo(ctx)
	require.NoError(t, err)
	_, err = inv.Undo(ctx)
	require.NoError(t, err)
	obj, err := g.Scene.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "before", obj.Text)
	assert.NotEqual(t, "italic", obj.FontStyle)
}

func TestChangeIconColor(t *testing.T) {
	ctx := context.Background()
	g, inv := setup(t)
	res, err := inv.Execute(ctx, AddIcon, "arrow", map[string]any{"fill": "#101010"})
	require.NoError(t, err)
	id := res.(*scene.Object).ID

	_, err = inv.Execute(ctx, ChangeIconColor, id, "#ff00ff")
	require.NoError(t, err)
	_, err = inv.Undo(ctx)
	require.NoError(t, err)
	obj, err := g.Scene.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "#101010", obj.Fill)

	_, err = inv.Execute(ctx, ChangeIconColor, id, "")
	assert.ErrorIs(t, err, scene.ErrInvalidParameter)
}

func TestMissingArgumentsReject(t *testing.T) {
	ctx := context.Background()
	_, inv := setup(t)
	for _, name := range []string{
		Flip, Rotate, AddShape, ChangeShape, AddIcon, ChangeIconColor, ChangeText,
		ChangeTextStyle, ApplyFilter, RemoveFilter, ResizeCanvasDimension, SetObjectProperties,
		SetObjectPosition, RemoveObject, ChangeSelection, AddImageObject, AddObject, LoadImage,
	} {
		_, err := inv.Execute(ctx, name)
		assert.ErrorIs(t, err, scene.ErrInvalidParameter, name)
	}
	assert.True(t, inv.IsEmptyUndoStack())
}
