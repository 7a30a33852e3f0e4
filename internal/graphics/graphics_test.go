package graphics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/imagedit/internal/scene"
)

type fakeSource map[string]ImageInfo

func (f fakeSource) Fetch(_ context.Context, src string) (ImageInfo, error) {
	info, ok := f[src]
	if !ok {
		return ImageInfo{}, errors.New("missing")
	}
	return info, nil
}

func newLoaded(t *testing.T) *Graphics {
	t.Helper()
	g := New(scene.NewGraph(), fakeSource{
		"sample": {AssetID: "asset_1", Name: "sample.png", Width: 200, Height: 100},
	})
	_, err := g.Loader.Load(context.Background(), "", "sample")
	require.NoError(t, err)
	return g
}

func TestLoadSizesCanvas(t *testing.T) {
	g := newLoaded(t)
	assert.Equal(t, scene.Dimension{Width: 200, Height: 100}, g.Scene.Size())
	assert.Equal(t, "sample.png", g.Scene.Background().Name)
}

func TestLoadUnknownSource(t *testing.T) {
	g := New(scene.NewGraph(), fakeSource{})
	_, err := g.Loader.Load(context.Background(), "x", "nope")
	require.Error(t, err)
	assert.Nil(t, g.Scene.Background())

	_, err = g.Loader.Load(context.Background(), "x", "")
	assert.ErrorIs(t, err, scene.ErrInvalidParameter)
}

func TestRotationCarriesObjects(t *testing.T) {
	g := newLoaded(t)
	obj, err := g.Shape.Add(scene.ObjectTypeRect, scene.Props{scene.PropLeft: 150.0, scene.PropTop: 50.0})
	require.NoError(t, err)

	angle, err := g.Rotation.Rotate(90)
	require.NoError(t, err)
	assert.Equal(t, 90.0, angle)

	size := g.Scene.Size()
	assert.InDelta(t, 100, size.Width, 1e-9)
	assert.InDelta(t, 200, size.Height, 1e-9)

	moved, err := g.Scene.Get(obj.ID)
	require.NoError(t, err)
	assert.InDelta(t, 50, moved.Left, 1e-9)
	assert.InDelta(t, 150, moved.Top, 1e-9)
	assert.Equal(t, 90.0, moved.Angle)

	_, err = g.Rotation.SetAngle(0)
	require.NoError(t, err)
	back, err := g.Scene.Get(obj.ID)
	require.NoError(t, err)
	assert.InDelta(t, 150, back.Left, 1e-9)
	assert.InDelta(t, 50, back.Top, 1e-9)
	assert.InDelta(t, 0, back.Angle, 1e-9)
}

func TestRotateWithoutImage(t *testing.T) {
	g := New(scene.NewGraph(), nil)
	_, err := g.Rotation.Rotate(10)
	assert.ErrorIs(t, err, scene.ErrNoImage)
}

func TestFlip(t *testing.T) {
	g := newLoaded(t)
	obj, err := g.Shape.Add(scene.ObjectTypeRect, scene.Props{scene.PropLeft: 20.0, scene.PropAngle: 30.0})
	require.NoError(t, err)

	res, err := g.Flip.Flip(FlipX)
	require.NoError(t, err)
	assert.True(t, res.FlipX)

	flipped, err := g.Scene.Get(obj.ID)
	require.NoError(t, err)
	assert.InDelta(t, 180, flipped.Left, 1e-9)
	assert.True(t, flipped.FlipX)
	assert.Equal(t, -30.0, flipped.Angle)

	_, err = g.Flip.Flip(FlipReset)
	require.NoError(t, err)
	restored, err := g.Scene.Get(obj.ID)
	require.NoError(t, err)
	assert.Equal(t, obj.Left, restored.Left)
	assert.False(t, restored.FlipX)
	assert.Equal(t, 30.0, restored.Angle)

	_, err = g.Flip.Flip(FlipReset)
	assert.ErrorIs(t, err, scene.ErrNoOp)

	_, err = g.Flip.Flip("sideways")
	assert.ErrorIs(t, err, scene.ErrInvalidParameter)
}

func TestShapeChangeReturnsOnlyChangedKeys(t *testing.T) {
	g := newLoaded(t)
	obj, err := g.Shape.Add(scene.ObjectTypeCircle, scene.Props{scene.PropWidth: 40.0, scene.PropHeight: 20.0})
	require.NoError(t, err)
	assert.Equal(t, 20.0, obj.Rx)
	assert.Equal(t, 10.0, obj.Ry)

	prev, err := g.Shape.Change(obj.ID, scene.Props{scene.PropFill: "red"})
	require.NoError(t, err)
	assert.Equal(t, scene.Props{scene.PropFill: "#ffffff"}, prev)

	text, err := g.Text.Add("hi", nil)
	require.NoError(t, err)
	_, err = g.Shape.Change(text.ID, scene.Props{scene.PropFill: "red"})
	assert.ErrorIs(t, err, scene.ErrUnsupported)

	_, err = g.Shape.Add(scene.ObjectTypeText, nil)
	assert.ErrorIs(t, err, scene.ErrInvalidParameter)
}

func TestTextStyle(t *testing.T) {
	g := newLoaded(t)
	obj, err := g.Text.Add("hello", scene.Props{scene.PropFontSize: 12.0})
	require.NoError(t, err)

	prev, err := g.Text.SetStyle(obj.ID, scene.Props{scene.PropFontWeight: "bold"})
	require.NoError(t, err)
	assert.Equal(t, scene.Props{scene.PropFontWeight: "normal"}, prev)

	_, err = g.Text.SetStyle(obj.ID, scene.Props{scene.PropLeft: 1.0})
	assert.ErrorIs(t, err, scene.ErrInvalidParameter)

	old, err := g.Text.Change(obj.ID, "bye")
	require.NoError(t, err)
	assert.Equal(t, "hello", old)
}

func TestIcons(t *testing.T) {
	g := newLoaded(t)
	_, err := g.Icon.Add("unicorn", nil)
	require.ErrorIs(t, err, scene.ErrInvalidParameter)

	g.Icon.RegisterIcons(map[string]string{"unicorn": "M0 0L1 1"})
	obj, err := g.Icon.Add("unicorn", scene.Props{scene.PropFill: "#123456"})
	require.NoError(t, err)
	assert.Equal(t, "M0 0L1 1", obj.Path)

	prev, err := g.Icon.SetColor(obj.ID, "#ffffff")
	require.NoError(t, err)
	assert.Equal(t, "#123456", prev)
}

func TestFilterApplyReplaceRemove(t *testing.T) {
	g := newLoaded(t)

	prev, existed, err := g.Filter.Apply("blur", scene.FilterOptions{"blur": 0.1})
	require.NoError(t, err)
	assert.False(t, existed)
	assert.Nil(t, prev)

	prev, existed, err = g.Filter.Apply("blur", scene.FilterOptions{"blur": 0.5})
	require.NoError(t, err)
	assert.True(t, existed)
	assert.Equal(t, scene.FilterOptions{"blur": 0.1}, prev)

	opts, ok := g.Filter.Options("blur")
	require.True(t, ok)
	assert.Equal(t, 0.5, opts["blur"])

	_, err = g.Filter.Remove("blur")
	require.NoError(t, err)
	assert.False(t, g.Filter.Has("blur"))

	_, err = g.Filter.Remove("blur")
	assert.ErrorIs(t, err, scene.ErrNoOp)

	_, _, err = g.Filter.Apply("lomo", nil)
	assert.ErrorIs(t, err, scene.ErrInvalidParameter)
}

func TestSetObjectPosition(t *testing.T) {
	g := newLoaded(t)
	obj, err := g.Shape.Add(scene.ObjectTypeRect, scene.Props{scene.PropWidth: 10.0, scene.PropHeight: 20.0})
	require.NoError(t, err)

	prev, err := g.SetObjectPosition(obj.ID, Position{X: 0, Y: 0, OriginX: "left", OriginY: "top"})
	require.NoError(t, err)
	assert.Equal(t, scene.Props{scene.PropLeft: 0.0, scene.PropTop: 0.0}, prev)

	moved, err := g.Scene.Get(obj.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, moved.Left)
	assert.Equal(t, 10.0, moved.Top)

	_, err = g.SetObjectPosition(obj.ID, Position{OriginX: "middle"})
	assert.ErrorIs(t, err, scene.ErrInvalidParameter)
}

func TestResizer(t *testing.T) {
	g := newLoaded(t)
	prev, err := g.Resizer.SetMaxDimension(scene.Dimension{Width: 640, Height: 480})
	require.NoError(t, err)
	assert.Equal(t, scene.Dimension{Width: 1000, Height: 800}, prev)

	_, err = g.Resizer.SetMaxDimension(scene.Dimension{Width: 0, Height: 480})
	assert.ErrorIs(t, err, scene.ErrInvalidParameter)
}
