package editor

import (
	"context"

	"github.com/inamate/imagedit/internal/graphics"
	"github.com/inamate/imagedit/internal/ops"
	"github.com/inamate/imagedit/internal/scene"
)

func run[R any](ctx context.Context, e *Editor, name string, args ...any) (R, error) {
	var zero R
	res, err := e.Execute(ctx, name, args...)
	if err != nil {
		return zero, err
	}
	r, _ := res.(R)
	return r, nil
}

// LoadImage makes src the background image. Objects over the old image are removed.
func (e *Editor) LoadImage(ctx context.Context, name, src string) (graphics.LoadResult, error) {
	return run[graphics.LoadResult](ctx, e, ops.LoadImage, name, src)
}

func (e *Editor) Flip(ctx context.Context, mode string) (graphics.FlipResult, error) {
	return run[graphics.FlipResult](ctx, e, ops.Flip, mode)
}

// Rotate turns the image by delta degrees and returns the new angle.
func (e *Editor) Rotate(ctx context.Context, delta float64) (float64, error) {
	return run[float64](ctx, e, ops.Rotate, ops.RotateBy, delta)
}

// SetAngle turns the image to an absolute angle.
func (e *Editor) SetAngle(ctx context.Context, angle float64) (float64, error) {
	return run[float64](ctx, e, ops.Rotate, ops.SetAngle, angle)
}

func (e *Editor) AddObject(ctx context.Context, obj *scene.Object) (*scene.Object, error) {
	return run[*scene.Object](ctx, e, ops.AddObject, obj)
}

func (e *Editor) AddImageObject(ctx context.Context, src string) (*scene.Object, error) {
	return run[*scene.Object](ctx, e, ops.AddImageObject, src)
}

// RemoveObject removes the given objects together and returns their ids.
func (e *Editor) RemoveObject(ctx context.Context, ids ...string) ([]string, error) {
	return run[[]string](ctx, e, ops.RemoveObject, ids)
}

func (e *Editor) AddShape(ctx context.Context, t scene.ObjectType, opts scene.Props) (*scene.Object, error) {
	return run[*scene.Object](ctx, e, ops.AddShape, string(t), opts)
}

func (e *Editor) ChangeShape(ctx context.Context, id string, opts scene.Props) error {
	_, err := e.Execute(ctx, ops.ChangeShape, id, opts)
	return err
}

func (e *Editor) AddIcon(ctx context.Context, iconType string, opts scene.Props) (*scene.Object, error) {
	return run[*scene.Object](ctx, e, ops.AddIcon, iconType, opts)
}

func (e *Editor) ChangeIconColor(ctx context.Context, id, color string) error {
	_, err := e.Execute(ctx, ops.ChangeIconColor, id, color)
	return err
}

func (e *Editor) AddText(ctx context.Context, text string, opts scene.Props) (*scene.Object, error) {
	return run[*scene.Object](ctx, e, ops.AddText, text, opts)
}

func (e *Editor) ChangeText(ctx context.Context, id, text string) error {
	_, err := e.Execute(ctx, ops.ChangeText, id, text)
	return err
}

func (e *Editor) ChangeTextStyle(ctx context.Context, id string, styles scene.Props) error {
	_, err := e.Execute(ctx, ops.ChangeTextStyle, id, styles)
	return err
}

// ApplyFilter adds a filter or replaces its options.
func (e *Editor) ApplyFilter(ctx context.Context, filterType string, opts scene.FilterOptions) (ops.FilterResult, error) {
	return run[ops.FilterResult](ctx, e, ops.ApplyFilter, filterType, opts)
}

func (e *Editor) RemoveFilter(ctx context.Context, filterType string) (ops.FilterResult, error) {
	return run[ops.FilterResult](ctx, e, ops.RemoveFilter, filterType)
}

// HasFilter reports whether the filter is applied to the background.
func (e *Editor) HasFilter(filterType string) bool {
	return e.graphics.Filter.Has(filterType)
}

func (e *Editor) ResizeCanvasDimension(ctx context.Context, d scene.Dimension) error {
	_, err := e.Execute(ctx, ops.ResizeCanvasDimension, d)
	return err
}

func (e *Editor) SetObjectProperties(ctx context.Context, id string, props scene.Props) error {
	_, err := e.Execute(ctx, ops.SetObjectProperties, id, props)
	return err
}

func (e *Editor) SetObjectPosition(ctx context.Context, id string, pos graphics.Position) error {
	_, err := e.Execute(ctx, ops.SetObjectPosition, id, pos)
	return err
}

// ClearObjects removes every object except the crop zone.
func (e *Editor) ClearObjects(ctx context.Context) ([]string, error) {
	return run[[]string](ctx, e, ops.ClearObjects)
}

// ChangeSelection records an edit already applied to the selection. before holds, per
// object, its "id" and the values the changed keys had before the edit.
func (e *Editor) ChangeSelection(ctx context.Context, before []scene.Props) error {
	_, err := e.Execute(ctx, ops.ChangeSelection, before)
	return err
}
