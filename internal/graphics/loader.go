package graphics

import (
	"context"
	"errors"
	"fmt"

	"github.com/inamate/imagedit/internal/scene"
)

var errNoSource = errors.New("no image source configured")

// LoadResult reports the canvas size before and after a background change.
type LoadResult struct {
	OldSize scene.Dimension `json:"oldSize"`
	NewSize scene.Dimension `json:"newSize"`
}

// ImageLoader resolves images through an ImageSource and installs them.
type ImageLoader struct {
	graph  *scene.Graph
	source ImageSource
}

func (l *ImageLoader) fetch(ctx context.Context, src string) (ImageInfo, error) {
	if src == "" {
		return ImageInfo{}, fmt.Errorf("%w: image source is required", scene.ErrInvalidParameter)
	}
	if l.source == nil {
		return ImageInfo{}, errNoSource
	}
	info, err := l.source.Fetch(ctx, src)
	if err != nil {
		return ImageInfo{}, fmt.Errorf("fetch image %q: %w", src, err)
	}
	return info, nil
}

// Load fetches src and makes it the background image, sizing the canvas to it.
func (l *ImageLoader) Load(ctx context.Context, name, src string) (LoadResult, error) {
	info, err := l.fetch(ctx, src)
	if err != nil {
		return LoadResult{}, err
	}
	if name == "" {
		name = info.Name
	}
	return l.Install(&scene.Image{
		Name:    name,
		AssetID: info.AssetID,
		Width:   float64(info.Width),
		Height:  float64(info.Height),
	}), nil
}

// Install sets img as background (nil clears it) and fits the canvas to its rotated bounds.
func (l *ImageLoader) Install(img *scene.Image) LoadResult {
	old := l.graph.Size()
	l.graph.SetBackground(img)
	var size scene.Dimension
	if img != nil {
		size = boundingSize(img.Width, img.Height, img.Angle)
	}
	l.graph.SetSize(size)
	return LoadResult{OldSize: old, NewSize: size}
}

// AddImageObject fetches src and adds it as an image object centered on the canvas.
func (l *ImageLoader) AddImageObject(ctx context.Context, src string) (*scene.Object, error) {
	info, err := l.fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	obj := scene.NewObject(scene.ObjectTypeImage)
	obj.AssetID = info.AssetID
	obj.Width = float64(info.Width)
	obj.Height = float64(info.Height)
	obj.Left, obj.Top = l.graph.Center()
	if err := l.graph.Add(obj); err != nil {
		return nil, err
	}
	return obj.Clone(), nil
}
