package scene

import (
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/inamate/imagedit/internal/typeid"
)

// ErrNoImage is returned by background operations before any image was loaded.
var ErrNoImage = fmt.Errorf("%w: no image loaded", ErrNotFound)

// FilterOptions are the parameters of one background filter.
type FilterOptions map[string]any

// Filter is one entry of the background filter chain.
type Filter struct {
	Type    string        `json:"type"`
	Options FilterOptions `json:"options,omitempty"`
}

// Image is the background image the scene is edited around.
type Image struct {
	Name    string   `json:"name"`
	AssetID string   `json:"assetId"`
	Width   float64  `json:"width"`
	Height  float64  `json:"height"`
	Angle   float64  `json:"angle"`
	FlipX   bool     `json:"flipX"`
	FlipY   bool     `json:"flipY"`
	Filters []Filter `json:"filters,omitempty"`
}

// Clone returns a deep copy of the image and its filter chain.
func (img *Image) Clone() *Image {
	if img == nil {
		return nil
	}
	c := *img
	c.Filters = make([]Filter, len(img.Filters))
	for i, f := range img.Filters {
		c.Filters[i] = Filter{Type: f.Type, Options: cloneOptions(f.Options)}
	}
	return &c
}

func cloneOptions(o FilterOptions) FilterOptions {
	if o == nil {
		return nil
	}
	c := make(FilterOptions, len(o))
	for k, v := range o {
		c[k] = v
	}
	return c
}

// Dimension is a width/height pair.
type Dimension struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Placement records where an object sat in painter's order when it was removed.
type Placement struct {
	Index  int
	Object *Object
}

// Graph is the live, ordered set of objects plus the background image.
// Reads hand out clones; writes go through Update and friends.
type Graph struct {
	mu         sync.RWMutex
	objects    []*Object // painter's order, back to front
	byID       map[string]*Object
	background *Image
	size       Dimension
	maxSize    Dimension
}

// NewGraph creates an empty scene graph.
func NewGraph() *Graph {
	return &Graph{
		byID:    make(map[string]*Object),
		maxSize: Dimension{Width: 1000, Height: 800},
	}
}

// Add appends objects in order, assigning ids to those without one.
func (g *Graph) Add(objs ...*Object) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, o := range objs {
		if o == nil {
			return fmt.Errorf("%w: nil object", ErrInvalidParameter)
		}
		if _, ok := g.byID[o.ID]; ok && o.ID != "" {
			return fmt.Errorf("%w: duplicate object id %s", ErrInvalidParameter, o.ID)
		}
	}
	for _, o := range objs {
		if o.ID == "" {
			o.ID = typeid.NewObjectID()
		}
		g.objects = append(g.objects, o)
		g.byID[o.ID] = o
	}
	return nil
}

// Restore reinserts previously removed objects at their recorded positions.
func (g *Graph) Restore(placements []Placement) {
	g.mu.Lock()
	defer g.mu.Unlock()

	sorted := slices.Clone(placements)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })
	for _, p := range sorted {
		if _, ok := g.byID[p.Object.ID]; ok {
			continue
		}
		idx := min(max(p.Index, 0), len(g.objects))
		g.objects = slices.Insert(g.objects, idx, p.Object)
		g.byID[p.Object.ID] = p.Object
	}
}

// Remove takes the named objects out of the scene. A missing id fails the whole call.
func (g *Graph) Remove(ids ...string) ([]Placement, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, id := range ids {
		if _, ok := g.byID[id]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
	}
	return g.removeLocked(func(o *Object) bool { return slices.Contains(ids, o.ID) }), nil
}

// Clear removes every object for which keep returns false.
func (g *Graph) Clear(keep func(*Object) bool) []Placement {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.removeLocked(func(o *Object) bool { return keep == nil || !keep(o) })
}

func (g *Graph) removeLocked(drop func(*Object) bool) []Placement {
	var removed []Placement
	kept := g.objects[:0:0]
	for i, o := range g.objects {
		if drop(o) {
			removed = append(removed, Placement{Index: i, Object: o})
			delete(g.byID, o.ID)
			continue
		}
		kept = append(kept, o)
	}
	g.objects = kept
	return removed
}

// Get returns a copy of the object with the given id.
func (g *Graph) Get(id string) (*Object, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	o, ok := g.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return o.Clone(), nil
}

// Has reports whether an object with the id is in the scene.
func (g *Graph) Has(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.byID[id]
	return ok
}

// Len returns the number of top-level objects.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.objects)
}

// Objects returns copies of all objects in painter's order.
func (g *Graph) Objects() []*Object {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]*Object, len(g.objects))
	for i, o := range g.objects {
		out[i] = o.Clone()
	}
	return out
}

// Update runs fn against the live object.
func (g *Graph) Update(id string, fn func(*Object) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	o, ok := g.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return fn(o)
}

// UpdateAll runs fn against every live object.
func (g *Graph) UpdateAll(fn func(*Object)) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, o := range g.objects {
		fn(o)
	}
}

// Background returns a copy of the background image, or nil.
func (g *Graph) Background() *Image {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.background.Clone()
}

// SetBackground replaces the background image and returns the previous one.
func (g *Graph) SetBackground(img *Image) *Image {
	g.mu.Lock()
	defer g.mu.Unlock()

	prev := g.background
	g.background = img.Clone()
	return prev
}

// UpdateBackground runs fn against the live background image.
func (g *Graph) UpdateBackground(fn func(*Image) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.background == nil {
		return ErrNoImage
	}
	return fn(g.background)
}

// Size returns the canvas size.
func (g *Graph) Size() Dimension {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.size
}

// SetSize sets the canvas size.
func (g *Graph) SetSize(d Dimension) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.size = d
}

// MaxSize returns the maximum display size of the canvas.
func (g *Graph) MaxSize() Dimension {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.maxSize
}

// SetMaxSize sets the maximum display size and returns the previous value.
func (g *Graph) SetMaxSize(d Dimension) Dimension {
	g.mu.Lock()
	defer g.mu.Unlock()

	prev := g.maxSize
	g.maxSize = d
	return prev
}

// Center returns the canvas center.
func (g *Graph) Center() (float64, float64) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return Rect{Width: g.size.Width, Height: g.size.Height}.Center()
}
