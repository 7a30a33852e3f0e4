package ops

import (
	"context"
	"fmt"

	"github.com/inamate/imagedit/internal/graphics"
	"github.com/inamate/imagedit/internal/scene"
)

// created is embedded by every operation that adds one object. The first Execute creates
// the object; after an undo the same object, with the same id, is put back.
type created struct {
	id      string
	removed []scene.Placement
}

func (c *created) readd(g target) (*scene.Object, bool, error) {
	if c.id == "" {
		return nil, false, nil
	}
	g.Scene.Restore(c.removed)
	c.removed = nil
	obj, err := g.Scene.Get(c.id)
	return obj, true, err
}

func (c *created) Undo(_ context.Context, g target) (any, error) {
	removed, err := g.RemoveObjects(c.id)
	if err != nil {
		return nil, err
	}
	c.removed = removed
	return c.id, nil
}

type addObject struct {
	created
	obj *scene.Object
}

func buildAddObject(args []any) (operation, error) {
	v, err := argAt(args, 0, "object type")
	if err != nil {
		return nil, err
	}
	if obj, ok := v.(*scene.Object); ok {
		return &addObject{obj: obj.Clone()}, nil
	}
	kind, err := argString(args, 0, "object type")
	if err != nil {
		return nil, err
	}
	props, err := optProps(args, 1, "object properties")
	if err != nil {
		return nil, err
	}
	obj := scene.NewObject(scene.ObjectType(kind))
	if err := obj.Apply(props); err != nil {
		return nil, err
	}
	return &addObject{obj: obj}, nil
}

func (op *addObject) Execute(_ context.Context, g target) (any, error) {
	if obj, ok, err := op.readd(g); ok {
		return obj, err
	}
	obj, err := g.AddObject(op.obj.Clone())
	if err != nil {
		return nil, err
	}
	op.id = obj.ID
	return obj, nil
}

type addImageObject struct {
	created
	src string
}

func buildAddImageObject(args []any) (operation, error) {
	src, err := argString(args, 0, "image source")
	if err != nil {
		return nil, err
	}
	return &addImageObject{src: src}, nil
}

func (op *addImageObject) Execute(ctx context.Context, g target) (any, error) {
	if obj, ok, err := op.readd(g); ok {
		return obj, err
	}
	obj, err := g.Loader.AddImageObject(ctx, op.src)
	if err != nil {
		return nil, err
	}
	op.id = obj.ID
	return obj, nil
}

// removeObject removes one object or a group selection. Undo puts every removed object back
// at its former position in painter's order.
type removeObject struct {
	ids     []string
	removed []scene.Placement
}

func buildRemoveObject(args []any) (operation, error) {
	ids, err := argIDs(args, 0, "object id")
	if err != nil {
		return nil, err
	}
	return &removeObject{ids: ids}, nil
}

func (op *removeObject) Execute(_ context.Context, g target) (any, error) {
	removed, err := g.RemoveObjects(op.ids...)
	if err != nil {
		return nil, err
	}
	op.removed = removed
	return placementIDs(removed), nil
}

func (op *removeObject) Undo(_ context.Context, g target) (any, error) {
	g.Scene.Restore(op.removed)
	ids := placementIDs(op.removed)
	op.removed = nil
	return ids, nil
}

type clearObjects struct {
	removed []scene.Placement
}

func buildClearObjects([]any) (operation, error) {
	return &clearObjects{}, nil
}

func (op *clearObjects) Execute(_ context.Context, g target) (any, error) {
	op.removed = g.ClearObjects()
	return placementIDs(op.removed), nil
}

func (op *clearObjects) Undo(_ context.Context, g target) (any, error) {
	g.Scene.Restore(op.removed)
	ids := placementIDs(op.removed)
	op.removed = nil
	return ids, nil
}

func placementIDs(ps []scene.Placement) []string {
	ids := make([]string, len(ps))
	for i, p := range ps {
		ids[i] = p.Object.ID
	}
	return ids
}

// PropsResult reports the properties an operation wrote to an object.
type PropsResult struct {
	ID    string      `json:"id"`
	Props scene.Props `json:"props"`
}

// propChange writes a property set and undoes by writing back the previous values of the
// same keys. Unrelated keys are never touched.
type propChange struct {
	id    string
	props scene.Props
	prev  scene.Props
}

func (op *propChange) Undo(_ context.Context, g target) (any, error) {
	if _, err := g.SetObjectProperties(op.id, op.prev); err != nil {
		return nil, err
	}
	return PropsResult{ID: op.id, Props: op.prev}, nil
}

type setObjectProperties struct {
	propChange
}

func buildSetObjectProperties(args []any) (operation, error) {
	id, err := argString(args, 0, "object id")
	if err != nil {
		return nil, err
	}
	props, err := argProps(args, 1, "object properties")
	if err != nil {
		return nil, err
	}
	return &setObjectProperties{propChange{id: id, props: props}}, nil
}

func (op *setObjectProperties) Execute(_ context.Context, g target) (any, error) {
	prev, err := g.SetObjectProperties(op.id, op.props)
	if err != nil {
		return nil, err
	}
	op.prev = prev
	return PropsResult{ID: op.id, Props: op.props}, nil
}

type setObjectPosition struct {
	propChange
	pos graphics.Position
}

func buildSetObjectPosition(args []any) (operation, error) {
	id, err := argString(args, 0, "object id")
	if err != nil {
		return nil, err
	}
	pos, err := decodeArg[graphics.Position](args, 1, "position")
	if err != nil {
		return nil, err
	}
	return &setObjectPosition{propChange: propChange{id: id}, pos: pos}, nil
}

func (op *setObjectPosition) Execute(_ context.Context, g target) (any, error) {
	prev, err := g.SetObjectPosition(op.id, op.pos)
	if err != nil {
		return nil, err
	}
	op.prev = prev
	now, err := g.ObjectProperties(op.id, prev.Keys()...)
	if err != nil {
		return nil, err
	}
	return PropsResult{ID: op.id, Props: now}, nil
}

// changeSelection records an edit the caller already made by direct manipulation. Its
// arguments are the before-states, one record per object holding "id" plus the changed
// keys. The first Execute captures the current values as the after-states and changes
// nothing; undo writes the before-states and redo writes the after-states.
type changeSelection struct {
	before map[string]scene.Props
	order  []string
	after  map[string]scene.Props
}

func buildChangeSelection(args []any) (operation, error) {
	v, err := argAt(args, 0, "selection states")
	if err != nil {
		return nil, err
	}
	var records []any
	switch rs := v.(type) {
	case []any:
		records = rs
	case []scene.Props:
		for _, r := range rs {
			records = append(records, r)
		}
	case []map[string]any:
		for _, r := range rs {
			records = append(records, r)
		}
	default:
		return nil, fmt.Errorf("%w: selection states must be a list, got %T", scene.ErrInvalidParameter, v)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty selection", scene.ErrInvalidParameter)
	}

	op := &changeSelection{before: make(map[string]scene.Props, len(records))}
	for i := range records {
		props, err := argProps(records, i, "selection state")
		if err != nil {
			return nil, err
		}
		id, _ := props["id"].(string)
		if id == "" {
			return nil, fmt.Errorf("%w: selection state %d has no id", scene.ErrInvalidParameter, i)
		}
		state := make(scene.Props, len(props)-1)
		for k, val := range props {
			if k != "id" {
				state[k] = val
			}
		}
		if len(state) == 0 {
			return nil, fmt.Errorf("%w: selection state for %s has no properties", scene.ErrInvalidParameter, id)
		}
		if _, dup := op.before[id]; !dup {
			op.order = append(op.order, id)
		}
		op.before[id] = state
	}
	return op, nil
}

func (op *changeSelection) Execute(_ context.Context, g target) (any, error) {
	if op.after != nil {
		return op.write(g, op.after)
	}
	after := make(map[string]scene.Props, len(op.order))
	for _, id := range op.order {
		now, err := g.ObjectProperties(id, op.before[id].Keys()...)
		if err != nil {
			return nil, err
		}
		after[id] = now
	}
	op.after = after
	return op.results(after), nil
}

func (op *changeSelection) Undo(_ context.Context, g target) (any, error) {
	return op.write(g, op.before)
}

func (op *changeSelection) write(g target, states map[string]scene.Props) (any, error) {
	for _, id := range op.order {
		if _, err := g.SetObjectProperties(id, states[id]); err != nil {
			return nil, err
		}
	}
	return op.results(states), nil
}

func (op *changeSelection) results(states map[string]scene.Props) []PropsResult {
	out := make([]PropsResult, 0, len(op.order))
	for _, id := range op.order {
		out = append(out, PropsResult{ID: id, Props: states[id]})
	}
	return out
}
