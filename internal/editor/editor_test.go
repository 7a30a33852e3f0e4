package editor

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/imagedit/internal/command"
	"github.com/inamate/imagedit/internal/graphics"
	"github.com/inamate/imagedit/internal/scene"
)

type source map[string]graphics.ImageInfo

func (s source) Fetch(_ context.Context, src string) (graphics.ImageInfo, error) {
	info, ok := s[src]
	if !ok {
		return graphics.ImageInfo{}, fmt.Errorf("%w: %s", scene.ErrNotFound, src)
	}
	return info, nil
}

func newEditor(t *testing.T) *Editor {
	t.Helper()
	e := New(WithImageSource(source{
		"photo": {AssetID: "asset_photo", Name: "photo.jpg", Width: 300, Height: 200},
	}))
	_, err := e.LoadImage(context.Background(), "", "photo")
	require.NoError(t, err)
	return e
}

func TestHistoryEvents(t *testing.T) {
	ctx := context.Background()
	e := newEditor(t)

	var undoLens, redoLens []int
	_, err := e.On(EventUndoStackChanged, func(n int) { undoLens = append(undoLens, n) })
	require.NoError(t, err)
	_, err = e.On(EventRedoStackChanged, func(n int) { redoLens = append(redoLens, n) })
	require.NoError(t, err)

	_, err = e.AddShape(ctx, scene.ObjectTypeRect, nil)
	require.NoError(t, err)
	_, err = e.Undo(ctx)
	require.NoError(t, err)
	_, err = e.Redo(ctx)
	require.NoError(t, err)

	// Popping only notifies when the stack empties.
	assert.Equal(t, []int{2, 2}, undoLens)
	assert.Equal(t, []int{1, 0}, redoLens)

	_, err = e.On("somethingElse", func(int) {})
	assert.ErrorIs(t, err, scene.ErrInvalidParameter)
}

func TestTypedActions(t *testing.T) {
	ctx := context.Background()
	e := newEditor(t)

	rect, err := e.AddShape(ctx, scene.ObjectTypeRect, scene.Props{scene.PropWidth: 20.0})
	require.NoError(t, err)
	require.NoError(t, e.ChangeShape(ctx, rect.ID, scene.Props{scene.PropFill: "#ff0000"}))

	text, err := e.AddText(ctx, "hello", nil)
	require.NoError(t, err)
	require.NoError(t, e.ChangeText(ctx, text.ID, "world"))
	require.NoError(t, e.ChangeTextStyle(ctx, text.ID, scene.Props{scene.PropFontWeight: "bold"}))

	icon, err := e.AddIcon(ctx, "star", nil)
	require.NoError(t, err)
	require.NoError(t, e.ChangeIconColor(ctx, icon.ID, "#00ff00"))

	res, err := e.ApplyFilter(ctx, "grayscale", nil)
	require.NoError(t, err)
	assert.Equal(t, "add", res.Action)
	assert.True(t, e.HasFilter("grayscale"))

	angle, err := e.Rotate(ctx, 90)
	require.NoError(t, err)
	assert.Equal(t, 90.0, angle)

	flip, err := e.Flip(ctx, graphics.FlipY)
	require.NoError(t, err)
	assert.True(t, flip.FlipY)

	require.NoError(t, e.ResizeCanvasDimension(ctx, scene.Dimension{Width: 800, Height: 600}))
	require.NoError(t, e.SetObjectPosition(ctx, rect.ID, graphics.Position{X: 1, Y: 1}))

	props, err := e.ObjectProperties(text.ID, scene.PropText, scene.PropFontWeight)
	require.NoError(t, err)
	assert.Equal(t, scene.Props{scene.PropText: "world", scene.PropFontWeight: "bold"}, props)

	ids, err := e.ClearObjects(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 3)
	assert.Equal(t, 14, e.History().UndoLen)

	for !e.IsEmptyUndoStack() {
		_, err := e.Undo(ctx)
		require.NoError(t, err)
	}
	assert.Empty(t, e.Objects())
	assert.Equal(t, "loadImage", e.History().RedoName)
}

func TestRemoveObjectGroup(t *testing.T) {
	ctx := context.Background()
	e := newEditor(t)
	a, err := e.AddShape(ctx, scene.ObjectTypeCircle, nil)
	require.NoError(t, err)
	b, err := e.AddShape(ctx, scene.ObjectTypeTriangle, nil)
	require.NoError(t, err)

	removed, err := e.RemoveObject(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, removed)
	assert.Empty(t, e.Objects())

	_, err = e.Undo(ctx)
	require.NoError(t, err)
	assert.Len(t, e.Objects(), 2)
}

func TestRestoreDiscardsHistory(t *testing.T) {
	ctx := context.Background()
	e := newEditor(t)
	_, err := e.AddText(ctx, "a", nil)
	require.NoError(t, err)
	doc := e.Snapshot()

	_, err = e.AddText(ctx, "b", nil)
	require.NoError(t, err)
	require.NoError(t, e.Restore(doc))

	assert.Len(t, e.Objects(), 1)
	assert.True(t, e.IsEmptyUndoStack())
	_, err = e.Undo(ctx)
	assert.ErrorIs(t, err, command.ErrNothingToUndo)
}

func TestRestoreClearsHistoryBeforeUnlocking(t *testing.T) {
	ctx := context.Background()
	e := newEditor(t)
	_, err := e.AddText(ctx, "a", nil)
	require.NoError(t, err)

	var lockedDuringClear []bool
	_, err = e.On(EventUndoStackChanged, func(n int) {
		lockedDuringClear = append(lockedDuringClear, e.IsLocked())
	})
	require.NoError(t, err)

	require.NoError(t, e.Restore(scene.Document{}))
	assert.Equal(t, []bool{true}, lockedDuringClear)
	assert.False(t, e.IsLocked())
}

func TestRestoreWhileLocked(t *testing.T) {
	e := newEditor(t)
	require.NoError(t, e.Lock())
	err := e.Restore(scene.Document{})
	assert.ErrorIs(t, err, command.ErrLocked)
	e.Unlock()
	assert.False(t, e.IsLocked())
}

func TestDestroy(t *testing.T) {
	ctx := context.Background()
	e := newEditor(t)
	calls := 0
	_, err := e.On(EventUndoStackChanged, func(int) { calls++ })
	require.NoError(t, err)

	e.Destroy()
	e.Destroy()
	assert.Zero(t, calls)
	assert.True(t, e.IsEmptyUndoStack())

	_, err = e.AddText(ctx, "late", nil)
	assert.ErrorIs(t, err, ErrDestroyed)
	_, err = e.On(EventRedoStackChanged, func(int) {})
	assert.ErrorIs(t, err, ErrDestroyed)
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{command.ErrLocked, "locked"},
		{fmt.Errorf("%w because %w", command.ErrNothingToUndo, command.ErrLocked), "locked"},
		{command.ErrNothingToRedo, "empty_history"},
		{scene.ErrNoImage, "not_found"},
		{fmt.Errorf("wrap: %w", scene.ErrInvalidParameter), "invalid_parameter"},
		{scene.ErrNoOp, "no_op"},
		{scene.ErrUnsupported, "unsupported"},
		{command.ErrUnknownCommand, "unknown_command"},
		{ErrDestroyed, "destroyed"},
		{errors.New("boom"), "internal"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorCode(tt.err), "%v", tt.err)
	}
}

func TestUnknownCommand(t *testing.T) {
	e := newEditor(t)
	_, err := e.Execute(context.Background(), "sharpenEverything")
	assert.Equal(t, "unknown_command", ErrorCode(err))
}
