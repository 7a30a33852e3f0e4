package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUnknownReturnsNothing(t *testing.T) {
	reg := NewRegistry[*canvas]()
	built := false
	reg.Register(Action[*canvas]{
		Name: "rotate",
		Build: func([]any) (Operation[*canvas], error) {
			built = true
			return &rotateOp{}, nil
		},
	})

	cmd, ok := reg.Create("flip", "x")
	assert.False(t, ok)
	assert.Nil(t, cmd)
	assert.False(t, built)
}

func TestCreateBindsArgsInOrder(t *testing.T) {
	reg := NewRegistry[*canvas]()
	reg.Register(Action[*canvas]{Name: "setProps", Build: func([]any) (Operation[*canvas], error) {
		return &rotateOp{}, nil
	}})

	args := []any{"obj_1", map[string]any{"fill": "red"}, 3}
	cmd, ok := reg.Create("setProps", args...)
	require.True(t, ok)
	assert.Equal(t, "setProps", cmd.Name())
	assert.Equal(t, args, cmd.Args())

	cmd.Args()[0] = "mutated"
	assert.Equal(t, "obj_1", cmd.Args()[0])
}

func TestRegisterLastWins(t *testing.T) {
	reg := NewRegistry[*canvas]()
	reg.Register(rotateAction())
	reg.Register(Action[*canvas]{Name: "rotate", Build: func([]any) (Operation[*canvas], error) {
		return &rotateOp{delta: 90}, nil
	}})

	cmd, ok := reg.Create("rotate")
	require.True(t, ok)
	c := &canvas{}
	_, err := cmd.Execute(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, 90.0, c.angle)
}

func TestRegisterWithoutNamePanics(t *testing.T) {
	assert.Panics(t, func() { NewRegistry[*canvas]().Register(Action[*canvas]{}) })
}

func TestNamesSorted(t *testing.T) {
	reg := NewRegistry[*canvas]()
	for _, n := range []string{"rotate", "flip", "addText"} {
		reg.Register(Action[*canvas]{Name: n})
	}
	assert.Equal(t, []string{"addText", "flip", "rotate"}, reg.Names())
}

func TestActionWithoutBuildPanicsOnExecute(t *testing.T) {
	reg := NewRegistry[*canvas]()
	reg.Register(Action[*canvas]{Name: "noop"})
	cmd, ok := reg.Create("noop")
	require.True(t, ok)

	assert.Panics(t, func() { _, _ = cmd.Undo(context.Background(), &canvas{}) })
}
